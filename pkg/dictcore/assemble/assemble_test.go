package assemble

import (
	"testing"

	"github.com/kanjidict/dictcore/pkg/dictcore/model"
	"github.com/kanjidict/dictcore/pkg/dictcore/store"
)

func TestBuildHeadwordDefaultsReadingToTerm(t *testing.T) {
	b := New()
	entry := b.Build(Input{
		Entry:           model.DatabaseEntry{ID: 1, Term: "食べる", Dictionary: "jmdict"},
		OriginalText:    "食べた",
		TransformedText: "食べた",
		DeinflectedText: "食べる",
		IsPrimary:       true,
		Enabled:         map[string]store.DictionaryDetails{"jmdict": {Index: 0, Priority: 1}},
	})

	if len(entry.Headwords) != 1 {
		t.Fatalf("expected exactly one headword, got %d", len(entry.Headwords))
	}
	hw := entry.Headwords[0]
	if hw.Reading != "食べる" {
		t.Errorf("expected reading to default to term, got %q", hw.Reading)
	}
	if hw.Index != 0 {
		t.Errorf("expected headword index 0, got %d", hw.Index)
	}
}

func TestBuildPreservesExplicitReading(t *testing.T) {
	b := New()
	entry := b.Build(Input{
		Entry:   model.DatabaseEntry{Term: "角", Reading: "かく", Dictionary: "jmdict"},
		Enabled: map[string]store.DictionaryDetails{"jmdict": {}},
	})

	if entry.Headwords[0].Reading != "かく" {
		t.Errorf("expected explicit reading かく, got %q", entry.Headwords[0].Reading)
	}
}

func TestBuildExactMatchCountRequiresPrimaryAndDeinflectedTermMatch(t *testing.T) {
	b := New()

	primaryExact := b.Build(Input{
		Entry:           model.DatabaseEntry{Term: "猫"},
		DeinflectedText: "猫",
		IsPrimary:       true,
		Enabled:         map[string]store.DictionaryDetails{},
	})
	if primaryExact.SourceTermExactMatchCount != 1 {
		t.Errorf("expected match count 1 for primary exact hit, got %d", primaryExact.SourceTermExactMatchCount)
	}

	nonPrimary := b.Build(Input{
		Entry:           model.DatabaseEntry{Term: "猫"},
		DeinflectedText: "猫",
		IsPrimary:       false,
		Enabled:         map[string]store.DictionaryDetails{},
	})
	if nonPrimary.SourceTermExactMatchCount != 0 {
		t.Errorf("expected match count 0 for non-primary hit, got %d", nonPrimary.SourceTermExactMatchCount)
	}

	deinflected := b.Build(Input{
		Entry:           model.DatabaseEntry{Term: "食べる"},
		DeinflectedText: "食べる",
		TransformedText: "食べた",
		IsPrimary:       true,
		Enabled:         map[string]store.DictionaryDetails{},
	})
	if deinflected.SourceTermExactMatchCount != 1 {
		t.Errorf("deinflected_text == term should still count as exact, got %d", deinflected.SourceTermExactMatchCount)
	}
}

func TestBuildDefinitionCarriesDictionaryDetails(t *testing.T) {
	b := New()
	entry := b.Build(Input{
		Entry:   model.DatabaseEntry{ID: 42, Term: "食べる", Dictionary: "jmdict", Score: 3.5, Sequence: 100},
		Enabled: map[string]store.DictionaryDetails{"jmdict": {Index: 2, Priority: 9}},
	})

	def := entry.Definitions[0]
	if def.DictionaryIndex != 2 || def.DictionaryPriority != 9 {
		t.Errorf("expected dictionary index/priority from enabled map, got %+v", def)
	}
	if def.ID != 42 || def.Score != 3.5 {
		t.Errorf("expected id/score carried from the database entry, got %+v", def)
	}
	if len(def.Sequences) != 1 || def.Sequences[0] != 100 {
		t.Errorf("expected single-element sequence list, got %v", def.Sequences)
	}
	if len(def.HeadwordIndices) != 1 || def.HeadwordIndices[0] != 0 {
		t.Errorf("expected definition to point at headword 0, got %v", def.HeadwordIndices)
	}
}

func TestBuildCarriesGlossesAsDefinitionContent(t *testing.T) {
	b := New()
	entry := b.Build(Input{
		Entry: model.DatabaseEntry{
			Term: "食べる",
			Glosses: []model.DefinitionEntry{
				{Kind: "text", Text: "to eat"},
				{Kind: "image", URL: "https://example.com/img.png"},
			},
		},
		Enabled: map[string]store.DictionaryDetails{},
	})

	entries := entry.Definitions[0].Entries
	if len(entries) != 2 {
		t.Fatalf("expected 2 content entries, got %d", len(entries))
	}
	if entries[0].Kind != "text" || entries[0].Text != "to eat" {
		t.Errorf("unexpected first content entry: %+v", entries[0])
	}
	if entries[1].Kind != "image" || entries[1].URL != "https://example.com/img.png" {
		t.Errorf("unexpected second content entry: %+v", entries[1])
	}
}

func TestBuildTagGroupsOmittedWhenEmpty(t *testing.T) {
	b := New()
	entry := b.Build(Input{
		Entry:   model.DatabaseEntry{Term: "猫"},
		Enabled: map[string]store.DictionaryDetails{},
	})

	if len(entry.Headwords[0].TagGroups) != 0 {
		t.Errorf("expected no tag groups for an entry with no term tags, got %v", entry.Headwords[0].TagGroups)
	}
	if len(entry.Definitions[0].TagGroups) != 0 {
		t.Errorf("expected no tag groups for a definition with no definition tags, got %v", entry.Definitions[0].TagGroups)
	}
}

func TestBuildMaxTransformedTextLengthCountsRunes(t *testing.T) {
	b := New()
	entry := b.Build(Input{
		Entry:           model.DatabaseEntry{Term: "食べる"},
		TransformedText: "食べた", // 3 runes, 9 bytes
		Enabled:         map[string]store.DictionaryDetails{},
	})

	if entry.MaxTransformedTextLength != 3 {
		t.Errorf("expected rune length 3, got %d", entry.MaxTransformedTextLength)
	}
}
