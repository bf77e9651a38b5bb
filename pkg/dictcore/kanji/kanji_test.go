package kanji

import (
	"context"
	"testing"

	"github.com/kanjidict/dictcore/pkg/dictcore/model"
	"github.com/kanjidict/dictcore/pkg/dictcore/store"
	"github.com/kanjidict/dictcore/pkg/dictcore/store/memstore"
	"github.com/kanjidict/dictcore/pkg/dictcore/tagcache"
)

func newTestFinder(st *memstore.Store) *Finder {
	return New(st, tagcache.New(64))
}

func TestFindKanjiBuildsOneEntryPerHit(t *testing.T) {
	st := memstore.New()
	st.AddKanjiEntry("kanjidic", model.DatabaseEntry{
		Term:           "猫",
		TermTags:       []string{"ビョウ"},
		WordClasses:    []string{"ねこ"},
		DefinitionTags: []string{"animal"},
		Rules:          []string{"strokes:11", "grade:0"},
		Glosses:        []model.DefinitionEntry{{Kind: "text", Text: "cat"}},
	})

	f := newTestFinder(st)
	enabled := map[string]store.DictionaryDetails{"kanjidic": {Index: 0, Priority: 1}}

	entries, err := f.FindKanji(context.Background(), "猫", Options{EnabledDictionaryMap: enabled})
	if err != nil {
		t.Fatalf("FindKanji: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Character != "猫" {
		t.Errorf("expected character 猫, got %q", e.Character)
	}
	if len(e.Onyomi) != 1 || e.Onyomi[0] != "ビョウ" {
		t.Errorf("expected onyomi [ビョウ], got %v", e.Onyomi)
	}
	if len(e.Kunyomi) != 1 || e.Kunyomi[0] != "ねこ" {
		t.Errorf("expected kunyomi [ねこ], got %v", e.Kunyomi)
	}
	if len(e.Definitions) != 1 || e.Definitions[0].Text != "cat" {
		t.Errorf("expected definition 'cat', got %+v", e.Definitions)
	}
}

func TestFindKanjiDeduplicatesRepeatedCharacters(t *testing.T) {
	st := memstore.New()
	st.AddKanjiEntry("kanjidic", model.DatabaseEntry{Term: "猫"})

	f := newTestFinder(st)
	enabled := map[string]store.DictionaryDetails{"kanjidic": {Index: 0, Priority: 1}}

	entries, err := f.FindKanji(context.Background(), "猫猫猫", Options{EnabledDictionaryMap: enabled})
	if err != nil {
		t.Fatalf("FindKanji: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected deduplication down to 1 entry, got %d", len(entries))
	}
}

func TestFindKanjiOrdersByBatchIndex(t *testing.T) {
	st := memstore.New()
	st.AddKanjiEntry("kanjidic", model.DatabaseEntry{Term: "魚"})
	st.AddKanjiEntry("kanjidic", model.DatabaseEntry{Term: "猫"})

	f := newTestFinder(st)
	enabled := map[string]store.DictionaryDetails{"kanjidic": {Index: 0, Priority: 1}}

	entries, err := f.FindKanji(context.Background(), "猫魚", Options{EnabledDictionaryMap: enabled})
	if err != nil {
		t.Fatalf("FindKanji: %v", err)
	}
	if len(entries) != 2 || entries[0].Character != "猫" || entries[1].Character != "魚" {
		t.Fatalf("expected entries ordered by input position [猫 魚], got %+v", entries)
	}
}

func TestFindKanjiExpandsStatsWithResolvedCategory(t *testing.T) {
	st := memstore.New()
	st.AddKanjiEntry("kanjidic", model.DatabaseEntry{Term: "猫", Rules: []string{"strokes:11"}})
	st.AddTag("kanjidic", model.Tag{Name: "strokes", Category: "count", Order: 1})

	f := newTestFinder(st)
	enabled := map[string]store.DictionaryDetails{"kanjidic": {Index: 0, Priority: 1}}

	entries, err := f.FindKanji(context.Background(), "猫", Options{EnabledDictionaryMap: enabled})
	if err != nil {
		t.Fatalf("FindKanji: %v", err)
	}
	if len(entries[0].Stats) != 1 {
		t.Fatalf("expected 1 stat, got %d", len(entries[0].Stats))
	}
	stat := entries[0].Stats[0]
	if stat.Name != "strokes" || stat.Value != "11" || stat.Category != "count" {
		t.Errorf("unexpected stat: %+v", stat)
	}
}

func TestFindKanjiAttachesFrequencyMeta(t *testing.T) {
	st := memstore.New()
	st.AddKanjiEntry("kanjidic", model.DatabaseEntry{Term: "猫"})
	st.AddKanjiMeta("kanjidic", "猫", store.MetaResult{Mode: "freq", Data: float64(900)})

	f := newTestFinder(st)
	enabled := map[string]store.DictionaryDetails{"kanjidic": {Index: 0, Priority: 1}}

	entries, err := f.FindKanji(context.Background(), "猫", Options{EnabledDictionaryMap: enabled})
	if err != nil {
		t.Fatalf("FindKanji: %v", err)
	}
	if len(entries[0].Frequencies) != 1 || entries[0].Frequencies[0].FrequencyValue != 900 {
		t.Fatalf("expected frequency 900, got %+v", entries[0].Frequencies)
	}
}

func TestFindKanjiExpandsTagGroupsIntoResolvedTags(t *testing.T) {
	st := memstore.New()
	st.AddKanjiEntry("kanjidic", model.DatabaseEntry{Term: "猫", DefinitionTags: []string{"animal"}})
	st.AddTag("kanjidic", model.Tag{Name: "animal", Category: "field", Order: 3})

	f := newTestFinder(st)
	enabled := map[string]store.DictionaryDetails{"kanjidic": {Index: 0, Priority: 1}}

	entries, err := f.FindKanji(context.Background(), "猫", Options{EnabledDictionaryMap: enabled})
	if err != nil {
		t.Fatalf("FindKanji: %v", err)
	}
	if len(entries[0].Tags) != 1 || entries[0].Tags[0].Category != "field" {
		t.Fatalf("expected a resolved 'field' tag, got %+v", entries[0].Tags)
	}
}

func TestFindKanjiEmptyTextReturnsNoEntries(t *testing.T) {
	st := memstore.New()
	f := newTestFinder(st)
	entries, err := f.FindKanji(context.Background(), "", Options{})
	if err != nil {
		t.Fatalf("FindKanji: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries for empty text, got %+v", entries)
	}
}

func TestFindKanjiSortsByDictionaryPriorityDescending(t *testing.T) {
	st := memstore.New()
	st.AddKanjiEntry("low", model.DatabaseEntry{Term: "猫"})
	st.AddKanjiEntry("high", model.DatabaseEntry{Term: "猫"})

	f := newTestFinder(st)
	enabled := map[string]store.DictionaryDetails{
		"low":  {Index: 0, Priority: 1},
		"high": {Index: 1, Priority: 9},
	}

	entries, err := f.FindKanji(context.Background(), "猫", Options{EnabledDictionaryMap: enabled})
	if err != nil {
		t.Fatalf("FindKanji: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries (one per dictionary hit), got %d", len(entries))
	}
	if entries[0].Dictionary != "high" {
		t.Fatalf("expected the higher-priority dictionary's entry first, got %+v", entries[0])
	}
}
