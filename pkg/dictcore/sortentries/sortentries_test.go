package sortentries

import (
	"testing"

	"github.com/kanjidict/dictcore/pkg/dictcore/model"
)

func entry(term string, maxLen int, score float64, priority int) model.TermDictionaryEntry {
	return model.TermDictionaryEntry{
		Headwords:                []model.Headword{{Term: term}},
		MaxTransformedTextLength: maxLen,
		Score:                    score,
		DictionaryPriority:       priority,
	}
}

func TestSortOrdersByMaxTransformedTextLengthDescending(t *testing.T) {
	entries := []model.TermDictionaryEntry{
		entry("短", 1, 1, 1),
		entry("長い方", 3, 1, 1),
		entry("中ぐらい", 2, 1, 1),
	}
	Sort(entries)
	if entries[0].MaxTransformedTextLength != 3 || entries[1].MaxTransformedTextLength != 2 || entries[2].MaxTransformedTextLength != 1 {
		t.Fatalf("expected descending max_transformed_text_length, got %+v", entries)
	}
}

func TestSortBreaksTiesByFewerInflectionHypotheses(t *testing.T) {
	a := entry("猫", 2, 1, 1)
	a.InflectionHypotheses = []model.InflectionHypothesis{{Inflections: []string{"past"}}, {Inflections: []string{"te"}}}
	b := entry("猫", 2, 1, 1)
	b.InflectionHypotheses = []model.InflectionHypothesis{{Inflections: []string{"past"}}}

	entries := []model.TermDictionaryEntry{a, b}
	Sort(entries)
	if len(entries[0].InflectionHypotheses) != 1 {
		t.Fatalf("expected the entry with fewer hypotheses first, got %+v", entries)
	}
}

func TestSortBreaksTiesByScoreDescending(t *testing.T) {
	entries := []model.TermDictionaryEntry{
		entry("猫", 2, 0.1, 1),
		entry("犬", 2, 0.9, 1),
	}
	Sort(entries)
	if entries[0].Score != 0.9 {
		t.Fatalf("expected higher score first, got %+v", entries)
	}
}

func TestSortHeadwordTermPrefersLongerThenLexicographic(t *testing.T) {
	entries := []model.TermDictionaryEntry{
		entry("ab", 1, 1, 1),
		entry("abc", 1, 1, 1),
		entry("aac", 1, 1, 1),
	}
	Sort(entries)
	if entries[0].Headwords[0].Term != "aac" && entries[0].Headwords[0].Term != "abc" {
		t.Fatalf("expected a 3-rune term first, got %+v", entries[0])
	}
	if len(entries[0].Headwords[0].Term) < len(entries[2].Headwords[0].Term) {
		t.Fatalf("expected descending length overall, got %+v", entries)
	}
	// among the two length-3 terms, "aac" collates before "abc"
	if entries[0].Headwords[0].Term != "aac" || entries[1].Headwords[0].Term != "abc" {
		t.Fatalf("expected aac before abc among equal-length terms, got %+v, %+v", entries[0], entries[1])
	}
}

func TestSortDefinitionsOrdersByFrequencyOrderThenPriority(t *testing.T) {
	e := model.TermDictionaryEntry{
		Definitions: []model.TermDefinition{
			{Index: 0, FrequencyOrder: 5, DictionaryPriority: 1},
			{Index: 1, FrequencyOrder: 1, DictionaryPriority: 1},
			{Index: 2, FrequencyOrder: 1, DictionaryPriority: 9},
		},
	}
	entries := []model.TermDictionaryEntry{e}
	Sort(entries)
	defs := entries[0].Definitions
	if defs[0].Index != 2 || defs[1].Index != 1 || defs[2].Index != 0 {
		t.Fatalf("unexpected definition order: %+v", defs)
	}
}

func TestSortDefinitionsSumsTagScoresFromEntryTags(t *testing.T) {
	e := model.TermDictionaryEntry{
		Tags: []model.Tag{
			{Name: "rare", Score: 10},
			{Name: "common", Score: 0},
		},
		Definitions: []model.TermDefinition{
			{Index: 0, TagGroups: []model.TagGroup{{Dictionary: "jmdict", Names: []string{"common"}}}},
			{Index: 1, TagGroups: []model.TagGroup{{Dictionary: "jmdict", Names: []string{"rare"}}}},
		},
	}
	entries := []model.TermDictionaryEntry{e}
	Sort(entries)
	defs := entries[0].Definitions
	if defs[0].Index != 1 {
		t.Fatalf("expected the higher-tag-score definition first, got %+v", defs)
	}
}

func TestSortPronunciationsOrdersByPriorityThenHeadwordIndex(t *testing.T) {
	e := model.TermDictionaryEntry{
		Pronunciations: []model.Pronunciation{
			{Index: 0, HeadwordIndex: 1, DictionaryPriority: 1},
			{Index: 1, HeadwordIndex: 0, DictionaryPriority: 1},
			{Index: 2, HeadwordIndex: 0, DictionaryPriority: 5},
		},
	}
	entries := []model.TermDictionaryEntry{e}
	Sort(entries)
	p := entries[0].Pronunciations
	if p[0].Index != 2 || p[1].Index != 1 || p[2].Index != 0 {
		t.Fatalf("unexpected pronunciation order: %+v", p)
	}
}

func TestReorderByFrequencyAscendingUsesMinAcrossHeadwords(t *testing.T) {
	e := model.TermDictionaryEntry{
		Headwords: []model.Headword{{Index: 0}, {Index: 1}},
		Frequencies: []model.Frequency{
			{Dictionary: "jmdict", HeadwordIndex: 0, FrequencyValue: 500},
			{Dictionary: "jmdict", HeadwordIndex: 1, FrequencyValue: 10},
		},
		Definitions: []model.TermDefinition{
			{HeadwordIndices: []int{0}},
			{HeadwordIndices: []int{1}},
		},
	}
	entries := []model.TermDictionaryEntry{e}
	ReorderByFrequency(entries, "jmdict", Ascending)

	if entries[0].FrequencyOrder != 10 {
		t.Fatalf("expected entry frequency_order 10 (min across headwords), got %d", entries[0].FrequencyOrder)
	}
	if entries[0].Definitions[0].FrequencyOrder != 500 {
		t.Fatalf("expected definition 0 frequency_order 500, got %d", entries[0].Definitions[0].FrequencyOrder)
	}
	if entries[0].Definitions[1].FrequencyOrder != 10 {
		t.Fatalf("expected definition 1 frequency_order 10, got %d", entries[0].Definitions[1].FrequencyOrder)
	}
}

func TestReorderByFrequencyDescendingNegatesMax(t *testing.T) {
	e := model.TermDictionaryEntry{
		Headwords: []model.Headword{{Index: 0}},
		Frequencies: []model.Frequency{
			{Dictionary: "jmdict", HeadwordIndex: 0, FrequencyValue: 500},
			{Dictionary: "jmdict", HeadwordIndex: 0, FrequencyValue: 10},
		},
	}
	entries := []model.TermDictionaryEntry{e}
	ReorderByFrequency(entries, "jmdict", Descending)

	if entries[0].FrequencyOrder != -500 {
		t.Fatalf("expected negated max -500, got %d", entries[0].FrequencyOrder)
	}
}

func TestReorderByFrequencyMissingDataFallsBackToSentinels(t *testing.T) {
	e := model.TermDictionaryEntry{Headwords: []model.Headword{{Index: 0}}}
	ascending := []model.TermDictionaryEntry{e}
	ReorderByFrequency(ascending, "jmdict", Ascending)
	if ascending[0].FrequencyOrder != maxInt {
		t.Fatalf("expected MAX_INT fallback for ascending with no frequency data, got %d", ascending[0].FrequencyOrder)
	}

	descending := []model.TermDictionaryEntry{e}
	ReorderByFrequency(descending, "jmdict", Descending)
	if descending[0].FrequencyOrder != 0 {
		t.Fatalf("expected 0 fallback for descending with no frequency data, got %d", descending[0].FrequencyOrder)
	}
}

func TestFlagRedundantPartsOfSpeechFlagsRepeatedSequence(t *testing.T) {
	e := &model.TermDictionaryEntry{
		Tags: []model.Tag{
			{Name: "n", Category: "partOfSpeech"},
			{Name: "vt", Category: "partOfSpeech"},
		},
		Definitions: []model.TermDefinition{
			{Dictionary: "jmdict", TagGroups: []model.TagGroup{{Dictionary: "jmdict", Names: []string{"n", "vt"}}}},
			{Dictionary: "jmdict", TagGroups: []model.TagGroup{{Dictionary: "jmdict", Names: []string{"n", "vt"}}}},
		},
	}

	FlagRedundantPartsOfSpeech(e, "partOfSpeech")

	for _, tag := range e.Tags {
		if !tag.Redundant {
			t.Fatalf("expected both repeated partOfSpeech tags flagged redundant, got %+v", e.Tags)
		}
	}
}

func TestFlagRedundantPartsOfSpeechLeavesFirstOccurrenceUnflagged(t *testing.T) {
	// A single-definition fixture: verifies the mechanism doesn't flag
	// anything when there is only one definition: Redundant starts
	// false and nothing should promote it without a repeat.
	e := &model.TermDictionaryEntry{
		Tags: []model.Tag{{Name: "n", Category: "partOfSpeech"}},
		Definitions: []model.TermDefinition{
			{Dictionary: "jmdict", TagGroups: []model.TagGroup{{Dictionary: "jmdict", Names: []string{"n"}}}},
		},
	}

	FlagRedundantPartsOfSpeech(e, "partOfSpeech")

	if e.Tags[0].Redundant {
		t.Fatalf("expected no redundancy flag with only one definition, got %+v", e.Tags)
	}
}

func TestFlagRedundantPartsOfSpeechDoesNotFlagDifferentSequence(t *testing.T) {
	e := &model.TermDictionaryEntry{
		Tags: []model.Tag{
			{Name: "n", Category: "partOfSpeech"},
			{Name: "vt", Category: "partOfSpeech"},
		},
		Definitions: []model.TermDefinition{
			{Dictionary: "jmdict", TagGroups: []model.TagGroup{{Dictionary: "jmdict", Names: []string{"n"}}}},
			{Dictionary: "jmdict", TagGroups: []model.TagGroup{{Dictionary: "jmdict", Names: []string{"vt"}}}},
		},
	}

	FlagRedundantPartsOfSpeech(e, "partOfSpeech")

	for _, tag := range e.Tags {
		if tag.Redundant {
			t.Fatalf("expected no redundancy flag when the POS sequence differs, got %+v", e.Tags)
		}
	}
}

func TestFlagRedundantPartsOfSpeechScopedPerDictionary(t *testing.T) {
	e := &model.TermDictionaryEntry{
		Tags: []model.Tag{{Name: "n", Category: "partOfSpeech"}},
		Definitions: []model.TermDefinition{
			{Dictionary: "jmdict", TagGroups: []model.TagGroup{{Dictionary: "jmdict", Names: []string{"n"}}}},
			{Dictionary: "other", TagGroups: []model.TagGroup{{Dictionary: "other", Names: []string{"n"}}}},
		},
	}

	FlagRedundantPartsOfSpeech(e, "partOfSpeech")

	if e.Tags[0].Redundant {
		t.Fatalf("expected no redundancy flag across different dictionaries, got %+v", e.Tags)
	}
}
