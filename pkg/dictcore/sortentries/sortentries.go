// Package sortentries implements component I: the stable multi-key sort
// applied to a batch of assembled, grouped, and enriched term dictionary
// entries, plus the two named passes that feed it — frequency-order
// reordering and redundant-part-of-speech flagging.
package sortentries

import (
	"math"
	"sort"
	"strings"

	"github.com/kanjidict/dictcore/pkg/dictcore/model"
)

// Sort orders entries in place: descending
// max_transformed_text_length, ascending |inflection_hypotheses|,
// descending source_term_exact_match_count, ascending frequency_order,
// descending dictionary_priority, descending score, headword-term
// comparison (descending length, then ascending lexicographic),
// descending |definitions|, ascending dictionary_index. Each entry's own
// definitions and pronunciation/frequency lists are sorted first, since
// the entry-level comparison reads from them (|definitions| and the
// headword list are both definition-sort-independent, but sorting
// children before parents matches the fold-then-sort structure of the
// rest of the pipeline).
func Sort(entries []model.TermDictionaryEntry) {
	for i := range entries {
		sortDefinitions(entries[i].Definitions, entries[i].Tags)
		sortPronunciations(entries[i].Pronunciations)
		sortFrequencies(entries[i].Frequencies)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entryLess(entries[i], entries[j])
	})
}

func entryLess(a, b model.TermDictionaryEntry) bool {
	if a.MaxTransformedTextLength != b.MaxTransformedTextLength {
		return a.MaxTransformedTextLength > b.MaxTransformedTextLength
	}
	if la, lb := len(a.InflectionHypotheses), len(b.InflectionHypotheses); la != lb {
		return la < lb
	}
	if a.SourceTermExactMatchCount != b.SourceTermExactMatchCount {
		return a.SourceTermExactMatchCount > b.SourceTermExactMatchCount
	}
	if a.FrequencyOrder != b.FrequencyOrder {
		return a.FrequencyOrder < b.FrequencyOrder
	}
	if a.DictionaryPriority != b.DictionaryPriority {
		return a.DictionaryPriority > b.DictionaryPriority
	}
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if c := headwordTermCompare(headwordTerm(a), headwordTerm(b)); c != 0 {
		return c < 0
	}
	if la, lb := len(a.Definitions), len(b.Definitions); la != lb {
		return la > lb
	}
	return a.DictionaryIndex < b.DictionaryIndex
}

func headwordTerm(e model.TermDictionaryEntry) string {
	if len(e.Headwords) == 0 {
		return ""
	}
	return e.Headwords[0].Term
}

// headwordTermCompare implements "descending length then collated
// ascending": longer terms sort first; among equal-length terms, plain
// lexicographic order stands in for collation order (the examples carry
// no locale-collation library, and every comparison here is on already
// NFC-normalized dictionary headwords, so rune-wise ordering is a stable,
// deterministic stand-in).
func headwordTermCompare(a, b string) int {
	la, lb := len([]rune(a)), len([]rune(b))
	if la != lb {
		if la > lb {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

func sortDefinitions(defs []model.TermDefinition, tags []model.Tag) {
	scores := tagScoreIndex(tags)
	sort.SliceStable(defs, func(i, j int) bool {
		return definitionLess(defs[i], defs[j], scores)
	})
}

// tagScoreIndex builds a name -> resolved score lookup from an entry's
// expanded Tags list (component H), so definitionLess can compute "sum
// of tag scores" without re-resolving tags itself.
func tagScoreIndex(tags []model.Tag) map[string]float64 {
	idx := make(map[string]float64, len(tags))
	for _, t := range tags {
		idx[t.Name] = t.Score
	}
	return idx
}

// definitionLess implements the definition sort: ascending
// frequency_order, descending dictionary_priority, descending score,
// ascending headword-index list (lexicographic), ascending
// dictionary_index, descending sum of tag scores, ascending original
// index.
func definitionLess(a, b model.TermDefinition, scores map[string]float64) bool {
	if a.FrequencyOrder != b.FrequencyOrder {
		return a.FrequencyOrder < b.FrequencyOrder
	}
	if a.DictionaryPriority != b.DictionaryPriority {
		return a.DictionaryPriority > b.DictionaryPriority
	}
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if c := lexicographicIntsCompare(a.HeadwordIndices, b.HeadwordIndices); c != 0 {
		return c < 0
	}
	if a.DictionaryIndex != b.DictionaryIndex {
		return a.DictionaryIndex < b.DictionaryIndex
	}
	if sa, sb := sumTagScores(a.TagGroups, scores), sumTagScores(b.TagGroups, scores); sa != sb {
		return sa > sb
	}
	return a.Index < b.Index
}

func lexicographicIntsCompare(a, b []int) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

// sumTagScores sums the resolved Tag.Score for every tag name a
// definition's TagGroups reference. Names with no resolved score (e.g.
// Sort called before ExpandTags has run) contribute zero rather than
// erroring, so Sort stays usable standalone.
func sumTagScores(groups []model.TagGroup, scores map[string]float64) float64 {
	var total float64
	for _, g := range groups {
		for _, name := range g.Names {
			total += scores[name]
		}
	}
	return total
}

func sortPronunciations(list []model.Pronunciation) {
	sort.SliceStable(list, func(i, j int) bool {
		return bundleLess(list[i].DictionaryPriority, list[i].HeadwordIndex, list[i].DictionaryIndex, list[i].Index,
			list[j].DictionaryPriority, list[j].HeadwordIndex, list[j].DictionaryIndex, list[j].Index)
	})
}

func sortFrequencies(list []model.Frequency) {
	sort.SliceStable(list, func(i, j int) bool {
		return bundleLess(list[i].DictionaryPriority, list[i].HeadwordIndex, list[i].DictionaryIndex, list[i].Index,
			list[j].DictionaryPriority, list[j].HeadwordIndex, list[j].DictionaryIndex, list[j].Index)
	})
}

// bundleLess implements the shared pronunciation/frequency ordering:
// descending dictionary_priority, ascending headword_index, ascending
// dictionary_index, ascending index.
func bundleLess(aPriority, aHeadword, aDictIndex, aIndex, bPriority, bHeadword, bDictIndex, bIndex int) bool {
	if aPriority != bPriority {
		return aPriority > bPriority
	}
	if aHeadword != bHeadword {
		return aHeadword < bHeadword
	}
	if aDictIndex != bDictIndex {
		return aDictIndex < bDictIndex
	}
	return aIndex < bIndex
}

// FlagRedundantPartsOfSpeech implements the redundancy-flagging pass:
// walking one entry's definitions in dictionary order, if a
// definition's partOfSpeech tag-name sequence is identical to the
// immediately preceding definition's (within the same dictionary), every
// partOfSpeech tag in the later definition is flagged redundant.
//
// partOfSpeechCategory names the tag category the entry's resolved
// Tags use for parts of speech (component H's expansion populates
// Tag.Category); callers pass whatever category their tag bank uses
// (e.g. "partOfSpeech").
func FlagRedundantPartsOfSpeech(entry *model.TermDictionaryEntry, partOfSpeechCategory string) {
	posByCategory := make(map[string]string, len(entry.Tags))
	for _, tag := range entry.Tags {
		if tag.Category == partOfSpeechCategory {
			posByCategory[tag.Name] = tag.Category
		}
	}

	byDictionary := make(map[string][]int)
	for i, def := range entry.Definitions {
		byDictionary[def.Dictionary] = append(byDictionary[def.Dictionary], i)
	}

	for _, indices := range byDictionary {
		var prevPOS []string
		for _, idx := range indices {
			def := &entry.Definitions[idx]
			var pos []string
			for _, g := range def.TagGroups {
				for _, name := range g.Names {
					if _, isPOS := posByCategory[name]; isPOS {
						pos = append(pos, name)
					}
				}
			}

			if samePOSSequence(pos, prevPOS) {
				for _, name := range pos {
					markRedundant(entry, name)
				}
			}
			prevPOS = pos
		}
	}
}

func samePOSSequence(a, b []string) bool {
	if len(a) == 0 || len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// markRedundant flags the resolved Tag matching name as redundant on
// entry.Tags; tag redundancy is entry-scoped (component H resolves one
// Tags list per entry), not definition-scoped.
func markRedundant(entry *model.TermDictionaryEntry, name string) {
	for i := range entry.Tags {
		if entry.Tags[i].Name == name {
			entry.Tags[i].Redundant = true
		}
	}
}

// FrequencyDirection selects ascending or descending frequency ordering
// for ReorderByFrequency.
type FrequencyDirection int

const (
	Ascending FrequencyDirection = iota
	Descending
)

// ReorderByFrequency implements the "frequency reordering" pass: given a nominated dictionary and direction, compute each entry's
// frequency_order as the min frequency among its headwords (ascending)
// or the negated max (descending) from that dictionary; entries with no
// such frequency receive MAX_INT (ascending) or 0 (descending).
// Definitions receive the same treatment restricted to their headword
// indices.
func ReorderByFrequency(entries []model.TermDictionaryEntry, dictionary string, direction FrequencyDirection) {
	for i := range entries {
		entry := &entries[i]
		byHeadword := make(map[int][]float64)
		for _, f := range entry.Frequencies {
			if f.Dictionary != dictionary {
				continue
			}
			byHeadword[f.HeadwordIndex] = append(byHeadword[f.HeadwordIndex], f.FrequencyValue)
		}

		entry.FrequencyOrder = frequencyOrderOverHeadwords(allHeadwordIndices(entry), byHeadword, direction)

		for di := range entry.Definitions {
			def := &entry.Definitions[di]
			def.FrequencyOrder = frequencyOrderOverHeadwords(def.HeadwordIndices, byHeadword, direction)
		}
	}
}

const maxInt = int(^uint(0) >> 1)

func allHeadwordIndices(entry *model.TermDictionaryEntry) []int {
	out := make([]int, len(entry.Headwords))
	for i := range entry.Headwords {
		out[i] = i
	}
	return out
}

func frequencyOrderOverHeadwords(headwordIndices []int, byHeadword map[int][]float64, direction FrequencyDirection) int {
	found := false
	var best float64
	for _, hi := range headwordIndices {
		for _, v := range byHeadword[hi] {
			if !found {
				best = v
				found = true
				continue
			}
			switch direction {
			case Descending:
				if v > best {
					best = v
				}
			default:
				if v < best {
					best = v
				}
			}
		}
	}
	if !found {
		if direction == Descending {
			return 0
		}
		return maxInt
	}
	if direction == Descending {
		return -int(math.Round(best))
	}
	return int(math.Round(best))
}
