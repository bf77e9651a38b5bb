// Package group implements component G: folding many single-dictionary
// hits that share a headword into one combined entry, and the two modes
// that feed that fold — grouping by headword, and merging by a
// dictionary-assigned sequence number.
package group

import (
	"context"
	"sort"
	"strings"

	"github.com/kanjidict/dictcore/pkg/dictcore/assemble"
	"github.com/kanjidict/dictcore/pkg/dictcore/model"
	"github.com/kanjidict/dictcore/pkg/dictcore/store"
)

type headwordKey struct{ term, reading string }

// FoldEntries implements the grouping fold: build a shared headword list
// keyed by (term, reading), remap every contributing definition's
// headword indices against it, and aggregate the entry-level scoring
// fields. When checkDuplicateDefinitions is set (merge mode), a second
// sighting of a definition already seen for the same (dictionary,
// content) unions its sequences, tag groups, and headword indices into
// the first instead of appending a duplicate.
func FoldEntries(entries []model.TermDictionaryEntry, checkDuplicateDefinitions bool) model.TermDictionaryEntry {
	var out model.TermDictionaryEntry
	if len(entries) == 0 {
		return out
	}
	out.Kind = "term"

	headwordIndex := make(map[headwordKey]int)
	defIndex := make(map[string]int)

	first := true
	maxTransformed := 0
	var shortestHyps []model.InflectionHypothesis
	haveShortestHyps := false

	for _, e := range entries {
		if e.IsPrimary {
			out.IsPrimary = true
		}
		if first || e.Score > out.Score {
			out.Score = e.Score
		}
		if first || e.DictionaryIndex < out.DictionaryIndex {
			out.DictionaryIndex = e.DictionaryIndex
		}
		if first || e.DictionaryPriority > out.DictionaryPriority {
			out.DictionaryPriority = e.DictionaryPriority
		}
		first = false

		if e.IsPrimary {
			if e.MaxTransformedTextLength > maxTransformed {
				maxTransformed = e.MaxTransformedTextLength
			}
			if !haveShortestHyps || len(e.InflectionHypotheses) < len(shortestHyps) {
				shortestHyps = e.InflectionHypotheses
				haveShortestHyps = true
			}
		}

		localMap := make(map[int]int, len(e.Headwords))
		for li, hw := range e.Headwords {
			key := headwordKey{hw.Term, hw.Reading}
			if gi, ok := headwordIndex[key]; ok {
				mergeHeadword(&out.Headwords[gi], hw)
				localMap[li] = gi
				continue
			}
			gi := len(out.Headwords)
			copied := hw
			copied.Index = gi
			out.Headwords = append(out.Headwords, copied)
			headwordIndex[key] = gi
			localMap[li] = gi
		}

		for _, def := range e.Definitions {
			remapped := remapIndices(def.HeadwordIndices, localMap)

			if !checkDuplicateDefinitions {
				clone := def
				clone.HeadwordIndices = remapped
				clone.Index = len(out.Definitions)
				out.Definitions = append(out.Definitions, clone)
				continue
			}

			key := definitionKey(def)
			if gi, ok := defIndex[key]; ok {
				existing := &out.Definitions[gi]
				existing.Sequences = mergeInt64Unique(existing.Sequences, def.Sequences...)
				existing.TagGroups = mergeTagGroups(existing.TagGroups, def.TagGroups)
				existing.HeadwordIndices = mergeIntsUnique(existing.HeadwordIndices, remapped...)
				if def.IsPrimary {
					existing.IsPrimary = true
				}
				continue
			}
			clone := def
			clone.Sequences = append([]int64(nil), def.Sequences...)
			clone.Entries = append([]model.DefinitionEntry(nil), def.Entries...)
			clone.HeadwordIndices = remapped
			clone.Index = len(out.Definitions)
			defIndex[key] = len(out.Definitions)
			out.Definitions = append(out.Definitions, clone)
		}
	}

	out.MaxTransformedTextLength = maxTransformed
	out.InflectionHypotheses = shortestHyps
	out.SourceTermExactMatchCount = countExactMatchHeadwords(out.Headwords)
	return out
}

// countExactMatchHeadwords computes source_term_exact_match_count
// directly off the folded headword list:
// the number of headwords with at least one primary source matched on
// the term itself.
func countExactMatchHeadwords(headwords []model.Headword) int {
	count := 0
	for _, hw := range headwords {
		for _, src := range hw.Sources {
			if src.IsPrimary && src.MatchSource == model.MatchSourceTerm {
				count++
				break
			}
		}
	}
	return count
}

func mergeHeadword(dst *model.Headword, src model.Headword) {
	dst.Sources = append(dst.Sources, src.Sources...)
	dst.WordClasses = mergeStringsUnique(dst.WordClasses, src.WordClasses...)
	dst.TagGroups = mergeTagGroups(dst.TagGroups, src.TagGroups)
}

func mergeTagGroups(dst []model.TagGroup, src []model.TagGroup) []model.TagGroup {
	byDict := make(map[string]int, len(dst))
	for i, g := range dst {
		byDict[g.Dictionary] = i
	}
	for _, g := range src {
		if i, ok := byDict[g.Dictionary]; ok {
			dst[i].Names = mergeStringsUnique(dst[i].Names, g.Names...)
			continue
		}
		byDict[g.Dictionary] = len(dst)
		dst = append(dst, model.TagGroup{Dictionary: g.Dictionary, Names: append([]string(nil), g.Names...)})
	}
	return dst
}

func mergeStringsUnique(dst []string, src ...string) []string {
	seen := make(map[string]struct{}, len(dst))
	for _, s := range dst {
		seen[s] = struct{}{}
	}
	for _, s := range src {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		dst = append(dst, s)
	}
	return dst
}

func mergeIntsUnique(dst []int, src ...int) []int {
	seen := make(map[int]struct{}, len(dst))
	for _, v := range dst {
		seen[v] = struct{}{}
	}
	for _, v := range src {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		dst = append(dst, v)
	}
	sort.Ints(dst)
	return dst
}

func mergeInt64Unique(dst []int64, src ...int64) []int64 {
	seen := make(map[int64]struct{}, len(dst))
	for _, v := range dst {
		seen[v] = struct{}{}
	}
	for _, v := range src {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		dst = append(dst, v)
	}
	return dst
}

func remapIndices(indices []int, localMap map[int]int) []int {
	out := make([]int, 0, len(indices))
	seen := make(map[int]struct{}, len(indices))
	for _, li := range indices {
		gi := localMap[li]
		if _, ok := seen[gi]; ok {
			continue
		}
		seen[gi] = struct{}{}
		out = append(out, gi)
	}
	sort.Ints(out)
	return out
}

// definitionKey identifies a definition for duplicate detection: same
// dictionary, same content entries.
func definitionKey(def model.TermDefinition) string {
	var b strings.Builder
	b.WriteString(def.Dictionary)
	for _, c := range def.Entries {
		b.WriteByte('\x00')
		b.WriteString(c.Kind)
		b.WriteByte('\x00')
		b.WriteString(c.Text)
		b.WriteByte('\x00')
		b.WriteString(c.URL)
	}
	return b.String()
}

// hypothesesKey canonicalizes an inflection-hypothesis list for use as
// part of a grouping key, treating each hypothesis's inflection chain as
// a set (per model.SameInflections) and the list itself as order
// insensitive.
func hypothesesKey(hyps []model.InflectionHypothesis) string {
	parts := make([]string, len(hyps))
	for i, h := range hyps {
		names := append([]string(nil), h.Inflections...)
		sort.Strings(names)
		parts[i] = strings.Join(names, ",")
	}
	sort.Strings(parts)
	return strings.Join(parts, ";")
}

// GroupByHeadword implements the "group by headword" mode used by
// group/split/simple results and by the leftover-ungrouped tail of a
// sequence merge: entries sharing (term, reading, inflection_hypotheses)
// fold together with no duplicate-definition detection.
func GroupByHeadword(entries []model.TermDictionaryEntry) []model.TermDictionaryEntry {
	type bucket struct {
		key     string
		members []model.TermDictionaryEntry
	}
	order := make([]string, 0)
	buckets := make(map[string]*bucket)

	for _, e := range entries {
		if len(e.Headwords) == 0 {
			continue
		}
		hw := e.Headwords[0]
		key := hw.Term + "\x00" + hw.Reading + "\x00" + hypothesesKey(e.InflectionHypotheses)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{key: key}
			buckets[key] = b
			order = append(order, key)
		}
		b.members = append(b.members, e)
	}

	out := make([]model.TermDictionaryEntry, 0, len(order))
	for _, key := range order {
		out = append(out, FoldEntries(buckets[key].members, false))
	}
	return out
}

// Merger resolves merge-mode grouping ("merge by sequence"), which
// needs the database to backfill group members from other dictionaries.
type Merger struct {
	store store.Store
}

// NewMerger builds a Merger over st.
func NewMerger(st store.Store) *Merger {
	return &Merger{store: st}
}

// MergeBySequence implements the six-step algorithm: partition by
// main-dictionary sequence, backfill via sequence lookup, absorb
// ungrouped entries by matching headword, fall back to a secondary-search
// exact lookup for anything still unmatched, sort each group by
// definition id, then fold with duplicate-definition detection on.
func (m *Merger) MergeBySequence(ctx context.Context, entries []model.TermDictionaryEntry, mainDictionary string, enabled map[string]store.DictionaryDetails) ([]model.TermDictionaryEntry, error) {
	type group struct {
		sequence int64
		members  []model.TermDictionaryEntry
	}

	groupOrder := make([]int64, 0)
	groups := make(map[int64]*group)
	ungrouped := make(map[int64]model.TermDictionaryEntry) // keyed by definition id
	ungroupedOrder := make([]int64, 0)

	for _, e := range entries {
		seq, ok := mainDictionarySequence(e, mainDictionary)
		if !ok {
			for _, def := range e.Definitions {
				if _, seen := ungrouped[def.ID]; !seen {
					ungroupedOrder = append(ungroupedOrder, def.ID)
				}
				ungrouped[def.ID] = e
			}
			continue
		}
		g, exists := groups[seq]
		if !exists {
			g = &group{sequence: seq}
			groups[seq] = g
			groupOrder = append(groupOrder, seq)
		}
		g.members = append(g.members, e)
	}

	// Step 2: bulk-query by sequence; absorb any returned hit not
	// already present as a group member.
	if len(groupOrder) > 0 {
		queries := make([]store.SequenceQuery, len(groupOrder))
		for i, seq := range groupOrder {
			queries[i] = store.SequenceQuery{Query: seq, Dictionary: mainDictionary}
		}
		hits, err := m.store.FindTermsBySequenceBulk(ctx, queries)
		if err != nil {
			return nil, err
		}
		builder := assemble.New()
		for _, hit := range hits {
			seq := groupOrder[hit.Index]
			g := groups[seq]
			if groupHasDatabaseID(g.members, hit.ID) {
				continue
			}
			g.members = append(g.members, builder.Build(nonPrimaryInput(hit, enabled)))
		}
	}

	// Step 3: absorb ungrouped entries matching a group headword.
	for _, seq := range groupOrder {
		g := groups[seq]
		for _, hw := range g.members[0].Headwords {
			for _, id := range ungroupedOrder {
				cand, ok := ungrouped[id]
				if !ok || len(cand.Headwords) == 0 {
					continue
				}
				if cand.Headwords[0].Term != hw.Term || cand.Headwords[0].Reading != hw.Reading {
					continue
				}
				g.members = append(g.members, cand)
				delete(ungrouped, id)
			}
		}
	}

	// Step 4: fall back to a secondary-search exact lookup for anything
	// still unmatched.
	if len(ungrouped) > 0 {
		secondary := secondaryDictionaries(enabled)
		if len(secondary) > 0 {
			var pairs []store.TermReadingPair
			var remaining []int64
			for _, id := range ungroupedOrder {
				cand, ok := ungrouped[id]
				if !ok || len(cand.Headwords) == 0 {
					continue
				}
				hw := cand.Headwords[0]
				pairs = append(pairs, store.TermReadingPair{Term: hw.Term, Reading: hw.Reading})
				remaining = append(remaining, id)
			}
			if len(pairs) > 0 {
				hits, err := m.store.FindTermsExactBulk(ctx, pairs, secondary)
				if err != nil {
					return nil, err
				}
				builder := assemble.New()
				for _, hit := range hits {
					for _, seq := range groupOrder {
						g := groups[seq]
						for _, hw := range g.members[0].Headwords {
							if hw.Term == hit.Term && hw.Reading == hit.Reading {
								g.members = append(g.members, builder.Build(nonPrimaryInput(hit, enabled)))
							}
						}
					}
				}
			}
		}
	}

	// Step 5/6: sort each group by definition id, fold with duplicate
	// detection, then append the still-ungrouped tail grouped by
	// headword.
	out := make([]model.TermDictionaryEntry, 0, len(groupOrder)+len(ungroupedOrder))
	for _, seq := range groupOrder {
		g := groups[seq]
		sort.Slice(g.members, func(i, j int) bool {
			return firstDefinitionID(g.members[i]) < firstDefinitionID(g.members[j])
		})
		out = append(out, FoldEntries(g.members, true))
	}

	var leftover []model.TermDictionaryEntry
	for _, id := range ungroupedOrder {
		if e, ok := ungrouped[id]; ok {
			leftover = append(leftover, e)
		}
	}
	out = append(out, GroupByHeadword(leftover)...)

	return out, nil
}

func mainDictionarySequence(e model.TermDictionaryEntry, mainDictionary string) (int64, bool) {
	for _, def := range e.Definitions {
		if def.Dictionary == mainDictionary {
			for _, seq := range def.Sequences {
				if seq >= 0 {
					return seq, true
				}
			}
		}
	}
	return 0, false
}

func firstDefinitionID(e model.TermDictionaryEntry) int64 {
	if len(e.Definitions) == 0 {
		return 0
	}
	return e.Definitions[0].ID
}

func groupHasDatabaseID(members []model.TermDictionaryEntry, id int64) bool {
	for _, e := range members {
		for _, def := range e.Definitions {
			if def.ID == id {
				return true
			}
		}
	}
	return false
}

func secondaryDictionaries(enabled map[string]store.DictionaryDetails) map[string]store.DictionaryDetails {
	out := make(map[string]store.DictionaryDetails)
	for name, details := range enabled {
		if details.AllowSecondarySearches {
			out[name] = details
		}
	}
	return out
}

func nonPrimaryInput(hit model.DatabaseEntry, enabled map[string]store.DictionaryDetails) assemble.Input {
	return assemble.Input{
		Entry:           hit,
		OriginalText:    hit.Term,
		TransformedText: hit.Term,
		DeinflectedText: hit.Term,
		IsPrimary:       false,
		Enabled:         enabled,
	}
}

// ExcludeDictionaries implements exclude_dictionary_definitions: strips
// every definition (and its pronunciations/frequencies) belonging to a
// named dictionary, drops tag groups those dictionaries contributed, and
// collapses headwords no definition references any longer. An entry left
// with zero definitions is dropped entirely.
func ExcludeDictionaries(entries []model.TermDictionaryEntry, excluded map[string]struct{}) []model.TermDictionaryEntry {
	if len(excluded) == 0 {
		return entries
	}

	out := make([]model.TermDictionaryEntry, 0, len(entries))
	for _, e := range entries {
		keptDefs := make([]model.TermDefinition, 0, len(e.Definitions))
		referenced := make(map[int]struct{})
		for _, def := range e.Definitions {
			if _, excludeIt := excluded[def.Dictionary]; excludeIt {
				continue
			}
			keptDefs = append(keptDefs, def)
			for _, hi := range def.HeadwordIndices {
				referenced[hi] = struct{}{}
			}
		}
		if len(keptDefs) == 0 {
			continue
		}

		keptPron := make([]model.Pronunciation, 0, len(e.Pronunciations))
		for _, p := range e.Pronunciations {
			if _, excludeIt := excluded[p.Dictionary]; excludeIt {
				continue
			}
			keptPron = append(keptPron, p)
			referenced[p.HeadwordIndex] = struct{}{}
		}

		keptFreq := make([]model.Frequency, 0, len(e.Frequencies))
		for _, f := range e.Frequencies {
			if _, excludeIt := excluded[f.Dictionary]; excludeIt {
				continue
			}
			keptFreq = append(keptFreq, f)
			referenced[f.HeadwordIndex] = struct{}{}
		}

		newIndex := make(map[int]int)
		keptHeadwords := make([]model.Headword, 0, len(e.Headwords))
		for i, hw := range e.Headwords {
			if _, keep := referenced[i]; !keep {
				continue
			}
			hw.TagGroups = filterTagGroups(hw.TagGroups, excluded)
			newIndex[i] = len(keptHeadwords)
			hw.Index = len(keptHeadwords)
			keptHeadwords = append(keptHeadwords, hw)
		}

		for i := range keptDefs {
			keptDefs[i].TagGroups = filterTagGroups(keptDefs[i].TagGroups, excluded)
			keptDefs[i].HeadwordIndices = reindex(keptDefs[i].HeadwordIndices, newIndex)
		}
		for i := range keptPron {
			keptPron[i].HeadwordIndex = newIndex[keptPron[i].HeadwordIndex]
		}
		for i := range keptFreq {
			keptFreq[i].HeadwordIndex = newIndex[keptFreq[i].HeadwordIndex]
		}

		e.Headwords = keptHeadwords
		e.Definitions = keptDefs
		e.Pronunciations = keptPron
		e.Frequencies = keptFreq
		out = append(out, e)
	}
	return out
}

func filterTagGroups(groups []model.TagGroup, excluded map[string]struct{}) []model.TagGroup {
	out := make([]model.TagGroup, 0, len(groups))
	for _, g := range groups {
		if _, excludeIt := excluded[g.Dictionary]; excludeIt {
			continue
		}
		out = append(out, g)
	}
	return out
}

func reindex(indices []int, newIndex map[int]int) []int {
	out := make([]int, 0, len(indices))
	for _, i := range indices {
		if ni, ok := newIndex[i]; ok {
			out = append(out, ni)
		}
	}
	sort.Ints(out)
	return out
}
