// Package enrich implements component H: three bulk passes that attach
// frequency, pitch-accent, IPA, and expanded tag information onto
// already-assembled and grouped term dictionary entries.
package enrich

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/temporal-IPA/tipa/pkg/phonodict"

	"github.com/kanjidict/dictcore/pkg/dictcore/model"
	"github.com/kanjidict/dictcore/pkg/dictcore/store"
	"github.com/kanjidict/dictcore/pkg/dictcore/tagcache"
)

// Enricher bundles the store and tag cache every bulk pass needs.
type Enricher struct {
	store    store.Store
	tagCache *tagcache.Cache
}

// New builds an Enricher.
func New(st store.Store, tagCache *tagcache.Cache) *Enricher {
	return &Enricher{store: st, tagCache: tagCache}
}

// EnrichTerms runs the term-meta bulk pass: collect the
// unique headword terms across entries, issue one find_term_meta_bulk
// call, and distribute the resulting freq/pitch/ipa records onto every
// matching headword.
func (en *Enricher) EnrichTerms(ctx context.Context, entries []model.TermDictionaryEntry, enabled map[string]store.DictionaryDetails) ([]model.TermDictionaryEntry, error) {
	terms, occurrences := collectHeadwordTerms(entries)
	if len(terms) == 0 {
		return entries, nil
	}

	rows, err := en.store.FindTermMetaBulk(ctx, terms, enabled)
	if err != nil {
		return nil, err
	}

	ipaByDictionary := make(map[string]*phonodict.Representation)

	for _, row := range rows {
		term := terms[row.Index]
		for _, occ := range occurrences[term] {
			entry := &entries[occ.entryIndex]
			hw := entry.Headwords[occ.headwordIndex]
			switch row.Mode {
			case "freq":
				if freq, ok := parseFrequency(row.Data, hw.Reading); ok {
					freq.HeadwordIndex = occ.headwordIndex
					freq.Dictionary = row.Dictionary
					details := enabled[row.Dictionary]
					freq.DictionaryIndex = details.Index
					freq.DictionaryPriority = details.Priority
					entry.Frequencies = append(entry.Frequencies, freq)
				}
			case "pitch":
				if pitch, ok := parsePitch(row.Data); ok {
					pitch.HeadwordIndex = occ.headwordIndex
					attachPronunciation(entry, occ.headwordIndex, row.Dictionary, enabled, func(p *model.Pronunciation) {
						p.Pitches = append(p.Pitches, pitch)
					})
				}
			case "ipa":
				// Route every raw transcription through a phonodict
				// Representation keyed by dictionary, so a dictionary
				// that reports the same transcription twice for a term
				// (e.g. once per homograph row) only attaches it once.
				rep := ipaByDictionary[row.Dictionary]
				if rep == nil {
					rep = phonodict.NewRepresentation()
					ipaByDictionary[row.Dictionary] = rep
				}
				for _, ipa := range parseIPAStrings(row.Data) {
					rep.Entries[term] = appendUniqueIPA(rep.Entries[term], ipa)
				}
				for _, ipa := range rep.Entries[term] {
					transcription := model.PhoneticTranscription{HeadwordIndex: occ.headwordIndex, IPA: ipa}
					attachPronunciation(entry, occ.headwordIndex, row.Dictionary, enabled, func(p *model.Pronunciation) {
						for _, existing := range p.PhoneticTranscriptions {
							if existing.IPA == transcription.IPA {
								return
							}
						}
						p.PhoneticTranscriptions = append(p.PhoneticTranscriptions, transcription)
					})
				}
			}
		}
	}

	return entries, nil
}

// EnrichKanjiFrequencies runs the kanji-meta bulk pass ("attach kanji
// freq meta"): keyed by character, freq mode only.
// Shared with the kanji finder (component J).
func (en *Enricher) EnrichKanjiFrequencies(ctx context.Context, chars []string, enabled map[string]store.DictionaryDetails) (map[string][]model.Frequency, error) {
	rows, err := en.store.FindKanjiMetaBulk(ctx, chars, enabled)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]model.Frequency)
	for _, row := range rows {
		if row.Mode != "freq" {
			continue
		}
		freq, ok := parseFrequency(row.Data, "")
		if !ok {
			continue
		}
		freq.Dictionary = row.Dictionary
		details := enabled[row.Dictionary]
		freq.DictionaryIndex = details.Index
		freq.DictionaryPriority = details.Priority
		out[row.Character] = append(out[row.Character], freq)
	}
	return out, nil
}

// ExpandTags collects every (dictionary, tag_name)
// pair referenced by an entry's headwords, definitions, pitches, and
// transcriptions, resolve each once through the tag cache (which itself
// truncates the query at the first ':' and coalesces duplicates), then
// merge same-(name, category) tags and sort by (order, name).
func (en *Enricher) ExpandTags(ctx context.Context, entries []model.TermDictionaryEntry) ([]model.TermDictionaryEntry, error) {
	for i := range entries {
		entry := &entries[i]

		var queries []store.TagQuery
		seen := make(map[store.TagQuery]bool)
		add := func(dictionary, name string) {
			q := store.TagQuery{Query: tagQueryKey(name), Dictionary: dictionary}
			if seen[q] {
				return
			}
			seen[q] = true
			queries = append(queries, q)
		}

		for _, hw := range entry.Headwords {
			for _, g := range hw.TagGroups {
				for _, n := range g.Names {
					add(g.Dictionary, n)
				}
			}
		}
		for _, def := range entry.Definitions {
			for _, g := range def.TagGroups {
				for _, n := range g.Names {
					add(g.Dictionary, n)
				}
			}
		}
		for _, p := range entry.Pronunciations {
			for _, pitch := range p.Pitches {
				for _, g := range pitch.TagGroups {
					for _, n := range g.Names {
						add(g.Dictionary, n)
					}
				}
			}
			for _, t := range p.PhoneticTranscriptions {
				for _, g := range t.TagGroups {
					for _, n := range g.Names {
						add(g.Dictionary, n)
					}
				}
			}
		}

		if len(queries) == 0 {
			continue
		}

		tags, err := en.tagCache.Resolve(ctx, en.store, queries)
		if err != nil {
			return nil, err
		}

		merged := make(map[string]*model.Tag)
		var order []string
		for _, tag := range tags {
			key := tag.Category + "\x00" + tag.Name
			if existing, ok := merged[key]; ok {
				model.MergeTag(existing, tag)
				continue
			}
			t := tag
			merged[key] = &t
			order = append(order, key)
		}

		entry.Tags = make([]model.Tag, 0, len(order))
		for _, key := range order {
			entry.Tags = append(entry.Tags, *merged[key])
		}
		sort.Slice(entry.Tags, func(a, b int) bool {
			if entry.Tags[a].Order != entry.Tags[b].Order {
				return entry.Tags[a].Order < entry.Tags[b].Order
			}
			return entry.Tags[a].Name < entry.Tags[b].Name
		})
	}
	return entries, nil
}

// tagQueryKey truncates a tag name at its first ':'.
func tagQueryKey(name string) string {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return name[:i]
	}
	return name
}

type occurrence struct {
	entryIndex    int
	headwordIndex int
}

// collectHeadwordTerms flattens every headword term across entries into
// a deduplicated query list, tracking every (entry, headword) position
// each term occurs at so bulk results can fan back out.
func collectHeadwordTerms(entries []model.TermDictionaryEntry) ([]string, map[string][]occurrence) {
	var terms []string
	seen := make(map[string]bool)
	occurrences := make(map[string][]occurrence)

	for ei, e := range entries {
		for hi, hw := range e.Headwords {
			occurrences[hw.Term] = append(occurrences[hw.Term], occurrence{entryIndex: ei, headwordIndex: hi})
			if !seen[hw.Term] {
				seen[hw.Term] = true
				terms = append(terms, hw.Term)
			}
		}
	}
	return terms, occurrences
}

// attachPronunciation finds or creates the Pronunciation record for
// (headwordIndex, dictionary) on entry and applies mutate to it — a
// Pronunciation bundles the pitch and IPA records contributed for one
// headword by one dictionary.
func attachPronunciation(entry *model.TermDictionaryEntry, headwordIndex int, dictionary string, enabled map[string]store.DictionaryDetails, mutate func(*model.Pronunciation)) {
	for i := range entry.Pronunciations {
		p := &entry.Pronunciations[i]
		if p.Dictionary == dictionary && p.HeadwordIndex == headwordIndex {
			mutate(p)
			return
		}
	}
	details := enabled[dictionary]
	p := model.Pronunciation{
		Index:              len(entry.Pronunciations),
		HeadwordIndex:      headwordIndex,
		Dictionary:         dictionary,
		DictionaryIndex:    details.Index,
		DictionaryPriority: details.Priority,
	}
	mutate(&p)
	entry.Pronunciations = append(entry.Pronunciations, p)
}

// parseFrequency decodes the three shapes find_term_meta_bulk's "freq"
// mode may return: a bare number/string, {value, display_value}, or
// {reading, frequency} (only applied when reading matches).
func parseFrequency(data any, wantReading string) (model.Frequency, bool) {
	switch v := data.(type) {
	case float64:
		return model.Frequency{FrequencyValue: v, DisplayValue: formatFrequency(v), DisplayValueParsed: true}, true
	case string:
		return stringFrequency(v), true
	case map[string]any:
		if reading, ok := v["reading"]; ok {
			if wantReading == "" || fmt.Sprint(reading) != wantReading {
				return model.Frequency{}, false
			}
			freq, ok := parseFrequency(v["frequency"], wantReading)
			freq.HasReading = true
			return freq, ok
		}
		if value, ok := v["value"]; ok {
			freq, _ := parseFrequency(value, wantReading)
			if display, ok := v["display_value"]; ok {
				freq.DisplayValue = fmt.Sprint(display)
			}
			return freq, true
		}
	}
	return model.Frequency{}, false
}

func stringFrequency(s string) model.Frequency {
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return model.Frequency{FrequencyValue: n, DisplayValue: s, DisplayValueParsed: true}
	}
	return model.Frequency{DisplayValue: s, DisplayValueParsed: false}
}

func formatFrequency(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// parsePitch decodes a pitch-accent record: {position, nasal_positions,
// devoice_positions, tag_groups}.
func parsePitch(data any) (model.PitchAccent, bool) {
	m, ok := data.(map[string]any)
	if !ok {
		return model.PitchAccent{}, false
	}
	pitch := model.PitchAccent{
		Position:         intField(m["position"]),
		NasalPositions:   intSliceField(m["nasal_positions"]),
		DevoicePositions: intSliceField(m["devoice_positions"]),
	}
	if rawGroups, ok := m["tag_groups"].([]any); ok {
		for _, rg := range rawGroups {
			if gm, ok := rg.(map[string]any); ok {
				pitch.TagGroups = append(pitch.TagGroups, model.TagGroup{
					Dictionary: fmt.Sprint(gm["dictionary"]),
					Names:      stringSliceField(gm["names"]),
				})
			}
		}
	}
	return pitch, true
}

// parseIPAStrings decodes an IPA term-meta payload into its raw
// transcription strings, tolerating either a single string or a list.
func parseIPAStrings(data any) []string {
	switch v := data.(type) {
	case string:
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case map[string]any:
		if ipa, ok := v["ipa"].(string); ok {
			return []string{ipa}
		}
	}
	return nil
}

func appendUniqueIPA(existing []string, ipa string) []string {
	for _, e := range existing {
		if e == ipa {
			return existing
		}
	}
	return append(existing, ipa)
}

func intField(v any) int {
	if f, ok := v.(float64); ok {
		return int(f)
	}
	return 0
}

func intSliceField(v any) []int {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]int, 0, len(raw))
	for _, item := range raw {
		if f, ok := item.(float64); ok {
			out = append(out, int(f))
		}
	}
	return out
}

func stringSliceField(v any) []string {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
