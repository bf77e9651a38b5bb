// Package kanji implements component J: the kanji finder, "a simpler
// sibling of E-I for single-character entries" that shares the
// dictionary query interface (D), metadata enricher (H), and sorter (I)
// with the term-lookup pipeline.
package kanji

import (
	"context"
	"sort"
	"strings"

	"github.com/kanjidict/dictcore/pkg/dictcore/enrich"
	"github.com/kanjidict/dictcore/pkg/dictcore/model"
	"github.com/kanjidict/dictcore/pkg/dictcore/store"
	"github.com/kanjidict/dictcore/pkg/dictcore/tagcache"
)

// Finder resolves kanji characters against one or more dictionaries.
type Finder struct {
	store    store.Store
	tagCache *tagcache.Cache
	enricher *enrich.Enricher
}

// New builds a Finder sharing the given store and tag cache with the
// rest of the pipeline (the tag cache is process-scoped).
func New(st store.Store, tagCache *tagcache.Cache) *Finder {
	return &Finder{store: st, tagCache: tagCache, enricher: enrich.New(st, tagCache)}
}

// Options configures FindKanji.
type Options struct {
	EnabledDictionaryMap map[string]store.DictionaryDetails
}

// FindKanji deduplicates the input into a set of
// characters, bulk-query, sort by batch index, build one entry per hit,
// expand stats by tag metadata grouped by category, attach kanji freq
// meta, expand tags, and sort.
func (f *Finder) FindKanji(ctx context.Context, text string, opts Options) ([]model.KanjiDictionaryEntry, error) {
	chars := uniqueCharacters(text)
	if len(chars) == 0 {
		return nil, nil
	}

	hits, err := f.store.FindKanjiBulk(ctx, chars, opts.EnabledDictionaryMap)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Index < hits[j].Index })

	entries := make([]model.KanjiDictionaryEntry, len(hits))
	for i, hit := range hits {
		entries[i] = buildEntry(hit, opts.EnabledDictionaryMap)
	}

	if err := f.expandStats(ctx, entries); err != nil {
		return nil, err
	}

	freqByChar, err := f.enricher.EnrichKanjiFrequencies(ctx, chars, opts.EnabledDictionaryMap)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Frequencies = append(entries[i].Frequencies, freqByChar[entries[i].Character]...)
	}

	if err := f.expandTags(ctx, entries); err != nil {
		return nil, err
	}

	sortKanjiEntries(entries)
	return entries, nil
}

// uniqueCharacters splits text into runes and returns each distinct
// character once, in first-occurrence order.
func uniqueCharacters(text string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range text {
		c := string(r)
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// buildEntry converts one raw kanji-bank hit into an assembled entry,
// per the DatabaseEntry kanji-row field reuse documented in
// pkg/dictcore/model.
func buildEntry(hit model.DatabaseEntry, enabled map[string]store.DictionaryDetails) model.KanjiDictionaryEntry {
	details := enabled[hit.Dictionary]
	entry := model.KanjiDictionaryEntry{
		Character:          hit.Term,
		Onyomi:             hit.TermTags,
		Kunyomi:            hit.WordClasses,
		Dictionary:         hit.Dictionary,
		DictionaryIndex:    details.Index,
		DictionaryPriority: details.Priority,
		TagGroups:          []model.TagGroup{{Dictionary: hit.Dictionary, Names: hit.DefinitionTags}},
		Definitions:        hit.Glosses,
	}
	for _, rule := range hit.Rules {
		name, value, ok := strings.Cut(rule, ":")
		if !ok {
			continue
		}
		entry.Stats = append(entry.Stats, model.KanjiStat{Name: name, Value: value})
	}
	return entry
}

// expandStats resolves each stat's category through the tag cache,
// keyed on the stat name, per "expand stats by tag metadata grouped by
// category".
func (f *Finder) expandStats(ctx context.Context, entries []model.KanjiDictionaryEntry) error {
	for i := range entries {
		entry := &entries[i]
		if len(entry.Stats) == 0 {
			continue
		}
		queries := make([]store.TagQuery, len(entry.Stats))
		for si, stat := range entry.Stats {
			queries[si] = store.TagQuery{Query: stat.Name, Dictionary: entry.Dictionary}
		}
		tags, err := f.tagCache.Resolve(ctx, f.store, queries)
		if err != nil {
			return err
		}
		for si := range entry.Stats {
			entry.Stats[si].Category = tags[si].Category
		}
	}
	return nil
}

// expandTags resolves every kanji tag name referenced by an entry's
// TagGroups, mirroring enrich.ExpandTags' collect/resolve/merge/sort
// shape but over KanjiDictionaryEntry's flatter tag-group list.
func (f *Finder) expandTags(ctx context.Context, entries []model.KanjiDictionaryEntry) error {
	for i := range entries {
		entry := &entries[i]

		var queries []store.TagQuery
		seen := make(map[store.TagQuery]bool)
		for _, g := range entry.TagGroups {
			for _, name := range g.Names {
				q := store.TagQuery{Query: name, Dictionary: g.Dictionary}
				if seen[q] {
					continue
				}
				seen[q] = true
				queries = append(queries, q)
			}
		}
		if len(queries) == 0 {
			continue
		}

		tags, err := f.tagCache.Resolve(ctx, f.store, queries)
		if err != nil {
			return err
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
	return nil
}

// sortKanjiEntries applies the sorter's entry-level keys that still
// apply to a kanji entry: descending dictionary_priority, ascending
// dictionary_index, matching the final clause of the entry
// comparator (kanji entries carry no score/frequency_order/hypotheses to
// break ties on beforehand).
func sortKanjiEntries(entries []model.KanjiDictionaryEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.DictionaryPriority != b.DictionaryPriority {
			return a.DictionaryPriority > b.DictionaryPriority
		}
		return a.DictionaryIndex < b.DictionaryIndex
	})
}
