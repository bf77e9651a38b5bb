// Package engine is the top-level facade over the dictionary lookup
// pipeline: it wires the text-variant generator, deinflector, term
// finder, grouper/merger, enricher, sorter, and kanji finder behind the
// four operations of the Core API.
package engine

import (
	"context"
	"crypto/rand"
	"fmt"
	"strconv"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/kanjidict/dictcore/pkg/dictcore/deinflect"
	"github.com/kanjidict/dictcore/pkg/dictcore/direrr"
	"github.com/kanjidict/dictcore/pkg/dictcore/enrich"
	"github.com/kanjidict/dictcore/pkg/dictcore/finder"
	"github.com/kanjidict/dictcore/pkg/dictcore/group"
	"github.com/kanjidict/dictcore/pkg/dictcore/kanji"
	"github.com/kanjidict/dictcore/pkg/dictcore/model"
	"github.com/kanjidict/dictcore/pkg/dictcore/sortentries"
	"github.com/kanjidict/dictcore/pkg/dictcore/store"
	"github.com/kanjidict/dictcore/pkg/dictcore/tagcache"
	"github.com/kanjidict/dictcore/pkg/dictcore/textvariant"
)

// partOfSpeechCategory is the tag category the redundancy flagger walks,
// per the dictionary convention that part-of-speech tags are grouped
// under this category name.
const partOfSpeechCategory = "partOfSpeech"

// Engine composes one store with the pipeline stages that turn raw
// database hits into the entries the Core API returns. It holds the
// tag cache, the one piece of call-spanning state the core keeps.
type Engine struct {
	store       store.Store
	finder      *finder.Finder
	merger      *group.Merger
	enricher    *enrich.Enricher
	kanjiFinder *kanji.Finder
	tagCache    *tagcache.Cache
	logger      *zap.Logger
	entropy     *ulid.MonotonicEntropy
}

// Options configures an Engine.
type Options struct {
	Store             store.Store
	DeinflectionRules []deinflect.Rule
	Transforms        []textvariant.Transform
	TagCacheSize      int // defaults to 4096 when zero
	Logger            *zap.Logger // defaults to zap.NewNop() when nil
}

// New builds an Engine over opts.Store, sharing one tag cache across
// every pipeline stage that resolves tag metadata.
func New(opts Options) *Engine {
	size := opts.TagCacheSize
	if size <= 0 {
		size = 4096
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	tagCache := tagcache.New(size)
	deinflector := deinflect.New(opts.DeinflectionRules)

	return &Engine{
		store:       opts.Store,
		finder:      finder.New(opts.Store, deinflector, tagCache, opts.Transforms),
		merger:      group.NewMerger(opts.Store),
		enricher:    enrich.New(opts.Store, tagCache),
		kanjiFinder: kanji.New(opts.Store, tagCache),
		tagCache:    tagCache,
		logger:      logger,
		entropy:     ulid.Monotonic(rand.Reader, 0),
	}
}

// Close releases the underlying store.
func (e *Engine) Close() error {
	return e.store.Close()
}

// traceID mints a request-scoped id used only for log correlation; it
// never enters the data model.
func (e *Engine) traceID() string {
	return ulid.MustNew(ulid.Now(), e.entropy).String()
}

// FindTermsResult is what FindTerms returns: `{entries, original_text_length}`.
type FindTermsResult struct {
	Entries            []model.TermDictionaryEntry
	OriginalTextLength int
}

// FindTerms implements the `find_terms(mode, text, options)` operation:
// it runs the term finder (E), then dispatches mode into the grouper or
// merger (G), strips excluded dictionaries, enriches (H), and sorts (I).
func (e *Engine) FindTerms(ctx context.Context, mode finder.Mode, text string, opts finder.Options) (FindTermsResult, error) {
	trace := e.traceID()
	logger := e.logger.With(zap.String("trace_id", trace), zap.String("mode", string(mode)))
	logger.Debug("find_terms started", zap.Int("text_length", len(text)))

	if mode == finder.ModeMerge && opts.MainDictionary == "" {
		return FindTermsResult{}, fmt.Errorf("find_terms: %w", direrr.ErrMissingMainDictionary)
	}

	raw, err := e.finder.FindTerms(ctx, text, opts)
	if err != nil {
		logger.Error("term finder failed", zap.Error(err))
		return FindTermsResult{}, err
	}

	entries, err := e.groupOrMerge(ctx, mode, raw.Entries, opts)
	if err != nil {
		logger.Error("grouping/merging failed", zap.Error(err))
		return FindTermsResult{}, err
	}

	if len(opts.ExcludeDictionaryDefinitions) > 0 {
		entries = group.ExcludeDictionaries(entries, opts.ExcludeDictionaryDefinitions)
	}

	entries, err = e.enricher.EnrichTerms(ctx, entries, opts.EnabledDictionaryMap)
	if err != nil {
		logger.Error("term enrichment failed", zap.Error(err))
		return FindTermsResult{}, err
	}
	entries, err = e.enricher.ExpandTags(ctx, entries)
	if err != nil {
		logger.Error("tag expansion failed", zap.Error(err))
		return FindTermsResult{}, err
	}

	if opts.SortFrequencyDictionary != "" {
		direction := sortentries.Ascending
		if opts.SortFrequencyDictionaryOrder == finder.SortDescending {
			direction = sortentries.Descending
		}
		sortentries.ReorderByFrequency(entries, opts.SortFrequencyDictionary, direction)
	}

	for i := range entries {
		sortentries.FlagRedundantPartsOfSpeech(&entries[i], partOfSpeechCategory)
	}

	sortentries.Sort(entries)

	logger.Debug("find_terms finished", zap.Int("entry_count", len(entries)))
	return FindTermsResult{Entries: entries, OriginalTextLength: raw.OriginalTextLength}, nil
}

// groupOrMerge implements the mode dispatch: group, split, and simple
// all fold candidates by headword; merge instead folds by the main
// dictionary's sequence number.
func (e *Engine) groupOrMerge(ctx context.Context, mode finder.Mode, entries []model.TermDictionaryEntry, opts finder.Options) ([]model.TermDictionaryEntry, error) {
	if mode == finder.ModeMerge {
		return e.merger.MergeBySequence(ctx, entries, opts.MainDictionary, opts.EnabledDictionaryMap)
	}
	return group.GroupByHeadword(entries), nil
}

// FindKanji implements `find_kanji(text, options)`, delegating to
// component J.
func (e *Engine) FindKanji(ctx context.Context, text string, opts kanji.Options) ([]model.KanjiDictionaryEntry, error) {
	trace := e.traceID()
	logger := e.logger.With(zap.String("trace_id", trace))
	logger.Debug("find_kanji started", zap.Int("text_length", len(text)))

	entries, err := e.kanjiFinder.FindKanji(ctx, text, opts)
	if err != nil {
		logger.Error("kanji finder failed", zap.Error(err))
		return nil, err
	}

	logger.Debug("find_kanji finished", zap.Int("entry_count", len(entries)))
	return entries, nil
}

// TermFrequencyQuery is one (term, reading) pair requested from
// GetTermFrequencies; Reading may be empty to request every reading's
// frequency.
type TermFrequencyQuery struct {
	Term    string
	Reading string
}

// TermFrequency is one flattened `{term, reading, dictionary, has_reading,
// frequency}` record returned by GetTermFrequencies.
type TermFrequency struct {
	Term       string
	Reading    string
	Dictionary string
	HasReading bool
	Frequency  float64
}

// GetTermFrequencies implements `get_term_frequencies`: bulk-query term
// meta for the requested terms, keep only `mode == "freq"` rows, and
// flatten each surviving row into one tuple (a dictionary with several
// freq rows for a query yields several tuples), applying the reading
// filter ("only the matching-reading variant applies").
func (e *Engine) GetTermFrequencies(ctx context.Context, queries []TermFrequencyQuery, enabled map[string]store.DictionaryDetails) ([]TermFrequency, error) {
	if len(queries) == 0 {
		return nil, nil
	}

	terms := make([]string, len(queries))
	for i, q := range queries {
		terms[i] = q.Term
	}

	rows, err := e.store.FindTermMetaBulk(ctx, terms, enabled)
	if err != nil {
		return nil, err
	}

	var out []TermFrequency
	for _, row := range rows {
		if row.Mode != "freq" {
			continue
		}
		q := queries[row.Index]
		value, hasReading, ok := decodeFrequency(row.Data, q.Reading)
		if !ok {
			continue
		}
		out = append(out, TermFrequency{
			Term:       q.Term,
			Reading:    q.Reading,
			Dictionary: row.Dictionary,
			HasReading: hasReading,
			Frequency:  value,
		})
	}
	return out, nil
}

// decodeFrequency mirrors the three-shape frequency decode:
// a bare number/string, a {value, display_value} object, or a
// {reading, frequency} object. The third shape only applies when its
// reading matches wantReading (or wantReading is empty). The final bool
// reports whether a usable value was found at all.
func decodeFrequency(data any, wantReading string) (value float64, hasReading bool, ok bool) {
	switch v := data.(type) {
	case map[string]any:
		if reading, readingOK := v["reading"].(string); readingOK {
			if wantReading != "" && reading != wantReading {
				return 0, false, false
			}
			n, ok := numeric(v["frequency"])
			return n, true, ok
		}
		n, ok := numeric(v["value"])
		return n, false, ok
	default:
		n, ok := numeric(data)
		return n, false, ok
	}
}

func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// ClearDatabaseCaches implements `clear_database_caches()`: drops the
// tag cache wholesale, per the shared-resource policy.
func (e *Engine) ClearDatabaseCaches() {
	e.tagCache.Purge()
}
