// Package store defines the database-boundary interface this module
// consumes (component D): the seven bulk operations used to resolve
// text against one or more dictionaries, plus Close. The cache-invalidation
// operation is not part of Store; engine.Engine.ClearDatabaseCaches
// purges the tag cache instead.
//
// Every query is index-parallel: callers submit a batch, and results
// carry the 0-based position of the input that produced them, so the
// finder can fan a single variant/deinflection sweep across many
// dictionaries in one round trip.
package store

import (
	"context"

	"github.com/kanjidict/dictcore/pkg/dictcore/model"
)

// DictionaryDetails is one entry of the enabled-dictionary map passed to
// every bulk term/kanji query: which dictionaries participate, in what
// priority order, and whether secondary (related-entry) searches are
// allowed against them.
type DictionaryDetails struct {
	Index                  int
	Priority               int
	AllowSecondarySearches bool
}

// TermReadingPair is one (term, reading) query for find_terms_exact_bulk.
type TermReadingPair struct {
	Term    string
	Reading string
}

// SequenceQuery is one query for find_terms_by_sequence_bulk: look up all
// entries sharing Query as their sequence number within Dictionary.
type SequenceQuery struct {
	Query      int64
	Dictionary string
}

// TagQuery is one query for find_tag_meta_bulk.
type TagQuery struct {
	Query      string
	Dictionary string
}

// MetaResult is one row of find_term_meta_bulk or find_kanji_meta_bulk:
// Mode distinguishes the kind of metadata (e.g. "freq", "pitch", "ipa")
// and Data carries the mode-specific payload, already schema-validated at
// the boundary ("malformed dictionary entries ... rejected by the
// schema layer before entering the core").
type MetaResult struct {
	Index      int // position of the query this row answers
	Character  string // populated for kanji meta rows; empty for term meta
	Mode       string
	Data       any
	Dictionary string
}

// Store is the database query interface consumed by the finder,
// assembler, and enricher (component D). Implementations: memstore (for
// tests) and sqlite (for production use).
type Store interface {
	// FindTermsBulk resolves terms against the enabled dictionaries using
	// matchType (exact|prefix|suffix). Each returned entry's Index is the
	// position of the term in terms that produced it.
	FindTermsBulk(ctx context.Context, terms []string, enabled map[string]DictionaryDetails, matchType model.MatchType) ([]model.DatabaseEntry, error)

	// FindTermsExactBulk resolves (term, reading) pairs exactly.
	FindTermsExactBulk(ctx context.Context, pairs []TermReadingPair, enabled map[string]DictionaryDetails) ([]model.DatabaseEntry, error)

	// FindTermsBySequenceBulk resolves dictionary-assigned sequence
	// numbers to every entry sharing that sequence, used by merge-mode
	// grouping (component G).
	FindTermsBySequenceBulk(ctx context.Context, queries []SequenceQuery) ([]model.DatabaseEntry, error)

	// FindTermMetaBulk resolves per-term metadata (frequency, pitch
	// accent, phonetic transcription) across the enabled dictionaries.
	FindTermMetaBulk(ctx context.Context, terms []string, enabled map[string]DictionaryDetails) ([]MetaResult, error)

	// FindKanjiBulk resolves single kanji characters to their dictionary
	// entries (component J).
	FindKanjiBulk(ctx context.Context, chars []string, enabled map[string]DictionaryDetails) ([]model.DatabaseEntry, error)

	// FindKanjiMetaBulk resolves kanji metadata (e.g. frequency).
	FindKanjiMetaBulk(ctx context.Context, chars []string, enabled map[string]DictionaryDetails) ([]MetaResult, error)

	// FindTagMetaBulk resolves tag queries to tag records. Results are
	// index-parallel with queries; a nil entry marks a miss ("tag
	// lookup miss: not an error").
	FindTagMetaBulk(ctx context.Context, queries []TagQuery) ([]*model.Tag, error)

	// Close releases any resources held by the store (e.g. the
	// underlying sqlite connection pool).
	Close() error
}
