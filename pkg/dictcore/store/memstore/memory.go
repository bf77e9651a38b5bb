// Package memstore is an in-memory store.Store implementation, used by
// finder/assembler/enricher tests and by callers who load a small
// dictionary set directly from term-bank files without a database.
package memstore

import (
	"context"
	"strings"

	"github.com/kanjidict/dictcore/pkg/dictcore/model"
	"github.com/kanjidict/dictcore/pkg/dictcore/store"
)

// Store holds term and kanji entries grouped by dictionary name, plus
// their associated metadata and tag records. All lookups are linear
// scans over these slices — memstore favors clarity over speed, since
// sqlite is the production backend (see ../sqlite).
type Store struct {
	terms     map[string][]model.DatabaseEntry // dictionary -> entries
	kanji     map[string][]model.DatabaseEntry
	termMeta  map[string][]store.MetaResult // dictionary -> meta rows, keyed via Character
	kanjiMeta map[string][]store.MetaResult
	tags      map[string]map[string]model.Tag // dictionary -> tag name -> record
}

// New creates an empty in-memory store. Use the Add* methods to seed it.
func New() *Store {
	return &Store{
		terms:     make(map[string][]model.DatabaseEntry),
		kanji:     make(map[string][]model.DatabaseEntry),
		termMeta:  make(map[string][]store.MetaResult),
		kanjiMeta: make(map[string][]store.MetaResult),
		tags:      make(map[string]map[string]model.Tag),
	}
}

// AddTermEntry registers one term-bank row under dictionary.
func (s *Store) AddTermEntry(dictionary string, e model.DatabaseEntry) {
	e.Dictionary = dictionary
	s.terms[dictionary] = append(s.terms[dictionary], e)
}

// AddKanjiEntry registers one kanji-bank row under dictionary.
func (s *Store) AddKanjiEntry(dictionary string, e model.DatabaseEntry) {
	e.Dictionary = dictionary
	s.kanji[dictionary] = append(s.kanji[dictionary], e)
}

// AddTermMeta registers one term-meta row under dictionary. term is the
// lookup key matched against FindTermMetaBulk's terms argument; it is
// stashed in row.Character internally and cleared before the row is
// returned, since term-meta rows don't echo a character.
func (s *Store) AddTermMeta(dictionary, term string, row store.MetaResult) {
	row.Dictionary = dictionary
	row.Character = term
	s.termMeta[dictionary] = append(s.termMeta[dictionary], row)
}

// AddKanjiMeta registers one kanji-meta row under dictionary.
func (s *Store) AddKanjiMeta(dictionary, character string, row store.MetaResult) {
	row.Dictionary = dictionary
	row.Character = character
	s.kanjiMeta[dictionary] = append(s.kanjiMeta[dictionary], row)
}

// AddTag registers a tag record for dictionary.
func (s *Store) AddTag(dictionary string, tag model.Tag) {
	if s.tags[dictionary] == nil {
		s.tags[dictionary] = make(map[string]model.Tag)
	}
	s.tags[dictionary][tag.Name] = tag
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// FindTermsBulk implements store.Store.
func (s *Store) FindTermsBulk(ctx context.Context, terms []string, enabled map[string]store.DictionaryDetails, matchType model.MatchType) ([]model.DatabaseEntry, error) {
	var out []model.DatabaseEntry
	for i, term := range terms {
		for dict := range enabled {
			for _, e := range s.terms[dict] {
				if !matchesTerm(e.Term, term, matchType) {
					continue
				}
				hit := e
				hit.Index = i
				hit.MatchType = matchType
				hit.MatchSource = model.MatchSourceTerm
				out = append(out, hit)
			}
		}
	}
	return out, nil
}

// FindTermsExactBulk implements store.Store.
func (s *Store) FindTermsExactBulk(ctx context.Context, pairs []store.TermReadingPair, enabled map[string]store.DictionaryDetails) ([]model.DatabaseEntry, error) {
	var out []model.DatabaseEntry
	for i, pair := range pairs {
		for dict := range enabled {
			for _, e := range s.terms[dict] {
				if e.Term != pair.Term {
					continue
				}
				if pair.Reading != "" && e.Reading != pair.Reading {
					continue
				}
				hit := e
				hit.Index = i
				hit.MatchType = model.MatchExact
				hit.MatchSource = model.MatchSourceTerm
				out = append(out, hit)
			}
		}
	}
	return out, nil
}

// FindTermsBySequenceBulk implements store.Store.
func (s *Store) FindTermsBySequenceBulk(ctx context.Context, queries []store.SequenceQuery) ([]model.DatabaseEntry, error) {
	var out []model.DatabaseEntry
	for i, q := range queries {
		for _, e := range s.terms[q.Dictionary] {
			if e.Sequence != q.Query {
				continue
			}
			hit := e
			hit.Index = i
			out = append(out, hit)
		}
	}
	return out, nil
}

// FindTermMetaBulk implements store.Store.
func (s *Store) FindTermMetaBulk(ctx context.Context, terms []string, enabled map[string]store.DictionaryDetails) ([]store.MetaResult, error) {
	var out []store.MetaResult
	for i, term := range terms {
		for dict := range enabled {
			for _, row := range s.termMeta[dict] {
				if row.Character != term {
					continue
				}
				r := row
				r.Index = i
				r.Character = ""
				out = append(out, r)
			}
		}
	}
	return out, nil
}

// FindKanjiBulk implements store.Store. Each returned entry's Index is the
// position of the character in chars that produced it.
func (s *Store) FindKanjiBulk(ctx context.Context, chars []string, enabled map[string]store.DictionaryDetails) ([]model.DatabaseEntry, error) {
	var out []model.DatabaseEntry
	for i, c := range chars {
		for dict := range enabled {
			for _, e := range s.kanji[dict] {
				if e.Term != c {
					continue
				}
				hit := e
				hit.Index = i
				out = append(out, hit)
			}
		}
	}
	return out, nil
}

// FindKanjiMetaBulk implements store.Store.
func (s *Store) FindKanjiMetaBulk(ctx context.Context, chars []string, enabled map[string]store.DictionaryDetails) ([]store.MetaResult, error) {
	var out []store.MetaResult
	for i, c := range chars {
		for dict := range enabled {
			for _, row := range s.kanjiMeta[dict] {
				if row.Character != c {
					continue
				}
				r := row
				r.Index = i
				out = append(out, r)
			}
		}
	}
	return out, nil
}

// FindTagMetaBulk implements store.Store. Misses are returned as nil
// entries, index-parallel with queries.
func (s *Store) FindTagMetaBulk(ctx context.Context, queries []store.TagQuery) ([]*model.Tag, error) {
	out := make([]*model.Tag, len(queries))
	for i, q := range queries {
		byName := s.tags[q.Dictionary]
		if byName == nil {
			continue
		}
		if tag, ok := byName[q.Query]; ok {
			t := tag
			out[i] = &t
		}
	}
	return out, nil
}

func matchesTerm(entryTerm, query string, matchType model.MatchType) bool {
	switch matchType {
	case model.MatchPrefix:
		return strings.HasPrefix(entryTerm, query)
	case model.MatchSuffix:
		return strings.HasSuffix(entryTerm, query)
	default:
		return entryTerm == query
	}
}
