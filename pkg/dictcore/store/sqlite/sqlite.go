// Package sqlite implements store.Store over a modernc.org/sqlite
// database: one row per dictionary term-bank entry, kanji-bank entry,
// metadata row, and tag record, each tagged with the dictionary name it
// came from.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/kanjidict/dictcore/pkg/dictcore/model"
	"github.com/kanjidict/dictcore/pkg/dictcore/store"
)

// Store implements store.Store using SQLite. The exported type (rather
// than returning the bare interface from Open) lets loaders and tests
// reach the Insert* helpers below to seed dictionary data.
type Store struct {
	db *sql.DB
}

// Open opens a SQLite database with WAL mode enabled and ensures the
// dictionary schema exists.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}
	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// InsertTermEntry loads one term-bank row into dictionary.
func (s *Store) InsertTermEntry(ctx context.Context, dictionary string, e model.DatabaseEntry) error {
	hyp, err := json.Marshal(e.InflectionHypotheses)
	if err != nil {
		return err
	}
	glosses, err := json.Marshal(e.Glosses)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO terms (dictionary, term, reading, definition_tags, term_tags, word_classes,
                    score, sequence, form_of, non_lemma, inflection_hypotheses, glosses)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
`, dictionary, e.Term, e.Reading, encodeStrings(e.DefinitionTags), encodeStrings(e.TermTags),
		encodeStrings(e.WordClasses), e.Score, e.Sequence, e.FormOf, boolToInt(e.NonLemma), string(hyp), string(glosses))
	return err
}

// InsertKanjiEntry loads one kanji-bank row into dictionary.
func (s *Store) InsertKanjiEntry(ctx context.Context, dictionary string, e model.DatabaseEntry) error {
	glosses, err := json.Marshal(e.Glosses)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO kanji (dictionary, character, definition_tags, score, glosses) VALUES (?, ?, ?, ?, ?);
`, dictionary, e.Term, encodeStrings(e.DefinitionTags), e.Score, string(glosses))
	return err
}

// InsertTermMeta loads one term-meta row into dictionary.
func (s *Store) InsertTermMeta(ctx context.Context, dictionary, term, mode string, data any) error {
	encoded, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO term_meta (dictionary, term, mode, data) VALUES (?, ?, ?, ?);
`, dictionary, term, mode, string(encoded))
	return err
}

// InsertKanjiMeta loads one kanji-meta row into dictionary.
func (s *Store) InsertKanjiMeta(ctx context.Context, dictionary, character, mode string, data any) error {
	encoded, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO kanji_meta (dictionary, character, mode, data) VALUES (?, ?, ?, ?);
`, dictionary, character, mode, string(encoded))
	return err
}

// InsertTag loads (or replaces) one tag record for dictionary.
func (s *Store) InsertTag(ctx context.Context, dictionary string, tag model.Tag) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO tags (dictionary, name, category, tag_order, score, content)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(dictionary, name) DO UPDATE SET
	category=excluded.category, tag_order=excluded.tag_order,
	score=excluded.score, content=excluded.content;
`, dictionary, tag.Name, tag.Category, tag.Order, tag.Score, encodeStrings(tag.Content))
	return err
}

func encodeStrings(ss []string) string {
	if len(ss) == 0 {
		return ""
	}
	b, err := json.Marshal(ss)
	if err != nil {
		return ""
	}
	return string(b)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func initSchema(ctx context.Context, db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS terms (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	dictionary TEXT NOT NULL,
	term TEXT NOT NULL,
	reading TEXT,
	definition_tags TEXT,
	term_tags TEXT,
	word_classes TEXT,
	score REAL NOT NULL DEFAULT 0,
	sequence INTEGER NOT NULL DEFAULT -1,
	form_of TEXT,
	non_lemma INTEGER NOT NULL DEFAULT 0,
	inflection_hypotheses TEXT,
	glosses TEXT
);
CREATE INDEX IF NOT EXISTS idx_terms_dict_term ON terms(dictionary, term);
CREATE INDEX IF NOT EXISTS idx_terms_dict_seq ON terms(dictionary, sequence);

CREATE TABLE IF NOT EXISTS term_meta (
	dictionary TEXT NOT NULL,
	term TEXT NOT NULL,
	mode TEXT NOT NULL,
	data TEXT
);
CREATE INDEX IF NOT EXISTS idx_term_meta_dict_term ON term_meta(dictionary, term);

CREATE TABLE IF NOT EXISTS kanji (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	dictionary TEXT NOT NULL,
	character TEXT NOT NULL,
	definition_tags TEXT,
	score REAL NOT NULL DEFAULT 0,
	glosses TEXT
);
CREATE INDEX IF NOT EXISTS idx_kanji_dict_char ON kanji(dictionary, character);

CREATE TABLE IF NOT EXISTS kanji_meta (
	dictionary TEXT NOT NULL,
	character TEXT NOT NULL,
	mode TEXT NOT NULL,
	data TEXT
);
CREATE INDEX IF NOT EXISTS idx_kanji_meta_dict_char ON kanji_meta(dictionary, character);

CREATE TABLE IF NOT EXISTS tags (
	dictionary TEXT NOT NULL,
	name TEXT NOT NULL,
	category TEXT,
	tag_order INTEGER NOT NULL DEFAULT 0,
	score REAL NOT NULL DEFAULT 0,
	content TEXT,
	PRIMARY KEY(dictionary, name)
);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// placeholders builds an n-element "?,?,..." list.
func placeholders(n int) string {
	if n == 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func enabledDictNames(enabled map[string]store.DictionaryDetails) []string {
	names := make([]string, 0, len(enabled))
	for name := range enabled {
		names = append(names, name)
	}
	return names
}

// FindTermsBulk implements store.Store.
func (s *Store) FindTermsBulk(ctx context.Context, terms []string, enabled map[string]store.DictionaryDetails, matchType model.MatchType) ([]model.DatabaseEntry, error) {
	dicts := enabledDictNames(enabled)
	if len(terms) == 0 || len(dicts) == 0 {
		return nil, nil
	}

	var out []model.DatabaseEntry
	for i, term := range terms {
		var clause string
		var pattern string
		switch matchType {
		case model.MatchPrefix:
			clause, pattern = "term LIKE ?", term+"%"
		case model.MatchSuffix:
			clause, pattern = "term LIKE ?", "%"+term
		default:
			clause, pattern = "term = ?", term
		}

		query := fmt.Sprintf(`
SELECT id, dictionary, term, reading, definition_tags, term_tags, word_classes,
       score, sequence, form_of, non_lemma, inflection_hypotheses, glosses
FROM terms
WHERE %s AND dictionary IN (%s);
`, clause, placeholders(len(dicts)))

		args := make([]any, 0, 1+len(dicts))
		args = append(args, pattern)
		args = append(args, dictArgs(dicts)...)

		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, err
		}
		hits, err := scanTermRows(rows)
		if err != nil {
			return nil, err
		}
		for j := range hits {
			hits[j].Index = i
			hits[j].MatchType = matchType
			hits[j].MatchSource = model.MatchSourceTerm
		}
		out = append(out, hits...)
	}
	return out, nil
}

// FindTermsExactBulk implements store.Store.
func (s *Store) FindTermsExactBulk(ctx context.Context, pairs []store.TermReadingPair, enabled map[string]store.DictionaryDetails) ([]model.DatabaseEntry, error) {
	dicts := enabledDictNames(enabled)
	if len(pairs) == 0 || len(dicts) == 0 {
		return nil, nil
	}

	var out []model.DatabaseEntry
	for i, pair := range pairs {
		query := fmt.Sprintf(`
SELECT id, dictionary, term, reading, definition_tags, term_tags, word_classes,
       score, sequence, form_of, non_lemma, inflection_hypotheses, glosses
FROM terms
WHERE term = ? AND (? = '' OR reading = ?) AND dictionary IN (%s);
`, placeholders(len(dicts)))

		args := []any{pair.Term, pair.Reading, pair.Reading}
		args = append(args, dictArgs(dicts)...)

		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, err
		}
		hits, err := scanTermRows(rows)
		if err != nil {
			return nil, err
		}
		for j := range hits {
			hits[j].Index = i
			hits[j].MatchType = model.MatchExact
			hits[j].MatchSource = model.MatchSourceTerm
		}
		out = append(out, hits...)
	}
	return out, nil
}

// FindTermsBySequenceBulk implements store.Store.
func (s *Store) FindTermsBySequenceBulk(ctx context.Context, queries []store.SequenceQuery) ([]model.DatabaseEntry, error) {
	var out []model.DatabaseEntry
	for i, q := range queries {
		rows, err := s.db.QueryContext(ctx, `
SELECT id, dictionary, term, reading, definition_tags, term_tags, word_classes,
       score, sequence, form_of, non_lemma, inflection_hypotheses, glosses
FROM terms
WHERE dictionary = ? AND sequence = ?;
`, q.Dictionary, q.Query)
		if err != nil {
			return nil, err
		}
		hits, err := scanTermRows(rows)
		if err != nil {
			return nil, err
		}
		for j := range hits {
			hits[j].Index = i
		}
		out = append(out, hits...)
	}
	return out, nil
}

// FindTermMetaBulk implements store.Store.
func (s *Store) FindTermMetaBulk(ctx context.Context, terms []string, enabled map[string]store.DictionaryDetails) ([]store.MetaResult, error) {
	dicts := enabledDictNames(enabled)
	if len(terms) == 0 || len(dicts) == 0 {
		return nil, nil
	}

	var out []store.MetaResult
	for i, term := range terms {
		query := fmt.Sprintf(`
SELECT dictionary, mode, data FROM term_meta
WHERE term = ? AND dictionary IN (%s);
`, placeholders(len(dicts)))
		args := append([]any{term}, dictArgs(dicts)...)

		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var r store.MetaResult
			var data string
			if err := rows.Scan(&r.Dictionary, &r.Mode, &data); err != nil {
				rows.Close()
				return nil, err
			}
			r.Index = i
			r.Data = decodeJSON(data)
			out = append(out, r)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	return out, nil
}

// FindKanjiBulk implements store.Store.
func (s *Store) FindKanjiBulk(ctx context.Context, chars []string, enabled map[string]store.DictionaryDetails) ([]model.DatabaseEntry, error) {
	dicts := enabledDictNames(enabled)
	if len(chars) == 0 || len(dicts) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
SELECT id, dictionary, character, definition_tags, score, glosses
FROM kanji
WHERE character IN (%s) AND dictionary IN (%s);
`, placeholders(len(chars)), placeholders(len(dicts)))

	args := make([]any, 0, len(chars)+len(dicts))
	indexByChar := make(map[string]int, len(chars))
	for i, c := range chars {
		args = append(args, c)
		if _, ok := indexByChar[c]; !ok {
			indexByChar[c] = i
		}
	}
	args = append(args, dictArgs(dicts)...)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.DatabaseEntry
	for rows.Next() {
		var e model.DatabaseEntry
		var tags string
		var glosses sql.NullString
		if err := rows.Scan(&e.ID, &e.Dictionary, &e.Term, &tags, &e.Score, &glosses); err != nil {
			return nil, err
		}
		e.Index = indexByChar[e.Term]
		e.DefinitionTags = decodeStrings(tags)
		if glosses.Valid {
			_ = json.Unmarshal([]byte(glosses.String), &e.Glosses)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// FindKanjiMetaBulk implements store.Store.
func (s *Store) FindKanjiMetaBulk(ctx context.Context, chars []string, enabled map[string]store.DictionaryDetails) ([]store.MetaResult, error) {
	dicts := enabledDictNames(enabled)
	if len(chars) == 0 || len(dicts) == 0 {
		return nil, nil
	}

	var out []store.MetaResult
	for i, c := range chars {
		query := fmt.Sprintf(`
SELECT dictionary, character, mode, data FROM kanji_meta
WHERE character = ? AND dictionary IN (%s);
`, placeholders(len(dicts)))
		args := append([]any{c}, dictArgs(dicts)...)

		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var r store.MetaResult
			var data string
			if err := rows.Scan(&r.Dictionary, &r.Character, &r.Mode, &data); err != nil {
				rows.Close()
				return nil, err
			}
			r.Index = i
			r.Data = decodeJSON(data)
			out = append(out, r)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	return out, nil
}

// FindTagMetaBulk implements store.Store.
func (s *Store) FindTagMetaBulk(ctx context.Context, queries []store.TagQuery) ([]*model.Tag, error) {
	out := make([]*model.Tag, len(queries))
	for i, q := range queries {
		var t model.Tag
		var content string
		err := s.db.QueryRowContext(ctx, `
SELECT name, category, tag_order, score, content FROM tags
WHERE dictionary = ? AND name = ?;
`, q.Dictionary, q.Query).Scan(&t.Name, &t.Category, &t.Order, &t.Score, &content)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, err
		}
		t.Content = decodeStrings(content)
		out[i] = &t
	}
	return out, nil
}

func dictArgs(dicts []string) []any {
	args := make([]any, len(dicts))
	for i, d := range dicts {
		args[i] = d
	}
	return args
}

func scanTermRows(rows *sql.Rows) ([]model.DatabaseEntry, error) {
	defer rows.Close()
	var out []model.DatabaseEntry
	for rows.Next() {
		var e model.DatabaseEntry
		var reading, defTags, termTags, wordClasses, formOf, hypotheses, glosses sql.NullString
		var nonLemma int
		if err := rows.Scan(&e.ID, &e.Dictionary, &e.Term, &reading, &defTags, &termTags,
			&wordClasses, &e.Score, &e.Sequence, &formOf, &nonLemma, &hypotheses, &glosses); err != nil {
			return nil, err
		}
		e.Reading = reading.String
		e.DefinitionTags = decodeStrings(defTags.String)
		e.TermTags = decodeStrings(termTags.String)
		e.WordClasses = decodeStrings(wordClasses.String)
		e.Rules = e.WordClasses
		e.FormOf = formOf.String
		e.NonLemma = nonLemma != 0
		if hypotheses.Valid {
			_ = json.Unmarshal([]byte(hypotheses.String), &e.InflectionHypotheses)
		}
		if glosses.Valid {
			_ = json.Unmarshal([]byte(glosses.String), &e.Glosses)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func decodeStrings(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}

func decodeJSON(raw string) any {
	if raw == "" {
		return nil
	}
	var out any
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return raw
	}
	return out
}
