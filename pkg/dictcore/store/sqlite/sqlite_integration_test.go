package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/kanjidict/dictcore/pkg/dictcore/model"
	"github.com/kanjidict/dictcore/pkg/dictcore/store"
)

// TestSQLiteIntegrationBasic covers the basic insert/query round trip for
// the term, sequence, kanji and kanji-meta bulk operations against a real
// on-disk SQLite database.
func TestSQLiteIntegrationBasic(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	st, err := Open(ctx, dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	if err := st.InsertTermEntry(ctx, "jmdict", model.DatabaseEntry{
		Term: "食べる", Reading: "たべる", Sequence: 100,
		WordClasses: []string{"v1"}, DefinitionTags: []string{"food"},
	}); err != nil {
		t.Fatalf("InsertTermEntry: %v", err)
	}
	if err := st.InsertTermEntry(ctx, "jmdict", model.DatabaseEntry{
		Term: "食べ物", Reading: "たべもの", Sequence: 100,
	}); err != nil {
		t.Fatalf("InsertTermEntry: %v", err)
	}
	if err := st.InsertKanjiEntry(ctx, "kanjidic", model.DatabaseEntry{Term: "食", Score: 5}); err != nil {
		t.Fatalf("InsertKanjiEntry: %v", err)
	}
	if err := st.InsertKanjiMeta(ctx, "kanjifreq", "食", "freq", 42); err != nil {
		t.Fatalf("InsertKanjiMeta: %v", err)
	}

	enabled := map[string]store.DictionaryDetails{"jmdict": {Index: 0, Priority: 1}}

	exactHits, err := st.FindTermsBulk(ctx, []string{"食べる"}, enabled, model.MatchExact)
	if err != nil {
		t.Fatalf("FindTermsBulk: %v", err)
	}
	if len(exactHits) != 1 {
		t.Fatalf("expected 1 exact hit, got %d", len(exactHits))
	}
	if len(exactHits[0].WordClasses) != 1 || exactHits[0].WordClasses[0] != "v1" {
		t.Errorf("expected word class v1 preserved, got %v", exactHits[0].WordClasses)
	}

	sequenceHits, err := st.FindTermsBySequenceBulk(ctx, []store.SequenceQuery{{Query: 100, Dictionary: "jmdict"}})
	if err != nil {
		t.Fatalf("FindTermsBySequenceBulk: %v", err)
	}
	if len(sequenceHits) != 2 {
		t.Fatalf("expected 2 entries sharing sequence 100, got %d", len(sequenceHits))
	}

	kanjiHits, err := st.FindKanjiBulk(ctx, []string{"食"}, map[string]store.DictionaryDetails{"kanjidic": {}})
	if err != nil {
		t.Fatalf("FindKanjiBulk: %v", err)
	}
	if len(kanjiHits) != 1 || kanjiHits[0].Score != 5 {
		t.Fatalf("expected kanji entry with score 5, got %v", kanjiHits)
	}

	kanjiMeta, err := st.FindKanjiMetaBulk(ctx, []string{"食"}, map[string]store.DictionaryDetails{"kanjifreq": {}})
	if err != nil {
		t.Fatalf("FindKanjiMetaBulk: %v", err)
	}
	if len(kanjiMeta) != 1 || kanjiMeta[0].Character != "食" {
		t.Fatalf("expected kanji meta row for 食, got %v", kanjiMeta)
	}
}

// TestSQLiteIntegrationExactRequiresReading verifies find_terms_exact_bulk
// distinguishes readings of a shared term against a real database.
func TestSQLiteIntegrationExactRequiresReading(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	st, err := Open(ctx, dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	if err := st.InsertTermEntry(ctx, "jmdict", model.DatabaseEntry{Term: "角", Reading: "かく"}); err != nil {
		t.Fatalf("InsertTermEntry: %v", err)
	}
	if err := st.InsertTermEntry(ctx, "jmdict", model.DatabaseEntry{Term: "角", Reading: "つの"}); err != nil {
		t.Fatalf("InsertTermEntry: %v", err)
	}

	got, err := st.FindTermsExactBulk(ctx,
		[]store.TermReadingPair{{Term: "角", Reading: "つの"}},
		map[string]store.DictionaryDetails{"jmdict": {}})
	if err != nil {
		t.Fatalf("FindTermsExactBulk: %v", err)
	}
	if len(got) != 1 || got[0].Reading != "つの" {
		t.Fatalf("expected only the つの reading, got %v", got)
	}
}

// TestSQLiteIntegrationReopenAfterClose verifies the WAL-mode database can
// be closed and reopened without losing data or erroring.
func TestSQLiteIntegrationReopenAfterClose(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	st, err := Open(ctx, dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := st.InsertTag(ctx, "jmdict", model.Tag{Name: "vs", Category: "pos"}); err != nil {
		t.Fatalf("InsertTag: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	st2, err := Open(ctx, dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer st2.Close()

	tags, err := st2.FindTagMetaBulk(ctx, []store.TagQuery{{Query: "vs", Dictionary: "jmdict"}})
	if err != nil {
		t.Fatalf("FindTagMetaBulk: %v", err)
	}
	if tags[0] == nil {
		t.Fatal("expected tag to survive reopen")
	}
}
