package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/kanjidict/dictcore/pkg/dictcore/model"
	"github.com/kanjidict/dictcore/pkg/dictcore/store"
)

// TestSchemaCreationIdempotent verifies initSchema can run repeatedly
// against the same database without error (re-opening an existing file).
func TestSchemaCreationIdempotent(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	defer db.Close()

	for i := 0; i < 3; i++ {
		if err := initSchema(ctx, db); err != nil {
			t.Fatalf("initSchema iteration %d: %v", i, err)
		}
	}

	var count int
	err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%'").Scan(&count)
	if err != nil {
		t.Fatalf("count tables: %v", err)
	}

	expected := 5 // terms, term_meta, kanji, kanji_meta, tags
	if count != expected {
		t.Errorf("expected %d tables, got %d", expected, count)
	}
}

// TestMigrationPreservesData verifies that reopening a database keeps
// previously loaded dictionary data intact.
func TestMigrationPreservesData(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	st, err := Open(ctx, dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if err := st.InsertTermEntry(ctx, "jmdict", model.DatabaseEntry{
		Term: "食べる", Reading: "たべる", Sequence: 1, Score: 10,
	}); err != nil {
		t.Fatalf("InsertTermEntry: %v", err)
	}
	st.Close()

	st2, err := Open(ctx, dbPath)
	if err != nil {
		t.Fatalf("reopen database: %v", err)
	}
	defer st2.Close()

	got, err := st2.FindTermsBulk(ctx, []string{"食べる"},
		map[string]store.DictionaryDetails{"jmdict": {}}, model.MatchExact)
	if err != nil {
		t.Fatalf("FindTermsBulk: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected entry preserved across reopen, got %d results", len(got))
	}
	if got[0].Reading != "たべる" {
		t.Errorf("expected reading preserved, got %q", got[0].Reading)
	}
}
