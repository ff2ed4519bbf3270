package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/HerbHall/drivermatch/pkg/plugin"
)

func newMemStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMigrate_AppliesOnce(t *testing.T) {
	s := newMemStore(t)
	ctx := context.Background()

	calls := 0
	migrations := []plugin.Migration{
		{Version: 1, Description: "create widgets", Up: func(tx *sql.Tx) error {
			calls++
			_, err := tx.Exec("CREATE TABLE widgets (id TEXT PRIMARY KEY)")
			return err
		}},
		{Version: 2, Description: "add name", Up: func(tx *sql.Tx) error {
			calls++
			_, err := tx.Exec("ALTER TABLE widgets ADD COLUMN name TEXT")
			return err
		}},
	}

	for i := 0; i < 2; i++ {
		if err := s.Migrate(ctx, "widgets", migrations); err != nil {
			t.Fatalf("Migrate run %d: %v", i, err)
		}
	}
	if calls != 2 {
		t.Errorf("migration Up calls = %d, want 2", calls)
	}

	versions, err := s.AppliedVersions(ctx, "widgets")
	if err != nil {
		t.Fatalf("AppliedVersions: %v", err)
	}
	if len(versions) != 2 || versions[0] != 1 || versions[1] != 2 {
		t.Errorf("AppliedVersions = %v, want [1 2]", versions)
	}
}

func TestMigrate_FailureRollsBack(t *testing.T) {
	s := newMemStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.Migrate(ctx, "broken", []plugin.Migration{
		{Version: 1, Description: "half", Up: func(tx *sql.Tx) error {
			if _, err := tx.Exec("CREATE TABLE half (id INTEGER)"); err != nil {
				return err
			}
			return boom
		}},
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Migrate error = %v, want %v", err, boom)
	}

	var n int
	if err := s.DB().QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'half'").Scan(&n); err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	if n != 0 {
		t.Error("table from failed migration should not exist")
	}
	if versions, _ := s.AppliedVersions(ctx, "broken"); len(versions) != 0 {
		t.Errorf("AppliedVersions = %v, want none", versions)
	}
}

func TestTx_Commit(t *testing.T) {
	s := newMemStore(t)
	ctx := context.Background()

	if _, err := s.DB().Exec("CREATE TABLE kv (k TEXT PRIMARY KEY, v TEXT)"); err != nil {
		t.Fatal(err)
	}
	err := s.Tx(ctx, func(tx *sql.Tx) error {
		_, err := tx.Exec("INSERT INTO kv (k, v) VALUES ('a', '1')")
		return err
	})
	if err != nil {
		t.Fatalf("Tx: %v", err)
	}

	var v string
	if err := s.DB().QueryRow("SELECT v FROM kv WHERE k = 'a'").Scan(&v); err != nil {
		t.Fatalf("select: %v", err)
	}
	if v != "1" {
		t.Errorf("v = %q, want %q", v, "1")
	}
}

func TestNew_FileAndCheckpoint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drivermatch.db")
	s, err := New(path)
	if err != nil {
		t.Fatalf("New(%q): %v", path, err)
	}
	defer s.Close()

	if err := s.Checkpoint(context.Background()); err != nil {
		t.Errorf("Checkpoint: %v", err)
	}
}
