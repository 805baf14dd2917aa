package kv

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func testSQLite(t *testing.T) *SQLite {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// exerciseBackend runs the contract every backend must satisfy.
func exerciseBackend(t *testing.T, b Backend) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := b.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("Get(missing) = ok %v, err %v; want absent without error", ok, err)
	}

	if err := b.Set(ctx, "k", "v1"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := b.Get(ctx, "k")
	if err != nil || !ok || got != "v1" {
		t.Fatalf("Get(k) = %q, %v, %v; want v1", got, ok, err)
	}

	if err := b.Set(ctx, "k", "v2"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if got, _, _ := b.Get(ctx, "k"); got != "v2" {
		t.Errorf("expected overwritten value v2, got %q", got)
	}

	if err := b.Set(ctx, "empty", ""); err != nil {
		t.Fatalf("Set empty: %v", err)
	}
	if _, ok, _ := b.Get(ctx, "empty"); !ok {
		t.Error("empty value should still be present")
	}

	if err := b.Remove(ctx, "k"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok, _ := b.Get(ctx, "k"); ok {
		t.Error("expected key to be gone after Remove")
	}
	if err := b.Remove(ctx, "never-set"); err != nil {
		t.Errorf("removing an absent key should not fail: %v", err)
	}
}

func TestSQLiteBackend(t *testing.T) {
	exerciseBackend(t, testSQLite(t))
}

func TestMemoryBackend(t *testing.T) {
	exerciseBackend(t, NewMemory())
}

func TestRedisBackend(t *testing.T) {
	url := os.Getenv("HEADLINES_TEST_REDIS_URL")
	if url == "" {
		t.Skip("HEADLINES_TEST_REDIS_URL not set")
	}
	r, err := OpenRedis(context.Background(), url, "headlines-test:")
	if err != nil {
		t.Fatalf("OpenRedis: %v", err)
	}
	defer r.Close()
	exerciseBackend(t, r)
}

func TestSQLitePersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persist.db")
	ctx := context.Background()

	db, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := db.Set(ctx, "saved_articles", `["a"]`); err != nil {
		t.Fatalf("Set: %v", err)
	}
	db.Close()

	db, err = OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	got, ok, err := db.Get(ctx, "saved_articles")
	if err != nil || !ok || got != `["a"]` {
		t.Errorf("after reopen Get = %q, %v, %v", got, ok, err)
	}
}

func TestSQLiteStats(t *testing.T) {
	db := testSQLite(t)
	ctx := context.Background()
	db.Set(ctx, "a", "1")
	db.Set(ctx, "b", "2")

	keys, size, err := db.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if keys != 2 {
		t.Errorf("expected 2 keys, got %d", keys)
	}
	if size <= 0 {
		t.Errorf("expected positive file size, got %d", size)
	}
}

func TestOpenCreatesDir(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "sub", "deep", "test.db")

	db, err := OpenSQLite(dbPath)
	if err != nil {
		t.Fatalf("opening db in nested dir: %v", err)
	}
	db.Close()

	if _, err := os.Stat(filepath.Dir(dbPath)); os.IsNotExist(err) {
		t.Error("expected directory to be created")
	}
}

func TestOpenSelectsBackend(t *testing.T) {
	ctx := context.Background()

	b, err := Open(ctx, Options{Backend: "memory"})
	if err != nil {
		t.Fatalf("Open(memory): %v", err)
	}
	if _, ok := b.(*Memory); !ok {
		t.Errorf("expected *Memory, got %T", b)
	}

	b, err = Open(ctx, Options{Backend: "sqlite", Path: filepath.Join(t.TempDir(), "x.db")})
	if err != nil {
		t.Fatalf("Open(sqlite): %v", err)
	}
	defer b.Close()
	if _, ok := b.(*SQLite); !ok {
		t.Errorf("expected *SQLite, got %T", b)
	}

	if _, err := Open(ctx, Options{Backend: "tape"}); err == nil {
		t.Error("expected error for unknown backend")
	}
}
