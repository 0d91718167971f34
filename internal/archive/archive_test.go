package archive

import (
	"path/filepath"
	"testing"
	"time"

	"glucograph/internal/clarity"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if closeErr := store.Close(); closeErr != nil {
			t.Errorf("close store: %v", closeErr)
		}
	})
	return store
}

func testReadings(t *testing.T, n int) []clarity.Reading {
	t.Helper()
	base, err := time.Parse("2006-01-02T15:04:05", "2023-01-01T00:00:00")
	if err != nil {
		t.Fatalf("parse base time: %v", err)
	}
	out := make([]clarity.Reading, n)
	for i := range out {
		out[i] = clarity.Reading{Time: base.Add(time.Duration(i) * 5 * time.Minute), MgDL: float64(100 + i)}
	}
	return out
}

func TestOpen_AppliesMigrations(t *testing.T) {
	store := setupTestStore(t)

	n, err := store.CountReadings()
	if err != nil {
		t.Fatalf("CountReadings() error = %v (schema not applied?)", err)
	}
	if n != 0 {
		t.Errorf("fresh archive has %d readings, want 0", n)
	}
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.db")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Second open must not re-apply recorded migrations.
	store, err = Open(path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestInsertReadings(t *testing.T) {
	store := setupTestStore(t)

	if err := store.InsertReadings(testReadings(t, 12)); err != nil {
		t.Fatalf("InsertReadings() error = %v, want nil", err)
	}
	n, err := store.CountReadings()
	if err != nil {
		t.Fatalf("CountReadings() error = %v", err)
	}
	if n != 12 {
		t.Errorf("count = %d, want 12", n)
	}
}

func TestInsertReadings_Idempotent(t *testing.T) {
	store := setupTestStore(t)
	readings := testReadings(t, 6)

	if err := store.InsertReadings(readings); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if err := store.InsertReadings(readings); err != nil {
		t.Fatalf("second insert: %v", err)
	}

	n, err := store.CountReadings()
	if err != nil {
		t.Fatalf("CountReadings() error = %v", err)
	}
	if n != len(readings) {
		t.Errorf("count after re-insert = %d, want %d", n, len(readings))
	}
}

func TestInsertReadings_Empty(t *testing.T) {
	store := setupTestStore(t)
	if err := store.InsertReadings(nil); err != nil {
		t.Fatalf("InsertReadings(nil) error = %v, want nil", err)
	}
}

func TestOpen_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "archive.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v, want nil", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
