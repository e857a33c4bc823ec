package history

import (
	"path/filepath"
	"testing"
)

func TestRecordAndLast(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(filepath.Join(dir, "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	if last, err := store.Last("basic"); err != nil || last != nil {
		t.Fatalf("expected no prior outcome, got %+v, err=%v", last, err)
	}

	if err := store.Record("basic", 120, 0, false); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := store.Record("basic", 80, 2, true); err != nil {
		t.Fatalf("Record: %v", err)
	}

	last, err := store.Last("basic")
	if err != nil {
		t.Fatalf("Last: %v", err)
	}
	if last == nil {
		t.Fatal("expected a recorded outcome")
	}
	if last.ErrorCount != 2 || !last.Aborted {
		t.Fatalf("expected the most recent run (errors=2, aborted), got %+v", last)
	}
}

func TestTrendReturnsMostRecentFirst(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(filepath.Join(dir, "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	for i := 0; i < 3; i++ {
		if err := store.Record("basic", int64(i), i, false); err != nil {
			t.Fatalf("Record %d: %v", i, err)
		}
	}

	trend, err := store.Trend("basic", 2)
	if err != nil {
		t.Fatalf("Trend: %v", err)
	}
	if len(trend) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(trend))
	}
}

func TestOpenCreatesParentDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "subdir", "history.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()
}
