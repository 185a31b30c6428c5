package archive

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/balkashynov/floortrack/internal/ledger"
	"github.com/balkashynov/floortrack/internal/models"
	"github.com/balkashynov/floortrack/internal/store"
)

func logEntry(id int64, end string, qty int) models.LogEntry {
	e, _ := time.Parse(time.RFC3339, end)
	s := e.Add(-5 * time.Minute)
	return models.LogEntry{ID: id, Username: "alice", MainCategory: "Apex", SubCategory: "Glue",
		StartTime: &s, EndTime: &e, ElapsedSeconds: 300, Quantity: qty}
}

func newArchiver(t *testing.T) (*Archiver, *ledger.Ledger, *store.FileStore, string) {
	t.Helper()
	dir := t.TempDir()
	l, err := ledger.New(ledger.Options{Dir: filepath.Join(dir, "ledger"), Location: time.UTC})
	if err != nil {
		t.Fatal(err)
	}
	st, err := store.NewFileStore(filepath.Join(dir, "tasks"))
	if err != nil {
		t.Fatal(err)
	}
	a := New(l, st, Options{BackupDir: filepath.Join(dir, "backup"), CSVDir: filepath.Join(dir, "csv"), Location: time.UTC})
	return a, l, st, dir
}

func TestSplitLedger(t *testing.T) {
	t.Parallel()

	a, l, _, dir := newArchiver(t)
	ctx := context.Background()
	for _, e := range []models.LogEntry{
		logEntry(1, "2024-01-01T10:05:00Z", 5),
		logEntry(2, "2024-01-02T09:00:00Z", 1),
		logEntry(1, "2024-01-01T10:05:00Z", 6), // edit
	} {
		if err := l.Append(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	res, err := a.SplitLedger(ctx, time.Date(2024, 1, 3, 8, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("SplitLedger failed: %v", err)
	}
	if len(res.Days) != 2 || res.Days[0] != "2024-01-01" || res.Rows != 3 {
		t.Errorf("Unexpected result %+v", res)
	}
	if _, err := os.Stat(filepath.Join(dir, "backup", "2024-01-03", "Apex.csv")); err != nil {
		t.Errorf("Expected backup: %v", err)
	}

	read := func(kind string) []models.LogEntry {
		f, err := os.Open(filepath.Join(dir, "csv", kind, "tasks_2024-01-01.csv"))
		if err != nil {
			t.Fatal(err)
		}
		defer f.Close()
		entries, _, err := ledger.Parse(f, kind, time.UTC)
		if err != nil {
			t.Fatal(err)
		}
		return entries
	}
	if raw := read("raw"); len(raw) != 2 {
		t.Errorf("Expected 2 raw rows, got %d", len(raw))
	}
	cleaned := read("cleaned")
	if len(cleaned) != 1 || cleaned[0].Quantity != 6 {
		t.Errorf("Expected one cleaned row with the edit, got %+v", cleaned)
	}

	// the ledger itself is untouched and a rerun yields the same splits
	if all, _, _ := l.ReadAll(ctx); len(all) != 3 {
		t.Errorf("Ledger was modified: %d rows", len(all))
	}
	if _, err := a.SplitLedger(ctx, time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC)); err != nil {
		t.Fatal(err)
	}
	if raw := read("raw"); len(raw) != 2 {
		t.Errorf("Rerun duplicated rows: %d", len(raw))
	}
}

func TestPruneCompleted(t *testing.T) {
	t.Parallel()

	a, _, st, _ := newArchiver(t)
	ctx := context.Background()
	now := time.Now()
	_ = st.Create(ctx, "alice", models.TaskRecord{ID: 1, Username: "alice", StartTime: now, Status: models.StatusPending})
	_ = st.Create(ctx, "alice", models.TaskRecord{ID: 2, Username: "alice", StartTime: now, Status: models.StatusCompleted})
	_ = st.Create(ctx, "bob", models.TaskRecord{ID: 3, Username: "bob", StartTime: now, Status: models.StatusPending})

	removed, err := a.PruneCompleted(ctx)
	if err != nil {
		t.Fatalf("PruneCompleted failed: %v", err)
	}
	if removed["alice"] != 1 || removed["bob"] != 0 {
		t.Errorf("Unexpected removal counts %v", removed)
	}
	left, _ := st.List(ctx, "alice")
	if len(left) != 1 || left[0].ID != 1 {
		t.Errorf("Expected only pending record left, got %+v", left)
	}
}
