package db

import (
	"path/filepath"
	"testing"

	"github.com/balkashynov/floortrack/internal/store"
	"github.com/balkashynov/floortrack/internal/store/storetest"
)

func TestSQLiteStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.RecordStore {
		gdb, err := Open(DriverSQLite, filepath.Join(t.TempDir(), "floortrack.db"), false)
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		s := NewStore(gdb)
		t.Cleanup(func() { s.Close() })
		return s
	})
}

func TestOpenUnknownDriver(t *testing.T) {
	t.Parallel()

	if _, err := Open("postgres", "whatever", false); err == nil {
		t.Error("Expected error for unsupported driver")
	}
}

func TestDefaultSQLitePath(t *testing.T) {
	t.Parallel()

	got := DefaultSQLitePath("/var/lib/floortrack")
	if got != filepath.Join("/var/lib/floortrack", "floortrack.db") {
		t.Errorf("Unexpected path %q", got)
	}
}
