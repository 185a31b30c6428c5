// Package archive performs the daily housekeeping: dated ledger backups,
// per-day raw and cleaned splits, and pruning of completed records.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/balkashynov/floortrack/internal/ledger"
	"github.com/balkashynov/floortrack/internal/metrics"
	"github.com/balkashynov/floortrack/internal/models"
	"github.com/balkashynov/floortrack/internal/store"
)

// Options configures an Archiver
type Options struct {
	BackupDir string
	CSVDir    string
	Location  *time.Location
	Logger    *log.Logger
}

// Archiver runs housekeeping against one ledger and record store
type Archiver struct {
	ledger *ledger.Ledger
	store  store.RecordStore
	opts   Options
}

// SplitResult summarises a SplitLedger run
type SplitResult struct {
	BackupDir string
	Days      []string
	Rows      int
	Skipped   int
}

// New returns an archiver
func New(l *ledger.Ledger, st store.RecordStore, opts Options) *Archiver {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	return &Archiver{ledger: l, store: st, opts: opts}
}

// SplitLedger backs up every partition under <backup>/<today>/ and then
// regenerates csv/raw/tasks_<day>.csv (all rows ending that day) and
// csv/cleaned/tasks_<day>.csv (last row per id). The ledger is left intact.
func (a *Archiver) SplitLedger(ctx context.Context, now time.Time) (SplitResult, error) {
	res := SplitResult{BackupDir: filepath.Join(a.opts.BackupDir, now.In(a.opts.Location).Format(metrics.DayFormat))}

	copied, err := a.ledger.Snapshot(res.BackupDir)
	if err != nil {
		return res, err
	}
	a.opts.Logger.Printf("backed up %d partitions to %s", len(copied), res.BackupDir)

	entries, warnings, err := a.ledger.ReadAll(ctx)
	if err != nil {
		return res, err
	}
	for _, w := range warnings {
		a.opts.Logger.Printf("warning: %s", w)
	}

	byDay := make(map[string][]models.LogEntry)
	for _, e := range entries {
		if e.EndTime == nil {
			res.Skipped++
			continue
		}
		day := e.EndTime.In(a.opts.Location).Format(metrics.DayFormat)
		byDay[day] = append(byDay[day], e)
	}

	rawDir := filepath.Join(a.opts.CSVDir, "raw")
	cleanedDir := filepath.Join(a.opts.CSVDir, "cleaned")
	for day, dayEntries := range byDay {
		name := "tasks_" + day + ".csv"
		if err := writeSplit(filepath.Join(rawDir, name), dayEntries); err != nil {
			return res, err
		}
		if err := writeSplit(filepath.Join(cleanedDir, name), metrics.Latest(dayEntries)); err != nil {
			return res, err
		}
		res.Days = append(res.Days, day)
		res.Rows += len(dayEntries)
	}
	sort.Strings(res.Days)
	return res, nil
}

func writeSplit(path string, entries []models.LogEntry) error {
	var buf bytes.Buffer
	if err := ledger.WriteEntries(&buf, entries); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return os.Rename(tmp, path)
}

// PruneCompleted drops completed records from every user's working set and
// returns the number removed per user
func (a *Archiver) PruneCompleted(ctx context.Context) (map[string]int, error) {
	users, err := a.store.Users(ctx)
	if err != nil {
		return nil, err
	}
	removed := make(map[string]int)
	for _, user := range users {
		n, err := a.store.Prune(ctx, user, func(rec models.TaskRecord) bool { return !rec.IsCompleted() })
		if err != nil {
			return removed, fmt.Errorf("failed to prune %s: %w", user, err)
		}
		if n > 0 {
			a.opts.Logger.Printf("pruned %d completed records for %s", n, user)
		}
		removed[user] = n
	}
	return removed, nil
}
