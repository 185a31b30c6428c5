// Package ledger is the append-only completion log, one CSV partition per
// main category. Rows are never rewritten; an edit appends a new row with the
// same id and readers treat the last row per id as authoritative.
package ledger

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/balkashynov/floortrack/internal/lockmap"
	"github.com/balkashynov/floortrack/internal/models"
)

// CurrentVersion is the schema written to new partitions
const CurrentVersion = 2

// schemaTag prefixes the first line of every tagged partition
const schemaTag = "#floortrack-ledger v"

// Header is the column row written once per partition
var Header = []string{"id", "username", "mainCategory", "subCategory", "startTime", "elapsedTime", "endTime", "quantity", "note"}

// ErrEmptyCategory is returned when an entry has no main category
var ErrEmptyCategory = errors.New("entry has no main category")

// Event announces a successful append
type Event struct {
	Category string
	ID       int64
}

// Options configures a Ledger
type Options struct {
	Dir        string
	LegacyPath string // optional read-only log from older installs
	Location   *time.Location
	Logger     *log.Logger
}

// Ledger owns the partition files under Dir
type Ledger struct {
	dir        string
	legacyPath string
	loc        *time.Location
	logger     *log.Logger
	locks      *lockmap.Map

	mu   sync.Mutex
	subs []chan Event
}

// New creates the ledger directory
func New(opts Options) (*Ledger, error) {
	if opts.Dir == "" {
		return nil, errors.New("ledger directory is required")
	}
	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create ledger directory: %w", err)
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	return &Ledger{
		dir:        opts.Dir,
		legacyPath: opts.LegacyPath,
		loc:        opts.Location,
		logger:     opts.Logger,
		locks:      lockmap.New(),
	}, nil
}

// Dir returns the partition directory
func (l *Ledger) Dir() string {
	return l.dir
}

// Slug turns a category name into a file-safe partition key
func Slug(category string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(category) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r > 127:
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

// PartitionPath returns the file holding a category's rows
func (l *Ledger) PartitionPath(category string) string {
	return filepath.Join(l.dir, Slug(category)+".csv")
}

// Append durably records one entry in its category partition. If any part
// of the write fails the partition is cut back to its previous size and the
// entry counts as not recorded.
func (l *Ledger) Append(ctx context.Context, entry models.LogEntry) error {
	if strings.TrimSpace(entry.MainCategory) == "" {
		return ErrEmptyCategory
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	slug := Slug(entry.MainCategory)
	unlock := l.locks.Lock(slug)
	err := l.appendLocked(l.PartitionPath(entry.MainCategory), entry)
	unlock()
	if err != nil {
		return err
	}

	l.logger.Printf("appended #%d to %s", entry.ID, slug)
	l.notify(Event{Category: entry.MainCategory, ID: entry.ID})
	return nil
}

func (l *Ledger) appendLocked(path string, entry models.LogEntry) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open ledger partition: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat ledger partition: %w", err)
	}
	prevSize := info.Size()

	var buf bytes.Buffer
	if prevSize == 0 {
		fmt.Fprintf(&buf, "%s%d\n", schemaTag, CurrentVersion)
	}
	w := csv.NewWriter(&buf)
	if prevSize == 0 {
		if err := w.Write(Header); err != nil {
			return err
		}
	}
	if err := w.Write(encode(entry)); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	if _, err := f.Write(buf.Bytes()); err != nil {
		rollback(f, prevSize)
		return fmt.Errorf("failed to append to ledger: %w", err)
	}
	if err := f.Sync(); err != nil {
		rollback(f, prevSize)
		return fmt.Errorf("failed to sync ledger: %w", err)
	}
	return nil
}

// rollback cuts a partially written row
func rollback(f *os.File, size int64) {
	_ = f.Truncate(size)
}

// encode renders an entry as a CSV record
func encode(e models.LogEntry) []string {
	start, end := "", ""
	if e.StartTime != nil {
		start = FormatTime(*e.StartTime)
	}
	if e.EndTime != nil {
		end = FormatTime(*e.EndTime)
	}
	return []string{
		strconv.FormatInt(e.ID, 10),
		e.Username,
		e.MainCategory,
		e.SubCategory,
		start,
		strconv.FormatFloat(e.ElapsedSeconds, 'f', -1, 64),
		end,
		strconv.Itoa(e.Quantity),
		e.Note,
	}
}

// Subscribe returns a channel of append events. Sends never block; when the
// buffer is full the event is dropped, since a pending event already implies
// a full re-read.
func (l *Ledger) Subscribe() <-chan Event {
	ch := make(chan Event, 16)
	l.mu.Lock()
	l.subs = append(l.subs, ch)
	l.mu.Unlock()
	return ch
}

func (l *Ledger) notify(ev Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, ch := range l.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Partitions lists partition files in name order
func (l *Ledger) Partitions() ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".csv") {
			continue
		}
		paths = append(paths, filepath.Join(l.dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// ReadAll returns the legacy log, if one is configured, followed by every
// row of every partition, so later rows are always newer for a given id.
// Each partition is read under its append lock.
func (l *Ledger) ReadAll(ctx context.Context) ([]models.LogEntry, []ParseWarning, error) {
	paths, err := l.Partitions()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list ledger partitions: %w", err)
	}

	var entries []models.LogEntry
	var warnings []ParseWarning
	if l.legacyPath != "" {
		got, warns, err := readFile(l.legacyPath, l.loc)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, nil, err
		}
		entries = append(entries, got...)
		warnings = append(warnings, warns...)
	}

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		slug := strings.TrimSuffix(filepath.Base(path), ".csv")
		unlock := l.locks.Lock(slug)
		got, warns, err := readFile(path, l.loc)
		unlock()
		if err != nil {
			return nil, nil, err
		}
		entries = append(entries, got...)
		warnings = append(warnings, warns...)
	}

	return entries, warnings, nil
}

// ReadCategory returns the rows of one partition
func (l *Ledger) ReadCategory(category string) ([]models.LogEntry, []ParseWarning, error) {
	unlock := l.locks.Lock(Slug(category))
	defer unlock()

	entries, warnings, err := readFile(l.PartitionPath(category), l.loc)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil, nil
	}
	return entries, warnings, err
}

func readFile(path string, loc *time.Location) ([]models.LogEntry, []ParseWarning, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f, filepath.Base(path), loc)
}

// Snapshot copies every partition into dir, each under its append lock,
// and returns the copied paths
func (l *Ledger) Snapshot(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	paths, err := l.Partitions()
	if err != nil {
		return nil, err
	}

	var copied []string
	for _, src := range paths {
		slug := strings.TrimSuffix(filepath.Base(src), ".csv")
		dst := filepath.Join(dir, filepath.Base(src))
		unlock := l.locks.Lock(slug)
		err := copyFile(src, dst)
		unlock()
		if err != nil {
			return copied, fmt.Errorf("failed to snapshot %s: %w", slug, err)
		}
		copied = append(copied, dst)
	}
	return copied, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// WriteEntries writes a tagged, headed CSV holding entries, readable by Parse
func WriteEntries(w io.Writer, entries []models.LogEntry) error {
	if _, err := fmt.Fprintf(w, "%s%d\n", schemaTag, CurrentVersion); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, e := range entries {
		if err := cw.Write(encode(e)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
