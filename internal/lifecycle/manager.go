// Package lifecycle enforces the task state machine over the record store
// and the completion log.
//
//	add -> pending (running) -> stop -> pending (stopped) -> complete -> completed
//	                 ^                        |                            |
//	                 +-------- cancel --------+                           edit
//
// Only pending records can be deleted. Completing writes the log row before
// the record is committed, so a failed append leaves the record pending.
package lifecycle

import (
	"context"
	"errors"
	"io"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/balkashynov/floortrack/internal/ids"
	"github.com/balkashynov/floortrack/internal/models"
	"github.com/balkashynov/floortrack/internal/store"
)

// Log is the append side of the completion log
type Log interface {
	Append(ctx context.Context, entry models.LogEntry) error
}

// Categories validates a main/sub category pair
type Categories interface {
	Validate(mainCategory, subCategory string) error
}

// maxIDAttempts bounds retries when a generated id is already taken
const maxIDAttempts = 3

// Manager runs lifecycle transitions
type Manager struct {
	store      store.RecordStore
	log        Log
	categories Categories
	ids        ids.Generator
	now        func() time.Time
	logger     *log.Logger
}

// Option customises a Manager
type Option func(*Manager)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithLogger sets the transition logger
func WithLogger(l *log.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// NewManager wires a manager
func NewManager(st store.RecordStore, lg Log, cats Categories, gen ids.Generator, opts ...Option) *Manager {
	m := &Manager{
		store:      st,
		log:        lg,
		categories: cats,
		ids:        gen,
		now:        time.Now,
		logger:     log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// timestamp returns the current time at the precision the log keeps, so
// the stored record and its log row agree
func (m *Manager) timestamp() time.Time {
	return m.now().Truncate(time.Second)
}

func requireUsername(username string) error {
	if strings.TrimSpace(username) == "" {
		return &ValidationError{Field: "username", Reason: "required"}
	}
	return classify("validate username", store.ValidateUsername(username))
}

func requireQuantity(quantity int) error {
	if quantity <= 0 {
		return &ValidationError{Field: "quantity", Reason: "must be a positive number"}
	}
	return nil
}

// AddTask creates a running pending record
func (m *Manager) AddTask(ctx context.Context, username, mainCategory, subCategory string) (models.TaskRecord, error) {
	if err := requireUsername(username); err != nil {
		return models.TaskRecord{}, err
	}
	if err := m.categories.Validate(mainCategory, subCategory); err != nil {
		return models.TaskRecord{}, classify("validate category", err)
	}

	rec := models.TaskRecord{
		Username:     username,
		MainCategory: mainCategory,
		SubCategory:  subCategory,
		StartTime:    m.timestamp(),
		Status:       models.StatusPending,
	}

	var err error
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		rec.ID = m.ids.Next()
		err = m.store.Create(ctx, username, rec)
		if !errors.Is(err, store.ErrDuplicateID) {
			break
		}
	}
	if err != nil {
		return models.TaskRecord{}, classify("create task", err)
	}

	m.logger.Printf("%s started #%d (%s / %s)", username, rec.ID, mainCategory, subCategory)
	return rec, nil
}

// ListTasks returns the user's records: pending by start time, then
// completed with the most recently finished first
func (m *Manager) ListTasks(ctx context.Context, username string) ([]models.TaskRecord, error) {
	if err := requireUsername(username); err != nil {
		return nil, err
	}
	records, err := m.store.List(ctx, username)
	if err != nil {
		return nil, classify("list tasks", err)
	}

	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.IsCompleted() != b.IsCompleted() {
			return !a.IsCompleted()
		}
		if !a.IsCompleted() {
			return a.StartTime.Before(b.StartTime)
		}
		return finishedAt(a).After(finishedAt(b))
	})
	return records, nil
}

func finishedAt(rec models.TaskRecord) time.Time {
	if rec.EndTime == nil {
		return rec.StartTime
	}
	return *rec.EndTime
}

// StopTask records the end time of a running task
func (m *Manager) StopTask(ctx context.Context, username string, id int64) (models.TaskRecord, error) {
	if err := requireUsername(username); err != nil {
		return models.TaskRecord{}, err
	}

	rec, err := m.store.Update(ctx, username, id, func(rec *models.TaskRecord) error {
		if rec.IsCompleted() {
			return invalidTransition("task #%d is already completed", id)
		}
		if rec.IsStopped() {
			return invalidTransition("task #%d is already stopped", id)
		}
		end := m.timestamp()
		rec.EndTime = &end
		return nil
	})
	if err != nil {
		return models.TaskRecord{}, classify("stop task", err)
	}

	m.logger.Printf("%s stopped #%d", username, id)
	return rec, nil
}

// CancelTask clears the end time of a stopped task so it runs again
func (m *Manager) CancelTask(ctx context.Context, username string, id int64) (models.TaskRecord, error) {
	if err := requireUsername(username); err != nil {
		return models.TaskRecord{}, err
	}

	rec, err := m.store.Update(ctx, username, id, func(rec *models.TaskRecord) error {
		if rec.IsCompleted() {
			return invalidTransition("task #%d is already completed", id)
		}
		if !rec.IsStopped() {
			return invalidTransition("task #%d is not stopped", id)
		}
		rec.EndTime = nil
		return nil
	})
	if err != nil {
		return models.TaskRecord{}, classify("cancel stop", err)
	}

	m.logger.Printf("%s resumed #%d", username, id)
	return rec, nil
}

// CompleteTask records the quantity and finishes the task. A running task
// is stopped at the current time first. The log row is appended before the
// record changes; if the append fails the record stays pending.
func (m *Manager) CompleteTask(ctx context.Context, username string, id int64, quantity int, note string) (models.TaskRecord, error) {
	if err := requireUsername(username); err != nil {
		return models.TaskRecord{}, err
	}
	if err := requireQuantity(quantity); err != nil {
		return models.TaskRecord{}, err
	}

	rec, err := m.store.Update(ctx, username, id, func(rec *models.TaskRecord) error {
		if rec.IsCompleted() {
			return invalidTransition("task #%d is already completed, edit it instead", id)
		}

		next := *rec
		if next.EndTime == nil {
			end := m.timestamp()
			next.EndTime = &end
		}
		q := quantity
		next.Quantity = &q
		next.Note = note
		next.Status = models.StatusCompleted

		if err := m.log.Append(ctx, models.EntryFromRecord(next)); err != nil {
			return &StorageError{Op: "append completion log", Err: err}
		}
		*rec = next
		return nil
	})
	if err != nil {
		return models.TaskRecord{}, classify("complete task", err)
	}

	m.logger.Printf("%s completed #%d (qty %d)", username, id, quantity)
	return rec, nil
}

// EditTask rewrites quantity and note of a completed task and appends a
// new log row with the same id
func (m *Manager) EditTask(ctx context.Context, username string, id int64, quantity int, note string) (models.TaskRecord, error) {
	if err := requireUsername(username); err != nil {
		return models.TaskRecord{}, err
	}
	if err := requireQuantity(quantity); err != nil {
		return models.TaskRecord{}, err
	}

	rec, err := m.store.Update(ctx, username, id, func(rec *models.TaskRecord) error {
		if !rec.IsCompleted() {
			return invalidTransition("task #%d is not completed", id)
		}

		next := *rec
		q := quantity
		next.Quantity = &q
		next.Note = note

		if err := m.log.Append(ctx, models.EntryFromRecord(next)); err != nil {
			return &StorageError{Op: "append completion log", Err: err}
		}
		*rec = next
		return nil
	})
	if err != nil {
		return models.TaskRecord{}, classify("edit task", err)
	}

	m.logger.Printf("%s edited #%d (qty %d)", username, id, quantity)
	return rec, nil
}

// DeleteTask removes a pending task. Unknown ids are not an error.
func (m *Manager) DeleteTask(ctx context.Context, username string, id int64) error {
	if err := requireUsername(username); err != nil {
		return err
	}

	err := m.store.Delete(ctx, username, id, func(rec models.TaskRecord) error {
		if rec.IsCompleted() {
			return invalidTransition("task #%d is completed and can only be edited", id)
		}
		return nil
	})
	if err != nil {
		return classify("delete task", err)
	}

	m.logger.Printf("%s deleted #%d", username, id)
	return nil
}
