// Package storetest holds behaviour tests shared by every RecordStore backend.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/balkashynov/floortrack/internal/models"
	"github.com/balkashynov/floortrack/internal/store"
)

// Factory returns a fresh, empty store for one subtest
type Factory func(t *testing.T) store.RecordStore

var errVeto = errors.New("veto")

func newRecord(id int64, username string) models.TaskRecord {
	return models.TaskRecord{
		ID:           id,
		Username:     username,
		MainCategory: "Apex",
		SubCategory:  "Glue (MI 1.1, 1.2, 1.3, 1.4)",
		StartTime:    time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		Status:       models.StatusPending,
	}
}

// Run exercises the RecordStore contract against a backend
func Run(t *testing.T, newStore Factory) {
	ctx := context.Background()

	t.Run("UnknownUserIsEmpty", func(t *testing.T) {
		s := newStore(t)
		records, err := s.List(ctx, "nobody")
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(records) != 0 {
			t.Errorf("Expected no records, got %d", len(records))
		}
	})

	t.Run("CreateThenList", func(t *testing.T) {
		s := newStore(t)
		if err := s.Create(ctx, "alice", newRecord(1, "alice")); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		records, err := s.List(ctx, "alice")
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(records) != 1 {
			t.Fatalf("Expected 1 record, got %d", len(records))
		}
		if records[0].ID != 1 || records[0].EndTime != nil || records[0].State() != models.StatusPending {
			t.Errorf("Unexpected record: %+v", records[0])
		}

		other, err := s.List(ctx, "bob")
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(other) != 0 {
			t.Errorf("Expected bob's collection to be empty, got %d", len(other))
		}
	})

	t.Run("CreateDuplicate", func(t *testing.T) {
		s := newStore(t)
		if err := s.Create(ctx, "alice", newRecord(1, "alice")); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		err := s.Create(ctx, "alice", newRecord(1, "alice"))
		if !errors.Is(err, store.ErrDuplicateID) {
			t.Errorf("Expected ErrDuplicateID, got %v", err)
		}
	})

	t.Run("UpdateUnknown", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Update(ctx, "alice", 42, func(*models.TaskRecord) error { return nil })
		if !errors.Is(err, store.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("UpdatePersists", func(t *testing.T) {
		s := newStore(t)
		if err := s.Create(ctx, "alice", newRecord(7, "alice")); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		end := time.Date(2024, 1, 1, 10, 5, 0, 0, time.UTC)
		qty := 5
		updated, err := s.Update(ctx, "alice", 7, func(rec *models.TaskRecord) error {
			rec.EndTime = &end
			rec.Quantity = &qty
			rec.Status = models.StatusCompleted
			return nil
		})
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		if !updated.IsCompleted() {
			t.Errorf("Expected returned record to be completed")
		}

		records, _ := s.List(ctx, "alice")
		if len(records) != 1 || !records[0].IsCompleted() || records[0].QuantityValue() != 5 {
			t.Errorf("Update not visible on read: %+v", records)
		}
		if records[0].EndTime == nil || !records[0].EndTime.Equal(end) {
			t.Errorf("Expected end time %v, got %v", end, records[0].EndTime)
		}
	})

	t.Run("UpdateMutatorErrorLeavesStore", func(t *testing.T) {
		s := newStore(t)
		if err := s.Create(ctx, "alice", newRecord(7, "alice")); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		_, err := s.Update(ctx, "alice", 7, func(rec *models.TaskRecord) error {
			rec.Status = models.StatusCompleted
			return errVeto
		})
		if !errors.Is(err, errVeto) {
			t.Fatalf("Expected mutator error, got %v", err)
		}
		records, _ := s.List(ctx, "alice")
		if records[0].IsCompleted() {
			t.Errorf("Record was persisted despite mutator error")
		}
	})

	t.Run("DeleteIdempotent", func(t *testing.T) {
		s := newStore(t)
		if err := s.Create(ctx, "alice", newRecord(1, "alice")); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if err := s.Delete(ctx, "alice", 99, nil); err != nil {
			t.Errorf("Deleting unknown id should succeed, got %v", err)
		}
		if err := s.Delete(ctx, "alice", 1, nil); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if err := s.Delete(ctx, "alice", 1, nil); err != nil {
			t.Errorf("Second delete should succeed, got %v", err)
		}
		records, _ := s.List(ctx, "alice")
		if len(records) != 0 {
			t.Errorf("Expected empty collection, got %d", len(records))
		}
	})

	t.Run("DeleteGuardVeto", func(t *testing.T) {
		s := newStore(t)
		if err := s.Create(ctx, "alice", newRecord(1, "alice")); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		err := s.Delete(ctx, "alice", 1, func(models.TaskRecord) error { return errVeto })
		if !errors.Is(err, errVeto) {
			t.Fatalf("Expected veto, got %v", err)
		}
		records, _ := s.List(ctx, "alice")
		if len(records) != 1 {
			t.Errorf("Expected record to survive veto")
		}
	})

	t.Run("Prune", func(t *testing.T) {
		s := newStore(t)
		done := newRecord(1, "alice")
		done.Status = models.StatusCompleted
		if err := s.Create(ctx, "alice", done); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if err := s.Create(ctx, "alice", newRecord(2, "alice")); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		removed, err := s.Prune(ctx, "alice", func(r models.TaskRecord) bool { return !r.IsCompleted() })
		if err != nil {
			t.Fatalf("Prune failed: %v", err)
		}
		if removed != 1 {
			t.Errorf("Expected 1 removed, got %d", removed)
		}
		records, _ := s.List(ctx, "alice")
		if len(records) != 1 || records[0].ID != 2 {
			t.Errorf("Unexpected records after prune: %+v", records)
		}
	})

	t.Run("Users", func(t *testing.T) {
		s := newStore(t)
		for _, u := range []string{"bob", "alice"} {
			if err := s.Create(ctx, u, newRecord(1, u)); err != nil {
				t.Fatalf("Create failed: %v", err)
			}
		}
		users, err := s.Users(ctx)
		if err != nil {
			t.Fatalf("Users failed: %v", err)
		}
		if len(users) != 2 || users[0] != "alice" || users[1] != "bob" {
			t.Errorf("Expected [alice bob], got %v", users)
		}
	})

	t.Run("InvalidUsername", func(t *testing.T) {
		s := newStore(t)
		for _, name := range []string{"", "  ", "../etc", "a/b", ".hidden"} {
			if _, err := s.List(ctx, name); !errors.Is(err, store.ErrInvalidUsername) {
				t.Errorf("List(%q): expected ErrInvalidUsername, got %v", name, err)
			}
		}
	})

	t.Run("ConcurrentUpdatesNoLostWrites", func(t *testing.T) {
		s := newStore(t)
		const n = 20
		for i := 1; i <= n; i++ {
			if err := s.Create(ctx, "alice", newRecord(int64(i), "alice")); err != nil {
				t.Fatalf("Create failed: %v", err)
			}
		}

		var wg sync.WaitGroup
		errs := make(chan error, n)
		for i := 1; i <= n; i++ {
			wg.Add(1)
			go func(id int64) {
				defer wg.Done()
				qty := int(id)
				_, err := s.Update(ctx, "alice", id, func(rec *models.TaskRecord) error {
					end := rec.StartTime.Add(time.Minute)
					rec.EndTime = &end
					rec.Quantity = &qty
					rec.Status = models.StatusCompleted
					return nil
				})
				if err != nil {
					errs <- fmt.Errorf("update #%d: %w", id, err)
				}
			}(int64(i))
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			t.Error(err)
		}

		records, err := s.List(ctx, "alice")
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		completed := 0
		for _, rec := range records {
			if rec.IsCompleted() {
				completed++
			}
		}
		if completed != n {
			t.Errorf("Expected %d completed records, got %d", n, completed)
		}
	})
}
