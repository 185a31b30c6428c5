// Package store holds the per-user working set of task records.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/balkashynov/floortrack/internal/models"
)

var (
	// ErrNotFound is returned when a record id is unknown for the user
	ErrNotFound = errors.New("task not found")
	// ErrDuplicateID is returned by Create when the id is already taken
	ErrDuplicateID = errors.New("task id already exists")
	// ErrInvalidUsername is returned for usernames that cannot key a collection
	ErrInvalidUsername = errors.New("invalid username")
)

// RecordStore is the durable per-user collection of task records.
// Every mutating call persists the full collection before returning.
type RecordStore interface {
	Create(ctx context.Context, username string, rec models.TaskRecord) error
	List(ctx context.Context, username string) ([]models.TaskRecord, error)
	// Update applies mutate to the record under the user's lock. If mutate
	// returns an error nothing is persisted and the error is returned as is.
	Update(ctx context.Context, username string, id int64, mutate func(*models.TaskRecord) error) (models.TaskRecord, error)
	// Delete removes the record. Unknown ids are not an error. A non-nil
	// guard may veto the deletion of an existing record.
	Delete(ctx context.Context, username string, id int64, guard func(models.TaskRecord) error) error
	// Prune keeps only records for which keep returns true
	Prune(ctx context.Context, username string, keep func(models.TaskRecord) bool) (int, error)
	Users(ctx context.Context) ([]string, error)
	Close() error
}

// ValidateUsername rejects names that cannot safely key a collection
func ValidateUsername(username string) error {
	if strings.TrimSpace(username) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidUsername)
	}
	if strings.ContainsAny(username, `/\`) || strings.HasPrefix(username, ".") {
		return fmt.Errorf("%w: %q", ErrInvalidUsername, username)
	}
	return nil
}

func indexOf(records []models.TaskRecord, id int64) int {
	for i := range records {
		if records[i].ID == id {
			return i
		}
	}
	return -1
}
