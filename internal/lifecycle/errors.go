package lifecycle

import (
	"errors"
	"fmt"

	"github.com/balkashynov/floortrack/internal/categories"
	"github.com/balkashynov/floortrack/internal/store"
)

var (
	// ErrNotFound is returned when the id is unknown for the user
	ErrNotFound = store.ErrNotFound
	// ErrInvalidTransition is returned when the record's state forbids the operation
	ErrInvalidTransition = errors.New("invalid transition")
)

// ValidationError names the missing or malformed input field
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// StorageError wraps an I/O failure of the record store or completion log
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func invalidTransition(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidTransition, fmt.Sprintf(format, args...))
}

// classify maps errors from the store and category table onto the
// lifecycle taxonomy. Anything unrecognised is a storage failure.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var verr *ValidationError
	var serr *StorageError
	var cerr *categories.ValidationError
	switch {
	case errors.As(err, &verr), errors.As(err, &serr):
		return err
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidTransition):
		return err
	case errors.As(err, &cerr):
		return &ValidationError{Field: cerr.Field, Reason: cerr.Reason}
	case errors.Is(err, store.ErrInvalidUsername):
		return &ValidationError{Field: "username", Reason: err.Error()}
	}
	return &StorageError{Op: op, Err: err}
}
