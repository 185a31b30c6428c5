package lifecycle

import (
	"errors"
	"fmt"
	"testing"

	"github.com/balkashynov/floortrack/internal/categories"
	"github.com/balkashynov/floortrack/internal/store"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	diskFull := errors.New("disk full")
	tests := []struct {
		name      string
		err       error
		wantField string
		wantIs    error
		storage   bool
	}{
		{"nil", nil, "", nil, false},
		{"not found", fmt.Errorf("load: %w", store.ErrNotFound), "", ErrNotFound, false},
		{"transition", invalidTransition("task %d is completed", 3), "", ErrInvalidTransition, false},
		{"category", &categories.ValidationError{Field: "subCategory", Reason: "required"}, "subCategory", nil, false},
		{"username", fmt.Errorf("%w: %q", store.ErrInvalidUsername, "../x"), "username", nil, false},
		{"validation passthrough", &ValidationError{Field: "quantity", Reason: "must be positive"}, "quantity", nil, false},
		{"io", diskFull, "", diskFull, true},
	}

	for _, tt := range tests {
		got := classify("complete", tt.err)
		if tt.err == nil {
			if got != nil {
				t.Errorf("%s: expected nil, got %v", tt.name, got)
			}
			continue
		}

		var verr *ValidationError
		if tt.wantField != "" {
			if !errors.As(got, &verr) || verr.Field != tt.wantField {
				t.Errorf("%s: expected validation error on %s, got %v", tt.name, tt.wantField, got)
			}
		}
		if tt.wantIs != nil && !errors.Is(got, tt.wantIs) {
			t.Errorf("%s: expected %v in chain, got %v", tt.name, tt.wantIs, got)
		}
		var serr *StorageError
		if errors.As(got, &serr) != tt.storage {
			t.Errorf("%s: storage error = %v, want %v", tt.name, !tt.storage, tt.storage)
		}
	}
}
