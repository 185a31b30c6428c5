package commands

import (
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/balkashynov/floortrack/internal/models"
)

func TestParseID(t *testing.T) {
	t.Parallel()

	if id, err := parseID("1823749283742"); err != nil || id != 1823749283742 {
		t.Errorf("Expected id 1823749283742, got %d (%v)", id, err)
	}
	if _, err := parseID("abc"); err == nil {
		t.Error("Expected error for non-numeric id")
	}
}

func TestFilterRecords(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	qty := 3
	records := []models.TaskRecord{
		{ID: 1, StartTime: now.Add(-time.Hour), Status: models.StatusPending},
		{ID: 2, StartTime: now.AddDate(0, 0, -5), Status: models.StatusCompleted, Quantity: &qty},
		{ID: 3, StartTime: now.Add(-2 * time.Hour), Status: models.StatusCompleted, Quantity: &qty},
	}

	tests := []struct {
		name    string
		status  string
		since   string
		want    []int64
		wantErr bool
	}{
		{"no filter", "", "", []int64{1, 2, 3}, false},
		{"completed", "completed", "", []int64{2, 3}, false},
		{"since two days", "", "2 days", []int64{1, 3}, false},
		{"both", "completed", "1d", []int64{3}, false},
		{"bad status", "archived", "", nil, true},
		{"bad since", "", "soon", nil, true},
	}

	for _, tt := range tests {
		cmd := &cobra.Command{}
		cmd.Flags().String("status", tt.status, "")
		cmd.Flags().String("since", tt.since, "")

		got, err := filterRecords(cmd, records, now)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: error = %v, wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if len(got) != len(tt.want) {
			t.Errorf("%s: expected %d records, got %d", tt.name, len(tt.want), len(got))
			continue
		}
		for i := range got {
			if got[i].ID != tt.want[i] {
				t.Errorf("%s: expected id %d at %d, got %d", tt.name, tt.want[i], i, got[i].ID)
			}
		}
	}

	if len(records) != 3 || records[0].ID != 1 {
		t.Error("filterRecords must not modify its input")
	}
}
