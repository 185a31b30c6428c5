// Package tui holds the interactive terminal screens: the add wizard, the
// task board and the running task timer.
package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/balkashynov/floortrack/internal/models"
)

// Tasks is the lifecycle surface the screens drive
type Tasks interface {
	AddTask(ctx context.Context, username, mainCategory, subCategory string) (models.TaskRecord, error)
	ListTasks(ctx context.Context, username string) ([]models.TaskRecord, error)
	StopTask(ctx context.Context, username string, id int64) (models.TaskRecord, error)
	CancelTask(ctx context.Context, username string, id int64) (models.TaskRecord, error)
	CompleteTask(ctx context.Context, username string, id int64, quantity int, note string) (models.TaskRecord, error)
	DeleteTask(ctx context.Context, username string, id int64) error
}

// taskResultMsg carries the outcome of a lifecycle call back into Update
type taskResultMsg struct {
	action string
	rec    models.TaskRecord
	err    error
}

// runAction wraps a lifecycle call as a tea command
func runAction(action string, fn func(context.Context) (models.TaskRecord, error)) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		rec, err := fn(ctx)
		return taskResultMsg{action: action, rec: rec, err: err}
	}
}

// FormatDuration formats a duration in a human-readable way
func FormatDuration(d time.Duration) string {
	if d.Hours() >= 1 {
		return fmt.Sprintf("%.1fh", d.Hours())
	} else if d.Minutes() >= 1 {
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
	return fmt.Sprintf("%.0fs", d.Seconds())
}
