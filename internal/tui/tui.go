package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/balkashynov/floortrack/internal/categories"
	"github.com/balkashynov/floortrack/internal/models"
)

// RunAddTaskTUI starts the add wizard and returns the started task
func RunAddTaskTUI(tasks Tasks, table *categories.Table, username string) (models.TaskRecord, string, bool, error) {
	p := tea.NewProgram(NewAddTaskModel(tasks, table, username), tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return models.TaskRecord{}, "", false, err
	}

	m, ok := finalModel.(AddTaskModel)
	if !ok {
		return models.TaskRecord{}, "", false, nil
	}
	rec, created := m.Created()
	if !created {
		fmt.Println("❌ Task creation cancelled.")
	}
	return rec, m.Username(), created, nil
}

// RunBoardTUI shows a worker's tasks and returns the task picked with enter
func RunBoardTUI(tasks Tasks, username string, records []models.TaskRecord) (models.TaskRecord, bool, error) {
	p := tea.NewProgram(NewBoardModel(tasks, username, records), tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return models.TaskRecord{}, false, err
	}
	m, ok := finalModel.(BoardModel)
	if !ok {
		return models.TaskRecord{}, false, nil
	}
	rec, picked := m.Selected()
	return rec, picked, nil
}

// RunTimerTUI runs the timer for one task and reports how it ended
func RunTimerTUI(tasks Tasks, username string, rec models.TaskRecord) error {
	p := tea.NewProgram(NewTimerModel(tasks, username, rec), tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	m, ok := finalModel.(TimerModel)
	if !ok {
		return nil
	}
	final := m.Record()
	if m.Completed() {
		elapsed, _ := final.Elapsed()
		fmt.Printf("✅ Completed task #%d: %s / %s\n", final.ID, final.MainCategory, final.SubCategory)
		fmt.Printf("📊 %d units in %s\n", final.QuantityValue(), FormatDuration(elapsed))
		return nil
	}

	if final.IsStopped() {
		elapsed, _ := final.Elapsed()
		fmt.Printf("\n⏹️  Task #%d is stopped at %s. Complete it with 'floortrack done %d <units>'.\n", final.ID, FormatDuration(elapsed), final.ID)
	} else {
		fmt.Printf("\n💡 Task #%d is still running (%s so far).\n", final.ID, FormatDuration(time.Since(final.StartTime)))
		fmt.Printf("   Use 'floortrack stop %d' to stop it or 'floortrack track %d' to reopen the timer.\n", final.ID, final.ID)
	}
	return nil
}
