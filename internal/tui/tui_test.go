package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/balkashynov/floortrack/internal/categories"
	"github.com/balkashynov/floortrack/internal/models"
)

type mockTasks struct {
	AddTaskFunc      func(ctx context.Context, username, mainCategory, subCategory string) (models.TaskRecord, error)
	ListTasksFunc    func(ctx context.Context, username string) ([]models.TaskRecord, error)
	StopTaskFunc     func(ctx context.Context, username string, id int64) (models.TaskRecord, error)
	CancelTaskFunc   func(ctx context.Context, username string, id int64) (models.TaskRecord, error)
	CompleteTaskFunc func(ctx context.Context, username string, id int64, quantity int, note string) (models.TaskRecord, error)
	DeleteTaskFunc   func(ctx context.Context, username string, id int64) error
}

func (m *mockTasks) AddTask(ctx context.Context, username, mainCategory, subCategory string) (models.TaskRecord, error) {
	return m.AddTaskFunc(ctx, username, mainCategory, subCategory)
}

func (m *mockTasks) ListTasks(ctx context.Context, username string) ([]models.TaskRecord, error) {
	return m.ListTasksFunc(ctx, username)
}

func (m *mockTasks) StopTask(ctx context.Context, username string, id int64) (models.TaskRecord, error) {
	return m.StopTaskFunc(ctx, username, id)
}

func (m *mockTasks) CancelTask(ctx context.Context, username string, id int64) (models.TaskRecord, error) {
	return m.CancelTaskFunc(ctx, username, id)
}

func (m *mockTasks) CompleteTask(ctx context.Context, username string, id int64, quantity int, note string) (models.TaskRecord, error) {
	return m.CompleteTaskFunc(ctx, username, id, quantity, note)
}

func (m *mockTasks) DeleteTask(ctx context.Context, username string, id int64) error {
	return m.DeleteTaskFunc(ctx, username, id)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func key(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func pendingRecord(id int64) models.TaskRecord {
	return models.TaskRecord{
		ID:           id,
		Username:     "alice",
		MainCategory: "Apex",
		SubCategory:  "Glue",
		StartTime:    time.Now().Add(-5 * time.Minute).Truncate(time.Second),
		Status:       models.StatusPending,
	}
}

func TestTimerStopAndComplete(t *testing.T) {
	t.Parallel()

	rec := pendingRecord(7)
	var gotQty int
	var gotNote string
	tasks := &mockTasks{
		StopTaskFunc: func(ctx context.Context, username string, id int64) (models.TaskRecord, error) {
			out := rec
			end := rec.StartTime.Add(5 * time.Minute)
			out.EndTime = &end
			return out, nil
		},
		CompleteTaskFunc: func(ctx context.Context, username string, id int64, quantity int, note string) (models.TaskRecord, error) {
			gotQty, gotNote = quantity, note
			out := rec
			end := rec.StartTime.Add(5 * time.Minute)
			out.EndTime = &end
			out.Quantity = &quantity
			out.Status = models.StatusCompleted
			return out, nil
		},
	}

	var model tea.Model = NewTimerModel(tasks, "alice", rec)
	model, cmd := model.Update(runes("s"))
	if cmd == nil {
		t.Fatal("Expected stop command")
	}
	model, _ = model.Update(cmd())
	if !model.(TimerModel).Record().IsStopped() {
		t.Fatal("Expected record to be stopped")
	}

	model, _ = model.Update(key(tea.KeyEnter))
	if model.(TimerModel).mode != modeComplete {
		t.Fatal("Expected completion form")
	}

	// quantity is required before moving on
	model, _ = model.Update(key(tea.KeyEnter))
	if model.(TimerModel).validationErr == "" {
		t.Error("Expected validation error for empty quantity")
	}

	model, _ = model.Update(runes("12"))
	model, _ = model.Update(key(tea.KeyEnter))
	model, _ = model.Update(runes("first batch"))
	model, cmd = model.Update(key(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("Expected complete command")
	}
	model, cmd = model.Update(cmd())
	if !isQuit(cmd) {
		t.Error("Expected the timer to quit after completion")
	}
	if !model.(TimerModel).Completed() {
		t.Error("Expected timer to report completion")
	}
	if gotQty != 12 || gotNote != "first batch" {
		t.Errorf("Expected 12 units with note, got %d %q", gotQty, gotNote)
	}
}

func TestTimerRejectsNonPositiveQuantity(t *testing.T) {
	t.Parallel()

	var model tea.Model = NewTimerModel(&mockTasks{}, "alice", pendingRecord(1))
	model, _ = model.Update(key(tea.KeyEnter))
	model, _ = model.Update(runes("0"))
	model, cmd := model.Update(key(tea.KeyEnter))
	if cmd != nil {
		t.Error("Expected no command for invalid quantity")
	}
	if !strings.Contains(model.(TimerModel).validationErr, "above zero") {
		t.Errorf("Unexpected validation error %q", model.(TimerModel).validationErr)
	}
}

func TestTimerKeepsRunningOnExit(t *testing.T) {
	t.Parallel()

	called := false
	tasks := &mockTasks{
		StopTaskFunc: func(ctx context.Context, username string, id int64) (models.TaskRecord, error) {
			called = true
			return models.TaskRecord{}, nil
		},
	}
	var model tea.Model = NewTimerModel(tasks, "alice", pendingRecord(1))
	model, cmd := model.Update(runes("q"))
	if !isQuit(cmd) {
		t.Error("Expected quit")
	}
	if called || model.(TimerModel).Record().IsStopped() {
		t.Error("Exit must not stop the task")
	}
}

func TestTimerShowsErrors(t *testing.T) {
	t.Parallel()

	tasks := &mockTasks{
		CancelTaskFunc: func(ctx context.Context, username string, id int64) (models.TaskRecord, error) {
			return models.TaskRecord{}, errors.New("storage down")
		},
	}
	rec := pendingRecord(1)
	end := rec.StartTime.Add(time.Minute)
	rec.EndTime = &end

	var model tea.Model = NewTimerModel(tasks, "alice", rec)
	model, cmd := model.Update(runes("c"))
	model, _ = model.Update(cmd())
	tm := model.(TimerModel)
	if tm.err == nil || !tm.Record().IsStopped() {
		t.Error("Expected error and unchanged record")
	}

	model, _ = model.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	if !strings.Contains(model.View(), "storage down") {
		t.Error("Expected error in view")
	}
}

func TestRenderBigClock(t *testing.T) {
	t.Parallel()

	short := renderBigClock(65 * time.Second)
	long := renderBigClock(time.Hour + time.Second)
	if len(strings.Split(short, "\n")) != 5 {
		t.Errorf("Expected 5 clock lines")
	}
	if len(long) <= len(short) {
		t.Error("Expected hours to widen the clock")
	}
}

func testTable() *categories.Table {
	return &categories.Table{Categories: []categories.Category{
		{Name: "Apex", SubCategories: []string{"Glue", "Press"}},
		{Name: "Sensor", SubCategories: []string{"Wiring"}},
	}}
}

func TestAddWizard(t *testing.T) {
	t.Parallel()

	var got [3]string
	tasks := &mockTasks{
		AddTaskFunc: func(ctx context.Context, username, mainCategory, subCategory string) (models.TaskRecord, error) {
			got = [3]string{username, mainCategory, subCategory}
			rec := pendingRecord(99)
			rec.MainCategory, rec.SubCategory = mainCategory, subCategory
			return rec, nil
		},
	}

	var model tea.Model = NewAddTaskModel(tasks, testTable(), "")
	model, _ = model.Update(key(tea.KeyEnter))
	if model.(AddTaskModel).validationErr == "" {
		t.Error("Expected worker name to be required")
	}

	model, _ = model.Update(runes("bob"))
	model, _ = model.Update(key(tea.KeyEnter))
	model, _ = model.Update(key(tea.KeyDown))
	model, _ = model.Update(key(tea.KeyEnter))
	model, _ = model.Update(key(tea.KeyEnter))
	if model.(AddTaskModel).currentStep != StepConfirm {
		t.Fatalf("Expected confirm step, got %d", model.(AddTaskModel).currentStep)
	}

	model, cmd := model.Update(key(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("Expected add command")
	}
	model, cmd = model.Update(cmd())
	if !isQuit(cmd) {
		t.Error("Expected wizard to quit")
	}
	if got != [3]string{"bob", "Sensor", "Wiring"} {
		t.Errorf("Unexpected add arguments %v", got)
	}
	if rec, ok := model.(AddTaskModel).Created(); !ok || rec.ID != 99 {
		t.Errorf("Expected created task 99, got %+v", rec)
	}
}

func TestAddWizardPrefilledWorker(t *testing.T) {
	t.Parallel()

	model := NewAddTaskModel(&mockTasks{}, testTable(), "carol")
	if model.currentStep != StepCategory || model.Username() != "carol" {
		t.Errorf("Expected to start at category step for carol")
	}

	next, cmd := model.Update(key(tea.KeyEsc))
	if next.(AddTaskModel).currentStep != StepWorker || isQuit(cmd) {
		t.Error("Expected esc to step back to the worker")
	}
}

func TestBoardFilterAndSelect(t *testing.T) {
	t.Parallel()

	first := pendingRecord(1)
	second := pendingRecord(2)
	second.MainCategory, second.SubCategory = "Sensor", "Wiring"

	var model tea.Model = NewBoardModel(&mockTasks{}, "alice", []models.TaskRecord{first, second})
	model, _ = model.Update(runes("/"))
	model, _ = model.Update(runes("wir"))
	model, _ = model.Update(key(tea.KeyEnter))
	if n := len(model.(BoardModel).visible); n != 1 {
		t.Fatalf("Expected 1 visible task, got %d", n)
	}

	model, cmd := model.Update(key(tea.KeyEnter))
	if !isQuit(cmd) {
		t.Error("Expected board to quit on selection")
	}
	if rec, ok := model.(BoardModel).Selected(); !ok || rec.ID != 2 {
		t.Errorf("Expected task 2 selected, got %+v", rec)
	}
}

func TestBoardDeleteReloads(t *testing.T) {
	t.Parallel()

	var deleted int64
	tasks := &mockTasks{
		DeleteTaskFunc: func(ctx context.Context, username string, id int64) error {
			deleted = id
			return nil
		},
		ListTasksFunc: func(ctx context.Context, username string) ([]models.TaskRecord, error) {
			return nil, nil
		},
	}

	var model tea.Model = NewBoardModel(tasks, "alice", []models.TaskRecord{pendingRecord(5)})
	model, cmd := model.Update(runes("d"))
	model, cmd = model.Update(cmd())
	if cmd == nil {
		t.Fatal("Expected reload after delete")
	}
	model, _ = model.Update(cmd())

	if deleted != 5 {
		t.Errorf("Expected task 5 deleted, got %d", deleted)
	}
	if n := len(model.(BoardModel).visible); n != 0 {
		t.Errorf("Expected empty board, got %d tasks", n)
	}
}

func TestHighlightBandWalksAcross(t *testing.T) {
	t.Parallel()

	h := &Highlight{band: 2, enabled: true, active: true}
	tests := []struct {
		frame  int
		lo, hi int
	}{
		{0, 0, 0},
		{1, 0, 1},
		{2, 0, 2},
		{4, 2, 4},
		{5, 3, 4},
		{6, 0, 0}, // wrapped: 4 glyphs plus the band width
		{8, 0, 2},
	}

	for _, tt := range tests {
		h.frame = tt.frame
		lo, hi := h.span(4)
		if lo != tt.lo || hi != tt.hi {
			t.Errorf("frame %d: expected [%d,%d), got [%d,%d)", tt.frame, tt.lo, tt.hi, lo, hi)
		}
	}
}

func TestHighlightStatic(t *testing.T) {
	t.Parallel()

	h := &Highlight{band: 4}
	h.SetActive(true)
	if h.Moving() || h.Tick() != nil {
		t.Error("Reduced motion should not tick")
	}
	out := h.Render("a long subcategory name", 10)
	if !strings.Contains(out, "a long ...") {
		t.Errorf("Expected truncated text, got %q", out)
	}
}

func TestHighlightSingleTickInFlight(t *testing.T) {
	t.Parallel()

	h := &Highlight{band: 4, enabled: true, active: true}
	if h.Tick() == nil {
		t.Fatal("Expected a tick")
	}
	if h.Tick() != nil {
		t.Error("Expected no second tick while one is pending")
	}
	h.Advance()
	if h.Tick() == nil {
		t.Error("Expected a tick after the pending one arrived")
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"Epoxy", 10, "Epoxy"},
		{"Sensor Bag Prep", 8, "Senso..."},
		{"Ölwanne prüfen", 6, "Ölw..."},
		{"Apex", 2, "Ap"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d): expected %q, got %q", tt.in, tt.width, tt.want, got)
		}
	}
}
