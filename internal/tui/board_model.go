package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/balkashynov/floortrack/internal/models"
)

// Focus represents what UI element has focus
type Focus int

const (
	FocusTable Focus = iota
	FocusSearch
)

// BoardModel lists one worker's tasks and runs quick transitions on them
type BoardModel struct {
	width  int
	height int

	tasks    Tasks
	username string
	now      func() time.Time

	all          []models.TaskRecord
	visible      []models.TaskRecord
	selectedTask int

	focus       Focus
	searchQuery string

	highlight *Highlight

	currentPage  int
	tasksPerPage int

	busy     bool
	err      error
	selected *models.TaskRecord
}

// tasksLoadedMsg replaces the board contents
type tasksLoadedMsg struct {
	records []models.TaskRecord
	err     error
}

// NewBoardModel creates a board over an already loaded task list
func NewBoardModel(tasks Tasks, username string, records []models.TaskRecord) BoardModel {
	m := BoardModel{
		tasks:        tasks,
		username:     username,
		now:          time.Now,
		all:          records,
		highlight:    NewHighlight(),
		tasksPerPage: 10,
	}
	m.applyFilter()
	return m
}

// Selected returns the task picked with enter
func (m BoardModel) Selected() (models.TaskRecord, bool) {
	if m.selected == nil {
		return models.TaskRecord{}, false
	}
	return *m.selected, true
}

// Init initializes the model
func (m BoardModel) Init() tea.Cmd {
	return m.highlight.Tick()
}

func (m BoardModel) reload() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		records, err := m.tasks.ListTasks(ctx, m.username)
		return tasksLoadedMsg{records: records, err: err}
	}
}

func (m *BoardModel) applyFilter() {
	query := strings.ToLower(strings.TrimSpace(m.searchQuery))
	m.visible = nil
	for _, rec := range m.all {
		if query == "" ||
			strings.Contains(strings.ToLower(rec.MainCategory), query) ||
			strings.Contains(strings.ToLower(rec.SubCategory), query) ||
			strings.Contains(strings.ToLower(rec.Note), query) {
			m.visible = append(m.visible, rec)
		}
	}
	if m.selectedTask >= len(m.visible) {
		m.selectedTask = max(len(m.visible)-1, 0)
	}
	if m.tasksPerPage > 0 {
		m.currentPage = m.selectedTask / m.tasksPerPage
	}
}

func (m BoardModel) current() (models.TaskRecord, bool) {
	if m.selectedTask < 0 || m.selectedTask >= len(m.visible) {
		return models.TaskRecord{}, false
	}
	return m.visible[m.selectedTask], true
}

// Update handles messages
func (m BoardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case highlightTickMsg:
		m.highlight.Advance()
		return m, m.highlight.Tick()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.tasksPerPage = max(m.height-12, 3)
		m.currentPage = m.selectedTask / m.tasksPerPage
		return m, nil

	case tasksLoadedMsg:
		m.busy = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.all = msg.records
		m.applyFilter()
		return m, nil

	case taskResultMsg:
		if msg.err != nil {
			m.busy = false
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		return m, m.reload()

	case tea.KeyMsg:
		if m.focus == FocusSearch {
			return m.handleSearchKeys(msg)
		}
		return m.handleTableKeys(msg)
	}

	return m, nil
}

func (m BoardModel) handleTableKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		if msg.String() == "esc" && m.searchQuery != "" {
			m.searchQuery = ""
			m.applyFilter()
			return m, nil
		}
		return m, tea.Quit

	case "up", "k":
		return m.moveSelection(-1), nil
	case "down", "j":
		return m.moveSelection(1), nil
	case "left", "h":
		return m.turnPage(-1), nil
	case "right", "l":
		return m.turnPage(1), nil

	case "/":
		m.focus = FocusSearch
		m.highlight.SetActive(false)
		return m, nil

	case "r":
		m.busy = true
		return m, m.reload()

	case "enter":
		if rec, ok := m.current(); ok && !rec.IsCompleted() {
			m.selected = &rec
			return m, tea.Quit
		}
		return m, nil

	case "s", "c", "d":
		rec, ok := m.current()
		if !ok || m.busy {
			return m, nil
		}
		return m.transition(msg.String(), rec)
	}
	return m, nil
}

func (m BoardModel) transition(key string, rec models.TaskRecord) (tea.Model, tea.Cmd) {
	m.busy = true
	switch key {
	case "s":
		return m, runAction("stop", func(ctx context.Context) (models.TaskRecord, error) {
			return m.tasks.StopTask(ctx, m.username, rec.ID)
		})
	case "c":
		return m, runAction("cancel", func(ctx context.Context) (models.TaskRecord, error) {
			return m.tasks.CancelTask(ctx, m.username, rec.ID)
		})
	default:
		return m, runAction("delete", func(ctx context.Context) (models.TaskRecord, error) {
			return rec, m.tasks.DeleteTask(ctx, m.username, rec.ID)
		})
	}
}

func (m BoardModel) handleSearchKeys(msg tea.KeyMsg) (BoardModel, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.searchQuery = ""
		fallthrough
	case tea.KeyEnter:
		m.focus = FocusTable
		m.highlight.SetActive(true)
		m.applyFilter()
		return m, m.highlight.Tick()
	case tea.KeyBackspace:
		if r := []rune(m.searchQuery); len(r) > 0 {
			m.searchQuery = string(r[:len(r)-1])
		}
	case tea.KeyRunes, tea.KeySpace:
		m.searchQuery += string(msg.Runes)
	}
	m.applyFilter()
	return m, nil
}

func (m BoardModel) moveSelection(delta int) BoardModel {
	next := m.selectedTask + delta
	if next < 0 || next >= len(m.visible) {
		return m
	}
	m.selectedTask = next
	m.currentPage = next / m.tasksPerPage
	m.highlight.Reset()
	return m
}

func (m BoardModel) turnPage(delta int) BoardModel {
	pages := (len(m.visible) + m.tasksPerPage - 1) / m.tasksPerPage
	next := m.currentPage + delta
	if next < 0 || next >= pages {
		return m
	}
	m.currentPage = next
	m.selectedTask = min(next*m.tasksPerPage, len(m.visible)-1)
	m.highlight.Reset()
	return m
}

// View renders the board
func (m BoardModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	leftWidth := m.width * 60 / 100
	rightWidth := m.width - leftWidth - 1

	content := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderTaskTable(leftWidth),
		" ",
		m.renderTaskDetails(rightWidth),
	)

	bottom := m.renderHelpBar()
	if m.focus == FocusSearch {
		bottom = m.renderSearchBar()
	}
	return lipgloss.JoinVertical(lipgloss.Left, "", content, "", bottom)
}

func statusLabel(rec models.TaskRecord) (string, string) {
	switch {
	case rec.IsCompleted():
		return "✓ done", ColorSuccess
	case rec.IsStopped():
		return "■ stopped", ColorWarning
	default:
		return "▶ running", ColorAccentBright
	}
}

func (m BoardModel) elapsed(rec models.TaskRecord) time.Duration {
	if d, ok := rec.Elapsed(); ok {
		return d
	}
	return m.now().Sub(rec.StartTime)
}

func (m BoardModel) renderTaskTable(width int) string {
	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorAccentBright)).
		Render("📋 Tasks for " + m.username))
	b.WriteString("\n\n")

	if len(m.visible) == 0 {
		b.WriteString(lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorSecondaryText)).
			Italic(true).
			Render("No tasks found"))
		return lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(ColorBorder)).
			Width(width).
			Render(b.String())
	}

	idWidth, statusWidth, timeWidth := 20, 10, 8
	titleWidth := max(width-4-idWidth-statusWidth-timeWidth-6, 20)

	b.WriteString(lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorAccentBright)).
		Padding(0, 1).
		Render(fmt.Sprintf("%-*s %-*s %-*s %*s", idWidth, "ID", titleWidth, "TASK", statusWidth, "STATUS", timeWidth, "TIME")))
	b.WriteString("\n\n")

	start := m.currentPage * m.tasksPerPage
	end := min(start+m.tasksPerPage, len(m.visible))
	for i := start; i < end; i++ {
		rec := m.visible[i]

		title := fmt.Sprintf("%-*s", titleWidth, truncate(rec.MainCategory+" / "+rec.SubCategory, titleWidth-1))
		if i == m.selectedTask {
			title = m.highlight.Render(title, titleWidth)
		}

		label, color := statusLabel(rec)
		status := lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(fmt.Sprintf("%-*s", statusWidth, label))

		row := fmt.Sprintf("%-*d %s %s %*s", idWidth, rec.ID, title, status, timeWidth, FormatDuration(m.elapsed(rec)))
		if i == m.selectedTask {
			b.WriteString(lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color(ColorAccentMain)).
				Bold(true).
				Padding(0, 1).
				Render(row))
		} else {
			b.WriteString(" " + row)
		}
		b.WriteString("\n")
	}

	if m.tasksPerPage < len(m.visible) {
		pages := (len(m.visible) + m.tasksPerPage - 1) / m.tasksPerPage
		b.WriteString(lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorHelpText)).
			Align(lipgloss.Center).
			Width(width - 2).
			MarginTop(1).
			Render(fmt.Sprintf("Page %d/%d (%d tasks)", m.currentPage+1, pages, len(m.visible))))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorBorder)).
		Width(width).
		Render(b.String())
}

func (m BoardModel) renderTaskDetails(width int) string {
	var b strings.Builder

	rec, ok := m.current()
	if !ok {
		b.WriteString(centered(width).
			Foreground(lipgloss.Color(ColorAccentMain)).
			Bold(true).
			Render("floortrack"))
		b.WriteString("\n")
		b.WriteString(centered(width).
			Foreground(lipgloss.Color(ColorSecondaryText)).
			Italic(true).
			MarginTop(2).
			Render("Select a task to view details"))
	} else {
		b.WriteString(lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(ColorPrimaryText)).
			Width(width).
			Render("📋 " + rec.MainCategory))
		b.WriteString("\n\n")

		label, color := statusLabel(rec)
		field := func(name, value, color string) {
			b.WriteString(name + ": ")
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(value))
			b.WriteString("\n")
		}
		field("Step", rec.SubCategory, ColorAccentBright)
		field("Status", label, color)
		field("Started", rec.StartTime.Local().Format("Jan 02 15:04:05"), ColorSecondaryText)
		if rec.EndTime != nil {
			field("Ended", rec.EndTime.Local().Format("Jan 02 15:04:05"), ColorSecondaryText)
		}
		field("Elapsed", FormatDuration(m.elapsed(rec)), ColorPrimaryText)
		if rec.Quantity != nil {
			field("Units", fmt.Sprint(*rec.Quantity), ColorSuccess)
		}
		if rec.Note != "" {
			b.WriteString("\nNotes:\n")
			b.WriteString(lipgloss.NewStyle().
				Foreground(lipgloss.Color(ColorSecondaryText)).
				Italic(true).
				Width(width - 2).
				Render(rec.Note))
		}
	}

	if m.err != nil {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(ColorError)).Width(width - 2).Render("✗ " + m.err.Error()))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorBorder)).
		Width(width).
		Render(b.String())
}

func (m BoardModel) renderSearchBar() string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorPrimaryText)).
		Background(lipgloss.Color(ColorBorder)).
		Padding(0, 1).
		Width(m.width - 2).
		Render("Search: " + m.searchQuery + "█")
}

func (m BoardModel) renderHelpBar() string {
	return centered(m.width).
		Foreground(lipgloss.Color(ColorHelpText)).
		Italic(true).
		Render("↑/↓ nav · ←/→ page · / search · enter timer · s stop · c resume · d delete · r refresh · q quit")
}
