package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/balkashynov/floortrack/internal/models"
)

type timerMode int

const (
	modeClock timerMode = iota
	modeComplete
)

// TimerModel shows a running task and drives stop, cancel and complete
type TimerModel struct {
	width  int
	height int

	tasks    Tasks
	username string
	rec      models.TaskRecord
	now      func() time.Time

	elapsedTime    time.Duration
	timerAnimation int

	mode   timerMode
	inputs []textinput.Model // quantity, note
	focus  int

	busy          bool
	validationErr string
	err           error

	completed bool
	exiting   bool
}

// timerTickMsg is sent every second to update the timer
type timerTickMsg struct{}

// animationTickMsg is sent for the header animation
type animationTickMsg struct{}

// NewTimerModel creates the timer screen for one task record
func NewTimerModel(tasks Tasks, username string, rec models.TaskRecord) TimerModel {
	inputs := make([]textinput.Model, 2)
	for i := range inputs {
		inputs[i] = textinput.New()
		inputs[i].Width = 40
		inputs[i].TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPrimaryText))
		inputs[i].PlaceholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPlaceholder))
		inputs[i].Cursor.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright))
	}
	inputs[0].Placeholder = "Units produced (required)"
	inputs[0].CharLimit = 9
	inputs[1].Placeholder = "Note (Enter to skip)"
	inputs[1].CharLimit = 500

	m := TimerModel{
		tasks:    tasks,
		username: username,
		rec:      rec,
		now:      time.Now,
		inputs:   inputs,
	}
	m.elapsedTime = m.elapsed()
	return m
}

// Record returns the task as last seen by the screen
func (m TimerModel) Record() models.TaskRecord {
	return m.rec
}

// Completed reports whether the task was completed from the screen
func (m TimerModel) Completed() bool {
	return m.completed
}

// Init starts the clock and animation tickers
func (m TimerModel) Init() tea.Cmd {
	return tea.Batch(
		tea.Tick(time.Second, func(t time.Time) tea.Msg {
			return timerTickMsg{}
		}),
		tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
			return animationTickMsg{}
		}),
	)
}

func (m TimerModel) elapsed() time.Duration {
	if d, ok := m.rec.Elapsed(); ok {
		return d
	}
	return m.now().Sub(m.rec.StartTime)
}

func (m TimerModel) done() bool {
	return m.completed || m.exiting
}

// Update handles messages
func (m TimerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case timerTickMsg:
		m.elapsedTime = m.elapsed()
		if !m.done() {
			return m, tea.Tick(time.Second, func(t time.Time) tea.Msg {
				return timerTickMsg{}
			})
		}
		return m, nil

	case animationTickMsg:
		// the hourglass only turns while the clock runs
		if !m.rec.IsStopped() {
			m.timerAnimation = (m.timerAnimation + 1) % 4
		}
		if !m.done() {
			return m, tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
				return animationTickMsg{}
			})
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case taskResultMsg:
		m.busy = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.rec = msg.rec
		m.elapsedTime = m.elapsed()
		if msg.action == "complete" {
			m.completed = true
			return m, tea.Quit
		}
		return m, nil

	case tea.KeyMsg:
		if m.mode == modeComplete {
			return m.handleFormKeys(msg)
		}
		return m.handleClockKeys(msg)
	}

	return m, nil
}

func (m TimerModel) handleClockKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "s", "S":
		if m.busy || m.rec.IsStopped() {
			return m, nil
		}
		m.busy = true
		return m, runAction("stop", func(ctx context.Context) (models.TaskRecord, error) {
			return m.tasks.StopTask(ctx, m.username, m.rec.ID)
		})
	case "c", "C":
		if m.busy || !m.rec.IsStopped() {
			return m, nil
		}
		m.busy = true
		return m, runAction("cancel", func(ctx context.Context) (models.TaskRecord, error) {
			return m.tasks.CancelTask(ctx, m.username, m.rec.ID)
		})
	case "enter":
		m.mode = modeComplete
		m.focus = 0
		m.validationErr = ""
		m.inputs[0].Focus()
		m.inputs[1].Blur()
		return m, textinput.Blink
	case "ctrl+c", "esc", "q":
		// leave the task as it is
		m.exiting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m TimerModel) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.exiting = true
		return m, tea.Quit
	case "esc":
		m.mode = modeClock
		m.validationErr = ""
		return m, nil
	case "tab", "shift+tab", "up", "down":
		return m.switchField(), nil
	case "enter":
		if m.focus == 0 {
			if _, err := m.quantity(); err != nil {
				m.validationErr = err.Error()
				return m, nil
			}
			return m.switchField(), nil
		}
		return m.submit()
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	m.validationErr = ""
	return m, cmd
}

func (m TimerModel) switchField() TimerModel {
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + 1) % len(m.inputs)
	m.inputs[m.focus].Focus()
	return m
}

func (m TimerModel) quantity() (int, error) {
	raw := strings.TrimSpace(m.inputs[0].Value())
	if raw == "" {
		return 0, fmt.Errorf("units produced is required")
	}
	qty, err := strconv.Atoi(raw)
	if err != nil || qty <= 0 {
		return 0, fmt.Errorf("units must be a whole number above zero")
	}
	return qty, nil
}

func (m TimerModel) submit() (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	qty, err := m.quantity()
	if err != nil {
		m.validationErr = err.Error()
		return m, nil
	}
	note := strings.TrimSpace(m.inputs[1].Value())
	m.busy = true
	return m, runAction("complete", func(ctx context.Context) (models.TaskRecord, error) {
		return m.tasks.CompleteTask(ctx, m.username, m.rec.ID, qty, note)
	})
}

// View renders the timer
func (m TimerModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	helpBar := m.renderHelpBar()
	contentHeight := m.height - 2

	if m.width < 90 {
		return lipgloss.JoinVertical(lipgloss.Left, m.renderTimerPanel(m.width, contentHeight), helpBar)
	}

	leftWidth := m.width / 2
	rightWidth := m.width - leftWidth - 2
	content := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderTimerPanel(leftWidth, contentHeight),
		"  ",
		m.renderDetailsPanel(rightWidth, contentHeight),
	)
	return lipgloss.JoinVertical(lipgloss.Left, content, helpBar)
}

func centered(width int) lipgloss.Style {
	return lipgloss.NewStyle().Align(lipgloss.Center).Width(width)
}

func (m TimerModel) renderTimerPanel(width, height int) string {
	var components []string

	headerText := "■  STOPPED  ■"
	if !m.rec.IsStopped() {
		animChar := []string{"⏱", "⏲", "⏱", "⏲"}[m.timerAnimation]
		headerText = fmt.Sprintf("%s  TRACKING TIME  %s", animChar, animChar)
	}
	components = append(components, centered(width).
		Foreground(lipgloss.Color(ColorAccentBright)).
		Bold(true).
		Render(headerText))

	components = append(components, centered(width).
		Foreground(lipgloss.Color(ColorAccentMain)).
		Bold(true).
		Render(fmt.Sprintf("#%d", m.rec.ID)))

	title := m.rec.MainCategory + " / " + m.rec.SubCategory
	if len(title) > width-4 && width > 7 {
		title = title[:width-7] + "..."
	}
	components = append(components, centered(width).
		Foreground(lipgloss.Color(ColorPrimaryText)).
		Bold(true).
		Render(title))

	var clock strings.Builder
	for _, line := range strings.Split(renderBigClock(m.elapsedTime), "\n") {
		clock.WriteString(centered(width).Render(line) + "\n")
	}
	components = append(components, strings.TrimRight(clock.String(), "\n"))

	info := fmt.Sprintf("Started at %s", m.rec.StartTime.Local().Format("15:04:05"))
	if m.rec.EndTime != nil {
		info += fmt.Sprintf(" · stopped at %s", m.rec.EndTime.Local().Format("15:04:05"))
	}
	components = append(components, centered(width).
		Foreground(lipgloss.Color(ColorSecondaryText)).
		Italic(true).
		Render(info))

	if m.err != nil {
		components = append(components, centered(width).
			Foreground(lipgloss.Color(ColorError)).
			Render("✗ "+m.err.Error()))
	}

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(strings.Join(components, "\n\n"))
}

var clockDigits = map[rune][5]string{
	'0': {" ███ ", "█   █", "█   █", "█   █", " ███ "},
	'1': {"  █  ", " ██  ", "  █  ", "  █  ", "█████"},
	'2': {" ███ ", "█   █", "   █ ", "  █  ", "█████"},
	'3': {" ███ ", "█   █", "  ██ ", "█   █", " ███ "},
	'4': {"█   █", "█   █", "█████", "    █", "    █"},
	'5': {"█████", "█    ", "████ ", "    █", "████ "},
	'6': {" ███ ", "█    ", "████ ", "█   █", " ███ "},
	'7': {"█████", "    █", "   █ ", "  █  ", " █   "},
	'8': {" ███ ", "█   █", " ███ ", "█   █", " ███ "},
	'9': {" ███ ", "█   █", " ████", "    █", " ███ "},
	':': {"     ", "  █  ", "     ", "  █  ", "     "},
}

// renderBigClock draws mm:ss, or hh:mm:ss past the hour, in block digits
func renderBigClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	timeStr := fmt.Sprintf("%02d:%02d", minutes, seconds)
	if hours > 0 {
		timeStr = fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}

	var lines [5]strings.Builder
	for _, char := range timeStr {
		art, ok := clockDigits[char]
		if !ok {
			continue
		}
		for i := range art {
			lines[i].WriteString(art[i])
			lines[i].WriteString(" ")
		}
	}

	clockStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorAccentBright)).
		Bold(true)

	rendered := make([]string, len(lines))
	for i := range lines {
		rendered[i] = clockStyle.Render(lines[i].String())
	}
	return strings.Join(rendered, "\n")
}

func (m TimerModel) renderDetailsPanel(width, height int) string {
	var b strings.Builder
	inner := width - 8

	b.WriteString(centered(inner).
		Foreground(lipgloss.Color(ColorAccentMain)).
		Bold(true).
		Render(logo))
	b.WriteString("\n\n")

	b.WriteString(centered(inner).
		Foreground(lipgloss.Color(ColorBorder)).
		Render(strings.Repeat("─", max(min(width-12, 40), 0))))
	b.WriteString("\n\n")

	if m.mode == modeComplete {
		b.WriteString(m.renderCompleteForm(inner))
	} else {
		line := func(label, value, color string) {
			b.WriteString(centered(inner).Render(fmt.Sprintf("%s %s", label,
				lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(value))))
			b.WriteString("\n")
		}
		line("👷 Worker:", m.username, ColorAccentBright)
		line("📁 Category:", m.rec.MainCategory, ColorPrimaryText)
		line("🔧 Step:", m.rec.SubCategory, ColorPrimaryText)
		if m.rec.IsStopped() {
			line("○ Status:", "stopped", ColorWarning)
		} else {
			line("○ Status:", "running", ColorSuccess)
		}
	}

	return lipgloss.NewStyle().Width(width).Height(height).Render(b.String())
}

func (m TimerModel) renderCompleteForm(width int) string {
	var b strings.Builder

	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondaryText))
	activeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright)).Bold(true)
	labels := []string{"Units produced", "Note"}

	b.WriteString(activeStyle.Render("Complete task"))
	b.WriteString("\n\n")
	for i, input := range m.inputs {
		style := labelStyle
		if i == m.focus {
			style = activeStyle
		}
		b.WriteString(style.Render(labels[i]))
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(ColorBorder)).
			Width(min(width, 50)).
			Render(input.View()))
		b.WriteString("\n")
	}
	if m.validationErr != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(ColorError)).Render("✗ " + m.validationErr))
		b.WriteString("\n")
	}
	return b.String()
}

func (m TimerModel) renderHelpBar() string {
	helpText := "s stop · c resume after stop · enter complete · esc/q exit (keep running)"
	if m.mode == modeComplete {
		helpText = "tab switch field · enter next/save · esc back"
	}
	return centered(m.width).
		Foreground(lipgloss.Color(ColorHelpText)).
		Italic(true).
		Render(helpText)
}

const logo = `███████╗██╗      ██████╗  ██████╗ ██████╗
██╔════╝██║     ██╔═══██╗██╔═══██╗██╔══██╗
█████╗  ██║     ██║   ██║██║   ██║██████╔╝
██╔══╝  ██║     ██║   ██║██║   ██║██╔══██╗
██║     ███████╗╚██████╔╝╚██████╔╝██║  ██║
╚═╝     ╚══════╝ ╚═════╝  ╚═════╝ ╚═╝  ╚═╝`
