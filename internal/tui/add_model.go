package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/balkashynov/floortrack/internal/categories"
	"github.com/balkashynov/floortrack/internal/models"
)

// Step represents the current step in the add wizard
type Step int

const (
	StepWorker Step = iota
	StepCategory
	StepSubCategory
	StepConfirm
)

// AddTaskModel walks a worker through starting a new task
type AddTaskModel struct {
	currentStep Step
	worker      textinput.Model
	width       int
	height      int

	tasks Tasks
	table *categories.Table

	mainIndex int
	subIndex  int

	busy          bool
	err           error
	validationErr string
	cancelled     bool
	created       *models.TaskRecord

	highlight *Highlight
}

// NewAddTaskModel creates the wizard, skipping the worker step when a
// username is already known
func NewAddTaskModel(tasks Tasks, table *categories.Table, username string) AddTaskModel {
	worker := textinput.New()
	worker.Width = 40
	worker.CharLimit = 64
	worker.Placeholder = "Worker name (required)"
	worker.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPrimaryText))
	worker.PlaceholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPlaceholder))
	worker.Cursor.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright))

	m := AddTaskModel{
		currentStep: StepWorker,
		worker:      worker,
		tasks:       tasks,
		table:       table,
		highlight:   NewHighlight(),
	}
	if strings.TrimSpace(username) != "" {
		m.worker.SetValue(strings.TrimSpace(username))
		m.currentStep = StepCategory
	} else {
		m.worker.Focus()
	}
	return m
}

// Created returns the started task, if any
func (m AddTaskModel) Created() (models.TaskRecord, bool) {
	if m.created == nil {
		return models.TaskRecord{}, false
	}
	return *m.created, true
}

// Username returns the worker the task is being started for
func (m AddTaskModel) Username() string {
	return strings.TrimSpace(m.worker.Value())
}

// Init initializes the model
func (m AddTaskModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.highlight.Tick())
}

func (m AddTaskModel) subCategories() []string {
	if m.mainIndex >= len(m.table.Categories) {
		return nil
	}
	return m.table.Categories[m.mainIndex].SubCategories
}

// Update handles messages
func (m AddTaskModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case highlightTickMsg:
		if m.created != nil || m.cancelled {
			return m, nil
		}
		m.highlight.Advance()
		return m, m.highlight.Tick()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.worker.Width = max(min(m.width/2, 60), 20)
		return m, nil

	case taskResultMsg:
		m.busy = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		rec := msg.rec
		m.created = &rec
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancelled = true
			return m, tea.Quit
		case "esc":
			return m.prevStep()
		case "enter":
			return m.handleEnter()
		case "up", "k":
			if m.currentStep != StepWorker {
				return m.moveSelection(-1), nil
			}
		case "down", "j":
			if m.currentStep != StepWorker {
				return m.moveSelection(1), nil
			}
		}
	}

	var cmd tea.Cmd
	if m.currentStep == StepWorker {
		m.worker, cmd = m.worker.Update(msg)
		m.validationErr = ""
	}
	return m, cmd
}

func (m AddTaskModel) moveSelection(delta int) AddTaskModel {
	switch m.currentStep {
	case StepCategory:
		next := m.mainIndex + delta
		if next >= 0 && next < len(m.table.Categories) {
			m.mainIndex = next
			m.subIndex = 0
			m.highlight.Reset()
		}
	case StepSubCategory:
		next := m.subIndex + delta
		if next >= 0 && next < len(m.subCategories()) {
			m.subIndex = next
			m.highlight.Reset()
		}
	}
	return m
}

func (m AddTaskModel) handleEnter() (AddTaskModel, tea.Cmd) {
	switch m.currentStep {
	case StepWorker:
		if m.Username() == "" {
			m.validationErr = "Worker name is required"
			return m, nil
		}
		m.worker.Blur()
		m.currentStep = StepCategory
	case StepCategory:
		if len(m.subCategories()) == 0 {
			m.validationErr = "Category has no steps to choose from"
			return m, nil
		}
		m.currentStep = StepSubCategory
	case StepSubCategory:
		m.currentStep = StepConfirm
	case StepConfirm:
		return m.createTask()
	}
	m.validationErr = ""
	m.highlight.Reset()
	return m, nil
}

func (m AddTaskModel) prevStep() (AddTaskModel, tea.Cmd) {
	m.validationErr = ""
	m.err = nil
	switch m.currentStep {
	case StepWorker:
		m.cancelled = true
		return m, tea.Quit
	case StepCategory:
		m.currentStep = StepWorker
		m.worker.Focus()
		return m, textinput.Blink
	default:
		m.currentStep--
	}
	return m, nil
}

func (m AddTaskModel) createTask() (AddTaskModel, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	m.busy = true
	username := m.Username()
	mainCategory := m.table.Categories[m.mainIndex].Name
	subCategory := m.subCategories()[m.subIndex]
	return m, runAction("add", func(ctx context.Context) (models.TaskRecord, error) {
		return m.tasks.AddTask(ctx, username, mainCategory, subCategory)
	})
}

// View renders the wizard
func (m AddTaskModel) View() string {
	if m.cancelled || m.created != nil {
		return ""
	}

	width := m.width
	if width == 0 {
		width = 80
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorAccentBright)).
		Bold(true).
		Render("Start a new task"))
	b.WriteString("\n\n")

	b.WriteString(m.renderStepHeader(StepWorker, "Worker", m.Username()))
	if m.currentStep == StepWorker {
		b.WriteString(m.worker.View() + "\n")
	}

	main := ""
	if m.currentStep > StepCategory {
		main = m.table.Categories[m.mainIndex].Name
	}
	b.WriteString(m.renderStepHeader(StepCategory, "Category", main))
	if m.currentStep == StepCategory {
		b.WriteString(m.renderChoices(m.table.Names(), m.mainIndex, width))
	}

	sub := ""
	if m.currentStep > StepSubCategory {
		sub = m.subCategories()[m.subIndex]
	}
	b.WriteString(m.renderStepHeader(StepSubCategory, "Step", sub))
	if m.currentStep == StepSubCategory {
		b.WriteString(m.renderChoices(m.subCategories(), m.subIndex, width))
	}

	if m.currentStep == StepConfirm {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(ColorAccentMain)).
			Padding(0, 1).
			Render("Press enter to start the clock"))
		b.WriteString("\n")
	}

	if m.validationErr != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(ColorError)).Render("✗ "+m.validationErr) + "\n")
	}
	if m.err != nil {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(ColorError)).Render("✗ "+m.err.Error()) + "\n")
	}

	panel := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorBorder)).
		Padding(1, 2).
		Width(min(width-2, 90)).
		Render(b.String())

	help := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorHelpText)).
		Italic(true).
		Render("↑/↓ choose · enter next · esc back · ctrl+c quit")

	return lipgloss.JoinVertical(lipgloss.Left, panel, help)
}

func (m AddTaskModel) renderStepHeader(step Step, label, value string) string {
	marker := "○"
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDisabledText))
	switch {
	case step == m.currentStep:
		marker = "●"
		style = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright)).Bold(true)
	case step < m.currentStep:
		marker = "✓"
		style = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSuccess))
	}
	line := fmt.Sprintf("%s %s", marker, label)
	if value != "" && step != m.currentStep {
		line += ": " + lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPrimaryText)).Render(value)
	}
	return style.Render(line) + "\n"
}

func (m AddTaskModel) renderChoices(choices []string, selected, width int) string {
	var b strings.Builder
	for i, choice := range choices {
		if i == selected {
			b.WriteString("  ▸ " + m.highlight.Render(choice, max(width-10, 10)) + "\n")
			continue
		}
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondaryText)).Render("    "+choice) + "\n")
	}
	return b.String()
}
