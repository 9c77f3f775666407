// internal/tui/progress.go
// Package tui renders the interactive benchmark progress view and the
// post-run summary table.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/smolpc/benchkit/internal/benchmark"
	"github.com/smolpc/benchkit/internal/util"
)

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	testStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// ProgressMsg carries one runner progress update into the model.
type ProgressMsg benchmark.Progress

// CompletedMsg signals a finished run plus the exported CSV path.
type CompletedMsg struct {
	Path  string
	RunID string
}

// FailedMsg signals that the run aborted.
type FailedMsg struct {
	Err error
}

// Model is the bubbletea model for a benchmark run. Updates arrive via
// Program.Send from the goroutine driving the runner.
type Model struct {
	model    string
	bar      progress.Model
	spin     spinner.Model
	current  int
	total    int
	testID   string
	iter     int
	done     bool
	err      error
	exported string
	runID    string
}

// NewModel creates the progress model for the named benchmark target.
func NewModel(model string) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))

	return Model{
		model: model,
		bar:   progress.New(progress.WithDefaultGradient()),
		spin:  s,
	}
}

// Init starts the spinner tick loop.
func (m Model) Init() tea.Cmd {
	return m.spin.Tick
}

// Update handles key presses, runner messages, and animation frames.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		width := msg.Width - 10
		if width < 20 {
			width = 20
		}
		if width > 80 {
			width = 80
		}
		m.bar.Width = width
		return m, nil

	case ProgressMsg:
		m.current = msg.Current
		m.total = msg.Total
		m.testID = msg.CurrentTest
		m.iter = msg.Iteration
		if m.total > 0 {
			return m, m.bar.SetPercent(float64(m.current) / float64(m.total))
		}
		return m, nil

	case CompletedMsg:
		m.done = true
		m.exported = msg.Path
		m.runID = msg.RunID
		return m, tea.Quit

	case FailedMsg:
		m.done = true
		m.err = msg.Err
		return m, tea.Quit

	case progress.FrameMsg:
		barModel, cmd := m.bar.Update(msg)
		m.bar = barModel.(progress.Model)
		return m, cmd

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the current run state.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("Benchmarking %s", m.model)))
	b.WriteString("\n\n")

	if m.done {
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Benchmark failed: %v", m.err)))
		} else {
			b.WriteString(successStyle.Render("Benchmark complete"))
			b.WriteString("\n")
			b.WriteString(dimStyle.Render(fmt.Sprintf("Run %s exported to %s", m.runID, m.exported)))
		}
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(m.bar.View())
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("%s %s",
		m.spin.View(),
		testStyle.Render(fmt.Sprintf("Test %d/%d: %s (iteration %d)", m.current, m.total, util.TruncateRunes(m.testID, 40), m.iter))))
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render("Press q to abort"))
	b.WriteString("\n")

	return b.String()
}
