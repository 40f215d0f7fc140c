package ui

import (
	"fmt"
	"strings"

	"github.com/ZacxDev/stepsim/scheduler"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// Model is an interactive view of a finished simulation: one row per
// assignment, with a detail pane for the selected step.
type Model struct {
	viewport    viewport.Model
	detailView  viewport.Model
	result      *scheduler.Result
	critical    map[string]bool
	done        bool
	selectedIdx int
	showDetail  bool
}

func NewModel(res *scheduler.Result, critical map[string]bool) *Model {
	m := &Model{
		viewport:   viewport.New(120, 30),
		detailView: viewport.New(120, 10),
		result:     res,
		critical:   critical,
	}
	m.viewport.SetContent(m.statusView())
	return m
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)
	rows := len(m.result.Assignments)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.done = true
			return m, tea.Quit
		case "up", "k":
			if rows > 0 {
				m.selectedIdx = (m.selectedIdx - 1 + rows) % rows
			}
		case "down", "j":
			if rows > 0 {
				m.selectedIdx = (m.selectedIdx + 1) % rows
			}
		case "enter", " ":
			m.showDetail = !m.showDetail
		case "esc":
			m.showDetail = false
		default:
			m.viewport, cmd = m.viewport.Update(msg)
			cmds = append(cmds, cmd)
		}
	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 1
		m.detailView.Width = msg.Width
		m.detailView.Height = msg.Height / 3
	}

	m.viewport.SetContent(m.statusView())
	if m.showDetail {
		m.detailView.SetContent(m.detail())
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) View() string {
	if m.done {
		return "Exiting...\n"
	}
	var sb strings.Builder
	sb.WriteString(m.viewport.View())
	if m.showDetail {
		sb.WriteString("\n\nStep:\n")
		sb.WriteString(m.detailView.View())
	}
	sb.WriteString("\n\033[1mPress q to quit, enter/space to toggle details, up/down or j/k to navigate\033[0m")
	return sb.String()
}

func (m *Model) Selected() (scheduler.Assignment, bool) {
	if m.selectedIdx >= len(m.result.Assignments) {
		return scheduler.Assignment{}, false
	}
	return m.result.Assignments[m.selectedIdx], true
}

func (m *Model) statusView() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Schedule Report (total time %d)\n\n", m.result.Elapsed))

	for i, a := range m.result.Assignments {
		prefix := "  "
		if i == m.selectedIdx {
			prefix = "> "
		}
		sb.WriteString(renderRow(a, m.result.Elapsed, m.critical[a.Step], prefix))
		sb.WriteString("\n")
	}

	return sb.String()
}

func (m *Model) detail() string {
	a, ok := m.Selected()
	if !ok {
		return "No steps were scheduled"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s ran on worker %d from %d to %d (%d time units)\n", a.Step, a.Worker, a.Start, a.Finish, a.Finish-a.Start)
	if m.critical[a.Step] {
		sb.WriteString("on the critical path\n")
	}

	var parallel []string
	for _, other := range m.result.Assignments {
		if other.Step != a.Step && other.Start < a.Finish && a.Start < other.Finish {
			parallel = append(parallel, other.Step)
		}
	}
	if len(parallel) > 0 {
		fmt.Fprintf(&sb, "overlaps with %s\n", strings.Join(parallel, ", "))
	}
	return sb.String()
}

// Run shows the schedule until the user quits.
func Run(res *scheduler.Result, critical map[string]bool) error {
	p := tea.NewProgram(NewModel(res, critical), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
