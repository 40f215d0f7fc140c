package ui

import (
	"fmt"
	"strings"

	"github.com/ZacxDev/stepsim/scheduler"
	"github.com/charmbracelet/lipgloss"
)

const timelineWidth = 40

var (
	headerStyle   = lipgloss.NewStyle().Bold(true)
	stepStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	criticalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("160"))
	barStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
)

// RenderTable lays out every assignment of a run on one line, with a bar
// showing where it falls in the makespan. Steps in critical are highlighted.
func RenderTable(res *scheduler.Result, critical map[string]bool) string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render(fmt.Sprintf("%-6s | %-6s | %6s | %6s | %s", "Step", "Worker", "Start", "Finish", "Timeline")))
	sb.WriteString("\n")

	for _, a := range res.Assignments {
		sb.WriteString(renderRow(a, res.Elapsed, critical[a.Step], "  "))
		sb.WriteString("\n")
	}

	sb.WriteString(mutedStyle.Render(fmt.Sprintf("total time %d across %d step(s)", res.Elapsed, len(res.Assignments))))
	sb.WriteString("\n")
	return sb.String()
}

func renderRow(a scheduler.Assignment, elapsed int, critical bool, prefix string) string {
	style := stepStyle
	if critical {
		style = criticalStyle
	}
	return fmt.Sprintf("%s%-4s | %-6d | %6d | %6d | %s",
		prefix,
		style.Render(fmt.Sprintf("%-4s", a.Step)),
		a.Worker,
		a.Start,
		a.Finish,
		barStyle.Render(timeline(a.Start, a.Finish, elapsed, timelineWidth)),
	)
}

// timeline draws [start, finish) scaled to width columns, at least one
// column wide.
func timeline(start, finish, elapsed, width int) string {
	if elapsed <= 0 {
		return ""
	}
	from := start * width / elapsed
	to := finish * width / elapsed
	if to <= from {
		to = from + 1
	}
	if to > width {
		to = width
		if from >= to {
			from = to - 1
		}
	}
	return strings.Repeat(" ", from) + strings.Repeat("=", to-from)
}
