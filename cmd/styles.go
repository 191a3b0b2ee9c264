package cmd

import "github.com/charmbracelet/lipgloss"

var (
	labelStyle   = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// styleRollup colors a CI rollup state for terminal output.
func styleRollup(state string) string {
	switch state {
	case "success":
		return successStyle.Render(state)
	case "failure":
		return failureStyle.Render(state)
	case "in_progress", "pending":
		return warnStyle.Render(state)
	default:
		return dimStyle.Render(state)
	}
}
