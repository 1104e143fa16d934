package ui

import "github.com/charmbracelet/lipgloss"

var (
	neonCyan    = lipgloss.Color("#00FFFF")
	neonMagenta = lipgloss.Color("#FF00FF")
	neonGreen   = lipgloss.Color("#39FF14")
	neonYellow  = lipgloss.Color("#FFFF00")
	neonOrange  = lipgloss.Color("#FF6700")
	darkBg      = lipgloss.Color("#0A0E27")
	dimWhite    = lipgloss.Color("#B0B0B0")

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(neonMagenta).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Background(neonMagenta).
			Foreground(darkBg).
			Bold(true).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(neonCyan).
			Bold(true)

	valueStyle = lipgloss.NewStyle().
			Foreground(neonYellow)

	successStyle = lipgloss.NewStyle().
			Foreground(neonGreen).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(neonOrange).
			Bold(true)

	highlightStyle = lipgloss.NewStyle().
			Foreground(neonMagenta).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(dimWhite).
			Faint(true)
)

// stateStyle colors a client state name
func stateStyle(state string) lipgloss.Style {
	switch state {
	case "authenticated":
		return successStyle
	case "expired":
		return errorStyle
	case "authenticating":
		return warningStyle
	default:
		return dimStyle
	}
}
