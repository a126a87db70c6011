package ui

import "github.com/charmbracelet/lipgloss"

var (
	accentColor = lipgloss.AdaptiveColor{Light: "#4338ca", Dark: "#a5b4fc"}
	faintColor  = lipgloss.AdaptiveColor{Light: "#6b7280", Dark: "#6b7280"}
	errorColor  = lipgloss.AdaptiveColor{Light: "#dc2626", Dark: "#f87171"}

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	faintStyle  = lipgloss.NewStyle().Foreground(faintColor)
	errorStyle  = lipgloss.NewStyle().Foreground(errorColor)
	titleStyle  = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Bold(true)

	buttonStyle         = lipgloss.NewStyle().Padding(0, 1)
	buttonActiveStyle   = buttonStyle.Reverse(true)
	buttonDisabledStyle = buttonStyle.Foreground(faintColor).Faint(true)

	formStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accentColor).
			Padding(1, 3)

	popupStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accentColor).
			Padding(1, 2)
)
