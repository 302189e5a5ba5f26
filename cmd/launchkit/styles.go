package main

import "github.com/charmbracelet/lipgloss"

// theme keeps all CLI styling in one place.
type theme struct {
	Header  lipgloss.Style
	Name    lipgloss.Style
	Dim     lipgloss.Style
	Badge   lipgloss.Style
	OK      lipgloss.Style
	Warn    lipgloss.Style
	Error   lipgloss.Style
	Summary lipgloss.Style
}

func newTheme() theme {
	return theme{
		Header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#61AFEF")),
		Name:    lipgloss.NewStyle().Bold(true),
		Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")),
		Badge:   lipgloss.NewStyle().Foreground(lipgloss.Color("#E5C07B")),
		OK:      lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")),
		Warn:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")),
		Summary: lipgloss.NewStyle().Bold(true),
	}
}

// column pads s to width display cells after styling it.
func column(style lipgloss.Style, width int, s string) string {
	return style.Width(width).MaxWidth(width).Render(s)
}
