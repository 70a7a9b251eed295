// ABOUTME: Defines lipgloss style sets for the dark and light editor themes.
// ABOUTME: ThemeFor picks the set matching the controller's DarkMode flag.
package tui

import "github.com/charmbracelet/lipgloss"

// Theme groups the styles used to draw one frame.
type Theme struct {
	Border    lipgloss.Style
	Focused   lipgloss.Style
	Title     lipgloss.Style
	StatusBar lipgloss.Style
	Error     lipgloss.Style
	Notice    lipgloss.Style
	Muted     lipgloss.Style
}

var (
	DarkTheme = Theme{
		Border:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("62")),
		Focused:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("75")),
		Title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("75")),
		StatusBar: lipgloss.NewStyle().Background(lipgloss.Color("236")).Foreground(lipgloss.Color("252")).Padding(0, 1),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		Notice:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Muted:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}

	LightTheme = Theme{
		Border:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("250")),
		Focused:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("27")),
		Title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("27")),
		StatusBar: lipgloss.NewStyle().Background(lipgloss.Color("254")).Foreground(lipgloss.Color("235")).Padding(0, 1),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("160")).Bold(true),
		Notice:    lipgloss.NewStyle().Foreground(lipgloss.Color("28")),
		Muted:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
)

// ThemeFor returns the dark or light theme.
func ThemeFor(dark bool) Theme {
	if dark {
		return DarkTheme
	}
	return LightTheme
}
