// ABOUTME: Implements a single-line status bar for the bottom of the TUI showing conversion state.
// ABOUTME: Displays view mode, theme, loading/error/copied indicators and the last notice.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/2389-research/mdpreview/editor"
)

// StatusBarModel displays editor status in a single line.
type StatusBarModel struct {
	state       editor.State
	notice      string
	noticeError bool
	width       int
}

// NewStatusBarModel creates an empty StatusBarModel.
func NewStatusBarModel() StatusBarModel {
	return StatusBarModel{}
}

// SetState updates the controller snapshot shown by the bar.
func (m *StatusBarModel) SetState(s editor.State) {
	m.state = s
}

// SetNotice sets a transient message such as the download path.
func (m *StatusBarModel) SetNotice(text string, isError bool) {
	m.notice = text
	m.noticeError = isError
}

// SetWidth sets the bar width for rendering.
func (m *StatusBarModel) SetWidth(w int) {
	m.width = w
}

// Summary returns the unstyled status text.
func (m StatusBarModel) Summary() string {
	theme := "dark"
	if !m.state.DarkMode {
		theme = "light"
	}

	parts := []string{
		fmt.Sprintf("View: %s", m.state.ViewMode),
		fmt.Sprintf("Theme: %s", theme),
		fmt.Sprintf("%d chars", len([]rune(m.state.Document))),
	}
	switch {
	case m.state.Loading:
		parts = append(parts, "Converting…")
	case m.state.Error != "":
		parts = append(parts, m.state.Error)
	}
	if m.state.Copied {
		parts = append(parts, "Copied!")
	}
	if m.notice != "" {
		parts = append(parts, m.notice)
	}
	return strings.Join(parts, " | ")
}

// View renders the status bar as a single styled line.
func (m StatusBarModel) View() string {
	theme := ThemeFor(m.state.DarkMode)
	content := m.Summary()
	if m.state.Error != "" || m.noticeError {
		content = theme.Error.Render(content)
	}
	style := theme.StatusBar.Width(m.width)
	return lipgloss.PlaceHorizontal(m.width, lipgloss.Left, style.Render(content))
}
