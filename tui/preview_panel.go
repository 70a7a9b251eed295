// ABOUTME: Implements the scrollable HTML preview pane using the bubbles viewport component.
// ABOUTME: Shows the last successfully converted HTML, which failures never blank.
package tui

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// PreviewPanelModel is a scrollable view of the converted HTML.
type PreviewPanelModel struct {
	viewport viewport.Model
	content  string
	width    int
	height   int
}

// NewPreviewPanelModel creates an empty preview panel.
func NewPreviewPanelModel() PreviewPanelModel {
	return PreviewPanelModel{viewport: viewport.New(80, 10)}
}

// SetContent replaces the preview HTML, keeping the scroll position when the
// content is unchanged.
func (m *PreviewPanelModel) SetContent(html string) {
	if html == m.content {
		return
	}
	m.content = html
	m.viewport.SetContent(html)
}

// Content returns the HTML currently shown.
func (m PreviewPanelModel) Content() string {
	return m.content
}

// SetSize sets the available dimensions, reserving room for border and title.
func (m *PreviewPanelModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	vpWidth := w - 2
	vpHeight := h - 3
	if vpWidth < 1 {
		vpWidth = 1
	}
	if vpHeight < 1 {
		vpHeight = 1
	}
	m.viewport.Width = vpWidth
	m.viewport.Height = vpHeight
}

// Update forwards scroll keys to the viewport.
func (m PreviewPanelModel) Update(msg tea.Msg) (PreviewPanelModel, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the panel inside a bordered box.
func (m PreviewPanelModel) View(theme Theme, focused bool) string {
	body := m.viewport.View()
	if m.content == "" {
		body = theme.Muted.Render("Nothing to preview")
	}
	border := theme.Border
	if focused {
		border = theme.Focused
	}
	return border.
		Width(m.width - 2).
		Height(m.height - 2).
		Render(theme.Title.Render("PREVIEW") + "\n" + body)
}
