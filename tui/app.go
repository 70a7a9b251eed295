// ABOUTME: Top-level Bubble Tea AppModel composing the markdown textarea, preview panel and status bar.
// ABOUTME: Key presses drive the editor controller; controller changes flow back as StateChangedMsg.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/2389-research/mdpreview/editor"
)

// FocusTarget indicates which pane receives scroll and typing keys.
type FocusTarget int

const (
	FocusEditor FocusTarget = iota
	FocusPreview
)

// AppModel is the top-level Bubble Tea model for the terminal editor.
type AppModel struct {
	ctrl    *editor.Controller
	updates <-chan struct{}

	input     textarea.Model
	preview   PreviewPanelModel
	statusBar StatusBarModel

	state       editor.State
	downloadDir string
	focus       FocusTarget
	quitting    bool
	width       int
	height      int
}

// NewAppModel creates an AppModel driving ctrl. updates is the channel
// returned by editor.Notifier whose listener was registered on ctrl; downloadDir is
// where ctrl+d writes the document.
func NewAppModel(ctrl *editor.Controller, updates <-chan struct{}, downloadDir string) AppModel {
	ta := textarea.New()
	ta.Placeholder = "Type markdown here..."
	ta.CharLimit = 0
	ta.ShowLineNumbers = true

	st := ctrl.State()
	ta.SetValue(st.Document)
	ta.Focus()

	m := AppModel{
		ctrl:        ctrl,
		updates:     updates,
		input:       ta,
		preview:     NewPreviewPanelModel(),
		statusBar:   NewStatusBarModel(),
		downloadDir: downloadDir,
		focus:       FocusEditor,
	}
	m.applyState(st)
	return m
}

// Init implements tea.Model.
func (m AppModel) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, WaitForStateCmd(m.updates))
}

// Update implements tea.Model.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg)

	case StateChangedMsg:
		m.applyState(m.ctrl.State())
		return m, WaitForStateCmd(m.updates)

	case NoticeMsg:
		m.statusBar.SetNotice(msg.Text, msg.Error)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// applyState copies a controller snapshot into the sub-models.
func (m *AppModel) applyState(s editor.State) {
	m.state = s
	m.preview.SetContent(s.Preview)
	m.statusBar.SetState(s)
	if !s.ShowsEditor() {
		m.focus = FocusPreview
	} else if !s.ShowsPreview() {
		m.focus = FocusEditor
	}
	m.syncFocus()
	m.layout()
}

// syncFocus keeps the textarea's cursor state in line with m.focus so keys
// routed to the editor are not dropped by a blurred textarea.
func (m *AppModel) syncFocus() {
	if m.focus == FocusEditor {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
}

// View implements tea.Model.
func (m AppModel) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}
	if m.width < 40 || m.height < 10 {
		return fmt.Sprintf("Terminal too small (%dx%d). Minimum: 40x10.", m.width, m.height)
	}

	theme := ThemeFor(m.state.DarkMode)

	var panes []string
	if m.state.ShowsEditor() {
		border := theme.Border
		if m.focus == FocusEditor {
			border = theme.Focused
		}
		panes = append(panes, border.Render(theme.Title.Render("MARKDOWN")+"\n"+m.input.View()))
	}
	if m.state.ShowsPreview() {
		panes = append(panes, m.preview.View(theme, m.focus == FocusPreview))
	}

	var b strings.Builder
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, panes...))
	b.WriteString("\n")
	b.WriteString(m.statusBar.View())
	return b.String()
}

func (m AppModel) handleWindowSize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.layout()
	return m, nil
}

// layout sizes the panes for the current view mode.
func (m *AppModel) layout() {
	if m.width == 0 || m.height == 0 {
		return
	}
	paneHeight := m.height - 1
	editorWidth, previewWidth := m.width, m.width
	if m.state.ViewMode == editor.ViewSplit {
		editorWidth = m.width / 2
		previewWidth = m.width - editorWidth
	}

	// Border takes two columns and rows, the title one row.
	m.input.SetWidth(max(editorWidth-2, 1))
	m.input.SetHeight(max(paneHeight-3, 1))
	m.preview.SetSize(previewWidth, paneHeight)
	m.statusBar.SetWidth(m.width)
}

// handleKeyMsg handles app shortcuts and forwards everything else to the
// focused pane.
func (m AppModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.quitting = true
		m.ctrl.Close()
		return m, tea.Quit
	case "ctrl+e":
		return m, m.setViewMode(editor.ViewEdit)
	case "ctrl+s":
		return m, m.setViewMode(editor.ViewSplit)
	case "ctrl+p":
		return m, m.setViewMode(editor.ViewPreview)
	case "ctrl+t":
		m.ctrl.ToggleDarkMode()
		return m, nil
	case "ctrl+y":
		return m, CopyCmd(m.ctrl)
	case "ctrl+d":
		return m, DownloadCmd(m.ctrl, m.downloadDir)
	case "tab":
		if m.state.ViewMode == editor.ViewSplit {
			m.focus = m.nextFocus()
			m.syncFocus()
			return m, nil
		}
	}

	if m.focus == FocusPreview {
		var cmd tea.Cmd
		m.preview, cmd = m.preview.Update(msg)
		return m, cmd
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if after := m.input.Value(); after != before {
		m.ctrl.SetText(after)
	}
	return m, cmd
}

func (m AppModel) setViewMode(mode editor.ViewMode) tea.Cmd {
	if err := m.ctrl.SetViewMode(mode); err != nil {
		return noticeCmd(err.Error(), true)
	}
	return nil
}

func (m AppModel) nextFocus() FocusTarget {
	if m.focus == FocusEditor {
		return FocusPreview
	}
	return FocusEditor
}

// CopyCmd copies the document to the clipboard off the UI goroutine.
func CopyCmd(ctrl *editor.Controller) tea.Cmd {
	return func() tea.Msg {
		if err := ctrl.Copy(); err != nil {
			return NoticeMsg{Text: fmt.Sprintf("copy failed: %v", err), Error: true}
		}
		return NoticeMsg{}
	}
}

// DownloadCmd writes the document into dir.
func DownloadCmd(ctrl *editor.Controller, dir string) tea.Cmd {
	return func() tea.Msg {
		path, err := ctrl.Download(dir)
		if err != nil {
			return NoticeMsg{Text: fmt.Sprintf("download failed: %v", err), Error: true}
		}
		return NoticeMsg{Text: "saved " + path}
	}
}

func noticeCmd(text string, isError bool) tea.Cmd {
	return func() tea.Msg {
		return NoticeMsg{Text: text, Error: isError}
	}
}
