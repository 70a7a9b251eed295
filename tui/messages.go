// ABOUTME: Bubble Tea message types and commands bridging the editor controller into the TUI loop.
// ABOUTME: Controller state changes arrive through editor.Notifier rather than per-change messages.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// StateChangedMsg signals that the controller state changed. The model reads
// the latest snapshot itself, so coalesced signals never lose an update.
type StateChangedMsg struct{}

// NoticeMsg shows a transient message in the status bar.
type NoticeMsg struct {
	Text  string
	Error bool
}

// WaitForStateCmd blocks until the controller signals a change.
func WaitForStateCmd(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return StateChangedMsg{}
	}
}
