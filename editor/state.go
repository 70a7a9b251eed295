// ABOUTME: UI state types for the editor controller: view modes, the State snapshot and defaults.
// ABOUTME: View mode and theme are presentation-only and never influence the conversion pipeline.
package editor

import (
	"errors"
	"fmt"
)

// ViewMode selects which panes a front-end shows.
type ViewMode string

const (
	ViewEdit    ViewMode = "edit"
	ViewSplit   ViewMode = "split"
	ViewPreview ViewMode = "preview"
)

// ErrInvalidViewMode is returned for view modes other than edit, split and preview.
var ErrInvalidViewMode = errors.New("invalid view mode")

// ParseViewMode validates s as a ViewMode.
func ParseViewMode(s string) (ViewMode, error) {
	switch m := ViewMode(s); m {
	case ViewEdit, ViewSplit, ViewPreview:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidViewMode, s)
	}
}

// FailureMessage is the user-facing error shown when a conversion fails.
const FailureMessage = "Failed to convert markdown. Please try again."

// DefaultDocument is the sample shown when an editor starts without a file.
const DefaultDocument = `# Welcome to mdpreview

## Features

- **Bold**, *italic* and ***combined*** styles
- Blockquotes:

  > Creativity knows no bounds.

- Code:

  ` + "```go" + `
  fmt.Println("it works")
  ` + "```" + `
`

// State is a snapshot of everything a front-end needs to draw the editor.
type State struct {
	Document string
	Preview  string
	Loading  bool
	Error    string
	ViewMode ViewMode
	DarkMode bool
	Copied   bool

	// Version increases with every change. Listeners may receive snapshots
	// from different goroutines and should drop ones older than the last seen.
	Version uint64
}

// ShowsEditor reports whether the document pane is visible.
func (s State) ShowsEditor() bool {
	return s.ViewMode != ViewPreview
}

// ShowsPreview reports whether the preview pane is visible.
func (s State) ShowsPreview() bool {
	return s.ViewMode != ViewEdit
}
