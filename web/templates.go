// ABOUTME: TemplateEngine renders the browser editor page from embedded html/template files.
// ABOUTME: PageData carries the editor defaults (debounce, timeout, view mode, theme) into the page.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/2389-research/mdpreview/editor"
)

//go:embed templates/*.html
var templateFS embed.FS

// PageData holds the values rendered into the editor page.
type PageData struct {
	Title    string
	Document string
	Debounce time.Duration
	Timeout  time.Duration
	ViewMode editor.ViewMode
	DarkMode bool
}

// DefaultPageData returns the page defaults matching editor.New.
func DefaultPageData() PageData {
	return PageData{
		Title:    "mdpreview",
		Document: editor.DefaultDocument,
		Debounce: editor.DefaultDebounce,
		Timeout:  editor.DefaultTimeout,
		ViewMode: editor.ViewSplit,
		DarkMode: true,
	}
}

// DebounceMS is the debounce interval in whole milliseconds.
func (p PageData) DebounceMS() int64 { return p.Debounce.Milliseconds() }

// TimeoutMS is the request timeout in whole milliseconds.
func (p PageData) TimeoutMS() int64 { return p.Timeout.Milliseconds() }

// Modes lists the view modes in toolbar order.
func (p PageData) Modes() []editor.ViewMode {
	return []editor.ViewMode{editor.ViewEdit, editor.ViewSplit, editor.ViewPreview}
}

// TemplateEngine holds the parsed page templates.
type TemplateEngine struct {
	templates map[string]*template.Template
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"title": func(m editor.ViewMode) string {
			s := string(m)
			if s == "" {
				return s
			}
			return strings.ToUpper(s[:1]) + s[1:]
		},
	}
}

// NewTemplateEngine parses all embedded page templates.
func NewTemplateEngine() (*TemplateEngine, error) {
	engine := &TemplateEngine{templates: make(map[string]*template.Template)}

	for _, page := range []string{"index.html"} {
		t, err := template.New(page).Funcs(templateFuncs()).ParseFS(templateFS, "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}
		engine.templates[page] = t
	}
	return engine, nil
}

// RenderTo executes the named template into an arbitrary writer.
func (e *TemplateEngine) RenderTo(w io.Writer, name string, data any) error {
	t, ok := e.templates[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	return t.Execute(w, data)
}
