// ABOUTME: Converts markdown text to an HTML fragment using goldmark with the GFM extension set.
// ABOUTME: Optionally sanitizes the output with a bluemonday UGC policy and recovers renderer panics.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// ErrRenderFailed is returned when the underlying markdown library fails or panics.
// Callers at a service boundary should report it generically.
var ErrRenderFailed = errors.New("markdown render failed")

// Renderer converts markdown source to HTML.
type Renderer interface {
	Render(ctx context.Context, markdown string) (string, error)
}

// Func adapts an ordinary function to the Renderer interface.
type Func func(ctx context.Context, markdown string) (string, error)

// Render calls f(ctx, markdown).
func (f Func) Render(ctx context.Context, markdown string) (string, error) {
	return f(ctx, markdown)
}

// Options controls the goldmark extension set and post-processing.
type Options struct {
	// Sanitize runs the generated HTML through a bluemonday UGC policy.
	Sanitize bool
	// HardWraps renders soft line breaks as <br>.
	HardWraps bool
}

// DefaultOptions returns the options used by the conversion service when none are configured.
func DefaultOptions() Options {
	return Options{Sanitize: true}
}

// Markdown is a goldmark-backed Renderer. It is safe for concurrent use.
type Markdown struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// New builds a Markdown renderer with GFM (tables, strikethrough, autolinks,
// task lists), footnotes and automatic heading IDs. Raw HTML in the input is
// passed through to the output, which is why Sanitize defaults to true.
func New(opts Options) *Markdown {
	rendererOpts := []goldmark.Option{
		goldmark.WithExtensions(extension.GFM, extension.Footnote),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	}

	if opts.HardWraps {
		rendererOpts = append(rendererOpts, goldmark.WithRendererOptions(html.WithUnsafe(), html.WithHardWraps()))
	} else {
		rendererOpts = append(rendererOpts, goldmark.WithRendererOptions(html.WithUnsafe()))
	}

	m := &Markdown{
		md: goldmark.New(rendererOpts...),
	}
	if opts.Sanitize {
		m.policy = newPolicy()
	}
	return m
}

// newPolicy returns the UGC policy extended with the attributes goldmark emits
// for headings, task lists and footnotes.
func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4", "h5", "h6", "li", "sup", "div")
	p.AllowAttrs("class").OnElements("code", "div", "sup", "a", "li", "hr")
	p.AllowAttrs("role").OnElements("a", "div")
	p.AllowAttrs("type", "checked", "disabled").OnElements("input")
	p.AllowElements("input")
	return p
}

// Render converts markdown to an HTML fragment. A cancelled context is
// honoured before rendering starts; goldmark itself is not interruptible.
// Panics from the library are converted into ErrRenderFailed.
func (m *Markdown) Render(ctx context.Context, markdown string) (out string, err error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	defer func() {
		if r := recover(); r != nil {
			out = ""
			err = fmt.Errorf("%w: panic: %v", ErrRenderFailed, r)
		}
	}()

	var buf bytes.Buffer
	if err := m.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	if m.policy == nil {
		return buf.String(), nil
	}

	return m.policy.Sanitize(buf.String()), nil
}

// Safe wraps any Renderer so that panics are reported as ErrRenderFailed and
// plain errors are wrapped with it. The conversion service always renders
// through Safe so that a swapped-in renderer cannot crash a request goroutine.
func Safe(r Renderer) Renderer {
	return Func(func(ctx context.Context, markdown string) (out string, err error) {
		defer func() {
			if rec := recover(); rec != nil {
				out = ""
				err = fmt.Errorf("%w: panic: %v", ErrRenderFailed, rec)
			}
		}()

		out, err = r.Render(ctx, markdown)
		if err != nil && !errors.Is(err, ErrRenderFailed) && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %v", ErrRenderFailed, err)
		}
		return out, err
	})
}
