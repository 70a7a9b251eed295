// ABOUTME: Functional options for constructing an editor Controller.
// ABOUTME: Options cover timing, initial document, presentation defaults, clipboard, logging and change listeners.
package editor

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Defaults for the conversion pipeline.
const (
	DefaultDebounce = 300 * time.Millisecond
	DefaultTimeout  = 5 * time.Second
	copiedFor       = 2 * time.Second
)

// Option configures a Controller.
type Option func(*Controller)

// WithDebounce sets the quiet interval before a conversion fires.
func WithDebounce(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.debounce = d
		}
	}
}

// WithTimeout bounds each conversion request.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithInitialText sets the document the controller starts with. A non-blank
// document is converted after the first debounce interval.
func WithInitialText(text string) Option {
	return func(c *Controller) {
		c.state.Document = text
	}
}

// WithViewMode sets the initial view mode. Invalid modes are ignored.
func WithViewMode(m ViewMode) Option {
	return func(c *Controller) {
		if _, err := ParseViewMode(string(m)); err == nil {
			c.state.ViewMode = m
		}
	}
}

// WithDarkMode sets the initial theme.
func WithDarkMode(dark bool) Option {
	return func(c *Controller) {
		c.state.DarkMode = dark
	}
}

// WithClipboard replaces the system clipboard used by Copy.
func WithClipboard(cb Clipboard) Option {
	return func(c *Controller) {
		if cb != nil {
			c.clipboard = cb
		}
	}
}

// WithLogger sets the logger for pipeline diagnostics.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithOnChange registers a listener that receives every state transition.
// It is called without the controller lock held and may run on timer or
// request goroutines, so it must not block.
func WithOnChange(fn func(State)) Option {
	return func(c *Controller) {
		c.onChange = fn
	}
}
