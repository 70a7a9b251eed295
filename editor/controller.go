// ABOUTME: Editor state controller keeping an HTML preview in sync with a markdown document.
// ABOUTME: Debounces edits, tags each conversion with a sequence number and drops superseded responses.
package editor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/2389-research/mdpreview/client"
	"github.com/2389-research/mdpreview/logging"
	"github.com/2389-research/mdpreview/render"
)

// ErrClosed is returned by operations on a controller after Close.
var ErrClosed = errors.New("editor controller closed")

// Converter turns markdown into HTML, usually by calling the conversion service.
type Converter interface {
	Convert(ctx context.Context, markdown string) (string, error)
}

// ConverterFunc adapts a function to the Converter interface.
type ConverterFunc func(ctx context.Context, markdown string) (string, error)

// Convert calls f(ctx, markdown).
func (f ConverterFunc) Convert(ctx context.Context, markdown string) (string, error) {
	return f(ctx, markdown)
}

// Local returns a Converter that renders in-process instead of over HTTP.
func Local(r render.Renderer) Converter {
	safe := render.Safe(r)
	return ConverterFunc(safe.Render)
}

// Controller owns one document and its preview. All methods are safe for
// concurrent use. Each Controller is independent; there is no shared state
// between instances.
type Controller struct {
	id       string
	conv     Converter
	debounce time.Duration
	timeout  time.Duration

	clipboard Clipboard
	logger    logrus.FieldLogger
	onChange  func(State)

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	state  State
	closed bool

	// editGen identifies the current debounce window; a timer whose
	// generation is stale does nothing when it fires.
	editGen uint64
	timer   *time.Timer

	// seq is the number of the most recently issued request. Only a
	// response carrying this number may touch the preview.
	seq            uint64
	cancelInflight context.CancelFunc

	copiedTimer *time.Timer
}

// New creates a Controller that converts through conv.
func New(conv Converter, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		id:        uuid.NewString(),
		conv:      conv,
		debounce:  DefaultDebounce,
		timeout:   DefaultTimeout,
		clipboard: SystemClipboard{},
		ctx:       ctx,
		cancel:    cancel,
		state: State{
			ViewMode: ViewSplit,
			DarkMode: true,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.Discard()
	}
	c.logger = c.logger.WithField("editor_id", c.id)

	c.mu.Lock()
	c.scheduleLocked()
	c.mu.Unlock()
	return c
}

// ID returns the controller's unique identifier, used in log fields.
func (c *Controller) ID() string {
	return c.id
}

// State returns a snapshot of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SetText replaces the document and restarts the debounce window. A blank
// document clears the preview immediately and sends nothing.
func (c *Controller) SetText(text string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}

	c.state.Document = text
	c.scheduleLocked()
	snap := c.changedLocked()
	c.mu.Unlock()

	c.notify(snap)
}

// scheduleLocked cancels any pending debounce window and, for a non-blank
// document, arms a new one. Blank documents also supersede any in-flight
// request so its late response cannot resurrect a preview.
func (c *Controller) scheduleLocked() {
	c.editGen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}

	if strings.TrimSpace(c.state.Document) == "" {
		c.supersedeLocked()
		c.state.Preview = ""
		c.state.Loading = false
		c.state.Error = ""
		return
	}

	gen := c.editGen
	c.timer = time.AfterFunc(c.debounce, func() {
		c.fire(gen)
	})
}

// supersedeLocked invalidates the in-flight request, if any.
func (c *Controller) supersedeLocked() {
	c.seq++
	if c.cancelInflight != nil {
		c.cancelInflight()
		c.cancelInflight = nil
	}
}

// Flush fires a pending debounced conversion immediately. It does nothing
// when no conversion is pending.
func (c *Controller) Flush() {
	c.mu.Lock()
	if c.closed || c.timer == nil {
		c.mu.Unlock()
		return
	}
	c.timer.Stop()
	c.timer = nil
	// A timer that already fired may be waiting on mu; moving to a new
	// window makes its fire a no-op.
	c.editGen++
	gen := c.editGen
	c.mu.Unlock()

	c.fire(gen)
}

// Pending reports whether a debounced conversion is waiting to fire.
func (c *Controller) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timer != nil
}

// fire issues a conversion for the document as of debounce window gen.
func (c *Controller) fire(gen uint64) {
	c.mu.Lock()
	if c.closed || gen != c.editGen {
		c.mu.Unlock()
		return
	}
	c.timer = nil

	text := c.state.Document
	c.supersedeLocked()
	seq := c.seq
	ctx, cancel := context.WithTimeout(c.ctx, c.timeout)
	c.cancelInflight = cancel

	c.state.Loading = true
	c.state.Error = ""
	snap := c.changedLocked()
	c.mu.Unlock()

	c.notify(snap)
	c.logger.WithFields(logrus.Fields{"seq": seq, "bytes": len(text)}).Debug("conversion issued")

	go c.run(ctx, cancel, seq, text)
}

// run performs one conversion and applies it if it is still the latest.
func (c *Controller) run(ctx context.Context, cancel context.CancelFunc, seq uint64, text string) {
	defer cancel()

	html, err := c.conv.Convert(ctx, text)

	c.mu.Lock()
	if c.closed || seq != c.seq {
		c.mu.Unlock()
		c.logger.WithField("seq", seq).Debug("discarding superseded conversion")
		return
	}
	c.cancelInflight = nil
	c.state.Loading = false
	if err != nil {
		c.state.Error = FailureMessage
	} else {
		c.state.Preview = html
		c.state.Error = ""
	}
	snap := c.changedLocked()
	c.mu.Unlock()

	if err != nil {
		c.logFailure(seq, err)
	}
	c.notify(snap)
}

// logFailure records why a conversion failed. The user only sees FailureMessage.
func (c *Controller) logFailure(seq uint64, err error) {
	fields := logrus.Fields{
		"seq":     seq,
		"timeout": client.IsTimeout(err),
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		fields["status"] = apiErr.StatusCode
		fields["request_id"] = apiErr.RequestID
		fields["temporary"] = apiErr.Temporary()
	}
	c.logger.WithFields(fields).WithError(err).Warn("conversion failed")
}

// SetViewMode switches the visible panes. Setting the current mode is a no-op.
func (c *Controller) SetViewMode(m ViewMode) error {
	if _, err := ParseViewMode(string(m)); err != nil {
		return err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.state.ViewMode == m {
		c.mu.Unlock()
		return nil
	}
	c.state.ViewMode = m
	snap := c.changedLocked()
	c.mu.Unlock()

	c.notify(snap)
	return nil
}

// SetDarkMode sets the theme. Setting the current theme is a no-op.
func (c *Controller) SetDarkMode(dark bool) {
	c.mu.Lock()
	if c.closed || c.state.DarkMode == dark {
		c.mu.Unlock()
		return
	}
	c.state.DarkMode = dark
	snap := c.changedLocked()
	c.mu.Unlock()

	c.notify(snap)
}

// ToggleDarkMode flips the theme.
func (c *Controller) ToggleDarkMode() {
	c.mu.Lock()
	dark := !c.state.DarkMode
	c.mu.Unlock()
	c.SetDarkMode(dark)
}

// Close cancels any pending or in-flight conversion. No result is applied
// afterwards and further edits are ignored. Close is idempotent.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.copiedTimer != nil {
		c.copiedTimer.Stop()
		c.copiedTimer = nil
	}
	c.cancelInflight = nil
	c.cancel()
}

// changedLocked bumps the version and returns the new snapshot.
func (c *Controller) changedLocked() State {
	c.state.Version++
	return c.state
}

func (c *Controller) notify(s State) {
	if c.onChange != nil {
		c.onChange(s)
	}
}
