// ABOUTME: Local export of the current document: download to a .md file and copy to the clipboard.
// ABOUTME: Neither operation touches the network or the conversion pipeline.
package editor

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/atotto/clipboard"
)

// DownloadName is the file name written by Download.
const DownloadName = "document.md"

// Clipboard writes text to a clipboard.
type Clipboard interface {
	WriteAll(text string) error
}

// SystemClipboard is the OS clipboard.
type SystemClipboard struct{}

// WriteAll copies text to the system clipboard.
func (SystemClipboard) WriteAll(text string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("no clipboard utility available")
	}
	return clipboard.WriteAll(text)
}

// Download writes the document to DownloadName inside dir and returns the path.
func (c *Controller) Download(dir string) (string, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return "", ErrClosed
	}
	text := c.state.Document
	c.mu.Unlock()

	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, DownloadName)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// Copy writes the document to the clipboard and raises the Copied flag for
// two seconds.
func (c *Controller) Copy() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	text := c.state.Document
	cb := c.clipboard
	c.mu.Unlock()

	if err := cb.WriteAll(text); err != nil {
		return fmt.Errorf("copying to clipboard: %w", err)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	if c.copiedTimer != nil {
		c.copiedTimer.Stop()
	}
	c.state.Copied = true
	c.copiedTimer = time.AfterFunc(copiedFor, c.clearCopied)
	snap := c.changedLocked()
	c.mu.Unlock()

	c.notify(snap)
	return nil
}

func (c *Controller) clearCopied() {
	c.mu.Lock()
	if c.closed || !c.state.Copied {
		c.mu.Unlock()
		return
	}
	c.state.Copied = false
	c.copiedTimer = nil
	snap := c.changedLocked()
	c.mu.Unlock()

	c.notify(snap)
}
