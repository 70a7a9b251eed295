// ABOUTME: Follows a markdown file on disk, feeding every change through an editor controller.
// ABOUTME: Each new preview is written atomically to an HTML output file.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/2389-research/mdpreview/editor"
	"github.com/2389-research/mdpreview/logging"
)

// Follower keeps out in sync with the rendered contents of path.
type Follower struct {
	path    string
	out     string
	ctrl    *editor.Controller
	updates <-chan struct{}
	logger  logrus.FieldLogger

	// onWrite is called after each successful output write. Tests hook it.
	onWrite func(html string)

	lastText    string
	loaded      bool
	lastPreview string
	wrote       bool
}

// New creates a Follower. updates must be the channel from editor.Notifier
// whose listener is registered on ctrl.
func New(path, out string, ctrl *editor.Controller, updates <-chan struct{}, logger logrus.FieldLogger) (*Follower, error) {
	if path == "" {
		return nil, errors.New("watch: source path is required")
	}
	if out == "" {
		return nil, errors.New("watch: output path is required")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	absOut, err := filepath.Abs(out)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", out, err)
	}
	if absPath == absOut {
		return nil, fmt.Errorf("watch: output %s would overwrite the source", out)
	}

	return &Follower{
		path:    absPath,
		out:     absOut,
		ctrl:    ctrl,
		updates: updates,
		logger:  logging.OrDiscard(logger).WithField("source", absPath),
	}, nil
}

// Run loads the file, then follows it until ctx is cancelled. The controller
// is closed when Run returns.
func (f *Follower) Run(ctx context.Context) error {
	defer f.ctrl.Close()

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	// Watch the directory so editors that save by rename keep being followed.
	if err := w.Add(filepath.Dir(f.path)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(f.path), err)
	}

	if err := f.reload(); err != nil {
		return err
	}
	f.logger.WithField("output", f.out).Info("following markdown file")

	for {
		select {
		case <-ctx.Done():
			f.logger.Info("stopped following")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != f.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				if err := f.reload(); err != nil {
					f.logger.WithError(err).Warn("reload failed")
				}
			}
			if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
				f.logger.Debug("source removed, waiting for it to reappear")
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			f.logger.WithError(err).Warn("watcher error")

		case <-f.updates:
			f.sync()
		}
	}
}

// reload reads the source and hands it to the controller when it changed.
func (f *Follower) reload() error {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", f.path, err)
	}
	text := string(data)
	if f.loaded && text == f.lastText {
		return nil
	}
	f.lastText = text
	f.loaded = true
	f.ctrl.SetText(text)
	return nil
}

// sync writes the current preview when it differs from the last one written.
func (f *Follower) sync() {
	if f.ctrl.Pending() {
		return
	}
	s := f.ctrl.State()
	if s.Loading || s.Error != "" {
		if s.Error != "" {
			f.logger.Warn(s.Error)
		}
		return
	}
	if f.wrote && s.Preview == f.lastPreview {
		return
	}
	if err := writeAtomic(f.out, []byte(s.Preview)); err != nil {
		f.logger.WithError(err).Error("writing preview failed")
		return
	}
	f.lastPreview = s.Preview
	f.wrote = true
	f.logger.WithField("bytes", len(s.Preview)).Debug("preview written")
	if f.onWrite != nil {
		f.onWrite(s.Preview)
	}
}

// writeAtomic writes data to a temporary sibling of path and renames it into place.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming into place: %w", err)
	}
	return nil
}
