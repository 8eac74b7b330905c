package jsonfile

import (
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher notifies when another process rewrites the analytics blob - the
// filesystem equivalent of the browser's cross-tab storage event. Changes
// to unrelated files in the data directory are ignored.
//
// This is one-way eventual consistency, not consensus: two processes
// writing at the same instant still race, and the later save wins. The
// watcher only guarantees the loser eventually observes the winner's state.
type Watcher struct {
	fw       *fsnotify.Watcher
	path     string
	onChange func()
	logger   *slog.Logger
	done     chan struct{}
}

// NewWatcher watches the store file at path and invokes onChange whenever
// its contents are replaced. The parent directory is watched rather than
// the file itself because saves go through a temp-file rename, which
// replaces the inode a direct file watch would be pinned to.
func NewWatcher(path string, onChange func(), logger *slog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, err
	}

	return &Watcher{
		fw:       fw,
		path:     filepath.Clean(path),
		onChange: onChange,
		logger:   logger,
		done:     make(chan struct{}),
	}, nil
}

// Start begins dispatching change notifications in a background goroutine
func (w *Watcher) Start() {
	go w.loop()
}

func (w *Watcher) loop() {
	for {
		select {
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if !w.matches(event) {
				continue
			}
			w.logger.Debug("Analytics store changed on disk", "op", event.Op.String())
			w.onChange()

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Storage watch error", "error", err)

		case <-w.done:
			return
		}
	}
}

// matches filters for writes that actually touch the store file. A save
// from this same process also matches; the reload path recognizes its own
// history coming back and leaves the in-memory state alone.
func (w *Watcher) matches(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

// Close stops the watcher and releases the underlying filesystem watch
func (w *Watcher) Close() error {
	close(w.done)
	return w.fw.Close()
}
