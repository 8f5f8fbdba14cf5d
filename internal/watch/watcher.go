// Package watch implements watch mode: rebuild on template or configuration
// changes, periodically sync mesh status, and expose Prometheus metrics.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher monitors a set of files and fires a debounced callback when any of
// them changes.
type Watcher struct {
	files    map[string]struct{} // absolute paths
	watcher  *fsnotify.Watcher
	debounce *Debouncer
	stopChan chan struct{}
}

// NewWatcher watches the given files. Directories containing the files are
// watched rather than the files themselves so that editors that replace files
// on save (rename-over) keep being observed.
func NewWatcher(files []string, debounceInterval time.Duration, onChange func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}

	w := &Watcher{
		files:    make(map[string]struct{}, len(files)),
		watcher:  fsw,
		debounce: NewDebouncer(debounceInterval, onChange),
		stopChan: make(chan struct{}),
	}

	dirs := make(map[string]struct{})
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			fsw.Close()
			return nil, fmt.Errorf("resolve path %s: %w", f, err)
		}
		w.files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("watch directory %s: %w", dir, err)
		}
	}

	return w, nil
}

// Start runs the event loop until Stop or context cancellation.
func (w *Watcher) Start(ctx context.Context) {
	slog.Info("Watching for changes", "files", len(w.files))
	go w.loop(ctx)
}

// Stop shuts the watcher down.
func (w *Watcher) Stop() {
	close(w.stopChan)
	w.debounce.Stop()
	if err := w.watcher.Close(); err != nil {
		slog.Error("Error closing file watcher", "error", err)
	}
}

func (w *Watcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			slog.Debug("File change detected", "file", event.Name, "op", event.Op.String())
			w.debounce.Trigger()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("File watcher error", "error", err)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	if _, watched := w.files[abs]; !watched {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}
