// Package watch re-runs a program whenever its file changes.
package watch

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after the last change before a re-run.
const DefaultDebounce = 100 * time.Millisecond

// RunFunc evaluates the program at path. A returned error is logged and
// watching continues.
type RunFunc func(ctx context.Context, path string) error

// Watcher monitors one program file and triggers a run after each change
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	run      RunFunc
	stdout   io.Writer
	stderr   io.Writer

	mu   sync.Mutex
	runs uint64
}

// New creates a watcher for path. A debounce of zero uses DefaultDebounce.
func New(path string, debounce time.Duration, run RunFunc, stdout, stderr io.Writer) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &Watcher{
		watcher:  fsWatcher,
		path:     absPath,
		debounce: debounce,
		run:      run,
		stdout:   stdout,
		stderr:   stderr,
	}, nil
}

// Run performs an initial run, then re-runs after every change until ctx
// is cancelled. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	// Editors often replace the file on save, so watch its directory.
	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	w.logInfo("watching %s", w.path)

	w.trigger(ctx)
	return w.eventLoop(ctx)
}

// eventLoop processes file system events
func (w *Watcher) eventLoop(ctx context.Context) error {
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			// Restart the quiet period on every event
			timer.Reset(w.debounce)

		case <-timer.C:
			w.logInfo("changed: %s", w.path)
			w.trigger(ctx)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logError("watcher error: %v", err)
		}
	}
}

// relevant reports whether event is a write or create of the watched file.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}
	name, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return name == w.path
}

func (w *Watcher) trigger(ctx context.Context) {
	w.mu.Lock()
	w.runs++
	w.mu.Unlock()

	if err := w.run(ctx, w.path); err != nil {
		w.logError("%v", err)
	}
}

// Runs returns how many times the program has been run.
func (w *Watcher) Runs() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.runs
}

// Close stops the watcher
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) logInfo(format string, args ...any) {
	fmt.Fprintf(w.stdout, "[WATCH] "+format+"\n", args...)
}

func (w *Watcher) logError(format string, args ...any) {
	fmt.Fprintf(w.stderr, "[WATCH ERROR] "+format+"\n", args...)
}
