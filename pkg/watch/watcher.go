// Package watch re-runs analysis when its inputs change on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period before a change triggers a run.
const DefaultDebounce = 500 * time.Millisecond

// ErrNoFiles is returned when a watcher is created without files.
var ErrNoFiles = errors.New("no files to watch")

// Watcher monitors input files (fact document, config, package manifest)
// and calls back once per burst of changes.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	debounce  time.Duration
	files     map[string]bool
	dirs      []string
	callback  func(changed []string)
	out       io.Writer
	mu        sync.Mutex
	pending   map[string]time.Time
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period. Non-positive values keep the default.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithOutput sets where status lines are written.
func WithOutput(out io.Writer) Option {
	return func(w *Watcher) {
		if out != nil {
			w.out = out
		}
	}
}

// NewWatcher creates a watcher for files. Empty entries are ignored.
// Parent directories are watched so that files replaced by rename, as
// most editors and generators do, keep being tracked.
func NewWatcher(files []string, opts ...Option) (*Watcher, error) {
	w := &Watcher{
		debounce: DefaultDebounce,
		files:    make(map[string]bool),
		out:      os.Stderr,
		pending:  make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(w)
	}

	seenDir := make(map[string]bool)
	for _, f := range files {
		if f == "" {
			continue
		}
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", f, err)
		}
		w.files[abs] = true
		dir := filepath.Dir(abs)
		if !seenDir[dir] {
			seenDir[dir] = true
			w.dirs = append(w.dirs, dir)
		}
	}
	if len(w.files) == 0 {
		return nil, ErrNoFiles
	}
	sort.Strings(w.dirs)

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w.fsWatcher = fsWatcher
	return w, nil
}

// SetCallback sets the function called with the changed files.
func (w *Watcher) SetCallback(cb func(changed []string)) {
	w.callback = cb
}

// Start begins watching and blocks until ctx is done.
func (w *Watcher) Start(ctx context.Context) error {
	for _, dir := range w.dirs {
		if err := w.fsWatcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	color.New(color.FgCyan).Fprintf(w.out, "Watching %d file(s) for changes...\n", len(w.files))
	color.New(color.FgCyan).Fprintln(w.out, "Press Ctrl+C to stop")

	go w.processDebounced(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			color.New(color.FgRed).Fprintf(w.out, "Watch error: %v\n", err)
		}
	}
}

// handleEvent records a change to one of the watched files.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}
	path, err := filepath.Abs(event.Name)
	if err != nil || !w.files[path] {
		return
	}

	w.mu.Lock()
	w.pending[path] = time.Now()
	w.mu.Unlock()
}

// processDebounced processes pending changes after debounce period.
func (w *Watcher) processDebounced(ctx context.Context) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.processPending(time.Now())
		}
	}
}

// processPending fires the callback once all pending files have been quiet
// for the debounce period. Runs never overlap: the callback executes on
// the debounce goroutine.
func (w *Watcher) processPending(now time.Time) {
	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	for _, last := range w.pending {
		if now.Sub(last) < w.debounce {
			w.mu.Unlock()
			return
		}
	}
	changed := make([]string, 0, len(w.pending))
	for path := range w.pending {
		changed = append(changed, path)
	}
	w.pending = make(map[string]time.Time)
	w.mu.Unlock()

	sort.Strings(changed)
	if w.callback != nil {
		w.runCallback(changed)
	}
}

func (w *Watcher) runCallback(changed []string) {
	for _, p := range changed {
		color.New(color.FgYellow).Fprintf(w.out, "Changed: %s\n", filepath.Base(p))
	}
	w.callback(changed)
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	return w.fsWatcher.Close()
}

// Files returns the watched files in sorted order.
func (w *Watcher) Files() []string {
	out := make([]string, 0, len(w.files))
	for f := range w.files {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}
