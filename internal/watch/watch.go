// Package watch reports changes to the file backing the current dataset.
package watch

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for writes to settle.
const DefaultDebounce = 200 * time.Millisecond

// Config holds watcher configuration.
type Config struct {
	// Debounce collapses bursts of events (0 uses DefaultDebounce).
	Debounce time.Duration

	// Notify is called after a change is queued (optional).
	Notify func()

	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
}

// Watcher watches a single file. The parent directory is watched so that
// editors that replace files by rename are still seen.
type Watcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	notify   func()
	logger   *slog.Logger
	changes  chan string

	mu    sync.Mutex
	path  string
	dir   string
	timer *time.Timer
	done  chan struct{}
}

// New starts a watcher with nothing watched.
func New(cfg Config) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	w := &Watcher{
		watcher:  fw,
		debounce: debounce,
		notify:   cfg.Notify,
		logger:   logger,
		changes:  make(chan string, 1),
		done:     make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Changes delivers the path of the watched file after it changed.
// Pending changes are coalesced.
func (w *Watcher) Changes() <-chan string {
	return w.changes
}

// Watch switches the watched file to path. An empty path stops watching.
func (w *Watcher) Watch(path string) error {
	abs := path
	if path != "" {
		var err error
		if abs, err = filepath.Abs(path); err != nil {
			return fmt.Errorf("failed to resolve %s: %w", path, err)
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if abs == w.path {
		return nil
	}

	dir := filepath.Dir(abs)
	if w.dir != "" && (abs == "" || dir != w.dir) {
		if err := w.watcher.Remove(w.dir); err != nil {
			w.logger.Debug("failed to remove watch", "dir", w.dir, "error", err)
		}
		w.dir = ""
	}
	w.path = abs
	if abs == "" {
		return nil
	}

	if w.dir != dir {
		if err := w.watcher.Add(dir); err != nil {
			w.path = ""
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		w.dir = dir
	}
	w.logger.Debug("watching file", "path", abs)
	return nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	<-w.done

	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return err
}

func (w *Watcher) loop() {
	defer close(w.done)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.schedule(event.Name)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

func (w *Watcher) schedule(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.path == "" || filepath.Clean(name) != w.path {
		return
	}

	if w.timer != nil {
		w.timer.Stop()
	}
	path := w.path
	w.timer = time.AfterFunc(w.debounce, func() {
		w.logger.Info("file changed", "path", path)
		select {
		case w.changes <- path:
		default:
		}
		if w.notify != nil {
			w.notify()
		}
	})
}
