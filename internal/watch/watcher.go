// Package watch triggers a resync when the data directory changes.
package watch

import (
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	// DefaultDebounceInterval is the default interval to wait after the last change before triggering a refresh.
	DefaultDebounceInterval = 100 * time.Millisecond
)

// RefreshFunc is called after the watched files change.
type RefreshFunc func(file string)

// Watcher monitors a data directory and calls a RefreshFunc, debounced,
// when one of the watched files is written.
type Watcher struct {
	dir              string
	files            map[string]bool
	refreshFn        RefreshFunc
	logger           *slog.Logger
	debounceInterval time.Duration

	watcher   *fsnotify.Watcher
	stopChan  chan struct{}
	doneChan  chan struct{}
	closeOnce sync.Once

	mu       sync.Mutex
	pending  *time.Timer
	closed   bool
	started  bool
	inflight sync.WaitGroup
}

// NewWatcher creates a watcher for the named files inside dir.
// logger may be nil.
func NewWatcher(dir string, files []string, refreshFn RefreshFunc, logger *slog.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	watched := make(map[string]bool, len(files))
	for _, f := range files {
		watched[f] = true
	}

	return &Watcher{
		dir:              dir,
		files:            watched,
		refreshFn:        refreshFn,
		logger:           logger,
		debounceInterval: DefaultDebounceInterval,
		watcher:          fsWatcher,
		stopChan:         make(chan struct{}),
		doneChan:         make(chan struct{}),
	}, nil
}

// SetDebounceInterval changes the debounce interval. Call before Start.
func (w *Watcher) SetDebounceInterval(d time.Duration) {
	w.debounceInterval = d
}

// Start begins watching for file changes.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(w.dir); err != nil {
		return err
	}
	w.logger.Debug("watching data directory", "dir", w.dir)

	w.mu.Lock()
	w.started = true
	w.mu.Unlock()
	go w.processEvents()
	return nil
}

// Close stops the watcher and cleans up resources. It returns after any
// refresh that is already running has finished. Close is safe to call
// whether or not Start succeeded.
func (w *Watcher) Close() {
	w.closeOnce.Do(func() {
		close(w.stopChan)
		w.watcher.Close()

		w.mu.Lock()
		if w.pending != nil {
			w.pending.Stop()
		}
		w.closed = true
		started := w.started
		w.mu.Unlock()

		if started {
			<-w.doneChan
		}
		w.inflight.Wait()
	})
}

// processEvents handles filesystem events.
func (w *Watcher) processEvents() {
	defer close(w.doneChan)

	for {
		select {
		case <-w.stopChan:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

// handleEvent processes a single filesystem event.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	filename := filepath.Base(event.Name)
	if !w.files[filename] {
		return
	}

	// Only process write events
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}

	w.logger.Debug("file change detected", "file", filename)
	w.scheduleRefresh(filename)
}

// scheduleRefresh schedules a debounced refresh.
func (w *Watcher) scheduleRefresh(filename string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	if w.pending != nil {
		w.pending.Stop()
	}
	w.pending = time.AfterFunc(w.debounceInterval, func() {
		w.mu.Lock()
		w.pending = nil
		if w.closed {
			w.mu.Unlock()
			return
		}
		w.inflight.Add(1)
		w.mu.Unlock()
		defer w.inflight.Done()
		w.refreshFn(filename)
	})
}
