// Package watcher reloads a graph file whenever it changes on disk.
package watcher

import (
	"context"
	"log"
	"path/filepath"
	"sync"
	"time"

	"graphio/internal/domain"

	"github.com/fsnotify/fsnotify"
)

// FileReader decodes a file into a graph. *codec.Codec implements it.
type FileReader interface {
	ReadFile(path string, g domain.Builder) error
}

// Watcher watches a graph file and keeps the last good decode of it
type Watcher struct {
	path     string
	reader   FileReader
	onReload func(*domain.Graph)
	debounce time.Duration
	logger   *log.Logger

	reloadMu sync.Mutex // serializes reloads
	mu       sync.Mutex
	current  *domain.Graph
}

// New creates a new file watcher. onReload may be nil.
func New(path string, reader FileReader, onReload func(*domain.Graph)) *Watcher {
	if onReload == nil {
		onReload = func(*domain.Graph) {}
	}
	return &Watcher{
		path:     path,
		reader:   reader,
		onReload: onReload,
		debounce: 500 * time.Millisecond,
		logger:   log.Default(),
	}
}

// WithDebounce sets the debounce duration
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	w.debounce = d
	return w
}

// WithLogger sets the logger for change and error messages
func (w *Watcher) WithLogger(logger *log.Logger) *Watcher {
	if logger != nil {
		w.logger = logger
	}
	return w
}

// Current returns the last successfully decoded graph, or nil
func (w *Watcher) Current() *domain.Graph {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Reload decodes the file into a fresh graph. On success the graph
// replaces the current one and onReload is called; on failure the current
// graph is kept.
func (w *Watcher) Reload() error {
	w.reloadMu.Lock()
	defer w.reloadMu.Unlock()

	g := domain.NewGraph()
	if err := w.reader.ReadFile(w.path, g); err != nil {
		w.logger.Printf("Reload of %s failed, keeping previous graph: %v", w.path, err)
		return err
	}

	w.mu.Lock()
	w.current = g
	w.mu.Unlock()
	w.logger.Printf("Reloaded %s (%d nodes, %d edges)", w.path, g.NodeCount(), g.EdgeCount())
	w.onReload(g)
	return nil
}

// Watch loads the file once, then reloads it on every change.
// It blocks until the context is cancelled or an error occurs.
func (w *Watcher) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory containing the file
	// This handles cases where the file is replaced (e.g., by editors)
	dir := filepath.Dir(w.path)
	filename := filepath.Base(w.path)

	if err := watcher.Add(dir); err != nil {
		return err
	}

	w.logger.Printf("Watching %s for changes", w.path)
	w.Reload()

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if filepath.Base(event.Name) != filename {
				continue
			}

			// Handle write or create events
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				// Debounce rapid changes
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(w.debounce, func() {
					if ctx.Err() != nil {
						return
					}
					w.logger.Printf("File changed: %s", w.path)
					w.Reload()
				})
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Printf("Watcher error: %v", err)

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
