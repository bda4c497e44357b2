package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"hermes/internal/logging"
	"hermes/internal/problem"
)

// ExternalWatcher watches RootDir/_ExternalFiles for files dropped in by
// the user or other tooling while the engine runs, and folds them into
// the store's external artifact set automatically.
type ExternalWatcher struct {
	mu          sync.RWMutex
	watcher     *fsnotify.Watcher
	store       *Store
	externalDir string
	debounceMap map[string]time.Time
	debounceDur time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
}

// NewExternalWatcher creates a watcher for s's _ExternalFiles directory.
func NewExternalWatcher(s *Store) (*ExternalWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &ExternalWatcher{
		watcher:     watcher,
		store:       s,
		externalDir: filepath.Join(s.rootDir, dirExternalFiles),
		debounceMap: make(map[string]time.Time),
		debounceDur: 300 * time.Millisecond,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Start begins watching in a background goroutine. Non-blocking.
func (w *ExternalWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := os.MkdirAll(w.externalDir, 0755); err != nil {
		logging.StoreWarn("ExternalWatcher: failed to create %s: %v (continuing anyway)", w.externalDir, err)
	}

	if err := w.watcher.Add(w.externalDir); err != nil {
		logging.StoreWarn("ExternalWatcher: initial watch failed: %v", err)
	} else {
		logging.Store("ExternalWatcher: watching %s", w.externalDir)
	}

	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for the event loop to exit.
func (w *ExternalWatcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.watcher.Close(); err != nil {
		logging.StoreError("ExternalWatcher: error closing watcher: %v", err)
	}
	logging.Store("ExternalWatcher: stopped")
}

func (w *ExternalWatcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
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
			logging.StoreError("ExternalWatcher error: %v", err)
		case <-ticker.C:
			w.processDebounced()
		}
	}
}

func (w *ExternalWatcher) handleEvent(event fsnotify.Event) {
	if strings.HasPrefix(filepath.Base(event.Name), ".") {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}

	w.mu.Lock()
	w.debounceMap[event.Name] = time.Now()
	w.mu.Unlock()
}

func (w *ExternalWatcher) processDebounced() {
	w.mu.Lock()
	now := time.Now()
	var ready []string
	for path, t := range w.debounceMap {
		if now.Sub(t) >= w.debounceDur {
			ready = append(ready, path)
			delete(w.debounceMap, path)
		}
	}
	w.mu.Unlock()

	for _, path := range ready {
		w.ingest(path)
	}
}

func (w *ExternalWatcher) ingest(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.StoreWarn("ExternalWatcher: failed to read %s: %v", path, err)
		}
		return
	}

	meta, body, err := ParseFrontmatter(data)
	if err != nil {
		logging.StoreWarn("ExternalWatcher: failed to parse %s: %v", path, err)
		return
	}

	fname := filepath.Base(path)
	name := strings.TrimSuffix(fname, filepath.Ext(fname))
	if meta != nil {
		if n, ok := meta["name"].(string); ok && n != "" {
			name = n
		}
	}

	w.store.externalMu.Lock()
	w.store.externalFiles[name] = &problem.Artifact{Name: name, Content: body, IsExternal: true}
	w.store.externalMu.Unlock()

	logging.Store("ExternalWatcher: ingested externally-dropped file %s", name)
}
