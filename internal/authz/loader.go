package authz

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/vyrodovalexey/avauthz/internal/observability"
)

// Loader watches a policy configuration file and reloads the engine's
// policy set when the file changes. A file that fails to parse or
// validate is rejected and the previously installed policies stay live.
type Loader struct {
	path   string
	engine *Engine
	logger observability.Logger

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewLoader creates a loader for the given configuration file.
func NewLoader(path string, engine *Engine, logger observability.Logger) *Loader {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Loader{
		path:   filepath.Clean(path),
		engine: engine,
		logger: logger,
	}
}

// Reload reads the file and swaps the engine's policy set.
func (l *Loader) Reload() error {
	cfg, err := LoadConfig(l.path)
	if err != nil {
		return err
	}
	return l.engine.SetPolicies(cfg.Policies)
}

// Start begins watching the configuration file. The parent directory is
// watched rather than the file itself so that editors and config mounts
// that replace the file atomically still trigger a reload.
func (l *Loader) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.watcher != nil {
		return fmt.Errorf("loader already started for %s", l.path)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	if err := watcher.Add(filepath.Dir(l.path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(l.path), err)
	}

	l.watcher = watcher
	l.done = make(chan struct{})
	go l.run(watcher, l.done)

	l.logger.Info("watching policy configuration",
		observability.String("path", l.path),
	)

	return nil
}

// Stop stops watching. Safe to call multiple times.
func (l *Loader) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.watcher == nil {
		return
	}
	close(l.done)
	_ = l.watcher.Close()
	l.watcher = nil
	l.done = nil
}

func (l *Loader) run(watcher *fsnotify.Watcher, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !l.relevant(event) {
				continue
			}
			if err := l.Reload(); err != nil {
				l.logger.Error("policy reload failed, keeping previous policies",
					observability.String("path", l.path),
					observability.Error(err),
				)
				continue
			}
			l.logger.Info("policy configuration reloaded",
				observability.String("path", l.path),
			)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			l.logger.Warn("policy watcher error", observability.Error(err))
		}
	}
}

// relevant filters watcher events down to changes of the watched file.
func (l *Loader) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != l.path {
		return false
	}
	return event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Rename)
}
