// Package watch rebuilds the recipe index when recipe files change on
// disk outside the server, e.g. when a recipe is edited by hand or synced
// from another machine.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/cooking-companion/server/internal/indexing"
)

// DefaultDebounce is how long the watcher waits for more changes before
// rebuilding.
const DefaultDebounce = 250 * time.Millisecond

// Rebuilder regenerates the recipe index.
type Rebuilder interface {
	RebuildIndex(ctx context.Context) ([]indexing.Entry, error)
}

// Watcher debounces changes to the recipes directory into index rebuilds.
// Rebuilds run on the Run goroutine, one at a time.
type Watcher struct {
	dir      string
	rebuild  Rebuilder
	debounce time.Duration
	logger   *zap.Logger
}

// New creates a watcher for dir. A zero debounce uses DefaultDebounce.
func New(dir string, rebuild Rebuilder, debounce time.Duration, logger *zap.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{dir: dir, rebuild: rebuild, debounce: debounce, logger: logger}
}

// Run watches until ctx is cancelled. It returns an error only if the
// directory cannot be watched.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	w.logger.Info("✓ Watching recipes", zap.String("dir", w.dir), zap.Duration("debounce", w.debounce))

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()
	pending := 0

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			pending++
			timer.Reset(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", zap.Error(err))

		case <-timer.C:
			w.logger.Debug("Recipe files changed, rebuilding index", zap.Int("events", pending))
			pending = 0
			if _, err := w.rebuild.RebuildIndex(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				w.logger.Warn("index rebuild after file change failed", zap.Error(err))
			}
		}
	}
}

// relevant reports whether event touches a recipe file. Temp files of
// in-flight atomic writes and chmod-only events are ignored.
func relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".tmp") {
		return false
	}
	return filepath.Ext(name) == indexing.RecipeExt
}
