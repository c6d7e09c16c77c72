package schemafile

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/schemasync/internal/logger"
)

// DefaultDebounce is how long Watch waits after the last change before calling back.
const DefaultDebounce = 250 * time.Millisecond

// Watch calls fn each time the file at path is written or re-created, until
// ctx is cancelled. Bursts of events within DefaultDebounce produce one call.
func Watch(ctx context.Context, path string, fn func()) error {
	return WatchWithDebounce(ctx, path, DefaultDebounce, fn)
}

// WatchWithDebounce is Watch with a custom debounce interval.
// The parent directory is watched so editors that replace the file are seen.
// Calls to fn never overlap.
func WatchWithDebounce(ctx context.Context, path string, debounce time.Duration, fn func()) error {
	target, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}
	logger.Debug("Watching %s", target)

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			logger.Debug("Change detected: %s", event)
			timer.Reset(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watch error on %s: %v", target, err)

		case <-timer.C:
			fn()
		}
	}
}
