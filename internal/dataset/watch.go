package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceInterval coalesces the event bursts editors produce on save.
const debounceInterval = 100 * time.Millisecond

// Watch monitors a dataset path and invokes fn with the changed file after a
// debounce. It blocks until the context is cancelled. When path names a file
// its parent directory is watched instead, since most editors replace files
// rather than writing them in place.
func Watch(ctx context.Context, path string, logger *slog.Logger, fn func(changed string)) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	dir, only := watchTarget(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	logger.Debug("watching for dataset changes", "dir", dir)

	var debounce *time.Timer

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return nil

		case event := <-watcher.Events:
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if !relevant(event.Name, only) {
				continue
			}

			if debounce != nil {
				debounce.Stop()
			}
			changed := event.Name
			debounce = time.AfterFunc(debounceInterval, func() {
				logger.Debug("dataset changed", "file", changed)
				fn(changed)
			})

		case err := <-watcher.Errors:
			logger.Error("watcher error", "error", err)
		}
	}
}

func watchTarget(path string) (dir, only string) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return path, ""
	}
	return filepath.Dir(path), filepath.Base(path)
}

// relevant filters watcher noise: either the one file being watched, or any
// dataset-shaped file when watching a whole directory.
func relevant(name, only string) bool {
	if only != "" {
		return filepath.Base(name) == only
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".json":
		return true
	default:
		return false
	}
}
