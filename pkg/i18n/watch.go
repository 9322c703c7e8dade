package i18n

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// reloadDebounce coalesces bursts of writes (editors often write twice).
const reloadDebounce = 150 * time.Millisecond

// Watch reloads catalogs from dir whenever a catalog file changes and hands
// the new table to onReload. It blocks until ctx is cancelled. A reload that
// fails to parse is logged and the previous table stays in effect.
func Watch(ctx context.Context, dir string, onReload func(*MessageTable), logger *zap.Logger) error {
	if onReload == nil {
		return fmt.Errorf("i18n: watch requires a reload callback")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("i18n: create watcher: %w", err)
	}
	defer watcher.Close()

	root := filepath.Join(dir, "locales")
	if err := addTree(watcher, root); err != nil {
		return err
	}

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case evt, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if evt.Has(fsnotify.Create) {
				if info, statErr := os.Stat(evt.Name); statErr == nil && info.IsDir() {
					_ = watcher.Add(evt.Name)
				}
			}
			if !isCatalogPath(evt.Name) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(reloadDebounce)
			} else {
				timer.Reset(reloadDebounce)
			}
			pending = timer.C
		case <-pending:
			pending = nil
			table, err := LoadDir(dir)
			if err != nil {
				logger.Warn("catalog reload failed", zap.String("dir", dir), zap.Error(err))
				continue
			}
			logger.Info("catalogs reloaded", zap.String("dir", dir))
			onReload(table)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("catalog watcher error", zap.Error(err))
		}
	}
}

func addTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("i18n: watch %s: %w", path, err)
		}
		if !entry.IsDir() {
			return nil
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("i18n: watch %s: %w", path, err)
		}
		return nil
	})
}

func isCatalogPath(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".yaml")
}
