package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/specialistvlad/reactbake/internal/ctxlog"
)

// watchDebounce collapses the burst of events an editor produces on save.
const watchDebounce = 200 * time.Millisecond

// watch recompiles wholesale whenever a scene file changes, until ctx is
// cancelled. A failed recompilation is logged and the previous report stays
// current.
func (a *App) watch(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	dirs, err := watchDirs(a.config.ScenePath)
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	logger.Info("👀 Watching scene files for changes.", "dirs", dirs)

	timer := time.NewTimer(watchDebounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Watch mode stopped.")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			logger.Debug("Scene file changed.", "file", event.Name, "op", event.Op.String())
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = watcher.Add(event.Name)
				}
			}
			timer.Reset(watchDebounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("File watcher error.", "error", err)

		case <-timer.C:
			gen := a.compiler.Invalidate()
			logger.Info("Recompiling after change.", "invalidated", gen)
			report, err := a.Compile(ctx)
			if err != nil {
				logger.Error("Recompilation failed; keeping the previous result.", "error", err)
				continue
			}
			if err := a.writeReport(report); err != nil {
				return err
			}
		}
	}
}

// relevant reports whether an event can change the compiled scene.
func relevant(event fsnotify.Event) bool {
	if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
		return false
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	if filepath.Ext(base) == ".hcl" {
		return true
	}
	// Directory creation or removal; directories have no extension in
	// practice.
	return filepath.Ext(base) == "" && (event.Has(fsnotify.Create) || event.Has(fsnotify.Remove))
}

// watchDirs returns the directories to watch for path: the parent directory
// of a file, or a directory and all its non-hidden subdirectories.
func watchDirs(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat scene path: %w", err)
	}
	if !info.IsDir() {
		return []string{filepath.Dir(path)}, nil
	}

	var dirs []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != path && strings.HasPrefix(d.Name(), ".") {
			return fs.SkipDir
		}
		dirs = append(dirs, p)
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to walk scene directory: %w", err)
	}
	return dirs, nil
}
