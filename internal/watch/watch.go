// Package watch rebuilds the project whenever its sources change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/shirt-tracker/splitbuild/internal/layout"
	"github.com/shirt-tracker/splitbuild/internal/variant"
)

// DefaultDebounce is how long the sources must be quiet before a rebuild.
const DefaultDebounce = 300 * time.Millisecond

// BuildFunc performs one build.
type BuildFunc func(ctx context.Context) error

// skippedDirs are never watched.
var skippedDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
}

// Watcher runs Build after every settled burst of source changes. Builds run
// one at a time on the watcher's goroutine; changes made during a build
// trigger one more build once it finishes.
type Watcher struct {
	Layout   layout.Layout
	Build    BuildFunc
	Debounce time.Duration
	Logger   *zap.Logger

	onReady func()
}

// New returns a Watcher for the project described by l.
func New(l layout.Layout, build BuildFunc, debounce time.Duration, logger *zap.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{Layout: l, Build: build, Debounce: debounce, Logger: logger}
}

// Run watches until ctx is canceled. Build failures are logged and do not
// stop the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.Layout.Root); err != nil {
		return fmt.Errorf("watching %s: %w", w.Layout.Root, err)
	}
	roots := []string{w.Layout.SharedDir()}
	for _, p := range variant.All() {
		roots = append(roots, w.Layout.ShellDir(p))
	}
	for _, dir := range roots {
		if err := w.addTree(fw, dir); err != nil {
			return err
		}
	}
	w.Logger.Info("watching for changes", zap.Duration("debounce", w.Debounce))
	if w.onReady != nil {
		w.onReady()
	}

	tick := w.Debounce / 4
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	var pending bool
	var last time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.Logger.Debug("source changed", zap.String("path", w.Layout.Rel(event.Name)), zap.String("op", event.Op.String()))
			if event.Has(fsnotify.Create) {
				w.watchCreated(fw, event.Name)
			}
			pending = true
			last = time.Now()

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.Logger.Warn("file watcher error", zap.Error(err))

		case <-ticker.C:
			if !pending || time.Since(last) < w.Debounce {
				continue
			}
			pending = false
			w.rebuild(ctx)
		}
	}
}

func (w *Watcher) rebuild(ctx context.Context) {
	start := time.Now()
	if err := w.Build(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		w.Logger.Error("rebuild failed", zap.Error(err))
		return
	}
	w.Logger.Info("rebuilt", zap.Duration("duration", time.Since(start)))
}

// relevant reports whether event touches a build input.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	for _, out := range []string{w.Layout.OutputRoot(), w.Layout.NativeShellSrc()} {
		if event.Name == out || strings.HasPrefix(event.Name, out+string(filepath.Separator)) {
			return false
		}
	}
	if filepath.Dir(event.Name) == filepath.Clean(w.Layout.Root) {
		switch filepath.Base(event.Name) {
		case layout.PackageFile, layout.ChangelogFile:
			return true
		}
		return false
	}
	return filepath.Base(event.Name) != ".DS_Store"
}

// watchCreated adds a newly created path to fw. Failures are logged.
func (w *Watcher) watchCreated(fw *fsnotify.Watcher, path string) {
	if err := w.addTree(fw, path); err != nil {
		w.Logger.Warn("cannot watch new directory", zap.String("path", w.Layout.Rel(path)), zap.Error(err))
	}
}

// addTree watches dir and every directory below it. A missing dir is not an
// error.
func (w *Watcher) addTree(fw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if skippedDirs[d.Name()] {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}
