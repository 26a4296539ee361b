// Package watch reports atlas files that changed on disk, coalescing
// bursts of writes into a single reload request.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Reload lists the watched files touched since the previous request.
type Reload struct {
	Paths []string
}

// Watcher watches individual files through their parent directories, so
// editors that save by rename are still seen.
type Watcher struct {
	fs       *fsnotify.Watcher
	files    map[string]bool
	dirs     map[string]bool
	debounce time.Duration
	reloads  chan Reload
	log      *zap.Logger
}

// New creates a watcher. debounce is the quiet period after the last
// change before a Reload is delivered.
func New(debounce time.Duration, log *zap.Logger) (*Watcher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	return &Watcher{
		fs:       fw,
		files:    make(map[string]bool),
		dirs:     make(map[string]bool),
		debounce: debounce,
		reloads:  make(chan Reload, 1),
		log:      log,
	}, nil
}

// Add starts watching path. Call before Run.
func (w *Watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	if !w.dirs[dir] {
		if err := w.fs.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
		w.dirs[dir] = true
	}
	w.files[abs] = true
	w.log.Debug("watching", zap.String("path", abs))
	return nil
}

// Reloads delivers debounced change notifications.
func (w *Watcher) Reloads() <-chan Reload {
	return w.reloads
}

// Run processes file events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	pending := make(map[string]bool)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			pending[filepath.Clean(ev.Name)] = true
			timer.Reset(w.debounce)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", zap.Error(err))

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			r := Reload{Paths: make([]string, 0, len(pending))}
			for p := range pending {
				r.Paths = append(r.Paths, p)
			}
			sort.Strings(r.Paths)
			clear(pending)

			w.log.Info("atlas changed", zap.Strings("paths", r.Paths))
			select {
			case w.reloads <- r:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return false
	}
	return w.files[filepath.Clean(ev.Name)]
}

// Close stops the underlying watcher. A running Run returns.
func (w *Watcher) Close() error {
	if err := w.fs.Close(); err != nil && !errors.Is(err, fsnotify.ErrClosed) {
		return err
	}
	return nil
}
