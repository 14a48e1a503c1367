package atlas

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"map-atlas/core/report"
	"map-atlas/core/source"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// WatchDirs are the root relative directories whose changes trigger a
// reload. Each is watched with all its subdirectories.
var WatchDirs = []string{
	"map",
	"history/states",
	"common/countries",
	"common/country_tags",
	"common/buildings",
	"localisation",
}

// Watcher reloads the atlas once content files stop changing for the
// debounce period.
type Watcher struct {
	service  *Service
	logger   *zap.Logger
	debounce time.Duration
	fs       *fsnotify.Watcher
	watched  map[string]bool
}

// NewWatcher creates a watcher for the service's content roots.
func NewWatcher(svc *Service, debounce time.Duration, logger *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		service:  svc,
		logger:   logger,
		debounce: debounce,
		fs:       fw,
		watched:  make(map[string]bool),
	}, nil
}

// Run watches until ctx is done. It always closes the underlying watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fs.Close()
	w.sync()

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					w.add(ev.Name)
				}
			}
			w.logger.Debug("Content change", zap.String("file", ev.Name), zap.String("op", ev.Op.String()))
			timer.Reset(w.debounce)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("File watcher error", zap.Error(err))
		case <-timer.C:
			if _, err := w.service.Reload(ctx, nil); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				w.logger.Warn("Reload after change failed", zap.Error(err))
			}
			w.sync()
		}
	}
}

// relevant drops attribute-only changes and writes of the cache file,
// including its temporary siblings.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	cache := w.service.Config().CachePath
	if cache == "" {
		return true
	}
	abs, err := filepath.Abs(cache)
	if err != nil {
		return true
	}
	return filepath.Dir(ev.Name) != filepath.Dir(abs) || !strings.HasPrefix(filepath.Base(ev.Name), filepath.Base(abs))
}

// sync watches the directories of the current roots and drops the ones of
// roots no longer configured.
func (w *Watcher) sync() {
	roots := w.roots()
	want := make(map[string]bool)
	for _, r := range roots {
		want[r.Path] = true
		for _, dir := range WatchDirs {
			base := filepath.Join(r.Path, filepath.FromSlash(dir))
			_ = filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return nil
				}
				if d.IsDir() {
					want[path] = true
				}
				return nil
			})
		}
	}

	for dir := range w.watched {
		if !want[dir] {
			_ = w.fs.Remove(dir)
			delete(w.watched, dir)
		}
	}
	for dir := range want {
		w.add(dir)
	}
}

func (w *Watcher) add(dir string) {
	if w.watched[dir] {
		return
	}
	if err := w.fs.Add(dir); err != nil {
		w.logger.Warn("Cannot watch directory", zap.String("file", dir), zap.Error(err))
		return
	}
	w.watched[dir] = true
}

func (w *Watcher) roots() []source.Root {
	if snap := w.service.store.Current(); snap != nil {
		return snap.Roots
	}
	roots, err := source.Resolve(w.service.Config(), report.New())
	if err != nil {
		w.logger.Warn("Cannot resolve roots to watch", zap.Error(err))
		return nil
	}
	return roots
}
