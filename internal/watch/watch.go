// Package watch rebuilds the site when its inputs change.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/docbib/internal/logfields"
)

// DefaultDebounce is the quiet period after the last change before a rebuild.
const DefaultDebounce = 300 * time.Millisecond

// RebuildFunc rebuilds the site.
type RebuildFunc func(ctx context.Context) error

// Watcher triggers debounced rebuilds on filesystem changes. Rebuilds run one
// at a time; changes during a rebuild queue a single follow-up rebuild.
type Watcher struct {
	rebuild  RebuildFunc
	debounce time.Duration
	ignore   []string
	logger   *slog.Logger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the debounce interval.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithIgnore excludes everything below the given directories, typically the
// output directory.
func WithIgnore(dirs ...string) Option {
	return func(w *Watcher) {
		for _, d := range dirs {
			if d != "" {
				w.ignore = append(w.ignore, filepath.Clean(d))
			}
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// New returns a watcher that calls rebuild.
func New(rebuild RebuildFunc, opts ...Option) *Watcher {
	w := &Watcher{rebuild: rebuild, debounce: DefaultDebounce, logger: slog.Default()}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches paths until ctx is done. Directories are watched recursively;
// for files the containing directory is watched.
func (w *Watcher) Run(ctx context.Context, paths ...string) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() { _ = fw.Close() }()

	for _, p := range paths {
		fi, err := os.Stat(p)
		switch {
		case err != nil:
			w.logger.Debug("Skipping missing watch path", logfields.Path(p))
		case fi.IsDir():
			w.addDirsRecursive(fw, p)
		default:
			w.add(fw, filepath.Dir(p))
		}
	}

	rebuildReq := make(chan struct{}, 1)
	trigger, stop := debouncer(w.debounce, rebuildReq)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.worker(ctx, rebuildReq)
	}()
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(fw, ev, trigger)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error", logfields.Error(err))
		}
	}
}

// worker runs rebuilds sequentially. The one-slot request channel collapses
// changes made during a rebuild into a single follow-up.
func (w *Watcher) worker(ctx context.Context, rebuildReq <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-rebuildReq:
			w.logger.Info("Change detected; rebuilding site")
			start := time.Now()
			if err := w.rebuild(ctx); err != nil {
				w.logger.Warn("Rebuild failed", logfields.Error(err))
				continue
			}
			w.logger.Info("Rebuild finished", logfields.DurationMS(float64(time.Since(start).Microseconds())/1000))
		}
	}
}

func debouncer(d time.Duration, rebuildReq chan<- struct{}) (trigger func(), stop func()) {
	var mu sync.Mutex
	var timer *time.Timer

	trigger = func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(d, func() {
			select {
			case rebuildReq <- struct{}{}:
			default:
			}
		})
	}
	stop = func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
	}
	return trigger, stop
}

func (w *Watcher) handleEvent(fw *fsnotify.Watcher, ev fsnotify.Event, trigger func()) {
	if w.ignored(ev.Name) || shouldIgnoreEvent(ev.Name) {
		return
	}
	if ev.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			w.addDirsRecursive(fw, ev.Name)
		}
	}
	w.logger.Debug("File change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	trigger()
}

func (w *Watcher) addDirsRecursive(fw *fsnotify.Watcher, root string) {
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if w.ignored(path) || (path != root && strings.HasPrefix(d.Name(), ".")) {
			return filepath.SkipDir
		}
		w.add(fw, path)
		return nil
	})
}

func (w *Watcher) add(fw *fsnotify.Watcher, dir string) {
	if w.ignored(dir) {
		return
	}
	if err := fw.Add(dir); err != nil {
		w.logger.Warn("Watch add failed", logfields.Path(dir), logfields.Error(err))
	}
}

func (w *Watcher) ignored(path string) bool {
	path = filepath.Clean(path)
	for _, dir := range w.ignore {
		if path == dir || strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// shouldIgnoreEvent reports editor temp files, hidden files and OS litter.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return true
	}
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		(strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#")) {
		return true
	}
	return base == "Thumbs.db"
}
