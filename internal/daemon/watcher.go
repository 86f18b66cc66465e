package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/navindex/internal/logfields"
)

// SiteWatcher watches a site directory and emits one signal per burst of
// script changes once the directory has been quiet for the debounce period.
type SiteWatcher struct {
	dir      string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	changes  chan struct{}
	out      chan struct{}
	logger   *slog.Logger
}

// NewSiteWatcher creates a watcher for dir. Signals are delivered on out,
// which should be buffered; a signal is dropped when one is already pending.
func NewSiteWatcher(dir string, debounce time.Duration, out chan struct{}, logger *slog.Logger) (*SiteWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("failed to resolve site path: %w", err)
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &SiteWatcher{
		dir:      abs,
		debounce: debounce,
		watcher:  w,
		changes:  make(chan struct{}, 1),
		out:      out,
		logger:   logger,
	}, nil
}

// Start begins watching. The goroutines exit when ctx is done or Close is called.
func (sw *SiteWatcher) Start(ctx context.Context) error {
	if err := sw.watcher.Add(sw.dir); err != nil {
		return fmt.Errorf("failed to watch site directory %s: %w", sw.dir, err)
	}
	sw.logger.Info("Watching site directory", logfields.Site(sw.dir), slog.Duration("debounce", sw.debounce))
	go sw.watchLoop(ctx)
	go sw.debounceLoop(ctx)
	return nil
}

// Close stops the underlying fsnotify watcher.
func (sw *SiteWatcher) Close() error {
	return sw.watcher.Close()
}

// relevant reports whether an event can change navigation data.
func relevant(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	name := filepath.Base(ev.Name)
	if strings.HasSuffix(name, ".tmp") {
		return false
	}
	return strings.HasSuffix(name, ".js")
}

func (sw *SiteWatcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if !relevant(ev) {
				continue
			}
			sw.logger.Debug("Site change detected", logfields.Script(filepath.Base(ev.Name)), slog.String("op", ev.Op.String()))
			select {
			case sw.changes <- struct{}{}:
			default:
			}
		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			sw.logger.Error("Site watcher error", logfields.Error(err))
		}
	}
}

// debounceLoop relies on Reset discarding a pending tick, which holds for
// modules declaring go 1.23 or later.
func (sw *SiteWatcher) debounceLoop(ctx context.Context) {
	timer := time.NewTimer(sw.debounce)
	timer.Stop()
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-sw.changes:
			timer.Reset(sw.debounce)
		case <-timer.C:
			select {
			case sw.out <- struct{}{}:
			default:
			}
		}
	}
}
