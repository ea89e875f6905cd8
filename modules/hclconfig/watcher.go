package hclconfig

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/specialistvlad/appgraph/internal/ctxlog"
	"github.com/specialistvlad/appgraph/internal/inject"
	"github.com/specialistvlad/appgraph/internal/node"
	"github.com/specialistvlad/appgraph/internal/workpool"
)

// Watcher refreshes the Config node whenever its file is written, created
// or renamed over. It watches the parent directory so that editors which
// replace the file on save are seen too.
type Watcher struct {
	path     string
	debounce time.Duration
	config   *inject.ValueOf[*Config]
	refresh  node.Refresher
	watcher  *fsnotify.Watcher
	logger   *slog.Logger

	mu       sync.Mutex
	timer    *time.Timer
	reloads  int
	cancel   context.CancelFunc
	done     chan struct{}
	closeErr error
	closed   bool
}

// NewWatcher starts watching path. Refreshes are requested from refresher
// for the node config is bound to.
func NewWatcher(ctx context.Context, path string, debounce time.Duration, config *inject.ValueOf[*Config], refresher node.Refresher) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path %s: %w", path, err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	// Refreshes are graph operations of their own and scope their logs.
	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctxlog.Unscoped(ctx)))
	w := &Watcher{
		path:     abs,
		debounce: debounce,
		config:   config,
		refresh:  refresher,
		watcher:  fsw,
		logger:   ctxlog.FromContext(ctx),
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	if err := workpool.Spawn(loopCtx, w.loop); err != nil {
		cancel()
		fsw.Close()
		return nil, fmt.Errorf("failed to start config watcher: %w", err)
	}
	w.logger.Info("Watching config file.", "path", abs, "debounce", debounce)
	return w, nil
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)
	logger := w.logger
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ctx, event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Config watcher error.", "error", err)

		case <-ctx.Done():
			logger.Debug("Config watcher stopping.")
			return
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() { w.reload(ctx) })
}

// reload runs on the debounce timer, never inside a graph operation.
func (w *Watcher) reload(ctx context.Context) {
	logger := w.logger
	if ctx.Err() != nil {
		return
	}
	logger.Info("Config file changed, refreshing.", "path", w.path)
	if err := w.refresh.Refresh(ctx, w.config.ID()); err != nil {
		logger.Error("Config refresh failed, keeping previous config.", "path", w.path, "error", err)
	}
}

// GraphRefreshed is called once the Config node was replaced.
func (w *Watcher) GraphRefreshed(ctx context.Context) error {
	cfg, err := w.config.Get()
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.reloads++
	reloads := w.reloads
	w.mu.Unlock()
	ctxlog.FromContext(ctx).Info("Config reloaded.", "source", cfg.Source, "reloads", reloads)
	return nil
}

// Reloads returns how many times the config was replaced while watched.
func (w *Watcher) Reloads() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reloads
}

// Close stops the watcher and waits for its loop to exit. It is idempotent.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return w.closeErr
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	w.cancel()
	err := w.watcher.Close()
	<-w.done

	w.mu.Lock()
	w.closeErr = err
	w.mu.Unlock()
	return err
}
