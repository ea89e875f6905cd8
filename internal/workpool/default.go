package workpool

import (
	"context"
	"log/slog"
	"sync"

	"github.com/specialistvlad/appgraph/internal/ctxlog"
)

var (
	initOnce    sync.Once
	mu          sync.RWMutex
	defaultExec Executor
	defaultMode Mode
)

// Init creates the process-wide executor. Only the first call has an effect;
// later calls return the executor created by the first one.
func Init(mode Mode, limit int) Executor {
	initOnce.Do(func() {
		var exec Executor = Disabled{}
		if mode.Enabled() {
			exec = NewPool(limit)
		}
		mu.Lock()
		defaultExec = exec
		defaultMode = mode
		mu.Unlock()
		slog.Debug("Lightweight executor initialized.", "mode", string(mode), "available", exec.Available())
	})
	return Default()
}

// Default returns the process-wide executor, initializing it from the
// environment if Init was never called.
func Default() Executor {
	mu.RLock()
	exec := defaultExec
	mu.RUnlock()
	if exec != nil {
		return exec
	}

	mode, err := ModeFromEnv()
	if err != nil {
		slog.Warn("Ignoring invalid executor mode, using auto.", "error", err)
	}
	return Init(mode, DefaultLimit)
}

// CurrentMode returns the mode the executor was initialized with.
func CurrentMode() Mode {
	mu.RLock()
	defer mu.RUnlock()
	return defaultMode
}

// SetDefault replaces the process-wide executor and returns a function that
// restores the previous one. It is meant for tests.
func SetDefault(exec Executor) (restore func()) {
	Default()
	mu.Lock()
	previous := defaultExec
	defaultExec = exec
	mu.Unlock()
	return func() {
		mu.Lock()
		defaultExec = previous
		mu.Unlock()
	}
}

// Spawn runs a long-lived task on the process-wide executor. When the
// executor is disabled the task gets a dedicated goroutine instead.
func Spawn(ctx context.Context, task Task) error {
	exec := Default()
	if !exec.Available() {
		ctxlog.FromContext(ctx).Debug("Executor unavailable, spawning dedicated goroutine.")
		go task(ctx)
		return nil
	}
	return exec.Go(ctx, task)
}
