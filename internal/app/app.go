package app

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/specialistvlad/appgraph/internal/ctxlog"
	"github.com/specialistvlad/appgraph/internal/draw"
	"github.com/specialistvlad/appgraph/internal/registry"
	"github.com/specialistvlad/appgraph/internal/workpool"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	supplier registry.Supplier
	exit     func(code int)
	signals  <-chan os.Signal
}

// Option customizes an App.
type Option func(*App)

// WithSupplier replaces the blueprint built from the core modules.
func WithSupplier(supplier registry.Supplier) Option {
	return func(a *App) { a.supplier = supplier }
}

// WithModules builds the blueprint from modules instead of the core modules.
func WithModules(modules ...registry.Module) Option {
	return WithSupplier(registry.Compose(modules...))
}

// WithExit replaces os.Exit.
func WithExit(exit func(code int)) Option {
	return func(a *App) { a.exit = exit }
}

// WithSignals replaces the SIGINT/SIGTERM subscription of the shutdown hook.
func WithSignals(signals <-chan os.Signal) Option {
	return func(a *App) { a.signals = signals }
}

// WithLogger replaces the logger built from the config.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) { a.logger = logger }
}

// NewApp is the constructor for the main application. It configures the
// process-wide executor from cfg; only the first App of a process does so.
func NewApp(outW io.Writer, cfg *Config, opts ...Option) *App {
	a := &App{
		outW:   outW,
		config: cfg,
		exit:   os.Exit,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	}
	if a.supplier == nil {
		a.supplier = registry.Compose(coreModules(cfg)...)
	}

	exec := workpool.Init(cfg.Mode(), cfg.MaxTasks)
	a.logger.Debug("App configured.", "config_path", cfg.ConfigPath, "virtual_execution", string(cfg.Mode()), "executor_available", exec.Available())
	return a
}

// Logger returns the application's logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Draw builds the blueprint without running anything.
func (a *App) Draw(ctx context.Context) (*draw.Draw, error) {
	return a.supplier(ctxlog.WithLogger(ctx, a.logger))
}
