package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/specialistvlad/appgraph/internal/ctxlog"
	"github.com/specialistvlad/appgraph/internal/graph"
)

// Running is a live graph whose shutdown hook is installed.
type Running struct {
	graph.RefreshableGraph
	done chan struct{}
	err  error
}

// Done is closed once the shutdown hook released the graph.
func (r *Running) Done() <-chan struct{} {
	return r.done
}

// Err returns the release error. It is only meaningful after Done is closed.
func (r *Running) Err() error {
	return r.err
}

// Run builds the blueprint, initializes the graph and installs the shutdown
// hook, which releases the graph on SIGINT, SIGTERM or cancellation of ctx.
// If the blueprint or the initialization fails, or the release does, the
// process exits with status 1.
func (a *App) Run(ctx context.Context) (*Running, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	logger := a.logger
	logger.Debug("App.Run method started.")
	start := time.Now()

	d, err := a.supplier(ctx)
	if err != nil {
		logger.Error("Failed to build graph blueprint.", "error", err)
		a.exit(1)
		return nil, fmt.Errorf("failed to build graph blueprint: %w", err)
	}
	logger.Debug("Graph blueprint built.", "node_count", d.Len(), "live_count", d.LiveCount())

	g := graph.New(d)
	if err := g.Init(ctx); err != nil {
		logger.Error("Failed to initialize graph.", "error", err)
		a.exit(1)
		return nil, fmt.Errorf("failed to initialize graph: %w", err)
	}
	logger.Info("🚀 Graph initialized.", "graph_id", g.ID(), "nodes", d.LiveCount(), "elapsed", time.Since(start))

	signals, stop := a.subscribe()
	r := &Running{RefreshableGraph: g, done: make(chan struct{})}
	go a.shutdownHook(ctx, r, signals, stop)
	return r, nil
}

func (a *App) subscribe() (<-chan os.Signal, func()) {
	if a.signals != nil {
		return a.signals, func() {}
	}
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	return ch, func() { signal.Stop(ch) }
}

func (a *App) shutdownHook(ctx context.Context, r *Running, signals <-chan os.Signal, stop func()) {
	defer close(r.done)
	defer stop()
	logger := a.logger

	select {
	case sig := <-signals:
		logger.Info("Shutdown signal received.", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled, shutting down.")
	}

	if err := r.Release(context.WithoutCancel(ctx)); err != nil {
		r.err = err
		logger.Error("Failed to release graph.", "error", err)
		a.exit(1)
		return
	}
	logger.Info("🏁 Graph released.")
}
