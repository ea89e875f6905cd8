package health

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/specialistvlad/appgraph/internal/ctxlog"
	"github.com/specialistvlad/appgraph/internal/inject"
	"github.com/specialistvlad/appgraph/internal/workpool"
)

// ShutdownTimeout bounds a graceful server shutdown.
const ShutdownTimeout = 5 * time.Second

// Server exposes /health and /metrics. It dispatches /health to whatever
// Handler is current, so it survives refreshes of the Handler.
type Server struct {
	handler  *inject.ValueOf[*Handler]
	server   *http.Server
	listener net.Listener
	logger   *slog.Logger
	done     chan struct{}
	swaps    atomic.Int64

	closeOnce sync.Once
	closeErr  error
}

// NewServer binds addr and starts serving in the background.
func NewServer(ctx context.Context, addr string, handler *inject.ValueOf[*Handler]) (*Server, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Configuring health check server.", "addr", addr)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s := &Server{
		handler:  handler,
		listener: listener,
		logger:   logger,
		done:     make(chan struct{}),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.serveHealth)
	mux.Handle("/metrics", promhttp.Handler())
	s.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctxlog.WithLogger(context.Background(), logger) },
	}

	if err := workpool.Spawn(context.WithoutCancel(ctx), s.serve); err != nil {
		listener.Close()
		return nil, fmt.Errorf("failed to start health check server: %w", err)
	}
	logger.Info("🩺 Health check server starting", "address", fmt.Sprintf("http://%s/health", s.Addr()))
	return s, nil
}

func (s *Server) serve(context.Context) {
	defer close(s.done)
	if err := s.server.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("Health check server failed unexpectedly", "error", err)
	}
}

// Addr returns the bound address.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

func (s *Server) serveHealth(w http.ResponseWriter, r *http.Request) {
	h, err := s.handler.Get()
	if err != nil {
		s.logger.Warn("Health handler unavailable.", "error", err)
		http.Error(w, "health handler unavailable", http.StatusServiceUnavailable)
		return
	}
	h.ServeHTTP(w, r)
}

// GraphRefreshed drops the cached handler once a refresh replaced it.
func (s *Server) GraphRefreshed(ctx context.Context) error {
	s.handler.Refresh()
	swaps := s.swaps.Add(1)
	ctxlog.FromContext(ctx).Info("Health handler swapped.", "swaps", swaps)
	return nil
}

// Swaps returns how many handler replacements the server observed.
func (s *Server) Swaps() int64 {
	return s.swaps.Load()
}

// Close shuts the server down gracefully. It is idempotent.
func (s *Server) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownTimeout)
		defer cancel()

		s.logger.Info("🩺 Shutting down health check server...")
		if err := s.server.Shutdown(ctx); err != nil {
			s.logger.Error("Health check server shutdown failed", "error", err)
			s.closeErr = err
			return
		}
		<-s.done
		s.logger.Debug("Health check server shut down gracefully.")
	})
	return s.closeErr
}
