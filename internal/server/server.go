// Package server assembles the reference sync server: routes, middleware and
// graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iudanet/offsync/internal/metrics"
	"github.com/iudanet/offsync/internal/server/handlers"
	"github.com/iudanet/offsync/internal/server/jwt"
	"github.com/iudanet/offsync/internal/server/middleware"
	"github.com/iudanet/offsync/internal/server/service"
	"github.com/iudanet/offsync/internal/server/storage"
	"github.com/iudanet/offsync/pkg/api"
)

// Config of the server
type Config struct {
	Addr            string
	Version         string
	SigningKey      []byte
	RateLimit       int
	RateWindow      time.Duration
	WSIdleTimeout   time.Duration
	ShutdownTimeout time.Duration
}

// Server is the HTTP front of the sync service
type Server struct {
	handler http.Handler
	stop    func()
	logger  *slog.Logger
	cfg     Config
}

// New wires handlers and middleware. Metrics are registered in reg.
func New(cfg Config, store storage.DocumentStorage, tokens *jwt.Service, reg *prometheus.Registry, logger *slog.Logger) (*Server, error) {
	if err := metrics.Register(reg); err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	svc := service.NewSyncService(store, logger)
	syncHandler := handlers.NewSyncHandler(logger, svc, cfg.SigningKey)
	wsHandler := handlers.NewWSHandler(logger, syncHandler, cfg.WSIdleTimeout)
	healthHandler := handlers.NewHealthHandler(logger, store, cfg.Version)

	auth := middleware.AuthMiddleware(logger, tokens)
	stop := func() {}
	limit := func(next http.Handler) http.Handler { return next }
	if cfg.RateLimit > 0 {
		limit, stop = middleware.RateLimitMiddleware(cfg.RateLimit, cfg.RateWindow, logger)
	}
	compress := middleware.SnappyMiddleware(logger)

	protected := func(h http.Handler) http.Handler {
		return auth(limit(h))
	}

	mux := http.NewServeMux()
	mux.Handle("POST "+api.PathSync, protected(compress(http.HandlerFunc(syncHandler.HandleSync))))
	mux.Handle("POST "+api.PathOps, protected(compress(http.HandlerFunc(syncHandler.HandleOps))))
	mux.Handle("GET "+api.PathWS, protected(http.HandlerFunc(wsHandler.HandleWS)))
	mux.HandleFunc("GET "+api.PathHealth, healthHandler.Health)
	mux.Handle("GET "+api.PathMetrics, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	var h http.Handler = mux
	h = middleware.LoggingWithSkip(logger, []string{api.PathHealth, api.PathMetrics})(h)
	h = middleware.RecoveryMiddleware(logger)(h)

	return &Server{
		handler: h,
		stop:    stop,
		logger:  logger,
		cfg:     cfg,
	}, nil
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	defer s.stop()

	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.cfg.Addr, "version", s.cfg.Version)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("shutting down server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}
