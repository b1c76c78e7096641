// Package server assembles the weavekit demo application from its
// configuration and runs it.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/drblury/weavekit/config"
	"github.com/drblury/weavekit/endpoint"
	"github.com/drblury/weavekit/info"
	"github.com/drblury/weavekit/internal/items"
	"github.com/drblury/weavekit/openapi"
	"github.com/drblury/weavekit/responder"
	"github.com/drblury/weavekit/router"
)

// Server is an assembled application.
type Server struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *endpoint.Registry
	handler  http.Handler
}

// New registers the demo API, freezes its document and builds the HTTP
// handler described by cfg.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	resp := responder.NewResponder(responder.WithLogger(logger))
	builder := openapi.NewBuilder(append(cfg.BuilderOptions(), openapi.WithLogger(logger))...)
	registry := endpoint.NewRegistry(
		endpoint.WithBuilder(builder),
		endpoint.WithResponder(resp),
		endpoint.WithLogger(logger),
	)
	if err := items.Register(registry); err != nil {
		return nil, fmt.Errorf("register items: %w", err)
	}

	api := http.NewServeMux()
	if err := registry.Mount(api); err != nil {
		return nil, fmt.Errorf("mount routes: %w", err)
	}
	if err := builder.Freeze(); err != nil {
		return nil, fmt.Errorf("freeze document: %w", err)
	}

	infoHandler := info.NewInfoHandler(
		info.WithInfoResponder(resp),
		info.WithBaseURL(cfg.Server.BaseURL),
		info.WithDocument(builder),
		info.WithUIType(cfg.UI()),
	)

	opts := []router.Option{
		router.WithLogger(logger),
		router.WithResponder(resp),
		router.WithConfig(cfg.RouterConfig()),
		router.WithDocument(builder),
		router.WithInfoHandler(infoHandler),
	}
	if cfg.Server.Metrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		opts = append(opts, router.WithMetrics(reg))
	}

	store := items.NewStore()
	return &Server{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		handler:  router.New(store.Middleware(api), opts...),
	}, nil
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Registry returns the registry holding the declared routes.
func (s *Server) Registry() *endpoint.Registry {
	return s.registry
}

// Document returns the frozen document builder.
func (s *Server) Document() *openapi.Builder {
	return s.registry.Builder()
}

// Run serves until ctx is cancelled, then shuts down within the configured
// shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", srv.Addr, "docs", s.cfg.Server.BaseURL+info.DocsPath)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	s.logger.Info("server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
