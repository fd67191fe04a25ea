// Package api exposes the query engine adapter over HTTP for the dashboard
// backend. It is a thin JSON facade: request bodies map one-to-one onto
// adapter operations and adapter errors map onto status codes.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/leapgrid/pkg/adapter"
)

// Server is the HTTP facade over one adapter.
type Server struct {
	adapter *adapter.Adapter
	addr    string
	logger  *slog.Logger
}

// Config holds configuration for the API server.
type Config struct {
	Adapter *adapter.Adapter
	Addr    string
	Logger  *slog.Logger
}

// NewServer creates a new API server instance.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		adapter: cfg.Adapter,
		addr:    cfg.Addr,
		logger:  logger,
	}
}

// Handler builds the route tree. Exposed for httptest.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	r.Get("/api/healthz", s.handleHealthz)
	r.Route("/api/databases/{databaseID}", func(r chi.Router) {
		r.Post("/materialize", s.handleMaterialize)
		r.Post("/query", s.handleQuery)
		r.Post("/update", s.handleUpdate)
		r.Post("/delete", s.handleDelete)
		r.Get("/tables", s.handleTables)
		r.Delete("/", s.handleEvict)
	})

	return r
}

// Serve starts the API server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("starting api server", "addr", s.addr)

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down api server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
