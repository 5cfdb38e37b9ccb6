// Package server exposes a read-only HTTP view of the result store for
// downstream report tooling. It never mutates orchestration state.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/warrantylens/warrantylens/internal/config"
	"github.com/warrantylens/warrantylens/internal/core/store"
)

// Server wraps the HTTP listener and router.
type Server struct {
	httpServer *http.Server
	router     chi.Router
	store      *store.Store
	logger     *zap.Logger
	version    string
}

// New builds a configured server around a result store.
func New(cfg config.ServerConfig, st *store.Store, logger *zap.Logger, version string) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:  router,
		store:   st,
		logger:  logger,
		version: version,
	}
	s.registerRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s
}

// Handler returns the router, for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe blocks serving requests until Shutdown or failure.
func (s *Server) ListenAndServe() error {
	s.logger.Info("snapshot server listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) registerRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/version", s.handleVersion)
	s.router.Get("/api/results", s.handleResults)
	s.router.Get("/api/results/{serial}", s.handleResult)
}
