// internal/api/server.go
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/newthinker/scribe/internal/api/handler"
	"github.com/newthinker/scribe/internal/api/middleware"
	"github.com/newthinker/scribe/internal/metrics"
	"go.uber.org/zap"
)

// Server represents the HTTP server for scribe
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	mux        *http.ServeMux
}

// Config holds server configuration
type Config struct {
	Host   string
	Port   int
	APIKey string
}

// NewServer creates a new HTTP server exposing the session engine.
func NewServer(cfg Config, engine handler.Engine, usage handler.UsageSource, reg *metrics.Registry, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	mux := http.NewServeMux()

	var root http.Handler = mux
	if reg != nil {
		root = metrics.HTTPMiddleware(reg)(root)
	}

	s := &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      root,
			ReadTimeout:  15 * time.Second,
			// Finalize fans out several LLM calls; allow slow writes.
			WriteTimeout: 5 * time.Minute,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
		mux:    mux,
	}

	s.setupRoutes(cfg, engine, usage, reg)
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(cfg Config, engine handler.Engine, usage handler.UsageSource, reg *metrics.Registry) {
	auth := middleware.APIKeyAuth(cfg.APIKey)

	sessions := handler.NewSessionHandler(engine)
	s.mux.Handle("POST /api/sessions", auth(http.HandlerFunc(sessions.Start)))
	s.mux.Handle("GET /api/sessions", auth(http.HandlerFunc(sessions.List)))
	s.mux.Handle("GET /api/sessions/{id}", auth(http.HandlerFunc(sessions.Get)))
	s.mux.Handle("POST /api/sessions/{id}/answers", auth(http.HandlerFunc(sessions.Answer)))
	s.mux.Handle("POST /api/sessions/{id}/finalize", auth(http.HandlerFunc(sessions.Finalize)))
	s.mux.Handle("POST /api/sessions/{id}/abandon", auth(http.HandlerFunc(sessions.Abandon)))

	if usage != nil {
		stats := handler.NewStatsHandler(usage)
		s.mux.Handle("GET /api/providers/stats", auth(http.HandlerFunc(stats.Providers)))
	}

	s.mux.HandleFunc("GET /api/health", s.handleHealth)

	if reg != nil {
		s.mux.Handle("GET /metrics", reg.Handler())
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the root handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
