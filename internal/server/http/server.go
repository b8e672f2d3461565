// Package httpserver provides the HTTP REST API server for the annotation
// browser service.
package httpserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/soorena/annotation-browser/internal/browse"
	"github.com/soorena/annotation-browser/internal/config"
	"github.com/soorena/annotation-browser/internal/database"
	"github.com/soorena/annotation-browser/internal/export"
	"github.com/soorena/annotation-browser/internal/observability"
	"github.com/soorena/annotation-browser/internal/repository"
)

// Server is the HTTP REST API server.
type Server struct {
	router        chi.Router
	httpServer    *http.Server
	registry      *browse.Registry
	exporter      *export.Exporter
	repo          repository.AnnotationRepository
	db            *database.DB
	exportLimiter *rate.Limiter
	metrics       *observability.Metrics
	logger        zerolog.Logger
}

// Config holds HTTP server configuration.
type Config struct {
	Address         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// NewServer creates a new HTTP server with all dependencies. repo is the
// pool-backed repository used by the stateless record lookup; session-scoped
// queries go through the registry's dedicated connections.
func NewServer(
	cfg Config,
	registry *browse.Registry,
	exporter *export.Exporter,
	repo repository.AnnotationRepository,
	db *database.DB,
	exportCfg config.ExportConfig,
	metrics *observability.Metrics,
	logger zerolog.Logger,
) *Server {
	s := &Server{
		registry:      registry,
		exporter:      exporter,
		repo:          repo,
		db:            db,
		exportLimiter: rate.NewLimiter(rate.Limit(exportCfg.RatePerMinute/60), exportCfg.Burst),
		metrics:       metrics,
		logger:        logger.With().Str("component", "http-server").Logger(),
	}

	s.router = s.buildRouter()

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// buildRouter creates the chi router with all middleware and routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(correlationIDMiddleware)
	r.Use(jsonContentTypeMiddleware)

	// Health endpoints
	r.Get("/healthz", s.healthHandler)
	r.Get("/readyz", s.readinessHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/sessions", s.createSession)
		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Delete("/", s.closeSession)
			r.Put("/filters", s.replaceFilters)
			r.Get("/records", s.getRecords)
			r.Post("/page/next", s.pageNext)
			r.Post("/page/previous", s.pagePrevious)
			r.Post("/page/reset", s.pageReset)
			r.Put("/page/size", s.setPageSize)
			r.Get("/stats", s.getStats)
			r.Get("/export", s.exportRecords)
		})

		r.Get("/records/{ac}", s.getRecord)
	})

	return r
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info().Str("address", s.httpServer.Addr).Msg("HTTP server starting")
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on HTTP address: %w", err)
	}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// healthHandler returns basic liveness status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	health := s.db.Health(r.Context())
	if health.Status == "healthy" {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "database": health.Status})
		return
	}
	writeJSON(w, http.StatusServiceUnavailable, map[string]string{
		"status":   "unhealthy",
		"database": health.Status,
		"error":    health.Error,
	})
}

// readinessHandler returns readiness status. The service is not ready when
// the store is unreachable or the annotations relation is missing.
func (s *Server) readinessHandler(w http.ResponseWriter, r *http.Request) {
	health := s.db.Health(r.Context())
	if health.Status != "healthy" {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":   "not_ready",
			"database": health.Status,
			"error":    health.Error,
		})
		return
	}
	if err := s.db.VerifySchema(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":   "not_ready",
			"database": "healthy",
			"error":    err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ready",
		"database": "healthy",
	})
}
