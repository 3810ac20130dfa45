// Package server exposes story generation, scoring and export over a JSON HTTP API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"storysmith/internal/config"
	"storysmith/internal/logger"
	"storysmith/internal/observability"
	"storysmith/internal/quality"
	"storysmith/internal/store"
	"storysmith/internal/story"
)

// Deps are the collaborators the HTTP handlers drive.
type Deps struct {
	Assembler *story.Assembler
	Reviewer  *story.Reviewer              // optional; enables ?mode=ai on the score endpoint
	Evaluator *quality.Evaluator           // optional; defaults to quality.NewEvaluator()
	Gatherer  prometheus.Gatherer          // optional; defaults to prometheus.DefaultGatherer
	Analytics *observability.PostHogClient // optional
}

// Server represents the HTTP server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	config     config.Server
	log        *zerolog.Logger

	assembler *story.Assembler
	repo      store.Repository
	reviewer  *story.Reviewer
	evaluator *quality.Evaluator
	gatherer  prometheus.Gatherer
	analytics *observability.PostHogClient
}

// New creates a new HTTP server instance
func New(cfg config.Server, deps Deps) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		config:    cfg,
		log:       logger.Get(),
		assembler: deps.Assembler,
		repo:      deps.Assembler.Repository(),
		reviewer:  deps.Reviewer,
		evaluator: deps.Evaluator,
		gatherer:  deps.Gatherer,
		analytics: deps.Analytics,
	}
	if s.evaluator == nil {
		s.evaluator = quality.NewEvaluator()
	}
	if s.gatherer == nil {
		s.gatherer = prometheus.DefaultGatherer
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.router,
		ReadTimeout:  parseDuration(cfg.ReadTimeout, 15*time.Second),
		WriteTimeout: parseDuration(cfg.WriteTimeout, 120*time.Second),
	}
	return s
}

// setupMiddleware configures middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(securityHeaders)

	if len(s.config.CORSOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.config.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"Content-Disposition"},
			AllowCredentials: false,
			MaxAge:           300, // Maximum value not ignored by any major browsers
		}))
	}
}

// setupRoutes configures routes for the server
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	s.router.Route("/api/stories", func(r chi.Router) {
		r.Get("/", s.handleListStories)
		r.Post("/", s.handleCreateStory)
		r.Post("/validate", s.handleValidateStory)
		r.Get("/{id}", s.handleGetStory)
		r.Delete("/{id}", s.handleDeleteStory)
		r.Get("/{id}/score", s.handleScoreStory)
		r.Post("/{id}/regenerate", s.handleRegenerateSection)
		r.Get("/{id}/export", s.handleExportStory)
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().
		Str("addr", s.httpServer.Addr).
		Dur("read_timeout", s.httpServer.ReadTimeout).
		Dur("write_timeout", s.httpServer.WriteTimeout).
		Msg("Starting HTTP server")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed to start: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server gracefully...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.log.Info().Msg("HTTP server stopped")
	return nil
}

// Router returns the chi router instance (useful for testing)
func (s *Server) Router() *chi.Mux {
	return s.router
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return fallback
}
