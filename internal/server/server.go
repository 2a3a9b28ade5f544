// Package server exposes the cleaning pipeline over HTTP: a multipart
// CSV upload endpoint that returns the cleaned data, step log, summary,
// generated script, and narrative report in one response.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/inferloop/csvclean/internal/cleaning"
	"github.com/inferloop/csvclean/internal/config"
	"github.com/inferloop/csvclean/internal/observability/metrics"
	"github.com/inferloop/csvclean/internal/report"
	"github.com/inferloop/csvclean/pkg/constants"
)

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *mux.Router
	logger     *logrus.Logger
	config     *config.Config
	pipeline   *cleaning.Pipeline
	generator  *report.Generator
	metrics    *metrics.PrometheusMetrics
	startTime  time.Time
}

// NewServer creates a new HTTP server instance
func NewServer(cfg *config.Config, logger *logrus.Logger) (*Server, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = logrus.New()
	}

	pm, err := metrics.NewPrometheusMetrics(&metrics.PrometheusConfig{
		Enabled: cfg.Metrics.Enabled,
		Port:    cfg.Metrics.Port,
		Path:    cfg.Metrics.Path,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	server := &Server{
		router:    mux.NewRouter(),
		logger:    logger,
		config:    cfg,
		pipeline:  cleaning.NewPipeline(cfg.PipelineConfig(), logger),
		generator: report.NewGenerator(&cfg.Report, logger),
		metrics:   pm,
		startTime: time.Now(),
	}

	server.setupMiddleware()
	server.setupRoutes()

	server.httpServer = &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      server.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return server, nil
}

// Start starts the HTTP server and, if enabled, the metrics server.
func (s *Server) Start(ctx context.Context) error {
	if err := s.metrics.Start(ctx); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"addr": s.httpServer.Addr,
	}).Info("Starting HTTP server")

	return s.httpServer.ListenAndServe()
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, constants.DefaultShutdownTimeout)
	defer cancel()

	if err := s.metrics.Stop(shutdownCtx); err != nil {
		s.logger.WithError(err).Error("Error shutting down metrics server")
	}

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.WithError(err).Error("Error shutting down HTTP server")
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// setupRoutes sets up the HTTP routes
func (s *Server) setupRoutes() {
	apiRouter := s.router.PathPrefix(constants.APIPrefix).Subrouter()
	apiRouter.HandleFunc("/clean", s.handleClean).Methods("POST")

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/health/live", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/health/ready", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/version", s.handleVersion).Methods("GET")
	s.router.HandleFunc("/", s.handleIndex).Methods("GET")

	s.router.NotFoundHandler = http.HandlerFunc(s.handleNotFound)
}

// setupMiddleware sets up HTTP middleware
func (s *Server) setupMiddleware() {
	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.recoveryMiddleware)
	s.router.Use(s.requestIDMiddleware)

	if s.config.Server.EnableCORS {
		s.router.Use(s.corsMiddleware)
	}

	s.router.Use(s.requestSizeLimitMiddleware)
}

// GetRouter returns the HTTP router
func (s *Server) GetRouter() *mux.Router {
	return s.router
}
