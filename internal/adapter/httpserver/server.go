// Package httpserver exposes the recommendation service over a JSON HTTP API built on echo.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pscheid92/postpulse/internal/adapter/metrics"
	"github.com/pscheid92/postpulse/internal/app"
	"github.com/pscheid92/postpulse/internal/domain"
	"github.com/pscheid92/postpulse/internal/platform/config"
)

type appService interface {
	Recommend(ctx context.Context, req app.RecommendRequest) (*app.RecommendResult, error)
	Evaluate(ctx context.Context, observations []domain.Observation, req app.RecommendRequest) (*app.RecommendResult, error)
	IngestObservations(ctx context.Context, accountID string, items []app.IngestObservation) (*app.IngestResult, error)
}

type Server struct {
	echo      *echo.Echo
	config    *config.Config
	validator *requestValidator

	app            appService
	metrics        *metrics.HTTPMetrics
	metricsHandler http.Handler
	healthChecks   []HealthCheck
	startTime      time.Time
}

// NewServer wires routes and middleware. m and metricsHandler may be nil to run without metrics.
func NewServer(cfg *config.Config, app appService, m *metrics.HTTPMetrics, metricsHandler http.Handler, healthChecks []HealthCheck) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	v := newRequestValidator()
	e.Validator = v

	srv := &Server{
		echo:           e,
		config:         cfg,
		validator:      v,
		app:            app,
		metrics:        m,
		metricsHandler: metricsHandler,
		healthChecks:   healthChecks,
		startTime:      time.Now(),
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	if err := s.echo.Start(":" + s.config.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

// ServeHTTP lets tests drive the full middleware chain.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}
