package httpserver

import (
	"context"
	"errors"
	"testing"

	"github.com/pscheid92/postpulse/internal/app"
	"github.com/pscheid92/postpulse/internal/domain"
	"github.com/pscheid92/postpulse/internal/platform/config"
)

type mockAppService struct {
	recommendFn func(ctx context.Context, req app.RecommendRequest) (*app.RecommendResult, error)
	evaluateFn  func(ctx context.Context, observations []domain.Observation, req app.RecommendRequest) (*app.RecommendResult, error)
	ingestFn    func(ctx context.Context, accountID string, items []app.IngestObservation) (*app.IngestResult, error)
}

func (m *mockAppService) Recommend(ctx context.Context, req app.RecommendRequest) (*app.RecommendResult, error) {
	if m.recommendFn != nil {
		return m.recommendFn(ctx, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAppService) Evaluate(ctx context.Context, observations []domain.Observation, req app.RecommendRequest) (*app.RecommendResult, error) {
	if m.evaluateFn != nil {
		return m.evaluateFn(ctx, observations, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAppService) IngestObservations(ctx context.Context, accountID string, items []app.IngestObservation) (*app.IngestResult, error) {
	if m.ingestFn != nil {
		return m.ingestFn(ctx, accountID, items)
	}
	return nil, errors.New("not implemented")
}

func newTestServer(t *testing.T, svc appService, opts ...func(*Server)) *Server {
	t.Helper()

	cfg := &config.Config{
		AppEnv:       "test",
		Port:         "0",
		APIRateLimit: 1000,
		APIRateBurst: 1000,
	}

	srv := NewServer(cfg, svc, nil, nil, nil)
	for _, opt := range opts {
		opt(srv)
	}
	return srv
}

func withHealthChecks(checks ...HealthCheck) func(*Server) {
	return func(s *Server) {
		s.healthChecks = checks
	}
}
