package app

import (
	"context"

	"github.com/pulsekit/pulse/domain/insight"
	"github.com/pulsekit/pulse/domain/project"
	"github.com/pulsekit/pulse/ports"
	"github.com/rs/zerolog"
)

// digestTopEvents caps how many event names go into the LLM digest.
const digestTopEvents = 10

// InsightsService assembles a project digest and asks a provider to
// interpret it. When the primary provider fails, it falls back so the
// insights page always renders something.
type InsightsService struct {
	analytics *AnalyticsService
	primary   ports.InsightsProvider
	fallback  ports.InsightsProvider
	logger    zerolog.Logger
}

// NewInsightsService creates a new insights service. fallback may be nil,
// in which case primary errors propagate.
func NewInsightsService(analytics *AnalyticsService, primary, fallback ports.InsightsProvider, logger zerolog.Logger) *InsightsService {
	return &InsightsService{
		analytics: analytics,
		primary:   primary,
		fallback:  fallback,
		logger:    logger,
	}
}

// BuildDigest gathers the aggregated numbers a provider needs. Only derived
// statistics cross this boundary; raw events never leave the store.
func (s *InsightsService) BuildDigest(ctx context.Context, p project.Project, period string) (insight.Digest, error) {
	active, err := s.analytics.ActiveUsers(ctx, p.ID, period)
	if err != nil {
		return insight.Digest{}, err
	}
	top, err := s.analytics.TopEvents(ctx, p.ID, digestTopEvents)
	if err != nil {
		return insight.Digest{}, err
	}
	total, err := s.analytics.TotalEvents(ctx, p.ID)
	if err != nil {
		return insight.Digest{}, err
	}
	anomalies, err := s.analytics.Anomalies(ctx, p.ID, period)
	if err != nil {
		return insight.Digest{}, err
	}
	segments, err := s.analytics.Segments(ctx, p.ID)
	if err != nil {
		return insight.Digest{}, err
	}

	return insight.Digest{
		ProjectName: p.Name,
		Period:      period,
		ActiveUsers: active,
		TopEvents:   top,
		TotalEvents: total,
		Anomalies:   anomalies,
		Segments:    segments,
	}, nil
}

// Generate produces an insight report for a project and period.
func (s *InsightsService) Generate(ctx context.Context, p project.Project, period string) (insight.Report, error) {
	digest, err := s.BuildDigest(ctx, p, period)
	if err != nil {
		return insight.Report{}, err
	}

	report, err := s.primary.GenerateInsights(ctx, digest)
	if err == nil {
		return report, nil
	}

	if s.fallback == nil {
		return insight.Report{}, err
	}

	s.logger.Warn().Err(err).
		Str("provider", s.primary.Name()).
		Str("fallback", s.fallback.Name()).
		Msg("insights provider failed, using fallback")
	return s.fallback.GenerateInsights(ctx, digest)
}
