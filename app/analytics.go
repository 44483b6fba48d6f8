package app

import (
	"context"

	"github.com/pulsekit/pulse/domain/analytics"
	"github.com/pulsekit/pulse/domain/window"
	"github.com/pulsekit/pulse/ports"
	"github.com/rs/zerolog"
)

// retentionWeeks is the cohort horizon shown on the dashboard.
const retentionWeeks = 8

// AnalyticsService composes window resolution, store aggregation, and the
// pure statistics in domain/analytics into dashboard-ready results.
type AnalyticsService struct {
	events ports.EventStore
	clock  ports.Clock
	logger zerolog.Logger
}

// NewAnalyticsService creates a new analytics service.
func NewAnalyticsService(events ports.EventStore, clock ports.Clock, logger zerolog.Logger) *AnalyticsService {
	return &AnalyticsService{
		events: events,
		clock:  clock,
		logger: logger,
	}
}

// ActiveUsers counts distinct identities in the period with a comparison
// against the preceding equal-length window.
func (s *AnalyticsService) ActiveUsers(ctx context.Context, projectID, period string) (analytics.ActiveUsers, error) {
	now := s.clock.Now()
	w := window.Resolve(period, now)

	current, err := s.events.ActiveUsers(ctx, projectID, w.Cutoff, now)
	if err != nil {
		return analytics.ActiveUsers{}, err
	}

	prevStart, prevEnd := w.Previous()
	previous, err := s.events.ActiveUsers(ctx, projectID, prevStart, prevEnd)
	if err != nil {
		return analytics.ActiveUsers{}, err
	}

	return analytics.CompareActiveUsers(current, previous), nil
}

// Frequency returns the bucketed event series for the period. An empty
// eventName covers all events.
func (s *AnalyticsService) Frequency(ctx context.Context, projectID, period, eventName string) ([]analytics.Bucket, error) {
	w := window.Resolve(period, s.clock.Now())
	buckets, err := s.events.Frequency(ctx, projectID, w.Granularity, w.Cutoff, eventName)
	if err != nil {
		return nil, err
	}
	if buckets == nil {
		buckets = []analytics.Bucket{}
	}
	return buckets, nil
}

// TopEvents returns the most frequent event names for a project.
func (s *AnalyticsService) TopEvents(ctx context.Context, projectID string, limit int) ([]analytics.EventCount, error) {
	counts, err := s.events.TopEvents(ctx, projectID, limit)
	if err != nil {
		return nil, err
	}
	if counts == nil {
		counts = []analytics.EventCount{}
	}
	return counts, nil
}

// Anomalies runs Z-score detection over the period's frequency series.
func (s *AnalyticsService) Anomalies(ctx context.Context, projectID, period string) (analytics.AnomalyReport, error) {
	buckets, err := s.Frequency(ctx, projectID, period, "")
	if err != nil {
		return analytics.AnomalyReport{}, err
	}
	return analytics.DetectAnomalies(buckets), nil
}

// Segments groups identities by their all-time activity level.
func (s *AnalyticsService) Segments(ctx context.Context, projectID string) (analytics.SegmentationReport, error) {
	totals, err := s.events.IdentityTotals(ctx, projectID)
	if err != nil {
		return analytics.SegmentationReport{}, err
	}
	return analytics.SegmentUsers(totals), nil
}

// Retention builds ISO-week cohort retention over the last retentionWeeks.
func (s *AnalyticsService) Retention(ctx context.Context, projectID string) ([]analytics.Cohort, error) {
	since := s.clock.Now().UTC().AddDate(0, 0, -retentionWeeks*7)
	activity, err := s.events.IdentityDays(ctx, projectID, since)
	if err != nil {
		return nil, err
	}
	return analytics.BuildRetention(activity, retentionWeeks), nil
}

// TotalEvents returns the all-time event count for a project.
func (s *AnalyticsService) TotalEvents(ctx context.Context, projectID string) (int64, error) {
	return s.events.CountByProject(ctx, projectID)
}
