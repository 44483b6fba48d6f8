package insights

import (
	"context"
	"fmt"

	"github.com/pulsekit/pulse/domain/analytics"
	"github.com/pulsekit/pulse/domain/insight"
	"github.com/pulsekit/pulse/ports"
)

// Mock produces deterministic insights straight from the digest numbers.
// It backs the dashboard when no LLM API key is configured, and never
// fails, so insight pages always render.
type Mock struct{}

// NewMock creates a mock insights provider.
func NewMock() *Mock { return &Mock{} }

// Name identifies this provider in logs and metrics.
func (m *Mock) Name() string { return "mock" }

// GenerateInsights derives canned findings from the digest.
func (m *Mock) GenerateInsights(_ context.Context, digest insight.Digest) (insight.Report, error) {
	report := insight.Report{
		Insights:        []insight.Insight{},
		Recommendations: []insight.Recommendation{},
		Source:          m.Name(),
	}

	au := digest.ActiveUsers
	switch {
	case au.ChangePercent > 10:
		report.Insights = append(report.Insights, insight.Insight{
			Title:       "Active users growing",
			Description: fmt.Sprintf("%d active users this %s, up %.1f%% from the previous period.", au.Count, digest.Period, au.ChangePercent),
			Severity:    "info",
		})
	case au.ChangePercent < -10:
		report.Insights = append(report.Insights, insight.Insight{
			Title:       "Active users declining",
			Description: fmt.Sprintf("%d active users this %s, down %.1f%% from the previous period.", au.Count, digest.Period, -au.ChangePercent),
			Severity:    "warning",
		})
		report.Recommendations = append(report.Recommendations, insight.Recommendation{
			Title:       "Investigate the drop in activity",
			Description: "Compare recent releases and campaigns against the decline window to find the cause.",
			Impact:      "high",
		})
	default:
		report.Insights = append(report.Insights, insight.Insight{
			Title:       "Active users stable",
			Description: fmt.Sprintf("%d active users this %s, roughly flat against the previous period.", au.Count, digest.Period),
			Severity:    "info",
		})
	}

	if len(digest.TopEvents) > 0 {
		top := digest.TopEvents[0]
		report.Insights = append(report.Insights, insight.Insight{
			Title:       "Most frequent event",
			Description: fmt.Sprintf("%q leads with %d occurrences out of %d total events.", top.Name, top.Count, digest.TotalEvents),
			Severity:    "info",
		})
	}

	if digest.Anomalies.Status == analytics.StatusOK && len(digest.Anomalies.Anomalies) > 0 {
		a := digest.Anomalies.Anomalies[0]
		severity := "warning"
		if a.Severity == analytics.SeverityHigh {
			severity = "critical"
		}
		report.Insights = append(report.Insights, insight.Insight{
			Title:       "Unusual activity detected",
			Description: fmt.Sprintf("Bucket %s recorded %d events, %.2f standard deviations from the mean.", a.Bucket, a.Count, a.ZScore),
			Severity:    severity,
		})
		report.Recommendations = append(report.Recommendations, insight.Recommendation{
			Title:       "Review the anomalous window",
			Description: fmt.Sprintf("Check deploys, traffic sources, and instrumentation changes around %s.", a.Bucket),
			Impact:      "medium",
		})
	}

	if pct, ok := digest.Segments.Percentages[analytics.SegmentPower]; ok && pct < 10 && digest.Segments.Total > 0 {
		report.Recommendations = append(report.Recommendations, insight.Recommendation{
			Title:       "Grow the power user base",
			Description: fmt.Sprintf("Only %.1f%% of users are power users. Consider onboarding flows that drive repeat engagement.", pct),
			Impact:      "medium",
		})
	}

	return report, nil
}

// Ensure interface compliance.
var _ ports.InsightsProvider = (*Mock)(nil)
