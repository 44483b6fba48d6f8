// Package insight provides value types for LLM-generated analytics
// summaries. Generation itself lives behind ports.InsightsProvider.
package insight

import "github.com/pulsekit/pulse/domain/analytics"

// Digest is the aggregated view of a project handed to an insights
// provider. It carries only derived numbers, never raw events.
type Digest struct {
	ProjectName string                       `json:"project_name"`
	Period      string                       `json:"period"`
	ActiveUsers analytics.ActiveUsers        `json:"active_users"`
	TopEvents   []analytics.EventCount       `json:"top_events"`
	TotalEvents int64                        `json:"total_events"`
	Anomalies   analytics.AnomalyReport      `json:"anomalies"`
	Segments    analytics.SegmentationReport `json:"segments"`
}

// Insight is a single generated observation about user behavior.
type Insight struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Severity    string `json:"severity"` // "info", "warning", "critical"
}

// Recommendation is a single generated suggestion for improving the product.
type Recommendation struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Impact      string `json:"impact"` // "low", "medium", "high"
}

// Report is the full provider response. Source records which provider
// produced it ("deepseek" or "mock") so the UI can flag canned results.
type Report struct {
	Insights        []Insight        `json:"insights"`
	Recommendations []Recommendation `json:"recommendations"`
	Source          string           `json:"source"`
}
