package analytics_test

import (
	"testing"

	"github.com/pulsekit/pulse/domain/analytics"
)

func TestDetectAnomalies_InsufficientData(t *testing.T) {
	report := analytics.DetectAnomalies([]analytics.Bucket{
		{Label: "2025-06-01", Count: 5},
		{Label: "2025-06-02", Count: 7},
	})

	if report.Status != analytics.StatusInsufficientData {
		t.Errorf("Status = %q, want %q", report.Status, analytics.StatusInsufficientData)
	}
	if report.Confidence != 0 {
		t.Errorf("Confidence = %v, want 0", report.Confidence)
	}
	if len(report.Anomalies) != 0 {
		t.Errorf("Anomalies = %v, want empty", report.Anomalies)
	}
}

func TestDetectAnomalies_NoVariance(t *testing.T) {
	series := make([]analytics.Bucket, 10)
	for i := range series {
		series[i] = analytics.Bucket{Label: "b", Count: 42}
	}

	report := analytics.DetectAnomalies(series)
	if report.Status != analytics.StatusNoVariance {
		t.Errorf("Status = %q, want %q", report.Status, analytics.StatusNoVariance)
	}
	if report.Confidence != 0 {
		t.Errorf("Confidence = %v, want 0", report.Confidence)
	}
}

func TestDetectAnomalies_MediumSpike(t *testing.T) {
	// Ten zero buckets plus one spike: the spike's Z-score against the
	// population stddev works out to sqrt(10) ~ 3.16.
	series := make([]analytics.Bucket, 0, 11)
	for i := 0; i < 10; i++ {
		series = append(series, analytics.Bucket{Label: "quiet", Count: 0})
	}
	series = append(series, analytics.Bucket{Label: "spike", Count: 50})

	report := analytics.DetectAnomalies(series)
	if report.Status != analytics.StatusOK {
		t.Fatalf("Status = %q, want ok", report.Status)
	}
	if !report.HasAnomalies {
		t.Error("HasAnomalies = false, want true")
	}
	if len(report.Anomalies) != 1 {
		t.Fatalf("len(Anomalies) = %d, want 1", len(report.Anomalies))
	}

	a := report.Anomalies[0]
	if a.Bucket != "spike" {
		t.Errorf("Bucket = %q, want spike", a.Bucket)
	}
	if a.ZScore != 3.16 {
		t.Errorf("ZScore = %v, want 3.16", a.ZScore)
	}
	if a.Severity != analytics.SeverityMedium {
		t.Errorf("Severity = %q, want medium", a.Severity)
	}
	if report.Confidence != 0.95 {
		t.Errorf("Confidence = %v, want 0.95", report.Confidence)
	}
}

func TestDetectAnomalies_HighSpike(t *testing.T) {
	// Seventeen zero buckets plus one spike: Z-score sqrt(17) ~ 4.12.
	series := make([]analytics.Bucket, 0, 18)
	for i := 0; i < 17; i++ {
		series = append(series, analytics.Bucket{Label: "quiet", Count: 0})
	}
	series = append(series, analytics.Bucket{Label: "spike", Count: 100})

	report := analytics.DetectAnomalies(series)
	if len(report.Anomalies) != 1 {
		t.Fatalf("len(Anomalies) = %d, want 1", len(report.Anomalies))
	}
	if report.Anomalies[0].Severity != analytics.SeverityHigh {
		t.Errorf("Severity = %q, want high", report.Anomalies[0].Severity)
	}
	if report.Anomalies[0].ZScore != 4.12 {
		t.Errorf("ZScore = %v, want 4.12", report.Anomalies[0].ZScore)
	}
}

func TestDetectAnomalies_ConfidenceGrowth(t *testing.T) {
	// Below the cap: 4 buckets gives 0.5 + 0.05*4 = 0.7.
	series := []analytics.Bucket{
		{Label: "a", Count: 1},
		{Label: "b", Count: 2},
		{Label: "c", Count: 3},
		{Label: "d", Count: 2},
	}

	report := analytics.DetectAnomalies(series)
	if report.Confidence != 0.7 {
		t.Errorf("Confidence = %v, want 0.7", report.Confidence)
	}
	if len(report.Anomalies) != 0 {
		t.Errorf("Anomalies = %v, want none", report.Anomalies)
	}
}
