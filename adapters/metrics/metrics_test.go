package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/pulsekit/pulse/adapters/metrics"
)

func TestNew(t *testing.T) {
	// Use a new registry to avoid conflicts with other tests
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	if m == nil {
		t.Fatal("NewWithRegistry returned nil")
	}

	// Verify all metrics are initialized
	if m.RequestsTotal == nil {
		t.Error("RequestsTotal is nil")
	}
	if m.RequestDuration == nil {
		t.Error("RequestDuration is nil")
	}
	if m.RequestsInFlight == nil {
		t.Error("RequestsInFlight is nil")
	}
	if m.AuthFailures == nil {
		t.Error("AuthFailures is nil")
	}
	if m.EventsIngested == nil {
		t.Error("EventsIngested is nil")
	}
	if m.EventsDropped == nil {
		t.Error("EventsDropped is nil")
	}
	if m.InsightsRequests == nil {
		t.Error("InsightsRequests is nil")
	}
	if m.ConfigReloads == nil {
		t.Error("ConfigReloads is nil")
	}
}

func TestRequestsTotal(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	// Record some requests
	m.RequestsTotal.WithLabelValues("GET", "/api/projects", "2xx").Inc()
	m.RequestsTotal.WithLabelValues("POST", "/api/events", "4xx").Add(5)

	// Verify metrics were gathered
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather error: %v", err)
	}

	found := false
	for _, f := range families {
		if f.GetName() == "pulse_requests_total" {
			found = true
			if len(f.GetMetric()) != 2 {
				t.Errorf("expected 2 metric series, got %d", len(f.GetMetric()))
			}
		}
	}
	if !found {
		t.Error("pulse_requests_total metric not found")
	}
}

func TestEventsIngested(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	m.EventsIngested.WithLabelValues("proj-1").Add(10)
	m.EventsIngested.WithLabelValues("proj-2").Inc()
	m.EventsDropped.WithLabelValues("unknown_token").Inc()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather error: %v", err)
	}

	foundIngested := false
	foundDropped := false
	for _, f := range families {
		if f.GetName() == "pulse_events_ingested_total" {
			foundIngested = true
			if len(f.GetMetric()) != 2 {
				t.Errorf("expected 2 metric series, got %d", len(f.GetMetric()))
			}
		}
		if f.GetName() == "pulse_events_dropped_total" {
			foundDropped = true
		}
	}
	if !foundIngested {
		t.Error("pulse_events_ingested_total metric not found")
	}
	if !foundDropped {
		t.Error("pulse_events_dropped_total metric not found")
	}
}

func TestAuthFailures(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	m.AuthFailures.WithLabelValues("invalid_token").Inc()
	m.AuthFailures.WithLabelValues("missing_token").Add(3)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather error: %v", err)
	}

	found := false
	for _, f := range families {
		if f.GetName() == "pulse_auth_failures_total" {
			found = true
			if len(f.GetMetric()) != 2 {
				t.Errorf("expected 2 metric series, got %d", len(f.GetMetric()))
			}
		}
	}
	if !found {
		t.Error("pulse_auth_failures_total metric not found")
	}
}

func TestInsightsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	m.InsightsRequests.WithLabelValues("deepseek", "ok").Inc()
	m.InsightsRequests.WithLabelValues("mock", "ok").Inc()
	m.InsightsDuration.WithLabelValues("deepseek").Observe(2.5)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather error: %v", err)
	}

	foundRequests := false
	foundDuration := false
	for _, f := range families {
		if f.GetName() == "pulse_insights_requests_total" {
			foundRequests = true
		}
		if f.GetName() == "pulse_insights_duration_seconds" {
			foundDuration = true
		}
	}
	if !foundRequests {
		t.Error("pulse_insights_requests_total metric not found")
	}
	if !foundDuration {
		t.Error("pulse_insights_duration_seconds metric not found")
	}
}

func TestConfigReloads(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	m.ConfigReloads.Inc()
	m.ConfigLastReload.SetToCurrentTime()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather error: %v", err)
	}

	foundReloads := false
	foundLastReload := false
	for _, f := range families {
		if f.GetName() == "pulse_config_reloads_total" {
			foundReloads = true
		}
		if f.GetName() == "pulse_config_last_reload_timestamp" {
			foundLastReload = true
		}
	}
	if !foundReloads {
		t.Error("pulse_config_reloads_total metric not found")
	}
	if !foundLastReload {
		t.Error("pulse_config_last_reload_timestamp metric not found")
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"/api/projects", "/api/projects"},
		{"/api/projects/123", "/api/projects/123"},
		{"/short", "/short"},
	}

	for _, tt := range tests {
		result := metrics.NormalizePath(tt.input)
		if result != tt.expected {
			t.Errorf("NormalizePath(%s) = %s, want %s", tt.input, result, tt.expected)
		}
	}

	// Test long path truncation
	longPath := "/very/long/path/that/exceeds/fifty/characters/in/total/length"
	result := metrics.NormalizePath(longPath)
	if len(result) > 53 { // 50 chars + "..."
		t.Errorf("NormalizePath should truncate long paths, got len=%d", len(result))
	}
	if result[len(result)-3:] != "..." {
		t.Errorf("truncated path should end with '...', got %s", result)
	}
}

func TestRecorderGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	m.RecorderBufferSize.Set(42)
	m.RecorderFlushes.Inc()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather error: %v", err)
	}

	found := false
	for _, f := range families {
		if f.GetName() == "pulse_recorder_buffer_size" {
			found = true
			val := f.GetMetric()[0].GetGauge().GetValue()
			if val != 42 {
				t.Errorf("expected value 42, got %f", val)
			}
		}
	}
	if !found {
		t.Error("pulse_recorder_buffer_size metric not found")
	}
}
