// Package metrics provides Prometheus metrics collection for Pulse.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds all Prometheus metrics for Pulse.
type Collector struct {
	// Request metrics
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge

	// Auth metrics
	AuthFailures *prometheus.CounterVec

	// Ingestion metrics
	EventsIngested     *prometheus.CounterVec
	EventsDropped      *prometheus.CounterVec
	RecorderBufferSize prometheus.Gauge
	RecorderFlushes    prometheus.Counter

	// Insights metrics
	InsightsRequests *prometheus.CounterVec
	InsightsDuration *prometheus.HistogramVec

	// Config metrics
	ConfigReloads      prometheus.Counter
	ConfigReloadErrors prometheus.Counter
	ConfigLastReload   prometheus.Gauge
}

// New creates a new metrics collector registered on the default registry.
func New() *Collector {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a new metrics collector with a custom registry.
// Useful for testing to avoid global state.
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		// Request metrics
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pulse",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests processed",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "pulse",
				Name:      "request_duration_seconds",
				Help:      "Request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path", "status"},
		),
		RequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "pulse",
				Name:      "requests_in_flight",
				Help:      "Number of requests currently being processed",
			},
		),

		// Auth metrics
		AuthFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pulse",
				Name:      "auth_failures_total",
				Help:      "Total number of authentication failures",
			},
			[]string{"reason"},
		),

		// Ingestion metrics
		EventsIngested: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pulse",
				Name:      "events_ingested_total",
				Help:      "Total number of events accepted for a project",
			},
			[]string{"project_id"},
		),
		EventsDropped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pulse",
				Name:      "events_dropped_total",
				Help:      "Total number of events rejected or lost",
			},
			[]string{"reason"},
		),
		RecorderBufferSize: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "pulse",
				Name:      "recorder_buffer_size",
				Help:      "Events currently buffered awaiting flush",
			},
		),
		RecorderFlushes: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "pulse",
				Name:      "recorder_flushes_total",
				Help:      "Total number of recorder buffer flushes",
			},
		),

		// Insights metrics
		InsightsRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pulse",
				Name:      "insights_requests_total",
				Help:      "Total insight generation requests by provider",
			},
			[]string{"provider", "status"},
		),
		InsightsDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "pulse",
				Name:      "insights_duration_seconds",
				Help:      "Insight generation duration in seconds",
				Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"provider"},
		),

		// Config metrics
		ConfigReloads: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "pulse",
				Name:      "config_reloads_total",
				Help:      "Total number of successful config reloads",
			},
		),
		ConfigReloadErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "pulse",
				Name:      "config_reload_errors_total",
				Help:      "Total number of config reload errors",
			},
		),
		ConfigLastReload: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "pulse",
				Name:      "config_last_reload_timestamp",
				Help:      "Unix timestamp of last successful config reload",
			},
		),
	}
}

// NormalizePath reduces metric cardinality for dynamic path segments.
func NormalizePath(path string) string {
	if len(path) > 50 {
		return path[:50] + "..."
	}
	return path
}
