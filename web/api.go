package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pulsekit/pulse/app"
	"github.com/pulsekit/pulse/domain/event"
	"github.com/pulsekit/pulse/domain/project"
)

// ----------------------------------------------------------------------------
// Ingestion API
// ----------------------------------------------------------------------------

// ingestRequest is the wire format for event submission. Tracking snippets
// send a single flattened event; SDKs send a batch under "events".
type ingestRequest struct {
	ProjectID string           `json:"project_id"`
	Events    []app.EventInput `json:"events"`

	// Single-event form, as emitted by the browser snippet.
	EventName   string          `json:"event_name"`
	Properties  json.RawMessage `json:"properties"`
	UserID      string          `json:"user_id"`
	AnonymousID string          `json:"anonymous_id"`
	Timestamp   string          `json:"timestamp"`
}

// IngestPreflight answers CORS preflight for the ingestion endpoint.
func (h *Handler) IngestPreflight(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	w.WriteHeader(http.StatusNoContent)
}

// IngestEvents accepts tracked events from browsers and SDKs. The endpoint
// is authenticated by tracking token only; it must accept cross-origin
// requests from any tracked site.
func (h *Handler) IngestEvents(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)

	var req ingestRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	batch := req.Events
	if len(batch) == 0 && req.EventName != "" {
		batch = []app.EventInput{{
			EventName:   req.EventName,
			Properties:  req.Properties,
			UserID:      req.UserID,
			AnonymousID: req.AnonymousID,
			Timestamp:   req.Timestamp,
		}}
	}

	projectID, accepted, err := h.ingest.Ingest(r.Context(), req.ProjectID, batch)
	if err != nil {
		if h.metrics != nil {
			h.metrics.EventsDropped.WithLabelValues("rejected").Add(float64(len(batch)))
		}
		writeJSONError(w, ingestStatus(err), err.Error())
		return
	}

	if h.metrics != nil {
		h.metrics.EventsIngested.WithLabelValues(projectID).Add(float64(accepted))
	}

	writeJSON(w, http.StatusAccepted, map[string]any{"accepted": accepted})
}

// IngestTestEvent records a synthetic event so users can verify their
// snippet wiring without touching their site. The token comes from the
// JSON body or, for GET probes, the project_id query parameter.
func (h *Handler) IngestTestEvent(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)

	trackingID := r.URL.Query().Get("project_id")
	if trackingID == "" {
		var req struct {
			ProjectID string `json:"project_id"`
		}
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		trackingID = req.ProjectID
	}

	batch := []app.EventInput{{
		EventName:   "test_event",
		Properties:  json.RawMessage(`{"source":"setup_check"}`),
		AnonymousID: "setup-check",
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}}

	projectID, accepted, err := h.ingest.Ingest(r.Context(), trackingID, batch)
	if err != nil {
		writeJSONError(w, ingestStatus(err), err.Error())
		return
	}

	if h.metrics != nil {
		h.metrics.EventsIngested.WithLabelValues(projectID).Add(float64(accepted))
	}

	writeJSON(w, http.StatusAccepted, map[string]any{"accepted": accepted})
}

// ingestStatus maps ingestion errors to HTTP statuses: an unknown tracking
// token is a 404, everything else a 400.
func ingestStatus(err error) int {
	if errors.Is(err, app.ErrUnknownTrackingID) {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}

func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Access-Control-Max-Age", "86400")
}

// ----------------------------------------------------------------------------
// Stats API
// ----------------------------------------------------------------------------

// StatsActiveUsers returns the active user count with a trend comparison.
func (h *Handler) StatsActiveUsers(w http.ResponseWriter, r *http.Request) {
	p, ok := h.ownedProject(w, r)
	if !ok {
		return
	}

	result, err := h.analytics.ActiveUsers(r.Context(), p.ID, r.URL.Query().Get("period"))
	if err != nil {
		h.statsError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// StatsFrequency returns the bucketed event series for charting.
func (h *Handler) StatsFrequency(w http.ResponseWriter, r *http.Request) {
	p, ok := h.ownedProject(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	buckets, err := h.analytics.Frequency(r.Context(), p.ID, q.Get("period"), q.Get("event"))
	if err != nil {
		h.statsError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"buckets": buckets})
}

// StatsTopEvents returns the most frequent event names.
func (h *Handler) StatsTopEvents(w http.ResponseWriter, r *http.Request) {
	p, ok := h.ownedProject(w, r)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	counts, err := h.analytics.TopEvents(r.Context(), p.ID, limit)
	if err != nil {
		h.statsError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": counts})
}

// StatsRetention returns weekly cohort retention.
func (h *Handler) StatsRetention(w http.ResponseWriter, r *http.Request) {
	p, ok := h.ownedProject(w, r)
	if !ok {
		return
	}

	cohorts, err := h.analytics.Retention(r.Context(), p.ID)
	if err != nil {
		h.statsError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cohorts": cohorts})
}

// StatsAnomalies returns Z-score anomaly detection over the period.
func (h *Handler) StatsAnomalies(w http.ResponseWriter, r *http.Request) {
	p, ok := h.ownedProject(w, r)
	if !ok {
		return
	}

	report, err := h.analytics.Anomalies(r.Context(), p.ID, r.URL.Query().Get("period"))
	if err != nil {
		h.statsError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// StatsSegments returns behavioral user segments.
func (h *Handler) StatsSegments(w http.ResponseWriter, r *http.Request) {
	p, ok := h.ownedProject(w, r)
	if !ok {
		return
	}

	report, err := h.analytics.Segments(r.Context(), p.ID)
	if err != nil {
		h.statsError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// StatsRecentEvents returns the newest events for the live feed.
func (h *Handler) StatsRecentEvents(w http.ResponseWriter, r *http.Request) {
	p, ok := h.ownedProject(w, r)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	events, err := h.events.RecentEvents(r.Context(), p.ID, limit)
	if err != nil {
		h.statsError(w, err)
		return
	}
	if events == nil {
		events = []event.Event{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

// ProjectInsights generates an insight report for a project.
func (h *Handler) ProjectInsights(w http.ResponseWriter, r *http.Request) {
	p, ok := h.ownedProject(w, r)
	if !ok {
		return
	}

	start := time.Now()
	report, err := h.insights.Generate(r.Context(), p, r.URL.Query().Get("period"))
	if err != nil {
		if h.metrics != nil {
			h.metrics.InsightsRequests.WithLabelValues("none", "error").Inc()
		}
		h.statsError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.InsightsRequests.WithLabelValues(report.Source, "ok").Inc()
		h.metrics.InsightsDuration.WithLabelValues(report.Source).Observe(time.Since(start).Seconds())
	}

	writeJSON(w, http.StatusOK, report)
}

// ownedProject resolves the {id} URL parameter and verifies ownership,
// writing the error response itself on failure.
func (h *Handler) ownedProject(w http.ResponseWriter, r *http.Request) (project.Project, bool) {
	claims := getClaims(r.Context())

	p, err := h.projects.GetOwned(r.Context(), claims.UserID, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, app.ErrForbidden) {
			writeJSONError(w, http.StatusForbidden, "forbidden")
		} else {
			writeJSONError(w, http.StatusNotFound, "project not found")
		}
		return project.Project{}, false
	}
	return p, true
}

func (h *Handler) statsError(w http.ResponseWriter, err error) {
	h.logger.Error().Err(err).Msg("stats query failed")
	writeJSONError(w, http.StatusInternalServerError, "internal server error")
}

// ----------------------------------------------------------------------------
// JSON Helpers
// ----------------------------------------------------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
