// Package web provides the SSR dashboard and the public event ingestion
// API. All templates and static files are embedded in the binary.
// Stateless design - no server-side session storage.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/pulsekit/pulse/adapters/auth"
	"github.com/pulsekit/pulse/adapters/metrics"
	"github.com/pulsekit/pulse/app"
	"github.com/pulsekit/pulse/ports"
	"github.com/rs/zerolog"
)

//go:embed templates/* static/*
var assets embed.FS

// Handler provides the dashboard and API endpoints.
type Handler struct {
	templates   map[string]*template.Template
	tokens      *auth.TokenService
	accounts    *app.AccountService
	projects    *app.ProjectService
	analytics   *app.AnalyticsService
	ingest      *app.IngestService
	insights    *app.InsightsService
	events      ports.EventStore
	metrics     *metrics.Collector
	logger      zerolog.Logger
	baseURL     string
	metricsPath string
	startTime   time.Time
}

// Deps contains dependencies for the web handler.
type Deps struct {
	Accounts    *app.AccountService
	Projects    *app.ProjectService
	Analytics   *app.AnalyticsService
	Ingest      *app.IngestService
	Insights    *app.InsightsService
	Events      ports.EventStore
	Metrics     *metrics.Collector // may be nil
	MetricsPath string             // defaults to /metrics
	Logger      zerolog.Logger
	JWTSecret   string
	SessionTTL  time.Duration
	BaseURL     string
}

// NewHandler creates a new web handler.
func NewHandler(deps Deps) (*Handler, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	metricsPath := deps.MetricsPath
	if metricsPath == "" {
		metricsPath = "/metrics"
	}

	return &Handler{
		templates:   tmpl,
		tokens:      auth.NewTokenService(deps.JWTSecret, deps.SessionTTL),
		accounts:    deps.Accounts,
		projects:    deps.Projects,
		analytics:   deps.Analytics,
		ingest:      deps.Ingest,
		insights:    deps.Insights,
		events:      deps.Events,
		metrics:     deps.Metrics,
		logger:      deps.Logger,
		baseURL:     deps.BaseURL,
		metricsPath: metricsPath,
		startTime:   time.Now(),
	}, nil
}

// Router returns the full application router.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()

	if h.metrics != nil {
		r.Use(h.metricsMiddleware)
	}

	// Static files (CSS, JS) - no auth required
	staticFS, _ := fs.Sub(assets, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	// Health and metrics
	r.Get("/health", h.Health)
	if h.metrics != nil {
		r.Handle(h.metricsPath, promhttp.Handler())
	}

	// Public ingestion API (CORS-open, called from tracked browsers)
	r.Options("/api/events", h.IngestPreflight)
	r.Post("/api/events", h.IngestEvents)
	r.Get("/api/events/test", h.IngestTestEvent)
	r.Post("/api/events/test", h.IngestTestEvent)

	// Auth pages (no auth required)
	r.Get("/login", h.LoginPage)
	r.Post("/login", h.LoginSubmit)
	r.Get("/register", h.RegisterPage)
	r.Post("/register", h.RegisterSubmit)
	r.Post("/logout", h.Logout)

	// Protected pages (require auth)
	r.Group(func(r chi.Router) {
		r.Use(h.AuthMiddleware)

		// Dashboard
		r.Get("/", h.Dashboard)
		r.Get("/dashboard", h.Dashboard)

		// Projects
		r.Get("/projects/new", h.ProjectNewPage)
		r.Post("/projects", h.ProjectCreate)
		r.Get("/projects/{id}", h.ProjectPage)
		r.Get("/projects/{id}/edit", h.ProjectEditPage)
		r.Post("/projects/{id}", h.ProjectUpdate)
		r.Post("/projects/{id}/delete", h.ProjectDelete)
		r.Get("/projects/{id}/snippet", h.ProjectSnippet)

		// Analytics API (consumed by dashboard charts)
		r.Get("/api/projects/{id}/stats/active-users", h.StatsActiveUsers)
		r.Get("/api/projects/{id}/stats/frequency", h.StatsFrequency)
		r.Get("/api/projects/{id}/stats/top-events", h.StatsTopEvents)
		r.Get("/api/projects/{id}/stats/retention", h.StatsRetention)
		r.Get("/api/projects/{id}/stats/anomalies", h.StatsAnomalies)
		r.Get("/api/projects/{id}/stats/segments", h.StatsSegments)
		r.Get("/api/projects/{id}/stats/recent", h.StatsRecentEvents)
		r.Get("/api/projects/{id}/insights", h.ProjectInsights)
	})

	return r
}

// AuthMiddleware validates the JWT token from the session cookie.
// Stateless - no server-side session lookup.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("token")
		if err != nil {
			h.rejectUnauthenticated(w, r)
			return
		}

		claims, err := h.tokens.ValidateToken(cookie.Value)
		if err != nil {
			if h.metrics != nil {
				h.metrics.AuthFailures.WithLabelValues("invalid_token").Inc()
			}
			h.rejectUnauthenticated(w, r)
			return
		}

		// Slide active sessions forward once they pass half their
		// lifetime, so a user working in the dashboard is never logged
		// out mid-visit.
		if h.tokens.ShouldRefresh(claims) {
			h.setSessionCookie(w, claims.UserID, claims.Email)
		}

		ctx := withClaims(r.Context(), claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) rejectUnauthenticated(w http.ResponseWriter, r *http.Request) {
	// API consumers get a JSON 401, browsers get the login page.
	if strings.HasPrefix(r.URL.Path, "/api/") {
		writeJSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(h.startTime).Round(time.Second).String(),
	})
}

func (h *Handler) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		h.metrics.RequestsInFlight.Inc()
		defer h.metrics.RequestsInFlight.Dec()

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		path := metrics.NormalizePath(r.URL.Path)
		status := statusClass(sw.status)
		h.metrics.RequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		h.metrics.RequestDuration.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func statusClass(status int) string {
	return strconv.Itoa(status/100) + "xx"
}

// parseTemplates builds one template set per page, each paired with the
// base layout, so pages can define "content" independently.
func parseTemplates() (map[string]*template.Template, error) {
	funcs := template.FuncMap{
		"formatTime": func(t time.Time) string {
			return t.Format("Jan 2, 2006 3:04 PM")
		},
		"formatDate": func(t time.Time) string {
			return t.Format("Jan 2, 2006")
		},
		"timeAgo": func(t time.Time) string {
			d := time.Since(t)
			switch {
			case d < time.Minute:
				return "just now"
			case d < time.Hour:
				return formatDuration(d.Minutes(), "minute")
			case d < 24*time.Hour:
				return formatDuration(d.Hours(), "hour")
			default:
				return formatDuration(d.Hours()/24, "day")
			}
		},
		"truncate": func(s string, n int) string {
			if len(s) <= n {
				return s
			}
			return s[:n] + "..."
		},
	}

	pages, err := fs.Glob(assets, "templates/pages/*.html")
	if err != nil {
		return nil, fmt.Errorf("glob pages: %w", err)
	}

	templates := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		name := filepath.Base(page)
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(assets, "templates/layouts/base.html", page)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		templates[name] = tmpl
	}

	return templates, nil
}

// render executes a page template inside the base layout.
func (h *Handler) render(w http.ResponseWriter, name string, data PageData) {
	tmpl, ok := h.templates[name]
	if !ok {
		h.logger.Error().Str("template", name).Msg("template not found")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		h.logger.Error().Err(err).Str("template", name).Msg("render failed")
	}
}

func formatDuration(n float64, unit string) string {
	i := int(n)
	if i == 1 {
		return "1 " + unit + " ago"
	}
	return fmt.Sprintf("%d %ss ago", i, unit)
}
