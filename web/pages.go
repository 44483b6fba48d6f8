package web

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pulsekit/pulse/app"
	"github.com/pulsekit/pulse/domain/event"
	"github.com/pulsekit/pulse/domain/project"
)

// ----------------------------------------------------------------------------
// Auth Pages
// ----------------------------------------------------------------------------

// LoginPage renders the login form.
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, "login.html", h.newPageData(r.Context(), "Log in", r.URL.Path))
}

// LoginSubmit authenticates and sets the session cookie.
func (h *Handler) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderLoginError(w, r, "invalid form submission")
		return
	}

	email := r.FormValue("email")
	password := r.FormValue("password")

	u, err := h.accounts.Authenticate(r.Context(), email, password)
	if err != nil {
		if h.metrics != nil {
			h.metrics.AuthFailures.WithLabelValues("bad_credentials").Inc()
		}
		h.renderLoginError(w, r, err.Error())
		return
	}

	h.setSessionCookie(w, u.ID, u.Email)
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// RegisterPage renders the registration form.
func (h *Handler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, "register.html", h.newPageData(r.Context(), "Create account", r.URL.Path))
}

// RegisterSubmit creates an account and logs the user in.
func (h *Handler) RegisterSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderRegisterError(w, r, "invalid form submission")
		return
	}

	email := r.FormValue("email")
	name := r.FormValue("name")
	password := r.FormValue("password")

	u, err := h.accounts.Register(r.Context(), email, name, password)
	if err != nil {
		h.renderRegisterError(w, r, err.Error())
		return
	}

	h.setSessionCookie(w, u.ID, u.Email)
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// Logout clears the session cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, userID, email string) {
	token, expiresAt, err := h.tokens.GenerateToken(userID, email)
	if err != nil {
		h.logger.Error().Err(err).Msg("token generation failed")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) renderLoginError(w http.ResponseWriter, r *http.Request, msg string) {
	pd := h.newPageData(r.Context(), "Log in", r.URL.Path)
	pd.Flash = &FlashMessage{Type: "error", Message: msg}
	w.WriteHeader(http.StatusUnauthorized)
	h.render(w, "login.html", pd)
}

func (h *Handler) renderRegisterError(w http.ResponseWriter, r *http.Request, msg string) {
	pd := h.newPageData(r.Context(), "Create account", r.URL.Path)
	pd.Flash = &FlashMessage{Type: "error", Message: msg}
	w.WriteHeader(http.StatusBadRequest)
	h.render(w, "register.html", pd)
}

// ----------------------------------------------------------------------------
// Dashboard and Project Pages
// ----------------------------------------------------------------------------

type dashboardData struct {
	Projects []projectSummary
}

type projectSummary struct {
	Project     project.Project
	TotalEvents int64
}

// Dashboard lists the user's projects with their event totals.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r.Context())

	projects, err := h.projects.List(r.Context(), claims.UserID)
	if err != nil {
		h.logger.Error().Err(err).Msg("list projects failed")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	summaries := make([]projectSummary, 0, len(projects))
	for _, p := range projects {
		total, err := h.analytics.TotalEvents(r.Context(), p.ID)
		if err != nil {
			h.logger.Warn().Err(err).Str("project_id", p.ID).Msg("event count failed")
		}
		summaries = append(summaries, projectSummary{Project: p, TotalEvents: total})
	}

	pd := h.newPageData(r.Context(), "Dashboard", r.URL.Path)
	pd.Data = dashboardData{Projects: summaries}
	h.render(w, "dashboard.html", pd)
}

// ProjectNewPage renders the project creation form.
func (h *Handler) ProjectNewPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, "project_form.html", h.newPageData(r.Context(), "New project", r.URL.Path))
}

// ProjectCreate creates a project and redirects to its snippet page.
func (h *Handler) ProjectCreate(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r.Context())

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}

	p, err := h.projects.Create(r.Context(), claims.UserID, r.FormValue("name"), r.FormValue("description"))
	if err != nil {
		pd := h.newPageData(r.Context(), "New project", r.URL.Path)
		pd.Flash = &FlashMessage{Type: "error", Message: err.Error()}
		w.WriteHeader(http.StatusBadRequest)
		h.render(w, "project_form.html", pd)
		return
	}

	http.Redirect(w, r, "/projects/"+p.ID+"/snippet", http.StatusFound)
}

type projectPageData struct {
	Project project.Project
	Recent  []event.Event
}

// ProjectPage renders the analytics view for one project.
func (h *Handler) ProjectPage(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r.Context())

	p, err := h.projects.GetOwned(r.Context(), claims.UserID, chi.URLParam(r, "id"))
	if err != nil {
		h.renderProjectError(w, r, err)
		return
	}

	recent, err := h.events.RecentEvents(r.Context(), p.ID, 0)
	if err != nil {
		h.logger.Warn().Err(err).Str("project_id", p.ID).Msg("recent events failed")
	}

	pd := h.newPageData(r.Context(), p.Name, r.URL.Path)
	pd.Data = projectPageData{Project: p, Recent: recent}
	h.render(w, "project.html", pd)
}

type projectEditData struct {
	Project project.Project
}

// ProjectEditPage renders the rename form.
func (h *Handler) ProjectEditPage(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r.Context())

	p, err := h.projects.GetOwned(r.Context(), claims.UserID, chi.URLParam(r, "id"))
	if err != nil {
		h.renderProjectError(w, r, err)
		return
	}

	pd := h.newPageData(r.Context(), "Edit "+p.Name, r.URL.Path)
	pd.Data = projectEditData{Project: p}
	h.render(w, "project_edit.html", pd)
}

// ProjectUpdate renames a project.
func (h *Handler) ProjectUpdate(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r.Context())

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}

	p, err := h.projects.Update(r.Context(), claims.UserID, chi.URLParam(r, "id"), r.FormValue("name"), r.FormValue("description"))
	if err != nil {
		h.renderProjectError(w, r, err)
		return
	}

	http.Redirect(w, r, "/projects/"+p.ID, http.StatusFound)
}

// ProjectDelete removes a project and all of its events.
func (h *Handler) ProjectDelete(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r.Context())

	if err := h.projects.Delete(r.Context(), claims.UserID, chi.URLParam(r, "id")); err != nil {
		h.renderProjectError(w, r, err)
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

type snippetData struct {
	Project project.Project
	Snippet string
}

// ProjectSnippet shows the tracking snippet for embedding.
func (h *Handler) ProjectSnippet(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r.Context())

	p, err := h.projects.GetOwned(r.Context(), claims.UserID, chi.URLParam(r, "id"))
	if err != nil {
		h.renderProjectError(w, r, err)
		return
	}

	pd := h.newPageData(r.Context(), "Install "+p.Name, r.URL.Path)
	pd.Data = snippetData{Project: p, Snippet: p.Snippet(h.baseURL)}
	h.render(w, "snippet.html", pd)
}

func (h *Handler) renderProjectError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, app.ErrForbidden) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	http.NotFound(w, r)
}
