// Package project provides the project value type and tracking snippet
// rendering.
package project

import (
	"fmt"
	"strings"
	"time"
)

// Project is a tracked application owned by a user. TrackingID is the
// opaque token embedded in client snippets; it is the only identifier
// ever exposed to untrusted browsers.
type Project struct {
	ID          string
	Name        string
	Description string
	TrackingID  string
	UserID      string
	CreatedAt   time.Time
}

// New creates a project with normalized fields.
func New(id, name, description, trackingID, userID string, createdAt time.Time) Project {
	return Project{
		ID:          id,
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		TrackingID:  trackingID,
		UserID:      userID,
		CreatedAt:   createdAt.UTC(),
	}
}

// Validate checks invariants before persistence.
func (p Project) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("project name is required")
	}
	if p.TrackingID == "" {
		return fmt.Errorf("tracking id is required")
	}
	if p.UserID == "" {
		return fmt.Errorf("owner is required")
	}
	return nil
}

// Snippet renders the JavaScript tracking snippet for embedding in client
// pages. baseURL is the public address of this server.
func (p Project) Snippet(baseURL string) string {
	baseURL = strings.TrimRight(baseURL, "/")
	return fmt.Sprintf(`<script>
(function(w,d){
  var pulse = w.pulse = w.pulse || {};
  pulse.projectId = %q;
  pulse.endpoint = %q;
  pulse.track = function(name, props) {
    var payload = {
      project_id: pulse.projectId,
      event_name: name,
      properties: props || {},
      anonymous_id: pulse.anonymousId(),
      timestamp: new Date().toISOString()
    };
    navigator.sendBeacon
      ? navigator.sendBeacon(pulse.endpoint, JSON.stringify(payload))
      : fetch(pulse.endpoint, {method: "POST", body: JSON.stringify(payload), keepalive: true});
  };
  pulse.anonymousId = function() {
    var k = "_pulse_aid", v = w.localStorage.getItem(k);
    if (!v) { v = Math.random().toString(36).slice(2) + Date.now().toString(36); w.localStorage.setItem(k, v); }
    return v;
  };
  pulse.track("page_view", {path: d.location.pathname, referrer: d.referrer});
})(window, document);
</script>`, p.TrackingID, baseURL+"/api/events")
}
