// Package event provides the tracked event type and identity helpers.
// All functions are pure - no side effects.
package event

import (
	"encoding/json"
	"time"
)

// Event represents a single tracked event (immutable value type).
// Properties is an opaque JSON document; the platform stores and returns
// it but never inspects individual keys during aggregation.
type Event struct {
	ID          string          `json:"id"`
	ProjectID   string          `json:"project_id"`
	Name        string          `json:"event_name"`
	Properties  json.RawMessage `json:"properties,omitempty"`
	UserID      string          `json:"user_id,omitempty"`
	AnonymousID string          `json:"anonymous_id,omitempty"`
	Timestamp   time.Time       `json:"timestamp"`
}

// Identity returns the effective identity for the event: the user ID when
// present, otherwise the anonymous ID. May be empty for untagged events.
// This is a PURE function.
func (e Event) Identity() string {
	if e.UserID != "" {
		return e.UserID
	}
	return e.AnonymousID
}

// New creates an event with normalized fields. A zero timestamp is replaced
// with the given receipt time, and all timestamps are stored in UTC.
func New(id, projectID, name string, props json.RawMessage, userID, anonymousID string, ts, receivedAt time.Time) Event {
	if ts.IsZero() {
		ts = receivedAt
	}
	return Event{
		ID:          id,
		ProjectID:   projectID,
		Name:        name,
		Properties:  props,
		UserID:      userID,
		AnonymousID: anonymousID,
		Timestamp:   ts.UTC(),
	}
}

// ParseTimestamp parses a client-supplied timestamp. Clients send RFC 3339
// with either an offset or a bare Z suffix; anything unparsable falls back
// to the receipt time so a bad clock never rejects an event.
// This is a PURE function.
func ParseTimestamp(raw string, receivedAt time.Time) time.Time {
	if raw == "" {
		return receivedAt.UTC()
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return receivedAt.UTC()
}
