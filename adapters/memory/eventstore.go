package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pulsekit/pulse/domain/analytics"
	"github.com/pulsekit/pulse/domain/event"
	"github.com/pulsekit/pulse/domain/window"
	"github.com/pulsekit/pulse/ports"
)

// EventStore is an in-memory implementation of ports.EventStore. The
// aggregations mirror the SQLite adapter's semantics: effective identity is
// the user ID when present, otherwise the anonymous ID, and identity-less
// events never count toward user statistics.
type EventStore struct {
	mu     sync.RWMutex
	events []event.Event
}

// NewEventStore creates a new in-memory event store.
func NewEventStore() *EventStore {
	return &EventStore{}
}

// RecordBatch appends events.
func (s *EventStore) RecordBatch(ctx context.Context, events []event.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, events...)
	return nil
}

// CountByProject returns the all-time event total for a project.
func (s *EventStore) CountByProject(ctx context.Context, projectID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, e := range s.events {
		if e.ProjectID == projectID {
			count++
		}
	}
	return count, nil
}

// ActiveUsers counts distinct effective identities active in [start, end).
func (s *EventStore) ActiveUsers(ctx context.Context, projectID string, start, end time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	for _, e := range s.events {
		if e.ProjectID != projectID {
			continue
		}
		ts := e.Timestamp
		if ts.Before(start) || !ts.Before(end) {
			continue
		}
		if id := e.Identity(); id != "" {
			seen[id] = true
		}
	}
	return len(seen), nil
}

func bucketLabel(g window.Granularity, ts time.Time) string {
	if g == window.ByHour {
		return ts.UTC().Format("15") + ":00"
	}
	return ts.UTC().Format("2006-01-02")
}

// Frequency returns per-bucket event counts since start, sparse and in
// chronological order.
func (s *EventStore) Frequency(ctx context.Context, projectID string, g window.Granularity, start time.Time, eventName string) ([]analytics.Bucket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int64)
	for _, e := range s.events {
		if e.ProjectID != projectID || e.Timestamp.Before(start) {
			continue
		}
		if eventName != "" && e.Name != eventName {
			continue
		}
		counts[bucketLabel(g, e.Timestamp)]++
	}

	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	buckets := make([]analytics.Bucket, 0, len(labels))
	for _, label := range labels {
		buckets = append(buckets, analytics.Bucket{Label: label, Count: counts[label]})
	}
	if len(buckets) == 0 {
		return nil, nil
	}
	return buckets, nil
}

// TopEvents returns all-time event counts by name, descending, ties broken
// by name.
func (s *EventStore) TopEvents(ctx context.Context, projectID string, limit int) ([]analytics.EventCount, error) {
	if limit <= 0 {
		limit = 10
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int64)
	for _, e := range s.events {
		if e.ProjectID == projectID {
			counts[e.Name]++
		}
	}

	result := make([]analytics.EventCount, 0, len(counts))
	for name, count := range counts {
		result = append(result, analytics.EventCount{Name: name, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Name < result[j].Name
	})

	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// IdentityTotals returns the all-time event count per effective identity.
func (s *EventStore) IdentityTotals(ctx context.Context, projectID string) ([]analytics.IdentityCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int64)
	for _, e := range s.events {
		if e.ProjectID != projectID {
			continue
		}
		if id := e.Identity(); id != "" {
			counts[id]++
		}
	}

	result := make([]analytics.IdentityCount, 0, len(counts))
	for id, count := range counts {
		result = append(result, analytics.IdentityCount{Identity: id, Count: count})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Identity < result[j].Identity })
	return result, nil
}

// IdentityDays returns distinct (identity, day) pairs since the given time.
func (s *EventStore) IdentityDays(ctx context.Context, projectID string, since time.Time) ([]analytics.IdentityDay, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type pair struct {
		identity string
		day      string
	}
	seen := make(map[pair]bool)
	for _, e := range s.events {
		if e.ProjectID != projectID || e.Timestamp.Before(since) {
			continue
		}
		id := e.Identity()
		if id == "" {
			continue
		}
		seen[pair{id, e.Timestamp.UTC().Format("2006-01-02")}] = true
	}

	result := make([]analytics.IdentityDay, 0, len(seen))
	for p := range seen {
		day, err := time.Parse("2006-01-02", p.day)
		if err != nil {
			return nil, err
		}
		result = append(result, analytics.IdentityDay{Identity: p.identity, Day: day})
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Day.Equal(result[j].Day) {
			return result[i].Day.Before(result[j].Day)
		}
		return result[i].Identity < result[j].Identity
	})
	return result, nil
}

// RecentEvents returns the newest events for a project.
func (s *EventStore) RecentEvents(ctx context.Context, projectID string, limit int) ([]event.Event, error) {
	if limit <= 0 {
		limit = 50
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []event.Event
	for _, e := range s.events {
		if e.ProjectID == projectID {
			result = append(result, e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Timestamp.After(result[j].Timestamp) })

	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// DeleteByProject removes all events for a project.
func (s *EventStore) DeleteByProject(ctx context.Context, projectID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var kept []event.Event
	var removed int64
	for _, e := range s.events {
		if e.ProjectID == projectID {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	s.events = kept
	return removed, nil
}

// All returns every stored event (for testing).
func (s *EventStore) All() []event.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]event.Event(nil), s.events...)
}

// Ensure interface compliance.
var _ ports.EventStore = (*EventStore)(nil)
