// Package ports defines interfaces (contracts) between layers.
// These interfaces enable dependency injection and testability.
// Implementations live in adapters/.
package ports

import (
	"context"
	"time"

	"github.com/pulsekit/pulse/domain/analytics"
	"github.com/pulsekit/pulse/domain/event"
	"github.com/pulsekit/pulse/domain/insight"
	"github.com/pulsekit/pulse/domain/project"
	"github.com/pulsekit/pulse/domain/window"
)

// -----------------------------------------------------------------------------
// Infrastructure Ports
// -----------------------------------------------------------------------------

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// IDGenerator generates unique identifiers.
type IDGenerator interface {
	New() string
}

// Hasher hashes and verifies passwords.
type Hasher interface {
	Hash(plaintext string) ([]byte, error)
	Compare(hash []byte, plaintext string) bool
}

// -----------------------------------------------------------------------------
// Data Store Ports
// -----------------------------------------------------------------------------

// User is a dashboard account (value type).
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash []byte
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserStore persists dashboard accounts.
type UserStore interface {
	Get(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	Create(ctx context.Context, u User) error
	Update(ctx context.Context, u User) error
	List(ctx context.Context, limit, offset int) ([]User, error)
	Count(ctx context.Context) (int, error)
	Delete(ctx context.Context, id string) error
}

// ProjectStore persists projects. Deleting a project removes its events.
type ProjectStore interface {
	Get(ctx context.Context, id string) (project.Project, error)
	GetByTrackingID(ctx context.Context, trackingID string) (project.Project, error)
	ListByUser(ctx context.Context, userID string) ([]project.Project, error)
	List(ctx context.Context, limit, offset int) ([]project.Project, error)
	Create(ctx context.Context, p project.Project) error
	Update(ctx context.Context, p project.Project) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// EventStore persists tracked events and answers the aggregation queries
// the dashboard is built on. The event table is insert-only.
type EventStore interface {
	// RecordBatch inserts events in a single transaction.
	RecordBatch(ctx context.Context, events []event.Event) error

	// CountByProject returns the all-time event total for a project.
	CountByProject(ctx context.Context, projectID string) (int64, error)

	// ActiveUsers counts distinct effective identities with at least one
	// event in [start, end). Identity-less events are ignored.
	ActiveUsers(ctx context.Context, projectID string, start, end time.Time) (int, error)

	// Frequency returns per-bucket event counts since start, in
	// chronological order. Buckets with zero events are omitted.
	// An empty eventName means all events.
	Frequency(ctx context.Context, projectID string, g window.Granularity, start time.Time, eventName string) ([]analytics.Bucket, error)

	// TopEvents returns all-time event counts by name, descending, with
	// ties broken by name for determinism.
	TopEvents(ctx context.Context, projectID string, limit int) ([]analytics.EventCount, error)

	// IdentityTotals returns the all-time event count per effective
	// identity.
	IdentityTotals(ctx context.Context, projectID string) ([]analytics.IdentityCount, error)

	// IdentityDays returns the distinct (identity, day) pairs since the
	// given time, for cohort retention.
	IdentityDays(ctx context.Context, projectID string, since time.Time) ([]analytics.IdentityDay, error)

	// RecentEvents returns the newest events for a project.
	RecentEvents(ctx context.Context, projectID string, limit int) ([]event.Event, error)

	// DeleteByProject removes all events for a project.
	DeleteByProject(ctx context.Context, projectID string) (int64, error)
}

// -----------------------------------------------------------------------------
// Ingestion Ports
// -----------------------------------------------------------------------------

// EventRecorder accepts events on the ingestion path. Implementations
// buffer and flush batches to an EventStore.
type EventRecorder interface {
	Record(e event.Event)
	Flush(ctx context.Context) error
	Close() error
}

// -----------------------------------------------------------------------------
// Insights Ports
// -----------------------------------------------------------------------------

// InsightsProvider turns a project digest into generated insights.
type InsightsProvider interface {
	GenerateInsights(ctx context.Context, d insight.Digest) (insight.Report, error)

	// Name identifies the provider in logs and responses.
	Name() string
}
