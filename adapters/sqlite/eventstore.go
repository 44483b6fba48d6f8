package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/pulsekit/pulse/domain/analytics"
	"github.com/pulsekit/pulse/domain/event"
	"github.com/pulsekit/pulse/domain/window"
	"github.com/pulsekit/pulse/ports"
)

// identityExpr computes the effective identity in SQL: the user ID when
// non-empty, otherwise the anonymous ID, NULL when neither is set. Every
// aggregation uses this expression so the definition cannot drift.
const identityExpr = `COALESCE(NULLIF(user_id, ''), NULLIF(anonymous_id, ''))`

// EventStore implements ports.EventStore using SQLite.
type EventStore struct {
	db *DB
}

// NewEventStore creates a new SQLite event store.
func NewEventStore(db *DB) *EventStore {
	return &EventStore{db: db}
}

// RecordBatch inserts events in a single transaction.
func (s *EventStore) RecordBatch(ctx context.Context, events []event.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO events (id, project_id, event_name, properties, user_id, anonymous_id, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range events {
		var props any
		if len(e.Properties) > 0 {
			props = string(e.Properties)
		}
		_, err := stmt.ExecContext(ctx,
			e.ID, e.ProjectID, e.Name, props,
			nullString(e.UserID), nullString(e.AnonymousID),
			e.Timestamp.UTC(),
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// CountByProject returns the all-time event total for a project.
func (s *EventStore) CountByProject(ctx context.Context, projectID string) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM events WHERE project_id = ?`, projectID,
	).Scan(&count)
	return count, err
}

// ActiveUsers counts distinct effective identities active in [start, end).
// Events without any identity are excluded by COUNT DISTINCT over NULLs.
func (s *EventStore) ActiveUsers(ctx context.Context, projectID string, start, end time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT `+identityExpr+`)
		FROM events
		WHERE project_id = ? AND timestamp >= ? AND timestamp < ?
	`, projectID, start.UTC(), end.UTC()).Scan(&count)
	return count, err
}

// Frequency returns per-bucket event counts since start. Buckets with no
// events simply do not appear; chronological order falls out of the label
// formats, which sort lexically.
func (s *EventStore) Frequency(ctx context.Context, projectID string, g window.Granularity, start time.Time, eventName string) ([]analytics.Bucket, error) {
	query := `
		SELECT strftime(?, timestamp) AS bucket, COUNT(*) AS count
		FROM events
		WHERE project_id = ? AND timestamp >= ?
	`
	args := []any{g.SQLiteFormat(), projectID, start.UTC()}
	if eventName != "" {
		query += ` AND event_name = ?`
		args = append(args, eventName)
	}
	query += `
		GROUP BY bucket
		ORDER BY bucket
	`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var buckets []analytics.Bucket
	for rows.Next() {
		var b analytics.Bucket
		if err := rows.Scan(&b.Label, &b.Count); err != nil {
			return nil, err
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}

// TopEvents returns all-time event counts by name, most frequent first.
// Ties break by name so repeated calls render identically.
func (s *EventStore) TopEvents(ctx context.Context, projectID string, limit int) ([]analytics.EventCount, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT event_name, COUNT(*) AS count
		FROM events
		WHERE project_id = ?
		GROUP BY event_name
		ORDER BY count DESC, event_name ASC
		LIMIT ?
	`, projectID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []analytics.EventCount
	for rows.Next() {
		var ec analytics.EventCount
		if err := rows.Scan(&ec.Name, &ec.Count); err != nil {
			return nil, err
		}
		counts = append(counts, ec)
	}
	return counts, rows.Err()
}

// IdentityTotals returns the all-time event count per effective identity.
func (s *EventStore) IdentityTotals(ctx context.Context, projectID string) ([]analytics.IdentityCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+identityExpr+` AS identity, COUNT(*) AS count
		FROM events
		WHERE project_id = ? AND `+identityExpr+` IS NOT NULL
		GROUP BY identity
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var totals []analytics.IdentityCount
	for rows.Next() {
		var ic analytics.IdentityCount
		if err := rows.Scan(&ic.Identity, &ic.Count); err != nil {
			return nil, err
		}
		totals = append(totals, ic)
	}
	return totals, rows.Err()
}

// IdentityDays returns distinct (identity, day) pairs since the given time.
// Cohort math happens in Go, where ISO week numbering is correct; SQLite's
// %W weeks start on different days depending on the year.
func (s *EventStore) IdentityDays(ctx context.Context, projectID string, since time.Time) ([]analytics.IdentityDay, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT `+identityExpr+` AS identity, strftime('%Y-%m-%d', timestamp) AS day
		FROM events
		WHERE project_id = ? AND timestamp >= ? AND `+identityExpr+` IS NOT NULL
		ORDER BY day
	`, projectID, since.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []analytics.IdentityDay
	for rows.Next() {
		var identity, dayStr string
		if err := rows.Scan(&identity, &dayStr); err != nil {
			return nil, err
		}
		day, err := time.Parse("2006-01-02", dayStr)
		if err != nil {
			return nil, err
		}
		days = append(days, analytics.IdentityDay{Identity: identity, Day: day})
	}
	return days, rows.Err()
}

// RecentEvents returns the newest events for a project.
func (s *EventStore) RecentEvents(ctx context.Context, projectID string, limit int) ([]event.Event, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, event_name, properties, user_id, anonymous_id, timestamp
		FROM events
		WHERE project_id = ?
		ORDER BY timestamp DESC
		LIMIT ?
	`, projectID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []event.Event
	for rows.Next() {
		var e event.Event
		var props, userID, anonymousID sql.NullString
		if err := rows.Scan(&e.ID, &e.ProjectID, &e.Name, &props, &userID, &anonymousID, &e.Timestamp); err != nil {
			return nil, err
		}
		if props.Valid {
			e.Properties = []byte(props.String)
		}
		e.UserID = userID.String
		e.AnonymousID = anonymousID.String
		events = append(events, e)
	}
	return events, rows.Err()
}

// DeleteByProject removes all events for a project.
func (s *EventStore) DeleteByProject(ctx context.Context, projectID string) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE project_id = ?`, projectID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Ensure interface compliance.
var _ ports.EventStore = (*EventStore)(nil)
