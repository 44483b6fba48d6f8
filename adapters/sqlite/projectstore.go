package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/pulsekit/pulse/domain/project"
	"github.com/pulsekit/pulse/ports"
)

// ProjectStore implements ports.ProjectStore using SQLite.
type ProjectStore struct {
	db *DB
}

// NewProjectStore creates a new SQLite project store.
func NewProjectStore(db *DB) *ProjectStore {
	return &ProjectStore{db: db}
}

// Get retrieves a project by ID.
func (s *ProjectStore) Get(ctx context.Context, id string) (project.Project, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, tracking_id, user_id, created_at
		FROM projects
		WHERE id = ?
	`, id)
	return scanProject(row)
}

// GetByTrackingID retrieves a project by its tracking token. This is the
// lookup on the hot ingestion path.
func (s *ProjectStore) GetByTrackingID(ctx context.Context, trackingID string) (project.Project, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, tracking_id, user_id, created_at
		FROM projects
		WHERE tracking_id = ?
	`, trackingID)
	return scanProject(row)
}

// ListByUser returns all projects owned by a user, newest first.
func (s *ProjectStore) ListByUser(ctx context.Context, userID string) ([]project.Project, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, tracking_id, user_id, created_at
		FROM projects
		WHERE user_id = ?
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProjects(rows)
}

// List returns projects with pagination.
func (s *ProjectStore) List(ctx context.Context, limit, offset int) ([]project.Project, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, tracking_id, user_id, created_at
		FROM projects
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProjects(rows)
}

// Create stores a new project.
func (s *ProjectStore) Create(ctx context.Context, p project.Project) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (id, name, description, tracking_id, user_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, p.ID, p.Name, p.Description, p.TrackingID, p.UserID, p.CreatedAt)

	if err != nil && isUniqueConstraintError(err) {
		return ErrDuplicate
	}
	return err
}

// Update modifies a project's name and description. The tracking token and
// owner are immutable.
func (s *ProjectStore) Update(ctx context.Context, p project.Project) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE projects
		SET name = ?, description = ?
		WHERE id = ?
	`, p.Name, p.Description, p.ID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a project. Its events go with it via cascade.
func (s *ProjectStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns total project count.
func (s *ProjectStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects`).Scan(&count)
	return count, err
}

func scanProject(row *sql.Row) (project.Project, error) {
	var p project.Project
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.TrackingID, &p.UserID, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return project.Project{}, ErrNotFound
	}
	if err != nil {
		return project.Project{}, err
	}
	return p, nil
}

func collectProjects(rows *sql.Rows) ([]project.Project, error) {
	var projects []project.Project
	for rows.Next() {
		var p project.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.TrackingID, &p.UserID, &p.CreatedAt); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// Ensure interface compliance.
var _ ports.ProjectStore = (*ProjectStore)(nil)
