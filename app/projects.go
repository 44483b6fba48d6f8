package app

import (
	"context"
	"fmt"

	"github.com/pulsekit/pulse/domain/project"
	"github.com/pulsekit/pulse/ports"
	"github.com/rs/zerolog"
)

// ErrForbidden is returned when a user acts on a project they do not own.
var ErrForbidden = fmt.Errorf("forbidden")

// ProjectService handles project lifecycle and ownership checks.
type ProjectService struct {
	projects ports.ProjectStore
	events   ports.EventStore
	ids      ports.IDGenerator
	clock    ports.Clock
	logger   zerolog.Logger
}

// NewProjectService creates a new project service.
func NewProjectService(projects ports.ProjectStore, events ports.EventStore, ids ports.IDGenerator, clock ports.Clock, logger zerolog.Logger) *ProjectService {
	return &ProjectService{
		projects: projects,
		events:   events,
		ids:      ids,
		clock:    clock,
		logger:   logger,
	}
}

// Create registers a new project for a user and mints its tracking token.
func (s *ProjectService) Create(ctx context.Context, userID, name, description string) (project.Project, error) {
	p := project.New(s.ids.New(), name, description, s.ids.New(), userID, s.clock.Now())
	if err := p.Validate(); err != nil {
		return project.Project{}, err
	}

	if err := s.projects.Create(ctx, p); err != nil {
		return project.Project{}, err
	}

	s.logger.Info().Str("project_id", p.ID).Str("user_id", userID).Str("name", p.Name).Msg("project created")
	return p, nil
}

// GetOwned returns a project after verifying ownership.
func (s *ProjectService) GetOwned(ctx context.Context, userID, projectID string) (project.Project, error) {
	p, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return project.Project{}, err
	}
	if p.UserID != userID {
		return project.Project{}, ErrForbidden
	}
	return p, nil
}

// List returns all projects owned by a user.
func (s *ProjectService) List(ctx context.Context, userID string) ([]project.Project, error) {
	return s.projects.ListByUser(ctx, userID)
}

// Update renames a project. The tracking token never changes.
func (s *ProjectService) Update(ctx context.Context, userID, projectID, name, description string) (project.Project, error) {
	p, err := s.GetOwned(ctx, userID, projectID)
	if err != nil {
		return project.Project{}, err
	}

	updated := project.New(p.ID, name, description, p.TrackingID, p.UserID, p.CreatedAt)
	if err := updated.Validate(); err != nil {
		return project.Project{}, err
	}
	if err := s.projects.Update(ctx, updated); err != nil {
		return project.Project{}, err
	}
	return updated, nil
}

// Delete removes a project and all of its events.
func (s *ProjectService) Delete(ctx context.Context, userID, projectID string) error {
	p, err := s.GetOwned(ctx, userID, projectID)
	if err != nil {
		return err
	}

	if err := s.projects.Delete(ctx, p.ID); err != nil {
		return err
	}

	s.logger.Info().Str("project_id", p.ID).Str("user_id", userID).Msg("project deleted")
	return nil
}
