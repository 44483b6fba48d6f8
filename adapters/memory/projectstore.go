package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/pulsekit/pulse/domain/project"
	"github.com/pulsekit/pulse/ports"
)

// ProjectStore is an in-memory implementation of ports.ProjectStore.
type ProjectStore struct {
	mu       sync.RWMutex
	projects map[string]project.Project // by ID
	events   *EventStore                // for delete cascade, may be nil
}

// NewProjectStore creates a new in-memory project store. events may be nil
// when cascade behavior is not under test.
func NewProjectStore(events *EventStore) *ProjectStore {
	return &ProjectStore{
		projects: make(map[string]project.Project),
		events:   events,
	}
}

// Get retrieves a project by ID.
func (s *ProjectStore) Get(ctx context.Context, id string) (project.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.projects[id]
	if !ok {
		return project.Project{}, ErrNotFound
	}
	return p, nil
}

// GetByTrackingID retrieves a project by its tracking token.
func (s *ProjectStore) GetByTrackingID(ctx context.Context, trackingID string) (project.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.projects {
		if p.TrackingID == trackingID {
			return p, nil
		}
	}
	return project.Project{}, ErrNotFound
}

// ListByUser returns all projects owned by a user, newest first.
func (s *ProjectStore) ListByUser(ctx context.Context, userID string) ([]project.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []project.Project
	for _, p := range s.projects {
		if p.UserID == userID {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

// List returns projects with pagination, newest first.
func (s *ProjectStore) List(ctx context.Context, limit, offset int) ([]project.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]project.Project, 0, len(s.projects))
	for _, p := range s.projects {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return paginate(all, limit, offset), nil
}

// Create stores a new project.
func (s *ProjectStore) Create(ctx context.Context, p project.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[p.ID]; ok {
		return ErrDuplicate
	}
	for _, existing := range s.projects {
		if existing.TrackingID == p.TrackingID {
			return ErrDuplicate
		}
	}
	s.projects[p.ID] = p
	return nil
}

// Update modifies a project's name and description.
func (s *ProjectStore) Update(ctx context.Context, p project.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.projects[p.ID]
	if !ok {
		return ErrNotFound
	}
	existing.Name = p.Name
	existing.Description = p.Description
	s.projects[p.ID] = existing
	return nil
}

// Delete removes a project and its events.
func (s *ProjectStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[id]; !ok {
		return ErrNotFound
	}
	delete(s.projects, id)

	if s.events != nil {
		s.events.DeleteByProject(ctx, id)
	}
	return nil
}

// Count returns total project count.
func (s *ProjectStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.projects), nil
}

// Ensure interface compliance.
var _ ports.ProjectStore = (*ProjectStore)(nil)
