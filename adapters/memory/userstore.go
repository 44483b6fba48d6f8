// Package memory provides in-memory implementations for testing.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/pulsekit/pulse/ports"
)

// ErrNotFound is returned when an entity is not found.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a unique constraint is violated.
var ErrDuplicate = errors.New("already exists")

// UserStore is an in-memory implementation of ports.UserStore.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]ports.User // by ID
}

// NewUserStore creates a new in-memory user store.
func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]ports.User)}
}

// Get retrieves a user by ID.
func (s *UserStore) Get(ctx context.Context, id string) (ports.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return ports.User{}, ErrNotFound
	}
	return u, nil
}

// GetByEmail retrieves a user by email.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (ports.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return ports.User{}, ErrNotFound
}

// Create stores a new user.
func (s *UserStore) Create(ctx context.Context, u ports.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[u.ID]; ok {
		return ErrDuplicate
	}
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return ErrDuplicate
		}
	}
	s.users[u.ID] = u
	return nil
}

// Update modifies an existing user.
func (s *UserStore) Update(ctx context.Context, u ports.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[u.ID]; !ok {
		return ErrNotFound
	}
	s.users[u.ID] = u
	return nil
}

// List returns users with pagination, newest first.
func (s *UserStore) List(ctx context.Context, limit, offset int) ([]ports.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]ports.User, 0, len(s.users))
	for _, u := range s.users {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	return paginate(all, limit, offset), nil
}

// Count returns total user count.
func (s *UserStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users), nil
}

// Delete removes a user.
func (s *UserStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// Ensure interface compliance.
var _ ports.UserStore = (*UserStore)(nil)
