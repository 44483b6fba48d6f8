// Package app contains application services that orchestrate domain logic
// over the ports. Services hold no business rules of their own; those live
// in domain/.
package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/pulsekit/pulse/ports"
	"github.com/rs/zerolog"
)

// AccountService handles dashboard account registration and login.
type AccountService struct {
	users  ports.UserStore
	hasher ports.Hasher
	ids    ports.IDGenerator
	clock  ports.Clock
	logger zerolog.Logger
}

// NewAccountService creates a new account service.
func NewAccountService(users ports.UserStore, hasher ports.Hasher, ids ports.IDGenerator, clock ports.Clock, logger zerolog.Logger) *AccountService {
	return &AccountService{
		users:  users,
		hasher: hasher,
		ids:    ids,
		clock:  clock,
		logger: logger,
	}
}

// Register creates a new account with a hashed password.
func (s *AccountService) Register(ctx context.Context, email, name, password string) (ports.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return ports.User{}, fmt.Errorf("a valid email is required")
	}
	if len(password) < 8 {
		return ports.User{}, fmt.Errorf("password must be at least 8 characters")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return ports.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.clock.Now().UTC()
	u := ports.User{
		ID:           s.ids.New(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, u); err != nil {
		return ports.User{}, err
	}

	s.logger.Info().Str("user_id", u.ID).Str("email", u.Email).Msg("account registered")
	return u, nil
}

// Authenticate verifies credentials and returns the account. The error is
// identical for unknown email and wrong password.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (ports.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return ports.User{}, fmt.Errorf("invalid email or password")
	}
	if !s.hasher.Compare(u.PasswordHash, password) {
		return ports.User{}, fmt.Errorf("invalid email or password")
	}
	return u, nil
}

// Get returns an account by ID.
func (s *AccountService) Get(ctx context.Context, id string) (ports.User, error) {
	return s.users.Get(ctx, id)
}

// List returns accounts with pagination.
func (s *AccountService) List(ctx context.Context, limit, offset int) ([]ports.User, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.users.List(ctx, limit, offset)
}
