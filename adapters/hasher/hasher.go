// Package hasher provides ports.Hasher implementations for dashboard
// account passwords.
package hasher

import (
	"github.com/pulsekit/pulse/ports"
	"golang.org/x/crypto/bcrypt"
)

// Bcrypt is the production hasher.
type Bcrypt struct {
	cost int
}

// NewBcrypt creates a bcrypt hasher. Costs outside bcrypt's valid range
// fall back to the default cost.
func NewBcrypt(cost int) *Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Bcrypt{cost: cost}
}

// Hash derives a salted hash from the plaintext password.
func (h *Bcrypt) Hash(plaintext string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
}

// Compare reports whether plaintext matches the stored hash.
func (h *Bcrypt) Compare(hash []byte, plaintext string) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(plaintext)) == nil
}

// Ensure interface compliance.
var _ ports.Hasher = (*Bcrypt)(nil)

// Fake stores passwords as-is so tests skip the bcrypt work. Never
// wired outside test fixtures.
type Fake struct{}

// Hash returns the plaintext unchanged.
func (Fake) Hash(plaintext string) ([]byte, error) {
	return []byte(plaintext), nil
}

// Compare is plain string equality.
func (Fake) Compare(hash []byte, plaintext string) bool {
	return string(hash) == plaintext
}

// Ensure interface compliance.
var _ ports.Hasher = Fake{}
