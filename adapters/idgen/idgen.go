// Package idgen provides ports.IDGenerator implementations. Events,
// projects, and users all get their IDs here.
package idgen

import (
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/pulsekit/pulse/ports"
)

// UUID generates random v4 UUIDs. This is the production generator.
type UUID struct{}

// New returns a fresh UUID string.
func (UUID) New() string {
	return uuid.New().String()
}

// Ensure interface compliance.
var _ ports.IDGenerator = UUID{}

// Sequential hands out prefix-1, prefix-2, ... so tests can assert on
// concrete IDs instead of matching UUIDs.
type Sequential struct {
	prefix  string
	counter uint64
}

// NewSequential creates a counting generator with the given prefix.
func NewSequential(prefix string) *Sequential {
	return &Sequential{prefix: prefix}
}

// New returns the next ID in sequence. Safe for concurrent use.
func (s *Sequential) New() string {
	n := atomic.AddUint64(&s.counter, 1)
	return s.prefix + uitoa(n)
}

// Reset restarts the sequence from 1.
func (s *Sequential) Reset() {
	atomic.StoreUint64(&s.counter, 0)
}

func uitoa(n uint64) string {
	if n == 0 {
		return "0"
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

// Ensure interface compliance.
var _ ports.IDGenerator = (*Sequential)(nil)
