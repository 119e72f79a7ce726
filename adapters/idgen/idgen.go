// Package idgen provides resource id generation implementations.
package idgen

import (
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/relstore/relstore/ports"
)

// UUID generates UUIDs. Resource ids share a single id space across all
// types, so uniqueness must be global.
type UUID struct{}

// New generates a new UUID v4.
func (UUID) New() string {
	return uuid.New().String()
}

// Ensure interface compliance.
var _ ports.IDGenerator = UUID{}

// Sequential generates sequential ids (for testing).
type Sequential struct {
	prefix  string
	counter uint64
}

// NewSequential creates a sequential id generator.
func NewSequential(prefix string) *Sequential {
	return &Sequential{prefix: prefix}
}

// New generates the next sequential id.
func (s *Sequential) New() string {
	n := atomic.AddUint64(&s.counter, 1)
	return s.prefix + uitoa(n)
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
