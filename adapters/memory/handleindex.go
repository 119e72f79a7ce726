package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/relstore/relstore/ports"
)

// HandleIndex is an in-memory implementation of ports.HandleIndex.
type HandleIndex struct {
	mu      sync.RWMutex
	handles map[string]string // handle -> resource id
}

// NewHandleIndex creates a new in-memory handle index.
func NewHandleIndex() *HandleIndex {
	return &HandleIndex{handles: make(map[string]string)}
}

// Set binds a handle to a resource id. Fails if the handle is taken.
func (s *HandleIndex) Set(ctx context.Context, handle, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.handles[handle]; exists {
		return fmt.Errorf("handle %q already taken", handle)
	}
	s.handles[handle] = id
	return nil
}

// Get resolves a handle to a resource id.
func (s *HandleIndex) Get(ctx context.Context, handle string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.handles[handle]
	if !ok {
		return "", ports.ErrNotFound
	}
	return id, nil
}

// Ensure interface compliance.
var _ ports.HandleIndex = (*HandleIndex)(nil)
