// Package memory provides in-memory implementations of the persistence
// ports, used as test doubles and for single-process deployments.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/relstore/relstore/domain/resource"
	"github.com/relstore/relstore/ports"
)

// ResourceStore is an in-memory implementation of ports.ResourceStore.
type ResourceStore struct {
	mu      sync.RWMutex
	records map[string]resource.Record // by id
}

// NewResourceStore creates a new in-memory resource store.
func NewResourceStore() *ResourceStore {
	return &ResourceStore{records: make(map[string]resource.Record)}
}

// Get retrieves a record by id.
func (s *ResourceStore) Get(ctx context.Context, id string) (resource.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return resource.Record{}, ports.ErrNotFound
	}
	return rec.Clone(), nil
}

// TypesOf resolves the stored type of each id. Missing ids are absent from
// the result.
func (s *ResourceStore) TypesOf(ctx context.Context, ids []string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	types := make(map[string]string, len(ids))
	for _, id := range ids {
		if rec, ok := s.records[id]; ok {
			types[id] = rec.Type
		}
	}
	return types, nil
}

// Insert stores a new record.
func (s *ResourceStore) Insert(ctx context.Context, rec resource.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[rec.ID] = rec.Clone()
	return nil
}

// UpdateFields applies a partial update to an existing record.
func (s *ResourceStore) UpdateFields(ctx context.Context, id string, attrs map[string]any, rels map[string]resource.Value, modified time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return ports.ErrNotFound
	}

	rec = rec.Clone()
	if rec.Attrs == nil && len(attrs) > 0 {
		rec.Attrs = make(map[string]any, len(attrs))
	}
	for k, v := range attrs {
		rec.Attrs[k] = v
	}
	if rec.Rels == nil && len(rels) > 0 {
		rec.Rels = make(map[string]resource.Value, len(rels))
	}
	for k, v := range rels {
		rec.Rels[k] = v
	}
	rec.LastModified = modified

	s.records[id] = rec
	return nil
}

// Delete removes a record.
func (s *ResourceStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return ports.ErrNotFound
	}
	delete(s.records, id)
	return nil
}

// FindReferencing scans for records of type typeID whose relationship path
// contains target.
func (s *ResourceStore) FindReferencing(ctx context.Context, typeID, path, target string) ([]resource.Ref, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var hits []resource.Ref
	for _, rec := range s.records {
		if rec.Type != typeID {
			continue
		}
		if rec.Rels[path].Contains(target) {
			hits = append(hits, resource.Ref{ID: rec.ID, Type: rec.Type})
		}
	}
	return hits, nil
}

// Len returns the number of stored records (for tests).
func (s *ResourceStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Ensure interface compliance.
var _ ports.ResourceStore = (*ResourceStore)(nil)
