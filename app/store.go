// Package app provides the store services: sanitization of submitted data
// against per-type schemas, rendering of canonical records into linked
// documents, and orchestration of create/read/update/delete plus
// relationship sub-operations.
package app

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/relstore/relstore/adapters/metrics"
	"github.com/relstore/relstore/domain/resource"
	"github.com/relstore/relstore/domain/schema"
	"github.com/relstore/relstore/pkg/jsonapi"
	"github.com/relstore/relstore/ports"
)

// StoreService orchestrates resource operations. All operations are
// independently schedulable; the only in-process coordination is the type
// cache's fetch-once guarantee. Concurrent updates to the same resource id
// are last-writer-wins at the persistence layer.
type StoreService struct {
	resources ports.ResourceStore
	schemas   *TypeCache
	clock     ports.Clock
	ids       ports.IDGenerator
	logger    zerolog.Logger
	metrics   *metrics.Collector
}

// Deps contains dependencies for the store service.
type Deps struct {
	Resources ports.ResourceStore
	Schemas   *TypeCache
	Clock     ports.Clock
	IDs       ports.IDGenerator
	Logger    zerolog.Logger
	Metrics   *metrics.Collector // optional
}

// NewStoreService creates a new store service.
func NewStoreService(d Deps) *StoreService {
	return &StoreService{
		resources: d.Resources,
		schemas:   d.Schemas,
		clock:     d.Clock,
		ids:       d.IDs,
		logger:    d.Logger,
		metrics:   d.Metrics,
	}
}

// Create sanitizes the submission, assigns an id and timestamps, and
// persists the canonical record. Nothing is persisted when sanitization
// fails. Returns the new resource id.
func (s *StoreService) Create(ctx context.Context, sub jsonapi.Submission) (string, error) {
	done := s.observe("create")

	sch, err := s.schemas.Get(ctx, sub.Data.Type)
	if err != nil {
		return "", done(err)
	}

	attrs, rels, err := s.sanitizeCreate(ctx, sub.Data, sch)
	if err != nil {
		return "", done(err)
	}

	now := s.clock.Now().UTC().Truncate(time.Second)
	rec := resource.Record{
		ID:           s.ids.New(),
		Type:         sub.Data.Type,
		Attrs:        attrs,
		Rels:         rels,
		Created:      now,
		LastModified: now,
	}

	if err := s.resources.Insert(ctx, rec); err != nil {
		return "", done(err)
	}

	s.logger.Debug().Str("id", rec.ID).Str("type", rec.Type).Msg("resource created")
	return rec.ID, done(nil)
}

// Get retrieves a resource and renders its full document.
func (s *StoreService) Get(ctx context.Context, id string) (jsonapi.Resource, error) {
	done := s.observe("get")

	rec, err := s.fetch(ctx, id)
	if err != nil {
		return jsonapi.Resource{}, done(err)
	}

	doc, err := s.render(ctx, rec)
	return doc, done(err)
}

// Update applies a partial update: only fields present in the submission
// are re-sanitized and replaced; everything else is left untouched.
// Refreshes last-modified on success.
func (s *StoreService) Update(ctx context.Context, id string, sub jsonapi.Submission) error {
	done := s.observe("update")

	rec, err := s.fetch(ctx, id)
	if err != nil {
		return done(err)
	}

	sch, err := s.schemas.Get(ctx, rec.Type)
	if err != nil {
		return done(err)
	}

	attrs, rels, err := s.sanitizeUpdate(ctx, sub.Data, sch)
	if err != nil {
		return done(err)
	}
	if len(attrs) == 0 && len(rels) == 0 {
		return done(nil)
	}

	err = s.applyFields(ctx, id, attrs, rels)
	if err == nil {
		s.logger.Debug().Str("id", id).Msg("resource updated")
	}
	return done(err)
}

// Remove hard-deletes a resource. Relationships in other resources that
// pointed at it become dangling; they are surfaced at render time, never
// cleaned eagerly.
func (s *StoreService) Remove(ctx context.Context, id string) error {
	done := s.observe("remove")

	if err := s.resources.Delete(ctx, id); err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return done(&NotFoundError{ID: id})
		}
		return done(err)
	}

	s.logger.Debug().Str("id", id).Msg("resource removed")
	return done(nil)
}

// RelGet renders a single relationship block without rendering the whole
// document.
func (s *StoreService) RelGet(ctx context.Context, id, name string) (jsonapi.Relationship, error) {
	done := s.observe("rel_get")

	rec, err := s.fetch(ctx, id)
	if err != nil {
		return jsonapi.Relationship{}, done(err)
	}

	block, err := s.renderRelationship(ctx, rec, name)
	return block, done(err)
}

// RelReplace fully replaces the value of a to-one or to-many relationship.
// Reverse relationship names are read-only.
func (s *StoreService) RelReplace(ctx context.Context, id, name string, input jsonapi.RelationshipInput) error {
	done := s.observe("rel_replace")

	rec, err := s.fetch(ctx, id)
	if err != nil {
		return done(err)
	}

	spec, err := s.writableRel(ctx, rec.Type, name)
	if err != nil {
		return done(err)
	}

	value, err := s.sanitizeRelationship(ctx, name, spec, input)
	if err != nil {
		return done(err)
	}

	return done(s.applyFields(ctx, id, nil, map[string]resource.Value{name: value}))
}

// RelAppend appends targets to a to-many relationship with set semantics:
// appending an already-present target does not grow the set. To-one and
// reverse relationships reject appends.
func (s *StoreService) RelAppend(ctx context.Context, id, name string, input jsonapi.RelationshipInput) error {
	done := s.observe("rel_append")

	rec, err := s.fetch(ctx, id)
	if err != nil {
		return done(err)
	}

	spec, err := s.writableRel(ctx, rec.Type, name)
	if err != nil {
		return done(err)
	}
	if spec.Kind != schema.ToMany {
		return done(validationErr(CodeArityMismatch, "relationships/"+name, "only to-many relationships support append"))
	}

	value, err := s.sanitizeRelationship(ctx, name, spec, input)
	if err != nil {
		return done(err)
	}

	merged := rec.Rels[name].Union(value.Many)
	return done(s.applyFields(ctx, id, nil, map[string]resource.Value{name: merged}))
}

// fetch retrieves a record, mapping the store's sentinel to NotFoundError.
func (s *StoreService) fetch(ctx context.Context, id string) (resource.Record, error) {
	rec, err := s.resources.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return resource.Record{}, &NotFoundError{ID: id}
		}
		return resource.Record{}, err
	}
	return rec, nil
}

// writableRel resolves a relationship name to a stored, writable spec.
func (s *StoreService) writableRel(ctx context.Context, typeID, name string) (schema.Rel, error) {
	sch, err := s.schemas.Get(ctx, typeID)
	if err != nil {
		return schema.Rel{}, err
	}
	spec, ok := sch.Relationships[name]
	if !ok {
		return schema.Rel{}, validationErr(CodeUnknownRelationship, "relationships/"+name, "unknown relationship %q", name)
	}
	if spec.Kind == schema.Reverse {
		return schema.Rel{}, validationErr(CodeReadOnlyRelationship, "relationships/"+name, "relationship %q is computed and read-only", name)
	}
	return spec, nil
}

func (s *StoreService) applyFields(ctx context.Context, id string, attrs map[string]any, rels map[string]resource.Value) error {
	now := s.clock.Now().UTC().Truncate(time.Second)
	if err := s.resources.UpdateFields(ctx, id, attrs, rels, now); err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return &NotFoundError{ID: id}
		}
		return err
	}
	return nil
}

// observe starts timing an operation and returns a closure that records the
// outcome and passes the error through.
func (s *StoreService) observe(op string) func(error) error {
	start := time.Now()
	return func(err error) error {
		if s.metrics != nil {
			outcome := "ok"
			if err != nil {
				outcome = "error"
			}
			s.metrics.OpsTotal.WithLabelValues(op, outcome).Inc()
			s.metrics.OpDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
		}
		return err
	}
}
