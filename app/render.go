package app

import (
	"context"
	"sort"
	"time"

	"github.com/relstore/relstore/domain/resource"
	"github.com/relstore/relstore/domain/schema"
	"github.com/relstore/relstore/pkg/jsonapi"
)

// render produces the externally visible document for a canonical record:
// a self linkage, every stored relationship, and every reverse relationship
// computed against the persistence layer.
//
// Dangling linkages do not fail the document. The affected linkage is
// rendered with a dangling marker and the relationship name is listed in the
// document meta, so referential-integrity decay stays visible without
// breaking reads.
func (s *StoreService) render(ctx context.Context, rec resource.Record) (jsonapi.Resource, error) {
	sch, err := s.schemas.Get(ctx, rec.Type)
	if err != nil {
		return jsonapi.Resource{}, err
	}

	rels := make(map[string]jsonapi.Relationship, len(rec.Rels)+len(sch.Relationships)+1)
	rels["self"] = jsonapi.Relationship{
		Self: jsonapi.RelationshipHref(rec.ID, "self"),
		Data: jsonapi.Linkage{ID: rec.ID, Type: rec.Type, Href: jsonapi.ResourceHref(rec.ID)},
	}

	var dangling []string
	for name, value := range rec.Rels {
		block, broken, err := s.renderStored(ctx, rec.ID, name, value)
		if err != nil {
			return jsonapi.Resource{}, err
		}
		if broken {
			dangling = append(dangling, name)
		}
		rels[name] = block
	}

	for _, name := range sch.ReverseRels() {
		spec := sch.Relationships[name]
		block, err := s.renderReverse(ctx, rec.ID, name, spec)
		if err != nil {
			return jsonapi.Resource{}, err
		}
		rels[name] = block
	}

	sort.Strings(dangling)

	attrs := rec.Attrs
	if attrs == nil {
		attrs = map[string]any{}
	}

	return jsonapi.Resource{
		ID:            rec.ID,
		Type:          rec.Type,
		Attributes:    attrs,
		Relationships: rels,
		Meta: jsonapi.ResourceMeta{
			Created:      rec.Created.UTC().Format(time.RFC3339),
			LastModified: rec.LastModified.UTC().Format(time.RFC3339),
			Dangling:     dangling,
		},
	}, nil
}

// renderStored renders a to-one or to-many relationship block from its
// stored value. broken reports whether any linkage target has vanished.
func (s *StoreService) renderStored(ctx context.Context, id, name string, value resource.Value) (jsonapi.Relationship, bool, error) {
	block := jsonapi.Relationship{Self: jsonapi.RelationshipHref(id, name)}

	targets := value.Targets()
	var types map[string]string
	if len(targets) > 0 {
		var err error
		types, err = s.resources.TypesOf(ctx, targets)
		if err != nil {
			return jsonapi.Relationship{}, false, err
		}
	}

	broken := false
	linkage := func(target string) jsonapi.Linkage {
		typeID, ok := types[target]
		if !ok {
			broken = true
			if s.metrics != nil {
				s.metrics.DanglingLinkages.Inc()
			}
			return jsonapi.Linkage{ID: target, Meta: jsonapi.Meta{"dangling": true}}
		}
		return jsonapi.Linkage{ID: target, Type: typeID, Href: jsonapi.ResourceHref(target)}
	}

	if value.Kind == resource.ToOne {
		if value.One == nil {
			block.Data = nil // explicit null, not an error
			return block, false, nil
		}
		block.Data = linkage(*value.One)
		return block, broken, nil
	}

	linkages := make([]jsonapi.Linkage, 0, len(targets))
	for _, target := range targets {
		linkages = append(linkages, linkage(target))
	}
	block.Data = linkages
	return block, broken, nil
}

// renderReverse renders a computed relationship by scanning for resources
// of the target type whose relationship path contains id. Zero hits is an
// empty array, never an error.
func (s *StoreService) renderReverse(ctx context.Context, id, name string, spec schema.Rel) (jsonapi.Relationship, error) {
	if s.metrics != nil {
		s.metrics.ReverseQueries.Inc()
	}

	hits, err := s.resources.FindReferencing(ctx, spec.TargetType, spec.Path, id)
	if err != nil {
		return jsonapi.Relationship{}, err
	}

	linkages := make([]jsonapi.Linkage, 0, len(hits))
	for _, hit := range hits {
		linkages = append(linkages, jsonapi.Linkage{
			ID:   hit.ID,
			Type: hit.Type,
			Href: jsonapi.ResourceHref(hit.ID),
		})
	}

	return jsonapi.Relationship{
		Self: jsonapi.RelationshipHref(id, name),
		Data: linkages,
	}, nil
}

// renderRelationship renders a single relationship block by name: "self",
// a stored relationship, or a reverse relationship. A to-one block whose
// only target has vanished surfaces a DanglingReferenceError.
func (s *StoreService) renderRelationship(ctx context.Context, rec resource.Record, name string) (jsonapi.Relationship, error) {
	if name == "self" {
		return jsonapi.Relationship{
			Self: jsonapi.RelationshipHref(rec.ID, "self"),
			Data: jsonapi.Linkage{ID: rec.ID, Type: rec.Type, Href: jsonapi.ResourceHref(rec.ID)},
		}, nil
	}

	if value, ok := rec.Rels[name]; ok {
		block, broken, err := s.renderStored(ctx, rec.ID, name, value)
		if err != nil {
			return jsonapi.Relationship{}, err
		}
		if broken && value.Kind == resource.ToOne {
			return jsonapi.Relationship{}, &DanglingReferenceError{ID: rec.ID, Rel: name, Target: *value.One}
		}
		return block, nil
	}

	sch, err := s.schemas.Get(ctx, rec.Type)
	if err != nil {
		return jsonapi.Relationship{}, err
	}
	if spec, ok := sch.Relationships[name]; ok && spec.Kind == schema.Reverse {
		return s.renderReverse(ctx, rec.ID, name, spec)
	}

	return jsonapi.Relationship{}, &RelationshipNotFoundError{ID: rec.ID, Rel: name}
}
