package app

import (
	"context"

	"github.com/relstore/relstore/domain/resource"
	"github.com/relstore/relstore/domain/schema"
	"github.com/relstore/relstore/pkg/jsonapi"
)

// sanitizeCreate converts submitted data into canonical attribute and
// relationship maps, enforcing the schema in two passes.
//
// Attribute pass: every declared attribute must be present and valid;
// leftover keys are unknown attributes. Relationship pass: absent to-one
// relationships become unset, absent to-many relationships become the empty
// set; leftover keys, including reverse relationship names, are unknown
// relationships.
func (s *StoreService) sanitizeCreate(ctx context.Context, data jsonapi.SubmissionData, sch *schema.Schema) (map[string]any, map[string]resource.Value, error) {
	attrs := make(map[string]any, len(sch.Attributes))
	consumedAttrs := make(map[string]bool, len(data.Attributes))
	for name, spec := range sch.Attributes {
		value, ok := data.Attributes[name]
		if !ok {
			return nil, nil, validationErr(CodeMissingAttribute, "attributes/"+name, "attribute %q not found", name)
		}
		if err := spec.Validate(value); err != nil {
			return nil, nil, validationErr(CodeMalformedAttribute, "attributes/"+name, "invalid attribute %q: %v", name, err)
		}
		attrs[name] = value
		consumedAttrs[name] = true
	}
	for name := range data.Attributes {
		if !consumedAttrs[name] {
			return nil, nil, validationErr(CodeUnknownAttribute, "attributes/"+name, "unknown attribute %q", name)
		}
	}

	rels := make(map[string]resource.Value, len(sch.Relationships))
	consumedRels := make(map[string]bool, len(data.Relationships))
	for name, spec := range sch.Relationships {
		if spec.Kind == schema.Reverse {
			continue
		}
		input, ok := data.Relationships[name]
		if !ok {
			if spec.Kind == schema.ToOne {
				rels[name] = resource.UnsetOne()
			} else {
				rels[name] = resource.ManyOf()
			}
			continue
		}
		value, err := s.sanitizeRelationship(ctx, name, spec, input)
		if err != nil {
			return nil, nil, err
		}
		rels[name] = value
		consumedRels[name] = true
	}
	for name := range data.Relationships {
		if !consumedRels[name] {
			return nil, nil, validationErr(CodeUnknownRelationship, "relationships/"+name, "unknown relationship %q", name)
		}
	}

	return attrs, rels, nil
}

// sanitizeUpdate validates only the fields present in the submission
// (partial merge). Reverse relationship names are rejected as read-only.
func (s *StoreService) sanitizeUpdate(ctx context.Context, data jsonapi.SubmissionData, sch *schema.Schema) (map[string]any, map[string]resource.Value, error) {
	var attrs map[string]any
	if len(data.Attributes) > 0 {
		attrs = make(map[string]any, len(data.Attributes))
	}
	for name, value := range data.Attributes {
		spec, ok := sch.Attributes[name]
		if !ok {
			return nil, nil, validationErr(CodeUnknownAttribute, "attributes/"+name, "unknown attribute %q", name)
		}
		if err := spec.Validate(value); err != nil {
			return nil, nil, validationErr(CodeMalformedAttribute, "attributes/"+name, "invalid attribute %q: %v", name, err)
		}
		attrs[name] = value
	}

	var rels map[string]resource.Value
	if len(data.Relationships) > 0 {
		rels = make(map[string]resource.Value, len(data.Relationships))
	}
	for name, input := range data.Relationships {
		spec, ok := sch.Relationships[name]
		if !ok {
			return nil, nil, validationErr(CodeUnknownRelationship, "relationships/"+name, "unknown relationship %q", name)
		}
		if spec.Kind == schema.Reverse {
			return nil, nil, validationErr(CodeReadOnlyRelationship, "relationships/"+name, "relationship %q is computed and read-only", name)
		}
		value, err := s.sanitizeRelationship(ctx, name, spec, input)
		if err != nil {
			return nil, nil, err
		}
		rels[name] = value
	}

	return attrs, rels, nil
}

// sanitizeRelationship validates one submitted relationship value against
// its declared arity and resolves every linkage.
func (s *StoreService) sanitizeRelationship(ctx context.Context, name string, spec schema.Rel, input jsonapi.RelationshipInput) (resource.Value, error) {
	field := "relationships/" + name

	refs, isMany, err := input.Refs()
	if err != nil {
		return resource.Value{}, validationErr(CodeMalformedRelationship, field, "invalid relationship object: %v", err)
	}

	switch spec.Kind {
	case schema.ToOne:
		if isMany {
			return resource.Value{}, validationErr(CodeArityMismatch, field, "relationship %q is to-one but an array was submitted", name)
		}
		if len(refs) == 0 {
			return resource.UnsetOne(), nil
		}
		ids, err := s.resolveLinkages(ctx, field, refs, spec)
		if err != nil {
			return resource.Value{}, err
		}
		return resource.OneOf(ids[0]), nil

	case schema.ToMany:
		if !isMany {
			return resource.Value{}, validationErr(CodeArityMismatch, field, "relationship %q is to-many and requires an array", name)
		}
		ids, err := s.resolveLinkages(ctx, field, refs, spec)
		if err != nil {
			return resource.Value{}, err
		}
		return resource.ManyOf(ids...), nil
	}

	// Reverse kinds are filtered out before this point.
	return resource.Value{}, validationErr(CodeReadOnlyRelationship, field, "relationship %q is computed and read-only", name)
}

// resolveLinkages verifies in one batched lookup that every linkage target
// exists, matches its type hint, and is of an allowed type.
func (s *StoreService) resolveLinkages(ctx context.Context, field string, refs []jsonapi.LinkageRef, spec schema.Rel) ([]string, error) {
	ids := make([]string, len(refs))
	for i, ref := range refs {
		ids[i] = ref.ID
	}

	types, err := s.resources.TypesOf(ctx, ids)
	if err != nil {
		return nil, err
	}

	for _, ref := range refs {
		actual, ok := types[ref.ID]
		if !ok {
			return nil, validationErr(CodeDanglingReference, field, "linked resource %s does not exist", ref.ID)
		}
		if ref.Type != "" && ref.Type != actual {
			return nil, validationErr(CodeTypeMismatch, field, "mismatched type for linked resource %s: given %q, actual %q", ref.ID, ref.Type, actual)
		}
		if !spec.AllowsType(actual) {
			return nil, validationErr(CodeTypeNotAllowed, field, "type %q is not allowed for linked resource %s", actual, ref.ID)
		}
	}

	return ids, nil
}
