package schemastatic

import (
	"context"
	"errors"
	"testing"

	"github.com/relstore/relstore/domain/schema"
)

func TestBuiltinSchemasParse(t *testing.T) {
	source := New()
	ctx := context.Background()

	for _, typeID := range []string{TypeUser, TypeGroup, TypeFolder} {
		doc, err := source.Fetch(ctx, typeID)
		if err != nil {
			t.Fatalf("Fetch %s: %v", typeID, err)
		}
		if _, err := schema.Parse(doc); err != nil {
			t.Errorf("built-in schema %s does not parse: %v", typeID, err)
		}
	}
}

func TestGroupMembersIsReverse(t *testing.T) {
	source := New()
	doc, err := source.Fetch(context.Background(), TypeGroup)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	sch, err := schema.Parse(doc)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	members, ok := sch.Relationships["members"]
	if !ok {
		t.Fatal("group schema has no members relationship")
	}
	if members.Kind != schema.Reverse {
		t.Errorf("members.Kind = %v, want Reverse", members.Kind)
	}
	if members.TargetType != TypeUser || members.Path != "groups" {
		t.Errorf("members = %+v, want reverse of core/user.groups", members)
	}
}

func TestRegisterAndFallback(t *testing.T) {
	source := New()
	ctx := context.Background()

	source.Register("custom", []byte(`{"attributes": {"x": {"type": "string"}}}`))
	if _, err := source.Fetch(ctx, "custom"); err != nil {
		t.Errorf("Fetch registered: %v", err)
	}

	if _, err := source.Fetch(ctx, "unknown"); err == nil {
		t.Error("Fetch of unregistered type without fallback should fail")
	}

	fallback := fallbackSource{docs: map[string][]byte{"unknown": []byte(`{}`)}}
	source.WithFallback(fallback)
	doc, err := source.Fetch(ctx, "unknown")
	if err != nil {
		t.Fatalf("Fetch via fallback: %v", err)
	}
	if string(doc) != `{}` {
		t.Errorf("doc = %s", doc)
	}
}

type fallbackSource struct {
	docs map[string][]byte
}

func (s fallbackSource) Fetch(ctx context.Context, typeID string) ([]byte, error) {
	doc, ok := s.docs[typeID]
	if !ok {
		return nil, errors.New("not here either")
	}
	return doc, nil
}
