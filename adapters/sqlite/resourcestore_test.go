package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/relstore/relstore/domain/resource"
	"github.com/relstore/relstore/ports"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

func TestResourceStoreRoundtrip(t *testing.T) {
	store := NewResourceStore(testDB(t))
	ctx := context.Background()
	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	rec := resource.Record{
		ID:    "r1",
		Type:  "core/folder",
		Attrs: map[string]any{"name": "docs"},
		Rels: map[string]resource.Value{
			"children": resource.ManyOf("a", "b"),
		},
		Created:      now,
		LastModified: now,
	}
	if err := store.Insert(ctx, rec); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	got, err := store.Get(ctx, "r1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Type != "core/folder" {
		t.Errorf("Type = %q, want core/folder", got.Type)
	}
	if got.Attrs["name"] != "docs" {
		t.Errorf("Attrs[name] = %v, want docs", got.Attrs["name"])
	}
	if v := got.Rels["children"]; len(v.Many) != 2 || v.Many[0] != "a" || v.Many[1] != "b" {
		t.Errorf("Rels[children] = %+v, want [a b]", v)
	}
	if !got.Created.Equal(now) {
		t.Errorf("Created = %v, want %v", got.Created, now)
	}
}

func TestResourceStoreGetMissing(t *testing.T) {
	store := NewResourceStore(testDB(t))
	_, err := store.Get(context.Background(), "nope")
	if !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("Get missing: err = %v, want ErrNotFound", err)
	}
}

func TestResourceStoreTypesOf(t *testing.T) {
	store := NewResourceStore(testDB(t))
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	for _, rec := range []resource.Record{
		{ID: "u1", Type: "core/user", Created: now, LastModified: now},
		{ID: "g1", Type: "core/group", Created: now, LastModified: now},
	} {
		if err := store.Insert(ctx, rec); err != nil {
			t.Fatalf("Insert %s: %v", rec.ID, err)
		}
	}

	types, err := store.TypesOf(ctx, []string{"u1", "g1", "missing"})
	if err != nil {
		t.Fatalf("TypesOf: %v", err)
	}
	if len(types) != 2 {
		t.Fatalf("TypesOf returned %d entries, want 2", len(types))
	}
	if types["u1"] != "core/user" || types["g1"] != "core/group" {
		t.Errorf("TypesOf = %v", types)
	}
	if _, ok := types["missing"]; ok {
		t.Error("TypesOf should omit unknown ids")
	}

	empty, err := store.TypesOf(ctx, nil)
	if err != nil {
		t.Fatalf("TypesOf(nil): %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("TypesOf(nil) = %v, want empty", empty)
	}
}

func TestResourceStoreUpdateFields(t *testing.T) {
	store := NewResourceStore(testDB(t))
	ctx := context.Background()
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	rec := resource.Record{
		ID:    "r1",
		Type:  "core/user",
		Attrs: map[string]any{"name": "ada", "email": "ada@example.org"},
		Rels: map[string]resource.Value{
			"groups": resource.ManyOf("g1"),
		},
		Created:      created,
		LastModified: created,
	}
	if err := store.Insert(ctx, rec); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	modified := created.Add(time.Hour)
	err := store.UpdateFields(ctx, "r1",
		map[string]any{"name": "ada lovelace"},
		map[string]resource.Value{"groups": resource.ManyOf("g1", "g2")},
		modified)
	if err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}

	got, err := store.Get(ctx, "r1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Attrs["name"] != "ada lovelace" {
		t.Errorf("name = %v, want ada lovelace", got.Attrs["name"])
	}
	if got.Attrs["email"] != "ada@example.org" {
		t.Error("untouched attribute should survive a partial update")
	}
	if v := got.Rels["groups"]; len(v.Many) != 2 {
		t.Errorf("groups = %+v, want two members", v)
	}
	if !got.Created.Equal(created) {
		t.Error("Created must not change on update")
	}
	if !got.LastModified.Equal(modified) {
		t.Errorf("LastModified = %v, want %v", got.LastModified, modified)
	}

	err = store.UpdateFields(ctx, "missing", map[string]any{"x": 1}, nil, modified)
	if !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("UpdateFields missing: err = %v, want ErrNotFound", err)
	}
}

func TestResourceStoreDelete(t *testing.T) {
	store := NewResourceStore(testDB(t))
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	if err := store.Insert(ctx, resource.Record{ID: "r1", Type: "t", Created: now, LastModified: now}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := store.Delete(ctx, "r1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, "r1"); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("Get after delete: err = %v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx, "r1"); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("Delete missing: err = %v, want ErrNotFound", err)
	}
}

func TestResourceStoreFindReferencing(t *testing.T) {
	store := NewResourceStore(testDB(t))
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	records := []resource.Record{
		{
			ID: "u1", Type: "core/user",
			Rels:    map[string]resource.Value{"groups": resource.ManyOf("g1", "g2")},
			Created: now, LastModified: now,
		},
		{
			ID: "u2", Type: "core/user",
			Rels:    map[string]resource.Value{"groups": resource.ManyOf("g2")},
			Created: now, LastModified: now,
		},
		{
			ID: "d1", Type: "note",
			Rels:    map[string]resource.Value{"folder": resource.OneOf("g1")},
			Created: now, LastModified: now,
		},
	}
	for _, rec := range records {
		if err := store.Insert(ctx, rec); err != nil {
			t.Fatalf("Insert %s: %v", rec.ID, err)
		}
	}

	refs, err := store.FindReferencing(ctx, "core/user", "groups", "g1")
	if err != nil {
		t.Fatalf("FindReferencing: %v", err)
	}
	if len(refs) != 1 || refs[0].ID != "u1" {
		t.Errorf("to-many match: refs = %+v, want [u1]", refs)
	}

	refs, err = store.FindReferencing(ctx, "core/user", "groups", "g2")
	if err != nil {
		t.Fatalf("FindReferencing: %v", err)
	}
	if len(refs) != 2 {
		t.Errorf("g2 referenced by %d users, want 2", len(refs))
	}

	refs, err = store.FindReferencing(ctx, "note", "folder", "g1")
	if err != nil {
		t.Fatalf("FindReferencing: %v", err)
	}
	if len(refs) != 1 || refs[0].ID != "d1" {
		t.Errorf("to-one match: refs = %+v, want [d1]", refs)
	}

	refs, err = store.FindReferencing(ctx, "core/user", "groups", "absent")
	if err != nil {
		t.Fatalf("FindReferencing: %v", err)
	}
	if len(refs) != 0 {
		t.Errorf("no matches expected, got %+v", refs)
	}
}

func TestHandleIndex(t *testing.T) {
	idx := NewHandleIndex(testDB(t))
	ctx := context.Background()

	if err := idx.Set(ctx, "ada", "u1"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	id, err := idx.Get(ctx, "ada")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if id != "u1" {
		t.Errorf("Get = %q, want u1", id)
	}

	if err := idx.Set(ctx, "ada", "u2"); err == nil {
		t.Error("claiming a taken handle should fail")
	}

	if _, err := idx.Get(ctx, "nobody"); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("Get missing: err = %v, want ErrNotFound", err)
	}
}
