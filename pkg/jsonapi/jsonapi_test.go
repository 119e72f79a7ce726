package jsonapi

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestLinkage_Marshal(t *testing.T) {
	l := Linkage{ID: "abc", Type: "core/folder", Href: ResourceHref("abc")}
	out, err := json.Marshal(l)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"id":"abc","type":"core/folder","href":"/api/store/resources/abc"}`
	if string(out) != want {
		t.Errorf("got %s, want %s", out, want)
	}
}

func TestRelationship_NullData(t *testing.T) {
	rel := Relationship{Self: RelationshipHref("a", "owner"), Data: nil}
	out, err := json.Marshal(rel)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(out), `"data":null`) {
		t.Errorf("unset to-one must serialize data as explicit null, got %s", out)
	}
}

func TestRelationshipInput_Refs(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantN    int
		wantMany bool
		wantErr  bool
	}{
		{"single", `{"id": "a", "type": "t"}`, 1, false, false},
		{"array", `[{"id": "a"}, {"id": "b"}]`, 2, true, false},
		{"empty array", `[]`, 0, true, false},
		{"null", `null`, 0, false, false},
		{"missing id", `{"type": "t"}`, 0, false, true},
		{"missing id in array", `[{"id": "a"}, {}]`, 0, true, true},
		{"garbage", `"nope"`, 0, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			refs, isMany, err := RelationshipInput{Data: json.RawMessage(tt.raw)}.Refs()
			if tt.wantErr {
				if err == nil {
					t.Fatal("Refs() succeeded, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Refs() error: %v", err)
			}
			if len(refs) != tt.wantN {
				t.Errorf("refs = %d, want %d", len(refs), tt.wantN)
			}
			if isMany != tt.wantMany {
				t.Errorf("isMany = %v, want %v", isMany, tt.wantMany)
			}
		})
	}
}

func TestDecodeSubmission(t *testing.T) {
	sub, err := DecodeSubmission([]byte(`{"data": {"type": "core/folder", "attributes": {"name": "x"}}}`), true)
	if err != nil {
		t.Fatalf("DecodeSubmission() error: %v", err)
	}
	if sub.Data.Type != "core/folder" {
		t.Errorf("type = %q", sub.Data.Type)
	}

	if _, err := DecodeSubmission([]byte(`{"data": {"attributes": {}}}`), true); err == nil {
		t.Error("missing type should fail when required")
	}
	if _, err := DecodeSubmission([]byte(`{"data": {"attributes": {}}}`), false); err != nil {
		t.Errorf("missing type should pass for updates: %v", err)
	}
	if _, err := DecodeSubmission([]byte(`{`), true); err == nil {
		t.Error("malformed JSON should fail")
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, ErrValidation("unknown-attribute", "attributes/bogus", "unknown attribute"))

	if rec.Code != 400 {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != ContentType {
		t.Errorf("content type = %q, want %q", ct, ContentType)
	}

	var doc ErrorDocument
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(doc.Errors) != 1 {
		t.Fatalf("errors = %d, want 1", len(doc.Errors))
	}
	e := doc.Errors[0]
	if e.Code != "unknown-attribute" {
		t.Errorf("code = %q", e.Code)
	}
	if e.Source == nil || e.Source.Pointer != "/data/attributes/bogus" {
		t.Errorf("pointer = %+v", e.Source)
	}
}

func TestWriteError_Empty(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec)
	if rec.Code != 500 {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}
