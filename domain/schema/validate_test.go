package schema

import (
	"strings"
	"testing"
)

func intPtr(i int) *int          { return &i }
func floatPtr(f float64) *float64 { return &f }

func TestAttr_Validate(t *testing.T) {
	tests := []struct {
		name    string
		attr    Attr
		value   any
		wantErr string
	}{
		{"string ok", Attr{Type: "string"}, "hello", ""},
		{"string wrong type", Attr{Type: "string"}, 42.0, "expected string"},
		{"string null", Attr{Type: "string"}, nil, "expected string, got null"},
		{"min length", Attr{Type: "string", MinLength: intPtr(3)}, "ab", "minimum length"},
		{"max length", Attr{Type: "string", MaxLength: intPtr(3)}, "abcd", "maximum length"},
		{"pattern ok", Attr{Type: "string", Pattern: "^[a-z]+$"}, "abc", ""},
		{"pattern fail", Attr{Type: "string", Pattern: "^[a-z]+$"}, "ABC", "does not match pattern"},
		{"email ok", Attr{Type: "string", Format: "email"}, "a@example.org", ""},
		{"email bad", Attr{Type: "string", Format: "email"}, "not-an-email", "email"},
		{"uuid ok", Attr{Type: "string", Format: "uuid"}, "00000000-0000-0000-0000-000000000001", ""},
		{"uuid bad", Attr{Type: "string", Format: "uuid"}, "nope", "UUID"},
		{"date-time ok", Attr{Type: "string", Format: "date-time"}, "2024-01-02T15:04:05Z", ""},
		{"date-time bad", Attr{Type: "string", Format: "date-time"}, "yesterday", "RFC 3339"},
		{"unknown format ignored", Attr{Type: "string", Format: "hostname"}, "whatever", ""},
		{"integer ok", Attr{Type: "integer"}, 42.0, ""},
		{"integer fractional", Attr{Type: "integer"}, 1.5, "non-integral"},
		{"integer wrong type", Attr{Type: "integer"}, "42", "expected integer"},
		{"number ok", Attr{Type: "number"}, 1.5, ""},
		{"number minimum", Attr{Type: "number", Minimum: floatPtr(0)}, -1.0, "below minimum"},
		{"number maximum", Attr{Type: "number", Maximum: floatPtr(10)}, 11.0, "above maximum"},
		{"boolean ok", Attr{Type: "boolean"}, true, ""},
		{"boolean wrong type", Attr{Type: "boolean"}, "true", "expected boolean"},
		{"enum ok", Attr{Type: "string", Enum: []any{"red", "blue"}}, "red", ""},
		{"enum fail", Attr{Type: "string", Enum: []any{"red", "blue"}}, "green", "not in enum"},
		{"array ok", Attr{Type: "array", Items: &Attr{Type: "string"}}, []any{"a", "b"}, ""},
		{"array bad item", Attr{Type: "array", Items: &Attr{Type: "string"}}, []any{"a", 2.0}, "item 1"},
		{"array wrong type", Attr{Type: "array"}, "nope", "expected array"},
		{"object ok", Attr{Type: "object", Properties: map[string]*Attr{"n": {Type: "integer"}}}, map[string]any{"n": 3.0}, ""},
		{"object bad property", Attr{Type: "object", Properties: map[string]*Attr{"n": {Type: "integer"}}}, map[string]any{"n": "x"}, `property "n"`},
		{"object wrong type", Attr{Type: "object"}, []any{}, "expected object"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.attr.Validate(tt.value)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}
