package schema

import (
	"encoding/json"
	"fmt"
	"regexp"
)

// relNameRE restricts relationship names to what can appear in an URL path
// segment and a persistence field path.
var relNameRE = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

// wireSchema is the raw schema document shape.
type wireSchema struct {
	Attributes    map[string]wireAttr `json:"attributes"`
	Relationships map[string]wireRel  `json:"relationships"`
}

type wireAttr struct {
	Type       string               `json:"type"`
	Format     string               `json:"format,omitempty"`
	Enum       []any                `json:"enum,omitempty"`
	Pattern    string               `json:"pattern,omitempty"`
	MinLength  *int                 `json:"minLength,omitempty"`
	MaxLength  *int                 `json:"maxLength,omitempty"`
	Minimum    *float64             `json:"minimum,omitempty"`
	Maximum    *float64             `json:"maximum,omitempty"`
	Items      *wireAttr            `json:"items,omitempty"`
	Properties map[string]*wireAttr `json:"properties,omitempty"`
}

type wireRel struct {
	Arity   string       `json:"arity,omitempty"`
	Type    string       `json:"type,omitempty"`
	Targets []string     `json:"targets,omitempty"`
	Reverse *wireReverse `json:"reverse-of,omitempty"`
}

type wireReverse struct {
	Type string `json:"type"`
	Path string `json:"path"`
}

var validAttrTypes = map[string]bool{
	"string": true, "integer": true, "number": true,
	"boolean": true, "array": true, "object": true,
}

// Parse decodes and resolves a schema document. All shape errors are caught
// here; a successfully parsed Schema needs no further interpretation.
func Parse(raw []byte) (*Schema, error) {
	var w wireSchema
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("decode schema: %w", err)
	}
	if w.Attributes == nil && w.Relationships == nil {
		return nil, fmt.Errorf("schema declares neither attributes nor relationships")
	}

	s := &Schema{
		Attributes:    make(map[string]Attr, len(w.Attributes)),
		Relationships: make(map[string]Rel, len(w.Relationships)),
	}

	for name, wa := range w.Attributes {
		attr, err := parseAttr(&wa)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", name, err)
		}
		s.Attributes[name] = *attr
	}

	for name, wr := range w.Relationships {
		if !relNameRE.MatchString(name) {
			return nil, fmt.Errorf("relationship %q: invalid name", name)
		}
		rel, err := parseRel(wr)
		if err != nil {
			return nil, fmt.Errorf("relationship %q: %w", name, err)
		}
		s.Relationships[name] = rel
	}

	return s, nil
}

func parseAttr(w *wireAttr) (*Attr, error) {
	if !validAttrTypes[w.Type] {
		return nil, fmt.Errorf("unknown attribute type %q", w.Type)
	}
	if w.Pattern != "" {
		if _, err := regexp.Compile(w.Pattern); err != nil {
			return nil, fmt.Errorf("invalid pattern: %w", err)
		}
	}

	attr := &Attr{
		Type:      w.Type,
		Format:    w.Format,
		Enum:      w.Enum,
		Pattern:   w.Pattern,
		MinLength: w.MinLength,
		MaxLength: w.MaxLength,
		Minimum:   w.Minimum,
		Maximum:   w.Maximum,
	}

	if w.Items != nil {
		items, err := parseAttr(w.Items)
		if err != nil {
			return nil, fmt.Errorf("items: %w", err)
		}
		attr.Items = items
	}
	if w.Properties != nil {
		attr.Properties = make(map[string]*Attr, len(w.Properties))
		for k, p := range w.Properties {
			prop, err := parseAttr(p)
			if err != nil {
				return nil, fmt.Errorf("property %q: %w", k, err)
			}
			attr.Properties[k] = prop
		}
	}
	return attr, nil
}

func parseRel(w wireRel) (Rel, error) {
	if w.Reverse != nil {
		if w.Arity != "" || w.Type != "" || len(w.Targets) > 0 {
			return Rel{}, fmt.Errorf("reverse-of cannot be combined with arity or targets")
		}
		if w.Reverse.Type == "" || w.Reverse.Path == "" {
			return Rel{}, fmt.Errorf("reverse-of requires both type and path")
		}
		if !relNameRE.MatchString(w.Reverse.Path) {
			return Rel{}, fmt.Errorf("reverse-of path %q is not a valid relationship name", w.Reverse.Path)
		}
		return Rel{Kind: Reverse, TargetType: w.Reverse.Type, Path: w.Reverse.Path}, nil
	}

	var kind RelKind
	switch w.Arity {
	case "", "to-one":
		kind = ToOne
	case "to-many":
		kind = ToMany
	default:
		return Rel{}, fmt.Errorf("unknown arity %q", w.Arity)
	}

	// "type" is shorthand for a single-element target set.
	targets := w.Targets
	if w.Type != "" {
		if len(targets) > 0 {
			return Rel{}, fmt.Errorf("type and targets are mutually exclusive")
		}
		targets = []string{w.Type}
	}

	return Rel{Kind: kind, Targets: targets}, nil
}
