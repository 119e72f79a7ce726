// Package schema provides the type-level contract for resources: attribute
// shapes and relationship definitions. Relationship kinds are resolved once,
// at parse time, into a closed variant; nothing downstream re-interprets the
// raw schema document.
package schema

// RelKind is the closed set of relationship kinds.
type RelKind int

const (
	// ToOne holds a single target id, or nothing (unset).
	ToOne RelKind = iota
	// ToMany holds a set of target ids.
	ToMany
	// Reverse is computed on read: every resource of TargetType whose
	// relationship Path contains the current resource's id. Never stored,
	// never writable.
	Reverse
)

// String returns the wire name of the kind.
func (k RelKind) String() string {
	switch k {
	case ToOne:
		return "to-one"
	case ToMany:
		return "to-many"
	case Reverse:
		return "reverse"
	}
	return "unknown"
}

// Rel describes one relationship. For ToOne/ToMany, Targets restricts the
// allowed target types (nil means unrestricted). For Reverse, TargetType and
// Path identify the relationship being reversed.
type Rel struct {
	Kind       RelKind
	Targets    []string
	TargetType string
	Path       string
}

// AllowsType reports whether typeID is an allowed target type.
func (r Rel) AllowsType(typeID string) bool {
	if r.Targets == nil {
		return true
	}
	for _, t := range r.Targets {
		if t == typeID {
			return true
		}
	}
	return false
}

// Schema is the read-only contract for one resource type.
type Schema struct {
	Attributes    map[string]Attr
	Relationships map[string]Rel
}

// Attr constrains one attribute value. Modeled after JSON Schema's scalar
// vocabulary; nested arrays and objects recurse through Items and Properties.
type Attr struct {
	Type       string           // "string", "integer", "number", "boolean", "array", "object"
	Format     string           // optional: "email", "uri", "uuid", "date-time"
	Enum       []any            // optional: closed value set
	Pattern    string           // optional: regexp for strings
	MinLength  *int             // optional: strings
	MaxLength  *int             // optional: strings
	Minimum    *float64         // optional: numbers
	Maximum    *float64         // optional: numbers
	Items      *Attr            // arrays: element shape
	Properties map[string]*Attr // objects: known property shapes
}

// Stored reports whether name is a declared to-one or to-many relationship.
func (s *Schema) Stored(name string) (Rel, bool) {
	r, ok := s.Relationships[name]
	if !ok || r.Kind == Reverse {
		return Rel{}, false
	}
	return r, true
}

// ReverseRels returns the names of all reverse relationships.
func (s *Schema) ReverseRels() []string {
	var names []string
	for name, r := range s.Relationships {
		if r.Kind == Reverse {
			names = append(names, name)
		}
	}
	return names
}
