// Package resource provides the canonical resource value types.
// This package has NO dependencies on I/O or external packages.
package resource

import "time"

// Ref is a linkage reference as submitted by a client: a target id with an
// optional type hint.
type Ref struct {
	ID   string `json:"id"`
	Type string `json:"type,omitempty"`
}

// Arity distinguishes the two stored relationship shapes.
type Arity int

const (
	ToOne Arity = iota
	ToMany
)

// String returns the wire name of the arity.
func (a Arity) String() string {
	if a == ToMany {
		return "to-many"
	}
	return "to-one"
}

// Value is the stored value of one relationship. A to-one value holds at most
// one target; an unset to-one holds none (there is no sentinel id). A to-many
// value holds a set of targets with no duplicates.
type Value struct {
	Kind Arity    `json:"kind"`
	One  *string  `json:"one,omitempty"`
	Many []string `json:"many,omitempty"`
}

// OneOf builds a to-one value pointing at target.
func OneOf(target string) Value {
	return Value{Kind: ToOne, One: &target}
}

// UnsetOne builds an unset to-one value.
func UnsetOne() Value {
	return Value{Kind: ToOne}
}

// ManyOf builds a to-many value from targets, removing duplicates while
// preserving first-seen order.
func ManyOf(targets ...string) Value {
	v := Value{Kind: ToMany, Many: make([]string, 0, len(targets))}
	seen := make(map[string]bool, len(targets))
	for _, t := range targets {
		if seen[t] {
			continue
		}
		seen[t] = true
		v.Many = append(v.Many, t)
	}
	return v
}

// IsSet returns true if a to-one value has a target. Always true for to-many.
func (v Value) IsSet() bool {
	return v.Kind == ToMany || v.One != nil
}

// Targets returns all target ids held by the value.
func (v Value) Targets() []string {
	if v.Kind == ToOne {
		if v.One == nil {
			return nil
		}
		return []string{*v.One}
	}
	return v.Many
}

// Contains reports whether target is among the value's targets.
func (v Value) Contains(target string) bool {
	for _, t := range v.Targets() {
		if t == target {
			return true
		}
	}
	return false
}

// Union returns a to-many value holding the set union of v and targets.
// Existing members keep their position; new members are appended in order.
func (v Value) Union(targets []string) Value {
	merged := make([]string, 0, len(v.Many)+len(targets))
	merged = append(merged, v.Many...)
	merged = append(merged, targets...)
	return ManyOf(merged...)
}

// Record is the canonical, validated form of a resource, ready for
// persistence or rendering. Reverse relationships are never present in Rels.
type Record struct {
	ID           string
	Type         string
	Attrs        map[string]any
	Rels         map[string]Value
	Created      time.Time
	LastModified time.Time
}

// Clone returns a deep copy of the record. Stores hand out clones so callers
// cannot mutate shared state.
func (r Record) Clone() Record {
	out := r
	if r.Attrs != nil {
		out.Attrs = make(map[string]any, len(r.Attrs))
		for k, v := range r.Attrs {
			out.Attrs[k] = v
		}
	}
	if r.Rels != nil {
		out.Rels = make(map[string]Value, len(r.Rels))
		for k, v := range r.Rels {
			out.Rels[k] = v.clone()
		}
	}
	return out
}

func (v Value) clone() Value {
	out := v
	if v.One != nil {
		one := *v.One
		out.One = &one
	}
	if v.Many != nil {
		out.Many = append([]string(nil), v.Many...)
	}
	return out
}
