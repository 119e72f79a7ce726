// Package schemastatic serves schema documents registered in-process: the
// built-in core types plus anything extensions register at startup. Unknown
// types can fall through to a secondary source, typically the remote one.
package schemastatic

import (
	"context"
	"fmt"
	"sync"

	"github.com/relstore/relstore/ports"
)

// Built-in type identifiers.
const (
	TypeUser   = "core/user"
	TypeGroup  = "core/group"
	TypeFolder = "core/folder"
)

// Source is an in-process schema source.
type Source struct {
	mu      sync.RWMutex
	schemas map[string][]byte
	next    ports.SchemaSource // optional fallback
}

// New creates a source preloaded with the built-in core schemas.
func New() *Source {
	s := &Source{schemas: make(map[string][]byte)}
	s.Register(TypeUser, []byte(userSchema))
	s.Register(TypeGroup, []byte(groupSchema))
	s.Register(TypeFolder, []byte(folderSchema))
	return s
}

// WithFallback sets the source consulted for unregistered types and returns
// the receiver for chaining.
func (s *Source) WithFallback(next ports.SchemaSource) *Source {
	s.next = next
	return s
}

// Register adds or replaces a schema document for a type identifier.
func (s *Source) Register(typeID string, doc []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schemas[typeID] = doc
}

// Fetch returns the registered document, or delegates to the fallback.
func (s *Source) Fetch(ctx context.Context, typeID string) ([]byte, error) {
	s.mu.RLock()
	doc, ok := s.schemas[typeID]
	s.mu.RUnlock()
	if ok {
		return doc, nil
	}
	if s.next != nil {
		return s.next.Fetch(ctx, typeID)
	}
	return nil, fmt.Errorf("no schema registered for type %q", typeID)
}

// Ensure interface compliance.
var _ ports.SchemaSource = (*Source)(nil)

const userSchema = `{
	"attributes": {
		"name":   {"type": "string"},
		"handle": {"type": "string", "minLength": 1},
		"email":  {"type": "string", "format": "email"},
		"hash":   {"type": "string"}
	},
	"relationships": {
		"groups": {"arity": "to-many", "type": "core/group"},
		"pinned": {"arity": "to-many", "type": "core/folder"}
	}
}`

const groupSchema = `{
	"attributes": {
		"name": {"type": "string"}
	},
	"relationships": {
		"members": {"reverse-of": {"type": "core/user", "path": "groups"}},
		"groups":  {"arity": "to-many", "type": "core/group"},
		"pinned":  {"arity": "to-many", "type": "core/folder"}
	}
}`

const folderSchema = `{
	"attributes": {
		"name": {"type": "string"}
	},
	"relationships": {
		"children": {"arity": "to-many"},
		"parents":  {"reverse-of": {"type": "core/folder", "path": "children"}}
	}
}`
