// Package ports defines interfaces (contracts) between layers.
// These interfaces enable dependency injection and testability.
// Implementations live in adapters/.
package ports

import (
	"context"
	"errors"
	"time"

	"github.com/relstore/relstore/domain/resource"
)

// ErrNotFound is returned by stores when the requested entity does not
// exist. Adapters return it unwrapped or wrapped; callers test with
// errors.Is.
var ErrNotFound = errors.New("not found")

// -----------------------------------------------------------------------------
// Infrastructure Ports
// -----------------------------------------------------------------------------

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// IDGenerator generates unique resource identifiers.
type IDGenerator interface {
	New() string
}

// Hasher hashes and verifies passwords.
type Hasher interface {
	Hash(plaintext string) ([]byte, error)
	Compare(hash []byte, plaintext string) bool
}

// -----------------------------------------------------------------------------
// Persistence Ports
// -----------------------------------------------------------------------------

// ResourceStore is the abstract document collection holding canonical
// resource records. Implementations must be safe for concurrent use; no
// locking happens above this layer, so concurrent updates to the same id are
// last-writer-wins.
type ResourceStore interface {
	// Get retrieves a record by id.
	Get(ctx context.Context, id string) (resource.Record, error)

	// TypesOf resolves the stored type of each id in one round trip.
	// Ids that do not exist are simply absent from the result.
	TypesOf(ctx context.Context, ids []string) (map[string]string, error)

	// Insert stores a new record.
	Insert(ctx context.Context, rec resource.Record) error

	// UpdateFields applies a partial update: only the given attributes and
	// relationship values are replaced, and last-modified is set to modified.
	UpdateFields(ctx context.Context, id string, attrs map[string]any, rels map[string]resource.Value, modified time.Time) error

	// Delete removes a record. No cascade: other records keep their
	// references and go dangling.
	Delete(ctx context.Context, id string) error

	// FindReferencing returns refs to every record of type typeID whose
	// relationship path contains target. Used only for reverse
	// relationships; zero hits is a valid, empty result.
	FindReferencing(ctx context.Context, typeID, path, target string) ([]resource.Ref, error)
}

// HandleIndex maps login handles to user resource ids.
type HandleIndex interface {
	// Set binds a handle to a resource id. Fails if the handle is taken.
	Set(ctx context.Context, handle, id string) error

	// Get resolves a handle to a resource id.
	Get(ctx context.Context, handle string) (string, error)
}

// -----------------------------------------------------------------------------
// Schema Source Port
// -----------------------------------------------------------------------------

// SchemaSource resolves a type identifier to a raw schema document.
// Transport errors and non-success statuses surface as errors; parsing is
// the caller's concern.
type SchemaSource interface {
	Fetch(ctx context.Context, typeID string) ([]byte, error)
}
