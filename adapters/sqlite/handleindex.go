package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/relstore/relstore/ports"
)

// HandleIndex implements ports.HandleIndex on the handles table. A handle
// maps to exactly one resource id and is never reassigned.
type HandleIndex struct {
	db *DB
}

// NewHandleIndex creates a new SQLite handle index.
func NewHandleIndex(db *DB) *HandleIndex {
	return &HandleIndex{db: db}
}

// Set claims a handle for a resource id. Claiming an already-taken handle
// fails.
func (h *HandleIndex) Set(ctx context.Context, handle, resourceID string) error {
	_, err := h.db.ExecContext(ctx,
		`INSERT INTO handles (handle, resource_id) VALUES (?, ?)`, handle, resourceID)
	if err != nil {
		return fmt.Errorf("claim handle %q: %w", handle, err)
	}
	return nil
}

// Get resolves a handle to its resource id.
func (h *HandleIndex) Get(ctx context.Context, handle string) (string, error) {
	var id string
	err := h.db.QueryRowContext(ctx,
		`SELECT resource_id FROM handles WHERE handle = ?`, handle).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ports.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

// Ensure interface compliance.
var _ ports.HandleIndex = (*HandleIndex)(nil)
