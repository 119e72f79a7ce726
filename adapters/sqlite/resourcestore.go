package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/relstore/relstore/domain/resource"
	"github.com/relstore/relstore/ports"
)

// ResourceStore implements ports.ResourceStore using SQLite. Attributes and
// relationship values are stored as JSON documents; the reverse-relationship
// scan uses json_each over the relationship column.
type ResourceStore struct {
	db *DB
}

// NewResourceStore creates a new SQLite resource store.
func NewResourceStore(db *DB) *ResourceStore {
	return &ResourceStore{db: db}
}

// Get retrieves a record by id.
func (s *ResourceStore) Get(ctx context.Context, id string) (resource.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, type, attrs, rels, created, last_modified
		FROM resources
		WHERE id = ?
	`, id)
	return scanRecord(row)
}

// TypesOf resolves the stored type of each id in one query.
func (s *ResourceStore) TypesOf(ctx context.Context, ids []string) (map[string]string, error) {
	types := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return types, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, type FROM resources WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id, typeID string
		if err := rows.Scan(&id, &typeID); err != nil {
			return nil, err
		}
		types[id] = typeID
	}
	return types, rows.Err()
}

// Insert stores a new record.
func (s *ResourceStore) Insert(ctx context.Context, rec resource.Record) error {
	attrs, rels, err := encodeFields(rec.Attrs, rec.Rels)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO resources (id, type, attrs, rels, created, last_modified)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.Type, attrs, rels, rec.Created.UTC(), rec.LastModified.UTC())
	return err
}

// UpdateFields applies a partial update inside a transaction: the stored
// documents are merged with the given field sets.
func (s *ResourceStore) UpdateFields(ctx context.Context, id string, attrs map[string]any, rels map[string]resource.Value, modified time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var attrsJSON, relsJSON string
	row := tx.QueryRowContext(ctx, `SELECT attrs, rels FROM resources WHERE id = ?`, id)
	if err := row.Scan(&attrsJSON, &relsJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ports.ErrNotFound
		}
		return err
	}

	storedAttrs, storedRels, err := decodeFields(attrsJSON, relsJSON)
	if err != nil {
		return err
	}
	for k, v := range attrs {
		storedAttrs[k] = v
	}
	for k, v := range rels {
		storedRels[k] = v
	}

	newAttrs, newRels, err := encodeFields(storedAttrs, storedRels)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE resources SET attrs = ?, rels = ?, last_modified = ? WHERE id = ?
	`, newAttrs, newRels, modified.UTC(), id)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// Delete removes a record.
func (s *ResourceStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM resources WHERE id = ?`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// FindReferencing returns refs to every record of type typeID whose
// relationship path contains target, matching both to-one values and
// to-many membership.
func (s *ResourceStore) FindReferencing(ctx context.Context, typeID, path, target string) ([]resource.Ref, error) {
	onePath := fmt.Sprintf(`$."%s".one`, path)
	manyPath := fmt.Sprintf(`$."%s".many`, path)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, type FROM resources
		WHERE type = ?
		  AND (json_extract(rels, ?) = ?
		       OR EXISTS (SELECT 1 FROM json_each(rels, ?) je WHERE je.value = ?))
	`, typeID, onePath, target, manyPath, target)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hits []resource.Ref
	for rows.Next() {
		var ref resource.Ref
		if err := rows.Scan(&ref.ID, &ref.Type); err != nil {
			return nil, err
		}
		hits = append(hits, ref)
	}
	return hits, rows.Err()
}

func scanRecord(row *sql.Row) (resource.Record, error) {
	var rec resource.Record
	var attrsJSON, relsJSON string
	err := row.Scan(&rec.ID, &rec.Type, &attrsJSON, &relsJSON, &rec.Created, &rec.LastModified)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return resource.Record{}, ports.ErrNotFound
		}
		return resource.Record{}, err
	}

	rec.Attrs, rec.Rels, err = decodeFields(attrsJSON, relsJSON)
	if err != nil {
		return resource.Record{}, err
	}
	return rec, nil
}

func encodeFields(attrs map[string]any, rels map[string]resource.Value) (string, string, error) {
	if attrs == nil {
		attrs = map[string]any{}
	}
	if rels == nil {
		rels = map[string]resource.Value{}
	}
	attrsJSON, err := json.Marshal(attrs)
	if err != nil {
		return "", "", fmt.Errorf("encode attrs: %w", err)
	}
	relsJSON, err := json.Marshal(rels)
	if err != nil {
		return "", "", fmt.Errorf("encode rels: %w", err)
	}
	return string(attrsJSON), string(relsJSON), nil
}

func decodeFields(attrsJSON, relsJSON string) (map[string]any, map[string]resource.Value, error) {
	var attrs map[string]any
	if err := json.Unmarshal([]byte(attrsJSON), &attrs); err != nil {
		return nil, nil, fmt.Errorf("decode attrs: %w", err)
	}
	var rels map[string]resource.Value
	if err := json.Unmarshal([]byte(relsJSON), &rels); err != nil {
		return nil, nil, fmt.Errorf("decode rels: %w", err)
	}
	return attrs, rels, nil
}

// Ensure interface compliance.
var _ ports.ResourceStore = (*ResourceStore)(nil)
