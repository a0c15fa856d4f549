// Package store holds the persistent collaborators around the ingestion
// core: semantic field declarations, the ingestion run log, and uploaded
// file blobs. Postgres access goes through the same DBTX seam the core uses.
package store

import (
	"context"
	"fmt"

	"github.com/sheetline/sheetline/internal/core"
)

// fieldsSchema declares the semantic field table. Field sets are keyed by
// target; (target_id, key) is the natural identity.
const fieldsSchema = `
CREATE TABLE IF NOT EXISTS semantic_fields (
	target_id    text NOT NULL,
	key          text NOT NULL,
	display_name text NOT NULL,
	value_type   text NOT NULL,
	required     boolean NOT NULL DEFAULT false,
	ord          integer NOT NULL DEFAULT 0,
	rules        jsonb,
	PRIMARY KEY (target_id, key)
)`

// FieldStore owns SemanticField declarations per target.
// Implements core.FieldSource.
type FieldStore struct {
	db core.TxBeginner
}

// NewFieldStore creates a FieldStore over the given pool.
func NewFieldStore(db core.TxBeginner) *FieldStore {
	return &FieldStore{db: db}
}

// EnsureSchema creates the semantic field table if it does not exist.
func (s *FieldStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, fieldsSchema); err != nil {
		return core.StorageErr("ensure semantic_fields schema", err)
	}
	return nil
}

// FieldsForTarget returns the declared fields for a target in declared
// order. A target with no fields at all is unknown: core.ErrNotFound.
func (s *FieldStore) FieldsForTarget(ctx context.Context, targetID string) ([]core.SemanticField, error) {
	rows, err := s.db.Query(ctx,
		`SELECT key, display_name, value_type, required, ord, rules
		   FROM semantic_fields
		  WHERE target_id = $1
		  ORDER BY ord, key`, targetID)
	if err != nil {
		return nil, core.StorageErr("query semantic fields", err)
	}
	defer rows.Close()

	var fields []core.SemanticField
	for rows.Next() {
		var f core.SemanticField
		if err := rows.Scan(&f.Key, &f.DisplayName, &f.ValueType, &f.Required, &f.Order, &f.Rules); err != nil {
			return nil, core.StorageErr("scan semantic field", err)
		}
		fields = append(fields, f)
	}
	if err := rows.Err(); err != nil {
		return nil, core.StorageErr("read semantic fields", err)
	}

	if len(fields) == 0 {
		return nil, fmt.Errorf("target %q: %w", targetID, core.ErrNotFound)
	}
	return fields, nil
}

// SaveFields replaces the whole field set for a target in one transaction.
func (s *FieldStore) SaveFields(ctx context.Context, targetID string, fields []core.SemanticField) error {
	if targetID == "" {
		return fmt.Errorf("target id is empty: %w", core.ErrNotFound)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return core.StorageErr("begin field save", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM semantic_fields WHERE target_id = $1`, targetID); err != nil {
		return core.StorageErr("clear semantic fields", err)
	}

	for _, f := range fields {
		if f.Key == "" {
			return fmt.Errorf("field with empty key for target %q", targetID)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO semantic_fields (target_id, key, display_name, value_type, required, ord, rules)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			targetID, f.Key, f.DisplayName, f.ValueType, f.Required, f.Order, f.Rules); err != nil {
			return core.StorageErr("insert semantic field", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return core.StorageErr("commit field save", err)
	}
	return nil
}
