package store

import (
	"context"
	"time"

	"github.com/sheetline/sheetline/internal/core"
)

// runsSchema declares the ingestion history table. Rows are append-only.
const runsSchema = `
CREATE TABLE IF NOT EXISTS ingestion_runs (
	id          uuid PRIMARY KEY,
	target_id   text NOT NULL,
	table_name  text NOT NULL DEFAULT '',
	file_name   text NOT NULL DEFAULT '',
	rows_loaded integer NOT NULL DEFAULT 0,
	duration_ms bigint NOT NULL DEFAULT 0,
	status      text NOT NULL,
	error       text NOT NULL DEFAULT '',
	created_at  timestamptz NOT NULL DEFAULT now()
)`

// runListLimit caps how much history one listing returns.
const runListLimit = 50

// RunLog is the ingestion history log. Implements core.RunRecorder.
type RunLog struct {
	db core.DBTX
}

// NewRunLog creates a RunLog over the given database handle.
func NewRunLog(db core.DBTX) *RunLog {
	return &RunLog{db: db}
}

// EnsureSchema creates the ingestion run table if it does not exist.
func (l *RunLog) EnsureSchema(ctx context.Context) error {
	if _, err := l.db.Exec(ctx, runsSchema); err != nil {
		return core.StorageErr("ensure ingestion_runs schema", err)
	}
	return nil
}

// Record appends one run record.
func (l *RunLog) Record(ctx context.Context, rec core.RunRecord) error {
	if _, err := l.db.Exec(ctx,
		`INSERT INTO ingestion_runs (id, target_id, table_name, file_name, rows_loaded, duration_ms, status, error)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID, rec.TargetID, rec.TableName, rec.FileName,
		rec.RowsLoaded, rec.DurationMs, rec.Status, rec.Error); err != nil {
		return core.StorageErr("record ingestion run", err)
	}
	return nil
}

// RunEntry is one listed run, a RunRecord plus its timestamp.
type RunEntry struct {
	core.RunRecord
	CreatedAt time.Time `json:"createdAt"`
}

// ListForTarget returns the most recent runs for a target, newest first.
func (l *RunLog) ListForTarget(ctx context.Context, targetID string) ([]RunEntry, error) {
	rows, err := l.db.Query(ctx,
		`SELECT id, target_id, table_name, file_name, rows_loaded, duration_ms, status, error, created_at
		   FROM ingestion_runs
		  WHERE target_id = $1
		  ORDER BY created_at DESC
		  LIMIT $2`, targetID, runListLimit)
	if err != nil {
		return nil, core.StorageErr("query ingestion runs", err)
	}
	defer rows.Close()

	var entries []RunEntry
	for rows.Next() {
		var e RunEntry
		if err := rows.Scan(&e.ID, &e.TargetID, &e.TableName, &e.FileName,
			&e.RowsLoaded, &e.DurationMs, &e.Status, &e.Error, &e.CreatedAt); err != nil {
			return nil, core.StorageErr("scan ingestion run", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, core.StorageErr("read ingestion runs", err)
	}
	return entries, nil
}
