package core

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Service is the entry point for all ingestion pipeline operations.
// The inference, mapping, and validation paths are pure and touch no I/O;
// only provisioning and the collaborators behind FieldSource and
// RunRecorder reach external systems.
type Service struct {
	db     TxBeginner
	fields FieldSource
	runs   RunRecorder
}

// NewService creates a Service. runs may be nil to disable the ingestion
// history log.
func NewService(db TxBeginner, fields FieldSource, runs RunRecorder) *Service {
	return &Service{db: db, fields: fields, runs: runs}
}

// ProvisionAndLoad infers column types for the dataset, provisions the
// target's table if needed, and loads all rows in one transaction.
// Concurrent calls for the same target serialize on a Postgres advisory
// lock, so two uploads cannot race a duplicate create. fileName is only
// used for the ingestion history log and may be empty.
func (s *Service) ProvisionAndLoad(ctx context.Context, targetID string, ds *Dataset, fileName string) (*LoadResult, error) {
	start := time.Now()
	res, err := s.provisionAndLoad(ctx, targetID, ds)
	s.recordRun(ctx, targetID, fileName, res, err, time.Since(start))
	return res, err
}

func (s *Service) provisionAndLoad(ctx context.Context, targetID string, ds *Dataset) (*LoadResult, error) {
	if targetID == "" {
		return nil, fmt.Errorf("%w: target id is empty", ErrNotFound)
	}
	if ds == nil || len(ds.Headers) == 0 {
		return nil, fmt.Errorf("dataset has no columns")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, StorageErr("begin transaction", err)
	}
	defer tx.Rollback(ctx)

	// Serialize provisioning per target. The lock is transaction-scoped and
	// released automatically on commit or rollback.
	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", lockKeyFor(targetID)); err != nil {
		return nil, StorageErr("acquire target lock", err)
	}

	prov := NewProvisioner(tx)
	desc, err := prov.Provision(ctx, targetID, InferColumns(ds))
	if err != nil {
		return nil, err
	}

	loaded, err := prov.Insert(ctx, desc, ds)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, StorageErr("commit", err)
	}

	return &LoadResult{TableName: desc.Name, RowsLoaded: loaded}, nil
}

// SuggestMappings resolves the target's declared fields against the
// dataset's headers. The result is transient; nothing is stored.
func (s *Service) SuggestMappings(ctx context.Context, targetID string, ds *Dataset) ([]FieldMapping, error) {
	fields, err := s.fields.FieldsForTarget(ctx, targetID)
	if err != nil {
		return nil, err
	}
	return ResolveMappings(fields, ds.Headers), nil
}

// Validate runs the selected validation checks for the target's field set
// against the dataset. The outcome is data; only collaborator failures
// (unknown target, store errors) surface as errors.
func (s *Service) Validate(ctx context.Context, targetID string, ds *Dataset, mode ValidationMode) (*ValidationResult, error) {
	fields, err := s.fields.FieldsForTarget(ctx, targetID)
	if err != nil {
		return nil, err
	}
	return RunValidation(fields, ds, mode), nil
}

// GenerateTemplate emits a starter spreadsheet for the target's field set
// with the requested number of synthetic sample rows.
func (s *Service) GenerateTemplate(ctx context.Context, targetID string, sampleRows int, w SpreadsheetWriter) ([]byte, error) {
	fields, err := s.fields.FieldsForTarget(ctx, targetID)
	if err != nil {
		return nil, err
	}

	headers, rows := TemplateRows(fields, sampleRows)
	out, err := w.Write(headers, rows)
	if err != nil {
		return nil, fmt.Errorf("write template: %w", err)
	}
	return out, nil
}

// Summarize computes dataset statistics. Pure; safe to call concurrently.
func (s *Service) Summarize(ds *Dataset) *Summary {
	return Summarize(ds)
}

// recordRun writes an ingestion history entry. Best-effort: failures are
// logged, never returned, and a canceled request context does not stop the
// record from being written.
func (s *Service) recordRun(ctx context.Context, targetID, fileName string, res *LoadResult, runErr error, took time.Duration) {
	if s.runs == nil {
		return
	}

	rec := RunRecord{
		ID:         uuid.New().String(),
		TargetID:   targetID,
		FileName:   fileName,
		DurationMs: took.Milliseconds(),
		Status:     "loaded",
	}
	if res != nil {
		rec.TableName = res.TableName
		rec.RowsLoaded = res.RowsLoaded
	}
	if runErr != nil {
		rec.Status = "failed"
		rec.Error = runErr.Error()
	}

	if err := s.runs.Record(context.WithoutCancel(ctx), rec); err != nil {
		slog.Warn("record ingestion run failed",
			"target", targetID,
			"status", rec.Status,
			"error", err,
		)
	}
}
