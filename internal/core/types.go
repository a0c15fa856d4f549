package core

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// TxBeginner is a DBTX that can also open transactions.
// Satisfied by *pgxpool.Pool.
type TxBeginner interface {
	DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

// ColumnType is the semantic type inferred for a spreadsheet column.
type ColumnType string

const (
	TypeEmpty  ColumnType = "empty"
	TypeNumber ColumnType = "number"
	TypeDate   ColumnType = "date"
	TypeEmail  ColumnType = "email"
	TypePhone  ColumnType = "phone"
	TypeText   ColumnType = "text"
)

// Dataset is a parsed spreadsheet: ordered headers plus rows keyed by header.
// A missing key in a row means the cell was absent from the source file.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// InferredColumn pairs a column name with its inferred semantic type.
type InferredColumn struct {
	Name string     `json:"name"`
	Type ColumnType `json:"type"`
}

// SemanticField is a caller-declared field, independent of any uploaded data.
// Field sets are owned by the configuration store and keyed by target ID.
type SemanticField struct {
	Key         string          `json:"key"`         // Unique per field set
	DisplayName string          `json:"displayName"` // Shown to users, used for header matching
	ValueType   string          `json:"valueType"`   // text, email, number, date, phone, dropdown, ...
	Required    bool            `json:"required"`
	Order       int             `json:"order"`
	Rules       json.RawMessage `json:"rules,omitempty"` // Opaque validation rules, passed through
}

// FieldMapping links a spreadsheet header to a semantic field with a
// confidence score in [0,1]. 1.0 means an exact match.
type FieldMapping struct {
	SourceColumn string  `json:"sourceColumn"`
	FieldKey     string  `json:"fieldKey"`
	Confidence   float64 `json:"confidence"`
}

// Validation issue kinds.
const (
	KindMissingHeader = "missing_header"
	KindRequired      = "required"
)

// ValidationIssue is a single validation error or warning.
// Row is 1-indexed for row-level issues and 0 for structural ones.
type ValidationIssue struct {
	Row     int    `json:"rowNumber"`
	Field   string `json:"field"`
	Message string `json:"message"`
	Kind    string `json:"kind"`
}

// ValidationResult contains the outcome of validating a dataset against a
// field set. Validation outcomes are data, never errors: a dataset full of
// problems still validates "successfully" in the Go error sense.
type ValidationResult struct {
	TotalRows   int               `json:"totalRows"`
	ValidRows   int               `json:"validRows"`
	InvalidRows int               `json:"invalidRows"`
	Errors      []ValidationIssue `json:"errors"`
	Warnings    []ValidationIssue `json:"warnings"`
	Valid       bool              `json:"isValid"`
}

// ValidationMode selects which checks Validate runs.
type ValidationMode string

const (
	ModeStructural ValidationMode = "structural" // Required fields present as headers
	ModeRows       ValidationMode = "rows"       // Required values present per row
	ModeFull       ValidationMode = "full"       // Both
)

// TableColumn is one provisioned column: the sanitized identifier, the SQL
// storage type, and the original header it is fed from.
type TableColumn struct {
	Name        string `json:"name"`
	StorageType string `json:"storageType"`
	Source      string `json:"source"`
}

// TableDescriptor describes a provisioned table for one target.
// The table name is a pure function of the target ID.
type TableDescriptor struct {
	TargetID string        `json:"targetId"`
	Name     string        `json:"tableName"`
	Columns  []TableColumn `json:"columns"`
}

// LoadResult is the outcome of a provision-and-load operation.
type LoadResult struct {
	TableName  string `json:"tableName"`
	RowsLoaded int    `json:"rowsLoaded"`
}

// Summary contains dataset statistics computed without touching storage.
type Summary struct {
	RowCount      int                 `json:"rowCount"`
	ColumnCount   int                 `json:"columnCount"`
	SampleRows    []map[string]string `json:"sampleRows"`
	Columns       []InferredColumn    `json:"columns"`
	EmptyCells    int                 `json:"emptyCells"`
	DuplicateRows int                 `json:"duplicateRows"`
}

// FieldSource supplies the declared semantic fields for a target.
// Implemented by the configuration store; fakes implement it in tests.
type FieldSource interface {
	FieldsForTarget(ctx context.Context, targetID string) ([]SemanticField, error)
}

// SpreadsheetWriter encodes headers and rows into spreadsheet bytes.
// Implemented by the sheet package for CSV and XLSX output.
type SpreadsheetWriter interface {
	Write(headers []string, rows []map[string]string) ([]byte, error)
}

// RunRecord captures one completed (or failed) ingestion run for the history log.
type RunRecord struct {
	ID         string `json:"id"`
	TargetID   string `json:"targetId"`
	TableName  string `json:"tableName"`
	FileName   string `json:"fileName,omitempty"`
	RowsLoaded int    `json:"rowsLoaded"`
	DurationMs int64  `json:"durationMs"`
	Status     string `json:"status"` // "loaded" or "failed"
	Error      string `json:"error,omitempty"`
}

// RunRecorder persists ingestion run records. Recording is best-effort:
// failures are logged by the caller, never surfaced to the uploader.
type RunRecorder interface {
	Record(ctx context.Context, rec RunRecord) error
}
