package core

// provision.go creates and loads runtime tables for uploaded datasets.
//
// Tables are provisioned schema-on-write: the table identity is a pure
// function of the target ID, columns come from type inference, and
// provisioning is idempotent. Re-running for the same target reuses the
// existing table; a duplicate-create race resolves by re-reading the table
// that won. All identifiers pass through a sanitizer and are quoted, so no
// user-controlled text ever reaches SQL unescaped.

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	// tableNamePrefix keeps provisioned tables apart from application tables.
	tableNamePrefix = "ds_"

	// maxIdentifierBase caps the sanitized part of a derived identifier,
	// leaving room for the prefix and hash within Postgres's 63-byte limit.
	maxIdentifierBase = 40

	// insertBatchSize is how many rows each INSERT statement carries.
	insertBatchSize = 500
)

// pgDuplicateTable is the Postgres error code for "relation already exists".
const pgDuplicateTable = "42P07"

// sanitizeIdentifier reduces a name to a safe SQL identifier: lowercase,
// [a-z0-9_] only, runs of other characters collapsed to single underscores.
func sanitizeIdentifier(name string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}

	s := strings.Trim(b.String(), "_")
	if s == "" {
		return "col"
	}
	if s[0] >= '0' && s[0] <= '9' {
		s = "c" + s
	}
	if len(s) > maxIdentifierBase {
		s = strings.Trim(s[:maxIdentifierBase], "_")
	}
	return s
}

// TableNameFor derives the table name for a target. Sanitization alone can
// collide ("a-b" and "a_b" reduce identically), so a stable hash of the raw
// target ID is appended to keep names collision-free across targets.
func TableNameFor(targetID string) string {
	h := fnv.New32a()
	h.Write([]byte(targetID))
	return fmt.Sprintf("%s%s_%08x", tableNamePrefix, sanitizeIdentifier(targetID), h.Sum32())
}

// lockKeyFor hashes a target ID into an advisory lock key so concurrent
// provisioning for the same target serializes inside Postgres.
func lockKeyFor(targetID string) int64 {
	h := fnv.New64a()
	h.Write([]byte(targetID))
	return int64(h.Sum64())
}

// storageTypeFor maps an inferred column type to its SQL storage type.
// Inference is advisory, not authoritative, so everything that is not
// clearly numeric or date-like stays variable-length text.
func storageTypeFor(t ColumnType) string {
	switch t {
	case TypeNumber:
		return "numeric"
	case TypeDate:
		return "timestamp"
	default:
		return "text"
	}
}

// buildColumns converts inferred columns into table columns: sanitized
// names, storage types, and the original header each column is fed from.
// Names that collide after sanitization get a numeric suffix in header order.
func buildColumns(inferred []InferredColumn) []TableColumn {
	seen := make(map[string]int, len(inferred))
	cols := make([]TableColumn, 0, len(inferred))
	for _, ic := range inferred {
		name := sanitizeIdentifier(ic.Name)
		seen[name]++
		if n := seen[name]; n > 1 {
			name = fmt.Sprintf("%s_%d", name, n)
		}
		cols = append(cols, TableColumn{
			Name:        name,
			StorageType: storageTypeFor(ic.Type),
			Source:      ic.Name,
		})
	}
	return cols
}

// quoteIdentifier quotes a SQL identifier to prevent injection.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Provisioner creates tables and loads rows through a DBTX. Run it against
// a pgx.Tx so a failed batch rolls the whole load back.
type Provisioner struct {
	db DBTX
}

// NewProvisioner creates a Provisioner over the given database handle.
func NewProvisioner(db DBTX) *Provisioner {
	return &Provisioner{db: db}
}

// Provision ensures the table for targetID exists and returns its
// descriptor. If the table already exists it is reused as-is and no DDL
// runs; the descriptor then reflects the existing columns, matched back to
// the incoming headers where possible. Cancellation is honored before any
// DDL is issued.
func (p *Provisioner) Provision(ctx context.Context, targetID string, inferred []InferredColumn) (*TableDescriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(inferred) == 0 {
		return nil, fmt.Errorf("no columns to provision for target %q", targetID)
	}

	name := TableNameFor(targetID)

	existing, err := p.tableColumns(ctx, name)
	if err != nil {
		return nil, StorageErr("inspect table", err)
	}
	if len(existing) > 0 {
		return reuseDescriptor(targetID, name, existing, inferred)
	}

	desc := &TableDescriptor{TargetID: targetID, Name: name, Columns: buildColumns(inferred)}
	if _, err := p.db.Exec(ctx, createTableSQL(desc)); err != nil {
		// Lost a concurrent create race: the winner's table is the truth.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgDuplicateTable {
			existing, err2 := p.tableColumns(ctx, name)
			if err2 != nil {
				return nil, StorageErr("inspect table after create race", err2)
			}
			return reuseDescriptor(targetID, name, existing, inferred)
		}
		return nil, StorageErr("create table", err)
	}

	return desc, nil
}

// Insert loads dataset rows into the provisioned table in batches. Each
// batch is a single multi-row INSERT; run inside a transaction, a failure
// leaves nothing behind. Cell values are looked up by the column's original
// header, so uploads whose headers drifted from the original schema still
// load: extra headers are ignored, missing ones become NULLs.
func (p *Provisioner) Insert(ctx context.Context, desc *TableDescriptor, ds *Dataset) (int, error) {
	if len(desc.Columns) == 0 || len(ds.Rows) == 0 {
		return 0, nil
	}

	quoted := make([]string, len(desc.Columns))
	for i, c := range desc.Columns {
		quoted[i] = quoteIdentifier(c.Name)
	}
	colList := strings.Join(quoted, ", ")

	inserted := 0
	for start := 0; start < len(ds.Rows); start += insertBatchSize {
		if err := ctx.Err(); err != nil {
			return inserted, err
		}

		end := start + insertBatchSize
		if end > len(ds.Rows) {
			end = len(ds.Rows)
		}
		batch := ds.Rows[start:end]

		var sb strings.Builder
		fmt.Fprintf(&sb, "INSERT INTO %s (%s) VALUES ", quoteIdentifier(desc.Name), colList)

		args := make([]interface{}, 0, len(batch)*len(desc.Columns))
		for ri, row := range batch {
			if ri > 0 {
				sb.WriteString(", ")
			}
			sb.WriteByte('(')
			for ci, col := range desc.Columns {
				if ci > 0 {
					sb.WriteString(", ")
				}
				fmt.Fprintf(&sb, "$%d", len(args)+1)
				args = append(args, storageValue(col, row))
			}
			sb.WriteByte(')')
		}

		if _, err := p.db.Exec(ctx, sb.String(), args...); err != nil {
			return inserted, StorageErr("insert batch", err)
		}
		inserted += len(batch)
	}

	return inserted, nil
}

// storageValue converts a row's cell into the column's storage
// representation. Unparsable values in typed columns load as NULL; the
// column type came from inference over a previous upload and is advisory.
func storageValue(col TableColumn, row map[string]string) interface{} {
	raw, ok := row[col.Source]
	if !ok || col.Source == "" {
		return nil
	}

	raw = CleanCell(raw)
	switch col.StorageType {
	case "numeric":
		return ToPgNumeric(raw)
	case "timestamp":
		return ToPgTimestamp(raw)
	default:
		return ToPgText(raw)
	}
}

// createTableSQL renders the CREATE TABLE statement for a descriptor.
// IF NOT EXISTS keeps a harmless duplicate create from failing the load.
func createTableSQL(desc *TableDescriptor) string {
	defs := make([]string, len(desc.Columns))
	for i, c := range desc.Columns {
		defs[i] = quoteIdentifier(c.Name) + " " + c.StorageType
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
		quoteIdentifier(desc.Name), strings.Join(defs, ", "))
}

// existingColumn is one column read back from information_schema.
type existingColumn struct {
	name     string
	dataType string
}

// tableColumns returns the live columns of a table in ordinal order, or nil
// if the table does not exist.
func (p *Provisioner) tableColumns(ctx context.Context, table string) ([]existingColumn, error) {
	rows, err := p.db.Query(ctx,
		`SELECT column_name, data_type
		   FROM information_schema.columns
		  WHERE table_schema = current_schema()
		    AND table_name = $1
		  ORDER BY ordinal_position`, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []existingColumn
	for rows.Next() {
		var c existingColumn
		if err := rows.Scan(&c.name, &c.dataType); err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

// reuseDescriptor builds a descriptor from an existing table's columns,
// matching each one back to the incoming headers by sanitized name. A table
// that shares no columns at all with the upload cannot accept any of its
// data and is reported as a schema conflict rather than silently loading
// empty rows.
func reuseDescriptor(targetID, name string, existing []existingColumn, inferred []InferredColumn) (*TableDescriptor, error) {
	sourceFor := make(map[string]string, len(inferred))
	for _, c := range buildColumns(inferred) {
		sourceFor[c.Name] = c.Source
	}

	desc := &TableDescriptor{TargetID: targetID, Name: name}
	matched := 0
	for _, ec := range existing {
		source := sourceFor[ec.name]
		if source != "" {
			matched++
		}
		desc.Columns = append(desc.Columns, TableColumn{
			Name:        ec.name,
			StorageType: normalizeDataType(ec.dataType),
			Source:      source,
		})
	}

	if matched == 0 {
		return nil, fmt.Errorf("%w: table %s has no columns in common with the upload", ErrSchemaConflict, name)
	}
	return desc, nil
}

// normalizeDataType maps information_schema data types back onto the three
// storage types the provisioner writes.
func normalizeDataType(dataType string) string {
	switch {
	case dataType == "numeric":
		return "numeric"
	case strings.HasPrefix(dataType, "timestamp"):
		return "timestamp"
	default:
		return "text"
	}
}
