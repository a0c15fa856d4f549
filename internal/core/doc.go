// Package core provides the business logic for dynamic spreadsheet ingestion.
//
// This package is the heart of the service, containing all domain logic
// independent of any UI or transport layer. It can be used by web handlers,
// CLI tools, or tests without modification.
//
// # Pipeline
//
// An uploaded spreadsheet arrives as a [Dataset]: ordered headers plus rows
// keyed by header. From there the pipeline is:
//
//   - Type inference: [InferColumns] classifies each column into a semantic
//     type (number, date, email, phone, text) using an ordered list of
//     all-or-nothing rules.
//   - Provisioning: [Provisioner] derives a deterministic table name from
//     the target ID, creates the table once, and loads rows in batched,
//     transactional inserts. Re-provisioning the same target is idempotent.
//   - Mapping: [ResolveMappings] matches headers against declared
//     [SemanticField]s in exact/substring/fuzzy tiers with confidence
//     scores. Unmatched fields are left for manual mapping.
//   - Validation: [ValidateStructure] and [ValidateRows] check required
//     fields as headers and required values per row; outcomes are data,
//     never errors.
//   - Templates: [TemplateRows] is the inverse operation, emitting sample
//     rows for a field set.
//   - Analytics: [Summarize] computes counts, per-column types, empty
//     cells, and duplicate rows.
//
// # Error Handling
//
// Failures fall into four categories, exposed as sentinel errors matched
// with errors.Is: [ErrParse], [ErrNotFound], [ErrSchemaConflict], and
// [ErrStorage]. [MapError] turns any of them into a user-facing message
// with a stable support code.
package core
