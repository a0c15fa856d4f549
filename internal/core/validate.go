package core

// validate.go checks datasets against a declared field set.
//
// Two independent checks:
//  1. Structural: every required field's key must appear among the headers.
//  2. Row-level: every row must supply a value for every required field.
//
// Callers pick one or both depending on whether they need pre-upload schema
// verification or per-row completeness. All outcomes come back as data in a
// ValidationResult; validation never returns a Go error.

import (
	"fmt"
	"strings"
)

// ValidateStructure checks that every required field is present as a header.
// Issues are reported at row 0 with kind "missing_header".
func ValidateStructure(fields []SemanticField, ds *Dataset) *ValidationResult {
	headerSet := make(map[string]bool, len(ds.Headers))
	for _, h := range ds.Headers {
		headerSet[strings.ToLower(strings.TrimSpace(h))] = true
	}

	result := &ValidationResult{TotalRows: len(ds.Rows)}
	for _, f := range fields {
		if !f.Required {
			continue
		}
		if !headerSet[strings.ToLower(f.Key)] {
			result.Errors = append(result.Errors, ValidationIssue{
				Row:     0,
				Field:   f.Key,
				Message: fmt.Sprintf("missing required column %q", f.Key),
				Kind:    KindMissingHeader,
			})
		}
	}

	// Structural checking does not classify individual rows.
	result.ValidRows = result.TotalRows
	result.Valid = len(result.Errors) == 0
	return result
}

// ValidateRows checks that each row supplies a value for every required
// field. Rows are 1-indexed; a row with zero issues counts as valid.
func ValidateRows(fields []SemanticField, ds *Dataset) *ValidationResult {
	// Resolve each required key to the actual header once, with the same
	// case-insensitive matching the structural check applies. A key with no
	// matching header falls back to itself, so every row still flags it.
	headerFor := make(map[string]string, len(ds.Headers))
	for _, h := range ds.Headers {
		headerFor[strings.ToLower(strings.TrimSpace(h))] = h
	}

	type requiredField struct {
		key    string
		header string
	}
	required := make([]requiredField, 0, len(fields))
	for _, f := range fields {
		if !f.Required {
			continue
		}
		header, ok := headerFor[strings.ToLower(f.Key)]
		if !ok {
			header = f.Key
		}
		required = append(required, requiredField{key: f.Key, header: header})
	}

	result := &ValidationResult{TotalRows: len(ds.Rows)}
	for i, row := range ds.Rows {
		rowErrs := 0
		for _, f := range required {
			if strings.TrimSpace(row[f.header]) == "" {
				rowErrs++
				result.Errors = append(result.Errors, ValidationIssue{
					Row:     i + 1,
					Field:   f.key,
					Message: fmt.Sprintf("required field %q is empty", f.key),
					Kind:    KindRequired,
				})
			}
		}
		if rowErrs == 0 {
			result.ValidRows++
		} else {
			result.InvalidRows++
		}
	}

	result.Valid = len(result.Errors) == 0
	return result
}

// RunValidation runs the checks selected by mode. ModeFull runs the
// structural check first and appends row-level issues to the same result.
func RunValidation(fields []SemanticField, ds *Dataset, mode ValidationMode) *ValidationResult {
	switch mode {
	case ModeStructural:
		return ValidateStructure(fields, ds)
	case ModeRows:
		return ValidateRows(fields, ds)
	default:
		structural := ValidateStructure(fields, ds)
		rows := ValidateRows(fields, ds)
		rows.Errors = append(structural.Errors, rows.Errors...)
		rows.Warnings = append(structural.Warnings, rows.Warnings...)
		rows.Valid = len(rows.Errors) == 0
		return rows
	}
}
