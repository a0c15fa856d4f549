package core

// analytics.go computes dataset statistics for the upload preview screen.

import "strings"

// summarySampleRows is how many leading rows the summary includes verbatim.
const summarySampleRows = 5

// rowSignatureSep joins cell values into a row signature for duplicate
// detection. Chosen as an unlikely cell character, matching the convention
// used for composite keys elsewhere.
const rowSignatureSep = "|"

// Summarize computes row/column counts, a leading-row sample, per-column
// inferred types, the number of empty cells, and the number of duplicate
// rows. It is pure: no I/O, no stored state.
func Summarize(ds *Dataset) *Summary {
	s := &Summary{
		RowCount:    len(ds.Rows),
		ColumnCount: len(ds.Headers),
		Columns:     InferColumns(ds),
	}

	sample := len(ds.Rows)
	if sample > summarySampleRows {
		sample = summarySampleRows
	}
	s.SampleRows = make([]map[string]string, 0, sample)
	for _, row := range ds.Rows[:sample] {
		s.SampleRows = append(s.SampleRows, row)
	}

	signatures := make(map[string]struct{}, len(ds.Rows))
	for _, row := range ds.Rows {
		parts := make([]string, len(ds.Headers))
		for i, h := range ds.Headers {
			v, ok := row[h]
			if !ok || v == "" {
				s.EmptyCells++
			}
			parts[i] = v
		}
		signatures[strings.Join(parts, rowSignatureSep)] = struct{}{}
	}
	s.DuplicateRows = len(ds.Rows) - len(signatures)

	return s
}
