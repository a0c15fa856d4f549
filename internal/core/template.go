package core

// template.go generates downloadable starter spreadsheets from a field set.
//
// Sample values come from a pure lookup table keyed by the field's value
// type. Each generator is stateless: row index in, string out.

import (
	"fmt"
	"sort"
	"time"
)

// sampleGenerator produces the sample value for row i (0-indexed).
type sampleGenerator func(i int) string

// sampleGenerators maps a field value type to its sample value generator.
var sampleGenerators = map[string]sampleGenerator{
	"text": func(i int) string {
		return fmt.Sprintf("Sample Text %d", i+1)
	},
	"email": func(i int) string {
		return fmt.Sprintf("sample%d@example.com", i+1)
	},
	"number": func(i int) string {
		return fmt.Sprintf("%d", (i+1)*100)
	},
	"date": func(i int) string {
		return time.Now().AddDate(0, 0, i).Format("2006-01-02")
	},
	"phone": func(i int) string {
		return fmt.Sprintf("+1-555-%d", 1000+i)
	},
	"dropdown": func(i int) string {
		return fmt.Sprintf("Option %d", i%3+1)
	},
}

// sampleValue returns the sample for a value type, falling back to a generic
// label for types without a dedicated generator.
func sampleValue(valueType string, i int) string {
	if gen, ok := sampleGenerators[valueType]; ok {
		return gen(i)
	}
	return fmt.Sprintf("Sample %s %d", valueType, i+1)
}

// TemplateRows builds the headers and sample rows for a template
// spreadsheet. Headers are display names in declared field order.
func TemplateRows(fields []SemanticField, sampleRows int) ([]string, []map[string]string) {
	ordered := make([]SemanticField, len(fields))
	copy(ordered, fields)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Order < ordered[j].Order
	})

	headers := make([]string, len(ordered))
	for i, f := range ordered {
		headers[i] = f.DisplayName
	}

	rows := make([]map[string]string, 0, sampleRows)
	for i := 0; i < sampleRows; i++ {
		row := make(map[string]string, len(ordered))
		for _, f := range ordered {
			row[f.DisplayName] = sampleValue(f.ValueType, i)
		}
		rows = append(rows, row)
	}

	return headers, rows
}
