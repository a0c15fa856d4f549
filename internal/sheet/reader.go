// Package sheet reads and writes spreadsheet files at the edge of the
// ingestion pipeline. Parsing produces a core.Dataset; writing turns headers
// and rows back into CSV or XLSX bytes for template downloads.
package sheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/sheetline/sheetline/internal/core"
)

// Parse reads a spreadsheet into a dataset, picking the decoder from the
// file extension. Only .csv and .xlsx are supported; anything else is a
// parse error with the offending extension in the message.
func Parse(r io.Reader, filename string) (*core.Dataset, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return ParseCSV(r)
	case ".xlsx":
		return ParseXLSX(r)
	default:
		return nil, core.ParseErr("detect format",
			fmt.Errorf("unsupported file extension %q", filepath.Ext(filename)))
	}
}

// ParseCSV decodes CSV input into a dataset. The stream is cleaned of BOM
// and invalid UTF-8 first; quoting is lenient and rows may have ragged
// lengths, since real exports routinely do.
func ParseCSV(r io.Reader) (*core.Dataset, error) {
	cr := csv.NewReader(Clean(r))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, core.ParseErr("read csv", err)
	}
	return fromRecords(records)
}

// ParseXLSX decodes the first worksheet of an XLSX workbook into a dataset.
func ParseXLSX(r io.Reader) (*core.Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, core.ParseErr("open xlsx", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, core.ParseErr("read xlsx", fmt.Errorf("workbook has no sheets"))
	}

	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, core.ParseErr("read xlsx", err)
	}
	return fromRecords(records)
}

// fromRecords assembles a dataset from raw rows: the first non-empty row is
// the header, fully empty rows are dropped, and cells beyond the header are
// ignored. A row shorter than the header leaves the trailing keys unset.
func fromRecords(records [][]string) (*core.Dataset, error) {
	start := 0
	for start < len(records) && emptyRow(records[start]) {
		start++
	}
	if start == len(records) {
		return nil, core.ParseErr("read header", fmt.Errorf("file has no header row"))
	}

	headers := dedupeHeaders(records[start])
	ds := &core.Dataset{Headers: headers}

	for _, rec := range records[start+1:] {
		if emptyRow(rec) {
			continue
		}
		row := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(rec) {
				row[h] = rec[i]
			}
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds, nil
}

// dedupeHeaders cleans header cells and disambiguates duplicates with a
// numeric suffix, keeping header order. Blank headers get a positional name
// so their column data is not lost.
func dedupeHeaders(cells []string) []string {
	seen := make(map[string]int, len(cells))
	headers := make([]string, len(cells))
	for i, c := range cells {
		h := core.CleanCell(c)
		if h == "" {
			h = fmt.Sprintf("Column %d", i+1)
		}
		key := strings.ToLower(h)
		seen[key]++
		if n := seen[key]; n > 1 {
			h = fmt.Sprintf("%s %d", h, n)
		}
		headers[i] = h
	}
	return headers
}

func emptyRow(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
