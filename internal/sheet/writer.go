package sheet

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/sheetline/sheetline/internal/core"
)

// Format identifies a spreadsheet output encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// WriterFor returns the writer for a format. Unknown formats fall back to CSV.
func WriterFor(f Format) core.SpreadsheetWriter {
	if f == FormatXLSX {
		return XLSXWriter{}
	}
	return CSVWriter{}
}

// ContentType returns the MIME type for a format.
func ContentType(f Format) string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

// CSVWriter encodes headers and rows as CSV.
type CSVWriter struct{}

func (CSVWriter) Write(headers []string, rows []map[string]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(headers); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	record := make([]string, len(headers))
	for _, row := range rows {
		for i, h := range headers {
			record[i] = row[h]
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// XLSXWriter encodes headers and rows as a single-sheet XLSX workbook.
type XLSXWriter struct{}

func (XLSXWriter) Write(headers []string, rows []map[string]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := f.GetSheetName(0)

	if err := setRow(f, sheetName, 1, headers, nil); err != nil {
		return nil, err
	}
	for i, row := range rows {
		if err := setRow(f, sheetName, i+2, headers, row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

// setRow writes one worksheet row. With a nil row map the header cells
// themselves are written.
func setRow(f *excelize.File, sheetName string, rowNum int, headers []string, row map[string]string) error {
	cells := make([]interface{}, len(headers))
	for i, h := range headers {
		if row == nil {
			cells[i] = h
		} else {
			cells[i] = row[h]
		}
	}

	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return fmt.Errorf("xlsx cell name: %w", err)
	}
	if err := f.SetSheetRow(sheetName, cell, &cells); err != nil {
		return fmt.Errorf("write xlsx row %d: %w", rowNum, err)
	}
	return nil
}
