package export

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/docextract/constants"
	"github.com/joseph-ayodele/docextract/internal/entity"
)

const (
	SheetRecords = "Extracted Data"
	SheetSummary = "Summary"
	SheetErrors  = "Error Details"

	maxColWidth = 50
)

// RecordColumns is the header row of the records sheet: the schema columns plus audit columns.
func RecordColumns() []string {
	cols := make([]string, 0, len(constants.Columns)+2)
	for _, c := range constants.Columns {
		cols = append(cols, string(c))
	}
	return append(cols, "is_duplicate", "error")
}

// RecordsXLSX returns an XLSX workbook (as bytes) with one row per record.
func RecordsXLSX(rows []entity.FlatRecord) ([]byte, error) {
	table := make([][]any, len(rows))
	for i, r := range rows {
		row := make([]any, 0, len(constants.Columns)+2)
		for _, c := range constants.Columns {
			row = append(row, cellValue(r.Cell(c)))
		}
		errCell := any(nil)
		if r.Error != "" {
			errCell = r.Error
		}
		table[i] = append(row, r.IsDuplicate, errCell)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if err := f.SetSheetName("Sheet1", SheetRecords); err != nil {
		return nil, err
	}
	if err := writeTable(f, SheetRecords, RecordColumns(), table); err != nil {
		return nil, err
	}
	return toBytes(f)
}

// ReportXLSX returns the report workbook: a metric summary and, when there are any, the error details.
func ReportXLSX(r entity.BatchReport) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, err
	}

	avg, _ := decimal.NewFromFloat(r.AverageScore).Round(2).Float64()
	summary := [][]any{
		{"Total Documents Processed", r.TotalProcessed},
		{"Successfully Validated (PASSED)", r.Passed},
		{"Partially Validated (PARTIAL)", r.Partial},
		{"Failed Validation (FAILED)", r.Failed},
		{"Duplicates Detected", r.Duplicates},
		{"Documents with Missing Required Fields", r.MissingFieldsCount},
		{"Documents with Date Errors", r.DateErrorsCount},
		{"Documents with Numeric Errors", r.NumericErrorsCount},
		{"Average Validation Score", avg},
	}
	if err := writeTable(f, SheetSummary, []string{"Metric", "Value"}, summary); err != nil {
		return nil, err
	}

	if len(r.ErrorDetails) > 0 {
		if _, err := f.NewSheet(SheetErrors); err != nil {
			return nil, err
		}
		details := make([][]any, len(r.ErrorDetails))
		for i, d := range r.ErrorDetails {
			details[i] = []any{d.SourceFileName, d.DocumentID, cellValue(d.Errors), cellValue(d.MissingFields)}
		}
		headers := []string{"source_file_name", "document_id", "errors", "missing_fields"}
		if err := writeTable(f, SheetErrors, headers, details); err != nil {
			return nil, err
		}
	}
	return toBytes(f)
}

// writeTable writes a styled header row and the rows below it, then sizes each column
// to its longest value plus two, capped at maxColWidth.
func writeTable(f *excelize.File, sheet string, headers []string, rows [][]any) error {
	style, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"366092"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
		widths[i] = utf8.RuneCountInString(h)
	}
	first, _ := excelize.CoordinatesToCellName(1, 1)
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheet, first, last, style); err != nil {
		return err
	}

	for r, row := range rows {
		for c, v := range row {
			if v == nil {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
			if n := utf8.RuneCountInString(fmt.Sprint(v)); c < len(widths) && n > widths[c] {
				widths[c] = n
			}
		}
	}

	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, col, col, float64(min(w+2, maxColWidth))); err != nil {
			return err
		}
	}
	return nil
}

// cellValue flattens list columns into a single cell.
func cellValue(v any) any {
	if list, ok := v.([]string); ok {
		if len(list) == 0 {
			return nil
		}
		return strings.Join(list, "; ")
	}
	return v
}

func toBytes(f *excelize.File) ([]byte, error) {
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}
