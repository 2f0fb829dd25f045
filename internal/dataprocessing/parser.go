package dataprocessing

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/JTHCode/salesdash/internal/exporter"
)

// RawTable is an untyped tabular source: a header row and data rows of cell
// text. Rows may be shorter than the header.
type RawTable struct {
	Header []string
	Rows   [][]string
}

// ReadSource reads a raw dataset from an .xlsx workbook or a .csv file,
// chosen by extension. sheet is only used for workbooks.
func ReadSource(path, sheet string) (RawTable, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return ReadWorkbook(path, sheet)
	case ".csv":
		return ReadDelimited(path)
	default:
		return RawTable{}, fmt.Errorf("unsupported dataset format %q", filepath.Ext(path))
	}
}

// ReadWorkbook reads one sheet of an Excel workbook. An empty sheet name
// selects the first sheet. The first non-empty row is the header.
func ReadWorkbook(path, sheet string) (RawTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return RawTable{}, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return RawTable{}, fmt.Errorf("workbook %s has no sheets", path)
		}
		sheet = sheets[0]
	}

	// Raw values keep date cells as serials instead of their display format.
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return RawTable{}, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	return splitHeader(rows), nil
}

// ReadDelimited reads a CSV file with a header row.
func ReadDelimited(path string) (RawTable, error) {
	records, err := exporter.ReadCSV(path)
	if err != nil {
		return RawTable{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return splitHeader(records), nil
}

func splitHeader(rows [][]string) RawTable {
	for i, row := range rows {
		if isBlank(row) {
			continue
		}
		table := RawTable{Header: row}
		for _, r := range rows[i+1:] {
			if !isBlank(r) {
				table.Rows = append(table.Rows, r)
			}
		}
		return table
	}
	return RawTable{}
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
