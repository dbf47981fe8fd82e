// Package dataset provides the in-memory tabular snapshot that the
// validation engine operates on. A Dataset is built once by the file
// ingestion layer (CSV or XLSX) and is immutable afterwards; every cell
// is held as a cleaned string and an empty string means "missing".
package dataset

import (
	"fmt"
	"strings"
)

// Dataset is a table of named columns and string rows.
// Row width always equals len(Columns); short source rows are padded
// with empty cells during construction.
type Dataset struct {
	Columns []string
	Rows    [][]string

	colIdx map[string]int
}

// New builds a Dataset from a header and raw rows.
// Column names are cleaned and must be non-empty and unique.
// Rows are normalized to the header width.
func New(columns []string, rows [][]string) (*Dataset, error) {
	cleaned := make([]string, len(columns))
	idx := make(map[string]int, len(columns))

	for i, col := range columns {
		name := CleanCell(col)
		if name == "" {
			return nil, fmt.Errorf("column %d has an empty name", i+1)
		}
		if _, dup := idx[name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", name)
		}
		cleaned[i] = name
		idx[name] = i
	}

	normalized := make([][]string, len(rows))
	for r, row := range rows {
		cells := make([]string, len(cleaned))
		for c := range cleaned {
			if c < len(row) {
				cells[c] = CleanCell(row[c])
			}
		}
		normalized[r] = cells
	}

	return &Dataset{Columns: cleaned, Rows: normalized, colIdx: idx}, nil
}

// Len returns the number of data rows.
func (d *Dataset) Len() int {
	return len(d.Rows)
}

// ColumnIndex returns the position of a column by exact name.
func (d *Dataset) ColumnIndex(name string) (int, bool) {
	i, ok := d.colIdx[name]
	return i, ok
}

// HasColumn reports whether the dataset contains the named column.
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.colIdx[name]
	return ok
}

// Value returns the cell at (row, column name). The second return is
// false when the column does not exist or the row is out of range.
func (d *Dataset) Value(row int, col string) (string, bool) {
	i, ok := d.colIdx[col]
	if !ok || row < 0 || row >= len(d.Rows) {
		return "", false
	}
	return d.Rows[row][i], true
}

// IsMissing reports whether the cell at (row, column name) is empty.
// Unknown columns and out-of-range rows count as missing.
func (d *Dataset) IsMissing(row int, col string) bool {
	v, ok := d.Value(row, col)
	return !ok || v == ""
}

// MissingIn returns the indices of rows whose cell in the named column
// is missing. Returns nil when the column does not exist.
func (d *Dataset) MissingIn(col string) []int {
	i, ok := d.colIdx[col]
	if !ok {
		return nil
	}
	var missing []int
	for r := range d.Rows {
		if d.Rows[r][i] == "" {
			missing = append(missing, r)
		}
	}
	return missing
}

// isEmptyRow reports whether every cell in the row is blank.
func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
