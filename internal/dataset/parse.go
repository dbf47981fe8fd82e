package dataset

// parse.go reads uploaded spreadsheet files into a Dataset.
//
// Two formats are supported: CSV (delimiter-sniffed, UTF-8 sanitized) and
// XLSX (first sheet). The first non-empty row is taken as the header;
// fully empty trailing rows are dropped so that row counts reflect data,
// not formatting leftovers.

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Parse dispatches on file extension. Supported: .csv, .xlsx.
func Parse(fileName string, data []byte) (*Dataset, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv":
		return ParseCSV(data)
	case ".xlsx":
		return ParseXLSX(data)
	default:
		return nil, fmt.Errorf("unsupported file type %q (use .csv or .xlsx)", filepath.Ext(fileName))
	}
}

// ParseCSV reads CSV bytes into a Dataset.
func ParseCSV(data []byte) (*Dataset, error) {
	data = sanitizeUTF8(data)
	// Strip UTF-8 BOM if present
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.Comma = sniffDelimiter(data)

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("invalid csv: %w", err)
	}

	return fromRecords(records)
}

// ParseXLSX reads the first sheet of an XLSX workbook into a Dataset.
func ParseXLSX(data []byte) (*Dataset, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("invalid xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}

	return fromRecords(rows)
}

// fromRecords locates the header and builds the Dataset.
func fromRecords(records [][]string) (*Dataset, error) {
	start := -1
	for i, row := range records {
		if !isEmptyRow(row) {
			start = i
			break
		}
	}
	if start == -1 {
		return nil, fmt.Errorf("empty file: no header row found")
	}

	header := records[start]
	var rows [][]string
	for _, row := range records[start+1:] {
		if isEmptyRow(row) {
			continue
		}
		rows = append(rows, row)
	}

	return New(header, rows)
}

// sniffDelimiter picks the CSV delimiter by counting candidates in the
// first line. Comma wins ties.
func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}

	best := ','
	bestCount := bytes.Count(line, []byte{','})
	for _, c := range []byte{';', '\t'} {
		if n := bytes.Count(line, []byte{c}); n > bestCount {
			best = rune(c)
			bestCount = n
		}
	}
	return best
}
