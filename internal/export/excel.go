// Package export renders validation sessions into downloadable
// artifacts: an annotated Excel workbook, a normalized-data workbook,
// and a PDF summary.
package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/mquintana/itemcheck/internal/dataset"
	"github.com/mquintana/itemcheck/internal/validation"
)

const (
	sheetSummary  = "Resumen"
	sheetData     = "Datos"
	sheetFindings = "Hallazgos"
)

// cellRef identifies one data cell by row index and column name.
type cellRef struct {
	row int
	col string
}

// ReportWorkbook builds an Excel workbook for a completed validation run:
// a summary sheet, the full dataset with offending cells highlighted,
// and a flat findings list.
func ReportWorkbook(ds *dataset.Dataset, report *validation.Report) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", sheetSummary)
	if _, err := f.NewSheet(sheetData); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	if _, err := f.NewSheet(sheetFindings); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}

	errorStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"FFC7CE"}, Pattern: 1},
		Font: &excelize.Font{Color: "9C0006"},
	})
	if err != nil {
		return nil, fmt.Errorf("create style: %w", err)
	}
	warnStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"FFEB9C"}, Pattern: 1},
		Font: &excelize.Font{Color: "9C6500"},
	})
	if err != nil {
		return nil, fmt.Errorf("create style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("create style: %w", err)
	}

	if err := writeSummarySheet(f, report); err != nil {
		return nil, err
	}
	if err := writeDataSheet(f, ds, report, headerStyle, errorStyle, warnStyle); err != nil {
		return nil, err
	}
	if err := writeFindingsSheet(f, report, headerStyle); err != nil {
		return nil, err
	}

	f.SetActiveSheet(0)
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf, nil
}

func writeSummarySheet(f *excelize.File, report *validation.Report) error {
	rows := [][]any{
		{"Reporte de Validación de Ítems"},
		{},
		{"Fecha", report.Summary.Timestamp},
		{"Estado", statusLabel(report.Summary.ValidationStatus)},
		{"Total de ítems", report.Summary.TotalItems},
		{"Total de instrumentos", report.Summary.TotalInstruments},
		{},
		{"Validación", "Válida", "Errores", "Advertencias"},
		{"Ítems duplicados", yesNo(report.Duplicates.IsValid), len(report.Duplicates.Errors), len(report.Duplicates.Warnings)},
		{"Metadatos", yesNo(report.Metadata.IsValid), len(report.Metadata.Errors), len(report.Metadata.Warnings)},
		{"Clasificación", yesNo(report.Classification.IsValid), len(report.Classification.Errors), len(report.Classification.Warnings)},
		{"Avanzada", yesNo(report.Advanced.IsValid), len(report.Advanced.Errors), len(report.Advanced.Warnings)},
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetSheetRow(sheetSummary, cell, &row); err != nil {
			return fmt.Errorf("write summary row: %w", err)
		}
	}
	return f.SetColWidth(sheetSummary, "A", "A", 24)
}

func writeDataSheet(f *excelize.File, ds *dataset.Dataset, report *validation.Report, headerStyle, errorStyle, warnStyle int) error {
	header := make([]any, len(ds.Columns))
	for i, c := range ds.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetData, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(ds.Columns), 1)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	if err := f.SetCellStyle(sheetData, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for r, row := range ds.Rows {
		cells := make([]any, len(row))
		for i, v := range row {
			cells[i] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetSheetRow(sheetData, cell, &cells); err != nil {
			return fmt.Errorf("write data row: %w", err)
		}
	}

	for ref, style := range offendingCells(report, errorStyle, warnStyle) {
		idx, ok := ds.ColumnIndex(ref.col)
		if !ok || ref.row < 0 || ref.row >= ds.Len() {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(idx+1, ref.row+2)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetCellStyle(sheetData, cell, cell, style); err != nil {
			return fmt.Errorf("style cell: %w", err)
		}
	}
	return nil
}

// offendingCells maps each flagged cell to its highlight style. Error
// findings win over warnings when both touch the same cell.
func offendingCells(report *validation.Report, errorStyle, warnStyle int) map[cellRef]int {
	cells := make(map[cellRef]int)
	mark := func(row int, col string, style int) {
		ref := cellRef{row: row, col: col}
		if prev, ok := cells[ref]; ok && prev == errorStyle {
			return
		}
		cells[ref] = style
	}

	schema := report.Summary.Categorization

	// Duplicate rows: flag the identifier cells of every involved row.
	for _, dup := range report.Duplicates.DuplicateItems {
		for _, row := range dup.RowIndices {
			for _, col := range schema.ItemIDVars {
				mark(row, col, errorStyle)
			}
		}
	}

	// Metadata gaps.
	for col, rows := range report.Metadata.MissingValues {
		for _, row := range rows {
			mark(row, col, errorStyle)
		}
	}

	// Classification gaps are warnings.
	for col, rows := range report.Classification.EmptyCells {
		for _, row := range rows {
			mark(row, col, warnStyle)
		}
	}

	return cells
}

func writeFindingsSheet(f *excelize.File, report *validation.Report, headerStyle int) error {
	header := []any{"Validación", "Severidad", "Código", "Mensaje"}
	if err := f.SetSheetRow(sheetFindings, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := f.SetCellStyle(sheetFindings, "A1", "D1", headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	line := 2
	write := func(check string, row []any) error {
		cell, err := excelize.CoordinatesToCellName(1, line)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetSheetRow(sheetFindings, cell, &row); err != nil {
			return fmt.Errorf("write finding: %w", err)
		}
		line++
		return nil
	}

	for _, section := range []struct {
		name   string
		result validation.Result
	}{
		{"Ítems duplicados", report.Duplicates.Result},
		{"Metadatos", report.Metadata.Result},
		{"Clasificación", report.Classification.Result},
		{"Avanzada", report.Advanced.Result},
	} {
		for _, e := range section.result.Errors {
			if err := write(section.name, []any{section.name, string(e.Severity), e.Code, e.Message}); err != nil {
				return err
			}
		}
		for _, w := range section.result.Warnings {
			if err := write(section.name, []any{section.name, "warning", w.Code, w.Message}); err != nil {
				return err
			}
		}
	}

	return f.SetColWidth(sheetFindings, "D", "D", 80)
}

func statusLabel(s validation.Status) string {
	switch s {
	case validation.StatusSuccess:
		return "Exitosa"
	case validation.StatusWarning:
		return "Con advertencias"
	default:
		return "Con errores"
	}
}

func yesNo(b bool) string {
	if b {
		return "Sí"
	}
	return "No"
}
