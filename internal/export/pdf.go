package export

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/mquintana/itemcheck/internal/validation"
)

// SummaryPDF renders a one-page (or more, if findings overflow) PDF
// summary of a validation report.
func SummaryPDF(fileName string, report *validation.Report) (*bytes.Buffer, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr("Reporte de Validación de Ítems"), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr("Reporte de Validación de Ítems"), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 10)
	writeField := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(50, 6, tr(label), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 6, tr(value), "", 1, "L", false, 0, "")
	}

	writeField("Archivo:", fileName)
	writeField("Fecha:", report.Summary.Timestamp)
	writeField("Estado:", statusLabel(report.Summary.ValidationStatus))
	writeField("Total de ítems:", fmt.Sprintf("%d", report.Summary.TotalItems))
	writeField("Total de instrumentos:", fmt.Sprintf("%d", report.Summary.TotalInstruments))
	pdf.Ln(6)

	// Per-check result table
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(221, 235, 247)
	pdf.CellFormat(70, 7, tr("Validación"), "1", 0, "L", true, 0, "")
	pdf.CellFormat(30, 7, tr("Válida"), "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 7, "Errores", "1", 0, "C", true, 0, "")
	pdf.CellFormat(40, 7, "Advertencias", "1", 1, "C", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, section := range []struct {
		name   string
		result validation.Result
	}{
		{"Ítems duplicados", report.Duplicates.Result},
		{"Metadatos", report.Metadata.Result},
		{"Clasificación", report.Classification.Result},
		{"Avanzada", report.Advanced.Result},
	} {
		pdf.CellFormat(70, 7, tr(section.name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, tr(yesNo(section.result.IsValid)), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 7, fmt.Sprintf("%d", len(section.result.Errors)), "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 7, fmt.Sprintf("%d", len(section.result.Warnings)), "1", 1, "C", false, 0, "")
	}
	pdf.Ln(6)

	writeFindings(pdf, tr, report)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return &buf, nil
}

func writeFindings(pdf *fpdf.Fpdf, tr func(string) string, report *validation.Report) {
	type finding struct {
		check    string
		severity string
		message  string
	}

	var findings []finding
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
			findings = append(findings, finding{section.name, string(e.Severity), e.Message})
		}
		for _, w := range section.result.Warnings {
			findings = append(findings, finding{section.name, "warning", w.Message})
		}
	}

	if len(findings) == 0 {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.CellFormat(0, 7, tr("Sin hallazgos: la base de datos pasó todas las validaciones."), "", 1, "L", false, 0, "")
		return
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Hallazgos", "", 1, "L", false, 0, "")

	for _, f := range findings {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(0, 6, tr(fmt.Sprintf("[%s] %s", f.severity, f.check)), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.MultiCell(0, 5, tr(f.message), "", "L", false)
		pdf.Ln(2)
	}
}
