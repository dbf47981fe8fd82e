// Command itemcheck validates an item spreadsheet from the command line,
// without the HTTP server. The variable categorization comes from a YAML
// profile instead of the interactive UI.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mquintana/itemcheck/internal/dataset"
	"github.com/mquintana/itemcheck/internal/export"
	"github.com/mquintana/itemcheck/internal/validation"
)

var (
	dataPath       string
	profilePath    string
	reportPath     string
	excelPath      string
	normalizedPath string
	pdfPath        string
)

func main() {
	root := &cobra.Command{
		Use:          "itemcheck",
		Short:        "Validate item spreadsheets against a categorization profile",
		SilenceUsage: true,
	}

	validate := &cobra.Command{
		Use:   "validate",
		Short: "Run the full validation battery on a spreadsheet",
		Long: `Validate parses the spreadsheet, applies the variable categorization
from the YAML profile and runs every check: duplicate items per
instrument, metadata completeness, classification profiles and the
optional advanced constraints.

Exit codes: 0 when validation passes (warnings included), 1 when the
report carries errors, 2 when the run itself could not complete.`,
		RunE: runValidate,
	}

	validate.Flags().StringVar(&dataPath, "data", "", "spreadsheet to validate (.csv or .xlsx)")
	validate.Flags().StringVar(&profilePath, "profile", "", "YAML categorization profile")
	validate.Flags().StringVar(&reportPath, "report", "", "write the JSON report to this file (default: stdout)")
	validate.Flags().StringVar(&excelPath, "excel", "", "write the annotated Excel workbook to this file")
	validate.Flags().StringVar(&normalizedPath, "normalized", "", "write the normalized-data workbook to this file")
	validate.Flags().StringVar(&pdfPath, "pdf", "", "write the PDF summary to this file")
	validate.MarkFlagRequired("data")
	validate.MarkFlagRequired("profile")

	root.AddCommand(validate)

	if err := root.Execute(); err != nil {
		os.Exit(2)
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(dataPath)
	if err != nil {
		return fmt.Errorf("read data file: %w", err)
	}
	ds, err := dataset.Parse(dataPath, data)
	if err != nil {
		return err
	}

	schema, err := validation.LoadProfile(profilePath)
	if err != nil {
		return err
	}

	outcome := validation.NewEngine().Run(ds, schema)

	switch outcome.Kind {
	case validation.OutcomeOK:
		if err := writeOutputs(ds, outcome.Report); err != nil {
			return err
		}
		report := outcome.Report
		fmt.Fprintf(cmd.ErrOrStderr(), "Estado: %s (ítems: %d, instrumentos: %d)\n",
			report.Summary.ValidationStatus, report.Summary.TotalItems, report.Summary.TotalInstruments)
		if report.Summary.ValidationStatus == validation.StatusError {
			os.Exit(1)
		}
		return nil

	case validation.OutcomePreValidationFailed:
		fmt.Fprintln(cmd.ErrOrStderr(), "La validación no puede ejecutarse: columnas de identificación incompletas.")
		for _, e := range outcome.Errors {
			fmt.Fprintf(cmd.ErrOrStderr(), "  - %s\n", e.Message)
		}
		os.Exit(2)

	default:
		for _, e := range outcome.Errors {
			fmt.Fprintf(cmd.ErrOrStderr(), "error: %s\n", e.Message)
		}
		os.Exit(2)
	}
	return nil
}

// writeOutputs emits the JSON report and any requested export artifacts.
func writeOutputs(ds *dataset.Dataset, report *validation.Report) error {
	encoded, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if reportPath == "" {
		fmt.Println(string(encoded))
	} else if err := os.WriteFile(reportPath, encoded, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if excelPath != "" {
		buf, err := export.ReportWorkbook(ds, report)
		if err != nil {
			return err
		}
		if err := os.WriteFile(excelPath, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write excel: %w", err)
		}
	}

	if normalizedPath != "" {
		buf, err := export.NormalizedWorkbook(ds, report.Summary.Categorization)
		if err != nil {
			return err
		}
		if err := os.WriteFile(normalizedPath, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write normalized workbook: %w", err)
		}
	}

	if pdfPath != "" {
		buf, err := export.SummaryPDF(dataPath, report)
		if err != nil {
			return err
		}
		if err := os.WriteFile(pdfPath, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write pdf: %w", err)
		}
	}

	return nil
}
