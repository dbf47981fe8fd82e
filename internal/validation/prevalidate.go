package validation

// prevalidate.go is the cheap early-exit check run before partitioning.
//
// Identification columns (instrument + item id) define the grouping key;
// a row with a missing key cannot be bucketed, and running the rule
// battery over a corrupted partition would produce misleading
// diagnostics. Any gap here is terminal for the run: the caller has to
// fix the data and resubmit.

import (
	"fmt"

	"github.com/mquintana/itemcheck/internal/dataset"
)

// PreValidate verifies that every instrument and item-id column has zero
// missing values. It returns one error per offending column, with the
// missing count and percentage in context. An empty slice means the full
// run may proceed.
func PreValidate(d *dataset.Dataset, s *Schema) []Error {
	var errs []Error

	total := d.Len()
	for _, col := range s.identificationVars() {
		if !d.HasColumn(col) {
			errs = append(errs, Error{
				Message:  fmt.Sprintf("La columna de identificación '%s' no existe en la base de datos", col),
				Code:     CodeMissingValuesInIdentification,
				Severity: SeverityError,
				Context: map[string]any{
					"column": col,
					"reason": "column_not_found",
				},
			})
			continue
		}

		missing := d.MissingIn(col)
		if len(missing) == 0 {
			continue
		}

		pct := 0.0
		if total > 0 {
			pct = round1(float64(len(missing)) / float64(total) * 100)
		}
		errs = append(errs, Error{
			Message: fmt.Sprintf("La columna de identificación '%s' tiene %d valores faltantes (%.1f%%)",
				col, len(missing), pct),
			Code:     CodeMissingValuesInIdentification,
			Severity: SeverityError,
			Context: map[string]any{
				"column":        col,
				"missing_count": len(missing),
				"total_count":   total,
				"percentage":    pct,
				"row_indices":   missing,
			},
		})
	}

	return errs
}
