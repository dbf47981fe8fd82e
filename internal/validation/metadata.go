package validation

// metadata.go checks completeness of metadata variables.
//
// Metadata columns (answer key, inversion flag, scoring weight) are
// fields the source system guarantees are always populated. Any gap is a
// data-entry defect and surfaces as an error, not a warning. Coverage is
// computed over the full dataset, not per instrument.

import (
	"fmt"

	"github.com/mquintana/itemcheck/internal/dataset"
)

// ValidateMetadata computes per-variable completeness and the unique
// observed values of every metadata variable.
func ValidateMetadata(d *dataset.Dataset, s *Schema) *MetadataResult {
	result := &MetadataResult{
		Result:            newResult(),
		MissingValues:     map[string][]int{},
		CompletenessStats: map[string]float64{},
		UniqueValues:      map[string][]string{},
		ValidationParameters: map[string]any{
			"metadata_variables":   s.MetadataVars,
			"validation_method":    "Análisis de completitud de variables de metadata",
			"total_items_analyzed": d.Len(),
		},
	}

	if len(s.MetadataVars) == 0 {
		result.addWarning("No se han definido variables de metadata", CodeNoMetadataVars, nil)
		return result
	}

	total := d.Len()
	totalMissing := 0

	for _, v := range s.MetadataVars {
		if !d.HasColumn(v) {
			result.addError(
				fmt.Sprintf("Variable de metadata '%s' no encontrada en los datos", v),
				CodeMetadataVarNotFound,
				SeverityError,
				map[string]any{"variable": v},
			)
			continue
		}

		missing := d.MissingIn(v)
		completeness := 100.0
		if total > 0 {
			completeness = round2(float64(total-len(missing)) / float64(total) * 100)
		}
		result.CompletenessStats[v] = completeness

		if len(missing) > 0 {
			result.MissingValues[v] = missing
			totalMissing += len(missing)
			result.addError(
				fmt.Sprintf("Variable de metadata '%s' tiene %d valores faltantes", v, len(missing)),
				CodeIncompleteMetadata,
				SeverityError,
				map[string]any{
					"variable":      v,
					"missing_count": len(missing),
					"total_count":   total,
					"completeness":  completeness,
					"row_indices":   missing,
				},
			)
		}

		seen := make(map[string]bool)
		for row := 0; row < total; row++ {
			if val, _ := d.Value(row, v); val != "" {
				seen[val] = true
			}
		}
		result.UniqueValues[v] = smartSortValues(sortedStrings(seen))
	}

	if len(result.CompletenessStats) > 0 {
		sum := 0.0
		for _, pct := range result.CompletenessStats {
			sum += pct
		}
		result.Statistics["average_completeness"] = round2(sum / float64(len(result.CompletenessStats)))
	}
	result.Statistics["total_missing_values"] = totalMissing
	result.Statistics["variables_with_missing"] = len(result.MissingValues)

	return result
}
