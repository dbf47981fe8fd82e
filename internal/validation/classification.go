package validation

// classification.go profiles classification variables per instrument.
//
// Classification columns (domain, difficulty level, cognitive process)
// are descriptive and allowed to be incomplete: gaps produce warnings
// with empty-cell counts, never a hard error. Only structural problems,
// a referenced column absent from the dataset, invalidate the result.

import (
	"fmt"

	"github.com/mquintana/itemcheck/internal/dataset"
)

// ValidateClassification reports, per instrument and per classification
// variable, the distinct non-empty value count and the empty-cell count.
func ValidateClassification(d *dataset.Dataset, s *Schema, p *Partition) *ClassificationResult {
	result := &ClassificationResult{
		Result:            newResult(),
		EmptyCells:        map[string][]int{},
		Profiles:          map[string]map[string]ClassificationProfile{},
		CompletenessStats: map[string]float64{},
		ValidationParameters: map[string]any{
			"classification_variables":   s.ClassificationVars,
			"instrument_variables":       s.InstrumentVars,
			"validation_method":          "Análisis de valores únicos y completitud por instrumento",
			"total_instruments_analyzed": p.Len(),
			"total_items_analyzed":       d.Len(),
		},
	}

	if len(s.ClassificationVars) == 0 {
		result.addWarning("No se han definido variables de clasificación", CodeNoClassificationVars, nil)
		return result
	}

	total := d.Len()
	totalEmpty := 0

	for _, v := range s.ClassificationVars {
		if !d.HasColumn(v) {
			result.addError(
				fmt.Sprintf("Variable de clasificación '%s' no encontrada en los datos", v),
				CodeClassificationVarNotFound,
				SeverityError,
				map[string]any{"variable": v},
			)
			continue
		}

		empty := d.MissingIn(v)
		completeness := 100.0
		if total > 0 {
			completeness = round2(float64(total-len(empty)) / float64(total) * 100)
		}
		result.CompletenessStats[v] = completeness

		if len(empty) > 0 {
			result.EmptyCells[v] = empty
			totalEmpty += len(empty)
			result.addWarning(
				fmt.Sprintf("Variable de clasificación '%s' tiene %d celdas vacías", v, len(empty)),
				CodeClassificationGaps,
				map[string]any{
					"variable":     v,
					"empty_count":  len(empty),
					"total_count":  total,
					"completeness": completeness,
					"row_indices":  empty,
				},
			)
		}

		for _, inst := range p.Instruments() {
			profile := profileVariable(d, v, inst)
			if _, ok := result.Profiles[inst.Key]; !ok {
				result.Profiles[inst.Key] = map[string]ClassificationProfile{}
			}
			result.Profiles[inst.Key][v] = profile
		}
	}

	if len(result.CompletenessStats) > 0 {
		sum := 0.0
		for _, pct := range result.CompletenessStats {
			sum += pct
		}
		result.Statistics["average_completeness"] = round2(sum / float64(len(result.CompletenessStats)))
	}
	result.Statistics["total_empty_cells"] = totalEmpty
	result.Statistics["variables_with_empty_cells"] = len(result.EmptyCells)
	result.Statistics["instruments_analyzed"] = p.Len()

	return result
}

// profileVariable counts distinct non-empty values and empty cells of
// one variable within one instrument.
func profileVariable(d *dataset.Dataset, variable string, inst *Instrument) ClassificationProfile {
	seen := make(map[string]bool)
	empty := 0
	for _, row := range inst.RowIndices {
		val, _ := d.Value(row, variable)
		if val == "" {
			empty++
			continue
		}
		seen[NormalizeValue(val)] = true
	}
	return ClassificationProfile{UniqueCount: len(seen), EmptyCount: empty}
}
