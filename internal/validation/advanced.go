package validation

// advanced.go runs the opt-in user-configured constraints.
//
// This check is the only one driven by free-form user input, so it is
// isolated from the mandatory battery: a panic here is recovered into a
// single ADVANCED_VALIDATION_ERROR entry and the other checks are
// unaffected. Both violations and passes are recorded, in the same
// shape, so the report can render "OK" rows.

import (
	"fmt"
	"strings"

	"github.com/mquintana/itemcheck/internal/dataset"
)

// ValidateAdvanced evaluates the item-count and key-variable constraints
// configured on the schema. Absent or empty options are a pass-through
// success with explicit has_* flags so consumers can hide the section.
func ValidateAdvanced(d *dataset.Dataset, s *Schema, p *Partition) (result *AdvancedResult) {
	result = &AdvancedResult{
		Result:                newResult(),
		ItemCountViolations:   []ItemCountRecord{},
		ItemCountPassed:       []ItemCountRecord{},
		KeyVariableViolations: []KeyVariableRecord{},
		KeyVariablePassed:     []KeyVariableRecord{},
		ValidationParameters: map[string]any{
			"has_item_count_constraints":   false,
			"has_key_variable_constraints": false,
		},
	}

	if s.Advanced.Empty() {
		return result
	}

	defer func() {
		if r := recover(); r != nil {
			result.addError(
				fmt.Sprintf("Error durante validación de constraints avanzados: %v", r),
				CodeAdvancedValidationError,
				SeverityError,
				nil,
			)
		}
	}()

	opts := s.Advanced
	result.ValidationParameters["has_item_count_constraints"] = len(opts.ItemCountConstraints) > 0
	result.ValidationParameters["has_key_variable_constraints"] = len(opts.KeyVariableConstraints) > 0

	for _, c := range opts.ItemCountConstraints {
		checkItemCount(result, p, c)
	}
	for _, c := range opts.KeyVariableConstraints {
		checkKeyVariable(result, d, p, c)
	}

	result.Statistics["total_constraints_checked"] = len(opts.ItemCountConstraints) + len(opts.KeyVariableConstraints)
	result.Statistics["total_violations"] = len(result.ItemCountViolations) + len(result.KeyVariableViolations)
	result.Statistics["instruments_analyzed"] = p.Len()

	return result
}

// checkItemCount compares each resolved instrument's row count against
// the expected count.
func checkItemCount(result *AdvancedResult, p *Partition, c ItemCountConstraint) {
	for _, inst := range resolveScope(c.Scope, p) {
		rec := ItemCountRecord{
			Instrument:        inst.Key,
			InstrumentDisplay: inst.DisplayName,
			ExpectedCount:     c.ExpectedCount,
			ActualCount:       inst.Size(),
			Difference:        inst.Size() - c.ExpectedCount,
		}

		if rec.Difference == 0 {
			result.ItemCountPassed = append(result.ItemCountPassed, rec)
			continue
		}

		result.ItemCountViolations = append(result.ItemCountViolations, rec)
		result.addError(
			fmt.Sprintf("Instrumento '%s': se esperaban %d ítems, se encontraron %d",
				inst.DisplayName, c.ExpectedCount, inst.Size()),
			CodeItemCountViolation,
			SeverityError,
			map[string]any{
				"instrument":     inst.Key,
				"expected_count": c.ExpectedCount,
				"actual_count":   inst.Size(),
				"difference":     rec.Difference,
			},
		)
	}
}

// checkKeyVariable verifies distinct-value cardinality and, when an
// expected value set is configured, exact value membership. A variable
// absent from the dataset is a standalone violation and short-circuits
// the constraint.
func checkKeyVariable(result *AdvancedResult, d *dataset.Dataset, p *Partition, c KeyVariableConstraint) {
	if !d.HasColumn(c.VariableName) {
		result.KeyVariableViolations = append(result.KeyVariableViolations, KeyVariableRecord{
			Variable: c.VariableName,
		})
		result.addError(
			fmt.Sprintf("Variable de clave '%s' no encontrada en los datos", c.VariableName),
			CodeKeyVariableViolation,
			SeverityError,
			map[string]any{"variable": c.VariableName},
		)
		return
	}

	for _, inst := range resolveScope(c.Scope, p) {
		checkKeyInInstrument(result, d, inst, c)
	}
}

func checkKeyInInstrument(result *AdvancedResult, d *dataset.Dataset, inst *Instrument, c KeyVariableConstraint) {
	actualSet := make(map[string]bool)
	for _, row := range inst.RowIndices {
		if val, _ := d.Value(row, c.VariableName); val != "" {
			actualSet[NormalizeValue(val)] = true
		}
	}
	actual := sortedStrings(actualSet)

	checkCardinality := c.ExpectedKeyCount > 0
	checkValues := len(c.ExpectedValues) > 0
	if !checkCardinality && !checkValues {
		return
	}

	cardinalityOK := !checkCardinality || len(actual) == c.ExpectedKeyCount

	var matched, unexpected, missing []string
	valuesOK := true
	if checkValues {
		expectedSet := make(map[string]bool, len(c.ExpectedValues))
		for _, v := range c.ExpectedValues {
			expectedSet[NormalizeValue(v)] = true
		}
		matchedSet := make(map[string]bool)
		unexpectedSet := make(map[string]bool)
		for v := range actualSet {
			if expectedSet[v] {
				matchedSet[v] = true
			} else {
				unexpectedSet[v] = true
			}
		}
		missingSet := make(map[string]bool)
		for v := range expectedSet {
			if !actualSet[v] {
				missingSet[v] = true
			}
		}
		matched = sortedStrings(matchedSet)
		unexpected = sortedStrings(unexpectedSet)
		missing = sortedStrings(missingSet)
		valuesOK = len(unexpected) == 0 && len(missing) == 0
	}

	rec := KeyVariableRecord{
		Instrument:        inst.Key,
		InstrumentDisplay: inst.DisplayName,
		Variable:          c.VariableName,
		ActualCount:       len(actual),
		ActualValues:      actual,
	}
	if checkCardinality {
		rec.ExpectedCount = c.ExpectedKeyCount
	}
	if checkValues {
		rec.ExpectedValues = c.ExpectedValues
		rec.Matched = matched
		rec.Unexpected = unexpected
		rec.Missing = missing
	}

	if cardinalityOK && valuesOK {
		result.KeyVariablePassed = append(result.KeyVariablePassed, rec)
		return
	}

	result.KeyVariableViolations = append(result.KeyVariableViolations, rec)

	var parts []string
	if !cardinalityOK {
		parts = append(parts, fmt.Sprintf("se esperaban %d valores únicos, se encontraron %d",
			c.ExpectedKeyCount, len(actual)))
	}
	if !valuesOK {
		if len(unexpected) > 0 {
			parts = append(parts, "valores inesperados: "+strings.Join(unexpected, ", "))
		}
		if len(missing) > 0 {
			parts = append(parts, "valores faltantes: "+strings.Join(missing, ", "))
		}
	}

	result.addError(
		fmt.Sprintf("Instrumento '%s', variable '%s': %s",
			inst.DisplayName, c.VariableName, strings.Join(parts, "; ")),
		CodeKeyVariableViolation,
		SeverityError,
		map[string]any{
			"instrument":        inst.Key,
			"variable":          c.VariableName,
			"expected_count":    c.ExpectedKeyCount,
			"actual_count":      len(actual),
			"actual_values":     actual,
			"matched_values":    matched,
			"unexpected_values": unexpected,
			"missing_values":    missing,
		},
	)
}
