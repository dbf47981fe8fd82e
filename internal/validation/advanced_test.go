package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAdvanced_OptInNeutrality(t *testing.T) {
	d := mustDataset(t, []string{"item_id", "key"}, [][]string{
		{"1", ""}, {"1", ""}, // data full of problems for the other checks
	})
	p := BuildPartition(d, nil)

	for _, s := range []*Schema{
		{ItemIDVars: []string{"item_id"}},
		{ItemIDVars: []string{"item_id"}, Advanced: &AdvancedOptions{}},
	} {
		result := ValidateAdvanced(d, s, p)
		assert.True(t, result.IsValid)
		assert.Empty(t, result.Errors)
		assert.Empty(t, result.ItemCountViolations)
		assert.Empty(t, result.KeyVariableViolations)
		assert.Equal(t, false, result.ValidationParameters["has_item_count_constraints"])
		assert.Equal(t, false, result.ValidationParameters["has_key_variable_constraints"])
	}
}

// Two instruments with 2 and 3 rows against a global expected count of 2:
// one pass, one violation with difference = 1.
func TestValidateAdvanced_ItemCountGlobal(t *testing.T) {
	d := mustDataset(t, []string{"form", "item_id"}, [][]string{
		{"A", "1"}, {"A", "2"},
		{"B", "1"}, {"B", "2"}, {"B", "3"},
	})
	s := &Schema{
		InstrumentVars: []string{"form"},
		ItemIDVars:     []string{"item_id"},
		Advanced: &AdvancedOptions{
			ItemCountConstraints: []ItemCountConstraint{{ExpectedCount: 2, Scope: ScopeGlobal}},
		},
	}
	p := BuildPartition(d, s.InstrumentVars)

	result := ValidateAdvanced(d, s, p)

	assert.False(t, result.IsValid)

	// Global law: one record per instrument, counting passes and violations.
	assert.Equal(t, p.Len(), len(result.ItemCountPassed)+len(result.ItemCountViolations))

	require.Len(t, result.ItemCountPassed, 1)
	assert.Equal(t, "form:A", result.ItemCountPassed[0].Instrument)

	require.Len(t, result.ItemCountViolations, 1)
	v := result.ItemCountViolations[0]
	assert.Equal(t, "form:B", v.Instrument)
	assert.Equal(t, 2, v.ExpectedCount)
	assert.Equal(t, 3, v.ActualCount)
	assert.Equal(t, 1, v.Difference)

	require.Len(t, result.Errors, 1)
	assert.Equal(t, CodeItemCountViolation, result.Errors[0].Code)
}

func TestValidateAdvanced_ItemCountScopedToInstrument(t *testing.T) {
	d := mustDataset(t, []string{"form", "item_id"}, [][]string{
		{"A", "1"}, {"B", "1"}, {"B", "2"},
	})
	s := &Schema{
		InstrumentVars: []string{"form"},
		ItemIDVars:     []string{"item_id"},
		Advanced: &AdvancedOptions{
			ItemCountConstraints: []ItemCountConstraint{{ExpectedCount: 2, Scope: "form:B"}},
		},
	}
	p := BuildPartition(d, s.InstrumentVars)

	result := ValidateAdvanced(d, s, p)

	assert.True(t, result.IsValid)
	require.Len(t, result.ItemCountPassed, 1)
	assert.Equal(t, "form:B", result.ItemCountPassed[0].Instrument)
	assert.Empty(t, result.ItemCountViolations)
}

// Key column holds {A,B,C,E}: cardinality matches (4 expected, 4 found)
// but the value sets diverge: unexpected [E], missing [D].
func TestValidateAdvanced_KeyVariableValueSets(t *testing.T) {
	d := mustDataset(t, []string{"item_id", "key"}, [][]string{
		{"1", "A"}, {"2", "B"}, {"3", "C"}, {"4", "E"},
	})
	expected := []string{"A", "B", "C", "D"}
	s := &Schema{
		ItemIDVars: []string{"item_id"},
		Advanced: &AdvancedOptions{
			KeyVariableConstraints: []KeyVariableConstraint{{
				VariableName:     "key",
				ExpectedKeyCount: 4,
				ExpectedValues:   expected,
				Scope:            ScopeGlobal,
			}},
		},
	}
	p := BuildPartition(d, nil)

	result := ValidateAdvanced(d, s, p)

	assert.False(t, result.IsValid)
	require.Len(t, result.KeyVariableViolations, 1)

	v := result.KeyVariableViolations[0]
	assert.Equal(t, 4, v.ExpectedCount)
	assert.Equal(t, 4, v.ActualCount)
	assert.Equal(t, []string{"E"}, v.Unexpected)
	assert.Equal(t, []string{"D"}, v.Missing)
	assert.Equal(t, []string{"A", "B", "C"}, v.Matched)

	// Value-set law: matched ∪ missing = expected, disjoint; unexpected
	// never intersects expected.
	union := map[string]bool{}
	for _, x := range v.Matched {
		union[x] = true
	}
	for _, x := range v.Missing {
		assert.False(t, union[x], "matched and missing must be disjoint")
		union[x] = true
	}
	assert.Len(t, union, len(expected))
	for _, x := range expected {
		assert.True(t, union[x])
	}
	for _, x := range v.Unexpected {
		assert.NotContains(t, expected, x)
	}
}

func TestValidateAdvanced_KeyVariableCardinalityOnly(t *testing.T) {
	d := mustDataset(t, []string{"item_id", "key"}, [][]string{
		{"1", "A"}, {"2", "B"}, {"3", "A"},
	})
	s := &Schema{
		ItemIDVars: []string{"item_id"},
		Advanced: &AdvancedOptions{
			KeyVariableConstraints: []KeyVariableConstraint{{
				VariableName:     "key",
				ExpectedKeyCount: 2,
				Scope:            ScopeGlobal,
			}},
		},
	}
	p := BuildPartition(d, nil)

	result := ValidateAdvanced(d, s, p)

	assert.True(t, result.IsValid)
	require.Len(t, result.KeyVariablePassed, 1)
	assert.Equal(t, 2, result.KeyVariablePassed[0].ActualCount)
}

func TestValidateAdvanced_KeyVariableNumericNormalization(t *testing.T) {
	// "4" and "4.0" are the same key value.
	d := mustDataset(t, []string{"item_id", "key"}, [][]string{
		{"1", "4"}, {"2", "4.0"},
	})
	s := &Schema{
		ItemIDVars: []string{"item_id"},
		Advanced: &AdvancedOptions{
			KeyVariableConstraints: []KeyVariableConstraint{{
				VariableName:     "key",
				ExpectedKeyCount: 1,
				ExpectedValues:   []string{"4"},
				Scope:            ScopeGlobal,
			}},
		},
	}
	p := BuildPartition(d, nil)

	result := ValidateAdvanced(d, s, p)

	assert.True(t, result.IsValid)
	assert.Empty(t, result.KeyVariableViolations)
}

func TestValidateAdvanced_AbsentVariableShortCircuits(t *testing.T) {
	d := mustDataset(t, []string{"item_id"}, [][]string{{"1"}})
	s := &Schema{
		ItemIDVars: []string{"item_id"},
		Advanced: &AdvancedOptions{
			KeyVariableConstraints: []KeyVariableConstraint{{
				VariableName:     "clave",
				ExpectedKeyCount: 4,
				Scope:            ScopeGlobal,
			}},
		},
	}
	p := BuildPartition(d, nil)

	result := ValidateAdvanced(d, s, p)

	assert.False(t, result.IsValid)
	require.Len(t, result.KeyVariableViolations, 1)
	assert.Equal(t, "clave", result.KeyVariableViolations[0].Variable)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, CodeKeyVariableViolation, result.Errors[0].Code)
}

// Known ambiguity, preserved on purpose: a constraint whose scope names
// an instrument key that no longer exists resolves to nothing and
// silently produces zero violations. Callers are expected to surface
// stale scopes at configuration time, not here.
func TestValidateAdvanced_StaleScopeIsNoOp(t *testing.T) {
	d := mustDataset(t, []string{"form", "item_id"}, [][]string{
		{"A", "1"},
	})
	s := &Schema{
		InstrumentVars: []string{"form"},
		ItemIDVars:     []string{"item_id"},
		Advanced: &AdvancedOptions{
			ItemCountConstraints: []ItemCountConstraint{{ExpectedCount: 99, Scope: "version:old"}},
			KeyVariableConstraints: []KeyVariableConstraint{{
				VariableName:     "item_id",
				ExpectedKeyCount: 99,
				Scope:            "version:old",
			}},
		},
	}
	p := BuildPartition(d, s.InstrumentVars)

	result := ValidateAdvanced(d, s, p)

	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.ItemCountViolations)
	assert.Empty(t, result.ItemCountPassed)
	assert.Empty(t, result.KeyVariableViolations)
	assert.Empty(t, result.KeyVariablePassed)
}
