package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreValidate_CleanData(t *testing.T) {
	d := mustDataset(t, []string{"form", "item_id"}, [][]string{
		{"A", "1"}, {"A", "2"},
	})
	s := &Schema{InstrumentVars: []string{"form"}, ItemIDVars: []string{"item_id"}}

	assert.Empty(t, PreValidate(d, s))
}

func TestPreValidate_MissingIdentification(t *testing.T) {
	d := mustDataset(t, []string{"form", "item_id"}, [][]string{
		{"A", "1"}, {"", "2"}, {"A", ""}, {"", "4"},
	})
	s := &Schema{InstrumentVars: []string{"form"}, ItemIDVars: []string{"item_id"}}

	errs := PreValidate(d, s)
	require.Len(t, errs, 2, "one error per offending column")

	byColumn := map[string]Error{}
	for _, e := range errs {
		assert.Equal(t, CodeMissingValuesInIdentification, e.Code)
		assert.Equal(t, SeverityError, e.Severity)
		byColumn[e.Context["column"].(string)] = e
	}

	form := byColumn["form"]
	assert.Equal(t, 2, form.Context["missing_count"])
	assert.Equal(t, 50.0, form.Context["percentage"])

	item := byColumn["item_id"]
	assert.Equal(t, 1, item.Context["missing_count"])
	assert.Equal(t, 25.0, item.Context["percentage"])
}

func TestPreValidate_AbsentColumn(t *testing.T) {
	d := mustDataset(t, []string{"item_id"}, [][]string{{"1"}})
	s := &Schema{InstrumentVars: []string{"forma"}, ItemIDVars: []string{"item_id"}}

	errs := PreValidate(d, s)
	require.Len(t, errs, 1)
	assert.Equal(t, CodeMissingValuesInIdentification, errs[0].Code)
	assert.Equal(t, "column_not_found", errs[0].Context["reason"])
}
