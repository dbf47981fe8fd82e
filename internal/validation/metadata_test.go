package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateMetadata_Complete(t *testing.T) {
	d := mustDataset(t, []string{"item_id", "key"}, [][]string{
		{"1", "A"}, {"2", "B"},
	})
	s := &Schema{ItemIDVars: []string{"item_id"}, MetadataVars: []string{"key"}}

	result := ValidateMetadata(d, s)

	assert.True(t, result.IsValid)
	assert.Equal(t, 100.0, result.CompletenessStats["key"])
	assert.Equal(t, []string{"A", "B"}, result.UniqueValues["key"])
	assert.Equal(t, 100.0, result.Statistics["average_completeness"])
}

func TestValidateMetadata_MissingValueIsError(t *testing.T) {
	d := mustDataset(t, []string{"item_id", "key"}, [][]string{
		{"1", "A"}, {"2", ""}, {"3", "B"}, {"4", "A"},
	})
	s := &Schema{ItemIDVars: []string{"item_id"}, MetadataVars: []string{"key"}}

	result := ValidateMetadata(d, s)

	assert.False(t, result.IsValid)
	assert.Less(t, result.CompletenessStats["key"], 100.0)
	assert.Equal(t, []int{1}, result.MissingValues["key"])

	require.Len(t, result.Errors, 1)
	assert.Equal(t, CodeIncompleteMetadata, result.Errors[0].Code)
	assert.Equal(t, 1, result.Errors[0].Context["missing_count"])
}

func TestValidateMetadata_AbsentVariable(t *testing.T) {
	d := mustDataset(t, []string{"item_id"}, [][]string{{"1"}})
	s := &Schema{ItemIDVars: []string{"item_id"}, MetadataVars: []string{"clave"}}

	result := ValidateMetadata(d, s)

	assert.False(t, result.IsValid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, CodeMetadataVarNotFound, result.Errors[0].Code)
}

func TestValidateMetadata_NoneConfigured(t *testing.T) {
	d := mustDataset(t, []string{"item_id"}, [][]string{{"1"}})
	s := &Schema{ItemIDVars: []string{"item_id"}}

	result := ValidateMetadata(d, s)

	assert.True(t, result.IsValid)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, CodeNoMetadataVars, result.Warnings[0].Code)
}

func TestSmartSortValues(t *testing.T) {
	got := smartSortValues([]string{"B", "10", "2", "A", "1.5"})
	assert.Equal(t, []string{"1.5", "2", "10", "A", "B"}, got)
}
