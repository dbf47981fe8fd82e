package validation

// result.go defines the result model shared by all checks.
//
// Every check produces a typed result embedding Result: a validity flag,
// error and warning lists with stable machine codes, and a statistics
// map. Context maps carry enough detail (instrument key, variable name,
// counts, value sets) for the Excel/PDF/UI renderers to locate affected
// rows without recomputing anything.

// Severity classifies a validation finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Stable error-code vocabulary consumed by the UI for localized messages.
const (
	CodeMissingValuesInIdentification = "MISSING_VALUES_IN_IDENTIFICATION"
	CodeDuplicateItem                 = "DUPLICATE_ITEM"
	CodeIncompleteMetadata            = "INCOMPLETE_METADATA"
	CodeItemCountViolation            = "ITEM_COUNT_VIOLATION"
	CodeKeyVariableViolation          = "KEY_VARIABLE_VIOLATION"
	CodeAdvancedValidationError       = "ADVANCED_VALIDATION_ERROR"

	// Structural codes: a referenced column is absent from the dataset.
	CodeMetadataVarNotFound       = "METADATA_VAR_NOT_FOUND"
	CodeClassificationVarNotFound = "CLASSIFICATION_VAR_NOT_FOUND"

	// Informational codes for empty role assignments.
	CodeNoMetadataVars       = "NO_METADATA_VARS"
	CodeNoClassificationVars = "NO_CLASSIFICATION_VARS"
	CodeClassificationGaps   = "CLASSIFICATION_EMPTY_CELLS"

	// Terminal run failures outside any single check.
	CodeRunFailed             = "VALIDATION_RUN_FAILED"
	CodeInvalidCategorization = "INVALID_CATEGORIZATION"
)

// Error is a validation error with a ready-to-render message and
// machine-actionable context.
type Error struct {
	Message  string         `json:"message"`
	Code     string         `json:"code"`
	Severity Severity       `json:"severity"`
	Context  map[string]any `json:"context,omitempty"`
}

// Warning is a non-fatal validation finding.
type Warning struct {
	Message string         `json:"message"`
	Code    string         `json:"code"`
	Context map[string]any `json:"context,omitempty"`
}

// Result is the common shape of every check result.
type Result struct {
	IsValid    bool           `json:"is_valid"`
	Errors     []Error        `json:"errors"`
	Warnings   []Warning      `json:"warnings"`
	Statistics map[string]any `json:"statistics"`
}

func newResult() Result {
	return Result{
		IsValid:    true,
		Errors:     []Error{},
		Warnings:   []Warning{},
		Statistics: map[string]any{},
	}
}

// addError appends an error and invalidates the result when severity is error.
func (r *Result) addError(message, code string, severity Severity, context map[string]any) {
	r.Errors = append(r.Errors, Error{Message: message, Code: code, Severity: severity, Context: context})
	if severity == SeverityError {
		r.IsValid = false
	}
}

// addWarning appends a warning without affecting validity.
func (r *Result) addWarning(message, code string, context map[string]any) {
	r.Warnings = append(r.Warnings, Warning{Message: message, Code: code, Context: context})
}

// DuplicateItem is a group of rows sharing the same item id within one
// instrument.
type DuplicateItem struct {
	ItemID     string `json:"item_id"`
	Instrument string `json:"instrument"`
	RowIndices []int  `json:"row_indices"`
}

// DuplicateResult is produced by the duplicate item check.
type DuplicateResult struct {
	Result
	DuplicateItems       []DuplicateItem `json:"duplicate_items"`
	InstrumentsAnalyzed  int             `json:"instruments_analyzed"`
	TotalItemsChecked    int             `json:"total_items_checked"`
	ValidationParameters map[string]any  `json:"validation_parameters"`
}

// MetadataResult is produced by the metadata completeness check.
type MetadataResult struct {
	Result
	// MissingValues maps variable name to the row indices with gaps.
	MissingValues map[string][]int `json:"missing_values"`
	// CompletenessStats maps variable name to completeness percentage.
	CompletenessStats map[string]float64 `json:"completeness_stats"`
	// UniqueValues maps variable name to its observed values, smart-sorted.
	UniqueValues         map[string][]string `json:"unique_values_summary"`
	ValidationParameters map[string]any      `json:"validation_parameters"`
}

// ClassificationProfile describes one classification variable within one
// instrument.
type ClassificationProfile struct {
	UniqueCount int `json:"unique_count"`
	EmptyCount  int `json:"empty_count"`
}

// ClassificationResult is produced by the classification profile check.
type ClassificationResult struct {
	Result
	// EmptyCells maps variable name to dataset-wide row indices with gaps.
	EmptyCells map[string][]int `json:"empty_cells"`
	// Profiles maps instrument key -> variable name -> profile.
	Profiles             map[string]map[string]ClassificationProfile `json:"profiles_per_instrument"`
	CompletenessStats    map[string]float64                          `json:"completeness_stats"`
	ValidationParameters map[string]any                              `json:"validation_parameters"`
}

// ItemCountRecord is one item-count constraint evaluation against one
// instrument. The same shape is used for violations and passes so the
// report can show "OK" rows, not only failures.
type ItemCountRecord struct {
	Instrument        string `json:"instrument"`
	InstrumentDisplay string `json:"instrument_display"`
	ExpectedCount     int    `json:"expected_count"`
	ActualCount       int    `json:"actual_count"`
	Difference        int    `json:"difference"`
}

// KeyVariableRecord is one key-variable constraint evaluation against
// one instrument.
type KeyVariableRecord struct {
	Instrument        string   `json:"instrument"`
	InstrumentDisplay string   `json:"instrument_display"`
	Variable          string   `json:"variable"`
	ExpectedCount     int      `json:"expected_count,omitempty"`
	ActualCount       int      `json:"actual_count"`
	ExpectedValues    []string `json:"expected_values,omitempty"`
	ActualValues      []string `json:"actual_values"`
	Matched           []string `json:"matched_values,omitempty"`
	Unexpected        []string `json:"unexpected_values,omitempty"`
	Missing           []string `json:"missing_values,omitempty"`
}

// AdvancedResult is produced by the opt-in advanced constraints check.
type AdvancedResult struct {
	Result
	ItemCountViolations   []ItemCountRecord   `json:"item_count_violations"`
	ItemCountPassed       []ItemCountRecord   `json:"item_count_passed"`
	KeyVariableViolations []KeyVariableRecord `json:"key_variable_violations"`
	KeyVariablePassed     []KeyVariableRecord `json:"key_variable_passed"`
	ValidationParameters  map[string]any      `json:"validation_parameters"`
}
