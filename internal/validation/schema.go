package validation

import (
	"fmt"
	"strings"
)

// VariableRole is the semantic role a user assigns to a dataset column.
type VariableRole string

const (
	RoleInstrument     VariableRole = "instrument"
	RoleItemID         VariableRole = "item_id"
	RoleMetadata       VariableRole = "metadata"
	RoleClassification VariableRole = "classification"
	RoleOther          VariableRole = "other"
)

// Schema is the validated column-role assignment for one validation run.
// The five sets partition the dataset columns: a column belongs to
// exactly one role, and columns not assigned explicitly land in OtherVars
// during Normalize. Immutable once a run starts.
type Schema struct {
	InstrumentVars     []string `json:"instrument_vars" yaml:"instrument_vars"`
	ItemIDVars         []string `json:"item_id_vars" yaml:"item_id_vars"`
	MetadataVars       []string `json:"metadata_vars" yaml:"metadata_vars"`
	ClassificationVars []string `json:"classification_vars" yaml:"classification_vars"`
	OtherVars          []string `json:"other_vars" yaml:"other_vars"`

	// Advanced holds the opt-in user-defined constraints. Nil or empty
	// means the advanced check passes through.
	Advanced *AdvancedOptions `json:"advanced_options,omitempty" yaml:"advanced_options,omitempty"`
}

// AdvancedOptions are the opt-in user-configured constraints.
type AdvancedOptions struct {
	ItemCountConstraints   []ItemCountConstraint   `json:"item_count_constraints" yaml:"item_count_constraints"`
	KeyVariableConstraints []KeyVariableConstraint `json:"key_variable_constraints" yaml:"key_variable_constraints"`
}

// Empty reports whether no constraints are configured.
func (o *AdvancedOptions) Empty() bool {
	return o == nil || (len(o.ItemCountConstraints) == 0 && len(o.KeyVariableConstraints) == 0)
}

// ItemCountConstraint requires an instrument to contain an exact number
// of rows. Scope is ScopeGlobal or a specific instrument key.
type ItemCountConstraint struct {
	ExpectedCount int    `json:"expected_count" yaml:"expected_count"`
	Scope         string `json:"scope" yaml:"scope"`
}

// KeyVariableConstraint restricts the distinct values of a column within
// an instrument: expected cardinality (0 disables the cardinality check)
// and, optionally, the exact allowed value set.
type KeyVariableConstraint struct {
	VariableName     string   `json:"variable_name" yaml:"variable_name"`
	ExpectedKeyCount int      `json:"expected_key_count" yaml:"expected_key_count"`
	ExpectedValues   []string `json:"expected_values" yaml:"expected_values"`
	Scope            string   `json:"scope" yaml:"scope"`
}

// Roles returns the role assigned to each column, in role precedence
// order. Columns listed in several sets are reported by Validate.
func (s *Schema) Roles() map[string]VariableRole {
	roles := make(map[string]VariableRole)
	assign := func(vars []string, role VariableRole) {
		for _, v := range vars {
			if _, taken := roles[v]; !taken {
				roles[v] = role
			}
		}
	}
	assign(s.InstrumentVars, RoleInstrument)
	assign(s.ItemIDVars, RoleItemID)
	assign(s.MetadataVars, RoleMetadata)
	assign(s.ClassificationVars, RoleClassification)
	assign(s.OtherVars, RoleOther)
	return roles
}

// Normalize completes the partition invariant: any dataset column not
// assigned to a role is appended to OtherVars, preserving dataset column
// order. Already-assigned columns are left alone.
func (s *Schema) Normalize(columns []string) {
	assigned := s.Roles()
	for _, col := range columns {
		if _, ok := assigned[col]; !ok {
			s.OtherVars = append(s.OtherVars, col)
			assigned[col] = RoleOther
		}
	}
}

// Validate checks the schema invariants against the dataset columns:
// at least one item-id variable, no column assigned to two roles, and
// every assigned column present in the dataset.
func (s *Schema) Validate(columns []string) error {
	if len(s.ItemIDVars) == 0 {
		return fmt.Errorf("at least one item identifier variable is required")
	}

	known := make(map[string]bool, len(columns))
	for _, c := range columns {
		known[c] = true
	}

	seen := make(map[string]VariableRole)
	sets := []struct {
		role VariableRole
		vars []string
	}{
		{RoleInstrument, s.InstrumentVars},
		{RoleItemID, s.ItemIDVars},
		{RoleMetadata, s.MetadataVars},
		{RoleClassification, s.ClassificationVars},
		{RoleOther, s.OtherVars},
	}

	var problems []string
	for _, set := range sets {
		for _, v := range set.vars {
			if prev, dup := seen[v]; dup {
				problems = append(problems, fmt.Sprintf("column %q assigned to both %s and %s", v, prev, set.role))
				continue
			}
			seen[v] = set.role
			if !known[v] {
				problems = append(problems, fmt.Sprintf("column %q (%s) not present in dataset", v, set.role))
			}
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid categorization: %s", strings.Join(problems, "; "))
	}
	return nil
}

// identificationVars returns the union of instrument and item-id
// variables in schema order, without duplicates.
func (s *Schema) identificationVars() []string {
	var out []string
	seen := make(map[string]bool)
	for _, v := range append(append([]string{}, s.InstrumentVars...), s.ItemIDVars...) {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
