package validation

// profile.go loads a categorization schema from a YAML profile file.
//
// Profiles let staff save a column-role assignment plus advanced
// constraints once and reuse it across uploads, both from the CLI and
// through the API:
//
//	item_id_vars: [item_id]
//	instrument_vars: [forma, anio]
//	metadata_vars: [clave, invertido]
//	classification_vars: [dominio, nivel]
//	advanced_options:
//	  item_count_constraints:
//	    - expected_count: 60
//	      scope: global
//	  key_variable_constraints:
//	    - variable_name: clave
//	      expected_key_count: 4
//	      expected_values: [A, B, C, D]
//	      scope: global

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ParseProfile decodes a YAML profile into a Schema. Unknown fields are
// rejected so a typo in a profile fails loudly instead of silently
// dropping a constraint.
func ParseProfile(data []byte) (*Schema, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Schema
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse profile: %w", err)
	}
	return &s, nil
}

// LoadProfile reads and decodes a YAML profile file.
func LoadProfile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	return ParseProfile(data)
}
