package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/mquintana/itemcheck/internal/dataset"
	"github.com/mquintana/itemcheck/internal/validation"
)

const (
	sheetNormalized = "Datos Normalizados"
	sheetMapping    = "Mapeo de Columnas"
)

// rolePrefixes gives each variable role its normalized column prefix.
var rolePrefixes = map[validation.VariableRole]string{
	validation.RoleInstrument:     "instrumento",
	validation.RoleItemID:         "id_item",
	validation.RoleMetadata:       "metadato",
	validation.RoleClassification: "clasificacion",
	validation.RoleOther:          "variable",
}

// NormalizedColumns returns the standardized name for every dataset
// column, derived from its assigned role: instrumento_1, id_item_1,
// metadato_1 and so on, numbered within each role in dataset order.
func NormalizedColumns(columns []string, schema *validation.Schema) []string {
	roles := schema.Roles()
	counts := make(map[validation.VariableRole]int)

	out := make([]string, len(columns))
	for i, col := range columns {
		role, ok := roles[col]
		if !ok {
			role = validation.RoleOther
		}
		counts[role]++
		out[i] = fmt.Sprintf("%s_%d", rolePrefixes[role], counts[role])
	}
	return out
}

// NormalizedWorkbook builds a workbook with the dataset under
// standardized column names, plus a mapping sheet from original names.
func NormalizedWorkbook(ds *dataset.Dataset, schema *validation.Schema) (*bytes.Buffer, error) {
	normalized := NormalizedColumns(ds.Columns, schema)
	roles := schema.Roles()

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", sheetNormalized)
	if _, err := f.NewSheet(sheetMapping); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}

	header := make([]any, len(normalized))
	for i, c := range normalized {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetNormalized, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for r, row := range ds.Rows {
		cells := make([]any, len(row))
		for i, v := range row {
			cells[i] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return nil, fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetSheetRow(sheetNormalized, cell, &cells); err != nil {
			return nil, fmt.Errorf("write data row: %w", err)
		}
	}

	mapHeader := []any{"Columna original", "Columna normalizada", "Rol"}
	if err := f.SetSheetRow(sheetMapping, "A1", &mapHeader); err != nil {
		return nil, fmt.Errorf("write mapping header: %w", err)
	}
	for i, col := range ds.Columns {
		role := roles[col]
		if role == "" {
			role = validation.RoleOther
		}
		row := []any{col, normalized[i], string(role)}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetSheetRow(sheetMapping, cell, &row); err != nil {
			return nil, fmt.Errorf("write mapping row: %w", err)
		}
	}
	if err := f.SetColWidth(sheetMapping, "A", "C", 28); err != nil {
		return nil, fmt.Errorf("set width: %w", err)
	}

	f.SetActiveSheet(0)
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf, nil
}
