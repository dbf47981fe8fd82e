package validation

// duplicates.go checks item identifier uniqueness within each instrument.
//
// Duplication is evaluated per instrument only: the same item appearing
// in two different instruments is valid and expected (anchor items are
// reused across forms), so cross-instrument repeats are never flagged.

import (
	"fmt"
	"strings"

	"github.com/mquintana/itemcheck/internal/dataset"
)

// ValidateDuplicates groups every instrument's rows by the tuple of
// item-id values and reports each group with more than one row.
func ValidateDuplicates(d *dataset.Dataset, s *Schema, p *Partition) *DuplicateResult {
	result := &DuplicateResult{
		Result:         newResult(),
		DuplicateItems: []DuplicateItem{},
		ValidationParameters: map[string]any{
			"item_id_variables":    s.ItemIDVars,
			"instrument_variables": s.InstrumentVars,
			"validation_method":    "Búsqueda de identificadores duplicados dentro de cada instrumento",
		},
	}

	result.InstrumentsAnalyzed = p.Len()
	result.TotalItemsChecked = d.Len()

	for _, inst := range p.Instruments() {
		for _, dup := range findDuplicatesInInstrument(d, s.ItemIDVars, inst) {
			result.DuplicateItems = append(result.DuplicateItems, dup)
			result.addError(
				fmt.Sprintf("Ítem duplicado '%s' en el instrumento '%s' (%d apariciones)",
					dup.ItemID, inst.DisplayName, len(dup.RowIndices)),
				CodeDuplicateItem,
				SeverityError,
				map[string]any{
					"item_id":            dup.ItemID,
					"instrument":         dup.Instrument,
					"instrument_display": inst.DisplayName,
					"row_indices":        dup.RowIndices,
					"occurrences":        len(dup.RowIndices),
				},
			)
		}
	}

	result.Statistics["instruments_analyzed"] = result.InstrumentsAnalyzed
	result.Statistics["total_items_checked"] = result.TotalItemsChecked
	result.Statistics["total_duplicated_items"] = len(result.DuplicateItems)

	return result
}

// findDuplicatesInInstrument returns the duplicate groups of one
// instrument in first-occurrence order.
func findDuplicatesInInstrument(d *dataset.Dataset, itemIDVars []string, inst *Instrument) []DuplicateItem {
	groups := make(map[string][]int)
	var order []string

	for _, row := range inst.RowIndices {
		id, ok := compositeItemID(d, itemIDVars, row)
		if !ok {
			// Missing id values are pre-validation territory, not duplicates.
			continue
		}
		if _, seen := groups[id]; !seen {
			order = append(order, id)
		}
		groups[id] = append(groups[id], row)
	}

	var dups []DuplicateItem
	for _, id := range order {
		rows := groups[id]
		if len(rows) > 1 {
			dups = append(dups, DuplicateItem{
				ItemID:     id,
				Instrument: inst.Key,
				RowIndices: rows,
			})
		}
	}
	return dups
}

// compositeItemID builds the normalized item identifier for a row from
// the item-id variables, in schema order. Returns false when any
// component is missing.
func compositeItemID(d *dataset.Dataset, itemIDVars []string, row int) (string, bool) {
	parts := make([]string, 0, len(itemIDVars))
	for _, v := range itemIDVars {
		raw, ok := d.Value(row, v)
		if !ok || raw == "" {
			return "", false
		}
		parts = append(parts, NormalizeValue(raw))
	}
	return strings.Join(parts, "|"), true
}
