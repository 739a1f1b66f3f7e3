package importer

import (
	"encoding/json"
	"strings"

	"asset-inventory-backend/internal/apperr"
)

type cellTarget struct {
	name string
	dst  func(r *Row) any
	hint string
}

// Cells in Row order so the first bad cell of a row is reported deterministically.
var cellTargets = []cellTarget{
	{"assetTypeName", func(r *Row) any { return &r.AssetTypeName }, "must be text"},
	{"categoryName", func(r *Row) any { return &r.CategoryName }, "must be text"},
	{"unitOfMeasure", func(r *Row) any { return &r.UnitOfMeasure }, "must be text"},
	{"minimumStockLevel", func(r *Row) any { return &r.MinimumStockLevel }, "must be a whole number"},
	{"inventoryNumber", func(r *Row) any { return &r.InventoryNumber }, "must be text"},
	{"quantity", func(r *Row) any { return &r.Quantity }, "must be a whole number"},
	{"unitCost", func(r *Row) any { return &r.UnitCost }, "must be a decimal number"},
	{"purchaseDate", func(r *Row) any { return &r.PurchaseDate }, "must be a date string"},
	{"notes", func(r *Row) any { return &r.Notes }, "must be text"},
}

// DecodeRows parses a JSON array of rows cell by cell, so a badly typed cell
// is reported with its 1-based row index and field name. Keys match
// case-insensitively; unknown keys are ignored.
func DecodeRows(body []byte) ([]Row, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, apperr.Validation("", "request body must be a JSON array of rows: %v", err)
	}

	rows := make([]Row, len(raw))
	for i, elem := range raw {
		idx := i + 1
		var cells map[string]json.RawMessage
		if err := json.Unmarshal(elem, &cells); err != nil || cells == nil {
			return nil, rowError(idx, "", "row %d must be a JSON object", idx)
		}
		byKey := make(map[string]json.RawMessage, len(cells))
		for k, v := range cells {
			byKey[strings.ToLower(k)] = v
		}
		for _, ct := range cellTargets {
			v, ok := byKey[strings.ToLower(ct.name)]
			if !ok {
				continue
			}
			if err := json.Unmarshal(v, ct.dst(&rows[i])); err != nil {
				return nil, rowError(idx, ct.name, "row %d: %s %s (got %s)", idx, ct.name, ct.hint, string(v))
			}
		}
	}
	return rows, nil
}
