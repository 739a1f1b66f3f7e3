package importer

import (
	"strings"
	"time"

	"asset-inventory-backend/internal/apperr"
	"asset-inventory-backend/internal/fields"

	"github.com/shopspring/decimal"
)

// Row is one spreadsheet line as mapped by the client. Pointer fields tell a
// missing cell apart from a zero.
type Row struct {
	AssetTypeName     string           `json:"assetTypeName"`
	CategoryName      string           `json:"categoryName"`
	UnitOfMeasure     string           `json:"unitOfMeasure"`
	MinimumStockLevel *int             `json:"minimumStockLevel"`
	InventoryNumber   string           `json:"inventoryNumber"`
	Quantity          *int             `json:"quantity"`
	UnitCost          *decimal.Decimal `json:"unitCost"`
	PurchaseDate      string           `json:"purchaseDate"`
	Notes             string           `json:"notes"`
}

// validRow is a Row after normalization.
type validRow struct {
	TypeName      string
	CategoryName  string
	UnitOfMeasure string
	MinStock      *int
	Inventory     string
	Quantity      int
	UnitCost      decimal.Decimal
	PurchaseDate  time.Time
	Notes         string
}

func rowError(index int, field, format string, args ...any) error {
	e := apperr.Validation(field, format, args...)
	e.RowIndex = index
	return e
}

func typeKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Validate checks the whole batch before anything is written and returns the
// first failure with its 1-based row index. knownTypes holds typeKey of every
// asset type already stored.
func Validate(rows []Row, knownTypes map[string]bool) ([]validRow, error) {
	introduced := make(map[string]bool)
	out := make([]validRow, 0, len(rows))

	for i, r := range rows {
		idx := i + 1
		v := validRow{
			TypeName:      strings.TrimSpace(r.AssetTypeName),
			CategoryName:  strings.TrimSpace(r.CategoryName),
			UnitOfMeasure: strings.TrimSpace(r.UnitOfMeasure),
			Inventory:     strings.TrimSpace(r.InventoryNumber),
			Notes:         strings.TrimSpace(r.Notes),
			MinStock:      r.MinimumStockLevel,
		}

		if v.TypeName == "" {
			return nil, rowError(idx, "assetTypeName", "row %d: assetTypeName is required", idx)
		}
		if v.Inventory == "" {
			return nil, rowError(idx, "inventoryNumber", "row %d: inventoryNumber is required", idx)
		}
		if r.Quantity == nil {
			return nil, rowError(idx, "quantity", "row %d: quantity is required", idx)
		}
		if *r.Quantity < 1 {
			return nil, rowError(idx, "quantity", "row %d: quantity must be at least 1 (got %d)", idx, *r.Quantity)
		}
		v.Quantity = *r.Quantity

		if r.UnitCost == nil {
			return nil, rowError(idx, "unitCost", "row %d: unitCost is required", idx)
		}
		if err := fields.CheckCost(*r.UnitCost); err != nil {
			return nil, rowError(idx, "unitCost", "row %d: unitCost %v (got %s)", idx, err, r.UnitCost.String())
		}
		v.UnitCost = *r.UnitCost

		if strings.TrimSpace(r.PurchaseDate) == "" {
			return nil, rowError(idx, "purchaseDate", "row %d: purchaseDate is required", idx)
		}
		d, err := fields.ParseDate(r.PurchaseDate)
		if err != nil {
			return nil, rowError(idx, "purchaseDate", "row %d: purchaseDate %v (got %q)", idx, err, r.PurchaseDate)
		}
		v.PurchaseDate = d

		if v.MinStock != nil && *v.MinStock < 0 {
			return nil, rowError(idx, "minimumStockLevel", "row %d: minimumStockLevel must not be negative", idx)
		}

		key := typeKey(v.TypeName)
		if !knownTypes[key] && !introduced[key] {
			if v.CategoryName == "" {
				return nil, rowError(idx, "categoryName", "row %d: categoryName is required for new asset type %q", idx, v.TypeName)
			}
			if v.UnitOfMeasure == "" {
				return nil, rowError(idx, "unitOfMeasure", "row %d: unitOfMeasure is required for new asset type %q", idx, v.TypeName)
			}
			introduced[key] = true
		}

		out = append(out, v)
	}
	return out, nil
}
