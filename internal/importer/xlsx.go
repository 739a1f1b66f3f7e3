package importer

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"asset-inventory-backend/internal/apperr"
	"asset-inventory-backend/internal/fields"

	"github.com/xuri/excelize/v2"
)

// Header spellings accepted for each column, compared after normalizeHeader.
var headerAliases = map[string][]string{
	"assetTypeName":     {"assettypename", "assettype", "type", "name"},
	"categoryName":      {"categoryname", "category"},
	"unitOfMeasure":     {"unitofmeasure", "unit", "uom"},
	"minimumStockLevel": {"minimumstocklevel", "minimumstock", "minstock"},
	"inventoryNumber":   {"inventorynumber", "inventoryno", "invno", "inventory"},
	"quantity":          {"quantity", "qty"},
	"unitCost":          {"unitcost", "cost", "price"},
	"purchaseDate":      {"purchasedate", "date"},
	"notes":             {"notes", "note", "comment"},
}

var requiredColumns = []string{"assetTypeName", "inventoryNumber", "quantity", "unitCost", "purchaseDate"}

func normalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "", "_", "", "-", "", ".", "").Replace(s)
}

// ReadXLSX maps the first sheet of a workbook into rows. The first non-empty
// line is the header; data rows are numbered from 1 after it.
func ReadXLSX(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperr.Validation("file", "the file is not a readable .xlsx workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperr.Validation("file", "the workbook has no sheets")
	}
	lines, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apperr.Validation("file", "sheet %q could not be read: %v", sheets[0], err)
	}

	start := 0
	for start < len(lines) && blank(lines[start]) {
		start++
	}
	if start == len(lines) {
		return nil, apperr.Validation("file", "the sheet is empty")
	}

	cols, err := mapHeader(lines[start])
	if err != nil {
		return nil, err
	}

	var rows []Row
	for _, line := range lines[start+1:] {
		if blank(line) {
			continue
		}
		idx := len(rows) + 1
		row, err := mapLine(idx, line, cols)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func mapHeader(header []string) (map[string]int, error) {
	lookup := make(map[string]string)
	for field, aliases := range headerAliases {
		for _, a := range aliases {
			lookup[a] = field
		}
	}
	cols := make(map[string]int)
	for i, h := range header {
		if field, ok := lookup[normalizeHeader(h)]; ok {
			if _, dup := cols[field]; !dup {
				cols[field] = i
			}
		}
	}
	for _, req := range requiredColumns {
		if _, ok := cols[req]; !ok {
			return nil, apperr.Validation(req, "the header row has no %q column", req)
		}
	}
	return cols, nil
}

func mapLine(idx int, line []string, cols map[string]int) (Row, error) {
	cell := func(field string) string {
		i, ok := cols[field]
		if !ok || i >= len(line) {
			return ""
		}
		return strings.TrimSpace(line[i])
	}

	row := Row{
		AssetTypeName:   cell("assetTypeName"),
		CategoryName:    cell("categoryName"),
		UnitOfMeasure:   cell("unitOfMeasure"),
		InventoryNumber: cell("inventoryNumber"),
		Notes:           cell("notes"),
	}

	if v := cell("quantity"); v != "" {
		n, err := wholeNumber(v)
		if err != nil {
			return Row{}, rowError(idx, "quantity", "row %d: quantity must be a whole number (got %q)", idx, v)
		}
		row.Quantity = &n
	}
	if v := cell("minimumStockLevel"); v != "" {
		n, err := wholeNumber(v)
		if err != nil {
			return Row{}, rowError(idx, "minimumStockLevel", "row %d: minimumStockLevel must be a whole number (got %q)", idx, v)
		}
		row.MinimumStockLevel = &n
	}
	if v := cell("unitCost"); v != "" {
		d, err := fields.ParseCost(v)
		if err != nil {
			return Row{}, rowError(idx, "unitCost", "row %d: unitCost %v (got %q)", idx, err, v)
		}
		row.UnitCost = &d
	}
	if v := cell("purchaseDate"); v != "" {
		row.PurchaseDate = cellDate(v)
	}
	return row, nil
}

// wholeNumber accepts "3" and the "3.0" spreadsheets sometimes store.
func wholeNumber(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("not a whole number")
	}
	return int(f), nil
}

// cellDate converts an Excel date serial to 2006-01-02; other text is passed
// through for fields.ParseDate.
func cellDate(v string) string {
	if _, err := fields.ParseDate(v); err == nil {
		return v
	}
	serial, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return v
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return v
	}
	return t.Format(fields.DateLayout)
}

func blank(line []string) bool {
	for _, c := range line {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
