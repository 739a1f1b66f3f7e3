package dashboard

import (
	"sort"
	"time"
)

const (
	DefaultActivityLimit = 10
	MaxActivityLimit     = 50
)

type ActivityType string

const (
	ActivityAssignment ActivityType = "assignment"
	ActivityReturn     ActivityType = "return"
	ActivityWriteOff   ActivityType = "write_off"
)

// StockLevel is the on-stock quantity of one asset type that has a threshold.
type StockLevel struct {
	AssetTypeID       uint   `json:"assetTypeId" gorm:"column:asset_type_id"`
	AssetTypeName     string `json:"assetTypeName" gorm:"column:asset_type_name"`
	CategoryName      string `json:"categoryName" gorm:"column:category_name"`
	UnitOfMeasure     string `json:"unitOfMeasure" gorm:"column:unit_of_measure"`
	MinimumStockLevel int    `json:"minimumStockLevel" gorm:"column:minimum_stock_level"`
	CurrentStock      int    `json:"currentStock" gorm:"column:current_stock"`
}

type Activity struct {
	Type            ActivityType `json:"type" gorm:"-"`
	SourceID        uint         `json:"sourceId" gorm:"column:source_id"`
	Date            time.Time    `json:"date" gorm:"column:date"`
	InstanceID      uint         `json:"instanceId" gorm:"column:instance_id"`
	InventoryNumber string       `json:"inventoryNumber" gorm:"column:inventory_number"`
	AssetTypeName   string       `json:"assetTypeName" gorm:"column:asset_type_name"`
	EmployeeID      *uint        `json:"employeeId" gorm:"column:employee_id"`
	EmployeeName    string       `json:"employeeName" gorm:"column:employee_name"`
}

type Totals struct {
	InstancesByStatus map[string]int64 `json:"instancesByStatus"`
	ActiveEmployees   int64            `json:"activeEmployees"`
}

type Summary struct {
	LowStockItems    []StockLevel `json:"lowStockItems"`
	RecentActivities []Activity   `json:"recentActivities"`
	Totals           Totals       `json:"totals"`
}

// flagLowStock keeps the levels strictly below their threshold.
func flagLowStock(levels []StockLevel) []StockLevel {
	out := make([]StockLevel, 0, len(levels))
	for _, l := range levels {
		if l.CurrentStock < l.MinimumStockLevel {
			out = append(out, l)
		}
	}
	return out
}

func clampLimit(n int) int {
	switch {
	case n < 1:
		return 1
	case n > MaxActivityLimit:
		return MaxActivityLimit
	default:
		return n
	}
}

// mergeActivities orders the feeds newest first and cuts the result to limit.
func mergeActivities(limit int, feeds ...[]Activity) []Activity {
	var all []Activity
	for _, f := range feeds {
		all = append(all, f...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		return a.SourceID > b.SourceID
	})
	if len(all) > limit {
		all = all[:limit]
	}
	if all == nil {
		all = []Activity{}
	}
	return all
}

func tag(rows []Activity, t ActivityType) []Activity {
	for i := range rows {
		rows[i].Type = t
	}
	return rows
}
