package models

import "time"

// AssetType: (name, category_id) is unique.
type AssetType struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	Name              string         `gorm:"size:200;not null;uniqueIndex:idx_asset_type_name_category" json:"name"`
	CategoryID        uint           `gorm:"not null;index;uniqueIndex:idx_asset_type_name_category" json:"categoryId"`
	Category          *AssetCategory `gorm:"constraint:OnDelete:RESTRICT" json:"category,omitempty"`
	UnitOfMeasure     string         `gorm:"size:30;not null" json:"unitOfMeasure"` // pcs, kg, set...
	MinimumStockLevel *int           `json:"minimumStockLevel"`                     // nil = no threshold
	Notes             string         `gorm:"size:1000" json:"notes"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
}
