package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type InstanceStatus string

const (
	StatusOnStock    InstanceStatus = "on_stock"
	StatusIssued     InstanceStatus = "issued"
	StatusDamaged    InstanceStatus = "damaged"
	StatusLost       InstanceStatus = "lost"
	StatusUnreturned InstanceStatus = "unreturned"
	StatusWrittenOff InstanceStatus = "written_off"
	StatusReserved   InstanceStatus = "reserved"
)

var AllInstanceStatuses = []InstanceStatus{
	StatusOnStock, StatusIssued, StatusDamaged, StatusLost,
	StatusUnreturned, StatusWrittenOff, StatusReserved,
}

func (s InstanceStatus) Valid() bool {
	for _, v := range AllInstanceStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// AssetInstance is either a single unit or a fungible batch of one AssetType.
// Issuing one unit out of a batch splits it: the issued unit becomes a new row
// pointing back at its batch through SourceInstanceID.
type AssetInstance struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	AssetTypeID       uint            `gorm:"not null;index" json:"assetTypeId"`
	AssetType         *AssetType      `gorm:"constraint:OnDelete:RESTRICT" json:"assetType,omitempty"`
	InventoryNumber   string          `gorm:"size:100;not null;index" json:"inventoryNumber"`
	Quantity          int             `gorm:"not null;check:quantity >= 0" json:"quantity"`
	UnitCost          decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"unitCost"`
	PurchaseDate      *time.Time      `gorm:"type:date" json:"purchaseDate"`
	Notes             string          `gorm:"type:text" json:"notes"`
	Status            InstanceStatus  `gorm:"size:20;not null;index;default:'on_stock'" json:"status"`
	CurrentEmployeeID *uint           `gorm:"index" json:"currentEmployeeId"`
	CurrentEmployee   *Employee       `gorm:"constraint:OnDelete:SET NULL" json:"currentEmployee,omitempty"`
	SourceInstanceID  *uint           `gorm:"index" json:"sourceInstanceId"`
	SourceInstance    *AssetInstance  `gorm:"foreignKey:SourceInstanceID;constraint:OnDelete:SET NULL" json:"-"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}
