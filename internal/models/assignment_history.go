package models

import "time"

const AssignmentHistoryTable = "asset_assignment_histories"

// AssetAssignmentHistory is append-only. ReturnDate == nil means the loan is open;
// at most one open row exists per instance (partial unique index, see database.Migrate).
type AssetAssignmentHistory struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	AssetInstanceID uint           `gorm:"not null;index" json:"assetInstanceId"`
	AssetInstance   *AssetInstance `gorm:"constraint:OnDelete:CASCADE" json:"assetInstance,omitempty"`
	EmployeeID      uint           `gorm:"not null;index" json:"employeeId"`
	Employee        *Employee      `gorm:"constraint:OnDelete:CASCADE" json:"employee,omitempty"`
	AssignmentDate  time.Time      `gorm:"not null;index" json:"assignmentDate"`
	ReturnDate      *time.Time     `gorm:"index" json:"returnDate"`
}

func (AssetAssignmentHistory) TableName() string { return AssignmentHistoryTable }
