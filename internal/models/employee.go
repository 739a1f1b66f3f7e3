package models

import "time"

type EmployeeStatus string

const (
	EmployeeActive   EmployeeStatus = "active"
	EmployeeArchived EmployeeStatus = "archived"
)

type CommissionRole string

const (
	CommissionNone   CommissionRole = "none"
	CommissionMember CommissionRole = "member"
	CommissionChair  CommissionRole = "chair"
)

func (r CommissionRole) Valid() bool {
	return r == CommissionNone || r == CommissionMember || r == CommissionChair
}

type Employee struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	FullName           string         `gorm:"size:200;not null" json:"fullName"`
	Position           string         `gorm:"size:200" json:"position"`
	ContactInfo        string         `gorm:"size:300" json:"contactInfo"`
	Status             EmployeeStatus `gorm:"size:20;not null;index;default:'active'" json:"status"`
	IsResponsible      bool           `gorm:"not null;default:false" json:"isResponsible"`
	CommissionRole     CommissionRole `gorm:"size:20;not null;default:'none'" json:"commissionRole"`
	IsHeadOfEnterprise bool           `gorm:"not null;default:false" json:"isHeadOfEnterprise"`
	IsChiefAccountant  bool           `gorm:"not null;default:false" json:"isChiefAccountant"`
	CreatedAt          time.Time      `json:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt"`
}

func (e Employee) IsActive() bool { return e.Status == EmployeeActive }
