package protocol

import (
	"asset-inventory-backend/internal/config"
	"asset-inventory-backend/internal/models"
)

type RequestItem struct {
	InstanceID uint   `json:"instanceId" validate:"required"`
	Quantity   int    `json:"quantity" validate:"gte=1"`
	Reason     string `json:"reason" validate:"max=500"`
}

// Request is the input of Assemble. Omitted signatory ids fall back to the active
// employee flagged for that role.
type Request struct {
	Items              []RequestItem `json:"items" validate:"required,min=1,dive"`
	ChairID            *uint         `json:"chairId"`
	HeadOfEnterpriseID *uint         `json:"headOfEnterpriseId"`
	ChiefAccountantID  *uint         `json:"chiefAccountantId"`
	MemberIDs          []uint        `json:"memberIds"`
	MainReason         string        `json:"mainReason" validate:"max=1000"`
	Notes              string        `json:"notes" validate:"max=2000"`
	Date               string        `json:"date"`
	DocumentNumber     string        `json:"documentNumber" validate:"max=50"`
}

type Signatory struct {
	EmployeeID     uint                  `json:"employeeId"`
	FullName       string                `json:"fullName"`
	Position       string                `json:"position"`
	CommissionRole models.CommissionRole `json:"commissionRole"`
}

// LineItem amounts are already rounded to cents for display.
type LineItem struct {
	Number          int    `json:"number"`
	InstanceID      uint   `json:"instanceId"`
	InventoryNumber string `json:"inventoryNumber"`
	AssetTypeName   string `json:"assetTypeName"`
	UnitOfMeasure   string `json:"unitOfMeasure"`
	Quantity        int    `json:"quantity"`
	UnitCost        string `json:"unitCost"`
	ItemSum         string `json:"itemSum"`
	Reason          string `json:"reason"`
}

// Protocol is the complete, immutable input of Render.
type Protocol struct {
	Organization      config.Organization `json:"organization"`
	DocumentNumber    string              `json:"documentNumber"`
	Date              string              `json:"date"`
	MainReason        string              `json:"mainReason"`
	Notes             string              `json:"notes"`
	Chair             *Signatory          `json:"chair"`
	Members           []Signatory         `json:"members"`
	HeadOfEnterprise  *Signatory          `json:"headOfEnterprise"`
	ChiefAccountant   *Signatory          `json:"chiefAccountant"`
	ResponsiblePerson *Signatory          `json:"responsiblePerson"`
	Items             []LineItem          `json:"items"`
	TotalQuantity     int                 `json:"totalQuantity"`
	TotalSum          string              `json:"totalSum"`
	ConfirmationToken string              `json:"confirmationToken,omitempty"`
}

func signatoryOf(e models.Employee) Signatory {
	return Signatory{
		EmployeeID:     e.ID,
		FullName:       e.FullName,
		Position:       e.Position,
		CommissionRole: e.CommissionRole,
	}
}
