package lifecycle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"asset-inventory-backend/internal/apperr"
	"asset-inventory-backend/internal/audit"
	"asset-inventory-backend/internal/fields"
	"asset-inventory-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InstanceFilter struct {
	Status      models.InstanceStatus
	AssetTypeID uint
	EmployeeID  uint
}

type CreateInstanceInput struct {
	AssetTypeID     uint            `json:"assetTypeId" validate:"required"`
	InventoryNumber string          `json:"inventoryNumber" validate:"required,max=100"`
	Quantity        int             `json:"quantity" validate:"gte=1"`
	UnitCost        decimal.Decimal `json:"unitCost"`
	PurchaseDate    string          `json:"purchaseDate"`
	Notes           string          `json:"notes"`
}

// UpdateInstanceInput carries only descriptive fields; status and holder change
// through Issue, ProcessDeactivationAssets and WriteOff.
type UpdateInstanceInput struct {
	InventoryNumber *string          `json:"inventoryNumber" validate:"omitempty,max=100"`
	UnitCost        *decimal.Decimal `json:"unitCost"`
	PurchaseDate    *string          `json:"purchaseDate"`
	Notes           *string          `json:"notes"`
}

func (s *Service) ListInstances(ctx context.Context, f InstanceFilter) ([]models.AssetInstance, error) {
	q := s.db.WithContext(ctx).Preload("AssetType").Preload("CurrentEmployee")
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.AssetTypeID > 0 {
		q = q.Where("asset_type_id = ?", f.AssetTypeID)
	}
	if f.EmployeeID > 0 {
		q = q.Where("current_employee_id = ?", f.EmployeeID)
	}

	var rows []models.AssetInstance
	if err := q.Order("id").Find(&rows).Error; err != nil {
		return nil, apperr.Internal(err, "asset instances could not be listed")
	}
	return rows, nil
}

func (s *Service) GetInstance(ctx context.Context, id uint) (*models.AssetInstance, error) {
	var inst models.AssetInstance
	err := s.db.WithContext(ctx).Preload("AssetType").Preload("CurrentEmployee").First(&inst, "id = ?", id).Error
	if err != nil {
		return nil, apperr.FromDB(err, fmt.Sprintf("asset instance %d", id))
	}
	return &inst, nil
}

func (s *Service) CreateInstance(ctx context.Context, in CreateInstanceInput) (*models.AssetInstance, error) {
	in.InventoryNumber = strings.TrimSpace(in.InventoryNumber)
	if in.InventoryNumber == "" {
		return nil, apperr.Validation("inventoryNumber", "inventoryNumber is required")
	}
	if err := fields.CheckCost(in.UnitCost); err != nil {
		return nil, apperr.Validation("unitCost", "unitCost %v", err)
	}
	purchased, err := optionalDate(in.PurchaseDate)
	if err != nil {
		return nil, err
	}

	inst := models.AssetInstance{
		AssetTypeID:     in.AssetTypeID,
		InventoryNumber: in.InventoryNumber,
		Quantity:        in.Quantity,
		UnitCost:        in.UnitCost,
		PurchaseDate:    purchased,
		Notes:           in.Notes,
		Status:          models.StatusOnStock,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t models.AssetType
		if err := tx.First(&t, "id = ?", in.AssetTypeID).Error; err != nil {
			return apperr.FromDB(err, fmt.Sprintf("asset type %d", in.AssetTypeID))
		}
		if err := tx.Create(&inst).Error; err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			EntityType:  entityInstance,
			EntityID:    inst.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Created %s: %d x %s", inst.InventoryNumber, inst.Quantity, t.Name),
			After:       inst,
		})
	})
	if err != nil {
		return nil, s.fail("CreateInstance", err, nil)
	}
	return s.GetInstance(ctx, inst.ID)
}

func (s *Service) UpdateInstance(ctx context.Context, id uint, in UpdateInstanceInput) (*models.AssetInstance, error) {
	updates := map[string]any{}
	if in.InventoryNumber != nil {
		n := strings.TrimSpace(*in.InventoryNumber)
		if n == "" {
			return nil, apperr.Validation("inventoryNumber", "inventoryNumber must not be empty")
		}
		updates["inventory_number"] = n
	}
	if in.UnitCost != nil {
		if err := fields.CheckCost(*in.UnitCost); err != nil {
			return nil, apperr.Validation("unitCost", "unitCost %v", err)
		}
		updates["unit_cost"] = *in.UnitCost
	}
	if in.PurchaseDate != nil {
		d, err := optionalDate(*in.PurchaseDate)
		if err != nil {
			return nil, err
		}
		updates["purchase_date"] = d
	}
	if in.Notes != nil {
		updates["notes"] = *in.Notes
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inst models.AssetInstance
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&inst, "id = ?", id).Error; err != nil {
			return apperr.FromDB(err, fmt.Sprintf("asset instance %d", id))
		}
		if len(updates) == 0 {
			return nil
		}
		before := inst
		if err := tx.Model(&inst).Updates(updates).Error; err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			EntityType:  entityInstance,
			EntityID:    inst.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Updated %s", before.InventoryNumber),
			Before:      before,
			After:       updates,
		})
	})
	if err != nil {
		return nil, s.fail("UpdateInstance", err, nil)
	}
	return s.GetInstance(ctx, id)
}

func optionalDate(raw string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	d, err := fields.ParseDate(raw)
	if err != nil {
		return nil, apperr.Validation("purchaseDate", "purchaseDate %v", err)
	}
	return &d, nil
}
