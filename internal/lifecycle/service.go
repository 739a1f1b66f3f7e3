package lifecycle

import (
	"context"
	"fmt"
	"sort"
	"time"

	"asset-inventory-backend/internal/apperr"
	"asset-inventory-backend/internal/audit"
	"asset-inventory-backend/internal/logging"
	"asset-inventory-backend/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const entityInstance = "asset_instance"

type Service struct {
	db  *gorm.DB
	log logrus.FieldLogger
	now func() time.Time
}

func NewService(db *gorm.DB, log logrus.FieldLogger) *Service {
	return &Service{db: db, log: log.WithField("module", "lifecycle"), now: time.Now}
}

// lockInstance reads one instance row FOR UPDATE so concurrent issue/write-off
// requests against the same batch serialize on it.
func lockInstance(tx *gorm.DB, id uint) (*models.AssetInstance, error) {
	var inst models.AssetInstance
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&inst, "id = ?", id).Error
	if err != nil {
		return nil, apperr.FromDB(err, fmt.Sprintf("asset instance %d", id))
	}
	return &inst, nil
}

// Issue hands one unit of an on-stock instance to an employee. A batch with more
// than one unit is split: the batch keeps quantity-1 and the issued unit becomes
// a new row linked to it.
func (s *Service) Issue(ctx context.Context, instanceID, employeeID uint) (*models.AssetInstance, error) {
	var heldID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var emp models.Employee
		if err := tx.First(&emp, "id = ?", employeeID).Error; err != nil {
			return apperr.FromDB(err, fmt.Sprintf("employee %d", employeeID))
		}
		src, err := lockInstance(tx, instanceID)
		if err != nil {
			return err
		}
		if err := checkIssuable(src, &emp); err != nil {
			return err
		}

		now := s.now()
		before := *src

		if src.Quantity == 1 {
			if err := tx.Model(src).Updates(map[string]any{
				"status":              models.StatusIssued,
				"current_employee_id": emp.ID,
			}).Error; err != nil {
				return err
			}
			heldID = src.ID
		} else {
			if err := tx.Model(src).Update("quantity", gorm.Expr("quantity - 1")).Error; err != nil {
				return err
			}
			unit := models.AssetInstance{
				AssetTypeID:       src.AssetTypeID,
				InventoryNumber:   src.InventoryNumber,
				Quantity:          1,
				UnitCost:          src.UnitCost,
				PurchaseDate:      src.PurchaseDate,
				Notes:             splitNote(src.ID),
				Status:            models.StatusIssued,
				CurrentEmployeeID: &emp.ID,
				SourceInstanceID:  &src.ID,
			}
			if err := tx.Create(&unit).Error; err != nil {
				return err
			}
			heldID = unit.ID
		}

		if _, err := openAssignment(tx, heldID, emp.ID, now); err != nil {
			return err
		}

		return audit.WriteLog(tx, audit.LogOptions{
			EntityType:  entityInstance,
			EntityID:    heldID,
			Action:      models.AuditActionIssue,
			Description: fmt.Sprintf("Issued %s (instance %d) to %s", src.InventoryNumber, heldID, emp.FullName),
			Before:      before,
			After:       map[string]any{"heldInstanceId": heldID, "employeeId": emp.ID, "sourceInstanceId": src.ID},
		})
	})
	if err != nil {
		return nil, s.fail("Issue", err, logrus.Fields{"instanceId": instanceID, "employeeId": employeeID})
	}

	s.log.WithFields(logrus.Fields{"instanceId": instanceID, "heldInstanceId": heldID, "employeeId": employeeID}).Info("asset issued")
	return s.GetInstance(ctx, heldID)
}

// ProcessDeactivationAssets returns the listed instances from an employee who is
// leaving. Items the employee does not currently hold are skipped, which makes a
// repeated call a no-op.
func (s *Service) ProcessDeactivationAssets(ctx context.Context, employeeID uint, items []DeactivationItem) (DeactivationResult, error) {
	res := DeactivationResult{Requested: len(items)}
	if err := validateDeactivationItems(items); err != nil {
		return res, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var emp models.Employee
		if err := tx.First(&emp, "id = ?", employeeID).Error; err != nil {
			return apperr.FromDB(err, fmt.Sprintf("employee %d", employeeID))
		}
		if len(items) == 0 {
			return nil
		}

		ids := uniqueIDs(items, func(it DeactivationItem) uint { return it.InstanceID })
		var held []models.AssetInstance
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id IN ? AND current_employee_id = ? AND status = ?", ids, employeeID, models.StatusIssued).
			Find(&held).Error; err != nil {
			return err
		}
		byID := make(map[uint]*models.AssetInstance, len(held))
		for i := range held {
			byID[held[i].ID] = &held[i]
		}

		now := s.now()
		for _, it := range items {
			inst, ok := byID[it.InstanceID]
			if !ok {
				continue
			}
			delete(byID, it.InstanceID)

			if _, err := closeAssignments(tx, inst.ID, now); err != nil {
				return err
			}
			if err := tx.Model(inst).Updates(map[string]any{
				"status":              it.FinalStatus,
				"current_employee_id": nil,
			}).Error; err != nil {
				return err
			}
			if err := audit.WriteLog(tx, audit.LogOptions{
				EntityType:  entityInstance,
				EntityID:    inst.ID,
				Action:      models.AuditActionReturn,
				Description: fmt.Sprintf("Returned %s from %s as %s", inst.InventoryNumber, emp.FullName, it.FinalStatus),
				Before:      map[string]any{"status": models.StatusIssued, "employeeId": employeeID},
				After:       map[string]any{"status": it.FinalStatus},
			}); err != nil {
				return err
			}
			res.Processed++
		}
		return nil
	})
	if err != nil {
		res.Processed = 0
		return res, s.fail("ProcessDeactivationAssets", err, logrus.Fields{"employeeId": employeeID})
	}
	return res, nil
}

// WriteOff removes quantity from stock. The whole request is one transaction:
// any missing, already written-off or over-drawn instance aborts all of it.
func (s *Service) WriteOff(ctx context.Context, items []WriteOffItem) (WriteOffResult, error) {
	if len(items) == 0 {
		return WriteOffResult{}, nil
	}
	if err := validateWriteOffItems(items); err != nil {
		return WriteOffResult{}, err
	}

	ids := uniqueIDs(items, func(it WriteOffItem) uint { return it.InstanceID })
	var processed int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []models.AssetInstance
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id IN ?", ids).Order("id").Find(&rows).Error; err != nil {
			return err
		}
		byID := make(map[uint]*models.AssetInstance, len(rows))
		for i := range rows {
			byID[rows[i].ID] = &rows[i]
		}
		if missing := missingIDs(ids, byID); len(missing) > 0 {
			e := apperr.NotFound("asset instances not found: %v", missing)
			e.MissingIDs = missing
			return e
		}

		now := s.now()
		plans := make([]writeOffPlan, len(items))
		for i, it := range items {
			p, err := planWriteOff(byID[it.InstanceID], it.QuantityToWriteOff, it.Reason, now)
			if err != nil {
				return err
			}
			plans[i] = p
		}

		for i, it := range items {
			inst := byID[it.InstanceID]
			p := plans[i]
			if p.CloseHistory {
				if _, err := closeAssignments(tx, inst.ID, now); err != nil {
					return err
				}
			}
			if err := tx.Model(inst).Updates(p.Updates).Error; err != nil {
				return err
			}
			desc := fmt.Sprintf("Wrote off %d of %s", it.QuantityToWriteOff, inst.InventoryNumber)
			if it.Reason != "" {
				desc += ": " + it.Reason
			}
			if err := audit.WriteLog(tx, audit.LogOptions{
				EntityType:  entityInstance,
				EntityID:    inst.ID,
				Action:      models.AuditActionWriteOff,
				Description: desc,
				Before:      map[string]any{"status": inst.Status, "quantity": inst.Quantity},
				After:       map[string]any{"full": p.Full, "quantity": p.NewQuantity, "reason": it.Reason},
			}); err != nil {
				return err
			}
			processed++
		}
		return nil
	})
	if err != nil {
		return WriteOffResult{}, s.fail("WriteOff", err, logrus.Fields{"items": len(items)})
	}

	s.log.WithField("processed", processed).Info("write-off committed")
	return WriteOffResult{Processed: processed}, nil
}

func (s *Service) AvailableInstances(ctx context.Context, assetTypeID uint) ([]models.AssetInstance, error) {
	var rows []models.AssetInstance
	err := s.db.WithContext(ctx).
		Preload("AssetType").
		Where("asset_type_id = ? AND status = ? AND quantity >= 1", assetTypeID, models.StatusOnStock).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, apperr.Internal(err, "available instances could not be listed")
	}
	return rows, nil
}

func missingIDs(ids []uint, found map[uint]*models.AssetInstance) []uint {
	var missing []uint
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
	return missing
}

// fail classifies err and logs the unexpected ones.
func (s *Service) fail(op string, err error, fields logrus.Fields) error {
	err = apperr.FromDB(err, "asset instance")
	if apperr.Is(err, apperr.KindInternal) {
		var data any
		if len(fields) > 0 {
			data = fields
		}
		logging.LogError(s.log, "lifecycle", op, "transaction failed", data, err)
	}
	return err
}
