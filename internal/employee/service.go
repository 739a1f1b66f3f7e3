package employee

import (
	"context"
	"fmt"

	"asset-inventory-backend/internal/apperr"
	"asset-inventory-backend/internal/audit"
	"asset-inventory-backend/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const entityEmployee = "employee"

type Input struct {
	FullName           string                `json:"fullName" validate:"required,max=200"`
	Position           string                `json:"position" validate:"max=200"`
	ContactInfo        string                `json:"contactInfo" validate:"max=300"`
	IsResponsible      bool                  `json:"isResponsible"`
	CommissionRole     models.CommissionRole `json:"commissionRole" validate:"omitempty,oneof=none member chair"`
	IsHeadOfEnterprise bool                  `json:"isHeadOfEnterprise"`
	IsChiefAccountant  bool                  `json:"isChiefAccountant"`
}

type ArchiveResult struct {
	Employee        models.Employee `json:"employee"`
	AssetsStillHeld int64           `json:"assetsStillHeld"`
}

type Service struct {
	db  *gorm.DB
	log logrus.FieldLogger
}

func NewService(db *gorm.DB, log logrus.FieldLogger) *Service {
	return &Service{db: db, log: log.WithField("module", "employee")}
}

// List returns employees by name; status "" means all.
func (s *Service) List(ctx context.Context, status models.EmployeeStatus) ([]models.Employee, error) {
	q := s.db.WithContext(ctx)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []models.Employee
	if err := q.Order("full_name asc, id asc").Find(&out).Error; err != nil {
		return nil, apperr.Internal(err, "employees could not be listed")
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*models.Employee, error) {
	var e models.Employee
	if err := s.db.WithContext(ctx).First(&e, "id = ?", id).Error; err != nil {
		return nil, apperr.FromDB(err, fmt.Sprintf("employee %d", id))
	}
	return &e, nil
}

func (s *Service) Create(ctx context.Context, in Input) (*models.Employee, error) {
	e := models.Employee{Status: models.EmployeeActive}
	apply(&e, in)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&e).Error; err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			EntityType:  entityEmployee,
			EntityID:    e.ID,
			Action:      models.AuditActionCreate,
			Description: "Created employee " + e.FullName,
			After:       e,
		})
	})
	if err != nil {
		return nil, apperr.FromDB(err, "employee")
	}
	return &e, nil
}

func (s *Service) Update(ctx context.Context, id uint, in Input) (*models.Employee, error) {
	var e models.Employee
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&e, "id = ?", id).Error; err != nil {
			return apperr.FromDB(err, fmt.Sprintf("employee %d", id))
		}
		before := e
		apply(&e, in)
		if err := tx.Save(&e).Error; err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			EntityType:  entityEmployee,
			EntityID:    e.ID,
			Action:      models.AuditActionUpdate,
			Description: "Updated employee " + e.FullName,
			Before:      before,
			After:       e,
		})
	})
	if err != nil {
		return nil, apperr.FromDB(err, "employee")
	}
	return &e, nil
}

// Archive flips the employee to archived. Assets still issued to them are
// reported so they can be processed with ProcessDeactivationAssets.
func (s *Service) Archive(ctx context.Context, id uint) (*ArchiveResult, error) {
	res := &ArchiveResult{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		e := &res.Employee
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(e, "id = ?", id).Error; err != nil {
			return apperr.FromDB(err, fmt.Sprintf("employee %d", id))
		}
		if err := tx.Model(&models.AssetInstance{}).
			Where("current_employee_id = ? AND status = ?", id, models.StatusIssued).
			Count(&res.AssetsStillHeld).Error; err != nil {
			return err
		}
		if !e.IsActive() {
			return nil
		}
		if err := tx.Model(e).Update("status", models.EmployeeArchived).Error; err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			EntityType:  entityEmployee,
			EntityID:    e.ID,
			Action:      models.AuditActionArchive,
			Description: fmt.Sprintf("Archived employee %s (%d assets still held)", e.FullName, res.AssetsStillHeld),
		})
	})
	if err != nil {
		return nil, apperr.FromDB(err, "employee")
	}
	return res, nil
}

// Delete removes an archived employee and their assignment history.
func (s *Service) Delete(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var e models.Employee
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&e, "id = ?", id).Error; err != nil {
			return apperr.FromDB(err, fmt.Sprintf("employee %d", id))
		}
		if e.IsActive() {
			return apperr.InvalidState("employee %s is active; archive them before deleting", e.FullName)
		}
		var held int64
		if err := tx.Model(&models.AssetInstance{}).Where("current_employee_id = ?", id).Count(&held).Error; err != nil {
			return err
		}
		if held > 0 {
			return apperr.InvalidState("employee %s still holds %d assets; process them first", e.FullName, held)
		}

		hist := tx.Where("employee_id = ?", id).Delete(&models.AssetAssignmentHistory{})
		if hist.Error != nil {
			return hist.Error
		}
		if err := tx.Delete(&e).Error; err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			EntityType:  entityEmployee,
			EntityID:    e.ID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Deleted employee %s with %d history rows", e.FullName, hist.RowsAffected),
			Before:      e,
		})
	})
	if err != nil {
		err = apperr.FromDB(err, "employee")
		if apperr.Is(err, apperr.KindInternal) {
			s.log.WithError(err).WithField("employeeId", id).Error("employee delete failed")
		}
		return err
	}
	s.log.WithField("employeeId", id).Info("employee deleted")
	return nil
}

// Assets lists the instances currently held by the employee.
func (s *Service) Assets(ctx context.Context, id uint) ([]models.AssetInstance, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	var rows []models.AssetInstance
	err := s.db.WithContext(ctx).Preload("AssetType").
		Where("current_employee_id = ?", id).Order("id").Find(&rows).Error
	if err != nil {
		return nil, apperr.Internal(err, "assets could not be listed")
	}
	return rows, nil
}

func apply(e *models.Employee, in Input) {
	e.FullName = in.FullName
	e.Position = in.Position
	e.ContactInfo = in.ContactInfo
	e.IsResponsible = in.IsResponsible
	e.CommissionRole = in.CommissionRole
	if e.CommissionRole == "" {
		e.CommissionRole = models.CommissionNone
	}
	e.IsHeadOfEnterprise = in.IsHeadOfEnterprise
	e.IsChiefAccountant = in.IsChiefAccountant
}
