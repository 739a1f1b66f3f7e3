package lifecycle

import (
	"context"
	"time"

	"asset-inventory-backend/internal/models"

	"gorm.io/gorm"
)

// openAssignment appends the ledger row for a new loan.
func openAssignment(tx *gorm.DB, instanceID, employeeID uint, at time.Time) (*models.AssetAssignmentHistory, error) {
	h := &models.AssetAssignmentHistory{
		AssetInstanceID: instanceID,
		EmployeeID:      employeeID,
		AssignmentDate:  at,
	}
	if err := tx.Create(h).Error; err != nil {
		return nil, err
	}
	return h, nil
}

// closeAssignments stamps return_date on the instance's open loan, if any.
func closeAssignments(tx *gorm.DB, instanceID uint, at time.Time) (int64, error) {
	res := tx.Model(&models.AssetAssignmentHistory{}).
		Where("asset_instance_id = ? AND return_date IS NULL", instanceID).
		Update("return_date", at)
	return res.RowsAffected, res.Error
}

func (s *Service) History(ctx context.Context, instanceID uint) ([]models.AssetAssignmentHistory, error) {
	var rows []models.AssetAssignmentHistory
	err := s.db.WithContext(ctx).
		Preload("Employee").
		Where("asset_instance_id = ?", instanceID).
		Order("assignment_date DESC, id DESC").
		Find(&rows).Error
	return rows, err
}
