package dashboard

import (
	"context"

	"asset-inventory-backend/internal/apperr"
	"asset-inventory-backend/internal/models"

	"gorm.io/gorm"
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Summary is read-only; two calls without writes in between return the same data.
func (s *Service) Summary(ctx context.Context, activityLimit int) (*Summary, error) {
	low, err := s.LowStock(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.RecentActivity(ctx, activityLimit)
	if err != nil {
		return nil, err
	}
	totals, err := s.totals(ctx)
	if err != nil {
		return nil, err
	}
	return &Summary{LowStockItems: low, RecentActivities: recent, Totals: totals}, nil
}

// StockLevels sums on-stock quantity per asset type that has a threshold.
// Types with no on-stock rows report 0.
func (s *Service) StockLevels(ctx context.Context) ([]StockLevel, error) {
	var levels []StockLevel
	err := s.db.WithContext(ctx).Raw(`
		SELECT t.id                        AS asset_type_id,
		       t.name                      AS asset_type_name,
		       COALESCE(c.name, '')        AS category_name,
		       t.unit_of_measure           AS unit_of_measure,
		       t.minimum_stock_level       AS minimum_stock_level,
		       COALESCE(SUM(i.quantity), 0) AS current_stock
		FROM asset_types t
		LEFT JOIN asset_categories c ON c.id = t.category_id
		LEFT JOIN asset_instances i ON i.asset_type_id = t.id AND i.status = ?
		WHERE t.minimum_stock_level IS NOT NULL
		GROUP BY t.id, t.name, c.name, t.unit_of_measure, t.minimum_stock_level
		ORDER BY t.name, t.id
	`, models.StatusOnStock).Scan(&levels).Error
	if err != nil {
		return nil, apperr.Internal(err, "stock levels could not be computed")
	}
	return levels, nil
}

func (s *Service) LowStock(ctx context.Context) ([]StockLevel, error) {
	levels, err := s.StockLevels(ctx)
	if err != nil {
		return nil, err
	}
	return flagLowStock(levels), nil
}

func (s *Service) RecentActivity(ctx context.Context, limit int) ([]Activity, error) {
	limit = clampLimit(limit)
	db := s.db.WithContext(ctx)

	var assigned, returned, writtenOff []Activity
	err := db.Raw(`
		SELECT h.id AS source_id, h.assignment_date AS date, h.asset_instance_id AS instance_id,
		       i.inventory_number, t.name AS asset_type_name,
		       h.employee_id, COALESCE(e.full_name, '') AS employee_name
		FROM asset_assignment_histories h
		JOIN asset_instances i ON i.id = h.asset_instance_id
		JOIN asset_types t ON t.id = i.asset_type_id
		LEFT JOIN employees e ON e.id = h.employee_id
		ORDER BY h.assignment_date DESC, h.id DESC
		LIMIT ?
	`, limit).Scan(&assigned).Error
	if err != nil {
		return nil, apperr.Internal(err, "assignments could not be loaded")
	}

	err = db.Raw(`
		SELECT h.id AS source_id, h.return_date AS date, h.asset_instance_id AS instance_id,
		       i.inventory_number, t.name AS asset_type_name,
		       h.employee_id, COALESCE(e.full_name, '') AS employee_name
		FROM asset_assignment_histories h
		JOIN asset_instances i ON i.id = h.asset_instance_id
		JOIN asset_types t ON t.id = i.asset_type_id
		LEFT JOIN employees e ON e.id = h.employee_id
		WHERE h.return_date IS NOT NULL
		ORDER BY h.return_date DESC, h.id DESC
		LIMIT ?
	`, limit).Scan(&returned).Error
	if err != nil {
		return nil, apperr.Internal(err, "returns could not be loaded")
	}

	err = db.Raw(`
		SELECT i.id AS source_id, i.updated_at AS date, i.id AS instance_id,
		       i.inventory_number, t.name AS asset_type_name
		FROM asset_instances i
		JOIN asset_types t ON t.id = i.asset_type_id
		WHERE i.status = ?
		ORDER BY i.updated_at DESC, i.id DESC
		LIMIT ?
	`, models.StatusWrittenOff, limit).Scan(&writtenOff).Error
	if err != nil {
		return nil, apperr.Internal(err, "write-offs could not be loaded")
	}

	return mergeActivities(limit,
		tag(assigned, ActivityAssignment),
		tag(returned, ActivityReturn),
		tag(writtenOff, ActivityWriteOff),
	), nil
}

func (s *Service) totals(ctx context.Context) (Totals, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var counts []statusCount
	db := s.db.WithContext(ctx)
	if err := db.Model(&models.AssetInstance{}).
		Select("status, COUNT(*) AS count").Group("status").Scan(&counts).Error; err != nil {
		return Totals{}, apperr.Internal(err, "instance totals could not be computed")
	}

	t := Totals{InstancesByStatus: make(map[string]int64, len(models.AllInstanceStatuses))}
	for _, st := range models.AllInstanceStatuses {
		t.InstancesByStatus[string(st)] = 0
	}
	for _, c := range counts {
		t.InstancesByStatus[c.Status] = c.Count
	}
	if err := db.Model(&models.Employee{}).Where("status = ?", models.EmployeeActive).Count(&t.ActiveEmployees).Error; err != nil {
		return Totals{}, apperr.Internal(err, "employee totals could not be computed")
	}
	return t, nil
}
