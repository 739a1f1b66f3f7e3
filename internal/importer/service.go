package importer

import (
	"context"
	"fmt"

	"asset-inventory-backend/internal/apperr"
	"asset-inventory-backend/internal/audit"
	"asset-inventory-backend/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Result struct {
	Imported          int `json:"imported"`
	CreatedCategories int `json:"createdCategories"`
	CreatedTypes      int `json:"createdTypes"`
}

type Service struct {
	db  *gorm.DB
	log logrus.FieldLogger
}

func NewService(db *gorm.DB, log logrus.FieldLogger) *Service {
	return &Service{db: db, log: log.WithField("module", "importer")}
}

// Import validates every row, then writes categories, types and one on-stock
// instance per row in a single transaction.
func (s *Service) Import(ctx context.Context, rows []Row) (Result, error) {
	var res Result
	if len(rows) == 0 {
		return res, nil
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var names []string
		if err := tx.Model(&models.AssetType{}).Pluck("name", &names).Error; err != nil {
			return err
		}
		known := make(map[string]bool, len(names))
		for _, n := range names {
			known[typeKey(n)] = true
		}

		valid, err := Validate(rows, known)
		if err != nil {
			return err
		}

		w := &writer{tx: tx, categories: map[string]models.AssetCategory{}, types: map[string]models.AssetType{}, byName: map[string]models.AssetType{}}
		for i, v := range valid {
			typ, err := w.resolveType(i+1, v)
			if err != nil {
				return err
			}
			pd := v.PurchaseDate
			inst := models.AssetInstance{
				AssetTypeID:     typ.ID,
				InventoryNumber: v.Inventory,
				Quantity:        v.Quantity,
				UnitCost:        v.UnitCost,
				PurchaseDate:    &pd,
				Notes:           v.Notes,
				Status:          models.StatusOnStock,
			}
			if err := tx.Create(&inst).Error; err != nil {
				return err
			}
			res.Imported++
		}
		res.CreatedCategories = w.createdCategories
		res.CreatedTypes = w.createdTypes

		return audit.WriteLog(tx, audit.LogOptions{
			EntityType:  "asset_instance",
			Action:      models.AuditActionImport,
			Description: fmt.Sprintf("Imported %d instances (%d new types, %d new categories)", res.Imported, res.CreatedTypes, res.CreatedCategories),
			After:       res,
		})
	})
	if err != nil {
		err = apperr.FromDB(err, "import row")
		if apperr.Is(err, apperr.KindInternal) {
			s.log.WithError(err).WithField("rows", len(rows)).Error("import failed")
		}
		return Result{}, err
	}

	s.log.WithFields(logrus.Fields{"imported": res.Imported, "createdTypes": res.CreatedTypes}).Info("import committed")
	return res, nil
}

// writer caches categories and types found or created within one import.
type writer struct {
	tx                *gorm.DB
	categories        map[string]models.AssetCategory
	types             map[string]models.AssetType // typeKey + "|" + category id
	byName            map[string]models.AssetType
	createdCategories int
	createdTypes      int
}

func (w *writer) category(name string) (models.AssetCategory, error) {
	key := typeKey(name)
	if c, ok := w.categories[key]; ok {
		return c, nil
	}
	var found []models.AssetCategory
	if err := w.tx.Where("LOWER(name) = ?", key).Order("id").Limit(1).Find(&found).Error; err != nil {
		return models.AssetCategory{}, err
	}
	var c models.AssetCategory
	if len(found) > 0 {
		c = found[0]
	} else {
		c = models.AssetCategory{Name: name}
		if err := w.tx.Create(&c).Error; err != nil {
			return models.AssetCategory{}, err
		}
		w.createdCategories++
	}
	w.categories[key] = c
	return c, nil
}

func (w *writer) resolveType(idx int, v validRow) (models.AssetType, error) {
	key := typeKey(v.TypeName)

	if v.CategoryName == "" {
		if t, ok := w.byName[key]; ok {
			return t, nil
		}
		var found []models.AssetType
		if err := w.tx.Where("LOWER(name) = ?", key).Order("id").Limit(1).Find(&found).Error; err != nil {
			return models.AssetType{}, err
		}
		if len(found) == 0 {
			return models.AssetType{}, rowError(idx, "assetTypeName", "row %d: asset type %q does not exist", idx, v.TypeName)
		}
		w.byName[key] = found[0]
		return found[0], nil
	}

	cat, err := w.category(v.CategoryName)
	if err != nil {
		return models.AssetType{}, err
	}
	full := fmt.Sprintf("%s|%d", key, cat.ID)
	if t, ok := w.types[full]; ok {
		return t, nil
	}

	var found []models.AssetType
	if err := w.tx.Where("LOWER(name) = ? AND category_id = ?", key, cat.ID).Order("id").Limit(1).Find(&found).Error; err != nil {
		return models.AssetType{}, err
	}
	var t models.AssetType
	if len(found) > 0 {
		t = found[0]
	} else {
		if v.UnitOfMeasure == "" {
			return models.AssetType{}, rowError(idx, "unitOfMeasure", "row %d: unitOfMeasure is required for new asset type %q", idx, v.TypeName)
		}
		t = models.AssetType{
			Name:              v.TypeName,
			CategoryID:        cat.ID,
			UnitOfMeasure:     v.UnitOfMeasure,
			MinimumStockLevel: v.MinStock,
		}
		if err := w.tx.Create(&t).Error; err != nil {
			return models.AssetType{}, err
		}
		w.createdTypes++
	}
	w.types[full] = t
	if _, ok := w.byName[key]; !ok {
		w.byName[key] = t
	}
	return t, nil
}
