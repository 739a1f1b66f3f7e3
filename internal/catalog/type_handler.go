package catalog

import (
	"fmt"
	"strings"

	"asset-inventory-backend/internal/apperr"
	"asset-inventory-backend/internal/audit"
	"asset-inventory-backend/internal/models"
	"asset-inventory-backend/internal/validation"
	"asset-inventory-backend/internal/web"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const entityType = "asset_type"

type CreateTypeRequest struct {
	Name              string `json:"name" validate:"required,max=200"`
	CategoryID        uint   `json:"categoryId" validate:"required"`
	UnitOfMeasure     string `json:"unitOfMeasure" validate:"required,max=30"`
	MinimumStockLevel *int   `json:"minimumStockLevel" validate:"omitempty,gte=0"`
	Notes             string `json:"notes" validate:"max=1000"`
}

// UpdateTypeRequest: absent fields stay unchanged. ClearMinimumStock removes the threshold.
type UpdateTypeRequest struct {
	Name              *string `json:"name" validate:"omitempty,min=1,max=200"`
	CategoryID        *uint   `json:"categoryId" validate:"omitempty,gt=0"`
	UnitOfMeasure     *string `json:"unitOfMeasure" validate:"omitempty,min=1,max=30"`
	MinimumStockLevel *int    `json:"minimumStockLevel" validate:"omitempty,gte=0"`
	ClearMinimumStock bool    `json:"clearMinimumStock"`
	Notes             *string `json:"notes" validate:"omitempty,max=1000"`
}

// GET /api/asset-types?categoryId=1
func ListTypesHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		catID, err := web.QueryID(c, "categoryId")
		if err != nil {
			return err
		}
		q := db.WithContext(c.UserContext()).Preload("Category")
		if catID > 0 {
			q = q.Where("category_id = ?", catID)
		}
		var types []models.AssetType
		if err := q.Order("name asc").Find(&types).Error; err != nil {
			return apperr.Internal(err, "asset types could not be listed")
		}
		return c.JSON(types)
	}
}

// GET /api/asset-types/:id
func GetTypeHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := web.ParamID(c, "id")
		if err != nil {
			return err
		}
		var t models.AssetType
		if err := db.WithContext(c.UserContext()).Preload("Category").First(&t, "id = ?", id).Error; err != nil {
			return apperr.FromDB(err, fmt.Sprintf("asset type %d", id))
		}
		return c.JSON(t)
	}
}

// POST /api/asset-types
func CreateTypeHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateTypeRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("", "invalid request body: %v", err)
		}
		body.Name = strings.TrimSpace(body.Name)
		body.UnitOfMeasure = strings.TrimSpace(body.UnitOfMeasure)
		if err := validation.Struct(body); err != nil {
			return err
		}

		t := models.AssetType{
			Name:              body.Name,
			CategoryID:        body.CategoryID,
			UnitOfMeasure:     body.UnitOfMeasure,
			MinimumStockLevel: body.MinimumStockLevel,
			Notes:             body.Notes,
		}
		err := db.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
			if err := requireCategory(tx, t.CategoryID); err != nil {
				return err
			}
			if err := tx.Create(&t).Error; err != nil {
				return err
			}
			return audit.WriteLog(tx, audit.LogOptions{
				EntityType:  entityType,
				EntityID:    t.ID,
				Action:      models.AuditActionCreate,
				Description: "Created asset type " + t.Name,
				After:       t,
			})
		})
		if err != nil {
			return apperr.FromDB(err, fmt.Sprintf("asset type %q in this category", body.Name))
		}
		return c.Status(fiber.StatusCreated).JSON(t)
	}
}

// PUT /api/asset-types/:id
func UpdateTypeHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := web.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body UpdateTypeRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("", "invalid request body: %v", err)
		}
		trimPtr(body.Name)
		trimPtr(body.UnitOfMeasure)
		if err := validation.Struct(body); err != nil {
			return err
		}

		var t models.AssetType
		err = db.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
			if err := tx.First(&t, "id = ?", id).Error; err != nil {
				return apperr.FromDB(err, fmt.Sprintf("asset type %d", id))
			}
			before := t
			if body.Name != nil {
				t.Name = *body.Name
			}
			if body.CategoryID != nil {
				if err := requireCategory(tx, *body.CategoryID); err != nil {
					return err
				}
				t.CategoryID = *body.CategoryID
			}
			if body.UnitOfMeasure != nil {
				t.UnitOfMeasure = *body.UnitOfMeasure
			}
			if body.MinimumStockLevel != nil {
				t.MinimumStockLevel = body.MinimumStockLevel
			}
			if body.ClearMinimumStock {
				t.MinimumStockLevel = nil
			}
			if body.Notes != nil {
				t.Notes = *body.Notes
			}
			t.Category = nil
			if err := tx.Save(&t).Error; err != nil {
				return err
			}
			return audit.WriteLog(tx, audit.LogOptions{
				EntityType:  entityType,
				EntityID:    t.ID,
				Action:      models.AuditActionUpdate,
				Description: "Updated asset type " + t.Name,
				Before:      before,
				After:       t,
			})
		})
		if err != nil {
			return apperr.FromDB(err, "asset type with this name in this category")
		}
		return c.JSON(t)
	}
}

// DELETE /api/asset-types/:id
func DeleteTypeHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := web.ParamID(c, "id")
		if err != nil {
			return err
		}

		err = db.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
			var t models.AssetType
			if err := tx.First(&t, "id = ?", id).Error; err != nil {
				return apperr.FromDB(err, fmt.Sprintf("asset type %d", id))
			}
			var count int64
			if err := tx.Model(&models.AssetInstance{}).Where("asset_type_id = ?", id).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return apperr.Conflict("asset type %s still has %d instances", t.Name, count)
			}
			if err := tx.Delete(&t).Error; err != nil {
				return err
			}
			return audit.WriteLog(tx, audit.LogOptions{
				EntityType:  entityType,
				EntityID:    t.ID,
				Action:      models.AuditActionDelete,
				Description: "Deleted asset type " + t.Name,
				Before:      t,
			})
		})
		if err != nil {
			return apperr.FromDB(err, fmt.Sprintf("asset type %d", id))
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func requireCategory(tx *gorm.DB, id uint) error {
	var count int64
	if err := tx.Model(&models.AssetCategory{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return apperr.NotFound("category %d not found", id)
	}
	return nil
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}
