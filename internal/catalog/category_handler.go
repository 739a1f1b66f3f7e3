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

const entityCategory = "asset_category"

type CategoryRequest struct {
	Name string `json:"name" validate:"required,max=150"`
}

// GET /api/asset-categories
func ListCategoriesHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var cats []models.AssetCategory
		if err := db.WithContext(c.UserContext()).Order("name asc").Find(&cats).Error; err != nil {
			return apperr.Internal(err, "categories could not be listed")
		}
		return c.JSON(cats)
	}
}

// GET /api/asset-categories/:id
func GetCategoryHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := web.ParamID(c, "id")
		if err != nil {
			return err
		}
		var cat models.AssetCategory
		if err := db.WithContext(c.UserContext()).First(&cat, "id = ?", id).Error; err != nil {
			return apperr.FromDB(err, fmt.Sprintf("category %d", id))
		}
		return c.JSON(cat)
	}
}

// POST /api/asset-categories
func CreateCategoryHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CategoryRequest
		if err := bindCategory(c, &body); err != nil {
			return err
		}

		cat := models.AssetCategory{Name: body.Name}
		err := db.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&cat).Error; err != nil {
				return err
			}
			return audit.WriteLog(tx, audit.LogOptions{
				EntityType:  entityCategory,
				EntityID:    cat.ID,
				Action:      models.AuditActionCreate,
				Description: "Created category " + cat.Name,
				After:       cat,
			})
		})
		if err != nil {
			return apperr.FromDB(err, fmt.Sprintf("category %q", body.Name))
		}
		return c.Status(fiber.StatusCreated).JSON(cat)
	}
}

// PUT /api/asset-categories/:id
func UpdateCategoryHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := web.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body CategoryRequest
		if err := bindCategory(c, &body); err != nil {
			return err
		}

		var cat models.AssetCategory
		err = db.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
			if err := tx.First(&cat, "id = ?", id).Error; err != nil {
				return apperr.FromDB(err, fmt.Sprintf("category %d", id))
			}
			before := cat
			cat.Name = body.Name
			if err := tx.Save(&cat).Error; err != nil {
				return err
			}
			return audit.WriteLog(tx, audit.LogOptions{
				EntityType:  entityCategory,
				EntityID:    cat.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Renamed category %s to %s", before.Name, cat.Name),
				Before:      before,
				After:       cat,
			})
		})
		if err != nil {
			return apperr.FromDB(err, fmt.Sprintf("category %q", body.Name))
		}
		return c.JSON(cat)
	}
}

// DELETE /api/asset-categories/:id
func DeleteCategoryHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := web.ParamID(c, "id")
		if err != nil {
			return err
		}

		err = db.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
			var cat models.AssetCategory
			if err := tx.First(&cat, "id = ?", id).Error; err != nil {
				return apperr.FromDB(err, fmt.Sprintf("category %d", id))
			}
			var count int64
			if err := tx.Model(&models.AssetType{}).Where("category_id = ?", id).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return apperr.Conflict("category %s still has %d asset types, delete or move them first", cat.Name, count)
			}
			if err := tx.Delete(&cat).Error; err != nil {
				return err
			}
			return audit.WriteLog(tx, audit.LogOptions{
				EntityType:  entityCategory,
				EntityID:    cat.ID,
				Action:      models.AuditActionDelete,
				Description: "Deleted category " + cat.Name,
				Before:      cat,
			})
		})
		if err != nil {
			return apperr.FromDB(err, fmt.Sprintf("category %d", id))
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func bindCategory(c *fiber.Ctx, body *CategoryRequest) error {
	if err := c.BodyParser(body); err != nil {
		return apperr.Validation("", "invalid request body: %v", err)
	}
	body.Name = strings.TrimSpace(body.Name)
	return validation.Struct(body)
}
