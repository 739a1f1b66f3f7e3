package employee

import (
	"context"
	"strings"

	"asset-inventory-backend/internal/apperr"
	"asset-inventory-backend/internal/models"
	"asset-inventory-backend/internal/validation"
	"asset-inventory-backend/internal/web"

	"github.com/gofiber/fiber/v2"
)

type Directory interface {
	List(ctx context.Context, status models.EmployeeStatus) ([]models.Employee, error)
	Get(ctx context.Context, id uint) (*models.Employee, error)
	Create(ctx context.Context, in Input) (*models.Employee, error)
	Update(ctx context.Context, id uint, in Input) (*models.Employee, error)
	Archive(ctx context.Context, id uint) (*ArchiveResult, error)
	Delete(ctx context.Context, id uint) error
	Assets(ctx context.Context, id uint) ([]models.AssetInstance, error)
}

// Response adds the derived isActive flag clients filter on.
type Response struct {
	models.Employee
	IsActive bool `json:"isActive"`
}

func toResponse(e models.Employee) Response {
	return Response{Employee: e, IsActive: e.IsActive()}
}

// GET /api/employees?status=active
func ListHandler(d Directory) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status := models.EmployeeStatus(c.Query("status"))
		if status != "" && status != models.EmployeeActive && status != models.EmployeeArchived {
			return apperr.Validation("status", "status must be active or archived")
		}
		emps, err := d.List(c.UserContext(), status)
		if err != nil {
			return err
		}
		res := make([]Response, 0, len(emps))
		for _, e := range emps {
			res = append(res, toResponse(e))
		}
		return c.JSON(res)
	}
}

// GET /api/employees/:id
func GetHandler(d Directory) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := web.ParamID(c, "id")
		if err != nil {
			return err
		}
		e, err := d.Get(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(toResponse(*e))
	}
}

// POST /api/employees
func CreateHandler(d Directory) fiber.Handler {
	return func(c *fiber.Ctx) error {
		in, err := bindInput(c)
		if err != nil {
			return err
		}
		e, err := d.Create(c.UserContext(), in)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(toResponse(*e))
	}
}

// PUT /api/employees/:id
func UpdateHandler(d Directory) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := web.ParamID(c, "id")
		if err != nil {
			return err
		}
		in, err := bindInput(c)
		if err != nil {
			return err
		}
		e, err := d.Update(c.UserContext(), id, in)
		if err != nil {
			return err
		}
		return c.JSON(toResponse(*e))
	}
}

// POST /api/employees/:id/archive
func ArchiveHandler(d Directory) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := web.ParamID(c, "id")
		if err != nil {
			return err
		}
		res, err := d.Archive(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"employee":        toResponse(res.Employee),
			"assetsStillHeld": res.AssetsStillHeld,
		})
	}
}

// DELETE /api/employees/:id
func DeleteHandler(d Directory) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := web.ParamID(c, "id")
		if err != nil {
			return err
		}
		if err := d.Delete(c.UserContext(), id); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GET /api/employees/:id/assets
func AssetsHandler(d Directory) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := web.ParamID(c, "id")
		if err != nil {
			return err
		}
		rows, err := d.Assets(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(rows)
	}
}

func bindInput(c *fiber.Ctx) (Input, error) {
	var in Input
	if err := c.BodyParser(&in); err != nil {
		return in, apperr.Validation("", "invalid request body: %v", err)
	}
	in.FullName = strings.TrimSpace(in.FullName)
	in.Position = strings.TrimSpace(in.Position)
	in.ContactInfo = strings.TrimSpace(in.ContactInfo)
	return in, validation.Struct(in)
}
