package lifecycle

import (
	"context"

	"asset-inventory-backend/internal/apperr"
	"asset-inventory-backend/internal/models"
	"asset-inventory-backend/internal/web"

	"github.com/gofiber/fiber/v2"
)

// Operations is what the HTTP layer needs from Service.
type Operations interface {
	Issue(ctx context.Context, instanceID, employeeID uint) (*models.AssetInstance, error)
	ProcessDeactivationAssets(ctx context.Context, employeeID uint, items []DeactivationItem) (DeactivationResult, error)
	WriteOff(ctx context.Context, items []WriteOffItem) (WriteOffResult, error)
	AvailableInstances(ctx context.Context, assetTypeID uint) ([]models.AssetInstance, error)
	ListInstances(ctx context.Context, f InstanceFilter) ([]models.AssetInstance, error)
	GetInstance(ctx context.Context, id uint) (*models.AssetInstance, error)
	CreateInstance(ctx context.Context, in CreateInstanceInput) (*models.AssetInstance, error)
	UpdateInstance(ctx context.Context, id uint, in UpdateInstanceInput) (*models.AssetInstance, error)
	History(ctx context.Context, instanceID uint) ([]models.AssetAssignmentHistory, error)
}

// ConfirmationVerifier checks a token issued with a write-off protocol against
// the lines about to be written off.
type ConfirmationVerifier interface {
	VerifyConfirmation(token string, lines map[uint]int) error
}

type AssignRequest struct {
	EmployeeID uint `json:"employeeId" validate:"required"`
	InstanceID uint `json:"instanceId" validate:"required"`
}

type ProcessAssetsRequest struct {
	Assets []DeactivationItem `json:"assets"`
}

type WriteOffRequest struct {
	Items             []WriteOffItem `json:"items"`
	ConfirmationToken string         `json:"confirmationToken"`
}

// POST /api/asset-instances/assign
func AssignHandler(ops Operations) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body AssignRequest
		if err := web.Bind(c, &body); err != nil {
			return err
		}
		inst, err := ops.Issue(c.UserContext(), body.InstanceID, body.EmployeeID)
		if err != nil {
			return err
		}
		return c.JSON(inst)
	}
}

// GET /api/asset-instances/available?assetTypeId=3
func AvailableHandler(ops Operations) fiber.Handler {
	return func(c *fiber.Ctx) error {
		typeID, err := web.QueryID(c, "assetTypeId")
		if err != nil {
			return err
		}
		if typeID == 0 {
			return apperr.Validation("assetTypeId", "assetTypeId is required")
		}
		rows, err := ops.AvailableInstances(c.UserContext(), typeID)
		if err != nil {
			return err
		}
		return c.JSON(rows)
	}
}

// POST /api/employees/:id/process-assets
func ProcessAssetsHandler(ops Operations) fiber.Handler {
	return func(c *fiber.Ctx) error {
		employeeID, err := web.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body ProcessAssetsRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("", "invalid request body: %v", err)
		}
		res, err := ops.ProcessDeactivationAssets(c.UserContext(), employeeID, body.Assets)
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}

// POST /api/inventory/perform-write-off
//
// verifier may be nil; when set, a supplied confirmationToken must match the lines.
func PerformWriteOffHandler(ops Operations, verifier ConfirmationVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body WriteOffRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("", "invalid request body: %v", err)
		}
		if verifier != nil && body.ConfirmationToken != "" {
			lines := make(map[uint]int, len(body.Items))
			for _, it := range body.Items {
				lines[it.InstanceID] += it.QuantityToWriteOff
			}
			if err := verifier.VerifyConfirmation(body.ConfirmationToken, lines); err != nil {
				return err
			}
		}
		res, err := ops.WriteOff(c.UserContext(), body.Items)
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}

// GET /api/asset-instances?status=on_stock&assetTypeId=1&employeeId=2
func ListInstancesHandler(ops Operations) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var f InstanceFilter
		if s := c.Query("status"); s != "" {
			f.Status = models.InstanceStatus(s)
			if !f.Status.Valid() {
				return apperr.Validation("status", "unknown status %q", s)
			}
		}
		var err error
		if f.AssetTypeID, err = web.QueryID(c, "assetTypeId"); err != nil {
			return err
		}
		if f.EmployeeID, err = web.QueryID(c, "employeeId"); err != nil {
			return err
		}
		rows, err := ops.ListInstances(c.UserContext(), f)
		if err != nil {
			return err
		}
		return c.JSON(rows)
	}
}

// GET /api/asset-instances/:id
func GetInstanceHandler(ops Operations) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := web.ParamID(c, "id")
		if err != nil {
			return err
		}
		inst, err := ops.GetInstance(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(inst)
	}
}

// POST /api/asset-instances
func CreateInstanceHandler(ops Operations) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateInstanceInput
		if err := web.Bind(c, &body); err != nil {
			return err
		}
		inst, err := ops.CreateInstance(c.UserContext(), body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(inst)
	}
}

// PUT /api/asset-instances/:id
func UpdateInstanceHandler(ops Operations) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := web.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body UpdateInstanceInput
		if err := web.Bind(c, &body); err != nil {
			return err
		}
		inst, err := ops.UpdateInstance(c.UserContext(), id, body)
		if err != nil {
			return err
		}
		return c.JSON(inst)
	}
}

// GET /api/asset-instances/:id/history
func HistoryHandler(ops Operations) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := web.ParamID(c, "id")
		if err != nil {
			return err
		}
		if _, err := ops.GetInstance(c.UserContext(), id); err != nil {
			return err
		}
		rows, err := ops.History(c.UserContext(), id)
		if err != nil {
			return apperr.Internal(err, "history could not be loaded")
		}
		return c.JSON(rows)
	}
}
