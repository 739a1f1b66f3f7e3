package importer

import (
	"context"
	"strings"

	"asset-inventory-backend/internal/apperr"

	"github.com/gofiber/fiber/v2"
)

type Importer interface {
	Import(ctx context.Context, rows []Row) (Result, error)
}

// POST /api/inventory/import
func ImportHandler(imp Importer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := DecodeRows(c.Body())
		if err != nil {
			return err
		}
		res, err := imp.Import(c.UserContext(), rows)
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}

// POST /api/inventory/import/xlsx (multipart, field "file")
func ImportXLSXHandler(imp Importer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return apperr.Validation("file", "file upload is required: %v", err)
		}
		if !strings.HasSuffix(strings.ToLower(fh.Filename), ".xlsx") {
			return apperr.Validation("file", "only .xlsx files are accepted")
		}

		f, err := fh.Open()
		if err != nil {
			return apperr.Internal(err, "uploaded file could not be opened")
		}
		defer f.Close()

		rows, err := ReadXLSX(f)
		if err != nil {
			return err
		}
		res, err := imp.Import(c.UserContext(), rows)
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}
