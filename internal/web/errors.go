package web

import (
	"errors"

	"asset-inventory-backend/internal/apperr"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// ErrorBody is the JSON shape of every non-2xx response.
type ErrorBody struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	FieldName  string `json:"fieldName,omitempty"`
	RowIndex   int    `json:"rowIndex,omitempty"`
	MissingIDs []uint `json:"missingIds,omitempty"`
}

// ErrorHandler renders apperr errors and fiber errors in one format. Internal
// details are logged, never returned.
func ErrorHandler(log logrus.FieldLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, body := Describe(err)
		if status >= fiber.StatusInternalServerError {
			log.WithFields(logrus.Fields{
				"method":    c.Method(),
				"path":      c.Path(),
				"requestId": c.Locals("requestid"),
			}).WithError(err).Error("request failed")
		}
		return c.Status(status).JSON(body)
	}
}

func Describe(err error) (int, ErrorBody) {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		body := ErrorBody{
			Code:       string(ae.Kind),
			Message:    ae.Message,
			FieldName:  ae.Field,
			RowIndex:   ae.RowIndex,
			MissingIDs: ae.MissingIDs,
		}
		if ae.Kind == apperr.KindInternal {
			body.Message = "internal server error"
		}
		return ae.Status(), body
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code, ErrorBody{Code: codeFor(fe.Code), Message: fe.Message}
	}
	return fiber.StatusInternalServerError, ErrorBody{Code: string(apperr.KindInternal), Message: "internal server error"}
}

func codeFor(status int) string {
	switch {
	case status == fiber.StatusNotFound:
		return string(apperr.KindNotFound)
	case status == fiber.StatusConflict:
		return string(apperr.KindConflict)
	case status >= 500:
		return string(apperr.KindInternal)
	default:
		return string(apperr.KindValidation)
	}
}
