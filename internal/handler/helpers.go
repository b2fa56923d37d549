package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/kinderhub/backend/internal/dto"
	"github.com/kinderhub/backend/internal/validation"
	"gorm.io/gorm"
)

var validate = validation.New()

// ChangeNotifier is told about every successful write so that connected
// clients can re-fetch.
type ChangeNotifier interface {
	NotifyChange(collection, action string, id *uuid.UUID)
}

type noopNotifier struct{}

func (noopNotifier) NotifyChange(string, string, *uuid.UUID) {}

func notifierOrNoop(n ChangeNotifier) ChangeNotifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}

// bindAndValidate parses the body into req, trims its strings and runs the
// validate tags. A non-nil response error means the handler must return it.
func bindAndValidate(c *fiber.Ctx, req interface{}) (bool, error) {
	if err := c.BodyParser(req); err != nil {
		return false, invalidBody(c)
	}
	return bindValidated(c, req)
}

// bindValidated trims and validates an already parsed request.
func bindValidated(c *fiber.Ctx, req interface{}) (bool, error) {
	validation.TrimStrings(req)
	if err := validate.Struct(req); err != nil {
		return false, validationFailed(c, validation.Details(err)...)
	}
	return true, nil
}

func parseID(c *fiber.Ctx) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params("id"))
	return id, err == nil
}

func invalidID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse("VALIDATION_ERROR", "Invalid ID"))
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse("VALIDATION_ERROR", "Invalid request body"))
}

func validationFailed(c *fiber.Ctx, details ...dto.ErrorDetail) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse("VALIDATION_ERROR", "Validation failed", details...))
}

func notFound(c *fiber.Ctx, what string) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse("NOT_FOUND", what+" not found"))
}

func internalError(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse("INTERNAL_ERROR", message))
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
