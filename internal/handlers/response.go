package handlers

import (
	"errors"

	"usersvc/internal/services"
	"usersvc/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// ErrorBody describes a failed request. Code mirrors the HTTP status.
type ErrorBody struct {
	Code        int                    `json:"code"`
	Description string                 `json:"description"`
	Details     []validation.Violation `json:"details,omitempty"`
}

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool       `json:"success"`
	Message string     `json:"message"`
	Data    any        `json:"data"`
	Error   *ErrorBody `json:"error,omitempty"`
}

const (
	messageValidation = "Validation error"
	messageNotFound   = "User not found"
	messageInternal   = "Internal Server Error"

	descriptionNotFound  = "User not found!"
	descriptionDuplicate = "User ID or username already exists"
)

func respond(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Failure writes the envelope for a failed request. description is what the
// client sees for the failing operation; internal detail never leaves the server.
func Failure(c *fiber.Ctx, status int, message, description string, details []validation.Violation) error {
	return c.Status(status).JSON(Response{
		Success: false,
		Message: message,
		Error: &ErrorBody{
			Code:        status,
			Description: description,
			Details:     details,
		},
	})
}

// respondError maps a service error to its status code and envelope.
func respondError(c *fiber.Ctx, err error, description string) error {
	switch services.KindOf(err) {
	case services.KindValidation:
		var verr *validation.Error
		var details []validation.Violation
		if errors.As(err, &verr) {
			details = verr.Violations
		}
		return Failure(c, fiber.StatusBadRequest, messageValidation, description, details)
	case services.KindConflict:
		return Failure(c, fiber.StatusBadRequest, messageValidation, descriptionDuplicate, nil)
	case services.KindNotFound:
		return Failure(c, fiber.StatusNotFound, messageNotFound, descriptionNotFound, nil)
	default:
		return Failure(c, fiber.StatusInternalServerError, messageInternal, description, nil)
	}
}
