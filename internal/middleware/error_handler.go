package middleware

import (
	"errors"

	"usersvc/internal/handlers"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorHandler renders errors that escape a handler, unmatched routes and
// recovered panics included, in the standard response envelope.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var ferr *fiber.Error
		if errors.As(err, &ferr) && ferr.Code < fiber.StatusInternalServerError {
			return handlers.Failure(c, ferr.Code, ferr.Message, ferr.Message, nil)
		}
		logger.Error("unhandled request error",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err))
		return handlers.Failure(c, fiber.StatusInternalServerError, "Internal Server Error", "Something went wrong", nil)
	}
}
