package middleware

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

// Recover turns a handler panic into a 500 response. It sits outside the
// pipeline's own panic containment, so only panics in the HTTP layer itself
// land here.
func Recover(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered",
					slog.Any("panic", r),
					slog.String("request_id", requestID(c)),
					slog.String("method", c.Method()),
					slog.String("path", c.Path()),
				)

				_ = c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": fiber.Map{
						"code":    "INTERNAL_ERROR",
						"message": "An unexpected error occurred",
					},
				})
			}
		}()
		return c.Next()
	}
}
