package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

// ReadinessCheck reports whether a downstream dependency can serve.
type ReadinessCheck func(ctx context.Context) error

type HealthHandler struct {
	checks []ReadinessCheck
}

func NewHealthHandler(checks ...ReadinessCheck) *HealthHandler {
	return &HealthHandler{checks: checks}
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status:  "ok",
		Version: "0.1.0",
	})
}

func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	for _, check := range h.checks {
		if err := check(c.Context()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(HealthResponse{
				Status: "not ready",
			})
		}
	}
	return c.JSON(HealthResponse{
		Status: "ready",
	})
}
