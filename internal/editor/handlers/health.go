package handlers

import (
	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Health Check Handlers
// ============================================================

func LivenessProbe(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "alive",
	})
}

func ReadinessProbe(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ready",
	})
}
