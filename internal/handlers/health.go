package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// HealthCheck returns service health status
func HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"service": "Atelier Backend",
		"version": "1.0.0",
	})
}
