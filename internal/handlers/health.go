package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Health returns a handler reporting service and database health.
func Health(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status := "healthy"
		code := fiber.StatusOK

		if db != nil {
			sqlDB, err := db.DB()
			if err != nil || sqlDB.Ping() != nil {
				status = "unhealthy"
				code = fiber.StatusServiceUnavailable
			}
		}

		return c.Status(code).JSON(fiber.Map{
			"service": "RideWise Backend API",
			"status":  status,
		})
	}
}
