package handlers

import (
	"github.com/derstakip/api/database"
	"github.com/derstakip/api/utils/response"
	"github.com/gofiber/fiber/v2"
)

// HandleCheckHealth handles GET /ping. It reports whether the process and
// its database connection are alive.
func HandleCheckHealth(c *fiber.Ctx, store database.Storage) error {
	if err := store.HealthCheck(); err != nil {
		return response.ServiceUnavailable(c, "Database connection is down")
	}

	return response.Success(c, fiber.Map{
		"status": "ok",
	})
}
