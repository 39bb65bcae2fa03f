package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/sahilchouksey/degreefyd-api/database"
	"github.com/sahilchouksey/degreefyd-api/utils/response"
)

// HandleCheckHealth reports whether the store is reachable
func HandleCheckHealth(store database.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		if err := store.HealthCheck(ctx); err != nil {
			log.Warn().Err(err).Msg("health check failed")
			return response.ServiceUnavailable(c, "Store unavailable")
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}
