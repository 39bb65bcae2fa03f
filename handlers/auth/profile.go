package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sahilchouksey/degreefyd-api/utils/middleware"
	"github.com/sahilchouksey/degreefyd-api/utils/response"
)

// GetProfile handles GET /api/auth/me
func (h *AuthHandler) GetProfile(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}
	return response.OK(c, user)
}
