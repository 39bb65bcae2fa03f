package auth

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/sahilchouksey/degreefyd-api/services"
	"github.com/sahilchouksey/degreefyd-api/utils/response"
)

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req services.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	ip := c.IP()
	res, err := h.service.Login(ctx, req)
	if err != nil {
		// Record failed attempt even if user not found
		if errors.Is(err, services.ErrInvalidCredentials) {
			h.bruteForceProtection.RecordFailedAttempt(ctx, ip)
		}
		return h.fail(c, err, "Failed to log in")
	}

	// Clear failed attempts on successful login
	h.bruteForceProtection.RecordSuccessfulAttempt(ctx, ip)

	return response.OK(c, res)
}
