package auth

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/sahilchouksey/degreefyd-api/services"
	"github.com/sahilchouksey/degreefyd-api/utils/middleware"
	"github.com/sahilchouksey/degreefyd-api/utils/response"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	service              *services.AuthService
	bruteForceProtection *middleware.BruteForceProtection
	timeout              time.Duration
}

// NewAuthHandler creates a new auth handler. bruteForceProtection may be nil.
func NewAuthHandler(service *services.AuthService, bruteForceProtection *middleware.BruteForceProtection, timeout time.Duration) *AuthHandler {
	return &AuthHandler{
		service:              service,
		bruteForceProtection: bruteForceProtection,
		timeout:              timeout,
	}
}

// Signup handles POST /api/auth/signup
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req services.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	res, err := h.service.Signup(ctx, req)
	if err != nil {
		return h.fail(c, err, "Failed to create account")
	}
	return response.Created(c, res)
}

func (h *AuthHandler) fail(c *fiber.Ctx, err error, message string) error {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return response.ValidationError(c, verr)
	case errors.Is(err, services.ErrEmailTaken):
		return response.Conflict(c, err.Error())
	case errors.Is(err, services.ErrAdminSignupClosed):
		return response.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		return response.Unauthorized(c, err.Error())
	case errors.Is(err, services.ErrInvalidRefresh):
		return response.Unauthorized(c, "Invalid or expired refresh token")
	}

	log.Error().Err(err).Str("path", c.Path()).Msg(message)
	return response.InternalServerError(c, message)
}
