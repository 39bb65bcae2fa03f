package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/sahilchouksey/degreefyd-api/utils/middleware"
	"github.com/sahilchouksey/degreefyd-api/utils/response"
)

// RefreshRequest represents a token refresh or logout request
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// RefreshToken handles POST /api/auth/refresh
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	var req RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.RefreshToken == "" {
		return response.BadRequest(c, "Refresh token is required")
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	res, err := h.service.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return h.fail(c, err, "Failed to refresh token")
	}
	return response.OK(c, res)
}

// Logout handles POST /api/auth/logout. The refresh token in the body is
// optional and revoked alongside the access token.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req RefreshRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return response.BadRequest(c, "Invalid request body")
		}
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	if err := h.service.Logout(ctx, claims, req.RefreshToken); err != nil {
		return h.fail(c, err, "Failed to log out")
	}
	return response.SuccessWithMessage(c, "Logged out successfully", nil)
}

// LogoutAll handles POST /api/auth/logout-all
func (h *AuthHandler) LogoutAll(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	if err := h.service.LogoutAll(ctx, userID); err != nil {
		return h.fail(c, err, "Failed to log out")
	}
	return response.SuccessWithMessage(c, "Logged out from all devices", nil)
}
