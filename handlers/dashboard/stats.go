package dashboard

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/sahilchouksey/degreefyd-api/services"
	"github.com/sahilchouksey/degreefyd-api/utils/response"
)

// DashboardHandler serves admin dashboard data
type DashboardHandler struct {
	colleges *services.CollegeService
	timeout  time.Duration
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(colleges *services.CollegeService, timeout time.Duration) *DashboardHandler {
	return &DashboardHandler{colleges: colleges, timeout: timeout}
}

// GetStats handles GET /api/dashboard/stats
func (h *DashboardHandler) GetStats(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	stats, err := h.colleges.Stats(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to read dashboard stats")
		return response.InternalServerError(c, "Failed to fetch stats")
	}
	return response.OK(c, stats)
}
