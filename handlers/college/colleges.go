package college

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/sahilchouksey/degreefyd-api/database"
	"github.com/sahilchouksey/degreefyd-api/model"
	"github.com/sahilchouksey/degreefyd-api/services"
	"github.com/sahilchouksey/degreefyd-api/services/catalog"
	"github.com/sahilchouksey/degreefyd-api/services/media"
	"github.com/sahilchouksey/degreefyd-api/utils/response"
)

// CollegeHandler handles college-related requests
type CollegeHandler struct {
	service *services.CollegeService
	timeout time.Duration
}

// NewCollegeHandler creates a new college handler. Every store call is
// bounded by timeout.
func NewCollegeHandler(service *services.CollegeService, timeout time.Duration) *CollegeHandler {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &CollegeHandler{
		service: service,
		timeout: timeout,
	}
}

func (h *CollegeHandler) withTimeout(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.UserContext(), h.timeout)
}

// ListColleges handles GET /api/colleges
func (h *CollegeHandler) ListColleges(c *fiber.Ctx) error {
	values, err := url.ParseQuery(string(c.Request().URI().QueryString()))
	if err != nil {
		return response.BadRequest(c, "Invalid query string")
	}

	ctx, cancel := h.withTimeout(c)
	defer cancel()

	page, err := h.service.List(ctx, catalog.ParamsFromValues(values))
	if err != nil {
		return h.fail(c, err, "Failed to fetch colleges")
	}
	return response.OK(c, page)
}

// GetCollegeBySlug handles GET /api/colleges/:slug
func (h *CollegeHandler) GetCollegeBySlug(c *fiber.Ctx) error {
	ctx, cancel := h.withTimeout(c)
	defer cancel()

	college, err := h.service.GetBySlug(ctx, c.Params("slug"))
	if err != nil {
		return h.fail(c, err, "Failed to fetch college")
	}
	return response.OK(c, college)
}

// ListAllColleges handles GET /api/colleges/admin/all
func (h *CollegeHandler) ListAllColleges(c *fiber.Ctx) error {
	ctx, cancel := h.withTimeout(c)
	defer cancel()

	colleges, err := h.service.ListAll(ctx)
	if err != nil {
		return h.fail(c, err, "Failed to fetch colleges")
	}
	return response.OK(c, colleges)
}

// GetCollegeByID handles GET /api/colleges/admin/:id
func (h *CollegeHandler) GetCollegeByID(c *fiber.Ctx) error {
	ctx, cancel := h.withTimeout(c)
	defer cancel()

	college, err := h.service.GetByID(ctx, c.Params("id"))
	if err != nil {
		return h.fail(c, err, "Failed to fetch college")
	}
	return response.OK(c, college)
}

// CreateCollege handles POST /api/colleges
func (h *CollegeHandler) CreateCollege(c *fiber.Ctx) error {
	var req model.College
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	ctx, cancel := h.withTimeout(c)
	defer cancel()

	college, err := h.service.Create(ctx, req)
	if err != nil {
		return h.fail(c, err, "Failed to create college")
	}
	return response.Created(c, college)
}

// UpdateCollege handles PUT /api/colleges/:id
func (h *CollegeHandler) UpdateCollege(c *fiber.Ctx) error {
	ctx, cancel := h.withTimeout(c)
	defer cancel()

	college, err := h.service.Update(ctx, c.Params("id"), c.Body())
	if err != nil {
		return h.fail(c, err, "Failed to update college")
	}
	return response.OK(c, college)
}

// DeleteCollege handles DELETE /api/colleges/:id
func (h *CollegeHandler) DeleteCollege(c *fiber.Ctx) error {
	ctx, cancel := h.withTimeout(c)
	defer cancel()

	if err := h.service.Delete(ctx, c.Params("id")); err != nil {
		return h.fail(c, err, "Failed to delete college")
	}
	return response.SuccessWithMessage(c, "College deleted successfully", nil)
}

// ToggleCollegeStatus handles PATCH /api/colleges/:id/status
func (h *CollegeHandler) ToggleCollegeStatus(c *fiber.Ctx) error {
	ctx, cancel := h.withTimeout(c)
	defer cancel()

	college, err := h.service.ToggleStatus(ctx, c.Params("id"))
	if err != nil {
		return h.fail(c, err, "Failed to toggle status")
	}
	return response.OK(c, college)
}

// UploadCollegeMedia handles POST /api/colleges/:id/media. The multipart
// form carries the image in "file" and the target field in "kind".
func (h *CollegeHandler) UploadCollegeMedia(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "File is required")
	}
	kind := services.MediaKind(c.FormValue("kind", string(services.MediaImage)))

	file, err := fh.Open()
	if err != nil {
		return response.BadRequest(c, "Failed to read uploaded file")
	}
	defer file.Close()

	ctx, cancel := h.withTimeout(c)
	defer cancel()

	college, err := h.service.UploadMedia(ctx, c.Params("id"), kind, fh.Filename, fh.Header.Get(fiber.HeaderContentType), file)
	if err != nil {
		return h.fail(c, err, "Failed to upload media")
	}
	return response.OK(c, college)
}

// fail maps service errors to responses. Unknown errors are logged and
// reported with a generic message.
func (h *CollegeHandler) fail(c *fiber.Ctx, err error, message string) error {
	var verr *services.ValidationError
	switch {
	case errors.Is(err, database.ErrNotFound):
		return response.NotFound(c, "College not found")
	case errors.Is(err, database.ErrDuplicateSlug):
		return response.Error(c, fiber.StatusBadRequest, "College with this slug already exists", "DUPLICATE_SLUG")
	case errors.As(err, &verr):
		return response.ValidationError(c, verr)
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, services.ErrUnsupportedMedia):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, media.ErrDisabled):
		return response.ServiceUnavailable(c, "Media storage is not configured")
	case errors.Is(err, context.DeadlineExceeded):
		return response.Error(c, fiber.StatusGatewayTimeout, "Request timed out", "TIMEOUT")
	}

	log.Error().Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Msg(message)
	return response.InternalServerError(c, message)
}
