package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/sahilchouksey/degreefyd-api/database"
	"github.com/sahilchouksey/degreefyd-api/model"
	"github.com/sahilchouksey/degreefyd-api/services"
	"github.com/sahilchouksey/degreefyd-api/services/catalog"
	"github.com/sahilchouksey/degreefyd-api/utils/response"
)

const defaultTimeout = 10 * time.Second

// HTTP calls a running API over fasthttp. It is safe for concurrent use.
type HTTP struct {
	baseURL string
	token   string
	timeout time.Duration
	client  *fasthttp.Client
}

// Option configures an HTTP client
type Option func(*HTTP)

// WithTimeout bounds calls whose context carries no deadline
func WithTimeout(d time.Duration) Option {
	return func(h *HTTP) { h.timeout = d }
}

// WithDial replaces the dialer, e.g. with an in-memory listener in tests
func WithDial(dial fasthttp.DialFunc) Option {
	return func(h *HTTP) { h.client.Dial = dial }
}

// NewHTTP creates a client for baseURL, e.g. http://localhost:8080/api
func NewHTTP(baseURL string, opts ...Option) *HTTP {
	h := &HTTP{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: defaultTimeout,
		client: &fasthttp.Client{
			Name:                "degreefyd-client",
			MaxIdleConnDuration: time.Minute,
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// WithToken returns a copy of the client that sends token as a bearer
// credential. The receiver is not modified.
func (h *HTTP) WithToken(token string) *HTTP {
	cp := *h
	cp.token = token
	return &cp
}

func (h *HTTP) Login(ctx context.Context, email, password string) (*services.AuthResponse, error) {
	var out services.AuthResponse
	err := h.do(ctx, fasthttp.MethodPost, "/auth/login", services.LoginRequest{Email: email, Password: password}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (h *HTTP) Signup(ctx context.Context, req services.SignupRequest) (*services.AuthResponse, error) {
	var out services.AuthResponse
	if err := h.do(ctx, fasthttp.MethodPost, "/auth/signup", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (h *HTTP) ListColleges(ctx context.Context, params catalog.Params) (catalog.Page, error) {
	path := "/colleges"
	if q := params.Values().Encode(); q != "" {
		path += "?" + q
	}
	var page catalog.Page
	err := h.do(ctx, fasthttp.MethodGet, path, nil, &page)
	return page, err
}

func (h *HTTP) GetCollegeBySlug(ctx context.Context, slug string) (*model.College, error) {
	return h.optionalCollege(ctx, "/colleges/"+url.PathEscape(slug))
}

func (h *HTTP) GetAllCollegesAdmin(ctx context.Context) ([]model.College, error) {
	var colleges []model.College
	err := h.do(ctx, fasthttp.MethodGet, "/colleges/admin/all", nil, &colleges)
	return colleges, err
}

func (h *HTTP) GetCollegeByID(ctx context.Context, id string) (*model.College, error) {
	return h.optionalCollege(ctx, "/colleges/admin/"+url.PathEscape(id))
}

func (h *HTTP) CreateCollege(ctx context.Context, college model.College) (*model.College, error) {
	var out model.College
	if err := h.do(ctx, fasthttp.MethodPost, "/colleges", college, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (h *HTTP) UpdateCollege(ctx context.Context, id string, fields map[string]interface{}) (*model.College, error) {
	var out model.College
	if err := h.do(ctx, fasthttp.MethodPut, "/colleges/"+url.PathEscape(id), fields, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (h *HTTP) DeleteCollege(ctx context.Context, id string) error {
	return h.do(ctx, fasthttp.MethodDelete, "/colleges/"+url.PathEscape(id), nil, nil)
}

func (h *HTTP) ToggleCollegeStatus(ctx context.Context, id string) (*model.College, error) {
	var out model.College
	if err := h.do(ctx, fasthttp.MethodPatch, "/colleges/"+url.PathEscape(id)+"/status", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (h *HTTP) GetDashboardStats(ctx context.Context) (model.DashboardStats, error) {
	var stats model.DashboardStats
	err := h.do(ctx, fasthttp.MethodGet, "/dashboard/stats", nil, &stats)
	return stats, err
}

func (h *HTTP) optionalCollege(ctx context.Context, path string) (*model.College, error) {
	var out model.College
	err := h.do(ctx, fasthttp.MethodGet, path, nil, &out)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (h *HTTP) do(ctx context.Context, method, path string, body, out interface{}) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(h.baseURL + path)
	req.Header.SetMethod(method)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")
	if h.token != "" {
		req.Header.Set(fasthttp.HeaderAuthorization, "Bearer "+h.token)
	}
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		req.Header.SetContentType("application/json")
		req.SetBodyRaw(raw)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = h.client.DoDeadline(req, resp, deadline)
	} else {
		err = h.client.DoTimeout(req, resp, h.timeout)
	}
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	if status := resp.StatusCode(); status >= fasthttp.StatusBadRequest {
		return decodeError(status, resp.Body())
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(status int, body []byte) error {
	apiErr := &APIError{Status: status, Message: fasthttp.StatusMessage(status)}

	var envelope response.Response
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil {
		apiErr.Code = envelope.Error.Code
		apiErr.Message = envelope.Error.Message
		if envelope.Error.Details != "" {
			apiErr.Message += ": " + envelope.Error.Details
		}
	}
	return apiErr
}
