// Package client is the Go counterpart of the web frontend's API layer. HTTP
// talks to a running server, Mock serves the same calls in process from the
// embedded sample catalog.
package client

import (
	"context"
	"fmt"

	"github.com/sahilchouksey/degreefyd-api/database"
	"github.com/sahilchouksey/degreefyd-api/model"
	"github.com/sahilchouksey/degreefyd-api/services"
	"github.com/sahilchouksey/degreefyd-api/services/catalog"
)

// API is the catalog as seen by a frontend. Lookups that find nothing
// return a nil college and a nil error.
type API interface {
	Login(ctx context.Context, email, password string) (*services.AuthResponse, error)
	Signup(ctx context.Context, req services.SignupRequest) (*services.AuthResponse, error)

	ListColleges(ctx context.Context, params catalog.Params) (catalog.Page, error)
	GetCollegeBySlug(ctx context.Context, slug string) (*model.College, error)

	GetAllCollegesAdmin(ctx context.Context) ([]model.College, error)
	GetCollegeByID(ctx context.Context, id string) (*model.College, error)
	CreateCollege(ctx context.Context, college model.College) (*model.College, error)
	UpdateCollege(ctx context.Context, id string, fields map[string]interface{}) (*model.College, error)
	DeleteCollege(ctx context.Context, id string) error
	ToggleCollegeStatus(ctx context.Context, id string) (*model.College, error)

	GetDashboardStats(ctx context.Context) (model.DashboardStats, error)
}

var (
	_ API = (*HTTP)(nil)
	_ API = (*Mock)(nil)
)

// APIError is a non-2xx response. It unwraps to the store sentinel the
// status stands for so callers can use errors.Is with either client.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s: %s", e.Status, e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	switch {
	case e.Status == 404:
		return database.ErrNotFound
	case e.Code == "DUPLICATE_SLUG":
		return database.ErrDuplicateSlug
	}
	return nil
}
