package client

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/sahilchouksey/degreefyd-api/database"
	"github.com/sahilchouksey/degreefyd-api/fixtures"
	"github.com/sahilchouksey/degreefyd-api/model"
	"github.com/sahilchouksey/degreefyd-api/services"
	"github.com/sahilchouksey/degreefyd-api/services/catalog"
	"github.com/sahilchouksey/degreefyd-api/utils/auth"
)

// Mock serves the API in process over a memory store seeded with the
// sample catalog. It runs the same services as the server, so listings
// match what HTTP returns for the same data. Calls are not authenticated.
type Mock struct {
	colleges *services.CollegeService
	auth     *services.AuthService
}

// NewMock creates a mock client with its own copy of the sample catalog
func NewMock(ctx context.Context) (*Mock, error) {
	store := database.NewMemoryStore()
	colleges, err := fixtures.Colleges()
	if err != nil {
		return nil, err
	}
	if _, err := database.NewSeeder(store).SeedColleges(ctx, colleges); err != nil {
		return nil, err
	}

	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		Secret:        uuid.NewString(),
		Expiry:        time.Hour,
		RefreshExpiry: 24 * time.Hour,
		Issuer:        "degreefyd-mock",
	})

	return &Mock{
		colleges: services.NewCollegeService(store.Colleges(), nil, nil),
		auth:     services.NewAuthService(store.Users(), jwtManager, auth.NewMemoryRevoker(), time.Hour, true),
	}, nil
}

func (m *Mock) Login(ctx context.Context, email, password string) (*services.AuthResponse, error) {
	return m.auth.Login(ctx, services.LoginRequest{Email: email, Password: password})
}

func (m *Mock) Signup(ctx context.Context, req services.SignupRequest) (*services.AuthResponse, error) {
	return m.auth.Signup(ctx, req)
}

func (m *Mock) ListColleges(ctx context.Context, params catalog.Params) (catalog.Page, error) {
	return m.colleges.List(ctx, params)
}

func (m *Mock) GetCollegeBySlug(ctx context.Context, slug string) (*model.College, error) {
	return optional(m.colleges.GetBySlug(ctx, slug))
}

func (m *Mock) GetAllCollegesAdmin(ctx context.Context) ([]model.College, error) {
	return m.colleges.ListAll(ctx)
}

func (m *Mock) GetCollegeByID(ctx context.Context, id string) (*model.College, error) {
	return optional(m.colleges.GetByID(ctx, id))
}

func (m *Mock) CreateCollege(ctx context.Context, college model.College) (*model.College, error) {
	return m.colleges.Create(ctx, college)
}

func (m *Mock) UpdateCollege(ctx context.Context, id string, fields map[string]interface{}) (*model.College, error) {
	body, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	return m.colleges.Update(ctx, id, body)
}

func (m *Mock) DeleteCollege(ctx context.Context, id string) error {
	return m.colleges.Delete(ctx, id)
}

func (m *Mock) ToggleCollegeStatus(ctx context.Context, id string) (*model.College, error) {
	return m.colleges.ToggleStatus(ctx, id)
}

func (m *Mock) GetDashboardStats(ctx context.Context) (model.DashboardStats, error) {
	return m.colleges.Stats(ctx)
}

func optional(college *model.College, err error) (*model.College, error) {
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	return college, err
}
