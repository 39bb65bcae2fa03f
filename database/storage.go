package database

import (
	"context"
	"errors"

	"github.com/sahilchouksey/degreefyd-api/model"
	"github.com/sahilchouksey/degreefyd-api/services/catalog"
)

var (
	// ErrNotFound is returned when no record matches an id, slug or email
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateSlug is returned when a write would reuse another college's slug
	ErrDuplicateSlug = errors.New("college with this slug already exists")
	// ErrDuplicateEmail is returned when a user with the email already exists
	ErrDuplicateEmail = errors.New("user with this email already exists")
)

// Storage defines the interface that all database implementations must satisfy
type Storage interface {
	// Lifecycle methods
	Init(ctx context.Context) error
	Close() error
	HealthCheck(ctx context.Context) error

	Colleges() CollegeStore
	Users() UserStore
}

// CollegeStore persists colleges. Listing goes through the embedded
// catalog.Corpus so every backend shares one query pipeline.
type CollegeStore interface {
	catalog.Corpus

	GetByID(ctx context.Context, id string) (*model.College, error)
	Create(ctx context.Context, college *model.College) error
	// Update replaces the stored document with the same id
	Update(ctx context.Context, college *model.College) error
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (model.DashboardStats, error)
}

// UserStore persists accounts
type UserStore interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	CountByRole(ctx context.Context, role string) (int64, error)
}
