package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sahilchouksey/degreefyd-api/model"
	"github.com/sahilchouksey/degreefyd-api/utils/auth"
)

// Seeder handles database seeding operations
type Seeder struct {
	store Storage
	now   func() time.Time
}

// NewSeeder creates a new seeder instance
func NewSeeder(store Storage) *Seeder {
	return &Seeder{store: store, now: time.Now}
}

// SeedAdminUser creates the bootstrap admin when no admin exists yet
func (s *Seeder) SeedAdminUser(ctx context.Context, email, password string) error {
	count, err := s.store.Users().CountByRole(ctx, model.RoleAdmin)
	if err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if count > 0 {
		log.Debug().Msg("admin user already exists, skipping")
		return nil
	}

	if email == "" || password == "" {
		log.Warn().Msg("ADMIN_EMAIL and ADMIN_PASSWORD not set, skipping admin user creation")
		return nil
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	admin := &model.User{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
		Name:         "System Administrator",
		Role:         model.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Users().Create(ctx, admin); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	log.Info().Str("email", admin.Email).Msg("created admin user")
	return nil
}

// SeedColleges inserts colleges whose slug is not taken yet. It returns the
// number inserted.
func (s *Seeder) SeedColleges(ctx context.Context, colleges []model.College) (int, error) {
	inserted := 0
	for i := range colleges {
		college := colleges[i].Clone()
		college.Normalize()
		if college.CreatedAt.IsZero() {
			college.CreatedAt = s.now().UTC().Truncate(time.Millisecond).Add(time.Duration(i) * time.Millisecond)
		}
		if college.UpdatedAt.IsZero() {
			college.UpdatedAt = college.CreatedAt
		}

		err := s.store.Colleges().Create(ctx, &college)
		switch {
		case errors.Is(err, ErrDuplicateSlug):
			continue
		case err != nil:
			return inserted, fmt.Errorf("seed college %q: %w", college.Slug, err)
		}
		inserted++
	}

	log.Info().Int("count", inserted).Msg("seeded colleges")
	return inserted, nil
}
