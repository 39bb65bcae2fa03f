package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sahilchouksey/degreefyd-api/database"
	"github.com/sahilchouksey/degreefyd-api/model"
	"github.com/sahilchouksey/degreefyd-api/utils/auth"
	"github.com/sahilchouksey/degreefyd-api/utils/validation"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrAdminSignupClosed  = errors.New("admin signup is disabled")
	ErrInvalidRefresh     = errors.New("invalid refresh token")
)

// SignupRequest is the body of POST /auth/signup
type SignupRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=120"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"omitempty,oneof=student admin"`
}

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by signup, login and refresh
type AuthResponse struct {
	Token        string      `json:"token"`
	RefreshToken string      `json:"refreshToken"`
	ExpiresAt    time.Time   `json:"expiresAt"`
	User         *model.User `json:"user"`
}

// AuthService issues and revokes tokens
type AuthService struct {
	users            database.UserStore
	jwt              *auth.JWTManager
	revoker          auth.Revoker
	validator        *validation.Validator
	allowAdminSignup bool
	accessTTL        time.Duration
	now              func() time.Time
}

// NewAuthService creates an auth service
func NewAuthService(users database.UserStore, jwt *auth.JWTManager, revoker auth.Revoker, accessTTL time.Duration, allowAdminSignup bool) *AuthService {
	return &AuthService{
		users:            users,
		jwt:              jwt,
		revoker:          revoker,
		validator:        validation.NewValidator(),
		allowAdminSignup: allowAdminSignup,
		accessTTL:        accessTTL,
		now:              time.Now,
	}
}

// Signup registers an account and signs it in
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error) {
	req.Name = validation.SanitizeString(req.Name)
	req.Email = strings.ToLower(validation.SanitizeString(req.Email))
	if req.Role == "" {
		req.Role = model.RoleStudent
	}
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, &ValidationError{Err: err}
	}
	if ok, problems := validation.ValidatePassword(req.Password); !ok {
		return nil, &ValidationError{Err: errors.New(strings.Join(problems, "; "))}
	}
	if req.Role == model.RoleAdmin && !s.allowAdminSignup {
		return nil, ErrAdminSignupClosed
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	user := &model.User{
		Email:        req.Email,
		PasswordHash: hash,
		Name:         req.Name,
		Role:         req.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	log.Info().Str("user_id", user.ID).Str("role", user.Role).Msg("user signed up")
	return s.issue(user)
}

// Login checks credentials and issues a token pair
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	req.Email = strings.ToLower(validation.SanitizeString(req.Email))
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, &ValidationError{Err: err}
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := auth.VerifyPassword(user.PasswordHash, req.Password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return s.issue(user)
}

// Refresh exchanges a refresh token for a new pair and revokes the old one
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := s.jwt.ValidateToken(refreshToken)
	if err != nil || claims.TokenType != auth.TokenTypeRefresh {
		return nil, ErrInvalidRefresh
	}

	revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrInvalidRefresh
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrInvalidRefresh
		}
		return nil, err
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, ErrInvalidRefresh
	}

	if err := s.revoker.Revoke(ctx, claims.ID, claims.ExpiresAtTime()); err != nil {
		return nil, err
	}
	return s.issue(user)
}

// Logout revokes the access token and, when given, the refresh token
func (s *AuthService) Logout(ctx context.Context, access *auth.Claims, refreshToken string) error {
	if err := s.revoker.Revoke(ctx, access.ID, access.ExpiresAtTime()); err != nil {
		return err
	}
	if refreshToken == "" {
		return nil
	}
	claims, err := s.jwt.ValidateToken(refreshToken)
	if err != nil || claims.UserID != access.UserID {
		return nil
	}
	return s.revoker.Revoke(ctx, claims.ID, claims.ExpiresAtTime())
}

// LogoutAll invalidates every token of the user by bumping its version
func (s *AuthService) LogoutAll(ctx context.Context, userID string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	user.TokenVersion++
	user.UpdatedAt = s.now().UTC()
	return s.users.Update(ctx, user)
}

func (s *AuthService) issue(user *model.User) (*AuthResponse, error) {
	access, _, err := s.jwt.GenerateAccessToken(user.ID, user.Email, user.Role, user.TokenVersion)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	refresh, _, err := s.jwt.GenerateRefreshToken(user.ID, user.Email, user.Role, user.TokenVersion)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}
	return &AuthResponse{
		Token:        access,
		RefreshToken: refresh,
		ExpiresAt:    s.now().Add(s.accessTTL).UTC(),
		User:         user,
	}, nil
}
