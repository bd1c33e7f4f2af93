package services

import (
	"context"

	"storefront/internal/core/domain"
	"storefront/internal/pkg/pagination"
)

// Note: SessionService implementation is in session_service.go
// Note: UserService implementation is in user_service.go

// Authenticator defines the session operations exposed over HTTP
type Authenticator interface {
	Login(ctx context.Context, input *LoginInput, meta domain.RequestMeta) (*domain.AuthResult, error)
	Register(ctx context.Context, input *RegisterInput, meta domain.RequestMeta) (*domain.AuthResult, error)
	RefreshToken(ctx context.Context, presented string, meta domain.RequestMeta) (*domain.AuthResult, error)
	RevokeToken(ctx context.Context, presented string, meta domain.RequestMeta) error
	RevokeAllForUser(ctx context.Context, userID uint, meta domain.RequestMeta) (int64, error)
	ChangePassword(ctx context.Context, userID uint, input *ChangePasswordInput) error
	GetCurrentUser(ctx context.Context, userID uint) (*domain.UserProfile, error)
	ListSessions(ctx context.Context, userID uint) ([]domain.SessionInfo, error)
}

// TokenValidator resolves a bearer access token to the caller's identity
type TokenValidator interface {
	ValidateAccessToken(token string) (*domain.Identity, error)
}

// UserAdministrator defines user administration operations
type UserAdministrator interface {
	ListUsers(ctx context.Context, params *pagination.Params) (*pagination.Page[*domain.UserProfile], error)
	GetUser(ctx context.Context, id uint) (*domain.UserProfile, error)
	SetActive(ctx context.Context, actorID, id uint, active bool) (*domain.UserProfile, error)
	SetRole(ctx context.Context, actorID, id uint, roleName string) (*domain.UserProfile, error)
}

var (
	_ Authenticator     = (*SessionService)(nil)
	_ TokenValidator    = (*SessionService)(nil)
	_ UserAdministrator = (*UserService)(nil)
)
