package repositories

import (
	"context"
	"errors"
	"time"

	"storefront/internal/adapters/persistence/models"
	"storefront/internal/core/domain"
)

// ErrRotationConflict is returned when the token being rotated was already revoked
var ErrRotationConflict = errors.New("refresh token was revoked concurrently")

// UserRepository defines user repository interface
type UserRepository interface {
	CreateWithRole(ctx context.Context, user *models.User, roleName string) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdatePasswordHash(ctx context.Context, id uint, hash string) error
	SetActive(ctx context.Context, id uint, active bool) error
	List(ctx context.Context, offset, limit int) ([]*models.User, int64, error)
}

// RoleRepository defines role repository interface
type RoleRepository interface {
	EnsureRoles(ctx context.Context, names []string) error
	RolesForUser(ctx context.Context, userID uint) ([]string, error)
	ReplaceForUser(ctx context.Context, userID uint, names []string) error
}

// RefreshTokenRepository defines the refresh token ledger
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	ListActiveByUserID(ctx context.Context, userID uint, now time.Time) ([]*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint, at time.Time, reason, ip string) (bool, error)
	Rotate(ctx context.Context, current, successor *models.RefreshToken, at time.Time, ip string) error
	RevokeAllByUserID(ctx context.Context, userID uint, at time.Time, reason, ip string) (int64, error)
	CountByState(ctx context.Context, now time.Time) (*domain.LedgerStats, error)
}
