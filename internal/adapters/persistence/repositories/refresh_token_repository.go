package repositories

import (
	"context"
	"time"

	"storefront/internal/adapters/persistence/models"
	"storefront/internal/core/domain"

	"gorm.io/gorm"
)

// refreshTokenRepository implements RefreshTokenRepository interface
type refreshTokenRepository struct {
	db *gorm.DB
}

// NewRefreshTokenRepository creates a new refresh token repository
func NewRefreshTokenRepository(db *gorm.DB) RefreshTokenRepository {
	return &refreshTokenRepository{db: db}
}

// Create creates a new refresh token
func (r *refreshTokenRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

// GetByTokenHash gets a refresh token by its hash, whatever its state
func (r *refreshTokenRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	var token models.RefreshToken
	err := r.db.WithContext(ctx).
		Where("token_hash = ?", tokenHash).
		First(&token).Error
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// ListActiveByUserID lists a user's usable tokens, newest first
func (r *refreshTokenRepository) ListActiveByUserID(ctx context.Context, userID uint, now time.Time) ([]*models.RefreshToken, error) {
	var tokens []*models.RefreshToken
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("revoked_at IS NULL").
		Where("expires_at > ?", now).
		Order("issued_at DESC").
		Find(&tokens).Error
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

// Revoke marks a token revoked unless it already is.
// It reports whether this call changed the row.
func (r *refreshTokenRepository) Revoke(ctx context.Context, id uint, at time.Time, reason, ip string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.RefreshToken{}).
		Where("id = ?", id).
		Where("revoked_at IS NULL").
		Updates(map[string]interface{}{
			"revoked_at":     at,
			"reason_revoked": reason,
			"revoked_by_ip":  ip,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// Rotate revokes current and inserts successor in one transaction.
// The update is guarded on revoked_at IS NULL, so of two callers racing on the
// same row only one sees RowsAffected == 1; the other gets ErrRotationConflict.
func (r *refreshTokenRepository) Rotate(ctx context.Context, current, successor *models.RefreshToken, at time.Time, ip string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.RefreshToken{}).
			Where("id = ?", current.ID).
			Where("revoked_at IS NULL").
			Updates(map[string]interface{}{
				"revoked_at":             at,
				"reason_revoked":         domain.ReasonReplaced,
				"replaced_by_token_hash": successor.TokenHash,
				"revoked_by_ip":          ip,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected != 1 {
			return ErrRotationConflict
		}

		return tx.Create(successor).Error
	})
}

// RevokeAllByUserID revokes all refresh tokens for a user
func (r *refreshTokenRepository) RevokeAllByUserID(ctx context.Context, userID uint, at time.Time, reason, ip string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.RefreshToken{}).
		Where("user_id = ?", userID).
		Where("revoked_at IS NULL").
		Updates(map[string]interface{}{
			"revoked_at":     at,
			"reason_revoked": reason,
			"revoked_by_ip":  ip,
		})
	return result.RowsAffected, result.Error
}

// CountByState counts ledger rows by derived state
func (r *refreshTokenRepository) CountByState(ctx context.Context, now time.Time) (*domain.LedgerStats, error) {
	var stats domain.LedgerStats

	err := r.db.WithContext(ctx).
		Model(&models.RefreshToken{}).
		Where("revoked_at IS NULL").
		Where("expires_at > ?", now).
		Count(&stats.Active).Error
	if err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).
		Model(&models.RefreshToken{}).
		Where("revoked_at IS NULL").
		Where("expires_at <= ?", now).
		Count(&stats.Expired).Error
	if err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).
		Model(&models.RefreshToken{}).
		Where("revoked_at IS NOT NULL").
		Count(&stats.Revoked).Error
	if err != nil {
		return nil, err
	}

	return &stats, nil
}
