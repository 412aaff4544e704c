package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

func (r *GormRepo) CreateRefreshToken(ctx context.Context, t *models.RefreshToken) error {
	return translate(r.DB.WithContext(ctx).Create(t).Error)
}

func (r *GormRepo) FindRefreshByJTI(ctx context.Context, jti string) (*models.RefreshToken, error) {
	var token models.RefreshToken
	if err := r.DB.WithContext(ctx).Where("jti = ?", jti).First(&token).Error; err != nil {
		return nil, translate(err)
	}
	return &token, nil
}

// RotateRefreshToken revokes the presented link and persists its successor.
// The old row is locked so two concurrent refreshes with the same token
// cannot both succeed.
func (r *GormRepo) RotateRefreshToken(ctx context.Context, oldJTI, oldHash string, next *models.RefreshToken, now time.Time) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var old models.RefreshToken
		if err := forUpdate(tx).Where("jti = ? AND token_hash = ?", oldJTI, oldHash).First(&old).Error; err != nil {
			return translate(err)
		}
		if !old.Active(now) {
			return ErrTokenRevoked
		}

		if err := tx.Model(&old).Updates(map[string]any{
			"revoked_at":  now,
			"replaced_by": next.JTI,
		}).Error; err != nil {
			return err
		}
		return translate(tx.Create(next).Error)
	})
}

func (r *GormRepo) RevokeRefreshToken(ctx context.Context, tokenHash string, now time.Time) error {
	return r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token_hash = ? AND revoked_at IS NULL", tokenHash).
		Update("revoked_at", now).Error
}

func revokeAllForUser(tx *gorm.DB, userID uint, now time.Time) error {
	return tx.Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", now).Error
}
