package repo

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUserIfNotExists inserts u unless the email is taken.
func (r *GormRepo) CreateUserIfNotExists(ctx context.Context, u *models.User) error {
	u.Email = normalizeEmail(u.Email)
	tx := r.DB.WithContext(ctx).Where("email = ?", u.Email).FirstOrCreate(u)
	if tx.Error != nil {
		return translate(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return ErrDuplicate
	}
	return nil
}

func (r *GormRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *GormRepo) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

type UserPatch struct {
	Name  *string
	Email *string
}

func (r *GormRepo) UpdateUser(ctx context.Context, id uint, p UserPatch) (*models.User, error) {
	var user models.User
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&user, id).Error; err != nil {
			return translate(err)
		}
		updates := map[string]any{}
		if p.Name != nil {
			updates["name"] = strings.TrimSpace(*p.Name)
		}
		if p.Email != nil {
			email := normalizeEmail(*p.Email)
			var taken int64
			if err := tx.Model(&models.User{}).Where("email = ? AND id <> ?", email, id).Count(&taken).Error; err != nil {
				return err
			}
			if taken > 0 {
				return ErrDuplicate
			}
			updates["email"] = email
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&user).Updates(updates).Error; err != nil {
			return translate(err)
		}
		return tx.First(&user, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdatePassword stores the new hash and revokes every live refresh token of
// the user in one transaction.
func (r *GormRepo) UpdatePassword(ctx context.Context, id uint, hash string, now time.Time) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).Where("id = ?", id).Update("password_hash", hash)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return revokeAllForUser(tx, id, now)
	})
}

func (r *GormRepo) ListUsers(ctx context.Context, offset, limit int) (int64, []models.User, error) {
	var (
		total int64
		users []models.User
	)
	q := r.DB.WithContext(ctx).Model(&models.User{})
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}
	if err := q.Order("id ASC").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return 0, nil, err
	}
	return total, users, nil
}

func (r *GormRepo) SetUserActive(ctx context.Context, id uint, active bool, now time.Time) (*models.User, error) {
	var user models.User
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&user, id).Error; err != nil {
			return translate(err)
		}
		if err := tx.Model(&user).Update("is_active", active).Error; err != nil {
			return err
		}
		if !active {
			return revokeAllForUser(tx, id, now)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	user.IsActive = active
	return &user, nil
}
