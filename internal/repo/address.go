package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

// lockUser serializes address-book mutations of one user.
func lockUser(tx *gorm.DB, userID uint) error {
	var u models.User
	return translate(forUpdate(tx).Select("id").First(&u, userID).Error)
}

func unsetDefaults(tx *gorm.DB, userID, exceptID uint) error {
	return tx.Model(&models.Address{}).
		Where("user_id = ? AND id <> ? AND is_default = ?", userID, exceptID, true).
		Update("is_default", false).Error
}

func (r *GormRepo) ListAddresses(ctx context.Context, userID uint) ([]models.Address, error) {
	var out []models.Address
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC").Order("id DESC").
		Find(&out).Error
	return out, err
}

func (r *GormRepo) GetAddress(ctx context.Context, userID, id uint) (*models.Address, error) {
	var a models.Address
	if err := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&a).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

// CreateAddress makes the first address of a user its default.
func (r *GormRepo) CreateAddress(ctx context.Context, a *models.Address) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockUser(tx, a.UserID); err != nil {
			return err
		}
		var n int64
		if err := tx.Model(&models.Address{}).Where("user_id = ?", a.UserID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			a.IsDefault = true
		}
		if a.IsDefault {
			if err := unsetDefaults(tx, a.UserID, 0); err != nil {
				return err
			}
		}
		return translate(tx.Create(a).Error)
	})
}

// UpdateAddress replaces the editable fields of an address owned by userID.
func (r *GormRepo) UpdateAddress(ctx context.Context, userID, id uint, in models.Address) (*models.Address, error) {
	var a models.Address
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockUser(tx, userID); err != nil {
			return err
		}
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&a).Error; err != nil {
			return translate(err)
		}
		if in.IsDefault && !a.IsDefault {
			if err := unsetDefaults(tx, userID, id); err != nil {
				return err
			}
		}
		a.FirstName, a.LastName, a.Phone = in.FirstName, in.LastName, in.Phone
		a.AddressLine1, a.AddressLine2 = in.AddressLine1, in.AddressLine2
		a.City, a.State, a.PostalCode, a.Country = in.City, in.State, in.PostalCode, in.Country
		a.IsDefault = a.IsDefault || in.IsDefault
		return tx.Save(&a).Error
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// DeleteAddress promotes the newest remaining address when the default goes.
func (r *GormRepo) DeleteAddress(ctx context.Context, userID, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockUser(tx, userID); err != nil {
			return err
		}
		var a models.Address
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&a).Error; err != nil {
			return translate(err)
		}
		if err := tx.Delete(&a).Error; err != nil {
			return err
		}
		if !a.IsDefault {
			return nil
		}
		var next models.Address
		if err := tx.Where("user_id = ?", userID).Order("id DESC").First(&next).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		return tx.Model(&next).Update("is_default", true).Error
	})
}

// SetDefaultAddress is idempotent: whatever the prior state, exactly one
// address of the user is default afterwards.
func (r *GormRepo) SetDefaultAddress(ctx context.Context, userID, id uint) (*models.Address, error) {
	var a models.Address
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockUser(tx, userID); err != nil {
			return err
		}
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&a).Error; err != nil {
			return translate(err)
		}
		if err := unsetDefaults(tx, userID, id); err != nil {
			return err
		}
		if err := tx.Model(&a).Update("is_default", true).Error; err != nil {
			return err
		}
		a.IsDefault = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}
