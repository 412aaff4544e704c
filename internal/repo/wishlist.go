package repo

import (
	"context"

	"github.com/Skotchmaster/storefront/internal/models"
)

func (r *GormRepo) ListWishlist(ctx context.Context, userID uint) ([]models.WishlistItem, error) {
	var out []models.WishlistItem
	err := r.DB.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("added_at DESC").Order("id DESC").
		Find(&out).Error
	return out, err
}

// AddToWishlist is idempotent; created reports whether a row was inserted.
func (r *GormRepo) AddToWishlist(ctx context.Context, userID, productID uint) (created bool, err error) {
	db := r.DB.WithContext(ctx)
	if err := productExists(db, productID); err != nil {
		return false, err
	}
	item := models.WishlistItem{UserID: userID, ProductID: productID}
	res := db.Where("user_id = ? AND product_id = ?", userID, productID).Omit("Product").FirstOrCreate(&item)
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *GormRepo) RemoveFromWishlist(ctx context.Context, userID, productID uint) error {
	res := r.DB.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.WishlistItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
