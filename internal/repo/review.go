package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

type ReviewStats struct {
	Average float64
	Count   int64
}

func productExists(db *gorm.DB, id uint) error {
	var n int64
	if err := db.Model(&models.Product{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepo) CreateReview(ctx context.Context, rv *models.Review) error {
	db := r.DB.WithContext(ctx)
	if err := productExists(db, rv.ProductID); err != nil {
		return err
	}
	return db.Omit("Product", "User").Create(rv).Error
}

func (r *GormRepo) GetReview(ctx context.Context, id uint) (*models.Review, error) {
	var rv models.Review
	if err := r.DB.WithContext(ctx).First(&rv, id).Error; err != nil {
		return nil, translate(err)
	}
	return &rv, nil
}

func (r *GormRepo) UpdateReview(ctx context.Context, id uint, rating *int, comment *string) (*models.Review, error) {
	updates := map[string]any{}
	if rating != nil {
		updates["rating"] = *rating
	}
	if comment != nil {
		updates["comment"] = *comment
	}
	db := r.DB.WithContext(ctx)
	if len(updates) > 0 {
		res := db.Model(&models.Review{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
	}
	return r.GetReview(ctx, id)
}

func (r *GormRepo) DeleteReview(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Review{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListReviewsForProduct returns reviews newest first with their authors and
// the aggregate rating.
func (r *GormRepo) ListReviewsForProduct(ctx context.Context, productID uint) ([]models.Review, ReviewStats, error) {
	db := r.DB.WithContext(ctx)
	var stats ReviewStats
	if err := productExists(db, productID); err != nil {
		return nil, stats, err
	}

	var out []models.Review
	if err := db.Preload("User").
		Where("product_id = ?", productID).
		Order("created_at DESC").Order("id DESC").
		Find(&out).Error; err != nil {
		return nil, stats, err
	}

	if err := db.Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Where("product_id = ?", productID).
		Scan(&stats).Error; err != nil {
		return nil, stats, err
	}
	return out, stats, nil
}
