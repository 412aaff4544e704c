package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

// CreatePromotion links the promotion to existing products only; an unknown
// product id fails the whole insert.
func (r *GormRepo) CreatePromotion(ctx context.Context, p *models.Promotion, productIDs []uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(productIDs) > 0 {
			var products []models.Product
			if err := tx.Select("id").Where("id IN ?", productIDs).Find(&products).Error; err != nil {
				return err
			}
			if len(products) != len(uniqueIDs(productIDs)) {
				return ErrNotFound
			}
			p.Products = products
		}
		return tx.Omit("Products.*").Create(p).Error
	})
}

func (r *GormRepo) ListPromotions(ctx context.Context) ([]models.Promotion, error) {
	var out []models.Promotion
	err := r.DB.WithContext(ctx).
		Preload("Products", func(db *gorm.DB) *gorm.DB { return db.Select("id") }).
		Order("id DESC").
		Find(&out).Error
	return out, err
}

func (r *GormRepo) ActivePromotions(ctx context.Context, now time.Time) ([]models.Promotion, error) {
	var out []models.Promotion
	err := r.DB.WithContext(ctx).
		Preload("Products", func(db *gorm.DB) *gorm.DB { return db.Select("id") }).
		Where("is_active = ? AND starts_at <= ? AND ends_at >= ?", true, now, now).
		Order("ends_at ASC").
		Find(&out).Error
	return out, err
}

func (r *GormRepo) DeletePromotion(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Promotion
		if err := tx.First(&p, id).Error; err != nil {
			return translate(err)
		}
		if err := tx.Exec("DELETE FROM promotion_products WHERE promotion_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&p).Error
	})
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
