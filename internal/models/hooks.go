package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Variant writes keep Product.PriceMin/PriceMax in step within the same
// transaction. Stock-only updates go through UpdateColumn and skip these.

func (v *Variant) AfterCreate(tx *gorm.DB) error { return RecomputePriceRange(tx, v.ProductID) }
func (v *Variant) AfterUpdate(tx *gorm.DB) error { return RecomputePriceRange(tx, v.ProductID) }
func (v *Variant) AfterDelete(tx *gorm.DB) error { return RecomputePriceRange(tx, v.ProductID) }

func RecomputePriceRange(tx *gorm.DB, productID uint) error {
	if productID == 0 {
		return nil
	}
	db := tx.Session(&gorm.Session{NewDB: true})

	var r struct {
		MinPrice decimal.NullDecimal
		MaxPrice decimal.NullDecimal
	}
	if err := db.Model(&Variant{}).
		Select("MIN(price) AS min_price, MAX(price) AS max_price").
		Where("product_id = ?", productID).
		Scan(&r).Error; err != nil {
		return err
	}

	lo, hi := decimal.Zero, decimal.Zero
	if r.MinPrice.Valid {
		lo = r.MinPrice.Decimal
	}
	if r.MaxPrice.Valid {
		hi = r.MaxPrice.Decimal
	}
	return db.Model(&Product{}).Where("id = ?", productID).
		UpdateColumns(map[string]any{"price_min": lo, "price_max": hi}).Error
}

// AfterCreate makes the first image of a product its main image.
func (img *ProductImage) AfterCreate(tx *gorm.DB) error {
	if img.ProductID == 0 {
		return nil
	}
	return tx.Session(&gorm.Session{NewDB: true}).Model(&Product{}).
		Where("id = ? AND (main_image = '' OR main_image IS NULL)", img.ProductID).
		UpdateColumn("main_image", img.ImageURL).Error
}
