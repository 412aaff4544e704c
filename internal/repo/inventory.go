package repo

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

type VariantStock struct {
	ID          uint            `json:"id"`
	ProductID   uint            `json:"product_id"`
	ProductName string          `json:"product_name"`
	SKU         string          `gorm:"column:sku" json:"sku"`
	Color       string          `json:"color"`
	Size        string          `json:"size"`
	Price       decimal.Decimal `json:"price"`
	Discount    decimal.Decimal `json:"discount"`
	Stock       int             `json:"stock"`
}

type StockChange struct {
	VariantID uint `json:"variant_id"`
	OldStock  int  `json:"old_stock"`
	NewStock  int  `json:"new_stock"`
	Change    int  `json:"change"`
}

func appendLog(tx *gorm.DB, variantID uint, change int, reason string) error {
	return tx.Create(&models.InventoryLog{
		VariantID:    variantID,
		ChangeAmount: change,
		Reason:       reason,
	}).Error
}

func variantStockQuery(db *gorm.DB) *gorm.DB {
	return db.Table("product_variants").
		Select(`product_variants.id, product_variants.product_id, product_variants.sku,
			product_variants.color, product_variants.size, product_variants.price,
			product_variants.discount, product_variants.stock, products.name AS product_name`).
		Joins("JOIN products ON products.id = product_variants.product_id")
}

// ListVariantsWithProduct filters by product when productID is non-zero and
// by stock <= *lowStock when lowStock is set.
func (r *GormRepo) ListVariantsWithProduct(ctx context.Context, productID uint, lowStock *int) ([]VariantStock, error) {
	q := variantStockQuery(r.DB.WithContext(ctx))
	if productID != 0 {
		q = q.Where("product_variants.product_id = ?", productID)
	}
	if lowStock != nil {
		q = q.Where("product_variants.stock <= ?", *lowStock).Order("product_variants.stock ASC")
	}
	var out []VariantStock
	err := q.Order("product_variants.id ASC").Scan(&out).Error
	return out, err
}

func (r *GormRepo) GetVariantWithProduct(ctx context.Context, id uint) (*VariantStock, error) {
	var out []VariantStock
	if err := variantStockQuery(r.DB.WithContext(ctx)).Where("product_variants.id = ?", id).Limit(1).Scan(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return &out[0], nil
}

// AdjustStock applies a signed change under a row lock and appends one log.
func (r *GormRepo) AdjustStock(ctx context.Context, variantID uint, change int, reason string) (StockChange, error) {
	res := StockChange{VariantID: variantID, Change: change}
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var v models.Variant
		if err := forUpdate(tx).First(&v, variantID).Error; err != nil {
			return translate(err)
		}
		res.OldStock = v.Stock
		res.NewStock = v.Stock + change
		if res.NewStock < 0 {
			return ErrNegativeStock
		}
		if err := tx.Model(&v).UpdateColumn("stock", res.NewStock).Error; err != nil {
			return err
		}
		return appendLog(tx, v.ID, change, reason)
	})
	if err != nil {
		return StockChange{}, err
	}
	return res, nil
}

// ListInventoryLogs returns logs newest first, optionally for one variant.
func (r *GormRepo) ListInventoryLogs(ctx context.Context, variantID uint, limit int) ([]models.InventoryLog, error) {
	q := r.DB.WithContext(ctx).Model(&models.InventoryLog{})
	if variantID != 0 {
		q = q.Where("variant_id = ?", variantID)
	}
	var out []models.InventoryLog
	err := q.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&out).Error
	return out, err
}
