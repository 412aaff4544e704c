package repo

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

// CartLine is a cart row joined with its variant and product.
type CartLine struct {
	VariantID   uint
	ProductID   uint
	ProductName string
	Slug        string
	BrandName   string
	Color       string
	Size        string
	Price       decimal.Decimal
	Discount    decimal.Decimal
	Stock       int
	Quantity    int
	MainImage   string
	Image       string `gorm:"-"`
}

type CartEntry struct {
	VariantID uint
	Quantity  int
}

type CartResult struct {
	Quantity     int
	StockLimited bool
	Created      bool
}

func (r *GormRepo) GetCartLines(ctx context.Context, userID uint) ([]CartLine, error) {
	var lines []CartLine
	err := r.DB.WithContext(ctx).
		Table("cart_items").
		Select(`cart_items.variant_id, cart_items.quantity,
			product_variants.product_id, product_variants.color, product_variants.size,
			product_variants.price, product_variants.discount, product_variants.stock,
			products.name AS product_name, products.slug, products.main_image,
			COALESCE(brands.name, '') AS brand_name`).
		Joins("JOIN product_variants ON product_variants.id = cart_items.variant_id").
		Joins("JOIN products ON products.id = product_variants.product_id").
		Joins("LEFT JOIN brands ON brands.id = products.brand_id").
		Where("cart_items.user_id = ?", userID).
		Order("cart_items.id ASC").
		Scan(&lines).Error
	if err != nil || len(lines) == 0 {
		return lines, err
	}

	productIDs := make([]uint, 0, len(lines))
	for _, l := range lines {
		productIDs = append(productIDs, l.ProductID)
	}
	var images []models.ProductImage
	if err := r.DB.WithContext(ctx).Where("product_id IN ?", productIDs).Order("id ASC").Find(&images).Error; err != nil {
		return nil, err
	}
	type key struct {
		productID uint
		color     string
	}
	byColor := make(map[key]string, len(images))
	for _, img := range images {
		k := key{img.ProductID, img.Color}
		if _, ok := byColor[k]; !ok {
			byColor[k] = img.ImageURL
		}
	}
	for i := range lines {
		if url, ok := byColor[key{lines[i].ProductID, lines[i].Color}]; ok {
			lines[i].Image = url
		} else {
			lines[i].Image = lines[i].MainImage
		}
	}
	return lines, nil
}

// AddToCart clamps the requested quantity to stock, both for a fresh row and
// for the sum with an existing one.
func (r *GormRepo) AddToCart(ctx context.Context, userID, variantID uint, qty int) (CartResult, error) {
	var res CartResult
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var v models.Variant
		if err := forUpdate(tx).First(&v, variantID).Error; err != nil {
			return translate(err)
		}
		if v.Stock <= 0 {
			return ErrOutOfStock
		}

		var item models.CartItem
		err := forUpdate(tx).Where("user_id = ? AND variant_id = ?", userID, variantID).First(&item).Error
		switch translate(err) {
		case nil:
			want, err := addQuantity(item.Quantity, min(qty, v.Stock))
			if err != nil {
				return err
			}
			res.Quantity = min(want, v.Stock)
			res.StockLimited = qty > v.Stock || want > v.Stock
			return tx.Model(&item).Update("quantity", res.Quantity).Error
		case ErrNotFound:
			res.Quantity = min(qty, v.Stock)
			res.StockLimited = qty > v.Stock
			res.Created = true
			return tx.Create(&models.CartItem{UserID: userID, VariantID: variantID, Quantity: res.Quantity}).Error
		default:
			return err
		}
	})
	return res, err
}

func (r *GormRepo) UpdateCartItem(ctx context.Context, userID, variantID uint, qty int) (CartResult, error) {
	var res CartResult
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.CartItem
		if err := forUpdate(tx).Where("user_id = ? AND variant_id = ?", userID, variantID).First(&item).Error; err != nil {
			return translate(err)
		}
		var v models.Variant
		if err := tx.First(&v, variantID).Error; err != nil {
			return translate(err)
		}
		if v.Stock <= 0 {
			return ErrOutOfStock
		}
		res.Quantity = min(qty, v.Stock)
		res.StockLimited = qty > v.Stock
		return tx.Model(&item).Update("quantity", res.Quantity).Error
	})
	return res, err
}

func (r *GormRepo) RemoveFromCart(ctx context.Context, userID, variantID uint) error {
	res := r.DB.WithContext(ctx).Where("user_id = ? AND variant_id = ?", userID, variantID).Delete(&models.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepo) ClearCart(ctx context.Context, userID uint) error {
	return r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
}

// RemoveVariantsFromCart drops the given variants from a user's cart.
func (r *GormRepo) RemoveVariantsFromCart(ctx context.Context, userID uint, variantIDs []uint) error {
	if len(variantIDs) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).
		Where("user_id = ? AND variant_id IN ?", userID, variantIDs).
		Delete(&models.CartItem{}).Error
}

// MergeCart folds guest entries into the stored cart. Each line is summed
// with the existing row and clamped to live stock; unknown or sold out
// variants and non-positive quantities are skipped.
func (r *GormRepo) MergeCart(ctx context.Context, userID uint, entries []CartEntry) (merged, skipped int, err error) {
	combined := map[uint]int{}
	for _, e := range entries {
		if e.Quantity <= 0 || e.VariantID == 0 {
			skipped++
			continue
		}
		sum, err := addQuantity(combined[e.VariantID], e.Quantity)
		if err != nil {
			sum = models.MaxLineQuantity
		}
		combined[e.VariantID] = sum
	}
	ids := make([]uint, 0, len(combined))
	for id := range combined {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var txMerged, txSkipped int
	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txMerged, txSkipped = 0, 0
		for _, id := range ids {
			var v models.Variant
			if err := forUpdate(tx).First(&v, id).Error; err != nil {
				if translate(err) == ErrNotFound {
					txSkipped++
					continue
				}
				return err
			}
			if v.Stock <= 0 {
				txSkipped++
				continue
			}

			var item models.CartItem
			err := forUpdate(tx).Where("user_id = ? AND variant_id = ?", userID, id).First(&item).Error
			switch translate(err) {
			case nil:
				want, err := addQuantity(item.Quantity, min(combined[id], v.Stock))
				if err != nil {
					want = v.Stock
				}
				if err := tx.Model(&item).Update("quantity", min(want, v.Stock)).Error; err != nil {
					return err
				}
			case ErrNotFound:
				if err := tx.Create(&models.CartItem{UserID: userID, VariantID: id, Quantity: min(combined[id], v.Stock)}).Error; err != nil {
					return err
				}
			default:
				return err
			}
			txMerged++
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return txMerged, skipped + txSkipped, nil
}

// ChangeVariant moves a cart row onto another variant, keeping its quantity.
// An existing row for the target absorbs it. Stock is not consulted; the
// order transaction is where stock is enforced.
func (r *GormRepo) ChangeVariant(ctx context.Context, userID, oldVariantID, newVariantID uint) (CartResult, error) {
	var res CartResult
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var old models.CartItem
		if err := forUpdate(tx).Where("user_id = ? AND variant_id = ?", userID, oldVariantID).First(&old).Error; err != nil {
			return translate(err)
		}
		if oldVariantID == newVariantID {
			res.Quantity = old.Quantity
			return nil
		}

		var v models.Variant
		if err := forUpdate(tx).First(&v, newVariantID).Error; err != nil {
			return translate(err)
		}

		var target models.CartItem
		err := forUpdate(tx).Where("user_id = ? AND variant_id = ?", userID, newVariantID).First(&target).Error
		switch translate(err) {
		case nil:
			sum, err := addQuantity(target.Quantity, old.Quantity)
			if err != nil {
				return err
			}
			if err := tx.Delete(&old).Error; err != nil {
				return err
			}
			res.Quantity = sum
			return tx.Model(&target).Update("quantity", sum).Error
		case ErrNotFound:
			if err := tx.Delete(&old).Error; err != nil {
				return err
			}
			res.Quantity = old.Quantity
			res.Created = true
			return tx.Create(&models.CartItem{UserID: userID, VariantID: newVariantID, Quantity: old.Quantity}).Error
		default:
			return err
		}
	})
	return res, err
}
