package repo

import (
	"context"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

type ProductFilter struct {
	Category        string
	BrandID         uint
	IncludeInactive bool
}

func (f ProductFilter) apply(q *gorm.DB) *gorm.DB {
	if !f.IncludeInactive {
		q = q.Where("products.is_active = ?", true)
	}
	if f.Category != "" {
		q = q.Where("products.category = ?", f.Category)
	}
	if f.BrandID != 0 {
		q = q.Where("products.brand_id = ?", f.BrandID)
	}
	return q
}

func (r *GormRepo) ListProducts(ctx context.Context, f ProductFilter, offset, limit int) (int64, []models.Product, error) {
	var (
		total int64
		items []models.Product
	)
	if err := f.apply(r.DB.WithContext(ctx).Model(&models.Product{})).Count(&total).Error; err != nil {
		return 0, nil, err
	}
	if err := f.apply(r.DB.WithContext(ctx).Preload("Brand")).
		Order("products.created_at DESC").Order("products.id DESC").
		Offset(offset).Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func byInsertion(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }

// GetProductDetail looks a product up by numeric id or by slug.
func (r *GormRepo) GetProductDetail(ctx context.Context, idOrSlug string, includeInactive bool) (*models.Product, error) {
	q := r.DB.WithContext(ctx).
		Preload("Brand").
		Preload("Variants", byInsertion).
		Preload("Images", byInsertion).
		Preload("Options", byInsertion).
		Preload("Options.Values", byInsertion)
	if id, err := strconv.ParseUint(idOrSlug, 10, 64); err == nil {
		q = q.Where("id = ?", id)
	} else {
		q = q.Where("slug = ?", strings.ToLower(idOrSlug))
	}
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}

	var p models.Product
	if err := q.First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *GormRepo) GetProductByID(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := r.DB.WithContext(ctx).Preload("Brand").First(&p, id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// ProductsByIDs keeps the order of ids and silently drops unknown ones.
func (r *GormRepo) ProductsByIDs(ctx context.Context, ids []uint) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []models.Product
	if err := r.DB.WithContext(ctx).Preload("Brand").
		Where("id IN ? AND is_active = ?", ids, true).
		Find(&found).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	out := make([]models.Product, 0, len(found))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *GormRepo) ListVariantsByProduct(ctx context.Context, productID uint) ([]models.Variant, error) {
	if _, err := r.GetProductByID(ctx, productID); err != nil {
		return nil, err
	}
	var vs []models.Variant
	err := r.DB.WithContext(ctx).Where("product_id = ?", productID).Order("id ASC").Find(&vs).Error
	return vs, err
}

func (r *GormRepo) GetVariant(ctx context.Context, id uint) (*models.Variant, error) {
	var v models.Variant
	if err := r.DB.WithContext(ctx).First(&v, id).Error; err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

func (r *GormRepo) ListBrands(ctx context.Context, activeOnly bool) ([]models.Brand, error) {
	q := r.DB.WithContext(ctx).Order("name ASC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var out []models.Brand
	return out, q.Find(&out).Error
}

func (r *GormRepo) ListCategories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	err := r.DB.WithContext(ctx).Preload("Aliases", func(db *gorm.DB) *gorm.DB {
		return db.Order("alias ASC")
	}).Order("name ASC").Find(&out).Error
	return out, err
}

// ResolveCategory is an exact lookup on the canonical name, then on aliases.
func (r *GormRepo) ResolveCategory(ctx context.Context, name string) (*models.Category, error) {
	var c models.Category
	err := r.DB.WithContext(ctx).Where("name = ?", name).First(&c).Error
	if err == nil {
		return &c, nil
	}
	if translate(err) != ErrNotFound {
		return nil, err
	}

	err = r.DB.WithContext(ctx).
		Joins("JOIN category_aliases ON category_aliases.category_id = categories.id").
		Where("category_aliases.alias = ?", name).
		First(&c).Error
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *GormRepo) NewIn(ctx context.Context, since time.Time, limit int) ([]models.Product, error) {
	var out []models.Product
	err := r.DB.WithContext(ctx).Preload("Brand").
		Where("is_active = ? AND created_at >= ?", true, since).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

type ProductSales struct {
	Product   models.Product
	TotalSold int64
}

// BestSellers ranks active products by the quantity ever ordered.
func (r *GormRepo) BestSellers(ctx context.Context, limit int) ([]ProductSales, error) {
	var rows []struct {
		ProductID uint
		TotalSold int64
	}
	err := r.DB.WithContext(ctx).Table("products").
		Select("products.id AS product_id, COALESCE(SUM(order_items.quantity), 0) AS total_sold").
		Joins("LEFT JOIN product_variants ON product_variants.product_id = products.id").
		Joins("LEFT JOIN order_items ON order_items.variant_id = product_variants.id").
		Where("products.is_active = ?", true).
		Group("products.id").
		Order("total_sold DESC").Order("products.id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	ids := make([]uint, len(rows))
	for i, row := range rows {
		ids[i] = row.ProductID
	}
	products, err := r.ProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	sold := make(map[uint]int64, len(rows))
	for _, row := range rows {
		sold[row.ProductID] = row.TotalSold
	}
	out := make([]ProductSales, len(products))
	for i, p := range products {
		out[i] = ProductSales{Product: p, TotalSold: sold[p.ID]}
	}
	return out, nil
}

// SearchProducts is the SQL fallback used when no search index is configured.
func (r *GormRepo) SearchProducts(ctx context.Context, query string, offset, limit int) (int64, []models.Product, error) {
	like := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	scope := func(db *gorm.DB) *gorm.DB {
		return db.Where("is_active = ?", true).
			Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	var (
		total int64
		items []models.Product
	)
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).Scopes(scope).Count(&total).Error; err != nil {
		return 0, nil, err
	}
	if err := r.DB.WithContext(ctx).Preload("Brand").Scopes(scope).
		Order("id ASC").Offset(offset).Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}
