package repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/util"
)

const initialStockReason = "initial stock"

type NewVariant struct {
	SKU      string
	Price    decimal.Decimal
	Discount decimal.Decimal
	Stock    int
	Color    string
	Size     string
}

type NewImage struct {
	Color string
	URL   string
}

type NewOption struct {
	Name   string
	Values []string
}

type NewProduct struct {
	Name        string
	BrandName   string
	Category    string
	Description string
	Variants    []NewVariant
	Options     []NewOption
	Images      []NewImage
}

type ProductPatch struct {
	Name        *string
	BrandName   *string
	Category    *string
	Description *string
	MainImage   *string
	IsActive    *bool
}

type VariantPatch struct {
	SKU      *string
	Price    *decimal.Decimal
	Discount *decimal.Decimal
	Color    *string
	Size     *string
}

// CreateProduct writes a product with its brand, category, variants, options
// and images in one transaction and returns the new id.
func (r *GormRepo) CreateProduct(ctx context.Context, in NewProduct) (uint, error) {
	var id uint
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		brandID, err := findOrCreateBrand(tx, in.BrandName)
		if err != nil {
			return err
		}
		category, err := findOrCreateCategory(tx, in.Category)
		if err != nil {
			return err
		}
		slug, err := uniqueSlug(tx, util.Slugify(in.Name), 0)
		if err != nil {
			return err
		}

		p := models.Product{
			Name:        strings.TrimSpace(in.Name),
			Slug:        slug,
			BrandID:     brandID,
			Category:    category,
			Description: in.Description,
			IsActive:    true,
		}
		if err := tx.Omit("Brand", "Variants", "Images", "Options").Create(&p).Error; err != nil {
			return translate(err)
		}

		for _, nv := range in.Variants {
			if _, err := createVariant(tx, p.ID, nv); err != nil {
				return err
			}
		}
		for _, no := range in.Options {
			if err := createOption(tx, p.ID, no); err != nil {
				return err
			}
		}
		for _, ni := range in.Images {
			if err := createImage(tx, p.ID, ni.Color, ni.URL); err != nil {
				return err
			}
		}
		id = p.ID
		return nil
	})
	return id, err
}

func (r *GormRepo) UpdateProduct(ctx context.Context, id uint, patch ProductPatch) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Product
		if err := forUpdate(tx).First(&p, id).Error; err != nil {
			return translate(err)
		}

		updates := map[string]any{}
		if patch.Name != nil {
			name := strings.TrimSpace(*patch.Name)
			if name != p.Name {
				slug, err := uniqueSlug(tx, util.Slugify(name), p.ID)
				if err != nil {
					return err
				}
				updates["name"] = name
				updates["slug"] = slug
			}
		}
		if patch.BrandName != nil {
			brandID, err := findOrCreateBrand(tx, *patch.BrandName)
			if err != nil {
				return err
			}
			updates["brand_id"] = brandID
		}
		if patch.Category != nil {
			category, err := findOrCreateCategory(tx, *patch.Category)
			if err != nil {
				return err
			}
			updates["category"] = category
		}
		if patch.Description != nil {
			updates["description"] = *patch.Description
		}
		if patch.MainImage != nil {
			updates["main_image"] = *patch.MainImage
		}
		if patch.IsActive != nil {
			updates["is_active"] = *patch.IsActive
		}
		if len(updates) == 0 {
			return nil
		}
		return translate(tx.Model(&p).Updates(updates).Error)
	})
}

// DeleteProduct removes a product and everything it owns. Order snapshots
// and inventory logs are kept.
func (r *GormRepo) DeleteProduct(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Product
		if err := forUpdate(tx).First(&p, id).Error; err != nil {
			return translate(err)
		}

		var variantIDs []uint
		if err := tx.Model(&models.Variant{}).Where("product_id = ?", id).Pluck("id", &variantIDs).Error; err != nil {
			return err
		}
		if len(variantIDs) > 0 {
			if err := tx.Where("variant_id IN ?", variantIDs).Delete(&models.CartItem{}).Error; err != nil {
				return err
			}
		}

		var optionIDs []uint
		if err := tx.Model(&models.ProductOption{}).Where("product_id = ?", id).Pluck("id", &optionIDs).Error; err != nil {
			return err
		}
		if len(optionIDs) > 0 {
			if err := tx.Where("option_id IN ?", optionIDs).Delete(&models.ProductOptionValue{}).Error; err != nil {
				return err
			}
		}

		for _, m := range []any{&models.ProductOption{}, &models.ProductImage{}, &models.Variant{}, &models.Review{}, &models.WishlistItem{}} {
			if err := tx.Where("product_id = ?", id).Delete(m).Error; err != nil {
				return err
			}
		}
		if err := tx.Exec("DELETE FROM promotion_products WHERE product_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&p).Error
	})
}

func (r *GormRepo) AddVariant(ctx context.Context, productID uint, nv NewVariant) (*models.Variant, error) {
	var v *models.Variant
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Product
		if err := forUpdate(tx).Select("id").First(&p, productID).Error; err != nil {
			return translate(err)
		}
		var err error
		v, err = createVariant(tx, productID, nv)
		return err
	})
	return v, err
}

// UpdateVariant never touches stock; stock moves only through AdjustStock and orders.
func (r *GormRepo) UpdateVariant(ctx context.Context, id uint, patch VariantPatch) (*models.Variant, error) {
	var v models.Variant
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&v, id).Error; err != nil {
			return translate(err)
		}
		if patch.SKU != nil {
			sku := strings.TrimSpace(*patch.SKU)
			if sku != v.SKU {
				taken, err := skuTaken(tx, sku, v.ID)
				if err != nil {
					return err
				}
				if taken {
					return ErrDuplicate
				}
				v.SKU = sku
			}
		}
		if patch.Price != nil {
			v.Price = *patch.Price
		}
		if patch.Discount != nil {
			v.Discount = *patch.Discount
		}
		if patch.Color != nil {
			v.Color = *patch.Color
		}
		if patch.Size != nil {
			v.Size = *patch.Size
		}
		return translate(tx.Save(&v).Error)
	})
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *GormRepo) DeleteVariant(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var v models.Variant
		if err := forUpdate(tx).First(&v, id).Error; err != nil {
			return translate(err)
		}
		if err := tx.Where("variant_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&v).Error
	})
}

func (r *GormRepo) AddImages(ctx context.Context, productID uint, color string, urls []string) ([]models.ProductImage, error) {
	var out []models.ProductImage
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Product
		if err := forUpdate(tx).Select("id").First(&p, productID).Error; err != nil {
			return translate(err)
		}
		for _, u := range urls {
			if err := createImage(tx, productID, color, u); err != nil {
				return err
			}
		}
		return tx.Where("product_id = ?", productID).Order("id ASC").Find(&out).Error
	})
	return out, err
}

// DeleteImage falls back to the first remaining image when the main one goes.
func (r *GormRepo) DeleteImage(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var img models.ProductImage
		if err := tx.First(&img, id).Error; err != nil {
			return translate(err)
		}
		var p models.Product
		if err := forUpdate(tx).First(&p, img.ProductID).Error; err != nil {
			return translate(err)
		}
		if err := tx.Delete(&img).Error; err != nil {
			return err
		}
		if p.MainImage != img.ImageURL {
			return nil
		}
		var next models.ProductImage
		main := ""
		if err := tx.Where("product_id = ?", p.ID).Order("id ASC").First(&next).Error; err == nil {
			main = next.ImageURL
		} else if translate(err) != ErrNotFound {
			return err
		}
		return tx.Model(&p).UpdateColumn("main_image", main).Error
	})
}

func (r *GormRepo) CreateBrand(ctx context.Context, b *models.Brand) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b.Name = strings.TrimSpace(b.Name)
		var n int64
		if err := tx.Model(&models.Brand{}).Where("LOWER(name) = ?", strings.ToLower(b.Name)).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrDuplicate
		}
		b.IsActive = true
		return translate(tx.Create(b).Error)
	})
}

func (r *GormRepo) UpdateBrand(ctx context.Context, id uint, name, description *string, active *bool) (*models.Brand, error) {
	var b models.Brand
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&b, id).Error; err != nil {
			return translate(err)
		}
		updates := map[string]any{}
		if name != nil {
			n := strings.TrimSpace(*name)
			var taken int64
			if err := tx.Model(&models.Brand{}).Where("LOWER(name) = ? AND id <> ?", strings.ToLower(n), id).Count(&taken).Error; err != nil {
				return err
			}
			if taken > 0 {
				return ErrDuplicate
			}
			updates["name"] = n
		}
		if description != nil {
			updates["description"] = *description
		}
		if active != nil {
			updates["is_active"] = *active
		}
		if len(updates) > 0 {
			if err := tx.Model(&b).Updates(updates).Error; err != nil {
				return translate(err)
			}
		}
		return tx.First(&b, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *GormRepo) DeleteBrand(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var b models.Brand
		if err := forUpdate(tx).First(&b, id).Error; err != nil {
			return translate(err)
		}
		var n int64
		if err := tx.Model(&models.Product{}).Where("brand_id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrInUse
		}
		return tx.Delete(&b).Error
	})
}

// CreateCategory stores a canonical category and its aliases. Names and
// aliases share one namespace.
func (r *GormRepo) CreateCategory(ctx context.Context, name, displayName string, aliases []string) (*models.Category, error) {
	c := models.Category{Name: util.NormalizeCategory(name), DisplayName: strings.TrimSpace(displayName)}
	if c.DisplayName == "" {
		c.DisplayName = strings.TrimSpace(name)
	}
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if taken, err := categoryNameTaken(tx, c.Name); err != nil {
			return err
		} else if taken {
			return ErrDuplicate
		}
		if err := tx.Omit("Aliases").Create(&c).Error; err != nil {
			return translate(err)
		}
		for _, a := range aliases {
			alias, err := addAlias(tx, c.ID, a)
			if err != nil {
				return err
			}
			c.Aliases = append(c.Aliases, *alias)
		}
		seeded, err := seedNumberAlias(tx, &c)
		if err != nil {
			return err
		}
		if seeded != nil {
			c.Aliases = append(c.Aliases, *seeded)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *GormRepo) AddCategoryAlias(ctx context.Context, categoryID uint, alias string) (*models.CategoryAlias, error) {
	var out *models.CategoryAlias
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.Category
		if err := tx.First(&c, categoryID).Error; err != nil {
			return translate(err)
		}
		var err error
		out, err = addAlias(tx, categoryID, alias)
		return err
	})
	return out, err
}

func (r *GormRepo) DeleteCategory(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.Category
		if err := tx.First(&c, id).Error; err != nil {
			return translate(err)
		}
		var n int64
		if err := tx.Model(&models.Product{}).Where("category = ?", c.Name).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrInUse
		}
		if err := tx.Where("category_id = ?", id).Delete(&models.CategoryAlias{}).Error; err != nil {
			return err
		}
		return tx.Delete(&c).Error
	})
}

func findOrCreateBrand(tx *gorm.DB, name string) (*uint, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	var b models.Brand
	err := tx.Where("LOWER(name) = ?", strings.ToLower(name)).First(&b).Error
	if err == nil {
		return &b.ID, nil
	}
	if translate(err) != ErrNotFound {
		return nil, err
	}
	b = models.Brand{Name: name, IsActive: true}
	if err := tx.Create(&b).Error; err != nil {
		return nil, translate(err)
	}
	return &b.ID, nil
}

func findOrCreateCategory(tx *gorm.DB, raw string) (string, error) {
	name := util.NormalizeCategory(raw)
	if name == "" {
		return "", nil
	}
	var c models.Category
	err := tx.Where("name = ?", name).First(&c).Error
	if err == nil {
		return c.Name, nil
	}
	if translate(err) != ErrNotFound {
		return "", err
	}
	err = tx.Joins("JOIN category_aliases ON category_aliases.category_id = categories.id").
		Where("category_aliases.alias = ?", name).First(&c).Error
	if err == nil {
		return c.Name, nil
	}
	if translate(err) != ErrNotFound {
		return "", err
	}
	c = models.Category{Name: name, DisplayName: strings.TrimSpace(raw)}
	if err := tx.Omit("Aliases").Create(&c).Error; err != nil {
		return "", translate(err)
	}
	if _, err := seedNumberAlias(tx, &c); err != nil {
		return "", err
	}
	return c.Name, nil
}

// seedNumberAlias registers the other grammatical number of a new category
// as its alias, unless some category already answers to it.
func seedNumberAlias(tx *gorm.DB, c *models.Category) (*models.CategoryAlias, error) {
	other := util.OtherNumber(c.Name)
	if other == "" {
		return nil, nil
	}
	taken, err := categoryNameTaken(tx, other)
	if err != nil || taken {
		return nil, err
	}
	a := models.CategoryAlias{CategoryID: c.ID, Alias: other}
	if err := tx.Create(&a).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func categoryNameTaken(tx *gorm.DB, name string) (bool, error) {
	var n int64
	if err := tx.Model(&models.Category{}).Where("name = ?", name).Count(&n).Error; err != nil {
		return false, err
	}
	if n > 0 {
		return true, nil
	}
	if err := tx.Model(&models.CategoryAlias{}).Where("alias = ?", name).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func addAlias(tx *gorm.DB, categoryID uint, raw string) (*models.CategoryAlias, error) {
	alias := util.NormalizeCategory(raw)
	if alias == "" {
		return nil, ErrEmptyAlias
	}
	taken, err := categoryNameTaken(tx, alias)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDuplicate
	}
	a := models.CategoryAlias{CategoryID: categoryID, Alias: alias}
	if err := tx.Create(&a).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func uniqueSlug(tx *gorm.DB, base string, excludeID uint) (string, error) {
	if base == "" {
		base = "product"
	}
	slug := base
	for i := 2; i < 1000; i++ {
		var n int64
		if err := tx.Model(&models.Product{}).Where("slug = ? AND id <> ?", slug, excludeID).Count(&n).Error; err != nil {
			return "", err
		}
		if n == 0 {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
	return "", ErrDuplicate
}

func skuTaken(tx *gorm.DB, sku string, excludeID uint) (bool, error) {
	var n int64
	err := tx.Model(&models.Variant{}).Where("sku = ? AND id <> ?", sku, excludeID).Count(&n).Error
	return n > 0, err
}

func createVariant(tx *gorm.DB, productID uint, nv NewVariant) (*models.Variant, error) {
	sku := strings.TrimSpace(nv.SKU)
	taken, err := skuTaken(tx, sku, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: sku %s", ErrDuplicate, sku)
	}
	v := models.Variant{
		ProductID: productID,
		SKU:       sku,
		Price:     nv.Price,
		Discount:  nv.Discount,
		Stock:     nv.Stock,
		Color:     strings.TrimSpace(nv.Color),
		Size:      strings.TrimSpace(nv.Size),
	}
	if err := tx.Create(&v).Error; err != nil {
		return nil, translate(err)
	}
	if v.Stock > 0 {
		if err := appendLog(tx, v.ID, v.Stock, initialStockReason); err != nil {
			return nil, err
		}
	}
	return &v, nil
}

func createOption(tx *gorm.DB, productID uint, no NewOption) error {
	opt := models.ProductOption{ProductID: productID, Name: strings.TrimSpace(no.Name)}
	if err := tx.Omit("Values").Create(&opt).Error; err != nil {
		return err
	}
	for _, val := range no.Values {
		if err := tx.Create(&models.ProductOptionValue{OptionID: opt.ID, Value: strings.TrimSpace(val)}).Error; err != nil {
			return err
		}
	}
	return nil
}

func createImage(tx *gorm.DB, productID uint, color, url string) error {
	return tx.Create(&models.ProductImage{
		ProductID: productID,
		Color:     strings.TrimSpace(color),
		ImageURL:  strings.TrimSpace(url),
		MediaType: "image",
	}).Error
}
