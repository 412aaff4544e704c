package repo

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
)

func TestCreateProduct_DerivesSlugPriceRangeAndMainImage(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	id, err := r.CreateProduct(ctx, NewProduct{
		Name:      "Classic Tee",
		BrandName: "Acme",
		Category:  "  T-Shirts ",
		Variants:  []NewVariant{nv("CT-1", "25.00", 3), nv("CT-2", "19.99", 0)},
		Options:   []NewOption{{Name: "size", Values: []string{"S", "M"}}},
		Images:    []NewImage{{Color: "black", URL: "https://cdn.example.com/a.jpg"}},
	})
	require.NoError(t, err)

	p, err := r.GetProductDetail(ctx, "classic-tee", false)
	require.NoError(t, err)
	assert.Equal(t, id, p.ID)
	assert.Equal(t, "t-shirts", p.Category)
	require.NotNil(t, p.Brand)
	assert.Equal(t, "Acme", p.Brand.Name)
	assert.True(t, decimal.RequireFromString("19.99").Equal(p.PriceMin), p.PriceMin.String())
	assert.True(t, decimal.RequireFromString("25.00").Equal(p.PriceMax), p.PriceMax.String())
	assert.Equal(t, "https://cdn.example.com/a.jpg", p.MainImage)
	require.Len(t, p.Options, 1)
	assert.Len(t, p.Options[0].Values, 2)

	assert.Equal(t, int64(1), countRows(t, r, &models.InventoryLog{}, "reason = ?", initialStockReason))

	second := seedProduct(t, r, "Classic Tee", nv("CT-3", "10.00", 1))
	assert.Equal(t, "classic-tee-2", second.Slug)
	assert.Equal(t, int64(1), countRows(t, r, &models.Brand{}, ""))
}

func TestCreateProduct_DuplicateSKURollsBack(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	seedProduct(t, r, "Tee", nv("SKU-1", "10.00", 1))

	_, err := r.CreateProduct(ctx, NewProduct{Name: "Other", Variants: []NewVariant{nv("SKU-1", "5.00", 1)}})
	require.ErrorIs(t, err, ErrDuplicate)
	assert.Equal(t, int64(1), countRows(t, r, &models.Product{}, ""))
}

func TestVariantWritesRecomputePriceRange(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	p := seedProduct(t, r, "Tee", nv("TEE-1", "10.00", 1))

	v, err := r.AddVariant(ctx, p.ID, nv("TEE-2", "30.00", 0))
	require.NoError(t, err)

	price := decimal.RequireFromString("5.00")
	_, err = r.UpdateVariant(ctx, p.Variants[0].ID, VariantPatch{Price: &price})
	require.NoError(t, err)

	got, err := r.GetProductByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("5.00").Equal(got.PriceMin))
	assert.True(t, decimal.RequireFromString("30.00").Equal(got.PriceMax))

	require.NoError(t, r.DeleteVariant(ctx, v.ID))
	got, err = r.GetProductByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("5.00").Equal(got.PriceMax))

	taken := "TEE-1"
	_, err = r.AddVariant(ctx, p.ID, nv(taken, "1.00", 0))
	require.ErrorIs(t, err, ErrDuplicate)
}

func TestUpdateProduct_RenameRegeneratesSlug(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	p := seedProduct(t, r, "Tee", nv("TEE-1", "10.00", 1))

	name, inactive := "Long Sleeve Tee", false
	require.NoError(t, r.UpdateProduct(ctx, p.ID, ProductPatch{Name: &name, IsActive: &inactive}))

	got, err := r.GetProductDetail(ctx, "long-sleeve-tee", true)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	_, err = r.GetProductDetail(ctx, "long-sleeve-tee", false)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteProduct_KeepsOrderSnapshotsAndLogs(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	u := seedUser(t, r, "buyer@example.com")
	p := seedProduct(t, r, "Tee", nv("TEE-1", "10.00", 5))
	vid := p.Variants[0].ID

	_, err := r.CreateOrder(ctx, u.ID, nil, []CartEntry{{VariantID: vid, Quantity: 1}})
	require.NoError(t, err)
	_, err = r.AddToCart(ctx, u.ID, vid, 1)
	require.NoError(t, err)

	require.NoError(t, r.DeleteProduct(ctx, p.ID))

	assert.Zero(t, countRows(t, r, &models.Variant{}, "product_id = ?", p.ID))
	assert.Zero(t, countRows(t, r, &models.CartItem{}, ""))
	assert.Equal(t, int64(1), countRows(t, r, &models.OrderItem{}, "sku = ?", "TEE-1"))
	assert.Equal(t, int64(2), countRows(t, r, &models.InventoryLog{}, "variant_id = ?", vid))

	require.ErrorIs(t, r.DeleteProduct(ctx, p.ID), ErrNotFound)
}

func TestImages_MainImageFallsBack(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	p := seedProduct(t, r, "Tee", nv("TEE-1", "10.00", 1))

	imgs, err := r.AddImages(ctx, p.ID, "black", []string{"https://cdn.example.com/1.jpg", "https://cdn.example.com/2.jpg"})
	require.NoError(t, err)
	require.Len(t, imgs, 2)

	got, err := r.GetProductByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/1.jpg", got.MainImage)

	require.NoError(t, r.DeleteImage(ctx, imgs[0].ID))
	got, err = r.GetProductByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/2.jpg", got.MainImage)
}

func TestResolveCategory_NameThenAlias(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	c, err := r.CreateCategory(ctx, "Shoes", "Shoes", []string{"shoe", "Sneakers"})
	require.NoError(t, err)
	require.Len(t, c.Aliases, 2)

	got, err := r.ResolveCategory(ctx, "shoes")
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)

	got, err = r.ResolveCategory(ctx, "sneakers")
	require.NoError(t, err)
	assert.Equal(t, "shoes", got.Name)

	_, err = r.ResolveCategory(ctx, "hats")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = r.AddCategoryAlias(ctx, c.ID, "SHOE")
	require.ErrorIs(t, err, ErrDuplicate)
	_, err = r.CreateCategory(ctx, "sneakers", "", nil)
	require.ErrorIs(t, err, ErrDuplicate)

	id, err := r.CreateProduct(ctx, NewProduct{Name: "Runner", Category: "Sneakers", Variants: []NewVariant{nv("RUN-1", "50.00", 1)}})
	require.NoError(t, err)
	p, err := r.GetProductByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "shoes", p.Category)

	require.ErrorIs(t, r.DeleteCategory(ctx, c.ID), ErrInUse)
}

func TestCategoryFromProduct_AnswersToOtherNumber(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	_, err := r.CreateProduct(ctx, NewProduct{Name: "Band", Category: "Ring", Variants: []NewVariant{nv("RING-1", "90.00", 1)}})
	require.NoError(t, err)

	got, err := r.ResolveCategory(ctx, "rings")
	require.NoError(t, err)
	assert.Equal(t, "ring", got.Name)

	_, err = r.CreateProduct(ctx, NewProduct{Name: "Hoop", Category: "Earrings", Variants: []NewVariant{nv("EAR-1", "30.00", 1)}})
	require.NoError(t, err)
	got, err = r.ResolveCategory(ctx, "earring")
	require.NoError(t, err)
	assert.Equal(t, "earrings", got.Name)

	_, err = r.AddCategoryAlias(ctx, got.ID, " ")
	require.ErrorIs(t, err, ErrEmptyAlias)
}

func TestBrandLifecycle(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	b := &models.Brand{Name: "Zeta"}
	require.NoError(t, r.CreateBrand(ctx, b))
	require.ErrorIs(t, r.CreateBrand(ctx, &models.Brand{Name: "zeta"}), ErrDuplicate)

	desc := "Outdoor gear"
	got, err := r.UpdateBrand(ctx, b.ID, nil, &desc, nil)
	require.NoError(t, err)
	assert.Equal(t, desc, got.Description)

	_, err = r.CreateProduct(ctx, NewProduct{Name: "Jacket", BrandName: "ZETA", Variants: []NewVariant{nv("J-1", "99.00", 1)}})
	require.NoError(t, err)
	require.ErrorIs(t, r.DeleteBrand(ctx, b.ID), ErrInUse)

	other := &models.Brand{Name: "Unused"}
	require.NoError(t, r.CreateBrand(ctx, other))
	require.NoError(t, r.DeleteBrand(ctx, other.ID))
}

func TestListProductsAndSearch(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	seedProduct(t, r, "Blue Shirt", nv("BS-1", "10.00", 1))
	seedProduct(t, r, "Red Shirt", nv("RS-1", "10.00", 1))
	hidden := seedProduct(t, r, "Blue Hat", nv("BH-1", "10.00", 1))
	off := false
	require.NoError(t, r.UpdateProduct(ctx, hidden.ID, ProductPatch{IsActive: &off}))

	total, items, err := r.ListProducts(ctx, ProductFilter{Category: "shirts"}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, items, 2)

	total, _, err = r.ListProducts(ctx, ProductFilter{IncludeInactive: true}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	total, found, err := r.SearchProducts(ctx, "BLUE", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, found, 1)
	assert.Equal(t, "Blue Shirt", found[0].Name)
}

func TestNewInAndBestSellers(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	u := seedUser(t, r, "buyer@example.com")
	a := seedProduct(t, r, "A", nv("A-1", "10.00", 10))
	b := seedProduct(t, r, "B", nv("B-1", "10.00", 10))
	c := seedProduct(t, r, "C", nv("C-1", "10.00", 10))

	require.NoError(t, r.DB.Model(&models.Product{}).Where("id = ?", c.ID).
		UpdateColumn("created_at", time.Now().UTC().AddDate(0, 0, -45)).Error)

	fresh, err := r.NewIn(ctx, time.Now().UTC().AddDate(0, 0, -30), 50)
	require.NoError(t, err)
	require.Len(t, fresh, 2)
	assert.Equal(t, b.ID, fresh[0].ID)

	_, err = r.CreateOrder(ctx, u.ID, nil, []CartEntry{{VariantID: b.Variants[0].ID, Quantity: 3}})
	require.NoError(t, err)
	_, err = r.CreateOrder(ctx, u.ID, nil, []CartEntry{{VariantID: c.Variants[0].ID, Quantity: 1}, {VariantID: b.Variants[0].ID, Quantity: 1}})
	require.NoError(t, err)

	top, err := r.BestSellers(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, b.ID, top[0].Product.ID)
	assert.Equal(t, int64(4), top[0].TotalSold)
	assert.Equal(t, c.ID, top[1].Product.ID)
	assert.Equal(t, a.ID, top[2].Product.ID)
	assert.Zero(t, top[2].TotalSold)
}
