package repo

import (
	"context"
	"strconv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/dbtest"
	"github.com/Skotchmaster/storefront/internal/models"
)

func newTestRepo(t *testing.T) *GormRepo {
	t.Helper()
	return New(dbtest.New(t))
}

func seedUser(t *testing.T, r *GormRepo, email string) *models.User {
	t.Helper()
	u := &models.User{Email: email, PasswordHash: "x", Role: models.RoleUser, IsActive: true}
	require.NoError(t, r.CreateUserIfNotExists(context.Background(), u))
	return u
}

func nv(sku, price string, stock int) NewVariant {
	return NewVariant{SKU: sku, Price: decimal.RequireFromString(price), Stock: stock, Color: "black", Size: "M"}
}

func seedProduct(t *testing.T, r *GormRepo, name string, variants ...NewVariant) *models.Product {
	t.Helper()
	ctx := context.Background()
	id, err := r.CreateProduct(ctx, NewProduct{Name: name, BrandName: "Acme", Category: "Shirts", Variants: variants})
	require.NoError(t, err)
	p, err := r.GetProductDetail(ctx, strconv.FormatUint(uint64(id), 10), true)
	require.NoError(t, err)
	return p
}

func stockOf(t *testing.T, r *GormRepo, variantID uint) int {
	t.Helper()
	v, err := r.GetVariant(context.Background(), variantID)
	require.NoError(t, err)
	return v.Stock
}

func countRows(t *testing.T, r *GormRepo, model any, where string, args ...any) int64 {
	t.Helper()
	var n int64
	q := r.DB.Model(model)
	if where != "" {
		q = q.Where(where, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}
