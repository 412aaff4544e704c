package httpserver

import (
	"fmt"
	"math"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/middleware/ratelimit"
)

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, request{method: http.MethodGet, path: "/health/live"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, request{method: http.MethodGet, path: "/health/ready"})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRegisterLoginMe(t *testing.T) {
	env := newTestEnv(t)

	token, cookie := env.register(t, "Alice@Example.com")
	require.NotEmpty(t, token)
	require.NotNil(t, cookie)
	require.Equal(t, RefreshCookiePath, cookie.Path)
	require.True(t, cookie.HttpOnly)

	rec := env.do(t, request{method: http.MethodGet, path: "/api/auth/me", token: token})
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[transport.UserEnvelope](t, rec)
	require.Equal(t, "alice@example.com", me.User.Email)
	require.Equal(t, "user", me.User.Role)

	rec = env.do(t, request{method: http.MethodPost, path: "/api/auth/register", body: map[string]any{
		"email": "alice@example.com", "password": "secret1",
	}})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, request{method: http.MethodPost, path: "/api/auth/login", body: map[string]any{
		"email": "alice@example.com", "password": "wrong-password",
	}})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, request{method: http.MethodGet, path: "/api/auth/me"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), `"code"`)
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, request{method: http.MethodPost, path: "/api/auth/register", body: map[string]any{
		"email": "not-an-email", "password": "secret1",
	}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "email must be a valid email", decode[map[string]string](t, rec)["error"])

	rec = env.do(t, request{method: http.MethodPost, path: "/api/auth/register", body: map[string]any{
		"email": "bob@example.com", "password": "123",
	}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, decode[map[string]string](t, rec)["error"], "password")
}

func TestRefreshRotation(t *testing.T) {
	env := newTestEnv(t)
	_, first := env.register(t, "carol@example.com")

	rec := env.do(t, request{method: http.MethodPost, path: "/api/auth/refresh"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, request{method: http.MethodPost, path: "/api/auth/refresh", cookies: []*http.Cookie{first}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	second := refreshCookie(rec)
	require.NotNil(t, second)
	require.NotEqual(t, first.Value, second.Value)
	require.NotEmpty(t, decode[transport.AuthResponse](t, rec).AccessToken)

	rec = env.do(t, request{method: http.MethodPost, path: "/api/auth/refresh", cookies: []*http.Cookie{first}})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, request{method: http.MethodPost, path: "/api/auth/logout", cookies: []*http.Cookie{second}})
	require.Equal(t, http.StatusOK, rec.Code)
	cleared := refreshCookie(rec)
	require.NotNil(t, cleared)
	require.Empty(t, cleared.Value)

	rec = env.do(t, request{method: http.MethodPost, path: "/api/auth/refresh", cookies: []*http.Cookie{second}})
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLoginRateLimit(t *testing.T) {
	env := newTestEnv(t)

	e := echo.New()
	Configure(e)
	d := *env.deps
	d.LoginLimiter = ratelimit.NewMemoryLimiter(2, time.Minute)
	d.Gatherer = nil
	Register(e, &d)
	env.e = e

	body := map[string]any{"email": "nobody@example.com", "password": "whatever"}
	for i := 0; i < 2; i++ {
		rec := env.do(t, request{method: http.MethodPost, path: "/api/auth/login", body: body})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	}
	rec := env.do(t, request{method: http.MethodPost, path: "/api/auth/login", body: body})
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.register(t, "dave@example.com")

	rec := env.do(t, request{method: http.MethodGet, path: "/api/admin/users", token: token})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, request{method: http.MethodGet, path: "/api/inventory/variants", token: token})
	require.Equal(t, http.StatusForbidden, rec.Code)

	admin := env.loginAdmin(t)
	rec = env.do(t, request{method: http.MethodGet, path: "/api/admin/users", token: admin})
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[transport.Page[transport.UserResponse]](t, rec)
	require.EqualValues(t, 2, page.Meta.Total)
	require.Len(t, page.Data, 2)
}

func TestAdminDisablesUser(t *testing.T) {
	env := newTestEnv(t)
	_, cookie := env.register(t, "erin@example.com")
	admin := env.loginAdmin(t)

	u, err := env.repo.GetUserByEmail(t.Context(), "erin@example.com")
	require.NoError(t, err)

	rec := env.do(t, request{method: http.MethodPatch, path: fmt.Sprintf("/api/admin/users/%d/active", u.ID), token: admin,
		body: map[string]any{"is_active": false}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.False(t, decode[transport.UserEnvelope](t, rec).User.IsActive)

	rec = env.do(t, request{method: http.MethodPost, path: "/api/auth/login", body: map[string]any{
		"email": "erin@example.com", "password": "secret1",
	}})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, request{method: http.MethodPost, path: "/api/auth/refresh", cookies: []*http.Cookie{cookie}})
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCatalogRoutes(t *testing.T) {
	env := newTestEnv(t)
	admin := env.loginAdmin(t)
	p := env.seedProduct(t, admin, "Blue Shirt", "BS-1", "19.99", 5)

	rec := env.do(t, request{method: http.MethodGet, path: "/api/products"})
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[transport.Page[transport.ProductSummary]](t, rec)
	require.EqualValues(t, 1, page.Meta.Total)
	require.Equal(t, "Acme", page.Data[0].Brand)

	rec = env.do(t, request{method: http.MethodGet, path: "/api/products/" + p.Slug})
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decode[transport.ProductDetail](t, rec)
	require.Equal(t, p.ID, detail.ID)
	require.Len(t, detail.Variants, 1)

	rec = env.do(t, request{method: http.MethodGet, path: fmt.Sprintf("/api/products/%d/variants", p.ID)})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[[]transport.VariantView](t, rec), 1)

	rec = env.do(t, request{method: http.MethodGet, path: "/api/products/meta/brands"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[[]transport.BrandView](t, rec), 1)

	rec = env.do(t, request{method: http.MethodGet, path: "/api/categories/new-in"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[[]transport.ProductSummary](t, rec), 1)

	rec = env.do(t, request{method: http.MethodGet, path: "/api/categories/SHIRTS"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[transport.CategoryProducts](t, rec).Products, 1)

	rec = env.do(t, request{method: http.MethodGet, path: "/api/categories/hats"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, decode[transport.CategoryProducts](t, rec).Products)

	rec = env.do(t, request{method: http.MethodGet, path: "/api/search?q=blue"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[transport.Page[transport.ProductSummary]](t, rec).Data, 1)

	rec = env.do(t, request{method: http.MethodGet, path: "/api/products/does-not-exist"})
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, request{method: http.MethodGet, path: "/api/variants/abc"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGuestCart(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, request{method: http.MethodGet, path: "/api/cart"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"guest":true,"items":[],"subtotal":"0"}`, rec.Body.String())

	rec = env.do(t, request{method: http.MethodPost, path: "/api/cart/add", body: map[string]any{"variantId": 1, "quantity": 1}})
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"guest":true}`, rec.Body.String())

	rec = env.do(t, request{method: http.MethodDelete, path: "/api/cart"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCartAndOrderFlow(t *testing.T) {
	env := newTestEnv(t)
	admin := env.loginAdmin(t)
	p := env.seedProduct(t, admin, "Green Shirt", "GS-1", "10.00", 3)
	variantID := p.Variants[0].ID
	token, _ := env.register(t, "frank@example.com")

	rec := env.do(t, request{method: http.MethodPost, path: "/api/cart/add", token: token, body: map[string]any{"variantId": variantID, "quantity": 2}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(t, request{method: http.MethodPost, path: "/api/cart/add", token: token, body: map[string]any{"variantId": variantID, "quantity": 5}})
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[transport.CartMutationResponse](t, rec)
	require.Equal(t, 3, res.Quantity)
	require.True(t, res.StockLimited)

	rec = env.do(t, request{method: http.MethodGet, path: "/api/cart", token: token})
	require.Equal(t, http.StatusOK, rec.Code)
	cart := decode[transport.CartResponse](t, rec)
	require.Len(t, cart.Items, 1)
	require.True(t, decimal.RequireFromString("30").Equal(cart.Subtotal))

	rec = env.do(t, request{method: http.MethodPost, path: "/api/orders", token: token, body: map[string]any{
		"items": []map[string]any{{"variant_id": variantID, "quantity": 4}},
	}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, decode[map[string]string](t, rec)["error"], "insufficient stock")

	rec = env.do(t, request{method: http.MethodPost, path: "/api/orders", token: token, body: map[string]any{
		"items": []map[string]any{{"variant_id": variantID, "quantity": 2}},
	}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[transport.CreateOrderResponse](t, rec)
	require.True(t, decimal.RequireFromString("20").Equal(created.TotalAmount))

	rec = env.do(t, request{method: http.MethodGet, path: "/api/cart", token: token})
	require.Empty(t, decode[transport.CartResponse](t, rec).Items)

	other, _ := env.register(t, "grace@example.com")
	orderPath := fmt.Sprintf("/api/orders/%d", created.OrderID)
	rec = env.do(t, request{method: http.MethodGet, path: orderPath, token: other})
	require.Equal(t, http.StatusForbidden, rec.Code)
	rec = env.do(t, request{method: http.MethodGet, path: orderPath, token: admin})
	require.Equal(t, http.StatusOK, rec.Code)

	statusPath := fmt.Sprintf("/api/admin/orders/%d/status", created.OrderID)
	rec = env.do(t, request{method: http.MethodPatch, path: statusPath, token: admin, body: map[string]any{"status": "completed"}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, decode[map[string]string](t, rec)["error"], "cannot move order")

	rec = env.do(t, request{method: http.MethodPost, path: orderPath + "/cancel", token: token})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, request{method: http.MethodGet, path: fmt.Sprintf("/api/inventory/variants/%d", variantID), token: admin})
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 3, decode[map[string]any](t, rec)["stock"])

	rec = env.do(t, request{method: http.MethodGet, path: "/metrics"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "orders_created_total 1")
}

func TestInventoryAdjust(t *testing.T) {
	env := newTestEnv(t)
	admin := env.loginAdmin(t)
	p := env.seedProduct(t, admin, "Red Shirt", "RS-1", "5.00", 2)
	path := fmt.Sprintf("/api/inventory/variants/%d/stock", p.Variants[0].ID)

	rec := env.do(t, request{method: http.MethodPatch, path: path, token: admin, body: map[string]any{"change": -5}})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, request{method: http.MethodPatch, path: path, token: admin, body: map[string]any{"change": 0}})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, request{method: http.MethodPatch, path: path, token: admin, body: map[string]any{"change": 4}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.JSONEq(t, fmt.Sprintf(`{"variant_id":%d,"old_stock":2,"new_stock":6,"change":4}`, p.Variants[0].ID), rec.Body.String())

	rec = env.do(t, request{method: http.MethodGet, path: fmt.Sprintf("/api/inventory/logs?variant_id=%d", p.Variants[0].ID), token: admin})
	require.Equal(t, http.StatusOK, rec.Code)
	logs := decode[[]map[string]any](t, rec)
	require.Len(t, logs, 2)
	require.Equal(t, "restock", logs[0]["reason"])

	rec = env.do(t, request{method: http.MethodGet, path: "/api/inventory/variants?low_stock=x", token: admin})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddressesAndWishlist(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.register(t, "heidi@example.com")
	admin := env.loginAdmin(t)
	p := env.seedProduct(t, admin, "Black Shirt", "BL-1", "12.00", 1)

	addr := map[string]any{"address_line1": "1 Main St", "city": "Springfield", "country": "US"}
	rec := env.do(t, request{method: http.MethodPost, path: "/api/addresses", token: token, body: addr})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Equal(t, true, decode[map[string]any](t, rec)["is_default"])

	rec = env.do(t, request{method: http.MethodPost, path: "/api/addresses", token: token, body: map[string]any{"city": "x"}})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, request{method: http.MethodPost, path: "/api/wishlist", token: token, body: map[string]any{"product_id": p.ID}})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = env.do(t, request{method: http.MethodPost, path: "/api/wishlist", token: token, body: map[string]any{"product_id": p.ID}})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, request{method: http.MethodGet, path: "/api/wishlist", token: token})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[[]map[string]any](t, rec), 1)

	rec = env.do(t, request{method: http.MethodDelete, path: "/api/wishlist/999", token: token})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReviews(t *testing.T) {
	env := newTestEnv(t)
	admin := env.loginAdmin(t)
	p := env.seedProduct(t, admin, "White Shirt", "WS-1", "8.00", 1)
	token, _ := env.register(t, "ivan@example.com")
	other, _ := env.register(t, "judy@example.com")

	rec := env.do(t, request{method: http.MethodPost, path: "/api/reviews", token: token, body: map[string]any{"product_id": p.ID, "rating": 6}})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, request{method: http.MethodPost, path: "/api/reviews", token: token, body: map[string]any{"product_id": p.ID, "rating": 4, "comment": "nice"}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	review := decode[transport.ReviewView](t, rec)

	rec = env.do(t, request{method: http.MethodGet, path: fmt.Sprintf("/api/reviews/product/%d", p.ID)})
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[transport.ProductReviews](t, rec)
	require.EqualValues(t, 1, list.Count)
	require.Equal(t, "i***@example.com", list.Reviews[0].Author)

	rec = env.do(t, request{method: http.MethodDelete, path: fmt.Sprintf("/api/reviews/%d", review.ID), token: other})
	require.Equal(t, http.StatusForbidden, rec.Code)
	rec = env.do(t, request{method: http.MethodDelete, path: fmt.Sprintf("/api/reviews/%d", review.ID), token: admin})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestProductWritesOnCatalogPaths(t *testing.T) {
	env := newTestEnv(t)
	admin := env.loginAdmin(t)
	user, _ := env.register(t, "ivy@example.com")

	body := map[string]any{
		"name":       "Gold Band",
		"brand_name": "Acme",
		"category":   "Ring",
		"variants": []map[string]any{
			{"sku": "GB-1", "price": decimal.RequireFromString("90.00"), "stock": 4, "color": "gold", "size": "7"},
		},
	}
	rec := env.do(t, request{method: http.MethodPost, path: "/api/products", body: body})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = env.do(t, request{method: http.MethodPost, path: "/api/products", token: user, body: body})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, request{method: http.MethodPost, path: "/api/products", token: admin, body: body})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	p := decode[transport.ProductDetail](t, rec)
	productPath := fmt.Sprintf("/api/products/%d", p.ID)

	rec = env.do(t, request{method: http.MethodGet, path: "/api/categories/rings"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[transport.CategoryProducts](t, rec).Products, 1)

	rec = env.do(t, request{method: http.MethodPut, path: productPath, token: user, body: map[string]any{"description": "x"}})
	require.Equal(t, http.StatusForbidden, rec.Code)
	rec = env.do(t, request{method: http.MethodPut, path: productPath, token: admin, body: map[string]any{"description": "18k"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, request{method: http.MethodPost, path: productPath + "/variants", token: admin, body: map[string]any{
		"sku": "GB-2", "price": decimal.RequireFromString("95.00"), "stock": 1, "color": "gold", "size": "8",
	}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(t, request{method: http.MethodPost, path: "/api/orders", token: user, body: map[string]any{
		"items": []map[string]any{{"variant_id": p.Variants[0].ID, "quantity": 1}},
	}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	statusPath := fmt.Sprintf("/api/orders/%d/status", decode[transport.CreateOrderResponse](t, rec).OrderID)

	rec = env.do(t, request{method: http.MethodPatch, path: statusPath, token: user, body: map[string]any{"status": "paid"}})
	require.Equal(t, http.StatusForbidden, rec.Code)
	rec = env.do(t, request{method: http.MethodPatch, path: statusPath, token: admin, body: map[string]any{"status": "paid"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, request{method: http.MethodDelete, path: productPath, token: user})
	require.Equal(t, http.StatusForbidden, rec.Code)
	rec = env.do(t, request{method: http.MethodDelete, path: productPath, token: admin})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = env.do(t, request{method: http.MethodGet, path: productPath})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestQuantityBounds(t *testing.T) {
	env := newTestEnv(t)
	admin := env.loginAdmin(t)
	p := env.seedProduct(t, admin, "Tee", "TEE-9", "10.00", 5)
	vid := p.Variants[0].ID
	token, _ := env.register(t, "jack@example.com")

	rec := env.do(t, request{method: http.MethodPost, path: "/api/cart/add", token: token, body: map[string]any{"variantId": vid, "quantity": 10000}})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, request{method: http.MethodPost, path: "/api/orders", token: token, body: map[string]any{
		"items": []map[string]any{
			{"variant_id": vid, "quantity": int64(math.MaxInt64)},
			{"variant_id": vid, "quantity": int64(math.MaxInt64)},
		},
	}})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, request{method: http.MethodGet, path: fmt.Sprintf("/api/inventory/variants/%d", vid), token: admin})
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 5, decode[map[string]any](t, rec)["stock"])
}
