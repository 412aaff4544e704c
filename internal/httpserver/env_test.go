package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/dbtest"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/resetcode"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	jwthelp "github.com/Skotchmaster/storefront/pkg/jwt"
	"github.com/Skotchmaster/storefront/pkg/metrics"
	"github.com/Skotchmaster/storefront/pkg/middleware/ratelimit"
)

const (
	testSecret        = "access-secret-for-tests"
	testRefreshSecret = "refresh-secret-for-tests"
	adminEmail        = "admin@example.com"
	adminPassword     = "admin-pass"
)

type testEnv struct {
	e    *echo.Echo
	repo *repo.GormRepo
	deps *Deps
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	gdb := dbtest.New(t)
	r := repo.New(gdb)
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	events := mykafka.Nop{}

	catalog := &service.CatalogService{Repo: r}
	promotions := &service.PromotionService{Repo: r}
	users := &service.UserService{Repo: r}
	d := &Deps{
		DB: gdb,
		Auth: &service.AuthService{
			Repo:          r,
			Resets:        resetcode.NewMemoryStore(),
			Events:        events,
			JWTSecret:     []byte(testSecret),
			RefreshSecret: []byte(testRefreshSecret),
		},
		Users:        users,
		Addresses:    &service.AddressService{Repo: r},
		Cart:         &service.CartService{Repo: r, Events: events},
		Orders:       &service.OrderService{Repo: r, Events: events, Metrics: m},
		Catalog:      catalog,
		Admin:        &service.ProductAdminService{Repo: r, Catalog: catalog, Events: events},
		Inventory:    &service.InventoryService{Repo: r, Events: events, Metrics: m},
		Reviews:      &service.ReviewService{Repo: r},
		Wishlist:     &service.WishlistService{Repo: r},
		Promotions:   promotions,
		JWTSecret:    []byte(testSecret),
		LoginLimiter: ratelimit.NewMemoryLimiter(100, time.Minute),
		Gatherer:     reg,
	}
	require.NoError(t, users.EnsureAdmin(context.Background(), adminEmail, adminPassword))

	e := echo.New()
	Configure(e)
	Register(e, d)
	return &testEnv{e: e, repo: r, deps: d}
}

type request struct {
	method  string
	path    string
	body    any
	token   string
	cookies []*http.Cookie
}

func (env *testEnv) do(t *testing.T, r request) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if r.body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(r.body))
	}
	req := httptest.NewRequest(r.method, r.path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if r.token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+r.token)
	}
	for _, ck := range r.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func refreshCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == jwthelp.RefreshCookieName {
			return ck
		}
	}
	return nil
}

func (env *testEnv) register(t *testing.T, email string) (string, *http.Cookie) {
	t.Helper()
	rec := env.do(t, request{method: http.MethodPost, path: "/api/auth/register", body: map[string]any{
		"name": "Test", "email": email, "password": "secret1",
	}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[transport.AuthResponse](t, rec).AccessToken, refreshCookie(rec)
}

func (env *testEnv) loginAdmin(t *testing.T) string {
	t.Helper()
	rec := env.do(t, request{method: http.MethodPost, path: "/api/auth/login", body: map[string]any{
		"email": adminEmail, "password": adminPassword,
	}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[transport.AuthResponse](t, rec).AccessToken
}

// seedProduct creates an active product with one variant through the admin API.
func (env *testEnv) seedProduct(t *testing.T, adminToken, name, sku, price string, stock int) transport.ProductDetail {
	t.Helper()
	rec := env.do(t, request{method: http.MethodPost, path: "/api/admin/products", token: adminToken, body: map[string]any{
		"name":       name,
		"brand_name": "Acme",
		"category":   "shirts",
		"variants": []map[string]any{
			{"sku": sku, "price": decimal.RequireFromString(price), "stock": stock, "color": "black", "size": "M"},
		},
	}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[transport.ProductDetail](t, rec)
}
