package csrf

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEcho() *echo.Echo {
	e := echo.New()
	mw := Middleware(Config{EnforceSameOrigin: true})
	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	e.GET("/csrf", ok, mw)
	e.POST("/refresh", ok, mw)
	return e
}

func TestMiddleware_DoubleSubmit(t *testing.T) {
	t.Parallel()

	e := newEcho()

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://shop.local/csrf", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	token := rec.Header().Get("X-CSRF-Token")
	require.NotEmpty(t, token)

	post := func(header string) int {
		req := httptest.NewRequest(http.MethodPost, "http://shop.local/refresh", nil)
		req.Header.Set("Origin", "http://shop.local")
		req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: token})
		if header != "" {
			req.Header.Set("X-CSRF-Token", header)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, post(token))
	assert.Equal(t, http.StatusForbidden, post(""))
	assert.Equal(t, http.StatusForbidden, post("wrong"))
}

func TestMiddleware_RejectsForeignOrigin(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "http://shop.local/refresh", nil)
	req.Header.Set("Origin", "http://evil.example")
	req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "t"})
	req.Header.Set("X-CSRF-Token", "t")
	rec := httptest.NewRecorder()
	newEcho().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMiddleware_TrustedOrigin(t *testing.T) {
	t.Parallel()

	e := echo.New()
	mw := Middleware(Config{EnforceSameOrigin: true, TrustedOrigins: []string{"http://localhost:5173/"}})
	e.POST("/refresh", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, mw)

	send := func(origin string) int {
		req := httptest.NewRequest(http.MethodPost, "http://api.local/refresh", nil)
		req.Header.Set("Origin", origin)
		req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "t"})
		req.Header.Set("X-CSRF-Token", "t")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send("http://localhost:5173"))
	assert.Equal(t, http.StatusForbidden, send("http://localhost:5174"))
}
