package csrf

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// Config drives a double-submit cookie check on the cookie-authenticated
// auth routes: the XSRF cookie handed out on safe requests must come back
// in HeaderName on unsafe ones.
type Config struct {
	CookieName string
	HeaderName string

	CookiePath string
	Secure     bool
	SameSite   http.SameSite
	MaxAge     time.Duration

	// EnforceSameOrigin rejects unsafe requests whose Origin (or Referer)
	// is neither the request host nor one of TrustedOrigins.
	EnforceSameOrigin bool
	TrustedOrigins    []string
}

func DefaultConfig() Config {
	return Config{
		CookieName:        "XSRF-TOKEN",
		HeaderName:        "X-CSRF-Token",
		CookiePath:        "/",
		SameSite:          http.SameSiteLaxMode,
		MaxAge:            24 * time.Hour,
		EnforceSameOrigin: true,
	}
}

func (cfg Config) withDefaults() Config {
	def := DefaultConfig()
	cfg.CookieName = cmpOr(cfg.CookieName, def.CookieName)
	cfg.HeaderName = cmpOr(cfg.HeaderName, def.HeaderName)
	cfg.CookiePath = cmpOr(cfg.CookiePath, def.CookiePath)
	if cfg.SameSite == 0 {
		cfg.SameSite = def.SameSite
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = def.MaxAge
	}
	return cfg
}

func Middleware(cfg Config) echo.MiddlewareFunc {
	cfg = cfg.withDefaults()
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			token, err := cfg.currentToken(req)
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "failed to create CSRF token")
			}
			c.SetCookie(cfg.cookie(token))

			if isSafe(req.Method) {
				c.Response().Header().Set(cfg.HeaderName, token)
				return next(c)
			}
			if cfg.EnforceSameOrigin && !cfg.originAllowed(req) {
				return echo.NewHTTPError(http.StatusForbidden, "invalid origin")
			}
			sent := req.Header.Get(cfg.HeaderName)
			if sent == "" || subtle.ConstantTimeCompare([]byte(token), []byte(sent)) != 1 {
				return echo.NewHTTPError(http.StatusForbidden, "invalid CSRF token")
			}
			return next(c)
		}
	}
}

func isSafe(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// currentToken reuses the cookie value or mints a fresh 32-byte token.
func (cfg Config) currentToken(req *http.Request) (string, error) {
	if ck, err := req.Cookie(cfg.CookieName); err == nil && ck.Value != "" {
		return ck.Value, nil
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// cookie is readable by scripts so the SPA can copy it into the header.
func (cfg Config) cookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     cfg.CookieName,
		Value:    token,
		Path:     cfg.CookiePath,
		Secure:   cfg.Secure,
		MaxAge:   int(cfg.MaxAge.Seconds()),
		SameSite: cfg.SameSite,
	}
}

func (cfg Config) originAllowed(r *http.Request) bool {
	origin := cmpOr(r.Header.Get("Origin"), r.Header.Get("Referer"))
	if origin == "" {
		return false
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) && strings.EqualFold(u.Scheme, schemeOf(r)) {
		return true
	}
	base := u.Scheme + "://" + u.Host
	return slices.ContainsFunc(cfg.TrustedOrigins, func(o string) bool {
		return strings.EqualFold(strings.TrimRight(o, "/"), base)
	})
}

func schemeOf(r *http.Request) string {
	if p := r.Header.Get("X-Forwarded-Proto"); p != "" {
		return p
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}

func cmpOr(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
