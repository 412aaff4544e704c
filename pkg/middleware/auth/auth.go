package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/pkg/tokens"
)

const (
	RoleAdmin = "admin"

	ctxUserID = "user_id"
	ctxRole   = "role"
	ctxEmail  = "email"

	CodeTokenMissing = "token_missing"
	CodeTokenInvalid = "token_invalid"
	CodeTokenExpired = "token_expired"
)

// BearerAuth verifies access tokens by signature only.
type BearerAuth struct {
	JWTSecret []byte
}

func NewBearerAuth(secret []byte) *BearerAuth {
	return &BearerAuth{JWTSecret: secret}
}

type ValidatorFunc func(claims *tokens.AccessClaims) error

func (m *BearerAuth) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, nil)
}

func (m *BearerAuth) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, func(claims *tokens.AccessClaims) error {
		if claims.Role != RoleAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return nil
	})
}

// OptionalAuth attaches the user when a valid token is present and lets
// anonymous or badly authenticated callers through as guests.
func (m *BearerAuth) OptionalAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := bearerToken(c)
		if raw == "" {
			return next(c)
		}
		if claims, err := tokens.AccessClaimsFromToken(raw, m.JWTSecret); err == nil {
			setUserContext(c, claims)
		}
		return next(c)
	}
}

func (m *BearerAuth) requireAuthWithValidator(next echo.HandlerFunc, validator ValidatorFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := bearerToken(c)
		if raw == "" {
			return authError(CodeTokenMissing, "access token missing")
		}

		claims, err := tokens.AccessClaimsFromToken(raw, m.JWTSecret)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return authError(CodeTokenExpired, "access token expired")
			}
			return authError(CodeTokenInvalid, "invalid access token")
		}
		if _, convErr := strconv.ParseUint(claims.Subject, 10, 64); convErr != nil {
			return authError(CodeTokenInvalid, "invalid access token")
		}

		if validator != nil {
			if validationErr := validator(claims); validationErr != nil {
				return validationErr
			}
		}

		setUserContext(c, claims)
		return next(c)
	}
}

func authError(code, msg string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusUnauthorized, echo.Map{"error": msg, "code": code})
}

func bearerToken(c echo.Context) string {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

func setUserContext(c echo.Context, claims *tokens.AccessClaims) {
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return
	}
	c.Set(ctxUserID, uint(id))
	c.Set(ctxRole, claims.Role)
	c.Set(ctxEmail, claims.Email)
}

// UserID returns the authenticated user id, if any.
func UserID(c echo.Context) (uint, bool) {
	id, ok := c.Get(ctxUserID).(uint)
	return id, ok && id != 0
}

func Role(c echo.Context) string {
	r, _ := c.Get(ctxRole).(string)
	return r
}

func IsAdmin(c echo.Context) bool { return Role(c) == RoleAdmin }
