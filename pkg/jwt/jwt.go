package jwt

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// RefreshCookieName carries the rotating refresh token.
const RefreshCookieName = "refreshToken"

// httpOnlyCookie is the shape shared by every auth cookie.
func httpOnlyCookie(name, value, path string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func CreateCookie(name, value, path string, expTime time.Time, secure bool) *http.Cookie {
	c := httpOnlyCookie(name, value, path, secure)
	c.Expires = expTime
	c.MaxAge = max(int(time.Until(expTime).Seconds()), 1)
	return c
}

func DeleteCookie(name, path string, secure bool) *http.Cookie {
	c := httpOnlyCookie(name, "", path, secure)
	c.Expires = time.Unix(0, 0)
	c.MaxAge = -1
	return c
}

// Sha256Hex is how refresh tokens are stored at rest.
func Sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func NewJTI() string { return uuid.NewString() }
