package tokens

import "github.com/golang-jwt/jwt/v5"

// AccessClaims is carried by the short-lived bearer token.
type AccessClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// RefreshClaims only identifies the user and the persisted credential row (ID = jti).
type RefreshClaims struct {
	jwt.RegisteredClaims
}
