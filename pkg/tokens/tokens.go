package tokens

import (
	"github.com/golang-jwt/jwt/v5"
)

// Both token kinds are HS256 and must carry an expiry; anything else is
// rejected before the signature is checked.
var parserOpts = []jwt.ParserOption{
	jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	jwt.WithExpirationRequired(),
}

func parse[C any, PC interface {
	*C
	jwt.Claims
}](tokenStr string, secret []byte) (*C, error) {
	claims := PC(new(C))
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, parserOpts...)
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, jwt.ErrTokenSignatureInvalid
	}
	return (*C)(claims), nil
}

func sign(claims jwt.Claims, secret []byte) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func AccessClaimsFromToken(tokenStr string, accessSecret []byte) (*AccessClaims, error) {
	return parse[AccessClaims](tokenStr, accessSecret)
}

func SignAccess(claims AccessClaims, accessSecret []byte) (string, error) {
	return sign(claims, accessSecret)
}

func RefreshClaimsFromToken(tokenStr string, refreshSecret []byte) (*RefreshClaims, error) {
	return parse[RefreshClaims](tokenStr, refreshSecret)
}

func SignRefresh(claims RefreshClaims, refreshSecret []byte) (string, error) {
	return sign(claims, refreshSecret)
}
