// Package auth provides password hashing and bearer token issue/verify
// for local gateway accounts. Provider credentials are handled elsewhere;
// nothing in this package ever touches a Didox session key.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned when a bearer token fails signature or
// claims validation.
var ErrInvalidToken = errors.New("invalid token")

// Claims carries the local username as the token subject alongside the
// registered claim set.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"sub_name"`
}

// GenerateToken issues an HS256 bearer token for the given username.
func GenerateToken(username string, secretKey []byte, validity time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		Username: username,
	})

	return token.SignedString(secretKey)
}

// UsernameFromToken validates the token and returns its subject.
func UsernameFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}
