// Package auth issues the signed viewer cookie that ties a browser to its
// view-state slot. It does not authenticate people.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims represents the viewer token payload.
type Claims struct {
	Viewer string `json:"viewer"`
	jwt.RegisteredClaims
}

// NewViewerID returns a fresh random viewer id.
func NewViewerID() string {
	return uuid.NewString()
}

// Issue signs a viewer token valid for ttl.
func Issue(viewer, issuer, key string, ttl time.Duration) (string, time.Time, error) {
	if viewer == "" {
		return "", time.Time{}, errors.New("viewer id required")
	}
	now := time.Now()
	exp := now.Add(ttl)
	claims := Claims{
		Viewer: viewer,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   viewer,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	if err != nil {
		return "", time.Time{}, err
	}
	return token, exp, nil
}

// Parse validates a token and returns claims.
func Parse(tokenStr, key, issuer string) (Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(key), nil
	})
	if err != nil {
		return Claims{}, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Viewer == "" {
		return Claims{}, errors.New("invalid token")
	}
	if issuer != "" && claims.Issuer != issuer {
		return Claims{}, errors.New("issuer mismatch")
	}
	return *claims, nil
}
