package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// sessionDuration is the fixed lifetime of a session token.
const sessionDuration = time.Hour

type sessionClaims struct {
	UserID int    `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func (app *application) issueToken(u *user) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		UserID: u.ID,
		Role:   string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionDuration)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(app.config.jwtSecret))
}

// parseToken verifies the signature and expiry and yields the caller's
// identity. Any failure collapses to a single "invalid token" error so
// clients learn nothing about why verification failed.
func (app *application) parseToken(tokenStr string) (identity, error) {
	var claims sessionClaims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(app.config.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return identity{}, errors.New("invalid token")
	}
	r, ok := parseRole(claims.Role)
	if !ok {
		return identity{}, errors.New("invalid token")
	}
	return identity{UserID: claims.UserID, Role: r}, nil
}
