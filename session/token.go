// Package session issues and verifies the signed token carried in the
// session cookie. No session state lives on the server.
package session

import (
	"errors"
	"fmt"
	"time"

	"bookminder/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const CookieName = "token"

type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (t *Tokens) TTL() time.Duration { return t.ttl }

// Issue signs a token for email, valid for the configured TTL.
func (t *Tokens) Issue(email string) (string, *Claims, error) {
	if email == "" {
		return "", nil, fmt.Errorf("%w: email is required", models.ErrInvalidInput)
	}
	now := t.now()
	claims := &Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims, nil
}

// Parse verifies raw and returns its claims. Every failure is
// models.ErrUnauthorized.
func (t *Tokens) Parse(raw string) (*Claims, error) {
	if raw == "" {
		return nil, models.ErrUnauthorized
	}
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (interface{}, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, errors.Join(models.ErrUnauthorized, err)
	}
	if claims.Email == "" {
		return nil, models.ErrUnauthorized
	}
	return claims, nil
}
