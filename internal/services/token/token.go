// Copyright 2025 Asheer Adnan
// Licensed under the EUPL-1.2

// Package token signs and verifies bearer session tokens.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/asheeradnan/FYP-IIoT-FDI-Detection/internal/models"
)

// ErrInvalidToken is returned when a token fails verification for any
// reason: bad signature, malformed payload or past expiry.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims are the session claims carried in a bearer token. Subject is
// the account email.
type Claims struct {
	Role models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Service mints and verifies HS256 session tokens. Verification needs
// no store round-trip; callers re-check subject existence themselves.
type Service struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewService creates a token Service with the given signing secret and
// token lifetime.
func NewService(secret string, issuer string, ttl time.Duration) *Service {
	return &Service{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
	}
}

// Sign mints a session token for the given subject and role.
func (s *Service) Sign(subject string, role models.Role) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.ttl)

	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify parses a presented token and returns its claims. Any parse,
// signature or expiry failure maps to ErrInvalidToken.
func (s *Service) Verify(raw string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
