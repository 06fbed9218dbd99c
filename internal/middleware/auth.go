// Copyright 2025 Asheer Adnan
// Licensed under the EUPL-1.2

// Package middleware provides the authorization guard for protected
// routes.
package middleware

import (
	"errors"
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/asheeradnan/FYP-IIoT-FDI-Detection/internal/models"
	"github.com/asheeradnan/FYP-IIoT-FDI-Detection/internal/repository"
	"github.com/asheeradnan/FYP-IIoT-FDI-Detection/internal/services/account"
	"github.com/asheeradnan/FYP-IIoT-FDI-Detection/internal/services/token"
)

// principalKey is the echo context key holding the Principal.
const principalKey = "principal"

// Principal is the authenticated identity derived from a verified
// bearer token plus a store lookup.
type Principal struct {
	User   *models.User
	Claims *token.Claims
}

// Authenticate verifies the Bearer token on the request, re-checks that
// its subject still resolves to an account and stores the principal in
// the context. The middleware is side-effect-free beyond that.
func Authenticate(tokens *token.Service, repo *repository.Repository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || raw == "" {
				return &account.UnauthorizedError{Message: "missing or invalid authorization header"}
			}

			claims, err := tokens.Verify(raw)
			if err != nil {
				return &account.UnauthorizedError{Message: "invalid authentication credentials"}
			}

			user, err := repo.GetUserByEmail(c.Request().Context(), claims.Subject)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					// Subject deleted out-of-band; an authorization
					// failure as far as the caller is concerned.
					return &account.NotFoundError{Message: "user not found"}
				}
				return fmt.Errorf("failed to resolve token subject: %w", err)
			}

			c.Set(principalKey, &Principal{User: user, Claims: claims})
			return next(c)
		}
	}
}

// RequireRole enforces the role claim embedded in the token. It must
// run after Authenticate.
func RequireRole(role models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p := GetPrincipal(c)
			if p == nil {
				return &account.UnauthorizedError{Message: "missing or invalid authorization header"}
			}
			if p.Claims.Role != role {
				return &account.ForbiddenError{
					Reason:  "role",
					Message: "not authorized to access this resource",
				}
			}
			return next(c)
		}
	}
}

// GetPrincipal returns the authenticated principal, or nil on
// unauthenticated routes.
func GetPrincipal(c echo.Context) *Principal {
	p, _ := c.Get(principalKey).(*Principal)
	return p
}
