// Copyright 2025 Asheer Adnan
// Licensed under the EUPL-1.2

package middleware_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asheeradnan/FYP-IIoT-FDI-Detection/internal/middleware"
	"github.com/asheeradnan/FYP-IIoT-FDI-Detection/internal/models"
	"github.com/asheeradnan/FYP-IIoT-FDI-Detection/internal/repository"
	"github.com/asheeradnan/FYP-IIoT-FDI-Detection/internal/services/account"
	"github.com/asheeradnan/FYP-IIoT-FDI-Detection/internal/services/token"
	"github.com/asheeradnan/FYP-IIoT-FDI-Detection/internal/testutil"
)

func setupAuth(t *testing.T) (*repository.Repository, *token.Service, echo.HandlerFunc) {
	t.Helper()
	_, repo := testutil.NewTestDB(t)
	tokens := token.NewService("test-secret", "iiot-fdi-detection", time.Minute)
	handler := func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}
	return repo, tokens, handler
}

func invoke(t *testing.T, mw echo.MiddlewareFunc, handler echo.HandlerFunc, authHeader string) (echo.Context, error) {
	t.Helper()
	e := echo.New()
	c, _ := testutil.NewEchoContext(e, http.MethodGet, "/protected", nil)
	if authHeader != "" {
		c.Request().Header.Set(echo.HeaderAuthorization, authHeader)
	}
	return c, mw(handler)(c)
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	repo, tokens, handler := setupAuth(t)

	_, err := invoke(t, middleware.Authenticate(tokens, repo), handler, "")

	var unauthorized *account.UnauthorizedError
	assert.ErrorAs(t, err, &unauthorized)
}

func TestAuthenticate_NotBearer(t *testing.T) {
	repo, tokens, handler := setupAuth(t)

	_, err := invoke(t, middleware.Authenticate(tokens, repo), handler, "Basic abc123")

	var unauthorized *account.UnauthorizedError
	assert.ErrorAs(t, err, &unauthorized)
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	repo, tokens, handler := setupAuth(t)

	_, err := invoke(t, middleware.Authenticate(tokens, repo), handler, "Bearer garbage")

	var unauthorized *account.UnauthorizedError
	assert.ErrorAs(t, err, &unauthorized)
}

func TestAuthenticate_DeletedSubject(t *testing.T) {
	repo, tokens, handler := setupAuth(t)

	signed, _, err := tokens.Sign("ghost@x.com", models.RoleUser)
	require.NoError(t, err)

	_, err = invoke(t, middleware.Authenticate(tokens, repo), handler, "Bearer "+signed)

	var notFound *account.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestAuthenticate_SetsPrincipal(t *testing.T) {
	repo, tokens, _ := setupAuth(t)
	user := testutil.NewTestUser(t, repo, "E1", "a@x.com")

	signed, _, err := tokens.Sign(user.Email, user.Role)
	require.NoError(t, err)

	var principal *middleware.Principal
	handler := func(c echo.Context) error {
		principal = middleware.GetPrincipal(c)
		return c.NoContent(http.StatusOK)
	}

	_, err = invoke(t, middleware.Authenticate(tokens, repo), handler, "Bearer "+signed)
	require.NoError(t, err)

	require.NotNil(t, principal)
	assert.Equal(t, user.ID, principal.User.ID)
	assert.Equal(t, user.Email, principal.Claims.Subject)
}

func TestRequireRole(t *testing.T) {
	repo, tokens, handler := setupAuth(t)
	user := testutil.NewTestUser(t, repo, "E1", "a@x.com")

	signed, _, err := tokens.Sign(user.Email, models.RoleUser)
	require.NoError(t, err)

	chain := func(h echo.HandlerFunc) echo.HandlerFunc {
		return middleware.Authenticate(tokens, repo)(middleware.RequireRole(models.RoleAdmin)(h))
	}

	_, err = invoke(t, chain, handler, "Bearer "+signed)

	var forbidden *account.ForbiddenError
	require.ErrorAs(t, err, &forbidden)
	assert.Equal(t, "role", forbidden.Reason)
}

func TestRequireRole_AdminPasses(t *testing.T) {
	repo, tokens, handler := setupAuth(t)
	user := testutil.NewTestUser(t, repo, "E1", "admin@x.com")

	signed, _, err := tokens.Sign(user.Email, models.RoleAdmin)
	require.NoError(t, err)

	chain := func(h echo.HandlerFunc) echo.HandlerFunc {
		return middleware.Authenticate(tokens, repo)(middleware.RequireRole(models.RoleAdmin)(h))
	}

	_, err = invoke(t, chain, handler, "Bearer "+signed)
	assert.NoError(t, err)
}

func TestRequireRole_WithoutAuthenticate(t *testing.T) {
	_, _, handler := setupAuth(t)

	_, err := invoke(t, middleware.RequireRole(models.RoleAdmin), handler, "")

	var unauthorized *account.UnauthorizedError
	assert.ErrorAs(t, err, &unauthorized)
}
