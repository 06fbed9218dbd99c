// Copyright 2025 Asheer Adnan
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/asheeradnan/FYP-IIoT-FDI-Detection/internal/repository"
	"github.com/asheeradnan/FYP-IIoT-FDI-Detection/internal/services/account"
)

// HTTPErrorHandler maps the typed error taxonomy to fixed status codes
// and human-readable messages. Internal detail never crosses the
// boundary; anything unclassified is logged and returned as a plain
// 500.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "internal server error"

	var (
		validationErr   *account.ValidationError
		conflictErr     *account.ConflictError
		expiredErr      *account.ExpiredError
		notFoundErr     *account.NotFoundError
		unauthorizedErr *account.UnauthorizedError
		forbiddenErr    *account.ForbiddenError
		httpErr         *echo.HTTPError
	)

	switch {
	case errors.As(err, &validationErr):
		status, message = http.StatusBadRequest, validationErr.Message
	case errors.As(err, &conflictErr):
		status, message = http.StatusBadRequest, conflictErr.Message
	case errors.As(err, &expiredErr):
		status, message = http.StatusBadRequest, expiredErr.Message
	case errors.As(err, &notFoundErr):
		status, message = http.StatusNotFound, notFoundErr.Message
	case errors.As(err, &unauthorizedErr):
		status, message = http.StatusUnauthorized, unauthorizedErr.Message
	case errors.As(err, &forbiddenErr):
		status, message = http.StatusForbidden, forbiddenErr.Error()
	case errors.Is(err, repository.ErrNotFound):
		status, message = http.StatusNotFound, "record not found"
	case errors.As(err, &httpErr):
		status = httpErr.Code
		message = fmt.Sprintf("%v", httpErr.Message)
	default:
		slog.Error("unhandled_error", "error", err, "uri", c.Request().RequestURI)
	}

	if writeErr := c.JSON(status, map[string]string{"error": message}); writeErr != nil {
		slog.Error("failed to write error response", "error", writeErr)
	}
}
