// Copyright 2025 Asheer Adnan
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/asheeradnan/FYP-IIoT-FDI-Detection/internal/services/account"
	"github.com/asheeradnan/FYP-IIoT-FDI-Detection/internal/services/token"
)

// AuthHandlers contains handlers for the public account lifecycle
// endpoints.
type AuthHandlers struct {
	accounts *account.Service
	tokens   *token.Service
}

// NewAuth creates a new AuthHandlers instance.
func NewAuth(accounts *account.Service, tokens *token.Service) *AuthHandlers {
	return &AuthHandlers{accounts: accounts, tokens: tokens}
}

// SignupRequest is the request body for registration.
type SignupRequest struct {
	Name            string `json:"name" validate:"required"`
	EmployeeID      string `json:"employeeId" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

// Signup registers a new account. The response carries no password or
// token fields.
func (h *AuthHandlers) Signup(c echo.Context) error {
	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return &account.ValidationError{Message: "invalid request body"}
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.accounts.Register(c.Request().Context(), account.RegisterParams{
		Name:            req.Name,
		EmployeeID:      req.EmployeeID,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, user)
}

// VerifyEmailRequest is the request body for email verification; the
// token may also be passed as a query parameter.
type VerifyEmailRequest struct {
	Token string `json:"token"`
}

// VerifyEmail consumes a verification token.
func (h *AuthHandlers) VerifyEmail(c echo.Context) error {
	tok := c.QueryParam("token")
	if tok == "" {
		var req VerifyEmailRequest
		if err := c.Bind(&req); err != nil {
			return &account.ValidationError{Message: "invalid request body"}
		}
		tok = req.Token
	}
	if tok == "" {
		return &account.ValidationError{Message: "verification token is required"}
	}

	outcome, err := h.accounts.VerifyEmail(c.Request().Context(), tok)
	if err != nil {
		return err
	}

	message := "Email verified successfully. Please wait for admin approval."
	if outcome == account.AlreadyVerified {
		message = "Email already verified"
	}
	return c.JSON(http.StatusOK, map[string]string{"message": message})
}

// ResendVerificationRequest is the request body for requesting a new
// verification mail.
type ResendVerificationRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResendVerification issues a new verification token. The success
// response is the same whether or not the email exists.
func (h *AuthHandlers) ResendVerification(c echo.Context) error {
	var req ResendVerificationRequest
	if err := c.Bind(&req); err != nil {
		return &account.ValidationError{Message: "invalid request body"}
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.accounts.ResendVerification(c.Request().Context(), req.Email); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "If the email exists, a verification link has been sent.",
	})
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login authenticates credentials and mints a bearer token.
func (h *AuthHandlers) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return &account.ValidationError{Message: "invalid request body"}
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.accounts.Authenticate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	signed, _, err := h.tokens.Sign(user.Email, user.Role)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"accessToken": signed,
		"tokenType":   "bearer",
		"account":     user,
	})
}
