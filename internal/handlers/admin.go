// Copyright 2025 Asheer Adnan
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/asheeradnan/FYP-IIoT-FDI-Detection/internal/models"
	"github.com/asheeradnan/FYP-IIoT-FDI-Detection/internal/repository"
	"github.com/asheeradnan/FYP-IIoT-FDI-Detection/internal/services/account"
)

// AdminHandlers contains handlers for the admin approval workflow.
type AdminHandlers struct {
	accounts *account.Service
	repo     *repository.Repository
}

// NewAdmin creates a new AdminHandlers instance.
func NewAdmin(accounts *account.Service, repo *repository.Repository) *AdminHandlers {
	return &AdminHandlers{accounts: accounts, repo: repo}
}

// PendingUsers lists accounts awaiting a decision. Only email-verified
// accounts appear; unverified signups are not actionable yet.
func (h *AdminHandlers) PendingUsers(c echo.Context) error {
	users, err := h.repo.ListPendingVerifiedUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// ApproveUserRequest is the request body for an admin decision.
type ApproveUserRequest struct {
	AccountID int64  `json:"accountId" validate:"required"`
	Approved  bool   `json:"approved"`
	Reason    string `json:"reason"`
}

// ApproveUser applies an admin decision to an account. The transition
// is unconditional and may be re-applied, reversing a prior decision.
func (h *AdminHandlers) ApproveUser(c echo.Context) error {
	var req ApproveUserRequest
	if err := c.Bind(&req); err != nil {
		return &account.ValidationError{Message: "invalid request body"}
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.accounts.Decide(c.Request().Context(), req.AccountID, req.Approved, req.Reason)
	if err != nil {
		return err
	}

	message := "User approved successfully"
	if !req.Approved {
		message = "User declined"
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message":   message,
		"accountId": user.ID,
		"status":    user.Status,
	})
}

// Analytics returns system-wide counts.
func (h *AdminHandlers) Analytics(c echo.Context) error {
	ctx := c.Request().Context()

	totalUsers, err := h.repo.CountUsers(ctx)
	if err != nil {
		return err
	}
	activeUsers, err := h.repo.CountActiveUsers(ctx)
	if err != nil {
		return err
	}
	pendingUsers, err := h.repo.CountUsersByStatus(ctx, models.StatusPending)
	if err != nil {
		return err
	}
	openAnomalies, err := h.repo.CountOpenAnomalies(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"totalUsers":    totalUsers,
		"activeUsers":   activeUsers,
		"pendingUsers":  pendingUsers,
		"openAnomalies": openAnomalies,
		"systemHealth":  "Good",
	})
}
