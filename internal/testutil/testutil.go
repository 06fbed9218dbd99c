// Copyright 2025 Asheer Adnan
// Licensed under the EUPL-1.2

// Package testutil provides test helpers and fixtures.
package testutil

import (
	"context"
	"io"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/vinovest/sqlx"

	"github.com/asheeradnan/FYP-IIoT-FDI-Detection/internal/database"
	"github.com/asheeradnan/FYP-IIoT-FDI-Detection/internal/models"
	"github.com/asheeradnan/FYP-IIoT-FDI-Detection/internal/repository"
)

// NewTestDB creates an in-memory SQLite database for tests.
// Returns both the database connection and the repository for convenience.
func NewTestDB(t *testing.T) (*sqlx.DB, *repository.Repository) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	repo := repository.New(db)
	return db, repo
}

// NewTestUser creates a pending, unverified test user.
func NewTestUser(t *testing.T, repo *repository.Repository, employeeID, email string) *models.User {
	t.Helper()
	user := &models.User{
		Name:         "Test User " + employeeID,
		EmployeeID:   employeeID,
		Email:        email,
		PasswordHash: "not-a-real-hash",
		Role:         models.RoleUser,
		Status:       models.StatusPending,
	}
	require.NoError(t, repo.CreateUser(context.Background(), user))
	return user
}

// NewEchoContext creates an Echo context for handler tests.
func NewEchoContext(e *echo.Echo, method, path string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}

// RecordingNotifier captures lifecycle notifications for assertions.
type RecordingNotifier struct {
	mu            sync.Mutex
	Verifications []SentMail
	Approvals     []SentMail
	Declines      []SentMail
}

// SentMail is one captured notification.
type SentMail struct {
	Email  string
	Name   string
	Token  string
	Reason string
}

func (n *RecordingNotifier) SendVerification(_ context.Context, email, name, token string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Verifications = append(n.Verifications, SentMail{Email: email, Name: name, Token: token})
	return nil
}

func (n *RecordingNotifier) SendApproval(_ context.Context, email, name string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Approvals = append(n.Approvals, SentMail{Email: email, Name: name})
	return nil
}

func (n *RecordingNotifier) SendDecline(_ context.Context, email, name, reason string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Declines = append(n.Declines, SentMail{Email: email, Name: name, Reason: reason})
	return nil
}

// VerificationCount returns the number of captured verification mails.
// Sends happen on background goroutines; poll with assert.Eventually.
func (n *RecordingNotifier) VerificationCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.Verifications)
}

// ApprovalCount returns the number of captured approval mails.
func (n *RecordingNotifier) ApprovalCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.Approvals)
}

// DeclineCount returns the number of captured decline mails.
func (n *RecordingNotifier) DeclineCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.Declines)
}

// LastVerification returns the most recent verification mail.
func (n *RecordingNotifier) LastVerification() SentMail {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.Verifications[len(n.Verifications)-1]
}

// LastDecline returns the most recent decline mail.
func (n *RecordingNotifier) LastDecline() SentMail {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.Declines[len(n.Declines)-1]
}
