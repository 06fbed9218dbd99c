// Copyright 2025 Asheer Adnan
// Licensed under the EUPL-1.2

package account

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/asheeradnan/FYP-IIoT-FDI-Detection/internal/models"
	"github.com/asheeradnan/FYP-IIoT-FDI-Detection/internal/testutil"
)

const waitTimeout = 2 * time.Second

func newTestService(t *testing.T) (*Service, *testutil.RecordingNotifier) {
	t.Helper()
	_, repo := testutil.NewTestDB(t)
	notifier := &testutil.RecordingNotifier{}
	return NewService(repo, notifier), notifier
}

func validParams() RegisterParams {
	return RegisterParams{
		Name:            "Alice",
		EmployeeID:      "E1",
		Email:           "a@x.com",
		Password:        "Secret1!",
		ConfirmPassword: "Secret1!",
	}
}

func TestRegister(t *testing.T) {
	svc, notifier := newTestService(t)
	ctx := context.Background()

	before := time.Now().UTC()
	user, err := svc.Register(ctx, validParams())
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, user.Status)
	assert.False(t, user.IsActive)
	assert.False(t, user.EmailVerified)
	assert.Equal(t, models.RoleUser, user.Role)
	require.NotNil(t, user.VerificationToken)
	require.NotNil(t, user.VerificationExpiresAt)
	assert.WithinDuration(t, before.Add(24*time.Hour), *user.VerificationExpiresAt, 5*time.Second)

	// The stored hash verifies against the plaintext password.
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("Secret1!")))

	assert.Eventually(t, func() bool {
		return notifier.VerificationCount() == 1
	}, waitTimeout, 10*time.Millisecond)
	sent := notifier.LastVerification()
	assert.Equal(t, "a@x.com", sent.Email)
	assert.Equal(t, *user.VerificationToken, sent.Token)
}

func TestRegister_PasswordMismatch(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	params := validParams()
	params.ConfirmPassword = "different"
	_, err := svc.Register(ctx, params)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)

	// Nothing was persisted.
	_, err = svc.repo.GetUserByEmail(ctx, params.Email)
	assert.Error(t, err)
}

func TestRegister_DuplicateEmployeeID(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, validParams())
	require.NoError(t, err)

	params := validParams()
	params.Email = "other@x.com"
	_, err = svc.Register(ctx, params)

	var conflictErr *ConflictError
	require.ErrorAs(t, err, &conflictErr)
	assert.Contains(t, conflictErr.Message, "employee ID")

	count, err := svc.repo.CountUsers(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, validParams())
	require.NoError(t, err)

	params := validParams()
	params.EmployeeID = "E2"
	_, err = svc.Register(ctx, params)

	var conflictErr *ConflictError
	require.ErrorAs(t, err, &conflictErr)
	assert.Contains(t, conflictErr.Message, "email")
}

func TestVerifyEmail(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, validParams())
	require.NoError(t, err)
	token := *user.VerificationToken

	outcome, err := svc.VerifyEmail(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, Verified, outcome)

	loaded, err := svc.repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, loaded.EmailVerified)
	assert.Nil(t, loaded.VerificationToken)
	assert.Nil(t, loaded.VerificationExpiresAt)

	// Status and activity stay admin-controlled.
	assert.Equal(t, models.StatusPending, loaded.Status)
	assert.False(t, loaded.IsActive)

	// The token was consumed; a second call is rejected as bad input.
	_, err = svc.VerifyEmail(ctx, token)
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestVerifyEmail_UnknownToken(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.VerifyEmail(context.Background(), "no-such-token")

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "invalid verification token", validationErr.Message)
}

func TestVerifyEmail_Expired(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, validParams())
	require.NoError(t, err)

	// Jump past the 24 hour expiry.
	svc.now = func() time.Time { return time.Now().Add(25 * time.Hour) }

	_, err = svc.VerifyEmail(ctx, *user.VerificationToken)

	var expiredErr *ExpiredError
	require.ErrorAs(t, err, &expiredErr)

	loaded, err := svc.repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, loaded.EmailVerified)
}

func TestResendVerification_UnknownEmailSucceeds(t *testing.T) {
	svc, notifier := newTestService(t)

	err := svc.ResendVerification(context.Background(), "nobody@x.com")

	assert.NoError(t, err)
	assert.Equal(t, 0, notifier.VerificationCount())
}

func TestResendVerification_IssuesFreshToken(t *testing.T) {
	svc, notifier := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, validParams())
	require.NoError(t, err)
	oldToken := *user.VerificationToken

	require.NoError(t, svc.ResendVerification(ctx, user.Email))

	loaded, err := svc.repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.VerificationToken)
	assert.NotEqual(t, oldToken, *loaded.VerificationToken)

	assert.Eventually(t, func() bool {
		return notifier.VerificationCount() == 2
	}, waitTimeout, 10*time.Millisecond)
}

func TestResendVerification_AlreadyVerified(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, validParams())
	require.NoError(t, err)
	_, err = svc.VerifyEmail(ctx, *user.VerificationToken)
	require.NoError(t, err)

	err = svc.ResendVerification(ctx, user.Email)

	var conflictErr *ConflictError
	assert.ErrorAs(t, err, &conflictErr)
}

func TestDecide_Approve(t *testing.T) {
	svc, notifier := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, validParams())
	require.NoError(t, err)

	decided, err := svc.Decide(ctx, user.ID, true, "")
	require.NoError(t, err)

	assert.Equal(t, models.StatusApproved, decided.Status)
	assert.True(t, decided.IsActive)

	assert.Eventually(t, func() bool {
		return notifier.ApprovalCount() == 1
	}, waitTimeout, 10*time.Millisecond)
}

func TestDecide_DeclineClearsActivity(t *testing.T) {
	svc, notifier := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, validParams())
	require.NoError(t, err)

	// Approve first, then reverse the decision.
	_, err = svc.Decide(ctx, user.ID, true, "")
	require.NoError(t, err)

	decided, err := svc.Decide(ctx, user.ID, false, "incomplete paperwork")
	require.NoError(t, err)

	assert.Equal(t, models.StatusDeclined, decided.Status)
	assert.False(t, decided.IsActive)

	assert.Eventually(t, func() bool {
		return notifier.DeclineCount() == 1
	}, waitTimeout, 10*time.Millisecond)
	assert.Equal(t, "incomplete paperwork", notifier.LastDecline().Reason)
}

func TestDecide_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Decide(context.Background(), 9999, true, "")

	var notFoundErr *NotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
}

func TestDecide_ReapplyResendsNotification(t *testing.T) {
	svc, notifier := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, validParams())
	require.NoError(t, err)

	_, err = svc.Decide(ctx, user.ID, true, "")
	require.NoError(t, err)
	_, err = svc.Decide(ctx, user.ID, true, "")
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return notifier.ApprovalCount() == 2
	}, waitTimeout, 10*time.Millisecond)
}

func TestAuthenticate_FullGate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, validParams())
	require.NoError(t, err)

	// Unverified, pending, inactive.
	_, err = svc.Authenticate(ctx, user.Email, "Secret1!")
	var forbiddenErr *ForbiddenError
	require.ErrorAs(t, err, &forbiddenErr)
	assert.Equal(t, "unverified", forbiddenErr.Reason)

	_, err = svc.VerifyEmail(ctx, *user.VerificationToken)
	require.NoError(t, err)

	// Verified but still pending.
	_, err = svc.Authenticate(ctx, user.Email, "Secret1!")
	require.ErrorAs(t, err, &forbiddenErr)
	assert.Equal(t, "status:pending", forbiddenErr.Reason)

	_, err = svc.Decide(ctx, user.ID, true, "")
	require.NoError(t, err)

	// Fully approved.
	authed, err := svc.Authenticate(ctx, user.Email, "Secret1!")
	require.NoError(t, err)
	assert.Equal(t, user.Email, authed.Email)
	assert.Equal(t, models.RoleUser, authed.Role)
}

func TestAuthenticate_Inactive(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, validParams())
	require.NoError(t, err)
	_, err = svc.VerifyEmail(ctx, *user.VerificationToken)
	require.NoError(t, err)
	_, err = svc.Decide(ctx, user.ID, true, "")
	require.NoError(t, err)

	// Clear the activity gate without touching the status.
	require.NoError(t, svc.repo.SetDecision(ctx, user.ID, models.StatusApproved, false))

	_, err = svc.Authenticate(ctx, user.Email, "Secret1!")

	var forbiddenErr *ForbiddenError
	require.ErrorAs(t, err, &forbiddenErr)
	assert.Equal(t, "inactive", forbiddenErr.Reason)
}

func TestAuthenticate_BadCredentialsIndistinguishable(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, validParams())
	require.NoError(t, err)

	_, unknownErr := svc.Authenticate(ctx, "nobody@x.com", "Secret1!")
	_, wrongErr := svc.Authenticate(ctx, "a@x.com", "wrong-password")

	var ua, ub *UnauthorizedError
	require.ErrorAs(t, unknownErr, &ua)
	require.ErrorAs(t, wrongErr, &ub)
	assert.Equal(t, ua.Message, ub.Message)
}

func TestEnsureAdmin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	admin, err := svc.EnsureAdmin(ctx, "Root", "A1", "admin@x.com", "Sup3rSecret!")
	require.NoError(t, err)

	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.Equal(t, models.StatusApproved, admin.Status)
	assert.True(t, admin.IsActive)
	assert.True(t, admin.EmailVerified)

	authed, err := svc.Authenticate(ctx, "admin@x.com", "Sup3rSecret!")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, authed.Role)
}

func TestNewVerificationToken_URLSafeAndUnique(t *testing.T) {
	a, err := newVerificationToken()
	require.NoError(t, err)
	b, err := newVerificationToken()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.GreaterOrEqual(t, len(a), 43) // 32 bytes, base64 raw URL encoded
	assert.NotContains(t, a, "+")
	assert.NotContains(t, a, "/")
	assert.NotContains(t, a, "=")
}
