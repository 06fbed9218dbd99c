// Copyright 2025 Asheer Adnan
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asheeradnan/FYP-IIoT-FDI-Detection/internal/models"
	"github.com/asheeradnan/FYP-IIoT-FDI-Detection/internal/repository"
	"github.com/asheeradnan/FYP-IIoT-FDI-Detection/internal/testutil"
)

func TestCreateUser(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	token := "tok-abc"
	expiresAt := time.Now().UTC().Add(24 * time.Hour)
	user := &models.User{
		Name:                  "Alice",
		EmployeeID:            "E1",
		Email:                 "a@x.com",
		PasswordHash:          "hash",
		Role:                  models.RoleUser,
		Status:                models.StatusPending,
		VerificationToken:     &token,
		VerificationExpiresAt: &expiresAt,
	}

	require.NoError(t, repo.CreateUser(ctx, user))

	assert.NotZero(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())

	loaded, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", loaded.Name)
	assert.Equal(t, "E1", loaded.EmployeeID)
	assert.Equal(t, models.StatusPending, loaded.Status)
	assert.False(t, loaded.IsActive)
	assert.False(t, loaded.EmailVerified)
	require.NotNil(t, loaded.VerificationToken)
	assert.Equal(t, token, *loaded.VerificationToken)
	require.NotNil(t, loaded.VerificationExpiresAt)
	assert.WithinDuration(t, expiresAt, *loaded.VerificationExpiresAt, time.Second)
}

func TestCreateUser_DuplicateEmployeeID(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	testutil.NewTestUser(t, repo, "E1", "a@x.com")

	dup := &models.User{
		Name:         "Bob",
		EmployeeID:   "E1",
		Email:        "b@x.com",
		PasswordHash: "hash",
		Role:         models.RoleUser,
		Status:       models.StatusPending,
	}
	err := repo.CreateUser(ctx, dup)

	require.Error(t, err)
	assert.True(t, repository.IsUniqueViolation(err, "users.employee_id"))
	assert.False(t, repository.IsUniqueViolation(err, "users.email"))
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	testutil.NewTestUser(t, repo, "E1", "a@x.com")

	dup := &models.User{
		Name:         "Bob",
		EmployeeID:   "E2",
		Email:        "a@x.com",
		PasswordHash: "hash",
		Role:         models.RoleUser,
		Status:       models.StatusPending,
	}
	err := repo.CreateUser(ctx, dup)

	require.Error(t, err)
	assert.True(t, repository.IsUniqueViolation(err, "users.email"))
}

func TestGetUserByEmail_NotFound(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	_, err := repo.GetUserByEmail(context.Background(), "nobody@x.com")

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGetUserByEmployeeID(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	created := testutil.NewTestUser(t, repo, "E7", "e7@x.com")

	loaded, err := repo.GetUserByEmployeeID(ctx, "E7")
	require.NoError(t, err)
	assert.Equal(t, created.ID, loaded.ID)
}

func TestVerificationTokenRoundTrip(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "E1", "a@x.com")
	expiresAt := time.Now().UTC().Add(24 * time.Hour)
	require.NoError(t, repo.SetVerificationToken(ctx, user.ID, "tok-1", expiresAt))

	loaded, err := repo.GetUserByVerificationToken(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loaded.ID)

	// Consuming the token clears both fields together.
	require.NoError(t, repo.MarkEmailVerified(ctx, user.ID))

	_, err = repo.GetUserByVerificationToken(ctx, "tok-1")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	loaded, err = repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, loaded.EmailVerified)
	assert.Nil(t, loaded.VerificationToken)
	assert.Nil(t, loaded.VerificationExpiresAt)
}

func TestSetDecision(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "E1", "a@x.com")

	require.NoError(t, repo.SetDecision(ctx, user.ID, models.StatusApproved, true))
	loaded, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, loaded.Status)
	assert.True(t, loaded.IsActive)

	require.NoError(t, repo.SetDecision(ctx, user.ID, models.StatusDeclined, false))
	loaded, err = repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDeclined, loaded.Status)
	assert.False(t, loaded.IsActive)
}

func TestListPendingVerifiedUsers(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	unverified := testutil.NewTestUser(t, repo, "E1", "a@x.com")
	verified := testutil.NewTestUser(t, repo, "E2", "b@x.com")
	approved := testutil.NewTestUser(t, repo, "E3", "c@x.com")

	require.NoError(t, repo.MarkEmailVerified(ctx, verified.ID))
	require.NoError(t, repo.MarkEmailVerified(ctx, approved.ID))
	require.NoError(t, repo.SetDecision(ctx, approved.ID, models.StatusApproved, true))

	pending, err := repo.ListPendingVerifiedUsers(ctx)
	require.NoError(t, err)

	require.Len(t, pending, 1)
	assert.Equal(t, verified.ID, pending[0].ID)
	_ = unverified
}

func TestUserCounts(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	u1 := testutil.NewTestUser(t, repo, "E1", "a@x.com")
	testutil.NewTestUser(t, repo, "E2", "b@x.com")
	require.NoError(t, repo.SetDecision(ctx, u1.ID, models.StatusApproved, true))

	total, err := repo.CountUsers(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	active, err := repo.CountActiveUsers(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, active)

	pending, err := repo.CountUsersByStatus(ctx, models.StatusPending)
	require.NoError(t, err)
	assert.EqualValues(t, 1, pending)
}
