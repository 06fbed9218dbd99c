// Copyright 2025 Asheer Adnan
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"github.com/asheeradnan/FYP-IIoT-FDI-Detection/internal/models"
)

// CreateUser inserts a new user and fills in its assigned ID and
// timestamps. Duplicate employee_id or email surfaces as a UNIQUE
// constraint error; use IsUniqueViolation to classify it.
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (name, employee_id, email, password_hash, role, status, is_active,
			email_verified, verification_token, verification_expires_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.Name, user.EmployeeID, user.Email, user.PasswordHash, user.Role, user.Status,
		user.IsActive, user.EmailVerified, user.VerificationToken, user.VerificationExpiresAt,
		user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	user.ID = id
	return nil
}

// GetUserByID retrieves a user by ID.
func (r *Repository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE id = ?`, id)
	if err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email address.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE email = ?`, email)
	if err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// GetUserByEmployeeID retrieves a user by employee ID.
func (r *Repository) GetUserByEmployeeID(ctx context.Context, employeeID string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE employee_id = ?`, employeeID)
	if err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// GetUserByVerificationToken retrieves the user holding the given
// verification token. Tokens are cleared on first use, so a consumed
// token no longer resolves.
func (r *Repository) GetUserByVerificationToken(ctx context.Context, token string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE verification_token = ?`, token)
	if err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// MarkEmailVerified sets the verified flag and clears the token pair.
func (r *Repository) MarkEmailVerified(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET email_verified = 1, verification_token = NULL,
			verification_expires_at = NULL, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), id)
	return err
}

// SetVerificationToken replaces the user's verification token and expiry.
// Only one token is active at a time.
func (r *Repository) SetVerificationToken(ctx context.Context, id int64, token string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET verification_token = ?, verification_expires_at = ?, updated_at = ? WHERE id = ?`,
		token, expiresAt, time.Now().UTC(), id)
	return err
}

// SetDecision applies an admin decision, updating status and the
// activity gate together.
func (r *Repository) SetDecision(ctx context.Context, id int64, status models.Status, isActive bool) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET status = ?, is_active = ?, updated_at = ? WHERE id = ?`,
		status, isActive, time.Now().UTC(), id)
	return err
}

// PromoteToAdmin elevates an existing account to an approved, active,
// verified admin in one step.
func (r *Repository) PromoteToAdmin(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET role = ?, status = ?, is_active = 1, email_verified = 1,
			updated_at = ? WHERE id = ?`,
		models.RoleAdmin, models.StatusApproved, time.Now().UTC(), id)
	return err
}

// ListPendingVerifiedUsers returns accounts awaiting an admin decision.
// Only email-verified accounts are surfaced to admins.
func (r *Repository) ListPendingVerifiedUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.SelectContext(ctx, &users,
		`SELECT * FROM users WHERE status = ? AND email_verified = 1 ORDER BY created_at ASC`,
		models.StatusPending)
	if err != nil {
		return nil, err
	}
	return users, nil
}

// CountUsers returns the total number of users.
func (r *Repository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users`)
	return count, err
}

// CountActiveUsers returns the number of users with the activity gate set.
func (r *Repository) CountActiveUsers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users WHERE is_active = 1`)
	return count, err
}

// CountUsersByStatus returns the number of users in the given status.
func (r *Repository) CountUsersByStatus(ctx context.Context, status models.Status) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users WHERE status = ?`, status)
	return count, err
}

// CountAdmins returns the number of admin users.
func (r *Repository) CountAdmins(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users WHERE role = ?`, models.RoleAdmin)
	return count, err
}
