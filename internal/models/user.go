// Copyright 2025 Asheer Adnan
// Licensed under the EUPL-1.2

package models

import (
	"time"
)

// Role is the authorization role assigned to a user at creation.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Status tracks where an account is in the admin-approval workflow.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusDeclined Status = "declined"
)

// User is an account record. Login requires a matching password plus
// EmailVerified, StatusApproved and IsActive all at once; IsActive is an
// independent gate, not implied by the status.
type User struct {
	ID                    int64      `db:"id" json:"id"`
	Name                  string     `db:"name" json:"name"`
	EmployeeID            string     `db:"employee_id" json:"employeeId"`
	Email                 string     `db:"email" json:"email"`
	PasswordHash          string     `db:"password_hash" json:"-"`
	Role                  Role       `db:"role" json:"role"`
	Status                Status     `db:"status" json:"status"`
	IsActive              bool       `db:"is_active" json:"isActive"`
	EmailVerified         bool       `db:"email_verified" json:"emailVerified"`
	VerificationToken     *string    `db:"verification_token" json:"-"`
	VerificationExpiresAt *time.Time `db:"verification_expires_at" json:"-"`
	CreatedAt             time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt             time.Time  `db:"updated_at" json:"updatedAt"`
}
