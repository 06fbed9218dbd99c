// Copyright 2025 Asheer Adnan
// Licensed under the EUPL-1.2

// Package account owns the account lifecycle: registration, email
// verification, the admin approval decision and login checks.
package account

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/asheeradnan/FYP-IIoT-FDI-Detection/internal/models"
	"github.com/asheeradnan/FYP-IIoT-FDI-Detection/internal/repository"
)

const (
	// verificationTokenLength is the number of random bytes in a
	// verification token.
	verificationTokenLength = 32
	// verificationTokenTTL is how long verification tokens are valid.
	verificationTokenTTL = 24 * time.Hour
)

// dummyHash is used for constant-time login to prevent timing attacks.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), bcrypt.DefaultCost)

// Notifier dispatches account lifecycle emails. Sends are
// fire-and-forget from the service's perspective; failures are logged
// and never surfaced to the caller.
type Notifier interface {
	SendVerification(ctx context.Context, toEmail, name, token string) error
	SendApproval(ctx context.Context, toEmail, name string) error
	SendDecline(ctx context.Context, toEmail, name, reason string) error
}

// Service implements the account lifecycle state machine.
type Service struct {
	repo     *repository.Repository
	notifier Notifier
	now      func() time.Time
}

// NewService creates a new account Service.
func NewService(repo *repository.Repository, notifier Notifier) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		now:      time.Now,
	}
}

// RegisterParams holds the parameters for user registration.
type RegisterParams struct {
	Name            string
	EmployeeID      string
	Email           string
	Password        string
	ConfirmPassword string
}

// Register creates a new account in pending, inactive, unverified state
// and dispatches a verification email. The existence checks give
// friendly error messages; the unique indexes on employee_id and email
// remain the authoritative guard against concurrent duplicates.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*models.User, error) {
	if params.Password != params.ConfirmPassword {
		return nil, &ValidationError{Message: "passwords do not match"}
	}

	if _, err := s.repo.GetUserByEmployeeID(ctx, params.EmployeeID); err == nil {
		return nil, &ConflictError{Message: "employee ID already registered"}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check employee ID: %w", err)
	}

	if _, err := s.repo.GetUserByEmail(ctx, params.Email); err == nil {
		return nil, &ConflictError{Message: "email already registered"}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	token, err := newVerificationToken()
	if err != nil {
		return nil, err
	}
	expiresAt := s.now().UTC().Add(verificationTokenTTL)

	user := &models.User{
		Name:                  params.Name,
		EmployeeID:            params.EmployeeID,
		Email:                 params.Email,
		PasswordHash:          string(passwordHash),
		Role:                  models.RoleUser,
		Status:                models.StatusPending,
		IsActive:              false,
		EmailVerified:         false,
		VerificationToken:     &token,
		VerificationExpiresAt: &expiresAt,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if repository.IsUniqueViolation(err, "users.employee_id") {
			return nil, &ConflictError{Message: "employee ID already registered"}
		}
		if repository.IsUniqueViolation(err, "users.email") {
			return nil, &ConflictError{Message: "email already registered"}
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("register_success", "user_id", user.ID, "employee_id", user.EmployeeID)

	s.notify(func(ctx context.Context) error {
		return s.notifier.SendVerification(ctx, user.Email, user.Name, token)
	})

	return user, nil
}

// VerifyOutcome is the result of a successful VerifyEmail call.
type VerifyOutcome int

const (
	// Verified means the email was marked verified and the token consumed.
	Verified VerifyOutcome = iota
	// AlreadyVerified means the account was verified before this call;
	// nothing was mutated.
	AlreadyVerified
)

// VerifyEmail consumes a verification token. It flips the one-way
// email_verified flag and clears the token pair; status and activity
// stay admin-controlled. A token that does not resolve is treated as
// bad input, not a missing resource.
func (s *Service) VerifyEmail(ctx context.Context, token string) (VerifyOutcome, error) {
	user, err := s.repo.GetUserByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, &ValidationError{Message: "invalid verification token"}
		}
		return 0, fmt.Errorf("failed to look up token: %w", err)
	}

	if user.EmailVerified {
		return AlreadyVerified, nil
	}

	if user.VerificationExpiresAt != nil && s.now().After(*user.VerificationExpiresAt) {
		return 0, &ExpiredError{Message: "verification token has expired, please request a new one"}
	}

	if err := s.repo.MarkEmailVerified(ctx, user.ID); err != nil {
		return 0, fmt.Errorf("failed to mark email verified: %w", err)
	}

	slog.Info("email_verified", "user_id", user.ID)
	return Verified, nil
}

// ResendVerification issues a fresh verification token, replacing any
// prior one, and sends a new mail. Unknown emails return nil so the
// endpoint cannot be used to enumerate accounts. An already verified
// email returns a ConflictError; this reveals verification state and is
// a known deviation from the anti-enumeration policy, kept for
// compatibility.
func (s *Service) ResendVerification(ctx context.Context, email string) error {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to look up email: %w", err)
	}

	if user.EmailVerified {
		return &ConflictError{Message: "email is already verified"}
	}

	token, err := newVerificationToken()
	if err != nil {
		return err
	}
	expiresAt := s.now().UTC().Add(verificationTokenTTL)

	if err := s.repo.SetVerificationToken(ctx, user.ID, token, expiresAt); err != nil {
		return fmt.Errorf("failed to store verification token: %w", err)
	}

	s.notify(func(ctx context.Context) error {
		return s.notifier.SendVerification(ctx, user.Email, user.Name, token)
	})

	return nil
}

// Decide applies an admin decision. The transition is unconditional:
// it can be re-applied in any current status, reversing an earlier
// decision, and sends the outcome notification on every call.
func (s *Service) Decide(ctx context.Context, id int64, approved bool, reason string) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Message: "user not found"}
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if approved {
		user.Status = models.StatusApproved
		user.IsActive = true
	} else {
		user.Status = models.StatusDeclined
		user.IsActive = false
	}

	if err := s.repo.SetDecision(ctx, user.ID, user.Status, user.IsActive); err != nil {
		return nil, fmt.Errorf("failed to apply decision: %w", err)
	}

	slog.Info("decision_applied", "user_id", user.ID, "status", user.Status)

	if approved {
		s.notify(func(ctx context.Context) error {
			return s.notifier.SendApproval(ctx, user.Email, user.Name)
		})
	} else {
		s.notify(func(ctx context.Context) error {
			return s.notifier.SendDecline(ctx, user.Email, user.Name, reason)
		})
	}

	return user, nil
}

// Authenticate checks credentials and the full login gate:
// password match, email verified, status approved and activity flag.
// It returns the user for the token service to sign; it does not mint
// a token itself.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Constant-time: always perform a bcrypt comparison so
			// unknown emails take as long as wrong passwords.
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			slog.Warn("login_failed", "email", email, "reason", "user_not_found")
			return nil, &UnauthorizedError{Message: "incorrect email or password"}
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		slog.Warn("login_failed", "email", email, "reason", "invalid_password")
		return nil, &UnauthorizedError{Message: "incorrect email or password"}
	}

	if !user.EmailVerified {
		return nil, &ForbiddenError{
			Reason:  "unverified",
			Message: "please verify your email before logging in",
		}
	}

	if user.Status != models.StatusApproved {
		return nil, &ForbiddenError{
			Reason:  "status:" + string(user.Status),
			Message: fmt.Sprintf("account is %s, please wait for admin approval", user.Status),
		}
	}

	if !user.IsActive {
		return nil, &ForbiddenError{
			Reason:  "inactive",
			Message: "account is inactive",
		}
	}

	slog.Info("login_success", "user_id", user.ID)
	return user, nil
}

// EnsureAdmin creates a bootstrap admin account (approved, active,
// verified) or promotes an existing account with the given email.
func (s *Service) EnsureAdmin(ctx context.Context, name, employeeID, email, password string) (*models.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err == nil {
		if promErr := s.repo.PromoteToAdmin(ctx, user.ID); promErr != nil {
			return nil, fmt.Errorf("failed to promote admin: %w", promErr)
		}
		user.Role = models.RoleAdmin
		user.Status = models.StatusApproved
		user.IsActive = true
		user.EmailVerified = true
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user = &models.User{
		Name:          name,
		EmployeeID:    employeeID,
		Email:         email,
		PasswordHash:  string(passwordHash),
		Role:          models.RoleAdmin,
		Status:        models.StatusApproved,
		IsActive:      true,
		EmailVerified: true,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}

	slog.Info("admin_created", "user_id", user.ID, "email", email)
	return user, nil
}

// notify runs a notification send in the background. Failures are
// logged and swallowed; a failed send never rolls back the state
// change that triggered it.
func (s *Service) notify(send func(ctx context.Context) error) {
	go func() {
		if err := send(context.Background()); err != nil {
			slog.Error("notification_failed", "error", err)
		}
	}()
}

// newVerificationToken generates a URL-safe verification token with
// verificationTokenLength bytes of entropy.
func newVerificationToken() (string, error) {
	bytes := make([]byte, verificationTokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
