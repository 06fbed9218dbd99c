// Copyright 2025 Asheer Adnan
// Licensed under the EUPL-1.2

package account

import "fmt"

// ValidationError reports malformed or mismatched input. Maps to HTTP 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ConflictError reports a uniqueness or state conflict. Maps to HTTP 400.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// NotFoundError reports that a record does not resolve. Maps to HTTP 404.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// ExpiredError reports a verification token past its expiry. Maps to HTTP 400.
type ExpiredError struct {
	Message string
}

func (e *ExpiredError) Error() string { return e.Message }

// UnauthorizedError reports that no identity could be established.
// The same message is used for unknown email and wrong password so the
// response does not reveal account existence. Maps to HTTP 401.
type UnauthorizedError struct {
	Message string
}

func (e *UnauthorizedError) Error() string { return e.Message }

// ForbiddenError reports that an established identity is not allowed to
// proceed. Reason is a stable code (unverified, status:<value>, inactive,
// role); Message is the human-readable text. Maps to HTTP 403.
type ForbiddenError struct {
	Reason  string
	Message string
}

func (e *ForbiddenError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("forbidden: %s", e.Reason)
}
