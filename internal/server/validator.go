// Copyright 2025 Asheer Adnan
// Licensed under the EUPL-1.2

package server

import (
	"github.com/go-playground/validator/v10"

	"github.com/asheeradnan/FYP-IIoT-FDI-Detection/internal/services/account"
)

// Validator adapts go-playground/validator to echo's Validator
// interface. Struct tag failures surface as ValidationError so the
// error handler maps them to 400.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a request validator.
func NewValidator() *Validator {
	return &Validator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate implements echo.Validator.
func (v *Validator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return &account.ValidationError{Message: err.Error()}
	}
	return nil
}
