// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package validate collects field-level input errors for account, login and
// role profile requests and folds them into one [apperr.AppError].
//
// Rules run in the service layer or at the handler edge. Storage never
// validates.
package validate

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/taibuivan/helphub/internal/platform/apperr"
	"github.com/taibuivan/helphub/pkg/username"
)

// # Field Limits

const (
	// MaxSecretBytes is the bcrypt input limit. Longer secrets are rejected
	// instead of being silently truncated.
	MaxSecretBytes = 72
	// MaxRoleNameLength bounds a role profile name.
	MaxRoleNameLength = 64
	// MaxDisplayNameLength bounds an account display name.
	MaxDisplayNameLength = 100
	// MaxDescriptionLength bounds a role profile description.
	MaxDescriptionLength = 500
)

var (
	// ErrInvalidJSON is returned when the request body cannot be decoded.
	ErrInvalidJSON = apperr.ValidationError("Invalid JSON payload")
)

// Validator collects field-level validation errors via a chainable API.
//
// Validator is not safe for concurrent use. Create one per request.
type Validator struct {
	errs []apperr.FieldError
}

// Required fails if the trimmed value is empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.add(field, "This field is required")
	}
	return v
}

// MaxLen fails if the Unicode character count exceeds max.
func (v *Validator) MaxLen(field, value string, max int) *Validator {
	if utf8.RuneCountInString(value) > max {
		v.add(field, fmt.Sprintf("Maximum %d characters", max))
	}
	return v
}

// Email fails if a non-blank value is not an RFC 5322 address. Blank means
// "no email on file" and passes.
func (v *Validator) Email(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		return v
	}
	if _, err := mail.ParseAddress(value); err != nil {
		v.add(field, "Must be a valid email address")
	}
	return v
}

// Username checks a canonical username (see [username.Canonical]). It
// reports one error per field: missing or malformed.
func (v *Validator) Username(field, canonical string) *Validator {
	switch {
	case canonical == "":
		v.add(field, "This field is required")
	case !username.Valid(canonical):
		v.add(field, fmt.Sprintf("Must be %d-%d letters, digits, '.', '_' or '-'", username.MinLength, username.MaxLength))
	}
	return v
}

// Secret checks a plaintext secret before it is hashed.
func (v *Validator) Secret(field, secret string) *Validator {
	switch {
	case secret == "":
		v.add(field, "This field is required")
	case len(secret) > MaxSecretBytes:
		v.add(field, fmt.Sprintf("Must be at most %d bytes", MaxSecretBytes))
	}
	return v
}

// RoleName checks a role profile name as it will be stored, after trimming.
func (v *Validator) RoleName(field, name string) *Validator {
	trimmed := strings.TrimSpace(name)
	switch {
	case trimmed == "":
		v.add(field, "This field is required")
	case utf8.RuneCountInString(trimmed) > MaxRoleNameLength:
		v.add(field, fmt.Sprintf("Maximum %d characters", MaxRoleNameLength))
	}
	return v
}

// Custom adds a failure with a custom message if the condition is true.
func (v *Validator) Custom(field string, failed bool, message string) *Validator {
	if failed {
		v.add(field, message)
	}
	return v
}

// Err returns a VALIDATION_ERROR carrying every failed rule, or nil.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return apperr.ValidationError("Validation failed", v.errs...)
}

// HasErrors reports whether any validation rule has failed so far.
func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

func (v *Validator) add(field, message string) {
	v.errs = append(v.errs, apperr.FieldError{Field: field, Message: message})
}

// RequiredError is a shortcut to create a single-field validation error.
func RequiredError(field, message string) *apperr.AppError {
	return apperr.ValidationError("Validation failed", apperr.FieldError{
		Field:   field,
		Message: message,
	})
}
