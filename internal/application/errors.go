package application

import (
	"errors"

	"github.com/oksasatya/go-ddd-identity/pkg/validation"
)

var (
	ErrDuplicateUserName        = errors.New("user name is already taken")
	ErrDuplicateEmail           = errors.New("email is already taken")
	ErrDuplicateRoleName        = errors.New("role name is already taken")
	ErrUserNotFound             = errors.New("user not found")
	ErrRoleNotFound             = errors.New("role not found")
	ErrPasswordMismatch         = errors.New("incorrect password")
	ErrInvalidTwoFactorCode     = errors.New("invalid two-factor code")
	ErrUnknownTwoFactorProvider = errors.New("unknown two-factor provider")
	ErrNoTwoFactorDestination   = errors.New("no destination for two-factor provider")
)

// ValidationError carries per-field messages for rejected input.
type ValidationError struct {
	Details map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + validation.FormatDetails(e.Details)
}

func invalid(field, msg string) error {
	return &ValidationError{Details: map[string]string{field: msg}}
}
