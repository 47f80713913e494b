package xerrors

import (
	"errors"
	"fmt"
)

// Application error kinds. Every error the service surfaces to callers wraps
// exactly one of these sentinels, so handlers can branch with errors.Is and
// map each kind to one stable code.
var (
	ErrValidation         = errors.New("invalid input")
	ErrEmailExists        = errors.New("email already in use")
	ErrNicknameExists     = errors.New("nickname already in use")
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrAccountLocked      = errors.New("account locked")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUnauthorized       = errors.New("unauthorized access")
	ErrForbidden          = errors.New("forbidden")
	ErrEmailDelivery      = errors.New("account created but notification failed")
	ErrRateLimited        = errors.New("too many requests")
	ErrInternal           = errors.New("internal server error")
)

// Code returns the stable, enumerable code for an error kind. Unrecognized
// errors are reported as INTERNAL_ERROR so infrastructure detail never leaks.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "VALIDATION_ERROR"
	case errors.Is(err, ErrEmailExists):
		return "EMAIL_EXISTS"
	case errors.Is(err, ErrNicknameExists):
		return "NICKNAME_EXISTS"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrInvalidCredentials):
		return "INVALID_CREDENTIALS"
	case errors.Is(err, ErrEmailNotVerified):
		return "EMAIL_NOT_VERIFIED"
	case errors.Is(err, ErrAccountLocked):
		return "ACCOUNT_LOCKED"
	case errors.Is(err, ErrInvalidToken):
		return "INVALID_TOKEN"
	case errors.Is(err, ErrUnauthorized):
		return "UNAUTHORIZED"
	case errors.Is(err, ErrForbidden):
		return "FORBIDDEN"
	case errors.Is(err, ErrEmailDelivery):
		return "ACCOUNT_CREATED_EMAIL_FAILED"
	case errors.Is(err, ErrRateLimited):
		return "RATE_LIMITED"
	default:
		return "INTERNAL_ERROR"
	}
}

// Validation wraps ErrValidation with a field-specific reason.
func Validation(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Wrap adds context to an error (similar to fmt.Errorf("%w")).
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is allows checking whether an error is a specific sentinel error.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
