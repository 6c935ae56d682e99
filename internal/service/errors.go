package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials covers unknown email, wrong password and invalid
	// or revoked tokens without distinguishing between them.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidUpdate is returned when an update names a field outside the
	// resource's mutable-field whitelist. Nothing is applied.
	ErrInvalidUpdate = errors.New("invalid update fields")
	// ErrNotFound covers both a missing resource and a resource owned by a
	// different user.
	ErrNotFound = errors.New("not found")
	// ErrAvatarNotFound is returned when clearing or fetching an avatar that
	// was never set.
	ErrAvatarNotFound = errors.New("avatar not set")
)

// ValidationError rejects malformed or disallowed input before any mutation.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func validationf(format string, args ...any) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
