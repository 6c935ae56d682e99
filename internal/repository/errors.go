package repository

import "errors"

var (
	// ErrNotFound is returned when a record does not exist, or when an
	// ownership predicate excludes it; callers cannot tell the two apart.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail is returned when creating or updating a user would
	// violate the unique email constraint.
	ErrDuplicateEmail = errors.New("email already registered")
)
