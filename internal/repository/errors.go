package repository

import "errors"

// Common repository errors
var (
	// ErrNotFound is returned when a record is not found
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateEmail is returned when the email is already owned by another user
	ErrDuplicateEmail = errors.New("user with this email already exists")

	// ErrDuplicateWPUser is returned when the WordPress user id is already registered
	ErrDuplicateWPUser = errors.New("user with this wordpress id already exists")
)
