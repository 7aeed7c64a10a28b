package users

import "errors"

var (
	// ErrUserNotFound is returned when no record matches the login handle.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredential is returned when the password does not verify.
	ErrInvalidCredential = errors.New("invalid credential")
	// ErrInvalidEmail is returned for syntactically malformed addresses.
	ErrInvalidEmail = errors.New("invalid email")
	// ErrDuplicateName is returned when the username or email is taken.
	ErrDuplicateName = errors.New("username or email already exists")
	// ErrInvalidRole is returned by SetRole for roles the app does not know.
	ErrInvalidRole = errors.New("invalid role")

	// ErrDuplicateKey is the storage-level uniqueness violation.
	ErrDuplicateKey = errors.New("duplicate key")
)
