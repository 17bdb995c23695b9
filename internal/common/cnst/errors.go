package cnst

import "errors"

var (
	// ErrNotFound is returned when a referenced row does not exist
	ErrNotFound = errors.New("record not found")
	// ErrValidation is returned when a required field is missing or malformed
	ErrValidation = errors.New("validation failed")
	// ErrInvalidCredentials is the uniform authentication failure; callers
	// cannot distinguish unknown email, wrong password or inactive account
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailTaken is returned when saving a user with an email already in use
	ErrEmailTaken = errors.New("email already in use")
	// ErrSelfAction is returned when a user targets their own account through
	// the administrative user-management path
	ErrSelfAction = errors.New("operation not permitted on own account")
	// ErrPermissionDenied is returned when the caller's level is too low
	ErrPermissionDenied = errors.New("permission denied")
)
