package auth

import "errors"

// Error kinds surfaced by Service and TokenManager. Returned errors wrap one
// of these, so callers match with errors.Is.
var (
	ErrValidation         = errors.New("validation failed")
	ErrDuplicateEmail     = errors.New("student already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("student not found")
	ErrTokenInvalid       = errors.New("token is not valid")
	ErrTokenExpired       = errors.New("token has expired")
	ErrStoreUnavailable   = errors.New("credential store unavailable")
)
