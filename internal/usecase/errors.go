package usecase

import "errors"

var (
	// ErrValidation indicates the supplied input failed a format or length rule.
	ErrValidation = errors.New("validation failed")
	// ErrUserNotFound indicates no account matches the given identifier.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken indicates another account already owns the email address.
	ErrEmailTaken = errors.New("email already in use")
	// ErrSessionNotFound indicates the session key does not resolve to a live session.
	ErrSessionNotFound = errors.New("session not found")
	// ErrInvalidCredentials indicates the email/password pair does not match an account.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrMissingPasswordHash indicates an account record carries no stored credential.
	ErrMissingPasswordHash = errors.New("account has no password hash")
)
