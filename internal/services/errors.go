package services

import "errors"

// Caller-visible failure kinds. Handlers map these to HTTP statuses; they are
// never coerced into each other, and each one rolls back the transaction of
// the operation that produced it.
var (
	ErrInvalidEmailDomain = errors.New("email outside the allowed domain")
	ErrUsernameTaken      = errors.New("username already registered")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrOtpNotFound        = errors.New("no active code")
	ErrCodeExpired        = errors.New("code expired")
	ErrCodeInvalid        = errors.New("code invalid")
	ErrRateLimited        = errors.New("too many codes requested")
	ErrNotVerified        = errors.New("email not verified")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthorized       = errors.New("unauthorized")
)
