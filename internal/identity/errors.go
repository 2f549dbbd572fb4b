package identity

import "errors"

// Credential errors carry the exact message strings the web layer's
// translation table keys on, mirroring what the auth backend emits on the
// wire.
var (
	ErrInvalidCredentials = errors.New("Invalid login credentials")
	ErrEmailNotConfirmed  = errors.New("Email not confirmed")
	ErrAlreadyRegistered  = errors.New("User already registered")
)

var (
	ErrIdentityNotFound = errors.New("identity not found")
	ErrSessionNotFound  = errors.New("session not found or revoked")
	ErrTokenExpired     = errors.New("token expired")
	ErrTokenInvalid     = errors.New("invalid token")
	ErrCodeInvalid      = errors.New("verification code is invalid or expired")
	ErrCodeUsed         = errors.New("verification code already used")
)
