package cookie

import "errors"

var (
	ErrNoSecret         = errors.New("at least one signing secret is required")
	ErrSecretTooShort   = errors.New("signing secret is too short")
	ErrCookieNotFound   = errors.New("cookie not found")
	ErrInvalidSignature = errors.New("cookie signature is invalid")
)
