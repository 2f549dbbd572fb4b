package auth

import "errors"

// Application-level auth failures use short stable codes as their error
// text. UserMessage translates both these codes and the provider's wire
// messages into user-facing copy.
var (
	ErrNoUserProfile       = errors.New("NO_USER_PROFILE")
	ErrInvalidRole         = errors.New("INVALID_ROLE")
	ErrProfileCreateFailed = errors.New("PROFILE_CREATE_FAILED")
	ErrSessionExpired      = errors.New("SESSION_EXPIRED")
	ErrWeakPassword        = errors.New("Password is too weak")
)

// userMessages keys on the exact error text, never on error identity, so
// provider errors and application codes translate through one table.
var userMessages = map[string]string{
	"Invalid login credentials":            "Invalid email or password",
	"Email not confirmed":                  "Please verify your email address before signing in",
	"User already registered":              "An account with this email already exists",
	"Password is too weak":                 "Password must be at least 8 characters long and contain at least one number and one special character",
	"Email link is invalid or has expired": "The email link has expired. Please request a new one",

	"NO_USER_PROFILE":       "User profile not found. Please contact support",
	"INVALID_ROLE":          "Invalid user role",
	"PROFILE_CREATE_FAILED": "Failed to create user profile",
	"SESSION_EXPIRED":       "Your session has expired. Please sign in again",
}

// UserMessage maps an error to the copy shown to the user. Unknown errors
// pass through verbatim so upstream messages are not hidden; a nil or
// empty error yields a generic fallback.
func UserMessage(err error) string {
	if err == nil {
		return "An unknown error occurred"
	}
	if msg, ok := userMessages[err.Error()]; ok {
		return msg
	}
	if err.Error() == "" {
		return "An unexpected error occurred"
	}
	return err.Error()
}
