package identity

import (
	"context"

	"github.com/google/uuid"
)

// Provider is the identity-provider contract the auth service and web
// layer depend on. LocalProvider is the production implementation; tests
// substitute mocks.
type Provider interface {
	// SignInWithPassword authenticates with email and password and issues a
	// session. Fails with ErrInvalidCredentials on any credential mismatch
	// and ErrEmailNotConfirmed for unverified accounts.
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)

	// SignUp creates an identity with the supplied provisional metadata and
	// sends an email-verification link. No session is issued until the
	// verification code is exchanged.
	SignUp(ctx context.Context, email, password string, meta Metadata) (*Identity, error)

	// SignInWithOTP issues a session for an existing identity whose email
	// ownership was just proven by OTP. When allowCreate is false a missing
	// identity is an error rather than an implicit registration.
	SignInWithOTP(ctx context.Context, email string, allowCreate bool) (*Session, error)

	// ExchangeCodeForSession consumes an email-verification code, marks the
	// identity verified, and issues a session. A code is single-use.
	ExchangeCodeForSession(ctx context.Context, code string) (*Session, error)

	// SignOut revokes the session behind the token. Unconditional: an
	// already-revoked or expired token is not an error.
	SignOut(ctx context.Context, token string) error

	// GetSession validates the token against both its signature and the
	// server-side revocation record, and loads the identity.
	GetSession(ctx context.Context, token string) (*Session, error)

	// Authenticate verifies the token signature and expiry only, with no
	// storage round trip. This is the hot path used by route middleware;
	// the returned claims may lag a just-updated profile.
	Authenticate(token string) (*Claims, error)

	// UpdateUserMetadata replaces the mirrored metadata claims.
	UpdateUserMetadata(ctx context.Context, id uuid.UUID, meta Metadata) error

	// ResendVerification re-sends the email-verification link for an
	// unverified identity.
	ResendVerification(ctx context.Context, email string) error

	// DeleteUser removes an identity. Used as the compensating action when
	// sign-up provisioning fails half-way.
	DeleteUser(ctx context.Context, id uuid.UUID) error

	// OnAuthStateChange registers a listener for auth events and returns an
	// unsubscribe function.
	OnAuthStateChange(l Listener) (unsubscribe func())
}
