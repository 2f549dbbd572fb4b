// Package identity implements the first-party identity provider: account
// records with password credentials, session issuance backed by signed
// access tokens, email-verification code exchange, and auth-state change
// notifications. The rest of the application talks to it through the
// Provider interface and never touches password material directly.
package identity

import (
	"time"

	"github.com/google/uuid"
)

// Metadata holds denormalized profile claims mirrored into the identity
// record and embedded in session tokens, so the route middleware can read
// role and name without a storage round trip. The source of truth is the
// profile row; this copy may be briefly stale after a profile update.
type Metadata struct {
	Role        string `json:"role,omitempty"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	StudentID   string `json:"student_id,omitempty"`
	Faculty     string `json:"faculty,omitempty"`
	YearOfStudy int    `json:"year_of_study,omitempty"`
	Phone       string `json:"phone,omitempty"`
}

// Identity is the provider-owned account record.
type Identity struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"email_verified"`
	Metadata      Metadata  `json:"metadata"`
	CreatedAt     time.Time `json:"created_at"`
}

// Claims are the fields embedded in an access token.
type Claims struct {
	IdentityID uuid.UUID
	Email      string
	Role       string
	FirstName  string
	LastName   string
}

// Session is a short-lived proof of authentication.
type Session struct {
	Token     string    `json:"token"`
	Identity  *Identity `json:"identity"`
	Claims    Claims    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}

// sessionRecord is the server-side revocation row backing an access token.
type sessionRecord struct {
	ID         uuid.UUID
	IdentityID uuid.UUID
	CreatedAt  time.Time
	ExpiresAt  time.Time
	RevokedAt  *time.Time
}

func (r *sessionRecord) active(now time.Time) bool {
	return r != nil && r.RevokedAt == nil && now.Before(r.ExpiresAt)
}

// EventKind identifies an auth-state change notification.
type EventKind string

const (
	EventSignedIn    EventKind = "SIGNED_IN"
	EventSignedOut   EventKind = "SIGNED_OUT"
	EventUserUpdated EventKind = "USER_UPDATED"
)

// Listener receives auth-state change events. The session is nil when the
// event carries no token, such as sign-out or a metadata update.
type Listener func(kind EventKind, session *Session)
