package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store persists identities and their server-side session records.
type Store interface {
	CreateIdentity(ctx context.Context, email, passwordHash string, meta Metadata) (*Identity, error)
	GetIdentityByID(ctx context.Context, id uuid.UUID) (*Identity, error)
	GetIdentityByEmail(ctx context.Context, email string) (*Identity, error)
	GetPasswordHash(ctx context.Context, id uuid.UUID) (string, error)
	MarkEmailVerified(ctx context.Context, id uuid.UUID) error
	UpdateMetadata(ctx context.Context, id uuid.UUID, meta Metadata) error
	DeleteIdentity(ctx context.Context, id uuid.UUID) error

	CreateSession(ctx context.Context, identityID uuid.UUID, expiresAt time.Time) (*sessionRecord, error)
	GetSession(ctx context.Context, id uuid.UUID) (*sessionRecord, error)
	RevokeSession(ctx context.Context, id uuid.UUID) error
	RevokeIdentitySessions(ctx context.Context, identityID uuid.UUID) error
}
