package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ocemtechies/memberhub/pkg/pg"
)

// PgStore implements Store over the identities and identity_sessions
// tables.
type PgStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PgStore)(nil)

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

const identityColumns = `id, email, email_verified, metadata, created_at`

func (s *PgStore) CreateIdentity(ctx context.Context, email, passwordHash string, meta Metadata) (*Identity, error) {
	identity := &Identity{
		ID:        uuid.New(),
		Email:     email,
		Metadata:  meta,
		CreatedAt: time.Now(),
	}

	query := `INSERT INTO identities (id, email, password_hash, email_verified, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := s.pool.Exec(ctx, query,
		identity.ID, identity.Email, passwordHash,
		identity.EmailVerified, identity.Metadata, identity.CreatedAt,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return nil, ErrAlreadyRegistered
		}
		return nil, fmt.Errorf("failed to create identity: %w", err)
	}

	return identity, nil
}

func (s *PgStore) GetIdentityByID(ctx context.Context, id uuid.UUID) (*Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM identities WHERE id = $1`
	return s.scanIdentity(ctx, query, id)
}

func (s *PgStore) GetIdentityByEmail(ctx context.Context, email string) (*Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM identities WHERE email = $1`
	return s.scanIdentity(ctx, query, email)
}

func (s *PgStore) GetPasswordHash(ctx context.Context, id uuid.UUID) (string, error) {
	var hash string
	err := s.pool.QueryRow(ctx, `SELECT password_hash FROM identities WHERE id = $1`, id).Scan(&hash)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return "", ErrIdentityNotFound
		}
		return "", fmt.Errorf("failed to query password hash: %w", err)
	}
	return hash, nil
}

func (s *PgStore) MarkEmailVerified(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `UPDATE identities SET email_verified = true WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark email verified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrIdentityNotFound
	}
	return nil
}

func (s *PgStore) UpdateMetadata(ctx context.Context, id uuid.UUID, meta Metadata) error {
	tag, err := s.pool.Exec(ctx, `UPDATE identities SET metadata = $1 WHERE id = $2`, meta, id)
	if err != nil {
		return fmt.Errorf("failed to update identity metadata: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrIdentityNotFound
	}
	return nil
}

func (s *PgStore) DeleteIdentity(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM identities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete identity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrIdentityNotFound
	}
	return nil
}

func (s *PgStore) CreateSession(ctx context.Context, identityID uuid.UUID, expiresAt time.Time) (*sessionRecord, error) {
	record := &sessionRecord{
		ID:         uuid.New(),
		IdentityID: identityID,
		CreatedAt:  time.Now(),
		ExpiresAt:  expiresAt,
	}

	query := `INSERT INTO identity_sessions (id, identity_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4)`

	_, err := s.pool.Exec(ctx, query, record.ID, record.IdentityID, record.CreatedAt, record.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return record, nil
}

func (s *PgStore) GetSession(ctx context.Context, id uuid.UUID) (*sessionRecord, error) {
	record := &sessionRecord{}
	query := `SELECT id, identity_id, created_at, expires_at, revoked_at
		FROM identity_sessions WHERE id = $1`

	err := s.pool.QueryRow(ctx, query, id).Scan(
		&record.ID, &record.IdentityID, &record.CreatedAt, &record.ExpiresAt, &record.RevokedAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	return record, nil
}

func (s *PgStore) RevokeSession(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE identity_sessions SET revoked_at = now() WHERE id = $1 AND revoked_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

func (s *PgStore) RevokeIdentitySessions(ctx context.Context, identityID uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE identity_sessions SET revoked_at = now() WHERE identity_id = $1 AND revoked_at IS NULL`, identityID)
	if err != nil {
		return fmt.Errorf("failed to revoke identity sessions: %w", err)
	}
	return nil
}

func (s *PgStore) scanIdentity(ctx context.Context, query string, args ...any) (*Identity, error) {
	identity := &Identity{}
	err := s.pool.QueryRow(ctx, query, args...).Scan(
		&identity.ID, &identity.Email, &identity.EmailVerified,
		&identity.Metadata, &identity.CreatedAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrIdentityNotFound
		}
		return nil, fmt.Errorf("failed to query identity: %w", err)
	}
	return identity, nil
}
