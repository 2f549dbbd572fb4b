package otp

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists one-time passcodes.
type Repository interface {
	// Upsert stores a code for (email, type), replacing any previous code
	// for the same pair regardless of its state.
	Upsert(ctx context.Context, code Code) error

	// Consume atomically marks the matching unused, unexpired code as used.
	// It reports false when no such code exists, without revealing why.
	Consume(ctx context.Context, email string, typ Type, code string, now time.Time) (bool, error)

	// DeleteExpired removes codes past their expiry and returns how many
	// were deleted.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// PgRepository implements Repository over the otp_codes table.
type PgRepository struct {
	pool *pgxpool.Pool
}

var _ Repository = (*PgRepository)(nil)

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) Upsert(ctx context.Context, code Code) error {
	query := `INSERT INTO otp_codes (email, type, code, used, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (email, type) DO UPDATE
		SET code = EXCLUDED.code, used = EXCLUDED.used,
			expires_at = EXCLUDED.expires_at, created_at = EXCLUDED.created_at`

	_, err := r.pool.Exec(ctx, query,
		code.Email, code.Type, code.Code, code.Used, code.ExpiresAt, code.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert otp code: %w", err)
	}
	return nil
}

func (r *PgRepository) Consume(ctx context.Context, email string, typ Type, code string, now time.Time) (bool, error) {
	// A single conditional UPDATE is the compare-and-swap: concurrent
	// verifications race on the used flag and exactly one wins.
	query := `UPDATE otp_codes SET used = true
		WHERE email = $1 AND type = $2 AND code = $3
			AND used = false AND expires_at > $4`

	tag, err := r.pool.Exec(ctx, query, email, typ, code, now)
	if err != nil {
		return false, fmt.Errorf("failed to consume otp code: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PgRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM otp_codes WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired otp codes: %w", err)
	}
	return tag.RowsAffected(), nil
}
