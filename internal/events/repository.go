package events

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ocemtechies/memberhub/pkg/pg"
)

// Repository persists events and registrations.
type Repository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*Event, error)
	ListUpcoming(ctx context.Context, now time.Time, limit int) ([]Event, error)
	Register(ctx context.Context, eventID, userID uuid.UUID) (*Registration, error)
	CancelRegistration(ctx context.Context, eventID, userID uuid.UUID) error
	CountRegistrations(ctx context.Context, eventID uuid.UUID) (int, error)
	ListUserRegistrations(ctx context.Context, userID uuid.UUID) ([]Registration, error)
}

// PgRepository implements Repository over the events and
// event_registrations tables.
type PgRepository struct {
	pool *pgxpool.Pool
}

var _ Repository = (*PgRepository)(nil)

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const eventColumns = `id, title, description, event_date, venue, capacity, created_by, created_at`

func (r *PgRepository) Create(ctx context.Context, event *Event) error {
	query := `INSERT INTO events (` + eventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		event.ID, event.Title, event.Description, event.EventDate,
		event.Venue, event.Capacity, event.CreatedBy, event.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

func (r *PgRepository) GetByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	event := &Event{}
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&event.ID, &event.Title, &event.Description, &event.EventDate,
		&event.Venue, &event.Capacity, &event.CreatedBy, &event.CreatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to query event: %w", err)
	}
	return event, nil
}

func (r *PgRepository) ListUpcoming(ctx context.Context, now time.Time, limit int) ([]Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events
		WHERE event_date >= $1 ORDER BY event_date ASC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Event, error) {
		var event Event
		err := row.Scan(&event.ID, &event.Title, &event.Description, &event.EventDate,
			&event.Venue, &event.Capacity, &event.CreatedBy, &event.CreatedAt)
		return event, err
	})
}

func (r *PgRepository) Register(ctx context.Context, eventID, userID uuid.UUID) (*Registration, error) {
	reg := &Registration{
		ID:           uuid.New(),
		EventID:      eventID,
		UserID:       userID,
		RegisteredAt: time.Now(),
	}

	query := `INSERT INTO event_registrations (id, event_id, user_id, registered_at)
		VALUES ($1, $2, $3, $4)`

	_, err := r.pool.Exec(ctx, query, reg.ID, reg.EventID, reg.UserID, reg.RegisteredAt)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return nil, ErrAlreadyRegistered
		}
		if pg.IsForeignKeyViolationError(err) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to register for event: %w", err)
	}
	return reg, nil
}

func (r *PgRepository) CancelRegistration(ctx context.Context, eventID, userID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM event_registrations WHERE event_id = $1 AND user_id = $2`, eventID, userID)
	if err != nil {
		return fmt.Errorf("failed to cancel registration: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRegistrationNotFound
	}
	return nil
}

func (r *PgRepository) CountRegistrations(ctx context.Context, eventID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM event_registrations WHERE event_id = $1`, eventID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count registrations: %w", err)
	}
	return count, nil
}

func (r *PgRepository) ListUserRegistrations(ctx context.Context, userID uuid.UUID) ([]Registration, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, event_id, user_id, registered_at FROM event_registrations
			WHERE user_id = $1 ORDER BY registered_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}
	defer rows.Close()

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Registration, error) {
		var reg Registration
		err := row.Scan(&reg.ID, &reg.EventID, &reg.UserID, &reg.RegisteredAt)
		return reg, err
	})
}
