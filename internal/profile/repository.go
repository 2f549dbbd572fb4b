package profile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ocemtechies/memberhub/pkg/pg"
)

// Repository defines profile persistence over the users table.
type Repository interface {
	Create(ctx context.Context, p *Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	GetByEmail(ctx context.Context, email string) (*Profile, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Profile, error)
}

// PgRepository implements Repository over a pgx connection pool.
type PgRepository struct {
	pool *pgxpool.Pool
}

var _ Repository = (*PgRepository)(nil)

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const profileColumns = `id, email, first_name, last_name, role, student_id, faculty,
	year_of_study, phone, profile_image_url, bio, notification_preferences, created_at, updated_at`

func (r *PgRepository) Create(ctx context.Context, p *Profile) error {
	if !p.Role.Valid() {
		return ErrInvalidRole
	}

	query := `INSERT INTO users (` + profileColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := r.pool.Exec(ctx, query,
		p.ID, p.Email, p.FirstName, p.LastName, p.Role,
		p.StudentID, p.Faculty, p.YearOfStudy, p.Phone,
		p.ProfileImageURL, p.Bio, p.NotificationPreferences,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return ErrProfileExists
		}
		return fmt.Errorf("failed to create profile: %w", err)
	}

	return nil
}

func (r *PgRepository) GetByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM users WHERE id = $1`
	return r.scanOne(ctx, query, id)
}

func (r *PgRepository) GetByEmail(ctx context.Context, email string) (*Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM users WHERE email = $1`
	return r.scanOne(ctx, query, email)
}

// Update applies a partial update, stamping updated_at. The SET clause is
// built only from non-nil params so untouched columns keep their values.
func (r *PgRepository) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Profile, error) {
	if params.Empty() {
		return nil, ErrEmptyUpdate
	}

	set := make([]string, 0, 9)
	args := make([]any, 0, 10)

	add := func(column string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if params.FirstName != nil {
		add("first_name", *params.FirstName)
	}
	if params.LastName != nil {
		add("last_name", *params.LastName)
	}
	if params.StudentID != nil {
		add("student_id", *params.StudentID)
	}
	if params.Faculty != nil {
		add("faculty", *params.Faculty)
	}
	if params.YearOfStudy != nil {
		add("year_of_study", *params.YearOfStudy)
	}
	if params.Phone != nil {
		add("phone", *params.Phone)
	}
	if params.ProfileImageURL != nil {
		add("profile_image_url", *params.ProfileImageURL)
	}
	if params.Bio != nil {
		add("bio", *params.Bio)
	}
	if params.NotificationPreferences != nil {
		add("notification_preferences", *params.NotificationPreferences)
	}
	add("updated_at", time.Now())

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d RETURNING `+profileColumns,
		strings.Join(set, ", "), len(args))

	return r.scanOne(ctx, query, args...)
}

func (r *PgRepository) scanOne(ctx context.Context, query string, args ...any) (*Profile, error) {
	p := &Profile{}
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&p.ID, &p.Email, &p.FirstName, &p.LastName, &p.Role,
		&p.StudentID, &p.Faculty, &p.YearOfStudy, &p.Phone,
		&p.ProfileImageURL, &p.Bio, &p.NotificationPreferences,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to query profile: %w", err)
	}
	return p, nil
}
