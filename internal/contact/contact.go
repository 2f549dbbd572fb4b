// Package contact stores contact-form submissions and forwards them to
// the club admins.
package contact

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ocemtechies/memberhub/internal/email"
	"github.com/ocemtechies/memberhub/pkg/logger"
	"github.com/ocemtechies/memberhub/pkg/sanitizer"
)

var ErrInvalidMessage = errors.New("name, email, subject, and message are required")

// Message is a single contact-form submission.
type Message struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Repository persists contact messages.
type Repository interface {
	Create(ctx context.Context, msg *Message) error
}

// PgRepository implements Repository over the contact_messages table.
type PgRepository struct {
	pool *pgxpool.Pool
}

var _ Repository = (*PgRepository)(nil)

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) Create(ctx context.Context, msg *Message) error {
	query := `INSERT INTO contact_messages (id, name, email, subject, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query,
		msg.ID, msg.Name, msg.Email, msg.Subject, msg.Message, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to store contact message: %w", err)
	}
	return nil
}

// Service validates, stores, and forwards submissions. The admin forward
// is best effort: a stored message is already actionable.
type Service struct {
	repo       Repository
	sender     email.Sender
	adminEmail string
	log        *slog.Logger
}

func NewService(repo Repository, sender email.Sender, adminEmail string, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		repo:       repo,
		sender:     sender,
		adminEmail: adminEmail,
		log:        log.With(logger.Component("contact")),
	}
}

func (s *Service) Submit(ctx context.Context, name, fromEmail, subject, body string) (*Message, error) {
	name = strings.TrimSpace(name)
	subject = strings.TrimSpace(subject)
	body = strings.TrimSpace(body)
	fromEmail = sanitizer.NormalizeEmail(fromEmail)

	if name == "" || subject == "" || body == "" || !strings.Contains(fromEmail, "@") {
		return nil, ErrInvalidMessage
	}

	msg := &Message{
		ID:        uuid.New(),
		Name:      name,
		Email:     fromEmail,
		Subject:   subject,
		Message:   body,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, err
	}

	params := email.ContactNotificationMessage(s.adminEmail, name, fromEmail, subject, body)
	if err := s.sender.Send(ctx, params); err != nil {
		s.log.WarnContext(ctx, "failed to forward contact message", logger.Error(err))
	}

	return msg, nil
}
