package otp

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/ocemtechies/memberhub/pkg/logger"
	"github.com/ocemtechies/memberhub/pkg/sanitizer"
)

// DefaultTTL is the code lifetime when none is configured.
const DefaultTTL = 10 * time.Minute

// Service generates and verifies one-time passcodes.
type Service struct {
	repo Repository
	ttl  time.Duration
	log  *slog.Logger
}

// ServiceOption configures the Service.
type ServiceOption func(*Service)

// WithTTL overrides the default code lifetime.
func WithTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithLogger sets the logger used by the expiry sweeper.
func WithLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

func NewService(repo Repository, opts ...ServiceOption) *Service {
	s := &Service{
		repo: repo,
		ttl:  DefaultTTL,
		log:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("otp"))
	return s
}

// Generate creates a fresh six-digit code for (email, type) and stores it,
// replacing any previous code for the pair. The returned code is handed to
// the mail layer; it is never logged.
func (s *Service) Generate(ctx context.Context, email string, typ Type) (string, error) {
	if !typ.Valid() {
		return "", ErrInvalidType
	}
	email = sanitizer.NormalizeEmail(email)
	if !strings.Contains(email, "@") {
		return "", ErrInvalidEmail
	}

	code, err := randomCode()
	if err != nil {
		return "", err
	}

	now := time.Now()
	if err := s.repo.Upsert(ctx, Code{
		Email:     email,
		Type:      typ,
		Code:      code,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}); err != nil {
		return "", err
	}

	return code, nil
}

// Verify consumes the code if it matches, is unused, and has not expired.
// The boolean result carries no detail about which check failed, so the
// endpoint cannot be used to probe stored codes.
func (s *Service) Verify(ctx context.Context, email string, typ Type, code string) (bool, error) {
	if !typ.Valid() {
		return false, ErrInvalidType
	}
	email = sanitizer.NormalizeEmail(email)

	return s.repo.Consume(ctx, email, typ, code, time.Now())
}

// SweepExpired deletes codes past their expiry.
func (s *Service) SweepExpired(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpired(ctx, time.Now())
}

// RunSweeper periodically prunes expired codes until the context is
// cancelled. Intended to run in its own goroutine.
func (s *Service) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := s.SweepExpired(ctx)
			if err != nil {
				s.log.ErrorContext(ctx, "failed to sweep expired otp codes", logger.Error(err))
				continue
			}
			if deleted > 0 {
				s.log.DebugContext(ctx, "swept expired otp codes", slog.Int64("deleted", deleted))
			}
		}
	}
}

// randomCode draws a uniform six-digit code from crypto/rand.
func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("failed to generate otp code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
