package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ocemtechies/memberhub/internal/email"
	"github.com/ocemtechies/memberhub/internal/profile"
	"github.com/ocemtechies/memberhub/pkg/logger"
)

// Service wraps the repository with capacity enforcement and registration
// confirmation mail.
type Service struct {
	repo     Repository
	profiles profile.Repository
	sender   email.Sender
	log      *slog.Logger
}

func NewService(repo Repository, profiles profile.Repository, sender email.Sender, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		repo:     repo,
		profiles: profiles,
		sender:   sender,
		log:      log.With(logger.Component("events")),
	}
}

// ListUpcoming returns future events in date order.
func (s *Service) ListUpcoming(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.ListUpcoming(ctx, time.Now(), limit)
}

// Get loads a single event.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Event, error) {
	return s.repo.GetByID(ctx, id)
}

// Register signs a member up for an event, enforcing capacity, and sends
// a confirmation email. The capacity check races with concurrent
// registrations; slight oversubscription is acceptable for club events.
func (s *Service) Register(ctx context.Context, eventID, userID uuid.UUID) (*Registration, error) {
	event, err := s.repo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if event.Capacity > 0 {
		count, err := s.repo.CountRegistrations(ctx, eventID)
		if err != nil {
			return nil, err
		}
		if count >= event.Capacity {
			return nil, ErrEventFull
		}
	}

	reg, err := s.repo.Register(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}

	s.sendConfirmation(ctx, event, userID)
	return reg, nil
}

// Cancel removes a member's registration.
func (s *Service) Cancel(ctx context.Context, eventID, userID uuid.UUID) error {
	return s.repo.CancelRegistration(ctx, eventID, userID)
}

// ListUserRegistrations returns a member's registrations, newest first.
func (s *Service) ListUserRegistrations(ctx context.Context, userID uuid.UUID) ([]Registration, error) {
	return s.repo.ListUserRegistrations(ctx, userID)
}

func (s *Service) sendConfirmation(ctx context.Context, event *Event, userID uuid.UUID) {
	prof, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		s.log.WarnContext(ctx, "failed to load profile for confirmation email",
			logger.Error(err), logger.UserID(userID))
		return
	}
	if !prof.NotificationPreferences.Email {
		return
	}

	params := email.EventRegistrationMessage(
		prof.Email, prof.FullName(), event.Title,
		event.EventDate.Format("Monday, 2 January 2006 at 15:04"), event.Venue)
	if err := s.sender.Send(ctx, params); err != nil {
		s.log.WarnContext(ctx, "failed to send registration confirmation",
			logger.Error(err), logger.UserID(userID))
	}
}
