package auth

import (
	"context"
	"log/slog"

	"github.com/ocemtechies/memberhub/internal/email"
	"github.com/ocemtechies/memberhub/internal/notifications"
	"github.com/ocemtechies/memberhub/internal/profile"
	"github.com/ocemtechies/memberhub/pkg/logger"
)

// WelcomeHook greets a newly registered member: an in-app notification
// and a welcome email, each gated on the member's notification
// preferences. Failures are logged, never surfaced to the registration.
func WelcomeHook(notes notifications.Repository, sender email.Sender, log *slog.Logger) AfterSignUpHook {
	if log == nil {
		log = slog.Default()
	}

	return func(ctx context.Context, p *profile.Profile) {
		if p.NotificationPreferences.InApp {
			err := notes.Create(ctx, &notifications.Notification{
				UserID: p.ID,
				Title:  "Welcome to OCEM Techies!",
				Body:   "Explore events, resources, and connect with fellow techies.",
			})
			if err != nil {
				log.WarnContext(ctx, "failed to create welcome notification",
					logger.Error(err), logger.UserID(p.ID))
			}
		}

		if p.NotificationPreferences.Email {
			params := email.WelcomeMessage(p.Email, p.FullName())
			if err := sender.Send(ctx, params); err != nil {
				log.WarnContext(ctx, "failed to send welcome email",
					logger.Error(err), logger.UserID(p.ID))
			}
		}
	}
}
