package auth_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocemtechies/memberhub/internal/auth"
	"github.com/ocemtechies/memberhub/internal/email"
	"github.com/ocemtechies/memberhub/internal/notifications"
	"github.com/ocemtechies/memberhub/internal/profile"
)

// fakeNotifications records created notifications in memory.
type fakeNotifications struct {
	mu      sync.Mutex
	created []notifications.Notification
}

func (r *fakeNotifications) Create(_ context.Context, n *notifications.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, *n)
	return nil
}

func (r *fakeNotifications) ListByUser(context.Context, uuid.UUID, int) ([]notifications.Notification, error) {
	return nil, nil
}

func (r *fakeNotifications) MarkRead(context.Context, uuid.UUID, uuid.UUID) error { return nil }

func (r *fakeNotifications) MarkAllRead(context.Context, uuid.UUID) error { return nil }

func (r *fakeNotifications) CountUnread(context.Context, uuid.UUID) (int, error) { return 0, nil }

type captureSender struct {
	mu   sync.Mutex
	sent []email.SendParams
}

func (s *captureSender) Send(_ context.Context, params email.SendParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, params)
	return nil
}

func TestWelcomeHook(t *testing.T) {
	t.Parallel()

	member := &profile.Profile{
		ID:        uuid.New(),
		Email:     "new@example.com",
		FirstName: "Jane",
		LastName:  "Doe",
		Role:      profile.RoleMember,
	}

	t.Run("both channels enabled", func(t *testing.T) {
		t.Parallel()

		notes := &fakeNotifications{}
		sender := &captureSender{}
		hook := auth.WelcomeHook(notes, sender, nil)

		p := *member
		p.NotificationPreferences = profile.NotificationPreferences{Email: true, InApp: true}
		hook(context.Background(), &p)

		require.Len(t, notes.created, 1)
		assert.Equal(t, p.ID, notes.created[0].UserID)
		assert.Contains(t, notes.created[0].Title, "Welcome")

		require.Len(t, sender.sent, 1)
		assert.Equal(t, "new@example.com", sender.sent[0].To)
		assert.Equal(t, "welcome", sender.sent[0].Tag)
		assert.Contains(t, sender.sent[0].BodyText, "Jane Doe")
	})

	t.Run("preferences disabled", func(t *testing.T) {
		t.Parallel()

		notes := &fakeNotifications{}
		sender := &captureSender{}
		hook := auth.WelcomeHook(notes, sender, nil)

		p := *member
		p.NotificationPreferences = profile.NotificationPreferences{}
		hook(context.Background(), &p)

		assert.Empty(t, notes.created)
		assert.Empty(t, sender.sent)
	})
}
