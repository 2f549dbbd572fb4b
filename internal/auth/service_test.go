package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ocemtechies/memberhub/internal/auth"
	"github.com/ocemtechies/memberhub/internal/identity"
	"github.com/ocemtechies/memberhub/internal/profile"
)

func testSession(id uuid.UUID, email string) *identity.Session {
	return &identity.Session{
		Token: "test-token",
		Identity: &identity.Identity{
			ID:            id,
			Email:         email,
			EmailVerified: true,
		},
		Claims: identity.Claims{
			IdentityID: id,
			Email:      email,
			Role:       "member",
		},
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func testProfile(id uuid.UUID, email string) *profile.Profile {
	return &profile.Profile{
		ID:        id,
		Email:     email,
		FirstName: "Jane",
		LastName:  "Doe",
		Role:      profile.RoleMember,
	}
}

func TestService_SignIn(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	id := uuid.New()
	session := testSession(id, "jane@example.com")
	prof := testProfile(id, "jane@example.com")

	provider := &mockProvider{}
	repo := &mockProfileRepo{}
	provider.On("SignInWithPassword", ctx, "jane@example.com", "pass1234!").Return(session, nil)
	repo.On("GetByID", ctx, id).Return(prof, nil)
	provider.On("UpdateUserMetadata", ctx, id, mock.Anything).Return(nil)

	svc := auth.NewService(provider, repo)

	result, err := svc.SignIn(ctx, "jane@example.com", "pass1234!")
	require.NoError(t, err)
	assert.Equal(t, session, result.Session)
	assert.Equal(t, prof, result.Profile)

	provider.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestService_SignIn_InvalidCredentials(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	provider := &mockProvider{}
	repo := &mockProfileRepo{}
	provider.On("SignInWithPassword", ctx, "jane@example.com", "wrong").
		Return(nil, identity.ErrInvalidCredentials)

	svc := auth.NewService(provider, repo)

	_, err := svc.SignIn(ctx, "jane@example.com", "wrong")
	require.ErrorIs(t, err, identity.ErrInvalidCredentials)
	assert.Equal(t, "Invalid email or password", auth.UserMessage(err))
}

func TestService_SignIn_NoProfileTerminatesSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	id := uuid.New()
	session := testSession(id, "ghost@example.com")

	provider := &mockProvider{}
	repo := &mockProfileRepo{}
	provider.On("SignInWithPassword", ctx, "ghost@example.com", "pass1234!").Return(session, nil)
	repo.On("GetByID", ctx, id).Return(nil, profile.ErrProfileNotFound)
	provider.On("SignOut", ctx, session.Token).Return(nil)

	svc := auth.NewService(provider, repo)

	_, err := svc.SignIn(ctx, "ghost@example.com", "pass1234!")
	require.ErrorIs(t, err, auth.ErrNoUserProfile)

	// The provider session must not survive the missing profile.
	provider.AssertCalled(t, "SignOut", ctx, session.Token)
}

func TestService_SignUp(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	id := uuid.New()
	created := &identity.Identity{ID: id, Email: "new@example.com"}

	provider := &mockProvider{}
	repo := &mockProfileRepo{}
	provider.On("SignUp", ctx, "new@example.com", "pass1234!", mock.MatchedBy(func(meta identity.Metadata) bool {
		return meta.Role == "member" && meta.FirstName == "Jane"
	})).Return(created, nil)
	repo.On("Create", ctx, mock.MatchedBy(func(p *profile.Profile) bool {
		return p.ID == id && p.Role == profile.RoleMember && p.Email == "new@example.com"
	})).Return(nil)

	var hooked *profile.Profile
	svc := auth.NewService(provider, repo, auth.WithAfterSignUp(func(_ context.Context, p *profile.Profile) {
		hooked = p
	}))

	prof, err := svc.SignUp(ctx, auth.SignUpData{
		Email:     "New@Example.com",
		Password:  "pass1234!",
		FirstName: "Jane",
		LastName:  "Doe",
	})
	require.NoError(t, err)
	assert.Equal(t, profile.RoleMember, prof.Role)
	assert.True(t, prof.NotificationPreferences.Email)
	require.NotNil(t, hooked)
	assert.Equal(t, prof, hooked)

	provider.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestService_SignUp_ProfileFailureRollsBackIdentity(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	id := uuid.New()
	created := &identity.Identity{ID: id, Email: "new@example.com"}

	provider := &mockProvider{}
	repo := &mockProfileRepo{}
	provider.On("SignUp", ctx, "new@example.com", "pass1234!", mock.Anything).Return(created, nil)
	repo.On("Create", ctx, mock.Anything).Return(errors.New("insert failed"))
	provider.On("DeleteUser", ctx, id).Return(nil)

	svc := auth.NewService(provider, repo)

	_, err := svc.SignUp(ctx, auth.SignUpData{
		Email:     "new@example.com",
		Password:  "pass1234!",
		FirstName: "Jane",
		LastName:  "Doe",
	})
	require.ErrorIs(t, err, auth.ErrProfileCreateFailed)
	assert.Equal(t, "Failed to create user profile", auth.UserMessage(err))

	provider.AssertCalled(t, "DeleteUser", ctx, id)
}

func TestService_SignUp_WeakPassword(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		password string
	}{
		{"too short", "a1!"},
		{"no digit", "password!"},
		{"no special", "password1"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			provider := &mockProvider{}
			repo := &mockProfileRepo{}
			svc := auth.NewService(provider, repo)

			_, err := svc.SignUp(context.Background(), auth.SignUpData{
				Email:    "new@example.com",
				Password: tt.password,
			})
			require.ErrorIs(t, err, auth.ErrWeakPassword)
			provider.AssertNotCalled(t, "SignUp", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestService_GetSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	id := uuid.New()
	session := testSession(id, "jane@example.com")
	prof := testProfile(id, "jane@example.com")

	provider := &mockProvider{}
	repo := &mockProfileRepo{}
	provider.On("GetSession", ctx, "test-token").Return(session, nil)
	repo.On("GetByID", ctx, id).Return(prof, nil)

	svc := auth.NewService(provider, repo)

	result, err := svc.GetSession(ctx, "test-token")
	require.NoError(t, err)
	assert.Equal(t, prof, result.Profile)
}

func TestService_GetSession_Expired(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	provider := &mockProvider{}
	repo := &mockProfileRepo{}
	provider.On("GetSession", ctx, "stale").Return(nil, identity.ErrTokenExpired)

	svc := auth.NewService(provider, repo)

	_, err := svc.GetSession(ctx, "stale")
	require.ErrorIs(t, err, auth.ErrSessionExpired)
	assert.Equal(t, "Your session has expired. Please sign in again", auth.UserMessage(err))
}

func TestService_UpdateProfile_MirrorsMetadata(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	id := uuid.New()
	updated := testProfile(id, "jane@example.com")
	updated.FirstName = "Janet"

	firstName := "Janet"
	params := profile.UpdateParams{FirstName: &firstName}

	provider := &mockProvider{}
	repo := &mockProfileRepo{}
	repo.On("Update", ctx, id, params).Return(updated, nil)
	provider.On("UpdateUserMetadata", ctx, id, mock.MatchedBy(func(meta identity.Metadata) bool {
		return meta.FirstName == "Janet"
	})).Return(nil)

	svc := auth.NewService(provider, repo)

	prof, err := svc.UpdateProfile(ctx, id, params)
	require.NoError(t, err)
	assert.Equal(t, "Janet", prof.FirstName)

	provider.AssertExpectations(t)
}

func TestUserMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil error", nil, "An unknown error occurred"},
		{"invalid credentials", identity.ErrInvalidCredentials, "Invalid email or password"},
		{"email not confirmed", identity.ErrEmailNotConfirmed, "Please verify your email address before signing in"},
		{"already registered", identity.ErrAlreadyRegistered, "An account with this email already exists"},
		{"no profile", auth.ErrNoUserProfile, "User profile not found. Please contact support"},
		{"unknown passes through", errors.New("database exploded"), "database exploded"},
		{"empty message", errors.New(""), "An unexpected error occurred"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, auth.UserMessage(tt.err))
		})
	}
}
