package authstate_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocemtechies/memberhub/internal/auth"
	"github.com/ocemtechies/memberhub/internal/authstate"
	"github.com/ocemtechies/memberhub/internal/identity"
	"github.com/ocemtechies/memberhub/internal/profile"
)

type noopMailer struct{}

func (noopMailer) SendVerificationLink(context.Context, string, string) error { return nil }

// fakeProfileRepo is a map-backed profile.Repository.
type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]*profile.Profile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[uuid.UUID]*profile.Profile)}
}

func (r *fakeProfileRepo) Create(_ context.Context, p *profile.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.profiles[p.ID]; exists {
		return profile.ErrProfileExists
	}
	copied := *p
	r.profiles[p.ID] = &copied
	return nil
}

func (r *fakeProfileRepo) GetByID(_ context.Context, id uuid.UUID) (*profile.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[id]
	if !ok {
		return nil, profile.ErrProfileNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *fakeProfileRepo) GetByEmail(_ context.Context, email string) (*profile.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.profiles {
		if p.Email == email {
			copied := *p
			return &copied, nil
		}
	}
	return nil, profile.ErrProfileNotFound
}

func (r *fakeProfileRepo) Update(_ context.Context, id uuid.UUID, params profile.UpdateParams) (*profile.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[id]
	if !ok {
		return nil, profile.ErrProfileNotFound
	}
	if params.FirstName != nil {
		p.FirstName = *params.FirstName
	}
	if params.LastName != nil {
		p.LastName = *params.LastName
	}
	copied := *p
	return &copied, nil
}

type fixture struct {
	provider *identity.LocalProvider
	repo     *fakeProfileRepo
	store    *authstate.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	provider := identity.NewLocalProvider(identity.NewMemoryStore(), noopMailer{}, identity.Config{
		TokenSecret:     "test-secret",
		SessionTTL:      time.Hour,
		VerificationTTL: 10 * time.Minute,
		CallbackURL:     "http://localhost:8080/auth/callback",
	}, nil)
	repo := newFakeProfileRepo()
	svc := auth.NewService(provider, repo)
	store := authstate.NewStore(svc, provider)
	t.Cleanup(store.Close)
	return &fixture{provider: provider, repo: repo, store: store}
}

// provisionMember creates a verified identity plus its profile row and
// returns a live token.
func (f *fixture) provisionMember(t *testing.T, email string) *identity.Session {
	t.Helper()
	session, err := f.provider.SignInWithOTP(context.Background(), email, true)
	require.NoError(t, err)
	require.NoError(t, f.repo.Create(context.Background(), &profile.Profile{
		ID:        session.Identity.ID,
		Email:     email,
		FirstName: "Test",
		LastName:  "Member",
		Role:      profile.RoleMember,
	}))
	return session
}

func TestStore_InitializeWithoutToken(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	assert.Equal(t, authstate.StateUninitialized, f.store.State())

	f.store.Initialize(context.Background(), "")

	assert.Equal(t, authstate.StateAnonymous, f.store.State())
	assert.Nil(t, f.store.Current())
}

func TestStore_InitializeWithValidToken(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	session := f.provisionMember(t, "member@example.com")

	f.store.Initialize(context.Background(), session.Token)

	assert.Equal(t, authstate.StateAuthenticated, f.store.State())
	current := f.store.Current()
	require.NotNil(t, current)
	assert.Equal(t, "member@example.com", current.Profile.Email)
}

func TestStore_InitializeWithGarbageToken(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.store.Initialize(context.Background(), "not-a-token")

	assert.Equal(t, authstate.StateAnonymous, f.store.State())
}

func TestStore_InitializeTerminatesProfilelessSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)

	// Identity exists but no profile row was ever created.
	session, err := f.provider.SignInWithOTP(ctx, "ghost@example.com", true)
	require.NoError(t, err)

	f.store.Initialize(ctx, session.Token)

	assert.Equal(t, authstate.StateAnonymous, f.store.State())
	assert.Nil(t, f.store.Current())

	// The forced sign-out revoked the session server-side.
	_, err = f.provider.GetSession(ctx, session.Token)
	assert.ErrorIs(t, err, identity.ErrSessionNotFound)
}

func TestStore_SignInThenSignOut(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	f.provisionMember(t, "member@example.com")
	f.store.Initialize(ctx, "")

	result, err := f.store.SignInWithOTP(ctx, "member@example.com")
	require.NoError(t, err)
	assert.Equal(t, authstate.StateAuthenticated, f.store.State())
	assert.Equal(t, "member@example.com", result.Profile.Email)

	require.NoError(t, f.store.SignOut(ctx))
	assert.Equal(t, authstate.StateAnonymous, f.store.State())
	assert.Nil(t, f.store.Current())

	// Repeated sign-out stays anonymous without error.
	require.NoError(t, f.store.SignOut(ctx))
	assert.Equal(t, authstate.StateAnonymous, f.store.State())
}

func TestStore_SignInUnknownMember(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	f.store.Initialize(ctx, "")

	_, err := f.store.SignInWithOTP(ctx, "nobody@example.com")
	require.Error(t, err)
	assert.Equal(t, authstate.StateAnonymous, f.store.State())
}

func TestStore_ProviderEventWithoutExplicitOp(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	f.provisionMember(t, "member@example.com")
	f.store.Initialize(ctx, "")
	require.Equal(t, authstate.StateAnonymous, f.store.State())

	// A sign-in performed directly against the provider reaches the store
	// through the event subscription.
	_, err := f.provider.SignInWithOTP(ctx, "member@example.com", false)
	require.NoError(t, err)

	assert.Equal(t, authstate.StateAuthenticated, f.store.State())
	current := f.store.Current()
	require.NotNil(t, current)
	assert.Equal(t, "member@example.com", current.Profile.Email)
}

func TestStore_ExplicitOpWinsOverProviderEvent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	f.provisionMember(t, "member@example.com")
	f.store.Initialize(ctx, "")

	// The provider emits SIGNED_IN synchronously inside the explicit call;
	// the store must not double-handle it.
	result, err := f.store.SignInWithOTP(ctx, "member@example.com")
	require.NoError(t, err)
	assert.Equal(t, authstate.StateAuthenticated, f.store.State())
	assert.Equal(t, result.Session.Token, f.store.Current().Session.Token)
}

// gatedProvider wraps a LocalProvider and, once armed, parks
// SignInWithOTP until released so events can be injected while an
// explicit operation is pending.
type gatedProvider struct {
	*identity.LocalProvider

	mu       sync.Mutex
	entered  chan struct{}
	release  chan struct{}
	listener identity.Listener
}

// arm makes the next SignInWithOTP block until release is closed.
func (p *gatedProvider) arm() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entered = make(chan struct{})
	p.release = make(chan struct{})
}

func (p *gatedProvider) SignInWithOTP(ctx context.Context, email string, allowCreate bool) (*identity.Session, error) {
	p.mu.Lock()
	entered, release := p.entered, p.release
	p.entered, p.release = nil, nil
	p.mu.Unlock()

	if entered != nil {
		close(entered)
		<-release
	}
	return p.LocalProvider.SignInWithOTP(ctx, email, allowCreate)
}

func (p *gatedProvider) OnAuthStateChange(l identity.Listener) func() {
	p.mu.Lock()
	p.listener = l
	p.mu.Unlock()
	return func() {}
}

func (p *gatedProvider) emit(kind identity.EventKind, session *identity.Session) {
	p.mu.Lock()
	l := p.listener
	p.mu.Unlock()
	if l != nil {
		l(kind, session)
	}
}

func TestStore_StaleSignOutDuringPendingSignIn(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	inner := identity.NewLocalProvider(identity.NewMemoryStore(), noopMailer{}, identity.Config{
		TokenSecret:     "test-secret",
		SessionTTL:      time.Hour,
		VerificationTTL: 10 * time.Minute,
		CallbackURL:     "http://localhost:8080/auth/callback",
	}, nil)
	repo := newFakeProfileRepo()

	// Provision before the store subscribes so no events leak in early.
	session, err := inner.SignInWithOTP(ctx, "member@example.com", true)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, &profile.Profile{
		ID:        session.Identity.ID,
		Email:     "member@example.com",
		FirstName: "Test",
		LastName:  "Member",
		Role:      profile.RoleMember,
	}))

	gated := &gatedProvider{LocalProvider: inner}
	store := authstate.NewStore(auth.NewService(gated, repo), gated)
	t.Cleanup(store.Close)

	store.Initialize(ctx, "")
	_, err = store.SignInWithOTP(ctx, "member@example.com")
	require.NoError(t, err)
	require.Equal(t, authstate.StateAuthenticated, store.State())

	// A re-authentication is parked inside the provider call.
	gated.arm()
	entered, release := gated.entered, gated.release
	done := make(chan error, 1)
	go func() {
		_, err := store.SignInWithOTP(ctx, "member@example.com")
		done <- err
	}()
	<-entered

	// A sign-out event lands while the operation is pending. It must be
	// dropped rather than clear the signed-in state.
	gated.emit(identity.EventSignedOut, nil)
	assert.Equal(t, authstate.StateAuthenticated, store.State())
	assert.NotNil(t, store.Current())

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, authstate.StateAuthenticated, store.State())
	current := store.Current()
	require.NotNil(t, current)
	assert.Equal(t, "member@example.com", current.Profile.Email)
}

func TestStore_UpdateProfileRefreshesCurrent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	f.provisionMember(t, "member@example.com")
	f.store.Initialize(ctx, "")

	result, err := f.store.SignInWithOTP(ctx, "member@example.com")
	require.NoError(t, err)

	firstName := "Renamed"
	updated, err := f.store.UpdateProfile(ctx, result.Profile.ID, profile.UpdateParams{FirstName: &firstName})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.FirstName)
	assert.Equal(t, "Renamed", f.store.Current().Profile.FirstName)
}
