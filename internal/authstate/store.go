package authstate

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/ocemtechies/memberhub/internal/auth"
	"github.com/ocemtechies/memberhub/internal/identity"
	"github.com/ocemtechies/memberhub/internal/profile"
	"github.com/ocemtechies/memberhub/pkg/logger"
	"github.com/ocemtechies/memberhub/pkg/statemachine"
)

// Store is the single holder of the current auth state. All mutations go
// through its methods; provider events arriving while an explicit
// operation is in flight are dropped, because the operation itself will
// set the final state and knows more than the event does.
type Store struct {
	svc      *auth.Service
	provider identity.Provider
	machine  *statemachine.Machine
	log      *slog.Logger

	mu      sync.Mutex
	current *auth.Result

	// opMu is held for the whole duration of an explicit operation. The
	// event listener only proceeds when it can acquire it, so a stale
	// event can never apply concurrently with an operation, and
	// overlapping operations serialize instead of racing.
	opMu        sync.Mutex
	unsubscribe func()
}

// StoreOption configures the Store.
type StoreOption func(*Store)

func WithLogger(log *slog.Logger) StoreOption {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

func NewStore(svc *auth.Service, provider identity.Provider, opts ...StoreOption) *Store {
	s := &Store{
		svc:      svc,
		provider: provider,
		machine:  newMachine(),
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("authstate"))
	s.unsubscribe = provider.OnAuthStateChange(s.handleAuthEvent)
	return s
}

// Close detaches the store from provider events.
func (s *Store) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

// State returns the current lifecycle state.
func (s *Store) State() statemachine.State {
	return s.machine.Current()
}

// Current returns the loaded session and profile, or nil when anonymous.
func (s *Store) Current() *auth.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Initialize resolves a previously stored token into a state. An empty
// token, an expired session, and a revoked session all land in anonymous;
// a session without a profile is force-terminated on the way there.
func (s *Store) Initialize(ctx context.Context, token string) {
	s.begin()
	defer s.end()

	s.fire(ctx, EventInitialize)

	if token == "" {
		s.fire(ctx, EventNoSession)
		return
	}

	result, err := s.svc.GetSession(ctx, token)
	switch {
	case err == nil:
		s.setCurrent(result)
		s.fire(ctx, EventSessionFound)
	case isInvariantViolation(err):
		s.log.WarnContext(ctx, "session without profile terminated during init")
		s.setCurrent(nil)
		s.fire(ctx, EventInvariantViolation)
	default:
		s.setCurrent(nil)
		s.fire(ctx, EventNoSession)
	}
}

// SignIn runs the password flow and moves to authenticated on success.
func (s *Store) SignIn(ctx context.Context, email, password string) (*auth.Result, error) {
	s.begin()
	defer s.end()

	result, err := s.svc.SignIn(ctx, email, password)
	if err != nil {
		if isInvariantViolation(err) {
			s.setCurrent(nil)
			s.fire(ctx, EventInvariantViolation)
		}
		return nil, err
	}

	s.setCurrent(result)
	s.fire(ctx, EventSignedIn)
	return result, nil
}

// SignInWithOTP completes an OTP login and moves to authenticated.
func (s *Store) SignInWithOTP(ctx context.Context, email string) (*auth.Result, error) {
	s.begin()
	defer s.end()

	result, err := s.svc.SignInWithOTP(ctx, email)
	if err != nil {
		if isInvariantViolation(err) {
			s.setCurrent(nil)
			s.fire(ctx, EventInvariantViolation)
		}
		return nil, err
	}

	s.setCurrent(result)
	s.fire(ctx, EventSignedIn)
	return result, nil
}

// SignUp registers a new member. State stays anonymous: no session exists
// until the verification email is acted on.
func (s *Store) SignUp(ctx context.Context, data auth.SignUpData) (*profile.Profile, error) {
	s.begin()
	defer s.end()

	return s.svc.SignUp(ctx, data)
}

// SignOut clears local state before calling the provider, so the user is
// signed out locally even if revocation fails.
func (s *Store) SignOut(ctx context.Context) error {
	s.begin()
	defer s.end()

	s.mu.Lock()
	token := ""
	if s.current != nil && s.current.Session != nil {
		token = s.current.Session.Token
	}
	s.current = nil
	s.mu.Unlock()

	s.fire(ctx, EventSignedOut)

	if token == "" {
		return nil
	}
	return s.svc.SignOut(ctx, token)
}

// UpdateProfile applies a profile update and refreshes the loaded result.
func (s *Store) UpdateProfile(ctx context.Context, id uuid.UUID, params profile.UpdateParams) (*profile.Profile, error) {
	s.begin()
	defer s.end()

	updated, err := s.svc.UpdateProfile(ctx, id, params)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.current != nil {
		s.current = &auth.Result{Session: s.current.Session, Profile: updated}
	}
	s.mu.Unlock()

	return updated, nil
}

// RefreshProfile re-reads the profile for the loaded session.
func (s *Store) RefreshProfile(ctx context.Context) error {
	s.begin()
	defer s.end()

	return s.refreshProfile(ctx)
}

func (s *Store) refreshProfile(ctx context.Context) error {
	s.mu.Lock()
	current := s.current
	s.mu.Unlock()
	if current == nil {
		return nil
	}

	fresh, err := s.svc.FetchProfile(ctx, current.Session.Claims.IdentityID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.current != nil {
		s.current = &auth.Result{Session: s.current.Session, Profile: fresh}
	}
	s.mu.Unlock()
	return nil
}

// handleAuthEvent reacts to asynchronous provider notifications. Events
// racing an explicit operation are skipped: the operation sets the final
// state itself.
func (s *Store) handleAuthEvent(kind identity.EventKind, session *identity.Session) {
	if !s.opMu.TryLock() {
		return
	}
	defer s.opMu.Unlock()

	ctx := context.Background()
	switch kind {
	case identity.EventSignedIn:
		if session == nil {
			return
		}
		result, err := s.svc.GetSession(ctx, session.Token)
		if err != nil {
			if isInvariantViolation(err) {
				s.setCurrent(nil)
				s.fire(ctx, EventInvariantViolation)
			}
			return
		}
		s.setCurrent(result)
		s.fire(ctx, EventSignedIn)

	case identity.EventSignedOut:
		s.setCurrent(nil)
		s.fire(ctx, EventSignedOut)

	case identity.EventUserUpdated:
		if err := s.refreshProfile(ctx); err != nil {
			s.log.Warn("failed to refresh profile after provider update", logger.Error(err))
		}
	}
}

func (s *Store) begin() { s.opMu.Lock() }
func (s *Store) end()   { s.opMu.Unlock() }

func (s *Store) setCurrent(result *auth.Result) {
	s.mu.Lock()
	s.current = result
	s.mu.Unlock()
}

// fire applies an event, tolerating states that do not accept it. The
// machine declares every legal transition; an undeclared one here is a
// dropped event, not a crash.
func (s *Store) fire(ctx context.Context, event statemachine.Event) {
	if err := s.machine.Fire(ctx, event); err != nil {
		if statemachine.IsNoTransitionAvailableError(err) {
			s.log.DebugContext(ctx, "auth event dropped",
				slog.String("event", string(event)),
				slog.String("state", string(s.machine.Current())))
			return
		}
		s.log.ErrorContext(ctx, "auth state transition failed", logger.Error(err))
	}
}

func isInvariantViolation(err error) bool {
	return errors.Is(err, auth.ErrNoUserProfile)
}
