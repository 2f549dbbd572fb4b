// Package auth orchestrates the sign-in and sign-up flows across the
// identity provider and the profile store. It owns the application's
// session invariant: a session is only treated as authenticated when a
// matching profile row exists, and a session without one is terminated.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/ocemtechies/memberhub/internal/identity"
	"github.com/ocemtechies/memberhub/internal/profile"
	"github.com/ocemtechies/memberhub/pkg/logger"
	"github.com/ocemtechies/memberhub/pkg/sanitizer"
)

// Result pairs a provider session with the member's profile.
type Result struct {
	Session *identity.Session
	Profile *profile.Profile
}

// SignUpData carries the registration form fields.
type SignUpData struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	StudentID   *string
	Faculty     *string
	YearOfStudy *int
	Phone       *string
}

// AfterSignUpHook runs after a successful registration. Hook failures are
// logged, never surfaced: the account already exists.
type AfterSignUpHook func(ctx context.Context, p *profile.Profile)

// Service implements the auth flows.
type Service struct {
	provider identity.Provider
	profiles profile.Repository
	log      *slog.Logger
	hooks    []AfterSignUpHook
}

// Option configures the Service.
type Option func(*Service)

// WithAfterSignUp registers a post-registration hook, such as sending a
// welcome notification.
func WithAfterSignUp(hook AfterSignUpHook) Option {
	return func(s *Service) {
		if hook != nil {
			s.hooks = append(s.hooks, hook)
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

func NewService(provider identity.Provider, profiles profile.Repository, opts ...Option) *Service {
	s := &Service{
		provider: provider,
		profiles: profiles,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("auth"))
	return s
}

// SignIn authenticates with email and password and loads the profile. A
// session whose identity has no profile row is terminated immediately and
// reported as ErrNoUserProfile, so a half-provisioned account can never
// act as a logged-in member.
func (s *Service) SignIn(ctx context.Context, email, password string) (*Result, error) {
	session, err := s.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.completeSignIn(ctx, session)
}

// SignInWithOTP finishes an OTP login for an existing member. Unknown
// identities are rejected rather than implicitly created: registration
// has its own flow that provisions the profile row.
func (s *Service) SignInWithOTP(ctx context.Context, email string) (*Result, error) {
	session, err := s.provider.SignInWithOTP(ctx, email, false)
	if err != nil {
		return nil, err
	}
	return s.completeSignIn(ctx, session)
}

// ExchangeCode completes email verification and signs the member in.
func (s *Service) ExchangeCode(ctx context.Context, code string) (*Result, error) {
	session, err := s.provider.ExchangeCodeForSession(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.completeSignIn(ctx, session)
}

func (s *Service) completeSignIn(ctx context.Context, session *identity.Session) (*Result, error) {
	prof, err := s.profiles.GetByID(ctx, session.Claims.IdentityID)
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			// Forced sign-out: the token must not survive the invariant
			// violation.
			if signOutErr := s.provider.SignOut(ctx, session.Token); signOutErr != nil {
				s.log.ErrorContext(ctx, "failed to terminate profileless session",
					logger.Error(signOutErr), logger.UserID(session.Claims.IdentityID))
			}
			return nil, ErrNoUserProfile
		}
		return nil, err
	}

	s.mirrorMetadata(ctx, prof)

	return &Result{Session: session, Profile: prof}, nil
}

// SignUp registers a new member: identity first, then the profile row.
// When the profile insert fails the identity is deleted again so no
// profileless account is left behind. The role is always member; elevated
// roles are granted later through admin tooling.
func (s *Service) SignUp(ctx context.Context, data SignUpData) (*profile.Profile, error) {
	if err := validatePassword(data.Password); err != nil {
		return nil, err
	}

	email := sanitizer.NormalizeEmail(data.Email)

	meta := identity.Metadata{
		Role:      string(profile.RoleMember),
		FirstName: data.FirstName,
		LastName:  data.LastName,
		Phone:     deref(data.Phone),
		StudentID: deref(data.StudentID),
		Faculty:   deref(data.Faculty),
	}
	if data.YearOfStudy != nil {
		meta.YearOfStudy = *data.YearOfStudy
	}

	created, err := s.provider.SignUp(ctx, email, data.Password, meta)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	prof := &profile.Profile{
		ID:          created.ID,
		Email:       created.Email,
		FirstName:   data.FirstName,
		LastName:    data.LastName,
		Role:        profile.RoleMember,
		StudentID:   data.StudentID,
		Faculty:     data.Faculty,
		YearOfStudy: data.YearOfStudy,
		Phone:       data.Phone,
		NotificationPreferences: profile.NotificationPreferences{
			Email: true,
			InApp: true,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.profiles.Create(ctx, prof); err != nil {
		s.log.ErrorContext(ctx, "failed to create profile, rolling back identity",
			logger.Error(err), logger.UserID(created.ID))
		if deleteErr := s.provider.DeleteUser(ctx, created.ID); deleteErr != nil {
			s.log.ErrorContext(ctx, "failed to roll back identity",
				logger.Error(deleteErr), logger.UserID(created.ID))
		}
		return nil, ErrProfileCreateFailed
	}

	for _, hook := range s.hooks {
		hook(ctx, prof)
	}

	return prof, nil
}

// SignOut revokes the session. Always succeeds from the caller's point of
// view when the token is already dead.
func (s *Service) SignOut(ctx context.Context, token string) error {
	return s.provider.SignOut(ctx, token)
}

// GetSession resolves a token to a full session and profile, applying the
// same profile invariant as SignIn.
func (s *Service) GetSession(ctx context.Context, token string) (*Result, error) {
	session, err := s.provider.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, identity.ErrTokenExpired) || errors.Is(err, identity.ErrSessionNotFound) {
			return nil, ErrSessionExpired
		}
		return nil, err
	}

	prof, err := s.profiles.GetByID(ctx, session.Claims.IdentityID)
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			if signOutErr := s.provider.SignOut(ctx, session.Token); signOutErr != nil {
				s.log.ErrorContext(ctx, "failed to terminate profileless session",
					logger.Error(signOutErr), logger.UserID(session.Claims.IdentityID))
			}
			return nil, ErrNoUserProfile
		}
		return nil, err
	}

	return &Result{Session: session, Profile: prof}, nil
}

// FetchProfile loads a member's profile by identity id.
func (s *Service) FetchProfile(ctx context.Context, id uuid.UUID) (*profile.Profile, error) {
	return s.profiles.GetByID(ctx, id)
}

// UpdateProfile applies a partial profile update and mirrors the display
// claims back into the identity metadata.
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, params profile.UpdateParams) (*profile.Profile, error) {
	updated, err := s.profiles.Update(ctx, id, params)
	if err != nil {
		return nil, err
	}

	s.mirrorMetadata(ctx, updated)

	return updated, nil
}

// mirrorMetadata pushes profile display fields into the identity record so
// freshly minted tokens carry current claims. Best effort: the profile row
// remains the source of truth.
func (s *Service) mirrorMetadata(ctx context.Context, p *profile.Profile) {
	meta := identity.Metadata{
		Role:      string(p.Role),
		FirstName: p.FirstName,
		LastName:  p.LastName,
		StudentID: deref(p.StudentID),
		Faculty:   deref(p.Faculty),
		Phone:     deref(p.Phone),
	}
	if p.YearOfStudy != nil {
		meta.YearOfStudy = *p.YearOfStudy
	}

	if err := s.provider.UpdateUserMetadata(ctx, p.ID, meta); err != nil {
		s.log.WarnContext(ctx, "failed to mirror profile metadata",
			logger.Error(err), logger.UserID(p.ID))
	}
}

// validatePassword enforces the minimum password policy: at least eight
// characters including a digit and a special character.
func validatePassword(password string) error {
	if len(password) < 8 {
		return ErrWeakPassword
	}
	var hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case !unicode.IsLetter(r) && !unicode.IsSpace(r):
			hasSpecial = true
		}
	}
	if !hasDigit || !hasSpecial {
		return ErrWeakPassword
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
