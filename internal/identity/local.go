package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ocemtechies/memberhub/pkg/logger"
	"github.com/ocemtechies/memberhub/pkg/sanitizer"
	"github.com/ocemtechies/memberhub/pkg/token"
)

// Mailer delivers verification links on behalf of the provider.
type Mailer interface {
	SendVerificationLink(ctx context.Context, email, link string) error
}

// Config holds the provider's signing and lifetime settings.
type Config struct {
	// TokenSecret signs both access tokens and verification codes.
	TokenSecret string
	// SessionTTL bounds access-token lifetime.
	SessionTTL time.Duration
	// VerificationTTL bounds email-verification code lifetime.
	VerificationTTL time.Duration
	// CallbackURL is the absolute URL verification links point at,
	// typically <app-url>/auth/callback.
	CallbackURL string
}

// LocalProvider is the first-party Provider implementation: identities in
// Postgres, bcrypt password credentials, and HS256 access tokens carrying
// the session record id for revocation.
type LocalProvider struct {
	store  Store
	mailer Mailer
	cfg    Config
	log    *slog.Logger

	mu         sync.Mutex
	listeners  map[int]Listener
	listenerID int
}

var _ Provider = (*LocalProvider)(nil)

func NewLocalProvider(store Store, mailer Mailer, cfg Config, log *slog.Logger) *LocalProvider {
	if log == nil {
		log = slog.Default()
	}
	return &LocalProvider{
		store:     store,
		mailer:    mailer,
		cfg:       cfg,
		log:       log.With(logger.Component("identity")),
		listeners: make(map[int]Listener),
	}
}

// verificationPayload is the signed content of an email-verification code.
type verificationPayload struct {
	Subject    string    `json:"sub"`
	IdentityID uuid.UUID `json:"iid"`
	Email      string    `json:"eml"`
	IssuedAt   int64     `json:"iat"`
}

const verificationSubject = "email_verify"

func (p *LocalProvider) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	email = sanitizer.NormalizeEmail(email)

	identity, err := p.store.GetIdentityByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	hash, err := p.store.GetPasswordHash(ctx, identity.ID)
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	if !identity.EmailVerified {
		return nil, ErrEmailNotConfirmed
	}

	session, err := p.issueSession(ctx, identity)
	if err != nil {
		return nil, err
	}

	p.emit(EventSignedIn, session)
	return session, nil
}

func (p *LocalProvider) SignUp(ctx context.Context, email, password string, meta Metadata) (*Identity, error) {
	email = sanitizer.NormalizeEmail(email)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	identity, err := p.store.CreateIdentity(ctx, email, string(hash), meta)
	if err != nil {
		return nil, err
	}

	// Delivery failures are not fatal: the account exists and the link can
	// be re-sent through ResendVerification.
	if err := p.sendVerification(ctx, identity); err != nil {
		p.log.ErrorContext(ctx, "failed to send verification email",
			logger.Error(err), logger.Email(sanitizer.MaskEmail(email)))
	}

	return identity, nil
}

func (p *LocalProvider) SignInWithOTP(ctx context.Context, email string, allowCreate bool) (*Session, error) {
	email = sanitizer.NormalizeEmail(email)

	identity, err := p.store.GetIdentityByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, ErrIdentityNotFound) {
			return nil, err
		}
		if !allowCreate {
			return nil, ErrInvalidCredentials
		}
		// OTP-first registration: an unguessable placeholder password keeps
		// the password sign-in path closed until the user sets one.
		hash, hashErr := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
		if hashErr != nil {
			return nil, fmt.Errorf("failed to hash placeholder password: %w", hashErr)
		}
		identity, err = p.store.CreateIdentity(ctx, email, string(hash), Metadata{})
		if err != nil {
			return nil, err
		}
	}

	// A verified OTP proves mailbox ownership, which is exactly what the
	// verification link proves.
	if !identity.EmailVerified {
		if err := p.store.MarkEmailVerified(ctx, identity.ID); err != nil {
			return nil, err
		}
		identity.EmailVerified = true
	}

	session, err := p.issueSession(ctx, identity)
	if err != nil {
		return nil, err
	}

	p.emit(EventSignedIn, session)
	return session, nil
}

func (p *LocalProvider) ExchangeCodeForSession(ctx context.Context, code string) (*Session, error) {
	payload, err := token.Parse[verificationPayload](code, p.cfg.TokenSecret)
	if err != nil {
		return nil, ErrCodeInvalid
	}
	if payload.Subject != verificationSubject {
		return nil, ErrCodeInvalid
	}
	if time.Since(time.Unix(payload.IssuedAt, 0)) > p.cfg.VerificationTTL {
		return nil, ErrCodeInvalid
	}

	identity, err := p.store.GetIdentityByID(ctx, payload.IdentityID)
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			return nil, ErrCodeInvalid
		}
		return nil, err
	}

	// The verified flag doubles as the single-use marker: a second exchange
	// of the same code finds it already set.
	if identity.EmailVerified {
		return nil, ErrCodeUsed
	}
	if err := p.store.MarkEmailVerified(ctx, identity.ID); err != nil {
		return nil, err
	}
	identity.EmailVerified = true

	session, err := p.issueSession(ctx, identity)
	if err != nil {
		return nil, err
	}

	p.emit(EventSignedIn, session)
	return session, nil
}

func (p *LocalProvider) SignOut(ctx context.Context, tokenString string) error {
	claims, err := parseAccessToken(tokenString, []byte(p.cfg.TokenSecret))
	if err == nil {
		if sessionID, idErr := claims.sessionID(); idErr == nil {
			if err := p.store.RevokeSession(ctx, sessionID); err != nil {
				return err
			}
		}
	}

	// Expired or malformed tokens still count as a successful sign-out:
	// there is nothing left to revoke.
	p.emit(EventSignedOut, nil)
	return nil
}

func (p *LocalProvider) GetSession(ctx context.Context, tokenString string) (*Session, error) {
	claims, err := parseAccessToken(tokenString, []byte(p.cfg.TokenSecret))
	if err != nil {
		return nil, err
	}

	sessionID, err := claims.sessionID()
	if err != nil {
		return nil, err
	}

	record, err := p.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !record.active(time.Now()) {
		return nil, ErrSessionNotFound
	}

	identity, err := p.store.GetIdentityByID(ctx, record.IdentityID)
	if err != nil {
		return nil, err
	}

	parsed, err := claims.toClaims()
	if err != nil {
		return nil, err
	}

	return &Session{
		Token:     tokenString,
		Identity:  identity,
		Claims:    *parsed,
		ExpiresAt: record.ExpiresAt,
	}, nil
}

func (p *LocalProvider) Authenticate(tokenString string) (*Claims, error) {
	claims, err := parseAccessToken(tokenString, []byte(p.cfg.TokenSecret))
	if err != nil {
		return nil, err
	}
	return claims.toClaims()
}

func (p *LocalProvider) UpdateUserMetadata(ctx context.Context, id uuid.UUID, meta Metadata) error {
	if err := p.store.UpdateMetadata(ctx, id, meta); err != nil {
		return err
	}
	p.emit(EventUserUpdated, nil)
	return nil
}

func (p *LocalProvider) ResendVerification(ctx context.Context, email string) error {
	email = sanitizer.NormalizeEmail(email)

	identity, err := p.store.GetIdentityByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			// Indistinguishable from success so the endpoint cannot be used
			// to probe registered addresses.
			return nil
		}
		return err
	}
	if identity.EmailVerified {
		return nil
	}

	return p.sendVerification(ctx, identity)
}

func (p *LocalProvider) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if err := p.store.RevokeIdentitySessions(ctx, id); err != nil {
		return err
	}
	return p.store.DeleteIdentity(ctx, id)
}

func (p *LocalProvider) OnAuthStateChange(l Listener) func() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.listenerID++
	id := p.listenerID
	p.listeners[id] = l

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.listeners, id)
	}
}

func (p *LocalProvider) issueSession(ctx context.Context, identity *Identity) (*Session, error) {
	record, err := p.store.CreateSession(ctx, identity.ID, time.Now().Add(p.cfg.SessionTTL))
	if err != nil {
		return nil, err
	}

	signed, expiresAt, err := signAccessToken(
		record.ID, identity.ID, identity.Email, identity.Metadata,
		[]byte(p.cfg.TokenSecret), p.cfg.SessionTTL,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	return &Session{
		Token:    signed,
		Identity: identity,
		Claims: Claims{
			IdentityID: identity.ID,
			Email:      identity.Email,
			Role:       identity.Metadata.Role,
			FirstName:  identity.Metadata.FirstName,
			LastName:   identity.Metadata.LastName,
		},
		ExpiresAt: expiresAt,
	}, nil
}

func (p *LocalProvider) sendVerification(ctx context.Context, identity *Identity) error {
	code, err := token.Generate(verificationPayload{
		Subject:    verificationSubject,
		IdentityID: identity.ID,
		Email:      identity.Email,
		IssuedAt:   time.Now().Unix(),
	}, p.cfg.TokenSecret)
	if err != nil {
		return fmt.Errorf("failed to generate verification code: %w", err)
	}

	link := p.cfg.CallbackURL + "?code=" + url.QueryEscape(code)
	return p.mailer.SendVerificationLink(ctx, identity.Email, link)
}

func (p *LocalProvider) emit(kind EventKind, session *Session) {
	p.mu.Lock()
	listeners := make([]Listener, 0, len(p.listeners))
	for _, l := range p.listeners {
		listeners = append(listeners, l)
	}
	p.mu.Unlock()

	for _, l := range listeners {
		l(kind, session)
	}
}
