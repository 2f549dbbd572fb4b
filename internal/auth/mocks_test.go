package auth_test

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/ocemtechies/memberhub/internal/identity"
	"github.com/ocemtechies/memberhub/internal/profile"
)

type mockProvider struct {
	mock.Mock
}

var _ identity.Provider = (*mockProvider)(nil)

func (m *mockProvider) SignInWithPassword(ctx context.Context, email, password string) (*identity.Session, error) {
	args := m.Called(ctx, email, password)
	if session := args.Get(0); session != nil {
		return session.(*identity.Session), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProvider) SignUp(ctx context.Context, email, password string, meta identity.Metadata) (*identity.Identity, error) {
	args := m.Called(ctx, email, password, meta)
	if id := args.Get(0); id != nil {
		return id.(*identity.Identity), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProvider) SignInWithOTP(ctx context.Context, email string, allowCreate bool) (*identity.Session, error) {
	args := m.Called(ctx, email, allowCreate)
	if session := args.Get(0); session != nil {
		return session.(*identity.Session), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProvider) ExchangeCodeForSession(ctx context.Context, code string) (*identity.Session, error) {
	args := m.Called(ctx, code)
	if session := args.Get(0); session != nil {
		return session.(*identity.Session), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProvider) SignOut(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *mockProvider) GetSession(ctx context.Context, token string) (*identity.Session, error) {
	args := m.Called(ctx, token)
	if session := args.Get(0); session != nil {
		return session.(*identity.Session), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProvider) Authenticate(token string) (*identity.Claims, error) {
	args := m.Called(token)
	if claims := args.Get(0); claims != nil {
		return claims.(*identity.Claims), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProvider) UpdateUserMetadata(ctx context.Context, id uuid.UUID, meta identity.Metadata) error {
	return m.Called(ctx, id, meta).Error(0)
}

func (m *mockProvider) ResendVerification(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *mockProvider) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockProvider) OnAuthStateChange(l identity.Listener) func() {
	args := m.Called(l)
	if fn := args.Get(0); fn != nil {
		return fn.(func())
	}
	return func() {}
}

type mockProfileRepo struct {
	mock.Mock
}

var _ profile.Repository = (*mockProfileRepo)(nil)

func (m *mockProfileRepo) Create(ctx context.Context, p *profile.Profile) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockProfileRepo) GetByID(ctx context.Context, id uuid.UUID) (*profile.Profile, error) {
	args := m.Called(ctx, id)
	if p := args.Get(0); p != nil {
		return p.(*profile.Profile), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProfileRepo) GetByEmail(ctx context.Context, email string) (*profile.Profile, error) {
	args := m.Called(ctx, email)
	if p := args.Get(0); p != nil {
		return p.(*profile.Profile), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProfileRepo) Update(ctx context.Context, id uuid.UUID, params profile.UpdateParams) (*profile.Profile, error) {
	args := m.Called(ctx, id, params)
	if p := args.Get(0); p != nil {
		return p.(*profile.Profile), args.Error(1)
	}
	return nil, args.Error(1)
}
