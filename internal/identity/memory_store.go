package identity

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store used by tests and local development.
type MemoryStore struct {
	mu         sync.RWMutex
	identities map[uuid.UUID]*Identity
	byEmail    map[string]uuid.UUID
	passwords  map[uuid.UUID]string
	sessions   map[uuid.UUID]*sessionRecord
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		identities: make(map[uuid.UUID]*Identity),
		byEmail:    make(map[string]uuid.UUID),
		passwords:  make(map[uuid.UUID]string),
		sessions:   make(map[uuid.UUID]*sessionRecord),
	}
}

func (s *MemoryStore) CreateIdentity(_ context.Context, email, passwordHash string, meta Metadata) (*Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[email]; exists {
		return nil, ErrAlreadyRegistered
	}

	identity := &Identity{
		ID:        uuid.New(),
		Email:     email,
		Metadata:  meta,
		CreatedAt: time.Now(),
	}
	s.identities[identity.ID] = identity
	s.byEmail[email] = identity.ID
	s.passwords[identity.ID] = passwordHash

	copied := *identity
	return &copied, nil
}

func (s *MemoryStore) GetIdentityByID(_ context.Context, id uuid.UUID) (*Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	identity, ok := s.identities[id]
	if !ok {
		return nil, ErrIdentityNotFound
	}
	copied := *identity
	return &copied, nil
}

func (s *MemoryStore) GetIdentityByEmail(_ context.Context, email string) (*Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, ErrIdentityNotFound
	}
	copied := *s.identities[id]
	return &copied, nil
}

func (s *MemoryStore) GetPasswordHash(_ context.Context, id uuid.UUID) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hash, ok := s.passwords[id]
	if !ok {
		return "", ErrIdentityNotFound
	}
	return hash, nil
}

func (s *MemoryStore) MarkEmailVerified(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	identity, ok := s.identities[id]
	if !ok {
		return ErrIdentityNotFound
	}
	identity.EmailVerified = true
	return nil
}

func (s *MemoryStore) UpdateMetadata(_ context.Context, id uuid.UUID, meta Metadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	identity, ok := s.identities[id]
	if !ok {
		return ErrIdentityNotFound
	}
	identity.Metadata = meta
	return nil
}

func (s *MemoryStore) DeleteIdentity(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	identity, ok := s.identities[id]
	if !ok {
		return ErrIdentityNotFound
	}
	delete(s.byEmail, identity.Email)
	delete(s.identities, id)
	delete(s.passwords, id)
	return nil
}

func (s *MemoryStore) CreateSession(_ context.Context, identityID uuid.UUID, expiresAt time.Time) (*sessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := &sessionRecord{
		ID:         uuid.New(),
		IdentityID: identityID,
		CreatedAt:  time.Now(),
		ExpiresAt:  expiresAt,
	}
	s.sessions[record.ID] = record

	copied := *record
	return &copied, nil
}

func (s *MemoryStore) GetSession(_ context.Context, id uuid.UUID) (*sessionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	copied := *record
	return &copied, nil
}

func (s *MemoryStore) RevokeSession(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.sessions[id]
	if !ok {
		return nil
	}
	if record.RevokedAt == nil {
		now := time.Now()
		record.RevokedAt = &now
	}
	return nil
}

func (s *MemoryStore) RevokeIdentitySessions(_ context.Context, identityID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for _, record := range s.sessions {
		if record.IdentityID == identityID && record.RevokedAt == nil {
			record.RevokedAt = &now
		}
	}
	return nil
}
