package otp

import (
	"context"
	"sync"
	"time"
)

type pairKey struct {
	email string
	typ   Type
}

// MemoryRepository is an in-memory Repository used by tests and local
// development.
type MemoryRepository struct {
	mu    sync.Mutex
	codes map[pairKey]*Code
}

var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{codes: make(map[pairKey]*Code)}
}

func (r *MemoryRepository) Upsert(_ context.Context, code Code) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.codes[pairKey{code.Email, code.Type}] = &code
	return nil
}

func (r *MemoryRepository) Consume(_ context.Context, email string, typ Type, code string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.codes[pairKey{email, typ}]
	if !ok || stored.Used || stored.Code != code || !now.Before(stored.ExpiresAt) {
		return false, nil
	}
	stored.Used = true
	return true, nil
}

func (r *MemoryRepository) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for key, stored := range r.codes {
		if !now.Before(stored.ExpiresAt) {
			delete(r.codes, key)
			deleted++
		}
	}
	return deleted, nil
}
