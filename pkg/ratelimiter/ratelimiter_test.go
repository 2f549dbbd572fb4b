package ratelimiter_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocemtechies/memberhub/pkg/ratelimiter"
)

func newBucket(t *testing.T, cfg ratelimiter.Config) *ratelimiter.Bucket {
	t.Helper()
	b, err := ratelimiter.NewBucket(ratelimiter.NewMemoryStore(), cfg)
	require.NoError(t, err)
	return b
}

func TestNewBucket_InvalidConfig(t *testing.T) {
	t.Parallel()

	store := ratelimiter.NewMemoryStore()

	tests := []struct {
		name string
		cfg  ratelimiter.Config
	}{
		{"zero capacity", ratelimiter.Config{Capacity: 0, RefillRate: 1, RefillInterval: time.Second}},
		{"zero refill rate", ratelimiter.Config{Capacity: 1, RefillRate: 0, RefillInterval: time.Second}},
		{"zero refill interval", ratelimiter.Config{Capacity: 1, RefillRate: 1, RefillInterval: 0}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ratelimiter.NewBucket(store, tt.cfg)
			assert.ErrorIs(t, err, ratelimiter.ErrInvalidConfig)
		})
	}
}

func TestAllow_ExhaustsCapacity(t *testing.T) {
	t.Parallel()

	b := newBucket(t, ratelimiter.Config{Capacity: 3, RefillRate: 1, RefillInterval: time.Hour})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := b.Allow(ctx, "otp:member@example.com")
		require.NoError(t, err)
		assert.True(t, res.Allowed(), "request %d should pass", i)
		assert.Equal(t, 3, res.Limit)
		assert.Equal(t, 2-i, res.Remaining)
	}

	res, err := b.Allow(ctx, "otp:member@example.com")
	require.NoError(t, err)
	assert.False(t, res.Allowed())
	assert.Greater(t, res.RetryAfter(), time.Duration(0))
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	t.Parallel()

	b := newBucket(t, ratelimiter.Config{Capacity: 1, RefillRate: 1, RefillInterval: time.Hour})
	ctx := context.Background()

	res, err := b.Allow(ctx, "key-a")
	require.NoError(t, err)
	assert.True(t, res.Allowed())

	res, err = b.Allow(ctx, "key-a")
	require.NoError(t, err)
	assert.False(t, res.Allowed())

	res, err = b.Allow(ctx, "key-b")
	require.NoError(t, err)
	assert.True(t, res.Allowed())
}

func TestAllowN(t *testing.T) {
	t.Parallel()

	b := newBucket(t, ratelimiter.Config{Capacity: 5, RefillRate: 1, RefillInterval: time.Hour})
	ctx := context.Background()

	res, err := b.AllowN(ctx, "bulk", 5)
	require.NoError(t, err)
	assert.True(t, res.Allowed())
	assert.Equal(t, 0, res.Remaining)

	res, err = b.AllowN(ctx, "bulk", 1)
	require.NoError(t, err)
	assert.False(t, res.Allowed())

	_, err = b.AllowN(ctx, "bulk", 0)
	assert.ErrorIs(t, err, ratelimiter.ErrInvalidTokenCount)
}

func TestAllow_RefillsAfterInterval(t *testing.T) {
	t.Parallel()

	b := newBucket(t, ratelimiter.Config{Capacity: 1, RefillRate: 1, RefillInterval: 20 * time.Millisecond})
	ctx := context.Background()

	res, err := b.Allow(ctx, "refill")
	require.NoError(t, err)
	assert.True(t, res.Allowed())
	assert.Equal(t, 0, res.Remaining)

	time.Sleep(30 * time.Millisecond)

	res, err = b.Allow(ctx, "refill")
	require.NoError(t, err)
	assert.True(t, res.Allowed())
}

func TestReset(t *testing.T) {
	t.Parallel()

	b := newBucket(t, ratelimiter.Config{Capacity: 1, RefillRate: 1, RefillInterval: time.Hour})
	ctx := context.Background()

	_, err := b.Allow(ctx, "reset-me")
	require.NoError(t, err)

	res, err := b.Allow(ctx, "reset-me")
	require.NoError(t, err)
	assert.False(t, res.Allowed())

	require.NoError(t, b.Reset(ctx, "reset-me"))

	res, err = b.Allow(ctx, "reset-me")
	require.NoError(t, err)
	assert.True(t, res.Allowed())
}
