package ratelimiter

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// consumeScript runs the token bucket refill-and-consume step atomically on
// the Redis server. Doing the arithmetic server-side is what makes the
// bucket safe across service instances.
//
// KEYS[1] bucket key
// ARGV[1] tokens to consume
// ARGV[2] capacity
// ARGV[3] refill rate
// ARGV[4] refill interval (ms)
// ARGV[5] now (ms)
// Returns {remaining, last_refill_ms}
var consumeScript = redis.NewScript(`
local tokens = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local rate = tonumber(ARGV[3])
local interval = tonumber(ARGV[4])
local now = tonumber(ARGV[5])

local state = redis.call('HMGET', KEYS[1], 'tokens', 'last_refill')
local current = tonumber(state[1])
local last_refill = tonumber(state[2])

if current == nil then
  current = capacity
  last_refill = now
end

local elapsed = now - last_refill
local intervals = math.floor(elapsed / interval)
if intervals > 0 then
  current = math.min(current + intervals * rate, capacity)
  last_refill = now
end

current = current - tokens

redis.call('HSET', KEYS[1], 'tokens', current, 'last_refill', last_refill)
redis.call('PEXPIRE', KEYS[1], interval * math.ceil(capacity / rate) * 2)

return {current, last_refill}
`)

// RedisStore implements Store backed by Redis, sharing bucket state across
// service instances.
type RedisStore struct {
	client    redis.UniversalClient
	keyPrefix string
}

// NewRedisStore creates a Redis-backed rate limit store. Keys are stored
// under the given prefix to avoid collisions with other users of the same
// Redis database.
func NewRedisStore(client redis.UniversalClient, keyPrefix string) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = "ratelimit"
	}
	return &RedisStore{client: client, keyPrefix: keyPrefix}
}

// ConsumeTokens attempts to consume tokens from the bucket.
func (rs *RedisStore) ConsumeTokens(ctx context.Context, key string, tokens int, config Config) (int, time.Time, error) {
	now := time.Now()

	res, err := consumeScript.Run(ctx, rs.client,
		[]string{rs.key(key)},
		tokens,
		config.Capacity,
		config.RefillRate,
		config.RefillInterval.Milliseconds(),
		now.UnixMilli(),
	).Int64Slice()
	if err != nil {
		return 0, time.Time{}, errors.Join(ErrStoreUnavailable, err)
	}
	if len(res) != 2 {
		return 0, time.Time{}, ErrStoreUnavailable
	}

	remaining := int(res[0])
	lastRefill := time.UnixMilli(res[1])

	return remaining, lastRefill.Add(config.RefillInterval), nil
}

func (rs *RedisStore) Reset(ctx context.Context, key string) error {
	if err := rs.client.Del(ctx, rs.key(key)).Err(); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

func (rs *RedisStore) key(key string) string {
	return rs.keyPrefix + ":" + key
}
