package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrRateLimited means the bucket had no token left; the caller may retry
	// after the window.
	ErrRateLimited = errors.New("rate limit exceeded")
	// ErrBackendUnavailable means Redis could not be reached and the limiter
	// is configured to fail closed.
	ErrBackendUnavailable = errors.New("rate limit backend unavailable")
)

const keyPrefix = "rate_limit:"

// The whole consume-or-reject runs server-side in one script, so concurrent
// callers on any instance never interleave a read with a write. Bucket state
// is a hash {tokens, ts}; tokens refill continuously with elapsed time and
// cap at capacity. A missing key is a fresh bucket at full capacity, which
// also makes TTL eviction harmless.
var acquireScript = redis.NewScript(`
local capacity = tonumber(ARGV[1])
local refill_rate = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])

local state = redis.call('HMGET', KEYS[1], 'tokens', 'ts')
local tokens = tonumber(state[1])
local ts = tonumber(state[2])

if tokens == nil or ts == nil then
  tokens = capacity
  ts = now
end

local elapsed = now - ts
if elapsed < 0 then
  elapsed = 0
end

tokens = tokens + elapsed * refill_rate
if tokens > capacity then
  tokens = capacity
end

local allowed = 0
if tokens >= 1 then
  tokens = tokens - 1
  allowed = 1
end

redis.call('HSET', KEYS[1], 'tokens', tostring(tokens), 'ts', tostring(now))
redis.call('EXPIRE', KEYS[1], ttl)

return allowed
`)

type Limiter struct {
	redis    *redis.Client
	capacity int
	window   time.Duration
	failOpen bool

	// overridable in tests
	now func() time.Time
}

func NewLimiter(redisClient *redis.Client, capacity int, window time.Duration, failOpen bool) *Limiter {
	if capacity < 1 {
		capacity = 1
	}
	if window < time.Second {
		window = time.Second
	}

	return &Limiter{
		redis:    redisClient,
		capacity: capacity,
		window:   window,
		failOpen: failOpen,
		now:      time.Now,
	}
}

// Acquire consumes one token from the fingerprint's bucket. No retries here:
// a reject or a backend error is reported straight back so rate accounting
// stays honest.
func (l *Limiter) Acquire(ctx context.Context, fingerprint string) error {
	now := float64(l.now().UnixMicro()) / 1e6
	refillRate := float64(l.capacity) / l.window.Seconds()
	ttl := int(l.window.Seconds()) * 2

	allowed, err := acquireScript.Run(ctx, l.redis,
		[]string{keyPrefix + fingerprint},
		l.capacity,
		strconv.FormatFloat(refillRate, 'f', -1, 64),
		strconv.FormatFloat(now, 'f', 6, 64),
		ttl,
	).Int()
	if err != nil {
		if l.failOpen {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	if allowed == 0 {
		return ErrRateLimited
	}
	return nil
}

// RetryAfter is the hint sent with a throttled response.
func (l *Limiter) RetryAfter() time.Duration {
	return l.window
}
