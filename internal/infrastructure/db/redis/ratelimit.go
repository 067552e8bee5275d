package redis

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
)

// rateLimitScript increments the window counter and sets its expiry on first
// hit, returning both the count and the remaining TTL in one round trip.
var rateLimitScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
  ttl = tonumber(ARGV[1])
end
return {current, ttl}
`)

// RateLimiter implements fixed-window request limiting backed by Redis, so
// the limit holds across server replicas.
// Key format: ratelimit:<subject>
type RateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

// NewRateLimiter creates a RateLimiter allowing limit requests per window.
func NewRateLimiter(client *redis.Client, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{client: client, limit: limit, window: window}
}

// Allow consumes one request slot for the subject. When the window budget is
// exhausted it returns allowed=false and the seconds until the window resets.
func (r *RateLimiter) Allow(ctx context.Context, subject string) (allowed bool, retryAfter int, err error) {
	if r.limit <= 0 || subject == "" {
		return true, 0, nil
	}

	key := "ratelimit:" + subject
	raw, err := rateLimitScript.Run(ctx, r.client, []string{key}, r.window.Milliseconds()).Result()
	if err != nil {
		return false, 0, fmt.Errorf("rate limit check: %w", err)
	}

	values, ok := raw.([]interface{})
	if !ok || len(values) != 2 {
		return false, 0, fmt.Errorf("unexpected rate limit response shape: %T", raw)
	}
	count, ok := values[0].(int64)
	if !ok {
		return false, 0, fmt.Errorf("unexpected rate limit count type: %T", values[0])
	}
	ttlMs, ok := values[1].(int64)
	if !ok {
		return false, 0, fmt.Errorf("unexpected rate limit ttl type: %T", values[1])
	}

	if count <= int64(r.limit) {
		return true, 0, nil
	}

	retryAfter = int(math.Ceil(float64(ttlMs) / 1000.0))
	if retryAfter < 1 {
		retryAfter = 1
	}
	return false, retryAfter, nil
}
