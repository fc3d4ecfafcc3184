// Package ratelimit implements a Redis fixed-window request counter.
// Fixed windows admit a burst of up to 2x the limit at window
// boundaries; the O(1) cost is the accepted tradeoff.
package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const bucketKeyPrefix = "rl:"

// Result reports a limiter decision.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Duration
}

// Limiter counts requests per bucket within fixed windows.
type Limiter struct {
	client *redis.Client
	window time.Duration
	max    int
}

// NewLimiter builds a limiter with the configured window and ceiling.
func NewLimiter(client *redis.Client, window time.Duration, max int) *Limiter {
	if window <= 0 {
		window = time.Minute
	}
	if max <= 0 {
		max = 100
	}
	return &Limiter{client: client, window: window, max: max}
}

// Allow increments the bucket counter and reads its TTL in one batched
// round trip. A negative TTL means the key is fresh and gets the window
// expiry. Exceeding the ceiling after increment denies the request.
func (l *Limiter) Allow(ctx context.Context, bucket string) (Result, error) {
	key := bucketKeyPrefix + bucket

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	ttl := pipe.TTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, err
	}

	count := int(incr.Val())
	reset := ttl.Val()
	if reset < 0 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return Result{}, err
		}
		reset = l.window
	}

	remaining := l.max - count
	if remaining < 0 {
		remaining = 0
	}
	return Result{
		Allowed:   count <= l.max,
		Limit:     l.max,
		Remaining: remaining,
		Reset:     reset,
	}, nil
}
