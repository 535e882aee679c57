// Package ratelimit implements fixed-window request throttling keyed by
// an opaque string (typically "<namespace>:<client-ip>"). Counters live
// either in a shared Redis store, so concurrent server instances share
// one quota, or in a process-local map when Redis is not configured.
// The limiter is a leaf dependency: it imports no other project package
// except the logger.
package ratelimit

import (
	"context"
	"time"
)

// Result is the outcome of one rate limit decision.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Store persists fixed-window counters. Implementations must be safe
// for concurrent use and must apply check-and-increment as a single
// atomic step — two concurrent requests observing count < max and both
// being admitted past the true limit is a contract violation.
type Store interface {
	// Incr applies one request against key: it creates the entry or
	// resets an elapsed window as needed, increments the counter, and
	// returns the resulting count and the absolute window end.
	Incr(ctx context.Context, key string, window time.Duration) (count int, resetAt time.Time, err error)

	// Get reads the current counter without consuming quota. A missing
	// or expired entry reports count 0 and a zero resetAt.
	Get(ctx context.Context, key string) (count int, resetAt time.Time, err error)

	// Clear drops the entry for one key.
	Clear(ctx context.Context, key string) error

	// ClearPrefix drops every entry whose key starts with prefix.
	ClearPrefix(ctx context.Context, prefix string) error
}
