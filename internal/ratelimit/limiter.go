package ratelimit

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/kaeldominion/the-dominus-code-sub001/internal/logger"
)

// Limiter makes fixed-window decisions against a Store. When the
// primary store errors (unreachable Redis), the check fails open to an
// in-process fallback instead of failing the request; the degradation
// is logged once per outage rather than per request.
type Limiter struct {
	store    Store
	fallback *MemoryStore
	degraded atomic.Bool
}

func NewLimiter(store Store) *Limiter {
	l := &Limiter{store: store}

	// A memory-backed primary is its own fallback.
	if mem, ok := store.(*MemoryStore); ok {
		l.fallback = mem
	} else {
		l.fallback = NewMemoryStore()
	}

	return l
}

// Close releases the fallback store's sweep goroutine.
func (l *Limiter) Close() {
	l.fallback.Close()
}

// Check applies one request against key and decides it. The first max
// requests in a window are allowed with decreasing remaining quota; the
// rest are denied with remaining 0. All decisions within one window
// report the same ResetAt.
func (l *Limiter) Check(ctx context.Context, key string, max int, window time.Duration) Result {
	count, resetAt, err := l.store.Incr(ctx, key, window)
	if err != nil {
		if l.degraded.CompareAndSwap(false, true) {
			logger.Warn("rate limit store unreachable, falling back to in-process counters", map[string]any{
				"error": err.Error(),
			})
		}
		count, resetAt, _ = l.fallback.Incr(ctx, key, window)
	} else if l.degraded.CompareAndSwap(true, false) {
		logger.Info("rate limit store recovered", nil)
	}

	return decide(count, max, resetAt)
}

// Peek reports the decision the next Check would make without consuming
// a quota unit. Used by the diagnostic endpoint.
func (l *Limiter) Peek(ctx context.Context, key string, max int, window time.Duration) Result {
	count, resetAt, err := l.store.Get(ctx, key)
	if err != nil {
		count, resetAt, _ = l.fallback.Get(ctx, key)
	}

	if count == 0 {
		// No entry yet: a full window is available.
		return Result{Allowed: true, Remaining: max, ResetAt: resetAt}
	}

	// Peek reports whether the NEXT request would pass.
	return decide(count+1, max, resetAt)
}

// Clear resets the counter for one key. Meaningful mainly against the
// Redis backend; the in-process map just drops its local entry.
func (l *Limiter) Clear(ctx context.Context, key string) error {
	if err := l.store.Clear(ctx, key); err != nil {
		return err
	}
	if l.fallback != l.store {
		_ = l.fallback.Clear(ctx, key)
	}
	return nil
}

// ClearPrefix resets every counter under a namespace prefix.
func (l *Limiter) ClearPrefix(ctx context.Context, prefix string) error {
	if err := l.store.ClearPrefix(ctx, prefix); err != nil {
		return err
	}
	if l.fallback != l.store {
		_ = l.fallback.ClearPrefix(ctx, prefix)
	}
	return nil
}

// decide maps a post-increment count onto the allow/deny contract.
// Counts past max can keep growing (Redis INCR always increments);
// remaining clamps at 0 and the window end stays put.
func decide(count, max int, resetAt time.Time) Result {
	if count > max {
		return Result{Allowed: false, Remaining: 0, ResetAt: resetAt}
	}
	return Result{Allowed: true, Remaining: max - count, ResetAt: resetAt}
}
