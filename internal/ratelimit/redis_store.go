package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps counters in Redis so every server instance sees the
// same quota for a given key. Native per-key expiry replaces the sweep.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a Redis-backed counter store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "ratelimit:",
	}
}

func (r *RedisStore) key(k string) string {
	return r.prefix + k
}

// Incr runs INCR + EXPIRE NX + PTTL in one MULTI/EXEC round trip, so
// check-and-increment holds across processes without a read-modify-write
// race. EXPIRE NX only arms the window on the first request for the key.
func (r *RedisStore) Incr(ctx context.Context, key string, window time.Duration) (int, time.Time, error) {
	pipe := r.client.TxPipeline()

	incr := pipe.Incr(ctx, r.key(key))
	pipe.ExpireNX(ctx, r.key(key), window)
	ttl := pipe.PTTL(ctx, r.key(key))

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, time.Time{}, fmt.Errorf("ratelimit: redis incr: %w", err)
	}

	return int(incr.Val()), time.Now().Add(ttl.Val()), nil
}

func (r *RedisStore) Get(ctx context.Context, key string) (int, time.Time, error) {
	pipe := r.client.TxPipeline()

	get := pipe.Get(ctx, r.key(key))
	ttl := pipe.PTTL(ctx, r.key(key))

	if _, err := pipe.Exec(ctx); err != nil {
		if err == redis.Nil {
			return 0, time.Time{}, nil // no entry for key
		}
		return 0, time.Time{}, fmt.Errorf("ratelimit: redis get: %w", err)
	}

	count, err := get.Int()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("ratelimit: redis get: %w", err)
	}

	return count, time.Now().Add(ttl.Val()), nil
}

func (r *RedisStore) Clear(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("ratelimit: redis del: %w", err)
	}
	return nil
}

// ClearPrefix scans and deletes every counter under prefix. SCAN keeps
// the walk incremental instead of blocking Redis with KEYS.
func (r *RedisStore) ClearPrefix(ctx context.Context, prefix string) error {
	var cursor uint64

	for {
		keys, next, err := r.client.Scan(ctx, cursor, r.key(prefix)+"*", 100).Result()
		if err != nil {
			return fmt.Errorf("ratelimit: redis scan: %w", err)
		}

		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("ratelimit: redis del: %w", err)
			}
		}

		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}
