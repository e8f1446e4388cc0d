package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"personas/pkg/codec"
)

// Redis is a Cache shared between processes. Values are CBOR encoded, so the
// same value always produces the same bytes.
type Redis[K fmt.Stringer, V any] struct {
	client redis.Cmdable
	prefix string
}

// NewRedis creates a Redis-backed cache whose keys are prefix + key.String().
func NewRedis[K fmt.Stringer, V any](client redis.Cmdable, prefix string) *Redis[K, V] {
	return &Redis[K, V]{client: client, prefix: prefix}
}

func (r *Redis[K, V]) key(k K) string {
	return r.prefix + k.String()
}

func (r *Redis[K, V]) Get(ctx context.Context, key K) (V, bool, error) {
	var value V
	raw, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return value, false, nil
	}
	if err != nil {
		return value, false, fmt.Errorf("redis get: %w", err)
	}
	if err := codec.Unmarshal(raw, &value); err != nil {
		return value, false, fmt.Errorf("decode cached value: %w", err)
	}
	return value, true, nil
}

func (r *Redis[K, V]) Set(ctx context.Context, key K, value V, ttl time.Duration) error {
	if err := validateTTL(ttl); err != nil {
		return err
	}
	raw, err := codec.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cached value: %w", err)
	}
	return r.client.Set(ctx, r.key(key), raw, ttl).Err()
}

func (r *Redis[K, V]) Delete(ctx context.Context, key K) error {
	return r.client.Del(ctx, r.key(key)).Err()
}
