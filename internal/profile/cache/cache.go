// Package cache provides a keyed cache with explicit per-entry TTL, in memory
// and on Redis, and a caching decorator for effective profile resolution.
package cache

import (
	"context"
	"fmt"
	"time"

	"personas/pkg/platform/sentinel"
)

// Cache stores values under keys until their TTL elapses. Get reports a miss
// with ok=false and a nil error.
type Cache[K comparable, V any] interface {
	Get(ctx context.Context, key K) (value V, ok bool, err error)
	Set(ctx context.Context, key K, value V, ttl time.Duration) error
	Delete(ctx context.Context, key K) error
}

func validateTTL(ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive: %w", sentinel.ErrInvalidState)
	}
	return nil
}
