package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"personas/internal/profile/metrics"
	"personas/internal/profile/models"
	id "personas/pkg/domain"
	"personas/pkg/platform/circuit"
)

// DefaultTTL bounds how stale a cached effective profile can be when an
// invalidation is missed.
const DefaultTTL = 60 * time.Second

// Resolver is the resolution surface the decorator wraps.
type Resolver interface {
	Resolve(ctx context.Context, profileID id.ProfileID) (*models.EffectiveProfile, error)
	ResolveMany(ctx context.Context, profileIDs []id.ProfileID) ([]*models.EffectiveProfile, error)
}

// ProfileCache caches effective profiles by profile id.
type ProfileCache = Cache[id.ProfileID, *models.EffectiveProfile]

// CachedResolver serves Resolve from a cache and fills it on miss. Cache
// failures are logged and fall through to the wrapped resolver. With a
// breaker, a failing cache is bypassed until a probe succeeds.
type CachedResolver struct {
	next    Resolver
	cache   ProfileCache
	ttl     time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
	breaker *circuit.Breaker
}

// ResolverOption configures a CachedResolver.
type ResolverOption func(*CachedResolver)

// WithTTL sets the entry lifetime.
func WithTTL(ttl time.Duration) ResolverOption {
	return func(c *CachedResolver) { c.ttl = ttl }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ResolverOption {
	return func(c *CachedResolver) { c.logger = logger }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) ResolverOption {
	return func(c *CachedResolver) { c.metrics = m }
}

// WithBreaker guards cache reads and writes with b.
func WithBreaker(b *circuit.Breaker) ResolverOption {
	return func(c *CachedResolver) { c.breaker = b }
}

// NewCachedResolver wraps next with cache.
func NewCachedResolver(next Resolver, cache ProfileCache, opts ...ResolverOption) (*CachedResolver, error) {
	if next == nil {
		return nil, fmt.Errorf("resolver is required")
	}
	if cache == nil {
		return nil, fmt.Errorf("cache is required")
	}
	c := &CachedResolver{next: next, cache: cache, ttl: DefaultTTL}
	for _, opt := range opts {
		opt(c)
	}
	if err := validateTTL(c.ttl); err != nil {
		return nil, err
	}
	return c, nil
}

// Resolve returns the cached effective profile or resolves and caches it.
// Errors are never cached.
func (c *CachedResolver) Resolve(ctx context.Context, profileID id.ProfileID) (*models.EffectiveProfile, error) {
	useCache := c.breaker == nil || c.breaker.Allow()
	if !useCache {
		c.metrics.IncrementCacheLookup("bypass")
		return c.next.Resolve(ctx, profileID)
	}

	cached, ok, err := c.cache.Get(ctx, profileID)
	c.record(ctx, err)
	switch {
	case err != nil:
		c.metrics.IncrementCacheLookup("error")
		c.warn(ctx, "effective profile cache read failed", profileID, err)
	case ok:
		c.metrics.IncrementCacheLookup("hit")
		return cached, nil
	default:
		c.metrics.IncrementCacheLookup("miss")
	}

	ep, err := c.next.Resolve(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if c.breaker != nil && c.breaker.IsOpen() {
		return ep, nil
	}
	err = c.cache.Set(ctx, profileID, ep, c.ttl)
	c.record(ctx, err)
	if err != nil {
		c.warn(ctx, "effective profile cache write failed", profileID, err)
	}
	return ep, nil
}

// ResolveMany delegates to the wrapped resolver, which already batches its
// reads for the whole grid.
func (c *CachedResolver) ResolveMany(ctx context.Context, profileIDs []id.ProfileID) ([]*models.EffectiveProfile, error) {
	return c.next.ResolveMany(ctx, profileIDs)
}

// Invalidate drops the cached entry for profileID. It is attempted even
// while the breaker is open.
func (c *CachedResolver) Invalidate(ctx context.Context, profileID id.ProfileID) {
	err := c.cache.Delete(ctx, profileID)
	c.record(ctx, err)
	if err != nil {
		c.warn(ctx, "effective profile cache invalidation failed", profileID, err)
	}
}

func (c *CachedResolver) record(ctx context.Context, err error) {
	if c.breaker == nil {
		return
	}
	var change circuit.StateChange
	if err != nil {
		_, change = c.breaker.RecordFailure()
	} else {
		_, change = c.breaker.RecordSuccess()
	}
	if c.logger == nil {
		return
	}
	switch {
	case change.Opened:
		c.logger.WarnContext(ctx, "effective profile cache circuit opened", "breaker", c.breaker.Name())
	case change.Closed:
		c.logger.InfoContext(ctx, "effective profile cache circuit closed", "breaker", c.breaker.Name())
	}
}

func (c *CachedResolver) warn(ctx context.Context, msg string, profileID id.ProfileID, err error) {
	if c.logger == nil {
		return
	}
	c.logger.WarnContext(ctx, msg,
		"profile_id", profileID.String(),
		"error", err,
	)
}
