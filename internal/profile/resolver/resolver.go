// Package resolver builds the effective profile a viewer sees by merging an
// account's base record with a profile and its overrides.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"personas/internal/profile/metrics"
	"personas/internal/profile/models"
	id "personas/pkg/domain"
	dErrors "personas/pkg/domain-errors"
	"personas/pkg/platform/sentinel"
	"personas/pkg/requestcontext"
)

var tracer = otel.Tracer("personas/internal/profile/resolver")

// Store is the read side the resolver needs.
type Store interface {
	GetProfile(ctx context.Context, profileID id.ProfileID) (*models.Profile, error)
	GetProfilesByIDs(ctx context.Context, profileIDs []id.ProfileID) ([]*models.Profile, error)
	GetBaseRecord(ctx context.Context, accountID id.UserID) (*models.BaseRecord, error)
	GetBaseRecords(ctx context.Context, accountIDs []id.UserID) (map[id.UserID]*models.BaseRecord, error)
	GetOverrides(ctx context.Context, profileID id.ProfileID) (*models.ProfileOverrides, error)
	GetOverridesByProfileIDs(ctx context.Context, profileIDs []id.ProfileID) (map[id.ProfileID]*models.ProfileOverrides, error)
}

// Resolver resolves effective profiles. It holds no mutable state.
type Resolver struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Resolver) { r.metrics = m }
}

// New creates a Resolver.
func New(store Store, opts ...Option) (*Resolver, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	r := &Resolver{store: store}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Resolve returns the effective profile for profileID.
//
// A missing or deleted profile is CodeNotFound. A profile whose base record is
// missing is also CodeNotFound, but wraps sentinel.ErrInvalidState and is
// logged at error level: that is a referential-integrity fault.
func (r *Resolver) Resolve(ctx context.Context, profileID id.ProfileID) (*models.EffectiveProfile, error) {
	ctx, span := tracer.Start(ctx, "resolver.Resolve")
	defer span.End()
	span.SetAttributes(attribute.String("profile_id", profileID.String()))

	ep, err := r.resolve(ctx, profileID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		r.metrics.IncrementResolve(outcome(err))
		return nil, err
	}
	r.metrics.IncrementResolve("ok")
	return ep, nil
}

func (r *Resolver) resolve(ctx context.Context, profileID id.ProfileID) (*models.EffectiveProfile, error) {
	start := time.Now()
	p, err := r.store.GetProfile(ctx, profileID)
	r.metrics.ObserveStoreRead("profile", time.Since(start))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "profile not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load profile")
	}
	if p.IsDeleted() {
		return nil, dErrors.New(dErrors.CodeNotFound, "profile not found")
	}

	start = time.Now()
	base, err := r.store.GetBaseRecord(ctx, p.AccountID)
	r.metrics.ObserveStoreRead("base_record", time.Since(start))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, r.missingBase(ctx, p)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load base record")
	}

	var overrides *models.ProfileOverrides
	if !p.IsMain() {
		start = time.Now()
		overrides, err = r.store.GetOverrides(ctx, p.ID)
		r.metrics.ObserveStoreRead("overrides", time.Since(start))
		if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load overrides")
		}
	}

	return Merge(p, base, overrides), nil
}

// ResolveMany resolves the non-deleted profiles among profileIDs, preserving
// input order. Base records and overrides are read in batches through the
// request's Loaders, or fresh ones when ctx carries none. Profiles whose base
// record is missing are logged and left out.
func (r *Resolver) ResolveMany(ctx context.Context, profileIDs []id.ProfileID) ([]*models.EffectiveProfile, error) {
	ctx, span := tracer.Start(ctx, "resolver.ResolveMany")
	defer span.End()
	span.SetAttributes(attribute.Int("profile_count", len(profileIDs)))

	if len(profileIDs) == 0 {
		return []*models.EffectiveProfile{}, nil
	}

	start := time.Now()
	profiles, err := r.store.GetProfilesByIDs(ctx, profileIDs)
	r.metrics.ObserveStoreRead("profiles_batch", time.Since(start))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load profiles")
	}

	loaders := LoadersFromContext(ctx)
	if loaders == nil {
		loaders = NewLoaders(r.store)
	}

	accountIDs := make([]id.UserID, 0, len(profiles))
	var secondaryIDs []id.ProfileID
	for _, p := range profiles {
		accountIDs = append(accountIDs, p.AccountID)
		if !p.IsMain() {
			secondaryIDs = append(secondaryIDs, p.ID)
		}
	}

	baseThunk := loaders.BaseRecords.LoadMany(ctx, accountIDs)
	var overrides []*models.ProfileOverrides
	var overrideErrs []error
	if len(secondaryIDs) > 0 {
		overrides, overrideErrs = loaders.Overrides.LoadMany(ctx, secondaryIDs)()
	}
	bases, baseErrs := baseThunk()

	overridesByID := make(map[id.ProfileID]*models.ProfileOverrides, len(secondaryIDs))
	for i, pid := range secondaryIDs {
		if err := indexErr(overrideErrs, i); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load overrides")
		}
		overridesByID[pid] = overrides[i]
	}

	out := make([]*models.EffectiveProfile, 0, len(profiles))
	for i, p := range profiles {
		if err := indexErr(baseErrs, i); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				_ = r.missingBase(ctx, p)
				r.metrics.IncrementResolve("integrity")
				continue
			}
			span.SetStatus(codes.Error, err.Error())
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load base records")
		}
		out = append(out, Merge(p, bases[i], overridesByID[p.ID]))
		r.metrics.IncrementResolve("ok")
	}
	return out, nil
}

func (r *Resolver) missingBase(ctx context.Context, p *models.Profile) error {
	if r.logger != nil {
		r.logger.ErrorContext(ctx, "data integrity: profile has no base record",
			"profile_id", p.ID.String(),
			"account_id", p.AccountID.String(),
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	return dErrors.Wrap(sentinel.ErrInvalidState, dErrors.CodeNotFound, "base record not found")
}

func indexErr(errs []error, i int) error {
	if i < len(errs) {
		return errs[i]
	}
	return nil
}

func outcome(err error) string {
	switch {
	case errors.Is(err, sentinel.ErrInvalidState):
		return "integrity"
	case dErrors.HasCode(err, dErrors.CodeNotFound):
		return "not_found"
	}
	return "error"
}
