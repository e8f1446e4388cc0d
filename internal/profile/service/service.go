// Package service is the entry point for profile reads, visibility checks and
// owner mutations. It translates store sentinels into domain error codes,
// keeps the effective-profile cache coherent and emits audit events.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"personas/internal/audit"
	"personas/internal/profile/models"
	"personas/internal/profile/quota"
	"personas/internal/profile/validation"
	"personas/internal/profile/visibility"
	id "personas/pkg/domain"
	dErrors "personas/pkg/domain-errors"
	"personas/pkg/platform/sentinel"
	"personas/pkg/requestcontext"
)

// Store is the record store surface the service reads and mutates.
type Store interface {
	GetProfile(ctx context.Context, profileID id.ProfileID) (*models.Profile, error)
	GetMainProfile(ctx context.Context, accountID id.UserID) (*models.Profile, error)
	ListProfiles(ctx context.Context, accountID id.UserID) ([]*models.Profile, error)
	CountSecondaryProfiles(ctx context.Context, accountID id.UserID) (int, error)
	CreateProfile(ctx context.Context, profile *models.Profile) error
	UpdateProfile(ctx context.Context, profileID id.ProfileID, expectedVersion int, patch models.ProfilePatch) (*models.Profile, error)
	SoftDeleteProfile(ctx context.Context, profileID id.ProfileID) (*models.Profile, error)
	GetBaseRecord(ctx context.Context, accountID id.UserID) (*models.BaseRecord, error)
	UpsertOverrides(ctx context.Context, overrides *models.ProfileOverrides) error
}

// Resolver produces effective profiles.
type Resolver interface {
	Resolve(ctx context.Context, profileID id.ProfileID) (*models.EffectiveProfile, error)
	ResolveMany(ctx context.Context, profileIDs []id.ProfileID) ([]*models.EffectiveProfile, error)
}

// Evaluator decides visibility.
type Evaluator interface {
	CanView(ctx context.Context, viewerID id.UserID, viewer models.ViewerAttributes, profileID id.ProfileID) visibility.Decision
	EvaluateBatch(ctx context.Context, viewerID id.UserID, viewer models.ViewerAttributes, profileIDs []id.ProfileID) (map[id.ProfileID]visibility.Decision, error)
}

// Invalidator drops cached state for a profile after it changes.
type Invalidator interface {
	Invalidate(ctx context.Context, profileID id.ProfileID)
}

// Service is the profile facade.
type Service struct {
	store       Store
	resolver    Resolver
	evaluator   Evaluator
	validator   *validation.Validator
	invalidator Invalidator
	auditor     audit.Emitter
	logger      *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithAuditPublisher sets where mutation events are published.
func WithAuditPublisher(p audit.Emitter) Option {
	return func(s *Service) { s.auditor = p }
}

// WithInvalidator sets the cache invalidated on every mutation. When unset
// and the resolver is itself an Invalidator, the resolver is used.
func WithInvalidator(inv Invalidator) Option {
	return func(s *Service) { s.invalidator = inv }
}

// New creates a Service.
func New(store Store, resolver Resolver, evaluator Evaluator, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("resolver is required")
	}
	if evaluator == nil {
		return nil, fmt.Errorf("evaluator is required")
	}
	s := &Service{
		store:     store,
		resolver:  resolver,
		evaluator: evaluator,
		validator: validation.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.invalidator == nil {
		if inv, ok := resolver.(Invalidator); ok {
			s.invalidator = inv
		}
	}
	return s, nil
}

// ResolveEffectiveProfile returns the merged, viewer-facing profile.
func (s *Service) ResolveEffectiveProfile(ctx context.Context, profileID id.ProfileID) (*models.EffectiveProfile, error) {
	return s.resolver.Resolve(ctx, profileID)
}

// CanViewerSeeProfile decides whether viewerID may see profileID.
func (s *Service) CanViewerSeeProfile(ctx context.Context, viewerID id.UserID, viewer models.ViewerAttributes, profileID id.ProfileID) visibility.Decision {
	return s.evaluator.CanView(ctx, viewerID, viewer, profileID)
}

// BatchCheckVisibility decides visibility for a grid of profiles. Ids that
// match no live profile have no entry.
func (s *Service) BatchCheckVisibility(ctx context.Context, viewerID id.UserID, viewer models.ViewerAttributes, profileIDs []id.ProfileID) (map[id.ProfileID]bool, error) {
	decisions, err := s.evaluator.EvaluateBatch(ctx, viewerID, viewer, profileIDs)
	if err != nil {
		return map[id.ProfileID]bool{}, err
	}
	out := make(map[id.ProfileID]bool, len(decisions))
	for pid, d := range decisions {
		out[pid] = d.Allowed
	}
	return out, nil
}

// ValidateProfileData validates a profile payload against the request clock.
func (s *Service) ValidateProfileData(ctx context.Context, data models.ProfileData, isCreate bool) validation.Result {
	return s.validator.ValidateProfile(data, isCreate, requestcontext.Now(ctx))
}

// GetMaxSecondaryProfilesForTier returns the SECONDARY profile limit for tier.
func (s *Service) GetMaxSecondaryProfilesForTier(tier string) int {
	return quota.MaxSecondary(tier)
}

// DiscoveryGrid returns the effective profiles among profileIDs that viewerID
// may see, in input order.
func (s *Service) DiscoveryGrid(ctx context.Context, viewerID id.UserID, viewer models.ViewerAttributes, profileIDs []id.ProfileID) ([]*models.EffectiveProfile, error) {
	visible, err := s.BatchCheckVisibility(ctx, viewerID, viewer, profileIDs)
	if err != nil {
		return nil, err
	}
	allowed := make([]id.ProfileID, 0, len(visible))
	for _, pid := range profileIDs {
		if visible[pid] {
			allowed = append(allowed, pid)
		}
	}
	if len(allowed) == 0 {
		return []*models.EffectiveProfile{}, nil
	}
	return s.resolver.ResolveMany(ctx, allowed)
}

// ViewerAttributes derives the filterable attributes of viewerID from their
// base record. A viewer without a base record has no known attributes.
func (s *Service) ViewerAttributes(ctx context.Context, viewerID id.UserID) (models.ViewerAttributes, error) {
	if viewerID.IsNil() {
		return models.ViewerAttributes{}, nil
	}
	base, err := s.store.GetBaseRecord(ctx, viewerID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return models.ViewerAttributes{}, nil
	}
	if err != nil {
		return models.ViewerAttributes{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to load viewer attributes")
	}
	return base.ViewerAttributes(), nil
}

// ListProfiles returns the account's non-deleted profiles, MAIN first.
func (s *Service) ListProfiles(ctx context.Context, accountID id.UserID) ([]*models.Profile, error) {
	profiles, err := s.store.ListProfiles(ctx, accountID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list profiles")
	}
	return profiles, nil
}
