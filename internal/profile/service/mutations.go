package service

import (
	"context"
	"errors"

	"personas/internal/audit"
	"personas/internal/profile/models"
	"personas/internal/profile/quota"
	id "personas/pkg/domain"
	dErrors "personas/pkg/domain-errors"
	"personas/pkg/platform/sentinel"
	"personas/pkg/requestcontext"
)

// EnsureMainProfile returns the account's MAIN profile, creating it on first use.
func (s *Service) EnsureMainProfile(ctx context.Context, accountID id.UserID) (*models.Profile, error) {
	existing, err := s.store.GetMainProfile(ctx, accountID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load main profile")
	}

	profile, err := models.NewMainProfile(accountID, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateProfile(ctx, profile); err != nil {
		if !errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create main profile")
		}
		// Lost a race with a concurrent bootstrap.
		existing, err := s.store.GetMainProfile(ctx, accountID)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load main profile")
		}
		return existing, nil
	}
	s.emit(ctx, audit.ActionProfileCreated, accountID, profile.ID)
	return profile, nil
}

// CreateSecondaryProfile creates a SECONDARY profile for accountID after
// checking the tier quota and validating data.
func (s *Service) CreateSecondaryProfile(ctx context.Context, accountID id.UserID, data models.ProfileData) (*models.Profile, error) {
	base, err := s.store.GetBaseRecord(ctx, accountID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "account not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}
	count, err := s.store.CountSecondaryProfiles(ctx, accountID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count profiles")
	}
	if quota.Exhausted(base.SubscriptionTier, count) {
		return nil, dErrors.New(dErrors.CodeForbidden, "secondary profile limit reached for tier")
	}

	data.Kind = models.KindSecondary
	if res := s.ValidateProfileData(ctx, data, true); !res.Valid {
		return nil, dErrors.Wrap(res.Err(), dErrors.CodeValidation, "invalid profile data")
	}

	profile, err := models.NewSecondaryProfile(accountID, data, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateProfile(ctx, profile); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create profile")
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "secondary profile created",
			"account_id", accountID.String(),
			"profile_id", profile.ID.String(),
			"type_key", profile.TypeKey,
		)
	}
	s.emit(ctx, audit.ActionProfileCreated, accountID, profile.ID)
	return profile, nil
}

// UpdateProfile applies data to a profile the actor owns. A stale
// expectedVersion is CodeConflict and is never retried here.
func (s *Service) UpdateProfile(ctx context.Context, actorID id.UserID, profileID id.ProfileID, expectedVersion int, data models.ProfileData) (*models.Profile, error) {
	current, err := s.ownedProfile(ctx, actorID, profileID)
	if err != nil {
		return nil, err
	}
	data.Kind = current.Kind
	if res := s.ValidateProfileData(ctx, data, false); !res.Valid {
		return nil, dErrors.Wrap(res.Err(), dErrors.CodeValidation, "invalid profile data")
	}

	updated, err := s.store.UpdateProfile(ctx, profileID, expectedVersion, data.ToPatch())
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrConflict):
			return nil, dErrors.Wrap(err, dErrors.CodeConflict, "profile was modified concurrently")
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "profile not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update profile")
	}

	s.invalidate(ctx, profileID)
	s.emit(ctx, audit.ActionProfileUpdated, actorID, profileID)
	return updated, nil
}

// DeleteProfile soft-deletes a SECONDARY profile the actor owns.
func (s *Service) DeleteProfile(ctx context.Context, actorID id.UserID, profileID id.ProfileID) error {
	current, err := s.ownedProfile(ctx, actorID, profileID)
	if err != nil {
		return err
	}
	if current.IsMain() {
		return dErrors.New(dErrors.CodeInvariantViolation, "main profile cannot be deleted")
	}

	if _, err := s.store.SoftDeleteProfile(ctx, profileID); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrInvalidState):
			return dErrors.Wrap(err, dErrors.CodeInvariantViolation, "main profile cannot be deleted")
		case errors.Is(err, sentinel.ErrNotFound):
			return dErrors.New(dErrors.CodeNotFound, "profile not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete profile")
	}

	s.invalidate(ctx, profileID)
	s.emit(ctx, audit.ActionProfileDeleted, actorID, profileID)
	return nil
}

// UpsertOverrides replaces the overrides of a SECONDARY profile the actor owns.
func (s *Service) UpsertOverrides(ctx context.Context, actorID id.UserID, profileID id.ProfileID, data models.OverridesData) (*models.ProfileOverrides, error) {
	current, err := s.ownedProfile(ctx, actorID, profileID)
	if err != nil {
		return nil, err
	}
	if current.IsMain() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "main profile has no overrides")
	}
	if res := s.validator.ValidateOverrides(data); !res.Valid {
		return nil, dErrors.Wrap(res.Err(), dErrors.CodeValidation, "invalid overrides")
	}

	overrides := models.DefaultOverrides(profileID)
	if data.Overrides != nil {
		overrides.Fields = data.Overrides
	}
	if data.PhotosMode != "" {
		overrides.PhotosMode = models.PhotosMode(data.PhotosMode)
	}
	overrides.Photos = data.Photos
	overrides.UpdatedAt = requestcontext.Now(ctx)

	if err := s.store.UpsertOverrides(ctx, overrides); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save overrides")
	}

	s.invalidate(ctx, profileID)
	s.emit(ctx, audit.ActionOverridesUpserted, actorID, profileID)
	return overrides, nil
}

// ownedProfile loads a live profile and checks actorID owns it. A profile the
// actor cannot see as owner is reported as missing when deleted and forbidden
// otherwise.
func (s *Service) ownedProfile(ctx context.Context, actorID id.UserID, profileID id.ProfileID) (*models.Profile, error) {
	p, err := s.store.GetProfile(ctx, profileID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "profile not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load profile")
	}
	if p.IsDeleted() {
		return nil, dErrors.New(dErrors.CodeNotFound, "profile not found")
	}
	if !p.IsOwnedBy(actorID) {
		return nil, dErrors.New(dErrors.CodeForbidden, "profile belongs to another account")
	}
	return p, nil
}

func (s *Service) invalidate(ctx context.Context, profileID id.ProfileID) {
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, profileID)
	}
}

func (s *Service) emit(ctx context.Context, action string, actorID id.UserID, profileID id.ProfileID) {
	audit.LogAudit(ctx, s.logger, s.auditor, audit.Event{
		Action:    action,
		ActorID:   actorID.String(),
		ProfileID: profileID.String(),
	})
}
