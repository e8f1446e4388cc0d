package handler

import (
	"fmt"

	"personas/internal/profile/models"
	"personas/internal/profile/quota"
	"personas/internal/profile/visibility"
	id "personas/pkg/domain"
	dErrors "personas/pkg/domain-errors"
	pstrings "personas/pkg/platform/strings"
)

// maxBatchSize bounds a visibility batch or discovery grid request.
const maxBatchSize = 500

// ProfileIDsRequest is the body of the batch visibility and discovery endpoints.
type ProfileIDsRequest struct {
	ProfileIDs []string `json:"profile_ids"`

	parsed []id.ProfileID
}

func (r *ProfileIDsRequest) Validate() error {
	if len(r.ProfileIDs) > maxBatchSize {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("profile_ids must contain at most %d ids", maxBatchSize))
	}
	parsed, err := id.ParseProfileIDs(r.ProfileIDs)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeValidation, "profile_ids must be valid ids")
	}
	r.parsed = pstrings.Dedupe(parsed)
	return nil
}

// CreateProfileRequest is the body of POST /me/profiles.
type CreateProfileRequest struct {
	models.ProfileData
}

// Validate defers field rules to the profile validator.
func (r *CreateProfileRequest) Validate() error { return nil }

// UpdateProfileRequest is the body of PATCH /me/profiles/{id}. Version is the
// version the client last read.
type UpdateProfileRequest struct {
	Version *int `json:"version"`
	models.ProfileData
}

func (r *UpdateProfileRequest) Validate() error {
	if r.Version == nil || *r.Version < 1 {
		return dErrors.New(dErrors.CodeValidation, "version is required")
	}
	return nil
}

// ValidateProfileRequest is the body of POST /me/profiles/validate.
type ValidateProfileRequest struct {
	IsCreate bool               `json:"is_create"`
	Data     models.ProfileData `json:"data"`
}

func (r *ValidateProfileRequest) Validate() error { return nil }

// OverridesRequest is the body of PUT /me/profiles/{id}/overrides.
type OverridesRequest struct {
	models.OverridesData
}

func (r *OverridesRequest) Validate() error { return nil }

// VisibilityResponse renders one decision.
type VisibilityResponse struct {
	ProfileID string            `json:"profile_id"`
	Allowed   bool              `json:"allowed"`
	Reason    visibility.Reason `json:"reason"`
	Step      visibility.Step   `json:"step"`
}

// BatchVisibilityResponse maps profile ids to allowed. Ids of missing or
// deleted profiles are absent.
type BatchVisibilityResponse struct {
	Results map[string]bool `json:"results"`
}

func toBatchResponse(in map[id.ProfileID]bool) BatchVisibilityResponse {
	out := make(map[string]bool, len(in))
	for pid, allowed := range in {
		out[pid.String()] = allowed
	}
	return BatchVisibilityResponse{Results: out}
}

// DiscoveryResponse lists the visible effective profiles in request order.
type DiscoveryResponse struct {
	Profiles []*models.EffectiveProfile `json:"profiles"`
}

// ProfilesResponse lists an account's profiles.
type ProfilesResponse struct {
	Profiles []*models.Profile `json:"profiles"`
}

// QuotaResponse reports the SECONDARY profile limit of a tier.
type QuotaResponse struct {
	Tier         quota.Tier `json:"tier"`
	MaxSecondary int        `json:"max_secondary"`
}
