package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"personas/internal/profile/models"
)

// =============================================================================
// Validator Test Suite
// =============================================================================

type ValidatorSuite struct {
	suite.Suite
	v   *Validator
	now time.Time
}

func TestValidatorSuite(t *testing.T) {
	suite.Run(t, new(ValidatorSuite))
}

func (s *ValidatorSuite) SetupTest() {
	s.v = New()
	s.now = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }

func (s *ValidatorSuite) TestValidateProfile() {
	s.Run("valid create payload", func() {
		res := s.v.ValidateProfile(models.ProfileData{
			Kind:        models.KindSecondary,
			TypeKey:     "weekend",
			TypeLabel:   "Weekend",
			InheritMode: "OVERRIDE_ALL",
			ExpiresAt:   ptr("2026-06-01"),
		}, true, s.now)
		s.True(res.Valid)
		s.Empty(res.Errors)
		s.NoError(res.Err())
	})

	s.Run("type_key required on secondary create only", func() {
		res := s.v.ValidateProfile(models.ProfileData{Kind: models.KindSecondary}, true, s.now)
		s.False(res.Valid)
		s.Contains(res.Errors[0], "type_key")

		s.True(s.v.ValidateProfile(models.ProfileData{Kind: models.KindSecondary}, false, s.now).Valid)
	})

	s.Run("type_label longer than 50 characters", func() {
		res := s.v.ValidateProfile(models.ProfileData{TypeLabel: strings.Repeat("x", 51)}, false, s.now)
		s.False(res.Valid)
		s.Equal([]string{"type_label must be at most 50 characters"}, res.Errors)

		s.True(s.v.ValidateProfile(models.ProfileData{TypeLabel: strings.Repeat("x", 50)}, false, s.now).Valid)
	})

	s.Run("unparseable expires_at emits one error", func() {
		res := s.v.ValidateProfile(models.ProfileData{ExpiresAt: ptr("next tuesday")}, false, s.now)
		s.Equal([]string{"expires_at must be a valid date"}, res.Errors)
	})

	s.Run("past or present expires_at", func() {
		res := s.v.ValidateProfile(models.ProfileData{ExpiresAt: ptr(s.now.Format(time.RFC3339))}, false, s.now)
		s.Equal([]string{"expires_at must be in the future"}, res.Errors)
	})

	s.Run("unknown inherit_mode", func() {
		res := s.v.ValidateProfile(models.ProfileData{InheritMode: "PARTIAL"}, false, s.now)
		s.False(res.Valid)
		s.Contains(res.Errors[0], "inherit_mode must be one of FULL_INHERIT, OVERRIDE_FIELDS, OVERRIDE_ALL")
	})

	s.Run("location override without coordinates reports both", func() {
		res := s.v.ValidateProfile(models.ProfileData{OverrideLocationEnabled: ptr(true)}, false, s.now)
		s.False(res.Valid)
		s.Len(res.Errors, 2)
		s.Contains(res.Errors[0], "override_location_lat")
		s.Contains(res.Errors[1], "override_location_lng")
	})

	s.Run("location override with one coordinate", func() {
		res := s.v.ValidateProfile(models.ProfileData{
			OverrideLocationEnabled: ptr(true),
			OverrideLocationLat:     ptr(1.0),
		}, false, s.now)
		s.Len(res.Errors, 1)
		s.Contains(res.Errors[0], "override_location_lng")
	})

	s.Run("violations accumulate", func() {
		res := s.v.ValidateProfile(models.ProfileData{
			Kind:                    models.KindSecondary,
			TypeLabel:               strings.Repeat("x", 60),
			InheritMode:             "nope",
			ExpiresAt:               ptr("2001-01-01"),
			OverrideLocationEnabled: ptr(true),
		}, true, s.now)
		s.False(res.Valid)
		s.Len(res.Errors, 6)
	})
}

func (s *ValidatorSuite) TestValidateOverrides() {
	s.Run("valid payload", func() {
		res := s.v.ValidateOverrides(models.OverridesData{
			Overrides:  map[string]any{"bio": "Weekend only"},
			PhotosMode: "ADD",
			Photos:     []string{"p2"},
		})
		s.True(res.Valid)
	})

	s.Run("unknown photos_mode", func() {
		res := s.v.ValidateOverrides(models.OverridesData{PhotosMode: "MERGE"})
		s.False(res.Valid)
		s.Contains(res.Errors[0], "photos_mode")
	})

	s.Run("blank override key", func() {
		res := s.v.ValidateOverrides(models.OverridesData{Overrides: map[string]any{" ": 1}})
		s.False(res.Valid)
	})
}
