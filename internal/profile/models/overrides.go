package models

import (
	"time"

	id "personas/pkg/domain"
)

// PhotosMode controls how a SECONDARY profile's photo list is derived.
type PhotosMode string

const (
	PhotosInherit PhotosMode = "INHERIT"
	PhotosReplace PhotosMode = "REPLACE"
	PhotosAdd     PhotosMode = "ADD"
)

// IsValid checks if the photos mode is one of the supported enum values.
func (m PhotosMode) IsValid() bool {
	switch m {
	case PhotosInherit, PhotosReplace, PhotosAdd:
		return true
	}
	return false
}

// ProfileOverrides holds a SECONDARY profile's field overrides, 1:1 by ProfileID.
// Photos is nil when no photo list was supplied (JSON null).
type ProfileOverrides struct {
	ProfileID  id.ProfileID   `json:"profile_id"`
	Fields     map[string]any `json:"overrides"`
	PhotosMode PhotosMode     `json:"photos_mode"`
	Photos     []string       `json:"photos"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// DefaultOverrides is what an absent overrides row means.
func DefaultOverrides(profileID id.ProfileID) *ProfileOverrides {
	return &ProfileOverrides{
		ProfileID:  profileID,
		Fields:     map[string]any{},
		PhotosMode: PhotosInherit,
	}
}

// OverridesData is the payload for upserting overrides.
type OverridesData struct {
	Overrides  map[string]any `json:"overrides"`
	PhotosMode string         `json:"photos_mode" validate:"omitempty,oneof=INHERIT REPLACE ADD"`
	Photos     []string       `json:"photos"`
}
