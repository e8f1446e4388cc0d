package models

import (
	"time"
)

// ProfileData is the mutation payload accepted for creating or updating a
// profile. Pointer fields distinguish "absent" from a zero value.
type ProfileData struct {
	Kind                    ProfileKind `json:"kind,omitempty"`
	TypeKey                 string      `json:"type_key,omitempty"`
	TypeLabel               string      `json:"type_label,omitempty" validate:"omitempty,max=50"`
	Active                  *bool       `json:"active,omitempty"`
	ExpiresAt               *string     `json:"expires_at,omitempty"`
	ClearExpiresAt          bool        `json:"clear_expires_at,omitempty"`
	InheritMode             string      `json:"inherit_mode,omitempty" validate:"omitempty,oneof=FULL_INHERIT OVERRIDE_FIELDS OVERRIDE_ALL"`
	OverrideLocationEnabled *bool       `json:"override_location_enabled,omitempty"`
	OverrideLocationLat     *float64    `json:"override_location_lat,omitempty"`
	OverrideLocationLng     *float64    `json:"override_location_lng,omitempty"`
	OverrideLocationLabel   *string     `json:"override_location_label,omitempty"`
}

// expiresAtLayouts are tried in order when parsing expires_at.
var expiresAtLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// ParseExpiresAt parses an expires_at value. Date-only values are midnight UTC.
func ParseExpiresAt(raw string) (time.Time, bool) {
	for _, layout := range expiresAtLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// ParsedExpiresAt returns the parsed expires_at when present and well formed.
func (d ProfileData) ParsedExpiresAt() (time.Time, bool) {
	if d.ExpiresAt == nil {
		return time.Time{}, false
	}
	return ParseExpiresAt(*d.ExpiresAt)
}

// LocationOverrideRequested reports whether the payload enables the location override.
func (d ProfileData) LocationOverrideRequested() bool {
	return d.OverrideLocationEnabled != nil && *d.OverrideLocationEnabled
}

// ProfilePatch is the set of field changes applied by an optimistic update.
// Nil fields are left untouched.
type ProfilePatch struct {
	TypeKey                 *string
	TypeLabel               *string
	Active                  *bool
	ExpiresAt               *time.Time
	ClearExpiresAt          bool
	InheritMode             *InheritMode
	OverrideLocationEnabled *bool
	OverrideLocationLat     *float64
	OverrideLocationLng     *float64
	OverrideLocationLabel   *string
}

// ToPatch converts a validated payload into a patch.
func (d ProfileData) ToPatch() ProfilePatch {
	var patch ProfilePatch
	if d.TypeKey != "" {
		patch.TypeKey = &d.TypeKey
	}
	if d.TypeLabel != "" {
		patch.TypeLabel = &d.TypeLabel
	}
	patch.Active = d.Active
	if t, ok := d.ParsedExpiresAt(); ok {
		patch.ExpiresAt = &t
	}
	patch.ClearExpiresAt = d.ClearExpiresAt
	if d.InheritMode != "" {
		mode := InheritMode(d.InheritMode)
		patch.InheritMode = &mode
	}
	patch.OverrideLocationEnabled = d.OverrideLocationEnabled
	patch.OverrideLocationLat = d.OverrideLocationLat
	patch.OverrideLocationLng = d.OverrideLocationLng
	patch.OverrideLocationLabel = d.OverrideLocationLabel
	return patch
}

// Apply writes the patch onto p, bumping the version and timestamp.
// The caller has already checked the expected version.
func (patch ProfilePatch) Apply(p *Profile, now time.Time) {
	if patch.TypeKey != nil {
		p.TypeKey = *patch.TypeKey
	}
	if patch.TypeLabel != nil {
		p.TypeLabel = *patch.TypeLabel
	}
	if patch.Active != nil {
		p.Active = *patch.Active
	}
	if patch.ClearExpiresAt {
		p.ExpiresAt = nil
	} else if patch.ExpiresAt != nil {
		t := *patch.ExpiresAt
		p.ExpiresAt = &t
	}
	if patch.InheritMode != nil {
		p.InheritMode = *patch.InheritMode
	}
	if patch.OverrideLocationEnabled != nil {
		p.OverrideLocationEnabled = *patch.OverrideLocationEnabled
	}
	if patch.OverrideLocationLat != nil {
		v := *patch.OverrideLocationLat
		p.OverrideLocationLat = &v
	}
	if patch.OverrideLocationLng != nil {
		v := *patch.OverrideLocationLng
		p.OverrideLocationLng = &v
	}
	if patch.OverrideLocationLabel != nil {
		v := *patch.OverrideLocationLabel
		p.OverrideLocationLabel = &v
	}
	p.Version++
	p.UpdatedAt = now
}
