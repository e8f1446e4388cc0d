package models

import (
	"strings"
	"time"

	id "personas/pkg/domain"
	dErrors "personas/pkg/domain-errors"
)

// ProfileKind distinguishes the account's canonical persona from additional ones.
type ProfileKind string

const (
	KindMain      ProfileKind = "MAIN"
	KindSecondary ProfileKind = "SECONDARY"
)

// IsValid checks if the kind is one of the supported enum values.
func (k ProfileKind) IsValid() bool {
	return k == KindMain || k == KindSecondary
}

// InheritMode controls how a SECONDARY profile derives fields from the base record.
type InheritMode string

const (
	InheritFull           InheritMode = "FULL_INHERIT"
	InheritOverrideFields InheritMode = "OVERRIDE_FIELDS"
	InheritOverrideAll    InheritMode = "OVERRIDE_ALL"
)

// InheritModes lists the accepted inherit modes in declaration order.
var InheritModes = []InheritMode{InheritFull, InheritOverrideFields, InheritOverrideAll}

// IsValid checks if the inherit mode is one of the supported enum values.
func (m InheritMode) IsValid() bool {
	switch m {
	case InheritFull, InheritOverrideFields, InheritOverrideAll:
		return true
	}
	return false
}

// AppliesOverrides reports whether override fields are overlaid on the base.
// OVERRIDE_FIELDS and OVERRIDE_ALL merge identically; they differ only in
// how a consumer presents the result.
func (m InheritMode) AppliesOverrides() bool {
	return m == InheritOverrideFields || m == InheritOverrideAll
}

// Profile is a persona owned by an account.
//
// Invariants:
//   - exactly one non-deleted MAIN profile per account
//   - a MAIN profile is never deleted
//   - Version increases by one on every successful update
//   - DeletedAt set implies Active is false
type Profile struct {
	ID                      id.ProfileID `json:"id"`
	AccountID               id.UserID    `json:"account_id"`
	Kind                    ProfileKind  `json:"kind"`
	TypeKey                 string       `json:"type_key,omitempty"`
	TypeLabel               string       `json:"type_label,omitempty"`
	Active                  bool         `json:"active"`
	ExpiresAt               *time.Time   `json:"expires_at,omitempty"`
	InheritMode             InheritMode  `json:"inherit_mode"`
	OverrideLocationEnabled bool         `json:"override_location_enabled"`
	OverrideLocationLat     *float64     `json:"override_location_lat,omitempty"`
	OverrideLocationLng     *float64     `json:"override_location_lng,omitempty"`
	OverrideLocationLabel   *string      `json:"override_location_label,omitempty"`
	Version                 int          `json:"version"`
	CreatedAt               time.Time    `json:"created_at"`
	UpdatedAt               time.Time    `json:"updated_at"`
	DeletedAt               *time.Time   `json:"deleted_at,omitempty"`
}

// IsMain reports whether this is the account's MAIN profile.
func (p *Profile) IsMain() bool { return p.Kind == KindMain }

// IsDeleted reports whether the profile has been soft-deleted.
func (p *Profile) IsDeleted() bool { return p.DeletedAt != nil }

// IsExpired is true iff ExpiresAt is set and not after now.
func (p *Profile) IsExpired(now time.Time) bool {
	return p.ExpiresAt != nil && !p.ExpiresAt.After(now)
}

// IsActiveAt reports whether the profile is visible to non-owners at now.
func (p *Profile) IsActiveAt(now time.Time) bool {
	return p.Active && !p.IsDeleted() && !p.IsExpired(now)
}

// IsOwnedBy reports whether viewer owns the profile.
func (p *Profile) IsOwnedBy(viewer id.UserID) bool {
	return !viewer.IsNil() && p.AccountID == viewer
}

// NewMainProfile builds the MAIN profile for an account.
func NewMainProfile(accountID id.UserID, now time.Time) (*Profile, error) {
	if accountID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "account_id cannot be empty")
	}
	return &Profile{
		ID:          id.NewProfileID(),
		AccountID:   accountID,
		Kind:        KindMain,
		TypeKey:     "main",
		Active:      true,
		InheritMode: InheritFull,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// NewSecondaryProfile builds a SECONDARY profile from validated input.
func NewSecondaryProfile(accountID id.UserID, data ProfileData, now time.Time) (*Profile, error) {
	if accountID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "account_id cannot be empty")
	}
	if strings.TrimSpace(data.TypeKey) == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "type_key cannot be empty")
	}
	p := &Profile{
		ID:          id.NewProfileID(),
		AccountID:   accountID,
		Kind:        KindSecondary,
		TypeKey:     data.TypeKey,
		TypeLabel:   data.TypeLabel,
		Active:      true,
		InheritMode: InheritFull,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if data.Active != nil {
		p.Active = *data.Active
	}
	if data.InheritMode != "" {
		p.InheritMode = InheritMode(data.InheritMode)
	}
	if data.OverrideLocationEnabled != nil {
		p.OverrideLocationEnabled = *data.OverrideLocationEnabled
	}
	p.OverrideLocationLat = data.OverrideLocationLat
	p.OverrideLocationLng = data.OverrideLocationLng
	p.OverrideLocationLabel = data.OverrideLocationLabel
	if t, ok := data.ParsedExpiresAt(); ok {
		p.ExpiresAt = &t
	}
	return p, nil
}
