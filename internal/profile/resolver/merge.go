package resolver

import (
	"slices"

	"personas/internal/profile/models"
)

// Merge builds the effective profile. It is pure: inputs are not modified and
// equal inputs give equal outputs. overrides may be nil.
func Merge(p *models.Profile, base *models.BaseRecord, overrides *models.ProfileOverrides) *models.EffectiveProfile {
	fields := base.Fields()

	if !p.IsMain() {
		if overrides == nil {
			overrides = models.DefaultOverrides(p.ID)
		}
		if p.InheritMode.AppliesOverrides() {
			for k, v := range overrides.Fields {
				if v != nil {
					fields[k] = v
				}
			}
		}
		switch overrides.PhotosMode {
		case models.PhotosReplace:
			if overrides.Photos != nil {
				fields[models.FieldPhotos] = slices.Clone(overrides.Photos)
			}
		case models.PhotosAdd:
			photos := make([]string, 0, len(base.Photos)+len(overrides.Photos))
			photos = append(photos, base.Photos...)
			photos = append(photos, overrides.Photos...)
			fields[models.FieldPhotos] = photos
		}
	}

	ep := &models.EffectiveProfile{
		Fields:           fields,
		ProfileID:        p.ID,
		ProfileKind:      p.Kind,
		ProfileTypeKey:   p.TypeKey,
		ProfileTypeLabel: p.TypeLabel,
		ProfileActive:    p.Active,
		ProfileExpiresAt: p.ExpiresAt,
	}
	setLocation(ep, p, fields)
	return ep
}

// setLocation uses the profile's override location when enabled, otherwise
// the lat, lng and city of the merged fields. For MAIN profiles the merged
// fields are the base record's.
func setLocation(ep *models.EffectiveProfile, p *models.Profile, fields map[string]any) {
	if p.OverrideLocationEnabled {
		ep.EffectiveLat = p.OverrideLocationLat
		ep.EffectiveLng = p.OverrideLocationLng
		ep.EffectiveLocationLabel = p.OverrideLocationLabel
		return
	}
	if lat, ok := models.AsFloat(fields[models.FieldLat]); ok {
		ep.EffectiveLat = &lat
	}
	if lng, ok := models.AsFloat(fields[models.FieldLng]); ok {
		ep.EffectiveLng = &lng
	}
	if city, ok := fields[models.FieldCity].(string); ok {
		ep.EffectiveLocationLabel = &city
	}
}
