package filter

import (
	"encoding/json"
	"fmt"

	"personas/internal/profile/models"
	"personas/pkg/geo"
)

// RuleConfig is the rule_config object of a FILTER_VIEWER_ATTRIBUTES rule.
// Every criterion is optional; an empty config matches every viewer.
type RuleConfig struct {
	LocationRadiusKm  *float64 `json:"location_radius_km,omitempty"`
	LocationLat       *float64 `json:"location_lat,omitempty"`
	LocationLng       *float64 `json:"location_lng,omitempty"`
	SexualPreferences []string `json:"sexual_preferences,omitempty"`
	AgeMin            *float64 `json:"age_min,omitempty"`
	AgeMax            *float64 `json:"age_max,omitempty"`
	Tribes            []string `json:"tribes,omitempty"`
}

// ParseRuleConfig decodes raw rule_config. Empty or null input is an empty config.
func ParseRuleConfig(raw json.RawMessage) (RuleConfig, error) {
	var cfg RuleConfig
	if err := decodeJSON(raw, &cfg); err != nil {
		return RuleConfig{}, fmt.Errorf("decode rule_config: %w", err)
	}
	return cfg, nil
}

// IsEmpty reports whether no criterion is configured.
func (c RuleConfig) IsEmpty() bool {
	return !c.hasLocation() && len(c.SexualPreferences) == 0 &&
		c.AgeMin == nil && c.AgeMax == nil && len(c.Tribes) == 0
}

// Matches applies every configured criterion; the first failing one rejects.
func (c RuleConfig) Matches(viewer models.ViewerAttributes) bool {
	if !c.matchesLocation(viewer) {
		return false
	}
	if !intersects(c.SexualPreferences, viewer.SexualPreferences) {
		return false
	}
	if !c.matchesAge(viewer) {
		return false
	}
	return intersects(c.Tribes, viewer.Tribes)
}

func (c RuleConfig) hasLocation() bool {
	return c.LocationRadiusKm != nil && c.LocationLat != nil && c.LocationLng != nil
}

// matchesLocation compares in metres. An unknown viewer location is skipped.
func (c RuleConfig) matchesLocation(viewer models.ViewerAttributes) bool {
	if !c.hasLocation() || !viewer.HasLocation() {
		return true
	}
	center := geo.Point{Lat: *c.LocationLat, Lng: *c.LocationLng}
	at := geo.Point{Lat: *viewer.Lat, Lng: *viewer.Lng}
	return geo.HaversineMeters(center, at) <= *c.LocationRadiusKm*1000
}

// matchesAge applies inclusive bounds. An unknown viewer age is skipped.
func (c RuleConfig) matchesAge(viewer models.ViewerAttributes) bool {
	if viewer.Age == nil {
		return true
	}
	age := float64(*viewer.Age)
	if c.AgeMin != nil && age < *c.AgeMin {
		return false
	}
	if c.AgeMax != nil && age > *c.AgeMax {
		return false
	}
	return true
}

// intersects is true when nothing is configured or the lists share a value.
func intersects(configured, have []string) bool {
	if len(configured) == 0 {
		return true
	}
	set := make(map[string]struct{}, len(configured))
	for _, v := range configured {
		set[v] = struct{}{}
	}
	for _, v := range have {
		if _, ok := set[v]; ok {
			return true
		}
	}
	return false
}
