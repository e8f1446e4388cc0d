package models

import (
	"encoding/json"
	"time"

	id "personas/pkg/domain"
)

// Keys added to the flattened effective profile alongside the merged fields.
const (
	KeyEffectiveLat           = "effective_lat"
	KeyEffectiveLng           = "effective_lng"
	KeyEffectiveLocationLabel = "effective_location_label"
	KeyProfileID              = "profile_id"
	KeyProfileKind            = "profile_kind"
	KeyProfileTypeKey         = "profile_type_key"
	KeyProfileTypeLabel       = "profile_type_label"
	KeyProfileActive          = "profile_active"
	KeyProfileExpiresAt       = "profile_expires_at"
)

// EffectiveProfile is the viewer-facing result of merging a base record with
// a profile and its overrides. It is derived, never stored, and callers must
// treat it as read-only.
type EffectiveProfile struct {
	Fields                 map[string]any `cbor:"fields"`
	EffectiveLat           *float64       `cbor:"effective_lat"`
	EffectiveLng           *float64       `cbor:"effective_lng"`
	EffectiveLocationLabel *string        `cbor:"effective_location_label"`
	ProfileID              id.ProfileID   `cbor:"profile_id"`
	ProfileKind            ProfileKind    `cbor:"profile_kind"`
	ProfileTypeKey         string         `cbor:"profile_type_key"`
	ProfileTypeLabel       string         `cbor:"profile_type_label"`
	ProfileActive          bool           `cbor:"profile_active"`
	ProfileExpiresAt       *time.Time     `cbor:"profile_expires_at"`
}

// Field returns a merged field value.
func (e *EffectiveProfile) Field(key string) (any, bool) {
	v, ok := e.Fields[key]
	return v, ok
}

// String returns a merged string field, or "" when absent or not a string.
func (e *EffectiveProfile) String(key string) string {
	if s, ok := e.Fields[key].(string); ok {
		return s
	}
	return ""
}

// Photos returns the effective photo list.
func (e *EffectiveProfile) Photos() []string {
	return AsStrings(e.Fields[FieldPhotos])
}

// Flatten returns a single map with the merged fields and the effective and
// profile metadata keys. The metadata keys win over same-named fields.
func (e *EffectiveProfile) Flatten() map[string]any {
	out := make(map[string]any, len(e.Fields)+9)
	for k, v := range e.Fields {
		out[k] = v
	}
	out[KeyEffectiveLat] = derefOrNil(e.EffectiveLat)
	out[KeyEffectiveLng] = derefOrNil(e.EffectiveLng)
	out[KeyEffectiveLocationLabel] = derefOrNil(e.EffectiveLocationLabel)
	out[KeyProfileID] = e.ProfileID.String()
	out[KeyProfileKind] = string(e.ProfileKind)
	out[KeyProfileTypeKey] = e.ProfileTypeKey
	out[KeyProfileTypeLabel] = e.ProfileTypeLabel
	out[KeyProfileActive] = e.ProfileActive
	if e.ProfileExpiresAt != nil {
		out[KeyProfileExpiresAt] = e.ProfileExpiresAt.UTC().Format(time.RFC3339Nano)
	} else {
		out[KeyProfileExpiresAt] = nil
	}
	return out
}

// MarshalJSON renders the flattened form; map keys are sorted so equal
// profiles produce equal bytes.
func (e EffectiveProfile) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Flatten())
}

// AsStrings converts a decoded list value into []string, skipping non-strings.
func AsStrings(v any) []string {
	switch list := v.(type) {
	case []string:
		out := make([]string, len(list))
		copy(out, list)
		return out
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// AsFloat converts a decoded numeric value into float64.
func AsFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
