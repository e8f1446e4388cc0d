package models

// ViewerAttributes are the facts about a viewer that visibility filters test.
// Missing facts are nil/empty; filters decide whether absence passes.
type ViewerAttributes struct {
	Lat               *float64       `json:"lat,omitempty"`
	Lng               *float64       `json:"lng,omitempty"`
	Age               *int           `json:"age,omitempty"`
	Gender            string         `json:"gender,omitempty"`
	City              string         `json:"city,omitempty"`
	SexualPreferences []string       `json:"sexual_preferences,omitempty"`
	Tribes            []string       `json:"tribes,omitempty"`
	Extra             map[string]any `json:"extra,omitempty"`
}

// HasLocation reports whether both coordinates are known.
func (v ViewerAttributes) HasLocation() bool {
	return v.Lat != nil && v.Lng != nil
}

// Lookup returns the named attribute for single-condition filters. Numeric
// attributes are returned as float64. The second result is false when the
// viewer has no value for the attribute.
func (v ViewerAttributes) Lookup(name string) (any, bool) {
	switch name {
	case FieldLat:
		if v.Lat == nil {
			return nil, false
		}
		return *v.Lat, true
	case FieldLng:
		if v.Lng == nil {
			return nil, false
		}
		return *v.Lng, true
	case FieldAge:
		if v.Age == nil {
			return nil, false
		}
		return float64(*v.Age), true
	case FieldGender:
		return v.Gender, v.Gender != ""
	case FieldCity:
		return v.City, v.City != ""
	case FieldSexualPreferences:
		return v.SexualPreferences, v.SexualPreferences != nil
	case FieldTribes:
		return v.Tribes, v.Tribes != nil
	}
	val, ok := v.Extra[name]
	if !ok || val == nil {
		return nil, false
	}
	return val, true
}
