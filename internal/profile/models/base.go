package models

import (
	"time"

	id "personas/pkg/domain"
)

// Canonical field names of a base record. Override maps use the same keys.
const (
	FieldAccountID         = "account_id"
	FieldDisplayName       = "display_name"
	FieldBio               = "bio"
	FieldCity              = "city"
	FieldLat               = "lat"
	FieldLng               = "lng"
	FieldPhotos            = "photos"
	FieldGender            = "gender"
	FieldAge               = "age"
	FieldSubscriptionTier  = "subscription_tier"
	FieldSexualPreferences = "sexual_preferences"
	FieldTribes            = "tribes"
)

// BaseRecord is the canonical account-level data. It is the source of truth
// for MAIN profiles and the inheritance base for SECONDARY ones.
type BaseRecord struct {
	AccountID         id.UserID      `json:"account_id"`
	DisplayName       string         `json:"display_name"`
	Bio               *string        `json:"bio"`
	City              *string        `json:"city"`
	Lat               *float64       `json:"lat"`
	Lng               *float64       `json:"lng"`
	Photos            []string       `json:"photos"`
	Gender            *string        `json:"gender"`
	Age               *int           `json:"age"`
	SubscriptionTier  string         `json:"subscription_tier"`
	SexualPreferences []string       `json:"sexual_preferences"`
	Tribes            []string       `json:"tribes"`
	Attributes        map[string]any `json:"attributes,omitempty"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// Fields flattens the record into a fresh field map. Typed columns win over
// free-form attributes of the same name. Slices are copied so the caller may
// mutate the result.
func (b *BaseRecord) Fields() map[string]any {
	fields := make(map[string]any, len(b.Attributes)+12)
	for k, v := range b.Attributes {
		fields[k] = v
	}
	fields[FieldAccountID] = b.AccountID.String()
	fields[FieldDisplayName] = b.DisplayName
	fields[FieldBio] = derefOrNil(b.Bio)
	fields[FieldCity] = derefOrNil(b.City)
	fields[FieldLat] = derefOrNil(b.Lat)
	fields[FieldLng] = derefOrNil(b.Lng)
	fields[FieldPhotos] = cloneStrings(b.Photos)
	fields[FieldGender] = derefOrNil(b.Gender)
	fields[FieldAge] = derefOrNil(b.Age)
	fields[FieldSubscriptionTier] = b.SubscriptionTier
	fields[FieldSexualPreferences] = cloneStrings(b.SexualPreferences)
	fields[FieldTribes] = cloneStrings(b.Tribes)
	return fields
}

// ViewerAttributes derives the attributes a viewer presents to filters from
// the viewer's own base record.
func (b *BaseRecord) ViewerAttributes() ViewerAttributes {
	attrs := ViewerAttributes{
		Lat:               b.Lat,
		Lng:               b.Lng,
		Age:               b.Age,
		SexualPreferences: cloneStrings(b.SexualPreferences),
		Tribes:            cloneStrings(b.Tribes),
		Extra:             make(map[string]any, len(b.Attributes)),
	}
	if b.Gender != nil {
		attrs.Gender = *b.Gender
	}
	if b.City != nil {
		attrs.City = *b.City
	}
	for k, v := range b.Attributes {
		attrs.Extra[k] = v
	}
	return attrs
}

func derefOrNil[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func cloneStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
