// Package validation checks profile mutation payloads. It never fails: every
// violation is collected into a Result so callers can render field feedback.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"personas/internal/profile/models"
)

// Result is the outcome of validating a payload.
type Result struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// Err returns nil when valid, otherwise a single error joining the messages.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return errors.New(strings.Join(r.Errors, "; "))
}

// Validator validates profile and overrides payloads.
type Validator struct {
	structs *validator.Validate
}

// New builds a Validator whose messages use JSON field names.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{structs: v}
}

// ValidateProfile validates a create (isCreate) or update payload against now.
func (v *Validator) ValidateProfile(data models.ProfileData, isCreate bool, now time.Time) Result {
	var errs []string

	if isCreate && data.Kind == models.KindSecondary && strings.TrimSpace(data.TypeKey) == "" {
		errs = append(errs, "type_key is required for secondary profiles")
	}

	errs = append(errs, v.structErrors(data)...)

	if data.ExpiresAt != nil {
		if t, ok := models.ParseExpiresAt(*data.ExpiresAt); !ok {
			errs = append(errs, "expires_at must be a valid date")
		} else if !t.After(now) {
			errs = append(errs, "expires_at must be in the future")
		}
	}

	if data.LocationOverrideRequested() {
		if data.OverrideLocationLat == nil {
			errs = append(errs, "override_location_lat is required when override_location_enabled is true")
		}
		if data.OverrideLocationLng == nil {
			errs = append(errs, "override_location_lng is required when override_location_enabled is true")
		}
	}

	return newResult(errs)
}

// ValidateOverrides validates an overrides upsert payload.
func (v *Validator) ValidateOverrides(data models.OverridesData) Result {
	errs := v.structErrors(data)
	for key := range data.Overrides {
		if strings.TrimSpace(key) == "" {
			errs = append(errs, "overrides keys must not be empty")
			break
		}
	}
	return newResult(errs)
}

func (v *Validator) structErrors(s any) []string {
	err := v.structs.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, message(fe))
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	}
	return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
}

func newResult(errs []string) Result {
	if errs == nil {
		errs = []string{}
	}
	return Result{Valid: len(errs) == 0, Errors: errs}
}
