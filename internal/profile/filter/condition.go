package filter

import (
	"fmt"

	"personas/internal/profile/models"
	"personas/pkg/geo"
)

// Condition is a single (attribute, operator, value) test. Value is the
// decoded value_json: numbers are float64, arrays are []any, objects are
// map[string]any.
type Condition struct {
	Attribute string
	Operator  models.Operator
	Value     any
}

// ParseCondition decodes a normalized viewer filter row.
func ParseCondition(row models.ViewerFilter) (Condition, error) {
	var value any
	if err := decodeJSON(row.Value, &value); err != nil {
		return Condition{}, fmt.Errorf("decode value_json: %w", err)
	}
	return Condition{Attribute: row.Attribute, Operator: row.Operator, Value: value}, nil
}

// Matches evaluates the condition. An unknown operator never matches.
func (c Condition) Matches(viewer models.ViewerAttributes) bool {
	actual, present := viewer.Lookup(c.Attribute)

	switch c.Operator {
	case models.OpEQ:
		return present && strictEqual(actual, c.Value)
	case models.OpNE:
		return !present || !strictEqual(actual, c.Value)
	case models.OpIn:
		list, ok := c.Value.([]any)
		if !ok {
			return false
		}
		return present && contains(list, actual)
	case models.OpNotIn:
		list, ok := c.Value.([]any)
		if !ok {
			return true
		}
		return !present || !contains(list, actual)
	case models.OpGTE:
		a, b, ok := numbers(actual, c.Value)
		return present && ok && a >= b
	case models.OpLTE:
		a, b, ok := numbers(actual, c.Value)
		return present && ok && a <= b
	case models.OpRadiusKm:
		return matchesRadius(viewer, c.Value)
	}
	return false
}

// matchesRadius expects value {lat, lng, radius}. Any missing coordinate on
// either side skips the condition.
func matchesRadius(viewer models.ViewerAttributes, value any) bool {
	obj, _ := value.(map[string]any)
	lat, okLat := models.AsFloat(obj["lat"])
	lng, okLng := models.AsFloat(obj["lng"])
	if !okLat || !okLng || !viewer.HasLocation() {
		return true
	}
	radius, ok := models.AsFloat(obj["radius"])
	if !ok {
		return false
	}
	center := geo.Point{Lat: lat, Lng: lng}
	return geo.HaversineKm(center, geo.Point{Lat: *viewer.Lat, Lng: *viewer.Lng}) <= radius
}

// strictEqual compares scalars by type and value. Lists and objects are
// never equal to anything.
func strictEqual(a, b any) bool {
	if af, ok := models.AsFloat(a); ok {
		bf, ok := models.AsFloat(b)
		return ok && af == bf
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	}
	return false
}

func contains(list []any, v any) bool {
	for _, item := range list {
		if strictEqual(v, item) {
			return true
		}
	}
	return false
}

func numbers(a, b any) (float64, float64, bool) {
	af, okA := models.AsFloat(a)
	bf, okB := models.AsFloat(b)
	return af, bf, okA && okB
}
