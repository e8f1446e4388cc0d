// Package filter evaluates viewer attributes against the two filter shapes a
// profile can carry: the rule_config object of a FILTER_VIEWER_ATTRIBUTES rule,
// and a normalized single-condition viewer filter row.
//
// The two shapes live in different tables and have different semantics. They
// are deliberately not unified.
package filter

import (
	"encoding/json"
	"fmt"

	"personas/internal/profile/models"
)

// Kind tags which filter shape a Filter carries.
type Kind int

const (
	KindConfig Kind = iota + 1
	KindCondition
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindCondition:
		return "condition"
	}
	return "unknown"
}

// Filter is a tagged union of RuleConfig and Condition. Exactly one of the
// two pointers is set, matching Kind.
type Filter struct {
	Kind      Kind
	Config    *RuleConfig
	Condition *Condition
}

// FromRule builds a config-shaped filter from a FILTER_VIEWER_ATTRIBUTES rule.
func FromRule(rule models.VisibilityRule) (Filter, error) {
	if rule.Type != models.RuleFilterViewerAttributes {
		return Filter{}, fmt.Errorf("rule %s is %s, not a filter rule", rule.ID, rule.Type)
	}
	cfg, err := ParseRuleConfig(rule.Config)
	if err != nil {
		return Filter{}, fmt.Errorf("rule %s: %w", rule.ID, err)
	}
	return Filter{Kind: KindConfig, Config: &cfg}, nil
}

// FromViewerFilter builds a single-condition filter from a normalized row.
func FromViewerFilter(row models.ViewerFilter) (Filter, error) {
	cond, err := ParseCondition(row)
	if err != nil {
		return Filter{}, fmt.Errorf("viewer filter %s: %w", row.ID, err)
	}
	return Filter{Kind: KindCondition, Condition: &cond}, nil
}

// Matches reports whether the viewer passes the filter. A zero Filter matches.
func (f Filter) Matches(viewer models.ViewerAttributes) bool {
	switch f.Kind {
	case KindConfig:
		return f.Config == nil || f.Config.Matches(viewer)
	case KindCondition:
		return f.Condition == nil || f.Condition.Matches(viewer)
	}
	return true
}

func decodeJSON(raw json.RawMessage, out any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, out)
}
