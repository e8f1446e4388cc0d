package models

import (
	"encoding/json"
	"time"

	id "personas/pkg/domain"
)

// RuleType identifies a stored visibility rule.
type RuleType string

const (
	RulePublic                 RuleType = "PUBLIC"
	RuleFilterViewerAttributes RuleType = "FILTER_VIEWER_ATTRIBUTES"
)

// VisibilityRule is a priority-ordered rule attached to a profile. Only
// enabled rules take part in evaluation. Config is the raw rule_config JSON.
type VisibilityRule struct {
	ID        string          `json:"id"`
	ProfileID id.ProfileID    `json:"profile_id"`
	Type      RuleType        `json:"rule_type"`
	Config    json.RawMessage `json:"rule_config,omitempty"`
	Priority  int             `json:"priority"`
	Enabled   bool            `json:"enabled"`
}

// Operator is a single-condition comparison operator.
type Operator string

const (
	OpEQ       Operator = "EQ"
	OpNE       Operator = "NE"
	OpIn       Operator = "IN"
	OpNotIn    Operator = "NOT_IN"
	OpGTE      Operator = "GTE"
	OpLTE      Operator = "LTE"
	OpRadiusKm Operator = "RADIUS_KM"
)

// ViewerFilter is a normalized, per-attribute filter row. Value is the raw value_json.
type ViewerFilter struct {
	ID        string          `json:"id"`
	ProfileID id.ProfileID    `json:"profile_id"`
	Attribute string          `json:"attribute"`
	Operator  Operator        `json:"operator"`
	Value     json.RawMessage `json:"value"`
}

// BlocklistEntry denies viewer access to the profile outright.
type BlocklistEntry struct {
	ProfileID    id.ProfileID `json:"profile_id"`
	ViewerUserID id.UserID    `json:"viewer_user_id"`
	CreatedAt    time.Time    `json:"created_at"`
}

// AllowlistEntry admits viewer to an allowlist-gated profile.
type AllowlistEntry struct {
	ProfileID    id.ProfileID `json:"profile_id"`
	ViewerUserID id.UserID    `json:"viewer_user_id"`
	CreatedAt    time.Time    `json:"created_at"`
}
