package audit

import "time"

// Actions recorded in the audit trail.
const (
	ActionVisibilityDecision = "visibility_decision"
	ActionProfileCreated     = "profile_created"
	ActionProfileUpdated     = "profile_updated"
	ActionProfileDeleted     = "profile_deleted"
	ActionOverridesUpserted  = "overrides_upserted"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	ActorID   string    `json:"actor_id,omitempty"`
	ProfileID string    `json:"profile_id,omitempty"`
	Decision  string    `json:"decision,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Step      string    `json:"step,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
}

// Decision values.
const (
	DecisionAllow = "allow"
	DecisionDeny  = "deny"
)
