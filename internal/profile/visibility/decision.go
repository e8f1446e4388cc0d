package visibility

import "fmt"

// Step names a transition of the evaluation sequence. A Decision records the
// step that produced it; StepDone means every check passed.
type Step int

const (
	StepLoadProfile Step = iota + 1
	StepDeleted
	StepActive
	StepOwner
	StepBlocklist
	StepAllowlist
	StepRules
	StepPublicRule
	StepRuleFilters
	StepViewerFilters
	StepDone
)

var stepNames = map[Step]string{
	StepLoadProfile:   "load_profile",
	StepDeleted:       "deleted",
	StepActive:        "active",
	StepOwner:         "owner",
	StepBlocklist:     "blocklist",
	StepAllowlist:     "allowlist",
	StepRules:         "rules",
	StepPublicRule:    "public_rule",
	StepRuleFilters:   "rule_filters",
	StepViewerFilters: "viewer_filters",
	StepDone:          "done",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// MarshalText renders the step name.
func (s Step) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a step name.
func (s *Step) UnmarshalText(b []byte) error {
	for step, name := range stepNames {
		if name == string(b) {
			*s = step
			return nil
		}
	}
	return fmt.Errorf("unknown step %q", b)
}

// Reason explains a Decision.
type Reason string

const (
	ReasonProfileNotFound          Reason = "profile_not_found"
	ReasonProfileDeleted           Reason = "profile_deleted"
	ReasonOwnerPreview             Reason = "owner_preview"
	ReasonProfileInactiveOrExpired Reason = "profile_inactive_or_expired"
	ReasonBlocked                  Reason = "blocked"
	ReasonAllowlisted              Reason = "allowlisted"
	ReasonNotOnAllowlist           Reason = "not_on_allowlist"
	ReasonRulesError               Reason = "rules_error"
	ReasonNoPublicRule             Reason = "no_public_rule"
	ReasonFilterNotMatched         Reason = "filter_not_matched"
	ReasonViewerFilterNotMatched   Reason = "viewer_filter_not_matched"
	ReasonPublic                   Reason = "public"
	ReasonStoreUnavailable         Reason = "store_unavailable"
)

// Decision is an allow/deny answer for one viewer and one profile.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  Reason `json:"reason"`
	Step    Step   `json:"step"`
}

func allow(reason Reason) (Decision, bool) {
	return Decision{Allowed: true, Reason: reason}, true
}

func deny(reason Reason) (Decision, bool) {
	return Decision{Allowed: false, Reason: reason}, true
}

// next continues to the following step.
func next() (Decision, bool) {
	return Decision{}, false
}
