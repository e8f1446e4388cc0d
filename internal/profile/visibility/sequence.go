package visibility

import (
	"context"
	"errors"
	"time"

	"personas/internal/profile/filter"
	"personas/internal/profile/models"
	id "personas/pkg/domain"
	"personas/pkg/platform/sentinel"
)

// facts is what the steps consult about one (profile, viewer) pair. The single
// path reads them lazily from the store; the batch path serves them from
// preloaded sets.
type facts interface {
	profile(ctx context.Context) (*models.Profile, error)
	blocked(ctx context.Context) (bool, error)
	allowlist(ctx context.Context) (gated, listed bool, err error)
	rules(ctx context.Context) ([]models.VisibilityRule, error)
	viewerFilters(ctx context.Context) ([]models.ViewerFilter, error)
}

type evaluation struct {
	viewerID id.UserID
	viewer   models.ViewerAttributes
	now      time.Time
	facts    facts

	profile *models.Profile
	rules   []models.VisibilityRule
	// err is the read or decode failure behind a fail-closed deny.
	err error
}

type step struct {
	name Step
	run  func(ctx context.Context, ev *evaluation) (Decision, bool)
}

// sequence is an ordered, short-circuiting list of steps. The first step that
// reports done decides; if none does, the profile is public to the viewer.
type sequence []step

func (seq sequence) evaluate(ctx context.Context, ev *evaluation) Decision {
	for _, s := range seq {
		if d, done := s.run(ctx, ev); done {
			d.Step = s.name
			return d
		}
	}
	return Decision{Allowed: true, Reason: ReasonPublic, Step: StepDone}
}

var singleSequence = sequence{
	{StepLoadProfile, loadProfile},
	{StepDeleted, checkDeleted},
	{StepActive, checkActive},
	{StepOwner, checkOwner},
	{StepBlocklist, checkBlocklist},
	{StepAllowlist, checkAllowlist},
	{StepRules, loadRules},
	{StepPublicRule, requirePublicRule},
	{StepRuleFilters, checkRuleFilters},
	{StepViewerFilters, checkViewerFilters},
}

// batchSequence never consults normalized viewer filters, so a grid can show
// a profile whose detail page the same viewer is denied. This divergence is
// kept as is; see TestBatchOmitsViewerFilters.
var batchSequence = sequence{
	{StepLoadProfile, loadProfile},
	{StepDeleted, checkDeleted},
	{StepActive, checkActive},
	{StepOwner, checkOwner},
	{StepBlocklist, checkBlocklist},
	{StepAllowlist, checkAllowlist},
	{StepRules, loadRules},
	{StepPublicRule, requirePublicRule},
	{StepRuleFilters, checkRuleFilters},
}

func loadProfile(ctx context.Context, ev *evaluation) (Decision, bool) {
	p, err := ev.facts.profile(ctx)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return deny(ReasonProfileNotFound)
		}
		ev.err = err
		return deny(ReasonStoreUnavailable)
	}
	ev.profile = p
	return next()
}

func checkDeleted(_ context.Context, ev *evaluation) (Decision, bool) {
	if ev.profile.IsDeleted() {
		return deny(ReasonProfileDeleted)
	}
	return next()
}

// checkActive lets the owner preview an inactive or expired profile.
func checkActive(_ context.Context, ev *evaluation) (Decision, bool) {
	if ev.profile.IsActiveAt(ev.now) {
		return next()
	}
	if ev.profile.IsOwnedBy(ev.viewerID) {
		return allow(ReasonOwnerPreview)
	}
	return deny(ReasonProfileInactiveOrExpired)
}

func checkOwner(_ context.Context, ev *evaluation) (Decision, bool) {
	if ev.profile.IsOwnedBy(ev.viewerID) {
		return allow(ReasonOwnerPreview)
	}
	return next()
}

func checkBlocklist(ctx context.Context, ev *evaluation) (Decision, bool) {
	blocked, err := ev.facts.blocked(ctx)
	if err != nil {
		ev.err = err
		return deny(ReasonStoreUnavailable)
	}
	if blocked {
		return deny(ReasonBlocked)
	}
	return next()
}

// checkAllowlist decides both branches of a gated profile; rules and filters
// are not evaluated for it.
func checkAllowlist(ctx context.Context, ev *evaluation) (Decision, bool) {
	gated, listed, err := ev.facts.allowlist(ctx)
	if err != nil {
		ev.err = err
		return deny(ReasonStoreUnavailable)
	}
	if !gated {
		return next()
	}
	if listed {
		return allow(ReasonAllowlisted)
	}
	return deny(ReasonNotOnAllowlist)
}

func loadRules(ctx context.Context, ev *evaluation) (Decision, bool) {
	rules, err := ev.facts.rules(ctx)
	if err != nil {
		ev.err = err
		return deny(ReasonRulesError)
	}
	ev.rules = rules
	return next()
}

func requirePublicRule(_ context.Context, ev *evaluation) (Decision, bool) {
	for _, r := range ev.rules {
		if r.Enabled && r.Type == models.RulePublic {
			return next()
		}
	}
	return deny(ReasonNoPublicRule)
}

func checkRuleFilters(_ context.Context, ev *evaluation) (Decision, bool) {
	for _, r := range ev.rules {
		if !r.Enabled || r.Type != models.RuleFilterViewerAttributes {
			continue
		}
		f, err := filter.FromRule(r)
		if err != nil {
			ev.err = err
			return deny(ReasonRulesError)
		}
		if !f.Matches(ev.viewer) {
			return deny(ReasonFilterNotMatched)
		}
	}
	return next()
}

func checkViewerFilters(ctx context.Context, ev *evaluation) (Decision, bool) {
	rows, err := ev.facts.viewerFilters(ctx)
	if err != nil {
		ev.err = err
		return deny(ReasonRulesError)
	}
	for _, row := range rows {
		f, err := filter.FromViewerFilter(row)
		if err != nil {
			ev.err = err
			return deny(ReasonRulesError)
		}
		if !f.Matches(ev.viewer) {
			return deny(ReasonViewerFilterNotMatched)
		}
	}
	return next()
}
