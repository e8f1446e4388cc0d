package visibility

//go:generate mockgen -source=evaluator.go -destination=mocks/mocks.go -package=mocks Store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"personas/internal/audit"
	"personas/internal/profile/models"
	"personas/internal/profile/store"
	"personas/internal/profile/visibility/mocks"
	id "personas/pkg/domain"
	"personas/pkg/platform/sentinel"
	"personas/pkg/requestcontext"
)

func ptr[T any](v T) *T { return &v }

// =============================================================================
// Evaluator Test Suite (in-memory store)
// =============================================================================

type EvaluatorSuite struct {
	suite.Suite
	store     *store.InMemoryStore
	audit     *audit.InMemoryStore
	evaluator *Evaluator
	ctx       context.Context
	now       time.Time
	owner     id.UserID
	viewerID  id.UserID
	profile   *models.Profile
	ruleSeq   int
}

func TestEvaluatorSuite(t *testing.T) {
	suite.Run(t, new(EvaluatorSuite))
}

func (s *EvaluatorSuite) SetupTest() {
	s.store = store.NewInMemory()
	s.audit = audit.NewInMemoryStore()

	var err error
	s.evaluator, err = New(s.store, WithAuditPublisher(audit.NewPublisher(s.audit)))
	s.Require().NoError(err)

	s.now = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.owner = id.NewUserID()
	s.viewerID = id.NewUserID()
	s.profile = s.newSecondary(s.owner)
}

func (s *EvaluatorSuite) newSecondary(owner id.UserID) *models.Profile {
	p, err := models.NewSecondaryProfile(owner, models.ProfileData{TypeKey: "weekend"}, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.store.CreateProfile(s.ctx, p))
	return p
}

func (s *EvaluatorSuite) addRule(pid id.ProfileID, kind models.RuleType, config string) {
	s.ruleSeq++
	rule := models.VisibilityRule{
		ID:        "rule-" + string(rune('a'+s.ruleSeq)),
		ProfileID: pid,
		Type:      kind,
		Priority:  s.ruleSeq,
		Enabled:   true,
	}
	if config != "" {
		rule.Config = json.RawMessage(config)
	}
	s.Require().NoError(s.store.PutRule(s.ctx, rule))
}

func (s *EvaluatorSuite) addViewerFilter(pid id.ProfileID, attribute string, op models.Operator, value string) {
	s.ruleSeq++
	s.Require().NoError(s.store.PutViewerFilter(s.ctx, models.ViewerFilter{
		ID:        "vf-" + string(rune('a'+s.ruleSeq)),
		ProfileID: pid,
		Attribute: attribute,
		Operator:  op,
		Value:     json.RawMessage(value),
	}))
}

func (s *EvaluatorSuite) update(p *models.Profile, patch models.ProfilePatch) {
	updated, err := s.store.UpdateProfile(s.ctx, p.ID, p.Version, patch)
	s.Require().NoError(err)
	*p = *updated
}

func (s *EvaluatorSuite) TestNew() {
	s.Run("nil store returns error", func() {
		_, err := New(nil)
		s.Error(err)
	})
}

// =============================================================================
// Sequence outcomes
// =============================================================================

func (s *EvaluatorSuite) TestCanView() {
	viewer := models.ViewerAttributes{Age: ptr(30)}

	s.Run("unknown profile is not found", func() {
		d := s.evaluator.CanView(s.ctx, s.viewerID, viewer, id.NewProfileID())
		s.False(d.Allowed)
		s.Equal(ReasonProfileNotFound, d.Reason)
		s.Equal(StepLoadProfile, d.Step)
	})

	s.Run("no rules means no public rule", func() {
		d := s.evaluator.CanView(s.ctx, s.viewerID, viewer, s.profile.ID)
		s.False(d.Allowed)
		s.Equal(ReasonNoPublicRule, d.Reason)
		s.Equal(StepPublicRule, d.Step)
	})

	s.Run("public rule allows", func() {
		s.addRule(s.profile.ID, models.RulePublic, "")
		d := s.evaluator.CanView(s.ctx, s.viewerID, viewer, s.profile.ID)
		s.True(d.Allowed)
		s.Equal(ReasonPublic, d.Reason)
		s.Equal(StepDone, d.Step)
	})

	s.Run("disabled public rule does not count", func() {
		p := s.newSecondary(s.owner)
		s.Require().NoError(s.store.PutRule(s.ctx, models.VisibilityRule{
			ID: "disabled", ProfileID: p.ID, Type: models.RulePublic, Enabled: false,
		}))
		d := s.evaluator.CanView(s.ctx, s.viewerID, viewer, p.ID)
		s.Equal(ReasonNoPublicRule, d.Reason)
	})

	s.Run("failing rule filter denies", func() {
		p := s.newSecondary(s.owner)
		s.addRule(p.ID, models.RulePublic, "")
		s.addRule(p.ID, models.RuleFilterViewerAttributes, `{"age_min": 40}`)
		d := s.evaluator.CanView(s.ctx, s.viewerID, viewer, p.ID)
		s.False(d.Allowed)
		s.Equal(ReasonFilterNotMatched, d.Reason)
		s.Equal(StepRuleFilters, d.Step)
	})

	s.Run("malformed rule config fails closed", func() {
		p := s.newSecondary(s.owner)
		s.addRule(p.ID, models.RulePublic, "")
		s.addRule(p.ID, models.RuleFilterViewerAttributes, `{"age_min": "forty"}`)
		d := s.evaluator.CanView(s.ctx, s.viewerID, viewer, p.ID)
		s.False(d.Allowed)
		s.Equal(ReasonRulesError, d.Reason)
	})

	s.Run("failing viewer filter denies", func() {
		p := s.newSecondary(s.owner)
		s.addRule(p.ID, models.RulePublic, "")
		s.addViewerFilter(p.ID, models.FieldAge, models.OpGTE, `35`)
		d := s.evaluator.CanView(s.ctx, s.viewerID, viewer, p.ID)
		s.False(d.Allowed)
		s.Equal(ReasonViewerFilterNotMatched, d.Reason)
		s.Equal(StepViewerFilters, d.Step)
	})

	s.Run("passing viewer filter allows", func() {
		p := s.newSecondary(s.owner)
		s.addRule(p.ID, models.RulePublic, "")
		s.addViewerFilter(p.ID, models.FieldAge, models.OpGTE, `18`)
		d := s.evaluator.CanView(s.ctx, s.viewerID, viewer, p.ID)
		s.True(d.Allowed)
		s.Equal(ReasonPublic, d.Reason)
	})
}

func (s *EvaluatorSuite) TestLifecycle() {
	s.addRule(s.profile.ID, models.RulePublic, "")

	s.Run("deleted profile is denied to everyone, owner included", func() {
		p := s.newSecondary(s.owner)
		s.addRule(p.ID, models.RulePublic, "")
		_, err := s.store.SoftDeleteProfile(s.ctx, p.ID)
		s.Require().NoError(err)

		for _, viewerID := range []id.UserID{s.viewerID, s.owner} {
			d := s.evaluator.CanView(s.ctx, viewerID, models.ViewerAttributes{}, p.ID)
			s.False(d.Allowed)
			s.Equal(ReasonProfileDeleted, d.Reason)
		}
	})

	s.Run("inactive profile is hidden from non-owners", func() {
		s.update(s.profile, models.ProfilePatch{Active: ptr(false)})
		d := s.evaluator.CanView(s.ctx, s.viewerID, models.ViewerAttributes{}, s.profile.ID)
		s.False(d.Allowed)
		s.Equal(ReasonProfileInactiveOrExpired, d.Reason)
		s.Equal(StepActive, d.Step)
		s.update(s.profile, models.ProfilePatch{Active: ptr(true)})
	})

	s.Run("expired profile is hidden from non-owners", func() {
		p := s.newSecondary(s.owner)
		s.addRule(p.ID, models.RulePublic, "")
		s.update(p, models.ProfilePatch{ExpiresAt: ptr(s.now.Add(-time.Minute))})
		d := s.evaluator.CanView(s.ctx, s.viewerID, models.ViewerAttributes{}, p.ID)
		s.Equal(ReasonProfileInactiveOrExpired, d.Reason)
	})

	s.Run("expiry exactly now counts as expired", func() {
		p := s.newSecondary(s.owner)
		s.addRule(p.ID, models.RulePublic, "")
		s.update(p, models.ProfilePatch{ExpiresAt: ptr(s.now)})
		d := s.evaluator.CanView(s.ctx, s.viewerID, models.ViewerAttributes{}, p.ID)
		s.Equal(ReasonProfileInactiveOrExpired, d.Reason)
	})
}

// Scenario: an inactive profile is denied to a stranger but previewable by its owner.
func (s *EvaluatorSuite) TestInactiveProfileOwnerPreview() {
	s.addRule(s.profile.ID, models.RulePublic, "")
	s.update(s.profile, models.ProfilePatch{Active: ptr(false)})

	d := s.evaluator.CanView(s.ctx, s.viewerID, models.ViewerAttributes{}, s.profile.ID)
	s.Equal(Decision{Allowed: false, Reason: ReasonProfileInactiveOrExpired, Step: StepActive}, d)

	d = s.evaluator.CanView(s.ctx, s.owner, models.ViewerAttributes{}, s.profile.ID)
	s.Equal(Decision{Allowed: true, Reason: ReasonOwnerPreview, Step: StepActive}, d)
}

// Scenario: a blocked viewer is denied even though the profile has a PUBLIC rule.
func (s *EvaluatorSuite) TestBlockedDespitePublicRule() {
	s.addRule(s.profile.ID, models.RulePublic, "")
	s.Require().NoError(s.store.AddBlocklistEntry(s.ctx, models.BlocklistEntry{
		ProfileID: s.profile.ID, ViewerUserID: s.viewerID, CreatedAt: s.now,
	}))

	d := s.evaluator.CanView(s.ctx, s.viewerID, models.ViewerAttributes{}, s.profile.ID)
	s.False(d.Allowed)
	s.Equal(ReasonBlocked, d.Reason)
	s.Equal(StepBlocklist, d.Step)
}

func (s *EvaluatorSuite) TestOwnerBypass() {
	s.Require().NoError(s.store.AddBlocklistEntry(s.ctx, models.BlocklistEntry{
		ProfileID: s.profile.ID, ViewerUserID: s.owner, CreatedAt: s.now,
	}))
	s.addRule(s.profile.ID, models.RuleFilterViewerAttributes, `{"age_min": 99}`)

	s.Run("owner sees own profile with no public rule while blocked", func() {
		d := s.evaluator.CanView(s.ctx, s.owner, models.ViewerAttributes{}, s.profile.ID)
		s.True(d.Allowed)
		s.Equal(ReasonOwnerPreview, d.Reason)
		s.Equal(StepOwner, d.Step)
	})

	s.Run("owner sees own inactive profile", func() {
		s.update(s.profile, models.ProfilePatch{Active: ptr(false)})
		d := s.evaluator.CanView(s.ctx, s.owner, models.ViewerAttributes{}, s.profile.ID)
		s.True(d.Allowed)
		s.Equal(ReasonOwnerPreview, d.Reason)
	})

	s.Run("nil viewer is never the owner", func() {
		d := s.evaluator.CanView(s.ctx, id.UserID{}, models.ViewerAttributes{}, s.profile.ID)
		s.False(d.Allowed)
	})
}

func (s *EvaluatorSuite) TestAllowlist() {
	s.addRule(s.profile.ID, models.RulePublic, "")
	s.addRule(s.profile.ID, models.RuleFilterViewerAttributes, `{"age_min": 99}`)
	s.Require().NoError(s.store.AddAllowlistEntry(s.ctx, models.AllowlistEntry{
		ProfileID: s.profile.ID, ViewerUserID: s.viewerID, CreatedAt: s.now,
	}))

	s.Run("allowlisted viewer skips failing filters", func() {
		d := s.evaluator.CanView(s.ctx, s.viewerID, models.ViewerAttributes{Age: ptr(20)}, s.profile.ID)
		s.True(d.Allowed)
		s.Equal(ReasonAllowlisted, d.Reason)
		s.Equal(StepAllowlist, d.Step)
	})

	s.Run("viewer missing from a non-empty allowlist is denied", func() {
		d := s.evaluator.CanView(s.ctx, id.NewUserID(), models.ViewerAttributes{Age: ptr(20)}, s.profile.ID)
		s.False(d.Allowed)
		s.Equal(ReasonNotOnAllowlist, d.Reason)
	})

	s.Run("blocklist wins over allowlist", func() {
		s.Require().NoError(s.store.AddBlocklistEntry(s.ctx, models.BlocklistEntry{
			ProfileID: s.profile.ID, ViewerUserID: s.viewerID, CreatedAt: s.now,
		}))
		d := s.evaluator.CanView(s.ctx, s.viewerID, models.ViewerAttributes{}, s.profile.ID)
		s.Equal(ReasonBlocked, d.Reason)
	})
}

func (s *EvaluatorSuite) TestAudit() {
	s.addRule(s.profile.ID, models.RulePublic, "")
	ctx := requestcontext.WithRequestID(s.ctx, "req-1")

	s.evaluator.CanView(ctx, s.viewerID, models.ViewerAttributes{}, s.profile.ID)

	events, err := s.audit.ListByProfile(ctx, s.profile.ID.String())
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(audit.ActionVisibilityDecision, events[0].Action)
	s.Equal(audit.DecisionAllow, events[0].Decision)
	s.Equal(string(ReasonPublic), events[0].Reason)
	s.Equal("done", events[0].Step)
	s.Equal("req-1", events[0].RequestID)
	s.Equal(s.now, events[0].Timestamp)
}

// =============================================================================
// Batch
// =============================================================================

func (s *EvaluatorSuite) TestEvaluateBatch() {
	viewer := models.ViewerAttributes{Age: ptr(30)}

	public := s.profile
	s.addRule(public.ID, models.RulePublic, "")

	filtered := s.newSecondary(s.owner)
	s.addRule(filtered.ID, models.RulePublic, "")
	s.addRule(filtered.ID, models.RuleFilterViewerAttributes, `{"age_max": 25}`)

	blocked := s.newSecondary(s.owner)
	s.addRule(blocked.ID, models.RulePublic, "")
	s.Require().NoError(s.store.AddBlocklistEntry(s.ctx, models.BlocklistEntry{
		ProfileID: blocked.ID, ViewerUserID: s.viewerID, CreatedAt: s.now,
	}))

	gated := s.newSecondary(s.owner)
	s.Require().NoError(s.store.AddAllowlistEntry(s.ctx, models.AllowlistEntry{
		ProfileID: gated.ID, ViewerUserID: s.viewerID, CreatedAt: s.now,
	}))

	closed := s.newSecondary(s.owner)
	s.Require().NoError(s.store.AddAllowlistEntry(s.ctx, models.AllowlistEntry{
		ProfileID: closed.ID, ViewerUserID: id.NewUserID(), CreatedAt: s.now,
	}))

	deleted := s.newSecondary(s.owner)
	s.addRule(deleted.ID, models.RulePublic, "")
	_, err := s.store.SoftDeleteProfile(s.ctx, deleted.ID)
	s.Require().NoError(err)

	missing := id.NewProfileID()
	ids := []id.ProfileID{public.ID, filtered.ID, blocked.ID, gated.ID, closed.ID, deleted.ID, missing}

	s.Run("decides each live profile", func() {
		got, err := s.evaluator.EvaluateBatch(s.ctx, s.viewerID, viewer, ids)
		s.Require().NoError(err)

		s.Len(got, 5)
		s.Equal(ReasonPublic, got[public.ID].Reason)
		s.Equal(ReasonFilterNotMatched, got[filtered.ID].Reason)
		s.Equal(ReasonBlocked, got[blocked.ID].Reason)
		s.Equal(ReasonAllowlisted, got[gated.ID].Reason)
		s.Equal(ReasonNotOnAllowlist, got[closed.ID].Reason)
		s.NotContains(got, deleted.ID)
		s.NotContains(got, missing)
	})

	s.Run("agrees with the single path", func() {
		got, err := s.evaluator.EvaluateBatch(s.ctx, s.viewerID, viewer, ids)
		s.Require().NoError(err)
		for pid, d := range got {
			s.Equal(s.evaluator.CanView(s.ctx, s.viewerID, viewer, pid), d, pid.String())
		}
	})

	s.Run("bool view matches decisions", func() {
		got, err := s.evaluator.CanViewBatch(s.ctx, s.viewerID, viewer, ids)
		s.Require().NoError(err)
		s.Equal(map[id.ProfileID]bool{
			public.ID:   true,
			filtered.ID: false,
			blocked.ID:  false,
			gated.ID:    true,
			closed.ID:   false,
		}, got)
	})

	s.Run("empty input", func() {
		got, err := s.evaluator.CanViewBatch(s.ctx, s.viewerID, viewer, nil)
		s.Require().NoError(err)
		s.Empty(got)
	})

	s.Run("batch decisions are not audited", func() {
		before := len(s.audit.Events())
		_, err := s.evaluator.EvaluateBatch(s.ctx, s.viewerID, viewer, ids)
		s.Require().NoError(err)
		s.Len(s.audit.Events(), before)
	})
}

// The batch path does not consult normalized viewer filters, so it can allow
// a profile that CanView denies for the same viewer.
func (s *EvaluatorSuite) TestBatchOmitsViewerFilters() {
	s.addRule(s.profile.ID, models.RulePublic, "")
	s.addViewerFilter(s.profile.ID, models.FieldGender, models.OpEQ, `"f"`)
	viewer := models.ViewerAttributes{Gender: "m"}

	single := s.evaluator.CanView(s.ctx, s.viewerID, viewer, s.profile.ID)
	s.False(single.Allowed)
	s.Equal(ReasonViewerFilterNotMatched, single.Reason)

	batch, err := s.evaluator.CanViewBatch(s.ctx, s.viewerID, viewer, []id.ProfileID{s.profile.ID})
	s.Require().NoError(err)
	s.True(batch[s.profile.ID])
}

// =============================================================================
// Store failures (mocked)
// =============================================================================

type EvaluatorFailureSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	mockStore *mocks.MockStore
	evaluator *Evaluator
	ctx       context.Context
	viewerID  id.UserID
	profile   *models.Profile
}

func TestEvaluatorFailureSuite(t *testing.T) {
	suite.Run(t, new(EvaluatorFailureSuite))
}

func (s *EvaluatorFailureSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockStore = mocks.NewMockStore(s.ctrl)

	var err error
	s.evaluator, err = New(s.mockStore, WithConcurrency(2))
	s.Require().NoError(err)

	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), now)
	s.viewerID = id.NewUserID()
	s.profile, err = models.NewSecondaryProfile(id.NewUserID(), models.ProfileData{TypeKey: "weekend"}, now)
	s.Require().NoError(err)
}

func (s *EvaluatorFailureSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *EvaluatorFailureSuite) TestCanView() {
	storeErr := errors.New("connection reset")

	s.Run("profile read failure fails closed", func() {
		s.mockStore.EXPECT().GetProfile(gomock.Any(), s.profile.ID).Return(nil, storeErr)

		d := s.evaluator.CanView(s.ctx, s.viewerID, models.ViewerAttributes{}, s.profile.ID)
		s.False(d.Allowed)
		s.Equal(ReasonStoreUnavailable, d.Reason)
	})

	s.Run("not-found sentinel maps to profile_not_found", func() {
		s.mockStore.EXPECT().GetProfile(gomock.Any(), s.profile.ID).Return(nil, sentinel.ErrNotFound)

		d := s.evaluator.CanView(s.ctx, s.viewerID, models.ViewerAttributes{}, s.profile.ID)
		s.Equal(ReasonProfileNotFound, d.Reason)
	})

	s.Run("rules read failure is rules_error", func() {
		s.mockStore.EXPECT().GetProfile(gomock.Any(), s.profile.ID).Return(s.profile, nil)
		s.mockStore.EXPECT().IsBlocked(gomock.Any(), s.profile.ID, s.viewerID).Return(false, nil)
		s.mockStore.EXPECT().GetAllowlistEntries(gomock.Any(), s.profile.ID).Return(nil, nil)
		s.mockStore.EXPECT().GetEnabledRules(gomock.Any(), s.profile.ID).Return(nil, storeErr)

		d := s.evaluator.CanView(s.ctx, s.viewerID, models.ViewerAttributes{}, s.profile.ID)
		s.False(d.Allowed)
		s.Equal(ReasonRulesError, d.Reason)
		s.Equal(StepRules, d.Step)
	})

	s.Run("viewer filter read failure is rules_error", func() {
		s.mockStore.EXPECT().GetProfile(gomock.Any(), s.profile.ID).Return(s.profile, nil)
		s.mockStore.EXPECT().IsBlocked(gomock.Any(), s.profile.ID, s.viewerID).Return(false, nil)
		s.mockStore.EXPECT().GetAllowlistEntries(gomock.Any(), s.profile.ID).Return(nil, nil)
		s.mockStore.EXPECT().GetEnabledRules(gomock.Any(), s.profile.ID).Return([]models.VisibilityRule{
			{ID: "r1", ProfileID: s.profile.ID, Type: models.RulePublic, Enabled: true},
		}, nil)
		s.mockStore.EXPECT().GetViewerFilters(gomock.Any(), s.profile.ID).Return(nil, storeErr)

		d := s.evaluator.CanView(s.ctx, s.viewerID, models.ViewerAttributes{}, s.profile.ID)
		s.Equal(ReasonRulesError, d.Reason)
		s.Equal(StepViewerFilters, d.Step)
	})

	s.Run("blocklist read failure stops before rules", func() {
		s.mockStore.EXPECT().GetProfile(gomock.Any(), s.profile.ID).Return(s.profile, nil)
		s.mockStore.EXPECT().IsBlocked(gomock.Any(), s.profile.ID, s.viewerID).Return(false, storeErr)

		d := s.evaluator.CanView(s.ctx, s.viewerID, models.ViewerAttributes{}, s.profile.ID)
		s.Equal(ReasonStoreUnavailable, d.Reason)
		s.Equal(StepBlocklist, d.Step)
	})
}

func (s *EvaluatorFailureSuite) TestEvaluateBatch() {
	storeErr := errors.New("connection reset")
	ids := []id.ProfileID{s.profile.ID}

	s.Run("rules preload failure denies with rules_error", func() {
		s.mockStore.EXPECT().GetProfilesByIDs(gomock.Any(), ids).Return([]*models.Profile{s.profile}, nil)
		s.mockStore.EXPECT().GetBlockedProfileIDs(gomock.Any(), ids, s.viewerID).Return(models.NewProfileIDSet(), nil)
		s.mockStore.EXPECT().GetAllowlistEntriesForViewer(gomock.Any(), ids, s.viewerID).Return(nil, nil)
		s.mockStore.EXPECT().GetAllowlistEntriesByProfileIDs(gomock.Any(), ids).Return(nil, nil)
		s.mockStore.EXPECT().GetEnabledRulesByProfileIDs(gomock.Any(), ids).Return(nil, storeErr)

		got, err := s.evaluator.EvaluateBatch(s.ctx, s.viewerID, models.ViewerAttributes{}, ids)
		s.Require().NoError(err)
		s.Equal(ReasonRulesError, got[s.profile.ID].Reason)
	})

	s.Run("other preload failure returns empty result and error", func() {
		s.mockStore.EXPECT().GetProfilesByIDs(gomock.Any(), ids).Return(nil, storeErr)
		s.mockStore.EXPECT().GetBlockedProfileIDs(gomock.Any(), ids, s.viewerID).Return(models.NewProfileIDSet(), nil).AnyTimes()
		s.mockStore.EXPECT().GetAllowlistEntriesForViewer(gomock.Any(), ids, s.viewerID).Return(nil, nil).AnyTimes()
		s.mockStore.EXPECT().GetAllowlistEntriesByProfileIDs(gomock.Any(), ids).Return(nil, nil).AnyTimes()
		s.mockStore.EXPECT().GetEnabledRulesByProfileIDs(gomock.Any(), ids).Return(nil, nil).AnyTimes()

		got, err := s.evaluator.EvaluateBatch(s.ctx, s.viewerID, models.ViewerAttributes{}, ids)
		s.Require().Error(err)
		s.ErrorIs(err, storeErr)
		s.Empty(got)
	})
}
