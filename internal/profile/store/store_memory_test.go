package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"personas/internal/profile/models"
	id "personas/pkg/domain"
	"personas/pkg/platform/sentinel"
	"personas/pkg/requestcontext"
)

// =============================================================================
// In-memory Store Test Suite
// =============================================================================

type InMemoryStoreSuite struct {
	suite.Suite
	store   *InMemoryStore
	ctx     context.Context
	now     time.Time
	account id.UserID
	main    *models.Profile
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.now = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.account = id.NewUserID()

	var err error
	s.main, err = models.NewMainProfile(s.account, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.store.CreateProfile(s.ctx, s.main))
}

func (s *InMemoryStoreSuite) secondary(typeKey string) *models.Profile {
	p, err := models.NewSecondaryProfile(s.account, models.ProfileData{TypeKey: typeKey}, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.store.CreateProfile(s.ctx, p))
	return p
}

func (s *InMemoryStoreSuite) TestProfiles() {
	s.Run("second main profile conflicts", func() {
		another, err := models.NewMainProfile(s.account, s.now)
		s.Require().NoError(err)
		err = s.store.CreateProfile(s.ctx, another)
		s.ErrorIs(err, sentinel.ErrConflict)
	})

	s.Run("missing profile is not found", func() {
		_, err := s.store.GetProfile(s.ctx, id.NewProfileID())
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("returned profiles are copies", func() {
		p, err := s.store.GetProfile(s.ctx, s.main.ID)
		s.Require().NoError(err)
		p.Active = false
		again, err := s.store.GetProfile(s.ctx, s.main.ID)
		s.Require().NoError(err)
		s.True(again.Active)
	})

	s.Run("list puts main first and counts secondaries", func() {
		s.secondary("weekend")
		s.secondary("travel")

		list, err := s.store.ListProfiles(s.ctx, s.account)
		s.Require().NoError(err)
		s.Len(list, 3)
		s.Equal(models.KindMain, list[0].Kind)

		count, err := s.store.CountSecondaryProfiles(s.ctx, s.account)
		s.Require().NoError(err)
		s.Equal(2, count)
	})
}

func (s *InMemoryStoreSuite) TestOptimisticUpdate() {
	p := s.secondary("weekend")
	label := "Weekend"

	s.Run("matching version applies and increments", func() {
		updated, err := s.store.UpdateProfile(s.ctx, p.ID, 1, models.ProfilePatch{TypeLabel: &label})
		s.Require().NoError(err)
		s.Equal(2, updated.Version)
		s.Equal("Weekend", updated.TypeLabel)
	})

	s.Run("stale version conflicts and leaves the row untouched", func() {
		other := "Other"
		_, err := s.store.UpdateProfile(s.ctx, p.ID, 1, models.ProfilePatch{TypeLabel: &other})
		s.ErrorIs(err, sentinel.ErrConflict)

		current, err := s.store.GetProfile(s.ctx, p.ID)
		s.Require().NoError(err)
		s.Equal("Weekend", current.TypeLabel)
		s.Equal(2, current.Version)
	})
}

func (s *InMemoryStoreSuite) TestSoftDelete() {
	s.Run("main profile cannot be deleted", func() {
		_, err := s.store.SoftDeleteProfile(s.ctx, s.main.ID)
		s.ErrorIs(err, sentinel.ErrInvalidState)
	})

	s.Run("secondary is hidden from batch reads but still loadable", func() {
		p := s.secondary("weekend")
		deleted, err := s.store.SoftDeleteProfile(s.ctx, p.ID)
		s.Require().NoError(err)
		s.False(deleted.Active)
		s.NotNil(deleted.DeletedAt)

		batch, err := s.store.GetProfilesByIDs(s.ctx, []id.ProfileID{p.ID, s.main.ID, s.main.ID})
		s.Require().NoError(err)
		s.Len(batch, 1)
		s.Equal(s.main.ID, batch[0].ID)

		single, err := s.store.GetProfile(s.ctx, p.ID)
		s.Require().NoError(err)
		s.True(single.IsDeleted())

		_, err = s.store.UpdateProfile(s.ctx, p.ID, deleted.Version, models.ProfilePatch{})
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *InMemoryStoreSuite) TestAccessLists() {
	p := s.secondary("weekend")
	viewer := id.NewUserID()

	s.Require().NoError(s.store.AddBlocklistEntry(s.ctx, models.BlocklistEntry{ProfileID: p.ID, ViewerUserID: viewer}))
	s.Require().NoError(s.store.AddAllowlistEntry(s.ctx, models.AllowlistEntry{ProfileID: s.main.ID, ViewerUserID: viewer}))
	s.Require().NoError(s.store.AddAllowlistEntry(s.ctx, models.AllowlistEntry{ProfileID: s.main.ID, ViewerUserID: viewer}))

	blocked, err := s.store.IsBlocked(s.ctx, p.ID, viewer)
	s.Require().NoError(err)
	s.True(blocked)

	set, err := s.store.GetBlockedProfileIDs(s.ctx, []id.ProfileID{p.ID, s.main.ID}, viewer)
	s.Require().NoError(err)
	s.True(set.Has(p.ID))
	s.False(set.Has(s.main.ID))

	entries, err := s.store.GetAllowlistEntries(s.ctx, s.main.ID)
	s.Require().NoError(err)
	s.Len(entries, 1)

	forViewer, err := s.store.GetAllowlistEntriesForViewer(s.ctx, []id.ProfileID{p.ID, s.main.ID}, id.NewUserID())
	s.Require().NoError(err)
	s.Empty(forViewer)
}

func (s *InMemoryStoreSuite) TestRules() {
	p := s.secondary("weekend")
	put := func(ruleID string, priority int, enabled bool) {
		s.Require().NoError(s.store.PutRule(s.ctx, models.VisibilityRule{
			ID: ruleID, ProfileID: p.ID, Type: models.RulePublic, Priority: priority, Enabled: enabled,
			Config: json.RawMessage(`{}`),
		}))
	}
	put("b", 2, true)
	put("a", 1, true)
	put("c", 0, false)

	rules, err := s.store.GetEnabledRules(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Require().Len(rules, 2)
	s.Equal("a", rules[0].ID)
	s.Equal("b", rules[1].ID)

	grouped, err := s.store.GetEnabledRulesByProfileIDs(s.ctx, []id.ProfileID{p.ID, s.main.ID})
	s.Require().NoError(err)
	s.Len(grouped[p.ID], 2)
	s.Empty(grouped[s.main.ID])
}
