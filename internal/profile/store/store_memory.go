package store

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"personas/internal/profile/models"
	id "personas/pkg/domain"
	"personas/pkg/platform/sentinel"
	"personas/pkg/requestcontext"
)

// InMemoryStore is a Store backed by maps. Returned values are copies.
type InMemoryStore struct {
	mu        sync.RWMutex
	profiles  map[id.ProfileID]*models.Profile
	bases     map[id.UserID]*models.BaseRecord
	overrides map[id.ProfileID]*models.ProfileOverrides
	blocklist map[id.ProfileID]map[id.UserID]models.BlocklistEntry
	allowlist map[id.ProfileID][]models.AllowlistEntry
	rules     map[id.ProfileID][]models.VisibilityRule
	filters   map[id.ProfileID][]models.ViewerFilter
}

var _ Store = (*InMemoryStore)(nil)

// NewInMemory builds an empty in-memory store.
func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		profiles:  make(map[id.ProfileID]*models.Profile),
		bases:     make(map[id.UserID]*models.BaseRecord),
		overrides: make(map[id.ProfileID]*models.ProfileOverrides),
		blocklist: make(map[id.ProfileID]map[id.UserID]models.BlocklistEntry),
		allowlist: make(map[id.ProfileID][]models.AllowlistEntry),
		rules:     make(map[id.ProfileID][]models.VisibilityRule),
		filters:   make(map[id.ProfileID][]models.ViewerFilter),
	}
}

// =============================================================================
// Profiles
// =============================================================================

func (s *InMemoryStore) GetProfile(_ context.Context, profileID id.ProfileID) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[profileID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneProfile(p), nil
}

// GetProfilesByIDs returns the non-deleted profiles among profileIDs in input
// order. Unknown and duplicate ids are skipped.
func (s *InMemoryStore) GetProfilesByIDs(_ context.Context, profileIDs []id.ProfileID) ([]*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := models.NewProfileIDSet()
	out := make([]*models.Profile, 0, len(profileIDs))
	for _, pid := range profileIDs {
		if seen.Has(pid) {
			continue
		}
		seen.Add(pid)
		if p, ok := s.profiles[pid]; ok && !p.IsDeleted() {
			out = append(out, cloneProfile(p))
		}
	}
	return out, nil
}

func (s *InMemoryStore) GetMainProfile(_ context.Context, accountID id.UserID) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.profiles {
		if p.AccountID == accountID && p.IsMain() && !p.IsDeleted() {
			return cloneProfile(p), nil
		}
	}
	return nil, sentinel.ErrNotFound
}

// ListProfiles returns the account's non-deleted profiles, MAIN first, then
// by creation time.
func (s *InMemoryStore) ListProfiles(_ context.Context, accountID id.UserID) ([]*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Profile
	for _, p := range s.profiles {
		if p.AccountID == accountID && !p.IsDeleted() {
			out = append(out, cloneProfile(p))
		}
	}
	SortProfiles(out)
	return out, nil
}

func (s *InMemoryStore) CountSecondaryProfiles(_ context.Context, accountID id.UserID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, p := range s.profiles {
		if p.AccountID == accountID && !p.IsMain() && !p.IsDeleted() {
			count++
		}
	}
	return count, nil
}

func (s *InMemoryStore) CreateProfile(_ context.Context, profile *models.Profile) error {
	if profile == nil {
		return fmt.Errorf("profile is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.profiles[profile.ID]; exists {
		return fmt.Errorf("profile %s: %w", profile.ID, sentinel.ErrConflict)
	}
	if profile.IsMain() {
		for _, p := range s.profiles {
			if p.AccountID == profile.AccountID && p.IsMain() && !p.IsDeleted() {
				return fmt.Errorf("main profile for account %s: %w", profile.AccountID, sentinel.ErrConflict)
			}
		}
	}
	s.profiles[profile.ID] = cloneProfile(profile)
	return nil
}

// UpdateProfile applies patch only if the stored version equals expectedVersion.
func (s *InMemoryStore) UpdateProfile(ctx context.Context, profileID id.ProfileID, expectedVersion int, patch models.ProfilePatch) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[profileID]
	if !ok || p.IsDeleted() {
		return nil, sentinel.ErrNotFound
	}
	if p.Version != expectedVersion {
		return nil, fmt.Errorf("profile %s at version %d, expected %d: %w", profileID, p.Version, expectedVersion, sentinel.ErrConflict)
	}
	updated := cloneProfile(p)
	patch.Apply(updated, requestcontext.Now(ctx))
	s.profiles[profileID] = updated
	return cloneProfile(updated), nil
}

// SoftDeleteProfile marks a SECONDARY profile deleted and inactive. MAIN
// profiles return sentinel.ErrInvalidState.
func (s *InMemoryStore) SoftDeleteProfile(ctx context.Context, profileID id.ProfileID) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[profileID]
	if !ok || p.IsDeleted() {
		return nil, sentinel.ErrNotFound
	}
	if p.IsMain() {
		return nil, fmt.Errorf("main profile %s: %w", profileID, sentinel.ErrInvalidState)
	}
	now := requestcontext.Now(ctx)
	deleted := cloneProfile(p)
	deleted.DeletedAt = &now
	deleted.Active = false
	deleted.Version++
	deleted.UpdatedAt = now
	s.profiles[profileID] = deleted
	return cloneProfile(deleted), nil
}

// =============================================================================
// Base records
// =============================================================================

func (s *InMemoryStore) GetBaseRecord(_ context.Context, accountID id.UserID) (*models.BaseRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bases[accountID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneBase(b), nil
}

func (s *InMemoryStore) GetBaseRecords(_ context.Context, accountIDs []id.UserID) (map[id.UserID]*models.BaseRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[id.UserID]*models.BaseRecord, len(accountIDs))
	for _, aid := range accountIDs {
		if b, ok := s.bases[aid]; ok {
			out[aid] = cloneBase(b)
		}
	}
	return out, nil
}

func (s *InMemoryStore) PutBaseRecord(_ context.Context, record *models.BaseRecord) error {
	if record == nil || record.AccountID.IsNil() {
		return fmt.Errorf("base record with account id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bases[record.AccountID] = cloneBase(record)
	return nil
}

// =============================================================================
// Overrides
// =============================================================================

func (s *InMemoryStore) GetOverrides(_ context.Context, profileID id.ProfileID) (*models.ProfileOverrides, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.overrides[profileID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneOverrides(o), nil
}

func (s *InMemoryStore) GetOverridesByProfileIDs(_ context.Context, profileIDs []id.ProfileID) (map[id.ProfileID]*models.ProfileOverrides, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[id.ProfileID]*models.ProfileOverrides, len(profileIDs))
	for _, pid := range profileIDs {
		if o, ok := s.overrides[pid]; ok {
			out[pid] = cloneOverrides(o)
		}
	}
	return out, nil
}

func (s *InMemoryStore) UpsertOverrides(_ context.Context, overrides *models.ProfileOverrides) error {
	if overrides == nil {
		return fmt.Errorf("overrides are required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.overrides[overrides.ProfileID] = cloneOverrides(overrides)
	return nil
}

// =============================================================================
// Block and allow lists
// =============================================================================

func (s *InMemoryStore) IsBlocked(_ context.Context, profileID id.ProfileID, viewerID id.UserID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.blocklist[profileID][viewerID]
	return ok, nil
}

func (s *InMemoryStore) GetBlockedProfileIDs(_ context.Context, profileIDs []id.ProfileID, viewerID id.UserID) (models.ProfileIDSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set := models.NewProfileIDSet()
	for _, pid := range profileIDs {
		if _, ok := s.blocklist[pid][viewerID]; ok {
			set.Add(pid)
		}
	}
	return set, nil
}

func (s *InMemoryStore) AddBlocklistEntry(_ context.Context, entry models.BlocklistEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.blocklist[entry.ProfileID] == nil {
		s.blocklist[entry.ProfileID] = make(map[id.UserID]models.BlocklistEntry)
	}
	s.blocklist[entry.ProfileID][entry.ViewerUserID] = entry
	return nil
}

func (s *InMemoryStore) GetAllowlistEntries(_ context.Context, profileID id.ProfileID) ([]models.AllowlistEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.allowlist[profileID]), nil
}

func (s *InMemoryStore) GetAllowlistEntriesForViewer(_ context.Context, profileIDs []id.ProfileID, viewerID id.UserID) ([]models.AllowlistEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.AllowlistEntry
	for _, pid := range dedupe(profileIDs) {
		for _, e := range s.allowlist[pid] {
			if e.ViewerUserID == viewerID {
				out = append(out, e)
			}
		}
	}
	return out, nil
}

func (s *InMemoryStore) GetAllowlistEntriesByProfileIDs(_ context.Context, profileIDs []id.ProfileID) ([]models.AllowlistEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.AllowlistEntry
	for _, pid := range dedupe(profileIDs) {
		out = append(out, s.allowlist[pid]...)
	}
	return out, nil
}

// AddAllowlistEntry adds entry unless the viewer is already listed.
func (s *InMemoryStore) AddAllowlistEntry(_ context.Context, entry models.AllowlistEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.allowlist[entry.ProfileID] {
		if e.ViewerUserID == entry.ViewerUserID {
			return nil
		}
	}
	s.allowlist[entry.ProfileID] = append(s.allowlist[entry.ProfileID], entry)
	return nil
}

// =============================================================================
// Rules and filters
// =============================================================================

// GetEnabledRules returns enabled rules ordered by priority.
func (s *InMemoryStore) GetEnabledRules(_ context.Context, profileID id.ProfileID) ([]models.VisibilityRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return enabledRules(s.rules[profileID]), nil
}

func (s *InMemoryStore) GetEnabledRulesByProfileIDs(_ context.Context, profileIDs []id.ProfileID) (map[id.ProfileID][]models.VisibilityRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[id.ProfileID][]models.VisibilityRule, len(profileIDs))
	for _, pid := range profileIDs {
		if rules := enabledRules(s.rules[pid]); len(rules) > 0 {
			out[pid] = rules
		}
	}
	return out, nil
}

// PutRule inserts rule or replaces the rule with the same id.
func (s *InMemoryStore) PutRule(_ context.Context, rule models.VisibilityRule) error {
	if rule.ID == "" {
		return fmt.Errorf("rule id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rules := s.rules[rule.ProfileID]
	for i := range rules {
		if rules[i].ID == rule.ID {
			rules[i] = rule
			return nil
		}
	}
	s.rules[rule.ProfileID] = append(rules, rule)
	return nil
}

func (s *InMemoryStore) GetViewerFilters(_ context.Context, profileID id.ProfileID) ([]models.ViewerFilter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.filters[profileID]), nil
}

// PutViewerFilter inserts filter or replaces the filter with the same id.
func (s *InMemoryStore) PutViewerFilter(_ context.Context, filter models.ViewerFilter) error {
	if filter.ID == "" {
		return fmt.Errorf("viewer filter id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	filters := s.filters[filter.ProfileID]
	for i := range filters {
		if filters[i].ID == filter.ID {
			filters[i] = filter
			return nil
		}
	}
	s.filters[filter.ProfileID] = append(filters, filter)
	return nil
}

// =============================================================================
// Helpers
// =============================================================================

// SortProfiles orders MAIN first, then by creation time and id.
func SortProfiles(profiles []*models.Profile) {
	slices.SortStableFunc(profiles, func(a, b *models.Profile) int {
		if a.IsMain() != b.IsMain() {
			if a.IsMain() {
				return -1
			}
			return 1
		}
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
}

// SortRules orders rules by priority, then id.
func SortRules(rules []models.VisibilityRule) {
	slices.SortStableFunc(rules, func(a, b models.VisibilityRule) int {
		if a.Priority != b.Priority {
			return a.Priority - b.Priority
		}
		return strings.Compare(a.ID, b.ID)
	})
}

func enabledRules(all []models.VisibilityRule) []models.VisibilityRule {
	out := make([]models.VisibilityRule, 0, len(all))
	for _, r := range all {
		if r.Enabled {
			out = append(out, r)
		}
	}
	SortRules(out)
	return out
}

func dedupe(profileIDs []id.ProfileID) []id.ProfileID {
	seen := models.NewProfileIDSet()
	out := make([]id.ProfileID, 0, len(profileIDs))
	for _, pid := range profileIDs {
		if !seen.Has(pid) {
			seen.Add(pid)
			out = append(out, pid)
		}
	}
	return out
}

func cloneProfile(p *models.Profile) *models.Profile {
	cp := *p
	return &cp
}

func cloneBase(b *models.BaseRecord) *models.BaseRecord {
	cp := *b
	cp.Photos = slices.Clone(b.Photos)
	cp.SexualPreferences = slices.Clone(b.SexualPreferences)
	cp.Tribes = slices.Clone(b.Tribes)
	if b.Attributes != nil {
		cp.Attributes = make(map[string]any, len(b.Attributes))
		for k, v := range b.Attributes {
			cp.Attributes[k] = v
		}
	}
	return &cp
}

func cloneOverrides(o *models.ProfileOverrides) *models.ProfileOverrides {
	cp := *o
	cp.Fields = make(map[string]any, len(o.Fields))
	for k, v := range o.Fields {
		cp.Fields[k] = v
	}
	cp.Photos = slices.Clone(o.Photos)
	return &cp
}
