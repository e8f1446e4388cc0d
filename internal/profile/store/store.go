// Package store persists profiles and the data visibility evaluation reads:
// base records, overrides, block/allow lists, visibility rules and viewer
// filters. InMemoryStore backs tests and single-process deployments;
// PostgresStore is the durable implementation.
//
// Reads of a missing row return sentinel.ErrNotFound. A second MAIN profile
// for an account and a stale expected version return sentinel.ErrConflict.
package store

import (
	"context"

	"personas/internal/profile/models"
	id "personas/pkg/domain"
)

// Store is the full record store. Consumers declare the narrower interfaces
// they need.
type Store interface {
	// Profiles
	GetProfile(ctx context.Context, profileID id.ProfileID) (*models.Profile, error)
	GetProfilesByIDs(ctx context.Context, profileIDs []id.ProfileID) ([]*models.Profile, error)
	GetMainProfile(ctx context.Context, accountID id.UserID) (*models.Profile, error)
	ListProfiles(ctx context.Context, accountID id.UserID) ([]*models.Profile, error)
	CountSecondaryProfiles(ctx context.Context, accountID id.UserID) (int, error)
	CreateProfile(ctx context.Context, profile *models.Profile) error
	UpdateProfile(ctx context.Context, profileID id.ProfileID, expectedVersion int, patch models.ProfilePatch) (*models.Profile, error)
	SoftDeleteProfile(ctx context.Context, profileID id.ProfileID) (*models.Profile, error)

	// Base records
	GetBaseRecord(ctx context.Context, accountID id.UserID) (*models.BaseRecord, error)
	GetBaseRecords(ctx context.Context, accountIDs []id.UserID) (map[id.UserID]*models.BaseRecord, error)
	PutBaseRecord(ctx context.Context, record *models.BaseRecord) error

	// Overrides
	GetOverrides(ctx context.Context, profileID id.ProfileID) (*models.ProfileOverrides, error)
	GetOverridesByProfileIDs(ctx context.Context, profileIDs []id.ProfileID) (map[id.ProfileID]*models.ProfileOverrides, error)
	UpsertOverrides(ctx context.Context, overrides *models.ProfileOverrides) error

	// Block and allow lists
	IsBlocked(ctx context.Context, profileID id.ProfileID, viewerID id.UserID) (bool, error)
	GetBlockedProfileIDs(ctx context.Context, profileIDs []id.ProfileID, viewerID id.UserID) (models.ProfileIDSet, error)
	AddBlocklistEntry(ctx context.Context, entry models.BlocklistEntry) error
	GetAllowlistEntries(ctx context.Context, profileID id.ProfileID) ([]models.AllowlistEntry, error)
	GetAllowlistEntriesForViewer(ctx context.Context, profileIDs []id.ProfileID, viewerID id.UserID) ([]models.AllowlistEntry, error)
	GetAllowlistEntriesByProfileIDs(ctx context.Context, profileIDs []id.ProfileID) ([]models.AllowlistEntry, error)
	AddAllowlistEntry(ctx context.Context, entry models.AllowlistEntry) error

	// Rules and filters
	GetEnabledRules(ctx context.Context, profileID id.ProfileID) ([]models.VisibilityRule, error)
	GetEnabledRulesByProfileIDs(ctx context.Context, profileIDs []id.ProfileID) (map[id.ProfileID][]models.VisibilityRule, error)
	PutRule(ctx context.Context, rule models.VisibilityRule) error
	GetViewerFilters(ctx context.Context, profileID id.ProfileID) ([]models.ViewerFilter, error)
	PutViewerFilter(ctx context.Context, filter models.ViewerFilter) error
}
