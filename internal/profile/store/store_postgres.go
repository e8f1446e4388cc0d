package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"personas/internal/profile/models"
	id "personas/pkg/domain"
	"personas/pkg/platform/sentinel"
	"personas/pkg/requestcontext"
)

//go:embed schema.sql
var Schema string

const uniqueViolation = "23505"

// PostgresStore is a Store backed by PostgreSQL.
type PostgresStore struct {
	db *sqlx.DB
}

var _ Store = (*PostgresStore)(nil)

// NewPostgres constructs a PostgreSQL-backed store.
func NewPostgres(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the tables and indexes if they do not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// =============================================================================
// Rows
// =============================================================================

const profileColumns = `id, account_id, kind, type_key, type_label, active, expires_at, inherit_mode,
	override_location_enabled, override_location_lat, override_location_lng, override_location_label,
	version, created_at, updated_at, deleted_at`

type profileRow struct {
	ID                      uuid.UUID       `db:"id"`
	AccountID               uuid.UUID       `db:"account_id"`
	Kind                    string          `db:"kind"`
	TypeKey                 string          `db:"type_key"`
	TypeLabel               string          `db:"type_label"`
	Active                  bool            `db:"active"`
	ExpiresAt               sql.NullTime    `db:"expires_at"`
	InheritMode             string          `db:"inherit_mode"`
	OverrideLocationEnabled bool            `db:"override_location_enabled"`
	OverrideLocationLat     sql.NullFloat64 `db:"override_location_lat"`
	OverrideLocationLng     sql.NullFloat64 `db:"override_location_lng"`
	OverrideLocationLabel   sql.NullString  `db:"override_location_label"`
	Version                 int             `db:"version"`
	CreatedAt               time.Time       `db:"created_at"`
	UpdatedAt               time.Time       `db:"updated_at"`
	DeletedAt               sql.NullTime    `db:"deleted_at"`
}

func (r profileRow) toModel() *models.Profile {
	return &models.Profile{
		ID:                      id.ProfileID(r.ID),
		AccountID:               id.UserID(r.AccountID),
		Kind:                    models.ProfileKind(r.Kind),
		TypeKey:                 r.TypeKey,
		TypeLabel:               r.TypeLabel,
		Active:                  r.Active,
		ExpiresAt:               timePtr(r.ExpiresAt),
		InheritMode:             models.InheritMode(r.InheritMode),
		OverrideLocationEnabled: r.OverrideLocationEnabled,
		OverrideLocationLat:     floatPtr(r.OverrideLocationLat),
		OverrideLocationLng:     floatPtr(r.OverrideLocationLng),
		OverrideLocationLabel:   stringPtr(r.OverrideLocationLabel),
		Version:                 r.Version,
		CreatedAt:               r.CreatedAt,
		UpdatedAt:               r.UpdatedAt,
		DeletedAt:               timePtr(r.DeletedAt),
	}
}

type baseRow struct {
	AccountID         uuid.UUID       `db:"account_id"`
	DisplayName       string          `db:"display_name"`
	Bio               sql.NullString  `db:"bio"`
	City              sql.NullString  `db:"city"`
	Lat               sql.NullFloat64 `db:"lat"`
	Lng               sql.NullFloat64 `db:"lng"`
	Photos            pq.StringArray  `db:"photos"`
	Gender            sql.NullString  `db:"gender"`
	Age               sql.NullInt64   `db:"age"`
	SubscriptionTier  string          `db:"subscription_tier"`
	SexualPreferences pq.StringArray  `db:"sexual_preferences"`
	Tribes            pq.StringArray  `db:"tribes"`
	Attributes        []byte          `db:"attributes"`
	UpdatedAt         time.Time       `db:"updated_at"`
}

func (r baseRow) toModel() (*models.BaseRecord, error) {
	rec := &models.BaseRecord{
		AccountID:         id.UserID(r.AccountID),
		DisplayName:       r.DisplayName,
		Bio:               stringPtr(r.Bio),
		City:              stringPtr(r.City),
		Lat:               floatPtr(r.Lat),
		Lng:               floatPtr(r.Lng),
		Photos:            []string(r.Photos),
		Gender:            stringPtr(r.Gender),
		SubscriptionTier:  r.SubscriptionTier,
		SexualPreferences: []string(r.SexualPreferences),
		Tribes:            []string(r.Tribes),
		UpdatedAt:         r.UpdatedAt,
	}
	if r.Age.Valid {
		age := int(r.Age.Int64)
		rec.Age = &age
	}
	if len(r.Attributes) > 0 {
		if err := json.Unmarshal(r.Attributes, &rec.Attributes); err != nil {
			return nil, fmt.Errorf("decode attributes for %s: %w", r.AccountID, err)
		}
	}
	return rec, nil
}

type overridesRow struct {
	ProfileID  uuid.UUID `db:"profile_id"`
	Overrides  []byte    `db:"overrides_json"`
	PhotosMode string    `db:"photos_mode"`
	Photos     []byte    `db:"photos_json"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (r overridesRow) toModel() (*models.ProfileOverrides, error) {
	o := &models.ProfileOverrides{
		ProfileID:  id.ProfileID(r.ProfileID),
		Fields:     map[string]any{},
		PhotosMode: models.PhotosMode(r.PhotosMode),
		UpdatedAt:  r.UpdatedAt,
	}
	if len(r.Overrides) > 0 {
		if err := json.Unmarshal(r.Overrides, &o.Fields); err != nil {
			return nil, fmt.Errorf("decode overrides_json for %s: %w", r.ProfileID, err)
		}
		if o.Fields == nil {
			o.Fields = map[string]any{}
		}
	}
	if len(r.Photos) > 0 {
		if err := json.Unmarshal(r.Photos, &o.Photos); err != nil {
			return nil, fmt.Errorf("decode photos_json for %s: %w", r.ProfileID, err)
		}
	}
	return o, nil
}

type accessRow struct {
	ProfileID    uuid.UUID `db:"profile_id"`
	ViewerUserID uuid.UUID `db:"viewer_user_id"`
	CreatedAt    time.Time `db:"created_at"`
}

func (r accessRow) toAllowlist() models.AllowlistEntry {
	return models.AllowlistEntry{
		ProfileID:    id.ProfileID(r.ProfileID),
		ViewerUserID: id.UserID(r.ViewerUserID),
		CreatedAt:    r.CreatedAt,
	}
}

type ruleRow struct {
	ID        string    `db:"id"`
	ProfileID uuid.UUID `db:"profile_id"`
	Type      string    `db:"rule_type"`
	Config    []byte    `db:"rule_config"`
	Priority  int       `db:"priority"`
	Enabled   bool      `db:"enabled"`
}

func (r ruleRow) toModel() models.VisibilityRule {
	return models.VisibilityRule{
		ID:        r.ID,
		ProfileID: id.ProfileID(r.ProfileID),
		Type:      models.RuleType(r.Type),
		Config:    json.RawMessage(r.Config),
		Priority:  r.Priority,
		Enabled:   r.Enabled,
	}
}

type filterRow struct {
	ID        string    `db:"id"`
	ProfileID uuid.UUID `db:"profile_id"`
	Attribute string    `db:"attribute"`
	Operator  string    `db:"operator"`
	Value     []byte    `db:"value_json"`
}

// =============================================================================
// Profiles
// =============================================================================

func (s *PostgresStore) GetProfile(ctx context.Context, profileID id.ProfileID) (*models.Profile, error) {
	var row profileRow
	err := s.db.GetContext(ctx, &row, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, uuid.UUID(profileID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return row.toModel(), nil
}

// GetProfilesByIDs returns the non-deleted profiles among profileIDs in input order.
func (s *PostgresStore) GetProfilesByIDs(ctx context.Context, profileIDs []id.ProfileID) ([]*models.Profile, error) {
	if len(profileIDs) == 0 {
		return []*models.Profile{}, nil
	}
	var rows []profileRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT `+profileColumns+` FROM profiles WHERE id = ANY($1::uuid[]) AND deleted_at IS NULL`,
		pq.Array(profileIDStrings(profileIDs)))
	if err != nil {
		return nil, fmt.Errorf("get profiles by ids: %w", err)
	}
	byID := make(map[id.ProfileID]*models.Profile, len(rows))
	for _, row := range rows {
		byID[id.ProfileID(row.ID)] = row.toModel()
	}
	out := make([]*models.Profile, 0, len(rows))
	for _, pid := range dedupe(profileIDs) {
		if p, ok := byID[pid]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *PostgresStore) GetMainProfile(ctx context.Context, accountID id.UserID) (*models.Profile, error) {
	var row profileRow
	err := s.db.GetContext(ctx, &row,
		`SELECT `+profileColumns+` FROM profiles WHERE account_id = $1 AND kind = 'MAIN' AND deleted_at IS NULL`,
		uuid.UUID(accountID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get main profile: %w", err)
	}
	return row.toModel(), nil
}

func (s *PostgresStore) ListProfiles(ctx context.Context, accountID id.UserID) ([]*models.Profile, error) {
	var rows []profileRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT `+profileColumns+` FROM profiles WHERE account_id = $1 AND deleted_at IS NULL`,
		uuid.UUID(accountID))
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	out := make([]*models.Profile, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toModel())
	}
	SortProfiles(out)
	return out, nil
}

func (s *PostgresStore) CountSecondaryProfiles(ctx context.Context, accountID id.UserID) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM profiles WHERE account_id = $1 AND kind = 'SECONDARY' AND deleted_at IS NULL`,
		uuid.UUID(accountID))
	if err != nil {
		return 0, fmt.Errorf("count secondary profiles: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) CreateProfile(ctx context.Context, p *models.Profile) error {
	if p == nil {
		return fmt.Errorf("profile is required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (`+profileColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		uuid.UUID(p.ID), uuid.UUID(p.AccountID), string(p.Kind), p.TypeKey, p.TypeLabel, p.Active,
		nullTime(p.ExpiresAt), string(p.InheritMode), p.OverrideLocationEnabled,
		p.OverrideLocationLat, p.OverrideLocationLng, p.OverrideLocationLabel,
		p.Version, p.CreatedAt, p.UpdatedAt, nullTime(p.DeletedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create profile %s: %w", p.ID, sentinel.ErrConflict)
		}
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

// UpdateProfile applies patch guarded by expectedVersion. A concurrent writer
// that bumps the version between read and write also yields ErrConflict.
func (s *PostgresStore) UpdateProfile(ctx context.Context, profileID id.ProfileID, expectedVersion int, patch models.ProfilePatch) (*models.Profile, error) {
	current, err := s.GetProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if current.IsDeleted() {
		return nil, sentinel.ErrNotFound
	}
	if current.Version != expectedVersion {
		return nil, fmt.Errorf("profile %s at version %d, expected %d: %w", profileID, current.Version, expectedVersion, sentinel.ErrConflict)
	}

	patch.Apply(current, requestcontext.Now(ctx))
	res, err := s.db.ExecContext(ctx, `
		UPDATE profiles SET
			type_key = $3, type_label = $4, active = $5, expires_at = $6, inherit_mode = $7,
			override_location_enabled = $8, override_location_lat = $9, override_location_lng = $10,
			override_location_label = $11, version = $12, updated_at = $13
		WHERE id = $1 AND version = $2 AND deleted_at IS NULL`,
		uuid.UUID(profileID), expectedVersion,
		current.TypeKey, current.TypeLabel, current.Active, nullTime(current.ExpiresAt), string(current.InheritMode),
		current.OverrideLocationEnabled, current.OverrideLocationLat, current.OverrideLocationLng,
		current.OverrideLocationLabel, current.Version, current.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	} else if n == 0 {
		return nil, fmt.Errorf("profile %s changed concurrently: %w", profileID, sentinel.ErrConflict)
	}
	return current, nil
}

func (s *PostgresStore) SoftDeleteProfile(ctx context.Context, profileID id.ProfileID) (*models.Profile, error) {
	current, err := s.GetProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if current.IsDeleted() {
		return nil, sentinel.ErrNotFound
	}
	if current.IsMain() {
		return nil, fmt.Errorf("main profile %s: %w", profileID, sentinel.ErrInvalidState)
	}

	var row profileRow
	err = s.db.GetContext(ctx, &row, `
		UPDATE profiles SET deleted_at = $2, active = FALSE, version = version + 1, updated_at = $2
		WHERE id = $1 AND kind = 'SECONDARY' AND deleted_at IS NULL
		RETURNING `+profileColumns,
		uuid.UUID(profileID), requestcontext.Now(ctx))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("delete profile: %w", err)
	}
	return row.toModel(), nil
}

// =============================================================================
// Base records
// =============================================================================

const baseColumns = `account_id, display_name, bio, city, lat, lng, photos, gender, age,
	subscription_tier, sexual_preferences, tribes, attributes, updated_at`

func (s *PostgresStore) GetBaseRecord(ctx context.Context, accountID id.UserID) (*models.BaseRecord, error) {
	var row baseRow
	err := s.db.GetContext(ctx, &row, `SELECT `+baseColumns+` FROM base_records WHERE account_id = $1`, uuid.UUID(accountID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get base record: %w", err)
	}
	return row.toModel()
}

func (s *PostgresStore) GetBaseRecords(ctx context.Context, accountIDs []id.UserID) (map[id.UserID]*models.BaseRecord, error) {
	out := make(map[id.UserID]*models.BaseRecord, len(accountIDs))
	if len(accountIDs) == 0 {
		return out, nil
	}
	ids := make([]string, len(accountIDs))
	for i, aid := range accountIDs {
		ids[i] = aid.String()
	}
	var rows []baseRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT `+baseColumns+` FROM base_records WHERE account_id = ANY($1::uuid[])`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("get base records: %w", err)
	}
	for _, row := range rows {
		rec, err := row.toModel()
		if err != nil {
			return nil, err
		}
		out[rec.AccountID] = rec
	}
	return out, nil
}

func (s *PostgresStore) PutBaseRecord(ctx context.Context, rec *models.BaseRecord) error {
	if rec == nil || rec.AccountID.IsNil() {
		return fmt.Errorf("base record with account id is required")
	}
	attrs, err := json.Marshal(nonNilMap(rec.Attributes))
	if err != nil {
		return fmt.Errorf("encode attributes: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO base_records (`+baseColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (account_id) DO UPDATE SET
			display_name = EXCLUDED.display_name, bio = EXCLUDED.bio, city = EXCLUDED.city,
			lat = EXCLUDED.lat, lng = EXCLUDED.lng, photos = EXCLUDED.photos, gender = EXCLUDED.gender,
			age = EXCLUDED.age, subscription_tier = EXCLUDED.subscription_tier,
			sexual_preferences = EXCLUDED.sexual_preferences, tribes = EXCLUDED.tribes,
			attributes = EXCLUDED.attributes, updated_at = EXCLUDED.updated_at`,
		uuid.UUID(rec.AccountID), rec.DisplayName, rec.Bio, rec.City, rec.Lat, rec.Lng,
		pq.Array(nonNilStrings(rec.Photos)), rec.Gender, rec.Age, rec.SubscriptionTier,
		pq.Array(nonNilStrings(rec.SexualPreferences)), pq.Array(nonNilStrings(rec.Tribes)),
		attrs, updatedAt(ctx, rec.UpdatedAt))
	if err != nil {
		return fmt.Errorf("put base record: %w", err)
	}
	return nil
}

// =============================================================================
// Overrides
// =============================================================================

const overridesColumns = `profile_id, overrides_json, photos_mode, photos_json, updated_at`

func (s *PostgresStore) GetOverrides(ctx context.Context, profileID id.ProfileID) (*models.ProfileOverrides, error) {
	var row overridesRow
	err := s.db.GetContext(ctx, &row,
		`SELECT `+overridesColumns+` FROM profile_overrides WHERE profile_id = $1`, uuid.UUID(profileID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get overrides: %w", err)
	}
	return row.toModel()
}

func (s *PostgresStore) GetOverridesByProfileIDs(ctx context.Context, profileIDs []id.ProfileID) (map[id.ProfileID]*models.ProfileOverrides, error) {
	out := make(map[id.ProfileID]*models.ProfileOverrides, len(profileIDs))
	if len(profileIDs) == 0 {
		return out, nil
	}
	var rows []overridesRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT `+overridesColumns+` FROM profile_overrides WHERE profile_id = ANY($1::uuid[])`,
		pq.Array(profileIDStrings(profileIDs)))
	if err != nil {
		return nil, fmt.Errorf("get overrides by profile ids: %w", err)
	}
	for _, row := range rows {
		o, err := row.toModel()
		if err != nil {
			return nil, err
		}
		out[o.ProfileID] = o
	}
	return out, nil
}

func (s *PostgresStore) UpsertOverrides(ctx context.Context, o *models.ProfileOverrides) error {
	if o == nil {
		return fmt.Errorf("overrides are required")
	}
	fields, err := json.Marshal(nonNilMap(o.Fields))
	if err != nil {
		return fmt.Errorf("encode overrides_json: %w", err)
	}
	var photos []byte
	if o.Photos != nil {
		if photos, err = json.Marshal(o.Photos); err != nil {
			return fmt.Errorf("encode photos_json: %w", err)
		}
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO profile_overrides (`+overridesColumns+`)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (profile_id) DO UPDATE SET
			overrides_json = EXCLUDED.overrides_json, photos_mode = EXCLUDED.photos_mode,
			photos_json = EXCLUDED.photos_json, updated_at = EXCLUDED.updated_at`,
		uuid.UUID(o.ProfileID), fields, string(o.PhotosMode), photos, updatedAt(ctx, o.UpdatedAt))
	if err != nil {
		return fmt.Errorf("upsert overrides: %w", err)
	}
	return nil
}

// =============================================================================
// Block and allow lists
// =============================================================================

func (s *PostgresStore) IsBlocked(ctx context.Context, profileID id.ProfileID, viewerID id.UserID) (bool, error) {
	var blocked bool
	err := s.db.GetContext(ctx, &blocked,
		`SELECT EXISTS (SELECT 1 FROM profile_blocklist WHERE profile_id = $1 AND viewer_user_id = $2)`,
		uuid.UUID(profileID), uuid.UUID(viewerID))
	if err != nil {
		return false, fmt.Errorf("check blocklist: %w", err)
	}
	return blocked, nil
}

func (s *PostgresStore) GetBlockedProfileIDs(ctx context.Context, profileIDs []id.ProfileID, viewerID id.UserID) (models.ProfileIDSet, error) {
	set := models.NewProfileIDSet()
	if len(profileIDs) == 0 {
		return set, nil
	}
	var ids []uuid.UUID
	err := s.db.SelectContext(ctx, &ids,
		`SELECT profile_id FROM profile_blocklist WHERE profile_id = ANY($1::uuid[]) AND viewer_user_id = $2`,
		pq.Array(profileIDStrings(profileIDs)), uuid.UUID(viewerID))
	if err != nil {
		return nil, fmt.Errorf("get blocklist entries: %w", err)
	}
	for _, pid := range ids {
		set.Add(id.ProfileID(pid))
	}
	return set, nil
}

func (s *PostgresStore) AddBlocklistEntry(ctx context.Context, entry models.BlocklistEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profile_blocklist (profile_id, viewer_user_id, created_at) VALUES ($1, $2, $3)
		ON CONFLICT (profile_id, viewer_user_id) DO NOTHING`,
		uuid.UUID(entry.ProfileID), uuid.UUID(entry.ViewerUserID), updatedAt(ctx, entry.CreatedAt))
	if err != nil {
		return fmt.Errorf("add blocklist entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetAllowlistEntries(ctx context.Context, profileID id.ProfileID) ([]models.AllowlistEntry, error) {
	return s.selectAllowlist(ctx,
		`SELECT profile_id, viewer_user_id, created_at FROM profile_allowlist WHERE profile_id = $1 ORDER BY created_at`,
		uuid.UUID(profileID))
}

func (s *PostgresStore) GetAllowlistEntriesForViewer(ctx context.Context, profileIDs []id.ProfileID, viewerID id.UserID) ([]models.AllowlistEntry, error) {
	if len(profileIDs) == 0 {
		return nil, nil
	}
	return s.selectAllowlist(ctx,
		`SELECT profile_id, viewer_user_id, created_at FROM profile_allowlist
		 WHERE profile_id = ANY($1::uuid[]) AND viewer_user_id = $2`,
		pq.Array(profileIDStrings(profileIDs)), uuid.UUID(viewerID))
}

func (s *PostgresStore) GetAllowlistEntriesByProfileIDs(ctx context.Context, profileIDs []id.ProfileID) ([]models.AllowlistEntry, error) {
	if len(profileIDs) == 0 {
		return nil, nil
	}
	return s.selectAllowlist(ctx,
		`SELECT profile_id, viewer_user_id, created_at FROM profile_allowlist WHERE profile_id = ANY($1::uuid[])`,
		pq.Array(profileIDStrings(profileIDs)))
}

func (s *PostgresStore) selectAllowlist(ctx context.Context, query string, args ...any) ([]models.AllowlistEntry, error) {
	var rows []accessRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("get allowlist entries: %w", err)
	}
	out := make([]models.AllowlistEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toAllowlist())
	}
	return out, nil
}

func (s *PostgresStore) AddAllowlistEntry(ctx context.Context, entry models.AllowlistEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profile_allowlist (profile_id, viewer_user_id, created_at) VALUES ($1, $2, $3)
		ON CONFLICT (profile_id, viewer_user_id) DO NOTHING`,
		uuid.UUID(entry.ProfileID), uuid.UUID(entry.ViewerUserID), updatedAt(ctx, entry.CreatedAt))
	if err != nil {
		return fmt.Errorf("add allowlist entry: %w", err)
	}
	return nil
}

// =============================================================================
// Rules and filters
// =============================================================================

const ruleColumns = `id, profile_id, rule_type, rule_config, priority, enabled`

func (s *PostgresStore) GetEnabledRules(ctx context.Context, profileID id.ProfileID) ([]models.VisibilityRule, error) {
	var rows []ruleRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT `+ruleColumns+` FROM profile_visibility_rules
		 WHERE profile_id = $1 AND enabled ORDER BY priority, id`, uuid.UUID(profileID))
	if err != nil {
		return nil, fmt.Errorf("get enabled rules: %w", err)
	}
	out := make([]models.VisibilityRule, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toModel())
	}
	return out, nil
}

func (s *PostgresStore) GetEnabledRulesByProfileIDs(ctx context.Context, profileIDs []id.ProfileID) (map[id.ProfileID][]models.VisibilityRule, error) {
	out := make(map[id.ProfileID][]models.VisibilityRule, len(profileIDs))
	if len(profileIDs) == 0 {
		return out, nil
	}
	var rows []ruleRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT `+ruleColumns+` FROM profile_visibility_rules
		 WHERE profile_id = ANY($1::uuid[]) AND enabled ORDER BY priority, id`,
		pq.Array(profileIDStrings(profileIDs)))
	if err != nil {
		return nil, fmt.Errorf("get enabled rules by profile ids: %w", err)
	}
	for _, row := range rows {
		pid := id.ProfileID(row.ProfileID)
		out[pid] = append(out[pid], row.toModel())
	}
	return out, nil
}

func (s *PostgresStore) PutRule(ctx context.Context, rule models.VisibilityRule) error {
	if rule.ID == "" {
		return fmt.Errorf("rule id is required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profile_visibility_rules (`+ruleColumns+`) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			rule_type = EXCLUDED.rule_type, rule_config = EXCLUDED.rule_config,
			priority = EXCLUDED.priority, enabled = EXCLUDED.enabled`,
		rule.ID, uuid.UUID(rule.ProfileID), string(rule.Type), nullJSON(rule.Config), rule.Priority, rule.Enabled)
	if err != nil {
		return fmt.Errorf("put rule: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetViewerFilters(ctx context.Context, profileID id.ProfileID) ([]models.ViewerFilter, error) {
	var rows []filterRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT id, profile_id, attribute, operator, value_json FROM profile_viewer_filters
		 WHERE profile_id = $1 ORDER BY id`, uuid.UUID(profileID))
	if err != nil {
		return nil, fmt.Errorf("get viewer filters: %w", err)
	}
	out := make([]models.ViewerFilter, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.ViewerFilter{
			ID:        row.ID,
			ProfileID: id.ProfileID(row.ProfileID),
			Attribute: row.Attribute,
			Operator:  models.Operator(row.Operator),
			Value:     json.RawMessage(row.Value),
		})
	}
	return out, nil
}

func (s *PostgresStore) PutViewerFilter(ctx context.Context, f models.ViewerFilter) error {
	if f.ID == "" {
		return fmt.Errorf("viewer filter id is required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profile_viewer_filters (id, profile_id, attribute, operator, value_json)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			attribute = EXCLUDED.attribute, operator = EXCLUDED.operator, value_json = EXCLUDED.value_json`,
		f.ID, uuid.UUID(f.ProfileID), f.Attribute, string(f.Operator), nullJSON(f.Value))
	if err != nil {
		return fmt.Errorf("put viewer filter: %w", err)
	}
	return nil
}

// =============================================================================
// Helpers
// =============================================================================

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func profileIDStrings(profileIDs []id.ProfileID) []string {
	out := make([]string, len(profileIDs))
	for i, pid := range profileIDs {
		out[i] = pid.String()
	}
	return out
}

func updatedAt(ctx context.Context, t time.Time) time.Time {
	if t.IsZero() {
		return requestcontext.Now(ctx)
	}
	return t
}

func nullJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func floatPtr(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func nonNilStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

func nonNilMap(in map[string]any) map[string]any {
	if in == nil {
		return map[string]any{}
	}
	return in
}
