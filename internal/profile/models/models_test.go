package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "personas/pkg/domain"
)

func ptr[T any](v T) *T { return &v }

func TestProfileActivity(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	owner := id.NewUserID()
	p, err := NewMainProfile(owner, now)
	require.NoError(t, err)

	t.Run("active without expiry", func(t *testing.T) {
		assert.True(t, p.IsActiveAt(now))
		assert.True(t, p.IsOwnedBy(owner))
		assert.False(t, p.IsOwnedBy(id.NewUserID()))
		assert.False(t, p.IsOwnedBy(id.UserID{}))
	})

	t.Run("expiry at exactly now counts as expired", func(t *testing.T) {
		cp := *p
		cp.ExpiresAt = ptr(now)
		assert.True(t, cp.IsExpired(now))
		assert.False(t, cp.IsActiveAt(now))
	})

	t.Run("future expiry is not expired", func(t *testing.T) {
		cp := *p
		cp.ExpiresAt = ptr(now.Add(time.Minute))
		assert.False(t, cp.IsExpired(now))
	})

	t.Run("deleted is never active", func(t *testing.T) {
		cp := *p
		cp.DeletedAt = ptr(now)
		assert.False(t, cp.IsActiveAt(now))
	})
}

func TestNewSecondaryProfile(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	t.Run("applies defaults", func(t *testing.T) {
		p, err := NewSecondaryProfile(id.NewUserID(), ProfileData{TypeKey: "weekend"}, now)
		require.NoError(t, err)
		assert.Equal(t, KindSecondary, p.Kind)
		assert.Equal(t, InheritFull, p.InheritMode)
		assert.True(t, p.Active)
		assert.Equal(t, 1, p.Version)
	})

	t.Run("copies payload", func(t *testing.T) {
		p, err := NewSecondaryProfile(id.NewUserID(), ProfileData{
			TypeKey:                 "travel",
			TypeLabel:               "Travel",
			InheritMode:             string(InheritOverrideFields),
			ExpiresAt:               ptr("2026-06-01T00:00:00Z"),
			OverrideLocationEnabled: ptr(true),
			OverrideLocationLat:     ptr(48.85),
			OverrideLocationLng:     ptr(2.35),
		}, now)
		require.NoError(t, err)
		assert.Equal(t, InheritOverrideFields, p.InheritMode)
		assert.True(t, p.OverrideLocationEnabled)
		require.NotNil(t, p.ExpiresAt)
		assert.Equal(t, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), *p.ExpiresAt)
	})

	t.Run("rejects missing type key", func(t *testing.T) {
		_, err := NewSecondaryProfile(id.NewUserID(), ProfileData{}, now)
		require.Error(t, err)
	})
}

func TestPatchApply(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	p, err := NewSecondaryProfile(id.NewUserID(), ProfileData{TypeKey: "weekend", ExpiresAt: ptr("2026-07-01")}, now)
	require.NoError(t, err)

	patch := ProfileData{TypeLabel: "Weekend", Active: ptr(false), ClearExpiresAt: true}.ToPatch()
	patch.Apply(p, now.Add(time.Hour))

	assert.Equal(t, "Weekend", p.TypeLabel)
	assert.Equal(t, "weekend", p.TypeKey)
	assert.False(t, p.Active)
	assert.Nil(t, p.ExpiresAt)
	assert.Equal(t, 2, p.Version)
	assert.Equal(t, now.Add(time.Hour), p.UpdatedAt)
}

func TestBaseRecordFields(t *testing.T) {
	base := &BaseRecord{
		AccountID:  id.NewUserID(),
		City:       ptr("London"),
		Lat:        ptr(51.5074),
		Photos:     []string{"p1"},
		Attributes: map[string]any{"height_cm": 180, "city": "ignored"},
	}

	fields := base.Fields()
	assert.Equal(t, "London", fields[FieldCity])
	assert.Equal(t, 51.5074, fields[FieldLat])
	assert.Nil(t, fields[FieldLng])
	assert.Equal(t, 180, fields["height_cm"])

	fields[FieldPhotos].([]string)[0] = "mutated"
	assert.Equal(t, []string{"p1"}, base.Photos)
}

func TestViewerLookup(t *testing.T) {
	v := ViewerAttributes{Age: ptr(30), Gender: "f", Extra: map[string]any{"smoker": false}}

	age, ok := v.Lookup(FieldAge)
	assert.True(t, ok)
	assert.Equal(t, 30.0, age)

	_, ok = v.Lookup(FieldLat)
	assert.False(t, ok)

	smoker, ok := v.Lookup("smoker")
	assert.True(t, ok)
	assert.Equal(t, false, smoker)

	_, ok = v.Lookup("unknown")
	assert.False(t, ok)
}

func TestEffectiveProfileJSON(t *testing.T) {
	pid := id.NewProfileID()
	ep := EffectiveProfile{
		Fields:       map[string]any{"bio": "hi", "photos": []string{"a"}},
		EffectiveLat: ptr(1.5),
		ProfileID:    pid,
		ProfileKind:  KindMain,
	}

	raw, err := json.Marshal(ep)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "hi", decoded["bio"])
	assert.Equal(t, 1.5, decoded[KeyEffectiveLat])
	assert.Nil(t, decoded[KeyEffectiveLng])
	assert.Equal(t, pid.String(), decoded[KeyProfileID])
	assert.Equal(t, "MAIN", decoded[KeyProfileKind])
	assert.Equal(t, []string{"a"}, ep.Photos())
}
