// Package domain holds the typed identifiers shared across modules.
//
// Every identifier is a UUID wrapped in its own named type so that a
// profile id can never be passed where an account id is expected.
package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "personas/pkg/domain-errors"
)

// UserID identifies an account. The viewer id delivered by bearer-token
// verification and Profile.AccountID share this type.
type UserID uuid.UUID

// ProfileID identifies a MAIN or SECONDARY profile.
type ProfileID uuid.UUID

// NewProfileID returns a fresh random profile id.
func NewProfileID() ProfileID { return ProfileID(uuid.New()) }

// NewUserID returns a fresh random account id.
func NewUserID() UserID { return UserID(uuid.New()) }

// ParseUserID parses a non-nil UUID string into a UserID.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user_id")
	return UserID(u), err
}

// ParseProfileID parses a non-nil UUID string into a ProfileID.
func ParseProfileID(s string) (ProfileID, error) {
	u, err := parseUUID(s, "profile_id")
	return ProfileID(u), err
}

// ParseProfileIDs parses every element, failing on the first bad one.
func ParseProfileIDs(values []string) ([]ProfileID, error) {
	ids := make([]ProfileID, 0, len(values))
	for _, v := range values {
		pid, err := ParseProfileID(v)
		if err != nil {
			return nil, err
		}
		ids = append(ids, pid)
	}
	return ids, nil
}

func parseUUID(s, field string) (uuid.UUID, error) {
	if strings.TrimSpace(s) == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+field)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" cannot be nil")
	}
	return u, nil
}

func (id UserID) String() string    { return uuid.UUID(id).String() }
func (id UserID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id ProfileID) String() string { return uuid.UUID(id).String() }
func (id ProfileID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

// MarshalText keeps ids as canonical strings in JSON and CBOR.
func (id UserID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *UserID) UnmarshalText(b []byte) error {
	var u uuid.UUID
	if err := u.UnmarshalText(b); err != nil {
		return err
	}
	*id = UserID(u)
	return nil
}

func (id ProfileID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *ProfileID) UnmarshalText(b []byte) error {
	var u uuid.UUID
	if err := u.UnmarshalText(b); err != nil {
		return err
	}
	*id = ProfileID(u)
	return nil
}
