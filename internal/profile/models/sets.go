package models

import id "personas/pkg/domain"

// ProfileIDSet is a set of profile ids built from a batch read.
type ProfileIDSet map[id.ProfileID]struct{}

// NewProfileIDSet builds a set from ids.
func NewProfileIDSet(ids ...id.ProfileID) ProfileIDSet {
	set := make(ProfileIDSet, len(ids))
	for _, pid := range ids {
		set[pid] = struct{}{}
	}
	return set
}

// Add inserts pid.
func (s ProfileIDSet) Add(pid id.ProfileID) { s[pid] = struct{}{} }

// Has reports whether pid is in the set. A nil set is empty.
func (s ProfileIDSet) Has(pid id.ProfileID) bool {
	_, ok := s[pid]
	return ok
}
