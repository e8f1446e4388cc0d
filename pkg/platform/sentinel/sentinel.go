package sentinel

import "errors"

// Sentinel errors for store facts. Stores return these (optionally wrapped)
// and services translate them into domain errors:
//   - ErrNotFound: no such row, or the row is soft-deleted where the query excludes those
//   - ErrConflict: optimistic-concurrency version mismatch or a uniqueness clash
//   - ErrInvalidState: rows exist but contradict each other (a profile without its base record)
//   - ErrUnavailable: the backing store could not be read
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
