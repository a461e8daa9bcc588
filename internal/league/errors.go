package league

import "errors"

// Error kinds. Operations wrap one of these with context so callers can
// branch with errors.Is.
var (
	// ErrValidation marks a malformed request.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks an unknown gameplay, team, round, match or venue.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState marks an operation that the current data does not allow.
	ErrInvalidState = errors.New("invalid state")
	// ErrInvariant marks inconsistent data, e.g. a table row for a missing group.
	ErrInvariant = errors.New("invariant violation")
	// ErrConflict marks a duplicate insert.
	ErrConflict = errors.New("conflict")
)
