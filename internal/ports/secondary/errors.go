package secondary

import "errors"

// Error kinds shared by all repository implementations. Services branch
// on these with errors.Is; adapters map store-specific failures (e.g.
// sqlite constraint violations) onto them.
var (
	// ErrNotFound indicates the requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates an insert lost a uniqueness race. This is
	// an expected outcome for concurrent idempotent writers, not a
	// store failure.
	ErrConflict = errors.New("uniqueness conflict")
)
