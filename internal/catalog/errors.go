package catalog

import "errors"

// Sentinel errors identifying the failure categories reported by the catalog.
// Every error returned by this package wraps exactly one of them, so callers
// can discriminate with errors.Is.
var (
	// ErrInvalidArgument reports malformed input: a relative path where an
	// absolute one is required, a multi-component name where a bare filename
	// is required, or a root that is not an existing non-symlink directory.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound reports a folder or file record that cannot be resolved.
	ErrNotFound = errors.New("not found")
	// ErrCollision reports a destination name already occupied by a file or folder.
	ErrCollision = errors.New("collision")
	// ErrIO reports a failed filesystem primitive. The low-level cause is wrapped too.
	ErrIO = errors.New("io failure")
	// ErrInvariant reports an internal consistency failure that validation
	// should have prevented. It indicates a bug, not a user error.
	ErrInvariant = errors.New("invariant violation")
)
