package store

import "errors"

// Store-level sentinel errors. Consumers translate these into domain errors
// (or into an empty collection, for callers whose policy is availability over
// fidelity) instead of leaking driver details upward.

// ErrNotFound is returned by Get when the key has never been written.
var ErrNotFound = errors.New("store: key not found")

// ErrCorrupted wraps decode failures of a stored value. A caller reading a
// collection is expected to treat this as an empty collection rather than a
// fatal fault.
var ErrCorrupted = errors.New("store: corrupted value")
