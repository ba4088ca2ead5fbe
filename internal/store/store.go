package store

import "context"

// Store is the durable key-value collaborator the conversation state is kept
// in. Values are JSON-serializable; keys are namespaced by the callers so no
// two rooms collide. Within one client instance reads observe prior writes;
// cross-instance sharing of the same store is not supported.
type Store interface {
	// Get decodes the value stored under key into out. It returns
	// ErrNotFound when the key has never been set and wraps ErrCorrupted
	// when the stored value cannot be decoded.
	Get(ctx context.Context, key string, out any) error

	// Set encodes value as JSON and stores it under key, replacing any
	// previous value.
	Set(ctx context.Context, key string, value any) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
