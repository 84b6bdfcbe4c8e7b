package driven

import "context"

// ObjectStore holds raw uploaded file bytes.
type ObjectStore interface {
	// Put stores data under key, replacing any existing object.
	Put(ctx context.Context, key string, data []byte) error

	// Get returns the object stored under key.
	// Returns domain.ErrNotFound if it does not exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes the object. Missing objects are not an error.
	Delete(ctx context.Context, key string) error
}
