package driven

import (
	"context"
	"errors"
)

// ErrStoreUnavailable is returned by KVStore implementations that cannot
// reach their backing storage at all.
var ErrStoreUnavailable = errors.New("durable store unavailable")

// KVStore defines the driven port for durable key-value persistence. Each
// operation is atomic on its own; callers do not lock across operations.
type KVStore interface {
	// Get returns the stored value and true, or ("", false, nil) when the key
	// does not exist.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores or replaces the value for key.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
