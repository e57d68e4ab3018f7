package kvstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key holds no value.
var ErrNotFound = errors.New("key not found")

// ErrStoreUnavailable wraps backend failures so callers can distinguish an
// absent key from an unreachable store.
var ErrStoreUnavailable = errors.New("store unavailable")

// Store is the durable key-value capability. Values are opaque strings;
// callers own serialization. Writers to different keys are safe concurrently;
// overlapping writers to the same key resolve last-write-wins (whole-value
// replace, no partial updates).
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	RemoveMany(ctx context.Context, keys ...string) error
}
