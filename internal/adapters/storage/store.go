// Package storage defines the shared key-value namespace that rooms are
// persisted into, and the change-notification contract layered on top of it.
package storage

import "context"

// Store provides read/write access to the shared namespace plus a per-key
// change signal. Writes are last-write-wins at whole-value granularity.
type Store interface {
	// Get returns the value stored under key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key and notifies subscribers of that key.
	// The writer's own subscribers are notified too, so same-context
	// listeners observe local writes without a separate signal.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key and notifies its subscribers. Deleting a missing
	// key is a no-op.
	Delete(ctx context.Context, key string) error

	// Keys lists the stored keys with the given prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)

	// Subscribe registers fn to run after every change to key. The returned
	// function cancels the subscription; it must be called on teardown to
	// avoid leaking listeners.
	Subscribe(ctx context.Context, key string, fn func()) (func(), error)

	// Close releases backend resources.
	Close() error
}
