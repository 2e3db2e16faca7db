package store

import "context"

// Store is the minimal persistent key-value capability the orchestrator
// needs: one Get and one last-writer-wins Set. Injecting it keeps the
// cache slot testable with an in-memory substitute.
type Store interface {
	// Get returns the stored value, or ok=false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}
