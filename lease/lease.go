// Package lease provides time-bounded per-key mutual exclusion.
//
// A lease lets exactly one holder work on a key at a time without risking
// a permanent deadlock: if the holder dies, the lease expires on its own
// and the key becomes acquirable again. Use Local (default) for
// single-process deployments, or Redis to coordinate across processes.
package lease

import (
	"context"
	"time"
)

// Lease abstracts where leases live.
type Lease interface {
	// Acquire attempts to take the lease on key for ttl. On success it
	// returns an opaque token identifying the hold. If another holder
	// currently owns the lease, it returns ok=false with a nil error.
	Acquire(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)

	// Release gives up the hold identified by token. Releasing a lease
	// that expired or was taken over by another holder is a no-op.
	Release(ctx context.Context, key, token string) error

	// Close releases resources (no-op ok).
	Close(ctx context.Context) error
}
