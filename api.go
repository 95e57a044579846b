package distribucache

import (
	"context"
	"time"

	c "github.com/areusjs/distribucache/codec"
	"github.com/areusjs/distribucache/lease"
	"github.com/areusjs/distribucache/source"
	"github.com/areusjs/distribucache/store"
)

// PopulateFunc computes the value for a key that is absent from the
// cache or needs a refresh. It is user-supplied and may be slow; the
// cache bounds each call with Options.PopulateTimeout. The context is
// not cancelled when the timeout fires, so a slow call may run to
// completion in the background.
type PopulateFunc[V any] func(ctx context.Context, key string) (V, error)

// Cache is the self-populating cache API. V is the caller's value type;
// serialization is handled by a pluggable Codec[V].
type Cache[V any] interface {
	Enabled() bool
	Close(context.Context) error

	// Get returns the cached value for key. On a miss it populates,
	// stores, and returns the fresh value. Concurrent misses for the
	// same key each populate independently; only staleness-driven
	// refresh is deduplicated (see LeasedPopulate).
	Get(ctx context.Context, key string) (V, error)

	// Populate invokes the populate function for key regardless of the
	// cached state, stores the result, and returns it. Each call is
	// bounded by the configured populate timeout.
	Populate(ctx context.Context, key string) (V, error)

	// LeasedPopulate refreshes key under its lease so at most one
	// participant across all processes populates at a time. When the
	// lease is already held elsewhere it returns ok=false with a nil
	// error and does not invoke the populate function. All populate
	// failures come back as *PopulateError naming the key.
	LeasedPopulate(ctx context.Context, key string) (v V, ok bool, err error)

	// Peek returns the cached value without populating on a miss.
	Peek(ctx context.Context, key string) (v V, ok bool, err error)

	// Set stores a value directly, bypassing the populate function.
	Set(ctx context.Context, key string, value V) error

	// Del removes a key.
	Del(ctx context.Context, key string) error
}

// Options tune the behavior of the cache.
// Namespace, Store, Codec, and Populate are required; the rest have
// sensible defaults.
type Options[V any] struct {
	// Required
	Namespace string // logical namespace to avoid collisions, e.g. "user", "rates"
	Store     store.Store
	Codec     c.Codec[V]
	Populate  PopulateFunc[V]

	// PopulateTimeout bounds each populate call; 0 => 30s.
	PopulateTimeout time.Duration
	// LeaseTTL bounds how long a refresh may hold a key's lease;
	// 0 => PopulateTimeout + 1s. Must exceed PopulateTimeout so a lease
	// cannot expire while its holder's bounded populate is still
	// legitimately running.
	LeaseTTL time.Duration
	// StoreTTL is the storage TTL for written entries; 0 => no expiry.
	StoreTTL time.Duration
	// StaleAfter marks entries older than this as stale on read: Get
	// still returns them but schedules a lease-guarded refresh in the
	// background. 0 disables age-based staleness.
	StaleAfter time.Duration

	Lease lease.Lease // nil => lease.NewLocal() (in-process, owned by the cache)
	// Source feeds staleness notifications; each emitted key triggers a
	// lease-guarded refresh. The cache owns the source and closes it on
	// Close. nil => no subscription.
	Source source.Source
	// MaxConcurrentRefreshes caps in-flight background refreshes
	// (staleness notifications and StaleAfter hits); 0 => 4. Excess
	// notifications are dropped, not queued.
	MaxConcurrentRefreshes int

	Logger   Logger // if nil, NopLogger is used
	Hooks    Hooks  // if nil, NopHooks is used
	Disabled bool   // default false (enabled)
}

func New[V any](opts Options[V]) (Cache[V], error) {
	return newCache[V](opts)
}
