package distribucache

import "time"

// Hooks are lightweight callbacks for high-signal cache events.
// Implementations MUST be cheap and non-blocking.
// The cache calls them on hot paths.
type Hooks interface {
	// Get served a decoded value from the store.
	Hit(key string)

	// Get found no usable entry and fell through to the populate
	// function.
	Miss(key string)

	// An unreadable entry was deleted by the cache on read.
	// reason ∈ {"corrupt", "value_decode"}
	SelfHeal(key, reason string)

	// Store returned ok=false on Set (backpressure/eviction).
	StoreSetRejected(key string)

	// A population attempt exceeded the configured timeout. The
	// populate function may still be running.
	PopulateTimedOut(key string, timeout time.Duration)

	// A refresh found the key's lease held by another participant and
	// skipped the populate.
	LeaseContended(key string)

	// A staleness-triggered refresh failed. No caller sees this error;
	// the hook is its only outlet besides the log.
	RefreshFailed(key string, err error)

	// A stale key was not refreshed because all refresh slots were
	// busy. The key stays stale until the next notification.
	RefreshRejected(key string)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) Hit(string)                             {}
func (NopHooks) Miss(string)                            {}
func (NopHooks) SelfHeal(string, string)                {}
func (NopHooks) StoreSetRejected(string)                {}
func (NopHooks) PopulateTimedOut(string, time.Duration) {}
func (NopHooks) LeaseContended(string)                  {}
func (NopHooks) RefreshFailed(string, error)            {}
func (NopHooks) RefreshRejected(string)                 {}
