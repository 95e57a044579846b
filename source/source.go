// Package source provides staleness sources: streams of cache keys that
// should be refreshed because their values are (or are about to become)
// out of date.
//
// A cache subscribes to a source and refreshes each emitted key under a
// lease, so one process rebuilds the value while the rest keep serving
// the cached copy. Local delivers in-process notifications, Ticker emits
// keys on fixed intervals, and Redis carries notifications across
// processes over pub/sub.
package source

import "context"

// Source emits user keys (not storage keys) that should be refreshed.
type Source interface {
	// Keys returns the stream of stale keys. The channel is closed when
	// the source shuts down.
	Keys() <-chan string

	// Close stops the source and closes the Keys channel.
	Close(ctx context.Context) error
}

// Channel returns the conventional pub/sub channel name carrying
// staleness notifications for a namespace. Notifier and the Redis source
// must agree on this name for notifications to arrive.
func Channel(namespace string) string {
	return "stale:" + namespace
}

const defaultBuffer = 64
