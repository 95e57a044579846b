// Package distribucache implements a self-populating cache: reads fall
// through to a user-supplied populate function on miss, every populate
// call is bounded by a timeout, and staleness notifications trigger
// refreshes guarded by a per-key lease so only one participant across
// all processes rebuilds a value at a time.
//
// Components:
//   - Store: byte store with TTL (e.g. Redis, Ristretto, BigCache, Bolt).
//   - Codec[V]: (de)serializes V <-> []byte.
//   - Lease: per-key mutual exclusion with TTL. Local (in-process) by
//     default, optional Redis implementation for multi-replica setups.
//   - Source: stream of keys to refresh. Local notifications, interval
//     tickers, or Redis pub/sub across a fleet.
//
// Keys:
//
//	entry:<ns>:<key>  - cached entries
//	lease:<ns>:<key>  - refresh leases
//
// Read misses are intentionally not deduplicated: concurrent Gets for an
// absent key each run the populate function and race to write the store
// (last write wins). Misses are expected to be rare, bootstrap-time
// events; the lease machinery guards the recurring refresh path, where
// stampedes would otherwise be routine. If every caller of a hot absent
// key must be collapsed too, front the cache with your own single-flight.
//
// Timeouts race, they do not cancel: when a populate call overruns, the
// caller gets a timeout error but the call keeps running and may still
// write its (now late) value to the store.
package distribucache
