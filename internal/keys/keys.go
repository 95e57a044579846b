package keys

import (
	"crypto/sha256"
	"encoding/hex"
)

// Storage returns the store key for a cached entry, isolated by namespace.
func Storage(ns, userKey string) string {
	return "entry:" + ns + ":" + userKey
}

// Lease returns the lease key guarding refresh of a single entry. Kept in a
// separate keyspace so a lease store sharing the byte store's backend can
// never collide with cached entries.
func Lease(ns, userKey string) string {
	return "lease:" + ns + ":" + userKey
}

// Redact returns a short, stable digest of a key for logs that may leave the
// host's control. First 8 bytes of SHA-256, hex-encoded.
func Redact(k string) string {
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}
