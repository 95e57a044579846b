// Package codec defines the value serialization contract used by the
// cache and ships implementations for common formats.
//
// A Codec turns typed values into the byte payloads stored inside cache
// entries and back. Implementations must be safe for concurrent use.
package codec

// Codec serializes values of type V for storage.
type Codec[V any] interface {
	Encode(v V) ([]byte, error)
	Decode(b []byte) (V, error)
}
