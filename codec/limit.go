package codec

import "fmt"

// ErrTooLarge is returned by LimitCodec when an encoded or stored
// payload exceeds the configured maximum.
type ErrTooLarge struct {
	Size int
	Max  int
}

func (e *ErrTooLarge) Error() string {
	return fmt.Sprintf("codec: payload size %d exceeds limit %d", e.Size, e.Max)
}

// LimitCodec wraps another codec and rejects payloads larger than Max
// bytes in both directions. Use it to keep oversized values out of
// stores with per-entry size limits.
type LimitCodec[V any] struct {
	Inner Codec[V]
	Max   int
}

func (l LimitCodec[V]) Encode(v V) ([]byte, error) {
	b, err := l.Inner.Encode(v)
	if err != nil {
		return nil, err
	}
	if l.Max > 0 && len(b) > l.Max {
		return nil, &ErrTooLarge{Size: len(b), Max: l.Max}
	}
	return b, nil
}

func (l LimitCodec[V]) Decode(b []byte) (V, error) {
	if l.Max > 0 && len(b) > l.Max {
		var zero V
		return zero, &ErrTooLarge{Size: len(b), Max: l.Max}
	}
	return l.Inner.Decode(b)
}
