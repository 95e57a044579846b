package source

import (
	"context"
	"sync"
)

// Local is an in-process staleness source. Application code calls Notify
// when it knows a key's value is out of date (after a write to the
// backing system, typically).
//
// Delivery is best effort: when the buffer is full the notification is
// dropped rather than blocking the caller. A dropped notification only
// delays the refresh until the next one.
type Local struct {
	mu     sync.Mutex
	ch     chan string
	closed bool
}

var _ Source = (*Local)(nil)

// NewLocal returns a Local source with the default buffer.
func NewLocal() *Local {
	return NewLocalBuffered(defaultBuffer)
}

// NewLocalBuffered returns a Local source buffering up to n pending
// notifications. n must be at least 1.
func NewLocalBuffered(n int) *Local {
	if n < 1 {
		n = 1
	}
	return &Local{ch: make(chan string, n)}
}

// Notify marks key as stale. It reports false when the notification was
// dropped, either because the buffer is full or the source is closed.
func (s *Local) Notify(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.ch <- key:
		return true
	default:
		return false
	}
}

func (s *Local) Keys() <-chan string { return s.ch }

func (s *Local) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
	return nil
}
