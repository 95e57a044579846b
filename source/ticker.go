package source

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Ticker emits each tracked key on a fixed interval, driving periodic
// re-population of entries that go stale with time rather than on an
// explicit event (exchange rates, aggregated counters).
//
// Each tracked key ticks independently. Emissions are best effort: when
// the buffer is full a tick is skipped and the key fires again on its
// next interval.
type Ticker struct {
	mu      sync.Mutex
	tracked map[string]chan struct{}
	closed  bool

	ch chan string
	wg sync.WaitGroup
}

var _ Source = (*Ticker)(nil)

// NewTicker returns a Ticker source with the default buffer.
func NewTicker() *Ticker {
	return NewTickerBuffered(defaultBuffer)
}

// NewTickerBuffered returns a Ticker source buffering up to n pending
// keys. n must be at least 1.
func NewTickerBuffered(n int) *Ticker {
	if n < 1 {
		n = 1
	}
	return &Ticker{
		tracked: make(map[string]chan struct{}),
		ch:      make(chan string, n),
	}
}

// Track starts emitting key every interval. Tracking an already tracked
// key replaces its interval.
func (t *Ticker) Track(key string, every time.Duration) error {
	if every <= 0 {
		return errors.New("source: interval must be positive")
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return errors.New("source: ticker is closed")
	}
	if stop, ok := t.tracked[key]; ok {
		close(stop)
	}
	stop := make(chan struct{})
	t.tracked[key] = stop

	t.wg.Add(1)
	go t.tick(key, every, stop)
	return nil
}

// Untrack stops emitting key. Untracking an unknown key is a no-op.
func (t *Ticker) Untrack(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if stop, ok := t.tracked[key]; ok {
		close(stop)
		delete(t.tracked, key)
	}
}

func (t *Ticker) Keys() <-chan string { return t.ch }

// Close stops all tracked keys, waits for their goroutines, and closes
// the Keys channel.
func (t *Ticker) Close(context.Context) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	for _, stop := range t.tracked {
		close(stop)
	}
	t.tracked = nil
	t.mu.Unlock()

	t.wg.Wait()
	close(t.ch)
	return nil
}

func (t *Ticker) tick(key string, every time.Duration, stop <-chan struct{}) {
	defer t.wg.Done()
	tk := time.NewTicker(every)
	defer tk.Stop()
	for {
		select {
		case <-tk.C:
			select {
			case t.ch <- key:
			default: // buffer full; next tick retries
			}
		case <-stop:
			return
		}
	}
}
