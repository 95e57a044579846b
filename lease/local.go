package lease

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"time"
)

const defaultSweep = 30 * time.Second

type localHold struct {
	token     string
	expiresAt time.Time
}

// Local keeps leases in-process (default).
// Expired holds are reclaimed lazily on Acquire; a background loop prunes
// them so abandoned keys do not accumulate.
type Local struct {
	mu   sync.Mutex
	held map[string]localHold

	ticker    *time.Ticker
	stopCh    chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

var _ Lease = (*Local)(nil)

// NewLocal returns an in-process lease manager with the default sweep
// interval.
func NewLocal() *Local {
	return NewLocalWithSweep(defaultSweep)
}

// NewLocalWithSweep returns an in-process lease manager that prunes
// expired holds every interval. A non-positive interval disables the
// background loop; expired holds are then reclaimed only on Acquire.
func NewLocalWithSweep(interval time.Duration) *Local {
	l := &Local{
		held: make(map[string]localHold),
	}
	if interval > 0 {
		l.ticker = time.NewTicker(interval)
		l.stopCh = make(chan struct{})
		l.wg.Add(1)
		go func() {
			defer l.wg.Done()
			for {
				select {
				case <-l.ticker.C:
					l.sweep(time.Now())
				case <-l.stopCh:
					return
				}
			}
		}()
	}
	return l
}

func (l *Local) Acquire(_ context.Context, key string, ttl time.Duration) (string, bool, error) {
	if ttl <= 0 {
		return "", false, errors.New("lease: ttl must be positive")
	}
	token, err := newToken()
	if err != nil {
		return "", false, err
	}

	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()
	if h, ok := l.held[key]; ok && now.Before(h.expiresAt) {
		return "", false, nil
	}
	l.held[key] = localHold{token: token, expiresAt: now.Add(ttl)}
	return token, true, nil
}

func (l *Local) Release(_ context.Context, key, token string) error {
	l.mu.Lock()
	if h, ok := l.held[key]; ok && h.token == token {
		delete(l.held, key)
	}
	l.mu.Unlock()
	return nil
}

func (l *Local) Close(_ context.Context) error {
	l.closeOnce.Do(func() {
		if l.stopCh != nil {
			close(l.stopCh)
			l.ticker.Stop()
			l.wg.Wait()
		}
	})
	return nil
}

func (l *Local) sweep(now time.Time) {
	l.mu.Lock()
	for k, h := range l.held {
		if !now.Before(h.expiresAt) {
			delete(l.held, k)
		}
	}
	l.mu.Unlock()
}

func newToken() (string, error) {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}
