// Package asynchook decouples hook processing from the cache's hot
// paths: events are handed to a small worker pool and dropped when the
// queue is full, so a slow hook sink can never stall a Get.
//
// usage:
//
// import (
//
//	"log/slog"
//
//	"github.com/areusjs/distribucache"
//	"github.com/areusjs/distribucache/codec"
//	"github.com/areusjs/distribucache/hooks/async"
//	"github.com/areusjs/distribucache/hooks/slog"
//
// )
//
//	raw := sloghook.New(slog.Default(), sloghook.Options{
//	    HitEvery:  100, // sample logs: ~every 100th hit
//	    MissEvery: 1,   // log every miss
//	})
//
// hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
// defer hooks.Close()
//
//	cache, _ := distribucache.New[User](distribucache.Options[User]{
//	    Namespace: "app:prod:user",
//	    Store:     st,
//	    Codec:     codec.JSON[User]{},
//	    Populate:  loadUser,
//	    Hooks:     hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"
	"time"

	"github.com/areusjs/distribucache"
)

type Hooks struct {
	inner distribucache.Hooks
	q     chan func()
	wg    sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

var _ distribucache.Hooks = (*Hooks)(nil)

func New(inner distribucache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

func (h *Hooks) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	h.mu.Unlock()
	close(h.q)
	h.wg.Wait()
}

// try enqueues f unless the queue is full or the pool is closed. Events
// may still arrive after Close from populate calls that outlived their
// timeout; those are dropped.
func (h *Hooks) try(f func()) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return
	}
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) Hit(k string)              { h.try(func() { h.inner.Hit(k) }) }
func (h *Hooks) Miss(k string)             { h.try(func() { h.inner.Miss(k) }) }
func (h *Hooks) SelfHeal(k, r string)      { h.try(func() { h.inner.SelfHeal(k, r) }) }
func (h *Hooks) StoreSetRejected(k string) { h.try(func() { h.inner.StoreSetRejected(k) }) }
func (h *Hooks) LeaseContended(k string)   { h.try(func() { h.inner.LeaseContended(k) }) }
func (h *Hooks) RefreshRejected(k string)  { h.try(func() { h.inner.RefreshRejected(k) }) }
func (h *Hooks) PopulateTimedOut(k string, d time.Duration) {
	h.try(func() { h.inner.PopulateTimedOut(k, d) })
}
func (h *Hooks) RefreshFailed(k string, err error) {
	h.try(func() { h.inner.RefreshFailed(k, err) })
}
