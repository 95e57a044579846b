package distribucache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	c "github.com/areusjs/distribucache/codec"
	"github.com/areusjs/distribucache/internal/keys"
	"github.com/areusjs/distribucache/internal/wire"
	"github.com/areusjs/distribucache/lease"
	"github.com/areusjs/distribucache/source"
	"github.com/areusjs/distribucache/store"
)

const (
	defaultPopulateTimeout = 30 * time.Second
	defaultLeaseMargin     = time.Second
	defaultMaxRefreshes    = 4
)

type cache[V any] struct {
	ns       string
	store    store.Store
	codec    c.Codec[V]
	populate PopulateFunc[V]
	log      Logger
	hooks    Hooks
	enabled  bool

	populateTimeout time.Duration
	leaseTTL        time.Duration
	storeTTL        time.Duration
	staleAfter      time.Duration

	leases   lease.Lease
	ownLease bool

	src        source.Source
	refreshSem *semaphore.Weighted

	mu        sync.Mutex
	closed    bool
	stopCh    chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
	closeErr  error
}

func newCache[V any](opts Options[V]) (*cache[V], error) {
	if opts.Namespace == "" {
		return nil, fmt.Errorf("distribucache: namespace is required")
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("distribucache: store is required")
	}
	if opts.Codec == nil {
		return nil, fmt.Errorf("distribucache: codec is required")
	}
	if opts.Populate == nil {
		return nil, fmt.Errorf("distribucache: populate is required")
	}

	populateTimeout := coalesce(opts.PopulateTimeout, defaultPopulateTimeout)
	if populateTimeout <= 0 {
		return nil, fmt.Errorf("distribucache: populate timeout must be positive")
	}
	leaseTTL := opts.LeaseTTL
	if leaseTTL == 0 {
		leaseTTL = populateTimeout + defaultLeaseMargin
	}
	if leaseTTL <= populateTimeout {
		return nil, fmt.Errorf("distribucache: lease ttl (%v) must exceed populate timeout (%v)",
			leaseTTL, populateTimeout)
	}
	maxRefreshes := coalesce(opts.MaxConcurrentRefreshes, defaultMaxRefreshes)
	if maxRefreshes < 0 {
		return nil, fmt.Errorf("distribucache: max concurrent refreshes must not be negative")
	}
	if opts.StaleAfter < 0 {
		return nil, fmt.Errorf("distribucache: stale-after must not be negative")
	}

	cc := &cache[V]{
		ns:              opts.Namespace,
		store:           opts.Store,
		codec:           opts.Codec,
		populate:        opts.Populate,
		enabled:         !opts.Disabled,
		populateTimeout: populateTimeout,
		leaseTTL:        leaseTTL,
		storeTTL:        opts.StoreTTL,
		staleAfter:      opts.StaleAfter,
		refreshSem:      semaphore.NewWeighted(int64(maxRefreshes)),
		stopCh:          make(chan struct{}),
	}

	cc.log = opts.Logger
	if cc.log == nil {
		cc.log = NopLogger{}
	}
	cc.hooks = opts.Hooks
	if cc.hooks == nil {
		cc.hooks = NopHooks{}
	}

	cc.leases = opts.Lease
	if cc.leases == nil {
		cc.leases = lease.NewLocal()
		cc.ownLease = true
	}

	cc.src = opts.Source
	if cc.src != nil && cc.enabled {
		cc.wg.Add(1)
		go cc.reactLoop()
	}

	return cc, nil
}

func (c *cache[V]) Enabled() bool { return c.enabled }

// Close stops the staleness reactor, waits for in-flight background
// refreshes, and releases the source, the store, and the default lease.
// An injected lease is left open since it may be shared.
func (c *cache[V]) Close(ctx context.Context) error {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		close(c.stopCh)

		var errs []error
		if c.src != nil {
			if err := c.src.Close(ctx); err != nil {
				errs = append(errs, err)
			}
		}
		c.wg.Wait()
		if c.ownLease {
			if err := c.leases.Close(ctx); err != nil {
				errs = append(errs, err)
			}
		}
		if err := c.store.Close(ctx); err != nil {
			errs = append(errs, err)
		}
		c.closeErr = errors.Join(errs...)
	})
	return c.closeErr
}

func (c *cache[V]) Get(ctx context.Context, key string) (V, error) {
	var zero V
	if !c.enabled {
		return c.Populate(ctx, key)
	}

	v, populatedAt, ok, err := c.read(ctx, key)
	if err != nil {
		return zero, err
	}
	if ok {
		if c.staleAfter > 0 && time.Since(populatedAt) > c.staleAfter {
			c.scheduleRefresh(key)
		}
		c.hooks.Hit(key)
		return v, nil
	}

	c.hooks.Miss(key)
	return c.Populate(ctx, key)
}

func (c *cache[V]) Peek(ctx context.Context, key string) (V, bool, error) {
	var zero V
	if !c.enabled {
		return zero, false, nil
	}
	v, _, ok, err := c.read(ctx, key)
	return v, ok, err
}

type populateResult[V any] struct {
	v   V
	err error
}

// Populate races the populate-and-store pipeline against the configured
// timeout. The losing pipeline is not cancelled: it keeps running in the
// background and may still commit its value to the store after the
// caller has already seen a timeout, so a later read can observe a value
// the timed-out caller never did.
func (c *cache[V]) Populate(ctx context.Context, key string) (V, error) {
	var zero V
	resCh := make(chan populateResult[V], 1)
	bg := context.WithoutCancel(ctx)
	go func() {
		v, err := c.invoke(bg, key)
		if err == nil && c.enabled {
			if werr := c.writeEntry(bg, key, v); werr != nil {
				err = werr // a failed store write supersedes the value
			}
		}
		resCh <- populateResult[V]{v: v, err: err}
	}()

	timer := time.NewTimer(c.populateTimeout)
	defer timer.Stop()
	select {
	case res := <-resCh:
		if res.err != nil {
			return zero, res.err
		}
		return res.v, nil
	case <-timer.C:
		c.hooks.PopulateTimedOut(key, c.populateTimeout)
		c.log.Warn("populate timed out", Fields{"key": key, "timeout": c.populateTimeout})
		return zero, &PopulateTimeoutError{Timeout: c.populateTimeout}
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func (c *cache[V]) LeasedPopulate(ctx context.Context, key string) (V, bool, error) {
	var zero V
	if !c.enabled {
		v, err := c.Populate(ctx, key)
		if err != nil {
			return zero, false, &PopulateError{Key: key, Cause: err}
		}
		return v, true, nil
	}

	leaseKey := keys.Lease(c.ns, key)
	token, ok, err := c.leases.Acquire(ctx, leaseKey, c.leaseTTL)
	if err != nil {
		return zero, false, err
	}
	if !ok {
		c.hooks.LeaseContended(key)
		c.log.Debug("lease already held; skipping populate", Fields{"key": key})
		return zero, false, nil
	}
	defer func() {
		// release even when the caller's context is already done;
		// otherwise the key is starved of refresh until the TTL expires
		if rerr := c.leases.Release(context.WithoutCancel(ctx), leaseKey, token); rerr != nil {
			c.log.Warn("lease release failed; lease will expire on its own",
				Fields{"key": key, "err": rerr})
		}
	}()

	v, err := c.Populate(ctx, key)
	if err != nil {
		return zero, false, &PopulateError{Key: key, Cause: err}
	}
	return v, true, nil
}

func (c *cache[V]) Set(ctx context.Context, key string, value V) error {
	if !c.enabled {
		return nil
	}
	return c.writeEntry(ctx, key, value)
}

func (c *cache[V]) Del(ctx context.Context, key string) error {
	if !c.enabled {
		return nil
	}
	return c.store.Del(ctx, keys.Storage(c.ns, key))
}

// read returns the decoded value and its population time. Unreadable
// entries are deleted so the next miss rebuilds them.
func (c *cache[V]) read(ctx context.Context, key string) (V, time.Time, bool, error) {
	var zero V
	sk := keys.Storage(c.ns, key)
	raw, ok, err := c.store.Get(ctx, sk)
	if err != nil {
		return zero, time.Time{}, false, err
	}
	if !ok {
		return zero, time.Time{}, false, nil
	}

	populatedAt, payload, err := wire.DecodeEntry(raw)
	if err != nil {
		c.selfHeal(ctx, key, sk, "corrupt")
		return zero, time.Time{}, false, nil
	}
	v, err := c.codec.Decode(payload)
	if err != nil {
		c.selfHeal(ctx, key, sk, "value_decode")
		return zero, time.Time{}, false, nil
	}
	return v, time.Unix(0, populatedAt), true, nil
}

func (c *cache[V]) selfHeal(ctx context.Context, key, storageKey, reason string) {
	_ = c.store.Del(ctx, storageKey)
	c.hooks.SelfHeal(key, reason)
	c.log.Warn("dropped unreadable entry", Fields{"key": key, "reason": reason})
}

// invoke runs the populate function with panic recovery. Both a returned
// error and a recovered panic come back as *PopulateFuncError.
func (c *cache[V]) invoke(ctx context.Context, key string) (v V, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero V
			v = zero
			err = &PopulateFuncError{Cause: fmt.Errorf("%v", r)}
		}
	}()
	v, err = c.populate(ctx, key)
	if err != nil {
		var zero V
		return zero, &PopulateFuncError{Cause: err}
	}
	return v, nil
}

func (c *cache[V]) writeEntry(ctx context.Context, key string, value V) error {
	payload, err := c.codec.Encode(value)
	if err != nil {
		return err
	}
	entry := wire.EncodeEntry(time.Now().UnixNano(), payload)
	ok, err := c.store.Set(ctx, keys.Storage(c.ns, key), entry, c.storeTTL)
	if err != nil {
		return err
	}
	if !ok {
		c.hooks.StoreSetRejected(key)
		c.log.Debug("store rejected write under pressure", Fields{"key": key})
	}
	return nil
}

// reactLoop turns staleness notifications into lease-guarded refreshes.
// Nobody awaits these refreshes; their failures go to the hooks and the
// log instead of a caller.
func (c *cache[V]) reactLoop() {
	defer c.wg.Done()
	ch := c.src.Keys()
	for {
		select {
		case <-c.stopCh:
			return
		case key, ok := <-ch:
			if !ok {
				return
			}
			c.scheduleRefresh(key)
		}
	}
}

// scheduleRefresh runs LeasedPopulate(key) in the background, bounded by
// the refresh semaphore. When every slot is busy the key is dropped; a
// later notification (or stale read) tries again.
func (c *cache[V]) scheduleRefresh(key string) {
	if !c.refreshSem.TryAcquire(1) {
		c.hooks.RefreshRejected(key)
		c.log.Debug("refresh slots busy; dropping stale key", Fields{"key": key})
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.refreshSem.Release(1)
		return
	}
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()
		defer c.refreshSem.Release(1)
		if _, _, err := c.LeasedPopulate(context.Background(), key); err != nil {
			c.hooks.RefreshFailed(key, err)
			c.log.Error("background refresh failed", Fields{"key": key, "err": err})
		}
	}()
}
