// Package sloghook emits cache events to a log/slog Logger. Keys are
// redacted by default so logs can be shipped off-host without leaking
// identifiers embedded in cache keys.
package sloghook

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/areusjs/distribucache"
	"github.com/areusjs/distribucache/internal/keys"
)

type Options struct {
	// Sampling to avoid floods on hot paths; 0/1 = log all.
	HitEvery      uint64
	MissEvery     uint64
	SelfHealEvery uint64
	// Optional key redactor. Defaults to a SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	hitCtr      atomic.Uint64
	missCtr     atomic.Uint64
	selfHealCtr atomic.Uint64
}

var _ distribucache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	return keys.Redact(k)
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) Hit(key string) {
	if h.l == nil || !sample(h.opts.HitEvery, &h.hitCtr) {
		return
	}
	h.l.Debug("distribucache.hit", "key", h.redact(key))
}

func (h *Hooks) Miss(key string) {
	if h.l == nil || !sample(h.opts.MissEvery, &h.missCtr) {
		return
	}
	h.l.Debug("distribucache.miss", "key", h.redact(key))
}

func (h *Hooks) SelfHeal(key, reason string) {
	if h.l == nil || !sample(h.opts.SelfHealEvery, &h.selfHealCtr) {
		return
	}
	h.l.Debug("distribucache.self_heal",
		"key", h.redact(key),
		"reason", reason)
}

func (h *Hooks) StoreSetRejected(key string) {
	if h.l == nil {
		return
	}
	h.l.Warn("distribucache.store_set_rejected",
		"key", h.redact(key))
}

func (h *Hooks) PopulateTimedOut(key string, timeout time.Duration) {
	if h.l == nil {
		return
	}
	h.l.Warn("distribucache.populate_timed_out",
		"key", h.redact(key),
		"timeout", timeout)
}

func (h *Hooks) LeaseContended(key string) {
	if h.l == nil {
		return
	}
	h.l.Debug("distribucache.lease_contended",
		"key", h.redact(key))
}

func (h *Hooks) RefreshFailed(key string, err error) {
	if h.l == nil {
		return
	}
	h.l.Error("distribucache.refresh_failed",
		"key", h.redact(key),
		"err", err)
}

func (h *Hooks) RefreshRejected(key string) {
	if h.l == nil {
		return
	}
	h.l.Warn("distribucache.refresh_rejected",
		"key", h.redact(key))
}
