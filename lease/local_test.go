package lease

import (
	"context"
	"testing"
	"time"
)

func TestLocalAcquireExcludesSecondHolder(t *testing.T) {
	ctx := context.Background()
	l := NewLocalWithSweep(0)
	t.Cleanup(func() { _ = l.Close(ctx) })

	tok, ok, err := l.Acquire(ctx, "k", time.Minute)
	if err != nil || !ok || tok == "" {
		t.Fatalf("first acquire: tok=%q ok=%v err=%v", tok, ok, err)
	}

	tok2, ok2, err := l.Acquire(ctx, "k", time.Minute)
	if err != nil {
		t.Fatalf("second acquire: %v", err)
	}
	if ok2 || tok2 != "" {
		t.Fatalf("second acquire while held: tok=%q ok=%v, want contended", tok2, ok2)
	}

	// a different key is unaffected
	if _, ok, err := l.Acquire(ctx, "other", time.Minute); err != nil || !ok {
		t.Fatalf("acquire other key: ok=%v err=%v", ok, err)
	}
}

func TestLocalReleaseRequiresMatchingToken(t *testing.T) {
	ctx := context.Background()
	l := NewLocalWithSweep(0)
	t.Cleanup(func() { _ = l.Close(ctx) })

	tok, ok, err := l.Acquire(ctx, "k", time.Minute)
	if err != nil || !ok {
		t.Fatalf("acquire: ok=%v err=%v", ok, err)
	}

	if err := l.Release(ctx, "k", "not-the-token"); err != nil {
		t.Fatalf("release with wrong token: %v", err)
	}
	if _, ok, _ := l.Acquire(ctx, "k", time.Minute); ok {
		t.Fatal("wrong-token release freed the lease")
	}

	if err := l.Release(ctx, "k", tok); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, ok, _ := l.Acquire(ctx, "k", time.Minute); !ok {
		t.Fatal("lease not acquirable after release")
	}
}

func TestLocalExpiryAllowsReacquire(t *testing.T) {
	ctx := context.Background()
	l := NewLocalWithSweep(0)
	t.Cleanup(func() { _ = l.Close(ctx) })

	old, ok, err := l.Acquire(ctx, "k", 20*time.Millisecond)
	if err != nil || !ok {
		t.Fatalf("acquire: ok=%v err=%v", ok, err)
	}

	time.Sleep(30 * time.Millisecond)

	if _, ok, err := l.Acquire(ctx, "k", time.Minute); err != nil || !ok {
		t.Fatalf("reacquire after expiry: ok=%v err=%v", ok, err)
	}

	// the stale holder's release must not evict the new holder
	if err := l.Release(ctx, "k", old); err != nil {
		t.Fatalf("stale release: %v", err)
	}
	if _, ok, _ := l.Acquire(ctx, "k", time.Minute); ok {
		t.Fatal("stale release evicted the current holder")
	}
}

func TestLocalSweepPrunesExpired(t *testing.T) {
	ctx := context.Background()
	l := NewLocalWithSweep(0)
	t.Cleanup(func() { _ = l.Close(ctx) })

	if _, ok, err := l.Acquire(ctx, "gone", time.Nanosecond); err != nil || !ok {
		t.Fatalf("acquire: ok=%v err=%v", ok, err)
	}
	if _, ok, err := l.Acquire(ctx, "kept", time.Hour); err != nil || !ok {
		t.Fatalf("acquire: ok=%v err=%v", ok, err)
	}

	l.sweep(time.Now().Add(time.Millisecond))

	l.mu.Lock()
	_, goneHeld := l.held["gone"]
	_, keptHeld := l.held["kept"]
	l.mu.Unlock()
	if goneHeld {
		t.Fatal("expired hold survived sweep")
	}
	if !keptHeld {
		t.Fatal("live hold removed by sweep")
	}
}

func TestLocalAcquireRejectsNonPositiveTTL(t *testing.T) {
	ctx := context.Background()
	l := NewLocalWithSweep(0)
	t.Cleanup(func() { _ = l.Close(ctx) })

	if _, _, err := l.Acquire(ctx, "k", 0); err == nil {
		t.Fatal("acquire with zero ttl: want error")
	}
}
