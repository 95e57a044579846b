package source

import (
	"context"
	"testing"
	"time"
)

func recvOne(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case k, ok := <-ch:
		if !ok {
			t.Fatal("keys channel closed")
		}
		return k
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for key")
	}
	return ""
}

func TestLocalNotifyDelivers(t *testing.T) {
	ctx := context.Background()
	s := NewLocal()
	t.Cleanup(func() { _ = s.Close(ctx) })

	if !s.Notify("users:42") {
		t.Fatal("notify reported drop on empty buffer")
	}
	if got := recvOne(t, s.Keys()); got != "users:42" {
		t.Fatalf("got %q", got)
	}
}

func TestLocalNotifyDropsWhenFull(t *testing.T) {
	ctx := context.Background()
	s := NewLocalBuffered(1)
	t.Cleanup(func() { _ = s.Close(ctx) })

	if !s.Notify("a") {
		t.Fatal("first notify dropped")
	}
	if s.Notify("b") {
		t.Fatal("second notify accepted with full buffer")
	}
	if got := recvOne(t, s.Keys()); got != "a" {
		t.Fatalf("got %q", got)
	}
}

func TestLocalCloseClosesChannelAndStopsNotify(t *testing.T) {
	ctx := context.Background()
	s := NewLocal()

	if err := s.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := s.Close(ctx); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if s.Notify("late") {
		t.Fatal("notify accepted after close")
	}
	if _, ok := <-s.Keys(); ok {
		t.Fatal("keys channel still open after close")
	}
}

func TestTickerEmitsTrackedKey(t *testing.T) {
	ctx := context.Background()
	s := NewTicker()
	t.Cleanup(func() { _ = s.Close(ctx) })

	if err := s.Track("rates:usd", 10*time.Millisecond); err != nil {
		t.Fatalf("track: %v", err)
	}
	if got := recvOne(t, s.Keys()); got != "rates:usd" {
		t.Fatalf("got %q", got)
	}
	// keeps firing
	if got := recvOne(t, s.Keys()); got != "rates:usd" {
		t.Fatalf("got %q", got)
	}
}

func TestTickerUntrackStopsEmission(t *testing.T) {
	ctx := context.Background()
	s := NewTicker()
	t.Cleanup(func() { _ = s.Close(ctx) })

	if err := s.Track("k", 5*time.Millisecond); err != nil {
		t.Fatalf("track: %v", err)
	}
	recvOne(t, s.Keys())
	s.Untrack("k")

	// drain anything emitted before the untrack landed, then expect
	// silence
	deadline := time.After(50 * time.Millisecond)
drain:
	for {
		select {
		case <-s.Keys():
		case <-deadline:
			break drain
		}
	}
	select {
	case k := <-s.Keys():
		t.Fatalf("emission after untrack: %q", k)
	case <-time.After(30 * time.Millisecond):
	}
}

func TestTickerRejectsBadIntervalAndTrackAfterClose(t *testing.T) {
	ctx := context.Background()
	s := NewTicker()

	if err := s.Track("k", 0); err == nil {
		t.Fatal("track with zero interval: want error")
	}
	if err := s.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := s.Track("k", time.Second); err == nil {
		t.Fatal("track after close: want error")
	}
	if _, ok := <-s.Keys(); ok {
		t.Fatal("keys channel still open after close")
	}
}
