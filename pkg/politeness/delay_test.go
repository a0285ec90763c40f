package politeness

import (
	"context"
	"testing"
	"time"
)

func TestDelayer_ZeroWindowDoesNotBlock(t *testing.T) {
	d := NewDelayer(0, 0)

	start := time.Now()
	if err := d.Wait(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if time.Since(start) > 10*time.Millisecond {
		t.Errorf("zero-window delayer should return immediately")
	}
}

func TestDelayer_NilReceiverIsNoop(t *testing.T) {
	var d *Delayer
	if err := d.Wait(context.Background()); err != nil {
		t.Fatalf("nil delayer must be a no-op, got %v", err)
	}
}

func TestDelayer_WaitsWithinWindow(t *testing.T) {
	d := NewDelayer(20*time.Millisecond, 60*time.Millisecond)

	start := time.Now()
	if err := d.Wait(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	elapsed := time.Since(start)

	// Allow scheduling slack on the upper bound.
	if elapsed < 20*time.Millisecond || elapsed > 200*time.Millisecond {
		t.Errorf("expected wait within [20ms, 60ms], took %v", elapsed)
	}
}

func TestDelayer_ContextCancellation(t *testing.T) {
	d := NewDelayer(time.Second, 2*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := d.Wait(ctx); err == nil {
		t.Fatalf("expected context cancellation error")
	}
}

func TestDelayer_InvertedWindowCollapses(t *testing.T) {
	d := NewDelayer(30*time.Millisecond, 10*time.Millisecond)

	start := time.Now()
	_ = d.Wait(context.Background())
	if time.Since(start) < 25*time.Millisecond {
		t.Errorf("inverted window should collapse to [min, min]")
	}
}
