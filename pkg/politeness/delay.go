// Package politeness spaces out consecutive page loads with a randomized
// delay, reducing request-pattern fingerprinting against the scraped site.
package politeness

import (
	"context"
	"math/rand"
	"time"
)

// Delayer sleeps for a random duration inside a fixed [min, max] window.
// It is safe for concurrent use. A zero window disables delays entirely,
// which is how tests skip the politeness pause.
type Delayer struct {
	min time.Duration
	max time.Duration
}

// NewDelayer builds a Delayer for the given window. If max < min the window
// collapses to [min, min].
func NewDelayer(min, max time.Duration) *Delayer {
	if max < min {
		max = min
	}
	return &Delayer{min: min, max: max}
}

// Wait blocks for a random duration within the window, or until the context
// is canceled. It returns immediately when the window is zero.
func (d *Delayer) Wait(ctx context.Context) error {
	if d == nil || d.max <= 0 {
		return nil
	}

	span := d.max - d.min
	sleep := d.min
	if span > 0 {
		sleep += time.Duration(rand.Int63n(int64(span) + 1))
	}

	timer := time.NewTimer(sleep)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
