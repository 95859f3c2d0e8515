package haloengine

import (
	"context"
	"time"
)

// Scheduler drives a repeating per-frame callback at a fixed cadence with a
// monotonic clock. Callbacks are invoked serially from a single goroutine:
// the next tick fires only after the previous callback returns, and missed
// ticks are dropped rather than queued.
//
// The viewer runs under ebiten's own loop instead; the scheduler exists for
// headless use (replay, tests) where lifecycle must be controllable without
// a live display.
type Scheduler struct {
	interval time.Duration
}

// NewScheduler returns a scheduler ticking at the given frames per second.
func NewScheduler(fps int) *Scheduler {
	if fps <= 0 {
		fps = 60
	}
	return &Scheduler{interval: time.Second / time.Duration(fps)}
}

// Run invokes fn with monotonically increasing elapsed milliseconds until
// ctx is cancelled. It blocks for the scheduler's lifetime.
func (s *Scheduler) Run(ctx context.Context, fn func(elapsedMs float64)) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(float64(time.Since(start)) / float64(time.Millisecond))
		}
	}
}
