package haloengine

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestSchedulerRunsUntilCancelled(t *testing.T) {
	s := NewScheduler(200)
	ctx, cancel := context.WithCancel(context.Background())

	var ticks int64
	var lastElapsed float64
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx, func(elapsedMs float64) {
			if elapsedMs < lastElapsed {
				t.Errorf("elapsed went backwards: %v after %v", elapsedMs, lastElapsed)
			}
			lastElapsed = elapsedMs
			atomic.AddInt64(&ticks, 1)
		})
	}()

	time.Sleep(200 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancellation")
	}

	n := atomic.LoadInt64(&ticks)
	if n == 0 {
		t.Fatal("scheduler never ticked")
	}
	after := n
	time.Sleep(100 * time.Millisecond)
	if got := atomic.LoadInt64(&ticks); got != after {
		t.Errorf("scheduler ticked %d more times after stop", got-after)
	}
}

func TestSchedulerNeverOverlapsCallbacks(t *testing.T) {
	s := NewScheduler(1000) // tick interval far shorter than the callback
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var inFlight int32
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx, func(float64) {
			if atomic.AddInt32(&inFlight, 1) != 1 {
				t.Error("callback invoked concurrently with itself")
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&inFlight, -1)
		})
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()
	<-done
}

func TestSchedulerDefaultsBadFPS(t *testing.T) {
	s := NewScheduler(0)
	if s.interval != time.Second/60 {
		t.Fatalf("interval = %v; want %v", s.interval, time.Second/60)
	}
	s = NewScheduler(-5)
	if s.interval != time.Second/60 {
		t.Fatalf("interval = %v; want %v", s.interval, time.Second/60)
	}
}
