package haloengine

import (
	"sync"

	"github.com/chewxy/math32"
)

// InputSample holds the last observed value of each input signal. There is
// no queue: late samples overwrite, never accumulate.
type InputSample struct {
	PointerX, PointerY float32 // normalized to [-1,1]
	ScrollProgress     float32 // [0,1]
	ElapsedSeconds     float32 // monotonic
}

// SurfaceRect is the rendering surface's bounding box in client
// coordinates, used to normalize pointer samples.
type SurfaceRect struct {
	X, Y, W, H float32
}

// Sampler captures the three raw input signals and exposes their latest
// values. Writers are event handlers on arbitrary goroutines; the composer
// takes a snapshot once per frame. All samplers are fire-and-forget: they
// write and return, and never trigger a render themselves.
//
// Out-of-range values are clamped here, at the sampler boundary, so NaN or
// Infinity can never reach the composer.
type Sampler struct {
	mu     sync.Mutex
	sample InputSample
}

func NewSampler() *Sampler {
	return &Sampler{}
}

// SamplePointer normalizes a client-space pointer position into [-1,1]
// relative to the surface rect. Y is flipped so pointer-up is positive.
// Degenerate rects leave the sample unchanged.
func (s *Sampler) SamplePointer(clientX, clientY float32, surface SurfaceRect) {
	if surface.W <= 0 || surface.H <= 0 {
		return
	}
	x := (clientX-surface.X)/surface.W*2 - 1
	y := -((clientY-surface.Y)/surface.H*2 - 1)
	if math32.IsNaN(x) || math32.IsNaN(y) {
		return
	}
	s.mu.Lock()
	s.sample.PointerX = clamp32(x, -1, 1)
	s.sample.PointerY = clamp32(y, -1, 1)
	s.mu.Unlock()
}

// SampleScroll derives scroll progress from the tracked section's position:
// 0 while the section top is still below the viewport bottom by more than
// fadeFraction of its height, 1 once it has scrolled fully past. A zero or
// negative denominator leaves progress unchanged rather than producing NaN.
func (s *Sampler) SampleScroll(viewportHeight, sectionTop, sectionHeight, fadeFraction float32) {
	denom := sectionHeight * fadeFraction
	if denom <= 0 || math32.IsNaN(denom) || math32.IsInf(denom, 0) {
		return
	}
	p := (viewportHeight - sectionTop) / denom
	if math32.IsNaN(p) {
		return
	}
	s.mu.Lock()
	s.sample.ScrollProgress = clamp32(p, 0, 1)
	s.mu.Unlock()
}

// SampleTime records the frame clock in elapsed milliseconds. The clock is
// monotonic: a sample earlier than the current one is dropped.
func (s *Sampler) SampleTime(elapsedMs float64) {
	sec := float32(elapsedMs / 1000)
	if math32.IsNaN(sec) || sec < 0 {
		return
	}
	s.mu.Lock()
	if sec >= s.sample.ElapsedSeconds {
		s.sample.ElapsedSeconds = sec
	}
	s.mu.Unlock()
}

// Snapshot returns a copy of the latest sample. Within a frame the composer
// treats the snapshot as read-only.
func (s *Sampler) Snapshot() InputSample {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sample
}
