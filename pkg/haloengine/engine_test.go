package haloengine

import (
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

// End-to-end: 800x600 surface, pointer at the exact center, then a full
// scroll cycle.
func TestEngineCenterPointerScenario(t *testing.T) {
	cfg := DefaultConfig(800, 600)
	cfg.LocalInput = false
	e := NewEngine(cfg)
	if e.Disabled() {
		t.Fatal("engine unexpectedly disabled")
	}

	s := e.Sampler()
	s.SamplePointer(400, 300, SurfaceRect{W: 800, H: 600})
	snap := s.Snapshot()
	if snap.PointerX != 0 || snap.PointerY != 0 {
		t.Fatalf("center pointer sample = (%v, %v); want (0, 0)", snap.PointerX, snap.PointerY)
	}

	for i := 0; i < 2000; i++ {
		s.SampleTime(float64(i) * 1000 / 60)
		e.Advance(s.Snapshot())
	}

	st := e.State()
	if math.Abs(float64(st.CameraPos.X)) > 1e-3 {
		t.Errorf("camera X = %v; want 0", st.CameraPos.X)
	}
	if math.Abs(float64(st.CameraPos.Y)-2.0) > 1e-3 {
		t.Errorf("camera Y = %v; want 2.0", st.CameraPos.Y)
	}
	if st.CameraTarget != (Vec3{}) {
		t.Errorf("camera target = %v; want origin", st.CameraTarget)
	}

	// No scroll yet.
	if st.CanvasOpacity != 1 || st.RingScale != 1 {
		t.Errorf("at rest: opacity=%v scale=%v; want 1, 1", st.CanvasOpacity, st.RingScale)
	}

	// Fully scrolled past the threshold.
	s.SampleScroll(600, -600, 600, 0.6)
	e.Advance(s.Snapshot())
	st = e.State()
	if math.Abs(float64(st.CanvasOpacity)-0.1) > 1e-5 {
		t.Errorf("opacity = %v; want 0.1", st.CanvasOpacity)
	}
	if math.Abs(float64(st.RingScale)-3.5) > 1e-5 {
		t.Errorf("ring scale = %v; want 3.5", st.RingScale)
	}
	if math.Abs(float64(st.RingPos.Z)+8) > 1e-5 || math.Abs(float64(st.RingPos.Y)+2.5) > 1e-5 {
		t.Errorf("ring pos = %v; want (0, -2.5, -8)", st.RingPos)
	}
}

func TestEngineMissingTargetIsSilentNoop(t *testing.T) {
	e := NewEngine(Config{})
	if !e.Disabled() {
		t.Fatal("engine with no render target must be disabled")
	}
	if err := e.Update(); err != nil {
		t.Fatalf("disabled Update returned %v", err)
	}
	e.Advance(InputSample{PointerX: 1, ScrollProgress: 1})
	if st := e.State(); st != (SceneTransformState{}) {
		t.Errorf("disabled engine accumulated state: %+v", st)
	}
	if w, h := e.Layout(1280, 720); w != 1 || h != 1 {
		t.Errorf("disabled Layout = %dx%d", w, h)
	}
}

func TestEngineSetRingParamsRebuildsWholesale(t *testing.T) {
	cfg := DefaultConfig(320, 240)
	cfg.LocalInput = false
	e := NewEngine(cfg)

	e.SetRingParams(12, 3, 0.2, 1, 0.1)
	if len(e.ring.Bars) != 12 {
		t.Fatalf("ring has %d bars; want 12", len(e.ring.Bars))
	}
	e.SetRingParams(12, 3, 0.2, 1, 0.1) // idempotent rebuild
	if len(e.ring.Bars) != 12 {
		t.Fatalf("rebuild changed bar count to %d", len(e.ring.Bars))
	}
	for _, bar := range e.ring.Bars {
		if math.Abs(float64(bar.Center.Length())-3.1) > 1e-4 {
			t.Fatalf("stale bar at distance %v after rebuild", bar.Center.Length())
		}
	}
}

// The ambient player polls State() and pushes metadata from its own
// goroutine while the game goroutine composes. Run under the race detector.
func TestEngineStateSafeForConcurrentReaders(t *testing.T) {
	cfg := DefaultConfig(320, 240)
	cfg.LocalInput = false
	e := NewEngine(cfg)

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
				if op := e.State().CanvasOpacity; op < 0 || op > 1 {
					t.Errorf("opacity %v out of range", op)
					return
				}
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-done:
				return
			default:
				e.SetNowPlaying(fmt.Sprintf("track %d", i), "artist")
			}
		}
	}()

	sample := InputSample{PointerX: 0.5, ScrollProgress: 0.3}
	for i := 0; i < 5000; i++ {
		sample.ElapsedSeconds = float32(i) / 60
		e.Advance(sample)
	}
	close(done)
	wg.Wait()
}

func TestEngineExposesLastComposedSample(t *testing.T) {
	cfg := DefaultConfig(320, 240)
	cfg.LocalInput = false
	e := NewEngine(cfg)

	smp := InputSample{PointerX: 0.25, PointerY: -0.5, ScrollProgress: 0.75, ElapsedSeconds: 2}
	e.Advance(smp)
	// The HUD reads this copy; replay never touches the sampler.
	if e.lastSample != smp {
		t.Fatalf("last composed sample = %+v; want %+v", e.lastSample, smp)
	}
	if got := e.sampler.Snapshot(); got != (InputSample{}) {
		t.Fatalf("Advance leaked into the sampler: %+v", got)
	}
}

func TestEngineDrawCounterAdvancesWithoutUpdate(t *testing.T) {
	cfg := DefaultConfig(160, 120)
	cfg.LocalInput = false
	e := NewEngine(cfg)
	screen := ebiten.NewImage(160, 120)

	e.Draw(screen)
	e.Draw(screen)
	if e.draws != 2 {
		t.Fatalf("draw counter = %d after two draws; want 2", e.draws)
	}
	if e.frame != 0 {
		t.Fatalf("update counter moved during draw: %d", e.frame)
	}
}

func TestEngineLayoutDrivesViewport(t *testing.T) {
	cfg := DefaultConfig(800, 600)
	cfg.LocalInput = false
	e := NewEngine(cfg)

	w, h := e.Layout(1024, 768)
	if w != 1024 || h != 768 {
		t.Fatalf("Layout = %dx%d; want 1024x768", w, h)
	}
	if math.Abs(float64(e.viewport.Aspect())-1024.0/768.0) > 1e-5 {
		t.Errorf("aspect = %v", e.viewport.Aspect())
	}
}
