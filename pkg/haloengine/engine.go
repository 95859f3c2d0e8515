package haloengine

import (
	"bytes"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/goregular"
)

// Config holds the scene parameters. The section/fade values describe the
// virtual page the scroll signal is derived from when local input is used;
// a remote bridge feeds the same contract values directly.
type Config struct {
	Width, Height int

	BarCount   int
	RingRadius float32
	BarWidth   float32
	BarHeight  float32
	BarDepth   float32

	StarCount     int
	StarMinRadius float32
	StarMaxRadius float32

	SectionOffset float32
	SectionHeight float32
	FadeFraction  float32

	FOVDegrees float32

	// LocalInput polls the mouse cursor and wheel every tick. Disabled for
	// replay, where samples arrive through Advance.
	LocalInput bool

	HUD             bool
	FrameCaptureDir string
}

// DefaultConfig returns the standard scene for the given surface size.
func DefaultConfig(width, height int) Config {
	return Config{
		Width:         width,
		Height:        height,
		BarCount:      48,
		RingRadius:    5,
		BarWidth:      0.3,
		BarHeight:     1.6,
		BarDepth:      0.12,
		StarCount:     1000,
		StarMinRadius: 15,
		StarMaxRadius: 35,
		SectionOffset: float32(height),
		SectionHeight: float32(height),
		FadeFraction:  0.6,
		FOVDegrees:    60,
		LocalInput:    true,
	}
}

const wheelStep = 40.0 // virtual page pixels per wheel notch

// Engine owns the scene and composes one transform state per frame. It
// implements ebiten.Game: Update samples inputs and composes, Draw renders
// the composed state, Layout feeds layout changes to the viewport adapter.
type Engine struct {
	cfg      Config
	disabled bool

	sampler  *Sampler
	composer *Composer

	// stateMu guards state, lastSample and nowPlaying. The game goroutine
	// writes them; the ambient player's goroutine reads state through the
	// volume callback and writes nowPlaying through the metadata callback.
	stateMu    sync.Mutex
	state      SceneTransformState
	lastSample InputSample

	ring     RingEntity
	stars    Starfield
	viewport *Viewport

	glow       *ebiten.Image
	white      *ebiten.Image
	fontSource *text.GoTextFaceSource

	// draw scratch, reused across frames
	vtx      []ebiten.Vertex
	barOrder []barDepth

	start     time.Time
	frame     uint64
	draws     uint64
	scrollTop float32

	// OnSample, if set, observes every composed input sample. Used by the
	// session recorder.
	OnSample func(elapsedMs float64, sample InputSample)

	nowPlaying string
}

// NewEngine builds the scene from cfg. A non-positive surface size means
// the render target is absent: the returned engine silently does nothing,
// creating no partial state, per the missing-collaborator contract.
func NewEngine(cfg Config) *Engine {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return &Engine{disabled: true}
	}
	s, _ := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	e := &Engine{
		cfg:        cfg,
		sampler:    NewSampler(),
		composer:   NewComposer(),
		state:      NewTransformState(),
		ring:       BuildRing(cfg.BarCount, cfg.RingRadius, cfg.BarWidth, cfg.BarHeight, cfg.BarDepth),
		stars:      BuildStarfield(cfg.StarCount, cfg.StarMinRadius, cfg.StarMaxRadius),
		viewport:   NewViewport(cfg.FOVDegrees*math.Pi/180, 0.1, 100),
		fontSource: s,
		start:      time.Now(),
	}
	e.viewport.Resize(cfg.Width, cfg.Height)
	e.initTextures()
	return e
}

// Disabled reports whether the engine was constructed without a render
// target and is running as a no-op.
func (e *Engine) Disabled() bool { return e.disabled }

// Sampler exposes the input sampler for external feeders (remote bridge).
func (e *Engine) Sampler() *Sampler { return e.sampler }

// State returns a copy of the current transform state. Safe to call from
// any goroutine; the ambient player polls it for the opacity-linked volume.
func (e *Engine) State() SceneTransformState {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	return e.state
}

// SetRingParams rebuilds the ring wholesale with new parameters. Old bars
// are discarded; the group transform in the state is untouched.
func (e *Engine) SetRingParams(count int, radius, barWidth, barHeight, barDepth float32) {
	e.ring = BuildRing(count, radius, barWidth, barHeight, barDepth)
}

// SetNowPlaying updates the HUD's track line. Called from the ambient
// player's metadata callback, so it runs off the game goroutine.
func (e *Engine) SetNowPlaying(song, artist string) {
	line := song
	if artist != "" {
		line = fmt.Sprintf("%s - %s", artist, song)
	}
	e.stateMu.Lock()
	e.nowPlaying = line
	e.stateMu.Unlock()
}

// Update runs once per tick: it samples local input if enabled, stamps the
// frame clock, and composes the transform from the latest sample snapshot.
func (e *Engine) Update() error {
	if e.disabled {
		return nil
	}
	if e.cfg.LocalInput {
		w, h := e.viewport.Size()
		cx, cy := ebiten.CursorPosition()
		e.sampler.SamplePointer(float32(cx), float32(cy), SurfaceRect{W: float32(w), H: float32(h)})

		_, wy := ebiten.Wheel()
		if wy != 0 {
			e.scrollTop = clamp32(e.scrollTop-float32(wy)*wheelStep, 0, e.cfg.SectionOffset+e.cfg.SectionHeight)
		}
		sectionTop := e.cfg.SectionOffset - e.scrollTop
		e.sampler.SampleScroll(float32(h), sectionTop, e.cfg.SectionHeight, e.cfg.FadeFraction)
	}
	elapsedMs := float64(time.Since(e.start)) / float64(time.Millisecond)
	e.sampler.SampleTime(elapsedMs)

	sample := e.sampler.Snapshot()
	e.stateMu.Lock()
	e.composer.Compose(&e.state, sample)
	e.lastSample = sample
	e.stateMu.Unlock()
	e.frame++

	if e.OnSample != nil {
		e.OnSample(elapsedMs, sample)
	}
	return nil
}

// Advance composes one frame from an explicit sample, bypassing local
// input and the wall clock. Replay drives the engine through this.
func (e *Engine) Advance(sample InputSample) {
	if e.disabled {
		return
	}
	e.stateMu.Lock()
	e.composer.Compose(&e.state, sample)
	e.lastSample = sample
	e.stateMu.Unlock()
	e.frame++
}

// Draw renders the composed state. The scene is rasterized into the
// viewport's backing surface and blitted with the state's canvas opacity,
// the only style mutation the engine performs on its output.
func (e *Engine) Draw(screen *ebiten.Image) {
	if e.disabled {
		return
	}
	surface := e.viewport.Surface()
	if surface == nil {
		return
	}
	// Draw and Update cadences are not 1:1; capture numbering follows the
	// draw count so no frame file is ever overwritten or skipped.
	e.draws++
	e.drawScene(surface)

	op := &ebiten.DrawImageOptions{}
	op.ColorScale.ScaleAlpha(e.state.CanvasOpacity)
	screen.DrawImage(surface, op)

	if e.cfg.HUD {
		e.drawHUD(screen)
	}
	if e.cfg.FrameCaptureDir != "" {
		e.captureFrame(screen, e.draws)
	}
}

// Layout is the layout-change event: the viewport adapter adopts the new
// size and the backing buffer follows it.
func (e *Engine) Layout(outsideWidth, outsideHeight int) (int, int) {
	if e.disabled {
		return 1, 1
	}
	e.viewport.Resize(outsideWidth, outsideHeight)
	return e.viewport.Size()
}
