package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/sudorandom/halo-scene/pkg/haloengine"
	"github.com/sudorandom/halo-scene/pkg/session"
)

type timedSample struct {
	ms     uint64
	sample session.Sample
}

type PlayCmd struct {
	Path       string `arg:"" help:"Session store directory."`
	Width      int    `default:"1280" help:"Rendering width."`
	Height     int    `default:"720" help:"Rendering height."`
	TPS        int    `default:"60" help:"Replay ticks per second."`
	CaptureDir string `help:"Write PNG frames to this directory."`
	HUD        bool   `help:"Show the diagnostic overlay."`
	Headless   bool   `help:"Replay without a window, paced by the frame scheduler."`
}

func (c *PlayCmd) Run() error {
	store, err := session.Open(c.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	var records []timedSample
	if err := store.ForEach(func(ms uint64, smp session.Sample) error {
		records = append(records, timedSample{ms: ms, sample: smp})
		return nil
	}); err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("session %s holds no samples", c.Path)
	}
	log.Printf("Replaying %d samples over %v", len(records),
		time.Duration(records[len(records)-1].ms-records[0].ms)*time.Millisecond)

	cfg := haloengine.DefaultConfig(c.Width, c.Height)
	cfg.LocalInput = false
	cfg.HUD = c.HUD
	cfg.FrameCaptureDir = c.CaptureDir

	game := &replayGame{
		engine:  haloengine.NewEngine(cfg),
		records: records,
		stepMs:  1000 / float64(c.TPS),
		endMs:   float64(records[len(records)-1].ms) + 1000,
	}
	if c.Headless {
		return c.runHeadless(game)
	}
	ebiten.SetTPS(c.TPS)
	ebiten.SetWindowSize(c.Width, c.Height)
	ebiten.SetWindowTitle("Halo Scene Replay")
	return ebiten.RunGame(game)
}

// runHeadless drives the same replay loop through the frame scheduler
// instead of ebiten's display loop: each tick advances one frame and renders
// into an offscreen image, so capture works without a window.
func (c *PlayCmd) runHeadless(game *replayGame) error {
	screen := ebiten.NewImage(c.Width, c.Height)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var runErr error
	haloengine.NewScheduler(c.TPS).Run(ctx, func(float64) {
		if err := game.Update(); err != nil {
			if !errors.Is(err, ebiten.Termination) {
				runErr = err
			}
			cancel()
			return
		}
		game.Draw(screen)
	})
	return runErr
}

// replayGame feeds recorded samples back at their original timestamps,
// driving the engine through Advance so neither local input nor the wall
// clock can perturb the run.
type replayGame struct {
	engine  *haloengine.Engine
	records []timedSample
	next    int

	frameMs float64
	stepMs  float64
	endMs   float64

	current haloengine.InputSample
}

func (g *replayGame) Update() error {
	if g.frameMs > g.endMs {
		return ebiten.Termination
	}
	g.frameMs += g.stepMs
	for g.next < len(g.records) && float64(g.records[g.next].ms) <= g.frameMs {
		smp := g.records[g.next].sample
		g.current.PointerX = smp.PointerX
		g.current.PointerY = smp.PointerY
		g.current.ScrollProgress = smp.ScrollProgress
		g.next++
	}
	// The replay frame clock keeps elapsed time monotonic even if the
	// recording has gaps.
	g.current.ElapsedSeconds = float32(g.frameMs / 1000)
	g.engine.Advance(g.current)
	return nil
}

func (g *replayGame) Draw(screen *ebiten.Image) { g.engine.Draw(screen) }

func (g *replayGame) Layout(w, h int) (int, int) { return g.engine.Layout(w, h) }

type InfoCmd struct {
	Path string `arg:"" help:"Session store directory."`
}

func (c *InfoCmd) Run() error {
	store, err := session.Open(c.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	count, firstMs, lastMs, err := store.Stats()
	if err != nil {
		return err
	}
	if count == 0 {
		fmt.Println("empty session")
		return nil
	}
	dur := time.Duration(lastMs-firstMs) * time.Millisecond
	fmt.Printf("samples:  %d\n", count)
	fmt.Printf("duration: %v\n", dur)
	if sec := dur.Seconds(); sec > 0 {
		fmt.Printf("rate:     %.1f samples/s\n", float64(count)/sec)
	}
	return nil
}

var cli struct {
	Play PlayCmd `cmd:"" help:"Replay a recorded input session through the engine."`
	Info InfoCmd `cmd:"" help:"Summarize a recorded input session."`
}

func main() {
	log.SetOutput(os.Stderr)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	ctx := kong.Parse(&cli,
		kong.Name("halo-replay"),
		kong.Description("Tools for recorded halo-scene input sessions."))
	ctx.FatalIfErrorf(ctx.Run())
}
