package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	_ "github.com/silbinarywolf/preferdiscretegpu"

	"github.com/sudorandom/halo-scene/pkg/haloengine"
	"github.com/sudorandom/halo-scene/pkg/session"
)

var (
	renderWidth   = flag.Int("width", 1280, "Internal rendering width")
	renderHeight  = flag.Int("height", 720, "Internal rendering height")
	windowWidth   = flag.Int("window-width", 1280, "Initial window width")
	windowHeight  = flag.Int("window-height", 720, "Initial window height")
	tpsFlag       = flag.Int("tps", 60, "Ticks per second (engine updates)")
	barCount      = flag.Int("bars", 48, "Number of ring bars")
	ringRadius    = flag.Float64("ring-radius", 5, "Ring radius")
	starCount     = flag.Int("stars", 1000, "Starfield point count")
	sectionHeight = flag.Float64("section-height", 0, "Virtual section height in page pixels (0 = viewport height)")
	fadeFraction  = flag.Float64("fade-fraction", 0.6, "Fraction of section height over which the scene fades")
	hudFlag       = flag.Bool("hud", false, "Show the diagnostic overlay")
	captureDir    = flag.String("capture-dir", "", "Write PNG frames to this directory")
	inputURL      = flag.String("input-url", "", "Websocket input bridge URL (remote pointer/scroll)")
	audioDir      = flag.String("audio-dir", "", "Directory of ambient MP3 tracks")
	recordPath    = flag.String("record", "", "Record the input session to this badger directory")
)

func main() {
	flag.Parse()
	log.SetOutput(os.Stderr)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	cfg := haloengine.DefaultConfig(*renderWidth, *renderHeight)
	cfg.BarCount = *barCount
	cfg.RingRadius = float32(*ringRadius)
	cfg.StarCount = *starCount
	if *sectionHeight > 0 {
		cfg.SectionHeight = float32(*sectionHeight)
	}
	cfg.FadeFraction = float32(*fadeFraction)
	cfg.HUD = *hudFlag
	cfg.FrameCaptureDir = *captureDir

	engine := haloengine.NewEngine(cfg)
	if engine.Disabled() {
		// No render target means no scene; the host page stays functional.
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *recordPath != "" {
		store, err := session.Open(*recordPath)
		if err != nil {
			log.Fatalf("Failed to open session store: %v", err)
		}
		defer store.Close()
		rec := session.NewRecorder(store)
		engine.OnSample = func(elapsedMs float64, s haloengine.InputSample) {
			rec.Observe(elapsedMs, session.Sample{
				PointerX:       s.PointerX,
				PointerY:       s.PointerY,
				ScrollProgress: s.ScrollProgress,
				ElapsedSeconds: s.ElapsedSeconds,
			})
		}
		go rec.Run(ctx)
		defer func() {
			if err := rec.Flush(); err != nil {
				log.Printf("Failed to flush session recorder: %v", err)
			}
		}()
	}

	if *inputURL != "" {
		go engine.ListenForInput(ctx, *inputURL)
	}

	if *audioDir != "" {
		ambient := haloengine.NewAmbientPlayer(*audioDir,
			func() float64 { return float64(engine.State().CanvasOpacity) },
			engine.SetNowPlaying)
		ambient.Start()
		defer ambient.Shutdown()
	}

	ebiten.SetTPS(*tpsFlag)
	ebiten.SetWindowSize(*windowWidth, *windowHeight)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowTitle("Halo Scene")
	if err := ebiten.RunGame(engine); err != nil {
		log.Fatal(err)
	}
}
