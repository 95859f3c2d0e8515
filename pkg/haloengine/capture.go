package haloengine

import (
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
)

// captureFrame writes the frame to the capture directory as a sequentially
// numbered PNG. Pixels are copied out synchronously (the ebiten image is
// only valid during Draw); encoding happens on a goroutine.
func (e *Engine) captureFrame(img *ebiten.Image, seq uint64) {
	if err := os.MkdirAll(e.cfg.FrameCaptureDir, 0o755); err != nil {
		log.Printf("Error creating capture directory: %v", err)
		return
	}
	path := filepath.Join(e.cfg.FrameCaptureDir, fmt.Sprintf("halo-%06d.png", seq))

	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	img.ReadPixels(rgba.Pix)

	go func() {
		f, err := os.Create(path)
		if err != nil {
			log.Printf("Error creating capture file: %v", err)
			return
		}
		defer func() {
			if err := f.Close(); err != nil {
				log.Printf("Error closing capture file: %v", err)
			}
		}()
		if err := png.Encode(f, rgba); err != nil {
			log.Printf("Error encoding capture: %v", err)
		}
	}()
}
