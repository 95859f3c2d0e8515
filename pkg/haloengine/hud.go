package haloengine

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var hudAccent = color.RGBA{0, 191, 255, 255}

// drawHUD renders the diagnostic overlay: timing, the composed transform,
// and the ambient track. Drawn over the opacity blit so it stays readable
// while the scene fades out.
func (e *Engine) drawHUD(screen *ebiten.Image) {
	if e.fontSource == nil {
		return
	}
	_, h := e.viewport.Size()
	margin, fontSize := 20.0, 14.0
	lineH := fontSize + 6

	// The last composed sample, not the sampler: replay feeds samples
	// through Advance and never touches the sampler.
	e.stateMu.Lock()
	st := e.state
	sample := e.lastSample
	nowPlaying := e.nowPlaying
	e.stateMu.Unlock()
	lines := []string{
		fmt.Sprintf("fps %5.1f  tps %5.1f  frame %d", ebiten.ActualFPS(), ebiten.ActualTPS(), e.frame),
		fmt.Sprintf("pointer % .2f % .2f  scroll %.2f", sample.PointerX, sample.PointerY, sample.ScrollProgress),
		fmt.Sprintf("camera % .2f % .2f % .2f", st.CameraPos.X, st.CameraPos.Y, st.CameraPos.Z),
		fmt.Sprintf("ring scale %.2f  rotY %.2f  opacity %.2f", st.RingScale, st.RingRotY, st.CanvasOpacity),
	}
	if nowPlaying != "" {
		lines = append(lines, "playing: "+nowPlaying)
	}

	boxW := 340.0
	boxH := float64(len(lines))*lineH + 16
	boxX := margin
	boxY := float64(h) - margin - boxH

	vector.DrawFilledRect(screen, float32(boxX), float32(boxY), float32(boxW), float32(boxH), color.RGBA{0, 0, 0, 100}, false)
	vector.StrokeRect(screen, float32(boxX), float32(boxY), float32(boxW), float32(boxH), 1, color.RGBA{36, 42, 53, 255}, false)
	vector.DrawFilledRect(screen, float32(boxX), float32(boxY), 4, float32(boxH), hudAccent, false)

	face := &text.GoTextFace{Source: e.fontSource, Size: fontSize}
	for i, line := range lines {
		op := &text.DrawOptions{}
		op.GeoM.Translate(boxX+14, boxY+8+float64(i)*lineH)
		op.ColorScale.Scale(1, 1, 1, 0.8)
		text.Draw(screen, line, face, op)
	}
}
