package haloengine

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

// ListenForInput connects to a remote input bridge and feeds pointer and
// scroll samples into the engine's sampler. The bridge is how an embedding
// page drives the scene: it forwards its pointer-move and scroll events as
// JSON. Reconnects with exponential backoff until ctx is cancelled.
//
// Sampler writes are fire-and-forget; this loop never touches the frame
// path directly.
func (e *Engine) ListenForInput(ctx context.Context, url string) {
	if e.disabled {
		return
	}
	backoff := 1 * time.Second
	for {
		if ctx.Err() != nil {
			return
		}
		log.Printf("Connecting to input bridge: %s", url)
		c, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
		if err != nil {
			log.Printf("Dial error: %v. Retrying in %v...", err, backoff)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return
			}
			backoff *= 2
			if backoff > 30*time.Second {
				backoff = 30 * time.Second
			}
			continue
		}
		backoff = 1 * time.Second

		// Unblock ReadMessage on cancellation.
		done := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				c.Close()
			case <-done:
			}
		}()

		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				if ctx.Err() != nil {
					close(done)
					c.Close()
					return
				}
				log.Printf("Read error: %v. Reconnecting...", err)
				break
			}
			var msg struct {
				Type    string `json:"type"`
				Pointer struct {
					X, Y float64
					Rect struct {
						X, Y, W, H float64
					} `json:"rect"`
				} `json:"pointer"`
				Scroll struct {
					ViewportHeight float64 `json:"viewportHeight"`
					SectionTop     float64 `json:"sectionTop"`
					SectionHeight  float64 `json:"sectionHeight"`
					FadeFraction   float64 `json:"fadeFraction"`
				} `json:"scroll"`
			}
			if json.Unmarshal(message, &msg) != nil {
				continue
			}
			switch msg.Type {
			case "pointer":
				p := msg.Pointer
				e.sampler.SamplePointer(float32(p.X), float32(p.Y), SurfaceRect{
					X: float32(p.Rect.X), Y: float32(p.Rect.Y),
					W: float32(p.Rect.W), H: float32(p.Rect.H),
				})
			case "scroll":
				s := msg.Scroll
				fade := s.FadeFraction
				if fade == 0 {
					fade = float64(e.cfg.FadeFraction)
				}
				e.sampler.SampleScroll(float32(s.ViewportHeight), float32(s.SectionTop), float32(s.SectionHeight), float32(fade))
			}
		}
		close(done)
		c.Close()
		time.Sleep(time.Second)
	}
}
