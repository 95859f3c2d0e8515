package haloengine

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Viewport keeps the scene's backing surface and the camera projection in
// sync with the container's layout size. Resize is idempotent: repeated
// calls with an unchanged size reuse the existing surface and leave the
// aspect ratio untouched.
type Viewport struct {
	width, height int
	aspect        float32

	fovY, near, far float32

	surface *ebiten.Image
}

func NewViewport(fovYRad, near, far float32) *Viewport {
	return &Viewport{fovY: fovYRad, near: near, far: far, aspect: 1}
}

// Resize adopts a new layout size, reallocating the backing surface and
// updating the camera aspect. Non-positive sizes are ignored.
func (v *Viewport) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if width == v.width && height == v.height {
		return
	}
	v.width, v.height = width, height
	v.aspect = float32(width) / float32(height)
	if v.surface != nil {
		v.surface.Deallocate()
	}
	v.surface = ebiten.NewImage(width, height)
}

func (v *Viewport) Size() (int, int) { return v.width, v.height }

func (v *Viewport) Aspect() float32 { return v.aspect }

// Surface returns the backing buffer the scene renders into, or nil before
// the first Resize.
func (v *Viewport) Surface() *ebiten.Image { return v.surface }

// Projection returns the camera projection for the current aspect.
func (v *Viewport) Projection() Mat4 {
	return Mat4Perspective(v.fovY, v.aspect, v.near, v.far)
}
