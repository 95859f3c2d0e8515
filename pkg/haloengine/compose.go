package haloengine

// Transform constants. The scroll-driven values are recomputed from
// progress every frame so a concurrent rotation update can never clobber
// them: scroll state and rotation state are orthogonal fields of the same
// record, composed additively.
const (
	starSpinY = 0.02 // rad per elapsed second
	starSpinX = 0.01

	camSmoothing = 0.04
	camPointerX  = 1.5
	camBaseY     = 2.0
	camPointerY  = 1.0

	ringSpinPerFrame = 0.01 // rad per composed frame, deliberately not time-scaled

	scrollScaleGain   = 2.5
	scrollTranslateZ  = -8.0
	scrollTranslateY  = -2.5
	scrollOpacityGain = 0.9
)

// SceneTransformState is the single mutable transform record the composer
// owns. Exactly one writer per frame; the renderer only reads it. No other
// component writes to rendered-object transforms.
type SceneTransformState struct {
	CameraPos    Vec3
	CameraTarget Vec3

	RingScale float32
	RingPos   Vec3
	RingRotY  float32

	StarRotX, StarRotY float32

	CanvasOpacity float32
}

// NewTransformState returns the initial pose: camera back on +Z looking at
// the origin, ring at rest, fully opaque.
func NewTransformState() SceneTransformState {
	return SceneTransformState{
		CameraPos:     V3(0, camBaseY, 8),
		RingScale:     1,
		CanvasOpacity: 1,
	}
}

// Composer combines sampled inputs into the scene transform, once per
// scheduled frame.
type Composer struct {
	lastElapsed float32
}

func NewComposer() *Composer {
	return &Composer{}
}

// Compose advances state from the latest input sample.
//
// Starfield rotation is driven by real elapsed seconds so spin speed stays
// constant under frame-rate variance. Ring rotation advances a fixed step
// per composed frame; the asymmetry is inherited visual behavior and is
// kept on purpose.
func (c *Composer) Compose(state *SceneTransformState, sample InputSample) {
	dt := sample.ElapsedSeconds - c.lastElapsed
	if dt < 0 {
		dt = 0
	}
	c.lastElapsed = sample.ElapsedSeconds

	state.StarRotY += dt * starSpinY
	state.StarRotX += dt * starSpinX

	targetX := sample.PointerX * camPointerX
	targetY := camBaseY + sample.PointerY*camPointerY
	state.CameraPos.X += (targetX - state.CameraPos.X) * camSmoothing
	state.CameraPos.Y += (targetY - state.CameraPos.Y) * camSmoothing
	state.CameraTarget = Vec3{} // re-aim at the scene origin after moving

	state.RingRotY += ringSpinPerFrame

	p := clamp32(sample.ScrollProgress, 0, 1)
	state.RingScale = 1 + p*scrollScaleGain
	state.RingPos = V3(0, p*scrollTranslateY, p*scrollTranslateZ)
	state.CanvasOpacity = 1 - p*scrollOpacityGain
}
