package haloengine

import (
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
)

var (
	backgroundColor = color.RGBA{5, 7, 12, 255}
	barColor        = color.RGBA{120, 210, 255, 255} // emissive cyan
	starColor       = color.RGBA{200, 215, 255, 255}
)

var quadIndices = []uint16{0, 1, 2, 0, 2, 3}

func (e *Engine) initTextures() {
	size := 64
	e.glow = ebiten.NewImage(size, size)
	pixels := make([]byte, size*size*4)
	center, maxDist := float64(size)/2.0, float64(size)/2.0
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx, dy := float64(x)-center, float64(y)-center
			dist := math.Sqrt(dx*dx + dy*dy)
			if dist < maxDist {
				// Soft disc falloff, squared for a tighter core.
				val := math.Cos(dist / maxDist * (math.Pi / 2))
				pixels[(y*size+x)*4+3] = uint8(val * val * 255)
				pixels[(y*size+x)*4+0], pixels[(y*size+x)*4+1], pixels[(y*size+x)*4+2] = 255, 255, 255
			}
		}
	}
	e.glow.WritePixels(pixels)

	whiteImage := ebiten.NewImage(3, 3)
	whiteImage.Fill(color.White)
	e.white = whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
}

// projectVec runs p through the combined matrix and maps NDC to screen
// pixels. Points behind the camera or far outside the frustum are rejected.
func projectVec(m Mat4, p Vec3, w, h int) (sx, sy, invW float32, ok bool) {
	v := Mat4MulVec4(m, Vec4{p.X, p.Y, p.Z, 1})
	if v.W <= 1e-3 {
		return 0, 0, 0, false
	}
	inv := 1 / v.W
	nx, ny := v.X*inv, v.Y*inv
	if nx < -2 || nx > 2 || ny < -2 || ny > 2 {
		return 0, 0, 0, false
	}
	return (nx + 1) / 2 * float32(w), (1 - ny) / 2 * float32(h), inv, true
}

func (e *Engine) drawScene(dst *ebiten.Image) {
	dst.Fill(backgroundColor)
	w, h := e.viewport.Size()
	view := Mat4LookAt(e.state.CameraPos, e.state.CameraTarget, V3(0, 1, 0))
	vp := Mat4Mul(e.viewport.Projection(), view)
	e.drawStarfield(dst, vp, w, h)
	e.drawRing(dst, vp, w, h)
}

func (e *Engine) drawStarfield(dst *ebiten.Image, vp Mat4, w, h int) {
	model := Mat4Mul(Mat4RotateX(e.state.StarRotX), Mat4RotateY(e.state.StarRotY))
	m := Mat4Mul(vp, model)

	half := float64(e.glow.Bounds().Dx()) / 2
	glowSize := float64(e.glow.Bounds().Dx())
	r := float64(starColor.R) / 255.0
	g := float64(starColor.G) / 255.0
	b := float64(starColor.B) / 255.0

	op := &ebiten.DrawImageOptions{}
	op.Blend = ebiten.BlendLighter
	for _, p := range e.stars.Points {
		sx, sy, inv, ok := projectVec(m, p, w, h)
		if !ok {
			continue
		}
		// Apparent size shrinks with clip-space depth.
		sizePx := float64(h) * float64(inv) * 0.12
		scale := sizePx / glowSize
		alpha := 0.7
		op.GeoM.Reset()
		op.GeoM.Translate(-half, -half)
		op.GeoM.Scale(scale, scale)
		op.GeoM.Translate(float64(sx), float64(sy))
		op.ColorScale.Reset()
		op.ColorScale.Scale(float32(r*alpha), float32(g*alpha), float32(b*alpha), float32(alpha))
		dst.DrawImage(e.glow, op)
	}
}

// Box faces by corner index; windings are normalized at draw time against
// the bar center, so only the grouping matters here.
var boxFaces = [6][4]int{
	{4, 5, 7, 6}, // +width (radial out)
	{0, 1, 3, 2}, // -width
	{2, 3, 7, 6}, // +height
	{0, 1, 5, 4}, // -height
	{1, 3, 7, 5}, // +depth
	{0, 2, 6, 4}, // -depth
}

type barDepth struct {
	idx   int
	depth float32
}

func (e *Engine) drawRing(dst *ebiten.Image, vp Mat4, w, h int) {
	st := &e.state
	model := Mat4Mul(
		Mat4Translate(st.RingPos),
		Mat4Mul(Mat4RotateY(st.RingRotY), Mat4Scale(st.RingScale)),
	)

	// Painter's order: far bars first so near ones draw over them.
	order := e.barOrder[:0]
	for i := range e.ring.Bars {
		wc := Mat4MulPoint(model, e.ring.Bars[i].Center)
		order = append(order, barDepth{idx: i, depth: wc.Sub(st.CameraPos).Length()})
	}
	sort.Slice(order, func(i, j int) bool { return order[i].depth > order[j].depth })
	e.barOrder = order

	for _, bd := range order {
		e.drawBar(dst, e.ring.Bars[bd.idx], model, vp, w, h)
	}
}

func (e *Engine) drawBar(dst *ebiten.Image, bar Bar, model, vp Mat4, w, h int) {
	corners := bar.Corners()
	var world [8]Vec3
	var xs, ys [8]float32
	var vis [8]bool
	for i := range corners {
		world[i] = Mat4MulPoint(model, corners[i])
		xs[i], ys[i], _, vis[i] = projectVec(vp, world[i], w, h)
	}
	center := Mat4MulPoint(model, bar.Center)

	for _, f := range boxFaces {
		if !vis[f[0]] || !vis[f[1]] || !vis[f[2]] || !vis[f[3]] {
			continue
		}
		a, b, c, d := world[f[0]], world[f[1]], world[f[2]], world[f[3]]
		n := Cross(b.Sub(a), d.Sub(a))
		fc := a.Add(b).Add(c).Add(d).Scale(0.25)
		if Dot(n, fc.Sub(center)) < 0 {
			n = n.Scale(-1)
		}
		facing := -Dot(n.Normalize(), fc.Sub(e.state.CameraPos).Normalize())
		if facing <= 0 {
			continue
		}
		bright := 0.45 + 0.55*facing
		e.fillQuad(dst,
			[4]float32{xs[f[0]], xs[f[1]], xs[f[2]], xs[f[3]]},
			[4]float32{ys[f[0]], ys[f[1]], ys[f[2]], ys[f[3]]},
			bright)
	}
}

func (e *Engine) fillQuad(dst *ebiten.Image, xs, ys [4]float32, bright float32) {
	cr := float32(barColor.R) / 255 * bright
	cg := float32(barColor.G) / 255 * bright
	cb := float32(barColor.B) / 255 * bright

	e.vtx = e.vtx[:0]
	for i := 0; i < 4; i++ {
		e.vtx = append(e.vtx, ebiten.Vertex{
			DstX: xs[i], DstY: ys[i],
			SrcX: 1, SrcY: 1,
			ColorR: cr, ColorG: cg, ColorB: cb, ColorA: 1,
		})
	}
	opts := &ebiten.DrawTrianglesOptions{Blend: ebiten.BlendLighter}
	dst.DrawTriangles(e.vtx, quadIndices, e.white, opts)
}
