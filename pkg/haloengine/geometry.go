package haloengine

import (
	"math"
	"math/rand"

	"github.com/chewxy/math32"
)

// Bar is one emissive bar of the ring. Center and Yaw are in the ring's
// local space; the group transform (scale, position, rotation) lives in
// SceneTransformState and is applied at draw time.
type Bar struct {
	Center               Vec3
	Yaw                  float32
	Width, Height, Depth float32
}

// RingEntity is a set of identical bars at equal angular spacing on a
// circle. Rebuilt wholesale on parameter change, never mutated bar-by-bar.
type RingEntity struct {
	Bars   []Bar
	Radius float32
}

// BuildRing constructs count bars on a circle of the given radius. Bar i
// sits at angle i*2pi/count with its width axis pointing radially outward,
// centered at distance radius+barWidth/2 from the origin.
func BuildRing(count int, radius, barWidth, barHeight, barDepth float32) RingEntity {
	ring := RingEntity{Radius: radius}
	if count <= 0 {
		return ring
	}
	ring.Bars = make([]Bar, 0, count)
	dist := radius + barWidth/2
	for i := 0; i < count; i++ {
		angle := float32(i) * 2 * math.Pi / float32(count)
		ring.Bars = append(ring.Bars, Bar{
			Center: V3(math32.Cos(angle)*dist, 0, math32.Sin(angle)*dist),
			Yaw:    angle,
			Width:  barWidth,
			Height: barHeight,
			Depth:  barDepth,
		})
	}
	return ring
}

// Corners returns the bar's eight box corners in ring-local space. The
// width axis is yawed to stay radial; height is vertical, depth tangential.
func (b Bar) Corners() [8]Vec3 {
	c, s := math32.Cos(b.Yaw), math32.Sin(b.Yaw)
	// Local box axes rotated by yaw around Y. A yaw of 0 points the width
	// axis along +X, matching the bar placement angle.
	wx := V3(c, 0, s).Scale(b.Width / 2)
	hy := V3(0, 1, 0).Scale(b.Height / 2)
	dz := V3(-s, 0, c).Scale(b.Depth / 2)

	var out [8]Vec3
	i := 0
	for _, sw := range [2]float32{-1, 1} {
		for _, sh := range [2]float32{-1, 1} {
			for _, sd := range [2]float32{-1, 1} {
				out[i] = b.Center.Add(wx.Scale(sw)).Add(hy.Scale(sh)).Add(dz.Scale(sd))
				i++
			}
		}
	}
	return out
}

// Starfield is a fixed point cloud on a spherical shell. Positions are
// immutable after creation; only the rotation in SceneTransformState
// changes per frame.
type Starfield struct {
	Points []Vec3
}

// BuildStarfield samples count points uniformly over a spherical shell with
// radius in [rMin, rMax). The polar angle comes from acos(2u-1) so points
// are uniform over the sphere rather than clustered at the poles.
func BuildStarfield(count int, rMin, rMax float32) Starfield {
	sf := Starfield{Points: make([]Vec3, 0, count)}
	for i := 0; i < count; i++ {
		r := rMin + rand.Float32()*(rMax-rMin)
		theta := rand.Float32() * 2 * math.Pi
		phi := math32.Acos(2*rand.Float32() - 1)
		sf.Points = append(sf.Points, V3(
			r*math32.Sin(phi)*math32.Cos(theta),
			r*math32.Sin(phi)*math32.Sin(theta),
			r*math32.Cos(phi),
		))
	}
	return sf
}
