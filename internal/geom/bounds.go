package geom

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// AABB is an axis-aligned box.
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// BoxFromCenter builds a box from its centre and full size.
func BoxFromCenter(center, size mgl32.Vec3) AABB {
	half := size.Mul(0.5)
	return AABB{Min: center.Sub(half), Max: center.Add(half)}
}

func (b AABB) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

func (b AABB) Extents() mgl32.Vec3 {
	return b.Max.Sub(b.Min).Mul(0.5)
}

func (b AABB) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

var cornerSigns = [8]mgl32.Vec3{
	{1, 1, 1},
	{-1, 1, 1},
	{-1, -1, 1},
	{-1, -1, -1},
	{-1, 1, -1},
	{1, -1, -1},
	{1, 1, -1},
	{1, -1, 1},
}

func (b AABB) Corners() [8]mgl32.Vec3 {
	c, e := b.Center(), b.Extents()
	var out [8]mgl32.Vec3
	for i, s := range cornerSigns {
		out[i] = c.Add(mgl32.Vec3{e[0] * s[0], e[1] * s[1], e[2] * s[2]})
	}
	return out
}

// Transform returns the world-space box enclosing b after m.
func (b AABB) Transform(m mgl32.Mat4) AABB {
	out := AABB{
		Min: mgl32.Vec3{math32.MaxFloat32, math32.MaxFloat32, math32.MaxFloat32},
		Max: mgl32.Vec3{-math32.MaxFloat32, -math32.MaxFloat32, -math32.MaxFloat32},
	}
	for _, c := range b.Corners() {
		out = out.Encapsulate(mgl32.TransformCoordinate(c, m))
	}
	return out
}

func (b AABB) Encapsulate(p mgl32.Vec3) AABB {
	for i := 0; i < 3; i++ {
		b.Min[i] = math32.Min(b.Min[i], p[i])
		b.Max[i] = math32.Max(b.Max[i], p[i])
	}
	return b
}

func (b AABB) Contains(p mgl32.Vec3) bool {
	return p[0] >= b.Min[0] && p[0] <= b.Max[0] &&
		p[1] >= b.Min[1] && p[1] <= b.Max[1] &&
		p[2] >= b.Min[2] && p[2] <= b.Max[2]
}

func (b AABB) Intersects(o AABB) bool {
	return b.Min[0] <= o.Max[0] && b.Max[0] >= o.Min[0] &&
		b.Min[1] <= o.Max[1] && b.Max[1] >= o.Min[1] &&
		b.Min[2] <= o.Max[2] && b.Max[2] >= o.Min[2]
}

// Box is a local-space box placed in the world by an object transform,
// the shape a mesh's bounds take before projection.
type Box struct {
	Local     AABB
	Transform mgl32.Mat4
}

func (b Box) World() AABB {
	return b.Local.Transform(b.Transform)
}
