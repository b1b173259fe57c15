package geom

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Plane is the set of points p with Normal·p + D = 0. Points with a
// positive distance are on the inside.
type Plane struct {
	Normal mgl32.Vec3
	D      float32
}

func (p Plane) Distance(point mgl32.Vec3) float32 {
	return p.Normal.Dot(point) + p.D
}

func (p Plane) normalize() Plane {
	l := p.Normal.Len()
	if l == 0 {
		return p
	}
	return Plane{Normal: p.Normal.Mul(1 / l), D: p.D / l}
}

const (
	PlaneLeft = iota
	PlaneRight
	PlaneBottom
	PlaneTop
	PlaneNear
	PlaneFar
)

type Frustum [6]Plane

// FrustumFromMatrix extracts the clip planes of a view-projection matrix
// (Gribb/Hartmann).
func FrustumFromMatrix(vp mgl32.Mat4) Frustum {
	r0, r1, r2, r3 := vp.Row(0), vp.Row(1), vp.Row(2), vp.Row(3)
	plane := func(v mgl32.Vec4) Plane {
		return Plane{Normal: v.Vec3(), D: v.W()}.normalize()
	}

	var f Frustum
	f[PlaneLeft] = plane(r3.Add(r0))
	f[PlaneRight] = plane(r3.Sub(r0))
	f[PlaneBottom] = plane(r3.Add(r1))
	f[PlaneTop] = plane(r3.Sub(r1))
	f[PlaneNear] = plane(r3.Add(r2))
	f[PlaneFar] = plane(r3.Sub(r2))
	return f
}

// IntersectsAABB reports whether any part of b may lie inside the
// frustum. The test is conservative: boxes near a frustum corner can pass
// while being outside.
func (f Frustum) IntersectsAABB(b AABB) bool {
	for _, p := range f {
		positive := b.Min
		for i := 0; i < 3; i++ {
			if p.Normal[i] >= 0 {
				positive[i] = b.Max[i]
			}
		}
		if p.Distance(positive) < 0 {
			return false
		}
	}
	return true
}

func (f Frustum) ContainsPoint(point mgl32.Vec3) bool {
	for _, p := range f {
		if p.Distance(point) < 0 {
			return false
		}
	}
	return true
}

// FrustumVisible reports whether a surface's world bounds intersect the
// viewer frustum.
func FrustumVisible(surfaceBounds AABB, viewerFrustum Frustum) bool {
	return viewerFrustum.IntersectsAABB(surfaceBounds)
}
