package geom

import (
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-4

func assertVec3(t *testing.T, want, got mgl32.Vec3, msgAndArgs ...interface{}) {
	t.Helper()
	for i := 0; i < 3; i++ {
		assert.InDelta(t, want[i], got[i], eps, msgAndArgs...)
	}
}

func testProjection() Projection {
	return Projection{FovY: 90, Aspect: 1, Near: 0.1, Far: 100}
}

func testViewer() Viewer {
	return NewViewer(Identity(), testProjection())
}

func TestPoseMatricesAreInverse(t *testing.T) {
	p := PoseAt(mgl32.Vec3{1, 2, 3}, 10, 30, 5)
	m := p.LocalToWorld().Mul4(p.WorldToLocal())
	assert.True(t, Mat4ApproxEqual(m, mgl32.Ident4(), eps), "got %v", m)

	back := PoseFromMatrix(p.LocalToWorld())
	assert.True(t, back.ApproxEqual(p, eps), "got %+v want %+v", back, p)
}

func TestPoseComposition(t *testing.T) {
	a := PoseAt(mgl32.Vec3{4, 0, -2}, 0, 90, 0)
	b := PoseAt(mgl32.Vec3{0, 1, 1}, 20, -45, 0)

	composed := a.Mul(b)
	fromMatrix := PoseFromMatrix(a.LocalToWorld().Mul4(b.LocalToWorld()))
	assert.True(t, composed.ApproxEqual(fromMatrix, eps))

	assert.True(t, a.Mul(a.Inverse()).ApproxEqual(Identity(), eps))

	pt := mgl32.Vec3{0.5, -1, 2}
	assertVec3(t, pt, a.InverseTransformPoint(a.TransformPoint(pt)))
}

func TestPoseApproxEqualNearZero(t *testing.T) {
	tiny := Pose{Position: mgl32.Vec3{1e-7, 0, 0}, Rotation: mgl32.QuatIdent()}
	assert.True(t, tiny.ApproxEqual(Identity(), eps))
	assert.False(t, Pose{Position: mgl32.Vec3{1e-3, 0, 0}, Rotation: mgl32.QuatIdent()}.ApproxEqual(Identity(), eps))

	flipped := Pose{Rotation: mgl32.QuatIdent().Scale(-1)}
	assert.True(t, flipped.ApproxEqual(Identity(), eps))

	turned := PoseAt(mgl32.Vec3{}, 0, 1, 0)
	assert.False(t, turned.ApproxEqual(Identity(), eps))

	assert.True(t, Vec3ApproxEqual(mgl32.Vec3{1.0000001, 0, -1.1920929e-07}, mgl32.Vec3{1, 0, 0}, 1e-5))
	assert.False(t, Mat4ApproxEqual(mgl32.Ident4(), mgl32.Mat4{}, eps))
}

func TestPoseAxes(t *testing.T) {
	p := PoseAt(mgl32.Vec3{}, 0, 90, 0)
	assertVec3(t, mgl32.Vec3{1, 0, 0}, p.Forward())
	assertVec3(t, Up, p.Up())

	rot := LookRotation(mgl32.Vec3{1, 0, 0}, Up)
	assertVec3(t, mgl32.Vec3{1, 0, 0}, rot.Rotate(Forward))
	assertVec3(t, Up, rot.Rotate(Up))

	// Facing +X with +Y up, the viewer's right hand is +Z.
	assertVec3(t, mgl32.Vec3{0, 0, 1}, p.ScreenRight())
	assertVec3(t, p.Right().Mul(-1), p.ScreenRight())
	assertVec3(t, p.ScreenRight(), p.Forward().Cross(p.Up()))

	straightUp := LookRotation(Up, Up)
	assertVec3(t, Up, straightUp.Rotate(Forward))
}

func TestFinite(t *testing.T) {
	assert.True(t, Identity().IsFinite())
	nan := mgl32.Vec3{0, float32NaN(), 0}
	assert.False(t, Pose{Position: nan, Rotation: mgl32.QuatIdent()}.IsFinite())
	assert.False(t, FiniteMat4(mgl32.Mat4{0: float32NaN()}))
	assert.Equal(t, -1, Sign(-0.3))
	assert.Equal(t, 0, Sign(0))
}

func float32NaN() float32 {
	zero := float32(0)
	return zero / zero
}

func TestAABBTransform(t *testing.T) {
	box := BoxFromCenter(mgl32.Vec3{}, mgl32.Vec3{2, 2, 2})
	world := box.Transform(PoseAt(mgl32.Vec3{10, 0, 0}, 0, 45, 0).LocalToWorld())

	r := float32(1.41421356)
	assertVec3(t, mgl32.Vec3{10 - r, -1, -r}, world.Min)
	assertVec3(t, mgl32.Vec3{10 + r, 1, r}, world.Max)
	assert.True(t, world.Contains(mgl32.Vec3{10, 0, 0}))
	assert.False(t, world.Intersects(box))
}

func TestFrustumVisible(t *testing.T) {
	f := testViewer().Frustum()

	cases := []struct {
		name    string
		center  mgl32.Vec3
		visible bool
	}{
		{"ahead", mgl32.Vec3{0, 0, 5}, true},
		{"behind", mgl32.Vec3{0, 0, -5}, false},
		{"far left", mgl32.Vec3{20, 0, 5}, false},
		{"above", mgl32.Vec3{0, 20, 5}, false},
		{"beyond far plane", mgl32.Vec3{0, 0, 200}, false},
		{"straddling near plane", mgl32.Vec3{0, 0, 0}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			box := BoxFromCenter(tc.center, mgl32.Vec3{1, 1, 1})
			assert.Equal(t, tc.visible, FrustumVisible(box, f))
		})
	}
}

func TestWorldToViewport(t *testing.T) {
	v := testViewer()

	centre := v.WorldToViewport(mgl32.Vec3{0, 0, 5})
	assertVec3(t, mgl32.Vec3{0.5, 0.5, 5}, centre)

	// Camera looks down +Z in a right-handed world, so +X is screen left.
	left := v.WorldToViewport(mgl32.Vec3{2.5, 2.5, 5})
	assertVec3(t, mgl32.Vec3{0.25, 0.75, 5}, left)

	behind := v.WorldToViewport(mgl32.Vec3{0, 0, -3})
	assert.InDelta(t, -3, behind.Z(), eps)
}

func TestProjectToViewportBoundsInFront(t *testing.T) {
	box := Box{Local: BoxFromCenter(mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}), Transform: mgl32.Translate3D(0, 0, 5)}
	b := ProjectToViewportBounds(box, testViewer())

	require.False(t, b.IsEmpty())
	assert.InDelta(t, 0.5-0.5/4.5/2, b.XMin, eps)
	assert.InDelta(t, 0.5+0.5/4.5/2, b.XMax, eps)
	assert.InDelta(t, 4.5, b.ZMin, eps)
	assert.InDelta(t, 5.5, b.ZMax, eps)
}

func TestProjectToViewportBoundsBehindIsEmpty(t *testing.T) {
	box := Box{Local: BoxFromCenter(mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}), Transform: mgl32.Translate3D(0, 0, -5)}
	b := ProjectToViewportBounds(box, testViewer())

	assert.True(t, b.IsEmpty())
	assert.Equal(t, Empty, b)
	assert.Equal(t, "ViewportBounds{empty}", b.String())

	front := Box{Local: box.Local, Transform: mgl32.Translate3D(0, 0, 5)}
	assert.False(t, BoundsOverlap(box, front, testViewer()))
	assert.False(t, BoundsOverlap(front, box, testViewer()))
}

func TestProjectToViewportBoundsStraddling(t *testing.T) {
	box := Box{Local: BoxFromCenter(mgl32.Vec3{}, mgl32.Vec3{1, 1, 4}), Transform: mgl32.Ident4()}
	b := ProjectToViewportBounds(box, testViewer())

	require.False(t, b.IsEmpty())
	assert.InDelta(t, 0, b.XMin, eps)
	assert.InDelta(t, 1, b.XMax, eps)
	assert.InDelta(t, 0, b.YMin, eps)
	assert.InDelta(t, 1, b.YMax, eps)
	assert.InDelta(t, -2, b.ZMin, eps)
	assert.InDelta(t, 2, b.ZMax, eps)
}

func screenBox(center mgl32.Vec3) Box {
	return Box{
		Local:     BoxFromCenter(mgl32.Vec3{}, mgl32.Vec3{2, 2, 0.1}),
		Transform: mgl32.Translate3D(center.X(), center.Y(), center.Z()),
	}
}

func TestBoundsOverlap(t *testing.T) {
	v := testViewer()
	near := screenBox(mgl32.Vec3{0, 0, 5})

	assert.True(t, BoundsOverlap(near, screenBox(mgl32.Vec3{0, 0, 10}), v))
	assert.False(t, BoundsOverlap(screenBox(mgl32.Vec3{0, 0, 10}), near, v), "far in front of near")
	assert.False(t, BoundsOverlap(near, screenBox(mgl32.Vec3{0, 0, 5.02}), v), "depth ranges touch")
	assert.False(t, BoundsOverlap(near, screenBox(mgl32.Vec3{20, 0, 10}), v), "disjoint x")
	assert.False(t, BoundsOverlap(near, screenBox(mgl32.Vec3{0, 20, 10}), v), "disjoint y")
}

func TestBoundsOverlapRequiresFarBehindNear(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	v := NewViewer(PoseAt(mgl32.Vec3{0, 1, -2}, 5, 10, 0), testProjection())
	random := func() Box {
		c := mgl32.Vec3{rng.Float32()*8 - 4, rng.Float32()*8 - 4, rng.Float32()*20 - 5}
		s := mgl32.Vec3{rng.Float32()*3 + 0.1, rng.Float32()*3 + 0.1, rng.Float32()*3 + 0.1}
		return Box{Local: BoxFromCenter(mgl32.Vec3{}, s), Transform: mgl32.Translate3D(c.X(), c.Y(), c.Z())}
	}

	for i := 0; i < 2000; i++ {
		near, far := random(), random()
		nb := ProjectToViewportBounds(near, v)
		fb := ProjectToViewportBounds(far, v)
		if nb.IsEmpty() || fb.IsEmpty() || fb.ZMin <= nb.ZMax {
			assert.False(t, BoundsOverlap(near, far, v), "near %v far %v", nb, fb)
		}
	}
}

func TestNearCornerDistance(t *testing.T) {
	p := Projection{FovY: 90, Aspect: 2, Near: 1, Far: 10}
	hw, hh := p.NearPlaneHalfSize()
	assert.InDelta(t, 1, hh, eps)
	assert.InDelta(t, 2, hw, eps)
	assert.InDelta(t, 2.449489, p.NearCornerDistance(), eps)
}
