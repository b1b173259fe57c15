package portal

import (
	"testing"

	"portalview/internal/geom"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ndcDepth(proj mgl32.Mat4, camera geom.Pose, world mgl32.Vec3) float32 {
	clip := proj.Mul4(geom.ViewMatrix(camera)).Mul4x1(world.Vec4(1))
	return clip.Z() / clip.W()
}

func TestObliqueNearPlaneMatchesPortal(t *testing.T) {
	lens := geom.Projection{FovY: 70, Aspect: 16.0 / 9, Near: 0.1, Far: 100}
	proj := lens.Matrix()
	camera := geom.PoseAt(mgl32.Vec3{1, 0.5, -6}, 5, -10, 0)
	plane := geom.PoseAt(mgl32.Vec3{0, 0, 0}, 0, 20, 0)

	m, ok := ObliqueProjection(plane.Position, plane.Forward(), camera, proj, 0, 0.2)
	require.True(t, ok)

	for _, local := range []mgl32.Vec3{{0, 0, 0}, {0.5, 0.3, 0}, {-0.7, -0.2, 0}} {
		world := plane.TransformPoint(local)
		assert.InDelta(t, -1, ndcDepth(m, camera, world), 1e-3, "point %v on the plane", local)
	}

	beyond := plane.TransformPoint(mgl32.Vec3{0, 0, 3})
	z := ndcDepth(m, camera, beyond)
	assert.Greater(t, z, float32(-1))
	assert.Less(t, z, float32(1))

	between := plane.TransformPoint(mgl32.Vec3{0, 0, -2})
	assert.Less(t, ndcDepth(m, camera, between), float32(-1), "clipped in front of the plane")
}

func TestObliqueOrientsNormalAwayFromCamera(t *testing.T) {
	proj := geom.Projection{FovY: 60, Aspect: 1, Near: 0.1, Far: 50}.Matrix()
	camera := geom.NewPose(mgl32.Vec3{0, 0, -4}, mgl32.QuatIdent())

	// The plane faces the camera; the result must be the same as for the
	// flipped normal.
	m1, ok1 := ObliqueProjection(mgl32.Vec3{}, mgl32.Vec3{0, 0, -1}, camera, proj, 0, 0.2)
	m2, ok2 := ObliqueProjection(mgl32.Vec3{}, mgl32.Vec3{0, 0, 1}, camera, proj, 0, 0.2)
	require.True(t, ok1)
	require.True(t, ok2)
	assert.True(t, geom.Mat4ApproxEqual(m1, m2, 1e-4))
}

func TestObliqueSkippedNearPlane(t *testing.T) {
	proj := geom.Projection{FovY: 60, Aspect: 1, Near: 0.1, Far: 50}.Matrix()
	camera := geom.NewPose(mgl32.Vec3{0, 0, -0.1}, mgl32.QuatIdent())

	m, ok := ObliqueProjection(mgl32.Vec3{}, geom.Forward, camera, proj, 0.05, 0.2)
	assert.False(t, ok)
	assert.Equal(t, proj, m)
}

func TestObliqueRejectsNonFinite(t *testing.T) {
	proj := geom.Projection{FovY: 60, Aspect: 1, Near: 0.1, Far: 50}.Matrix()
	nan := float32(0)
	nan /= nan

	m, ok := ObliqueProjection(mgl32.Vec3{nan, 0, 0}, geom.Forward, geom.Identity(), proj, 0, 0.2)
	assert.False(t, ok)
	assert.Equal(t, proj, m)

	m, ok = ObliqueProjection(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{}, geom.Identity(), proj, 0, 0.2)
	assert.False(t, ok, "zero normal")
	assert.Equal(t, proj, m)

	bad := proj
	bad[0] = nan
	m, ok = ObliqueProjection(mgl32.Vec3{0, 0, 5}, geom.Forward, geom.Identity(), bad, 0, 0.2)
	assert.False(t, ok)
	assert.Equal(t, bad[1:], m[1:])
}
