package portal

import (
	"portalview/internal/geom"
	"portalview/internal/utils"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// ObliqueProjection returns proj with its near plane replaced by the
// plane through planePos with normal planeFwd, seen from camera. The
// normal is turned to face away from the camera and the plane is pushed
// along it by nearClipOffset.
//
// When the camera is within nearClipLimit of the biased plane, or any
// intermediate value is not finite, or the result is degenerate, proj
// is returned unchanged and ok is false.
func ObliqueProjection(planePos, planeFwd mgl32.Vec3, camera geom.Pose, proj mgl32.Mat4, nearClipOffset, nearClipLimit float32) (m mgl32.Mat4, ok bool) {
	if !geom.FiniteVec3(planePos) || !geom.FiniteVec3(planeFwd) || !camera.IsFinite() || !geom.FiniteMat4(proj) {
		return proj, false
	}

	view := geom.ViewMatrix(camera)
	dot := float32(geom.Sign(planeFwd.Dot(planePos.Sub(camera.Position))))
	if dot == 0 {
		dot = 1
	}

	camPos := mgl32.TransformCoordinate(planePos, view)
	normal := mgl32.TransformNormal(planeFwd, view).Mul(dot)
	if normal.Len() < 0.001 {
		return proj, false
	}
	normal = normal.Normalize()
	dst := -camPos.Dot(normal) + nearClipOffset

	if !geom.Finite(dst) || math32.Abs(dst) <= nearClipLimit {
		return proj, false
	}

	m = obliqueNear(proj, mgl32.Vec4{normal[0], normal[1], normal[2], dst})
	if !geom.FiniteMat4(m) || math32.Abs(m.Det()) <= 0.001 {
		utils.Debug("oblique projection rejected (det %g)", m.Det())
		return proj, false
	}
	return m, true
}

// obliqueNear rewrites the third row of an OpenGL projection so that
// the camera-space plane c becomes the near clip plane.
func obliqueNear(proj mgl32.Mat4, c mgl32.Vec4) mgl32.Mat4 {
	corner := mgl32.Vec4{signOne(c[0]), signOne(c[1]), 1, 1}
	q := proj.Inv().Mul4x1(corner)
	scaled := c.Mul(2 / c.Dot(q))

	m := proj
	m[2] = scaled[0] - m[3]
	m[6] = scaled[1] - m[7]
	m[10] = scaled[2] - m[11]
	m[14] = scaled[3] - m[15]
	return m
}

func signOne(f float32) float32 {
	if f < 0 {
		return -1
	}
	return 1
}
