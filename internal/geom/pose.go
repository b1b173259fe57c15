// Package geom holds the float32 geometry shared by the portal core and
// the renderer: rigid poses, boxes, projections, frustum planes and
// viewport-space bounds.
//
// Conventions: right-handed world, every pose's forward axis is local +Z
// and up is +Y. A camera pose looks along its forward axis; ViewMatrix
// turns that into OpenGL view space (viewer looks down -Z) and
// projections map into OpenGL clip space.
package geom

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	Forward = mgl32.Vec3{0, 0, 1}
	Up      = mgl32.Vec3{0, 1, 0}
	Right   = mgl32.Vec3{1, 0, 0}
)

// Pose is a rigid transform: rotate, then translate.
type Pose struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
}

func Identity() Pose {
	return Pose{Rotation: mgl32.QuatIdent()}
}

func NewPose(position mgl32.Vec3, rotation mgl32.Quat) Pose {
	return Pose{Position: position, Rotation: rotation.Normalize()}
}

// PoseAt builds a pose from a position and Euler angles in degrees,
// applied yaw (Y), then pitch (X), then roll (Z).
func PoseAt(position mgl32.Vec3, pitch, yaw, roll float32) Pose {
	rot := mgl32.QuatRotate(mgl32.DegToRad(yaw), Up).
		Mul(mgl32.QuatRotate(mgl32.DegToRad(pitch), Right)).
		Mul(mgl32.QuatRotate(mgl32.DegToRad(roll), Forward))
	return NewPose(position, rot)
}

func (p Pose) rotation() mgl32.Quat {
	return p.Rotation.Normalize()
}

func (p Pose) LocalToWorld() mgl32.Mat4 {
	t := mgl32.Translate3D(p.Position.X(), p.Position.Y(), p.Position.Z())
	return t.Mul4(p.rotation().Mat4())
}

func (p Pose) WorldToLocal() mgl32.Mat4 {
	inv := p.rotation().Conjugate()
	t := inv.Rotate(p.Position).Mul(-1)
	return mgl32.Translate3D(t.X(), t.Y(), t.Z()).Mul4(inv.Mat4())
}

func (p Pose) Forward() mgl32.Vec3 {
	return p.rotation().Rotate(Forward)
}

func (p Pose) Up() mgl32.Vec3 {
	return p.rotation().Rotate(Up)
}

// Right is the local +X axis. With forward on +Z and up on +Y this is
// the viewer's left; use ScreenRight for the direction that moves right
// on screen.
func (p Pose) Right() mgl32.Vec3 {
	return p.rotation().Rotate(Right)
}

// ScreenRight is the local -X axis, the viewer's right hand.
func (p Pose) ScreenRight() mgl32.Vec3 {
	return p.rotation().Rotate(Right.Mul(-1))
}

func (p Pose) TransformPoint(v mgl32.Vec3) mgl32.Vec3 {
	return p.rotation().Rotate(v).Add(p.Position)
}

func (p Pose) InverseTransformPoint(v mgl32.Vec3) mgl32.Vec3 {
	return p.rotation().Conjugate().Rotate(v.Sub(p.Position))
}

func (p Pose) TransformDirection(v mgl32.Vec3) mgl32.Vec3 {
	return p.rotation().Rotate(v)
}

func (p Pose) InverseTransformDirection(v mgl32.Vec3) mgl32.Vec3 {
	return p.rotation().Conjugate().Rotate(v)
}

// Mul returns p applied after q, i.e. q expressed in p's parent space.
func (p Pose) Mul(q Pose) Pose {
	return Pose{
		Position: p.TransformPoint(q.Position),
		Rotation: p.rotation().Mul(q.rotation()).Normalize(),
	}
}

func (p Pose) Inverse() Pose {
	inv := p.rotation().Conjugate()
	return Pose{Position: inv.Rotate(p.Position).Mul(-1), Rotation: inv}
}

func (p Pose) IsFinite() bool {
	return FiniteVec3(p.Position) &&
		Finite(p.Rotation.W) && FiniteVec3(p.Rotation.V)
}

// ApproxEqual compares positions and unit quaternions per component
// within eps. q and -q are the same orientation.
func (p Pose) ApproxEqual(q Pose, eps float32) bool {
	if !Vec3ApproxEqual(p.Position, q.Position, eps) {
		return false
	}
	a, b := p.rotation(), q.rotation()
	if a.Dot(b) < 0 {
		b = b.Scale(-1)
	}
	return math32.Abs(a.W-b.W) <= eps && Vec3ApproxEqual(a.V, b.V, eps)
}

// Vec3ApproxEqual is an absolute per-component comparison. mgl32's
// thresholds are relative and never match a tiny value against zero.
func Vec3ApproxEqual(a, b mgl32.Vec3, eps float32) bool {
	for i := range a {
		if math32.Abs(a[i]-b[i]) > eps {
			return false
		}
	}
	return true
}

func Mat4ApproxEqual(a, b mgl32.Mat4, eps float32) bool {
	for i := range a {
		if math32.Abs(a[i]-b[i]) > eps {
			return false
		}
	}
	return true
}

// PoseFromMatrix extracts translation and rotation from an affine matrix.
// Scale and shear are discarded by normalising the basis columns.
func PoseFromMatrix(m mgl32.Mat4) Pose {
	x := m.Col(0).Vec3().Normalize()
	y := m.Col(1).Vec3().Normalize()
	z := m.Col(2).Vec3().Normalize()
	basis := mgl32.Mat4FromCols(x.Vec4(0), y.Vec4(0), z.Vec4(0), mgl32.Vec4{0, 0, 0, 1})
	return Pose{
		Position: m.Col(3).Vec3(),
		Rotation: mgl32.Mat4ToQuat(basis).Normalize(),
	}
}

// LookRotation returns the rotation whose forward axis points along
// forward with up as close to up as possible. A forward parallel to up
// falls back to the world right axis for the horizontal basis.
func LookRotation(forward, up mgl32.Vec3) mgl32.Quat {
	z := forward.Normalize()
	x := up.Cross(z)
	if x.LenSqr() < 1e-12 {
		x = Right
	}
	x = x.Normalize()
	y := z.Cross(x)
	basis := mgl32.Mat4FromCols(x.Vec4(0), y.Vec4(0), z.Vec4(0), mgl32.Vec4{0, 0, 0, 1})
	return mgl32.Mat4ToQuat(basis).Normalize()
}

func Finite(f float32) bool {
	return !math32.IsNaN(f) && !math32.IsInf(f, 0)
}

func FiniteVec3(v mgl32.Vec3) bool {
	return Finite(v[0]) && Finite(v[1]) && Finite(v[2])
}

func FiniteMat4(m mgl32.Mat4) bool {
	for _, f := range m {
		if !Finite(f) {
			return false
		}
	}
	return true
}

// Sign returns -1, 0 or 1.
func Sign(f float32) int {
	switch {
	case f > 0:
		return 1
	case f < 0:
		return -1
	}
	return 0
}
