package geom

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Projection describes a camera lens. FovY is the vertical field of view
// in degrees; OrthoSize is the half-height of an orthographic view.
type Projection struct {
	FovY         float32
	Aspect       float32
	Near         float32
	Far          float32
	Orthographic bool
	OrthoSize    float32
}

func (p Projection) Matrix() mgl32.Mat4 {
	if p.Orthographic {
		h := p.OrthoSize
		w := h * p.Aspect
		return mgl32.Ortho(-w, w, -h, h, p.Near, p.Far)
	}
	return mgl32.Perspective(mgl32.DegToRad(p.FovY), p.Aspect, p.Near, p.Far)
}

// NearPlaneHalfSize returns the half extents of the near clip rectangle.
func (p Projection) NearPlaneHalfSize() (halfWidth, halfHeight float32) {
	if p.Orthographic {
		return p.OrthoSize * p.Aspect, p.OrthoSize
	}
	halfHeight = p.Near * math32.Tan(mgl32.DegToRad(p.FovY)*0.5)
	return halfHeight * p.Aspect, halfHeight
}

// NearCornerDistance is the distance from the eye to a corner of the
// near clip rectangle.
func (p Projection) NearCornerDistance() float32 {
	hw, hh := p.NearPlaneHalfSize()
	return mgl32.Vec3{hw, hh, p.Near}.Len()
}

// ViewMatrix maps world space into OpenGL view space for a camera pose.
// The half turn about Y points the camera's +Z forward down view -Z
// while keeping the basis right-handed.
func ViewMatrix(camera Pose) mgl32.Mat4 {
	return mgl32.Scale3D(-1, 1, -1).Mul4(camera.WorldToLocal())
}

// Viewer is a camera pose together with the projection it renders with.
type Viewer struct {
	Pose Pose
	Proj mgl32.Mat4
}

func NewViewer(pose Pose, proj Projection) Viewer {
	return Viewer{Pose: pose, Proj: proj.Matrix()}
}

func (v Viewer) View() mgl32.Mat4 {
	return ViewMatrix(v.Pose)
}

func (v Viewer) ViewProj() mgl32.Mat4 {
	return v.Proj.Mul4(v.View())
}

func (v Viewer) Frustum() Frustum {
	return FrustumFromMatrix(v.ViewProj())
}

// WorldToViewport projects p into viewport space: x and y in [0,1] across
// the visible image, z the depth in front of the viewer in world units.
// Points behind the viewer have z <= 0 and mirrored x and y.
func (v Viewer) WorldToViewport(p mgl32.Vec3) mgl32.Vec3 {
	view := v.View().Mul4x1(p.Vec4(1))
	clip := v.Proj.Mul4x1(view)
	depth := -view.Z()
	if clip.W() == 0 {
		return mgl32.Vec3{0.5, 0.5, depth}
	}
	return mgl32.Vec3{
		(clip.X()/clip.W() + 1) * 0.5,
		(clip.Y()/clip.W() + 1) * 0.5,
		depth,
	}
}
