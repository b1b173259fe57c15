package portal

import (
	"image/color"

	"portalview/internal/geom"

	"github.com/go-gl/mathgl/mgl32"
)

// Viewer is the player camera portals are rendered for.
type Viewer interface {
	Pose() geom.Pose
	Projection() geom.Projection
}

// RenderTarget is an off-screen colour buffer sized to the output.
type RenderTarget interface {
	Size() (width, height int)
	Release()
}

// Screen is the visible surface of a portal.
//
// Bounds returns the mesh bounds in screen-local space with unit depth
// along Z; the portal scales that depth to the current screen thickness
// and hands the resulting local-to-world matrix to SetTransform.
type Screen interface {
	Bounds() geom.AABB
	SetTransform(m mgl32.Mat4)
	// SetShadowsOnly excludes the screen from colour passes while set.
	SetShadowsOnly(on bool)
	// SetDisplayMask switches between showing the bound texture and
	// drawing nothing through the screen.
	SetDisplayMask(on bool)
	SetTexture(target RenderTarget)
}

// View is one virtual camera pass.
type View struct {
	Portal *Portal
	// Level 0 is the pass seen directly through the portal.
	Level int
	Pose  geom.Pose
	Lens  geom.Projection
	// Projection is Lens.Matrix() or its oblique replacement.
	Projection mgl32.Mat4
	Oblique    bool
}

// Renderer issues passes for the pipeline. Screen visibility flags and
// slice parameters are already set when RenderView is called.
type Renderer interface {
	OutputSize() (width, height int)
	NewTarget(width, height int) RenderTarget
	RenderView(target RenderTarget, view View) error
	Clear(target RenderTarget, c color.RGBA)
}
