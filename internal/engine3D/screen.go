package engine3D

import (
	"image/color"

	"portalview/internal/geom"
	"portalview/internal/portal"
	"portalview/internal/utils"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
)

// Screen is the quad-like box a portal shows its linked view on. The
// mesh is width x height with unit depth; the portal scales the depth.
type Screen struct {
	width, height float32
	mesh          rl.Mesh
	transform     mgl32.Mat4
	shadowsOnly   bool
	displayMask   bool
	target        *Target
	inactive      color.RGBA
}

func newScreen(width, height float32, inactive color.RGBA) *Screen {
	return &Screen{
		width:     width,
		height:    height,
		mesh:      rl.GenMeshCube(width, height, 1),
		transform: mgl32.Ident4(),
		inactive:  inactive,
	}
}

func (s *Screen) Bounds() geom.AABB {
	return geom.BoxFromCenter(mgl32.Vec3{}, mgl32.Vec3{s.width, s.height, 1})
}

func (s *Screen) SetTransform(m mgl32.Mat4) { s.transform = m }
func (s *Screen) SetShadowsOnly(on bool)    { s.shadowsOnly = on }
func (s *Screen) SetDisplayMask(on bool)    { s.displayMask = on }

func (s *Screen) SetTexture(target portal.RenderTarget) {
	if target == nil {
		s.target = nil
		return
	}
	t, ok := target.(*Target)
	if !ok {
		utils.Warn("screen: ignoring foreign render target %T", target)
		return
	}
	s.target = t
}

func (s *Screen) draw(sh *screenShader, mat rl.Material, outW, outH int) {
	if s.shadowsOnly {
		return
	}
	mask := float32(0)
	diffuse := mat.GetMap(rl.MapDiffuse)
	if s.displayMask && s.target.valid() {
		mask = 1
		diffuse.Texture = s.target.Texture()
	}
	rl.SetShaderValue(sh.Shader, sh.screenSize, []float32{float32(outW), float32(outH)}, rl.ShaderUniformVec2)
	rl.SetShaderValue(sh.Shader, sh.displayMask, []float32{mask}, rl.ShaderUniformFloat)
	rl.SetShaderValue(sh.Shader, sh.inactive, colorVec4(s.inactive), rl.ShaderUniformVec4)

	// The screen is seen from inside while the viewer passes through.
	rl.DisableBackfaceCulling()
	rl.DrawMesh(s.mesh, mat, Matrix(s.transform))
	rl.EnableBackfaceCulling()
}

func (s *Screen) unload() {
	rl.UnloadMesh(&s.mesh)
}
