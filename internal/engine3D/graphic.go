package engine3D

import (
	"image/color"

	"portalview/internal/geom"
	"portalview/internal/portal"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
)

// Body is a kinematic box: it owns a pose and moves with a constant
// velocity.
type Body struct {
	pose     geom.Pose
	velocity mgl32.Vec3
}

func NewBody(pose geom.Pose, velocity mgl32.Vec3) *Body {
	return &Body{pose: pose, velocity: velocity}
}

func (b *Body) Pose() geom.Pose          { return b.pose }
func (b *Body) SetPose(pose geom.Pose)   { b.pose = pose }
func (b *Body) Velocity() mgl32.Vec3     { return b.velocity }
func (b *Body) SetVelocity(v mgl32.Vec3) { b.velocity = v }

// Step advances the body by dt seconds.
func (b *Body) Step(dt float32) {
	b.pose.Position = b.pose.Position.Add(b.velocity.Mul(dt))
}

// Graphic draws a traveller box through the slice shader. Clones share
// the mesh and colour of the graphic they were made from.
type Graphic struct {
	world  *World
	mesh   *boxMesh
	color  color.RGBA
	pose   geom.Pose
	slice  portal.SliceParams
	active bool
}

func (g *Graphic) SetPose(pose geom.Pose)             { g.pose = pose }
func (g *Graphic) SetSlice(params portal.SliceParams) { g.slice = params }
func (g *Graphic) SetSliceOffset(dst float32)         { g.slice.OffsetDst = dst }
func (g *Graphic) SetActive(active bool)              { g.active = active }

func (g *Graphic) Clone() portal.Graphic {
	c := &Graphic{
		world:  g.world,
		mesh:   g.mesh.retain(),
		color:  g.color,
		pose:   g.pose,
		slice:  g.slice,
		active: g.active,
	}
	g.world.graphics = append(g.world.graphics, c)
	return c
}

// Destroy removes the graphic from the world. The mesh is unloaded when
// its last user is destroyed.
func (g *Graphic) Destroy() {
	g.world.removeGraphic(g)
	g.mesh.release()
}

func (g *Graphic) draw(sh *litShader, mat rl.Material) {
	if !g.active {
		return
	}
	rl.SetShaderValue(sh.Shader, sh.sliceCentre, g.slice.Centre[:], rl.ShaderUniformVec3)
	rl.SetShaderValue(sh.Shader, sh.sliceNormal, g.slice.Normal[:], rl.ShaderUniformVec3)
	rl.SetShaderValue(sh.Shader, sh.sliceOffset, []float32{g.slice.OffsetDst}, rl.ShaderUniformFloat)
	mat.GetMap(rl.MapDiffuse).Color = Color(g.color)
	rl.DrawMesh(g.mesh.mesh, mat, Matrix(g.mesh.model(g.pose)))
}

// boxMesh is a unit cube mesh scaled to size, reference counted across
// a graphic and its clones.
type boxMesh struct {
	mesh rl.Mesh
	size mgl32.Vec3
	refs int
}

func newBoxMesh(size mgl32.Vec3) *boxMesh {
	return &boxMesh{mesh: rl.GenMeshCube(1, 1, 1), size: size, refs: 1}
}

func (m *boxMesh) model(pose geom.Pose) mgl32.Mat4 {
	return pose.LocalToWorld().Mul4(mgl32.Scale3D(m.size[0], m.size[1], m.size[2]))
}

func (m *boxMesh) retain() *boxMesh {
	m.refs++
	return m
}

func (m *boxMesh) release() {
	m.refs--
	if m.refs == 0 {
		rl.UnloadMesh(&m.mesh)
	}
}
