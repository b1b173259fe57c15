package engine3D

import (
	"image"
	"image/color"

	"portalview/internal/geom"
	"portalview/internal/utils"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
)

// Shape of a static prop.
type Shape int

const (
	ShapeCube Shape = iota
	ShapePlane
)

// Prop is static scenery, optionally textured.
type Prop struct {
	Name    string
	mesh    rl.Mesh
	model   mgl32.Mat4
	color   color.RGBA
	texture *rl.Texture2D
}

// World holds everything drawn in a pass: props, portal screens and
// traveller graphics, plus the shaders they are drawn with.
type World struct {
	Sky color.RGBA

	props    []*Prop
	screens  []*Screen
	graphics []*Graphic

	lit        *litShader
	sliced     *litShader
	screen     *screenShader
	litMat     rl.Material
	slicedMat  rl.Material
	screenMat  rl.Material
	defaultTex rl.Texture2D
}

// NewWorld loads the shaders. It needs a live GL context.
func NewWorld(sky color.RGBA) (*World, error) {
	w := &World{Sky: sky}
	var err error
	if w.lit, err = loadLitShader(false); err != nil {
		return nil, err
	}
	if w.sliced, err = loadLitShader(true); err != nil {
		rl.UnloadShader(w.lit.Shader)
		return nil, err
	}
	if w.screen, err = loadScreenShader(); err != nil {
		rl.UnloadShader(w.lit.Shader)
		rl.UnloadShader(w.sliced.Shader)
		return nil, err
	}

	w.litMat = rl.LoadMaterialDefault()
	w.litMat.Shader = w.lit.Shader
	w.slicedMat = rl.LoadMaterialDefault()
	w.slicedMat.Shader = w.sliced.Shader
	w.screenMat = rl.LoadMaterialDefault()
	w.screenMat.Shader = w.screen.Shader
	w.defaultTex = w.litMat.GetMap(rl.MapDiffuse).Texture
	return w, nil
}

func (w *World) AddProp(name string, shape Shape, pose geom.Pose, size mgl32.Vec3, c color.RGBA) *Prop {
	p := &Prop{Name: name, color: c}
	switch shape {
	case ShapePlane:
		p.mesh = rl.GenMeshPlane(1, 1, 1, 1)
	default:
		p.mesh = rl.GenMeshCube(1, 1, 1)
	}
	sy := size[1]
	if shape == ShapePlane {
		sy = 1
	}
	p.model = pose.LocalToWorld().Mul4(mgl32.Scale3D(size[0], sy, size[2]))
	w.props = append(w.props, p)
	return p
}

// SetTexture uploads img and draws the prop with it.
func (p *Prop) SetTexture(img image.Image) {
	rlImg := rl.NewImageFromImage(img)
	tex := rl.LoadTextureFromImage(rlImg)
	rl.UnloadImage(rlImg)
	rl.SetTextureFilter(tex, rl.FilterBilinear)
	rl.SetTextureWrap(tex, rl.TextureWrapRepeat)
	if p.texture != nil {
		rl.UnloadTexture(*p.texture)
	}
	p.texture = &tex
}

// NewScreen creates a portal screen of the given size. inactive is drawn
// while the screen has no view to show.
func (w *World) NewScreen(width, height float32, inactive color.RGBA) *Screen {
	s := newScreen(width, height, inactive)
	w.screens = append(w.screens, s)
	return s
}

// NewGraphic creates an active traveller graphic.
func (w *World) NewGraphic(size mgl32.Vec3, c color.RGBA, pose geom.Pose) *Graphic {
	g := &Graphic{world: w, mesh: newBoxMesh(size), color: c, pose: pose, active: true}
	w.graphics = append(w.graphics, g)
	return g
}

func (w *World) removeGraphic(g *Graphic) {
	for i, x := range w.graphics {
		if x == g {
			w.graphics = append(w.graphics[:i], w.graphics[i+1:]...)
			return
		}
	}
}

// Graphics returns the live graphics, clones included.
func (w *World) Graphics() []*Graphic {
	return w.graphics
}

// draw renders the world with the matrices of one camera. The caller has
// begun the target and cleared it.
func (w *World) draw(view, proj mgl32.Mat4, outW, outH int) {
	rl.BeginMode3D(rl.Camera3D{Up: rl.NewVector3(0, 1, 0), Fovy: 60, Projection: rl.CameraPerspective})
	rl.DrawRenderBatchActive()
	rl.SetMatrixProjection(Matrix(proj))
	rl.SetMatrixModelview(Matrix(view))

	diffuse := w.litMat.GetMap(rl.MapDiffuse)
	for _, p := range w.props {
		diffuse.Color = Color(p.color)
		diffuse.Texture = w.defaultTex
		if p.texture != nil {
			diffuse.Texture = *p.texture
		}
		rl.DrawMesh(p.mesh, w.litMat, Matrix(p.model))
	}
	diffuse.Texture = w.defaultTex

	for _, g := range w.graphics {
		g.draw(w.sliced, w.slicedMat)
	}
	for _, s := range w.screens {
		s.draw(w.screen, w.screenMat, outW, outH)
	}

	rl.EndMode3D()
}

// Unload frees every GPU resource owned by the world.
func (w *World) Unload() {
	for _, p := range w.props {
		rl.UnloadMesh(&p.mesh)
		if p.texture != nil {
			rl.UnloadTexture(*p.texture)
		}
	}
	for _, s := range w.screens {
		s.unload()
	}
	for _, g := range append([]*Graphic(nil), w.graphics...) {
		g.Destroy()
	}
	// Materials own their shaders; portal textures belong to the
	// targets.
	for _, m := range []rl.Material{w.litMat, w.slicedMat, w.screenMat} {
		m.GetMap(rl.MapDiffuse).Texture = w.defaultTex
		rl.UnloadMaterial(m)
	}
	w.props, w.screens, w.graphics = nil, nil, nil
	utils.Debug("engine3D: world unloaded")
}
