package engine3D

import (
	"errors"
	"fmt"
	"image/color"

	"portalview/internal/geom"
	"portalview/internal/portal"

	rl "github.com/gen2brain/raylib-go/raylib"
)

var ErrForeignTarget = errors.New("render target not created by this renderer")

// Renderer draws World for the portal pipeline and for the main camera.
type Renderer struct {
	World *World
}

func NewRenderer(w *World) *Renderer {
	return &Renderer{World: w}
}

func (r *Renderer) OutputSize() (int, int) {
	return rl.GetRenderWidth(), rl.GetRenderHeight()
}

func (r *Renderer) NewTarget(width, height int) portal.RenderTarget {
	return NewTarget(width, height)
}

func (r *Renderer) RenderView(target portal.RenderTarget, view portal.View) error {
	t, err := r.target(target)
	if err != nil {
		return err
	}
	w, h := t.Size()
	rl.BeginTextureMode(t.rt)
	rl.ClearBackground(Color(r.World.Sky))
	r.World.draw(geom.ViewMatrix(view.Pose), view.Projection, w, h)
	rl.EndTextureMode()
	return nil
}

func (r *Renderer) Clear(target portal.RenderTarget, c color.RGBA) {
	t, err := r.target(target)
	if err != nil {
		return
	}
	rl.BeginTextureMode(t.rt)
	rl.ClearBackground(Color(c))
	rl.EndTextureMode()
}

func (r *Renderer) target(target portal.RenderTarget) (*Target, error) {
	t, ok := target.(*Target)
	if !ok {
		return nil, fmt.Errorf("%T: %w", target, ErrForeignTarget)
	}
	if !t.valid() {
		return nil, fmt.Errorf("released target: %w", portal.ErrStaleRenderTarget)
	}
	return t, nil
}

// DrawMain renders the world for the viewer into the current framebuffer.
// Call between rl.BeginDrawing and rl.EndDrawing.
func (r *Renderer) DrawMain(viewer portal.Viewer) {
	w, h := r.OutputSize()
	rl.ClearBackground(Color(r.World.Sky))
	r.World.draw(geom.ViewMatrix(viewer.Pose()), viewer.Projection().Matrix(), w, h)
}
