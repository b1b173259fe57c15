package portal

import (
	"errors"
	"fmt"
	"image/color"

	"portalview/internal/geom"
	"portalview/internal/utils"
)

// SkipReason explains why a portal issued no passes.
type SkipReason int

const (
	Rendered SkipReason = iota
	SkipMissingLink
	SkipNoRecursion
	SkipNotVisible
	SkipTooFar
)

func (r SkipReason) String() string {
	switch r {
	case Rendered:
		return "rendered"
	case SkipMissingLink:
		return "missing link"
	case SkipNoRecursion:
		return "recursion disabled"
	case SkipNotVisible:
		return "not visible"
	case SkipTooFar:
		return "too far"
	default:
		return "unknown"
	}
}

// RenderStats summarises one portal's render call.
type RenderStats struct {
	Portal    string
	Levels    int
	Passes    int
	Fallbacks int
	Oblique   int
	Skip      SkipReason
}

// DefaultFallback is the flat colour drawn for passes that fail
// validation.
var DefaultFallback = color.RGBA{R: 24, G: 24, B: 32, A: 255}

// Pipeline renders portal views through a Renderer.
type Pipeline struct {
	Renderer Renderer
	Fallback color.RGBA
}

func NewPipeline(r Renderer) *Pipeline {
	return &Pipeline{Renderer: r, Fallback: DefaultFallback}
}

// Frame runs the three frame phases over every portal of reg in
// registration order: slice refresh, rendering, then restoring slices
// and screens for the main camera.
func (pl *Pipeline) Frame(reg *Registry, viewer Viewer) []RenderStats {
	portals := reg.Portals()
	for _, p := range portals {
		p.PrePortalRender(viewer)
	}

	stats := make([]RenderStats, 0, len(portals))
	for _, p := range portals {
		stats = append(stats, pl.Render(p, viewer))
	}

	for _, p := range portals {
		p.PostPortalRender(viewer)
	}
	return stats
}

// RecursionLevels returns the virtual camera poses for rendering
// through p, deepest level first and level 0 last. Levels past the
// first stop as soon as the linked screen can no longer be seen through
// p's screen from the previous level.
func RecursionLevels(p *Portal, viewer geom.Pose, lens geom.Projection) []geom.Pose {
	limit := p.settings.RecursionLimit
	linked := p.linked
	if linked == nil || limit <= 0 {
		return nil
	}

	poses := make([]geom.Pose, limit)
	step := p.LocalToWorld().Mul4(linked.WorldToLocal())
	m := viewer.LocalToWorld()
	camera := geom.NewViewer(viewer, lens)
	start := limit

	for i := 0; i < limit; i++ {
		if i > 0 && !geom.BoundsOverlap(p.ScreenBox(), linked.ScreenBox(), camera) {
			break
		}
		m = step.Mul4(m)
		idx := limit - i - 1
		poses[idx] = geom.PoseFromMatrix(m)
		camera.Pose = poses[idx]
		start = idx
	}
	return poses[start:]
}

// Render draws the view through p into p's render target and binds it
// on the linked portal's screen. It never fails: invalid passes are
// replaced by a flat fill and counted as fallbacks.
func (pl *Pipeline) Render(p *Portal, viewer Viewer) RenderStats {
	stats := RenderStats{Portal: p.Name}
	linked := p.linked
	switch {
	case linked == nil:
		stats.Skip = SkipMissingLink
		return stats
	case p.settings.RecursionLimit <= 0:
		stats.Skip = SkipNoRecursion
		return stats
	}

	viewerPose := viewer.Pose()
	lens := viewer.Projection()
	main := geom.NewViewer(viewerPose, lens)

	if !geom.FrustumVisible(linked.ScreenBox().World(), main.Frustum()) {
		stats.Skip = SkipNotVisible
		return stats
	}
	if limit := p.settings.MaxRenderDistance; limit > 0 &&
		linked.Position().Sub(viewerPose.Position).Len() > limit {
		stats.Skip = SkipTooFar
		return stats
	}

	target := pl.ensureTarget(p)
	levels := RecursionLevels(p, viewerPose, lens)
	stats.Levels = len(levels)

	if p.screen != nil {
		p.screen.SetShadowsOnly(true)
	}
	if linked.screen != nil {
		linked.screen.SetDisplayMask(false)
	}

	proj := lens.Matrix()
	for i, pose := range levels {
		view := View{
			Portal: p,
			Level:  len(levels) - 1 - i,
			Pose:   pose,
			Lens:   lens,
		}
		view.Projection, view.Oblique = ObliqueProjection(
			p.pose.Position, p.Forward(), pose, proj,
			p.settings.NearClipOffset, p.settings.NearClipLimit)

		p.handleClipping(pose.Position, lens)

		if err := pl.pass(target, view); err != nil {
			utils.Debug("portal %s level %d: %v", p.Name, view.Level, err)
			pl.Renderer.Clear(target, pl.Fallback)
			stats.Fallbacks++
		} else {
			stats.Passes++
			if view.Oblique {
				stats.Oblique++
			}
		}

		// Only the first, deepest pass hides the linked screen.
		if i == 0 && linked.screen != nil {
			linked.screen.SetDisplayMask(true)
		}
	}

	if p.screen != nil {
		p.screen.SetShadowsOnly(false)
	}
	if linked.screen != nil {
		linked.screen.SetDisplayMask(true)
		linked.screen.SetTexture(target)
	}
	return stats
}

func (pl *Pipeline) pass(target RenderTarget, view View) error {
	if err := ValidateView(view); err != nil {
		return err
	}
	if err := pl.Renderer.RenderView(target, view); err != nil {
		return fmt.Errorf("render pass: %w", err)
	}
	return nil
}

// ensureTarget returns p's render target, creating it or replacing a
// stale one at the renderer's output size.
func (pl *Pipeline) ensureTarget(p *Portal) RenderTarget {
	w, h := pl.Renderer.OutputSize()
	if err := checkTarget(p.target, w, h); err != nil {
		if errors.Is(err, ErrStaleRenderTarget) && p.target != nil {
			utils.Debug("portal %s: %v", p.Name, err)
		}
		p.Release()
		p.target = pl.Renderer.NewTarget(w, h)
		if p.linked != nil && p.linked.screen != nil {
			p.linked.screen.SetTexture(p.target)
		}
	}
	return p.target
}

func checkTarget(target RenderTarget, w, h int) error {
	if target == nil {
		return fmt.Errorf("no render target: %w", ErrStaleRenderTarget)
	}
	if tw, th := target.Size(); tw != w || th != h {
		return fmt.Errorf("target %dx%d, output %dx%d: %w", tw, th, w, h, ErrStaleRenderTarget)
	}
	return nil
}
