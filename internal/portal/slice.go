package portal

import (
	"portalview/internal/geom"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	hideDst = -1000
	showDst = 1000
)

// UpdateSliceParams writes the cutting planes of a tracked traveller and
// its clone for a viewer at viewerPos. The traveller is cut by this
// portal's plane facing away from its side; the clone by the linked
// portal's plane, mirrored.
func (p *Portal) UpdateSliceParams(t *Traveller, viewerPos mgl32.Vec3) {
	side := p.SideOf(t.Position())
	if side == 0 {
		side = geom.Sign(t.previousOffset.Dot(p.Forward()))
		if side == 0 {
			side = 1
		}
	}
	s := float32(side)

	slice := SliceParams{
		Centre: p.pose.Position,
		Normal: p.Forward().Mul(-s),
	}
	// Viewer on the far side: align the cut with the screen's back face.
	if p.SideOf(viewerPos) != side {
		slice.OffsetDst = -p.screenThickness
	}
	t.setSlice(slice)

	if p.linked == nil {
		return
	}
	clone := SliceParams{
		Centre: p.linked.pose.Position,
		Normal: p.linked.Forward().Mul(s),
	}
	if p.linked.SideOf(viewerPos) == side {
		clone.OffsetDst = -p.screenThickness
	}
	t.setCloneSlice(clone)
}

// handleClipping adjusts slice offsets for one virtual camera pass at
// camPos: travellers of this portal and of the linked one are hidden or
// shown depending on which side of the respective plane the camera is,
// and the seam side is offset by the linked screen's thickness.
func (p *Portal) handleClipping(camPos mgl32.Vec3, lens geom.Projection) {
	linked := p.linked
	thickness := linked.ProtectScreenFromClipping(camPos, lens)

	for _, t := range p.tracked {
		pos := t.Position()
		if p.SameSide(pos, camPos) {
			t.setSliceOffset(hideDst)
		} else {
			t.setSliceOffset(showDst)
		}
		if linked.SideOf(camPos) == -p.SideOf(pos) {
			t.setCloneSliceOffset(thickness)
		} else {
			t.setCloneSliceOffset(-thickness)
		}
	}

	for _, t := range linked.tracked {
		pos := t.Position()
		if linked.SideOf(pos) != p.SideOf(camPos) {
			t.setCloneSliceOffset(hideDst)
		} else {
			t.setCloneSliceOffset(showDst)
		}
		if linked.SameSide(pos, camPos) {
			t.setSliceOffset(thickness)
		} else {
			t.setSliceOffset(-thickness)
		}
	}
}

// ProtectScreenFromClipping thickens the screen so the near plane of a
// camera at viewPoint cannot cut through it, and pushes it away from
// the camera by half the thickness. It returns the new thickness.
func (p *Portal) ProtectScreenFromClipping(viewPoint mgl32.Vec3, lens geom.Projection) float32 {
	thickness := lens.NearCornerDistance()
	if !geom.Finite(thickness) || thickness <= 0 {
		thickness = p.settings.ScreenThickness
	}

	facingSame := p.Forward().Dot(p.pose.Position.Sub(viewPoint)) > 0
	p.screenThickness = thickness
	if facingSame {
		p.screenOffset = thickness * 0.5
	} else {
		p.screenOffset = -thickness * 0.5
	}
	p.syncScreen()
	return thickness
}

// PrePortalRender refreshes the slices of every tracked traveller
// before any portal renders.
func (p *Portal) PrePortalRender(viewer Viewer) {
	pos := viewer.Pose().Position
	for _, t := range p.tracked {
		p.UpdateSliceParams(t, pos)
	}
}

// PostPortalRender restores the slices for the main camera and protects
// the screen from the main camera's near plane.
func (p *Portal) PostPortalRender(viewer Viewer) {
	pos := viewer.Pose().Position
	for _, t := range p.tracked {
		p.UpdateSliceParams(t, pos)
	}
	p.ProtectScreenFromClipping(pos, viewer.Projection())
}
