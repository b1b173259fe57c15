package geom

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// ViewportBounds is a box in viewport space. The zero value is not a
// valid box; use Empty for "nothing visible".
type ViewportBounds struct {
	XMin, XMax float32
	YMin, YMax float32
	ZMin, ZMax float32

	valid bool
}

// Empty is the bounds of a shape entirely behind the viewer. It never
// overlaps anything.
var Empty = ViewportBounds{}

func (b ViewportBounds) IsEmpty() bool {
	return !b.valid
}

func (b ViewportBounds) String() string {
	if b.IsEmpty() {
		return "ViewportBounds{empty}"
	}
	return fmt.Sprintf("ViewportBounds{x:[%.3f,%.3f] y:[%.3f,%.3f] z:[%.3f,%.3f]}",
		b.XMin, b.XMax, b.YMin, b.YMax, b.ZMin, b.ZMax)
}

func newAccumulator() ViewportBounds {
	return ViewportBounds{
		XMin: math32.MaxFloat32, XMax: -math32.MaxFloat32,
		YMin: math32.MaxFloat32, YMax: -math32.MaxFloat32,
		ZMin: math32.MaxFloat32, ZMax: -math32.MaxFloat32,
	}
}

func (b *ViewportBounds) add(p mgl32.Vec3) {
	b.XMin = math32.Min(b.XMin, p[0])
	b.XMax = math32.Max(b.XMax, p[0])
	b.YMin = math32.Min(b.YMin, p[1])
	b.YMax = math32.Max(b.YMax, p[1])
	b.ZMin = math32.Min(b.ZMin, p[2])
	b.ZMax = math32.Max(b.ZMax, p[2])
}

// ProjectToViewportBounds projects the eight corners of box.Local,
// placed by box.Transform, into the viewer's viewport space. A corner
// behind the viewer projects mirrored, so its x and y are pushed to the
// opposite edge before being accumulated. When no corner is in front of
// the viewer the result is Empty.
func ProjectToViewportBounds(box Box, viewer Viewer) ViewportBounds {
	out := newAccumulator()
	anyInFront := false

	for _, local := range box.Local.Corners() {
		world := mgl32.TransformCoordinate(local, box.Transform)
		p := viewer.WorldToViewport(world)
		if p[2] > 0 && Finite(p[0]) && Finite(p[1]) {
			anyInFront = true
		} else {
			p[0] = oppositeEdge(p[0])
			p[1] = oppositeEdge(p[1])
		}
		out.add(p)
	}

	if !anyInFront {
		return Empty
	}
	out.valid = true
	return out
}

func oppositeEdge(v float32) float32 {
	if v <= 0.5 {
		return 1
	}
	return 0
}

// BoundsOverlap reports whether far is seen through near: far must lie
// entirely behind near in depth, and their x and y ranges must
// intersect.
func BoundsOverlap(near, far Box, viewer Viewer) bool {
	return ViewportOverlap(ProjectToViewportBounds(near, viewer), ProjectToViewportBounds(far, viewer))
}

// ViewportOverlap is BoundsOverlap on already projected bounds.
func ViewportOverlap(near, far ViewportBounds) bool {
	if near.IsEmpty() || far.IsEmpty() {
		return false
	}
	if far.ZMin <= near.ZMax {
		return false
	}
	if far.XMax < near.XMin || far.XMin > near.XMax {
		return false
	}
	if far.YMax < near.YMin || far.YMin > near.YMax {
		return false
	}
	return true
}
