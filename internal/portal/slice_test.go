package portal

import (
	"testing"

	"portalview/internal/geom"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sliceLens = geom.Projection{FovY: 90, Aspect: 1, Near: 0.1, Far: 100}

// screenOrigin is where the screen mesh's local origin lands in the world.
func screenOrigin(s *fakeScreen) mgl32.Vec3 {
	return s.transform.Mul4x1(mgl32.Vec4{0, 0, 0, 1}).Vec3()
}

func TestProtectScreenFromClipping(t *testing.T) {
	_, _, b := doorway(t)
	screen := b.Screen().(*fakeScreen)

	// |(halfW, halfH, near)| for a 90 degree square lens at 0.1.
	thickness := b.ProtectScreenFromClipping(mgl32.Vec3{10, 0, -3}, sliceLens)
	assert.InDelta(t, 0.1732, thickness, eps)
	assert.InDelta(t, thickness, b.ScreenThickness(), eps)
	// b faces -Z; a camera on its front pushes the screen towards +Z.
	assertVec3(t, mgl32.Vec3{10, 0, thickness / 2}, screenOrigin(screen))

	b.ProtectScreenFromClipping(mgl32.Vec3{10, 0, 3}, sliceLens)
	assertVec3(t, mgl32.Vec3{10, 0, -thickness / 2}, screenOrigin(screen))

	degenerate := geom.Projection{FovY: 90, Aspect: 1}
	assert.InDelta(t, b.Settings().ScreenThickness, b.ProtectScreenFromClipping(mgl32.Vec3{10, 0, 3}, degenerate), eps)
}

// clippingPair tracks one traveller behind a and one in front of b.
func clippingPair(t *testing.T) (a, b *Portal, ta, tb *Traveller) {
	t.Helper()
	_, a, b = doorway(t)
	ta = NewTraveller("near-a", bodyAt(mgl32.Vec3{0, 0, -0.2}), newFakeGraphic())
	tb = NewTraveller("near-b", bodyAt(mgl32.Vec3{10, 0, 0.2}), newFakeGraphic())
	a.Enter(ta)
	b.Enter(tb)
	require.NotNil(t, ta.Clone())
	require.NotNil(t, tb.Clone())
	return a, b, ta, tb
}

func offsets(tr *Traveller) (float32, float32) {
	return tr.graphic.(*fakeGraphic).slice.OffsetDst, tr.Clone().(*fakeGraphic).slice.OffsetDst
}

func TestHandleClippingCameraBehindPortal(t *testing.T) {
	a, b, ta, tb := clippingPair(t)
	thickness := sliceLens.NearCornerDistance()

	a.handleClipping(mgl32.Vec3{0, 0, -3}, sliceLens)
	assert.InDelta(t, thickness, b.ScreenThickness(), eps)

	// Camera and ta share a's back side: ta is hidden, its clone shows
	// with the seam pushed past b's thickened screen.
	body, clone := offsets(ta)
	assert.Equal(t, float32(hideDst), body)
	assert.InDelta(t, thickness, clone, eps)

	body, clone = offsets(tb)
	assert.Equal(t, float32(showDst), clone)
	assert.InDelta(t, -thickness, body, eps)

	slice, cloneSlice := ta.Slice()
	assert.Equal(t, float32(hideDst), slice.OffsetDst)
	assert.InDelta(t, thickness, cloneSlice.OffsetDst, eps)
}

func TestHandleClippingCameraInFront(t *testing.T) {
	a, _, ta, tb := clippingPair(t)
	thickness := sliceLens.NearCornerDistance()

	a.handleClipping(mgl32.Vec3{0, 0, 3}, sliceLens)

	body, clone := offsets(ta)
	assert.Equal(t, float32(showDst), body)
	assert.InDelta(t, -thickness, clone, eps)

	body, clone = offsets(tb)
	assert.Equal(t, float32(hideDst), clone)
	assert.InDelta(t, thickness, body, eps)
}

func TestPostPortalRenderRestoresMainSlices(t *testing.T) {
	a, _, ta, _ := clippingPair(t)
	screen := a.Screen().(*fakeScreen)

	a.handleClipping(mgl32.Vec3{0, 0, 3}, sliceLens)
	body, _ := offsets(ta)
	require.Equal(t, float32(showDst), body)

	viewer := newFakeViewer(geom.NewPose(mgl32.Vec3{0, 0, -5}, mgl32.QuatIdent()))
	a.PostPortalRender(viewer)

	body, clone := offsets(ta)
	assert.Zero(t, body)
	assert.Zero(t, clone)
	slice, _ := ta.Slice()
	assertVec3(t, mgl32.Vec3{0, 0, 1}, slice.Normal)

	thickness := viewer.Projection().NearCornerDistance()
	assert.InDelta(t, thickness, a.ScreenThickness(), eps)
	assertVec3(t, mgl32.Vec3{0, 0, thickness / 2}, screenOrigin(screen))
}
