package portal

import (
	"errors"
	"image/color"
	"time"

	"portalview/internal/geom"

	"github.com/go-gl/mathgl/mgl32"
)

type fakeScreen struct {
	bounds      geom.AABB
	transform   mgl32.Mat4
	shadowsOnly bool
	mask        bool
	maskLog     []bool
	texture     RenderTarget
}

func newFakeScreen() *fakeScreen {
	return &fakeScreen{
		bounds: geom.AABB{Min: mgl32.Vec3{-1, -1, -0.5}, Max: mgl32.Vec3{1, 1, 0.5}},
	}
}

func (s *fakeScreen) Bounds() geom.AABB              { return s.bounds }
func (s *fakeScreen) SetTransform(m mgl32.Mat4)      { s.transform = m }
func (s *fakeScreen) SetShadowsOnly(on bool)         { s.shadowsOnly = on }
func (s *fakeScreen) SetTexture(target RenderTarget) { s.texture = target }

func (s *fakeScreen) SetDisplayMask(on bool) {
	s.mask = on
	s.maskLog = append(s.maskLog, on)
}

type fakeTarget struct {
	w, h     int
	released bool
}

func (t *fakeTarget) Size() (int, int) { return t.w, t.h }
func (t *fakeTarget) Release()         { t.released = true }

type fakeRenderer struct {
	w, h    int
	targets []*fakeTarget
	views   []View
	clears  []color.RGBA
	err     error
}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{w: 320, h: 240}
}

func (r *fakeRenderer) OutputSize() (int, int) { return r.w, r.h }

func (r *fakeRenderer) NewTarget(w, h int) RenderTarget {
	t := &fakeTarget{w: w, h: h}
	r.targets = append(r.targets, t)
	return t
}

func (r *fakeRenderer) RenderView(target RenderTarget, view View) error {
	if r.err != nil {
		return r.err
	}
	r.views = append(r.views, view)
	return nil
}

func (r *fakeRenderer) Clear(target RenderTarget, c color.RGBA) {
	r.clears = append(r.clears, c)
}

var errDeviceLost = errors.New("device lost")

type fakeViewer struct {
	pose geom.Pose
	lens geom.Projection
}

func newFakeViewer(pose geom.Pose) *fakeViewer {
	return &fakeViewer{pose: pose, lens: geom.Projection{FovY: 90, Aspect: 1, Near: 0.1, Far: 100}}
}

func (v *fakeViewer) Pose() geom.Pose             { return v.pose }
func (v *fakeViewer) Projection() geom.Projection { return v.lens }

type fakeBody struct {
	pose     geom.Pose
	velocity mgl32.Vec3
}

func bodyAt(pos mgl32.Vec3) *fakeBody {
	return &fakeBody{pose: geom.NewPose(pos, mgl32.QuatIdent())}
}

func (b *fakeBody) Pose() geom.Pose          { return b.pose }
func (b *fakeBody) SetPose(pose geom.Pose)   { b.pose = pose }
func (b *fakeBody) Velocity() mgl32.Vec3     { return b.velocity }
func (b *fakeBody) SetVelocity(v mgl32.Vec3) { b.velocity = v }
func (b *fakeBody) moveTo(pos mgl32.Vec3)    { b.pose.Position = pos }

type fakeHeadset struct {
	fakeBody
	head mgl32.Vec3
}

func (h *fakeHeadset) HeadPosition() mgl32.Vec3 { return h.head }

// fakeGraphic counts clones across the whole family it was created in.
type fakeGraphic struct {
	pose      geom.Pose
	slice     SliceParams
	active    bool
	destroyed int
	clones    *[]*fakeGraphic
}

func newFakeGraphic() *fakeGraphic {
	return &fakeGraphic{active: true, clones: new([]*fakeGraphic)}
}

func (g *fakeGraphic) SetPose(pose geom.Pose)      { g.pose = pose }
func (g *fakeGraphic) SetSlice(params SliceParams) { g.slice = params }
func (g *fakeGraphic) SetSliceOffset(dst float32)  { g.slice.OffsetDst = dst }
func (g *fakeGraphic) SetActive(active bool)       { g.active = active }
func (g *fakeGraphic) Destroy()                    { g.destroyed++ }

func (g *fakeGraphic) Clone() Graphic {
	c := &fakeGraphic{clones: g.clones}
	*g.clones = append(*g.clones, c)
	return c
}

func (g *fakeGraphic) liveClones() int {
	n := 0
	for _, c := range *g.clones {
		if c.destroyed == 0 && c.active {
			n++
		}
	}
	return n
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }
