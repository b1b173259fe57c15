package portal

import (
	"time"

	"portalview/internal/geom"

	"github.com/go-gl/mathgl/mgl32"
)

type Settings struct {
	// RecursionLimit bounds the nested passes per frame. Zero disables
	// rendering through the portal.
	RecursionLimit int
	// NearClipOffset biases the oblique clip plane along its normal.
	NearClipOffset float32
	// NearClipLimit is the camera-to-plane distance below which the
	// oblique projection is skipped.
	NearClipLimit float32
	// MaxRenderDistance skips rendering when the linked screen is
	// farther than this from the viewer. Zero means unbounded.
	MaxRenderDistance float32
	// TeleportCooldown suppresses teleports that follow the previous one
	// from this portal too closely.
	TeleportCooldown time.Duration
	// ScreenThickness is the depth of the screen until the first
	// post-render pass resizes it.
	ScreenThickness float32
}

func DefaultSettings() Settings {
	return Settings{
		RecursionLimit:  5,
		NearClipOffset:  0.05,
		NearClipLimit:   0.2,
		ScreenThickness: 0.01,
	}
}

// Portal is one end of a linked pair.
type Portal struct {
	Name string

	pose     geom.Pose
	linked   *Portal
	screen   Screen
	settings Settings
	trigger  geom.AABB

	screenThickness float32
	screenOffset    float32

	tracked      []*Traveller
	target       RenderTarget
	lastTeleport time.Time
	registry     *Registry
}

func NewPortal(name string, pose geom.Pose, screen Screen, settings Settings) *Portal {
	if settings.RecursionLimit < 0 {
		settings.RecursionLimit = 0
	}
	if settings.ScreenThickness <= 0 {
		settings.ScreenThickness = DefaultSettings().ScreenThickness
	}

	p := &Portal{
		Name:            name,
		pose:            pose,
		screen:          screen,
		settings:        settings,
		screenThickness: settings.ScreenThickness,
	}

	p.trigger = geom.BoxFromCenter(mgl32.Vec3{}, mgl32.Vec3{1, 1, 1})
	if screen != nil {
		b := screen.Bounds()
		p.trigger = geom.AABB{
			Min: mgl32.Vec3{b.Min[0], b.Min[1], -0.5},
			Max: mgl32.Vec3{b.Max[0], b.Max[1], 0.5},
		}
		screen.SetDisplayMask(true)
	}
	p.syncScreen()
	return p
}

func (p *Portal) Pose() geom.Pose { return p.pose }

func (p *Portal) SetPose(pose geom.Pose) {
	p.pose = pose
	p.syncScreen()
}

func (p *Portal) Position() mgl32.Vec3 { return p.pose.Position }
func (p *Portal) Forward() mgl32.Vec3  { return p.pose.Forward() }

func (p *Portal) LocalToWorld() mgl32.Mat4 { return p.pose.LocalToWorld() }
func (p *Portal) WorldToLocal() mgl32.Mat4 { return p.pose.WorldToLocal() }

func (p *Portal) Screen() Screen           { return p.screen }
func (p *Portal) Settings() Settings       { return p.settings }
func (p *Portal) Linked() *Portal          { return p.linked }
func (p *Portal) Target() RenderTarget     { return p.target }
func (p *Portal) ScreenThickness() float32 { return p.screenThickness }

func (p *Portal) clock() time.Time {
	if p.registry != nil && p.registry.now != nil {
		return p.registry.now()
	}
	return time.Now()
}

func (p *Portal) SetRecursionLimit(n int) {
	if n < 0 {
		n = 0
	}
	p.settings.RecursionLimit = n
}

// SetLinked links p to other and repairs both sides: former partners
// of either portal are unlinked. Linking a portal to itself is a no-op.
func (p *Portal) SetLinked(other *Portal) {
	if other == p || other == p.linked {
		return
	}
	if old := p.linked; old != nil && old.linked == p {
		old.linked = nil
	}
	p.linked = other
	if other == nil {
		return
	}
	if prev := other.linked; prev != nil && prev != p && prev.linked == other {
		prev.linked = nil
	}
	other.linked = p
}

// Unlink clears the link on both sides.
func (p *Portal) Unlink() {
	p.SetLinked(nil)
}

// Link pairs a and b. A nil portal or a == b leaves everything as is.
func Link(a, b *Portal) {
	if a == nil || b == nil {
		return
	}
	a.SetLinked(b)
}

// TeleportMatrix maps this portal's space onto the linked portal's:
// linked.localToWorld * worldToLocal.
func (p *Portal) TeleportMatrix() (mgl32.Mat4, error) {
	if p.linked == nil {
		return mgl32.Ident4(), ErrMissingLink
	}
	return p.linked.LocalToWorld().Mul4(p.WorldToLocal()), nil
}

// SideOf is the sign of the offset from the portal along its forward.
func (p *Portal) SideOf(point mgl32.Vec3) int {
	return geom.Sign(point.Sub(p.pose.Position).Dot(p.Forward()))
}

func (p *Portal) SameSide(a, b mgl32.Vec3) bool {
	return p.SideOf(a) == p.SideOf(b)
}

// ScreenTransform places the unit-depth screen mesh: the portal pose,
// shifted along forward by the protection offset and scaled to the
// current thickness.
func (p *Portal) ScreenTransform() mgl32.Mat4 {
	return p.LocalToWorld().
		Mul4(mgl32.Translate3D(0, 0, p.screenOffset)).
		Mul4(mgl32.Scale3D(1, 1, p.screenThickness))
}

// ScreenBox is the screen's mesh bounds placed in the world.
func (p *Portal) ScreenBox() geom.Box {
	var local geom.AABB
	if p.screen != nil {
		local = p.screen.Bounds()
	}
	return geom.Box{Local: local, Transform: p.ScreenTransform()}
}

func (p *Portal) syncScreen() {
	if p.screen != nil {
		p.screen.SetTransform(p.ScreenTransform())
	}
}

// SetTrigger replaces the local-space trigger volume.
func (p *Portal) SetTrigger(box geom.AABB) {
	p.trigger = box
}

func (p *Portal) Trigger() geom.AABB { return p.trigger }

// TriggerContains reports whether a world point is inside the trigger
// volume.
func (p *Portal) TriggerContains(point mgl32.Vec3) bool {
	return p.trigger.Contains(p.pose.InverseTransformPoint(point))
}

// Tracked returns the travellers inside the trigger volume. The slice is
// owned by the portal.
func (p *Portal) Tracked() []*Traveller {
	return p.tracked
}

func (p *Portal) IsTracking(t *Traveller) bool {
	return p.indexOf(t) >= 0
}

func (p *Portal) indexOf(t *Traveller) int {
	for i, tt := range p.tracked {
		if tt == t {
			return i
		}
	}
	return -1
}

// Release frees the render target. The portal can still render
// afterwards; a new target is created on demand.
func (p *Portal) Release() {
	if p.target != nil {
		p.target.Release()
		p.target = nil
	}
}
