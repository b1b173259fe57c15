package portal

import (
	"portalview/internal/geom"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// TeleportStrategy moves a traveller's body to the far side of a link.
// target is remap applied to the body's pose before the crossing.
type TeleportStrategy interface {
	Teleport(t *Traveller, from, to *Portal, target geom.Pose, remap mgl32.Mat4)
}

// CloneStrategy owns the lifetime of traveller clones.
type CloneStrategy interface {
	Acquire(t *Traveller) Graphic
	Release(t *Traveller, clone Graphic)
}

// RigidTeleport places the body on the target pose and carries its
// velocity through the link.
type RigidTeleport struct{}

func (RigidTeleport) Teleport(t *Traveller, from, to *Portal, target geom.Pose, remap mgl32.Mat4) {
	t.body.SetPose(target)
	if vb, ok := t.body.(VelocityBody); ok {
		vb.SetVelocity(mgl32.TransformNormal(vb.Velocity(), remap))
	}
}

// HeadsetTeleport moves a tracked rig so that the head, not the rig
// origin, lands on the far side. The rig stays upright and is yawed to
// the new forward direction.
type HeadsetTeleport struct {
	// Floor is the lowest height the rig origin is placed at.
	Floor float32
}

func (h HeadsetTeleport) Teleport(t *Traveller, from, to *Portal, target geom.Pose, remap mgl32.Mat4) {
	hb, ok := t.body.(HeadsetBody)
	if !ok {
		RigidTeleport{}.Teleport(t, from, to, target, remap)
		return
	}

	rig := hb.Pose()
	head := hb.HeadPosition()
	headTarget := mgl32.TransformCoordinate(head, remap)

	flatFwd := target.Forward()
	flatFwd[1] = 0
	rot := target.Rotation
	if flatFwd.LenSqr() > 1e-6 {
		rot = geom.LookRotation(flatFwd, geom.Up)
	}

	// Head offset in rig space, re-expressed under the new yaw.
	local := rig.InverseTransformDirection(head.Sub(rig.Position))
	offset := rot.Rotate(local)
	offset[1] = 0

	pos := headTarget.Sub(offset)
	pos[1] = math32.Max(target.Position.Y(), h.Floor)

	hb.SetPose(geom.NewPose(pos, rot))
	if vb, ok := t.body.(VelocityBody); ok {
		vb.SetVelocity(mgl32.TransformNormal(vb.Velocity(), remap))
	}
}

// SpawnClone creates a clone on threshold entry and destroys it on exit.
type SpawnClone struct{}

func (SpawnClone) Acquire(t *Traveller) Graphic {
	c := t.graphic.Clone()
	c.SetActive(true)
	return c
}

func (SpawnClone) Release(t *Traveller, clone Graphic) {
	clone.Destroy()
}

// PooledClone keeps one clone per traveller and toggles it instead of
// recreating it.
type PooledClone struct {
	pool map[*Traveller]Graphic
}

func NewPooledClone() *PooledClone {
	return &PooledClone{pool: make(map[*Traveller]Graphic)}
}

func (p *PooledClone) Acquire(t *Traveller) Graphic {
	c, ok := p.pool[t]
	if !ok {
		c = t.graphic.Clone()
		p.pool[t] = c
	}
	c.SetActive(true)
	return c
}

func (p *PooledClone) Release(t *Traveller, clone Graphic) {
	clone.SetActive(false)
}

// Drain destroys every cached clone.
func (p *PooledClone) Drain() {
	for t, c := range p.pool {
		c.Destroy()
		delete(p.pool, t)
	}
}
