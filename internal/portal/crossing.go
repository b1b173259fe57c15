package portal

import (
	"portalview/internal/geom"
	"portalview/internal/utils"

	"github.com/go-gl/mathgl/mgl32"
)

// Enter moves t into this portal's threshold: the clone is acquired,
// the current offset recorded and t added to the tracked set. A
// traveller already tracked here, or by another portal of the same
// registry, is left alone.
func (p *Portal) Enter(t *Traveller) {
	if p.IsTracking(t) {
		return
	}
	if p.registry != nil {
		if owner := p.registry.membership[t]; owner != nil && owner != p {
			utils.Debug("portal %s: %s already tracked by %s", p.Name, t.Name, owner.Name)
			return
		}
		p.registry.membership[t] = p
	}

	t.enterThreshold()
	t.previousOffset = t.Position().Sub(p.pose.Position)
	p.tracked = append(p.tracked, t)

	if t.hooks.OnEnter != nil {
		t.hooks.OnEnter(t, p)
	}
}

// Exit ends a threshold episode without a crossing: the clone is
// released and the slice cleared.
func (p *Portal) Exit(t *Traveller) {
	i := p.indexOf(t)
	if i < 0 {
		return
	}
	t.exitThreshold()
	p.untrack(i, t)

	if t.hooks.OnExit != nil {
		t.hooks.OnExit(t, p)
	}
}

func (p *Portal) untrack(i int, t *Traveller) {
	p.tracked = append(p.tracked[:i], p.tracked[i+1:]...)
	if p.registry != nil && p.registry.membership[t] == p {
		delete(p.registry.membership, t)
	}
}

// HandleTravellers runs one crossing update for every tracked traveller.
// Travellers whose side of the plane flipped since the previous update
// are teleported to the linked portal; the rest have their clone placed
// on the far side and their slice refreshed.
func (p *Portal) HandleTravellers(viewer Viewer) {
	if p.linked == nil || len(p.tracked) == 0 {
		return
	}
	linked := p.linked
	remap := linked.LocalToWorld().Mul4(p.WorldToLocal())
	fwd := p.Forward()

	var viewerPos mgl32.Vec3
	if viewer != nil {
		viewerPos = viewer.Pose().Position
	}

	for i := 0; i < len(p.tracked); i++ {
		t := p.tracked[i]
		pose := t.Pose()
		target := geom.PoseFromMatrix(remap.Mul4(pose.LocalToWorld()))

		offset := pose.Position.Sub(p.pose.Position)
		side := geom.Sign(offset.Dot(fwd))
		prev := geom.Sign(t.previousOffset.Dot(fwd))

		// Resting exactly on the plane is not a crossing; the next
		// update compares against the last off-plane offset.
		if side == 0 {
			if t.clone != nil {
				t.clone.SetPose(target)
			}
			continue
		}

		if prev != 0 && side != prev {
			// Within the cooldown the old offset is kept, so the
			// crossing is taken once the cooldown has passed.
			if p.coolingDown() {
				if t.clone != nil {
					t.clone.SetPose(target)
				}
				continue
			}
			p.teleport(t, pose, target, remap)
			i--
			continue
		}

		if t.clone != nil {
			t.clone.SetPose(target)
		}
		p.UpdateSliceParams(t, viewerPos)
		t.previousOffset = offset
	}
}

func (p *Portal) coolingDown() bool {
	if p.settings.TeleportCooldown <= 0 || p.lastTeleport.IsZero() {
		return false
	}
	return p.clock().Sub(p.lastTeleport) < p.settings.TeleportCooldown
}

func (p *Portal) teleport(t *Traveller, before, target geom.Pose, remap mgl32.Mat4) {
	linked := p.linked
	if t.hooks.OnPreTeleport != nil {
		t.hooks.OnPreTeleport(t, p, linked)
	}

	t.teleport.Teleport(t, p, linked, target, remap)
	t.SyncGraphic()
	if p.registry != nil {
		for _, b := range p.registry.companions[t] {
			b.SetPose(geom.PoseFromMatrix(remap.Mul4(b.Pose().LocalToWorld())))
		}
	}

	// The clone stays where the viewer last saw the traveller.
	if t.clone != nil {
		t.clone.SetPose(before)
	}
	p.lastTeleport = p.clock()
	utils.Debug("portal %s: %s teleported to %s", p.Name, t.Name, linked.Name)

	p.untrack(p.indexOf(t), t)
	linked.Enter(t)

	if t.hooks.OnPostTeleport != nil {
		t.hooks.OnPostTeleport(t, p, linked)
	}
}
