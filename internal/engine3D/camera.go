package engine3D

import (
	"portalview/internal/geom"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const maxPitch = 89

// Player is a first-person camera. It is the viewer every portal renders
// for and the body of the player's traveller.
type Player struct {
	Position mgl32.Vec3
	// Yaw and Pitch are in degrees; positive pitch looks down.
	Yaw, Pitch float32
	Lens       geom.Projection

	velocity mgl32.Vec3
}

func NewPlayer(position mgl32.Vec3, yaw, pitch float32, lens geom.Projection) *Player {
	p := &Player{Position: position, Lens: lens}
	p.SetLook(yaw, pitch)
	return p
}

func (p *Player) Pose() geom.Pose {
	return geom.PoseAt(p.Position, p.Pitch, p.Yaw, 0)
}

// SetPose places the camera and recovers yaw and pitch from the pose's
// forward axis. Roll is dropped.
func (p *Player) SetPose(pose geom.Pose) {
	p.Position = pose.Position
	fwd := pose.Forward()
	yaw := mgl32.RadToDeg(math32.Atan2(fwd.X(), fwd.Z()))
	pitch := mgl32.RadToDeg(-math32.Asin(mgl32.Clamp(fwd.Y(), -1, 1)))
	p.SetLook(yaw, pitch)
}

func (p *Player) Projection() geom.Projection {
	return p.Lens
}

func (p *Player) Velocity() mgl32.Vec3     { return p.velocity }
func (p *Player) SetVelocity(v mgl32.Vec3) { p.velocity = v }

// SetLook sets the view angles, clamping pitch short of straight up or
// down.
func (p *Player) SetLook(yaw, pitch float32) {
	p.Yaw = math32.Mod(yaw, 360)
	p.Pitch = mgl32.Clamp(pitch, -maxPitch, maxPitch)
}

// Look turns the camera by a mouse delta in pixels.
func (p *Player) Look(dx, dy, sensitivity float32) {
	p.SetLook(p.Yaw-dx*sensitivity, p.Pitch+dy*sensitivity)
}

// Walk sets the velocity from input axes relative to the view: forward
// along the flattened view direction, strafe to the camera's right.
func (p *Player) Walk(forward, strafe, speed float32) {
	pose := geom.PoseAt(mgl32.Vec3{}, 0, p.Yaw, 0)
	dir := pose.Forward().Mul(forward).Add(pose.ScreenRight().Mul(strafe))
	if dir.LenSqr() > 1 {
		dir = dir.Normalize()
	}
	p.velocity = dir.Mul(speed)
}

// Step moves the camera by its velocity over dt seconds.
func (p *Player) Step(dt float32) {
	p.Position = p.Position.Add(p.velocity.Mul(dt))
}

// SetAspect follows the output size.
func (p *Player) SetAspect(width, height int) {
	if width > 0 && height > 0 {
		p.Lens.Aspect = float32(width) / float32(height)
	}
}
