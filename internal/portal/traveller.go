package portal

import (
	"portalview/internal/geom"

	"github.com/go-gl/mathgl/mgl32"
)

// Body is the owning transform of a traveller.
type Body interface {
	Pose() geom.Pose
	SetPose(pose geom.Pose)
}

// VelocityBody is a body whose linear velocity is carried through a
// teleport.
type VelocityBody interface {
	Body
	Velocity() mgl32.Vec3
	SetVelocity(v mgl32.Vec3)
}

// HeadsetBody is a tracked rig whose head moves relative to the rig
// origin.
type HeadsetBody interface {
	Body
	HeadPosition() mgl32.Vec3
}

// SliceParams describe the cutting plane of a graphic. Fragments with
// dot(Centre + Normal*OffsetDst - p, Normal) < 0 are discarded.
type SliceParams struct {
	Centre    mgl32.Vec3
	Normal    mgl32.Vec3
	OffsetDst float32
}

// NoSlice leaves the whole graphic visible.
var NoSlice = SliceParams{}

// Graphic is the visual side of a traveller.
type Graphic interface {
	SetPose(pose geom.Pose)
	SetSlice(params SliceParams)
	SetSliceOffset(dst float32)
	// Clone returns an independent copy sharing the mesh and material.
	Clone() Graphic
	SetActive(active bool)
	Destroy()
}

// Hooks are optional lifecycle callbacks.
type Hooks struct {
	OnEnter        func(t *Traveller, p *Portal)
	OnPreTeleport  func(t *Traveller, from, to *Portal)
	OnPostTeleport func(t *Traveller, from, to *Portal)
	OnExit         func(t *Traveller, p *Portal)
}

// Traveller is an object that can cross a portal.
type Traveller struct {
	Name string

	body    Body
	graphic Graphic
	clone   Graphic

	previousOffset mgl32.Vec3

	teleport TeleportStrategy
	cloning  CloneStrategy
	hooks    Hooks

	slice      SliceParams
	cloneSlice SliceParams
}

type TravellerOption func(*Traveller)

func WithTeleportStrategy(s TeleportStrategy) TravellerOption {
	return func(t *Traveller) { t.teleport = s }
}

func WithCloneStrategy(s CloneStrategy) TravellerOption {
	return func(t *Traveller) { t.cloning = s }
}

func WithHooks(h Hooks) TravellerOption {
	return func(t *Traveller) { t.hooks = h }
}

// NewTraveller uses RigidTeleport and SpawnClone unless overridden.
func NewTraveller(name string, body Body, graphic Graphic, opts ...TravellerOption) *Traveller {
	t := &Traveller{
		Name:     name,
		body:     body,
		graphic:  graphic,
		teleport: RigidTeleport{},
		cloning:  SpawnClone{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Traveller) Body() Body       { return t.body }
func (t *Traveller) Graphic() Graphic { return t.graphic }

// Clone is the live duplicate, or nil outside a threshold.
func (t *Traveller) Clone() Graphic { return t.clone }

func (t *Traveller) Pose() geom.Pose {
	return t.body.Pose()
}

func (t *Traveller) Position() mgl32.Vec3 {
	return t.body.Pose().Position
}

// Slice returns the last slice parameters written to the graphic and
// the clone.
func (t *Traveller) Slice() (graphic, clone SliceParams) {
	return t.slice, t.cloneSlice
}

// SyncGraphic moves the graphic onto the body.
func (t *Traveller) SyncGraphic() {
	if t.graphic != nil {
		t.graphic.SetPose(t.body.Pose())
	}
}

func (t *Traveller) setSlice(params SliceParams) {
	t.slice = params
	if t.graphic != nil {
		t.graphic.SetSlice(params)
	}
}

func (t *Traveller) setCloneSlice(params SliceParams) {
	t.cloneSlice = params
	if t.clone != nil {
		t.clone.SetSlice(params)
	}
}

func (t *Traveller) setSliceOffset(dst float32) {
	t.slice.OffsetDst = dst
	if t.graphic != nil {
		t.graphic.SetSliceOffset(dst)
	}
}

func (t *Traveller) setCloneSliceOffset(dst float32) {
	t.cloneSlice.OffsetDst = dst
	if t.clone != nil {
		t.clone.SetSliceOffset(dst)
	}
}

// enterThreshold acquires the clone. A traveller that already has one
// keeps it.
func (t *Traveller) enterThreshold() {
	if t.clone == nil && t.graphic != nil {
		t.clone = t.cloning.Acquire(t)
	}
}

// exitThreshold releases the clone and clears the slice.
func (t *Traveller) exitThreshold() {
	if t.clone != nil {
		t.cloning.Release(t, t.clone)
		t.clone = nil
	}
	t.setSlice(NoSlice)
	t.cloneSlice = NoSlice
}
