package portal

import (
	"fmt"
	"time"

	"portalview/internal/utils"
)

// Registry owns the portals of one scene. It is created at scene setup
// and cleared at teardown; travellers and companions are tracked here
// instead of in process-wide state.
type Registry struct {
	portals    []*Portal
	byName     map[string]*Portal
	membership map[*Traveller]*Portal
	companions map[*Traveller][]Body
	now        func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		byName:     make(map[string]*Portal),
		membership: make(map[*Traveller]*Portal),
		companions: make(map[*Traveller][]Body),
		now:        time.Now,
	}
}

// SetClock replaces the time source used for teleport cooldowns.
func (r *Registry) SetClock(now func() time.Time) {
	r.now = now
}

func (r *Registry) Add(p *Portal) error {
	if _, ok := r.byName[p.Name]; ok {
		return fmt.Errorf("portal %q: %w", p.Name, ErrDuplicatePortal)
	}
	r.portals = append(r.portals, p)
	r.byName[p.Name] = p
	p.registry = r
	return nil
}

// Remove tears one portal down: its travellers exit, its link is broken
// and its render target is released.
func (r *Registry) Remove(name string) error {
	p, ok := r.byName[name]
	if !ok {
		return fmt.Errorf("portal %q: %w", name, ErrUnknownPortal)
	}
	r.teardown(p)
	delete(r.byName, name)
	for i, q := range r.portals {
		if q == p {
			r.portals = append(r.portals[:i], r.portals[i+1:]...)
			break
		}
	}
	p.registry = nil
	return nil
}

func (r *Registry) teardown(p *Portal) {
	for _, t := range append([]*Traveller(nil), p.tracked...) {
		p.Exit(t)
	}
	p.Unlink()
	p.Release()
}

// Portal returns the portal registered under name, or nil.
func (r *Registry) Portal(name string) *Portal {
	return r.byName[name]
}

// Portals returns the portals in registration order.
func (r *Registry) Portals() []*Portal {
	return r.portals
}

// Link pairs two registered portals by name.
func (r *Registry) Link(a, b string) error {
	pa, ok := r.byName[a]
	if !ok {
		return fmt.Errorf("link %s -> %s: portal %q: %w", a, b, a, ErrUnknownPortal)
	}
	pb, ok := r.byName[b]
	if !ok {
		return fmt.Errorf("link %s -> %s: portal %q: %w", a, b, b, ErrUnknownPortal)
	}
	Link(pa, pb)
	return nil
}

// TrackedBy returns the portal currently tracking t, or nil.
func (r *Registry) TrackedBy(t *Traveller) *Portal {
	return r.membership[t]
}

// AttachCompanion makes body follow master through every teleport.
func (r *Registry) AttachCompanion(master *Traveller, body Body) {
	for _, b := range r.companions[master] {
		if b == body {
			return
		}
	}
	r.companions[master] = append(r.companions[master], body)
}

func (r *Registry) DetachCompanion(master *Traveller, body Body) {
	list := r.companions[master]
	for i, b := range list {
		if b == body {
			r.companions[master] = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(r.companions[master]) == 0 {
		delete(r.companions, master)
	}
}

func (r *Registry) Companions(master *Traveller) []Body {
	return r.companions[master]
}

// Dispatch feeds one trigger notification to its portal.
func (r *Registry) Dispatch(ev TriggerEvent) {
	if ev.Portal == nil || ev.Traveller == nil {
		return
	}
	switch ev.Kind {
	case TriggerEnter:
		ev.Portal.Enter(ev.Traveller)
	case TriggerExit:
		ev.Portal.Exit(ev.Traveller)
	}
}

// HandleTravellers runs the crossing update of every portal in
// registration order.
func (r *Registry) HandleTravellers(viewer Viewer) {
	for _, p := range r.portals {
		p.HandleTravellers(viewer)
	}
}

// Clear tears down every portal and forgets all state.
func (r *Registry) Clear() {
	for _, p := range r.portals {
		r.teardown(p)
		p.registry = nil
	}
	utils.Debug("portal registry cleared (%d portals)", len(r.portals))
	r.portals = nil
	r.byName = make(map[string]*Portal)
	r.membership = make(map[*Traveller]*Portal)
	r.companions = make(map[*Traveller][]Body)
}
