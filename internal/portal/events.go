package portal

// TriggerKind is the direction of a trigger notification.
type TriggerKind int

const (
	TriggerEnter TriggerKind = iota
	TriggerExit
)

func (k TriggerKind) String() string {
	if k == TriggerEnter {
		return "enter"
	}
	return "exit"
}

// TriggerEvent reports a traveller entering or leaving a portal's
// trigger volume.
type TriggerEvent struct {
	Kind      TriggerKind
	Portal    *Portal
	Traveller *Traveller
}

type overlapKey struct {
	portal    *Portal
	traveller *Traveller
}

// OverlapTracker turns per-frame containment tests into enter and exit
// events for hosts without a physics trigger system.
type OverlapTracker struct {
	inside map[overlapKey]bool
}

func NewOverlapTracker() *OverlapTracker {
	return &OverlapTracker{inside: make(map[overlapKey]bool)}
}

// Update tests every traveller against every portal trigger of reg and
// returns the changes since the previous call, plus exits for tracked
// travellers that are no longer inside. Exits are reported
// before enters so a traveller moving between adjacent triggers is
// released by one portal before the other claims it.
//
// A traveller that stays inside a trigger without being tracked there,
// because another portal held it when it arrived, gets a fresh enter as
// soon as that portal lets it go.
func (o *OverlapTracker) Update(reg *Registry, travellers []*Traveller) []TriggerEvent {
	var exits, enters []TriggerEvent
	seen := make(map[overlapKey]bool, len(o.inside))

	for _, p := range reg.Portals() {
		for _, t := range travellers {
			if p.TriggerContains(t.Position()) {
				seen[overlapKey{p, t}] = true
			}
		}
	}

	leaving := make(map[overlapKey]bool)
	for k := range o.inside {
		if !seen[k] {
			leaving[k] = true
			exits = append(exits, TriggerEvent{Kind: TriggerExit, Portal: k.portal, Traveller: k.traveller})
		}
	}
	// A teleport hands a traveller to the linked portal without a
	// trigger round-trip; release it there too once it is outside.
	for _, p := range reg.Portals() {
		for _, t := range p.Tracked() {
			k := overlapKey{p, t}
			if !seen[k] && !o.inside[k] {
				leaving[k] = true
				exits = append(exits, TriggerEvent{Kind: TriggerExit, Portal: p, Traveller: t})
			}
		}
	}

	for _, p := range reg.Portals() {
		for _, t := range travellers {
			k := overlapKey{p, t}
			if !seen[k] {
				continue
			}
			if !o.inside[k] || o.unclaimed(reg, p, t, leaving) {
				enters = append(enters, TriggerEvent{Kind: TriggerEnter, Portal: p, Traveller: t})
			}
		}
	}

	o.inside = seen
	return append(exits, enters...)
}

// unclaimed reports whether t sits in p's trigger untracked and will be
// free to claim once this update's exits are dispatched.
func (o *OverlapTracker) unclaimed(reg *Registry, p *Portal, t *Traveller, leaving map[overlapKey]bool) bool {
	if p.IsTracking(t) {
		return false
	}
	owner := reg.TrackedBy(t)
	return owner == nil || leaving[overlapKey{owner, t}]
}

// Reset forgets all overlaps, e.g. after a scene reload.
func (o *OverlapTracker) Reset() {
	o.inside = make(map[overlapKey]bool)
}
