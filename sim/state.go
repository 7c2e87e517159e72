// Package sim replays a normalized action log into a deterministic
// portal/link/field world state, enforcing the planarity and
// resonator-threshold invariants the upstream game itself enforces live.
package sim

import "github.com/mhansen/ingresslapse"

// portalState is the simulator's runtime copy of a portal: mutable faction
// and resonator count layered on top of the catalog's static location.
type portalState struct {
	id         ingresslapse.PortalID
	lat, lng   float64
	team       ingresslapse.Faction
	resonators int
}

// linkRecord is a stored link together with the two endpoints it connects,
// needed for geometry checks and for locating dependent fields.
type linkRecord struct {
	key  ingresslapse.LinkKey
	a, b ingresslapse.PortalID
}

// fieldRecord is an owned triangle over three portals.
type fieldRecord struct {
	p1, p2, p3 ingresslapse.PortalID
	team       ingresslapse.Faction
}

// edges returns the field's three undirected edges as canonical link keys.
func (f fieldRecord) edges() [3]ingresslapse.LinkKey {
	return [3]ingresslapse.LinkKey{
		ingresslapse.CanonicalLinkKey(f.p1, f.p2),
		ingresslapse.CanonicalLinkKey(f.p2, f.p3),
		ingresslapse.CanonicalLinkKey(f.p3, f.p1),
	}
}

// hasVertex reports whether portal p is one of the field's three corners.
func (f fieldRecord) hasVertex(p ingresslapse.PortalID) bool {
	return f.p1 == p || f.p2 == p || f.p3 == p
}

// PortalState is the public, read-only view of a portal in a snapshot.
type PortalState struct {
	ID         ingresslapse.PortalID
	Lat, Lng   float64
	Team       ingresslapse.Faction
	Resonators int
}

// LinkState is the public view of a stored link.
type LinkState struct {
	A, B ingresslapse.PortalID
}

// FieldState is the public view of a stored field.
type FieldState struct {
	P1, P2, P3 ingresslapse.PortalID
	Team       ingresslapse.Faction
}

// StateSnapshot is the result of Simulator.Snapshot: the full visible world
// state at the moment it was taken.
type StateSnapshot struct {
	Portals []PortalState
	Links   []LinkState
	Fields  []FieldState
}
