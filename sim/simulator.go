package sim

import (
	"sort"

	"github.com/mhansen/ingresslapse"
	"github.com/mhansen/ingresslapse/geo"
)

const (
	minLinkResonators = 2
	maxResonators     = 8
	startResonators   = 1
)

// Simulator holds the replayable world state: portal ownership and
// resonator counts, the current non-crossing link set, and the fields they
// support. It is constructed once from the full portal catalog and then
// advanced action-by-action.
type Simulator struct {
	portals map[ingresslapse.PortalID]*portalState
	links   map[ingresslapse.LinkKey]linkRecord
	fields  []fieldRecord
}

// New constructs a Simulator over the given portal catalog. Every portal
// starts at faction NEUTRAL with zero resonators, regardless of whatever
// faction the catalog recorded as first-observed.
func New(catalog []ingresslapse.Portal) *Simulator {
	s := &Simulator{
		portals: make(map[ingresslapse.PortalID]*portalState, len(catalog)),
		links:   make(map[ingresslapse.LinkKey]linkRecord),
	}
	for _, p := range catalog {
		s.portals[p.ID] = &portalState{
			id:   p.ID,
			lat:  p.Lat,
			lng:  p.Lng,
			team: ingresslapse.Neutral,
		}
	}
	return s
}

// ProcessAction mutates state for one normalized action and reports whether
// the visible world state (portal faction, link set, or field set) changed.
func (s *Simulator) ProcessAction(a ingresslapse.Action) bool {
	switch {
	case a.Type == ingresslapse.TypeLink && a.Verb == ingresslapse.VerbDestroy:
		return s.explicitLinkDestroy(a)

	case a.Type == ingresslapse.TypeReso && a.Verb == ingresslapse.VerbDestroy:
		return s.resonatorDestruction(a)

	case isDeployOrCapture(a.Verb):
		return s.deployOrCapture(a)

	case a.Type == ingresslapse.TypeLink && a.Verb != ingresslapse.VerbUnknown:
		return s.linkCreation(a)

	case isBattleBeaconWin(a.Verb):
		return s.battleBeaconOutcome(a)

	default:
		return false
	}
}

func isDeployOrCapture(v ingresslapse.ActionVerb) bool {
	switch v {
	case ingresslapse.VerbDeployRES, ingresslapse.VerbDeployENL,
		ingresslapse.VerbCapturedRES, ingresslapse.VerbCapturedENL:
		return true
	default:
		return false
	}
}

func isBattleBeaconWin(v ingresslapse.ActionVerb) bool {
	return v == ingresslapse.VerbWonRES || v == ingresslapse.VerbWonENL
}

// explicitLinkDestroy handles a type=link,action=destroy event: if both
// endpoints are known, the link between them is removed.
func (s *Simulator) explicitLinkDestroy(a ingresslapse.Action) bool {
	if _, ok := s.portals[a.PortalID]; !ok {
		return false
	}
	if _, ok := s.portals[a.TargetPortalID]; !ok {
		return false
	}
	key := ingresslapse.CanonicalLinkKey(a.PortalID, a.TargetPortalID)
	return s.deleteLink(key)
}

// resonatorDestruction decrements a portal's resonator count, floored at 0,
// and enforces I4/I5: at or below the link threshold its links are
// stripped, and at zero it reverts to NEUTRAL.
func (s *Simulator) resonatorDestruction(a ingresslapse.Action) bool {
	p, ok := s.portals[a.PortalID]
	if !ok {
		return false
	}
	changed := false
	if p.resonators > 0 {
		p.resonators--
	}
	if p.resonators <= minLinkResonators {
		if s.removeLinksAttachedTo(p.id) {
			changed = true
		}
	}
	if p.resonators == 0 && p.team != ingresslapse.Neutral {
		p.team = ingresslapse.Neutral
		changed = true
	}
	return changed
}

// deployOrCapture handles a faction-tagged deploy or capture action:
// capture of a neutral portal, a faction flip, or a same-faction
// reinforcement.
func (s *Simulator) deployOrCapture(a ingresslapse.Action) bool {
	p, ok := s.portals[a.PortalID]
	if !ok {
		return false
	}
	t, ok := a.Verb.Faction()
	if !ok {
		return false
	}

	switch {
	case p.team == ingresslapse.Neutral:
		p.team = t
		p.resonators = startResonators
		return true

	case p.team != t:
		p.team = t
		p.resonators = startResonators
		s.removeLinksAttachedTo(p.id)
		return true

	default:
		if p.resonators < maxResonators {
			p.resonators++
		}
		return false
	}
}

// linkCreation forces both endpoints to the acting faction, then — if the
// link doesn't already exist — performs the planarity sweep, inserts the
// new link, and creates at most two dependent fields.
func (s *Simulator) linkCreation(a ingresslapse.Action) bool {
	p1, ok := s.portals[a.PortalID]
	if !ok {
		return false
	}
	p2, ok := s.portals[a.TargetPortalID]
	if !ok {
		return false
	}
	t, ok := a.Verb.Faction()
	if !ok {
		return false
	}

	changed := false
	if p1.team != t {
		p1.team = t
		changed = true
	}
	if p2.team != t {
		p2.team = t
		changed = true
	}

	key := ingresslapse.CanonicalLinkKey(p1.id, p2.id)
	if _, exists := s.links[key]; exists {
		return changed
	}

	newSeg := s.segment(p1.id, p2.id)

	// Planarity sweep: delete any existing link that would properly cross
	// the new edge.
	for existingKey, rec := range s.links {
		seg := s.segment(rec.a, rec.b)
		if geo.Intersect(newSeg, seg) {
			s.deleteLink(existingKey)
			changed = true
		}
	}

	s.links[key] = linkRecord{key: key, a: p1.id, b: p2.id}
	changed = true

	s.createFields(p1.id, p2.id, t)

	return changed
}

// segment builds the geo.Segment for the edge between two known portals.
func (s *Simulator) segment(a, b ingresslapse.PortalID) geo.Segment {
	pa, pb := s.portals[a], s.portals[b]
	return geo.Segment{
		A:   geo.Point{Lat: pa.lat, Lng: pa.lng},
		B:   geo.Point{Lat: pb.lat, Lng: pb.lng},
		AID: string(a),
		BID: string(b),
	}
}

// createFields emits at most one field per side of the new edge (p1,p2),
// choosing on each side the common-neighbor candidate with the largest
// triangle area, ties broken by neighbor id.
func (s *Simulator) createFields(p1, p2 ingresslapse.PortalID, team ingresslapse.Faction) {
	neighbors1 := s.neighborsOf(p1)
	neighbors2 := s.neighborsOf(p2)

	var common []ingresslapse.PortalID
	for n := range neighbors1 {
		if _, ok := neighbors2[n]; ok && n != p1 && n != p2 {
			common = append(common, n)
		}
	}
	sort.Slice(common, func(i, j int) bool { return common[i] < common[j] })

	a := s.portals[p1]
	b := s.portals[p2]

	var bestPos, bestNeg ingresslapse.PortalID
	var bestPosArea, bestNegArea float64
	havePos, haveNeg := false, false

	for _, n := range common {
		c := s.portals[n]
		area := geo.Cross(
			geo.Point{Lat: a.lat, Lng: a.lng},
			geo.Point{Lat: b.lat, Lng: b.lng},
			geo.Point{Lat: c.lat, Lng: c.lng},
		)
		abs := area
		if abs < 0 {
			abs = -abs
		}
		if area > 0 {
			if !havePos || abs > bestPosArea {
				bestPos, bestPosArea, havePos = n, abs, true
			}
		} else if area < 0 {
			if !haveNeg || abs > bestNegArea {
				bestNeg, bestNegArea, haveNeg = n, abs, true
			}
		}
	}

	if havePos {
		s.fields = append(s.fields, fieldRecord{p1: p1, p2: p2, p3: bestPos, team: team})
	}
	if haveNeg {
		s.fields = append(s.fields, fieldRecord{p1: p1, p2: p2, p3: bestNeg, team: team})
	}
}

// neighborsOf returns the set of portals directly linked to p.
func (s *Simulator) neighborsOf(p ingresslapse.PortalID) map[ingresslapse.PortalID]struct{} {
	out := make(map[ingresslapse.PortalID]struct{})
	for _, rec := range s.links {
		switch p {
		case rec.a:
			out[rec.b] = struct{}{}
		case rec.b:
			out[rec.a] = struct{}{}
		}
	}
	return out
}

// battleBeaconOutcome handles a won_RES/won_ENL action: a portal held by
// neither neutral nor the winning faction loses its links and flips.
func (s *Simulator) battleBeaconOutcome(a ingresslapse.Action) bool {
	p, ok := s.portals[a.PortalID]
	if !ok {
		return false
	}
	winner, ok := a.Verb.Faction()
	if !ok {
		return false
	}

	changed := false
	if p.team != ingresslapse.Neutral && p.team != winner {
		if s.removeLinksAttachedTo(p.id) {
			changed = true
		}
	}
	if p.team != winner {
		p.team = winner
		changed = true
	}
	return changed
}

// deleteLink removes the link with the given key and every field that
// depends on it, reporting whether the link existed.
func (s *Simulator) deleteLink(key ingresslapse.LinkKey) bool {
	if _, ok := s.links[key]; !ok {
		return false
	}
	delete(s.links, key)

	kept := s.fields[:0]
	for _, f := range s.fields {
		dependsOnKey := false
		for _, e := range f.edges() {
			if e == key {
				dependsOnKey = true
				break
			}
		}
		if !dependsOnKey {
			kept = append(kept, f)
		}
	}
	s.fields = kept
	return true
}

// removeLinksAttachedTo deletes every link incident to portal p via
// deleteLink, then scrubs any residual field still touching p, reporting
// whether anything changed.
func (s *Simulator) removeLinksAttachedTo(p ingresslapse.PortalID) bool {
	var toDelete []ingresslapse.LinkKey
	for key, rec := range s.links {
		if rec.a == p || rec.b == p {
			toDelete = append(toDelete, key)
		}
	}
	changed := false
	for _, key := range toDelete {
		if s.deleteLink(key) {
			changed = true
		}
	}

	kept := s.fields[:0]
	for _, f := range s.fields {
		if f.hasVertex(p) {
			changed = true
			continue
		}
		kept = append(kept, f)
	}
	s.fields = kept

	return changed
}

// Snapshot returns the current visible world state.
func (s *Simulator) Snapshot() StateSnapshot {
	snap := StateSnapshot{
		Portals: make([]PortalState, 0, len(s.portals)),
		Links:   make([]LinkState, 0, len(s.links)),
		Fields:  make([]FieldState, 0, len(s.fields)),
	}
	ids := make([]ingresslapse.PortalID, 0, len(s.portals))
	for id := range s.portals {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		p := s.portals[id]
		snap.Portals = append(snap.Portals, PortalState{
			ID: p.id, Lat: p.lat, Lng: p.lng, Team: p.team, Resonators: p.resonators,
		})
	}

	keys := make([]ingresslapse.LinkKey, 0, len(s.links))
	for k := range s.links {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	for _, k := range keys {
		rec := s.links[k]
		snap.Links = append(snap.Links, LinkState{A: rec.a, B: rec.b})
	}

	for _, f := range s.fields {
		snap.Fields = append(snap.Fields, FieldState{P1: f.p1, P2: f.p2, P3: f.p3, Team: f.team})
	}

	return snap
}
