package sim

import (
	"testing"

	"github.com/mhansen/ingresslapse"
)

func square() []ingresslapse.Portal {
	return []ingresslapse.Portal{
		{ID: "a", Lat: 0, Lng: 0},
		{ID: "b", Lat: 0, Lng: 10},
		{ID: "c", Lat: 10, Lng: 10},
		{ID: "d", Lat: 10, Lng: 0},
	}
}

func capture(id ingresslapse.PortalID, f ingresslapse.Faction) ingresslapse.Action {
	verb := ingresslapse.VerbCapturedRES
	if f == ingresslapse.Enlightened {
		verb = ingresslapse.VerbCapturedENL
	}
	return ingresslapse.Action{Type: ingresslapse.TypePortal, Verb: verb, PortalID: id}
}

func link(a, b ingresslapse.PortalID, f ingresslapse.Faction) ingresslapse.Action {
	verb := ingresslapse.VerbLinkRES
	if f == ingresslapse.Enlightened {
		verb = ingresslapse.VerbLinkENL
	}
	return ingresslapse.Action{Type: ingresslapse.TypeLink, Verb: verb, PortalID: a, TargetPortalID: b}
}

func TestCleanCapture(t *testing.T) {
	s := New(square())
	changed := s.ProcessAction(capture("a", ingresslapse.Resistance))
	if !changed {
		t.Fatal("expected capture of a neutral portal to be visible")
	}
	snap := s.Snapshot()
	for _, p := range snap.Portals {
		if p.ID == "a" {
			if p.Team != ingresslapse.Resistance || p.Resonators != 1 {
				t.Errorf("got team=%v resonators=%d", p.Team, p.Resonators)
			}
		}
	}
}

func TestReinforcementNotVisible(t *testing.T) {
	s := New(square())
	s.ProcessAction(capture("a", ingresslapse.Resistance))
	if s.ProcessAction(capture("a", ingresslapse.Resistance)) {
		t.Fatal("expected same-faction reinforcement to be invisible")
	}
}

func TestFactionFlipRemovesLinks(t *testing.T) {
	s := New(square())
	s.ProcessAction(capture("a", ingresslapse.Resistance))
	s.ProcessAction(capture("b", ingresslapse.Resistance))
	s.ProcessAction(link("a", "b", ingresslapse.Resistance))

	if len(s.Snapshot().Links) != 1 {
		t.Fatal("expected link to exist before flip")
	}

	changed := s.ProcessAction(capture("a", ingresslapse.Enlightened))
	if !changed {
		t.Fatal("expected faction flip to be visible")
	}
	snap := s.Snapshot()
	if len(snap.Links) != 0 {
		t.Errorf("expected flip to remove incident links, got %v", snap.Links)
	}
}

func TestTriangleCreatesTwoSidedField(t *testing.T) {
	// a,b on a horizontal line with c below and d above; once the four
	// perimeter links a-c, b-c, a-d, b-d exist, the diagonal a-b has a common
	// neighbor on each side.
	portals := []ingresslapse.Portal{
		{ID: "a", Lat: 0, Lng: 0},
		{ID: "b", Lat: 0, Lng: 10},
		{ID: "c", Lat: -10, Lng: 5},
		{ID: "d", Lat: 10, Lng: 5},
	}
	s := New(portals)
	for _, id := range []ingresslapse.PortalID{"a", "b", "c", "d"} {
		s.ProcessAction(capture(id, ingresslapse.Resistance))
	}
	s.ProcessAction(link("a", "c", ingresslapse.Resistance))
	s.ProcessAction(link("b", "c", ingresslapse.Resistance))
	s.ProcessAction(link("a", "d", ingresslapse.Resistance))
	s.ProcessAction(link("b", "d", ingresslapse.Resistance))

	// Linking a-b has a common neighbor on each side (c below, d above).
	s.ProcessAction(link("a", "b", ingresslapse.Resistance))

	snap := s.Snapshot()
	if len(snap.Fields) != 2 {
		t.Fatalf("expected two fields (one per side of a-b), got %d: %v", len(snap.Fields), snap.Fields)
	}
}

func TestPlanaritySweepRemovesCrossingLink(t *testing.T) {
	portals := []ingresslapse.Portal{
		{ID: "a", Lat: 0, Lng: 0},
		{ID: "b", Lat: 0, Lng: 10},
		{ID: "c", Lat: 10, Lng: 0},
		{ID: "d", Lat: -10, Lng: 10},
	}
	s := New(portals)
	for _, id := range []ingresslapse.PortalID{"a", "b", "c", "d"} {
		s.ProcessAction(capture(id, ingresslapse.Resistance))
	}
	// c-d diagonal-ish link first.
	s.ProcessAction(link("c", "d", ingresslapse.Resistance))
	if len(s.Snapshot().Links) != 1 {
		t.Fatal("expected one link before crossing")
	}

	// a-b properly crosses c-d given these coordinates.
	s.ProcessAction(link("a", "b", ingresslapse.Resistance))

	snap := s.Snapshot()
	if len(snap.Links) != 1 {
		t.Fatalf("expected planarity sweep to leave exactly the new link, got %v", snap.Links)
	}
	if snap.Links[0].A != "a" && snap.Links[0].B != "a" {
		t.Errorf("expected surviving link to be the newly created one, got %v", snap.Links)
	}
}

func TestResonatorDecayNeutralizes(t *testing.T) {
	s := New(square())
	s.ProcessAction(capture("a", ingresslapse.Resistance))

	destroy := ingresslapse.Action{Type: ingresslapse.TypeReso, Verb: ingresslapse.VerbDestroy, PortalID: "a"}
	changed := s.ProcessAction(destroy)
	if !changed {
		t.Fatal("expected resonator destruction bringing count to 0 to be visible")
	}

	snap := s.Snapshot()
	for _, p := range snap.Portals {
		if p.ID == "a" && p.Team != ingresslapse.Neutral {
			t.Errorf("expected portal to revert to NEUTRAL at zero resonators, got %v", p.Team)
		}
	}
}

func TestIdempotentReplay(t *testing.T) {
	actions := []ingresslapse.Action{
		capture("a", ingresslapse.Resistance),
		capture("b", ingresslapse.Resistance),
		link("a", "b", ingresslapse.Resistance),
	}

	s1 := New(square())
	for _, a := range actions {
		s1.ProcessAction(a)
	}
	s2 := New(square())
	for _, a := range actions {
		s2.ProcessAction(a)
	}

	snap1, snap2 := s1.Snapshot(), s2.Snapshot()
	if len(snap1.Links) != len(snap2.Links) || len(snap1.Portals) != len(snap2.Portals) {
		t.Fatalf("expected identical replay of the same action sequence to produce identical state")
	}
}

func TestExplicitLinkDestroy(t *testing.T) {
	s := New(square())
	s.ProcessAction(capture("a", ingresslapse.Resistance))
	s.ProcessAction(capture("b", ingresslapse.Resistance))
	s.ProcessAction(link("a", "b", ingresslapse.Resistance))

	destroy := ingresslapse.Action{Type: ingresslapse.TypeLink, Verb: ingresslapse.VerbDestroy, PortalID: "a", TargetPortalID: "b"}
	if !s.ProcessAction(destroy) {
		t.Fatal("expected explicit link destroy to be visible")
	}
	if len(s.Snapshot().Links) != 0 {
		t.Error("expected link to be removed")
	}
}

func TestBattleBeaconOutcome(t *testing.T) {
	s := New(square())
	s.ProcessAction(capture("a", ingresslapse.Resistance))
	s.ProcessAction(capture("b", ingresslapse.Resistance))
	s.ProcessAction(link("a", "b", ingresslapse.Resistance))

	won := ingresslapse.Action{Type: ingresslapse.TypeBattleBeacon, Verb: ingresslapse.VerbWonENL, PortalID: "a"}
	if !s.ProcessAction(won) {
		t.Fatal("expected beacon loss to be visible")
	}
	snap := s.Snapshot()
	if len(snap.Links) != 0 {
		t.Error("expected beacon loss to strip incident links")
	}
	for _, p := range snap.Portals {
		if p.ID == "a" && p.Team != ingresslapse.Enlightened {
			t.Errorf("expected portal to flip to the winning faction, got %v", p.Team)
		}
	}
}
