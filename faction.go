// Package ingresslapse reconstructs and renders the territorial history of
// an Ingress-style activity feed: portals, links, and the control fields
// they form, replayed action-by-action from a captured event log.
package ingresslapse

import (
	"bytes"
	"fmt"
)

// Faction identifies which side controls a portal, link, or field.
//
// Neutral is the zero value so a freshly constructed Portal starts
// unowned, matching the simulator's initialization rule that every
// portal begins at Neutral with zero resonators.
type Faction uint8

const (
	Neutral Faction = iota
	Resistance
	Enlightened

	// Machina is recognized when decoding a snapshot for rendering but is
	// never produced by the simulator; no feed event assigns it.
	Machina
)

func (f Faction) String() string {
	switch f {
	case Neutral:
		return "NEUTRAL"
	case Resistance:
		return "RES"
	case Enlightened:
		return "ENL"
	case Machina:
		return "MACHINA"
	default:
		return fmt.Sprintf("Faction(%d)", uint8(f))
	}
}

func (f Faction) MarshalJSON() ([]byte, error) {
	return []byte(`"` + f.String() + `"`), nil
}

func (f *Faction) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	switch string(data) {
	case "NEUTRAL", "":
		*f = Neutral
	case "RES":
		*f = Resistance
	case "ENL":
		*f = Enlightened
	case "MACHINA":
		*f = Machina
	default:
		return fmt.Errorf("ingresslapse.Faction.UnmarshalJSON: invalid value %q", data)
	}
	return nil
}

// ParseFactionTag maps the feed's PLAYER/FACTION markup team strings to a Faction.
// Unrecognized values return Neutral and false so callers can treat the action
// as lacking a usable faction tag, per the normalizer's parse-ambiguity rules.
func ParseFactionTag(team string) (Faction, bool) {
	switch team {
	case "RESISTANCE":
		return Resistance, true
	case "ENLIGHTENED":
		return Enlightened, true
	default:
		return Neutral, false
	}
}
