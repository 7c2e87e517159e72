package feed

import (
	"strings"

	"github.com/mhansen/ingresslapse"
)

// dropPhrases are exact substrings that mark a record as benign chatter
// with no simulator-relevant effect. Checked before classification.
var dropPhrases = []string{
	"is under attack by",
	"Your Kinetic Capsule now ready",
	"Drone returned",
}

// Normalize converts one raw feed record into a normalized Action plus any
// portal catalog records the record mentioned. ok is false for records that
// match a drop rule; all other records normalize successfully, falling back
// to an unknown action/type when classification or faction extraction fails,
// per the parse-ambiguity error handling policy.
func Normalize(r RawRecord) (action ingresslapse.Action, portals []ingresslapse.Portal, ok bool) {
	for _, phrase := range dropPhrases {
		if strings.Contains(r.Plext.Text, phrase) {
			return ingresslapse.Action{}, nil, false
		}
	}

	portals = extractPortals(r.Plext.Markup)

	action = ingresslapse.Action{
		ID:          ingresslapse.ActionID(r.EventID),
		TimestampMs: r.TimestampMs,
		Type:        ingresslapse.TypeUnknown,
		Verb:        ingresslapse.VerbUnknown,
	}
	if len(portals) > 0 {
		action.PortalID = portals[0].ID
	}
	if len(portals) > 1 {
		action.TargetPortalID = portals[1].ID
	}

	text := r.Plext.Text
	switch {
	case strings.Contains(text, "destroyed"):
		action.Type = destroySubtype(text)
		action.Verb = ingresslapse.VerbDestroy

	case strings.Contains(text, "neutralized by"):
		action.Type = ingresslapse.TypePortal
		action.Verb = ingresslapse.VerbDestroy

	case strings.Contains(text, "won a CAT-"):
		action.Type = ingresslapse.TypeBattleBeacon
		if f, found := factionFromTag(r.Plext.Markup); found {
			action.Verb = ingresslapse.VerbFor("won", f)
		}

	case strings.Contains(text, "deployed"):
		action.Type = ingresslapse.TypeReso
		if f, found := playerFaction(r.Plext.Markup); found {
			action.Verb = ingresslapse.VerbFor("deploy", f)
		}

	case strings.Contains(text, "linked"):
		action.Type = ingresslapse.TypeLink
		if f, found := playerFaction(r.Plext.Markup); found {
			action.Verb = ingresslapse.VerbFor("link", f)
		}

	case strings.Contains(text, "created a Control Field"):
		action.Type = ingresslapse.TypeField
		if f, found := playerFaction(r.Plext.Markup); found {
			action.Verb = ingresslapse.VerbFor("field", f)
		}

	case strings.Contains(text, "captured"):
		action.Type = ingresslapse.TypePortal
		if f, found := playerFaction(r.Plext.Markup); found {
			action.Verb = ingresslapse.VerbFor("captured", f)
		}
	}

	return action, portals, true
}

// destroySubtype infers which kind of object a "destroyed" event concerns
// from nearby keywords, since the feed reports destruction generically.
func destroySubtype(text string) ingresslapse.ActionType {
	switch {
	case strings.Contains(text, "Resonator"):
		return ingresslapse.TypeReso
	case strings.Contains(text, "Link"):
		return ingresslapse.TypeLink
	case strings.Contains(text, "Control Field"):
		return ingresslapse.TypeField
	case strings.Contains(text, "Mod"):
		return ingresslapse.TypeMod
	default:
		return ingresslapse.TypeUnknown
	}
}

// playerFaction finds the first PLAYER tag and maps its team to a Faction.
func playerFaction(markup []MarkupTag) (ingresslapse.Faction, bool) {
	for _, m := range markup {
		if m.Kind == "PLAYER" {
			return ingresslapse.ParseFactionTag(m.Team)
		}
	}
	return ingresslapse.Neutral, false
}

// factionFromTag finds the first FACTION tag and maps its team to a Faction;
// used for battle-beacon outcomes, which tag the winning faction directly
// rather than via a PLAYER tag.
func factionFromTag(markup []MarkupTag) (ingresslapse.Faction, bool) {
	for _, m := range markup {
		if m.Kind == "FACTION" {
			return ingresslapse.ParseFactionTag(m.Team)
		}
	}
	return ingresslapse.Neutral, false
}

// extractPortals takes the first two PORTAL tags in markup order and
// converts them into portal catalog records.
func extractPortals(markup []MarkupTag) []ingresslapse.Portal {
	var portals []ingresslapse.Portal
	for _, m := range markup {
		if m.Kind != "PORTAL" {
			continue
		}
		team, _ := ingresslapse.ParseFactionTag(m.Team)
		portals = append(portals, ingresslapse.Portal{
			ID:      ingresslapse.PortalID(m.Guid),
			Lat:     float64(m.LatE6) / 1_000_000,
			Lng:     float64(m.LngE6) / 1_000_000,
			Name:    m.Name,
			Address: m.Address,
			Team:    team,
		})
		if len(portals) == 2 {
			break
		}
	}
	return portals
}
