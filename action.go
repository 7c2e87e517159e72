package ingresslapse

import (
	"bytes"
	"fmt"
)

// ActionType classifies the kind of game object an Action concerns.
type ActionType uint8

const (
	TypeUnknown ActionType = iota
	TypePortal
	TypeLink
	TypeField
	TypeReso
	TypeMod
	TypeBattleBeacon
)

var actionTypeNames = map[ActionType]string{
	TypeUnknown:      "unknown",
	TypePortal:       "portal",
	TypeLink:         "link",
	TypeField:        "field",
	TypeReso:         "reso",
	TypeMod:          "mod",
	TypeBattleBeacon: "battlebeacon",
}

func (t ActionType) String() string { return actionTypeNames[t] }

func (t ActionType) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

func (t *ActionType) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	for id, name := range actionTypeNames {
		if string(data) == name {
			*t = id
			return nil
		}
	}
	return fmt.Errorf("ingresslapse.ActionType.UnmarshalJSON: invalid value %q", data)
}

// ActionVerb is the closed, post-normalization vocabulary of game verbs.
// Faction-specific verbs carry the acting faction as a "_RES"/"_ENL" suffix
// baked into the constant name; Verb and Faction together fully describe
// what happened.
type ActionVerb uint8

const (
	VerbUnknown ActionVerb = iota
	VerbCapturedRES
	VerbCapturedENL
	VerbDeployRES
	VerbDeployENL
	VerbLinkRES
	VerbLinkENL
	VerbFieldRES
	VerbFieldENL
	VerbDestroy
	VerbWonRES
	VerbWonENL
)

var actionVerbNames = map[ActionVerb]string{
	VerbUnknown:     "unknown",
	VerbCapturedRES: "captured_RES",
	VerbCapturedENL: "captured_ENL",
	VerbDeployRES:   "deploy_RES",
	VerbDeployENL:   "deploy_ENL",
	VerbLinkRES:     "link_RES",
	VerbLinkENL:     "link_ENL",
	VerbFieldRES:    "field_RES",
	VerbFieldENL:    "field_ENL",
	VerbDestroy:     "destroy",
	VerbWonRES:      "won_RES",
	VerbWonENL:      "won_ENL",
}

func (v ActionVerb) String() string { return actionVerbNames[v] }

func (v ActionVerb) MarshalJSON() ([]byte, error) {
	return []byte(`"` + v.String() + `"`), nil
}

func (v *ActionVerb) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	for id, name := range actionVerbNames {
		if string(data) == name {
			*v = id
			return nil
		}
	}
	return fmt.Errorf("ingresslapse.ActionVerb.UnmarshalJSON: invalid value %q", data)
}

// Faction returns the acting faction encoded in a faction-specific verb,
// and false for verbs that carry no faction (VerbDestroy, VerbUnknown).
func (v ActionVerb) Faction() (Faction, bool) {
	switch v {
	case VerbCapturedRES, VerbDeployRES, VerbLinkRES, VerbFieldRES, VerbWonRES:
		return Resistance, true
	case VerbCapturedENL, VerbDeployENL, VerbLinkENL, VerbFieldENL, VerbWonENL:
		return Enlightened, true
	default:
		return Neutral, false
	}
}

// VerbFor composes the faction-suffixed verb for a base action word
// ("captured", "deploy", "link", "field", "won") and an acting Faction.
// Returns VerbUnknown for any combination outside the closed vocabulary.
func VerbFor(base string, f Faction) ActionVerb {
	switch {
	case base == "captured" && f == Resistance:
		return VerbCapturedRES
	case base == "captured" && f == Enlightened:
		return VerbCapturedENL
	case base == "deploy" && f == Resistance:
		return VerbDeployRES
	case base == "deploy" && f == Enlightened:
		return VerbDeployENL
	case base == "link" && f == Resistance:
		return VerbLinkRES
	case base == "link" && f == Enlightened:
		return VerbLinkENL
	case base == "field" && f == Resistance:
		return VerbFieldRES
	case base == "field" && f == Enlightened:
		return VerbFieldENL
	case base == "won" && f == Resistance:
		return VerbWonRES
	case base == "won" && f == Enlightened:
		return VerbWonENL
	default:
		return VerbUnknown
	}
}

// ActionID is the feed's stable per-event identifier.
type ActionID string

// Action is a normalized, persisted, replayable event.
type Action struct {
	ID             ActionID   `json:"id"`
	TimestampMs    int64      `json:"timestamp"`
	Type           ActionType `json:"type"`
	Verb           ActionVerb `json:"action"`
	PortalID       PortalID   `json:"portal_id,omitempty"`
	TargetPortalID PortalID   `json:"target_portal_id,omitempty"`
}
