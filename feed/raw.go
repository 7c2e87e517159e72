// Package feed normalizes the Ingress public activity feed's raw,
// newest-first event records into the closed ingresslapse.Action vocabulary.
package feed

import (
	"encoding/json"
	"fmt"
)

// RawRecord is a single entry from the upstream feed's "result" array:
// a 3-tuple of [event_id, timestamp_ms, {plext: {...}}].
//
// The feed hands back a heterogeneous JSON array rather than an object, so
// RawRecord implements json.Unmarshaler directly instead of relying on
// struct tags the way the teacher's flat, string-tagged Raw type does.
type RawRecord struct {
	EventID     string
	TimestampMs int64
	Plext       Plext
}

func (r *RawRecord) UnmarshalJSON(data []byte) error {
	var tuple [3]json.RawMessage
	if err := json.Unmarshal(data, &tuple); err != nil {
		return fmt.Errorf("feed.RawRecord.UnmarshalJSON: %w", err)
	}
	if err := json.Unmarshal(tuple[0], &r.EventID); err != nil {
		return fmt.Errorf("feed.RawRecord.UnmarshalJSON: event id: %w", err)
	}
	if err := json.Unmarshal(tuple[1], &r.TimestampMs); err != nil {
		return fmt.Errorf("feed.RawRecord.UnmarshalJSON: timestamp: %w", err)
	}
	var wrapper struct {
		Plext Plext `json:"plext"`
	}
	if err := json.Unmarshal(tuple[2], &wrapper); err != nil {
		return fmt.Errorf("feed.RawRecord.UnmarshalJSON: plext: %w", err)
	}
	r.Plext = wrapper.Plext
	return nil
}

// Plext is the per-event payload: a human-readable line plus the ordered,
// tagged markup it was rendered from.
type Plext struct {
	Markup []MarkupTag `json:"markup"`
	Text   string      `json:"text"`
}

// MarkupTag is one tagged tuple from a plext's markup array, shaped on the
// wire as a 2-element array: [kind, {fields...}].
type MarkupTag struct {
	Kind string

	Plain   string `json:"plain,omitempty"`
	Team    string `json:"team,omitempty"`
	Guid    string `json:"guid,omitempty"`
	Name    string `json:"name,omitempty"`
	Address string `json:"address,omitempty"`
	LatE6   int64  `json:"latE6,omitempty"`
	LngE6   int64  `json:"lngE6,omitempty"`
}

func (m *MarkupTag) UnmarshalJSON(data []byte) error {
	var tuple [2]json.RawMessage
	if err := json.Unmarshal(data, &tuple); err != nil {
		return fmt.Errorf("feed.MarkupTag.UnmarshalJSON: %w", err)
	}
	if err := json.Unmarshal(tuple[0], &m.Kind); err != nil {
		return fmt.Errorf("feed.MarkupTag.UnmarshalJSON: kind: %w", err)
	}
	fields := struct {
		Plain   string `json:"plain"`
		Team    string `json:"team"`
		Guid    string `json:"guid"`
		Name    string `json:"name"`
		Address string `json:"address"`
		LatE6   int64  `json:"latE6"`
		LngE6   int64  `json:"lngE6"`
	}{}
	if err := json.Unmarshal(tuple[1], &fields); err != nil {
		return fmt.Errorf("feed.MarkupTag.UnmarshalJSON: fields: %w", err)
	}
	m.Plain = fields.Plain
	m.Team = fields.Team
	m.Guid = fields.Guid
	m.Name = fields.Name
	m.Address = fields.Address
	m.LatE6 = fields.LatE6
	m.LngE6 = fields.LngE6
	return nil
}

// FeedResponse is the upstream POST endpoint's decoded response body.
type FeedResponse struct {
	Result []RawRecord `json:"result"`
}
