package history

import (
	"database/sql"
	"fmt"

	"github.com/mhansen/ingresslapse"
)

// SavePage persists one ingested page of actions and the portals its markup
// mentioned, in a single transaction. Rows that already exist (by primary
// key) are left untouched, so re-ingesting an overlapping page is a no-op
// for rows already stored.
func (s *Store) SavePage(actions []ingresslapse.Action, portals []ingresslapse.Portal) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("history.SavePage: begin: %w", err)
	}
	defer tx.Rollback()

	portalStmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO portals (id, lat, lng, name, address, team)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("history.SavePage: prepare portal insert: %w", err)
	}
	defer portalStmt.Close()

	for _, p := range portals {
		if _, err := portalStmt.Exec(p.ID, p.Lat, p.Lng, p.Name, p.Address, p.Team.String()); err != nil {
			return fmt.Errorf("history.SavePage: insert portal %s: %w", p.ID, err)
		}
	}

	actionStmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO actions (id, timestamp_ms, type, verb, portal_id, target_portal_id)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("history.SavePage: prepare action insert: %w", err)
	}
	defer actionStmt.Close()

	for _, a := range actions {
		if _, err := actionStmt.Exec(a.ID, a.TimestampMs, a.Type.String(), a.Verb.String(), a.PortalID, a.TargetPortalID); err != nil {
			return fmt.Errorf("history.SavePage: insert action %s: %w", a.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("history.SavePage: commit: %w", err)
	}
	return nil
}

// Portals returns every portal in the catalog, in no particular order.
func (s *Store) Portals() ([]ingresslapse.Portal, error) {
	rows, err := s.db.Query(`SELECT id, lat, lng, name, address, team FROM portals`)
	if err != nil {
		return nil, fmt.Errorf("history.Portals: %w", err)
	}
	defer rows.Close()

	var portals []ingresslapse.Portal
	for rows.Next() {
		var p ingresslapse.Portal
		var team string
		if err := rows.Scan(&p.ID, &p.Lat, &p.Lng, &p.Name, &p.Address, &team); err != nil {
			return nil, fmt.Errorf("history.Portals: scan: %w", err)
		}
		if err := p.Team.UnmarshalJSON([]byte(`"` + team + `"`)); err != nil {
			return nil, fmt.Errorf("history.Portals: decode team %q: %w", team, err)
		}
		portals = append(portals, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history.Portals: %w", err)
	}
	return portals, nil
}

// Actions returns every action with timestamp_ms in [sinceMs, untilMs),
// ordered by timestamp, with ties broken by insertion order, matching feed
// playback order for records sharing a timestamp.
func (s *Store) Actions(sinceMs, untilMs int64) ([]ingresslapse.Action, error) {
	rows, err := s.db.Query(`
		SELECT id, timestamp_ms, type, verb, portal_id, target_portal_id
		FROM actions
		WHERE timestamp_ms >= ? AND timestamp_ms < ?
		ORDER BY timestamp_ms ASC, rowid ASC`, sinceMs, untilMs)
	if err != nil {
		return nil, fmt.Errorf("history.Actions: %w", err)
	}
	defer rows.Close()

	var actions []ingresslapse.Action
	for rows.Next() {
		var a ingresslapse.Action
		var typ, verb string
		var portalID, targetID sql.NullString
		if err := rows.Scan(&a.ID, &a.TimestampMs, &typ, &verb, &portalID, &targetID); err != nil {
			return nil, fmt.Errorf("history.Actions: scan: %w", err)
		}
		if err := a.Type.UnmarshalJSON([]byte(`"` + typ + `"`)); err != nil {
			return nil, fmt.Errorf("history.Actions: decode type %q: %w", typ, err)
		}
		if err := a.Verb.UnmarshalJSON([]byte(`"` + verb + `"`)); err != nil {
			return nil, fmt.Errorf("history.Actions: decode verb %q: %w", verb, err)
		}
		a.PortalID = ingresslapse.PortalID(portalID.String)
		a.TargetPortalID = ingresslapse.PortalID(targetID.String)
		actions = append(actions, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history.Actions: %w", err)
	}
	return actions, nil
}
