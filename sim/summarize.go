package sim

import (
	"github.com/Travis-Britz/structures/stack"
	"github.com/mhansen/ingresslapse"
)

// FactionSummary is one faction's contribution to a TerritorySummary.
type FactionSummary struct {
	Portals   int
	Links     int
	Fields    int
	Isolated  int // portals with no incident link
	Connected int // portals that are part of some linked cluster
}

// TerritorySummary is a per-faction analytics view over a snapshot. It is
// not part of the replayed world state itself — no processAction call ever
// produces or consumes one — it exists purely so a caller can print a
// summary alongside a rendered frame.
type TerritorySummary struct {
	Factions map[ingresslapse.Faction]*FactionSummary
}

// portalNode is the traversal node used to find connected clusters of
// same-faction, linked portals.
type portalNode struct {
	id        ingresslapse.PortalID
	team      ingresslapse.Faction
	neighbors []*portalNode
}

// Summarize builds the portal/link adjacency graph for a snapshot and
// walks it with an iterative stack-based traversal to bucket portals into
// per-faction isolated and connected counts, alongside raw link/field
// tallies.
func Summarize(snap StateSnapshot) TerritorySummary {
	summary := TerritorySummary{Factions: map[ingresslapse.Faction]*FactionSummary{}}

	get := func(f ingresslapse.Faction) *FactionSummary {
		fs, ok := summary.Factions[f]
		if !ok {
			fs = &FactionSummary{}
			summary.Factions[f] = fs
		}
		return fs
	}

	nodes := make(map[ingresslapse.PortalID]*portalNode, len(snap.Portals))
	for _, p := range snap.Portals {
		nodes[p.ID] = &portalNode{id: p.ID, team: p.Team}
		get(p.Team).Portals++
	}

	for _, l := range snap.Links {
		a, okA := nodes[l.A]
		b, okB := nodes[l.B]
		if !okA || !okB {
			continue
		}
		a.neighbors = append(a.neighbors, b)
		b.neighbors = append(b.neighbors, a)
		get(a.team).Links++
	}

	for _, f := range snap.Fields {
		get(f.Team).Fields++
	}

	visited := make(map[ingresslapse.PortalID]bool, len(nodes))
	frontier := &stack.Stack[*portalNode]{}

	for _, start := range nodes {
		if visited[start.id] {
			continue
		}
		if len(start.neighbors) == 0 {
			visited[start.id] = true
			get(start.team).Isolated++
			continue
		}

		visited[start.id] = true
		get(start.team).Connected++
		for current, more := start, true; more; current, more = frontier.Pop() {
			for _, next := range current.neighbors {
				if visited[next.id] {
					continue
				}
				visited[next.id] = true
				get(next.team).Connected++
				frontier.Push(next)
			}
		}
	}

	return summary
}
