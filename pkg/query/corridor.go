// Package query implements the three point-to-point query variants the
// engine serves: a time-dependent CCH query (the primary one, evaluating
// travel time at an actual departure time), a static scalar CCH query
// (the calibration/distance variant), and a CH-potential lower bound used
// to guide an A*-style search.
//
// All three share the same trick: a shortest path between two nodes in a
// CCH never needs to leave the union of their elimination-tree ancestor
// paths (the "corridor"), since every up-neighbor any corridor node has is
// itself one of its ancestors. Search is restricted to that small node set
// instead of the whole graph.
package query

import (
	"tdcch/pkg/bits"
	"tdcch/pkg/cch"
)

// Corridor returns every node on the elimination-tree path from rs to the
// root, or from rt to the root (ranks, not original node ids), deduplicated.
func Corridor(c *cch.CCH, rs, rt uint32) []uint32 {
	seen := make(map[uint32]bool)
	var nodes []uint32
	add := func(v uint32) {
		if !seen[v] {
			seen[v] = true
			nodes = append(nodes, v)
		}
	}
	c.Ancestors(rs, add)
	c.Ancestors(rt, add)
	return nodes
}

// corridorArc is one directed hop within the corridor subgraph: the CCH
// arc between two corridor nodes, traversed in either the up or the down
// direction.
type corridorArc struct {
	to      uint32
	arcIdx  uint32
	forward bool // true: traversing this CCH arc low->high rank (Up weight); false: high->low (Down weight)
}

// markCorridor clears mask and sets exactly the ranks in nodes, turning it
// into the per-query "edges_allowed" bitmap corridorAdjacency restricts
// the search to: an arc is only ever traversed if both endpoints' ranks
// are set.
func markCorridor(mask *bits.RankSelectMap, nodes []uint32) {
	mask.Clear()
	for _, v := range nodes {
		mask.Set(v)
	}
}

// corridorAdjacency builds, for every node in the corridor, the list of
// corridor neighbors reachable via a single CCH arc in either direction.
// mask must already hold exactly the corridor's ranks (see markCorridor).
func corridorAdjacency(c *cch.CCH, nodes []uint32, mask *bits.RankSelectMap) map[uint32][]corridorArc {
	adj := make(map[uint32][]corridorArc, len(nodes))
	for _, v := range nodes {
		for _, w := range c.UpRange(v) {
			if !mask.Test(w) {
				continue
			}
			idx, ok := c.ArcIndex(v, w)
			if !ok {
				continue
			}
			adj[v] = append(adj[v], corridorArc{to: w, arcIdx: idx, forward: true})
			adj[w] = append(adj[w], corridorArc{to: v, arcIdx: idx, forward: false})
		}
	}
	return adj
}
