package cch

import (
	"sort"

	"tdcch/pkg/graph"
)

// CCH is the topology-only output of contracting a graph along a fixed node
// order: the set of arcs a customization pass must assign weights to, plus
// the elimination tree that the query phase walks. Everything here is
// metric-independent; swapping in a different edge weighting (static,
// time-dependent, a live update) never touches this structure.
//
// Arcs are stored once, in rank space, from the lower-ranked endpoint to
// the higher-ranked one: UpFirstOut/UpHead behave exactly like a CSR graph
// where node ids are ranks and every arc points to a strictly greater rank.
// A customization pass keeps two parallel weight arrays indexed the same
// way (upward weight, downward weight) rather than storing the topology
// twice.
type CCH struct {
	Order      graph.NodeOrder
	NumNodes   uint32
	UpFirstOut []uint32 // len NumNodes+1, indexed by rank
	UpHead     []uint32 // neighbor ranks (the high-rank endpoint), sorted ascending within each node's range
	ArcLow     []uint32 // same length as UpHead: the low-rank endpoint of each arc
	Parent     []uint32 // elimination tree parent in rank space; Parent[r] == r at a root
}

// Contract builds the CCH arc set for g under the given order: for every
// node, in ascending rank, every pair of its still-uncontracted neighbors
// is connected (a shortcut, if not already an original edge), exactly the
// way the teacher's classical contractor finds fill-in — except here every
// pair is connected unconditionally, with no witness search deciding a
// shortcut is unnecessary. Customization later decides which connections
// carry a finite weight and which stay at infinity; the topology has to
// allow for all of them up front.
func Contract(g *graph.StaticGraph, order graph.NodeOrder) *CCH {
	n := g.NumNodes
	neighbors := make([]map[uint32]bool, n)
	for r := range neighbors {
		neighbors[r] = make(map[uint32]bool)
	}

	for u := uint32(0); u < n; u++ {
		ru := order.Rank[u]
		start, end := g.EdgesFrom(u)
		for e := start; e < end; e++ {
			v := g.Head[e]
			if v == u {
				continue
			}
			rv := order.Rank[v]
			neighbors[ru][rv] = true
			neighbors[rv][ru] = true
		}
	}

	contracted := make([]bool, n)
	for r := uint32(0); r < n; r++ {
		live := make([]uint32, 0, len(neighbors[r]))
		for w := range neighbors[r] {
			if !contracted[w] {
				live = append(live, w)
			}
		}
		for i := range live {
			for j := i + 1; j < len(live); j++ {
				x, y := live[i], live[j]
				neighbors[x][y] = true
				neighbors[y][x] = true
			}
		}
		contracted[r] = true
	}

	upFirstOut := make([]uint32, n+1)
	upNeighborsByRank := make([][]uint32, n)
	totalUp := uint32(0)
	for r := uint32(0); r < n; r++ {
		up := make([]uint32, 0)
		for w := range neighbors[r] {
			if w > r {
				up = append(up, w)
			}
		}
		sort.Slice(up, func(i, j int) bool { return up[i] < up[j] })
		upNeighborsByRank[r] = up
		upFirstOut[r+1] = upFirstOut[r] + uint32(len(up))
		totalUp += uint32(len(up))
	}

	upHead := make([]uint32, 0, totalUp)
	arcLow := make([]uint32, 0, totalUp)
	for r := uint32(0); r < n; r++ {
		upHead = append(upHead, upNeighborsByRank[r]...)
		for range upNeighborsByRank[r] {
			arcLow = append(arcLow, r)
		}
	}

	parent := make([]uint32, n)
	for r := uint32(0); r < n; r++ {
		if len(upNeighborsByRank[r]) == 0 {
			parent[r] = r
		} else {
			parent[r] = upNeighborsByRank[r][0] // smallest rank strictly greater than r
		}
	}

	return &CCH{
		Order:      order,
		NumNodes:   n,
		UpFirstOut: upFirstOut,
		UpHead:     upHead,
		ArcLow:     arcLow,
		Parent:     parent,
	}
}

// ArcEndpoints returns the (low-rank, high-rank) endpoints of CCH arc idx.
func (c *CCH) ArcEndpoints(idx uint32) (low, high uint32) {
	return c.ArcLow[idx], c.UpHead[idx]
}

// UpRange returns the slice of UpHead holding r's up-neighbors.
func (c *CCH) UpRange(r uint32) []uint32 {
	return c.UpHead[c.UpFirstOut[r]:c.UpFirstOut[r+1]]
}

// ArcIndex returns the index into the per-arc weight arrays for the CCH arc
// (r, neighbor), and false if r and neighbor are not connected (neighbor
// must have a strictly greater rank than r).
func (c *CCH) ArcIndex(r, neighbor uint32) (uint32, bool) {
	lo, hi := c.UpFirstOut[r], c.UpFirstOut[r+1]
	head := c.UpHead[lo:hi]
	i := sort.Search(len(head), func(i int) bool { return head[i] >= neighbor })
	if i < len(head) && head[i] == neighbor {
		return lo + uint32(i), true
	}
	return 0, false
}

// Ancestors calls visit for r and every elimination-tree ancestor up to and
// including the root, in that order.
func (c *CCH) Ancestors(r uint32, visit func(uint32)) {
	for {
		visit(r)
		p := c.Parent[r]
		if p == r {
			return
		}
		r = p
	}
}
