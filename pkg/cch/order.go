// Package cch builds a Customizable Contraction Hierarchy: a topology-only
// contraction of a road network driven by a node order, independent of any
// particular edge metric. The resulting arc set and elimination tree are
// reused across many metrics (static distance, a time-dependent profile, a
// live-updated one) without recontracting — only the numeric customization
// pass (package customize) needs to rerun when the metric changes.
package cch

import (
	"container/heap"

	"tdcch/pkg/graph"
)

// orderItem is one entry of the greedy elimination-order priority queue.
type orderItem struct {
	node     uint32
	priority int
	index    int // heap.Interface bookkeeping
}

type orderQueue []*orderItem

func (q orderQueue) Len() int            { return len(q) }
func (q orderQueue) Less(i, j int) bool  { return q[i].priority < q[j].priority }
func (q orderQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i]; q[i].index = i; q[j].index = j }
func (q *orderQueue) Push(x interface{}) { it := x.(*orderItem); it.index = len(*q); *q = append(*q, it) }
func (q *orderQueue) Pop() interface{} {
	old := *q
	n := len(old)
	it := old[n-1]
	*q = old[:n-1]
	return it
}

// ComputeOrder picks a contraction order for g using the same greedy
// edge-difference heuristic the teacher's classical contractor used to
// decide contraction priority, but stopping at the order itself: nothing
// is contracted here, no witness search runs, and no shortcuts are added.
// The order alone is independent of any edge weight, which is the point of
// separating CCH's topology phase from its numeric customization phase.
func ComputeOrder(g *graph.StaticGraph) graph.NodeOrder {
	n := g.NumNodes
	if n == 0 {
		return graph.NodeOrder{}
	}

	neighbors := buildAdjacency(g)
	contracted := make([]bool, n)

	priority := func(v uint32) int {
		return edgeDifference(neighbors, contracted, v) + 2*len(neighbors[v])
	}

	pq := make(orderQueue, 0, n)
	items := make([]*orderItem, n)
	for v := uint32(0); v < n; v++ {
		it := &orderItem{node: v, priority: priority(v)}
		items[v] = it
		pq = append(pq, it)
	}
	heap.Init(&pq)

	order := make([]uint32, 0, n)
	for pq.Len() > 0 {
		it := heap.Pop(&pq).(*orderItem)
		v := it.node
		if contracted[v] {
			continue
		}
		fresh := priority(v)
		if fresh > it.priority {
			it.priority = fresh
			heap.Push(&pq, it)
			continue
		}

		order = append(order, v)
		contracted[v] = true

		// Simulate the shortcuts this contraction would introduce so later
		// priorities reflect the fill-in, same as the teacher's contractor.
		live := liveNeighbors(neighbors, contracted, v)
		for i := range live {
			for j := i + 1; j < len(live); j++ {
				x, y := live[i], live[j]
				neighbors[x][y] = true
				neighbors[y][x] = true
			}
		}
	}

	return graph.NewNodeOrder(order)
}

func buildAdjacency(g *graph.StaticGraph) []map[uint32]bool {
	neighbors := make([]map[uint32]bool, g.NumNodes)
	for v := range neighbors {
		neighbors[v] = make(map[uint32]bool)
	}
	for u := uint32(0); u < g.NumNodes; u++ {
		start, end := g.EdgesFrom(u)
		for e := start; e < end; e++ {
			v := g.Head[e]
			if v == u {
				continue
			}
			neighbors[u][v] = true
			neighbors[v][u] = true
		}
	}
	return neighbors
}

func liveNeighbors(neighbors []map[uint32]bool, contracted []bool, v uint32) []uint32 {
	live := make([]uint32, 0, len(neighbors[v]))
	for w := range neighbors[v] {
		if !contracted[w] {
			live = append(live, w)
		}
	}
	return live
}

// edgeDifference estimates (future shortcuts) - (removed edges) for
// contracting v right now: the number of live-neighbor pairs not already
// connected, minus the number of live edges incident to v.
func edgeDifference(neighbors []map[uint32]bool, contracted []bool, v uint32) int {
	live := liveNeighbors(neighbors, contracted, v)
	newShortcuts := 0
	for i := range live {
		for j := i + 1; j < len(live); j++ {
			if !neighbors[live[i]][live[j]] {
				newShortcuts++
			}
		}
	}
	return newShortcuts - len(live)
}
