package query

import (
	"tdcch/pkg/bits"
	"tdcch/pkg/cch"
	"tdcch/pkg/customize"
	"tdcch/pkg/graph"
	"tdcch/pkg/shortcut"
)

// unreachableDist is the threshold above which an accumulated arrival time
// is treated as having crossed only never-customized arcs rather than
// reflecting a real route; see customize.Unreachable.
const unreachableDist = customize.Unreachable / 2

// TDEngine answers time-dependent point-to-point queries against a
// customized CCH.
type TDEngine struct {
	c     *cch.CCH
	td    *customize.TD
	order graph.NodeOrder

	// Scratch space reused across queries: generation-stamped vectors reset
	// in O(1) instead of allocating a fresh map per query, and a pair of
	// rank-universe bitmaps stand in for the corridor membership test and
	// the unpacking cycle guard.
	dist       []float64
	distSet    *bits.TimestampedVector
	prevNode   *bits.TimestampedVector
	prevArc    []corridorArc
	settled    *bits.TimestampedVector
	corridorIn *bits.RankSelectMap
	heap       *bits.IndexedFloatHeap
	unpacking  *bits.RankSelectMap
}

// NewTDEngine builds a query engine over an already-customized CCH.
func NewTDEngine(c *cch.CCH, td *customize.TD) *TDEngine {
	n := c.NumNodes
	numArcs := uint32(len(c.UpHead))
	return &TDEngine{
		c:          c,
		td:         td,
		order:      c.Order,
		dist:       make([]float64, n),
		distSet:    bits.NewTimestampedVector(n, 0),
		prevNode:   bits.NewTimestampedVector(n, 0),
		prevArc:    make([]corridorArc, n),
		settled:    bits.NewTimestampedVector(n, 0),
		corridorIn: bits.NewRankSelectMap(n),
		heap:       bits.NewIndexedFloatHeap(n),
		unpacking:  bits.NewRankSelectMap(2 * numArcs),
	}
}

// TDResult is the outcome of a time-dependent query: the arrival time and
// the sequence of original node ids the best path visits, in order.
type TDResult struct {
	ArrivalTime float64
	Path        []uint32 // original node ids, source first, target last
}

// Query finds the fastest way from sourceNode to targetNode (original node
// ids) departing at tau. The search is restricted to the elimination-tree
// corridor between them (see Corridor); the winning sequence of CCH arcs
// is then recursively unpacked into the concrete original-edge path.
func (e *TDEngine) Query(sourceNode, targetNode uint32, tau float64) (TDResult, bool) {
	rs := e.order.Rank[sourceNode]
	rt := e.order.Rank[targetNode]
	if rs == rt {
		return TDResult{ArrivalTime: tau, Path: []uint32{sourceNode}}, true
	}

	corridor := Corridor(e.c, rs, rt)
	markCorridor(e.corridorIn, corridor)
	adj := corridorAdjacency(e.c, corridor, e.corridorIn)

	e.distSet.Reset()
	e.prevNode.Reset()
	e.settled.Reset()
	e.heap.Clear()

	e.dist[rs] = tau
	e.distSet.Set(rs, 1)
	e.heap.Push(bits.FloatEntry{Key: tau, Node: rs})

	for e.heap.Len() > 0 {
		top, _ := e.heap.Pop()
		v := top.Node
		if e.settled.IsSet(v) {
			continue
		}
		e.settled.Set(v, 1)
		if v == rt {
			break
		}
		for _, arc := range adj[v] {
			weight := e.evalHop(arc.arcIdx, arc.forward, e.dist[v])
			cand := e.dist[v] + weight
			if !e.distSet.IsSet(arc.to) || cand < e.dist[arc.to] {
				e.dist[arc.to] = cand
				e.distSet.Set(arc.to, 1)
				e.prevNode.Set(arc.to, v)
				e.prevArc[arc.to] = arc
				if e.heap.Contains(arc.to) {
					e.heap.DecreaseKey(bits.FloatEntry{Key: cand, Node: arc.to})
				} else {
					e.heap.Push(bits.FloatEntry{Key: cand, Node: arc.to})
				}
			}
		}
	}
	e.heap.Clear()

	if !e.distSet.IsSet(rt) || e.dist[rt] >= unreachableDist {
		return TDResult{}, false
	}

	e.unpacking.Clear()
	var ranks []uint32
	for r := rt; r != rs; {
		arc := e.prevArc[r]
		depTime := e.dist[e.prevNode.Get(r)]
		middle := e.unpack(arc.arcIdx, arc.forward, depTime)
		ranks = append(ranks, r)
		ranks = append(ranks, reversed(middle)...)
		r = e.prevNode.Get(r)
	}
	ranks = append(ranks, rs)
	reverseRanks(ranks)

	path := make([]uint32, len(ranks))
	for i, r := range ranks {
		path[i] = e.order.Order[r]
	}
	return TDResult{ArrivalTime: e.dist[rt], Path: path}, true
}

// evalHop evaluates the travel time of CCH arc idx, traversed forward
// (low-rank to high-rank, the Up weight) or backward (the Down weight), at
// departure time t.
func (e *TDEngine) evalHop(idx uint32, forward bool, t float64) float64 {
	if forward {
		return e.td.Up[idx].Eval(t)
	}
	return e.td.Down[idx].Eval(t)
}

// unpackID packs a CCH arc and traversal direction into a single id over
// [0, 2*numArcs), the dense universe e.unpacking is sized to.
func unpackID(idx uint32, forward bool) uint32 {
	if forward {
		return idx * 2
	}
	return idx*2 + 1
}

// unpack expands a single CCH hop traversed at departure time t into the
// rank sequence of intermediate nodes it passes through (excluding both of
// the hop's own endpoints), recursing through Via shortcuts down to
// original edges. e.unpacking tracks which (arc, direction) pairs are
// currently being expanded on the call stack, so a malformed or cyclic
// shortcut chain terminates instead of recursing forever.
func (e *TDEngine) unpack(idx uint32, forward bool, t float64) []uint32 {
	id := unpackID(idx, forward)
	if e.unpacking.Test(id) {
		return nil
	}
	e.unpacking.Set(id)
	defer e.unpacking.Unset(id)

	var src shortcut.Sources
	if forward {
		src = e.td.UpSrc[idx]
	} else {
		src = e.td.DownSrc[idx]
	}
	s := src.At(t)
	if s.Kind == shortcut.Original {
		return nil
	}
	via := s.Node

	low, high := e.c.ArcEndpoints(idx)
	entry, exit := low, high
	if !forward {
		entry, exit = high, low
	}

	firstIdx, firstFwd, ok1 := e.arcBetween(entry, via)
	secondIdx, secondFwd, ok2 := e.arcBetween(via, exit)
	if !ok1 || !ok2 {
		// Topology guarantees this shortcut's via-node triangle exists;
		// falling back to treating it as opaque avoids a crash if it doesn't.
		return []uint32{via}
	}

	first := e.unpack(firstIdx, firstFwd, t)
	tAtVia := t + e.evalHop(firstIdx, firstFwd, t)
	second := e.unpack(secondIdx, secondFwd, tAtVia)

	out := make([]uint32, 0, len(first)+1+len(second))
	out = append(out, first...)
	out = append(out, via)
	out = append(out, second...)
	return out
}

// arcBetween returns the CCH arc index connecting a and b and whether
// traversing a->b on it is the forward (low->high) direction.
func (e *TDEngine) arcBetween(a, b uint32) (idx uint32, forward bool, ok bool) {
	if a < b {
		idx, ok = e.c.ArcIndex(a, b)
		return idx, true, ok
	}
	idx, ok = e.c.ArcIndex(b, a)
	return idx, false, ok
}

func reversed(s []uint32) []uint32 {
	out := make([]uint32, len(s))
	for i, v := range s {
		out[len(s)-1-i] = v
	}
	return out
}

func reverseRanks(s []uint32) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
