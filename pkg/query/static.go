package query

import (
	"tdcch/pkg/bits"
	"tdcch/pkg/cch"
	"tdcch/pkg/customize"
	"tdcch/pkg/graph"
)

// StaticEngine answers scalar point-to-point distance queries against a
// statically customized CCH: no departure time, a single best weight. Used
// for calibration queries and as the backing metric for the CH-potential
// heuristic.
type StaticEngine struct {
	c     *cch.CCH
	s     *customize.Static
	order graph.NodeOrder

	// Scratch space reused across queries, the same generation-stamped
	// vector + rank bitmap trick TDEngine uses; dist doubles as both the
	// distance value and its own "is this rank reached" flag: a slot not
	// written since the last Reset reads back as the infWeight default,
	// which never occurs as a real edge weight.
	dist       *bits.TimestampedVector
	settled    *bits.TimestampedVector
	corridorIn *bits.RankSelectMap
	heap       *bits.IndexedHeap
}

// NewStaticEngine builds a query engine over an already-customized CCH.
func NewStaticEngine(c *cch.CCH, s *customize.Static) *StaticEngine {
	n := c.NumNodes
	return &StaticEngine{
		c:          c,
		s:          s,
		order:      c.Order,
		dist:       bits.NewTimestampedVector(n, infWeight),
		settled:    bits.NewTimestampedVector(n, 0),
		corridorIn: bits.NewRankSelectMap(n),
		heap:       bits.NewIndexedHeap(n),
	}
}

const infWeight = ^uint32(0)

// Distance returns the shortest weight from sourceNode to targetNode, or
// false if they are disconnected.
func (e *StaticEngine) Distance(sourceNode, targetNode uint32) (uint32, bool) {
	rs := e.order.Rank[sourceNode]
	rt := e.order.Rank[targetNode]
	if rs == rt {
		return 0, true
	}

	corridor := Corridor(e.c, rs, rt)
	markCorridor(e.corridorIn, corridor)
	adj := corridorAdjacency(e.c, corridor, e.corridorIn)

	e.dist.Reset()
	e.settled.Reset()
	e.heap.Clear()

	e.dist.Set(rs, 0)
	e.heap.Push(bits.Entry{Key: 0, Node: rs})

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
		dv := e.dist.Get(v)
		if dv == infWeight {
			continue
		}
		for _, arc := range adj[v] {
			weight := e.hopWeight(arc.arcIdx, arc.forward)
			if weight == infWeight {
				continue
			}
			cand := dv + weight
			if cand < e.dist.Get(arc.to) {
				e.dist.Set(arc.to, cand)
				if e.heap.Contains(arc.to) {
					e.heap.DecreaseKey(bits.Entry{Key: cand, Node: arc.to})
				} else {
					e.heap.Push(bits.Entry{Key: cand, Node: arc.to})
				}
			}
		}
	}
	e.heap.Clear()

	if got := e.dist.Get(rt); got != infWeight {
		return got, true
	}
	return 0, false
}

func (e *StaticEngine) hopWeight(idx uint32, forward bool) uint32 {
	if forward {
		return e.s.Up[idx]
	}
	return e.s.Down[idx]
}
