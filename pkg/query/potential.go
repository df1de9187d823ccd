package query

// Potential provides an admissible, consistent lower-bound heuristic on the
// remaining static distance to a fixed target, built from a CCH's
// elimination tree: the classic CH-potential / ALT-style trick of reusing
// the already-computed upward search to a landmark instead of running one
// per query.
//
// For a target t with elimination-tree ancestors A(t), and any node v with
// ancestors A(v), the potential at v is
//
//	pi(v) = min over w in A(v) ∩ A(t) of (dist(v, w) + dist(w, t))
//
// computed by walking v's own ancestor chain and, at each ancestor w,
// looking up the precomputed distance from w to t. This is exactly
// the "CH witness search with the target's upward search already known"
// potential used to steer an A* search over the original graph instead of
// blindly running Dijkstra.
type Potential struct {
	engine     *StaticEngine
	targetDist map[uint32]uint32 // rank -> static distance from target's ancestor w to target
	target     uint32            // rank
}

// NewPotential precomputes the backward distances to target from every one
// of its own elimination-tree ancestors, the only information a forward
// query against this fixed target will ever need.
func NewPotential(e *StaticEngine, targetNode uint32) *Potential {
	rt := e.order.Rank[targetNode]
	dists := make(map[uint32]uint32)
	e.c.Ancestors(rt, func(w uint32) {
		if w == rt {
			dists[w] = 0
			return
		}
		idx, ok := e.c.ArcIndex(minRank(rt, w), maxRank2(rt, w))
		if !ok {
			return
		}
		forward := rt < w
		if forward {
			dists[w] = e.s.Down[idx]
		} else {
			dists[w] = e.s.Up[idx]
		}
	})
	return &Potential{engine: e, targetDist: dists, target: rt}
}

// Estimate returns a lower bound on the remaining distance from node to the
// potential's fixed target, and false if no common ancestor was found (the
// heuristic degrades to zero, still admissible, in that case).
func (p *Potential) Estimate(node uint32) (uint32, bool) {
	rv := p.engine.order.Rank[node]
	best := infWeight
	found := false
	p.engine.c.Ancestors(rv, func(w uint32) {
		distFromTarget, ok := p.targetDist[w]
		if !ok {
			return
		}
		idx, ok := p.engine.c.ArcIndex(minRank(rv, w), maxRank2(rv, w))
		var distFromV uint32
		if rv == w {
			distFromV = 0
		} else if ok {
			if rv < w {
				distFromV = p.engine.s.Up[idx]
			} else {
				distFromV = p.engine.s.Down[idx]
			}
		} else {
			return
		}
		if distFromV == infWeight || distFromTarget == infWeight {
			return
		}
		total := distFromV + distFromTarget
		if total < best {
			best = total
			found = true
		}
	})
	if !found {
		return 0, false
	}
	return best, true
}

func minRank(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}

func maxRank2(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}
