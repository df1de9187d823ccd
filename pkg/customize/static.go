// Package customize turns a CCH's metric-independent arc topology into an
// actual routable metric: a weight (or, for the time-dependent variant, a
// travel-time function) per arc, computed by relaxing every contraction
// triangle exactly once per node, in rank order. This is the step that
// reruns whenever the metric changes (new OSM extract, live traffic
// update) without ever recontracting the topology in package cch.
package customize

import (
	"math"

	"tdcch/pkg/cch"
	"tdcch/pkg/graph"
)

// Static holds the scalar customization of a CCH: for every CCH arc (r, w)
// with rank(r) < rank(w), Up[idx] is the best known weight r -> w and
// Down[idx] is the best known weight w -> r, both starting from the
// original edge weight (or +Inf if no such edge exists) and only ever
// decreasing as triangles are relaxed.
type Static struct {
	Up   []uint32
	Down []uint32
}

const infWeight = math.MaxUint32

// addWeights adds two edge weights, reporting ok=false (an effectively
// infinite result) if either operand is already infinite or the sum would
// overflow uint32.
func addWeights(a, b uint32) (uint32, bool) {
	if a == infWeight || b == infWeight {
		return 0, false
	}
	sum := uint64(a) + uint64(b)
	if sum >= infWeight {
		return 0, false
	}
	return uint32(sum), true
}

// Metric supplies the base graph weight for an arc between two original
// node ids, in both directions. ok is false when no edge exists.
type Metric interface {
	Weight(fromNode, toNode uint32) (uint32, bool)
}

// staticGraphMetric adapts a StaticGraph to the Metric interface via a
// linear scan of each node's out-edges; fine for one-time customization
// setup, not the query hot path.
type staticGraphMetric struct {
	g *graph.StaticGraph
}

func (m staticGraphMetric) Weight(from, to uint32) (uint32, bool) {
	start, end := m.g.EdgesFrom(from)
	for e := start; e < end; e++ {
		if m.g.Head[e] == to {
			return m.g.Weight[e], true
		}
	}
	return 0, false
}

// StaticMetric wraps a StaticGraph as a Metric for CustomizeStatic.
func StaticMetric(g *graph.StaticGraph) Metric { return staticGraphMetric{g: g} }

// CustomizeStatic computes the static scalar metric over c's topology.
func CustomizeStatic(c *cch.CCH, metric Metric) *Static {
	n := uint32(len(c.UpHead))
	up := make([]uint32, n)
	down := make([]uint32, n)
	for i := range up {
		up[i] = infWeight
		down[i] = infWeight
	}

	order := c.Order
	for r := uint32(0); r < c.NumNodes; r++ {
		node := order.Order[r]
		for idx := c.UpFirstOut[r]; idx < c.UpFirstOut[r+1]; idx++ {
			w := c.UpHead[idx]
			wNode := order.Order[w]
			if weight, ok := metric.Weight(node, wNode); ok && weight < up[idx] {
				up[idx] = weight
			}
			if weight, ok := metric.Weight(wNode, node); ok && weight < down[idx] {
				down[idx] = weight
			}
		}
	}

	for r := uint32(0); r < c.NumNodes; r++ {
		upNeighbors := c.UpRange(r)
		for i, x := range upNeighbors {
			xIdx := c.UpFirstOut[r] + uint32(i)
			for j := i + 1; j < len(upNeighbors); j++ {
				y := upNeighbors[j]
				yIdx := c.UpFirstOut[r] + uint32(j)
				xyIdx, ok := c.ArcIndex(x, y)
				if !ok {
					continue
				}
				if via, ok := addWeights(down[xIdx], up[yIdx]); ok && via < up[xyIdx] {
					up[xyIdx] = via
				}
				if via, ok := addWeights(down[yIdx], up[xIdx]); ok && via < down[xyIdx] {
					down[xyIdx] = via
				}
			}
		}
	}

	return &Static{Up: up, Down: down}
}
