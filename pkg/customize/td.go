package customize

import (
	"tdcch/pkg/cch"
	"tdcch/pkg/graph"
	"tdcch/pkg/shortcut"
	"tdcch/pkg/tdfunc"
)

// TD holds the time-dependent customization of a CCH: for every arc, the
// best known up and down travel-time functions, each paired with the
// source list (shortcut.Sources) the query engine's unpacking step walks,
// plus a cheap lower/upper bound pair per function. The query engine does
// not read the bound pairs.
type TD struct {
	Up       []tdfunc.PLF
	Down     []tdfunc.PLF
	UpSrc    []shortcut.Sources
	DownSrc  []shortcut.Sources
	UpLower  []tdfunc.PLF
	UpUpper  []tdfunc.PLF
	DownLower []tdfunc.PLF
	DownUpper []tdfunc.PLF
}

// boundPoints is the breakpoint count above which tdfunc.Bound simplifies
// a function into its bound pair; it does not bound the exact function,
// and a simplified bound can still carry more breakpoints than this.
const boundPoints = 8

// TDMetric supplies a travel-time function for the original graph edge
// between two node ids, in both directions.
type TDMetric interface {
	Function(fromNode, toNode uint32) (tdfunc.PLF, bool)
}

type tdGraphMetric struct {
	g *graph.TDGraph
}

func (m tdGraphMetric) Function(from, to uint32) (tdfunc.PLF, bool) {
	start, end := m.g.EdgesFrom(from)
	for e := start; e < end; e++ {
		if m.g.Head[e] == to {
			return m.g.TravelTimeFunction(e), true
		}
	}
	return tdfunc.PLF{}, false
}

// TDGraphMetric wraps a TDGraph as a TDMetric for CustomizeTD.
func TDGraphMetric(g *graph.TDGraph) TDMetric { return tdGraphMetric{g: g} }

// Unreachable is the travel-time sentinel assigned to an arc no original
// edge or triangle relaxation ever reached. It stands in for +Inf: PLF
// linking and merging only need to add and compare finite values, and an
// arbitrarily large finite constant composes correctly through both where
// a true infinity risks producing NaN. A query summing this across even
// every node in the graph still stays far below half of it, so callers can
// treat any accumulated value at or above Unreachable/2 as MetricUnreachable.
const Unreachable = 1e18

var infiniteFunc = tdfunc.Constant(Unreachable)

// CustomizeTD computes the time-dependent metric over c's topology.
func CustomizeTD(c *cch.CCH, metric TDMetric) *TD {
	n := uint32(len(c.UpHead))
	td := &TD{
		Up:      make([]tdfunc.PLF, n),
		Down:    make([]tdfunc.PLF, n),
		UpSrc:   make([]shortcut.Sources, n),
		DownSrc: make([]shortcut.Sources, n),
	}
	for i := range td.Up {
		td.Up[i] = infiniteFunc
		td.Down[i] = infiniteFunc
		td.UpSrc[i] = shortcut.NewConstant(shortcut.Source{Kind: shortcut.Original})
		td.DownSrc[i] = shortcut.NewConstant(shortcut.Source{Kind: shortcut.Original})
	}

	order := c.Order
	for r := uint32(0); r < c.NumNodes; r++ {
		node := order.Order[r]
		for idx := c.UpFirstOut[r]; idx < c.UpFirstOut[r+1]; idx++ {
			w := c.UpHead[idx]
			wNode := order.Order[w]
			if f, ok := metric.Function(node, wNode); ok {
				td.Up[idx] = f
			}
			if f, ok := metric.Function(wNode, node); ok {
				td.Down[idx] = f
			}
		}
	}

	for r := uint32(0); r < c.NumNodes; r++ {
		viaNode := order.Order[r]
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

				viaXY := tdfunc.Link(td.Down[xIdx], td.Up[yIdx])
				merged, selector := tdfunc.Merge(td.Up[xyIdx], viaXY)
				if !samePLF(merged, td.Up[xyIdx]) {
					td.UpSrc[xyIdx] = mergeSources(td.UpSrc[xyIdx], merged, selector,
						shortcut.Source{Kind: shortcut.Via, Node: viaNode})
				}
				td.Up[xyIdx] = merged

				viaYX := tdfunc.Link(td.Down[yIdx], td.Up[xIdx])
				mergedD, selectorD := tdfunc.Merge(td.Down[xyIdx], viaYX)
				if !samePLF(mergedD, td.Down[xyIdx]) {
					td.DownSrc[xyIdx] = mergeSources(td.DownSrc[xyIdx], mergedD, selectorD,
						shortcut.Source{Kind: shortcut.Via, Node: viaNode})
				}
				td.Down[xyIdx] = mergedD
			}
		}
	}

	td.UpLower = make([]tdfunc.PLF, n)
	td.UpUpper = make([]tdfunc.PLF, n)
	td.DownLower = make([]tdfunc.PLF, n)
	td.DownUpper = make([]tdfunc.PLF, n)
	for i := range td.Up {
		td.UpLower[i], td.UpUpper[i] = tdfunc.Bound(td.Up[i], boundPoints)
		td.DownLower[i], td.DownUpper[i] = tdfunc.Bound(td.Down[i], boundPoints)
	}

	return td
}

func samePLF(a, b tdfunc.PLF) bool {
	if len(a.Points) != len(b.Points) {
		return false
	}
	for i := range a.Points {
		if !tdfunc.FuzzyEqual(a.Points[i].V, b.Points[i].V) || !tdfunc.FuzzyEqual(a.Points[i].T, b.Points[i].T) {
			return false
		}
	}
	return true
}

// mergeSources reconciles an arc's existing source list with the result of
// one more triangle relaxation: wherever the merge selector picked the new
// "via" candidate, the source becomes Via(viaNode); wherever it kept the
// old winner, the prior source list (sampled at that breakpoint) applies.
func mergeSources(prior shortcut.Sources, merged tdfunc.PLF, selector []bool, via shortcut.Source) shortcut.Sources {
	out := shortcut.Sources{
		Times:   make([]float64, 0, len(merged.Points)),
		Entries: make([]shortcut.Source, 0, len(merged.Points)),
	}
	for i, pt := range merged.Points {
		// Merge's selector is true where its first argument (the prior,
		// already-established function) won; false where its second
		// argument (this triangle's new via-candidate) won.
		s := via
		if selector[i] {
			s = prior.At(pt.T)
		}
		if len(out.Entries) > 0 && out.Entries[len(out.Entries)-1] == s {
			continue
		}
		out.Times = append(out.Times, pt.T)
		out.Entries = append(out.Entries, s)
	}
	return out
}
