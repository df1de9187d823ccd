package query

import (
	"testing"

	"tdcch/pkg/cch"
	"tdcch/pkg/customize"
	"tdcch/pkg/graph"
)

func staticBottleneckGraph() *graph.StaticGraph {
	type e struct{ from, to, w uint32 }
	edges := []e{
		{0, 1, 10}, {1, 0, 10},
		{1, 2, 10}, {2, 1, 10},
		{0, 2, 100}, {2, 0, 100},
	}
	firstOut := make([]uint32, 4)
	for _, ed := range edges {
		firstOut[ed.from+1]++
	}
	for i := 1; i <= 3; i++ {
		firstOut[i] += firstOut[i-1]
	}
	head := make([]uint32, len(edges))
	weight := make([]uint32, len(edges))
	byFrom := map[uint32][]e{}
	for _, ed := range edges {
		byFrom[ed.from] = append(byFrom[ed.from], ed)
	}
	idx := 0
	for from := uint32(0); from < 3; from++ {
		for _, ed := range byFrom[from] {
			head[idx] = ed.to
			weight[idx] = ed.w
			idx++
		}
	}
	return &graph.StaticGraph{NumNodes: 3, NumEdges: uint32(len(edges)), FirstOut: firstOut, Head: head, Weight: weight}
}

func TestStaticQueryFindsBottleneckRoute(t *testing.T) {
	g := staticBottleneckGraph()
	order := graph.NewNodeOrder([]uint32{1, 0, 2})
	c := cch.Contract(g, order)
	st := customize.CustomizeStatic(c, customize.StaticMetric(g))
	engine := NewStaticEngine(c, st)

	dist, ok := engine.Distance(0, 2)
	if !ok {
		t.Fatal("expected 0 and 2 to be connected")
	}
	if dist != 20 {
		t.Fatalf("distance = %d, want 20 (via the bottleneck)", dist)
	}
}

func TestStaticQuerySameNode(t *testing.T) {
	g := staticBottleneckGraph()
	order := graph.NewNodeOrder([]uint32{1, 0, 2})
	c := cch.Contract(g, order)
	st := customize.CustomizeStatic(c, customize.StaticMetric(g))
	engine := NewStaticEngine(c, st)

	dist, ok := engine.Distance(1, 1)
	if !ok || dist != 0 {
		t.Fatalf("Distance(1,1) = (%d,%v), want (0,true)", dist, ok)
	}
}
