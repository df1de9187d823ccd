package customize

import (
	"testing"

	"tdcch/pkg/cch"
	"tdcch/pkg/graph"
	"tdcch/pkg/shortcut"
	"tdcch/pkg/tdfunc"
)

// starGraph builds a small graph where node 1 is a natural bottleneck: the
// shortest path from 0 to 2 must pass through it, and a direct 0-2 edge
// exists too but is longer, so customization has an actual min to compute.
func starGraph() *graph.StaticGraph {
	type e struct {
		from, to, w uint32
	}
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

func TestCustomizeStaticFindsShortestViaBottleneck(t *testing.T) {
	g := starGraph()
	order := graph.NewNodeOrder([]uint32{1, 0, 2}) // contract the bottleneck first
	c := cch.Contract(g, order)
	st := CustomizeStatic(c, StaticMetric(g))

	r0, r2 := order.Rank[0], order.Rank[2]
	idx, ok := c.ArcIndex(min(r0, r2), max(r0, r2))
	if !ok {
		t.Fatal("expected an arc between 0 and 2 after contraction")
	}
	if st.Up[idx] > 20 || st.Down[idx] > 20 {
		t.Fatalf("customized weight should have found the 10+10 path, got up=%d down=%d", st.Up[idx], st.Down[idx])
	}
}

func tdStarGraph() *graph.TDGraph {
	edges := []struct {
		from, to uint32
		f        tdfunc.PLF
	}{
		{0, 1, tdfunc.Constant(10)},
		{1, 0, tdfunc.Constant(10)},
		{1, 2, tdfunc.Constant(10)},
		{2, 1, tdfunc.Constant(10)},
		{0, 2, tdfunc.Constant(100)},
		{2, 0, tdfunc.Constant(100)},
	}
	firstOut := make([]uint32, 4)
	for _, ed := range edges {
		firstOut[ed.from+1]++
	}
	for i := 1; i <= 3; i++ {
		firstOut[i] += firstOut[i-1]
	}
	head := make([]uint32, len(edges))
	firstIPP := make([]uint32, len(edges)+1)
	var ippT, ippV []float64
	byFrom := map[uint32][]int{}
	for i, ed := range edges {
		byFrom[ed.from] = append(byFrom[ed.from], i)
	}
	pos := 0
	for from := uint32(0); from < 3; from++ {
		for _, i := range byFrom[from] {
			head[pos] = edges[i].to
			firstIPP[pos] = uint32(len(ippT))
			for _, p := range edges[i].f.Points {
				ippT = append(ippT, p.T)
				ippV = append(ippV, p.V)
			}
			pos++
		}
	}
	firstIPP[len(edges)] = uint32(len(ippT))
	return &graph.TDGraph{
		NumNodes: 3, NumEdges: uint32(len(edges)),
		FirstOut: firstOut, Head: head,
		FirstIPP: firstIPP, IPPDepartureTime: ippT, IPPTravelTime: ippV,
	}
}

func TestCustomizeTDFindsShortestViaBottleneck(t *testing.T) {
	g := tdStarGraph()
	order := graph.NewNodeOrder([]uint32{1, 0, 2})
	staticG := &graph.StaticGraph{NumNodes: 3, NumEdges: g.NumEdges, FirstOut: g.FirstOut, Head: g.Head}
	c := cch.Contract(staticG, order)
	td := CustomizeTD(c, TDGraphMetric(g))

	r0, r2 := order.Rank[0], order.Rank[2]
	idx, ok := c.ArcIndex(min(r0, r2), max(r0, r2))
	if !ok {
		t.Fatal("expected an arc between 0 and 2")
	}
	if v := td.Up[idx].Eval(0); v > 20 {
		t.Fatalf("td customized up weight at t=0 = %v, want <= 20", v)
	}
	if v := td.Down[idx].Eval(0); v > 20 {
		t.Fatalf("td customized down weight at t=0 = %v, want <= 20", v)
	}
}

func TestCustomizeTDSourceListResolvesToViaNode(t *testing.T) {
	g := tdStarGraph()
	order := graph.NewNodeOrder([]uint32{1, 0, 2})
	staticG := &graph.StaticGraph{NumNodes: 3, NumEdges: g.NumEdges, FirstOut: g.FirstOut, Head: g.Head}
	c := cch.Contract(staticG, order)
	td := CustomizeTD(c, TDGraphMetric(g))

	r0, r2 := order.Rank[0], order.Rank[2]
	idx, _ := c.ArcIndex(min(r0, r2), max(r0, r2))
	src := td.UpSrc[idx].At(0)
	if src.Kind != shortcut.Via {
		t.Fatalf("expected the shorter path to resolve via the bottleneck node, got %+v", src)
	}
}

func TestCustomizeTDBoundsContainExactFunction(t *testing.T) {
	g := tdStarGraph()
	order := graph.NewNodeOrder([]uint32{1, 0, 2})
	staticG := &graph.StaticGraph{NumNodes: 3, NumEdges: g.NumEdges, FirstOut: g.FirstOut, Head: g.Head}
	c := cch.Contract(staticG, order)
	td := CustomizeTD(c, TDGraphMetric(g))

	for i := range td.Up {
		for t0 := 0.0; t0 < tdfunc.Period; t0 += 3600 {
			exact := td.Up[i].Eval(t0)
			if td.UpLower[i].Eval(t0) > exact+tdfunc.Epsilon || td.UpUpper[i].Eval(t0) < exact-tdfunc.Epsilon {
				t.Fatalf("arc %d: bounds [%v,%v] don't contain exact %v at t=%v",
					i, td.UpLower[i].Eval(t0), td.UpUpper[i].Eval(t0), exact, t0)
			}
		}
	}
}
