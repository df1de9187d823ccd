package query

import (
	"testing"

	"tdcch/pkg/cch"
	"tdcch/pkg/customize"
	"tdcch/pkg/graph"
)

func TestPotentialIsAdmissible(t *testing.T) {
	g := staticBottleneckGraph()
	order := graph.NewNodeOrder([]uint32{1, 0, 2})
	c := cch.Contract(g, order)
	st := customize.CustomizeStatic(c, customize.StaticMetric(g))
	engine := NewStaticEngine(c, st)

	pot := NewPotential(engine, 2)
	actual, ok := engine.Distance(0, 2)
	if !ok {
		t.Fatal("expected 0 and 2 to be connected")
	}
	estimate, ok := pot.Estimate(0)
	if !ok {
		t.Fatal("expected an estimate for node 0")
	}
	if estimate > actual {
		t.Fatalf("potential %d overestimates the true distance %d, not admissible", estimate, actual)
	}
}

func TestPotentialAtTargetIsZero(t *testing.T) {
	g := staticBottleneckGraph()
	order := graph.NewNodeOrder([]uint32{1, 0, 2})
	c := cch.Contract(g, order)
	st := customize.CustomizeStatic(c, customize.StaticMetric(g))
	engine := NewStaticEngine(c, st)

	pot := NewPotential(engine, 2)
	estimate, ok := pot.Estimate(2)
	if !ok || estimate != 0 {
		t.Fatalf("Estimate(target) = (%d,%v), want (0,true)", estimate, ok)
	}
}
