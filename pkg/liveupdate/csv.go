// Package liveupdate applies a live traffic feed to an already-built
// TDGraph: parsing the semicolon-separated update format and overwriting
// the affected arcs' travel-time functions in place.
package liveupdate

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"

	"tdcch/pkg/graph"
	"tdcch/pkg/tdfunc"
)

const maxDurationMillis = 5 * 3600 * 1000 // rows reporting more than 5h are discarded as bad sensor data

// Update is one parsed, validated live-update row: a measured travel
// duration for the arc from From to To.
type Update struct {
	From, To     uint32
	SpeedKPH     int
	DistanceM    int
	DurationMillis int
}

// ErrNoArc is returned by Apply when an update references a node pair with
// no matching arc in the graph; the caller decides whether to treat that
// as fatal or simply log and continue.
type ErrNoArc struct{ From, To uint32 }

func (e ErrNoArc) Error() string {
	return fmt.Sprintf("liveupdate: no arc %d -> %d in graph", e.From, e.To)
}

// Parse reads the semicolon-CSV live-update feed from r. The header row
// (from_id;to_id;speed;distance;duration) is required and is skipped.
// Rows with speed=0 or duration exceeding five hours are silently dropped,
// matching how a live feed's clearly-broken samples are expected to be
// filtered before they ever reach the routing engine.
func Parse(r io.Reader) ([]Update, error) {
	reader := csv.NewReader(bufio.NewReader(r))
	reader.Comma = ';'
	reader.FieldsPerRecord = 5

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("liveupdate: reading header: %w", err)
	}
	if len(header) != 5 {
		return nil, fmt.Errorf("liveupdate: expected 5 header columns, got %d", len(header))
	}

	var updates []Update
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("liveupdate: reading row: %w", err)
		}

		var u Update
		if _, err := fmt.Sscanf(record[0], "%d", &u.From); err != nil {
			return nil, fmt.Errorf("liveupdate: parsing from_id %q: %w", record[0], err)
		}
		if _, err := fmt.Sscanf(record[1], "%d", &u.To); err != nil {
			return nil, fmt.Errorf("liveupdate: parsing to_id %q: %w", record[1], err)
		}
		if _, err := fmt.Sscanf(record[2], "%d", &u.SpeedKPH); err != nil {
			return nil, fmt.Errorf("liveupdate: parsing speed %q: %w", record[2], err)
		}
		if _, err := fmt.Sscanf(record[3], "%d", &u.DistanceM); err != nil {
			return nil, fmt.Errorf("liveupdate: parsing distance %q: %w", record[3], err)
		}
		if _, err := fmt.Sscanf(record[4], "%d", &u.DurationMillis); err != nil {
			return nil, fmt.Errorf("liveupdate: parsing duration %q: %w", record[4], err)
		}

		if u.SpeedKPH == 0 || u.DurationMillis > maxDurationMillis {
			continue
		}
		updates = append(updates, u)
	}
	return updates, nil
}

// Apply overwrites the travel-time function of every arc an update
// references with a constant function at the reported duration: a live
// feed reports the currently measured condition, not a full day's curve,
// so the update replaces the arc's entire periodic function with its new
// instantaneous value until the next customization run supersedes it.
// Requires exclusive access to g; the caller is responsible for excluding
// concurrent queries while an update is in flight.
func Apply(g *graph.TDGraph, updates []Update) []error {
	index := make(map[[2]uint32]uint32, g.NumEdges)
	for u := uint32(0); u < g.NumNodes; u++ {
		start, end := g.EdgesFrom(u)
		for e := start; e < end; e++ {
			index[[2]uint32{u, g.Head[e]}] = e
		}
	}

	var errs []error
	for _, upd := range updates {
		e, ok := index[[2]uint32{upd.From, upd.To}]
		if !ok {
			errs = append(errs, ErrNoArc{From: upd.From, To: upd.To})
			continue
		}
		setConstantArc(g, e, float64(upd.DurationMillis)/1000.0)
	}
	return errs
}

// setConstantArc replaces arc e's IPP breakpoints with the two endpoints
// of a constant function (t=0 and t=Period). An arc that already has
// exactly two breakpoints is rewritten in place; any other arc gets its new
// two-point slice by rebuilding the flattened IPP arrays.
func setConstantArc(g *graph.TDGraph, e uint32, value float64) {
	lo, hi := g.FirstIPP[e], g.FirstIPP[e+1]
	pts := tdfunc.Constant(value).Points
	if int(hi-lo) == len(pts) {
		for i, p := range pts {
			g.IPPDepartureTime[lo+uint32(i)] = p.T
			g.IPPTravelTime[lo+uint32(i)] = p.V
		}
		return
	}
	// Arc previously had a differently-shaped function: rebuild the
	// flattened arrays with this arc's breakpoint count changed. Rare in
	// steady-state live traffic (most roads keep a stable profile shape),
	// common on the very first update after a cold graph load.
	rebuildIPP(g, e, pts)
}

func rebuildIPP(g *graph.TDGraph, e uint32, pts []tdfunc.Point) {
	newDep := make([]float64, 0, len(g.IPPDepartureTime)+len(pts))
	newTT := make([]float64, 0, len(g.IPPTravelTime)+len(pts))
	newFirst := make([]uint32, len(g.FirstIPP))

	for arc := uint32(0); arc < g.NumEdges; arc++ {
		newFirst[arc] = uint32(len(newDep))
		lo, hi := g.FirstIPP[arc], g.FirstIPP[arc+1]
		if arc == e {
			for _, p := range pts {
				newDep = append(newDep, p.T)
				newTT = append(newTT, p.V)
			}
			continue
		}
		newDep = append(newDep, g.IPPDepartureTime[lo:hi]...)
		newTT = append(newTT, g.IPPTravelTime[lo:hi]...)
	}
	newFirst[g.NumEdges] = uint32(len(newDep))

	g.FirstIPP = newFirst
	g.IPPDepartureTime = newDep
	g.IPPTravelTime = newTT
}
