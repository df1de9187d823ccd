package routing

import (
	"context"
	"errors"
	"math"

	"tdcch/pkg/graph"
	"tdcch/pkg/query"
)

// ErrNoRoute is returned when no route exists between the two points.
var ErrNoRoute = errors.New("no route found")

// LatLng represents a geographic coordinate.
type LatLng struct {
	Lat float64
	Lng float64
}

// Segment represents a road segment in the route result.
type Segment struct {
	DistanceMeters float64
	Geometry       []LatLng
}

// RouteResult is the output of a route query.
type RouteResult struct {
	TotalDistanceMeters float64
	ArrivalTime         float64 // departure time plus travel time, in seconds; not reduced modulo the 86400s period
	Segments            []Segment
}

// Router is the interface for route queries. Departure is a time of day in
// seconds (0..86400); callers without a specific departure time in mind
// should pass the current time of day.
type Router interface {
	Route(ctx context.Context, start, end LatLng, departure float64) (*RouteResult, error)
}

// Engine implements Router over a time-dependent CCH query engine, with
// snapping and geometry assembled from the original road graph.
type Engine struct {
	td      *query.TDEngine
	orig    *graph.StaticGraph
	snapper *Snapper
}

// NewEngine creates a routing engine from a customized TD-CCH query engine
// and the original graph (used for geometry and snapping).
func NewEngine(td *query.TDEngine, orig *graph.StaticGraph) *Engine {
	return &Engine{
		td:      td,
		orig:    orig,
		snapper: NewSnapper(orig),
	}
}

// Route computes the earliest-arrival route between two points, departing
// at the given time of day. Since a CCH query only runs between concrete
// graph nodes, each snapped point's two edge endpoints are tried as virtual
// start/end nodes and the best of the (up to four) combinations wins,
// crediting back the partial-edge time spent between the snap point and
// whichever endpoint was used.
func (e *Engine) Route(ctx context.Context, start, end LatLng, departure float64) (*RouteResult, error) {
	startSnap, err := e.snapper.Snap(start.Lat, start.Lng)
	if err != nil {
		return nil, err
	}
	endSnap, err := e.snapper.Snap(end.Lat, end.Lng)
	if err != nil {
		return nil, err
	}

	startEdgeLen := e.edgeLengthMeters(startSnap.EdgeIdx)
	startCandidates := []struct {
		node   uint32
		offset float64 // seconds already spent reaching this node from the snap point
	}{
		{startSnap.NodeU, partialTravelTime(startEdgeLen * startSnap.Ratio)},
		{startSnap.NodeV, partialTravelTime(startEdgeLen * (1 - startSnap.Ratio))},
	}
	endEdgeLen := e.edgeLengthMeters(endSnap.EdgeIdx)
	endCandidates := []struct {
		node      uint32
		remainder float64 // seconds left to travel after reaching this node
	}{
		{endSnap.NodeU, partialTravelTime(endEdgeLen * endSnap.Ratio)},
		{endSnap.NodeV, partialTravelTime(endEdgeLen * (1 - endSnap.Ratio))},
	}

	bestArrival := math.Inf(1)
	var bestResult query.TDResult
	found := false

	for _, sc := range startCandidates {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		tau := departure + sc.offset
		for _, ec := range endCandidates {
			result, ok := e.td.Query(sc.node, ec.node, tau)
			if !ok {
				continue
			}
			arrival := result.ArrivalTime + ec.remainder
			if arrival < bestArrival {
				bestArrival = arrival
				bestResult = result
				found = true
			}
		}
	}

	if !found {
		return nil, ErrNoRoute
	}

	geometry := e.buildGeometry(bestResult.Path)
	totalDist := e.pathDistanceMeters(bestResult.Path)

	return &RouteResult{
		TotalDistanceMeters: totalDist,
		ArrivalTime:         bestArrival,
		Segments: []Segment{
			{DistanceMeters: totalDist, Geometry: geometry},
		},
	}, nil
}

// assumedSpeedMetersPerSec backstops the travel time of the short stretch
// between a snap point and the graph node a query actually starts/ends at,
// since the original graph only carries static distance there, not a
// travel-time function. ~30 km/h, a mid-range urban default.
const assumedSpeedMetersPerSec = 8.33

func partialTravelTime(distanceMeters float64) float64 {
	return distanceMeters / assumedSpeedMetersPerSec
}

// edgeLengthMeters returns the static length of an original-graph edge.
func (e *Engine) edgeLengthMeters(edgeIdx uint32) float64 {
	return float64(e.orig.Weight[edgeIdx]) / 1000.0
}

// buildGeometry converts a sequence of original graph node IDs into lat/lng
// coordinates, including intermediate shape points from edge geometry.
func (e *Engine) buildGeometry(nodes []uint32) []LatLng {
	if len(nodes) == 0 {
		return nil
	}
	g := e.orig
	geom := make([]LatLng, 0, len(nodes)*2)
	geom = append(geom, LatLng{Lat: g.NodeLat[nodes[0]], Lng: g.NodeLon[nodes[0]]})

	for i := 0; i < len(nodes)-1; i++ {
		u, v := nodes[i], nodes[i+1]
		if g.GeoFirstOut != nil {
			edgeIdx := findEdge(g.FirstOut, g.Head, u, v)
			if edgeIdx != noEdge && edgeIdx < uint32(len(g.GeoFirstOut)-1) {
				geoStart := g.GeoFirstOut[edgeIdx]
				geoEnd := g.GeoFirstOut[edgeIdx+1]
				for k := geoStart; k < geoEnd; k++ {
					geom = append(geom, LatLng{Lat: g.GeoShapeLat[k], Lng: g.GeoShapeLon[k]})
				}
			}
		}
		geom = append(geom, LatLng{Lat: g.NodeLat[v], Lng: g.NodeLon[v]})
	}
	return geom
}

// pathDistanceMeters sums the static edge weight (stored in millimeters)
// along nodes, converted to meters.
func (e *Engine) pathDistanceMeters(nodes []uint32) float64 {
	g := e.orig
	total := uint64(0)
	for i := 0; i < len(nodes)-1; i++ {
		u, v := nodes[i], nodes[i+1]
		edgeIdx := findEdge(g.FirstOut, g.Head, u, v)
		if edgeIdx != noEdge {
			total += uint64(g.Weight[edgeIdx])
		}
	}
	return float64(total) / 1000.0
}

const noEdge = ^uint32(0)

// findEdge finds an edge from source to target in a CSR graph.
func findEdge(firstOut, head []uint32, source, target uint32) uint32 {
	start := firstOut[source]
	end := firstOut[source+1]
	for e := start; e < end; e++ {
		if head[e] == target {
			return e
		}
	}
	return noEdge
}
