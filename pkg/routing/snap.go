package routing

import (
	"errors"
	"math"

	"github.com/tidwall/rtree"

	"tdcch/pkg/geo"
	"tdcch/pkg/graph"
)

const maxSnapDistMeters = 500.0

// metersPerDegreeLat is used to size an initial search box in degrees from
// a target radius in meters; a local approximation is fine since it only
// controls how aggressively the search grows, not correctness.
const metersPerDegreeLat = 111320.0

// ErrPointTooFar is returned when the query point is too far from any road.
var ErrPointTooFar = errors.New("point too far from road")

// SnapResult represents a point snapped to a road segment.
type SnapResult struct {
	EdgeIdx uint32  // index into original edge arrays
	NodeU   uint32  // source node of the edge
	NodeV   uint32  // target node of the edge
	Ratio   float64 // 0.0 = at NodeU, 1.0 = at NodeV
	Dist    float64 // distance in meters from query point to snapped point
}

// Snapper provides nearest-road snapping backed by an R-tree over every
// original-graph edge's bounding box.
type Snapper struct {
	tree rtree.RTreeG[uint32] // data is an edge index; NodeU is recovered via g.Head's inverse lookup below
	from []uint32             // from[edgeIdx] = source node, parallel to g.Head
	g    *graph.StaticGraph
}

// NewSnapper builds an R-tree spatial index from the original graph's edges.
func NewSnapper(g *graph.StaticGraph) *Snapper {
	s := &Snapper{g: g, from: make([]uint32, g.NumEdges)}
	for u := uint32(0); u < g.NumNodes; u++ {
		start, end := g.EdgesFrom(u)
		for e := start; e < end; e++ {
			v := g.Head[e]
			s.from[e] = u

			uLat, uLon := g.NodeLat[u], g.NodeLon[u]
			vLat, vLon := g.NodeLat[v], g.NodeLon[v]
			min := [2]float64{math.Min(uLat, vLat), math.Min(uLon, vLon)}
			max := [2]float64{math.Max(uLat, vLat), math.Max(uLon, vLon)}
			s.tree.Insert(min, max, e)
		}
	}
	return s
}

// Snap finds the nearest road segment to the given lat/lng by expanding a
// search box around the query point geometrically until a candidate within
// maxSnapDistMeters is found or the box exceeds that radius.
func (s *Snapper) Snap(lat, lng float64) (SnapResult, error) {
	radiusMeters := 50.0
	var best SnapResult
	bestDist := math.Inf(1)

	for radiusMeters <= maxSnapDistMeters*2 {
		dLat := radiusMeters / metersPerDegreeLat
		dLon := radiusMeters / (metersPerDegreeLat * math.Cos(lat*math.Pi/180) + 1e-9)
		min := [2]float64{lat - dLat, lng - dLon}
		max := [2]float64{lat + dLat, lng + dLon}

		bestDist = math.Inf(1)
		s.tree.Search(min, max, func(_, _ [2]float64, edgeIdx uint32) bool {
			u := s.from[edgeIdx]
			v := s.g.Head[edgeIdx]
			exactDist, ratio := geo.PointToSegmentDist(
				lat, lng,
				s.g.NodeLat[u], s.g.NodeLon[u],
				s.g.NodeLat[v], s.g.NodeLon[v],
			)
			if exactDist < bestDist {
				bestDist = exactDist
				best = SnapResult{EdgeIdx: edgeIdx, NodeU: u, NodeV: v, Ratio: ratio, Dist: exactDist}
			}
			return true
		})

		if !math.IsInf(bestDist, 1) && bestDist <= radiusMeters {
			break
		}
		radiusMeters *= 2
	}

	if math.IsInf(bestDist, 1) || bestDist > maxSnapDistMeters {
		return SnapResult{}, ErrPointTooFar
	}
	return best, nil
}
