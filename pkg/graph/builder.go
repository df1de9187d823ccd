package graph

import (
	"sort"

	"github.com/paulmach/osm"

	osmparser "tdcch/pkg/osm"
	"tdcch/pkg/tdfunc"
)

// Build creates a CSR StaticGraph from parsed OSM edges, weighted by
// distance in millimeters.
func Build(result *osmparser.ParseResult) *StaticGraph {
	edges := result.Edges
	if len(edges) == 0 {
		return &StaticGraph{}
	}

	nodeSet := make(map[osm.NodeID]uint32)
	var nodeIDs []osm.NodeID

	addNode := func(id osm.NodeID) uint32 {
		if idx, ok := nodeSet[id]; ok {
			return idx
		}
		idx := uint32(len(nodeIDs))
		nodeSet[id] = idx
		nodeIDs = append(nodeIDs, id)
		return idx
	}

	for i := range edges {
		addNode(edges[i].FromNodeID)
		addNode(edges[i].ToNodeID)
	}

	numNodes := uint32(len(nodeIDs))

	type compactEdge struct {
		from      uint32
		to        uint32
		weight    uint32
		shapeLats []float64
		shapeLons []float64
	}

	compact := make([]compactEdge, len(edges))
	for i, e := range edges {
		compact[i] = compactEdge{
			from:      nodeSet[e.FromNodeID],
			to:        nodeSet[e.ToNodeID],
			weight:    e.Weight,
			shapeLats: e.ShapeLats,
			shapeLons: e.ShapeLons,
		}
	}

	sort.Slice(compact, func(i, j int) bool {
		if compact[i].from != compact[j].from {
			return compact[i].from < compact[j].from
		}
		return compact[i].to < compact[j].to
	})

	numEdges := uint32(len(compact))
	firstOut := make([]uint32, numNodes+1)
	head := make([]uint32, numEdges)
	weight := make([]uint32, numEdges)

	geoFirstOut := make([]uint32, numEdges+1)
	var geoShapeLat, geoShapeLon []float64

	for i, e := range compact {
		head[i] = e.to
		weight[i] = e.weight
		geoFirstOut[i] = uint32(len(geoShapeLat))
		geoShapeLat = append(geoShapeLat, e.shapeLats...)
		geoShapeLon = append(geoShapeLon, e.shapeLons...)
	}
	geoFirstOut[numEdges] = uint32(len(geoShapeLat))

	for _, e := range compact {
		firstOut[e.from+1]++
	}
	for i := uint32(1); i <= numNodes; i++ {
		firstOut[i] += firstOut[i-1]
	}

	nodeLat := make([]float64, numNodes)
	nodeLon := make([]float64, numNodes)
	for id, idx := range nodeSet {
		nodeLat[idx] = result.NodeLat[id]
		nodeLon[idx] = result.NodeLon[id]
	}

	return &StaticGraph{
		NumNodes:    numNodes,
		NumEdges:    numEdges,
		FirstOut:    firstOut,
		Head:        head,
		Weight:      weight,
		NodeLat:     nodeLat,
		NodeLon:     nodeLon,
		GeoFirstOut: geoFirstOut,
		GeoShapeLat: geoShapeLat,
		GeoShapeLon: geoShapeLon,
	}
}

// speedProfile is the free-flow speed (meters/second) and the congestion
// multiplier curve applied over the course of a day for one OSM highway
// class. Multiplier 1.0 is free flow; values above 1.0 slow travel down.
type speedProfile struct {
	freeFlowMS float64
	congestion tdfunc.PLF // multiplier as a function of time of day
}

// classProfiles gives every car-accessible highway class a free-flow speed
// and a congestion shape. Motorways and trunk roads see sharp twice-daily
// commute peaks; residential and service roads are nearly flat.
var classProfiles = map[string]speedProfile{
	"motorway":       {freeFlowMS: kmh(110), congestion: peakedProfile(2.4)},
	"motorway_link":  {freeFlowMS: kmh(60), congestion: peakedProfile(2.0)},
	"trunk":          {freeFlowMS: kmh(90), congestion: peakedProfile(2.2)},
	"trunk_link":     {freeFlowMS: kmh(50), congestion: peakedProfile(1.8)},
	"primary":        {freeFlowMS: kmh(70), congestion: peakedProfile(1.8)},
	"primary_link":   {freeFlowMS: kmh(40), congestion: peakedProfile(1.6)},
	"secondary":      {freeFlowMS: kmh(60), congestion: peakedProfile(1.5)},
	"secondary_link": {freeFlowMS: kmh(35), congestion: peakedProfile(1.4)},
	"tertiary":       {freeFlowMS: kmh(50), congestion: peakedProfile(1.3)},
	"tertiary_link":  {freeFlowMS: kmh(30), congestion: peakedProfile(1.25)},
	"unclassified":   {freeFlowMS: kmh(40), congestion: flatProfile()},
	"residential":    {freeFlowMS: kmh(30), congestion: flatProfile()},
	"living_street":  {freeFlowMS: kmh(15), congestion: flatProfile()},
	"service":        {freeFlowMS: kmh(20), congestion: flatProfile()},
}

var fallbackProfile = speedProfile{freeFlowMS: kmh(40), congestion: flatProfile()}

func kmh(v float64) float64 { return v * 1000 / 3600 }

// flatProfile is a congestion curve with no time-of-day variation.
func flatProfile() tdfunc.PLF {
	return tdfunc.Constant(1.0)
}

// peakedProfile builds a congestion multiplier curve with a morning peak
// around 08:00 and an evening peak around 18:00, each reaching peakMult,
// and free flow (1.0) overnight. This is a synthesized stand-in for real
// traffic-count calibration data, shaped the way actual commute congestion
// looks, not measured from any particular city.
func peakedProfile(peakMult float64) tdfunc.PLF {
	h := 3600.0
	pts := []tdfunc.Point{
		{T: 0, V: 1.0},
		{T: 6 * h, V: 1.0},
		{T: 8 * h, V: peakMult},
		{T: 10 * h, V: 1.0},
		{T: 16 * h, V: 1.0},
		{T: 18 * h, V: peakMult},
		{T: 20 * h, V: 1.0},
		{T: tdfunc.Period, V: 1.0},
	}
	return tdfunc.New(pts)
}

// BuildTD creates a time-dependent CSR graph sharing the same node space
// and topology order Build would produce, but with a periodic travel-time
// PLF per arc instead of a scalar weight: base travel time from distance
// and free-flow speed, stretched by the arc's highway-class congestion
// curve at each of that curve's own breakpoints.
func BuildTD(result *osmparser.ParseResult) *TDGraph {
	edges := result.Edges
	if len(edges) == 0 {
		return &TDGraph{}
	}

	nodeSet := make(map[osm.NodeID]uint32)
	var nodeIDs []osm.NodeID
	addNode := func(id osm.NodeID) uint32 {
		if idx, ok := nodeSet[id]; ok {
			return idx
		}
		idx := uint32(len(nodeIDs))
		nodeSet[id] = idx
		nodeIDs = append(nodeIDs, id)
		return idx
	}
	for i := range edges {
		addNode(edges[i].FromNodeID)
		addNode(edges[i].ToNodeID)
	}
	numNodes := uint32(len(nodeIDs))

	type compactEdge struct {
		from, to uint32
		plf      tdfunc.PLF
	}
	compact := make([]compactEdge, len(edges))
	for i, e := range edges {
		profile, ok := classProfiles[e.HighwayClass]
		if !ok {
			profile = fallbackProfile
		}
		distanceM := float64(e.Weight) / 1000.0
		freeFlowSeconds := distanceM / profile.freeFlowMS

		pts := make([]tdfunc.Point, len(profile.congestion.Points))
		for j, p := range profile.congestion.Points {
			pts[j] = tdfunc.Point{T: p.T, V: freeFlowSeconds * p.V}
		}

		compact[i] = compactEdge{
			from: nodeSet[e.FromNodeID],
			to:   nodeSet[e.ToNodeID],
			plf:  tdfunc.New(pts),
		}
	}

	sort.Slice(compact, func(i, j int) bool {
		if compact[i].from != compact[j].from {
			return compact[i].from < compact[j].from
		}
		return compact[i].to < compact[j].to
	})

	numEdges := uint32(len(compact))
	firstOut := make([]uint32, numNodes+1)
	head := make([]uint32, numEdges)
	firstIPP := make([]uint32, numEdges+1)
	var ippT, ippV []float64

	for i, e := range compact {
		head[i] = e.to
		firstIPP[i] = uint32(len(ippT))
		for _, p := range e.plf.Points {
			ippT = append(ippT, p.T)
			ippV = append(ippV, p.V)
		}
	}
	firstIPP[numEdges] = uint32(len(ippT))

	for _, e := range compact {
		firstOut[e.from+1]++
	}
	for i := uint32(1); i <= numNodes; i++ {
		firstOut[i] += firstOut[i-1]
	}

	nodeLat := make([]float64, numNodes)
	nodeLon := make([]float64, numNodes)
	for id, idx := range nodeSet {
		nodeLat[idx] = result.NodeLat[id]
		nodeLon[idx] = result.NodeLon[id]
	}

	return &TDGraph{
		NumNodes:         numNodes,
		NumEdges:         numEdges,
		FirstOut:         firstOut,
		Head:             head,
		NodeLat:          nodeLat,
		NodeLon:          nodeLon,
		FirstIPP:         firstIPP,
		IPPDepartureTime: ippT,
		IPPTravelTime:    ippV,
	}
}
