package graph

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"math"
	"os"
	"unsafe"
)

// Binary graph file layout (little-endian throughout):
//
//	header                fileHeader
//	from                  u32[NumEdges]           source node of each edge
//	head                  u32[NumEdges]           topology shared by the static and TD metric
//	weight                u32[NumEdges]            static metric, millimeters
//	first_ipp_of_arc      u32[NumEdges+1]          TD metric: flattened breakpoint offsets
//	ipp_departure_time    f64[NumIPPs]
//	ipp_travel_time       f64[NumIPPs]
//	cch_perm              u32[NumNodes]            rank -> node id (NodeOrder.Order)
//	latitude, longitude   f64[NumNodes]            optional, length-prefixed
//	geometry              length-prefixed          optional edge shape points
//	crc32 trailer         u32
//
// first_out (u32[NumNodes+1]) is not stored: the writer emits edges in
// from-ascending order together with each edge's source node (the from
// array), and ReadBinary reconstructs FirstOut by counting those sources.
type fileHeader struct {
	Magic    [8]byte
	Version  uint32
	NumNodes uint32
	NumEdges uint32
	NumIPPs  uint32
}

const (
	magicBytes = "TDCCHGRF"
	version    = uint32(1)
	maxNodes   = 10_000_000
	maxEdges   = 50_000_000
)

// WriteBinary serializes a StaticGraph/TDGraph pair sharing one topology,
// plus the node order the pair was customized under, to a single binary
// file. Uses unsafe.Slice for zero-copy I/O of the flat numeric arrays, the
// way the teacher's graph file writer does.
func WriteBinary(path string, g *StaticGraph, td *TDGraph, order NodeOrder) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(tmpPath)
	}()

	crcWriter := crc32Writer{w: f, hash: crc32.NewIEEE()}
	w := &crcWriter

	numIPPs := uint32(0)
	if td != nil {
		numIPPs = uint32(len(td.IPPDepartureTime))
	}

	hdr := fileHeader{
		Version:  version,
		NumNodes: g.NumNodes,
		NumEdges: g.NumEdges,
		NumIPPs:  numIPPs,
	}
	copy(hdr.Magic[:], magicBytes)
	if err := binary.Write(w, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	fromOf := make([]uint32, g.NumEdges)
	for u := uint32(0); u < g.NumNodes; u++ {
		start, end := g.EdgesFrom(u)
		for e := start; e < end; e++ {
			fromOf[e] = u
		}
	}
	if err := writeUint32Slice(w, fromOf); err != nil {
		return fmt.Errorf("write from: %w", err)
	}
	if err := writeUint32Slice(w, g.Head); err != nil {
		return fmt.Errorf("write head: %w", err)
	}
	if err := writeUint32Slice(w, g.Weight); err != nil {
		return fmt.Errorf("write weight: %w", err)
	}

	if td != nil {
		if err := writeUint32Slice(w, td.FirstIPP); err != nil {
			return fmt.Errorf("write first_ipp_of_arc: %w", err)
		}
		if err := writeFloat64Slice(w, td.IPPDepartureTime); err != nil {
			return fmt.Errorf("write ipp_departure_time: %w", err)
		}
		if err := writeFloat64Slice(w, td.IPPTravelTime); err != nil {
			return fmt.Errorf("write ipp_travel_time: %w", err)
		}
	} else {
		flatIPP := make([]uint32, g.NumEdges+1)
		if err := writeUint32Slice(w, flatIPP); err != nil {
			return fmt.Errorf("write first_ipp_of_arc: %w", err)
		}
	}

	if err := writeUint32Slice(w, order.Order); err != nil {
		return fmt.Errorf("write cch_perm: %w", err)
	}

	if err := writeLenPrefixedFloat64(w, g.NodeLat); err != nil {
		return fmt.Errorf("write latitude: %w", err)
	}
	if err := writeLenPrefixedFloat64(w, g.NodeLon); err != nil {
		return fmt.Errorf("write longitude: %w", err)
	}
	if err := writeLenPrefixedUint32(w, g.GeoFirstOut); err != nil {
		return fmt.Errorf("write GeoFirstOut: %w", err)
	}
	if err := writeLenPrefixedFloat64(w, g.GeoShapeLat); err != nil {
		return fmt.Errorf("write GeoShapeLat: %w", err)
	}
	if err := writeLenPrefixedFloat64(w, g.GeoShapeLon); err != nil {
		return fmt.Errorf("write GeoShapeLon: %w", err)
	}

	checksum := crcWriter.hash.Sum32()
	if err := binary.Write(f, binary.LittleEndian, checksum); err != nil {
		return fmt.Errorf("write CRC32: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// ReadBinary deserializes the StaticGraph, TDGraph and node order written by
// WriteBinary.
func ReadBinary(path string) (*StaticGraph, *TDGraph, NodeOrder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, NodeOrder{}, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	crcReader := crc32Reader{r: f, hash: crc32.NewIEEE()}
	r := &crcReader

	var hdr fileHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, nil, NodeOrder{}, fmt.Errorf("read header: %w", err)
	}
	if string(hdr.Magic[:]) != magicBytes {
		return nil, nil, NodeOrder{}, fmt.Errorf("invalid magic bytes: %q", hdr.Magic)
	}
	if hdr.Version != version {
		return nil, nil, NodeOrder{}, fmt.Errorf("unsupported version: %d", hdr.Version)
	}
	if hdr.NumNodes > maxNodes {
		return nil, nil, NodeOrder{}, fmt.Errorf("NumNodes %d exceeds limit %d", hdr.NumNodes, maxNodes)
	}
	if hdr.NumEdges > maxEdges {
		return nil, nil, NodeOrder{}, fmt.Errorf("NumEdges %d exceeds limit %d", hdr.NumEdges, maxEdges)
	}

	fromOf, err := readUint32Slice(r, int(hdr.NumEdges))
	if err != nil {
		return nil, nil, NodeOrder{}, fmt.Errorf("read from: %w", err)
	}
	head, err := readUint32Slice(r, int(hdr.NumEdges))
	if err != nil {
		return nil, nil, NodeOrder{}, fmt.Errorf("read head: %w", err)
	}
	weight, err := readUint32Slice(r, int(hdr.NumEdges))
	if err != nil {
		return nil, nil, NodeOrder{}, fmt.Errorf("read weight: %w", err)
	}

	firstOut := firstOutFromSources(fromOf, hdr.NumNodes)
	if err := validateCSR(firstOut, head, hdr.NumNodes); err != nil {
		return nil, nil, NodeOrder{}, fmt.Errorf("CSR invalid: %w", err)
	}

	firstIPP, err := readUint32Slice(r, int(hdr.NumEdges+1))
	if err != nil {
		return nil, nil, NodeOrder{}, fmt.Errorf("read first_ipp_of_arc: %w", err)
	}
	ippDep, err := readFloat64Slice(r, int(hdr.NumIPPs))
	if err != nil {
		return nil, nil, NodeOrder{}, fmt.Errorf("read ipp_departure_time: %w", err)
	}
	ippTT, err := readFloat64Slice(r, int(hdr.NumIPPs))
	if err != nil {
		return nil, nil, NodeOrder{}, fmt.Errorf("read ipp_travel_time: %w", err)
	}

	perm, err := readUint32Slice(r, int(hdr.NumNodes))
	if err != nil {
		return nil, nil, NodeOrder{}, fmt.Errorf("read cch_perm: %w", err)
	}

	nodeLat, err := readFloat64SliceLenPrefixed(r)
	if err != nil {
		return nil, nil, NodeOrder{}, fmt.Errorf("read latitude: %w", err)
	}
	nodeLon, err := readFloat64SliceLenPrefixed(r)
	if err != nil {
		return nil, nil, NodeOrder{}, fmt.Errorf("read longitude: %w", err)
	}
	geoFirstOut, _ := readUint32SliceOptional(r)
	geoShapeLat, _ := readFloat64SliceOptional(r)
	geoShapeLon, _ := readFloat64SliceOptional(r)

	expectedCRC := crcReader.hash.Sum32()
	var storedCRC uint32
	if err := binary.Read(f, binary.LittleEndian, &storedCRC); err != nil {
		return nil, nil, NodeOrder{}, fmt.Errorf("read CRC32: %w", err)
	}
	if storedCRC != expectedCRC {
		return nil, nil, NodeOrder{}, fmt.Errorf("CRC32 mismatch: stored=%08x computed=%08x", storedCRC, expectedCRC)
	}

	sg := &StaticGraph{
		NumNodes: hdr.NumNodes,
		NumEdges: hdr.NumEdges,
		FirstOut: firstOut,
		Head:     head,
		Weight:   weight,
		NodeLat:  nodeLat,
		NodeLon:  nodeLon,
	}
	if len(geoFirstOut) > 0 {
		sg.GeoFirstOut = geoFirstOut
		sg.GeoShapeLat = geoShapeLat
		sg.GeoShapeLon = geoShapeLon
	}

	var tdg *TDGraph
	if hdr.NumIPPs > 0 {
		tdg = &TDGraph{
			NumNodes:         hdr.NumNodes,
			NumEdges:         hdr.NumEdges,
			FirstOut:         firstOut,
			Head:             head,
			NodeLat:          nodeLat,
			NodeLon:          nodeLon,
			FirstIPP:         firstIPP,
			IPPDepartureTime: ippDep,
			IPPTravelTime:    ippTT,
		}
	}

	return sg, tdg, NewNodeOrder(perm), nil
}

// firstOutFromSources rebuilds a CSR FirstOut array from each edge's
// recorded source node; WriteBinary always emits edges grouped by
// ascending source node, the same order EdgesFrom iterates, so this is a
// straightforward recount rather than a re-sort.
func firstOutFromSources(fromOf []uint32, numNodes uint32) []uint32 {
	firstOut := make([]uint32, numNodes+1)
	for _, u := range fromOf {
		firstOut[u+1]++
	}
	for i := uint32(1); i <= numNodes; i++ {
		firstOut[i] += firstOut[i-1]
	}
	return firstOut
}

// validateCSR checks CSR invariants.
func validateCSR(firstOut, head []uint32, numNodes uint32) error {
	if uint32(len(firstOut)) != numNodes+1 {
		return fmt.Errorf("FirstOut length %d != NumNodes+1 %d", len(firstOut), numNodes+1)
	}
	numEdges := firstOut[numNodes]
	if uint32(len(head)) != numEdges {
		return fmt.Errorf("Head length %d != FirstOut[NumNodes] %d", len(head), numEdges)
	}
	for i := uint32(1); i <= numNodes; i++ {
		if firstOut[i] < firstOut[i-1] {
			return fmt.Errorf("FirstOut not monotonic at %d: %d < %d", i, firstOut[i], firstOut[i-1])
		}
	}
	for i, h := range head {
		if h >= numNodes {
			return fmt.Errorf("Head[%d]=%d >= NumNodes=%d", i, h, numNodes)
		}
	}
	return nil
}

// Zero-copy I/O helpers using unsafe.Slice.

func writeUint32Slice(w io.Writer, s []uint32) error {
	if len(s) == 0 {
		return nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*4)
	_, err := w.Write(b)
	return err
}

func writeFloat64Slice(w io.Writer, s []float64) error {
	if len(s) == 0 {
		return nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*8)
	_, err := w.Write(b)
	return err
}

func readUint32Slice(r io.Reader, n int) ([]uint32, error) {
	if n == 0 {
		return nil, nil
	}
	s := make([]uint32, n)
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), n*4)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return s, nil
}

func readFloat64Slice(r io.Reader, n int) ([]float64, error) {
	if n == 0 {
		return nil, nil
	}
	s := make([]float64, n)
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), n*8)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return s, nil
}

func writeLenPrefixedUint32(w io.Writer, s []uint32) error {
	n := uint32(len(s))
	if err := binary.Write(w, binary.LittleEndian, n); err != nil {
		return err
	}
	return writeUint32Slice(w, s)
}

func writeLenPrefixedFloat64(w io.Writer, s []float64) error {
	n := uint32(len(s))
	if err := binary.Write(w, binary.LittleEndian, n); err != nil {
		return err
	}
	return writeFloat64Slice(w, s)
}

func readFloat64SliceLenPrefixed(r io.Reader) ([]float64, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	return readFloat64Slice(r, int(n))
}

// readUint32SliceOptional reads a uint32 length prefix then the slice data.
// Returns nil, nil if at EOF or data unavailable: geometry is optional.
func readUint32SliceOptional(r io.Reader) ([]uint32, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, nil
	}
	if n == 0 || n > math.MaxUint32/4 {
		return nil, nil
	}
	return readUint32Slice(r, int(n))
}

func readFloat64SliceOptional(r io.Reader) ([]float64, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, nil
	}
	if n == 0 || n > math.MaxUint32/8 {
		return nil, nil
	}
	return readFloat64Slice(r, int(n))
}

// CRC32 wrapping writers/readers.

type crc32Writer struct {
	w    io.Writer
	hash crc32Hash
}

type crc32Hash interface {
	Write([]byte) (int, error)
	Sum32() uint32
}

func (cw *crc32Writer) Write(p []byte) (int, error) {
	cw.hash.Write(p)
	return cw.w.Write(p)
}

type crc32Reader struct {
	r    io.Reader
	hash crc32Hash
}

func (cr *crc32Reader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	if n > 0 {
		cr.hash.Write(p[:n])
	}
	return n, err
}
