package bits

// FloatEntry is the heap element type for queries that order by a
// continuous quantity (arrival time) rather than an integer weight.
type FloatEntry struct {
	Key  float64
	Node uint32
}

// IndexedFloatHeap is the float-keyed twin of IndexedHeap, used by the
// restricted time-dependent Dijkstra finishing step where keys are
// departure/arrival timestamps rather than integer edge weights. Same
// 4-ary hole-sift structure and decrease-key contract; it has no
// IncreaseKey.
type IndexedFloatHeap struct {
	data []FloatEntry
	pos  []uint32
}

// NewIndexedFloatHeap creates an empty heap whose elements carry indices in
// [0, capacity).
func NewIndexedFloatHeap(capacity uint32) *IndexedFloatHeap {
	pos := make([]uint32, capacity)
	for i := range pos {
		pos[i] = invalidPosition
	}
	return &IndexedFloatHeap{pos: pos}
}

func (h *IndexedFloatHeap) Len() int { return len(h.data) }

func (h *IndexedFloatHeap) Contains(index uint32) bool {
	return h.pos[index] != invalidPosition
}

func (h *IndexedFloatHeap) Peek() (FloatEntry, bool) {
	if len(h.data) == 0 {
		return FloatEntry{}, false
	}
	return h.data[0], true
}

func (h *IndexedFloatHeap) Push(e FloatEntry) {
	if h.Contains(e.Node) {
		panic("bits: push of element already present in float heap")
	}
	insertAt := uint32(len(h.data))
	h.data = append(h.data, e)
	h.pos[e.Node] = insertAt
	h.siftUp(insertAt, e)
}

func (h *IndexedFloatHeap) Pop() (FloatEntry, bool) {
	if len(h.data) == 0 {
		return FloatEntry{}, false
	}
	min := h.data[0]
	h.pos[min.Node] = invalidPosition

	last := len(h.data) - 1
	if last == 0 {
		h.data = h.data[:0]
		return min, true
	}
	moved := h.data[last]
	h.data = h.data[:last]
	h.siftDown(0, moved)
	return min, true
}

func (h *IndexedFloatHeap) DecreaseKey(e FloatEntry) {
	p := h.pos[e.Node]
	h.siftUp(p, e)
}

func (h *IndexedFloatHeap) Clear() {
	for _, e := range h.data {
		h.pos[e.Node] = invalidPosition
	}
	h.data = h.data[:0]
}

func (h *IndexedFloatHeap) siftUp(position uint32, e FloatEntry) {
	for position > 0 {
		parent := (position - 1) / treeArity
		parentEntry := h.data[parent]
		if parentEntry.Key <= e.Key {
			break
		}
		h.data[position] = parentEntry
		h.pos[parentEntry.Node] = position
		position = parent
	}
	h.data[position] = e
	h.pos[e.Node] = position
}

func (h *IndexedFloatHeap) siftDown(position uint32, e FloatEntry) {
	n := uint32(len(h.data))
	for {
		first := treeArity*position + 1
		if first >= n {
			break
		}
		last := first + treeArity
		if last > n {
			last = n
		}
		smallest := first
		smallestKey := h.data[first].Key
		for c := first + 1; c < last; c++ {
			if h.data[c].Key < smallestKey {
				smallest = c
				smallestKey = h.data[c].Key
			}
		}
		if smallestKey >= e.Key {
			break
		}
		h.data[position] = h.data[smallest]
		h.pos[h.data[position].Node] = position
		position = smallest
	}
	h.data[position] = e
	h.pos[e.Node] = position
}
