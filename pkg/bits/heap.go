// Package bits provides the small, allocation-conscious data structures the
// rest of the engine is built on: an indexed d-ary min-heap, a generation-
// stamped vector for O(1) reset, and a rank-select bitmap for id remapping.
package bits

const treeArity = 4

const invalidPosition = ^uint32(0)

// Entry is the heap element type: an integer key and a node id used as the
// dense index. Concrete-typed rather than built on an interface so the
// query hot path avoids virtual dispatch.
type Entry struct {
	Key  uint32
	Node uint32
}

// IndexedHeap is a 4-ary min-heap over elements with a distinct Node id in
// [0, capacity). A parallel pos slice maps index -> heap position so
// membership tests, decrease-key and increase-key run without scanning.
//
// Sifting uses the hole technique: the moving element is held aside and
// children/parents are shifted into the hole by single-slot copies: the
// element is written into the final hole once, not swapped pairwise at every
// level.
type IndexedHeap struct {
	data []Entry
	pos  []uint32
}

// NewIndexedHeap creates an empty heap whose elements carry indices in
// [0, capacity).
func NewIndexedHeap(capacity uint32) *IndexedHeap {
	pos := make([]uint32, capacity)
	for i := range pos {
		pos[i] = invalidPosition
	}
	return &IndexedHeap{pos: pos}
}

// Len returns the number of elements currently stored.
func (h *IndexedHeap) Len() int { return len(h.data) }

// Contains reports whether an element with the given index is present.
func (h *IndexedHeap) Contains(index uint32) bool {
	return h.pos[index] != invalidPosition
}

// Peek returns the minimum element without removing it.
func (h *IndexedHeap) Peek() (Entry, bool) {
	if len(h.data) == 0 {
		return Entry{}, false
	}
	return h.data[0], true
}

// Push inserts a new element. Precondition: no element with this index is
// currently present — violating it is a programmer error.
func (h *IndexedHeap) Push(e Entry) {
	if h.Contains(e.Node) {
		panic("bits: push of element already present in heap")
	}
	insertAt := uint32(len(h.data))
	h.data = append(h.data, e)
	h.pos[e.Node] = insertAt
	h.siftUp(insertAt, e)
}

// Pop removes and returns the minimum element.
func (h *IndexedHeap) Pop() (Entry, bool) {
	if len(h.data) == 0 {
		return Entry{}, false
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

// DecreaseKey lowers the key of an already-present element. Precondition:
// the element (by index) is currently in the heap, and the new key is not
// larger than the stored one.
func (h *IndexedHeap) DecreaseKey(e Entry) {
	p := h.pos[e.Node]
	h.siftUp(p, e)
}

// IncreaseKey raises the key of an already-present element. Precondition:
// the element (by index) is currently in the heap, and the new key is not
// smaller than the stored one.
func (h *IndexedHeap) IncreaseKey(e Entry) {
	p := h.pos[e.Node]
	h.siftDown(p, e)
}

// Clear empties the heap in O(k) over the currently stored k elements,
// resetting their pos entries instead of zeroing the whole pos array.
func (h *IndexedHeap) Clear() {
	for _, e := range h.data {
		h.pos[e.Node] = invalidPosition
	}
	h.data = h.data[:0]
}

func (h *IndexedHeap) siftUp(position uint32, e Entry) {
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

func (h *IndexedHeap) siftDown(position uint32, e Entry) {
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
