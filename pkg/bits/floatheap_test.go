package bits

import "testing"

func TestFloatHeapNonDecreasingPopSequence(t *testing.T) {
	h := NewIndexedFloatHeap(6)
	keys := []float64{5.5, 1.2, 9.9, 3.3, 0.1, 7.7}
	for i, k := range keys {
		h.Push(FloatEntry{Key: k, Node: uint32(i)})
	}
	prev := -1.0
	for h.Len() > 0 {
		e, _ := h.Pop()
		if e.Key < prev {
			t.Fatalf("pop sequence not non-decreasing: %v after %v", e.Key, prev)
		}
		prev = e.Key
	}
}

func TestFloatHeapDecreaseKey(t *testing.T) {
	h := NewIndexedFloatHeap(4)
	h.Push(FloatEntry{Key: 10, Node: 0})
	h.Push(FloatEntry{Key: 20, Node: 1})
	h.Push(FloatEntry{Key: 30, Node: 2})

	h.DecreaseKey(FloatEntry{Key: 1, Node: 2})
	top, _ := h.Peek()
	if top.Node != 2 || top.Key != 1 {
		t.Fatalf("Peek() = %+v, want node 2 key 1", top)
	}
}

func TestFloatHeapContainsAndClear(t *testing.T) {
	h := NewIndexedFloatHeap(3)
	h.Push(FloatEntry{Key: 1, Node: 0})
	if !h.Contains(0) {
		t.Fatal("expected Contains(0) true")
	}
	h.Clear()
	if h.Contains(0) || h.Len() != 0 {
		t.Fatal("Clear should empty the heap")
	}
}
