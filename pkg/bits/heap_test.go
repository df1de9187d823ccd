package bits

import "testing"

// TestHeapDecreaseKey mirrors spec scenario S5: push keys {(5,a),(3,b),(7,c)};
// pop -> b; decrease_key((2,a)); pop -> a; pop -> c.
func TestHeapDecreaseKey(t *testing.T) {
	const a, b, c = 0, 1, 2
	h := NewIndexedHeap(3)

	h.Push(Entry{Key: 5, Node: a})
	h.Push(Entry{Key: 3, Node: b})
	h.Push(Entry{Key: 7, Node: c})

	got, ok := h.Pop()
	if !ok || got.Node != b {
		t.Fatalf("first pop = %+v, want node b", got)
	}

	h.DecreaseKey(Entry{Key: 2, Node: a})

	got, ok = h.Pop()
	if !ok || got.Node != a {
		t.Fatalf("second pop = %+v, want node a", got)
	}

	got, ok = h.Pop()
	if !ok || got.Node != c {
		t.Fatalf("third pop = %+v, want node c", got)
	}

	if _, ok := h.Pop(); ok {
		t.Fatalf("pop on empty heap should return ok=false")
	}
}

// TestHeapNonDecreasingPopSequence checks property 6: after any operation
// sequence, popping repeatedly yields a non-decreasing key sequence.
func TestHeapNonDecreasingPopSequence(t *testing.T) {
	keys := []uint32{40, 10, 30, 5, 25, 1, 99, 2, 17, 60}
	h := NewIndexedHeap(uint32(len(keys)))
	for i, k := range keys {
		h.Push(Entry{Key: k, Node: uint32(i)})
	}

	var last uint32
	count := 0
	for {
		e, ok := h.Pop()
		if !ok {
			break
		}
		if count > 0 && e.Key < last {
			t.Fatalf("pop sequence decreased: %d after %d", e.Key, last)
		}
		last = e.Key
		count++
	}
	if count != len(keys) {
		t.Fatalf("popped %d elements, want %d", count, len(keys))
	}
}

func TestHeapContainsAndClear(t *testing.T) {
	h := NewIndexedHeap(4)
	h.Push(Entry{Key: 1, Node: 0})
	h.Push(Entry{Key: 2, Node: 1})

	if !h.Contains(0) || !h.Contains(1) {
		t.Fatal("expected both nodes present")
	}
	if h.Contains(2) {
		t.Fatal("node 2 was never pushed")
	}

	h.Clear()
	if h.Len() != 0 {
		t.Fatalf("Len() after Clear = %d, want 0", h.Len())
	}
	if h.Contains(0) || h.Contains(1) {
		t.Fatal("Clear should reset pos entries")
	}

	// Re-push after clear must not trip the "already present" assertion.
	h.Push(Entry{Key: 5, Node: 0})
	if h.Len() != 1 {
		t.Fatalf("Len() after re-push = %d, want 1", h.Len())
	}
}

func TestHeapPushAlreadyPresentPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic when pushing an already-present index")
		}
	}()
	h := NewIndexedHeap(2)
	h.Push(Entry{Key: 1, Node: 0})
	h.Push(Entry{Key: 2, Node: 0})
}

func TestHeapIncreaseKey(t *testing.T) {
	h := NewIndexedHeap(3)
	h.Push(Entry{Key: 1, Node: 0})
	h.Push(Entry{Key: 2, Node: 1})
	h.Push(Entry{Key: 3, Node: 2})

	h.IncreaseKey(Entry{Key: 10, Node: 0})

	e, _ := h.Pop()
	if e.Node != 1 {
		t.Fatalf("after increase-key, min should be node 1, got %d", e.Node)
	}
}
