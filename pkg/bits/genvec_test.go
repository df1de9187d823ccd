package bits

import "testing"

func TestTimestampedVectorBasic(t *testing.T) {
	v := NewTimestampedVector(4, ^uint32(0))

	for i := uint32(0); i < 4; i++ {
		if got := v.Get(i); got != ^uint32(0) {
			t.Fatalf("Get(%d) = %d before any Set, want default", i, got)
		}
	}

	v.Set(2, 42)
	if got := v.Get(2); got != 42 {
		t.Fatalf("Get(2) = %d, want 42", got)
	}
	if !v.IsSet(2) {
		t.Fatal("IsSet(2) should be true after Set")
	}
	if v.IsSet(0) {
		t.Fatal("IsSet(0) should be false, never written")
	}
}

func TestTimestampedVectorReset(t *testing.T) {
	v := NewTimestampedVector(4, 0)
	v.Set(0, 7)
	v.Set(1, 9)

	v.Reset()

	if got := v.Get(0); got != 0 {
		t.Fatalf("Get(0) after Reset = %d, want default 0", got)
	}
	if v.IsSet(0) || v.IsSet(1) {
		t.Fatal("Reset should clear IsSet for all slots")
	}

	v.Set(0, 100)
	if got := v.Get(0); got != 100 {
		t.Fatalf("Get(0) after Set post-Reset = %d, want 100", got)
	}
}

func TestTimestampedVectorWraparound(t *testing.T) {
	v := NewTimestampedVector(2, 0)
	v.current = ^uint32(0) // force the next Reset to wrap to 0
	v.Set(0, 5)
	v.Set(1, 6)

	v.Reset()

	if v.current != 1 {
		t.Fatalf("current after wraparound = %d, want 1", v.current)
	}
	if v.IsSet(0) || v.IsSet(1) {
		t.Fatal("wraparound reset must clear all generations")
	}
	if got := v.Get(0); got != 0 {
		t.Fatalf("Get(0) after wraparound reset = %d, want default", got)
	}
}
