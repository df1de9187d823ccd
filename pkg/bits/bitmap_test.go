package bits

import "testing"

func buildFixtureMap(t *testing.T) *RankSelectMap {
	t.Helper()
	m := NewRankSelectMap(1000)
	for _, i := range []uint32{31, 52, 2, 130, 0, 149, 999} {
		m.Set(i)
	}
	m.Build()
	return m
}

func TestRankSelectMapAt(t *testing.T) {
	m := buildFixtureMap(t)
	cases := map[uint32]int{0: 0, 2: 1, 52: 3, 130: 4, 149: 5, 999: 6}
	for key, want := range cases {
		if got := m.At(key); got != want {
			t.Errorf("At(%d) = %d, want %d", key, got, want)
		}
	}
}

func TestRankSelectMapAtOrNextLower(t *testing.T) {
	m := buildFixtureMap(t)
	cases := map[uint32]int{0: 0, 1: 0, 2: 1, 3: 1, 52: 3}
	for key, want := range cases {
		if got := m.AtOrNextLower(key); got != want {
			t.Errorf("AtOrNextLower(%d) = %d, want %d", key, got, want)
		}
	}
}

func TestRankSelectMapLen(t *testing.T) {
	m := buildFixtureMap(t)
	if got := m.Len(); got != 7 {
		t.Fatalf("Len() = %d, want 7", got)
	}
}

func TestRankSelectMapAcrossWordBoundary(t *testing.T) {
	m := NewRankSelectMap(1000)
	m.Set(0)
	m.Set(64)
	m.Build()

	if got := m.At(0); got != 0 {
		t.Errorf("At(0) = %d, want 0", got)
	}
	if got := m.At(64); got != 1 {
		t.Errorf("At(64) = %d, want 1", got)
	}
}

func TestRankSelectMapAtOrNextLowerMonotone(t *testing.T) {
	m := buildFixtureMap(t)
	prev := m.AtOrNextLower(0)
	for i := uint32(1); i < 1000; i++ {
		cur := m.AtOrNextLower(i)
		if cur < prev {
			t.Fatalf("AtOrNextLower not monotone at %d: %d -> %d", i, prev, cur)
		}
		prev = cur
	}
}

func TestRankSelectMapAtPanicsWhenUnset(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic calling At on an unset bit")
		}
	}()
	m := buildFixtureMap(t)
	m.At(1)
}

func TestRankSelectMapRankMatchesPopcount(t *testing.T) {
	m := NewRankSelectMap(200)
	set := map[uint32]bool{}
	for _, i := range []uint32{3, 17, 63, 64, 65, 127, 128, 199} {
		m.Set(i)
		set[i] = true
	}
	m.Build()

	for i := uint32(0); i <= 200; i++ {
		want := 0
		for j := uint32(0); j < i; j++ {
			if set[j] {
				want++
			}
		}
		if got := m.Rank(i); got != want {
			t.Fatalf("Rank(%d) = %d, want %d", i, got, want)
		}
	}
}
