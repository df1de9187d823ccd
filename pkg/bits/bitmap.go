package bits

import "math/bits"

const (
	wordBits     = 64
	prefixBits   = 512 // one cache line of bits
	wordsPerLine = prefixBits / wordBits
)

// RankSelectMap maps a sparse id space [0, U) to a dense index space
// [0, popcount) preserving order: set the bit for every sparse id that is
// present, call Build, then Rank/At/AtOrNextLower translate sparse -> dense.
//
// rank(i) is answered in O(1): one lookup into a prefix-popcount array
// sampled every 512 bits (one cache line), plus a popcount over at most 8
// words within that line.
type RankSelectMap struct {
	words  []uint64
	prefix []int // prefix[k] = popcount of words [0, k*wordsPerLine)
	size   uint32
	built  bool
}

// NewRankSelectMap creates a bitmap over the sparse id space [0, universe).
func NewRankSelectMap(universe uint32) *RankSelectMap {
	nWords := (int(universe) + wordBits - 1) / wordBits
	return &RankSelectMap{
		words: make([]uint64, nWords),
		size:  universe,
	}
}

// Set marks the sparse id i as present. Must be called before Build.
func (m *RankSelectMap) Set(i uint32) {
	m.words[i/wordBits] |= 1 << (i % wordBits)
	m.built = false
}

// Test reports whether the sparse id i is marked present.
func (m *RankSelectMap) Test(i uint32) bool {
	return m.words[i/wordBits]&(1<<(i%wordBits)) != 0
}

// Unset clears the bit for sparse id i. Like Set, only meaningful before
// Build (or if Rank/At/AtOrNextLower are not used afterward) since it
// invalidates the prefix-popcount index.
func (m *RankSelectMap) Unset(i uint32) {
	m.words[i/wordBits] &^= 1 << (i % wordBits)
	m.built = false
}

// Clear unsets every bit, leaving the universe size unchanged. Cheaper than
// allocating a fresh RankSelectMap when the same universe is reused across
// many queries, e.g. as a per-query corridor or already-visited mask.
func (m *RankSelectMap) Clear() {
	for i := range m.words {
		m.words[i] = 0
	}
	m.built = false
}

// Build computes the prefix-popcount index. Must be called once after all
// Set calls and before any Rank/At/AtOrNextLower call.
func (m *RankSelectMap) Build() {
	nLines := (len(m.words) + wordsPerLine - 1) / wordsPerLine
	m.prefix = make([]int, nLines+1)
	sum := 0
	for line := 0; line < nLines; line++ {
		m.prefix[line] = sum
		start := line * wordsPerLine
		end := min(start+wordsPerLine, len(m.words))
		for _, w := range m.words[start:end] {
			sum += bits.OnesCount64(w)
		}
	}
	m.prefix[nLines] = sum
	m.built = true
}

// Len returns the total number of set bits (the size of the dense id space).
func (m *RankSelectMap) Len() int {
	if len(m.prefix) == 0 {
		return 0
	}
	return m.prefix[len(m.prefix)-1]
}

// Rank returns the number of set bits in [0, i). O(1) after Build.
func (m *RankSelectMap) Rank(i uint32) int {
	if int(i) >= len(m.words)*wordBits {
		return m.prefix[len(m.prefix)-1]
	}

	line := int(i) / prefixBits
	sum := m.prefix[line]

	lineStartWord := line * wordsPerLine
	targetWord := int(i) / wordBits
	for w := lineStartWord; w < targetWord; w++ {
		sum += bits.OnesCount64(m.words[w])
	}

	bitIdx := i % wordBits
	if bitIdx > 0 {
		mask := (uint64(1) << bitIdx) - 1
		sum += bits.OnesCount64(m.words[targetWord] & mask)
	}
	return sum
}

// At returns the dense index of sparse id i. Precondition: bit i is set.
func (m *RankSelectMap) At(i uint32) int {
	if !m.Test(i) {
		panic("bits: At called on an unset id")
	}
	return m.Rank(i)
}

// AtOrNextLower returns rank(i+1)-1: the dense index of i if present, else
// of the nearest lower present id. Monotone non-decreasing in i.
func (m *RankSelectMap) AtOrNextLower(i uint32) int {
	return m.Rank(i+1) - 1
}
