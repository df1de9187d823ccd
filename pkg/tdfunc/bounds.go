package tdfunc

// Bound computes a lower and an upper bounding function for f (a
// Douglas-Peucker-style simplification, but one-sided: a point is only
// dropped from the lower bound if the straight line connecting its
// neighbors stays at or below every value f actually takes in between, and
// symmetrically at-or-above for the upper bound).
//
// maxPoints only decides whether to simplify: a function with at most
// maxPoints breakpoints is returned unchanged as both bounds. Otherwise
// each bound keeps every breakpoint that lower <= f <= upper needs, so it
// can carry more than maxPoints breakpoints.
func Bound(f PLF, maxPoints int) (lower, upper PLF) {
	if len(f.Points) <= maxPoints {
		return f, f
	}
	return New(simplifyOneSided(f.Points, maxPoints, true)), New(simplifyOneSided(f.Points, maxPoints, false))
}

// simplifyOneSided keeps a subsequence of pts (always including both
// endpoints) such that linear interpolation between consecutive kept
// points never crosses to the wrong side of any dropped point in between:
// never above it when lower is true, never below it when lower is false.
// It greedily re-inserts whichever dropped point violates that worst, the
// same selection rule as Douglas-Peucker, until no violation remains.
func simplifyOneSided(pts []Point, maxPoints int, lower bool) []Point {
	kept := []int{0, len(pts) - 1}

	for {
		worstSeg, worstPoint, worstDev := -1, -1, Epsilon
		for k := 0; k+1 < len(kept); k++ {
			i0, i1 := kept[k], kept[k+1]
			if i1-i0 <= 1 {
				continue
			}
			a, b := pts[i0], pts[i1]
			span := b.T - a.T
			for j := i0 + 1; j < i1; j++ {
				frac := (pts[j].T - a.T) / span
				line := a.V + frac*(b.V-a.V)
				var dev float64
				if lower {
					dev = line - pts[j].V
				} else {
					dev = pts[j].V - line
				}
				if dev > worstDev {
					worstDev, worstSeg, worstPoint = dev, k, j
				}
			}
		}
		if worstSeg == -1 {
			break
		}
		kept = insertAt(kept, worstSeg+1, worstPoint)
		if len(kept) >= len(pts) {
			break
		}
	}

	out := make([]Point, len(kept))
	for i, idx := range kept {
		out[i] = pts[idx]
	}
	return out
}

func insertAt(s []int, pos, v int) []int {
	s = append(s, 0)
	copy(s[pos+1:], s[pos:])
	s[pos] = v
	return s
}
