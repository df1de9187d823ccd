package tdfunc

// Merge computes the pointwise minimum of two travel-time functions, used
// when two parallel shortcuts (or a shortcut and a competing path) both
// reach the same node and only the faster one should survive. Alongside
// the merged function it returns a selector slice of the same length as
// the result's Points: true where p was the winner at that breakpoint,
// false where q was. The query engine's unpacking walks this selector to
// know which of the two original sources to descend into at any given
// departure time.
func Merge(p, q PLF) (PLF, []bool) {
	ts := dedupeSorted(append(timesOf(p), timesOf(q)...), 0, Period)

	type sample struct{ t, pv, qv float64 }
	samples := make([]sample, len(ts))
	for i, t := range ts {
		samples[i] = sample{t: t, pv: p.Eval(t), qv: q.Eval(t)}
	}

	points := make([]Point, 0, len(samples)*2)
	selectors := make([]bool, 0, len(samples)*2)

	for i, s := range samples {
		if i > 0 {
			prev := samples[i-1]
			prevSel := prev.pv <= prev.qv+Epsilon
			curSel := s.pv <= s.qv+Epsilon
			if prevSel != curSel {
				if cross, ok := intersectSegments(prev.t, prev.pv, prev.qv, s.t, s.pv, s.qv); ok {
					v := min(p.Eval(cross), q.Eval(cross))
					points = append(points, Point{T: cross, V: v})
					selectors = append(selectors, p.Eval(cross) <= q.Eval(cross)+Epsilon)
				}
			}
		}
		v, sel := s.pv, true
		if s.qv < s.pv {
			v, sel = s.qv, false
		}
		points = append(points, Point{T: s.t, V: v})
		selectors = append(selectors, sel)
	}

	return New(points), selectors
}

func timesOf(f PLF) []float64 {
	out := make([]float64, len(f.Points))
	for i, p := range f.Points {
		out[i] = p.T
	}
	return out
}

// intersectSegments finds the time in (t0, t1) at which two linear segments,
// defined by their endpoint values, cross. Returns ok=false if they are
// parallel (no single crossing) or the crossing falls outside the segment.
func intersectSegments(t0, pv0, qv0, t1, pv1, qv1 float64) (float64, bool) {
	if t1-t0 < Epsilon {
		return 0, false
	}
	dSlopeNum := (pv1 - pv0) - (qv1 - qv0)
	if FuzzyEqual(dSlopeNum, 0) {
		return 0, false
	}
	frac := (qv0 - pv0) / dSlopeNum
	if frac < 0 || frac > 1 {
		return 0, false
	}
	return t0 + frac*(t1-t0), true
}
