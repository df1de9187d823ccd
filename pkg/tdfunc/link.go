package tdfunc

import "sort"

// Link composes two consecutive travel-time functions into the function of
// the concatenated arc: (f link g)(t) = f(t) + g(t + f(t)). Departing along
// f at t, arriving (and then departing along g) at t+f(t), and arriving at
// the far end of g at t+f(t)+g(t+f(t)).
//
// The result is exactly piecewise linear, not merely an approximation: new
// breakpoints appear not only at f's own breakpoints but wherever the
// arrival curve t -> t+f(t) crosses one of g's breakpoints, since that is
// where g's slope changes kick in. We compute those crossing times by
// inverting the (monotone, by the FIFO property) arrival curve segment by
// segment.
func Link(f, g PLF) PLF {
	candidates := make([]float64, 0, len(f.Points)+len(g.Points))
	for _, p := range f.Points {
		candidates = append(candidates, p.T)
	}

	arr := newArrivalCurve(f)
	for _, q := range g.Points {
		for _, shift := range [...]float64{-Period, 0, Period} {
			target := q.T + shift
			if t, ok := arr.invert(target); ok {
				candidates = append(candidates, t)
			}
		}
	}

	candidates = dedupeSorted(candidates, 0, Period)

	points := make([]Point, 0, len(candidates))
	for _, t := range candidates {
		fv := f.Eval(t)
		gv := g.Eval(t + fv)
		points = append(points, Point{T: t, V: fv + gv})
	}
	return New(points)
}

// arrivalSeg is one linear piece of the arrival curve a(t) = t + f(t) over
// [t0, t1], unwrapped (not reduced modulo Period) so two functions linked
// back to back see a continuously increasing arrival time.
type arrivalSeg struct {
	t0, t1 float64
	a0, a1 float64
}

type arrivalCurve []arrivalSeg

func newArrivalCurve(f PLF) arrivalCurve {
	pts := f.Points
	segs := make(arrivalCurve, 0, len(pts)-1)
	for i := 0; i+1 < len(pts); i++ {
		a, b := pts[i], pts[i+1]
		segs = append(segs, arrivalSeg{
			t0: a.T, t1: b.T,
			a0: a.T + a.V, a1: b.T + b.V,
		})
	}
	return segs
}

// invert finds t such that a(t) == target, for target in the (unwrapped)
// range this curve covers. FIFO guarantees a(t) is non-decreasing, so at
// most one segment (a contiguous run of degenerate ones) contains target.
func (c arrivalCurve) invert(target float64) (float64, bool) {
	for _, seg := range c {
		lo, hi := seg.a0, seg.a1
		if lo > hi {
			lo, hi = hi, lo
		}
		if target < lo-Epsilon || target > hi+Epsilon {
			continue
		}
		span := seg.a1 - seg.a0
		if FuzzyEqual(span, 0) {
			return seg.t0, true
		}
		frac := (target - seg.a0) / span
		t := seg.t0 + frac*(seg.t1-seg.t0)
		if t < 0 {
			t = 0
		}
		if t > Period {
			t = Period
		}
		return t, true
	}
	return 0, false
}

func dedupeSorted(vals []float64, lo, hi float64) []float64 {
	filtered := vals[:0:0]
	for _, v := range vals {
		if v < lo {
			v = lo
		}
		if v > hi {
			v = hi
		}
		filtered = append(filtered, v)
	}
	sort.Float64s(filtered)
	out := filtered[:0:0]
	for i, v := range filtered {
		if i == 0 || v-out[len(out)-1] > Epsilon {
			out = append(out, v)
		}
	}
	return out
}
