package tdfunc

import "testing"

func TestConstantEval(t *testing.T) {
	f := Constant(60)
	for _, t0 := range []float64{0, 100, Period - 1, Period} {
		if got := f.Eval(t0); got != 60 {
			t.Fatalf("Eval(%v) = %v, want 60", t0, got)
		}
	}
}

func TestEvalInterpolatesBetweenBreakpoints(t *testing.T) {
	f := New([]Point{{T: 0, V: 10}, {T: 100, V: 30}, {T: Period, V: 10}})
	if got := f.Eval(50); !FuzzyEqual(got, 20) {
		t.Fatalf("Eval(50) = %v, want 20", got)
	}
	if got := f.Eval(0); !FuzzyEqual(got, 10) {
		t.Fatalf("Eval(0) = %v, want 10", got)
	}
	if got := f.Eval(100); !FuzzyEqual(got, 30) {
		t.Fatalf("Eval(100) = %v, want 30", got)
	}
}

func TestEvalWrapsPeriod(t *testing.T) {
	f := New([]Point{{T: 0, V: 10}, {T: Period, V: 10}})
	if got := f.Eval(Period + 50); !FuzzyEqual(got, 10) {
		t.Fatalf("Eval(Period+50) = %v, want 10", got)
	}
	if got := f.Eval(-50); !FuzzyEqual(got, 10) {
		t.Fatalf("Eval(-50) = %v, want 10", got)
	}
}

func TestIsFIFORejectsOvertaking(t *testing.T) {
	// departing at 0 arrives at 100; departing at 10 must arrive no
	// earlier, but value 80 makes arrival 90 < 100: not FIFO.
	f := New([]Point{{T: 0, V: 100}, {T: 10, V: 80}, {T: Period, V: 100}})
	if f.IsFIFO() {
		t.Fatal("expected non-FIFO function to be rejected")
	}
}

func TestIsFIFOAcceptsValid(t *testing.T) {
	f := New([]Point{{T: 0, V: 100}, {T: 50, V: 60}, {T: Period, V: 100}})
	if !f.IsFIFO() {
		t.Fatal("expected valid FIFO function to pass")
	}
}

func TestMinMax(t *testing.T) {
	f := New([]Point{{T: 0, V: 20}, {T: 50, V: 5}, {T: Period, V: 20}})
	if got := f.Min(); !FuzzyEqual(got, 5) {
		t.Fatalf("Min() = %v, want 5", got)
	}
	if got := f.Max(); !FuzzyEqual(got, 20) {
		t.Fatalf("Max() = %v, want 20", got)
	}
}
