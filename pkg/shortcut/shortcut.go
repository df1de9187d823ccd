// Package shortcut records, for every CCH arc, which original edge or
// which intermediate node a shortcut's weight at any given departure time
// actually resolves through — the information the query engine's
// unpacking step needs to turn a compact customized weight back into a
// sequence of original edges.
package shortcut

import "sort"

// Kind distinguishes a CCH arc standing in for an original graph edge from
// one standing in for a path contracted away through an intermediate node.
type Kind uint8

const (
	// Original means the arc's current-best weight at this time is simply
	// the base graph edge between its two endpoints.
	Original Kind = iota
	// Via means the arc's current-best weight at this time is the
	// concatenation of the down-arc into Node and the up-arc out of it.
	Via
)

// Source identifies, for one time interval, what a shortcut's weight
// stands for.
type Source struct {
	Kind Kind
	Node uint32 // valid when Kind == Via: the node the path is routed through
}

// Sources is a shortcut's source list: a sequence of (start time, Source)
// pairs partitioning the period into intervals. Times is always
// non-empty and starts at 0; the source active at t is the last entry
// whose start time is <= t.
type Sources struct {
	Times   []float64
	Entries []Source
}

// NewConstant builds a Sources that is the same Source for the whole period.
func NewConstant(s Source) Sources {
	return Sources{Times: []float64{0}, Entries: []Source{s}}
}

// At returns the Source active at departure time t (reduced by the caller
// into [0, Period) beforehand).
func (s Sources) At(t float64) Source {
	i := sort.Search(len(s.Times), func(i int) bool { return s.Times[i] > t })
	if i == 0 {
		i = 1
	}
	return s.Entries[i-1]
}

// FromSelector builds a Sources from a tdfunc.Merge selector: at each
// breakpoint time, trueSource is used where the selector is true and
// falseSource where it is false. Consecutive equal entries are collapsed.
func FromSelector(times []float64, selector []bool, trueSource, falseSource Source) Sources {
	out := Sources{Times: make([]float64, 0, len(times)), Entries: make([]Source, 0, len(times))}
	for i, t := range times {
		s := falseSource
		if selector[i] {
			s = trueSource
		}
		if len(out.Entries) > 0 && out.Entries[len(out.Entries)-1] == s {
			continue
		}
		out.Times = append(out.Times, t)
		out.Entries = append(out.Entries, s)
	}
	return out
}
