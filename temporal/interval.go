package temporal

import "fmt"

// Interval is a half-open time interval [begin, end). The zero value is the
// degenerate instant [0, 0).
//
// Fields are unexported so an interval can never be mutated after
// construction; all transforms return new values.
type Interval struct {
	begin Instant
	end   Instant
}

// NewInterval constructs the interval [begin, end).
func NewInterval(begin, end Instant) Interval {
	return Interval{begin: begin, end: end}
}

// AllTime is the interval spanning both sentinels.
func AllTime() Interval {
	return Interval{begin: NegativeForever, end: Forever}
}

// Point constructs the degenerate interval [at, at), which the algebra
// treats as the single instant at.
func Point(at Instant) Interval {
	return Interval{begin: at, end: at}
}

// Begin returns the inclusive lower bound.
func (iv Interval) Begin() Instant { return iv.begin }

// End returns the exclusive upper bound.
func (iv Interval) End() Instant { return iv.end }

// IsInstant reports whether the interval is degenerate (begin == end).
func (iv Interval) IsInstant() bool { return iv.begin == iv.end }

// ContainsInstant reports whether the instant falls inside the interval
// under half-open rules: begin <= at < end.
func (iv Interval) ContainsInstant(at Instant) bool {
	return iv.begin <= at && at < iv.end
}

// Intersects reports whether the two intervals share at least one instant.
// A degenerate argument is tested as a single instant against the other
// interval; two degenerate intervals intersect only when equal.
func (iv Interval) Intersects(o Interval) bool {
	switch {
	case iv.IsInstant() && o.IsInstant():
		return iv.begin == o.begin
	case o.IsInstant():
		return iv.ContainsInstant(o.begin)
	case iv.IsInstant():
		return o.ContainsInstant(iv.begin)
	default:
		return o.begin < iv.end && iv.begin < o.end
	}
}

// Covers reports whether o lies entirely within iv. A degenerate o is
// covered when iv contains its instant.
func (iv Interval) Covers(o Interval) bool {
	if o.IsInstant() {
		return iv.ContainsInstant(o.begin)
	}
	return iv.begin <= o.begin && o.end <= iv.end
}

// Meets reports adjacency: one interval ends exactly where the other
// begins, with no gap and no overlap.
func (iv Interval) Meets(o Interval) bool {
	return iv.end == o.begin || o.end == iv.begin
}

// Merge returns the smallest interval covering both iv and o. It fails
// with a DisjointRangeError unless the intervals intersect or meet.
func (iv Interval) Merge(o Interval) (Interval, error) {
	if !iv.Intersects(o) && !iv.Meets(o) {
		return Interval{}, &DisjointRangeError{A: iv, B: o}
	}
	return Interval{
		begin: minInstant(iv.begin, o.begin),
		end:   maxInstant(iv.end, o.end),
	}, nil
}

// Intersection returns the overlap [max(begins), min(ends)) and true, or
// the zero interval and false when the intervals do not overlap. Merely
// abutting intervals have no intersection.
func (iv Interval) Intersection(o Interval) (Interval, bool) {
	if !iv.Intersects(o) {
		return Interval{}, false
	}
	return Interval{
		begin: maxInstant(iv.begin, o.begin),
		end:   minInstant(iv.end, o.end),
	}, true
}

// Difference returns the symmetric difference of iv and o: the 0, 1 or 2
// sub-intervals covered by exactly one of the two. Degenerate fragments are
// dropped. Results are ordered by begin.
//
// The revision engine uses this to find the leftover valid-time fragments
// of an overlapped version that fall outside a deleted or revised range.
func (iv Interval) Difference(o Interval) []Interval {
	out := make([]Interval, 0, 2)
	if !iv.Intersects(o) {
		a, b := iv, o
		if b.Compare(a) < 0 {
			a, b = b, a
		}
		for _, f := range [...]Interval{a, b} {
			if !f.IsInstant() {
				out = append(out, f)
			}
		}
		return out
	}
	left := Interval{
		begin: minInstant(iv.begin, o.begin),
		end:   maxInstant(iv.begin, o.begin),
	}
	right := Interval{
		begin: minInstant(iv.end, o.end),
		end:   maxInstant(iv.end, o.end),
	}
	if !left.IsInstant() {
		out = append(out, left)
	}
	if !right.IsInstant() {
		out = append(out, right)
	}
	return out
}

// Compare orders intervals by begin, with end as the tie-break. Both keys
// share one total order with the sentinels, so sorting is well-defined even
// when every begin is NegativeForever.
func (iv Interval) Compare(o Interval) int {
	switch {
	case iv.begin < o.begin:
		return -1
	case iv.begin > o.begin:
		return 1
	case iv.end < o.end:
		return -1
	case iv.end > o.end:
		return 1
	default:
		return 0
	}
}

// String renders the interval as [begin,end).
func (iv Interval) String() string {
	return fmt.Sprintf("[%s,%s)", iv.begin, iv.end)
}

// DisjointRangeError reports a Merge of two intervals that neither overlap
// nor abut.
type DisjointRangeError struct {
	A Interval
	B Interval
}

func (e *DisjointRangeError) Error() string {
	return fmt.Sprintf("cannot merge disjoint intervals %s and %s", e.A, e.B)
}
