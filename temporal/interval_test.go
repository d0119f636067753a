package temporal

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func iv(begin, end Instant) Interval { return NewInterval(begin, end) }

func TestInterval_Intersects(t *testing.T) {
	cases := []struct {
		desc string
		a, b Interval
		want bool
	}{
		{"proper overlap", iv(2, 8), iv(5, 10), true},
		{"nested", iv(2, 8), iv(3, 4), true},
		{"identical", iv(2, 8), iv(2, 8), true},
		{"abutting left", iv(2, 4), iv(4, 6), false},
		{"abutting right", iv(4, 6), iv(2, 4), false},
		{"disjoint", iv(2, 4), iv(6, 8), false},
		{"instant inside", iv(2, 8), Point(5), true},
		{"instant at begin", iv(2, 8), Point(2), true},
		{"instant at end excluded", iv(2, 8), Point(8), false},
		{"instant before", iv(2, 8), Point(1), false},
		{"equal instants", Point(3), Point(3), true},
		{"unequal instants", Point(3), Point(4), false},
		{"open ended vs instant", iv(2, Forever), Point(1_000_000), true},
		{"all time vs anything", AllTime(), iv(5, 6), true},
		{"open begin", iv(NegativeForever, 4), iv(3, 9), true},
	}
	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.a.Intersects(tc.b))
			// Disjointness is symmetric.
			assert.Equal(t, tc.want, tc.b.Intersects(tc.a))
		})
	}
}

func TestInterval_HalfOpenContainment(t *testing.T) {
	// For finite a < b, [a,b) intersects instant x exactly when a <= x < b.
	a, b := Instant(3), Instant(7)
	r := iv(a, b)
	for x := Instant(0); x < 10; x++ {
		want := a <= x && x < b
		assert.Equal(t, want, r.Intersects(Point(x)), "x=%d", x)
		assert.Equal(t, want, r.ContainsInstant(x), "x=%d", x)
	}
}

func TestInterval_Covers(t *testing.T) {
	cases := []struct {
		desc string
		a, b Interval
		want bool
	}{
		{"covers nested", iv(2, 8), iv(3, 5), true},
		{"covers itself", iv(2, 8), iv(2, 8), true},
		{"covers shared begin", iv(2, 8), iv(2, 5), true},
		{"covers shared end", iv(2, 8), iv(5, 8), true},
		{"partial overlap", iv(2, 8), iv(5, 10), false},
		{"instant inside", iv(2, 8), Point(2), true},
		{"instant at end", iv(2, 8), Point(8), false},
		{"wider", iv(3, 5), iv(2, 8), false},
		{"all time covers open ended", AllTime(), iv(2, Forever), true},
	}
	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.a.Covers(tc.b))
		})
	}
}

func TestInterval_Meets(t *testing.T) {
	assert.True(t, iv(2, 4).Meets(iv(4, 6)))
	assert.True(t, iv(4, 6).Meets(iv(2, 4)))
	assert.False(t, iv(2, 4).Meets(iv(5, 6)))
	assert.False(t, iv(2, 5).Meets(iv(4, 6)))
}

func TestInterval_Merge(t *testing.T) {
	t.Run("overlapping", func(t *testing.T) {
		m, err := iv(2, 6).Merge(iv(4, 9))
		require.NoError(t, err)
		assert.Equal(t, iv(2, 9), m)
	})
	t.Run("abutting", func(t *testing.T) {
		m, err := iv(2, 4).Merge(iv(4, 6))
		require.NoError(t, err)
		assert.Equal(t, iv(2, 6), m)
	})
	t.Run("nested", func(t *testing.T) {
		m, err := iv(2, 9).Merge(iv(4, 6))
		require.NoError(t, err)
		assert.Equal(t, iv(2, 9), m)
	})
	t.Run("disjoint fails", func(t *testing.T) {
		_, err := iv(2, 4).Merge(iv(6, 8))
		require.Error(t, err)
		var dre *DisjointRangeError
		require.ErrorAs(t, err, &dre)
		assert.Equal(t, iv(2, 4), dre.A)
		assert.Equal(t, iv(6, 8), dre.B)
	})
	t.Run("open ended", func(t *testing.T) {
		m, err := iv(2, Forever).Merge(iv(5, 9))
		require.NoError(t, err)
		assert.Equal(t, iv(2, Forever), m)
	})
}

func TestInterval_Intersection(t *testing.T) {
	cases := []struct {
		desc   string
		a, b   Interval
		want   Interval
		wantOK bool
	}{
		{"proper overlap", iv(2, 6), iv(4, 9), iv(4, 6), true},
		{"nested", iv(2, 9), iv(4, 6), iv(4, 6), true},
		{"identical", iv(2, 6), iv(2, 6), iv(2, 6), true},
		{"abutting has none", iv(2, 4), iv(4, 6), Interval{}, false},
		{"disjoint has none", iv(2, 4), iv(6, 8), Interval{}, false},
		{"instant inside", iv(2, 8), Point(5), Point(5), true},
		{"open ended", iv(2, Forever), iv(5, 9), iv(5, 9), true},
	}
	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			got, ok := tc.a.Intersection(tc.b)
			assert.Equal(t, tc.wantOK, ok)
			if tc.wantOK {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestInterval_Difference(t *testing.T) {
	cases := []struct {
		desc string
		a, b Interval
		want []Interval
	}{
		{"inner bite", iv(2, 8), iv(3, 7), []Interval{iv(2, 3), iv(7, 8)}},
		{"identical leaves nothing", iv(2, 8), iv(2, 8), []Interval{}},
		{"shared begin", iv(2, 8), iv(2, 5), []Interval{iv(5, 8)}},
		{"shared end", iv(2, 8), iv(5, 8), []Interval{iv(2, 5)}},
		{"staggered", iv(2, 6), iv(4, 9), []Interval{iv(2, 4), iv(6, 9)}},
		{"disjoint keeps both", iv(2, 4), iv(6, 8), []Interval{iv(2, 4), iv(6, 8)}},
		{"disjoint reversed keeps order", iv(6, 8), iv(2, 4), []Interval{iv(2, 4), iv(6, 8)}},
		{"open ended bite", iv(2, Forever), iv(3, Forever), []Interval{iv(2, 3)}},
		{"covering bite wider on both sides", iv(2, 8), iv(0, 10), []Interval{iv(0, 2), iv(8, 10)}},
	}
	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			got := tc.a.Difference(tc.b)
			assert.Equal(t, tc.want, got)
			// The symmetric difference is symmetric.
			assert.Equal(t, got, tc.b.Difference(tc.a))
		})
	}
}

func TestInterval_DifferenceRoundTrip(t *testing.T) {
	// For intersecting A and B: merging the intersection with all
	// difference fragments must reconstruct A.Merge(B) exactly.
	pairs := []struct{ a, b Interval }{
		{iv(2, 8), iv(3, 7)},
		{iv(2, 6), iv(4, 9)},
		{iv(2, 8), iv(2, 5)},
		{iv(0, 10), iv(3, 10)},
		{iv(2, Forever), iv(5, 9)},
	}
	for _, p := range pairs {
		t.Run(p.a.String()+" vs "+p.b.String(), func(t *testing.T) {
			want, err := p.a.Merge(p.b)
			require.NoError(t, err)

			inter, ok := p.a.Intersection(p.b)
			require.True(t, ok)

			pieces := append([]Interval{inter}, p.a.Difference(p.b)...)
			sort.Slice(pieces, func(i, j int) bool {
				return pieces[i].Compare(pieces[j]) < 0
			})

			// Pieces must tile the merge with no gap and no overlap.
			got := pieces[0]
			for _, piece := range pieces[1:] {
				require.True(t, got.Meets(piece), "gap or overlap between %s and %s", got, piece)
				merged, err := got.Merge(piece)
				require.NoError(t, err)
				got = merged
			}
			assert.Equal(t, want, got)
		})
	}
}

func TestInterval_CompareOrdering(t *testing.T) {
	in := []Interval{iv(6, 8), iv(2, 4), iv(2, Forever), AllTime(), iv(NegativeForever, 3), Point(5)}
	sort.Slice(in, func(i, j int) bool { return in[i].Compare(in[j]) < 0 })
	want := []Interval{iv(NegativeForever, 3), AllTime(), iv(2, 4), iv(2, Forever), Point(5), iv(6, 8)}
	assert.Equal(t, want, in)
}

func TestInterval_String(t *testing.T) {
	assert.Equal(t, "[2,8)", iv(2, 8).String())
	assert.Equal(t, "[2,inf)", iv(2, Forever).String())
	assert.Equal(t, "[-inf,inf)", AllTime().String())
}
