package bitemporal

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gwright/bitemporal/temporal"
)

// RenderGrid lays out a scope's versions as an ASCII grid: rows are
// transaction-time slices, columns are valid-time slices, and each cell
// holds the letter token of the version occupying that bitemporal cell.
// A diagnostic and test-fixture aid, not part of the engine contract.
//
// Tokens are assigned a, b, c... in (tt_begin, vt_begin, id) order, so the
// earliest committed version is always "a". A cell claimed by more than
// one version (which the scope invariant rules out) renders as "*".
func RenderGrid(records []*Record) string {
	if len(records) == 0 {
		return "(no versions)\n"
	}

	ordered := make([]*Record, len(records))
	copy(ordered, records)
	sort.Slice(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.TTBegin != b.TTBegin {
			return a.TTBegin < b.TTBegin
		}
		if a.VTBegin != b.VTBegin {
			return a.VTBegin < b.VTBegin
		}
		return a.ID < b.ID
	})

	vtCuts := boundaries(ordered, func(r *Record) (temporal.Instant, temporal.Instant) {
		return r.VTBegin, r.VTEnd
	})
	ttCuts := boundaries(ordered, func(r *Record) (temporal.Instant, temporal.Instant) {
		return r.TTBegin, r.TTEnd
	})

	colHeads := make([]string, 0, len(vtCuts)-1)
	for i := 0; i+1 < len(vtCuts); i++ {
		colHeads = append(colHeads, temporal.NewInterval(vtCuts[i], vtCuts[i+1]).String())
	}
	rowHeads := make([]string, 0, len(ttCuts)-1)
	for i := 0; i+1 < len(ttCuts); i++ {
		rowHeads = append(rowHeads, temporal.NewInterval(ttCuts[i], ttCuts[i+1]).String())
	}

	const corner = "tt\\vt"
	rowWidth := len(corner)
	for _, h := range rowHeads {
		if len(h) > rowWidth {
			rowWidth = len(h)
		}
	}

	var b strings.Builder
	writeLine := func(line string) {
		b.WriteString(strings.TrimRight(line, " "))
		b.WriteByte('\n')
	}

	var line strings.Builder
	fmt.Fprintf(&line, "%-*s", rowWidth, corner)
	for _, h := range colHeads {
		fmt.Fprintf(&line, "  %-*s", len(h), h)
	}
	writeLine(line.String())

	for ri, rh := range rowHeads {
		line.Reset()
		fmt.Fprintf(&line, "%-*s", rowWidth, rh)
		for ci, ch := range colHeads {
			fmt.Fprintf(&line, "  %-*s", len(ch), cellToken(ordered, vtCuts[ci], ttCuts[ri]))
		}
		writeLine(line.String())
	}

	b.WriteByte('\n')
	for i, r := range ordered {
		fmt.Fprintf(&b, "%s: valid=%s tx=%s\n", token(i), r.ValidInterval(), r.TransactionInterval())
	}
	return b.String()
}

// boundaries collects the sorted distinct cut points of one temporal axis.
func boundaries(records []*Record, axis func(*Record) (temporal.Instant, temporal.Instant)) []temporal.Instant {
	seen := map[temporal.Instant]bool{}
	var cuts []temporal.Instant
	for _, r := range records {
		begin, end := axis(r)
		for _, c := range [...]temporal.Instant{begin, end} {
			if !seen[c] {
				seen[c] = true
				cuts = append(cuts, c)
			}
		}
	}
	sort.Slice(cuts, func(i, j int) bool { return cuts[i] < cuts[j] })
	return cuts
}

// cellToken finds the version whose region covers the cell whose lower
// corner is (vt, tt).
func cellToken(ordered []*Record, vt, tt temporal.Instant) string {
	out := ""
	for i, r := range ordered {
		if r.ValidInterval().ContainsInstant(vt) && r.TransactionInterval().ContainsInstant(tt) {
			if out != "" {
				return "*"
			}
			out = token(i)
		}
	}
	return out
}

func token(i int) string {
	switch {
	case i < 26:
		return string(rune('a' + i))
	case i < 52:
		return string(rune('A' + i - 26))
	default:
		return "?"
	}
}
