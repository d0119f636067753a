package bitemporal

import (
	"time"

	"github.com/gwright/bitemporal/temporal"
)

// coerceZone turns the loosely-typed temporal arguments accepted by the
// read queries and by Delete into a bitemporal zone. The arity rules:
//
//	()                 -> all valid time, active rows only
//	(instant)          -> that valid instant, active rows only
//	(range)            -> that valid range, active rows only
//	(range, range)     -> (valid range, transaction range)
//	(range, instant)   -> (valid range, transaction instant)
//	(begin, end)       -> valid [begin, end), active rows only
//	(begin, end, at)   -> valid [begin, end), transaction instant at
//
// A defaulted transaction slice is the instant Forever: exactly the rows
// whose transaction-time interval is still open, independent of the
// clock. An explicit transaction instant uses half-open containment
// instead, which is what enables time travel through past states.
//
// Anything else fails with ErrCodeInvalidArguments. Scalars may be
// temporal.Instant, time.Time, or any Go integer type.
func coerceZone(args []any) (temporal.Zone, error) {
	activeOnly := temporal.Point(temporal.Forever)
	switch len(args) {
	case 0:
		return temporal.NewZone(temporal.AllTime(), activeOnly), nil

	case 1:
		if r, ok := asInterval(args[0]); ok {
			return temporal.NewZone(r, activeOnly), nil
		}
		if p, ok := asInstant(args[0]); ok {
			return temporal.NewZone(temporal.Point(p), activeOnly), nil
		}
		return temporal.Zone{}, newError(ErrCodeInvalidArguments, "", "",
			"temporal argument %T is neither a range nor an instant", args[0])

	case 2:
		if r, ok := asInterval(args[0]); ok {
			if tr, ok := asInterval(args[1]); ok {
				return temporal.NewZone(r, tr), nil
			}
			if tp, ok := asInstant(args[1]); ok {
				return temporal.NewZone(r, temporal.Point(tp)), nil
			}
			return temporal.Zone{}, newError(ErrCodeInvalidArguments, "", "",
				"transaction argument %T is neither a range nor an instant", args[1])
		}
		begin, okB := asInstant(args[0])
		end, okE := asInstant(args[1])
		if okB && okE {
			return temporal.NewZone(temporal.NewInterval(begin, end), activeOnly), nil
		}
		return temporal.Zone{}, newError(ErrCodeInvalidArguments, "", "",
			"temporal arguments (%T, %T) are not a valid begin/end pair", args[0], args[1])

	case 3:
		begin, okB := asInstant(args[0])
		end, okE := asInstant(args[1])
		at, okA := asInstant(args[2])
		if okB && okE && okA {
			return temporal.NewZone(temporal.NewInterval(begin, end), temporal.Point(at)), nil
		}
		return temporal.Zone{}, newError(ErrCodeInvalidArguments, "", "",
			"temporal arguments (%T, %T, %T) are not begin/end/at instants", args[0], args[1], args[2])

	default:
		return temporal.Zone{}, newError(ErrCodeInvalidArguments, "", "",
			"too many temporal arguments (%d, max 3)", len(args))
	}
}

func asInterval(v any) (temporal.Interval, bool) {
	switch t := v.(type) {
	case temporal.Interval:
		return t, true
	case *temporal.Interval:
		if t != nil {
			return *t, true
		}
	}
	return temporal.Interval{}, false
}

func asInstant(v any) (temporal.Instant, bool) {
	switch t := v.(type) {
	case temporal.Instant:
		return t, true
	case time.Time:
		return temporal.FromTime(t), true
	case int:
		return temporal.Instant(t), true
	case int8:
		return temporal.Instant(t), true
	case int16:
		return temporal.Instant(t), true
	case int32:
		return temporal.Instant(t), true
	case int64:
		return temporal.Instant(t), true
	case uint:
		return temporal.Instant(t), true
	case uint8:
		return temporal.Instant(t), true
	case uint16:
		return temporal.Instant(t), true
	case uint32:
		return temporal.Instant(t), true
	case uint64:
		return temporal.Instant(t), true
	}
	return 0, false
}
