package temporal

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Instant is a point on a temporal axis, in nanoseconds since the Unix
// epoch. Tests and small fixtures may use raw small integers; the algebra
// only requires a total order.
//
// Forever and NegativeForever are ordinary Instant values at the extremes
// of the int64 range, so <, <=, min and max work uniformly across finite
// and infinite endpoints.
type Instant int64

const (
	// Forever is the positive-infinity sentinel. A record whose
	// transaction-time interval ends at Forever is still active.
	Forever Instant = math.MaxInt64

	// NegativeForever is the negative-infinity sentinel.
	NegativeForever Instant = math.MinInt64
)

// FromTime converts a wall-clock time to an Instant.
func FromTime(t time.Time) Instant {
	return Instant(t.UnixNano())
}

// Now returns the current wall-clock instant.
func Now() Instant {
	return FromTime(time.Now())
}

// Time converts a finite instant back to a wall-clock time.
// Results for Forever and NegativeForever are not meaningful; callers
// should check IsFinite first.
func (i Instant) Time() time.Time {
	return time.Unix(0, int64(i))
}

// IsFinite reports whether the instant is neither sentinel.
func (i Instant) IsFinite() bool {
	return i != Forever && i != NegativeForever
}

// String renders sentinels as inf/-inf and finite instants as their raw
// integer value. Fixtures with small integers read naturally; callers that
// want wall-clock formatting should go through Time.
func (i Instant) String() string {
	switch i {
	case Forever:
		return "inf"
	case NegativeForever:
		return "-inf"
	default:
		return strconv.FormatInt(int64(i), 10)
	}
}

// ParseInstant parses the textual forms produced by String, plus RFC 3339
// timestamps. Used by the CLI and schema tooling.
func ParseInstant(s string) (Instant, error) {
	switch s {
	case "inf", "+inf", "forever":
		return Forever, nil
	case "-inf", "-forever":
		return NegativeForever, nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Instant(n), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return FromTime(t), nil
	}
	return 0, fmt.Errorf("invalid instant %q: want integer, RFC 3339 time, inf or -inf", s)
}

func minInstant(a, b Instant) Instant {
	if a < b {
		return a
	}
	return b
}

func maxInstant(a, b Instant) Instant {
	if a > b {
		return a
	}
	return b
}
