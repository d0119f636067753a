package temporal

import "fmt"

// ZoneKind classifies the shape of a bitemporal region.
type ZoneKind int

const (
	// ZoneRegion is the general case: both axes are proper intervals.
	ZoneRegion ZoneKind = iota

	// ZoneSnapshot pins both axes to single instants: "what was valid at
	// time v, as recorded at time t".
	ZoneSnapshot

	// ZoneHistorical pins transaction time to an instant while valid time
	// varies: the valid-time history as known at one recording instant.
	ZoneHistorical

	// ZoneRollback pins valid time to an instant while transaction time
	// varies: every answer the system ever recorded for one real-world
	// instant.
	ZoneRollback
)

func (k ZoneKind) String() string {
	switch k {
	case ZoneSnapshot:
		return "snapshot"
	case ZoneHistorical:
		return "historical"
	case ZoneRollback:
		return "rollback"
	default:
		return "region"
	}
}

// Zone is a bitemporal region: a valid-time interval paired with a
// transaction-time interval. Immutable, like Interval.
type Zone struct {
	valid       Interval
	transaction Interval
}

// NewZone constructs a zone from its two component intervals.
func NewZone(valid, transaction Interval) Zone {
	return Zone{valid: valid, transaction: transaction}
}

// Valid returns the valid-time component.
func (z Zone) Valid() Interval { return z.valid }

// Transaction returns the transaction-time component.
func (z Zone) Transaction() Interval { return z.transaction }

// Intersects reports whether both components intersect the other zone's.
func (z Zone) Intersects(o Zone) bool {
	return z.valid.Intersects(o.valid) && z.transaction.Intersects(o.transaction)
}

// Covers reports whether both components cover the other zone's.
func (z Zone) Covers(o Zone) bool {
	return z.valid.Covers(o.valid) && z.transaction.Covers(o.transaction)
}

// Intersection returns the component-wise overlap, or false when the zones
// are disjoint on either axis.
func (z Zone) Intersection(o Zone) (Zone, bool) {
	v, ok := z.valid.Intersection(o.valid)
	if !ok {
		return Zone{}, false
	}
	t, ok := z.transaction.Intersection(o.transaction)
	if !ok {
		return Zone{}, false
	}
	return Zone{valid: v, transaction: t}, true
}

// Classify reports the zone's shape.
func (z Zone) Classify() ZoneKind {
	vi, ti := z.valid.IsInstant(), z.transaction.IsInstant()
	switch {
	case vi && ti:
		return ZoneSnapshot
	case ti:
		return ZoneHistorical
	case vi:
		return ZoneRollback
	default:
		return ZoneRegion
	}
}

// String renders the zone as valid x transaction.
func (z Zone) String() string {
	return fmt.Sprintf("%s x %s", z.valid, z.transaction)
}
