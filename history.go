package bitemporal

import (
	"context"

	"github.com/gwright/bitemporal/temporal"
)

// Versions returns the scope's version records whose valid-time interval
// intersects the requested valid range and whose transaction-time interval
// intersects the requested transaction range, ordered by valid-time begin.
// The variadic temporal arguments follow the coercion rules documented on
// coerceZone; with no arguments the result is every active record, across
// all valid time.
//
// Reads never mutate and run outside any transaction.
func (e *Engine) Versions(ctx context.Context, et *EntityType, scope Attrs, args ...any) ([]*Record, error) {
	zone, err := coerceZone(args)
	if err != nil {
		return nil, err
	}
	return e.repo.Query(ctx, nil, et, scope, zone)
}

// Current returns the single active record valid at the given instant
// (default: now), or nil if the scope has no version valid then. The scope
// invariant guarantees at most one match.
func (e *Engine) Current(ctx context.Context, et *EntityType, scope Attrs, at ...temporal.Instant) (*Record, error) {
	v := e.clock.Now()
	if len(at) > 0 {
		v = at[0]
	}
	recs, err := e.Versions(ctx, et, scope, v)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return recs[0], nil
}

// InZone returns the scope's records intersecting an arbitrary bitemporal
// region, historical versions included. RenderGrid over the full region is
// the usual diagnostic companion.
func (e *Engine) InZone(ctx context.Context, et *EntityType, scope Attrs, zone temporal.Zone) ([]*Record, error) {
	return e.repo.Query(ctx, nil, et, scope, zone)
}

// AllVersions returns the scope's complete bitemporal history: every
// version ever recorded, active or finalized.
func (e *Engine) AllVersions(ctx context.Context, et *EntityType, scope Attrs) ([]*Record, error) {
	return e.InZone(ctx, et, scope, temporal.NewZone(temporal.AllTime(), temporal.AllTime()))
}
