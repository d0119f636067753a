package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/gwright/bitemporal"
	"github.com/gwright/bitemporal/temporal"
)

// Query returns the records of the scope whose bitemporal region
// intersects zone. Deterministic ordering: ORDER BY vt_begin ASC, id ASC.
//
// Interval axes translate to the half-open comparisons
// begin < requested_end AND end > requested_begin; an instant axis uses
// containment (begin <= at AND end > at). The instant Forever is the
// "active only" request: no half-open interval contains it, so it
// matches exactly the rows whose end is the Forever sentinel.
func (s *Store) Query(ctx context.Context, tx bitemporal.Tx, et *bitemporal.EntityType, scope bitemporal.Attrs, zone temporal.Zone) ([]*bitemporal.Record, error) {
	h, err := s.handle(tx)
	if err != nil {
		return nil, err
	}

	var conds []string
	var args []any
	for _, k := range et.ScopeKeys {
		if v, ok := scope[k]; ok {
			conds = append(conds, k+" = ?")
			args = append(args, v)
		}
	}
	for _, axis := range []struct {
		prefix string
		ivl    temporal.Interval
	}{
		{"vt", zone.Valid()},
		{"tt", zone.Transaction()},
	} {
		cond, condArgs := axisCondition(axis.prefix, axis.ivl)
		conds = append(conds, cond)
		args = append(args, condArgs...)
	}

	cols := et.Columns()
	query := fmt.Sprintf(
		"SELECT id, %s, vt_begin, vt_end, tt_begin, tt_end FROM %s WHERE %s ORDER BY vt_begin ASC, id ASC",
		strings.Join(cols, ", "), tableName(et), strings.Join(conds, " AND "))

	rows, err := h.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query versions: %w", err)
	}
	defer rows.Close()

	var out []*bitemporal.Record
	for rows.Next() {
		var (
			id                 string
			vtb, vte, ttb, tte int64
		)
		attrVals := make([]any, len(cols))
		dest := make([]any, 0, len(cols)+5)
		dest = append(dest, &id)
		for i := range attrVals {
			dest = append(dest, &attrVals[i])
		}
		dest = append(dest, &vtb, &vte, &ttb, &tte)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}

		attrs := make(bitemporal.Attrs, len(cols))
		for i, k := range cols {
			if attrVals[i] != nil {
				attrs[k] = attrVals[i]
			}
		}
		out = append(out, &bitemporal.Record{
			ID:      id,
			Type:    et,
			Attrs:   attrs,
			VTBegin: temporal.Instant(vtb),
			VTEnd:   temporal.Instant(vte),
			TTBegin: temporal.Instant(ttb),
			TTEnd:   temporal.Instant(tte),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate versions: %w", err)
	}
	return out, nil
}

func axisCondition(prefix string, ivl temporal.Interval) (string, []any) {
	if ivl.IsInstant() {
		if ivl.Begin() == temporal.Forever {
			return fmt.Sprintf("%s_end = ?", prefix), []any{int64(temporal.Forever)}
		}
		return fmt.Sprintf("%s_begin <= ? AND %s_end > ?", prefix, prefix),
			[]any{int64(ivl.Begin()), int64(ivl.Begin())}
	}
	return fmt.Sprintf("%s_begin < ? AND %s_end > ?", prefix, prefix),
		[]any{int64(ivl.End()), int64(ivl.Begin())}
}
