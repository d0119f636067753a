package bitemporal

import (
	"context"
	"log/slog"

	"github.com/gwright/bitemporal/temporal"
)

// Engine is the write side of the bitemporal store: Commit, Revise and
// Delete, plus the read queries in history.go. It is parameterized by a
// Repository and holds no state of its own, so one Engine is safe to share
// across goroutines; all synchronization lives in the storage transaction.
type Engine struct {
	repo  Repository
	clock Clock
	log   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces the commit clock. Tests use testutil.ManualClock.
func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithLogger replaces the default slog logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// NewEngine builds an engine over the given repository.
func NewEngine(repo Repository, opts ...Option) *Engine {
	e := &Engine{
		repo:  repo,
		clock: SystemClock,
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// OverlapFunc builds the replacement segments for one overlapped record
// during a delete. Revise supplies one that clips its candidate to the
// overlapped segment; plain deletes use the default leftover preservation.
type OverlapFunc func(overlapped *Record, target temporal.Interval, at temporal.Instant) ([]*Record, error)

// Commit persists a record. A new record is inserted over its valid-time
// interval, subject to the scope constraint; committing an already
// persisted record delegates to Revise. The optional commitTime defaults
// to the engine clock.
//
// Returns the records now active as a result of the call.
func (e *Engine) Commit(ctx context.Context, rec *Record, commitTime ...temporal.Instant) ([]*Record, error) {
	if rec.IsPersisted() {
		return e.Revise(ctx, rec, nil, commitTime...)
	}
	if err := e.validateAttrs(rec); err != nil {
		return nil, err
	}
	at := e.commitAt(commitTime)
	err := e.repo.RunInTransaction(ctx, func(tx Tx) error {
		return e.insertAt(ctx, tx, rec, at)
	})
	if err != nil {
		return nil, err
	}
	e.log.Debug("committed version",
		slog.String("entity", rec.Type.Name),
		slog.String("record", rec.ID),
		slog.String("valid", rec.ValidInterval().String()))
	return []*Record{rec}, nil
}

// Revise replaces the currently active version(s) covering the candidate's
// valid-time range with a new version carrying updated attributes,
// preserving untouched sub-ranges.
//
// changes may override value attributes and, under the reserved keys
// vt_begin/vt_end, the candidate's valid-time bounds. Scope keys cannot be
// changed: a different scope is a different entity.
//
// The revision is clipped to each overlapped segment: for every active
// record intersecting the candidate's range, the new attributes are
// committed only over the intersection, so a revision never claims a span
// exceeding any single previously-valid segment's boundaries. Leftover
// fragments of each overlapped segment keep the old attributes. If nothing
// active intersects the range, the candidate is committed as-is.
//
// A candidate whose snapshot (scope, values, valid time) is identical to
// the source record is a no-op and returns an empty, nil-error result.
func (e *Engine) Revise(ctx context.Context, rec *Record, changes Attrs, commitTime ...temporal.Instant) ([]*Record, error) {
	if !rec.IsPersisted() {
		return nil, newError(ErrCodeInvalidRevision, rec.Type.Name, "",
			"cannot revise an unpersisted record")
	}
	if !rec.IsActive() {
		return nil, newError(ErrCodeInvalidRevision, rec.Type.Name, rec.ID,
			"cannot revise a non-current record (finalized at %s)", rec.TTEnd)
	}
	candidate, err := e.buildCandidate(rec, changes)
	if err != nil {
		return nil, err
	}
	if candidate.sameSnapshot(rec) {
		return []*Record{}, nil
	}

	at := e.commitAt(commitTime)
	target := candidate.ValidInterval()
	var out []*Record
	err = e.repo.RunInTransaction(ctx, func(tx Tx) error {
		// The caller's copy may be stale: a concurrent delete or revision
		// finalizes the stored row without touching other handles. Lock the
		// source row and verify it is still the version the caller saw.
		if err := e.repo.LockForUpdate(ctx, tx, []*Record{rec}); err != nil {
			if IsInvalidFinalization(err) {
				return newError(ErrCodeInvalidRevision, rec.Type.Name, rec.ID,
					"cannot revise a non-current record: the stored row was superseded")
			}
			return err
		}
		segments, overlapped, err := e.deleteRange(ctx, tx, rec.Type, rec.ScopeAttrs(), target, at,
			func(o *Record, target temporal.Interval, at temporal.Instant) ([]*Record, error) {
				return reviseSegments(candidate, o, target), nil
			})
		if err != nil {
			return err
		}
		if len(overlapped) == 0 {
			// The requested range lies entirely outside any active span.
			if err := e.insertAt(ctx, tx, candidate, at); err != nil {
				return err
			}
			out = []*Record{candidate}
			return nil
		}
		// Keep the caller's handle honest when its own row was replaced.
		for _, o := range overlapped {
			if o.ID == rec.ID {
				rec.TTEnd = o.TTEnd
			}
		}
		out = segments
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.log.Debug("revised versions",
		slog.String("entity", rec.Type.Name),
		slog.String("target", target.String()),
		slog.Int("segments", len(out)))
	return out, nil
}

// Delete logically deletes the record's scope over a valid-time range,
// finalizing every overlapped active version and re-committing the
// fragments of each that fall outside the range. Arguments follow the
// coercion rules of the read queries: an optional valid range (default all
// time) and an optional commit instant (default now).
//
// Returns the finalized records.
func (e *Engine) Delete(ctx context.Context, rec *Record, args ...any) ([]*Record, error) {
	if !rec.IsPersisted() {
		return nil, newError(ErrCodeInvalidRevision, rec.Type.Name, "",
			"cannot delete an unpersisted record")
	}
	zone, err := coerceZone(args)
	if err != nil {
		return nil, err
	}
	if !zone.Transaction().IsInstant() {
		return nil, newError(ErrCodeInvalidArguments, rec.Type.Name, rec.ID,
			"delete takes a commit instant, not a transaction range %s", zone.Transaction())
	}
	target := zone.Valid()
	at := zone.Transaction().Begin()
	if at == temporal.Forever {
		// No explicit commit instant in the arguments.
		at = e.clock.Now()
	}

	var finalized []*Record
	err = e.repo.RunInTransaction(ctx, func(tx Tx) error {
		_, overlapped, err := e.deleteRange(ctx, tx, rec.Type, rec.ScopeAttrs(), target, at, nil)
		finalized = overlapped
		return err
	})
	if err != nil {
		return nil, err
	}
	for _, f := range finalized {
		if f.ID == rec.ID {
			rec.TTEnd = f.TTEnd
		}
	}
	e.log.Debug("deleted versions",
		slog.String("entity", rec.Type.Name),
		slog.String("target", target.String()),
		slog.Int("finalized", len(finalized)))
	return finalized, nil
}

// deleteRange is the shared transactional core of Delete and Revise.
// Within the caller's transaction it queries the scope's active records
// intersecting target (in ascending valid-time order), locks them,
// finalizes each at the commit instant, and inserts the replacement
// segments produced by onOverlap, or by default the leftover fragments
// of the overlapped record outside target, carrying its old attributes.
func (e *Engine) deleteRange(
	ctx context.Context,
	tx Tx,
	et *EntityType,
	scope Attrs,
	target temporal.Interval,
	at temporal.Instant,
	onOverlap OverlapFunc,
) (segments []*Record, finalized []*Record, err error) {
	queryZone := temporal.NewZone(target, temporal.Point(temporal.Forever))
	overlapped, err := e.repo.Query(ctx, tx, et, scope, queryZone)
	if err != nil {
		return nil, nil, err
	}
	if len(overlapped) == 0 {
		return nil, nil, nil
	}
	if err := e.repo.LockForUpdate(ctx, tx, overlapped); err != nil {
		return nil, nil, err
	}
	for _, o := range overlapped {
		if err := e.repo.CloseTransactionTime(ctx, tx, o, at); err != nil {
			return nil, nil, err
		}
		var repl []*Record
		if onOverlap != nil {
			repl, err = onOverlap(o, target, at)
			if err != nil {
				return nil, nil, err
			}
		} else {
			repl = leftoverSegments(o, target)
		}
		sortByValidBegin(repl)
		for _, seg := range repl {
			if err := e.insertAt(ctx, tx, seg, at); err != nil {
				return nil, nil, err
			}
		}
		segments = append(segments, repl...)
		finalized = append(finalized, o)
	}
	return segments, finalized, nil
}

// leftoverSegments returns unpersisted copies of o restricted to the
// fragments of its valid-time interval that fall outside target. Fragments
// belonging to target rather than o (a range wider than the record), and
// degenerate fragments, are dropped.
func leftoverSegments(o *Record, target temporal.Interval) []*Record {
	valid := o.ValidInterval()
	var out []*Record
	for _, frag := range valid.Difference(target) {
		if frag.IsInstant() || !valid.Covers(frag) {
			continue
		}
		out = append(out, o.derive(frag))
	}
	return out
}

// reviseSegments builds the replacement set for one overlapped record
// during a revision: the candidate's attributes clipped to the
// intersection, plus the overlapped record's leftovers with its old
// attributes.
func reviseSegments(candidate, o *Record, target temporal.Interval) []*Record {
	var out []*Record
	if inter, ok := o.ValidInterval().Intersection(target); ok && !inter.IsInstant() {
		out = append(out, candidate.derive(inter))
	}
	out = append(out, leftoverSegments(o, target)...)
	return out
}

// buildCandidate clones rec without identity or transaction time and
// applies the requested changes.
func (e *Engine) buildCandidate(rec *Record, changes Attrs) (*Record, error) {
	candidate := rec.derive(rec.ValidInterval())
	for k, v := range changes {
		switch {
		case k == ColVTBegin:
			p, ok := asInstant(v)
			if !ok {
				return nil, newError(ErrCodeInvalidArguments, rec.Type.Name, rec.ID,
					"vt_begin value %T is not an instant", v)
			}
			candidate.VTBegin = p
		case k == ColVTEnd:
			p, ok := asInstant(v)
			if !ok {
				return nil, newError(ErrCodeInvalidArguments, rec.Type.Name, rec.ID,
					"vt_end value %T is not an instant", v)
			}
			candidate.VTEnd = p
		case rec.Type.IsValueKey(k):
			candidate.Attrs[k] = v
		case rec.Type.IsScopeKey(k):
			return nil, newError(ErrCodeInvalidArguments, rec.Type.Name, rec.ID,
				"cannot change scope key %q: a different scope is a different entity", k)
		default:
			return nil, newError(ErrCodeInvalidArguments, rec.Type.Name, rec.ID,
				"unknown attribute %q", k)
		}
	}
	if candidate.VTBegin > candidate.VTEnd {
		return nil, newError(ErrCodeInvalidArguments, rec.Type.Name, rec.ID,
			"inverted valid-time interval %s", candidate.ValidInterval())
	}
	return candidate, nil
}

// insertAt stamps the record's transaction-time interval open at the
// commit instant and appends it through the repository.
func (e *Engine) insertAt(ctx context.Context, tx Tx, rec *Record, at temporal.Instant) error {
	rec.TTBegin = at
	rec.TTEnd = temporal.Forever
	return e.repo.Insert(ctx, tx, rec)
}

func (e *Engine) validateAttrs(rec *Record) error {
	if rec.Type == nil {
		return newError(ErrCodeInvalidArguments, "", "", "record has no entity type")
	}
	for _, k := range rec.Type.ScopeKeys {
		if v, ok := rec.Attrs[k]; !ok || v == nil {
			return newError(ErrCodeInvalidArguments, rec.Type.Name, "",
				"missing scope key %q", k)
		}
	}
	for k := range rec.Attrs {
		if !rec.Type.IsScopeKey(k) && !rec.Type.IsValueKey(k) {
			return newError(ErrCodeInvalidArguments, rec.Type.Name, "",
				"unknown attribute %q", k)
		}
	}
	if rec.VTBegin > rec.VTEnd {
		return newError(ErrCodeInvalidArguments, rec.Type.Name, "",
			"inverted valid-time interval %s", rec.ValidInterval())
	}
	return nil
}

func (e *Engine) commitAt(commitTime []temporal.Instant) temporal.Instant {
	if len(commitTime) > 0 {
		return commitTime[0]
	}
	return e.clock.Now()
}
