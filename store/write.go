package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/gwright/bitemporal"
	"github.com/gwright/bitemporal/temporal"
)

// Insert appends a new version row and assigns its UUID. The scope
// constraint is checked first, inside the caller's transaction: no active
// same-scope row may have a valid-time interval intersecting the new one.
//
// The check and the insert are atomic because every writing transaction
// holds the database write lock from BEGIN (_txlock=immediate).
func (s *Store) Insert(ctx context.Context, tx bitemporal.Tx, rec *bitemporal.Record) error {
	h, err := s.handle(tx)
	if err != nil {
		return err
	}
	if rec.IsPersisted() {
		return &bitemporal.Error{
			Code:     bitemporal.ErrCodeInvalidArguments,
			Message:  "record is already persisted; use Revise or Delete",
			Entity:   rec.Type.Name,
			RecordID: rec.ID,
		}
	}

	overlap, err := s.activeScopeOverlaps(ctx, h, rec)
	if err != nil {
		return err
	}
	if overlap {
		return &bitemporal.Error{
			Code: bitemporal.ErrCodeScopeOverlap,
			Message: fmt.Sprintf("an active version of the same scope already covers part of %s",
				rec.ValidInterval()),
			Entity: rec.Type.Name,
		}
	}

	cols := rec.Type.Columns()
	names := make([]string, 0, len(cols)+5)
	marks := make([]string, 0, len(cols)+5)
	args := make([]any, 0, len(cols)+5)

	id := uuid.NewString()
	names = append(names, "id")
	marks = append(marks, "?")
	args = append(args, id)
	for _, col := range cols {
		names = append(names, col)
		marks = append(marks, "?")
		args = append(args, rec.Attrs[col])
	}
	names = append(names, "vt_begin", "vt_end", "tt_begin", "tt_end")
	marks = append(marks, "?", "?", "?", "?")
	args = append(args, int64(rec.VTBegin), int64(rec.VTEnd), int64(rec.TTBegin), int64(rec.TTEnd))

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		tableName(rec.Type), strings.Join(names, ", "), strings.Join(marks, ", "))
	if _, err := h.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert version: %w", err)
	}
	rec.ID = id
	return nil
}

// activeScopeOverlaps reports whether an active row of rec's scope has a
// valid-time interval intersecting rec's, under half-open comparisons.
func (s *Store) activeScopeOverlaps(ctx context.Context, h dbtx, rec *bitemporal.Record) (bool, error) {
	conds := []string{"tt_end = ?"}
	args := []any{int64(temporal.Forever)}
	scope := rec.ScopeAttrs()
	for _, k := range rec.Type.ScopeKeys {
		conds = append(conds, k+" = ?")
		args = append(args, scope[k])
	}
	valid := rec.ValidInterval()
	if valid.IsInstant() {
		conds = append(conds, "vt_begin <= ?", "vt_end > ?")
		args = append(args, int64(valid.Begin()), int64(valid.Begin()))
	} else {
		conds = append(conds, "vt_begin < ?", "vt_end > ?")
		args = append(args, int64(valid.End()), int64(valid.Begin()))
	}

	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE %s)",
		tableName(rec.Type), strings.Join(conds, " AND "))
	var exists bool
	if err := h.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check scope overlap: %w", err)
	}
	return exists, nil
}

// LockForUpdate verifies, inside a writing transaction, that each record's
// in-memory temporal bounds still match storage. The immediate transaction
// already holds the database write lock, so the re-read is the staleness
// check; drift means a concurrent finalize or a modified in-memory copy.
func (s *Store) LockForUpdate(ctx context.Context, tx bitemporal.Tx, recs []*bitemporal.Record) error {
	if tx == nil {
		return fmt.Errorf("lock requires a transaction")
	}
	h, err := s.handle(tx)
	if err != nil {
		return err
	}
	for _, rec := range recs {
		var vtb, vte, ttb, tte int64
		err := h.QueryRowContext(ctx, fmt.Sprintf(
			"SELECT vt_begin, vt_end, tt_begin, tt_end FROM %s WHERE id = ?",
			tableName(rec.Type)), rec.ID,
		).Scan(&vtb, &vte, &ttb, &tte)
		if errors.Is(err, sql.ErrNoRows) {
			return &bitemporal.Error{
				Code:     bitemporal.ErrCodeInvalidFinalization,
				Message:  "record no longer exists in storage",
				Entity:   rec.Type.Name,
				RecordID: rec.ID,
			}
		}
		if err != nil {
			return fmt.Errorf("lock version %s: %w", rec.ID, err)
		}
		if temporal.Instant(vtb) != rec.VTBegin || temporal.Instant(vte) != rec.VTEnd ||
			temporal.Instant(ttb) != rec.TTBegin || temporal.Instant(tte) != rec.TTEnd {
			return &bitemporal.Error{
				Code:     bitemporal.ErrCodeInvalidFinalization,
				Message:  "record was concurrently finalized or modified",
				Entity:   rec.Type.Name,
				RecordID: rec.ID,
			}
		}
	}
	return nil
}

// CloseTransactionTime finalizes rec at the given instant. The UPDATE is
// compare-and-set on the open sentinel, so finalizing an already-finalized
// row fails even if every other guard is bypassed.
func (s *Store) CloseTransactionTime(ctx context.Context, tx bitemporal.Tx, rec *bitemporal.Record, at temporal.Instant) error {
	h, err := s.handle(tx)
	if err != nil {
		return err
	}
	if !rec.IsActive() {
		return &bitemporal.Error{
			Code:     bitemporal.ErrCodeInvalidFinalization,
			Message:  "record is already finalized",
			Entity:   rec.Type.Name,
			RecordID: rec.ID,
		}
	}
	res, err := h.ExecContext(ctx, fmt.Sprintf(
		"UPDATE %s SET tt_end = ? WHERE id = ? AND tt_end = ?",
		tableName(rec.Type)), int64(at), rec.ID, int64(temporal.Forever))
	if err != nil {
		return fmt.Errorf("finalize version %s: %w", rec.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finalize version %s: %w", rec.ID, err)
	}
	if n != 1 {
		return &bitemporal.Error{
			Code:     bitemporal.ErrCodeInvalidFinalization,
			Message:  "record was concurrently finalized",
			Entity:   rec.Type.Name,
			RecordID: rec.ID,
		}
	}
	rec.TTEnd = at
	return nil
}
