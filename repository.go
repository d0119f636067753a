package bitemporal

import (
	"context"

	"github.com/gwright/bitemporal/temporal"
)

// Tx is an opaque handle to an in-flight storage transaction. Repository
// implementations define the concrete type; callers only pass it back. A
// nil Tx on read methods means "outside any transaction".
type Tx any

// Repository is the storage capability set the engine is built on. Package
// store provides the SQLite implementation.
//
// The write methods are deliberately narrow: Insert appends a new version,
// CloseTransactionTime performs the single permitted in-place mutation
// (closing tt_end), and nothing else can touch a persisted row. Direct
// updates to temporal columns are therefore impossible through this
// interface, which is what protects the bitemporal invariant.
type Repository interface {
	// RegisterEntityType persists the schema and prepares version storage
	// for it. Registering an identical schema again is a no-op; a
	// conflicting one fails.
	RegisterEntityType(ctx context.Context, et *EntityType) error

	// LookupEntityType returns a previously registered schema by name.
	LookupEntityType(ctx context.Context, name string) (*EntityType, error)

	// RunInTransaction executes fn atomically. Any error from fn rolls the
	// whole transaction back; no partial finalize/commit state is ever
	// visible to readers.
	RunInTransaction(ctx context.Context, fn func(tx Tx) error) error

	// Insert appends an unpersisted record and assigns its ID. It enforces
	// the scope constraint: no active same-scope row may have a valid-time
	// interval intersecting the new record's. Violations fail with an
	// *Error carrying ErrCodeScopeOverlap.
	Insert(ctx context.Context, tx Tx, rec *Record) error

	// Query returns the records of the scope whose bitemporal region
	// intersects zone, ordered by valid-time begin then ID. Instant axes
	// use half-open containment (begin <= at < end). scope may name any
	// subset of the scope keys; reads never mutate.
	Query(ctx context.Context, tx Tx, et *EntityType, scope Attrs, zone temporal.Zone) ([]*Record, error)

	// LockForUpdate takes exclusive locks on the given rows and verifies
	// each in-memory copy still matches storage. Drift, whether from a
	// concurrent finalize or an unpersisted local edit, fails with an *Error
	// carrying ErrCodeInvalidFinalization.
	LockForUpdate(ctx context.Context, tx Tx, recs []*Record) error

	// CloseTransactionTime finalizes rec at the given instant: the one-way
	// transition of tt_end from Forever to a finite commit time. Fails with
	// ErrCodeInvalidFinalization if the stored row is already finalized.
	// On success rec.TTEnd is updated in place.
	CloseTransactionTime(ctx context.Context, tx Tx, rec *Record, at temporal.Instant) error
}
