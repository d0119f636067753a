package bitemporal

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes engine and repository failures.
type ErrorCode string

const (
	// ErrCodeScopeOverlap indicates an insert whose valid-time interval
	// intersects an existing active record of the same scope.
	ErrCodeScopeOverlap ErrorCode = "SCOPE_OVERLAP"

	// ErrCodeInvalidRevision indicates a revise or delete on a record that
	// is not currently active, or that was never persisted.
	ErrCodeInvalidRevision ErrorCode = "INVALID_REVISION"

	// ErrCodeInvalidFinalization indicates a finalize on a record that is
	// already finalized or whose in-memory copy drifted from storage.
	// Usually a lost-update race; the row locks make it rare.
	ErrCodeInvalidFinalization ErrorCode = "INVALID_FINALIZATION"

	// ErrCodeInvalidArguments indicates malformed arity or types passed to
	// the temporal argument coercion, or attributes that do not match the
	// entity type's schema.
	ErrCodeInvalidArguments ErrorCode = "INVALID_ARGUMENTS"
)

// Error is the structured error type shared by the engine and repository
// implementations.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Entity names the affected entity type, when known.
	Entity string

	// RecordID identifies the affected version record, when known.
	RecordID string
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Entity != "" && e.RecordID != "":
		return fmt.Sprintf("%s: %s (entity=%s, record=%s)", e.Code, e.Message, e.Entity, e.RecordID)
	case e.Entity != "":
		return fmt.Sprintf("%s: %s (entity=%s)", e.Code, e.Message, e.Entity)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// IsCode reports whether err is (or wraps) an *Error with the given code.
func IsCode(err error, code ErrorCode) bool {
	var be *Error
	return errors.As(err, &be) && be.Code == code
}

// IsScopeOverlap reports a scope-constraint violation.
func IsScopeOverlap(err error) bool { return IsCode(err, ErrCodeScopeOverlap) }

// IsInvalidRevision reports a revise/delete of a non-current record.
func IsInvalidRevision(err error) bool { return IsCode(err, ErrCodeInvalidRevision) }

// IsInvalidFinalization reports a finalize race or stale in-memory copy.
func IsInvalidFinalization(err error) bool { return IsCode(err, ErrCodeInvalidFinalization) }

// IsInvalidArguments reports malformed coercion arguments or attributes.
func IsInvalidArguments(err error) bool { return IsCode(err, ErrCodeInvalidArguments) }

func newError(code ErrorCode, entity, recordID, format string, args ...any) *Error {
	return &Error{
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Entity:   entity,
		RecordID: recordID,
	}
}
