package bitemporal

import (
	"fmt"
	"regexp"
	"sort"

	"golang.org/x/text/unicode/norm"

	"github.com/gwright/bitemporal/temporal"
)

// Temporal column names shared by every entity's version table. They are
// reserved: a schema may not declare them as scope or value keys.
const (
	ColID      = "id"
	ColVTBegin = "vt_begin"
	ColVTEnd   = "vt_end"
	ColTTBegin = "tt_begin"
	ColTTEnd   = "tt_end"
)

var identPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// EntityType is the registered schema of a versioned entity: the scope keys
// forming the composite identity of "the same real-world entity" across
// versions, and the value keys being versioned. Schemas are fixed at
// registration; records never carry fields outside them, so no runtime
// reflection is needed anywhere.
type EntityType struct {
	Name      string   `yaml:"name"`
	ScopeKeys []string `yaml:"scope"`
	ValueKeys []string `yaml:"values"`
}

// Validate checks the schema: a non-empty identifier name, at least one
// scope key, identifier-shaped field names, no duplicates, and no use of
// the reserved temporal column names.
func (et *EntityType) Validate() error {
	if !identPattern.MatchString(et.Name) {
		return newError(ErrCodeInvalidArguments, et.Name, "",
			"entity type name %q must match %s", et.Name, identPattern)
	}
	if len(et.ScopeKeys) == 0 {
		return newError(ErrCodeInvalidArguments, et.Name, "",
			"entity type needs at least one scope key")
	}
	seen := map[string]bool{
		ColID: true, ColVTBegin: true, ColVTEnd: true, ColTTBegin: true, ColTTEnd: true,
	}
	for _, k := range append(append([]string{}, et.ScopeKeys...), et.ValueKeys...) {
		if !identPattern.MatchString(k) {
			return newError(ErrCodeInvalidArguments, et.Name, "",
				"field name %q must match %s", k, identPattern)
		}
		if seen[k] {
			return newError(ErrCodeInvalidArguments, et.Name, "",
				"field name %q is duplicated or reserved", k)
		}
		seen[k] = true
	}
	return nil
}

// IsScopeKey reports whether k is one of the scope keys.
func (et *EntityType) IsScopeKey(k string) bool { return contains(et.ScopeKeys, k) }

// IsValueKey reports whether k is one of the value keys.
func (et *EntityType) IsValueKey(k string) bool { return contains(et.ValueKeys, k) }

// Columns returns the attribute column names in declaration order, scope
// keys first. This is the column order every storage statement uses.
func (et *EntityType) Columns() []string {
	cols := make([]string, 0, len(et.ScopeKeys)+len(et.ValueKeys))
	cols = append(cols, et.ScopeKeys...)
	cols = append(cols, et.ValueKeys...)
	return cols
}

func contains(keys []string, k string) bool {
	for _, key := range keys {
		if key == k {
			return true
		}
	}
	return false
}

// Attrs holds a record's attribute values keyed by field name. Values are
// plain scalars (string, integer, float, bool, []byte or nil) as accepted
// by the storage driver.
type Attrs map[string]any

// Clone returns a shallow copy; scalar values need no deeper copying.
func (a Attrs) Clone() Attrs {
	out := make(Attrs, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Pick returns the subset of a restricted to keys.
func (a Attrs) Pick(keys []string) Attrs {
	out := make(Attrs, len(keys))
	for _, k := range keys {
		if v, ok := a[k]; ok {
			out[k] = v
		}
	}
	return out
}

// canonicalValue maps a scalar to its canonical comparison form: strings
// (and byte slices) are NFC-normalized, integer and float widths collapse
// to int64/float64. Snapshot equality works on these forms so that a
// revision rewriting "café" with a decomposed é is still a no-op.
func canonicalValue(v any) any {
	switch t := v.(type) {
	case string:
		return norm.NFC.String(t)
	case []byte:
		return norm.NFC.String(string(t))
	case int:
		return int64(t)
	case int8:
		return int64(t)
	case int16:
		return int64(t)
	case int32:
		return int64(t)
	case int64:
		return t
	case uint:
		return int64(t)
	case uint8:
		return int64(t)
	case uint16:
		return int64(t)
	case uint32:
		return int64(t)
	case uint64:
		return int64(t)
	case float32:
		return float64(t)
	case temporal.Instant:
		return int64(t)
	default:
		return v
	}
}

func attrsEqual(a, b Attrs, keys []string) bool {
	for _, k := range keys {
		if canonicalValue(a[k]) != canonicalValue(b[k]) {
			return false
		}
	}
	return true
}

// Record is a single immutable bitemporal fact: scope and value attributes
// plus the four temporal bounds. The engine owns the lifecycle; a record is
// active while TTEnd == temporal.Forever and permanently historical after
// its transaction-time interval is closed.
type Record struct {
	// ID is the storage-assigned identity, empty until persisted. Never
	// reused, never mutated.
	ID string

	// Type is the registered schema this record conforms to.
	Type *EntityType

	// Attrs holds the scope and value attributes.
	Attrs Attrs

	VTBegin temporal.Instant
	VTEnd   temporal.Instant
	TTBegin temporal.Instant
	TTEnd   temporal.Instant
}

// NewRecord builds an unpersisted record over the given valid-time
// interval. Transaction-time bounds are assigned by the engine at commit.
func NewRecord(et *EntityType, attrs Attrs, valid temporal.Interval) *Record {
	return &Record{
		Type:    et,
		Attrs:   attrs.Clone(),
		VTBegin: valid.Begin(),
		VTEnd:   valid.End(),
		TTEnd:   temporal.Forever,
	}
}

// IsPersisted reports whether storage has assigned an identity.
func (r *Record) IsPersisted() bool { return r.ID != "" }

// IsActive reports whether the transaction-time interval is still open.
func (r *Record) IsActive() bool { return r.TTEnd == temporal.Forever }

// ScopeAttrs projects the scope-key attributes.
func (r *Record) ScopeAttrs() Attrs { return r.Attrs.Pick(r.Type.ScopeKeys) }

// ValueAttrs projects the value-key attributes.
func (r *Record) ValueAttrs() Attrs { return r.Attrs.Pick(r.Type.ValueKeys) }

// TemporalAttrs projects the four temporal bounds under their column names.
func (r *Record) TemporalAttrs() Attrs {
	return Attrs{
		ColVTBegin: r.VTBegin,
		ColVTEnd:   r.VTEnd,
		ColTTBegin: r.TTBegin,
		ColTTEnd:   r.TTEnd,
	}
}

// ValidInterval returns the valid-time interval [VTBegin, VTEnd).
func (r *Record) ValidInterval() temporal.Interval {
	return temporal.NewInterval(r.VTBegin, r.VTEnd)
}

// TransactionInterval returns the transaction-time interval [TTBegin, TTEnd).
func (r *Record) TransactionInterval() temporal.Interval {
	return temporal.NewInterval(r.TTBegin, r.TTEnd)
}

// Zone returns the record's bitemporal region.
func (r *Record) Zone() temporal.Zone {
	return temporal.NewZone(r.ValidInterval(), r.TransactionInterval())
}

// derive returns an unpersisted copy of r carrying the same attributes but
// restricted to the given valid-time interval, ready for commit.
func (r *Record) derive(valid temporal.Interval) *Record {
	return NewRecord(r.Type, r.Attrs, valid)
}

// sameSnapshot reports whether o carries the identical scope attributes,
// value attributes and valid-time interval. Transaction time and identity
// are ignored: two records with the same snapshot describe the same fact.
func (r *Record) sameSnapshot(o *Record) bool {
	return r.VTBegin == o.VTBegin &&
		r.VTEnd == o.VTEnd &&
		attrsEqual(r.Attrs, o.Attrs, r.Type.Columns())
}

// String renders the record's identity and temporal region, for logs.
func (r *Record) String() string {
	id := r.ID
	if id == "" {
		id = "(unpersisted)"
	}
	return fmt.Sprintf("%s %s %s", r.Type.Name, id, r.Zone())
}

// sortByValidBegin orders records by valid-time begin, then by ID for a
// deterministic tie-break.
func sortByValidBegin(recs []*Record) {
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].VTBegin != recs[j].VTBegin {
			return recs[i].VTBegin < recs[j].VTBegin
		}
		return recs[i].ID < recs[j].ID
	})
}
