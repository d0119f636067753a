// Package temporal provides the time primitives for bitemporal versioning:
// instants with infinite sentinels, half-open intervals, and bitemporal
// zones (valid-time x transaction-time regions).
//
// All interval arithmetic uses half-open [begin, end) semantics:
//   - begin is included, end is excluded
//   - an interval with begin == end is a degenerate "instant"
//   - Forever and NegativeForever participate in the same total order
//     as finite instants, so no comparison needs special cases
//
// Interval and Zone are immutable value types. Every transform (Merge,
// Intersection, Difference) returns a new value.
package temporal
