// Package bitemporal implements bitemporal versioning over a relational
// entity store. Every logical entity is a succession of immutable version
// records carrying two independent time axes: valid time (when the fact is
// true in the real world) and transaction time (when the system recorded
// it). Nothing is ever physically deleted or overwritten; mutations append
// new versions and close superseded ones.
//
// The write side is the Engine: Commit, Revise and Delete. Each executes in
// a single storage transaction, locks overlapped versions, finalizes them
// at the commit instant, and inserts replacement segments computed with
// half-open interval arithmetic from package temporal.
//
// INVARIANT: for one scope (the composite key identifying the same
// real-world entity), the valid-time intervals of all active records
// (those whose transaction-time interval is still open) are pairwise
// disjoint. The Engine enforces this at insert and the public surface
// exposes no other write path, so direct mutation of temporal columns is
// impossible by construction.
//
// Storage is abstracted behind Repository; package store provides the
// SQLite implementation.
package bitemporal
