// Package store provides the SQLite-backed Repository for the bitemporal
// engine.
//
// Layout:
//   - bt_entity_types: the schema registry, one row per registered entity
//     type (scope and value key lists stored as JSON arrays)
//   - bt_<name>: one version table per entity type, created at
//     registration, holding the scope columns, value columns and the four
//     temporal bounds as integers
//
// Versions are append-only. The only UPDATE statement in this package is
// the one-way close of tt_end, guarded by a compare against the open
// sentinel so a finalize race loses deterministically.
//
// Locking: SQLite has no row locks. Transactions open with
// _txlock=immediate, so a writing transaction holds the database write
// lock from BEGIN; LockForUpdate then re-reads the rows as the staleness
// check the engine's defense-in-depth finalize guard requires.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON
package store
