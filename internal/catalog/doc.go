// Package catalog persists the video catalog in SQLite: one row per known
// file plus the watched roots they were discovered under.
//
// The Store owns connection setup, embedded SQL migrations, the composite
// queries the reconciler depends on (online snapshot per root set, lookup by
// fingerprint), and ApplyPlan, which commits a whole reconciliation plan in
// one transaction. Among online entries, path is unique (enforced by a
// partial index); fingerprints are allowed to collide, that is what drives
// deduplication.
//
// Treat this package as the single source of truth for catalog semantics;
// schema changes are new files under migrations/.
package catalog
