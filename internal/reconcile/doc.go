// Package reconcile computes the mutations needed to bring the catalog
// back in line with what the scanner observed on disk. It is a pure
// planning layer: it reads snapshots and scan records, hashes files when
// identity is in question, and emits a plan for catalog.ApplyPlan to
// commit atomically.
package reconcile
