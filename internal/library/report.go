package library

import (
	"time"

	"reelsync/internal/dedup"
	"reelsync/internal/reconcile"
	"reelsync/internal/scanner"
)

// Report captures the outcome of one reconciliation run.
type Report struct {
	RunID      string
	Started    time.Time
	Duration   time.Duration
	Scanned    int
	Summary    reconcile.Summary
	Ambiguous  int
	Errors     []scanner.Error
	Duplicates []dedup.Group
}

// Changed reports whether the run mutated the catalog at all.
func (r *Report) Changed() bool {
	s := r.Summary
	return s.Inserted+s.Relocated+s.Offlined+s.Refreshed > 0
}
