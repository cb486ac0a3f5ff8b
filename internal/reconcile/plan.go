package reconcile

import (
	"sort"

	"reelsync/internal/catalog"
	"reelsync/internal/scanner"
)

// Plan is the ordered mutation list a reconciliation run commits. Plans are
// deterministic for a given (catalog snapshot, scan snapshot) pair; building
// one mutates nothing.
type Plan struct {
	Mutations []catalog.Mutation
	// Errors lists files whose fingerprints could not be computed. Those
	// files degrade to "fingerprint unavailable"; they never fail the run.
	Errors []scanner.Error
	// Ambiguous counts relocation groups that fell back to the conservative
	// Insert + MarkOffline treatment.
	Ambiguous int
}

// Summary aggregates plan action counts.
type Summary struct {
	Inserted  int
	Relocated int
	Offlined  int
	Refreshed int
	Unchanged int
}

// Summarize counts the plan's actions by kind.
func (p *Plan) Summarize() Summary {
	var s Summary
	for _, m := range p.Mutations {
		switch m.Op {
		case catalog.OpInsert:
			s.Inserted++
		case catalog.OpRelocate:
			s.Relocated++
		case catalog.OpMarkOffline:
			s.Offlined++
		case catalog.OpRefresh:
			s.Refreshed++
		case catalog.OpNoOp:
			s.Unchanged++
		}
	}
	return s
}

// IsNoOp reports whether the plan would change nothing.
func (p *Plan) IsNoOp() bool {
	for _, m := range p.Mutations {
		if m.Op != catalog.OpNoOp {
			return false
		}
	}
	return true
}

var opOrder = map[catalog.MutationOp]int{
	catalog.OpRelocate:    0,
	catalog.OpRefresh:     1,
	catalog.OpInsert:      2,
	catalog.OpMarkOffline: 3,
	catalog.OpNoOp:        4,
}

func (p *Plan) sortMutations() {
	sort.Slice(p.Mutations, func(i, j int) bool {
		return lessMutation(p.Mutations[i], p.Mutations[j])
	})
}

func lessMutation(a, b catalog.Mutation) bool {
	if opOrder[a.Op] != opOrder[b.Op] {
		return opOrder[a.Op] < opOrder[b.Op]
	}
	if a.Path != b.Path {
		return a.Path < b.Path
	}
	return a.OldPath < b.OldPath
}
