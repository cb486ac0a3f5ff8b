package catalog

import "time"

// MutationOp identifies one kind of catalog mutation in a reconciliation
// plan.
type MutationOp string

const (
	// OpInsert adds a new entry for a path never seen before.
	OpInsert MutationOp = "insert"
	// OpRelocate moves an existing entry to a new path, preserving its id.
	OpRelocate MutationOp = "relocate"
	// OpMarkOffline flips an entry to offline without deleting it.
	OpMarkOffline MutationOp = "mark-offline"
	// OpRefresh updates size, mtime, and fingerprint in place and revives
	// offline entries whose path reappeared.
	OpRefresh MutationOp = "refresh"
	// OpNoOp records that a path was observed unchanged. The store ignores
	// these; plans carry them so runs can prove idempotence.
	OpNoOp MutationOp = "noop"
)

// Mutation is one action of a reconciliation plan. Which fields are
// meaningful depends on Op:
//
//	insert:       Path, Size, ModTime, Fingerprint, SourceRoot, Title, Stars
//	relocate:     EntryID, Path (new), OldPath, Size, ModTime, SourceRoot
//	mark-offline: EntryID, Path (last known)
//	refresh:      EntryID, Path, Size, ModTime, Fingerprint
//	noop:         EntryID, Path
type Mutation struct {
	Op          MutationOp
	EntryID     int64
	Path        string
	OldPath     string
	Size        int64
	ModTime     time.Time
	Fingerprint string
	SourceRoot  string
	Title       string
	Stars       int
}
