package library

// Stage names the phase of a reconciliation run a progress update belongs
// to.
type Stage string

const (
	// StageScan covers the filesystem walk. Totals are unknown while
	// walking, so scan updates carry total 0.
	StageScan Stage = "scan"
	// StageFingerprint covers content hashing. Updates may arrive
	// concurrently from the hashing workers.
	StageFingerprint Stage = "fingerprint"
	// StageDedup covers duplicate proposal at the end of a run.
	StageDedup Stage = "dedup"
)

// ProgressFunc receives per-stage updates during Runner.Reconcile. done
// counts items handled so far; path is the item just handled. Callbacks
// must not block and cannot influence the run's outcome.
type ProgressFunc func(stage Stage, done, total int, path string)
