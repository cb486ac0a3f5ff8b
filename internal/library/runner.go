package library

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"reelsync/internal/catalog"
	"reelsync/internal/config"
	"reelsync/internal/dedup"
	"reelsync/internal/fingerprint"
	"reelsync/internal/logging"
	"reelsync/internal/reconcile"
	"reelsync/internal/scanner"
)

// ErrLocked means another process is already reconciling this catalog.
var ErrLocked = errors.New("catalog is locked by another process")

// ErrNoRoots means no active roots are registered, so there is nothing
// to scan.
var ErrNoRoots = errors.New("no active roots configured")

// Runner orchestrates a full reconciliation pass: scan, plan, commit,
// then propose duplicates. One Runner serves one catalog.
type Runner struct {
	cfg   *config.Config
	store *catalog.Store
	log   *slog.Logger
}

func NewRunner(cfg *config.Config, store *catalog.Store, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{
		cfg:   cfg,
		store: store,
		log:   logging.WithComponent(logger, "library"),
	}
}

// Reconcile runs one complete pass and commits the resulting plan. The
// catalog lock is held for the duration so concurrent runs cannot
// interleave their transactions. onProgress may be nil.
func (r *Runner) Reconcile(ctx context.Context, onProgress ProgressFunc) (*Report, error) {
	var report *Report
	err := r.withLock(func() error {
		var err error
		report, err = r.reconcileLocked(ctx, onProgress)
		return err
	})
	return report, err
}

func (r *Runner) reconcileLocked(ctx context.Context, onProgress ProgressFunc) (*Report, error) {
	started := time.Now()
	report := &Report{
		RunID:   uuid.NewString(),
		Started: started.UTC(),
	}
	runLog := r.log.With(logging.String(logging.FieldRunID, report.RunID))

	roots, err := r.store.ActiveRoots(ctx)
	if err != nil {
		return nil, err
	}
	if len(roots) == 0 {
		return nil, ErrNoRoots
	}
	rootPaths := make([]string, len(roots))
	for i, root := range roots {
		rootPaths[i] = root.Path
	}
	runLog.Info("reconciliation started", logging.Int("roots", len(roots)))

	scn := scanner.New(r.cfg.Scan.Extensions, r.cfg.Scan.MinSizeBytes)
	var onFile func(path string)
	if onProgress != nil {
		// The walk runs on one goroutine, so a plain counter is safe.
		scanned := 0
		onFile = func(path string) {
			scanned++
			onProgress(StageScan, scanned, 0, path)
		}
	}
	records, scanErrors, err := scn.Scan(ctx, roots, onFile)
	if err != nil {
		return nil, err
	}
	report.Scanned = len(records)
	runLog.Info("scan finished",
		logging.Int("files", len(records)),
		logging.Int("errors", len(scanErrors)),
	)

	online, err := r.store.OnlineSnapshot(ctx, rootPaths)
	if err != nil {
		return nil, err
	}
	offline, err := r.store.OfflineSnapshot(ctx, rootPaths)
	if err != nil {
		return nil, err
	}

	planner := reconcile.NewPlanner(
		fingerprint.New(r.cfg.Fingerprint.PrefixBytes),
		reconcile.Options{
			Workers:            r.cfg.Reconcile.Workers,
			SimilarityFloor:    r.cfg.Reconcile.SimilarityFloor,
			FingerprintInserts: r.cfg.Fingerprint.OnInsert,
		},
		runLog,
	)
	var onHash reconcile.ProgressFunc
	if onProgress != nil {
		onHash = func(done, total int, path string) {
			onProgress(StageFingerprint, done, total, path)
		}
	}
	plan, err := planner.Build(ctx, online, offline, records, onHash)
	if err != nil {
		return nil, err
	}
	plan.Errors = append(scanErrors, plan.Errors...)

	if err := r.store.ApplyPlan(ctx, plan.Mutations); err != nil {
		runLog.Error("plan commit failed", logging.Error(err))
		return nil, err
	}

	report.Summary = plan.Summarize()
	report.Ambiguous = plan.Ambiguous
	report.Errors = plan.Errors

	policy, err := dedup.ParsePolicy(r.cfg.Dedup.Policy)
	if err != nil {
		return nil, err
	}
	rawGroups, err := r.store.OnlineDuplicates(ctx)
	if err != nil {
		return nil, err
	}
	report.Duplicates = dedup.New(policy, r.cfg.Dedup.PreferredRoot, runLog).Plan(rawGroups)
	if onProgress != nil {
		for i, group := range report.Duplicates {
			onProgress(StageDedup, i+1, len(report.Duplicates), group.Keep.Path)
		}
	}

	report.Duration = time.Since(started)
	runLog.Info("reconciliation finished",
		logging.Int("inserted", report.Summary.Inserted),
		logging.Int("relocated", report.Summary.Relocated),
		logging.Int("offlined", report.Summary.Offlined),
		logging.Int("refreshed", report.Summary.Refreshed),
		logging.Int("unchanged", report.Summary.Unchanged),
		logging.Int("ambiguous", report.Ambiguous),
		logging.Int("duplicate_groups", len(report.Duplicates)),
		logging.Duration("elapsed", report.Duration),
	)
	return report, nil
}
