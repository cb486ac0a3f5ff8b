package reconcile_test

import (
	"context"
	"fmt"
	"reflect"
	"testing"
	"time"

	"reelsync/internal/catalog"
	"reelsync/internal/reconcile"
	"reelsync/internal/scanner"
)

// stubFingerprinter serves canned fingerprints so planner behavior can be
// exercised without touching the filesystem.
type stubFingerprinter struct {
	fps  map[string]string
	errs map[string]error
}

func (s *stubFingerprinter) File(_ context.Context, path string) (string, error) {
	if err := s.errs[path]; err != nil {
		return "", err
	}
	fp, ok := s.fps[path]
	if !ok {
		return "", fmt.Errorf("unexpected fingerprint request for %s", path)
	}
	return fp, nil
}

var baseTime = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func record(path string, size int64) scanner.Record {
	return scanner.Record{Path: path, Size: size, ModTime: baseTime, Root: "/media"}
}

func entry(id int64, path string, size int64, fp string) *catalog.Entry {
	return &catalog.Entry{
		ID:          id,
		Path:        path,
		Size:        size,
		ModTime:     baseTime,
		Fingerprint: fp,
		Status:      catalog.StatusOnline,
		SourceRoot:  "/media",
	}
}

func newPlanner(fp reconcile.Fingerprinter, workers int) *reconcile.Planner {
	return reconcile.NewPlanner(fp, reconcile.Options{
		Workers:            workers,
		SimilarityFloor:    0.35,
		FingerprintInserts: true,
	}, nil)
}

func opsByKind(plan *reconcile.Plan) map[catalog.MutationOp][]catalog.Mutation {
	byKind := make(map[catalog.MutationOp][]catalog.Mutation)
	for _, m := range plan.Mutations {
		byKind[m.Op] = append(byKind[m.Op], m)
	}
	return byKind
}

func TestBuildInsertsNewFiles(t *testing.T) {
	fp := &stubFingerprinter{fps: map[string]string{
		"/media/!!Heat (1995).mkv": "fp-heat",
		"/media/plain.mp4":         "fp-plain",
	}}
	planner := newPlanner(fp, 1)

	plan, err := planner.Build(context.Background(), nil, nil, []scanner.Record{
		record("/media/!!Heat (1995).mkv", 100),
		record("/media/plain.mp4", 200),
	}, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	inserts := opsByKind(plan)[catalog.OpInsert]
	if len(inserts) != 2 {
		t.Fatalf("expected 2 inserts, got %#v", plan.Mutations)
	}
	heat := inserts[0]
	if heat.Path != "/media/!!Heat (1995).mkv" {
		heat = inserts[1]
	}
	if heat.Title != "Heat (1995)" || heat.Stars != 3 {
		t.Fatalf("insert metadata wrong: %#v", heat)
	}
	if heat.Fingerprint != "fp-heat" {
		t.Fatalf("insert missing fingerprint: %#v", heat)
	}
}

func TestBuildSkipsFingerprintingWhenNothingNeedsIt(t *testing.T) {
	// No missing entries and inserts configured not to fingerprint: the
	// engine must never be consulted.
	fp := &stubFingerprinter{}
	planner := reconcile.NewPlanner(fp, reconcile.Options{Workers: 1, SimilarityFloor: 0.35}, nil)

	plan, err := planner.Build(context.Background(), nil, nil, []scanner.Record{
		record("/media/new.mkv", 100),
	}, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	inserts := opsByKind(plan)[catalog.OpInsert]
	if len(inserts) != 1 || inserts[0].Fingerprint != "" {
		t.Fatalf("expected one fingerprint-less insert, got %#v", plan.Mutations)
	}
	if len(plan.Errors) != 0 {
		t.Fatalf("unexpected errors: %#v", plan.Errors)
	}
}

func TestBuildSecondRunIsNoOp(t *testing.T) {
	online := map[string]*catalog.Entry{
		"/media/a.mkv": entry(1, "/media/a.mkv", 100, "fp-a"),
		"/media/b.mkv": entry(2, "/media/b.mkv", 200, "fp-b"),
	}
	planner := newPlanner(&stubFingerprinter{}, 2)

	plan, err := planner.Build(context.Background(), online, nil, []scanner.Record{
		record("/media/a.mkv", 100),
		record("/media/b.mkv", 200),
	}, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if !plan.IsNoOp() {
		t.Fatalf("expected a no-op plan, got %#v", plan.Mutations)
	}
	if got := plan.Summarize().Unchanged; got != 2 {
		t.Fatalf("expected 2 unchanged, got %d", got)
	}
}

func TestBuildDetectsMovePreservingIdentity(t *testing.T) {
	online := map[string]*catalog.Entry{
		"/media/old/Heat.mkv": entry(7, "/media/old/Heat.mkv", 100, "fp-heat"),
	}
	fp := &stubFingerprinter{fps: map[string]string{
		"/media/new/Heat.mkv": "fp-heat",
	}}
	planner := newPlanner(fp, 1)

	plan, err := planner.Build(context.Background(), online, nil, []scanner.Record{
		record("/media/new/Heat.mkv", 100),
	}, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	byKind := opsByKind(plan)
	relocates := byKind[catalog.OpRelocate]
	if len(relocates) != 1 {
		t.Fatalf("expected one relocate, got %#v", plan.Mutations)
	}
	m := relocates[0]
	if m.EntryID != 7 || m.Path != "/media/new/Heat.mkv" || m.OldPath != "/media/old/Heat.mkv" {
		t.Fatalf("relocate wrong: %#v", m)
	}
	if len(byKind[catalog.OpInsert]) != 0 || len(byKind[catalog.OpMarkOffline]) != 0 {
		t.Fatalf("move must not produce insert or offline: %#v", plan.Mutations)
	}
}

func TestBuildInsertVersusRelocate(t *testing.T) {
	online := map[string]*catalog.Entry{
		"/media/old/Heat.mkv": entry(1, "/media/old/Heat.mkv", 100, "fp-heat"),
	}
	fp := &stubFingerprinter{fps: map[string]string{
		"/media/new/Heat.mkv":  "fp-heat",
		"/media/new/Fresh.mkv": "fp-fresh",
	}}
	planner := newPlanner(fp, 2)

	plan, err := planner.Build(context.Background(), online, nil, []scanner.Record{
		record("/media/new/Heat.mkv", 100),
		record("/media/new/Fresh.mkv", 100),
	}, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	byKind := opsByKind(plan)
	if len(byKind[catalog.OpRelocate]) != 1 || byKind[catalog.OpRelocate][0].EntryID != 1 {
		t.Fatalf("expected relocate of entry 1, got %#v", plan.Mutations)
	}
	inserts := byKind[catalog.OpInsert]
	if len(inserts) != 1 || inserts[0].Path != "/media/new/Fresh.mkv" {
		t.Fatalf("expected insert of the genuinely new file, got %#v", plan.Mutations)
	}
}

func TestBuildSizeMismatchPreventsRelocate(t *testing.T) {
	// Same fingerprint is not enough; relocation requires the size to
	// match too.
	online := map[string]*catalog.Entry{
		"/media/old.mkv": entry(1, "/media/old.mkv", 100, "fp-x"),
	}
	fp := &stubFingerprinter{fps: map[string]string{
		"/media/new.mkv": "fp-x",
	}}
	planner := newPlanner(fp, 1)

	plan, err := planner.Build(context.Background(), online, nil, []scanner.Record{
		record("/media/new.mkv", 999),
	}, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	byKind := opsByKind(plan)
	if len(byKind[catalog.OpRelocate]) != 0 {
		t.Fatalf("size mismatch must not relocate: %#v", plan.Mutations)
	}
	if len(byKind[catalog.OpInsert]) != 1 || len(byKind[catalog.OpMarkOffline]) != 1 {
		t.Fatalf("expected conservative insert plus offline, got %#v", plan.Mutations)
	}
}

func TestBuildMarksUnobservedEntriesOffline(t *testing.T) {
	online := map[string]*catalog.Entry{
		"/media/gone.mkv": entry(3, "/media/gone.mkv", 100, "fp-gone"),
		"/media/here.mkv": entry(4, "/media/here.mkv", 200, "fp-here"),
	}
	planner := newPlanner(&stubFingerprinter{}, 1)

	plan, err := planner.Build(context.Background(), online, nil, []scanner.Record{
		record("/media/here.mkv", 200),
	}, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	offline := opsByKind(plan)[catalog.OpMarkOffline]
	if len(offline) != 1 || offline[0].EntryID != 3 {
		t.Fatalf("expected entry 3 marked offline, got %#v", plan.Mutations)
	}
	if offline[0].Path != "/media/gone.mkv" {
		t.Fatalf("expected mark-offline to carry the last known path, got %q", offline[0].Path)
	}
}

func TestBuildRefreshesOnSizeChange(t *testing.T) {
	online := map[string]*catalog.Entry{
		"/media/grow.mkv": entry(5, "/media/grow.mkv", 100, "fp-old"),
	}
	fp := &stubFingerprinter{fps: map[string]string{
		"/media/grow.mkv": "fp-new",
	}}
	planner := newPlanner(fp, 1)

	plan, err := planner.Build(context.Background(), online, nil, []scanner.Record{
		record("/media/grow.mkv", 500),
	}, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	refreshes := opsByKind(plan)[catalog.OpRefresh]
	if len(refreshes) != 1 {
		t.Fatalf("expected one refresh, got %#v", plan.Mutations)
	}
	m := refreshes[0]
	if m.EntryID != 5 || m.Size != 500 || m.Fingerprint != "fp-new" {
		t.Fatalf("refresh wrong: %#v", m)
	}
}

func TestBuildRevivesOfflineEntry(t *testing.T) {
	offlineEntry := entry(9, "/media/back.mkv", 100, "fp-back")
	offlineEntry.Status = catalog.StatusOffline
	offline := map[string]*catalog.Entry{offlineEntry.Path: offlineEntry}

	planner := newPlanner(&stubFingerprinter{}, 1)
	plan, err := planner.Build(context.Background(), nil, offline, []scanner.Record{
		record("/media/back.mkv", 100),
	}, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	byKind := opsByKind(plan)
	refreshes := byKind[catalog.OpRefresh]
	if len(refreshes) != 1 || refreshes[0].EntryID != 9 {
		t.Fatalf("expected revival refresh for entry 9, got %#v", plan.Mutations)
	}
	if refreshes[0].Fingerprint != "fp-back" {
		t.Fatalf("unchanged size should keep the stored fingerprint: %#v", refreshes[0])
	}
	if len(byKind[catalog.OpInsert]) != 0 {
		t.Fatalf("revival must not insert a duplicate row: %#v", plan.Mutations)
	}
}

func TestBuildResolvesFingerprintCollisionBySimilarity(t *testing.T) {
	// Two byte-identical files both moved to a new directory. Path
	// similarity is the only signal left, and it is decisive here.
	online := map[string]*catalog.Entry{
		"/media/movies/Heat (1995).mkv":        entry(1, "/media/movies/Heat (1995).mkv", 700, "fp-same"),
		"/media/movies/Taxi Driver (1976).mkv": entry(2, "/media/movies/Taxi Driver (1976).mkv", 700, "fp-same"),
	}
	fp := &stubFingerprinter{fps: map[string]string{
		"/media/archive/Heat (1995).mkv":        "fp-same",
		"/media/archive/Taxi Driver (1976).mkv": "fp-same",
	}}
	planner := newPlanner(fp, 2)

	plan, err := planner.Build(context.Background(), online, nil, []scanner.Record{
		record("/media/archive/Heat (1995).mkv", 700),
		record("/media/archive/Taxi Driver (1976).mkv", 700),
	}, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	relocates := opsByKind(plan)[catalog.OpRelocate]
	if len(relocates) != 2 {
		t.Fatalf("expected both files relocated, got %#v", plan.Mutations)
	}
	for _, m := range relocates {
		switch m.EntryID {
		case 1:
			if m.Path != "/media/archive/Heat (1995).mkv" {
				t.Fatalf("entry 1 paired with wrong path: %#v", m)
			}
		case 2:
			if m.Path != "/media/archive/Taxi Driver (1976).mkv" {
				t.Fatalf("entry 2 paired with wrong path: %#v", m)
			}
		default:
			t.Fatalf("unexpected relocate: %#v", m)
		}
	}
	if plan.Ambiguous != 0 {
		t.Fatalf("decisive similarity should not count as ambiguous: %d", plan.Ambiguous)
	}
}

func TestBuildAmbiguousCollisionFallsBackConservatively(t *testing.T) {
	// Identical content, identically unhelpful names: every pairing
	// scores the same, so no relocation may be guessed.
	online := map[string]*catalog.Entry{
		"/media/a/clip.mkv": entry(1, "/media/a/clip.mkv", 300, "fp-same"),
		"/media/b/clip.mkv": entry(2, "/media/b/clip.mkv", 300, "fp-same"),
	}
	fp := &stubFingerprinter{fps: map[string]string{
		"/media/c/clip.mkv": "fp-same",
		"/media/d/clip.mkv": "fp-same",
	}}
	planner := newPlanner(fp, 1)

	plan, err := planner.Build(context.Background(), online, nil, []scanner.Record{
		record("/media/c/clip.mkv", 300),
		record("/media/d/clip.mkv", 300),
	}, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	byKind := opsByKind(plan)
	if len(byKind[catalog.OpRelocate]) != 0 {
		t.Fatalf("tied similarity must not relocate: %#v", plan.Mutations)
	}
	if len(byKind[catalog.OpInsert]) != 2 || len(byKind[catalog.OpMarkOffline]) != 2 {
		t.Fatalf("expected conservative inserts and offlines, got %#v", plan.Mutations)
	}
	if plan.Ambiguous == 0 {
		t.Fatal("expected ambiguity to be counted")
	}
}

func TestBuildUnreadableFileDegradesToInsert(t *testing.T) {
	online := map[string]*catalog.Entry{
		"/media/gone.mkv": entry(1, "/media/gone.mkv", 100, "fp-gone"),
	}
	fp := &stubFingerprinter{
		fps:  map[string]string{},
		errs: map[string]error{"/media/new.mkv": fmt.Errorf("read error")},
	}
	planner := newPlanner(fp, 1)

	plan, err := planner.Build(context.Background(), online, nil, []scanner.Record{
		record("/media/new.mkv", 100),
	}, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	byKind := opsByKind(plan)
	inserts := byKind[catalog.OpInsert]
	if len(inserts) != 1 || inserts[0].Fingerprint != "" {
		t.Fatalf("unreadable file should insert without fingerprint: %#v", plan.Mutations)
	}
	if len(byKind[catalog.OpMarkOffline]) != 1 {
		t.Fatalf("missing entry should still be marked offline: %#v", plan.Mutations)
	}
	if len(plan.Errors) != 1 || plan.Errors[0].Path != "/media/new.mkv" {
		t.Fatalf("expected the read failure in plan errors: %#v", plan.Errors)
	}
}

func TestBuildDeterministicAcrossWorkerCounts(t *testing.T) {
	online := map[string]*catalog.Entry{
		"/media/a.mkv": entry(1, "/media/a.mkv", 100, "fp-a"),
		"/media/b.mkv": entry(2, "/media/b.mkv", 200, "fp-b"),
		"/media/c.mkv": entry(3, "/media/c.mkv", 300, "fp-c"),
	}
	fps := map[string]string{
		"/media/moved-a.mkv": "fp-a",
		"/media/moved-b.mkv": "fp-b",
		"/media/new-1.mkv":   "fp-n1",
		"/media/new-2.mkv":   "fp-n2",
	}
	records := []scanner.Record{
		record("/media/moved-a.mkv", 100),
		record("/media/moved-b.mkv", 200),
		record("/media/new-1.mkv", 400),
		record("/media/new-2.mkv", 500),
	}

	var plans []*reconcile.Plan
	for _, workers := range []int{1, 4} {
		planner := newPlanner(&stubFingerprinter{fps: fps}, workers)
		plan, err := planner.Build(context.Background(), online, nil, records, nil)
		if err != nil {
			t.Fatalf("Build with %d workers failed: %v", workers, err)
		}
		plans = append(plans, plan)
	}

	if !reflect.DeepEqual(plans[0].Mutations, plans[1].Mutations) {
		t.Fatalf("plans differ across worker counts:\n%#v\nvs\n%#v", plans[0].Mutations, plans[1].Mutations)
	}
}
