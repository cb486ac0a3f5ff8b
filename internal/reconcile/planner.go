package reconcile

import (
	"context"
	"log/slog"
	"path/filepath"
	"sort"

	"reelsync/internal/catalog"
	"reelsync/internal/logging"
	"reelsync/internal/pathtext"
	"reelsync/internal/scanner"
)

// similarityEpsilon is the margin below which two competing match
// candidates are considered tied and therefore ambiguous.
const similarityEpsilon = 1e-3

// Fingerprinter hashes a file's bounded prefix. Satisfied by
// fingerprint.Engine.
type Fingerprinter interface {
	File(ctx context.Context, path string) (string, error)
}

// ProgressFunc receives fingerprint progress. done counts completed jobs
// out of total; path is the file just processed.
type ProgressFunc func(done, total int, path string)

// Options tunes planner behavior.
type Options struct {
	// Workers bounds the fingerprint pool. Values below one mean one.
	Workers int
	// SimilarityFloor is the minimum path similarity for breaking
	// fingerprint ties between candidate pairs.
	SimilarityFloor float64
	// FingerprintInserts computes fingerprints for brand-new files and
	// backfills entries that never got one.
	FingerprintInserts bool
}

// Planner turns a catalog snapshot plus scan results into a mutation
// plan. It never touches the store.
type Planner struct {
	fp                 Fingerprinter
	workers            int
	floor              float64
	fingerprintInserts bool
	log                *slog.Logger
}

func NewPlanner(fp Fingerprinter, opts Options, logger *slog.Logger) *Planner {
	if logger == nil {
		logger = logging.NewNop()
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	return &Planner{
		fp:                 fp,
		workers:            workers,
		floor:              opts.SimilarityFloor,
		fingerprintInserts: opts.FingerprintInserts,
		log:                logging.WithComponent(logger, "reconcile"),
	}
}

// Build classifies every scanned record against the catalog snapshot and
// produces a deterministic plan. online and offline are keyed by path;
// records is the scanner output for the same roots.
//
// Paths present in both the scan and the online snapshot are matched in
// place. Scanned paths the catalog does not know and catalog paths the
// scan did not observe are candidates for relocation: a unique
// fingerprint+size match relocates the existing entry to its new path,
// preserving its identity. Leftover new paths become inserts, leftover
// known paths are marked offline. Nothing is ever deleted here.
func (p *Planner) Build(ctx context.Context, online, offline map[string]*catalog.Entry, records []scanner.Record, onProgress ProgressFunc) (*Plan, error) {
	plan := &Plan{}

	var matched []scanner.Record
	var revived []scanner.Record
	var unmatched []scanner.Record
	seen := make(map[string]struct{}, len(records))
	for _, rec := range records {
		seen[rec.Path] = struct{}{}
		switch {
		case online[rec.Path] != nil:
			matched = append(matched, rec)
		case offline[rec.Path] != nil:
			revived = append(revived, rec)
		default:
			unmatched = append(unmatched, rec)
		}
	}

	var missing []*catalog.Entry
	for path, entry := range online {
		if _, ok := seen[path]; !ok {
			missing = append(missing, entry)
		}
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i].ID < missing[j].ID })

	jobs := p.selectFingerprintJobs(matched, revived, unmatched, online, offline, len(missing) > 0)
	fps, failures, err := p.computeFingerprints(ctx, jobs, onProgress)
	if err != nil {
		return nil, err
	}
	plan.Errors = append(plan.Errors, failures...)

	// Matched in place: refresh on change, otherwise record a no-op so
	// the plan still accounts for every observed file.
	for _, rec := range matched {
		entry := online[rec.Path]
		switch {
		case rec.Size != entry.Size:
			plan.Mutations = append(plan.Mutations, catalog.Mutation{
				Op:          catalog.OpRefresh,
				EntryID:     entry.ID,
				Path:        rec.Path,
				Size:        rec.Size,
				ModTime:     rec.ModTime,
				Fingerprint: fps[rec.Path],
				SourceRoot:  rec.Root,
			})
		case !rec.ModTime.Equal(entry.ModTime) || (entry.Fingerprint == "" && fps[rec.Path] != ""):
			fp := entry.Fingerprint
			if fp == "" {
				fp = fps[rec.Path]
			}
			plan.Mutations = append(plan.Mutations, catalog.Mutation{
				Op:          catalog.OpRefresh,
				EntryID:     entry.ID,
				Path:        rec.Path,
				Size:        rec.Size,
				ModTime:     rec.ModTime,
				Fingerprint: fp,
				SourceRoot:  rec.Root,
			})
		default:
			plan.Mutations = append(plan.Mutations, catalog.Mutation{
				Op:      catalog.OpNoOp,
				EntryID: entry.ID,
				Path:    rec.Path,
			})
		}
	}

	// Offline entries whose path reappeared come back online with their
	// identity intact.
	for _, rec := range revived {
		entry := offline[rec.Path]
		fp := entry.Fingerprint
		if rec.Size != entry.Size || fp == "" {
			fp = fps[rec.Path]
		}
		plan.Mutations = append(plan.Mutations, catalog.Mutation{
			Op:          catalog.OpRefresh,
			EntryID:     entry.ID,
			Path:        rec.Path,
			Size:        rec.Size,
			ModTime:     rec.ModTime,
			Fingerprint: fp,
			SourceRoot:  rec.Root,
		})
	}

	relocations, leftoversNew, leftoversGone, ambiguous := p.matchRelocations(unmatched, missing, fps)
	plan.Ambiguous = ambiguous
	plan.Mutations = append(plan.Mutations, relocations...)

	for _, rec := range leftoversNew {
		base := filepath.Base(rec.Path)
		plan.Mutations = append(plan.Mutations, catalog.Mutation{
			Op:          catalog.OpInsert,
			Path:        rec.Path,
			Size:        rec.Size,
			ModTime:     rec.ModTime,
			Fingerprint: fps[rec.Path],
			SourceRoot:  rec.Root,
			Title:       catalog.ParseTitle(base),
			Stars:       catalog.ParseStars(base),
		})
	}
	for _, entry := range leftoversGone {
		plan.Mutations = append(plan.Mutations, catalog.Mutation{
			Op:      catalog.OpMarkOffline,
			EntryID: entry.ID,
			Path:    entry.Path,
		})
	}

	plan.sortMutations()
	summary := plan.Summarize()
	p.log.Debug("plan built",
		logging.Int("inserted", summary.Inserted),
		logging.Int("relocated", summary.Relocated),
		logging.Int("offlined", summary.Offlined),
		logging.Int("refreshed", summary.Refreshed),
		logging.Int("unchanged", summary.Unchanged),
		logging.Int("ambiguous", ambiguous),
	)
	return plan, nil
}

// selectFingerprintJobs decides which paths are worth hashing for this
// run. New paths are hashed when there is anything to match them against
// or when inserts record fingerprints; known paths only when their size
// changed or their fingerprint was never recorded.
func (p *Planner) selectFingerprintJobs(matched, revived, unmatched []scanner.Record, online, offline map[string]*catalog.Entry, haveMissing bool) []string {
	var jobs []string
	if haveMissing || p.fingerprintInserts {
		for _, rec := range unmatched {
			jobs = append(jobs, rec.Path)
		}
	}
	for _, rec := range matched {
		entry := online[rec.Path]
		if rec.Size != entry.Size || (entry.Fingerprint == "" && p.fingerprintInserts) {
			jobs = append(jobs, rec.Path)
		}
	}
	for _, rec := range revived {
		entry := offline[rec.Path]
		if rec.Size != entry.Size || entry.Fingerprint == "" {
			jobs = append(jobs, rec.Path)
		}
	}
	return jobs
}

// matchRelocations pairs unknown scanned paths with unobserved catalog
// entries that share a fingerprint and size. Unique pairs relocate
// directly. When several candidates collide on the same fingerprint,
// mutual best path similarity breaks the tie; pairs that stay ambiguous
// fall back to insert-plus-offline so no entry is ever guessed wrong.
func (p *Planner) matchRelocations(unmatched []scanner.Record, missing []*catalog.Entry, fps map[string]string) (mutations []catalog.Mutation, leftoversNew []scanner.Record, leftoversGone []*catalog.Entry, ambiguous int) {
	type key struct {
		fingerprint string
		size        int64
	}

	newByKey := make(map[key][]scanner.Record)
	var unknown []scanner.Record
	for _, rec := range unmatched {
		fp := fps[rec.Path]
		if fp == "" {
			unknown = append(unknown, rec)
			continue
		}
		k := key{fingerprint: fp, size: rec.Size}
		newByKey[k] = append(newByKey[k], rec)
	}

	goneByKey := make(map[key][]*catalog.Entry)
	var unknowable []*catalog.Entry
	for _, entry := range missing {
		if entry.Fingerprint == "" {
			unknowable = append(unknowable, entry)
			continue
		}
		k := key{fingerprint: entry.Fingerprint, size: entry.Size}
		goneByKey[k] = append(goneByKey[k], entry)
	}

	keys := make([]key, 0, len(newByKey))
	for k := range newByKey {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].fingerprint != keys[j].fingerprint {
			return keys[i].fingerprint < keys[j].fingerprint
		}
		return keys[i].size < keys[j].size
	})

	for _, k := range keys {
		news := newByKey[k]
		gones := goneByKey[k]
		if len(gones) == 0 {
			leftoversNew = append(leftoversNew, news...)
			continue
		}
		delete(goneByKey, k)

		if len(news) == 1 && len(gones) == 1 {
			mutations = append(mutations, relocation(gones[0], news[0]))
			continue
		}

		pairs, amb, restNew, restGone := p.pairBySimilarity(news, gones)
		ambiguous += amb
		mutations = append(mutations, pairs...)
		leftoversNew = append(leftoversNew, restNew...)
		leftoversGone = append(leftoversGone, restGone...)
	}

	// Missing entries whose fingerprint matched nothing in the scan.
	remainingKeys := make([]key, 0, len(goneByKey))
	for k := range goneByKey {
		remainingKeys = append(remainingKeys, k)
	}
	sort.Slice(remainingKeys, func(i, j int) bool {
		if remainingKeys[i].fingerprint != remainingKeys[j].fingerprint {
			return remainingKeys[i].fingerprint < remainingKeys[j].fingerprint
		}
		return remainingKeys[i].size < remainingKeys[j].size
	})
	for _, k := range remainingKeys {
		leftoversGone = append(leftoversGone, goneByKey[k]...)
	}
	leftoversGone = append(leftoversGone, unknowable...)
	leftoversNew = append(leftoversNew, unknown...)
	return mutations, leftoversNew, leftoversGone, ambiguous
}

// pairBySimilarity resolves a fingerprint collision between multiple new
// paths and multiple missing entries. Pairs are accepted greedily in
// descending similarity order, but only while the best choice is
// unambiguous: a candidate whose best score ties another candidate for
// the same file, or falls below the floor, is left unresolved.
func (p *Planner) pairBySimilarity(news []scanner.Record, gones []*catalog.Entry) (mutations []catalog.Mutation, ambiguous int, restNew []scanner.Record, restGone []*catalog.Entry) {
	type candidate struct {
		newIdx  int
		goneIdx int
		sim     float64
	}

	newVecs := make([]*pathtext.Vector, len(news))
	for i, rec := range news {
		newVecs[i] = pathtext.NewVector(rec.Path)
	}
	goneVecs := make([]*pathtext.Vector, len(gones))
	for i, entry := range gones {
		goneVecs[i] = pathtext.NewVector(entry.Path)
	}

	candidates := make([]candidate, 0, len(news)*len(gones))
	for i := range news {
		for j := range gones {
			candidates = append(candidates, candidate{
				newIdx:  i,
				goneIdx: j,
				sim:     pathtext.CosineSimilarity(newVecs[i], goneVecs[j]),
			})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].sim != candidates[j].sim {
			return candidates[i].sim > candidates[j].sim
		}
		if news[candidates[i].newIdx].Path != news[candidates[j].newIdx].Path {
			return news[candidates[i].newIdx].Path < news[candidates[j].newIdx].Path
		}
		return gones[candidates[i].goneIdx].Path < gones[candidates[j].goneIdx].Path
	})

	takenNew := make([]bool, len(news))
	takenGone := make([]bool, len(gones))
	droppedNew := make([]bool, len(news))
	droppedGone := make([]bool, len(gones))

	for idx, cand := range candidates {
		if takenNew[cand.newIdx] || takenGone[cand.goneIdx] || droppedNew[cand.newIdx] || droppedGone[cand.goneIdx] {
			continue
		}
		if cand.sim < p.floor {
			break
		}
		// Competing live candidates within epsilon of this one make the
		// choice a coin flip; refuse to guess, and retire every file
		// involved in the tie so a leftover pairing cannot win by
		// default.
		var tiedWith []candidate
		for _, other := range candidates[idx+1:] {
			if cand.sim-other.sim > similarityEpsilon {
				break
			}
			if other.newIdx != cand.newIdx && other.goneIdx != cand.goneIdx {
				continue
			}
			if takenNew[other.newIdx] || takenGone[other.goneIdx] || droppedNew[other.newIdx] || droppedGone[other.goneIdx] {
				continue
			}
			tiedWith = append(tiedWith, other)
		}
		if len(tiedWith) > 0 {
			droppedNew[cand.newIdx] = true
			droppedGone[cand.goneIdx] = true
			ambiguous++
			for _, other := range tiedWith {
				if !droppedNew[other.newIdx] {
					droppedNew[other.newIdx] = true
					ambiguous++
				}
				droppedGone[other.goneIdx] = true
			}
			p.log.Warn("ambiguous relocation candidates, keeping all records",
				logging.String("new_path", news[cand.newIdx].Path),
				logging.String("old_path", gones[cand.goneIdx].Path),
				logging.Float64("similarity", cand.sim),
				logging.Int("contenders", len(tiedWith)),
			)
			continue
		}
		takenNew[cand.newIdx] = true
		takenGone[cand.goneIdx] = true
		mutations = append(mutations, relocation(gones[cand.goneIdx], news[cand.newIdx]))
	}

	for i, rec := range news {
		if !takenNew[i] {
			restNew = append(restNew, rec)
		}
	}
	for j, entry := range gones {
		if !takenGone[j] {
			restGone = append(restGone, entry)
		}
	}
	return mutations, ambiguous, restNew, restGone
}

func relocation(entry *catalog.Entry, rec scanner.Record) catalog.Mutation {
	return catalog.Mutation{
		Op:         catalog.OpRelocate,
		EntryID:    entry.ID,
		Path:       rec.Path,
		OldPath:    entry.Path,
		Size:       rec.Size,
		ModTime:    rec.ModTime,
		SourceRoot: rec.Root,
	}
}
