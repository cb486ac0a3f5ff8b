package reconcile

import (
	"context"
	"errors"
	"sort"
	"sync"

	"reelsync/internal/scanner"
)

// computeFingerprints hashes the given paths on a bounded worker pool and
// returns path -> fingerprint for every success. Unreadable files land in
// the error list instead; the caller treats them as fingerprint
// unavailable. Results are independent of worker completion order.
func (p *Planner) computeFingerprints(ctx context.Context, paths []string, onProgress ProgressFunc) (map[string]string, []scanner.Error, error) {
	results := make(map[string]string, len(paths))
	var failures []scanner.Error
	if len(paths) == 0 {
		return results, nil, nil
	}

	sorted := make([]string, len(paths))
	copy(sorted, paths)
	sort.Strings(sorted)

	jobs := make(chan string)
	var mu sync.Mutex
	var wg sync.WaitGroup
	var done int

	workers := p.workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(sorted) {
		workers = len(sorted)
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				fp, err := p.fp.File(ctx, path)
				mu.Lock()
				done++
				processed := done
				if err != nil {
					if !errors.Is(err, context.Canceled) && ctx.Err() == nil {
						failures = append(failures, scanner.Error{Path: path, Message: err.Error()})
					}
				} else {
					results[path] = fp
				}
				mu.Unlock()
				if onProgress != nil {
					onProgress(processed, len(sorted), path)
				}
			}
		}()
	}

feed:
	for _, path := range sorted {
		select {
		case jobs <- path:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		// Cancelled between files: discard partial work.
		return nil, nil, err
	}

	sort.Slice(failures, func(i, j int) bool { return failures[i].Path < failures[j].Path })
	return results, failures, nil
}
