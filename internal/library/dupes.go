package library

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"reelsync/internal/dedup"
	"reelsync/internal/fingerprint"
	"reelsync/internal/logging"
)

// DedupResult summarizes an ApplyDedup pass.
type DedupResult struct {
	Removed    int
	Skipped    int
	FreedBytes int64
}

// Duplicates returns the current duplicate proposals under the
// configured retention policy without touching anything.
func (r *Runner) Duplicates(ctx context.Context) ([]dedup.Group, error) {
	policy, err := dedup.ParsePolicy(r.cfg.Dedup.Policy)
	if err != nil {
		return nil, err
	}
	rawGroups, err := r.store.OnlineDuplicates(ctx)
	if err != nil {
		return nil, err
	}
	return dedup.New(policy, r.cfg.Dedup.PreferredRoot, r.log).Plan(rawGroups), nil
}

// ApplyDedup removes the dropped copies from disk and from the catalog.
// With verify set, every copy is compared byte for byte against its
// keeper first; copies that no longer match are skipped rather than
// deleted, since a prefix fingerprint cannot rule out a divergent tail.
func (r *Runner) ApplyDedup(ctx context.Context, groups []dedup.Group, verify bool) (*DedupResult, error) {
	result := &DedupResult{}

	err := r.withLock(func() error {
		for _, group := range groups {
			for _, drop := range group.Drop {
				if err := ctx.Err(); err != nil {
					return err
				}
				if verify {
					same, err := fingerprint.Verify(ctx, group.Keep.Path, drop.Path)
					if err != nil {
						r.log.Warn("duplicate verification failed, keeping file",
							logging.String(logging.FieldPath, drop.Path),
							logging.Error(err),
						)
						result.Skipped++
						continue
					}
					if !same {
						r.log.Warn("files share a fingerprint but differ in full content, keeping both",
							logging.String("keep", group.Keep.Path),
							logging.String(logging.FieldPath, drop.Path),
						)
						result.Skipped++
						continue
					}
				}

				if err := os.Remove(drop.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
					return fmt.Errorf("delete duplicate %s: %w", drop.Path, err)
				}
				if _, err := r.store.RemoveEntry(ctx, drop.ID); err != nil {
					return err
				}
				result.Removed++
				result.FreedBytes += drop.Size
				r.log.Info("duplicate removed",
					logging.Int64("id", drop.ID),
					logging.String(logging.FieldPath, drop.Path),
					logging.String("kept", group.Keep.Path),
				)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
