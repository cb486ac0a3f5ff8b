package catalog

import (
	"context"
	"fmt"
	"time"
)

// ApplyPlan executes one reconciliation plan's mutations inside a single
// transaction. Either every mutation commits or none does; a failure rolls
// everything back and is reported as ErrCommit, leaving the catalog exactly
// as it was before the run. NoOp mutations are skipped.
func (s *Store) ApplyPlan(ctx context.Context, mutations []Mutation) error {
	if len(mutations) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", ErrCommit, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	for _, m := range mutations {
		switch m.Op {
		case OpNoOp:
			continue
		case OpInsert:
			_, err = tx.ExecContext(
				ctx,
				`INSERT INTO entries (
                    path, size, mtime, fingerprint, status, source_root,
                    title, stars, created_at, updated_at
                ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				m.Path,
				m.Size,
				nullableTime(m.ModTime),
				nullableString(m.Fingerprint),
				StatusOnline,
				nullableString(m.SourceRoot),
				nullableString(m.Title),
				m.Stars,
				timestamp,
				timestamp,
			)
		case OpRelocate:
			_, err = tx.ExecContext(
				ctx,
				`UPDATE entries
                 SET path = ?, size = ?, mtime = ?, source_root = ?, status = ?, updated_at = ?
                 WHERE id = ?`,
				m.Path,
				m.Size,
				nullableTime(m.ModTime),
				nullableString(m.SourceRoot),
				StatusOnline,
				timestamp,
				m.EntryID,
			)
		case OpMarkOffline:
			_, err = tx.ExecContext(
				ctx,
				`UPDATE entries SET status = ?, updated_at = ? WHERE id = ?`,
				StatusOffline,
				timestamp,
				m.EntryID,
			)
		case OpRefresh:
			_, err = tx.ExecContext(
				ctx,
				`UPDATE entries
                 SET size = ?, mtime = ?, fingerprint = ?, status = ?, updated_at = ?
                 WHERE id = ?`,
				m.Size,
				nullableTime(m.ModTime),
				nullableString(m.Fingerprint),
				StatusOnline,
				timestamp,
				m.EntryID,
			)
		default:
			return fmt.Errorf("%w: unknown mutation op %q", ErrCommit, m.Op)
		}
		if err != nil {
			return fmt.Errorf("%w: apply %s for %s: %v", ErrCommit, m.Op, m.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", ErrCommit, err)
	}
	return nil
}
