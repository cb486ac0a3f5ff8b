package library

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"reelsync/internal/logging"
)

// RemoveEntry deletes a catalog entry and, when deleteFile is set, the
// file it points at. A file already gone from disk is not an error.
func (r *Runner) RemoveEntry(ctx context.Context, id int64, deleteFile bool) error {
	return r.withLock(func() error {
		entry, err := r.store.GetEntry(ctx, id)
		if err != nil {
			return err
		}
		if entry == nil {
			return fmt.Errorf("entry %d not found", id)
		}

		if deleteFile {
			if err := os.Remove(entry.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("delete %s: %w", entry.Path, err)
			}
		}

		removed, err := r.store.RemoveEntry(ctx, id)
		if err != nil {
			return err
		}
		if !removed {
			return fmt.Errorf("entry %d not found", id)
		}
		r.log.Info("entry removed",
			logging.Int64("id", id),
			logging.String(logging.FieldPath, entry.Path),
			logging.Bool("file_deleted", deleteFile),
		)
		return nil
	})
}
