package library

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"reelsync/internal/catalog"
	"reelsync/internal/fingerprint"
	"reelsync/internal/logging"
	"reelsync/internal/pathtext"
)

// MoveEntry relocates a cataloged file on disk and records the new path
// under the same entry id. Cross-device moves copy, verify the copy byte
// for byte, then remove the original; a failed verification leaves the
// original untouched.
func (r *Runner) MoveEntry(ctx context.Context, id int64, destPath string) (*catalog.Entry, error) {
	var moved *catalog.Entry
	err := r.withLock(func() error {
		var err error
		moved, err = r.moveLocked(ctx, id, destPath)
		return err
	})
	return moved, err
}

func (r *Runner) moveLocked(ctx context.Context, id int64, destPath string) (*catalog.Entry, error) {
	entry, err := r.store.GetEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, fmt.Errorf("entry %d not found", id)
	}
	if !entry.IsOnline() {
		return nil, fmt.Errorf("entry %d is offline; reconcile before moving", id)
	}

	dest, err := filepath.Abs(destPath)
	if err != nil {
		return nil, fmt.Errorf("resolve destination: %w", err)
	}
	dest = pathtext.Normalize(dest)
	if info, err := os.Stat(dest); err == nil && info.IsDir() {
		dest = filepath.Join(dest, filepath.Base(entry.Path))
	}
	if _, err := os.Stat(dest); err == nil {
		return nil, fmt.Errorf("destination already exists: %s", dest)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("stat destination: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return nil, fmt.Errorf("create destination directory: %w", err)
	}

	if err := r.moveFile(ctx, entry.Path, dest); err != nil {
		return nil, err
	}

	info, err := os.Stat(dest)
	if err != nil {
		return nil, fmt.Errorf("stat moved file: %w", err)
	}

	root, err := r.containingRoot(ctx, dest)
	if err != nil {
		return nil, err
	}
	mutation := catalog.Mutation{
		Op:         catalog.OpRelocate,
		EntryID:    entry.ID,
		Path:       dest,
		OldPath:    entry.Path,
		Size:       info.Size(),
		ModTime:    info.ModTime().UTC(),
		SourceRoot: root,
	}
	if err := r.store.ApplyPlan(ctx, []catalog.Mutation{mutation}); err != nil {
		return nil, err
	}
	r.log.Info("entry moved",
		logging.Int64("id", entry.ID),
		logging.String("from", entry.Path),
		logging.String("to", dest),
	)
	return r.store.GetEntry(ctx, entry.ID)
}

// containingRoot returns the registered root the path lives under, or
// an empty string when it is outside every root.
func (r *Runner) containingRoot(ctx context.Context, path string) (string, error) {
	roots, err := r.store.Roots(ctx)
	if err != nil {
		return "", err
	}
	best := ""
	for _, root := range roots {
		prefix := root.Path + string(filepath.Separator)
		if (path == root.Path || strings.HasPrefix(path, prefix)) && len(root.Path) > len(best) {
			best = root.Path
		}
	}
	return best, nil
}

func (r *Runner) moveFile(ctx context.Context, src, dest string) error {
	if err := os.Rename(src, dest); err == nil {
		return nil
	} else if !isCrossDevice(err) {
		return fmt.Errorf("rename %s: %w", src, err)
	}

	if err := copyFile(src, dest); err != nil {
		_ = os.Remove(dest)
		return err
	}
	same, err := fingerprint.Verify(ctx, src, dest)
	if err != nil {
		_ = os.Remove(dest)
		return fmt.Errorf("verify copy: %w", err)
	}
	if !same {
		_ = os.Remove(dest)
		return fmt.Errorf("copy of %s did not verify", src)
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("remove original %s: %w", src, err)
	}
	return nil
}

func isCrossDevice(err error) bool {
	var linkErr *os.LinkError
	return errors.As(err, &linkErr)
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy to %s: %w", dest, err)
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return fmt.Errorf("sync %s: %w", dest, err)
	}
	return out.Close()
}
