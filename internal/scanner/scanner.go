package scanner

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"reelsync/internal/catalog"
	"reelsync/internal/pathtext"
)

// Record describes one video file observed during a scan pass. Records are
// ephemeral; they live only for the duration of one reconciliation run.
type Record struct {
	Path    string
	Size    int64
	ModTime time.Time
	Root    string
}

// Error captures a path the walk could not read. Scan errors never abort a
// walk; they surface in the run report instead.
type Error struct {
	Path    string
	Message string
}

// Scanner walks active watched roots and yields candidate file records.
// It is purely observational: no catalog access, no filesystem mutation.
// Every Scan call re-walks from scratch.
type Scanner struct {
	extensions map[string]struct{}
	minSize    int64
}

// New builds a Scanner recognizing the given file suffixes (lowercase, with
// leading dot) and ignoring files smaller than minSize bytes.
func New(extensions []string, minSize int64) *Scanner {
	set := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		set[strings.ToLower(ext)] = struct{}{}
	}
	return &Scanner{extensions: set, minSize: minSize}
}

// Scan walks the given roots and returns the records found, sorted by path,
// along with any per-entry errors. onFile, when non-nil, is invoked for each
// accepted file; it must not block. Symlinked directories are not followed,
// so the walk never escapes the configured roots. Nested roots observe the
// same file more than once; each path is emitted exactly once, attributed to
// the first root that reaches it.
func (s *Scanner) Scan(ctx context.Context, roots []*catalog.Root, onFile func(path string)) ([]Record, []Error, error) {
	var records []Record
	var scanErrs []Error
	seen := make(map[string]struct{})

	for _, root := range roots {
		if !root.Active {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		rootPath := root.Path
		err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if err != nil {
				scanErrs = append(scanErrs, Error{Path: path, Message: err.Error()})
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			if !s.accepts(d.Name()) {
				return nil
			}

			info, err := d.Info()
			if err != nil {
				scanErrs = append(scanErrs, Error{Path: path, Message: err.Error()})
				return nil
			}
			if s.minSize > 0 && info.Size() < s.minSize {
				return nil
			}

			normalized := pathtext.Normalize(path)
			if _, dup := seen[normalized]; dup {
				return nil
			}
			seen[normalized] = struct{}{}
			records = append(records, Record{
				Path:    normalized,
				Size:    info.Size(),
				ModTime: info.ModTime().UTC(),
				Root:    rootPath,
			})
			if onFile != nil {
				onFile(normalized)
			}
			return nil
		})
		if err != nil {
			// Only context cancellation propagates; per-entry failures were
			// captured above.
			return nil, nil, err
		}
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Path < records[j].Path })
	return records, scanErrs, nil
}

func (s *Scanner) accepts(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return false
	}
	_, ok := s.extensions[ext]
	return ok
}
