package catalog

import (
	"strings"
	"time"
)

// Status tracks whether an entry's path currently resolves on disk.
type Status string

const (
	// StatusOnline means the path resolved to a readable file at last scan.
	StatusOnline Status = "online"
	// StatusOffline means the path stopped resolving and no relocation was
	// confirmed. Offline rows are retained; removable and NAS volumes come
	// back.
	StatusOffline Status = "offline"
)

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	switch Status(strings.ToLower(strings.TrimSpace(value))) {
	case StatusOnline:
		return StatusOnline, true
	case StatusOffline:
		return StatusOffline, true
	default:
		return "", false
	}
}

// Entry is one cataloged video file.
type Entry struct {
	ID          int64
	Path        string
	Size        int64
	ModTime     time.Time
	Fingerprint string // empty until computed
	Status      Status
	SourceRoot  string
	Title       string
	Stars       int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsOnline reports whether the entry's path resolved at last scan.
func (e *Entry) IsOnline() bool {
	return e != nil && e.Status == StatusOnline
}

// Root is a watched directory. Roots are deactivated rather than deleted so
// entries discovered under them keep their provenance.
type Root struct {
	ID        int64
	Path      string
	Label     string
	Active    bool
	CreatedAt time.Time
}

// Summary aggregates catalog counts for status output.
type Summary struct {
	Online             int
	Offline            int
	MissingFingerprint int
	ActiveRoots        int
	InactiveRoots      int
}
