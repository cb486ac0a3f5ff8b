// Package dedup selects which copy of a duplicated file to keep. It
// works purely on catalog entries already grouped by fingerprint;
// deletion of files and rows happens elsewhere.
package dedup

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"reelsync/internal/catalog"
	"reelsync/internal/logging"
)

// Policy decides which entry in a duplicate group survives.
type Policy string

const (
	// KeepNewest keeps the copy with the latest file modification time.
	KeepNewest Policy = "keep-newest"
	// KeepOldest keeps the copy with the earliest file modification time.
	KeepOldest Policy = "keep-oldest"
	// KeepInRoot keeps a copy under the preferred root when one exists,
	// newest first, and falls back to KeepNewest otherwise.
	KeepInRoot Policy = "keep-in-root"
)

func ParsePolicy(value string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(value))) {
	case KeepNewest:
		return KeepNewest, nil
	case KeepOldest:
		return KeepOldest, nil
	case KeepInRoot:
		return KeepInRoot, nil
	default:
		return "", fmt.Errorf("unknown dedup policy %q", value)
	}
}

// Group is one resolved duplicate set: a keeper and the copies proposed
// for removal.
type Group struct {
	Fingerprint string
	Keep        *catalog.Entry
	Drop        []*catalog.Entry
}

// WastedBytes is the space reclaimed if every Drop member is removed.
func (g *Group) WastedBytes() int64 {
	var total int64
	for _, entry := range g.Drop {
		total += entry.Size
	}
	return total
}

// Selector applies one retention policy across duplicate groups.
type Selector struct {
	policy        Policy
	preferredRoot string
	log           *slog.Logger
}

func New(policy Policy, preferredRoot string, logger *slog.Logger) *Selector {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Selector{
		policy:        policy,
		preferredRoot: preferredRoot,
		log:           logging.WithComponent(logger, "dedup"),
	}
}

// Plan resolves raw fingerprint groups into keep/drop proposals. Groups
// with fewer than two members are skipped. The same input always yields
// the same output: modification-time comparisons fall back to the lowest
// id when timestamps are equal.
func (s *Selector) Plan(groups [][]*catalog.Entry) []Group {
	var resolved []Group
	for _, members := range groups {
		if len(members) < 2 {
			continue
		}
		keeper := s.pick(members)
		group := Group{
			Fingerprint: keeper.Fingerprint,
			Keep:        keeper,
		}
		for _, entry := range members {
			if entry.ID != keeper.ID {
				group.Drop = append(group.Drop, entry)
			}
		}
		sort.Slice(group.Drop, func(i, j int) bool { return group.Drop[i].ID < group.Drop[j].ID })
		s.log.Debug("duplicate group resolved",
			logging.String("fingerprint", group.Fingerprint),
			logging.String("keep", keeper.Path),
			logging.Int("drop", len(group.Drop)),
		)
		resolved = append(resolved, group)
	}
	return resolved
}

func (s *Selector) pick(members []*catalog.Entry) *catalog.Entry {
	pool := members
	if s.policy == KeepInRoot {
		var inRoot []*catalog.Entry
		for _, entry := range members {
			if entry.SourceRoot == s.preferredRoot {
				inRoot = append(inRoot, entry)
			}
		}
		if len(inRoot) > 0 {
			pool = inRoot
		}
	}

	keeper := pool[0]
	for _, entry := range pool[1:] {
		if s.beats(entry, keeper) {
			keeper = entry
		}
	}
	return keeper
}

// beats reports whether a should be kept in preference to b.
func (s *Selector) beats(a, b *catalog.Entry) bool {
	switch s.policy {
	case KeepOldest:
		if !a.ModTime.Equal(b.ModTime) {
			return a.ModTime.Before(b.ModTime)
		}
	default:
		// KeepNewest, and the KeepInRoot fallback within the pool.
		if !a.ModTime.Equal(b.ModTime) {
			return a.ModTime.After(b.ModTime)
		}
	}
	return a.ID < b.ID
}
