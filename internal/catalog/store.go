package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"reelsync/internal/config"
)

// ErrCommit marks a failed transactional commit of a reconciliation plan.
// The plan is rolled back in full; callers retry the whole run.
var ErrCommit = errors.New("catalog commit failed")

// Store manages catalog persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the catalog database and applies
// migrations.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.DatabasePath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// InsertEntry persists a new entry and returns it with its assigned id.
func (s *Store) InsertEntry(ctx context.Context, entry *Entry) (*Entry, error) {
	if entry == nil {
		return nil, errors.New("entry is nil")
	}
	if strings.TrimSpace(entry.Path) == "" {
		return nil, errors.New("entry path is required")
	}
	status := entry.Status
	if status == "" {
		status = StatusOnline
	}
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO entries (
            path, size, mtime, fingerprint, status, source_root,
            title, stars, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.Path,
		entry.Size,
		nullableTime(entry.ModTime),
		nullableString(entry.Fingerprint),
		status,
		nullableString(entry.SourceRoot),
		nullableString(entry.Title),
		entry.Stars,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert entry: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetEntry(ctx, id)
}

// GetEntry fetches an entry by identifier. Returns nil when absent.
func (s *Store) GetEntry(ctx context.Context, id int64) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM entries WHERE id = ?`, id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return entry, nil
}

// EntryByPath returns the online entry at path, or nil.
func (s *Store) EntryByPath(ctx context.Context, path string) (*Entry, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+entryColumns+` FROM entries WHERE path = ? AND status = ? LIMIT 1`,
		path, StatusOnline,
	)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("entry by path: %w", err)
	}
	return entry, nil
}

// EntriesByFingerprint returns every entry sharing a fingerprint, ordered by
// id. Used both for move detection and duplicate grouping.
func (s *Store) EntriesByFingerprint(ctx context.Context, fingerprint string) ([]*Entry, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+entryColumns+` FROM entries WHERE fingerprint = ? ORDER BY id`,
		fingerprint,
	)
	if err != nil {
		return nil, fmt.Errorf("query by fingerprint: %w", err)
	}
	defer rows.Close()
	return collectEntries(rows)
}

// OnlineSnapshot returns all online entries discovered under the given
// roots, keyed by path. An empty root list yields an empty snapshot.
func (s *Store) OnlineSnapshot(ctx context.Context, rootPaths []string) (map[string]*Entry, error) {
	return s.snapshotByStatus(ctx, StatusOnline, rootPaths)
}

// OfflineSnapshot is the offline counterpart of OnlineSnapshot. The
// reconciler uses it to revive entries whose path shows up again.
func (s *Store) OfflineSnapshot(ctx context.Context, rootPaths []string) (map[string]*Entry, error) {
	return s.snapshotByStatus(ctx, StatusOffline, rootPaths)
}

func (s *Store) snapshotByStatus(ctx context.Context, status Status, rootPaths []string) (map[string]*Entry, error) {
	if len(rootPaths) == 0 {
		return map[string]*Entry{}, nil
	}

	placeholders := makePlaceholders(len(rootPaths))
	args := make([]any, 0, len(rootPaths)+1)
	args = append(args, status)
	for _, root := range rootPaths {
		args = append(args, root)
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+entryColumns+` FROM entries WHERE status = ? AND source_root IN (`+placeholders+`) ORDER BY id`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}
	defer rows.Close()

	entries, err := collectEntries(rows)
	if err != nil {
		return nil, err
	}
	snapshot := make(map[string]*Entry, len(entries))
	for _, entry := range entries {
		// Offline rows may share a path; the lowest id wins.
		if _, ok := snapshot[entry.Path]; !ok {
			snapshot[entry.Path] = entry
		}
	}
	return snapshot, nil
}

// OnlineDuplicates returns groups of two or more online entries sharing a
// non-empty fingerprint. Groups and members are ordered deterministically
// (fingerprint, then id). Offline entries never appear.
func (s *Store) OnlineDuplicates(ctx context.Context) ([][]*Entry, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+entryColumns+` FROM entries
         WHERE status = ? AND fingerprint IS NOT NULL AND fingerprint != ''
           AND fingerprint IN (
               SELECT fingerprint FROM entries
               WHERE status = ? AND fingerprint IS NOT NULL AND fingerprint != ''
               GROUP BY fingerprint HAVING COUNT(1) > 1
           )
         ORDER BY fingerprint, id`,
		StatusOnline, StatusOnline,
	)
	if err != nil {
		return nil, fmt.Errorf("query duplicates: %w", err)
	}
	defer rows.Close()

	entries, err := collectEntries(rows)
	if err != nil {
		return nil, err
	}

	var groups [][]*Entry
	var current []*Entry
	for _, entry := range entries {
		if len(current) > 0 && current[0].Fingerprint != entry.Fingerprint {
			groups = append(groups, current)
			current = nil
		}
		current = append(current, entry)
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}
	return groups, nil
}

// MissingFingerprints returns online entries without a fingerprint, ordered
// by id.
func (s *Store) MissingFingerprints(ctx context.Context) ([]*Entry, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+entryColumns+` FROM entries
         WHERE status = ? AND (fingerprint IS NULL OR fingerprint = '') ORDER BY id`,
		StatusOnline,
	)
	if err != nil {
		return nil, fmt.Errorf("query missing fingerprints: %w", err)
	}
	defer rows.Close()
	return collectEntries(rows)
}

// RemoveEntry deletes an entry row by identifier.
func (s *Store) RemoveEntry(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// Summarize aggregates catalog counts for status output.
func (s *Store) Summarize(ctx context.Context) (Summary, error) {
	var summary Summary

	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM entries GROUP BY status`)
	if err != nil {
		return summary, fmt.Errorf("summarize entries: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return summary, err
		}
		switch status {
		case StatusOnline:
			summary.Online = count
		case StatusOffline:
			summary.Offline = count
		}
	}
	if err := rows.Err(); err != nil {
		return summary, err
	}

	row := s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(1) FROM entries WHERE status = ? AND (fingerprint IS NULL OR fingerprint = '')`,
		StatusOnline,
	)
	if err := row.Scan(&summary.MissingFingerprint); err != nil {
		return summary, err
	}

	row = s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM roots WHERE active = 1`)
	if err := row.Scan(&summary.ActiveRoots); err != nil {
		return summary, err
	}
	row = s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM roots WHERE active = 0`)
	if err := row.Scan(&summary.InactiveRoots); err != nil {
		return summary, err
	}

	return summary, nil
}

const entryColumns = "id, path, size, mtime, fingerprint, status, source_root, title, stars, created_at, updated_at"

func scanEntry(scanner interface{ Scan(dest ...any) error }) (*Entry, error) {
	var (
		id          int64
		path        string
		size        sql.NullInt64
		mtimeRaw    sql.NullString
		fingerprint sql.NullString
		statusStr   string
		sourceRoot  sql.NullString
		title       sql.NullString
		stars       sql.NullInt64
		createdRaw  sql.NullString
		updatedRaw  sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&path,
		&size,
		&mtimeRaw,
		&fingerprint,
		&statusStr,
		&sourceRoot,
		&title,
		&stars,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	entry := &Entry{
		ID:          id,
		Path:        path,
		Size:        size.Int64,
		Fingerprint: fingerprint.String,
		Status:      Status(statusStr),
		SourceRoot:  sourceRoot.String,
		Title:       title.String,
		Stars:       int(stars.Int64),
	}
	if mtimeRaw.Valid {
		if mtime, err := parseTimeString(mtimeRaw.String); err == nil {
			entry.ModTime = mtime
		}
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		entry.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		entry.UpdatedAt = updated
	}
	return entry, nil
}

func collectEntries(rows *sql.Rows) ([]*Entry, error) {
	var entries []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value time.Time) any {
	if value.IsZero() {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
