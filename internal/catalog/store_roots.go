package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// AddRoot registers a watched directory. Re-adding a known root reactivates
// it and refreshes the label instead of creating a duplicate row.
func (s *Store) AddRoot(ctx context.Context, path, label string) (*Root, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("root path is required")
	}
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO roots (path, label, active, created_at) VALUES (?, ?, 1, ?)
         ON CONFLICT(path) DO UPDATE SET active = 1, label = excluded.label`,
		path,
		nullableString(label),
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("add root: %w", err)
	}
	return s.RootByPath(ctx, path)
}

// RootByPath fetches a root by path. Returns nil when absent.
func (s *Store) RootByPath(ctx context.Context, path string) (*Root, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+rootColumns+` FROM roots WHERE path = ?`, path)
	root, err := scanRoot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get root: %w", err)
	}
	return root, nil
}

// Roots returns every watched root, active or not, ordered by path.
func (s *Store) Roots(ctx context.Context) ([]*Root, error) {
	return s.queryRoots(ctx, `SELECT `+rootColumns+` FROM roots ORDER BY path`)
}

// ActiveRoots returns the roots reconciliation scans, ordered by path.
func (s *Store) ActiveRoots(ctx context.Context) ([]*Root, error) {
	return s.queryRoots(ctx, `SELECT `+rootColumns+` FROM roots WHERE active = 1 ORDER BY path`)
}

// SetRootActive toggles a root's active flag. Deactivating keeps the row and
// its entries; the root simply stops being scanned.
func (s *Store) SetRootActive(ctx context.Context, path string, active bool) (bool, error) {
	flag := 0
	if active {
		flag = 1
	}
	res, err := s.db.ExecContext(ctx, `UPDATE roots SET active = ? WHERE path = ?`, flag, path)
	if err != nil {
		return false, fmt.Errorf("set root active: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

func (s *Store) queryRoots(ctx context.Context, query string) ([]*Root, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query roots: %w", err)
	}
	defer rows.Close()

	var roots []*Root
	for rows.Next() {
		root, err := scanRoot(rows)
		if err != nil {
			return nil, err
		}
		roots = append(roots, root)
	}
	return roots, rows.Err()
}

const rootColumns = "id, path, label, active, created_at"

func scanRoot(scanner interface{ Scan(dest ...any) error }) (*Root, error) {
	var (
		id         int64
		path       string
		label      sql.NullString
		active     sql.NullInt64
		createdRaw sql.NullString
	)
	if err := scanner.Scan(&id, &path, &label, &active, &createdRaw); err != nil {
		return nil, err
	}

	root := &Root{
		ID:     id,
		Path:   path,
		Label:  label.String,
		Active: active.Int64 != 0,
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		root.CreatedAt = created
	}
	return root, nil
}
