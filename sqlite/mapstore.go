package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/wikimap"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ wikimap.MapStore = (*MapStore)(nil)

// Run describes one saved version map.
type Run struct {
	ID        string
	CreatedAt time.Time
	Versions  int
	Links     int
}

// MapStore implements wikimap.MapStore using SQLite. Each save is kept as
// a run; LoadMap returns the most recent one.
type MapStore struct {
	db *DB

	// Now returns the timestamp recorded for new runs.
	Now func() time.Time
}

// NewMapStore creates a new MapStore.
func NewMapStore(db *DB) *MapStore {
	return &MapStore{db: db, Now: time.Now}
}

// SaveMap stores m as a new run in a single transaction. Links keep their
// position within the version.
func (s *MapStore) SaveMap(ctx context.Context, m wikimap.VersionMap) error {
	run := Run{
		ID:        uuid.New().String(),
		CreatedAt: s.Now().UTC(),
		Versions:  len(m),
		Links:     m.Len(),
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, versions, links)
		VALUES (?, ?, ?, ?)
	`, run.ID, run.CreatedAt.Format(time.RFC3339), run.Versions, run.Links); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO links (run_id, version, position, url, url_hash, title, context)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for version, links := range m {
		for i, link := range links {
			if !wikimap.IsValidLinkURL(link.URL) {
				return wikimap.Errorf(wikimap.EINVALID, "invalid link URL %q in version %s", link.URL, version)
			}
			if _, err := stmt.ExecContext(ctx, run.ID, string(version), i, link.URL, hashURL(link.URL), link.Title, link.Context); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// LoadMap returns the map of the most recent run.
// Returns ENOTFOUND if no map has been saved.
func (s *MapStore) LoadMap(ctx context.Context) (wikimap.VersionMap, error) {
	var runID string
	var versions int
	err := s.db.QueryRowContext(ctx, `
		SELECT id, versions FROM runs ORDER BY rowid DESC LIMIT 1
	`).Scan(&runID, &versions)
	if err == sql.ErrNoRows {
		return nil, wikimap.Errorf(wikimap.ENOTFOUND, "no saved map")
	}
	if err != nil {
		return nil, err
	}
	return s.loadRun(ctx, runID, versions)
}

func (s *MapStore) loadRun(ctx context.Context, runID string, versions int) (wikimap.VersionMap, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT version, url, title, context
		FROM links
		WHERE run_id = ?
		ORDER BY version, position
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	m := make(wikimap.VersionMap, versions)
	for rows.Next() {
		var version string
		var link wikimap.Link
		if err := rows.Scan(&version, &link.URL, &link.Title, &link.Context); err != nil {
			return nil, err
		}
		v := wikimap.VersionID(version)
		m[v] = append(m[v], link)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

// FindOwner returns the version that owns url in the most recent run.
// Returns ENOTFOUND if the URL was not recorded.
func (s *MapStore) FindOwner(ctx context.Context, url string) (wikimap.VersionID, error) {
	var version string
	err := s.db.QueryRowContext(ctx, `
		SELECT l.version
		FROM links l
		WHERE l.url_hash = ? AND l.url = ?
		  AND l.run_id = (SELECT id FROM runs ORDER BY rowid DESC LIMIT 1)
		LIMIT 1
	`, hashURL(url), url).Scan(&version)
	if err == sql.ErrNoRows {
		return "", wikimap.Errorf(wikimap.ENOTFOUND, "url not mapped: %s", url)
	}
	if err != nil {
		return "", err
	}
	return wikimap.VersionID(version), nil
}

// Runs lists saved runs, newest first.
func (s *MapStore) Runs(ctx context.Context, limit, offset int) ([]*Run, error) {
	var query strings.Builder
	var args []any
	query.WriteString(`SELECT id, created_at, versions, links FROM runs ORDER BY rowid DESC`)
	if limit <= 0 && offset > 0 {
		query.WriteString(" LIMIT -1")
	}
	appendPagination(&query, &args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var run Run
		var createdAt string
		if err := rows.Scan(&run.ID, &createdAt, &run.Versions, &run.Links); err != nil {
			return nil, err
		}
		if run.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
			return nil, err
		}
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}

// PruneRuns deletes all but the newest keep runs and returns how many
// were removed. Their links are removed by cascade.
func (s *MapStore) PruneRuns(ctx context.Context, keep int) (int, error) {
	if keep < 0 {
		return 0, wikimap.Errorf(wikimap.EINVALID, "keep must be non-negative")
	}
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM runs
		WHERE id NOT IN (SELECT id FROM runs ORDER BY rowid DESC LIMIT ?)
	`, keep)
	if err != nil {
		return 0, err
	}
	n, err := result.RowsAffected()
	return int(n), err
}

func hashURL(url string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(url))
}
