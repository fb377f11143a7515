package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/property-intel/internal/filter"
	"github.com/sells-group/property-intel/internal/model"
	"github.com/sells-group/property-intel/internal/savedsearch"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS saved_searches (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	id         TEXT NOT NULL UNIQUE,
	name       TEXT NOT NULL,
	created_at TEXT NOT NULL,
	created_by TEXT NOT NULL,
	filters    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS activity_log (
	seq       INTEGER PRIMARY KEY AUTOINCREMENT,
	id        TEXT NOT NULL UNIQUE,
	user_id   TEXT NOT NULL,
	user_name TEXT NOT NULL DEFAULT '',
	user_role TEXT NOT NULL DEFAULT '',
	action    TEXT NOT NULL,
	details   TEXT NOT NULL DEFAULT '',
	ts        TEXT NOT NULL,
	ip        TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_saved_searches_created ON saved_searches(created_at, seq);
CREATE INDEX IF NOT EXISTS idx_activity_log_ts ON activity_log(ts);
`

// Migrate implements Store.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertSavedSearch(ctx context.Context, ex execer, verb string, ss savedsearch.SavedSearch) (int64, error) {
	filters, err := json.Marshal(ss.Filters)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: marshal filters")
	}
	res, err := ex.ExecContext(ctx,
		verb+` INTO saved_searches (id, name, created_at, created_by, filters) VALUES (?, ?, ?, ?, ?)`,
		ss.ID, ss.Name, formatTS(ss.CreatedAt), ss.CreatedBy, string(filters),
	)
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: insert saved search %s", ss.ID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, eris.Wrap(err, "rows affected")
	}
	return n, nil
}

// AppendSavedSearch implements savedsearch.Repository.
func (s *SQLiteStore) AppendSavedSearch(ctx context.Context, ss savedsearch.SavedSearch) error {
	_, err := insertSavedSearch(ctx, s.db, "INSERT", ss)
	return err
}

// ListSavedSearches implements savedsearch.Repository.
func (s *SQLiteStore) ListSavedSearches(ctx context.Context) ([]savedsearch.SavedSearch, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_at, created_by, filters FROM saved_searches ORDER BY created_at, seq`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list saved searches")
	}
	defer rows.Close()

	out := []savedsearch.SavedSearch{}
	for rows.Next() {
		ss, err := scanSavedSearch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *ss)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate saved searches")
}

// GetSavedSearch implements savedsearch.Repository.
func (s *SQLiteStore) GetSavedSearch(ctx context.Context, id string) (*savedsearch.SavedSearch, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, created_by, filters FROM saved_searches WHERE id = ?`, id,
	)
	ss, err := scanSavedSearch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return ss, err
}

// DeleteSavedSearch implements savedsearch.Repository.
func (s *SQLiteStore) DeleteSavedSearch(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM saved_searches WHERE id = ?`, id)
	return eris.Wrapf(err, "sqlite: delete saved search %s", id)
}

// ImportSavedSearches implements Store.
func (s *SQLiteStore) ImportSavedSearches(ctx context.Context, searches []savedsearch.SavedSearch) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback() //nolint:errcheck

	var total int64
	for _, ss := range searches {
		n, err := insertSavedSearch(ctx, tx, "INSERT OR IGNORE", ss)
		if err != nil {
			return 0, err
		}
		total += n
	}
	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit")
	}
	return int(total), nil
}

// RecordActivity implements activity.Recorder.
func (s *SQLiteStore) RecordActivity(ctx context.Context, e model.ActivityEntry) error {
	return insertActivity(ctx, s.db, e)
}

func insertActivity(ctx context.Context, ex execer, e model.ActivityEntry) error {
	_, err := ex.ExecContext(ctx,
		`INSERT INTO activity_log (id, user_id, user_name, user_role, action, details, ts, ip)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.UserName, e.UserRole, e.Action, e.Details, formatTS(e.Timestamp), e.IP,
	)
	return eris.Wrapf(err, "sqlite: insert activity %s", e.ID)
}

// ImportActivity implements Store.
func (s *SQLiteStore) ImportActivity(ctx context.Context, entries []model.ActivityEntry) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback() //nolint:errcheck

	for _, e := range entries {
		if err := insertActivity(ctx, tx, e); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit")
	}
	return len(entries), nil
}

// ListActivity implements activity.Repository.
func (s *SQLiteStore) ListActivity(ctx context.Context) ([]model.ActivityEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, user_name, user_role, action, details, ts, ip FROM activity_log ORDER BY seq`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list activity")
	}
	defer rows.Close()

	out := []model.ActivityEntry{}
	for rows.Next() {
		var e model.ActivityEntry
		var ts string
		if err := rows.Scan(&e.ID, &e.UserID, &e.UserName, &e.UserRole, &e.Action, &e.Details, &ts, &e.IP); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan activity")
		}
		if e.Timestamp, err = parseTS(ts); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate activity")
}

type scannable interface {
	Scan(dest ...any) error
}

func scanSavedSearch(row scannable) (*savedsearch.SavedSearch, error) {
	var ss savedsearch.SavedSearch
	var createdAt, filtersJSON string

	err := row.Scan(&ss.ID, &ss.Name, &createdAt, &ss.CreatedBy, &filtersJSON)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan saved search")
	}
	if ss.CreatedAt, err = parseTS(createdAt); err != nil {
		return nil, err
	}
	var f filter.Predicate
	if err := json.Unmarshal([]byte(filtersJSON), &f); err != nil {
		return nil, eris.Wrapf(err, "sqlite: unmarshal filters for %s", ss.ID)
	}
	ss.Filters = f
	return &ss, nil
}
