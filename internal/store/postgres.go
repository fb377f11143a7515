package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/sells-group/property-intel/internal/db"
	"github.com/sells-group/property-intel/internal/filter"
	"github.com/sells-group/property-intel/internal/model"
	"github.com/sells-group/property-intel/internal/resilience"
	"github.com/sells-group/property-intel/internal/savedsearch"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// NewPostgres connects to dsn, retrying transient connection failures.
func NewPostgres(ctx context.Context, dsn string, poolCfg db.PoolConfig, retry resilience.RetryConfig) (*PostgresStore, error) {
	pool, err := db.Open(ctx, dsn, poolCfg, retry)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS saved_searches (
	seq        BIGSERIAL PRIMARY KEY,
	id         TEXT NOT NULL UNIQUE,
	name       TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	created_by TEXT NOT NULL,
	filters    JSONB NOT NULL DEFAULT '{}'::jsonb
);

CREATE TABLE IF NOT EXISTS activity_log (
	seq       BIGSERIAL PRIMARY KEY,
	id        TEXT NOT NULL UNIQUE,
	user_id   TEXT NOT NULL,
	user_name TEXT NOT NULL DEFAULT '',
	user_role TEXT NOT NULL DEFAULT '',
	action    TEXT NOT NULL,
	details   TEXT NOT NULL DEFAULT '',
	ts        TIMESTAMPTZ NOT NULL,
	ip        TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_saved_searches_created ON saved_searches(created_at, seq);
CREATE INDEX IF NOT EXISTS idx_activity_log_ts ON activity_log(ts DESC);
`

// Migrate implements Store.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

// Close implements Store.
func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// Ping checks connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

const insertSavedSearchSQL = `INSERT INTO saved_searches (id, name, created_at, created_by, filters) VALUES ($1, $2, $3, $4, $5)`

// AppendSavedSearch implements savedsearch.Repository.
func (s *PostgresStore) AppendSavedSearch(ctx context.Context, ss savedsearch.SavedSearch) error {
	filters, err := json.Marshal(ss.Filters)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal filters")
	}
	_, err = s.pool.Exec(ctx, insertSavedSearchSQL, ss.ID, ss.Name, ss.CreatedAt.UTC(), ss.CreatedBy, filters)
	return eris.Wrapf(err, "postgres: insert saved search %s", ss.ID)
}

// ListSavedSearches implements savedsearch.Repository.
func (s *PostgresStore) ListSavedSearches(ctx context.Context) ([]savedsearch.SavedSearch, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, created_at, created_by, filters FROM saved_searches ORDER BY created_at, seq`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list saved searches")
	}
	defer rows.Close()

	out := []savedsearch.SavedSearch{}
	for rows.Next() {
		ss, err := scanPgSavedSearch(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan saved search")
		}
		out = append(out, *ss)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate saved searches")
}

// GetSavedSearch implements savedsearch.Repository.
func (s *PostgresStore) GetSavedSearch(ctx context.Context, id string) (*savedsearch.SavedSearch, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, name, created_at, created_by, filters FROM saved_searches WHERE id = $1`, id,
	)
	ss, err := scanPgSavedSearch(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get saved search %s", id)
	}
	return ss, nil
}

// DeleteSavedSearch implements savedsearch.Repository.
func (s *PostgresStore) DeleteSavedSearch(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM saved_searches WHERE id = $1`, id)
	return eris.Wrapf(err, "postgres: delete saved search %s", id)
}

// ImportSavedSearches implements Store in one transaction.
func (s *PostgresStore) ImportSavedSearches(ctx context.Context, searches []savedsearch.SavedSearch) (int, error) {
	var total int64
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		for _, ss := range searches {
			filters, err := json.Marshal(ss.Filters)
			if err != nil {
				return eris.Wrap(err, "postgres: marshal filters")
			}
			tag, err := tx.Exec(ctx, insertSavedSearchSQL+` ON CONFLICT (id) DO NOTHING`,
				ss.ID, ss.Name, ss.CreatedAt.UTC(), ss.CreatedBy, filters)
			if err != nil {
				return eris.Wrapf(err, "postgres: import saved search %s", ss.ID)
			}
			total += tag.RowsAffected()
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int(total), nil
}

var activityColumns = []string{"id", "user_id", "user_name", "user_role", "action", "details", "ts", "ip"}

// RecordActivity implements activity.Recorder.
func (s *PostgresStore) RecordActivity(ctx context.Context, e model.ActivityEntry) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO activity_log (id, user_id, user_name, user_role, action, details, ts, ip)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, e.UserID, e.UserName, e.UserRole, e.Action, e.Details, e.Timestamp.UTC(), e.IP,
	)
	return eris.Wrapf(err, "postgres: insert activity %s", e.ID)
}

// ImportActivity implements Store with COPY.
func (s *PostgresStore) ImportActivity(ctx context.Context, entries []model.ActivityEntry) (int, error) {
	rows := make([][]any, len(entries))
	for i, e := range entries {
		rows[i] = []any{e.ID, e.UserID, e.UserName, e.UserRole, e.Action, e.Details, e.Timestamp.UTC(), e.IP}
	}
	n, err := db.CopyFrom(ctx, s.pool, "activity_log", activityColumns, rows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: import activity")
	}
	return int(n), nil
}

// ListActivity implements activity.Repository.
func (s *PostgresStore) ListActivity(ctx context.Context) ([]model.ActivityEntry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, user_name, user_role, action, details, ts, ip FROM activity_log ORDER BY seq`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list activity")
	}
	defer rows.Close()

	out := []model.ActivityEntry{}
	for rows.Next() {
		var e model.ActivityEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.UserName, &e.UserRole, &e.Action, &e.Details, &e.Timestamp, &e.IP); err != nil {
			return nil, eris.Wrap(err, "postgres: scan activity")
		}
		e.Timestamp = e.Timestamp.UTC()
		out = append(out, e)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate activity")
}

func scanPgSavedSearch(row pgx.Row) (*savedsearch.SavedSearch, error) {
	var ss savedsearch.SavedSearch
	var filtersJSON []byte

	if err := row.Scan(&ss.ID, &ss.Name, &ss.CreatedAt, &ss.CreatedBy, &filtersJSON); err != nil {
		return nil, err
	}
	ss.CreatedAt = ss.CreatedAt.UTC()
	var f filter.Predicate
	if err := json.Unmarshal(filtersJSON, &f); err != nil {
		return nil, eris.Wrapf(err, "postgres: unmarshal filters for %s", ss.ID)
	}
	ss.Filters = f
	return &ss, nil
}
