// Package store persists saved searches and the activity log.
package store

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/property-intel/internal/activity"
	"github.com/sells-group/property-intel/internal/db"
	"github.com/sells-group/property-intel/internal/model"
	"github.com/sells-group/property-intel/internal/resilience"
	"github.com/sells-group/property-intel/internal/savedsearch"
)

// Store is the persistence interface shared by every driver.
type Store interface {
	savedsearch.Repository
	activity.Repository

	// ImportSavedSearches appends searches whose ids are not stored yet and
	// reports how many were added.
	ImportSavedSearches(ctx context.Context, searches []savedsearch.SavedSearch) (int, error)

	// ImportActivity bulk-appends entries. Ids must be new.
	ImportActivity(ctx context.Context, entries []model.ActivityEntry) (int, error)

	Migrate(ctx context.Context) error
	Close() error
}

// Drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config selects and configures a driver.
type Config struct {
	Driver string        `mapstructure:"driver"`
	DSN    string        `mapstructure:"dsn"`
	Pool   db.PoolConfig `mapstructure:"pool"`
}

// Open connects to the configured driver and migrates its schema.
func Open(ctx context.Context, cfg Config, retry resilience.RetryConfig) (Store, error) {
	var (
		st  Store
		err error
	)
	switch strings.ToLower(cfg.Driver) {
	case "", DriverMemory:
		st = NewMemory()
	case DriverSQLite:
		if cfg.DSN == "" {
			return nil, eris.New("store: sqlite requires store.dsn")
		}
		st, err = resilience.DoVal(ctx, retry, func(context.Context) (*SQLiteStore, error) {
			return NewSQLite(cfg.DSN)
		})
	case DriverPostgres:
		if cfg.DSN == "" {
			return nil, eris.New("store: postgres requires store.dsn")
		}
		st, err = NewPostgres(ctx, cfg.DSN, cfg.Pool, retry)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	zap.L().Info("store: opened", zap.String("driver", cfg.Driver))
	return st, nil
}

// SeedIfEmpty imports the given searches and activity when the store holds
// neither, so a fresh deployment has something to show.
func SeedIfEmpty(ctx context.Context, st Store, searches []savedsearch.SavedSearch, entries []model.ActivityEntry) error {
	existing, err := st.ListSavedSearches(ctx)
	if err != nil {
		return eris.Wrap(err, "store: seed")
	}
	log, err := st.ListActivity(ctx)
	if err != nil {
		return eris.Wrap(err, "store: seed")
	}
	if len(existing) > 0 || len(log) > 0 {
		return nil
	}

	n, err := st.ImportSavedSearches(ctx, searches)
	if err != nil {
		return eris.Wrap(err, "store: seed saved searches")
	}
	m, err := st.ImportActivity(ctx, entries)
	if err != nil {
		return eris.Wrap(err, "store: seed activity")
	}
	zap.L().Info("store: seeded empty store",
		zap.Int("saved_searches", n),
		zap.Int("activity", m),
	)
	return nil
}

// tsLayout is fixed width so stored text timestamps sort chronologically.
const tsLayout = "2006-01-02T15:04:05.000000000Z"

func formatTS(t time.Time) string { return t.UTC().Format(tsLayout) }

func parseTS(s string) (time.Time, error) {
	t, err := time.Parse(tsLayout, s)
	if err != nil {
		return time.Time{}, eris.Wrapf(err, "store: parse timestamp %q", s)
	}
	return t, nil
}

// MemoryStore keeps everything in process memory.
type MemoryStore struct {
	*savedsearch.MemoryRepository
	*activity.MemoryLog
}

// NewMemory returns an empty MemoryStore.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		MemoryRepository: savedsearch.NewMemoryRepository(),
		MemoryLog:        activity.NewMemoryLog(),
	}
}

// ImportSavedSearches implements Store.
func (s *MemoryStore) ImportSavedSearches(ctx context.Context, searches []savedsearch.SavedSearch) (int, error) {
	n := 0
	for _, ss := range searches {
		existing, _ := s.GetSavedSearch(ctx, ss.ID)
		if existing != nil {
			continue
		}
		_ = s.AppendSavedSearch(ctx, ss)
		n++
	}
	return n, nil
}

// ImportActivity implements Store.
func (s *MemoryStore) ImportActivity(ctx context.Context, entries []model.ActivityEntry) (int, error) {
	for _, e := range entries {
		_ = s.RecordActivity(ctx, e)
	}
	return len(entries), nil
}

// Migrate implements Store.
func (s *MemoryStore) Migrate(context.Context) error { return nil }

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }
