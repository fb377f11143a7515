package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/property-intel/internal/activity"
	"github.com/sells-group/property-intel/internal/config"
	"github.com/sells-group/property-intel/internal/db"
	"github.com/sells-group/property-intel/internal/filter"
	"github.com/sells-group/property-intel/internal/records"
	"github.com/sells-group/property-intel/internal/resilience"
	"github.com/sells-group/property-intel/internal/savedsearch"
	"github.com/sells-group/property-intel/internal/store"
)

// appEnv holds everything the commands share: the record source, the
// persistent store and the saved-search manager on top of it.
type appEnv struct {
	Records  *records.Memory
	Store    store.Store
	Searches *savedsearch.Manager
	Recorder activity.Recorder
	Dataset  records.Dataset
	User     string
	Sort     filter.SortKey
}

// Close releases the store.
func (e *appEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

func storeConfig(c config.StoreConfig) store.Config {
	return store.Config{
		Driver: c.Driver,
		DSN:    c.DSN,
		Pool:   db.PoolConfig{MaxConns: c.MaxConns, MinConns: c.MinConns},
	}
}

// initEnv opens the store, seeds it on first use and loads records.
// Callers should defer env.Close().
func initEnv(ctx context.Context, c *config.Config) (*appEnv, error) {
	retry := resilience.FromSettings(c.Retry.MaxAttempts, c.Retry.InitialBackoffMs)
	retry.OnRetry = resilience.LogRetry("store: open")

	st, err := store.Open(ctx, storeConfig(c.Store), retry)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}

	ds := records.Fixtures()
	if err := store.SeedIfEmpty(ctx, st, ds.SavedSearches, ds.Activity); err != nil {
		_ = st.Close()
		return nil, err
	}

	src, err := records.Open(ctx, records.Options{
		Paths:    c.Records.Paths,
		Generate: c.Records.Generate,
		Seed:     c.Records.Seed,
	})
	if err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "load records")
	}

	sort, err := filter.ParseSortKey(c.Search.DefaultSort)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	rec := activity.Attribute(st, ds.Users)
	return &appEnv{
		Records:  src,
		Store:    st,
		Searches: savedsearch.NewManager(st, savedsearch.WithRecorder(rec)),
		Recorder: rec,
		Dataset:  ds,
		User:     c.Session.UserID,
		Sort:     sort,
	}, nil
}
