package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/property-intel/internal/filter"
	"github.com/sells-group/property-intel/internal/model"
	"github.com/sells-group/property-intel/internal/resilience"
	"github.com/sells-group/property-intel/internal/savedsearch"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func sampleSearch(id, name string, at time.Time) savedsearch.SavedSearch {
	return savedsearch.SavedSearch{
		ID:        id,
		Name:      name,
		CreatedAt: at,
		CreatedBy: "user-001",
		Filters: filter.Predicate{
			Categories: []model.Category{model.CategoryCommercial, model.CategoryMixedUse},
			ValueMin:   filter.Ptr(int64(10000000)),
			City:       filter.Ptr("San Francisco"),
		},
	}
}

var (
	t0 = time.Date(2025, 3, 27, 9, 12, 14, 0, time.UTC)
	t1 = time.Date(2025, 4, 1, 15, 30, 22, 500, time.UTC)
)

// drivers runs fn against every store that does not need a server.
func drivers(t *testing.T, fn func(t *testing.T, st Store)) {
	t.Run("memory", func(t *testing.T) { fn(t, NewMemory()) })
	t.Run("sqlite", func(t *testing.T) { fn(t, newTestSQLiteStore(t)) })
}

func TestStore_SavedSearchRoundTrip(t *testing.T) {
	drivers(t, func(t *testing.T, st Store) {
		ctx := context.Background()
		want := sampleSearch("search-a", "High Value SF", t1)
		require.NoError(t, st.AppendSavedSearch(ctx, want))

		got, err := st.GetSavedSearch(ctx, "search-a")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, want.Name, got.Name)
		assert.Equal(t, want.CreatedBy, got.CreatedBy)
		assert.True(t, want.CreatedAt.Equal(got.CreatedAt))
		assert.True(t, want.Filters.Equal(got.Filters))
	})
}

func TestStore_GetMissing(t *testing.T) {
	drivers(t, func(t *testing.T, st Store) {
		got, err := st.GetSavedSearch(context.Background(), "search-none")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestStore_ListOrder(t *testing.T) {
	drivers(t, func(t *testing.T, st Store) {
		ctx := context.Background()
		require.NoError(t, st.AppendSavedSearch(ctx, sampleSearch("late", "late", t1)))
		require.NoError(t, st.AppendSavedSearch(ctx, sampleSearch("early", "early", t0)))
		require.NoError(t, st.AppendSavedSearch(ctx, sampleSearch("tie", "tie", t1)))

		list, err := st.ListSavedSearches(ctx)
		require.NoError(t, err)
		var got []string
		for _, s := range list {
			got = append(got, s.ID)
		}
		assert.Equal(t, []string{"early", "late", "tie"}, got)
	})
}

func TestStore_ListEmpty(t *testing.T) {
	drivers(t, func(t *testing.T, st Store) {
		list, err := st.ListSavedSearches(context.Background())
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}

func TestStore_DeleteIdempotent(t *testing.T) {
	drivers(t, func(t *testing.T, st Store) {
		ctx := context.Background()
		require.NoError(t, st.AppendSavedSearch(ctx, sampleSearch("gone", "gone", t0)))
		require.NoError(t, st.DeleteSavedSearch(ctx, "gone"))
		require.NoError(t, st.DeleteSavedSearch(ctx, "gone"))

		got, err := st.GetSavedSearch(ctx, "gone")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestStore_ImportSkipsExisting(t *testing.T) {
	drivers(t, func(t *testing.T, st Store) {
		ctx := context.Background()
		require.NoError(t, st.AppendSavedSearch(ctx, sampleSearch("a", "original", t0)))

		n, err := st.ImportSavedSearches(ctx, []savedsearch.SavedSearch{
			sampleSearch("a", "replacement", t0),
			sampleSearch("b", "new", t1),
		})
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		a, err := st.GetSavedSearch(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, "original", a.Name)
	})
}

func TestStore_Activity(t *testing.T) {
	drivers(t, func(t *testing.T, st Store) {
		ctx := context.Background()
		entries := []model.ActivityEntry{
			{ID: "activity-1", UserID: "user-001", UserName: "John Doe", UserRole: "Admin", Action: model.ActionViewedProperty, Details: "Viewed property details for 123 Main Street", Timestamp: t0, IP: "192.168.1.101"},
			{ID: "activity-2", UserID: "user-002", UserName: "Jane Smith", UserRole: "Analyst", Action: model.ActionExportedData, Timestamp: t1},
		}
		n, err := st.ImportActivity(ctx, entries)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		require.NoError(t, st.RecordActivity(ctx, model.ActivityEntry{ID: "activity-3", UserID: "user-001", Action: model.ActionCreatedSearch, Timestamp: t1}))

		got, err := st.ListActivity(ctx)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "activity-1", got[0].ID)
		assert.Equal(t, "192.168.1.101", got[0].IP)
		assert.True(t, got[1].Timestamp.Equal(t1))
		assert.Equal(t, "activity-3", got[2].ID)
	})
}

func TestStore_WorksWithManager(t *testing.T) {
	drivers(t, func(t *testing.T, st Store) {
		ctx := context.Background()
		m := savedsearch.NewManager(st, savedsearch.WithRecorder(st))

		s, err := m.Save(ctx, "Miami", filter.Predicate{City: filter.Ptr("Miami")}, "user-003")
		require.NoError(t, err)

		pred, err := m.Load(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, "Miami", *pred.City)

		require.NoError(t, m.Delete(ctx, s.ID, "user-003"))
		_, err = m.Load(ctx, s.ID)
		assert.True(t, model.IsNotFound(err))

		log, err := st.ListActivity(ctx)
		require.NoError(t, err)
		require.Len(t, log, 2)
		assert.Equal(t, model.ActionCreatedSearch, log[0].Action)
		assert.Equal(t, model.ActionDeletedSearch, log[1].Action)
	})
}

func TestSeedIfEmpty(t *testing.T) {
	ctx := context.Background()
	st := NewMemory()
	searches := []savedsearch.SavedSearch{sampleSearch("search-001", "seed", t0)}
	entries := []model.ActivityEntry{{ID: "activity-001", UserID: "user-001", Action: model.ActionAddedUser, Timestamp: t0}}

	require.NoError(t, SeedIfEmpty(ctx, st, searches, entries))
	list, _ := st.ListSavedSearches(ctx)
	assert.Len(t, list, 1)

	// A second seed is a no-op once data exists.
	require.NoError(t, SeedIfEmpty(ctx, st, searches, entries))
	log, _ := st.ListActivity(ctx)
	assert.Len(t, log, 1)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	retry := resilience.RetryConfig{MaxAttempts: 1}

	st, err := Open(ctx, Config{Driver: "memory"}, retry)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, st)

	st, err = Open(ctx, Config{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "open.db")}, retry)
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, st)
	require.NoError(t, st.Close())

	_, err = Open(ctx, Config{Driver: "sqlite"}, retry)
	assert.ErrorContains(t, err, "requires store.dsn")

	_, err = Open(ctx, Config{Driver: "postgres"}, retry)
	assert.ErrorContains(t, err, "requires store.dsn")

	_, err = Open(ctx, Config{Driver: "oracle"}, retry)
	assert.ErrorContains(t, err, "unknown driver")
}

func TestTimestampLayoutSortsChronologically(t *testing.T) {
	a := formatTS(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	b := formatTS(time.Date(2025, 1, 1, 0, 0, 0, 500, time.UTC))
	assert.Less(t, a, b)

	back, err := parseTS(b)
	require.NoError(t, err)
	assert.Equal(t, 500, back.Nanosecond())
}
