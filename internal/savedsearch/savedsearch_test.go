package savedsearch

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/property-intel/internal/activity"
	"github.com/sells-group/property-intel/internal/filter"
	"github.com/sells-group/property-intel/internal/model"
)

var fixedNow = time.Date(2025, 4, 24, 15, 30, 0, 0, time.UTC)

func newTestManager(t *testing.T, opts ...Option) (*Manager, *MemoryRepository) {
	t.Helper()
	repo := NewMemoryRepository()
	n := 0
	base := []Option{
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("search-%03d", n)
		}),
	}
	return NewManager(repo, append(base, opts...)...), repo
}

func miamiCondos() filter.Predicate {
	return filter.Predicate{
		Categories: []model.Category{model.CategoryResidential},
		City:       filter.Ptr("Miami"),
		ValueMin:   filter.Ptr(int64(1_000_000)),
	}
}

func TestManager_SaveThenLoad(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	s, err := m.Save(ctx, "  Miami condos ", miamiCondos(), "user-001")
	require.NoError(t, err)
	assert.Equal(t, "search-001", s.ID)
	assert.Equal(t, "Miami condos", s.Name)
	assert.Equal(t, "user-001", s.CreatedBy)
	assert.Equal(t, fixedNow, s.CreatedAt)

	got, err := m.Load(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, miamiCondos().Equal(got))
}

func TestManager_SaveFreezesPredicate(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	pred := miamiCondos()
	s, err := m.Save(ctx, "frozen", pred, "user-001")
	require.NoError(t, err)

	*pred.City = "Austin"
	pred.Categories[0] = model.CategoryLand

	loaded, err := m.Load(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Miami", *loaded.City)
	assert.Equal(t, model.CategoryResidential, loaded.Categories[0])

	// Mutating what Load returned does not reach the stored copy either.
	*loaded.City = "Denver"
	again, err := m.Load(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Miami", *again.City)
}

func TestManager_SaveRejectsBlankName(t *testing.T) {
	ctx := context.Background()
	m, repo := newTestManager(t)

	for _, name := range []string{"", "   ", "\t\n"} {
		_, err := m.Save(ctx, name, miamiCondos(), "user-001")
		var ve *model.ValidationError
		require.ErrorAs(t, err, &ve, "name %q", name)
		assert.Equal(t, "name", ve.Field)
	}

	list, err := repo.ListSavedSearches(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestManager_DuplicateNamesAllowed(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	a, err := m.Save(ctx, "same", filter.Predicate{}, "user-001")
	require.NoError(t, err)
	b, err := m.Save(ctx, "same", filter.Predicate{}, "user-002")
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)

	list, err := m.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, a.ID, list[0].ID)
	assert.Equal(t, b.ID, list[1].ID)
}

func TestManager_RegeneratesCollidingID(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository(SavedSearch{ID: "search-dup", Name: "existing"})
	ids := []string{"search-dup", "search-dup", "search-new"}
	m := NewManager(repo,
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string {
			id := ids[0]
			ids = ids[1:]
			return id
		}),
	)

	s, err := m.Save(ctx, "fresh", filter.Predicate{}, "user-001")
	require.NoError(t, err)
	assert.Equal(t, "search-new", s.ID)
}

func TestManager_GivesUpOnPersistentCollision(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository(SavedSearch{ID: "search-dup"})
	m := NewManager(repo, WithIDGenerator(func() string { return "search-dup" }))

	_, err := m.Save(ctx, "never", filter.Predicate{}, "user-001")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unique id")
}

func TestManager_DefaultIDFormat(t *testing.T) {
	m := NewManager(NewMemoryRepository())
	s, err := m.Save(context.Background(), "defaults", filter.Predicate{}, "user-001")
	require.NoError(t, err)
	assert.Regexp(t, `^search-[0-9a-f-]{36}$`, s.ID)
	assert.Equal(t, time.UTC, s.CreatedAt.Location())
}

func TestManager_LoadUnknown(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.Load(context.Background(), "search-missing")
	var nf *model.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "search-missing", nf.ID)
	assert.True(t, model.IsNotFound(err))
}

func TestManager_DeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	s, err := m.Save(ctx, "temp", filter.Predicate{}, "user-001")
	require.NoError(t, err)

	require.NoError(t, m.Delete(ctx, s.ID, "user-001"))
	require.NoError(t, m.Delete(ctx, s.ID, "user-001"))
	require.NoError(t, m.Delete(ctx, "search-never-existed", "user-001"))

	_, err = m.Load(ctx, s.ID)
	assert.True(t, model.IsNotFound(err))

	list, err := m.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestManager_RecordsActivity(t *testing.T) {
	ctx := context.Background()
	log := activity.NewMemoryLog()
	m, _ := newTestManager(t, WithRecorder(log))

	s, err := m.Save(ctx, "Waterfront", filter.Predicate{}, "user-002")
	require.NoError(t, err)
	require.NoError(t, m.Delete(ctx, s.ID, "user-001"))
	require.NoError(t, m.Delete(ctx, s.ID, "user-001"))

	entries, err := log.ListActivity(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, model.ActionCreatedSearch, entries[0].Action)
	assert.Equal(t, "user-002", entries[0].UserID)
	assert.Contains(t, entries[0].Details, "Waterfront")

	assert.Equal(t, model.ActionDeletedSearch, entries[1].Action)
	assert.Equal(t, "user-001", entries[1].UserID)
}

type failingRecorder struct{}

func (failingRecorder) RecordActivity(context.Context, model.ActivityEntry) error {
	return errors.New("audit: unavailable")
}

func TestManager_RecorderFailureDoesNotFailSave(t *testing.T) {
	m, _ := newTestManager(t, WithRecorder(failingRecorder{}))

	s, err := m.Save(context.Background(), "still saved", filter.Predicate{}, "user-001")
	require.NoError(t, err)

	_, err = m.Load(context.Background(), s.ID)
	assert.NoError(t, err)
}

type brokenRepo struct{ MemoryRepository }

func (*brokenRepo) AppendSavedSearch(context.Context, SavedSearch) error {
	return errors.New("disk full")
}

func TestManager_WrapsRepositoryErrors(t *testing.T) {
	m := NewManager(&brokenRepo{})

	_, err := m.Save(context.Background(), "x", filter.Predicate{}, "user-001")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "savedsearch: append")
	assert.False(t, model.IsValidation(err))
}

func TestMemoryRepository_CopiesOnTheWayOut(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	require.NoError(t, repo.AppendSavedSearch(ctx, SavedSearch{ID: "a", Filters: miamiCondos()}))

	list, err := repo.ListSavedSearches(ctx)
	require.NoError(t, err)
	*list[0].Filters.City = "Changed"

	got, err := repo.GetSavedSearch(ctx, "a")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Miami", *got.Filters.City)

	missing, err := repo.GetSavedSearch(ctx, "b")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
