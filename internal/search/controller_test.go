package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/property-intel/internal/filter"
	"github.com/sells-group/property-intel/internal/model"
	"github.com/sells-group/property-intel/internal/records"
	"github.com/sells-group/property-intel/internal/savedsearch"
)

func newController(t *testing.T) *Controller {
	t.Helper()
	ds := records.Fixtures()
	src, err := records.NewMemory(ds.Properties)
	require.NoError(t, err)
	mgr := savedsearch.NewManager(savedsearch.NewMemoryRepository(ds.SavedSearches...))
	return New(src, mgr, "user-001")
}

func ids(props []model.Property) []string {
	out := make([]string, len(props))
	for i, p := range props {
		out[i] = p.ID
	}
	return out
}

func TestController_StartsEmpty(t *testing.T) {
	c := newController(t)
	assert.True(t, c.Predicate().IsEmpty())
	assert.Equal(t, filter.SortValueDesc, c.Sort())
	assert.Equal(t,
		[]string{"property-004", "property-005", "property-002", "property-003", "property-001"},
		ids(c.Apply()))
}

func TestController_SetAndUpdate(t *testing.T) {
	c := newController(t)

	c.Set(filter.Predicate{City: filter.Ptr("New York")})
	assert.Equal(t, []string{"property-003", "property-001"}, ids(c.Apply()))

	c.Update(func(p *filter.Predicate) { p.ValueMax = filter.Ptr(int64(2000000)) })
	assert.Equal(t, []string{"property-001"}, ids(c.Apply()))

	c.SetSort(filter.SortValueAsc)
	c.Update(func(p *filter.Predicate) { p.ValueMax = nil })
	assert.Equal(t, []string{"property-001", "property-003"}, ids(c.Apply()))
}

func TestController_PredicateIsACopy(t *testing.T) {
	c := newController(t)
	c.Set(filter.Predicate{City: filter.Ptr("Miami")})

	p := c.Predicate()
	*p.City = "Austin"
	assert.Equal(t, "Miami", *c.Predicate().City)
}

func TestController_ToggleCategoryAndFacets(t *testing.T) {
	c := newController(t)
	c.ToggleCategory(model.CategoryCommercial)
	assert.Equal(t, []string{"property-004", "property-002"}, ids(c.Apply()))

	facets := c.Facets()
	assert.Equal(t, 2, facets[model.CategoryResidential])
	assert.Equal(t, 2, facets[model.CategoryCommercial])
	assert.Equal(t, 1, facets[model.CategoryMixedUse])

	c.ToggleCategory(model.CategoryCommercial)
	assert.Len(t, c.Apply(), 5)
}

func TestController_Clear(t *testing.T) {
	c := newController(t)
	c.Set(filter.Predicate{State: filter.Ptr("FL")})
	require.Len(t, c.Apply(), 1)

	all := c.Clear()
	assert.Len(t, all, 5)
	assert.True(t, c.Predicate().IsEmpty())
}

func TestController_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	c := newController(t)

	c.Set(filter.Predicate{State: filter.Ptr("CA"), ValueMin: filter.Ptr(int64(20000000))})
	saved, err := c.SaveCurrent(ctx, "Big SF")
	require.NoError(t, err)
	assert.Equal(t, "user-001", saved.CreatedBy)

	c.Clear()
	got, err := c.LoadSaved(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"property-004"}, ids(got))
	assert.Equal(t, "CA", *c.Predicate().State)
}

func TestController_LoadFixtureSearch(t *testing.T) {
	c := newController(t)

	got, err := c.LoadSaved(context.Background(), "search-001")
	require.NoError(t, err)
	assert.Equal(t, []string{"property-004", "property-002"}, ids(got))

	got, err = c.LoadSaved(context.Background(), "search-002")
	require.NoError(t, err)
	assert.Equal(t, []string{"property-003", "property-001"}, ids(got))
}

func TestController_LoadUnknownKeepsPredicate(t *testing.T) {
	c := newController(t)
	c.Set(filter.Predicate{City: filter.Ptr("Miami")})

	_, err := c.LoadSaved(context.Background(), "search-missing")
	require.True(t, model.IsNotFound(err))
	assert.Equal(t, "Miami", *c.Predicate().City)
}

func TestController_SaveRejectsBlankName(t *testing.T) {
	c := newController(t)
	_, err := c.SaveCurrent(context.Background(), " ")
	assert.True(t, model.IsValidation(err))
}
