package filter

import (
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/property-intel/internal/model"
)

func TestSearch_Scenario(t *testing.T) {
	all := scenario()

	got := Search(all, Predicate{State: Ptr("NY")}, SortValueDesc)
	assert.Equal(t, []string{"p3", "p1"}, ids(got))

	got = Search(all, Predicate{State: Ptr("NY"), ValueMin: Ptr[int64](1500000)}, SortValueDesc)
	assert.Equal(t, []string{"p3"}, ids(got))
}

func TestSearch_DefaultSortIsValueDesc(t *testing.T) {
	all := scenario()
	assert.Equal(t, ids(Search(all, Predicate{}, SortValueDesc)), ids(Search(all, Predicate{}, "")))
}

func TestSearch_Idempotent(t *testing.T) {
	all := fixtureProperties()
	pred := Predicate{Query: Ptr("street")}
	for _, key := range SortKeys {
		first := Search(all, pred, key)
		for range 5 {
			assert.Equal(t, first, Search(all, pred, key), string(key))
		}
	}
}

func TestSearch_EmptyPredicateReturnsAll(t *testing.T) {
	all := fixtureProperties()
	got := Search(all, Predicate{}, SortValueDesc)
	require.Len(t, got, len(all))
	assert.Equal(t, []string{"property-004", "property-005", "property-002", "property-003", "property-001"}, ids(got))

	seen := map[string]bool{}
	for _, p := range got {
		assert.False(t, seen[p.ID], "duplicate %s", p.ID)
		seen[p.ID] = true
	}
}

func TestSearch_MonotonicNarrowing(t *testing.T) {
	all := fixtureProperties()
	base := Predicate{Query: Ptr("e")}
	baseLen := len(Search(all, base, SortValueDesc))

	narrowers := []func(p *Predicate){
		func(p *Predicate) { p.ValueMin = Ptr[int64](5000000) },
		func(p *Predicate) { p.ValueMax = Ptr[int64](20000000) },
		func(p *Predicate) { p.SizeMin = Ptr[int64](3000) },
		func(p *Predicate) { p.SizeMax = Ptr[int64](16000) },
		func(p *Predicate) { p.NetWorthMin = Ptr(5e7) },
		func(p *Predicate) { p.NetWorthMax = Ptr(5e7) },
		func(p *Predicate) { p.Categories = []model.Category{model.CategoryCommercial} },
		func(p *Predicate) { p.State = Ptr("CA") },
		func(p *Predicate) { p.City = Ptr("Miami") },
		func(p *Predicate) { p.Zip = Ptr("10021") },
	}
	for i, narrow := range narrowers {
		p := base.Clone()
		narrow(&p)
		assert.LessOrEqual(t, len(Search(all, p, SortValueDesc)), baseLen, "narrower %d", i)
	}
}

func TestSearch_InvertedRangeYieldsEmpty(t *testing.T) {
	got := Search(fixtureProperties(), Predicate{ValueMin: Ptr[int64](100), ValueMax: Ptr[int64](50)}, SortValueDesc)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSearch_NoMatchIsEmptyNotNil(t *testing.T) {
	got := Search(fixtureProperties(), Predicate{City: Ptr("Atlantis")}, SortValueDesc)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	got = Search(nil, Predicate{}, SortValueDesc)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSearch_DoesNotMutateInput(t *testing.T) {
	all := fixtureProperties()
	before := slices.Clone(ids(all))
	_ = Search(all, Predicate{}, SortValueAsc)
	_ = Search(all, Predicate{}, SortRecentSale)
	assert.Equal(t, before, ids(all))
}

func TestSearch_SortKeys(t *testing.T) {
	all := fixtureProperties()
	tests := []struct {
		key  SortKey
		want []string
	}{
		{SortValueAsc, []string{"property-001", "property-003", "property-002", "property-005", "property-004"}},
		{SortRecentSale, []string{"property-001", "property-005", "property-002", "property-004", "property-003"}},
		// Ocean owns 002/004/005, Smith owns 001/003; ties fall back to id.
		{SortNetWorthDesc, []string{"property-002", "property-004", "property-005", "property-001", "property-003"}},
	}
	for _, tc := range tests {
		t.Run(string(tc.key), func(t *testing.T) {
			assert.Equal(t, tc.want, ids(Search(all, Predicate{}, tc.key)))
		})
	}
}

func TestSearch_TieBreakByID(t *testing.T) {
	all := []model.Property{
		{ID: "c", Value: 10, Size: 1, Owner: smith},
		{ID: "a", Value: 10, Size: 1, Owner: smith},
		{ID: "b", Value: 10, Size: 1, Owner: smith},
	}
	for _, key := range SortKeys {
		assert.Equal(t, []string{"a", "b", "c"}, ids(Search(all, Predicate{}, key)), string(key))
	}
}

func TestParseSortKey(t *testing.T) {
	k, err := ParseSortKey("")
	require.NoError(t, err)
	assert.Equal(t, SortValueDesc, k)

	k, err = ParseSortKey("recent_sale")
	require.NoError(t, err)
	assert.Equal(t, SortRecentSale, k)

	_, err = ParseSortKey("alphabetical")
	require.Error(t, err)
	assert.True(t, model.IsValidation(err))
}

func TestFacets(t *testing.T) {
	all := fixtureProperties()

	counts := Facets(all, Predicate{Categories: []model.Category{model.CategoryLand}})
	assert.Equal(t, 2, counts[model.CategoryResidential])
	assert.Equal(t, 2, counts[model.CategoryCommercial])
	assert.Equal(t, 1, counts[model.CategoryMixedUse])
	assert.Equal(t, 0, counts[model.CategoryLand])
	assert.Len(t, counts, len(model.Categories))

	counts = Facets(all, Predicate{State: Ptr("CA")})
	assert.Equal(t, 2, counts[model.CategoryCommercial])
	assert.Equal(t, 0, counts[model.CategoryResidential])
}

func TestPaginate(t *testing.T) {
	all := fixtureProperties()
	tests := []struct {
		name          string
		offset, limit int
		want          []string
	}{
		{"window", 1, 2, []string{"property-002", "property-003"}},
		{"zero limit returns rest", 0, 0, ids(all)},
		{"negative offset starts at zero", -3, 2, []string{"property-001", "property-002"}},
		{"offset past end", 10, 2, []string{}},
		{"limit past end", 4, 10, []string{"property-005"}},
		{"huge limit", 1, math.MaxInt, ids(all[1:])},
		{"huge limit and offset", math.MaxInt, math.MaxInt, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Paginate(all, tt.offset, tt.limit)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}
