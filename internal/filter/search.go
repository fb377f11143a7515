package filter

import (
	"cmp"
	"slices"

	"github.com/sells-group/property-intel/internal/model"
)

// SortKey selects the result ordering. The zero value is value descending.
type SortKey string

const (
	SortValueDesc    SortKey = "value_desc"
	SortValueAsc     SortKey = "value_asc"
	SortRecentSale   SortKey = "recent_sale"
	SortNetWorthDesc SortKey = "net_worth_desc"
)

// SortKeys lists the accepted sort keys; the first is the default.
var SortKeys = []SortKey{SortValueDesc, SortValueAsc, SortRecentSale, SortNetWorthDesc}

// ParseSortKey resolves a sort key name. The empty string selects the default.
func ParseSortKey(s string) (SortKey, error) {
	if s == "" {
		return SortValueDesc, nil
	}
	k := SortKey(s)
	if !slices.Contains(SortKeys, k) {
		return "", &model.ValidationError{Field: "sort", Reason: "unknown sort key " + s}
	}
	return k, nil
}

// Search returns the records matching pred ordered by key. Ties are broken
// by ascending ID so the output is fully determined by the inputs. The input
// slice is never modified and the result is never nil.
func Search(all []model.Property, pred Predicate, key SortKey) []model.Property {
	out := make([]model.Property, 0, len(all))
	for _, p := range all {
		if Matches(p, pred) {
			out = append(out, p)
		}
	}
	Sort(out, key)
	return out
}

// Sort orders props in place by key with an ID tie-break.
func Sort(props []model.Property, key SortKey) {
	primary := comparator(key)
	slices.SortStableFunc(props, func(a, b model.Property) int {
		if c := primary(a, b); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

func comparator(key SortKey) func(a, b model.Property) int {
	switch key {
	case SortValueAsc:
		return func(a, b model.Property) int { return cmp.Compare(a.Value, b.Value) }
	case SortRecentSale:
		return func(a, b model.Property) int { return b.LastSale.Date.Compare(a.LastSale.Date) }
	case SortNetWorthDesc:
		return func(a, b model.Property) int { return cmp.Compare(b.OwnerNetWorth(), a.OwnerNetWorth()) }
	default:
		return func(a, b model.Property) int { return cmp.Compare(b.Value, a.Value) }
	}
}

// FacetCounts maps each category to the number of records that would match
// if that category alone were selected alongside the other constraints.
type FacetCounts map[model.Category]int

// Facets counts records per category, evaluating every rule except the
// category set itself. Categories with no hits are reported as zero.
func Facets(all []model.Property, pred Predicate) FacetCounts {
	counts := make(FacetCounts, len(model.Categories))
	for _, c := range model.Categories {
		counts[c] = 0
	}
	for _, p := range all {
		if matchesExcept(p, pred, true) {
			counts[p.Category]++
		}
	}
	return counts
}

// Paginate returns the window [offset, offset+limit) of results. A
// non-positive limit returns everything from offset on.
func Paginate(results []model.Property, offset, limit int) []model.Property {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(results) {
		return []model.Property{}
	}
	end := len(results)
	if limit > 0 && limit < end-offset {
		end = offset + limit
	}
	return results[offset:end]
}
