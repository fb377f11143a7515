package filter

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"github.com/sells-group/property-intel/internal/model"
)

// Matches reports whether p satisfies every active constraint in pred.
func Matches(p model.Property, pred Predicate) bool {
	return matchesExcept(p, pred, false)
}

// matchesExcept evaluates the conjunction, optionally skipping the category
// rule so facet counts can be computed against the remaining constraints.
func matchesExcept(p model.Property, pred Predicate, skipCategory bool) bool {
	if !matchQuery(p, pred.Query) {
		return false
	}
	if !skipCategory && len(pred.Categories) > 0 && !slices.Contains(pred.Categories, p.Category) {
		return false
	}
	if !inRange(p.Value, pred.ValueMin, pred.ValueMax) {
		return false
	}
	if !inRange(p.Size, pred.SizeMin, pred.SizeMax) {
		return false
	}
	if !inRange(p.OwnerNetWorth(), pred.NetWorthMin, pred.NetWorthMax) {
		return false
	}
	return exact(p.State, pred.State) && exact(p.City, pred.City) && exact(p.Zip, pred.Zip)
}

// matchQuery folds case on both sides and checks each searchable field
// on its own, so a hit never spans two fields.
func matchQuery(p model.Property, q *string) bool {
	if q == nil || *q == "" {
		return true
	}
	fold := cases.Fold()
	needle := fold.String(*q)
	for _, field := range []string{p.Street, p.City, p.State, p.Zip, p.OwnerName()} {
		if strings.Contains(fold.String(field), needle) {
			return true
		}
	}
	return false
}

// inRange is inclusive on both ends. An inverted range admits nothing.
func inRange[T int64 | float64](v T, lo, hi *T) bool {
	if lo != nil && hi != nil && *lo > *hi {
		return false
	}
	if lo != nil && v < *lo {
		return false
	}
	if hi != nil && v > *hi {
		return false
	}
	return true
}

func exact(v string, want *string) bool {
	return want == nil || v == *want
}
