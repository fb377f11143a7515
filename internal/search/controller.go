// Package search holds the per-session search state: the live predicate,
// the chosen ordering, and the saved-search shortcuts built on top of them.
package search

import (
	"context"

	"github.com/sells-group/property-intel/internal/filter"
	"github.com/sells-group/property-intel/internal/model"
	"github.com/sells-group/property-intel/internal/records"
	"github.com/sells-group/property-intel/internal/savedsearch"
)

// Controller owns one session's live predicate. It is not safe for
// concurrent use; give each session its own Controller.
type Controller struct {
	source  records.Source
	manager *savedsearch.Manager
	user    string

	pred filter.Predicate
	sort filter.SortKey
}

// New returns a controller with an empty predicate and the default order.
func New(source records.Source, manager *savedsearch.Manager, user string) *Controller {
	return &Controller{source: source, manager: manager, user: user, sort: filter.SortValueDesc}
}

// Predicate returns a copy of the live predicate.
func (c *Controller) Predicate() filter.Predicate { return c.pred.Clone() }

// Set replaces the live predicate wholesale.
func (c *Controller) Set(p filter.Predicate) { c.pred = p.Clone() }

// Update applies fn to a copy of the live predicate and stores the result.
func (c *Controller) Update(fn func(*filter.Predicate)) {
	p := c.pred.Clone()
	fn(&p)
	c.pred = p
}

// ToggleCategory adds or removes one category rule.
func (c *Controller) ToggleCategory(cat model.Category) {
	c.pred = c.pred.WithCategory(cat)
}

// Sort returns the active ordering.
func (c *Controller) Sort() filter.SortKey { return c.sort }

// SetSort changes the ordering of subsequent results.
func (c *Controller) SetSort(k filter.SortKey) { c.sort = k }

// Apply evaluates the live predicate against every record.
func (c *Controller) Apply() []model.Property {
	return filter.Search(c.source.GetAll(), c.pred, c.sort)
}

// Facets counts matches per category for the live predicate.
func (c *Controller) Facets() filter.FacetCounts {
	return filter.Facets(c.source.GetAll(), c.pred)
}

// Clear resets the predicate and returns every record.
func (c *Controller) Clear() []model.Property {
	c.pred = filter.Predicate{}
	return c.Apply()
}

// SaveCurrent snapshots the live predicate under name.
func (c *Controller) SaveCurrent(ctx context.Context, name string) (*savedsearch.SavedSearch, error) {
	return c.manager.Save(ctx, name, c.pred, c.user)
}

// LoadSaved replaces the live predicate with a saved one and applies it.
// On error the live predicate is left untouched.
func (c *Controller) LoadSaved(ctx context.Context, id string) ([]model.Property, error) {
	p, err := c.manager.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	c.pred = p
	return c.Apply(), nil
}
