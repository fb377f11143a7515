package savedsearch

import (
	"context"
	"slices"
	"sync"
)

// MemoryRepository keeps saved searches for the lifetime of the process.
type MemoryRepository struct {
	mu      sync.RWMutex
	entries []SavedSearch
}

// NewMemoryRepository returns a repository seeded with entries.
func NewMemoryRepository(seed ...SavedSearch) *MemoryRepository {
	r := &MemoryRepository{}
	for _, s := range seed {
		r.entries = append(r.entries, s.Clone())
	}
	return r
}

// AppendSavedSearch implements Repository.
func (r *MemoryRepository) AppendSavedSearch(_ context.Context, s SavedSearch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, s.Clone())
	return nil
}

// ListSavedSearches implements Repository. Entries are ordered by
// CreatedAt, then by insertion.
func (r *MemoryRepository) ListSavedSearches(_ context.Context) ([]SavedSearch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]SavedSearch, len(r.entries))
	for i, s := range r.entries {
		out[i] = s.Clone()
	}
	slices.SortStableFunc(out, func(a, b SavedSearch) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out, nil
}

// GetSavedSearch implements Repository.
func (r *MemoryRepository) GetSavedSearch(_ context.Context, id string) (*SavedSearch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.entries {
		if s.ID == id {
			c := s.Clone()
			return &c, nil
		}
	}
	return nil, nil
}

// DeleteSavedSearch implements Repository.
func (r *MemoryRepository) DeleteSavedSearch(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, s := range r.entries {
		if s.ID == id {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return nil
		}
	}
	return nil
}
