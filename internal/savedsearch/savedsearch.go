// Package savedsearch manages named snapshots of search predicates.
package savedsearch

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/property-intel/internal/activity"
	"github.com/sells-group/property-intel/internal/filter"
	"github.com/sells-group/property-intel/internal/model"
)

// SavedSearch is a named, frozen copy of a predicate.
type SavedSearch struct {
	ID        string           `json:"id" yaml:"id"`
	Name      string           `json:"name" yaml:"name"`
	CreatedAt time.Time        `json:"createdAt" yaml:"createdAt"`
	CreatedBy string           `json:"createdBy" yaml:"createdBy"`
	Filters   filter.Predicate `json:"filters" yaml:"filters"`
}

// Clone returns a deep copy of s.
func (s SavedSearch) Clone() SavedSearch {
	s.Filters = s.Filters.Clone()
	return s
}

// Repository persists saved searches. Implementations keep insertion order.
type Repository interface {
	// AppendSavedSearch stores a new entry after all existing ones.
	AppendSavedSearch(ctx context.Context, s SavedSearch) error

	// ListSavedSearches returns every entry oldest first, ties in insertion order.
	ListSavedSearches(ctx context.Context) ([]SavedSearch, error)

	// GetSavedSearch returns nil, nil when id is unknown.
	GetSavedSearch(ctx context.Context, id string) (*SavedSearch, error)

	// DeleteSavedSearch removes id. Unknown ids are not an error.
	DeleteSavedSearch(ctx context.Context, id string) error
}

const maxIDAttempts = 5

// Manager implements saved-search CRUD on top of a Repository.
type Manager struct {
	repo     Repository
	recorder activity.Recorder
	now      func() time.Time
	newID    func() string
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithIDGenerator overrides identifier generation.
func WithIDGenerator(gen func() string) Option {
	return func(m *Manager) { m.newID = gen }
}

// WithRecorder records save and delete actions to the audit trail.
func WithRecorder(r activity.Recorder) Option {
	return func(m *Manager) { m.recorder = r }
}

// NewManager creates a Manager backed by repo.
func NewManager(repo Repository, opts ...Option) *Manager {
	m := &Manager{
		repo:  repo,
		now:   time.Now,
		newID: func() string { return "search-" + uuid.NewString() },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Save snapshots pred under name. Names are not required to be unique.
func (m *Manager) Save(ctx context.Context, name string, pred filter.Predicate, creator string) (*SavedSearch, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &model.ValidationError{Field: "name", Reason: "must not be empty"}
	}

	id, err := m.freshID(ctx)
	if err != nil {
		return nil, err
	}

	s := SavedSearch{
		ID:        id,
		Name:      name,
		CreatedAt: m.now().UTC(),
		CreatedBy: creator,
		Filters:   pred.Clone(),
	}
	if err := m.repo.AppendSavedSearch(ctx, s); err != nil {
		return nil, eris.Wrap(err, "savedsearch: append")
	}

	m.record(ctx, creator, model.ActionCreatedSearch, "Created and saved new search: "+name)

	out := s.Clone()
	return &out, nil
}

// List returns every saved search in creation order.
func (m *Manager) List(ctx context.Context) ([]SavedSearch, error) {
	list, err := m.repo.ListSavedSearches(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "savedsearch: list")
	}
	if list == nil {
		list = []SavedSearch{}
	}
	return list, nil
}

// Get returns the full saved search, or a *model.NotFoundError.
func (m *Manager) Get(ctx context.Context, id string) (*SavedSearch, error) {
	s, err := m.repo.GetSavedSearch(ctx, id)
	if err != nil {
		return nil, eris.Wrapf(err, "savedsearch: get %s", id)
	}
	if s == nil {
		return nil, &model.NotFoundError{Entity: "saved search", ID: id}
	}
	out := s.Clone()
	return &out, nil
}

// Load returns a copy of the stored predicate. Mutating it does not touch
// the saved entry.
func (m *Manager) Load(ctx context.Context, id string) (filter.Predicate, error) {
	s, err := m.Get(ctx, id)
	if err != nil {
		return filter.Predicate{}, err
	}
	return s.Filters, nil
}

// Delete removes id. Deleting an unknown id succeeds.
func (m *Manager) Delete(ctx context.Context, id, actor string) error {
	existing, err := m.repo.GetSavedSearch(ctx, id)
	if err != nil {
		return eris.Wrapf(err, "savedsearch: get %s", id)
	}
	if existing == nil {
		return nil
	}
	if err := m.repo.DeleteSavedSearch(ctx, id); err != nil {
		return eris.Wrapf(err, "savedsearch: delete %s", id)
	}
	m.record(ctx, actor, model.ActionDeletedSearch, "Deleted saved search: "+existing.Name)
	return nil
}

func (m *Manager) freshID(ctx context.Context) (string, error) {
	for range maxIDAttempts {
		id := m.newID()
		existing, err := m.repo.GetSavedSearch(ctx, id)
		if err != nil {
			return "", eris.Wrap(err, "savedsearch: check id")
		}
		if existing == nil {
			return id, nil
		}
	}
	return "", eris.Errorf("savedsearch: could not generate a unique id after %d attempts", maxIDAttempts)
}

// record is best effort: a failing audit trail does not fail the user action.
func (m *Manager) record(ctx context.Context, userID, action, details string) {
	if m.recorder == nil {
		return
	}
	e := activity.NewEntry(userID, action, details, m.now())
	if err := m.recorder.RecordActivity(ctx, e); err != nil {
		zap.L().Warn("savedsearch: record activity failed",
			zap.String("action", action),
			zap.Error(err),
		)
	}
}
