// Package activity keeps the audit trail of user actions and filters it for
// the activity log view.
package activity

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"

	"github.com/sells-group/property-intel/internal/model"
)

// Recorder appends entries to the audit trail.
type Recorder interface {
	RecordActivity(ctx context.Context, e model.ActivityEntry) error
}

// Repository is a Recorder that can also list what it holds.
type Repository interface {
	Recorder
	ListActivity(ctx context.Context) ([]model.ActivityEntry, error)
}

// Filter narrows the activity log. Zero fields are unconstrained.
type Filter struct {
	Query  string        `json:"query,omitempty"`
	Action string        `json:"action,omitempty"`
	UserID string        `json:"user,omitempty"`
	Since  time.Duration `json:"since,omitempty"`
}

// MaxDays caps a day window. Longer windows would overflow time.Duration.
const MaxDays = 36500

// Days converts a window of n days for Filter.Since. Zero means no window.
func Days(n int) (time.Duration, error) {
	if n < 0 || n > MaxDays {
		return 0, &model.ValidationError{Field: "days", Reason: fmt.Sprintf("must be between 0 and %d", MaxDays)}
	}
	return time.Duration(n) * 24 * time.Hour, nil
}

// Apply returns matching entries newest first. Entries with equal
// timestamps are ordered by ID. now anchors the Since window.
func Apply(entries []model.ActivityEntry, f Filter, now time.Time) []model.ActivityEntry {
	fold := cases.Fold()
	needle := fold.String(f.Query)
	var cutoff time.Time
	if f.Since > 0 {
		cutoff = now.Add(-f.Since)
	}

	out := make([]model.ActivityEntry, 0, len(entries))
	for _, e := range entries {
		if needle != "" &&
			!strings.Contains(fold.String(e.UserName), needle) &&
			!strings.Contains(fold.String(e.Action), needle) &&
			!strings.Contains(fold.String(e.Details), needle) {
			continue
		}
		if f.Action != "" && e.Action != f.Action {
			continue
		}
		if f.UserID != "" && e.UserID != f.UserID {
			continue
		}
		if !cutoff.IsZero() && e.Timestamp.Before(cutoff) {
			continue
		}
		out = append(out, e)
	}

	slices.SortStableFunc(out, func(a, b model.ActivityEntry) int {
		if c := b.Timestamp.Compare(a.Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// DayGroup is the set of entries that fall on one calendar day.
type DayGroup struct {
	Day     time.Time             `json:"day"`
	Entries []model.ActivityEntry `json:"entries"`
}

// GroupByDay buckets entries by calendar day in loc, newest day first.
// Order within a bucket follows the input order.
func GroupByDay(entries []model.ActivityEntry, loc *time.Location) []DayGroup {
	if loc == nil {
		loc = time.UTC
	}
	idx := map[time.Time]int{}
	var groups []DayGroup
	for _, e := range entries {
		t := e.Timestamp.In(loc)
		d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
		i, ok := idx[d]
		if !ok {
			i = len(groups)
			idx[d] = i
			groups = append(groups, DayGroup{Day: d})
		}
		groups[i].Entries = append(groups[i].Entries, e)
	}
	slices.SortFunc(groups, func(a, b DayGroup) int { return b.Day.Compare(a.Day) })
	return groups
}

// Actions returns the distinct actions present in entries, sorted.
func Actions(entries []model.ActivityEntry) []string {
	seen := map[string]bool{}
	var out []string
	for _, e := range entries {
		if !seen[e.Action] {
			seen[e.Action] = true
			out = append(out, e.Action)
		}
	}
	slices.Sort(out)
	return out
}

// NewEntry stamps an entry with a fresh id and the given time.
func NewEntry(userID, action, details string, at time.Time) model.ActivityEntry {
	return model.ActivityEntry{
		ID:        "activity-" + uuid.NewString(),
		UserID:    userID,
		Action:    action,
		Details:   details,
		Timestamp: at.UTC(),
	}
}

// MemoryLog is an in-process Repository.
type MemoryLog struct {
	mu      sync.RWMutex
	entries []model.ActivityEntry
}

// NewMemoryLog returns a log seeded with entries.
func NewMemoryLog(seed ...model.ActivityEntry) *MemoryLog {
	return &MemoryLog{entries: slices.Clone(seed)}
}

// RecordActivity implements Recorder.
func (l *MemoryLog) RecordActivity(_ context.Context, e model.ActivityEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
	return nil
}

// ListActivity implements Repository. Entries come back in insertion order.
func (l *MemoryLog) ListActivity(_ context.Context) ([]model.ActivityEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.entries), nil
}

// Attributed fills in the user name and role of each entry from a fixed
// user directory before handing it to the next recorder. Entries for unknown
// users pass through unchanged.
type Attributed struct {
	next  Recorder
	users map[string]model.User
}

// Attribute wraps next with a lookup over users.
func Attribute(next Recorder, users []model.User) *Attributed {
	m := make(map[string]model.User, len(users))
	for _, u := range users {
		m[u.ID] = u
	}
	return &Attributed{next: next, users: m}
}

// RecordActivity implements Recorder.
func (a *Attributed) RecordActivity(ctx context.Context, e model.ActivityEntry) error {
	if u, ok := a.users[e.UserID]; ok {
		if e.UserName == "" {
			e.UserName = u.FullName
		}
		if e.UserRole == "" {
			e.UserRole = string(u.Role)
		}
	}
	return a.next.RecordActivity(ctx, e)
}
