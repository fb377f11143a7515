// Package records holds the in-memory property collection and the loaders
// that populate it.
package records

import (
	"context"
	"slices"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/property-intel/internal/model"
)

// Source supplies the full property collection to the search engine.
type Source interface {
	// GetAll returns every record in a stable order.
	GetAll() []model.Property

	// GetByID returns the record with id.
	GetByID(id string) (model.Property, bool)
}

// Memory is a read-only Source over a validated slice.
type Memory struct {
	props []model.Property
	byID  map[string]int
}

// NewMemory validates props and their owners, rejects duplicate ids, and links properties
// that reference the same owner id to a single shared Owner. Owners are
// adopted, not copied: their PropertyIDs gain any ids missing from them.
func NewMemory(props []model.Property) (*Memory, error) {
	m := &Memory{
		props: make([]model.Property, 0, len(props)),
		byID:  make(map[string]int, len(props)),
	}
	owners := map[string]*model.Owner{}

	for _, p := range props {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if _, dup := m.byID[p.ID]; dup {
			return nil, eris.Errorf("records: duplicate property id %s", p.ID)
		}
		if o, ok := owners[p.Owner.ID]; ok {
			p.Owner = o
		} else {
			owners[p.Owner.ID] = p.Owner
		}
		if !slices.Contains(p.Owner.PropertyIDs, p.ID) {
			p.Owner.PropertyIDs = append(p.Owner.PropertyIDs, p.ID)
		}
		if err := p.Owner.Validate(); err != nil {
			return nil, eris.Wrapf(err, "records: property %s", p.ID)
		}
		m.byID[p.ID] = len(m.props)
		m.props = append(m.props, p)
	}
	return m, nil
}

// GetAll implements Source. The returned slice may be modified by the caller.
func (m *Memory) GetAll() []model.Property {
	return slices.Clone(m.props)
}

// GetByID implements Source.
func (m *Memory) GetByID(id string) (model.Property, bool) {
	i, ok := m.byID[id]
	if !ok {
		return model.Property{}, false
	}
	return m.props[i], true
}

// Len returns the number of records.
func (m *Memory) Len() int { return len(m.props) }

// Owners returns the distinct owners in first-seen order.
func (m *Memory) Owners() []*model.Owner {
	seen := map[string]bool{}
	var out []*model.Owner
	for _, p := range m.props {
		if !seen[p.Owner.ID] {
			seen[p.Owner.ID] = true
			out = append(out, p.Owner)
		}
	}
	return out
}

// Options selects the records to serve.
type Options struct {
	// Paths are data files to load. When empty the fixture dataset is used.
	Paths []string
	// Generate appends this many synthetic records.
	Generate int
	// Seed drives the generator.
	Seed uint64
}

// Open assembles a Memory source from files, fixtures and generated records.
func Open(ctx context.Context, opts Options) (*Memory, error) {
	var props []model.Property
	if len(opts.Paths) > 0 {
		loaded, err := LoadFiles(ctx, opts.Paths)
		if err != nil {
			return nil, err
		}
		props = loaded
	} else {
		props = Fixtures().Properties
	}

	if opts.Generate > 0 {
		base, err := NewMemory(props)
		if err != nil {
			return nil, err
		}
		props = append(base.GetAll(), Generate(opts.Generate, opts.Seed, base.Owners())...)
	}

	m, err := NewMemory(props)
	if err != nil {
		return nil, err
	}
	zap.L().Info("records: ready",
		zap.Int("records", m.Len()),
		zap.Int("files", len(opts.Paths)),
		zap.Int("generated", opts.Generate),
	)
	return m, nil
}
