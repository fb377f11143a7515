package filter

import (
	"slices"

	"github.com/sells-group/property-intel/internal/model"
)

// Predicate holds the active search constraints. A nil field means the
// facet is unconstrained; a non-nil zero value is a real constraint.
type Predicate struct {
	Query       *string          `json:"query,omitempty" yaml:"query,omitempty"`
	Categories  []model.Category `json:"propertyType,omitempty" yaml:"propertyType,omitempty"`
	ValueMin    *int64           `json:"valueMin,omitempty" yaml:"valueMin,omitempty"`
	ValueMax    *int64           `json:"valueMax,omitempty" yaml:"valueMax,omitempty"`
	SizeMin     *int64           `json:"sizeMin,omitempty" yaml:"sizeMin,omitempty"`
	SizeMax     *int64           `json:"sizeMax,omitempty" yaml:"sizeMax,omitempty"`
	NetWorthMin *float64         `json:"ownerNetWorthMin,omitempty" yaml:"ownerNetWorthMin,omitempty"`
	NetWorthMax *float64         `json:"ownerNetWorthMax,omitempty" yaml:"ownerNetWorthMax,omitempty"`
	State       *string          `json:"state,omitempty" yaml:"state,omitempty"`
	City        *string          `json:"city,omitempty" yaml:"city,omitempty"`
	Zip         *string          `json:"zipCode,omitempty" yaml:"zipCode,omitempty"`
}

// Ptr returns a pointer to v. Convenience for building predicates.
func Ptr[T any](v T) *T {
	return &v
}

// Clone returns a deep copy sharing no pointers or slices with p.
func (p Predicate) Clone() Predicate {
	return Predicate{
		Query:       clonePtr(p.Query),
		Categories:  slices.Clone(p.Categories),
		ValueMin:    clonePtr(p.ValueMin),
		ValueMax:    clonePtr(p.ValueMax),
		SizeMin:     clonePtr(p.SizeMin),
		SizeMax:     clonePtr(p.SizeMax),
		NetWorthMin: clonePtr(p.NetWorthMin),
		NetWorthMax: clonePtr(p.NetWorthMax),
		State:       clonePtr(p.State),
		City:        clonePtr(p.City),
		Zip:         clonePtr(p.Zip),
	}
}

// Equal reports whether p and o hold the same constraints. A nil and an
// empty category set are equal since both leave the facet unconstrained.
func (p Predicate) Equal(o Predicate) bool {
	return eqPtr(p.Query, o.Query) &&
		slices.Equal(p.Categories, o.Categories) &&
		eqPtr(p.ValueMin, o.ValueMin) &&
		eqPtr(p.ValueMax, o.ValueMax) &&
		eqPtr(p.SizeMin, o.SizeMin) &&
		eqPtr(p.SizeMax, o.SizeMax) &&
		eqPtr(p.NetWorthMin, o.NetWorthMin) &&
		eqPtr(p.NetWorthMax, o.NetWorthMax) &&
		eqPtr(p.State, o.State) &&
		eqPtr(p.City, o.City) &&
		eqPtr(p.Zip, o.Zip)
}

// ActiveConstraints counts the constrained facets.
func (p Predicate) ActiveConstraints() int {
	n := 0
	if p.Query != nil && *p.Query != "" {
		n++
	}
	if len(p.Categories) > 0 {
		n++
	}
	for _, set := range []bool{
		p.ValueMin != nil, p.ValueMax != nil,
		p.SizeMin != nil, p.SizeMax != nil,
		p.NetWorthMin != nil, p.NetWorthMax != nil,
		p.State != nil, p.City != nil, p.Zip != nil,
	} {
		if set {
			n++
		}
	}
	return n
}

// IsEmpty reports whether no facet is constrained.
func (p Predicate) IsEmpty() bool {
	return p.ActiveConstraints() == 0
}

// Validate rejects categories outside the known set. Ranges are not
// checked: an inverted range is a legal predicate that matches nothing.
func (p Predicate) Validate() error {
	for _, c := range p.Categories {
		if !c.IsValid() {
			return &model.ValidationError{Field: "propertyType", Reason: "unknown category " + string(c)}
		}
	}
	return nil
}

// WithCategory returns a copy with c toggled in the category set.
func (p Predicate) WithCategory(c model.Category) Predicate {
	out := p.Clone()
	if i := slices.Index(out.Categories, c); i >= 0 {
		out.Categories = slices.Delete(out.Categories, i, i+1)
		return out
	}
	out.Categories = append(out.Categories, c)
	return out
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func eqPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
