package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validOwner() *Owner {
	return &Owner{
		ID:          "owner-001",
		Name:        "John Smith",
		Kind:        OwnerIndividual,
		NetWorth:    15000000,
		Confidence:  0.85,
		PropertyIDs: []string{"property-001"},
		Sources: []SourceEntry{
			{Name: "Property Records", Confidence: 0.92},
			{Name: "Credit Bureau", Confidence: 0.78},
		},
	}
}

func validProperty() Property {
	return Property{
		ID:       "property-001",
		Street:   "123 Main Street",
		City:     "New York",
		State:    "NY",
		Zip:      "10001",
		Category: CategoryResidential,
		Size:     2500,
		Value:    1850000,
		LastSale: Sale{Date: time.Date(2023, 5, 12, 0, 0, 0, 0, time.UTC), Price: 1750000},
		Owner:    validOwner(),
	}
}

func TestCategory_IsValid(t *testing.T) {
	for _, c := range Categories {
		assert.True(t, c.IsValid(), c)
	}
	assert.False(t, Category("Castle").IsValid())
	assert.False(t, Category("residential").IsValid())
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory("Mixed Use")
	require.NoError(t, err)
	assert.Equal(t, CategoryMixedUse, c)

	_, err = ParseCategory("Farm")
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestProperty_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *Property)
		wantErr string
	}{
		{name: "valid", mutate: func(*Property) {}},
		{name: "missing id", mutate: func(p *Property) { p.ID = "" }, wantErr: "id is required"},
		{name: "zero size", mutate: func(p *Property) { p.Size = 0 }, wantErr: "size must be positive"},
		{name: "negative value", mutate: func(p *Property) { p.Value = -1 }, wantErr: "value must be non-negative"},
		{name: "negative sale", mutate: func(p *Property) { p.LastSale.Price = -5 }, wantErr: "last sale price"},
		{name: "bad category", mutate: func(p *Property) { p.Category = "Castle" }, wantErr: "invalid category"},
		{name: "no owner", mutate: func(p *Property) { p.Owner = nil }, wantErr: "owner is required"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := validProperty()
			tc.mutate(&p)
			err := p.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestOwner_Validate(t *testing.T) {
	o := validOwner()
	require.NoError(t, o.Validate())

	o.Confidence = 1.2
	assert.ErrorContains(t, o.Validate(), "outside [0,1]")

	o = validOwner()
	o.Sources[1].Confidence = -0.1
	assert.ErrorContains(t, o.Validate(), "Credit Bureau")

	o = validOwner()
	o.PropertyIDs = nil
	assert.ErrorContains(t, o.Validate(), "owns no properties")

	o = validOwner()
	o.Kind = "Alien"
	assert.ErrorContains(t, o.Validate(), "invalid kind")
}

func TestOwner_BestSource(t *testing.T) {
	best, ok := validOwner().BestSource()
	require.True(t, ok)
	assert.Equal(t, "Property Records", best.Name)

	_, ok = Owner{}.BestSource()
	assert.False(t, ok)
}

func TestProperty_OwnerAccessors(t *testing.T) {
	p := validProperty()
	assert.Equal(t, "John Smith", p.OwnerName())
	assert.InDelta(t, 15000000, p.OwnerNetWorth(), 0.001)

	p.Owner = nil
	assert.Empty(t, p.OwnerName())
	assert.Zero(t, p.OwnerNetWorth())
}

func TestErrors(t *testing.T) {
	ve := &ValidationError{Field: "name", Reason: "must not be empty"}
	assert.Equal(t, "validation: name: must not be empty", ve.Error())
	assert.Equal(t, "validation: bad", (&ValidationError{Reason: "bad"}).Error())

	nf := &NotFoundError{Entity: "saved search", ID: "search-1"}
	assert.Equal(t, "saved search not found: search-1", nf.Error())
	assert.True(t, IsNotFound(nf))
	assert.False(t, IsValidation(nf))
}
