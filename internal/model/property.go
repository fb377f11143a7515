package model

import (
	"time"

	"github.com/rotisserie/eris"
)

// Category is the asset class of a property.
type Category string

const (
	CategoryResidential Category = "Residential"
	CategoryCommercial  Category = "Commercial"
	CategoryIndustrial  Category = "Industrial"
	CategoryLand        Category = "Land"
	CategoryMixedUse    Category = "Mixed Use"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryResidential,
	CategoryCommercial,
	CategoryIndustrial,
	CategoryLand,
	CategoryMixedUse,
}

// IsValid reports whether c is one of the fixed categories.
func (c Category) IsValid() bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

// ParseCategory resolves a category name. Matching is exact.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.IsValid() {
		return "", &ValidationError{Field: "propertyType", Reason: "unknown category " + s}
	}
	return c, nil
}

// Sale is the most recent recorded transfer of a property.
type Sale struct {
	Date  time.Time `json:"date"`
	Price int64     `json:"price"`
}

// Property is one real-estate asset. Records are immutable once loaded.
type Property struct {
	ID        string   `json:"id"`
	Street    string   `json:"address"`
	City      string   `json:"city"`
	State     string   `json:"state"`
	Zip       string   `json:"zipCode"`
	Lat       float64  `json:"lat"`
	Lng       float64  `json:"lng"`
	Category  Category `json:"propertyType"`
	Size      int64    `json:"size"`
	Value     int64    `json:"value"`
	LastSale  Sale     `json:"lastSale"`
	YearBuilt int      `json:"yearBuilt"`
	Owner     *Owner   `json:"owner"`
	Images    []string `json:"images,omitempty"`
	Features  []string `json:"features,omitempty"`
}

// OwnerName returns the owner's display name, or "" when unowned.
func (p Property) OwnerName() string {
	if p.Owner == nil {
		return ""
	}
	return p.Owner.Name
}

// OwnerNetWorth returns the owner's estimated net worth, or 0 when unowned.
func (p Property) OwnerNetWorth() float64 {
	if p.Owner == nil {
		return 0
	}
	return p.Owner.NetWorth
}

// Validate checks the record invariants.
func (p Property) Validate() error {
	if p.ID == "" {
		return eris.New("model: property id is required")
	}
	if p.Size <= 0 {
		return eris.Errorf("model: property %s: size must be positive, got %d", p.ID, p.Size)
	}
	if p.Value < 0 {
		return eris.Errorf("model: property %s: value must be non-negative, got %d", p.ID, p.Value)
	}
	if p.LastSale.Price < 0 {
		return eris.Errorf("model: property %s: last sale price must be non-negative, got %d", p.ID, p.LastSale.Price)
	}
	if !p.Category.IsValid() {
		return eris.Errorf("model: property %s: invalid category %q", p.ID, p.Category)
	}
	if p.Owner == nil {
		return eris.Errorf("model: property %s: owner is required", p.ID)
	}
	return nil
}
