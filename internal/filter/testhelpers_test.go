package filter

import (
	"time"

	"github.com/sells-group/property-intel/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var (
	smith = &model.Owner{ID: "owner-001", Name: "John Smith", Kind: model.OwnerIndividual, NetWorth: 15000000, Confidence: 0.85}
	ocean = &model.Owner{ID: "owner-002", Name: "Oceanview Holdings LLC", Kind: model.OwnerCompany, NetWorth: 98000000, Confidence: 0.92}
)

// scenario returns the three-record collection used by the ordering tests.
func scenario() []model.Property {
	return []model.Property{
		{ID: "p1", City: "New York", State: "NY", Value: 1000000, Size: 1000, Category: model.CategoryResidential, Owner: smith},
		{ID: "p2", City: "San Francisco", State: "CA", Value: 5000000, Size: 1000, Category: model.CategoryCommercial, Owner: ocean},
		{ID: "p3", City: "New York", State: "NY", Value: 2000000, Size: 1000, Category: model.CategoryResidential, Owner: smith},
	}
}

func fixtureProperties() []model.Property {
	return []model.Property{
		{
			ID: "property-001", Street: "123 Main Street", City: "New York", State: "NY", Zip: "10001",
			Category: model.CategoryResidential, Size: 2500, Value: 1850000,
			LastSale: model.Sale{Date: day(2023, 5, 12), Price: 1750000}, Owner: smith,
		},
		{
			ID: "property-002", Street: "456 Market Street", City: "San Francisco", State: "CA", Zip: "94103",
			Category: model.CategoryCommercial, Size: 15000, Value: 12500000,
			LastSale: model.Sale{Date: day(2022, 8, 3), Price: 11000000}, Owner: ocean,
		},
		{
			ID: "property-003", Street: "789 Park Avenue", City: "New York", State: "NY", Zip: "10021",
			Category: model.CategoryResidential, Size: 4200, Value: 6500000,
			LastSale: model.Sale{Date: day(2021, 11, 15), Price: 5800000}, Owner: smith,
		},
		{
			ID: "property-004", Street: "101 Tech Street", City: "San Francisco", State: "CA", Zip: "94105",
			Category: model.CategoryCommercial, Size: 25000, Value: 28000000,
			LastSale: model.Sale{Date: day(2022, 3, 20), Price: 25000000}, Owner: ocean,
		},
		{
			ID: "property-005", Street: "222 Jefferson Avenue", City: "Miami", State: "FL", Zip: "33139",
			Category: model.CategoryMixedUse, Size: 18000, Value: 19500000,
			LastSale: model.Sale{Date: day(2023, 1, 10), Price: 17800000}, Owner: ocean,
		},
	}
}

func ids(props []model.Property) []string {
	out := make([]string, len(props))
	for i, p := range props {
		out[i] = p.ID
	}
	return out
}
