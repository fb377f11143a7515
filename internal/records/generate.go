package records

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/sells-group/property-intel/internal/model"
)

type metro struct {
	city, state string
	lat, lng    float64
}

var metros = []metro{
	{"Los Angeles", "CA", 34.0522, -118.2437},
	{"Chicago", "IL", 41.8781, -87.6298},
	{"Houston", "TX", 29.7604, -95.3698},
	{"Phoenix", "AZ", 33.4484, -112.0740},
	{"Philadelphia", "PA", 39.9526, -75.1652},
	{"San Antonio", "TX", 29.4241, -98.4936},
	{"San Diego", "CA", 32.7157, -117.1611},
	{"Dallas", "TX", 32.7767, -96.7970},
	{"Austin", "TX", 30.2672, -97.7431},
	{"Seattle", "WA", 47.6062, -122.3321},
}

var (
	streetNames    = []string{"Main", "Oak", "Maple", "Pine", "Cedar"}
	streetSuffixes = []string{"St", "Ave", "Blvd", "Dr", "Ln"}
)

// GenerateBaseID is the numeric id of the first generated record.
const GenerateBaseID = 1000

// Generate produces n synthetic properties spread over large US metros.
// The same seed always yields the same records. Each record gets a randomly
// chosen owner from owners.
func Generate(n int, seed uint64, owners []*model.Owner) []model.Property {
	if n <= 0 || len(owners) == 0 {
		return []model.Property{}
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	out := make([]model.Property, 0, n)
	for i := range n {
		m := metros[rng.IntN(len(metros))]
		cat := model.Categories[rng.IntN(len(model.Categories))]

		var size, value int64
		if cat == model.CategoryResidential {
			size = 1000 + rng.Int64N(5000)
			value = 500000 + rng.Int64N(5000000)
		} else {
			size = 5000 + rng.Int64N(50000)
			value = 2000000 + rng.Int64N(30000000)
		}

		sale := time.Date(2021+rng.IntN(4), time.Month(1+rng.IntN(12)), 1+rng.IntN(28), 0, 0, 0, 0, time.UTC)
		price := max(value-rng.Int64N(1000000), 0)

		out = append(out, model.Property{
			ID: fmt.Sprintf("property-%d", GenerateBaseID+i),
			Street: fmt.Sprintf("%d %s %s",
				1000+rng.IntN(9000),
				streetNames[rng.IntN(len(streetNames))],
				streetSuffixes[rng.IntN(len(streetSuffixes))]),
			City:      m.city,
			State:     m.state,
			Zip:       fmt.Sprintf("%05d", 10000+rng.IntN(90000)),
			Lat:       m.lat + (rng.Float64()-0.5)*0.2,
			Lng:       m.lng + (rng.Float64()-0.5)*0.2,
			Category:  cat,
			Size:      size,
			Value:     value,
			LastSale:  model.Sale{Date: sale, Price: price},
			YearBuilt: 1960 + rng.IntN(63),
			Owner:     owners[rng.IntN(len(owners))],
		})
	}
	return out
}
