package records

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/property-intel/internal/model"
)

// Row is the flat tabular layout shared by CSV, XLSX and shapefile
// attribute tables. Owner fields are repeated on every row and joined by
// owner_id.
type Row struct {
	ID              string  `csv:"id"`
	Address         string  `csv:"address"`
	City            string  `csv:"city"`
	State           string  `csv:"state"`
	ZipCode         string  `csv:"zip_code"`
	Lat             float64 `csv:"lat"`
	Lng             float64 `csv:"lng"`
	PropertyType    string  `csv:"property_type"`
	Size            int64   `csv:"size"`
	Value           int64   `csv:"value"`
	LastSaleDate    string  `csv:"last_sale_date"`
	LastSalePrice   int64   `csv:"last_sale_price"`
	YearBuilt       int     `csv:"year_built"`
	OwnerID         string  `csv:"owner_id"`
	OwnerName       string  `csv:"owner_name"`
	OwnerType       string  `csv:"owner_type"`
	OwnerNetWorth   float64 `csv:"owner_net_worth"`
	OwnerConfidence float64 `csv:"owner_confidence"`
}

// RowHeader lists the Row columns in order.
var RowHeader = []string{
	"id", "address", "city", "state", "zip_code", "lat", "lng", "property_type",
	"size", "value", "last_sale_date", "last_sale_price", "year_built",
	"owner_id", "owner_name", "owner_type", "owner_net_worth", "owner_confidence",
}

const saleDateLayout = "2006-01-02"

// ToRow flattens p.
func ToRow(p model.Property) Row {
	r := Row{
		ID:            p.ID,
		Address:       p.Street,
		City:          p.City,
		State:         p.State,
		ZipCode:       p.Zip,
		Lat:           p.Lat,
		Lng:           p.Lng,
		PropertyType:  string(p.Category),
		Size:          p.Size,
		Value:         p.Value,
		LastSalePrice: p.LastSale.Price,
		YearBuilt:     p.YearBuilt,
	}
	if !p.LastSale.Date.IsZero() {
		r.LastSaleDate = p.LastSale.Date.UTC().Format(saleDateLayout)
	}
	if p.Owner != nil {
		r.OwnerID = p.Owner.ID
		r.OwnerName = p.Owner.Name
		r.OwnerType = string(p.Owner.Kind)
		r.OwnerNetWorth = p.Owner.NetWorth
		r.OwnerConfidence = p.Owner.Confidence
	}
	return r
}

func parseSaleDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(saleDateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, eris.Errorf("records: unparseable sale date %q", s)
	}
	return t.UTC(), nil
}

// FromRows rebuilds properties from rows. Rows sharing an owner_id share
// one Owner; the first row seen for an owner supplies its details.
func FromRows(rows []Row) ([]model.Property, error) {
	owners := map[string]*model.Owner{}
	out := make([]model.Property, 0, len(rows))

	for i, r := range rows {
		if strings.TrimSpace(r.OwnerID) == "" {
			return nil, eris.Errorf("records: row %d (%s): owner_id is required", i+1, r.ID)
		}
		sale, err := parseSaleDate(r.LastSaleDate)
		if err != nil {
			return nil, eris.Wrapf(err, "records: row %d (%s)", i+1, r.ID)
		}
		cat, err := model.ParseCategory(strings.TrimSpace(r.PropertyType))
		if err != nil {
			return nil, eris.Wrapf(err, "records: row %d (%s)", i+1, r.ID)
		}

		o, ok := owners[r.OwnerID]
		if !ok {
			o = &model.Owner{
				ID:         r.OwnerID,
				Name:       r.OwnerName,
				Kind:       model.OwnerKind(r.OwnerType),
				NetWorth:   r.OwnerNetWorth,
				Confidence: r.OwnerConfidence,
			}
			owners[r.OwnerID] = o
		}
		o.PropertyIDs = append(o.PropertyIDs, r.ID)

		out = append(out, model.Property{
			ID:        strings.TrimSpace(r.ID),
			Street:    r.Address,
			City:      r.City,
			State:     r.State,
			Zip:       r.ZipCode,
			Lat:       r.Lat,
			Lng:       r.Lng,
			Category:  cat,
			Size:      r.Size,
			Value:     r.Value,
			LastSale:  model.Sale{Date: sale, Price: r.LastSalePrice},
			YearBuilt: r.YearBuilt,
			Owner:     o,
		})
	}
	return out, nil
}
