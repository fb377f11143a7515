package filter

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/sells-group/property-intel/internal/model"
)

// Query parameter names accepted by ParseValues. They match the JSON field names.
const (
	ParamQuery       = "query"
	ParamCategory    = "propertyType"
	ParamValueMin    = "valueMin"
	ParamValueMax    = "valueMax"
	ParamSizeMin     = "sizeMin"
	ParamSizeMax     = "sizeMax"
	ParamNetWorthMin = "ownerNetWorthMin"
	ParamNetWorthMax = "ownerNetWorthMax"
	ParamState       = "state"
	ParamCity        = "city"
	ParamZip         = "zipCode"
)

// ParseValues builds a predicate from form or query values. Blank values are
// treated as absent. Non-numeric range values and unknown categories are
// rejected with a *model.ValidationError; nothing is silently coerced.
// Categories may repeat or be comma separated.
func ParseValues(v url.Values) (Predicate, error) {
	var pred Predicate
	var err error

	if q := strings.TrimSpace(v.Get(ParamQuery)); q != "" {
		pred.Query = &q
	}

	for _, raw := range v[ParamCategory] {
		for _, name := range strings.Split(raw, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			c, perr := model.ParseCategory(name)
			if perr != nil {
				return Predicate{}, perr
			}
			pred.Categories = append(pred.Categories, c)
		}
	}

	ints := []struct {
		param string
		dst   **int64
	}{
		{ParamValueMin, &pred.ValueMin},
		{ParamValueMax, &pred.ValueMax},
		{ParamSizeMin, &pred.SizeMin},
		{ParamSizeMax, &pred.SizeMax},
	}
	for _, f := range ints {
		if *f.dst, err = parseInt(v, f.param); err != nil {
			return Predicate{}, err
		}
	}

	if pred.NetWorthMin, err = parseFloat(v, ParamNetWorthMin); err != nil {
		return Predicate{}, err
	}
	if pred.NetWorthMax, err = parseFloat(v, ParamNetWorthMax); err != nil {
		return Predicate{}, err
	}

	pred.State = optString(v, ParamState)
	pred.City = optString(v, ParamCity)
	pred.Zip = optString(v, ParamZip)
	return pred, nil
}

// Values encodes pred back into query values, the inverse of ParseValues.
func (p Predicate) Values() url.Values {
	v := url.Values{}
	if p.Query != nil && *p.Query != "" {
		v.Set(ParamQuery, *p.Query)
	}
	for _, c := range p.Categories {
		v.Add(ParamCategory, string(c))
	}
	setInt := func(k string, x *int64) {
		if x != nil {
			v.Set(k, strconv.FormatInt(*x, 10))
		}
	}
	setFloat := func(k string, x *float64) {
		if x != nil {
			v.Set(k, strconv.FormatFloat(*x, 'f', -1, 64))
		}
	}
	setInt(ParamValueMin, p.ValueMin)
	setInt(ParamValueMax, p.ValueMax)
	setInt(ParamSizeMin, p.SizeMin)
	setInt(ParamSizeMax, p.SizeMax)
	setFloat(ParamNetWorthMin, p.NetWorthMin)
	setFloat(ParamNetWorthMax, p.NetWorthMax)
	for k, s := range map[string]*string{ParamState: p.State, ParamCity: p.City, ParamZip: p.Zip} {
		if s != nil {
			v.Set(k, *s)
		}
	}
	return v
}

func parseInt(v url.Values, key string) (*int64, error) {
	raw := strings.TrimSpace(v.Get(key))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, &model.ValidationError{Field: key, Reason: "not a whole number: " + raw}
	}
	return &n, nil
}

func parseFloat(v url.Values, key string) (*float64, error) {
	raw := strings.TrimSpace(v.Get(key))
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, &model.ValidationError{Field: key, Reason: "not a number: " + raw}
	}
	return &f, nil
}

// optString keeps the value as typed: exact-match fields are case sensitive.
func optString(v url.Values, key string) *string {
	raw := strings.TrimSpace(v.Get(key))
	if raw == "" {
		return nil
	}
	return &raw
}
