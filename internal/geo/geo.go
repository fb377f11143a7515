// Package geo backs the map view: bounding boxes, viewport filtering and
// GeoJSON markers for property records.
package geo

import (
	"strconv"
	"strings"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/property-intel/internal/model"
)

// BBox is a lng/lat rectangle. Boxes crossing the antimeridian are not
// supported.
type BBox struct {
	MinLng float64 `json:"minLng"`
	MinLat float64 `json:"minLat"`
	MaxLng float64 `json:"maxLng"`
	MaxLat float64 `json:"maxLat"`
}

// ParseBBox parses "minLng,minLat,maxLng,maxLat".
func ParseBBox(s string) (BBox, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return BBox{}, &model.ValidationError{Field: "bbox", Reason: "want minLng,minLat,maxLng,maxLat"}
	}
	var v [4]float64
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return BBox{}, &model.ValidationError{Field: "bbox", Reason: "not a number: " + strings.TrimSpace(part)}
		}
		v[i] = f
	}
	b := BBox{MinLng: v[0], MinLat: v[1], MaxLng: v[2], MaxLat: v[3]}
	if err := b.Validate(); err != nil {
		return BBox{}, err
	}
	return b, nil
}

// String renders b in the form ParseBBox accepts, with the shortest exact
// decimal for each coordinate.
func (b BBox) String() string {
	parts := make([]string, 4)
	for i, v := range []float64{b.MinLng, b.MinLat, b.MaxLng, b.MaxLat} {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strings.Join(parts, ",")
}

// Validate checks ordering and coordinate ranges.
func (b BBox) Validate() error {
	switch {
	case b.MinLng > b.MaxLng || b.MinLat > b.MaxLat:
		return &model.ValidationError{Field: "bbox", Reason: "min exceeds max"}
	case b.MinLng < -180 || b.MaxLng > 180:
		return &model.ValidationError{Field: "bbox", Reason: "longitude outside [-180,180]"}
	case b.MinLat < -90 || b.MaxLat > 90:
		return &model.ValidationError{Field: "bbox", Reason: "latitude outside [-90,90]"}
	}
	return nil
}

// Contains reports whether the point lies inside b, edges included.
func (b BBox) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

// Pad grows b by fraction of its span on every side, clamped to valid
// coordinates. A degenerate box grows by a fixed fraction of a degree.
func (b BBox) Pad(fraction float64) BBox {
	dx := (b.MaxLng - b.MinLng) * fraction
	dy := (b.MaxLat - b.MinLat) * fraction
	if dx == 0 {
		dx = fraction
	}
	if dy == 0 {
		dy = fraction
	}
	return BBox{
		MinLng: max(b.MinLng-dx, -180),
		MinLat: max(b.MinLat-dy, -90),
		MaxLng: min(b.MaxLng+dx, 180),
		MaxLat: min(b.MaxLat+dy, 90),
	}
}

// Center returns the midpoint as lat, lng.
func (b BBox) Center() (float64, float64) {
	return (b.MinLat + b.MaxLat) / 2, (b.MinLng + b.MaxLng) / 2
}

// Within returns the records inside b, preserving input order.
func Within(props []model.Property, b BBox) []model.Property {
	out := make([]model.Property, 0, len(props))
	for _, p := range props {
		if b.Contains(p.Lat, p.Lng) {
			out = append(out, p)
		}
	}
	return out
}

func point(p model.Property) *geom.Point {
	return geom.NewPointFlat(geom.XY, []float64{p.Lng, p.Lat})
}

// Bounds returns the smallest box holding every record. ok is false for an
// empty input.
func Bounds(props []model.Property) (BBox, bool) {
	if len(props) == 0 {
		return BBox{}, false
	}
	bounds := geom.NewBounds(geom.XY)
	for _, p := range props {
		bounds.Extend(point(p))
	}
	return fromBounds(bounds), true
}

func fromBounds(b *geom.Bounds) BBox {
	return BBox{MinLng: b.Min(0), MinLat: b.Min(1), MaxLng: b.Max(0), MaxLat: b.Max(1)}
}

func (b BBox) toBounds() *geom.Bounds {
	return geom.NewBounds(geom.XY).Set(b.MinLng, b.MinLat, b.MaxLng, b.MaxLat)
}

// FeatureCollection renders one point marker per record. Each feature
// carries the fields the map popup shows.
func FeatureCollection(props []model.Property) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(props))}
	for _, p := range props {
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       p.ID,
			Geometry: point(p),
			Properties: map[string]any{
				"address":      p.Street,
				"city":         p.City,
				"state":        p.State,
				"propertyType": string(p.Category),
				"value":        p.Value,
				"owner":        p.OwnerName(),
			},
		})
	}
	if b, ok := Bounds(props); ok {
		fc.BBox = b.toBounds()
	}
	return fc
}
