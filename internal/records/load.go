package records

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/property-intel/internal/model"
)

// LoadJSON reads a JSON array of properties with embedded owners.
func LoadJSON(path string) ([]model.Property, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "records: read %s", path)
	}
	var props []model.Property
	if err := json.Unmarshal(data, &props); err != nil {
		return nil, eris.Wrapf(err, "records: decode %s", path)
	}
	return props, nil
}

// LoadCSV reads a CSV file with a RowHeader header line.
func LoadCSV(path string) ([]model.Property, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "records: read %s", path)
	}
	return decodeCSV(data, path)
}

func decodeCSV(data []byte, path string) ([]model.Property, error) {
	var rows []Row
	if err := csvutil.Unmarshal(data, &rows); err != nil {
		return nil, eris.Wrapf(err, "records: decode %s", path)
	}
	props, err := FromRows(rows)
	if err != nil {
		return nil, eris.Wrapf(err, "records: %s", path)
	}
	return props, nil
}

// LoadXLSX reads the first sheet of a workbook laid out like the CSV format.
func LoadXLSX(path string) ([]model.Property, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "records: open workbook %s", path)
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("records: workbook %s has no sheets", path)
	}

	// Re-encode the sheet as CSV so both formats share one decoder.
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, row := range f.Sheets[0].Rows {
		cells := make([]string, len(row.Cells))
		for i, c := range row.Cells {
			cells[i] = strings.TrimSpace(c.String())
		}
		if isBlank(cells) {
			continue
		}
		if err := w.Write(cells); err != nil {
			return nil, eris.Wrap(err, "records: buffer sheet")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, eris.Wrap(err, "records: buffer sheet")
	}
	return decodeCSV(buf.Bytes(), path)
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}

// Shapefile attribute names. DBF limits field names to ten characters.
const (
	ShpID         = "ID"
	ShpAddress    = "ADDRESS"
	ShpCity       = "CITY"
	ShpState      = "STATE"
	ShpZip        = "ZIP"
	ShpType       = "PROP_TYPE"
	ShpSize       = "SIZE"
	ShpValue      = "VALUE"
	ShpSaleDate   = "SALE_DATE"
	ShpSalePrice  = "SALE_PRICE"
	ShpYearBuilt  = "YEAR_BUILT"
	ShpOwnerID    = "OWNER_ID"
	ShpOwnerName  = "OWNER_NAME"
	ShpOwnerType  = "OWNER_TYPE"
	ShpOwnerWorth = "OWNER_NW"
	ShpOwnerConf  = "OWNER_CONF"
)

// LoadShapefile reads a point shapefile. Point X/Y supply lng/lat; the
// DBF attributes supply everything else. Non-point shapes are skipped.
func LoadShapefile(path string) ([]model.Property, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "records: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	fieldIdx := map[string]int{}
	for i, f := range reader.Fields() {
		name := strings.TrimRight(f.String(), "\x00")
		fieldIdx[strings.ToUpper(strings.TrimSpace(name))] = i
	}
	attr := func(name string) string {
		i, ok := fieldIdx[name]
		if !ok {
			return ""
		}
		return strings.TrimSpace(strings.TrimRight(reader.Attribute(i), "\x00"))
	}

	var rows []Row
	skipped := 0
	for reader.Next() {
		n, shape := reader.Shape()
		pt, ok := shape.(*shp.Point)
		if !ok {
			skipped++
			continue
		}
		r := Row{
			ID:           attr(ShpID),
			Address:      attr(ShpAddress),
			City:         attr(ShpCity),
			State:        attr(ShpState),
			ZipCode:      attr(ShpZip),
			Lat:          pt.Y,
			Lng:          pt.X,
			PropertyType: attr(ShpType),
			LastSaleDate: attr(ShpSaleDate),
			OwnerID:      attr(ShpOwnerID),
			OwnerName:    attr(ShpOwnerName),
			OwnerType:    attr(ShpOwnerType),
		}
		var perr error
		r.Size, perr = parseIntAttr(ShpSize, attr(ShpSize), perr)
		r.Value, perr = parseIntAttr(ShpValue, attr(ShpValue), perr)
		r.LastSalePrice, perr = parseIntAttr(ShpSalePrice, attr(ShpSalePrice), perr)
		year, perr := parseIntAttr(ShpYearBuilt, attr(ShpYearBuilt), perr)
		r.YearBuilt = int(year)
		r.OwnerNetWorth, perr = parseFloatAttr(ShpOwnerWorth, attr(ShpOwnerWorth), perr)
		r.OwnerConfidence, perr = parseFloatAttr(ShpOwnerConf, attr(ShpOwnerConf), perr)
		if perr != nil {
			return nil, eris.Wrapf(perr, "records: %s record %d", path, n)
		}
		rows = append(rows, r)
	}

	if skipped > 0 {
		zap.L().Debug("records: skipped non-point shapes",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}

	props, err := FromRows(rows)
	if err != nil {
		return nil, eris.Wrapf(err, "records: %s", path)
	}
	return props, nil
}

func parseIntAttr(name, s string, prev error) (int64, error) {
	if prev != nil || s == "" {
		return 0, prev
	}
	// DBF numeric fields may carry a decimal part.
	if strings.Contains(s, ".") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, eris.Errorf("attribute %s: %q is not a number", name, s)
		}
		return int64(f), nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, eris.Errorf("attribute %s: %q is not an integer", name, s)
	}
	return v, nil
}

func parseFloatAttr(name, s string, prev error) (float64, error) {
	if prev != nil || s == "" {
		return 0, prev
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, eris.Errorf("attribute %s: %q is not a number", name, s)
	}
	return v, nil
}

// LoadFile picks a loader by file extension.
func LoadFile(path string) ([]model.Property, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return LoadJSON(path)
	case ".csv":
		return LoadCSV(path)
	case ".xlsx":
		return LoadXLSX(path)
	case ".shp":
		return LoadShapefile(path)
	default:
		return nil, eris.Errorf("records: unsupported file type %q", filepath.Ext(path))
	}
}

// LoadFiles loads every path concurrently and concatenates the results in
// path order. The first failure cancels the remaining loads.
func LoadFiles(ctx context.Context, paths []string) ([]model.Property, error) {
	results := make([][]model.Property, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return eris.Wrap(err, "records: load cancelled")
			}
			props, err := LoadFile(path)
			if err != nil {
				return err
			}
			results[i] = props
			zap.L().Debug("records: loaded file",
				zap.String("path", path),
				zap.Int("records", len(props)),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []model.Property
	for _, r := range results {
		out = append(out, r...)
	}
	return out, nil
}
