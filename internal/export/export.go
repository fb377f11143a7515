// Package export writes search results and saved searches to files.
package export

import (
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/property-intel/internal/model"
	"github.com/sells-group/property-intel/internal/records"
	"github.com/sells-group/property-intel/internal/savedsearch"
)

// Format is an export file type.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat resolves a --format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatXLSX:
		return f, nil
	default:
		return "", &model.ValidationError{Field: "format", Reason: "unsupported format " + s}
	}
}

// Write dispatches to the writer for f.
func Write(w io.Writer, f Format, props []model.Property) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, props)
	case FormatXLSX:
		return WriteXLSX(w, props)
	default:
		return eris.Errorf("export: unsupported format %q", f)
	}
}

// WriteCSV writes props in the tabular layout records.LoadCSV reads back.
// The header is written even when props is empty.
func WriteCSV(w io.Writer, props []model.Property) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)
	if err := enc.EncodeHeader(records.Row{}); err != nil {
		return eris.Wrap(err, "export: csv header")
	}
	for _, p := range props {
		if err := enc.Encode(records.ToRow(p)); err != nil {
			return eris.Wrapf(err, "export: csv row %s", p.ID)
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush csv")
}

// WriteXLSX writes a single-sheet workbook with the same columns as WriteCSV.
func WriteXLSX(w io.Writer, props []model.Property) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Properties")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range records.RowHeader {
		header.AddCell().SetString(h)
	}

	for _, p := range props {
		r := records.ToRow(p)
		row := sheet.AddRow()
		row.AddCell().SetString(r.ID)
		row.AddCell().SetString(r.Address)
		row.AddCell().SetString(r.City)
		row.AddCell().SetString(r.State)
		row.AddCell().SetString(r.ZipCode)
		row.AddCell().SetFloat(r.Lat)
		row.AddCell().SetFloat(r.Lng)
		row.AddCell().SetString(r.PropertyType)
		row.AddCell().SetInt64(r.Size)
		row.AddCell().SetInt64(r.Value)
		row.AddCell().SetString(r.LastSaleDate)
		row.AddCell().SetInt64(r.LastSalePrice)
		row.AddCell().SetInt(r.YearBuilt)
		row.AddCell().SetString(r.OwnerID)
		row.AddCell().SetString(r.OwnerName)
		row.AddCell().SetString(r.OwnerType)
		row.AddCell().SetFloat(r.OwnerNetWorth)
		row.AddCell().SetFloat(r.OwnerConfidence)
	}

	return eris.Wrap(f.Write(w), "export: write workbook")
}

type savedSearchFile struct {
	Searches []savedsearch.SavedSearch `yaml:"searches"`
}

// WriteSavedSearchesYAML writes searches as a YAML document.
func WriteSavedSearchesYAML(w io.Writer, searches []savedsearch.SavedSearch) error {
	if searches == nil {
		searches = []savedsearch.SavedSearch{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(savedSearchFile{Searches: searches}); err != nil {
		return eris.Wrap(err, "export: encode saved searches")
	}
	return eris.Wrap(enc.Close(), "export: close yaml encoder")
}

// ReadSavedSearchesYAML is the inverse of WriteSavedSearchesYAML. Entries
// must carry an id, a name and only known categories.
func ReadSavedSearchesYAML(r io.Reader) ([]savedsearch.SavedSearch, error) {
	var doc savedSearchFile
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return []savedsearch.SavedSearch{}, nil
		}
		return nil, eris.Wrap(err, "export: decode saved searches")
	}

	for i, s := range doc.Searches {
		switch {
		case strings.TrimSpace(s.ID) == "":
			return nil, &model.ValidationError{Field: "id", Reason: "saved search " + strconv.Itoa(i+1) + " has no id"}
		case strings.TrimSpace(s.Name) == "":
			return nil, &model.ValidationError{Field: "name", Reason: "saved search " + s.ID + " has no name"}
		}
		if err := s.Filters.Validate(); err != nil {
			var ve *model.ValidationError
			if errors.As(err, &ve) {
				ve.Reason = "saved search " + s.ID + ": " + ve.Reason
			}
			return nil, err
		}
	}
	if doc.Searches == nil {
		doc.Searches = []savedsearch.SavedSearch{}
	}
	return doc.Searches, nil
}
