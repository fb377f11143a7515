package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/property-intel/internal/activity"
	"github.com/sells-group/property-intel/internal/filter"
	"github.com/sells-group/property-intel/internal/model"
	"github.com/sells-group/property-intel/internal/savedsearch"
)

var printer = message.NewPrinter(language.English)

// money renders whole dollars with thousands separators.
func money(v int64) string {
	return printer.Sprintf("$%d", v)
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatProperties writes a result table followed by a count line.
func formatProperties(out io.Writer, props []model.Property, total int) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tADDRESS\tCITY\tST\tTYPE\tSIZE\tVALUE\tOWNER")
	_, _ = fmt.Fprintln(w, "--\t-------\t----\t--\t----\t----\t-----\t-----")
	for _, p := range props {
		addr := p.Street
		if len(addr) > 30 {
			addr = addr[:27] + "..."
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			p.ID,
			addr,
			p.City,
			p.State,
			p.Category,
			printer.Sprintf("%d sqft", p.Size),
			money(p.Value),
			p.OwnerName(),
		)
	}
	_ = w.Flush()
	_, _ = fmt.Fprintf(out, "\n%d of %d properties\n", len(props), total)
}

// formatProperty writes one record as labelled lines, followed by the
// owner's provenance entries.
func formatProperty(out io.Writer, p model.Property) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "ID\t%s\n", p.ID)
	_, _ = fmt.Fprintf(w, "Address\t%s, %s, %s %s\n", p.Street, p.City, p.State, p.Zip)
	_, _ = fmt.Fprintf(w, "Type\t%s\n", p.Category)
	_, _ = fmt.Fprintf(w, "Size\t%s\n", printer.Sprintf("%d sqft", p.Size))
	_, _ = fmt.Fprintf(w, "Value\t%s\n", money(p.Value))
	if !p.LastSale.Date.IsZero() {
		_, _ = fmt.Fprintf(w, "Last sale\t%s on %s\n", money(p.LastSale.Price), p.LastSale.Date.Format("2006-01-02"))
	}
	if p.YearBuilt > 0 {
		_, _ = fmt.Fprintf(w, "Year built\t%d\n", p.YearBuilt)
	}
	if len(p.Features) > 0 {
		_, _ = fmt.Fprintf(w, "Features\t%s\n", strings.Join(p.Features, ", "))
	}
	if o := p.Owner; o != nil {
		_, _ = fmt.Fprintf(w, "Owner\t%s (%s)\n", o.Name, o.Kind)
		_, _ = fmt.Fprintf(w, "Net worth\t%s\n", money(int64(o.NetWorth)))
		_, _ = fmt.Fprintf(w, "Confidence\t%.0f%%\n", o.Confidence*100)
		if best, ok := o.BestSource(); ok {
			_, _ = fmt.Fprintf(w, "Best source\t%s (%.0f%%)\n", best.Name, best.Confidence*100)
		}
	}
	_ = w.Flush()

	if p.Owner == nil || len(p.Owner.Sources) == 0 {
		return
	}
	_, _ = fmt.Fprintln(out)
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SOURCE\tUPDATED\tCONFIDENCE")
	for _, s := range p.Owner.Sources {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%.0f%%\n", s.Name, s.LastUpdated.Format("2006-01-02"), s.Confidence*100)
	}
	_ = w.Flush()
}

// formatSavedSearches writes one row per saved search.
func formatSavedSearches(out io.Writer, list []savedsearch.SavedSearch) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tCREATED\tBY\tFILTERS")
	_, _ = fmt.Fprintln(w, "--\t----\t-------\t--\t-------")
	for _, s := range list {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			s.ID,
			s.Name,
			s.CreatedAt.Format("2006-01-02 15:04"),
			s.CreatedBy,
			describe(s.Filters),
		)
	}
	_ = w.Flush()
}

// describe summarises the active constraints of p in one line.
func describe(p filter.Predicate) string {
	if p.IsEmpty() {
		return "(none)"
	}
	var parts []string
	if p.Query != nil && *p.Query != "" {
		parts = append(parts, fmt.Sprintf("query=%q", *p.Query))
	}
	if len(p.Categories) > 0 {
		names := make([]string, len(p.Categories))
		for i, c := range p.Categories {
			names[i] = string(c)
		}
		parts = append(parts, "type="+strings.Join(names, "|"))
	}
	if r := rangeText(p.ValueMin, p.ValueMax, money); r != "" {
		parts = append(parts, "value="+r)
	}
	if r := rangeText(p.SizeMin, p.SizeMax, func(v int64) string { return printer.Sprintf("%d", v) }); r != "" {
		parts = append(parts, "size="+r)
	}
	if r := rangeText(p.NetWorthMin, p.NetWorthMax, func(v float64) string { return money(int64(v)) }); r != "" {
		parts = append(parts, "netWorth="+r)
	}
	for _, f := range []struct {
		name string
		v    *string
	}{{"state", p.State}, {"city", p.City}, {"zip", p.Zip}} {
		if f.v != nil {
			parts = append(parts, f.name+"="+*f.v)
		}
	}
	return strings.Join(parts, " ")
}

func rangeText[T int64 | float64](lo, hi *T, format func(T) string) string {
	switch {
	case lo != nil && hi != nil:
		return format(*lo) + ".." + format(*hi)
	case lo != nil:
		return ">=" + format(*lo)
	case hi != nil:
		return "<=" + format(*hi)
	default:
		return ""
	}
}

// formatActivity writes entries, optionally under day headings.
func formatActivity(out io.Writer, entries []model.ActivityEntry, byDay bool) {
	if !byDay {
		writeActivityTable(out, entries)
		return
	}
	for i, g := range activity.GroupByDay(entries, nil) {
		if i > 0 {
			_, _ = fmt.Fprintln(out)
		}
		_, _ = fmt.Fprintln(out, g.Day.Format("Monday, January 2, 2006"))
		writeActivityTable(out, g.Entries)
	}
}

func writeActivityTable(out io.Writer, entries []model.ActivityEntry) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TIME\tUSER\tROLE\tACTION\tDETAILS")
	for _, e := range entries {
		user := e.UserName
		if user == "" {
			user = e.UserID
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			e.Timestamp.UTC().Format("2006-01-02 15:04:05"),
			user,
			e.UserRole,
			e.Action,
			e.Details,
		)
	}
	_ = w.Flush()
}
