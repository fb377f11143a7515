package main

import (
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/property-intel/internal/filter"
	"github.com/sells-group/property-intel/internal/model"
	"github.com/sells-group/property-intel/internal/search"
)

// predicateFlags mirrors the search form. Values stay strings so they go
// through the same parser as HTTP query parameters.
type predicateFlags struct {
	query       string
	categories  []string
	valueMin    string
	valueMax    string
	sizeMin     string
	sizeMax     string
	netWorthMin string
	netWorthMax string
	state       string
	city        string
	zip         string
}

func (f *predicateFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.query, "query", "q", "", "free text over address, city, state, zip and owner")
	fs.StringSliceVar(&f.categories, "type", nil, "property types (repeat or comma separate)")
	fs.StringVar(&f.valueMin, "value-min", "", "minimum assessed value")
	fs.StringVar(&f.valueMax, "value-max", "", "maximum assessed value")
	fs.StringVar(&f.sizeMin, "size-min", "", "minimum size in square feet")
	fs.StringVar(&f.sizeMax, "size-max", "", "maximum size in square feet")
	fs.StringVar(&f.netWorthMin, "net-worth-min", "", "minimum owner net worth")
	fs.StringVar(&f.netWorthMax, "net-worth-max", "", "maximum owner net worth")
	fs.StringVar(&f.state, "state", "", "exact state code")
	fs.StringVar(&f.city, "city", "", "exact city name")
	fs.StringVar(&f.zip, "zip", "", "exact zip code")
}

func (f *predicateFlags) values() url.Values {
	v := url.Values{}
	set := func(key, val string) {
		if val != "" {
			v.Set(key, val)
		}
	}
	set(filter.ParamQuery, f.query)
	if len(f.categories) > 0 {
		v.Set(filter.ParamCategory, strings.Join(f.categories, ","))
	}
	set(filter.ParamValueMin, f.valueMin)
	set(filter.ParamValueMax, f.valueMax)
	set(filter.ParamSizeMin, f.sizeMin)
	set(filter.ParamSizeMax, f.sizeMax)
	set(filter.ParamNetWorthMin, f.netWorthMin)
	set(filter.ParamNetWorthMax, f.netWorthMax)
	set(filter.ParamState, f.state)
	set(filter.ParamCity, f.city)
	set(filter.ParamZip, f.zip)
	return v
}

func (f *predicateFlags) predicate() (filter.Predicate, error) {
	return filter.ParseValues(f.values())
}

var (
	searchFlags  predicateFlags
	searchSort   string
	searchLimit  int
	searchOffset int
	searchJSON   bool
	searchSaved  string
	searchSaveAs string
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search property records",
	Long:  "Filters property records by the given constraints. --saved replays a saved search instead; --save-as stores the constraints used.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx, cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		ctrl := search.New(env.Records, env.Searches, env.User)
		ctrl.SetSort(env.Sort)
		if searchSort != "" {
			key, err := filter.ParseSortKey(searchSort)
			if err != nil {
				return err
			}
			ctrl.SetSort(key)
		}

		var results []model.Property
		if searchSaved != "" {
			if results, err = ctrl.LoadSaved(ctx, searchSaved); err != nil {
				return err
			}
		} else {
			pred, err := searchFlags.predicate()
			if err != nil {
				return err
			}
			ctrl.Set(pred)
			results = ctrl.Apply()
		}

		if searchSaveAs != "" {
			saved, err := ctrl.SaveCurrent(ctx, searchSaveAs)
			if err != nil {
				return eris.Wrap(err, "save search")
			}
			cmd.PrintErrf("saved search %s (%s)\n", saved.Name, saved.ID)
		}

		page := filter.Paginate(results, searchOffset, searchLimit)
		if searchJSON {
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"total":   len(results),
				"results": page,
				"facets":  ctrl.Facets(),
			})
		}
		formatProperties(cmd.OutOrStdout(), page, len(results))
		return nil
	},
}

func init() {
	searchFlags.register(searchCmd)
	searchCmd.Flags().StringVar(&searchSort, "sort", "", "sort key: value_desc, value_asc, recent_sale, net_worth_desc")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 25, "maximum rows to print (0 for all)")
	searchCmd.Flags().IntVar(&searchOffset, "offset", 0, "rows to skip")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "print JSON instead of a table")
	searchCmd.Flags().StringVar(&searchSaved, "saved", "", "replay the saved search with this id")
	searchCmd.Flags().StringVar(&searchSaveAs, "save-as", "", "save the constraints under this name")
	rootCmd.AddCommand(searchCmd)
}
