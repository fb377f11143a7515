package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/sells-group/property-intel/internal/activity"
)

var (
	activityFilter activity.Filter
	activityDays   int
	activityByDay  bool
	activityJSON   bool
)

var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Show the activity log, newest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := initEnv(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		all, err := env.Store.ListActivity(cmd.Context())
		if err != nil {
			return err
		}

		f := activityFilter
		if f.Since, err = activity.Days(activityDays); err != nil {
			return err
		}
		entries := activity.Apply(all, f, time.Now())

		if activityJSON {
			return writeJSON(cmd.OutOrStdout(), entries)
		}
		formatActivity(cmd.OutOrStdout(), entries, activityByDay)
		return nil
	},
}

func init() {
	activityCmd.Flags().StringVarP(&activityFilter.Query, "query", "q", "", "text over user name, action and details")
	activityCmd.Flags().StringVar(&activityFilter.Action, "action", "", "exact action, e.g. \"Viewed Property\"")
	activityCmd.Flags().StringVar(&activityFilter.UserID, "user", "", "exact user id")
	activityCmd.Flags().IntVar(&activityDays, "days", 0, "only the last N days (0 for all)")
	activityCmd.Flags().BoolVar(&activityByDay, "by-day", false, "group entries under day headings")
	activityCmd.Flags().BoolVar(&activityJSON, "json", false, "print JSON instead of a table")
	rootCmd.AddCommand(activityCmd)
}
