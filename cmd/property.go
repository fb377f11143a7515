package main

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/property-intel/internal/activity"
	"github.com/sells-group/property-intel/internal/model"
)

var propertyJSON bool

var propertyCmd = &cobra.Command{
	Use:   "property <id>",
	Short: "Show one property with owner provenance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		p, ok := env.Records.GetByID(args[0])
		if !ok {
			return &model.NotFoundError{Entity: "property", ID: args[0]}
		}

		e := activity.NewEntry(env.User, model.ActionViewedProperty,
			"Viewed property details for "+p.Street, time.Now())
		if err := env.Recorder.RecordActivity(cmd.Context(), e); err != nil {
			zap.L().Warn("property: record activity failed", zap.Error(err))
		}

		if propertyJSON {
			return writeJSON(cmd.OutOrStdout(), p)
		}
		formatProperty(cmd.OutOrStdout(), p)
		return nil
	},
}

func init() {
	propertyCmd.Flags().BoolVar(&propertyJSON, "json", false, "print JSON")
	rootCmd.AddCommand(propertyCmd)
}
