package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/property-intel/internal/activity"
	"github.com/sells-group/property-intel/internal/export"
	"github.com/sells-group/property-intel/internal/filter"
	"github.com/sells-group/property-intel/internal/model"
)

var (
	exportFlags  predicateFlags
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export matching properties as CSV or XLSX",
	RunE: func(cmd *cobra.Command, _ []string) error {
		format, err := export.ParseFormat(exportFormat)
		if err != nil {
			return err
		}
		pred, err := exportFlags.predicate()
		if err != nil {
			return err
		}

		env, err := initEnv(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		results := filter.Search(env.Records.GetAll(), pred, env.Sort)

		var out io.Writer = cmd.OutOrStdout()
		if exportOut != "" && exportOut != "-" {
			f, err := os.Create(exportOut)
			if err != nil {
				return eris.Wrap(err, "create export file")
			}
			defer f.Close()
			out = f
		}
		if err := export.Write(out, format, results); err != nil {
			return err
		}

		e := activity.NewEntry(env.User, model.ActionExportedData,
			fmt.Sprintf("Exported %d properties as %s", len(results), format), time.Now())
		if err := env.Recorder.RecordActivity(cmd.Context(), e); err != nil {
			zap.L().Warn("export: record activity failed", zap.Error(err))
		}
		return nil
	},
}

func init() {
	exportFlags.register(exportCmd)
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "csv or xlsx")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default stdout)")
	rootCmd.AddCommand(exportCmd)
}
