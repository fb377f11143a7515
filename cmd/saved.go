package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/property-intel/internal/export"
)

var savedCmd = &cobra.Command{
	Use:   "saved",
	Short: "Manage saved searches",
}

var savedJSON bool

var savedListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved searches, oldest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := initEnv(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		list, err := env.Searches.List(cmd.Context())
		if err != nil {
			return err
		}
		if savedJSON {
			return writeJSON(cmd.OutOrStdout(), list)
		}
		formatSavedSearches(cmd.OutOrStdout(), list)
		return nil
	},
}

var savedSaveFlags predicateFlags

var savedSaveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "Save the given constraints under a name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pred, err := savedSaveFlags.predicate()
		if err != nil {
			return err
		}

		env, err := initEnv(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		saved, err := env.Searches.Save(cmd.Context(), args[0], pred, env.User)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), saved.ID)
		return nil
	},
}

var savedShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print one saved search as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		s, err := env.Searches.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), s)
	},
}

var savedDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved search. Unknown ids are ignored.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		return env.Searches.Delete(cmd.Context(), args[0], env.User)
	},
}

var savedExportOut string

var savedExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every saved search as YAML",
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := initEnv(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		list, err := env.Searches.List(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if savedExportOut != "" && savedExportOut != "-" {
			f, err := os.Create(savedExportOut)
			if err != nil {
				return eris.Wrap(err, "create export file")
			}
			defer f.Close()
			out = f
		}
		return export.WriteSavedSearchesYAML(out, list)
	},
}

var savedImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import saved searches from YAML, skipping ids already stored",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return eris.Wrap(err, "open import file")
		}
		defer f.Close()

		list, err := export.ReadSavedSearchesYAML(f)
		if err != nil {
			return err
		}

		env, err := initEnv(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		n, err := env.Store.ImportSavedSearches(cmd.Context(), list)
		if err != nil {
			return eris.Wrap(err, "import saved searches")
		}
		zap.L().Info("import complete",
			zap.Int("read", len(list)),
			zap.Int("added", n),
			zap.String("file", args[0]),
		)
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "imported %d of %d saved searches\n", n, len(list))
		return nil
	},
}

func init() {
	savedListCmd.Flags().BoolVar(&savedJSON, "json", false, "print JSON instead of a table")
	savedSaveFlags.register(savedSaveCmd)
	savedExportCmd.Flags().StringVarP(&savedExportOut, "out", "o", "", "output file (default stdout)")

	savedCmd.AddCommand(savedListCmd, savedSaveCmd, savedShowCmd, savedDeleteCmd, savedExportCmd, savedImportCmd)
	rootCmd.AddCommand(savedCmd)
}
