// Package export implements the export command: re-export CSV files from an
// existing run database.
package export

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/tikspyder/cmd/common"
	"github.com/jonesrussell/tikspyder/internal/config"
)

// Command returns the export command.
func Command() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export CSV files from an existing run database",
		Long: `Reads the SQLite database under the given run directory and writes one
CSV file per record table next to it. Useful for regenerating exports after
manual database edits or a later library update.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := common.NewCommandDeps()
			if err != nil {
				return fmt.Errorf("initialize dependencies: %w", err)
			}
			defer func() { _ = deps.Logger.Sync() }()

			if output == "" {
				return fmt.Errorf("--output is required")
			}
			outputDir := config.SanitizeOutput(output)

			store, closeStore, err := common.OpenStore(cmd.Context(), deps, outputDir)
			if err != nil {
				return err
			}
			defer func() { _ = closeStore() }()

			if err := store.ExportCSV(cmd.Context(), outputDir); err != nil {
				return fmt.Errorf("export csv: %w", err)
			}

			fmt.Printf("CSV files written to %s\n", outputDir)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "run directory holding the database")

	return cmd
}
