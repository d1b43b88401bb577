package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import DIR",
		Short: "Bulk-import a folder of PDFs as pending records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := ctx.openEnvironment()
			if err != nil {
				return err
			}
			defer env.Close()

			summary, err := env.importer().Import(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Import finished: %d imported, %d duplicates skipped, %d failed\n",
				summary.Imported, summary.Skipped, summary.Failed)
			return nil
		},
	}
	return cmd
}
