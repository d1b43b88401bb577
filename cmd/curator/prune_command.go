package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPruneCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete records that have no document reference",
		Long: "Removes every record whose document reference is empty. Later records " +
			"shift up one position, matching row deletion in a spreadsheet.",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := ctx.openEnvironment()
			if err != nil {
				return err
			}
			defer env.Close()

			all, err := env.store.List(cmd.Context())
			if err != nil {
				return err
			}
			positions := make([]int64, 0)
			for _, rec := range all {
				if !rec.HasDocumentRef() {
					positions = append(positions, rec.Position)
				}
			}
			out := cmd.OutOrStdout()
			if len(positions) == 0 {
				fmt.Fprintln(out, "Nothing to prune.")
				return nil
			}
			if !force {
				fmt.Fprintf(out, "%d record(s) have no document reference; pass --force to delete them.\n", len(positions))
				return nil
			}

			// Delete from the bottom up so earlier positions stay valid
			// while later rows shift.
			for i := len(positions) - 1; i >= 0; i-- {
				if err := env.store.Delete(cmd.Context(), positions[i]); err != nil {
					return err
				}
			}
			fmt.Fprintf(out, "Pruned %d record(s).\n", len(positions))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Actually delete the records")
	return cmd
}
