package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newCategorizeCommand(ctx *commandContext) *cobra.Command {
	var row int64

	cmd := &cobra.Command{
		Use:   "categorize",
		Short: "Assign a category to one record without settling approval",
		RunE: func(cmd *cobra.Command, args []string) error {
			if row <= 0 {
				return errors.New("--row is required")
			}
			env, err := ctx.openEnvironment()
			if err != nil {
				return err
			}
			defer env.Close()

			rec, err := env.processor().CategorizeOne(cmd.Context(), row)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Record %d categorized as %s\n", rec.Position, rec.Category)
			return nil
		},
	}

	cmd.Flags().Int64Var(&row, "row", 0, "Record position to categorize")
	return cmd
}
