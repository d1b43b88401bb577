package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var row int64
	var workers int

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Run the curation pipeline over pending records",
		Long: "Classifies, extracts metadata, and settles approval for every pending " +
			"record with a resolvable document, or for a single row with --row.",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := ctx.openEnvironment()
			if err != nil {
				return err
			}
			defer env.Close()

			if workers > 0 {
				env.cfg.Batch.Workers = workers
			}
			coordinator := env.coordinator()
			out := cmd.OutOrStdout()

			if row > 0 {
				rec, err := coordinator.RunSingle(cmd.Context(), row)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Record %d processed: approved=%v rejected=%v\n", rec.Position, rec.Approved, rec.Rejected)
				if rec.Feedback != "" {
					fmt.Fprintf(out, "Feedback: %s\n", rec.Feedback)
				}
				return nil
			}

			summary, err := coordinator.RunBatch(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Batch finished: %d processed, %d errors\n", summary.Processed, summary.Errors)
			return nil
		},
	}

	cmd.Flags().Int64Var(&row, "row", 0, "Process a single record position")
	cmd.Flags().IntVar(&workers, "workers", 0, "Override the configured worker count")
	return cmd
}
