package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"curator/internal/documents"
)

func newApproveCommand(ctx *commandContext) *cobra.Command {
	var row int64

	cmd := &cobra.Command{
		Use:   "approve",
		Short: "Manually approve one record",
		Long: "Marks the record approved and copies its document into the approved " +
			"partition. Unlike pipeline approval the original file stays in place, " +
			"so a later reset does not need to restore it.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if row <= 0 {
				return errors.New("--row is required")
			}
			env, err := ctx.openEnvironment()
			if err != nil {
				return err
			}
			defer env.Close()

			rec, err := env.store.Get(cmd.Context(), row)
			if err != nil {
				return err
			}
			if !rec.HasDocumentRef() {
				return fmt.Errorf("record %d has no local document to approve", row)
			}
			if documents.IsRemoteRef(rec.DocumentRef) {
				return fmt.Errorf("record %d still references a remote URL; resolve it first", row)
			}

			partition, found := env.docs.Locate(rec.DocumentRef)
			if !found {
				return fmt.Errorf("document %q not found in any partition", rec.DocumentRef)
			}
			if partition != documents.PartitionApproved {
				if err := env.docs.CopyTo(rec.DocumentRef, partition, documents.PartitionApproved); err != nil {
					return fmt.Errorf("copy document: %w", err)
				}
			}

			rec.Approve()
			if err := env.store.Set(cmd.Context(), rec); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Record %d approved; document copied to %s\n",
				row, env.docs.Dir(documents.PartitionApproved))
			return nil
		},
	}

	cmd.Flags().Int64Var(&row, "row", 0, "Record position to approve")
	return cmd
}
