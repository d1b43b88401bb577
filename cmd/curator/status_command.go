package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"curator/internal/documents"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show corpus counts and partition contents",
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

			var pending, approved, rejected, linked int
			for _, rec := range all {
				switch {
				case rec.Approved:
					approved++
				case rec.Rejected:
					rejected++
				default:
					pending++
				}
				if rec.HasDocumentRef() && !documents.IsRemoteRef(rec.DocumentRef) {
					linked++
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, heading(out, "Corpus"))
			fmt.Fprintln(out, renderTable(
				[]string{"Records", "Pending", "Approved", "Rejected", "Linked files"},
				[][]string{{
					strconv.Itoa(len(all)),
					strconv.Itoa(pending),
					strconv.Itoa(approved),
					strconv.Itoa(rejected),
					strconv.Itoa(linked),
				}},
				[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight},
			))

			rows := make([][]string, 0, 3)
			for _, partition := range []documents.Partition{
				documents.PartitionPending,
				documents.PartitionApproved,
				documents.PartitionRejected,
			} {
				names, err := env.docs.List(partition)
				if err != nil {
					return err
				}
				rows = append(rows, []string{
					string(partition),
					strconv.Itoa(len(names)),
					env.docs.Dir(partition),
				})
			}
			fmt.Fprintln(out, heading(out, "Documents"))
			fmt.Fprintln(out, renderTable(
				[]string{"Partition", "Files", "Directory"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}
	return cmd
}
