package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newReconcileCommand(ctx *commandContext) *cobra.Command {
	var sweep bool
	var clear bool
	var correlateFlag bool
	var sniff bool
	var apply bool

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Audit and repair record-to-document links",
		Long: "Reports records with missing, remote, or dangling document references. " +
			"--sweep deletes non-PDF files from the pending partition, --clear blanks " +
			"remote and dangling references, --correlate matches unlinked records to " +
			"unclaimed files, --sniff-doi recovers DOIs from document text. " +
			"Correlation and DOI repairs are dry-run unless --apply is set.",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := ctx.openEnvironment()
			if err != nil {
				return err
			}
			defer env.Close()

			reconciler := env.reconciler()
			out := cmd.OutOrStdout()

			issues, err := reconciler.CheckLinks(cmd.Context())
			if err != nil {
				return err
			}
			if len(issues) == 0 {
				fmt.Fprintln(out, "All document references are valid.")
			} else {
				rows := make([][]string, 0, len(issues))
				for _, issue := range issues {
					rows = append(rows, []string{
						strconv.FormatInt(issue.Position, 10),
						issue.Title,
						issue.Ref,
						string(issue.Problem),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Row", "Title", "Reference", "Problem"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
				))
			}

			if sweep {
				removed, err := reconciler.SweepInvalid(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Swept %d invalid file(s).\n", len(removed))
				for _, name := range removed {
					fmt.Fprintf(out, "  removed %s\n", name)
				}
			}

			if clear {
				cleared, err := reconciler.ClearBroken(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Cleared %d broken reference(s).\n", len(cleared))
				for _, issue := range cleared {
					fmt.Fprintf(out, "  row %d: %s (%s)\n", issue.Position, issue.Ref, issue.Problem)
				}
			}

			if correlateFlag {
				relinks, err := reconciler.CorrelateMissing(cmd.Context(), apply)
				if err != nil {
					return err
				}
				if len(relinks) == 0 {
					fmt.Fprintln(out, "No correlation candidates found.")
				} else {
					rows := make([][]string, 0, len(relinks))
					for _, relink := range relinks {
						note := string(relink.Method)
						if relink.Ambiguous {
							note += " (ambiguous)"
						}
						rows = append(rows, []string{
							strconv.FormatInt(relink.Position, 10),
							relink.Title,
							relink.FileName,
							fmt.Sprintf("%.2f", relink.Score),
							note,
						})
					}
					fmt.Fprintln(out, renderTable(
						[]string{"Row", "Title", "File", "Score", "Method"},
						rows,
						[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft},
					))
					if !apply {
						fmt.Fprintln(out, "Dry run; pass --apply to write these links.")
					}
				}
			}

			if sniff {
				recovered, err := reconciler.SniffDOIs(cmd.Context(), apply)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Recovered %d DOI(s).\n", len(recovered))
				for _, hit := range recovered {
					fmt.Fprintf(out, "  row %d: %s (%s)\n", hit.Position, hit.DOI, hit.FileName)
				}
				if len(recovered) > 0 && !apply {
					fmt.Fprintln(out, "Dry run; pass --apply to write these DOIs.")
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&sweep, "sweep", false, "Delete non-PDF files from the pending partition")
	cmd.Flags().BoolVar(&clear, "clear", false, "Blank remote and dangling document references")
	cmd.Flags().BoolVar(&correlateFlag, "correlate", false, "Match unlinked records to unclaimed files")
	cmd.Flags().BoolVar(&sniff, "sniff-doi", false, "Recover missing DOIs from document text")
	cmd.Flags().BoolVar(&apply, "apply", false, "Write repairs back to the store")
	return cmd
}
