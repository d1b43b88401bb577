package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"curator/internal/dedupe"
	"curator/internal/documents"
	"curator/internal/logging"
	"curator/internal/records"
	"curator/internal/services/openalex"
	"curator/internal/textutil"
)

const downloadTimeout = 30 * time.Second

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var fromYear int
	var toYear int
	var sortFlag string
	var limit int
	var save bool

	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Search the literature index for candidate articles",
		Long: "Queries the works index for articles matching QUERY. With --save, each " +
			"hit's open-access PDF is downloaded into the pending partition and a " +
			"pending record appended, skipping duplicates by DOI and title.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := ctx.openEnvironment()
			if err != nil {
				return err
			}
			defer env.Close()

			query := openalex.Query{
				Expression: args[0],
				StartYear:  fromYear,
				EndYear:    toYear,
				Sort:       openalex.Sort(sortFlag),
			}
			works, err := env.searchClient().Search(cmd.Context(), query)
			if err != nil {
				return err
			}
			if limit > 0 && len(works) > limit {
				works = works[:limit]
			}
			out := cmd.OutOrStdout()
			if len(works) == 0 {
				fmt.Fprintln(out, "No results.")
				return nil
			}

			rows := make([][]string, 0, len(works))
			for _, work := range works {
				rows = append(rows, []string{
					work.Year,
					work.Title,
					work.DOI,
					strconv.Itoa(work.CitedByCount),
					yesNo(work.PDFURL != ""),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Year", "Title", "DOI", "Cited", "PDF"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft},
			))

			if !save {
				return nil
			}
			saved, skipped := saveWorks(cmd.Context(), env, works)
			fmt.Fprintf(out, "Saved %d record(s), skipped %d duplicate(s).\n", saved, skipped)
			return nil
		},
	}

	cmd.Flags().IntVar(&fromYear, "from", 0, "Earliest publication year")
	cmd.Flags().IntVar(&toYear, "to", 0, "Latest publication year")
	cmd.Flags().StringVar(&sortFlag, "sort", "relevance", "Result order: relevance, newest, or cited")
	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum results to display")
	cmd.Flags().BoolVar(&save, "save", false, "Append results as pending records and download PDFs")
	return cmd
}

// saveWorks appends search hits behind the duplicate gate. A failed download
// leaves the remote URL as the document reference so correlation or a manual
// fetch can recover it later.
func saveWorks(ctx context.Context, env *environment, works []openalex.Work) (saved, skipped int) {
	detector := dedupe.NewDetector(env.store)
	for _, work := range works {
		rec := &records.Record{
			Title:   work.Title,
			Authors: work.Authors,
			Year:    work.Year,
			DOI:     work.DOI,
		}
		rec.SetMetadata("abstract", work.Abstract)
		rec.SetMetadata("document_type", work.Type)
		rec.SetMetadata("journal_title", work.Source)
		rec.SetMetadata("citation_count", strconv.Itoa(work.CitedByCount))

		dup, err := detector.IsDuplicate(ctx, rec)
		if err != nil {
			env.logger.Error("duplicate check failed", logging.String("title", work.Title), logging.Error(err))
			continue
		}
		if dup {
			skipped++
			continue
		}

		rec.DocumentRef = work.PDFURL
		if work.PDFURL != "" {
			if name, err := downloadPDF(ctx, env, work); err != nil {
				env.logger.Warn("pdf download failed",
					logging.String("url", work.PDFURL), logging.Error(err))
			} else {
				rec.DocumentRef = name
			}
		}
		if _, err := env.store.Append(ctx, rec); err != nil {
			env.logger.Error("append record failed", logging.String("title", work.Title), logging.Error(err))
			continue
		}
		saved++
	}
	return saved, skipped
}

func downloadPDF(ctx context.Context, env *environment, work openalex.Work) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, work.PDFURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("http %d", resp.StatusCode)
	}
	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if !documents.IsPDF(content) {
		return "", fmt.Errorf("%s did not return a PDF", work.PDFURL)
	}
	return env.docs.Write(textutil.TitleSlug(work.Title), documents.PartitionPending, content)
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
