package reconcile

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	"curator/internal/documents"
	"curator/internal/logging"
)

// doiPattern matches registry identifiers of the form 10.NNNN/suffix.
var doiPattern = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`)

// doiSearchPages bounds how deep the sniffer reads; the identifier is almost
// always on the first page.
const doiSearchPages = 3

// Recovered is one DOI found by SniffDOIs.
type Recovered struct {
	Position int64
	FileName string
	DOI      string
}

// SniffDOIs scans the documents of records lacking a DOI and pulls the
// identifier out of the page text. With apply set, found DOIs are written
// back to the store.
func (r *Reconciler) SniffDOIs(ctx context.Context, apply bool) ([]Recovered, error) {
	all, err := r.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	recovered := make([]Recovered, 0)
	for _, rec := range all {
		if strings.TrimSpace(rec.DOI) != "" || !rec.HasDocumentRef() || documents.IsRemoteRef(rec.DocumentRef) {
			continue
		}
		partition, found := r.documents.Locate(rec.DocumentRef)
		if !found {
			continue
		}
		doi, err := sniffDOI(r.documents.PathFor(rec.DocumentRef, partition))
		if err != nil {
			r.logger.Warn("doi sniff failed",
				logging.Int64("record", rec.Position),
				logging.String("file", rec.DocumentRef),
				logging.Error(err))
			continue
		}
		if doi == "" {
			continue
		}
		recovered = append(recovered, Recovered{
			Position: rec.Position,
			FileName: rec.DocumentRef,
			DOI:      doi,
		})
		if !apply {
			continue
		}
		rec.DOI = doi
		if err := r.store.Set(ctx, rec); err != nil {
			return recovered, err
		}
		r.logger.Info("recovered doi",
			logging.Int64("record", rec.Position),
			logging.String("doi", doi))
	}
	return recovered, nil
}

// sniffDOI reads the leading pages of the file and returns the first
// plausible DOI, or empty when none is present.
func sniffDOI(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	pages := doiSearchPages
	if reader.NumPage() < pages {
		pages = reader.NumPage()
	}
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if doi := firstDOI(text); doi != "" {
			return doi, nil
		}
	}
	return "", nil
}

func firstDOI(text string) string {
	for _, match := range doiPattern.FindAllString(text, -1) {
		match = strings.TrimRight(match, ".,;:)")
		if plausibleDOI(match) {
			return match
		}
	}
	return ""
}

func plausibleDOI(doi string) bool {
	if len(doi) < 10 {
		return false
	}
	slash := strings.Index(doi, "/")
	return slash > 0 && slash < len(doi)-1
}
