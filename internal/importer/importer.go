// Package importer bulk-loads a folder of PDFs into the corpus. Each file
// passes the duplicate gate twice (by filename before extraction, by
// DOI/title after), is copied into the pending partition, and becomes a new
// pending record carrying its extracted metadata.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"curator/internal/config"
	"curator/internal/dedupe"
	"curator/internal/documents"
	"curator/internal/logging"
	"curator/internal/processor"
	"curator/internal/records"
)

// Summary reports bulk import outcomes.
type Summary struct {
	Imported int
	Skipped  int
	Failed   int
}

// Importer turns loose PDF files into pending corpus records.
type Importer struct {
	cfg        *config.Config
	store      records.Store
	documents  *documents.Store
	detector   *dedupe.Detector
	classifier processor.Classifier
	extractor  processor.Extractor
	logger     *slog.Logger
}

// New constructs an importer over the given stores and service clients.
func New(cfg *config.Config, store records.Store, docs *documents.Store, classifier processor.Classifier, extractor processor.Extractor, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Importer{
		cfg:        cfg,
		store:      store,
		documents:  docs,
		detector:   dedupe.NewDetector(store),
		classifier: classifier,
		extractor:  extractor,
		logger:     logger,
	}
}

// Import scans dir for PDF files and appends a pending record for each one
// that survives the duplicate gate. Per-file failures are counted, never
// fatal; a store append failure aborts with the partial summary.
func (i *Importer) Import(ctx context.Context, dir string) (Summary, error) {
	var summary Summary

	names, err := listPDFs(dir)
	if err != nil {
		return summary, err
	}
	if len(names) == 0 {
		i.logger.Info("no PDF files found", logging.String("dir", dir))
		return summary, nil
	}

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		imported, err := i.importOne(ctx, dir, name)
		switch {
		case err == nil && imported:
			summary.Imported++
		case err == nil:
			summary.Skipped++
		default:
			var persistErr *records.PersistError
			if errors.As(err, &persistErr) {
				return summary, fmt.Errorf("import %s: %w", name, err)
			}
			summary.Failed++
			i.logger.Error("import failed", logging.String("file", name), logging.Error(err))
		}
	}
	i.logger.Info("import finished",
		logging.String("dir", dir),
		logging.Int("imported", summary.Imported),
		logging.Int("skipped", summary.Skipped),
		logging.Int("failed", summary.Failed))
	return summary, nil
}

// importOne handles one file; it returns false with a nil error when the
// duplicate gate blocked the import.
func (i *Importer) importOne(ctx context.Context, dir, name string) (bool, error) {
	titleFromName := strings.TrimSuffix(name, filepath.Ext(name))
	dup, err := i.detector.IsDuplicate(ctx, &records.Record{Title: titleFromName})
	if err != nil {
		return false, err
	}
	if dup {
		i.logger.Info("skipping duplicate file", logging.String("file", name))
		return false, nil
	}

	content, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return false, fmt.Errorf("read file: %w", err)
	}
	if !documents.IsPDF(content) {
		return false, fmt.Errorf("%q is not a PDF document", name)
	}

	category, err := i.classifier.Categorize(ctx, content)
	if err != nil {
		i.logger.Warn("categorization failed, importing without category",
			logging.String("file", name), logging.Error(err))
		category = ""
	}
	metadata, err := i.extractor.Extract(ctx, content, records.MetadataFields, category)
	if err != nil {
		return false, fmt.Errorf("extract metadata: %w", err)
	}

	rec := recordFromMetadata(titleFromName, category, metadata)
	dup, err = i.detector.IsDuplicate(ctx, rec)
	if err != nil {
		return false, err
	}
	if dup {
		i.logger.Info("skipping duplicate after extraction",
			logging.String("file", name), logging.String("title", rec.Title))
		return false, nil
	}

	stored, err := i.documents.Write(name, documents.PartitionPending, content)
	if err != nil {
		return false, fmt.Errorf("store document: %w", err)
	}
	rec.DocumentRef = stored
	if _, err := i.store.Append(ctx, rec); err != nil {
		return false, err
	}
	i.logger.Info("file imported",
		logging.String("file", stored),
		logging.String("title", rec.Title))
	return true, nil
}

func recordFromMetadata(fallbackTitle, category string, metadata map[string]string) *records.Record {
	rec := &records.Record{
		Title:    strings.TrimSpace(metadata["title"]),
		Authors:  strings.TrimSpace(metadata["authors"]),
		Year:     strings.TrimSpace(metadata["year"]),
		DOI:      strings.TrimSpace(metadata["doi"]),
		Category: category,
	}
	if rec.Title == "" {
		rec.Title = fallbackTitle
	}
	for field, value := range metadata {
		if records.IsMetadataField(field) {
			rec.SetMetadata(field, value)
		}
	}
	if category != "" {
		rec.SetMetadata("category", category)
	}
	return rec
}

func listPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read import dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
