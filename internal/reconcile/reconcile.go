// Package reconcile validates and repairs the mapping between the record
// store and the document partitions: it reports broken links, sweeps files
// that are not real PDFs, re-links records to unclaimed documents via
// correlation, and recovers missing DOIs from document text.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"

	"curator/internal/config"
	"curator/internal/correlate"
	"curator/internal/documents"
	"curator/internal/logging"
	"curator/internal/records"
)

// Problem classifies a record whose document link needs attention.
type Problem string

const (
	ProblemMissingRef  Problem = "missing reference"
	ProblemRemoteRef   Problem = "remote reference"
	ProblemDanglingRef Problem = "dangling reference"
)

// Issue is one record flagged by CheckLinks.
type Issue struct {
	Position int64
	Title    string
	Ref      string
	Problem  Problem
}

// Relink is one repaired record-to-file link proposed or applied by
// CorrelateMissing.
type Relink struct {
	Position  int64
	Title     string
	FileName  string
	Score     float64
	Method    correlate.Method
	Ambiguous bool
}

// Reconciler audits store and filesystem against each other.
type Reconciler struct {
	cfg        *config.Config
	store      records.Store
	documents  *documents.Store
	correlator *correlate.Correlator
	logger     *slog.Logger
}

// New constructs a reconciler over the given stores.
func New(cfg *config.Config, store records.Store, docs *documents.Store, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Reconciler{
		cfg:        cfg,
		store:      store,
		documents:  docs,
		correlator: correlate.New(cfg),
		logger:     logger,
	}
}

// CheckLinks reports every record whose document reference is absent, still
// remote, or names a file no partition contains. Read-only.
func (r *Reconciler) CheckLinks(ctx context.Context) ([]Issue, error) {
	all, err := r.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	issues := make([]Issue, 0)
	for _, rec := range all {
		problem, ok := r.linkProblem(rec)
		if !ok {
			continue
		}
		issues = append(issues, Issue{
			Position: rec.Position,
			Title:    rec.Title,
			Ref:      rec.DocumentRef,
			Problem:  problem,
		})
	}
	return issues, nil
}

func (r *Reconciler) linkProblem(rec *records.Record) (Problem, bool) {
	if !rec.HasDocumentRef() {
		return ProblemMissingRef, true
	}
	if documents.IsRemoteRef(rec.DocumentRef) {
		return ProblemRemoteRef, true
	}
	if _, found := r.documents.Locate(rec.DocumentRef); !found {
		return ProblemDanglingRef, true
	}
	return "", false
}

// ClearBroken blanks the document reference of every record whose reference
// is remote or names a file no partition contains, so the records become
// candidates for re-correlation. Missing references are already empty and are
// left alone. Returns the records that were cleared.
func (r *Reconciler) ClearBroken(ctx context.Context) ([]Issue, error) {
	all, err := r.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	cleared := make([]Issue, 0)
	for _, rec := range all {
		problem, ok := r.linkProblem(rec)
		if !ok || problem == ProblemMissingRef {
			continue
		}
		cleared = append(cleared, Issue{
			Position: rec.Position,
			Title:    rec.Title,
			Ref:      rec.DocumentRef,
			Problem:  problem,
		})
		rec.DocumentRef = ""
		if err := r.store.Set(ctx, rec); err != nil {
			return cleared, err
		}
		r.logger.Info("cleared broken reference",
			logging.Int64("record", rec.Position),
			logging.String("problem", string(problem)))
	}
	return cleared, nil
}

// SweepInvalid removes files from the pending partition that fail the PDF
// magic check and clears any record references that pointed at them. Returns
// the removed names.
func (r *Reconciler) SweepInvalid(ctx context.Context) ([]string, error) {
	names, err := r.documents.List(documents.PartitionPending)
	if err != nil {
		return nil, fmt.Errorf("list pending documents: %w", err)
	}
	removed := make([]string, 0)
	for _, name := range names {
		content, err := r.documents.Read(name, documents.PartitionPending)
		if err != nil {
			r.logger.Warn("sweep could not read document",
				logging.String("file", name), logging.Error(err))
			continue
		}
		if documents.IsPDF(content) {
			continue
		}
		if err := r.documents.Remove(name, documents.PartitionPending); err != nil {
			return removed, fmt.Errorf("remove %q: %w", name, err)
		}
		removed = append(removed, name)
		r.logger.Info("removed invalid document", logging.String("file", name))
	}
	if len(removed) > 0 {
		if err := r.clearReferences(ctx, removed); err != nil {
			return removed, err
		}
	}
	return removed, nil
}

func (r *Reconciler) clearReferences(ctx context.Context, names []string) error {
	swept := make(map[string]struct{}, len(names))
	for _, name := range names {
		swept[name] = struct{}{}
	}
	all, err := r.store.List(ctx)
	if err != nil {
		return fmt.Errorf("list records: %w", err)
	}
	for _, rec := range all {
		if _, gone := swept[rec.DocumentRef]; !gone {
			continue
		}
		rec.DocumentRef = ""
		if err := r.store.Set(ctx, rec); err != nil {
			return err
		}
		r.logger.Info("cleared broken reference", logging.Int64("record", rec.Position))
	}
	return nil
}

// CorrelateMissing proposes a file for every record CheckLinks would flag,
// drawing candidates from pending files no record currently claims. With
// apply set, accepted matches are written back to the store; each file is
// claimed at most once per run.
func (r *Reconciler) CorrelateMissing(ctx context.Context, apply bool) ([]Relink, error) {
	all, err := r.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	candidates, err := r.unclaimedPending(all)
	if err != nil {
		return nil, err
	}

	relinks := make([]Relink, 0)
	claimed := make(map[string]struct{})
	for _, rec := range all {
		if _, broken := r.linkProblem(rec); !broken {
			continue
		}
		pool := make([]string, 0, len(candidates))
		for _, name := range candidates {
			if _, taken := claimed[name]; !taken {
				pool = append(pool, name)
			}
		}
		match, ok := r.correlator.Correlate(rec, pool)
		if !ok {
			continue
		}
		claimed[match.FileName] = struct{}{}
		relinks = append(relinks, Relink{
			Position:  rec.Position,
			Title:     rec.Title,
			FileName:  match.FileName,
			Score:     match.Score,
			Method:    match.Method,
			Ambiguous: match.Ambiguous,
		})
		if !apply {
			continue
		}
		rec.DocumentRef = match.FileName
		if err := r.store.Set(ctx, rec); err != nil {
			return relinks, err
		}
		r.logger.Info("relinked record",
			logging.Int64("record", rec.Position),
			logging.String("file", match.FileName),
			logging.Float64("score", match.Score),
			logging.String("method", string(match.Method)))
	}
	return relinks, nil
}

// unclaimedPending lists pending files not referenced by any record.
func (r *Reconciler) unclaimedPending(all []*records.Record) ([]string, error) {
	names, err := r.documents.List(documents.PartitionPending)
	if err != nil {
		return nil, fmt.Errorf("list pending documents: %w", err)
	}
	referenced := make(map[string]struct{}, len(all))
	for _, rec := range all {
		if rec.HasDocumentRef() && !documents.IsRemoteRef(rec.DocumentRef) {
			referenced[rec.DocumentRef] = struct{}{}
		}
	}
	unclaimed := make([]string, 0, len(names))
	for _, name := range names {
		if _, taken := referenced[name]; !taken {
			unclaimed = append(unclaimed, name)
		}
	}
	return unclaimed, nil
}
