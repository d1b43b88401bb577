package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"curator/internal/config"
	"curator/internal/documents"
	"curator/internal/logging"
	"curator/internal/records"
	"curator/internal/services"
)

// Classifier labels a document with a category.
type Classifier interface {
	Categorize(ctx context.Context, content []byte) (string, error)
}

// Extractor pulls the metadata field schema out of a document.
type Extractor interface {
	Extract(ctx context.Context, content []byte, fields []string, category string) (map[string]string, error)
}

// Processor applies the curation state machine to individual records.
type Processor struct {
	cfg        *config.Config
	store      records.Store
	documents  *documents.Store
	classifier Classifier
	extractor  Extractor
	logger     *slog.Logger
}

// New constructs a processor over the given stores and service clients.
func New(cfg *config.Config, store records.Store, docs *documents.Store, classifier Classifier, extractor Extractor, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Processor{
		cfg:        cfg,
		store:      store,
		documents:  docs,
		classifier: classifier,
		extractor:  extractor,
		logger:     logger,
	}
}

// ProcessOne runs the full curation transition for the record at position.
// On success the returned record is terminal: exactly one of approved or
// rejected is set, its metadata is merged, and its document has been filed
// into the matching partition. Eligibility failures leave the record
// untouched; failures past the gate reject the record with feedback. Store
// write errors propagate so callers can abort.
func (p *Processor) ProcessOne(ctx context.Context, position int64) (*records.Record, error) {
	const op = "process"

	rec, content, err := p.loadEligible(ctx, op, position)
	if err != nil {
		if services.FailureDisposition(err) == services.DispositionReject {
			return p.rejectWithFeedback(ctx, rec, err, false)
		}
		return nil, err
	}

	logger := p.contextLogger(ctx).With(logging.Int64("record", position))

	if rec.Category == "" {
		category, err := p.classifier.Categorize(ctx, content)
		if err != nil {
			// Category is advisory here; extraction proceeds without it.
			logger.Warn("categorization failed, continuing without category", logging.Error(err))
		} else {
			rec.Category = category
			rec.SetMetadata("category", category)
		}
	}

	metadata, err := p.extractor.Extract(ctx, content, records.MetadataFields, rec.Category)
	if err != nil {
		return p.rejectWithFeedback(ctx, rec, services.Wrap(services.ErrService, op, "extract metadata", err), true)
	}
	for field, value := range metadata {
		if records.IsMetadataField(field) {
			rec.SetMetadata(field, value)
		}
	}

	approved := IsTruthy(rec.Metadata[p.cfg.Curation.ApprovalField])
	if feedback := rec.Metadata[p.cfg.Curation.FeedbackField]; feedback != "" {
		rec.Feedback = feedback
	}
	if approved {
		rec.Approve()
	} else {
		rec.Reject(rec.Feedback)
	}

	if err := p.store.Set(ctx, rec); err != nil {
		return nil, err
	}
	if err := p.fileDocument(rec, approved); err != nil {
		logger.Warn("document relocation failed", logging.Error(err))
	}
	logger.Info("record processed",
		logging.Bool("approved", approved),
		logging.String("category", rec.Category))
	return rec, nil
}

// CategorizeOne assigns a category to the record at position without
// touching its approval state or relocating its document.
func (p *Processor) CategorizeOne(ctx context.Context, position int64) (*records.Record, error) {
	const op = "categorize"

	rec, content, err := p.loadEligible(ctx, op, position)
	if err != nil {
		return nil, err
	}
	category, err := p.classifier.Categorize(ctx, content)
	if err != nil {
		return nil, services.Wrap(services.ErrService, op, "categorize document", err)
	}
	rec.Category = category
	rec.SetMetadata("category", category)
	if err := p.store.Set(ctx, rec); err != nil {
		return nil, err
	}
	p.contextLogger(ctx).Info("record categorized",
		logging.Int64("record", position),
		logging.String("category", category))
	return rec, nil
}

// contextLogger attaches the batch run identifier carried on the context, so
// per-record log lines are attributable to their run.
func (p *Processor) contextLogger(ctx context.Context) *slog.Logger {
	if runID, ok := services.RunIDFromContext(ctx); ok {
		return p.logger.With(logging.String("run_id", runID))
	}
	return p.logger
}

// loadEligible enforces the shared precondition: the record exists, is
// pending, and its reference resolves to a readable PDF in the pending
// partition. The record is returned even on a rejectable failure so the
// caller can persist the rejection.
func (p *Processor) loadEligible(ctx context.Context, op string, position int64) (*records.Record, []byte, error) {
	rec, err := p.store.Get(ctx, position)
	if err != nil {
		if errors.Is(err, records.ErrNotFound) {
			return nil, nil, services.Wrap(services.ErrNotEligible, op, "record "+strconv.FormatInt(position, 10)+" not found", err)
		}
		return nil, nil, err
	}
	if !rec.Pending() {
		return rec, nil, services.Wrap(services.ErrNotEligible, op, fmt.Sprintf("record %d already terminal", position), nil)
	}
	if !rec.HasDocumentRef() {
		return rec, nil, services.Wrap(services.ErrNotEligible, op, fmt.Sprintf("record %d has no document reference", position), nil)
	}
	if documents.IsRemoteRef(rec.DocumentRef) {
		return rec, nil, services.Wrap(services.ErrNotEligible, op, fmt.Sprintf("record %d still references a remote URL", position), nil)
	}
	if !p.documents.Exists(rec.DocumentRef, documents.PartitionPending) {
		return rec, nil, services.Wrap(services.ErrNotEligible, op, fmt.Sprintf("document %q missing from pending", rec.DocumentRef), nil)
	}
	content, err := p.documents.Read(rec.DocumentRef, documents.PartitionPending)
	if err != nil {
		return rec, nil, services.Wrap(services.ErrDocumentUnavailable, op, "read document", err)
	}
	if !documents.IsPDF(content) {
		return rec, nil, services.Wrap(services.ErrDocumentUnavailable, op, fmt.Sprintf("%q is not a PDF document", rec.DocumentRef), nil)
	}
	return rec, content, nil
}

// rejectWithFeedback converts a pipeline failure into a rejected terminal
// state. The document is only filed into the rejected partition when it
// passed PDF validation; invalid artifacts stay where they are.
func (p *Processor) rejectWithFeedback(ctx context.Context, rec *records.Record, cause error, relocate bool) (*records.Record, error) {
	if rec == nil {
		return nil, cause
	}
	rec.Reject(truncateFeedback(cause.Error()))
	if err := p.store.Set(ctx, rec); err != nil {
		return nil, err
	}
	logger := p.contextLogger(ctx)
	if relocate {
		if err := p.fileDocument(rec, false); err != nil {
			logger.Warn("document relocation failed",
				logging.Int64("record", rec.Position),
				logging.Error(err))
		}
	}
	logger.Info("record rejected",
		logging.Int64("record", rec.Position),
		logging.String("feedback", rec.Feedback))
	return rec, nil
}

// fileDocument moves the record's document out of pending and drops a
// plain-text sidecar snapshot next to it.
func (p *Processor) fileDocument(rec *records.Record, approved bool) error {
	target := documents.PartitionRejected
	if approved {
		target = documents.PartitionApproved
	}
	if err := p.documents.Relocate(rec.DocumentRef, documents.PartitionPending, target); err != nil {
		return err
	}
	return p.documents.WriteSidecar(rec.DocumentRef, target, sidecarFieldOrder, snapshotFields(rec))
}

// sidecarFieldOrder puts the identifying fields first, then the extracted
// schema in its canonical order.
var sidecarFieldOrder = append([]string{
	"position",
	"title",
	"authors",
	"year",
	"doi",
	"approved",
	"rejected",
	"feedback",
	"document",
}, records.MetadataFields...)

func snapshotFields(rec *records.Record) map[string]string {
	fields := map[string]string{
		"position": strconv.FormatInt(rec.Position, 10),
		"title":    rec.Title,
		"authors":  rec.Authors,
		"year":     rec.Year,
		"doi":      rec.DOI,
		"category": rec.Category,
		"approved": strconv.FormatBool(rec.Approved),
		"rejected": strconv.FormatBool(rec.Rejected),
		"feedback": rec.Feedback,
		"document": rec.DocumentRef,
	}
	for field, value := range rec.Metadata {
		fields[field] = value
	}
	return fields
}
