package processor_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"curator/internal/documents"
	"curator/internal/processor"
	"curator/internal/records"
	"curator/internal/services"
	"curator/internal/testsupport"
)

type stubClassifier struct {
	category string
	err      error
	calls    int
}

func (s *stubClassifier) Categorize(ctx context.Context, content []byte) (string, error) {
	s.calls++
	return s.category, s.err
}

type stubExtractor struct {
	metadata map[string]string
	err      error
	calls    int
}

func (s *stubExtractor) Extract(ctx context.Context, content []byte, fields []string, category string) (map[string]string, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.metadata, nil
}

func newFixture(t *testing.T, classifier *stubClassifier, extractor *stubExtractor) (*processor.Processor, *records.SQLiteStore, *documents.Store, string) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	docs := documents.NewStore(cfg)
	proc := processor.New(cfg, store, docs, classifier, extractor, nil)
	return proc, store, docs, cfg.Paths.DocumentsDir
}

func pendingRecordWithPDF(t *testing.T, store *records.SQLiteStore, docsDir, name string) int64 {
	t.Helper()
	testsupport.WritePDF(t, filepath.Join(docsDir, name))
	return testsupport.AppendRecord(t, store, &records.Record{
		Title:       "Soil nitrogen dynamics",
		DocumentRef: name,
	})
}

func TestProcessOneApproves(t *testing.T) {
	classifier := &stubClassifier{category: "SOIL_SCIENCE"}
	extractor := &stubExtractor{metadata: map[string]string{
		"approval":         "sim",
		"curator_feedback": "well supported methodology",
		"doi":              "10.1/abc",
	}}
	proc, store, docs, docsDir := newFixture(t, classifier, extractor)
	position := pendingRecordWithPDF(t, store, docsDir, "paper.pdf")

	rec, err := proc.ProcessOne(context.Background(), position)
	if err != nil {
		t.Fatalf("ProcessOne: %v", err)
	}
	if !rec.Approved || rec.Rejected {
		t.Fatalf("flags = approved=%v rejected=%v", rec.Approved, rec.Rejected)
	}
	if rec.Category != "SOIL_SCIENCE" {
		t.Fatalf("category = %q", rec.Category)
	}
	if rec.Feedback != "well supported methodology" {
		t.Fatalf("feedback = %q", rec.Feedback)
	}
	if rec.Metadata["doi"] != "10.1/abc" {
		t.Fatalf("metadata doi = %q", rec.Metadata["doi"])
	}
	if !docs.Exists("paper.pdf", documents.PartitionApproved) {
		t.Fatal("document should be filed under approved")
	}
	if docs.Exists("paper.pdf", documents.PartitionPending) {
		t.Fatal("document should leave pending")
	}
	sidecar := filepath.Join(docs.Dir(documents.PartitionApproved), "paper.txt")
	snapshot, err := os.ReadFile(sidecar)
	if err != nil {
		t.Fatalf("read sidecar: %v", err)
	}
	if !strings.Contains(string(snapshot), "approved: true") {
		t.Fatalf("sidecar missing approval line:\n%s", snapshot)
	}

	stored, err := store.Get(context.Background(), position)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !stored.Approved {
		t.Fatal("approval not persisted")
	}
}

func TestProcessOneExactlyOneTerminalFlag(t *testing.T) {
	for _, approval := range []string{"sim", "TRUE", "Aprovado", "no", "falso", "", "2"} {
		extractor := &stubExtractor{metadata: map[string]string{"approval": approval}}
		proc, store, _, docsDir := newFixture(t, &stubClassifier{category: "X"}, extractor)
		position := pendingRecordWithPDF(t, store, docsDir, "paper.pdf")

		rec, err := proc.ProcessOne(context.Background(), position)
		if err != nil {
			t.Fatalf("ProcessOne(%q): %v", approval, err)
		}
		if rec.Approved == rec.Rejected {
			t.Fatalf("approval %q: flags approved=%v rejected=%v, want exactly one", approval, rec.Approved, rec.Rejected)
		}
	}
}

func TestProcessOneRejectsNonPDF(t *testing.T) {
	extractor := &stubExtractor{metadata: map[string]string{"approval": "sim"}}
	proc, store, docs, docsDir := newFixture(t, &stubClassifier{}, extractor)

	htmlName := "download.pdf"
	testsupport.WriteHTML(t, filepath.Join(docsDir, htmlName))
	position := testsupport.AppendRecord(t, store, &records.Record{
		Title:       "Broken download",
		DocumentRef: htmlName,
	})

	rec, err := proc.ProcessOne(context.Background(), position)
	if err != nil {
		t.Fatalf("ProcessOne: %v", err)
	}
	if !rec.Rejected || rec.Approved {
		t.Fatalf("flags = approved=%v rejected=%v", rec.Approved, rec.Rejected)
	}
	if !strings.Contains(rec.Feedback, "document unavailable") {
		t.Fatalf("feedback = %q, want document unavailability mentioned", rec.Feedback)
	}
	if docs.Exists(htmlName, documents.PartitionApproved) {
		t.Fatal("invalid document must never reach approved")
	}
	if !docs.Exists(htmlName, documents.PartitionPending) {
		t.Fatal("invalid document should stay in pending for inspection")
	}
	if extractor.calls != 0 {
		t.Fatal("extractor must not run on an invalid document")
	}
}

func TestProcessOneRejectsOnExtractionFailure(t *testing.T) {
	extractor := &stubExtractor{err: errors.New("upstream timeout")}
	proc, store, docs, docsDir := newFixture(t, &stubClassifier{category: "X"}, extractor)
	position := pendingRecordWithPDF(t, store, docsDir, "paper.pdf")

	rec, err := proc.ProcessOne(context.Background(), position)
	if err != nil {
		t.Fatalf("ProcessOne: %v", err)
	}
	if !rec.Rejected {
		t.Fatal("expected rejection")
	}
	if !strings.Contains(rec.Feedback, "upstream timeout") {
		t.Fatalf("feedback = %q, want cause recorded", rec.Feedback)
	}
	if !docs.Exists("paper.pdf", documents.PartitionRejected) {
		t.Fatal("valid document should be filed under rejected")
	}
}

func TestProcessOneNotEligible(t *testing.T) {
	proc, store, docs, _ := newFixture(t, &stubClassifier{}, &stubExtractor{})

	testsupport.WritePDF(t, filepath.Join(docs.Dir(documents.PartitionApproved), "done.pdf"))
	position := testsupport.AppendRecord(t, store, &records.Record{
		Title:       "Already decided",
		Approved:    true,
		DocumentRef: "done.pdf",
	})

	if _, err := proc.ProcessOne(context.Background(), position); !errors.Is(err, services.ErrNotEligible) {
		t.Fatalf("err = %v, want ErrNotEligible", err)
	}

	missing := testsupport.AppendRecord(t, store, &records.Record{Title: "No document"})
	if _, err := proc.ProcessOne(context.Background(), missing); !errors.Is(err, services.ErrNotEligible) {
		t.Fatalf("err = %v, want ErrNotEligible for missing reference", err)
	}

	remote := testsupport.AppendRecord(t, store, &records.Record{
		Title:       "Remote only",
		DocumentRef: "https://example.org/paper.pdf",
	})
	if _, err := proc.ProcessOne(context.Background(), remote); !errors.Is(err, services.ErrNotEligible) {
		t.Fatalf("err = %v, want ErrNotEligible for remote reference", err)
	}
}

func TestProcessOneLogsRunID(t *testing.T) {
	classifier := &stubClassifier{category: "SOIL_SCIENCE"}
	extractor := &stubExtractor{metadata: map[string]string{"approval": "sim"}}
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	docs := documents.NewStore(cfg)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	proc := processor.New(cfg, store, docs, classifier, extractor, logger)
	position := pendingRecordWithPDF(t, store, cfg.Paths.DocumentsDir, "paper.pdf")

	ctx := services.WithRunID(context.Background(), "run-123")
	if _, err := proc.ProcessOne(ctx, position); err != nil {
		t.Fatalf("ProcessOne: %v", err)
	}
	if !strings.Contains(buf.String(), "run_id=run-123") {
		t.Fatalf("log output missing run identifier: %s", buf.String())
	}
}

func TestProcessOneContinuesWhenCategorizationFails(t *testing.T) {
	classifier := &stubClassifier{err: errors.New("service down")}
	extractor := &stubExtractor{metadata: map[string]string{"approval": "sim"}}
	proc, store, _, docsDir := newFixture(t, classifier, extractor)
	position := pendingRecordWithPDF(t, store, docsDir, "paper.pdf")

	rec, err := proc.ProcessOne(context.Background(), position)
	if err != nil {
		t.Fatalf("ProcessOne: %v", err)
	}
	if !rec.Approved {
		t.Fatal("categorization failure must not block approval")
	}
	if rec.Category != "" {
		t.Fatalf("category = %q, want unknown", rec.Category)
	}
}

func TestProcessOneSkipsClassifierWhenCategoryKnown(t *testing.T) {
	classifier := &stubClassifier{category: "IGNORED"}
	extractor := &stubExtractor{metadata: map[string]string{"approval": "sim"}}
	proc, store, _, docsDir := newFixture(t, classifier, extractor)

	testsupport.WritePDF(t, filepath.Join(docsDir, "paper.pdf"))
	position := testsupport.AppendRecord(t, store, &records.Record{
		Title:       "Categorized already",
		Category:    "AGRONOMY",
		DocumentRef: "paper.pdf",
	})

	rec, err := proc.ProcessOne(context.Background(), position)
	if err != nil {
		t.Fatalf("ProcessOne: %v", err)
	}
	if classifier.calls != 0 {
		t.Fatal("classifier must not run when category is present")
	}
	if rec.Category != "AGRONOMY" {
		t.Fatalf("category = %q", rec.Category)
	}
}

func TestCategorizeOneLeavesStatePending(t *testing.T) {
	classifier := &stubClassifier{category: "SOIL_SCIENCE"}
	proc, store, docs, docsDir := newFixture(t, classifier, &stubExtractor{})
	position := pendingRecordWithPDF(t, store, docsDir, "paper.pdf")

	rec, err := proc.CategorizeOne(context.Background(), position)
	if err != nil {
		t.Fatalf("CategorizeOne: %v", err)
	}
	if rec.Category != "SOIL_SCIENCE" {
		t.Fatalf("category = %q", rec.Category)
	}
	if !rec.Pending() {
		t.Fatal("categorize must not settle approval state")
	}
	if !docs.Exists("paper.pdf", documents.PartitionPending) {
		t.Fatal("categorize must not relocate the document")
	}
}

func TestIsTruthy(t *testing.T) {
	truthy := []string{"true", "SIM", "yes", "Verdadeiro", "aprovado", "1", " sim "}
	for _, value := range truthy {
		if !processor.IsTruthy(value) {
			t.Errorf("IsTruthy(%q) = false, want true", value)
		}
	}
	falsy := []string{"", "false", "não", "0", "2", "approved?"}
	for _, value := range falsy {
		if processor.IsTruthy(value) {
			t.Errorf("IsTruthy(%q) = true, want false", value)
		}
	}
}
