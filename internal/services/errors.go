package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotEligible marks records the pipeline must not touch: already in a
	// terminal state, or without a document reference that resolves to a
	// local pending file.
	ErrNotEligible = errors.New("not eligible")
	// ErrDocumentUnavailable marks records whose referenced document cannot
	// be fetched or fails PDF validation.
	ErrDocumentUnavailable = errors.New("document unavailable")
	// ErrService marks failures reported by an external curation service.
	ErrService = errors.New("service error")
)

// Disposition describes what the pipeline should do with a record after an
// operation fails.
type Disposition int

const (
	// DispositionAbort stops the current record without changing its state.
	// Persistence failures and unrecognized errors land here so a broken
	// store never masquerades as a curation verdict.
	DispositionAbort Disposition = iota
	// DispositionReject converts the failure into a rejection with feedback.
	DispositionReject
	// DispositionSkip leaves the record untouched and moves on.
	DispositionSkip
)

// Wrap builds an error message that includes operation context while tagging
// it with the provided marker for later outcome classification. The marker
// should be one of the exported sentinel errors above.
func Wrap(marker error, operation, detail string, err error) error {
	message := buildDetail(operation, detail)
	if marker == nil {
		marker = ErrService
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, message, err)
	}
	return fmt.Errorf("%w: %s", marker, message)
}

// FailureDisposition maps a pipeline error to the record outcome the caller
// should apply after the operation fails.
func FailureDisposition(err error) Disposition {
	switch {
	case errors.Is(err, ErrNotEligible):
		return DispositionSkip
	case errors.Is(err, ErrDocumentUnavailable), errors.Is(err, ErrService):
		return DispositionReject
	default:
		return DispositionAbort
	}
}

func buildDetail(operation, detail string) string {
	parts := make([]string, 0, 2)
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if detail = strings.TrimSpace(detail); detail != "" {
		parts = append(parts, detail)
	}
	if len(parts) == 0 {
		return "pipeline failure"
	}
	return strings.Join(parts, ": ")
}
