// Package processor drives the per-record curation state machine. A pending
// record with a resolvable document is classified, enriched with extracted
// metadata, granted or refused approval, and its document filed into the
// matching partition. Failures past the eligibility gate become rejections
// with feedback rather than batch-stopping errors.
package processor
