// Package dedupe decides whether a candidate record already exists in the
// store. A candidate is a duplicate when its normalized DOI or normalized
// title matches an existing record exactly; empty identifiers never match.
package dedupe

import (
	"context"

	"curator/internal/records"
)

// Detector checks candidate records against the existing collection.
type Detector struct {
	store records.Store
}

// NewDetector returns a detector backed by the given store.
func NewDetector(store records.Store) *Detector {
	return &Detector{store: store}
}

// IsDuplicate reports whether the candidate matches any stored record by DOI
// or by title. Comparison happens on normalized forms so case, surrounding
// whitespace, and the https://doi.org/ prefix never cause a miss.
func (d *Detector) IsDuplicate(ctx context.Context, candidate *records.Record) (bool, error) {
	existing, err := d.store.List(ctx)
	if err != nil {
		return false, err
	}
	return MatchesAny(candidate, existing), nil
}

// MatchesAny reports whether the candidate duplicates any record in the slice.
func MatchesAny(candidate *records.Record, existing []*records.Record) bool {
	doi := records.NormalizeDOI(candidate.DOI)
	title := records.NormalizeTitle(candidate.Title)
	for _, rec := range existing {
		if doi != "" && records.NormalizeDOI(rec.DOI) == doi {
			return true
		}
		if title != "" && records.NormalizeTitle(rec.Title) == title {
			return true
		}
	}
	return false
}
