// Package correlate links spreadsheet-style records to PDF files by name.
// Matching runs in tiers: an exact slug hit wins outright, then title-token
// overlap against a configurable threshold, then an author-surname plus year
// fallback for files named after citations rather than titles.
package correlate

import (
	"sort"
	"strings"

	"curator/internal/config"
	"curator/internal/records"
	"curator/internal/textutil"
)

// Method identifies which matching tier produced a result.
type Method string

const (
	MethodSlug       Method = "slug"
	MethodOverlap    Method = "overlap"
	MethodAuthorYear Method = "author-year"
)

// Match describes a record-to-file correlation result.
type Match struct {
	FileName string
	Score    float64
	Method   Method
	// Ambiguous is set when another candidate scored the same. The named
	// file is still the lexicographically first winner.
	Ambiguous bool
}

// Scorer scores one candidate file name against a record. Implementations own
// the thresholds and tiers; Correlator adds deterministic candidate ordering
// and tie-breaking on top.
type Scorer interface {
	Score(rec *records.Record, candidate string) (Match, bool)
}

// Correlator finds the best-scoring candidate file for a record.
type Correlator struct {
	scorer Scorer
}

// New builds a correlator using the tiered scorer with the configured knobs.
func New(cfg *config.Config) *Correlator {
	return NewWithScorer(NewTieredScorer(cfg.Correlate))
}

// NewWithScorer builds a correlator around a custom scoring strategy.
func NewWithScorer(scorer Scorer) *Correlator {
	return &Correlator{scorer: scorer}
}

// Correlate finds the best candidate file for the record. It returns false
// when no candidate clears any tier. Candidates are evaluated in sorted order
// so equal scores always resolve to the same file. An exact-slug hit
// short-circuits the scan; overlap scores, even perfect ones, still go
// through tie bookkeeping so ambiguity is reported.
func (c *Correlator) Correlate(rec *records.Record, candidates []string) (Match, bool) {
	names := make([]string, len(candidates))
	copy(names, candidates)
	sort.Strings(names)

	best := Match{Score: -1}
	for _, name := range names {
		score, ok := c.scorer.Score(rec, name)
		if !ok {
			continue
		}
		if score.Method == MethodSlug {
			return score, true
		}
		switch {
		case score.Score > best.Score:
			best = score
		case score.Score == best.Score:
			best.Ambiguous = true
		}
	}
	if best.Score < 0 {
		return Match{}, false
	}
	return best, true
}

// TieredScorer is the default strategy: exact slug, then token overlap
// against the threshold, then the author-surname plus year fallback.
type TieredScorer struct {
	overlapThreshold   float64
	authorYearScore    float64
	authorYearOverride bool
	minTokenLength     int
}

// NewTieredScorer builds the default scorer from the correlation config.
func NewTieredScorer(cfg config.Correlate) *TieredScorer {
	return &TieredScorer{
		overlapThreshold:   cfg.OverlapThreshold,
		authorYearScore:    cfg.AuthorYearScore,
		authorYearOverride: cfg.AuthorYearOverride,
		minTokenLength:     cfg.MinTokenLength,
	}
}

func (s *TieredScorer) Score(rec *records.Record, name string) (Match, bool) {
	if name == textutil.TitleSlug(rec.Title) {
		return Match{FileName: name, Score: 1, Method: MethodSlug}, true
	}
	titleTokens := textutil.Tokenize(rec.Title, s.minTokenLength)
	overlap := overlapRatio(titleTokens, textutil.Tokenize(name, s.minTokenLength))
	if overlap >= s.overlapThreshold {
		return Match{FileName: name, Score: overlap, Method: MethodOverlap}, true
	}
	if s.authorYearOverride && s.matchesAuthorYear(rec, name) {
		return Match{FileName: name, Score: s.authorYearScore, Method: MethodAuthorYear}, true
	}
	return Match{}, false
}

// overlapRatio is the fraction of title tokens present in the file name.
func overlapRatio(title, file []string) float64 {
	if len(title) == 0 {
		return 0
	}
	seen := make(map[string]struct{}, len(file))
	for _, token := range file {
		seen[token] = struct{}{}
	}
	shared := 0
	for _, token := range title {
		if _, ok := seen[token]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(title))
}

// matchesAuthorYear reports whether the file name carries both the first
// author's surname and the record's publication year.
func (s *TieredScorer) matchesAuthorYear(rec *records.Record, name string) bool {
	surname := FirstAuthorSurname(rec.Authors)
	year := strings.TrimSpace(rec.Year)
	if surname == "" || year == "" {
		return false
	}
	normalized := textutil.Normalize(name)
	return strings.Contains(normalized, surname) && strings.Contains(normalized, year)
}

// FirstAuthorSurname extracts the leading author's surname from a citation
// author list. Lists use "Surname, Initials; Surname, Initials" or plain
// space-separated names; either way the surname is the comparable part.
func FirstAuthorSurname(authors string) string {
	first := authors
	for _, sep := range []string{";", " and ", " e "} {
		if idx := strings.Index(first, sep); idx >= 0 {
			first = first[:idx]
		}
	}
	first = strings.TrimSpace(first)
	if first == "" {
		return ""
	}
	if idx := strings.Index(first, ","); idx >= 0 {
		return textutil.Normalize(first[:idx])
	}
	parts := strings.Fields(first)
	return textutil.Normalize(parts[len(parts)-1])
}
