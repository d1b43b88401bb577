package records

import "strings"

// MetadataFields is the fixed field schema shared between the record store
// and the extraction service. Extraction responses are merged into a record's
// metadata map only for keys in this list.
var MetadataFields = []string{
	"authors",
	"title",
	"subtitle",
	"year",
	"citation_count",
	"keywords",
	"abstract",
	"document_type",
	"publisher",
	"institution",
	"location",
	"work_type",
	"journal_title",
	"journal_quartile",
	"volume",
	"issue",
	"pages",
	"doi",
	"numbering",
	"qualis",
	"category",
	"soil_characteristics",
	"tools_techniques",
	"nutrients",
	"nutrient_strategies",
	"crop_groups",
	"crops_present",
	"approval",
	"curator_feedback",
}

var metadataFieldSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(MetadataFields))
	for _, field := range MetadataFields {
		set[field] = struct{}{}
	}
	return set
}()

// IsMetadataField reports whether name belongs to the extraction field schema.
func IsMetadataField(name string) bool {
	_, ok := metadataFieldSet[name]
	return ok
}

// doiPrefix is stripped before DOI comparison; stores mix bare DOIs with
// resolver URLs.
const doiPrefix = "https://doi.org/"

// Record is one article row of the curated corpus.
type Record struct {
	// Position is the record's 1-based ordinal in the store, stable for the
	// record's lifetime while it exists.
	Position int64
	Title    string
	// Authors holds raw semicolon- or comma-delimited author text.
	Authors  string
	Year     string
	DOI      string
	Category string
	Approved bool
	Rejected bool
	Feedback string
	// DocumentRef is either a remote URL or a filename in one of the
	// document partitions.
	DocumentRef string
	Metadata    map[string]string
}

// Pending reports whether the record has not reached a terminal state.
func (r *Record) Pending() bool {
	return r != nil && !r.Approved && !r.Rejected
}

// HasDocumentRef reports whether the record carries a non-empty document
// reference.
func (r *Record) HasDocumentRef() bool {
	return r != nil && strings.TrimSpace(r.DocumentRef) != ""
}

// Approve marks the record approved, clearing any rejection.
func (r *Record) Approve() {
	r.Approved = true
	r.Rejected = false
}

// Reject marks the record rejected with feedback, clearing any approval.
func (r *Record) Reject(feedback string) {
	r.Approved = false
	r.Rejected = true
	if feedback != "" {
		r.Feedback = feedback
	}
}

// SetMetadata stores a field value, allocating the map on first use.
func (r *Record) SetMetadata(field, value string) {
	if r.Metadata == nil {
		r.Metadata = make(map[string]string)
	}
	r.Metadata[field] = value
}

// NormalizeDOI lowercases and trims a DOI and strips the resolver prefix, so
// "https://doi.org/10.1000/X" and "10.1000/x" compare equal.
func NormalizeDOI(doi string) string {
	normalized := strings.ToLower(strings.TrimSpace(doi))
	return strings.TrimPrefix(normalized, doiPrefix)
}

// NormalizeTitle lowercases and trims a title for duplicate comparison.
func NormalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}
