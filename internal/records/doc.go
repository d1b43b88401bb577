// Package records defines the article record model and the store contract the
// curation pipeline runs against.
//
// A Record is one row of the curated corpus: bibliographic fields, the
// approval state, a document reference, and the open-ended metadata map whose
// keys come from the fixed field schema shared with the extraction service.
// Store abstracts the tabular backing format; the SQLite implementation in
// this package is the default backend.
package records
