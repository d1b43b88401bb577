// Package textutil provides text normalization for title/filename matching.
//
// The primary use cases are:
//   - Folding diacritics and tokenizing titles and filenames for overlap scoring
//   - Deriving deterministic PDF filenames (slugs) from article titles
//   - Sanitizing filenames for safe filesystem use
//
// Tokenization lowercases text, strips combining marks, splits on
// non-alphanumeric characters, and filters short tokens.
package textutil
