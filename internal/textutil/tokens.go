package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// tokenSplitPattern matches non-alphanumeric character sequences for tokenization.
var tokenSplitPattern = regexp.MustCompile(`[^a-z0-9]+`)

// diacriticFolder decomposes runes and strips combining marks, so "várias"
// normalizes to "varias" before matching.
var diacriticFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// FoldDiacritics removes combining marks from text. Input that fails to
// transform is returned unchanged.
func FoldDiacritics(text string) string {
	folded, _, err := transform.String(diacriticFolder, text)
	if err != nil {
		return text
	}
	return folded
}

// Normalize lowercases text, folds diacritics, and collapses runs of
// non-alphanumeric characters into single spaces.
func Normalize(text string) string {
	lowered := strings.ToLower(FoldDiacritics(text))
	collapsed := tokenSplitPattern.ReplaceAllString(lowered, " ")
	return strings.TrimSpace(collapsed)
}

// Tokenize splits normalized text into tokens longer than minLength runes.
func Tokenize(text string, minLength int) []string {
	raw := strings.Fields(Normalize(text))
	terms := make([]string, 0, len(raw))
	for _, token := range raw {
		if len(token) <= minLength {
			continue
		}
		terms = append(terms, token)
	}
	return terms
}
