package processor

import "strings"

// truthyTokens is the vocabulary the approval decision accepts, covering the
// English and Portuguese values the extraction service is known to emit.
var truthyTokens = map[string]struct{}{
	"true":       {},
	"sim":        {},
	"yes":        {},
	"verdadeiro": {},
	"aprovado":   {},
	"1":          {},
}

// IsTruthy reports whether an extracted approval value counts as approval.
// Matching is case-insensitive; anything outside the vocabulary is falsy.
func IsTruthy(value string) bool {
	_, ok := truthyTokens[strings.ToLower(strings.TrimSpace(value))]
	return ok
}

// feedbackLimit bounds persisted failure feedback so one pathological error
// string cannot bloat the store.
const feedbackLimit = 500

func truncateFeedback(message string) string {
	runes := []rune(message)
	if len(runes) <= feedbackLimit {
		return message
	}
	return string(runes[:feedbackLimit])
}
