// Package matching decides whether a submitted answer matches a word's
// accepted meanings.
package matching

import (
	"strings"
	"unicode"
)

// MeaningSeparator splits a stored meaning into its accepted alternatives.
const MeaningSeparator = ","

// Matcher compares a candidate answer against a comma-separated list of
// accepted meanings.
type Matcher interface {
	IsCorrect(answer, acceptedMeanings string) bool
}

// Normalize removes every whitespace rune and every single or double quote,
// then lowercases the rest. It is total and safe on any UTF-8 input.
func Normalize(text string) string {
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '\'' || r == '"' {
			return -1
		}
		return r
	}, text)
	return strings.ToLower(stripped)
}

// Meanings splits acceptedMeanings into trimmed alternatives, preserving
// their stored spelling.
func Meanings(acceptedMeanings string) []string {
	parts := strings.Split(acceptedMeanings, MeaningSeparator)
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

type literalMatcher struct{}

// NewDefaultMatcher returns the normalized literal-equality matcher.
// Only whole alternatives match; substrings never do.
func NewDefaultMatcher() Matcher {
	return literalMatcher{}
}

// IsCorrect reports whether the normalized answer equals any normalized
// alternative. Two empty strings match.
func (literalMatcher) IsCorrect(answer, acceptedMeanings string) bool {
	normalized := Normalize(answer)
	for _, meaning := range Meanings(acceptedMeanings) {
		if Normalize(meaning) == normalized {
			return true
		}
	}
	return false
}
