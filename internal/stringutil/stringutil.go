// Package stringutil provides common string manipulation utilities.
package stringutil

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.AmericanEnglish)

// NormalizeWhitespace collapses runs of whitespace into single spaces and
// trims leading/trailing whitespace.
func NormalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// TitleCase converts a phrase to title case ("new york" -> "New York").
// Used to canonicalize town and team names captured from utterances.
func TitleCase(s string) string {
	return titleCaser.String(strings.ToLower(NormalizeWhitespace(s)))
}

// Truncate returns s shortened to at most maxRunes runes.
func Truncate(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes])
}
