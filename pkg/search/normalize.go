package search

import (
	"golang.org/x/text/cases"
)

// Normalize case folds text so that matching ignores case in every script
// that has one. Kana and kanji pass through unchanged.
func Normalize(text string) string {
	return cases.Fold().String(text)
}
