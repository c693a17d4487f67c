package nlp

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"quizforge/internal/domain"
)

// MinReadableChars is the fewest non-whitespace characters a document may carry.
const MinReadableChars = 10

var (
	newlinesRe   = regexp.MustCompile(`\n+`)
	pageNumberRe = regexp.MustCompile(`(?i)page\s*\d+`)
	spacesRe     = regexp.MustCompile(`\s+`)
	disallowedRe = regexp.MustCompile(`[^a-zA-Z0-9.,!?;:'"()\-\s]`)
	wordRe       = regexp.MustCompile(`[A-Za-z0-9]+(?:['\-][A-Za-z0-9]+)*|[^\sA-Za-z0-9]`)
)

// CheckReadable fails with domain.ErrUnreadableContent when raw has fewer than
// MinReadableChars non-whitespace characters.
func CheckReadable(raw string) error {
	n := 0
	for _, r := range raw {
		if !unicode.IsSpace(r) {
			n++
			if n >= MinReadableChars {
				return nil
			}
		}
	}
	return fmt.Errorf("%w: %d non-whitespace characters", domain.ErrUnreadableContent, n)
}

// StripPageNumbers removes "Page 12" style artifacts.
func StripPageNumbers(s string) string {
	return pageNumberRe.ReplaceAllString(s, "")
}

// Clean flattens whitespace, drops page numbers and characters outside the
// allow-list, and lowercases.
func Clean(raw string) string {
	text := newlinesRe.ReplaceAllString(raw, " ")
	text = StripPageNumbers(text)
	text = strings.TrimSpace(spacesRe.ReplaceAllString(text, " "))
	text = disallowedRe.ReplaceAllString(text, "")
	return strings.ToLower(CollapseSpaces(text))
}

// Words splits s into word tokens and single punctuation marks.
func Words(s string) []string {
	return wordRe.FindAllString(s, -1)
}

// CollapseSpaces trims s and squeezes internal whitespace.
func CollapseSpaces(s string) string {
	return strings.TrimSpace(spacesRe.ReplaceAllString(s, " "))
}
