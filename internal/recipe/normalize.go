package recipe

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// nonSlug matches every run of characters that may not appear in a
// recipe id.
var nonSlug = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// NormalizeID derives the canonical recipe id from a submitted name or
// explicit id.
//
// The text is NFC-normalized first so composed and decomposed forms of
// the same accented name slug identically. Every run of characters
// outside [a-zA-Z0-9_-] collapses to a single hyphen, leading and
// trailing hyphens are trimmed, and the result is lowercased. An empty
// result falls back to "recipe".
//
// NormalizeID is idempotent: NormalizeID(NormalizeID(x)) == NormalizeID(x).
func NormalizeID(text string) string {
	s := strings.TrimSpace(text)
	s = norm.NFC.String(s)
	s = nonSlug.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	s = strings.ToLower(s)
	if s == "" {
		return "recipe"
	}
	return s
}
